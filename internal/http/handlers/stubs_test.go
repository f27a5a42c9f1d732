package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-chai-catalog/internal/domain"
	"github.com/tbourn/go-chai-catalog/internal/http/middleware"
	"github.com/tbourn/go-chai-catalog/internal/services"
)

// ---- stub services: each method delegates to an optional func field ----

type stubCatalog struct {
	list    func(ctx context.Context, q services.ListQuery) (*services.ItemPage, error)
	detail  func(ctx context.Context, itemID, userID string) (*services.ItemDetail, error)
	top     func(ctx context.Context) ([]services.RatedItem, error)
	recent  func(ctx context.Context) ([]services.RatedItem, error)
	choices func(ctx context.Context) ([]domain.Item, error)
	version func(ctx context.Context) (string, error)
}

func (s stubCatalog) ListItems(ctx context.Context, q services.ListQuery) (*services.ItemPage, error) {
	if s.list != nil {
		return s.list(ctx, q)
	}
	return &services.ItemPage{Items: []services.RatedItem{}, TotalPages: 1, CurrentPage: 1}, nil
}

func (s stubCatalog) Detail(ctx context.Context, itemID, userID string) (*services.ItemDetail, error) {
	if s.detail != nil {
		return s.detail(ctx, itemID, userID)
	}
	return nil, services.ErrItemNotFound
}

func (s stubCatalog) TopRated(ctx context.Context) ([]services.RatedItem, error) {
	if s.top != nil {
		return s.top(ctx)
	}
	return nil, nil
}

func (s stubCatalog) RecentlyAdded(ctx context.Context) ([]services.RatedItem, error) {
	if s.recent != nil {
		return s.recent(ctx)
	}
	return nil, nil
}

func (s stubCatalog) ItemChoices(ctx context.Context) ([]domain.Item, error) {
	if s.choices != nil {
		return s.choices(ctx)
	}
	return nil, nil
}

func (s stubCatalog) Version(ctx context.Context) (string, error) {
	if s.version != nil {
		return s.version(ctx)
	}
	return "v1", nil
}

type stubFavorites struct {
	toggle func(ctx context.Context, userID, itemID string) (*services.ToggleResult, error)
	list   func(ctx context.Context, userID string) ([]domain.Favorite, error)
}

func (s stubFavorites) Toggle(ctx context.Context, userID, itemID string) (*services.ToggleResult, error) {
	if s.toggle != nil {
		return s.toggle(ctx, userID, itemID)
	}
	if userID == "" {
		return nil, services.ErrUnauthenticated
	}
	return &services.ToggleResult{Favorited: true, FavoriteCount: 1}, nil
}

func (s stubFavorites) ListForUser(ctx context.Context, userID string) ([]domain.Favorite, error) {
	if s.list != nil {
		return s.list(ctx, userID)
	}
	if userID == "" {
		return nil, services.ErrUnauthenticated
	}
	return nil, nil
}

type stubReviews struct {
	submit   func(ctx context.Context, userID, itemID, key string, in services.ReviewInput) (*domain.Review, bool, error)
	list     func(ctx context.Context, userID string) ([]domain.Review, error)
	comment  func(ctx context.Context, userID, reviewID, text string) (*domain.ReviewComment, error)
	comments func(ctx context.Context, reviewID string) ([]domain.ReviewComment, error)
	helpful  func(ctx context.Context, userID, commentID string) (*domain.ReviewComment, error)
}

func (s stubReviews) SubmitIdempotent(ctx context.Context, userID, itemID, key string, in services.ReviewInput) (*domain.Review, bool, error) {
	if s.submit != nil {
		return s.submit(ctx, userID, itemID, key, in)
	}
	return &domain.Review{ID: "r1", ItemID: itemID, UserID: userID, Rating: in.Rating, Text: in.Text}, false, nil
}

func (s stubReviews) ListForUser(ctx context.Context, userID string) ([]domain.Review, error) {
	if s.list != nil {
		return s.list(ctx, userID)
	}
	if userID == "" {
		return nil, services.ErrUnauthenticated
	}
	return nil, nil
}

func (s stubReviews) AddComment(ctx context.Context, userID, reviewID, text string) (*domain.ReviewComment, error) {
	if s.comment != nil {
		return s.comment(ctx, userID, reviewID, text)
	}
	if userID == "" {
		return nil, services.ErrUnauthenticated
	}
	return &domain.ReviewComment{ID: "c1", ReviewID: reviewID, UserID: userID, Text: text}, nil
}

func (s stubReviews) ListComments(ctx context.Context, reviewID string) ([]domain.ReviewComment, error) {
	if s.comments != nil {
		return s.comments(ctx, reviewID)
	}
	return nil, nil
}

func (s stubReviews) MarkHelpful(ctx context.Context, userID, commentID string) (*domain.ReviewComment, error) {
	if s.helpful != nil {
		return s.helpful(ctx, userID, commentID)
	}
	if userID == "" {
		return nil, services.ErrUnauthenticated
	}
	return &domain.ReviewComment{ID: commentID, Helpful: 1}, nil
}

type stubLocations struct {
	list    func(ctx context.Context) ([]services.RatedLocation, error)
	forItem func(ctx context.Context, itemID string) (*services.StoreFinder, error)
	detail  func(ctx context.Context, locationID, userID string) (*services.LocationDetail, error)
	rate    func(ctx context.Context, userID, locationID string, value int, comment string) (*domain.LocationRating, error)
}

func (s stubLocations) List(ctx context.Context) ([]services.RatedLocation, error) {
	if s.list != nil {
		return s.list(ctx)
	}
	return nil, nil
}

func (s stubLocations) ForItem(ctx context.Context, itemID string) (*services.StoreFinder, error) {
	if s.forItem != nil {
		return s.forItem(ctx, itemID)
	}
	return &services.StoreFinder{Item: domain.Item{ID: itemID}}, nil
}

func (s stubLocations) Detail(ctx context.Context, locationID, userID string) (*services.LocationDetail, error) {
	if s.detail != nil {
		return s.detail(ctx, locationID, userID)
	}
	return nil, services.ErrLocationNotFound
}

func (s stubLocations) Rate(ctx context.Context, userID, locationID string, value int, comment string) (*domain.LocationRating, error) {
	if s.rate != nil {
		return s.rate(ctx, userID, locationID, value, comment)
	}
	return &domain.LocationRating{ID: "lr1", LocationID: locationID, UserID: userID, Rating: value, Comment: comment}, nil
}

// testRouter mounts every handler the way the production router does, with
// identity taken from X-User-ID.
func testRouter(h *Handlers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Authenticate(middleware.AuthOptions{TrustHeader: true}),
		middleware.IdempotencyValidator(middleware.IdempotencyOptions{}, nil),
	)

	r.GET("/", h.ListItems)
	r.GET("/top-rated/", h.TopRated)
	r.GET("/recently-added/", h.RecentlyAdded)
	r.GET("/my-favorites/", h.MyFavorites)
	r.GET("/my-reviews/", h.MyReviews)
	r.GET("/chai_stores/", h.StoreFinder)
	r.POST("/chai_stores/", h.StoreFinder)
	r.GET("/stores/", h.ListStores)
	r.GET("/stores/:id/", h.StoreDetail)
	r.POST("/stores/:id/", h.RateStore)
	r.GET("/reviews/:id/comments/", h.ListComments)
	r.POST("/reviews/:id/comments/", h.AddComment)
	r.POST("/comments/:id/helpful/", h.MarkHelpful)
	r.GET("/:id/", h.ItemDetail)
	r.POST("/:id/", h.SubmitReview)
	r.POST("/:id/favorite/", h.ToggleFavorite)

	if h.admin != nil {
		adm := r.Group("/admin")
		adm.POST("/items", h.CreateItem)
		adm.PUT("/items/:id", h.UpdateItem)
		adm.DELETE("/items/:id", h.DeleteItem)
		adm.POST("/locations", h.CreateLocation)
		adm.PUT("/locations/:id/items", h.SetLocationItems)
		adm.POST("/certificates", h.IssueCertificate)
		adm.GET("/certificates", h.ListCertificates)
		adm.GET("/favorites", h.SearchFavorites)
		adm.GET("/location-ratings", h.SearchLocationRatings)
		adm.GET("/comments", h.SearchComments)
	}
	return r
}
