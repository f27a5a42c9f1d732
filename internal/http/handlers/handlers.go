// Package handlers exposes the chai catalog over HTTP.
//
// Handlers are transport-thin: they bind and validate request DTOs, call the
// application services, and translate results and service errors into HTTP
// responses. Caller identity comes from middleware.Authenticate.
package handlers

import (
	"context"

	"github.com/tbourn/go-chai-catalog/internal/domain"
	"github.com/tbourn/go-chai-catalog/internal/services"
)

//
// Service contracts (context-aware)
//

// CatalogService is the read side of the catalog.
type CatalogService interface {
	ListItems(ctx context.Context, q services.ListQuery) (*services.ItemPage, error)
	Detail(ctx context.Context, itemID, userID string) (*services.ItemDetail, error)
	TopRated(ctx context.Context) ([]services.RatedItem, error)
	RecentlyAdded(ctx context.Context) ([]services.RatedItem, error)
	ItemChoices(ctx context.Context) ([]domain.Item, error)
	// Version fingerprints items and reviews for the listing ETag.
	Version(ctx context.Context) (string, error)
}

// FavoriteService toggles and lists favorites.
type FavoriteService interface {
	Toggle(ctx context.Context, userID, itemID string) (*services.ToggleResult, error)
	ListForUser(ctx context.Context, userID string) ([]domain.Favorite, error)
}

// ReviewService submits reviews and manages their comments.
type ReviewService interface {
	// SubmitIdempotent creates a review; an already used key returns the
	// original review with replayed=true.
	SubmitIdempotent(ctx context.Context, userID, itemID, key string, in services.ReviewInput) (*domain.Review, bool, error)
	ListForUser(ctx context.Context, userID string) ([]domain.Review, error)
	AddComment(ctx context.Context, userID, reviewID, text string) (*domain.ReviewComment, error)
	ListComments(ctx context.Context, reviewID string) ([]domain.ReviewComment, error)
	MarkHelpful(ctx context.Context, userID, commentID string) (*domain.ReviewComment, error)
}

// LocationService serves stores and their ratings.
type LocationService interface {
	List(ctx context.Context) ([]services.RatedLocation, error)
	ForItem(ctx context.Context, itemID string) (*services.StoreFinder, error)
	Detail(ctx context.Context, locationID, userID string) (*services.LocationDetail, error)
	Rate(ctx context.Context, userID, locationID string, value int, comment string) (*domain.LocationRating, error)
}

// AdminService is catalog management.
type AdminService interface {
	CreateItem(ctx context.Context, in services.ItemInput) (*services.ItemResult, error)
	UpdateItem(ctx context.Context, itemID string, in services.ItemInput) (*services.ItemResult, error)
	DeleteItem(ctx context.Context, itemID string) error
	CreateLocation(ctx context.Context, name, address string, itemIDs []string) (*domain.Location, error)
	SetLocationItems(ctx context.Context, locationID string, itemIDs []string) (*domain.Location, error)
	IssueCertificate(ctx context.Context, in services.CertificateInput) (*domain.Certificate, error)
	ListCertificates(ctx context.Context) ([]domain.Certificate, error)
	SearchFavorites(ctx context.Context, q string) ([]domain.Favorite, error)
	SearchLocationRatings(ctx context.Context, q string) ([]domain.LocationRating, error)
	SearchComments(ctx context.Context, q string) ([]domain.ReviewComment, error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints.
type Handlers struct {
	catalog   CatalogService
	favorites FavoriteService
	reviews   ReviewService
	locations LocationService
	admin     AdminService

	// MaxUploadBytes caps admin image uploads; <= 0 means 5 MiB.
	MaxUploadBytes int64
}

// New constructs a Handlers bound to the given services. admin may be nil
// when the management API is not mounted.
func New(catalog CatalogService, favorites FavoriteService, reviews ReviewService, locations LocationService, admin AdminService) *Handlers {
	RegisterValidators()
	return &Handlers{
		catalog:   catalog,
		favorites: favorites,
		reviews:   reviews,
		locations: locations,
		admin:     admin,
	}
}
