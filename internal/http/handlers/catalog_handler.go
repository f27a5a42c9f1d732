// Catalog HTTP handlers.
//
// This file exposes the read endpoints of the catalog:
//   - GET /                 (listing: search, category, price range, min rating, page)
//   - GET /{id}/            (item detail with reviews and favorite state)
//   - GET /top-rated/       (ten best-rated reviewed items)
//   - GET /recently-added/  (ten newest items)
//
// Listing filters degrade gracefully: unknown categories, price ranges or
// non-numeric values are ignored instead of failing the request.
package handlers

import (
	"fmt"
	"hash/fnv"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-chai-catalog/internal/domain"
	"github.com/tbourn/go-chai-catalog/internal/http/middleware"
	"github.com/tbourn/go-chai-catalog/internal/services"
	"github.com/tbourn/go-chai-catalog/internal/utils"
)

// ListItemsQuery is the listing query string.
type ListItemsQuery struct {
	Q          string   `form:"q"`
	ChaiType   []string `form:"chai_type"   binding:"omitempty,dive,category"`
	PriceRange string   `form:"price_range" binding:"omitempty,price_bucket"`
	MinRating  string   `form:"min_rating"`
	Page       string   `form:"page"`
}

// toListQuery drops whatever does not parse.
func (q ListItemsQuery) toListQuery() services.ListQuery {
	out := services.ListQuery{
		Search:    q.Q,
		MinRating: utils.AtoiDefault(q.MinRating, 0),
		Page:      utils.AtoiDefault(q.Page, 1),
	}
	for _, raw := range q.ChaiType {
		if c, ok := domain.ParseCategory(raw); ok {
			out.Categories = append(out.Categories, c)
		}
	}
	out.Bucket, _ = domain.ParsePriceBucket(q.PriceRange)
	return out
}

// ListResponse wraps a short item list.
type ListResponse struct {
	Title string               `json:"title"`
	Items []services.RatedItem `json:"items"`
}

// ListItems godoc
// @ID          listItems
// @Summary     List chai varieties
// @Description Filtered, paginated listing, newest first, 12 per page. Invalid filter values are ignored; page is clamped into range. Supports a weak ETag via If-None-Match.
// @Tags        Catalog
// @Produce     json
//
// @Param       q              query   string    false "Search text (name or description)"
// @Param       chai_type      query   []string  false "Category code (repeatable)"  collectionFormat(multi)
// @Param       price_range    query   string    false "Price range"  Enums(all, 0-50, 50-100, 100-200, 200+)
// @Param       min_rating     query   int       false "Minimum average rating"
// @Param       page           query   int       false "Page number"  default(1)
// @Param       If-None-Match  header  string    false "Return 304 if ETag matches"
//
// @Success     200  {object} services.ItemPage
// @Header      200  {string} ETag "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      / [get]
func (h *Handlers) ListItems(c *gin.Context) {
	ctx := c.Request.Context()

	var raw ListItemsQuery
	if err := c.ShouldBindQuery(&raw); err != nil {
		lg := middleware.LoggerFrom(c)
		lg.Debug().Str("reason", bindingMessage(err)).Msg("ignoring invalid listing filter")
	}

	// ETag pre-check (best effort).
	if v, err := h.catalog.Version(ctx); err == nil {
		hs := fnv.New64a()
		_, _ = hs.Write([]byte(c.Request.URL.Query().Encode()))
		etag := fmt.Sprintf(`W/"items:%s:%x"`, v, hs.Sum64())
		c.Header("ETag", etag)
		if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}

	page, err := h.catalog.ListItems(ctx, raw.toListQuery())
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, page)
}

// ItemDetail godoc
// @ID          getItem
// @Summary     Item detail
// @Description Returns the item, its rating summary, reviews (newest first), favorite count, whether the caller favorited it, and the stores carrying it.
// @Tags        Catalog
// @Produce     json
// @Param       id   path      string  true  "Item ID"
// @Success     200  {object}  services.ItemDetail
// @Failure     404  {object}  handlers.ErrorResponse "Item not found"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /{id}/ [get]
func (h *Handlers) ItemDetail(c *gin.Context) {
	d, err := h.catalog.Detail(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, d)
}

// TopRated godoc
// @ID          topRated
// @Summary     Top-rated items
// @Description Up to ten items ordered by average rating. Items without reviews are excluded.
// @Tags        Catalog
// @Produce     json
// @Success     200  {object}  handlers.ListResponse
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /top-rated/ [get]
func (h *Handlers) TopRated(c *gin.Context) {
	items, err := h.catalog.TopRated(c.Request.Context())
	if err != nil {
		failErr(c, err)
		return
	}
	if items == nil {
		items = []services.RatedItem{}
	}
	ok(c, http.StatusOK, ListResponse{Title: "Top Rated Chais", Items: items})
}

// RecentlyAdded godoc
// @ID          recentlyAdded
// @Summary     Recently added items
// @Description The ten most recently created items.
// @Tags        Catalog
// @Produce     json
// @Success     200  {object}  handlers.ListResponse
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /recently-added/ [get]
func (h *Handlers) RecentlyAdded(c *gin.Context) {
	items, err := h.catalog.RecentlyAdded(c.Request.Context())
	if err != nil {
		failErr(c, err)
		return
	}
	if items == nil {
		items = []services.RatedItem{}
	}
	ok(c, http.StatusOK, ListResponse{Title: "Recently Added Chais", Items: items})
}
