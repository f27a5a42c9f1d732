// Store HTTP handlers.
//
//   - GET|POST /chai_stores/  (store finder: stores carrying a chosen item)
//   - GET      /stores/       (all stores with ratings)
//   - GET      /stores/{id}/  (store detail with ratings)
//   - POST     /stores/{id}/  (rate a store once)
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-chai-catalog/internal/domain"
	"github.com/tbourn/go-chai-catalog/internal/http/middleware"
	"github.com/tbourn/go-chai-catalog/internal/services"
)

// StoreFinderRequest selects the item whose stores are listed.
type StoreFinderRequest struct {
	ItemID string `json:"chai_variety" form:"chai_variety" binding:"required,max=64"`
}

// StoreFinderResponse carries the selectable items and, once an item is
// chosen, the stores carrying it. Stores is null until a selection is made.
type StoreFinderResponse struct {
	Choices []domain.Item            `json:"choices"`
	Item    *domain.Item             `json:"item"`
	Stores  []services.RatedLocation `json:"stores"`
}

// StoresResponse lists every store.
type StoresResponse struct {
	Stores []services.RatedLocation `json:"stores"`
}

// LocationRatingRequest is a store rating.
type LocationRatingRequest struct {
	Rating  int    `json:"rating"  form:"rating"  binding:"rating" example:"4"`
	Comment string `json:"comment" form:"comment" binding:"max=1000" example:"Friendly staff"`
}

// StoreFinder godoc
// @ID          storeFinder
// @Summary     Find stores carrying an item
// @Description GET without chai_variety returns the selectable items only. GET with ?chai_variety= or POST with a chai_variety field also lists the stores carrying it, with their ratings.
// @Tags        Stores
// @Accept      json,x-www-form-urlencoded
// @Produce     json
// @Param       chai_variety  query  string  false "Item ID"
// @Success     200  {object}  handlers.StoreFinderResponse
// @Failure     400  {object}  handlers.ErrorResponse "Missing selection"
// @Failure     404  {object}  handlers.ErrorResponse "Item not found"
// @Router      /chai_stores/ [get]
// @Router      /chai_stores/ [post]
func (h *Handlers) StoreFinder(c *gin.Context) {
	ctx := c.Request.Context()

	var itemID string
	if c.Request.Method == http.MethodPost {
		var req StoreFinderRequest
		if err := c.ShouldBind(&req); err != nil {
			fail(c, http.StatusBadRequest, ErrCodeValidation, bindingMessage(err))
			return
		}
		itemID = req.ItemID
	} else {
		itemID = strings.TrimSpace(c.Query("chai_variety"))
	}

	choices, err := h.catalog.ItemChoices(ctx)
	if err != nil {
		failErr(c, err)
		return
	}
	if choices == nil {
		choices = []domain.Item{}
	}
	resp := StoreFinderResponse{Choices: choices}
	if itemID != "" {
		sf, err := h.locations.ForItem(ctx, itemID)
		if err != nil {
			failErr(c, err)
			return
		}
		resp.Item = &sf.Item
		resp.Stores = sf.Locations
		if resp.Stores == nil {
			resp.Stores = []services.RatedLocation{}
		}
	}
	ok(c, http.StatusOK, resp)
}

// ListStores godoc
// @ID          listStores
// @Summary     All stores
// @Tags        Stores
// @Produce     json
// @Success     200  {object}  handlers.StoresResponse
// @Router      /stores/ [get]
func (h *Handlers) ListStores(c *gin.Context) {
	locs, err := h.locations.List(c.Request.Context())
	if err != nil {
		failErr(c, err)
		return
	}
	if locs == nil {
		locs = []services.RatedLocation{}
	}
	ok(c, http.StatusOK, StoresResponse{Stores: locs})
}

// StoreDetail godoc
// @ID          storeDetail
// @Summary     Store detail
// @Description The store, its items, ratings (newest first), rating summary and the caller's own rating if any.
// @Tags        Stores
// @Produce     json
// @Param       id   path      string  true  "Store ID"
// @Success     200  {object}  services.LocationDetail
// @Failure     404  {object}  handlers.ErrorResponse "Store not found"
// @Router      /stores/{id}/ [get]
func (h *Handlers) StoreDetail(c *gin.Context) {
	d, err := h.locations.Detail(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, d)
}

// RateStore godoc
// @ID          rateStore
// @Summary     Rate a store
// @Description A user may rate a store once; a second rating is rejected with 409 duplicate_rating and the first one is kept. Form submissions are redirected back with 303.
// @Tags        Stores
// @Accept      json,x-www-form-urlencoded
// @Produce     json
// @Security    BearerAuth
// @Param       id    path    string                          true  "Store ID"
// @Param       body  body    handlers.LocationRatingRequest  true  "Rating"
// @Success     201  {object}  domain.LocationRating
// @Success     303  {string}  string "Redirect to the store page (form submissions)"
// @Failure     400  {object}  handlers.ErrorResponse "Validation failed"
// @Failure     401  {object}  handlers.ErrorResponse "Not authenticated"
// @Failure     404  {object}  handlers.ErrorResponse "Store not found"
// @Failure     409  {object}  handlers.ErrorResponse "Already rated"
// @Router      /stores/{id}/ [post]
func (h *Handlers) RateStore(c *gin.Context) {
	uid := middleware.UserID(c)
	if uid == "" {
		failErr(c, services.ErrUnauthenticated)
		return
	}
	var req LocationRatingRequest
	if err := c.ShouldBind(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeValidation, bindingMessage(err))
		return
	}
	lr, err := h.locations.Rate(c.Request.Context(), uid, c.Param("id"), req.Rating, req.Comment)
	if err != nil {
		failErr(c, err)
		return
	}
	if !isJSON(c) {
		c.Redirect(http.StatusSeeOther, c.Request.URL.Path)
		return
	}
	ok(c, http.StatusCreated, lr)
}
