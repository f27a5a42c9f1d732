// Management HTTP handlers, mounted under /admin behind RequireAdmin.
//
// Items accept multipart/form-data so an image can be uploaded alongside
// the fields; a JSON body works when no image is sent. Image compression
// failures are logged and reported in the response, never fatal.
package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-chai-catalog/internal/domain"
	"github.com/tbourn/go-chai-catalog/internal/http/middleware"
	"github.com/tbourn/go-chai-catalog/internal/services"
)

const defaultMaxUploadBytes = 5 << 20

// ItemRequest is an admin item submission.
type ItemRequest struct {
	Name        string `json:"name"        form:"name"        binding:"required,max=100" example:"Kashmiri Masala"`
	Category    string `json:"category"    form:"category"    binding:"omitempty,category" example:"ML"`
	Description string `json:"description" form:"description" binding:"max=5000"`
	Price       string `json:"price"       form:"price"       example:"120.50"`
}

// ItemResponse is a stored item. ImageError is set when the uploaded image
// could not be processed and the item was stored without it.
type ItemResponse struct {
	Item       *domain.Item `json:"item"`
	ImageError string       `json:"image_error,omitempty"`
}

// LocationRequest creates a store.
type LocationRequest struct {
	Name    string   `json:"name"     binding:"required,max=100" example:"Chai Point Indiranagar"`
	Address string   `json:"address"  binding:"required,max=255"`
	ItemIDs []string `json:"item_ids"`
}

// LocationItemsRequest replaces the items a store carries.
type LocationItemsRequest struct {
	ItemIDs []string `json:"item_ids"`
}

// CertificateRequest issues a certificate. Number is generated when empty;
// dates default to now and one year later.
type CertificateRequest struct {
	UserID     string     `json:"user_id"            binding:"required,max=64"`
	ItemID     string     `json:"chai_variety"       binding:"required,max=64"`
	Number     string     `json:"certificate_number" binding:"max=20"`
	IssuedAt   *time.Time `json:"date_issued"`
	ValidUntil *time.Time `json:"valid_until"`
}

// ListResult wraps an admin listing.
type ListResult[T any] struct {
	Query   string `json:"q"`
	Results []T    `json:"results"`
}

func (h *Handlers) maxUpload() int64 {
	if h.MaxUploadBytes > 0 {
		return h.MaxUploadBytes
	}
	return defaultMaxUploadBytes
}

var errTooLarge = errors.New("image too large")

// itemInput binds the item fields and opens the optional "image" part. The
// returned closer must be called once the service returns.
func (h *Handlers) itemInput(c *gin.Context) (services.ItemInput, io.Closer, error) {
	var req ItemRequest
	if err := c.ShouldBind(&req); err != nil {
		return services.ItemInput{}, nil, err
	}
	in := services.ItemInput{
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		Price:       req.Price,
	}
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return in, nil, nil
	}
	fh, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return in, nil, nil
	}
	if err != nil {
		return in, nil, err
	}
	if fh.Size > h.maxUpload() {
		return in, nil, errTooLarge
	}
	var f multipart.File
	if f, err = fh.Open(); err != nil {
		return in, nil, err
	}
	in.Image = f
	return in, f, nil
}

func (h *Handlers) writeItem(c *gin.Context, status int, res *services.ItemResult) {
	out := ItemResponse{Item: res.Item}
	if res.ImageErr != nil {
		lg := middleware.LoggerFrom(c)
		lg.Warn().Err(res.ImageErr).Str("item_id", res.Item.ID).Msg("image compression failed; item saved without new image")
		out.ImageError = "image could not be processed"
	}
	ok(c, status, out)
}

func (h *Handlers) failItemInput(c *gin.Context, err error) {
	if errors.Is(err, errTooLarge) {
		fail(c, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge, err.Error())
		return
	}
	fail(c, http.StatusBadRequest, ErrCodeValidation, bindingMessage(err))
}

// CreateItem godoc
// @ID          adminCreateItem
// @Summary     Create an item
// @Tags        Admin
// @Accept      multipart/form-data,json
// @Produce     json
// @Security    AdminToken
// @Param       name         formData  string  true   "Name"
// @Param       category     formData  string  false  "Category code"  Enums(ML, GR, KL, PL, EL)
// @Param       description  formData  string  false  "Description"
// @Param       price        formData  string  false  "Price, two decimals"
// @Param       image        formData  file    false  "Image"
// @Success     201  {object}  handlers.ItemResponse
// @Failure     400  {object}  handlers.ErrorResponse "Validation failed"
// @Failure     413  {object}  handlers.ErrorResponse "Image too large"
// @Router      /admin/items [post]
func (h *Handlers) CreateItem(c *gin.Context) {
	in, closer, err := h.itemInput(c)
	if err != nil {
		h.failItemInput(c, err)
		return
	}
	if closer != nil {
		defer closer.Close()
	}
	res, err := h.admin.CreateItem(c.Request.Context(), in)
	if err != nil {
		failErr(c, err)
		return
	}
	h.writeItem(c, http.StatusCreated, res)
}

// UpdateItem godoc
// @ID          adminUpdateItem
// @Summary     Update an item
// @Description Replaces the item's fields. Without an image the current one is kept.
// @Tags        Admin
// @Accept      multipart/form-data,json
// @Produce     json
// @Security    AdminToken
// @Param       id     path      string  true   "Item ID"
// @Param       name   formData  string  true   "Name"
// @Param       image  formData  file    false  "Image"
// @Success     200  {object}  handlers.ItemResponse
// @Failure     400  {object}  handlers.ErrorResponse "Validation failed"
// @Failure     404  {object}  handlers.ErrorResponse "Item not found"
// @Router      /admin/items/{id} [put]
func (h *Handlers) UpdateItem(c *gin.Context) {
	in, closer, err := h.itemInput(c)
	if err != nil {
		h.failItemInput(c, err)
		return
	}
	if closer != nil {
		defer closer.Close()
	}
	res, err := h.admin.UpdateItem(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		failErr(c, err)
		return
	}
	h.writeItem(c, http.StatusOK, res)
}

// DeleteItem godoc
// @ID          adminDeleteItem
// @Summary     Delete an item
// @Description Deletes the item with its reviews, favorites and certificates.
// @Tags        Admin
// @Security    AdminToken
// @Param       id   path  string  true  "Item ID"
// @Success     204
// @Failure     404  {object}  handlers.ErrorResponse "Item not found"
// @Router      /admin/items/{id} [delete]
func (h *Handlers) DeleteItem(c *gin.Context) {
	if err := h.admin.DeleteItem(c.Request.Context(), c.Param("id")); err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}

// CreateLocation godoc
// @ID          adminCreateLocation
// @Summary     Create a store
// @Tags        Admin
// @Accept      json
// @Produce     json
// @Security    AdminToken
// @Param       body  body  handlers.LocationRequest  true  "Store"
// @Success     201  {object}  domain.Location
// @Failure     400  {object}  handlers.ErrorResponse "Validation failed"
// @Router      /admin/locations [post]
func (h *Handlers) CreateLocation(c *gin.Context) {
	var req LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeValidation, bindingMessage(err))
		return
	}
	loc, err := h.admin.CreateLocation(c.Request.Context(), req.Name, req.Address, req.ItemIDs)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, loc)
}

// SetLocationItems godoc
// @ID          adminSetLocationItems
// @Summary     Set the items a store carries
// @Description Replaces the store's item set. Unknown item IDs are ignored.
// @Tags        Admin
// @Accept      json
// @Produce     json
// @Security    AdminToken
// @Param       id    path  string                         true  "Store ID"
// @Param       body  body  handlers.LocationItemsRequest  true  "Items"
// @Success     200  {object}  domain.Location
// @Failure     404  {object}  handlers.ErrorResponse "Store not found"
// @Router      /admin/locations/{id}/items [put]
func (h *Handlers) SetLocationItems(c *gin.Context) {
	var req LocationItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeValidation, bindingMessage(err))
		return
	}
	loc, err := h.admin.SetLocationItems(c.Request.Context(), c.Param("id"), req.ItemIDs)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, loc)
}

// IssueCertificate godoc
// @ID          adminIssueCertificate
// @Summary     Issue a certificate
// @Description Each user holds at most one certificate; numbers are unique.
// @Tags        Admin
// @Accept      json
// @Produce     json
// @Security    AdminToken
// @Param       body  body  handlers.CertificateRequest  true  "Certificate"
// @Success     201  {object}  domain.Certificate
// @Failure     400  {object}  handlers.ErrorResponse "Validation failed"
// @Failure     404  {object}  handlers.ErrorResponse "Item not found"
// @Failure     409  {object}  handlers.ErrorResponse "Duplicate certificate"
// @Router      /admin/certificates [post]
func (h *Handlers) IssueCertificate(c *gin.Context) {
	var req CertificateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeValidation, bindingMessage(err))
		return
	}
	in := services.CertificateInput{UserID: req.UserID, ItemID: req.ItemID, Number: req.Number}
	if req.IssuedAt != nil {
		in.IssuedAt = *req.IssuedAt
	}
	if req.ValidUntil != nil {
		in.ValidUntil = *req.ValidUntil
	}
	cert, err := h.admin.IssueCertificate(c.Request.Context(), in)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, cert)
}

// ListCertificates godoc
// @ID          adminListCertificates
// @Summary     Issued certificates
// @Tags        Admin
// @Produce     json
// @Security    AdminToken
// @Success     200  {object}  handlers.ListResult[domain.Certificate]
// @Router      /admin/certificates [get]
func (h *Handlers) ListCertificates(c *gin.Context) {
	certs, err := h.admin.ListCertificates(c.Request.Context())
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, listResult("", certs))
}

// SearchFavorites godoc
// @ID          adminSearchFavorites
// @Summary     Search favorites
// @Description Matches user ID or item name, case-insensitively. Newest first, at most 100.
// @Tags        Admin
// @Produce     json
// @Security    AdminToken
// @Param       q  query  string  false  "Search text"
// @Success     200  {object}  handlers.ListResult[domain.Favorite]
// @Router      /admin/favorites [get]
func (h *Handlers) SearchFavorites(c *gin.Context) {
	q := c.Query("q")
	out, err := h.admin.SearchFavorites(c.Request.Context(), q)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, listResult(q, out))
}

// SearchLocationRatings godoc
// @ID          adminSearchLocationRatings
// @Summary     Search store ratings
// @Description Matches user ID, comment or store name.
// @Tags        Admin
// @Produce     json
// @Security    AdminToken
// @Param       q  query  string  false  "Search text"
// @Success     200  {object}  handlers.ListResult[domain.LocationRating]
// @Router      /admin/location-ratings [get]
func (h *Handlers) SearchLocationRatings(c *gin.Context) {
	q := c.Query("q")
	out, err := h.admin.SearchLocationRatings(c.Request.Context(), q)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, listResult(q, out))
}

// SearchComments godoc
// @ID          adminSearchComments
// @Summary     Search review comments
// @Description Matches user ID or comment text.
// @Tags        Admin
// @Produce     json
// @Security    AdminToken
// @Param       q  query  string  false  "Search text"
// @Success     200  {object}  handlers.ListResult[domain.ReviewComment]
// @Router      /admin/comments [get]
func (h *Handlers) SearchComments(c *gin.Context) {
	q := c.Query("q")
	out, err := h.admin.SearchComments(c.Request.Context(), q)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, listResult(q, out))
}

func listResult[T any](q string, rows []T) ListResult[T] {
	if rows == nil {
		rows = []T{}
	}
	return ListResult[T]{Query: q, Results: rows}
}
