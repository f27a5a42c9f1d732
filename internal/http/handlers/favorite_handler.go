// Favorite HTTP handlers.
//
//   - POST /{id}/favorite/  (toggle; script-facing JSON)
//   - GET  /my-favorites/   (caller's favorites)
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-chai-catalog/internal/domain"
	"github.com/tbourn/go-chai-catalog/internal/http/middleware"
)

// ToggleResponse is the answer to a favorite toggle.
type ToggleResponse struct {
	Success       bool   `json:"success"`
	Favorited     bool   `json:"favorited"`
	Message       string `json:"message" example:"Added to favorites"`
	FavoriteCount int64  `json:"favorite_count"`
}

// UserFavorite is one favorited item.
type UserFavorite struct {
	Item        domain.Item `json:"item"`
	FavoritedAt time.Time   `json:"favorited_at"`
}

// UserFavoritesResponse lists the caller's favorites, newest first.
type UserFavoritesResponse struct {
	Favorites []UserFavorite `json:"favorites"`
}

// ToggleFavorite godoc
// @ID          toggleFavorite
// @Summary     Toggle a favorite
// @Description Adds the item to the caller's favorites, or removes it when already present. Concurrent toggles never leave two rows for the same pair.
// @Tags        Favorites
// @Produce     json
// @Security    BearerAuth
// @Param       id   path      string  true  "Item ID"
// @Success     200  {object}  handlers.ToggleResponse
// @Failure     401  {object}  handlers.Result "Not authenticated"
// @Failure     404  {object}  handlers.Result "Item not found"
// @Failure     429  {object}  handlers.ErrorResponse "Rate limited"
// @Router      /{id}/favorite/ [post]
func (h *Handlers) ToggleFavorite(c *gin.Context) {
	res, err := h.favorites.Toggle(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		failResult(c, err)
		return
	}
	msg := "Removed from favorites"
	if res.Favorited {
		msg = "Added to favorites"
	}
	ok(c, http.StatusOK, ToggleResponse{
		Success:       true,
		Favorited:     res.Favorited,
		Message:       msg,
		FavoriteCount: res.FavoriteCount,
	})
}

// MyFavorites godoc
// @ID          myFavorites
// @Summary     The caller's favorites
// @Tags        Favorites
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object}  handlers.UserFavoritesResponse
// @Failure     401  {object}  handlers.ErrorResponse "Not authenticated"
// @Router      /my-favorites/ [get]
func (h *Handlers) MyFavorites(c *gin.Context) {
	favs, err := h.favorites.ListForUser(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		failErr(c, err)
		return
	}
	out := make([]UserFavorite, len(favs))
	for i, f := range favs {
		out[i] = UserFavorite{Item: f.Item, FavoritedAt: f.CreatedAt}
	}
	ok(c, http.StatusOK, UserFavoritesResponse{Favorites: out})
}
