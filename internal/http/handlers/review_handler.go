// Review HTTP handlers.
//
// This file exposes review submission and the review comment thread:
//   - POST /{id}/                       (submit a review; JSON or form)
//   - GET  /my-reviews/                 (caller's reviews)
//   - GET  /reviews/{id}/comments/      (comments on a review)
//   - POST /reviews/{id}/comments/      (comment on a review)
//   - POST /comments/{id}/helpful/      (upvote a comment)
//
// JSON review submissions answer with the Result envelope; form submissions
// redirect back to the item page.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/tbourn/go-chai-catalog/internal/domain"
	"github.com/tbourn/go-chai-catalog/internal/http/middleware"
	"github.com/tbourn/go-chai-catalog/internal/services"
)

// ReviewRequest is a review submission, as JSON or form fields.
type ReviewRequest struct {
	Rating int    `json:"rating"      form:"rating"      binding:"rating"                example:"5"`
	Text   string `json:"review_text" form:"review_text" binding:"required,max=5000" example:"Lovely cardamom notes"`
}

// ReviewResult is the JSON answer to a review submission.
type ReviewResult struct {
	Result
	Review *domain.Review `json:"review,omitempty"`
}

// CommentRequest is a comment on a review.
type CommentRequest struct {
	Text string `json:"comment_text" form:"comment_text" binding:"required,max=2000" example:"Agreed, best with milk"`
}

// UserReview is one of the caller's reviews with the reviewed item's name.
type UserReview struct {
	ID           string    `json:"id"`
	ItemID       string    `json:"item_id"`
	ItemName     string    `json:"item_name"`
	Rating       int       `json:"rating"`
	Text         string    `json:"review_text"`
	CommentCount int       `json:"comment_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserReviewsResponse lists the caller's reviews.
type UserReviewsResponse struct {
	Reviews []UserReview `json:"reviews"`
}

// CommentsResponse lists the comments on a review.
type CommentsResponse struct {
	Comments []domain.ReviewComment `json:"comments"`
}

func isJSON(c *gin.Context) bool {
	return c.ContentType() == binding.MIMEJSON
}

// SubmitReview godoc
// @ID          submitReview
// @Summary     Submit a review
// @Description Creates a new review of the item; users may review an item any number of times. JSON bodies get {success, message|error}; form bodies are redirected back to the item with 303. An Idempotency-Key makes retries return the original review with Idempotency-Replayed: true.
// @Tags        Reviews
// @Accept      json,x-www-form-urlencoded
// @Produce     json
// @Security    BearerAuth
//
// @Param       id               path    string                  true  "Item ID"
// @Param       Idempotency-Key  header  string                  false "Retry key"
// @Param       body             body    handlers.ReviewRequest  true  "Review"
//
// @Success     200  {object}  handlers.ReviewResult
// @Success     303  {string}  string "Redirect to the item page (form submissions)"
// @Failure     400  {object}  handlers.Result "Validation failed"
// @Failure     401  {object}  handlers.Result "Not authenticated"
// @Failure     404  {object}  handlers.Result "Item not found"
// @Router      /{id}/ [post]
func (h *Handlers) SubmitReview(c *gin.Context) {
	asJSON := isJSON(c)
	uid := middleware.UserID(c)
	if uid == "" {
		if asJSON {
			failResult(c, services.ErrUnauthenticated)
		} else {
			failErr(c, services.ErrUnauthenticated)
		}
		return
	}

	var req ReviewRequest
	if err := c.ShouldBind(&req); err != nil {
		msg := bindingMessage(err)
		if asJSON {
			c.AbortWithStatusJSON(http.StatusBadRequest, Result{Success: false, Error: msg})
		} else {
			fail(c, http.StatusBadRequest, ErrCodeValidation, msg)
		}
		return
	}

	key, _ := middleware.GetIdempotencyKey(c)
	review, replayed, err := h.reviews.SubmitIdempotent(c.Request.Context(), uid, c.Param("id"), key,
		services.ReviewInput{Rating: req.Rating, Text: req.Text})
	if err != nil {
		if asJSON {
			failResult(c, err)
		} else {
			failErr(c, err)
		}
		return
	}
	if replayed {
		c.Header(middleware.HeaderIdempotencyReplayed, "true")
	}

	if !asJSON {
		c.Redirect(http.StatusSeeOther, c.Request.URL.Path)
		return
	}
	ok(c, http.StatusOK, ReviewResult{
		Result: Result{Success: true, Message: "Review posted successfully!"},
		Review: review,
	})
}

// MyReviews godoc
// @ID          myReviews
// @Summary     The caller's reviews
// @Tags        Reviews
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object}  handlers.UserReviewsResponse
// @Failure     401  {object}  handlers.ErrorResponse "Not authenticated"
// @Router      /my-reviews/ [get]
func (h *Handlers) MyReviews(c *gin.Context) {
	reviews, err := h.reviews.ListForUser(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		failErr(c, err)
		return
	}
	out := make([]UserReview, len(reviews))
	for i, r := range reviews {
		out[i] = UserReview{
			ID:           r.ID,
			ItemID:       r.ItemID,
			ItemName:     r.Item.Name,
			Rating:       r.Rating,
			Text:         r.Text,
			CommentCount: r.CommentCount,
			CreatedAt:    r.CreatedAt,
		}
	}
	ok(c, http.StatusOK, UserReviewsResponse{Reviews: out})
}

// ListComments godoc
// @ID          listComments
// @Summary     Comments on a review
// @Tags        Reviews
// @Produce     json
// @Param       id   path      string  true  "Review ID"
// @Success     200  {object}  handlers.CommentsResponse
// @Failure     404  {object}  handlers.ErrorResponse "Review not found"
// @Router      /reviews/{id}/comments/ [get]
func (h *Handlers) ListComments(c *gin.Context) {
	comments, err := h.reviews.ListComments(c.Request.Context(), c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}
	if comments == nil {
		comments = []domain.ReviewComment{}
	}
	ok(c, http.StatusOK, CommentsResponse{Comments: comments})
}

// AddComment godoc
// @ID          addComment
// @Summary     Comment on a review
// @Description Creates a comment and increments the review's comment_count atomically.
// @Tags        Reviews
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id    path    string                   true  "Review ID"
// @Param       body  body    handlers.CommentRequest  true  "Comment"
// @Success     201  {object}  domain.ReviewComment
// @Failure     400  {object}  handlers.ErrorResponse "Validation failed"
// @Failure     401  {object}  handlers.ErrorResponse "Not authenticated"
// @Failure     404  {object}  handlers.ErrorResponse "Review not found"
// @Router      /reviews/{id}/comments/ [post]
func (h *Handlers) AddComment(c *gin.Context) {
	var req CommentRequest
	if err := c.ShouldBind(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeValidation, bindingMessage(err))
		return
	}
	cm, err := h.reviews.AddComment(c.Request.Context(), middleware.UserID(c), c.Param("id"), req.Text)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, cm)
}

// MarkHelpful godoc
// @ID          markHelpful
// @Summary     Upvote a comment
// @Tags        Reviews
// @Produce     json
// @Security    BearerAuth
// @Param       id   path      string  true  "Comment ID"
// @Success     200  {object}  domain.ReviewComment
// @Failure     401  {object}  handlers.ErrorResponse "Not authenticated"
// @Failure     404  {object}  handlers.ErrorResponse "Comment not found"
// @Router      /comments/{id}/helpful/ [post]
func (h *Handlers) MarkHelpful(c *gin.Context) {
	cm, err := h.reviews.MarkHelpful(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, cm)
}
