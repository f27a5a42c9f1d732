// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the standard response utilities used across all
// endpoints: the structured error envelope, the mapping from service errors
// to HTTP status and code, and the {success, message|error} envelope used by
// the review and favorite endpoints that browsers call from scripts.
//
// Conventions:
//   - All error responses return an ErrorResponse with a stable `code`,
//     except the script-facing endpoints which answer with Result.
//   - `fail()` centralizes error logging and formatting, ensuring 5xx
//     responses are logged with request context.
//   - Internal error details never reach the client.
//
// Example error response:
//
//	HTTP/1.1 404 Not Found
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "not_found",
//	  "message": "item not found"
//	}
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-chai-catalog/internal/http/middleware"
	"github.com/tbourn/go-chai-catalog/internal/services"
)

// ErrorResponse is the standard error envelope returned by all endpoints.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"not_found"`
	// Human-readable message (safe to show to users)
	Message string `json:"message" example:"item not found"`
}

// Result is the envelope of the script-facing write endpoints.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty" example:"Review posted successfully!"`
	Error   string `json:"error,omitempty"`
}

// fail aborts the request with a structured error and logs server-side errors.
func fail(c *gin.Context, status int, code, msg string) {
	resp := ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
	}

	if status >= http.StatusInternalServerError {
		lg := middleware.LoggerFrom(c)
		lg.Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail is the exported variant of fail(), used by the router for fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// classify maps a service error to (status, code, client message).
func classify(err error) (int, string, string) {
	switch {
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest, ErrCodeValidation, err.Error()
	case errors.Is(err, services.ErrUnauthenticated):
		return http.StatusUnauthorized, ErrCodeUnauthorized, err.Error()
	case errors.Is(err, services.ErrItemNotFound),
		errors.Is(err, services.ErrLocationNotFound),
		errors.Is(err, services.ErrReviewNotFound),
		errors.Is(err, services.ErrCommentNotFound):
		return http.StatusNotFound, ErrCodeNotFound, err.Error()
	case errors.Is(err, services.ErrDuplicateRating):
		return http.StatusConflict, ErrCodeDuplicateRating, err.Error()
	case errors.Is(err, services.ErrDuplicateCertificate):
		return http.StatusConflict, ErrCodeDuplicateCertificate, err.Error()
	default:
		return http.StatusInternalServerError, ErrCodeInternal, "internal error"
	}
}

// failErr writes the ErrorResponse matching err.
func failErr(c *gin.Context, err error) {
	status, code, msg := classify(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	fail(c, status, code, msg)
}

// failResult writes a Result{success:false} matching err.
func failResult(c *gin.Context, err error) {
	status, code, msg := classify(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		lg := middleware.LoggerFrom(c)
		lg.Error().Err(err).Str("code", code).Msg("api error")
	}
	c.AbortWithStatusJSON(status, Result{Success: false, Error: msg})
}

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// noContent writes an HTTP 204 No Content response.
func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
