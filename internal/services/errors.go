// Package services defines the business logic of the chai catalog: the
// listing filter engine, favorite and rating state changes, reviews with
// their comments, and the management operations used by administrators.
//
// This file centralizes service-level error values so that they can be
// consistently returned by service methods and checked by callers.
// Translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import "errors"

// Lookup and identity errors.
var (
	// ErrItemNotFound indicates that the referenced item does not exist.
	ErrItemNotFound = errors.New("item not found")

	// ErrLocationNotFound indicates that the referenced location does not exist.
	ErrLocationNotFound = errors.New("location not found")

	// ErrReviewNotFound indicates that the referenced review does not exist.
	ErrReviewNotFound = errors.New("review not found")

	// ErrCommentNotFound indicates that the referenced comment does not exist.
	ErrCommentNotFound = errors.New("comment not found")

	// ErrUnauthenticated is returned by write operations invoked without a
	// caller identity.
	ErrUnauthenticated = errors.New("authentication required")
)

// Validation errors. Each is wrapped in a *ValidationError when returned.
var (
	// ErrValidation matches every *ValidationError via errors.Is.
	ErrValidation = errors.New("validation failed")

	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
	ErrEmptyText       = errors.New("text must not be empty")
	ErrInvalidPrice    = errors.New("price must be a non-negative amount with at most two decimals")
	ErrInvalidCategory = errors.New("unknown category")
	ErrEmptyName       = errors.New("name must not be empty")
	ErrInvalidWindow   = errors.New("valid_until must be after date_issued")
)

// Uniqueness conflicts.
var (
	// ErrDuplicateRating is returned when a user rates the same location twice.
	ErrDuplicateRating = errors.New("you have already rated this store")

	// ErrDuplicateCertificate is returned when the user already holds a
	// certificate or the number is taken.
	ErrDuplicateCertificate = errors.New("certificate already exists")
)

// ValidationError reports invalid caller input. Field names the offending
// input as it appears on the wire.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return e.Field + ": " + e.Err.Error()
}

// Unwrap exposes the specific cause.
func (e *ValidationError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrValidation) true for any *ValidationError.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}
