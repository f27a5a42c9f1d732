package services

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationError(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", invalid("rating", ErrInvalidRating))

	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected errors.Is(err, ErrValidation)")
	}
	if !errors.Is(err, ErrInvalidRating) {
		t.Fatalf("expected errors.Is(err, ErrInvalidRating)")
	}
	if errors.Is(err, ErrEmptyText) {
		t.Fatalf("unexpected match on ErrEmptyText")
	}
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "rating" {
		t.Fatalf("expected ValidationError on rating, got %#v", ve)
	}
	if got := ve.Error(); got != "rating: "+ErrInvalidRating.Error() {
		t.Fatalf("unexpected message %q", got)
	}
	if got := (&ValidationError{Err: ErrEmptyName}).Error(); got != ErrEmptyName.Error() {
		t.Fatalf("unexpected message without field %q", got)
	}
}
