// Package services – ReviewService
//
// This file implements review submission, the caller's review history, and
// review comments. Reviews are never deduplicated per (user, item); a client
// that needs safe retries sends an idempotency key, and a replay returns the
// review created by the first attempt.
//
// Comment creation and the parent review's comment_count increment run in
// one transaction, keeping comment_count equal to the number of comments.

package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-chai-catalog/internal/cache"
	"github.com/tbourn/go-chai-catalog/internal/domain"
	"github.com/tbourn/go-chai-catalog/internal/observability"
	"github.com/tbourn/go-chai-catalog/internal/rating"
	"github.com/tbourn/go-chai-catalog/internal/repo"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// errReplayRace signals that a concurrent request stored the same key first.
var errReplayRace = errors.New("idempotency key taken concurrently")

// ReviewInput is a validated-at-boundary review submission.
type ReviewInput struct {
	Rating int
	Text   string
}

// ReviewService manages reviews and their comments.
type ReviewService struct {
	DB *gorm.DB

	// Optional list cache invalidated after new reviews.
	Cache cache.Cache

	// IdempotencyTTL bounds how long a key replays; zero means 24h.
	IdempotencyTTL time.Duration
}

func validateReview(in ReviewInput) (ReviewInput, error) {
	if !rating.Valid(in.Rating) {
		return in, invalid("rating", ErrInvalidRating)
	}
	in.Text = strings.TrimSpace(in.Text)
	if in.Text == "" {
		return in, invalid("review_text", ErrEmptyText)
	}
	return in, nil
}

// Submit validates in and creates a new review of itemID by userID.
func (s *ReviewService) Submit(ctx context.Context, userID, itemID string, in ReviewInput) (*domain.Review, error) {
	r, _, err := s.SubmitIdempotent(ctx, userID, itemID, "", in)
	return r, err
}

// SubmitIdempotent is Submit with an optional idempotency key. When key was
// already used by userID for itemID, the original review is returned with
// replayed=true and nothing is written.
func (s *ReviewService) SubmitIdempotent(ctx context.Context, userID, itemID, key string, in ReviewInput) (review *domain.Review, replayed bool, err error) {
	tr := otel.Tracer("services/ReviewService")
	ctx, span := tr.Start(ctx, "Submit",
		trace.WithAttributes(
			attribute.String("item.id", itemID),
			attribute.String("user.id", userID),
			attribute.Int("rating", in.Rating),
			attribute.Bool("idempotent", key != ""),
		),
	)
	defer span.End()

	if userID == "" {
		return nil, false, ErrUnauthenticated
	}
	if in, err = validateReview(in); err != nil {
		return nil, false, err
	}

	if key != "" {
		if r, ok := s.replay(ctx, userID, itemID, key); ok {
			span.SetAttributes(attribute.Bool("replayed", true))
			return r, true, nil
		}
	}

	ok, err := repo.ItemExists(ctx, s.DB, itemID)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, ErrItemNotFound
	}

	r := &domain.Review{ItemID: itemID, UserID: userID, Text: in.Text, Rating: in.Rating}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.CreateReview(ctx, tx, r); err != nil {
			return err
		}
		if key == "" {
			return nil
		}
		_, err := repo.CreateIdempotency(ctx, tx, userID, itemID, key, r.ID, http.StatusCreated, s.ttl())
		if errors.Is(err, repo.ErrDuplicate) {
			return errReplayRace
		}
		return err
	})
	if errors.Is(err, errReplayRace) {
		if prev, ok := s.replay(ctx, userID, itemID, key); ok {
			return prev, true, nil
		}
	}
	if err != nil {
		return nil, false, err
	}

	observability.RecordReview(r.Rating)
	invalidateLists(ctx, s.Cache)
	return r, false, nil
}

func (s *ReviewService) replay(ctx context.Context, userID, itemID, key string) (*domain.Review, bool) {
	rec, err := repo.GetIdempotency(ctx, s.DB, userID, itemID, key, time.Now().UTC())
	if err != nil {
		return nil, false
	}
	r, err := repo.GetReview(ctx, s.DB, rec.ResourceID)
	if err != nil {
		return nil, false
	}
	return r, true
}

func (s *ReviewService) ttl() time.Duration {
	if s.IdempotencyTTL > 0 {
		return s.IdempotencyTTL
	}
	return 24 * time.Hour
}

// ListForUser returns the caller's reviews with their items, newest first.
func (s *ReviewService) ListForUser(ctx context.Context, userID string) ([]domain.Review, error) {
	tr := otel.Tracer("services/ReviewService")
	ctx, span := tr.Start(ctx, "ListForUser",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	if userID == "" {
		return nil, ErrUnauthenticated
	}
	return repo.ListReviewsByUser(ctx, s.DB, userID)
}

// AddComment creates a comment on reviewID and increments the review's
// comment_count in the same transaction.
func (s *ReviewService) AddComment(ctx context.Context, userID, reviewID, text string) (*domain.ReviewComment, error) {
	tr := otel.Tracer("services/ReviewService")
	ctx, span := tr.Start(ctx, "AddComment",
		trace.WithAttributes(
			attribute.String("review.id", reviewID),
			attribute.String("user.id", userID),
		),
	)
	defer span.End()

	if userID == "" {
		return nil, ErrUnauthenticated
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, invalid("comment_text", ErrEmptyText)
	}

	c := &domain.ReviewComment{ReviewID: reviewID, UserID: userID, Text: text}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The increment doubles as the existence check and takes the write
		// lock before the insert.
		if err := repo.IncrementCommentCount(ctx, tx, reviewID); err != nil {
			return err
		}
		return repo.CreateComment(ctx, tx, c)
	})
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrReviewNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListComments returns the comments on reviewID in posting order.
func (s *ReviewService) ListComments(ctx context.Context, reviewID string) ([]domain.ReviewComment, error) {
	tr := otel.Tracer("services/ReviewService")
	ctx, span := tr.Start(ctx, "ListComments",
		trace.WithAttributes(attribute.String("review.id", reviewID)),
	)
	defer span.End()

	if _, err := repo.GetReview(ctx, s.DB, reviewID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return repo.ListComments(ctx, s.DB, reviewID)
}

// MarkHelpful adds one helpful vote to commentID and returns the comment.
func (s *ReviewService) MarkHelpful(ctx context.Context, userID, commentID string) (*domain.ReviewComment, error) {
	tr := otel.Tracer("services/ReviewService")
	ctx, span := tr.Start(ctx, "MarkHelpful",
		trace.WithAttributes(
			attribute.String("comment.id", commentID),
			attribute.String("user.id", userID),
		),
	)
	defer span.End()

	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if err := repo.IncrementHelpful(ctx, s.DB, commentID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	return repo.GetComment(ctx, s.DB, commentID)
}
