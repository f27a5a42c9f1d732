// Package services – FavoriteService
//
// This file implements the favorite toggle. A toggle is one write
// transaction: insert the (user, item) row unless present, and when nothing
// was inserted delete it instead. The unique index on (user_id, item_id) is
// the backstop, so racing toggles for the same pair never leave two rows.

package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-chai-catalog/internal/domain"
	"github.com/tbourn/go-chai-catalog/internal/observability"
	"github.com/tbourn/go-chai-catalog/internal/repo"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ToggleResult is the state after a toggle.
type ToggleResult struct {
	Favorited     bool  `json:"favorited"`
	FavoriteCount int64 `json:"favorite_count"`
}

// FavoriteService manages user favorites.
type FavoriteService struct {
	DB *gorm.DB
}

// Toggle flips the favorite state of (userID, itemID) and returns the new
// state with the item's favorite count.
func (s *FavoriteService) Toggle(ctx context.Context, userID, itemID string) (*ToggleResult, error) {
	tr := otel.Tracer("services/FavoriteService")
	ctx, span := tr.Start(ctx, "Toggle",
		trace.WithAttributes(
			attribute.String("item.id", itemID),
			attribute.String("user.id", userID),
		),
	)
	defer span.End()

	if userID == "" {
		return nil, ErrUnauthenticated
	}
	// Checked outside the transaction so it stays write-first.
	ok, err := repo.ItemExists(ctx, s.DB, itemID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrItemNotFound
	}

	var favorited bool
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inserted, err := repo.InsertFavoriteIfAbsent(ctx, tx, userID, itemID)
		if err != nil {
			return err
		}
		if inserted {
			favorited = true
			return nil
		}
		_, err = repo.DeleteFavorite(ctx, tx, userID, itemID)
		return err
	})
	if err != nil {
		return nil, err
	}

	count, err := repo.CountFavorites(ctx, s.DB, itemID)
	if err != nil {
		return nil, err
	}
	observability.RecordFavoriteToggle(favorited)
	span.SetAttributes(attribute.Bool("favorited", favorited))
	return &ToggleResult{Favorited: favorited, FavoriteCount: count}, nil
}

// ListForUser returns the caller's favorites with items, newest first.
func (s *FavoriteService) ListForUser(ctx context.Context, userID string) ([]domain.Favorite, error) {
	tr := otel.Tracer("services/FavoriteService")
	ctx, span := tr.Start(ctx, "ListForUser",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	if userID == "" {
		return nil, ErrUnauthenticated
	}
	return repo.ListFavoritesByUser(ctx, s.DB, userID)
}
