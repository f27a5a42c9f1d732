// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Favorite
// model. The insert is conflict-tolerant so concurrent toggles of the same
// (user, item) pair never produce a second row.
package repo

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-chai-catalog/internal/domain"
)

// InsertFavoriteIfAbsent creates the (userID, itemID) row unless it already
// exists. It reports whether a row was inserted.
func InsertFavoriteIfAbsent(ctx context.Context, db *gorm.DB, userID, itemID string) (bool, error) {
	f := &domain.Favorite{
		ID:        uuid.NewString(),
		UserID:    userID,
		ItemID:    itemID,
		CreatedAt: time.Now().UTC(),
	}
	res := db.WithContext(ctx).
		Omit("Item").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "item_id"}},
			DoNothing: true,
		}).
		Create(f)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// DeleteFavorite removes the (userID, itemID) row and reports whether one
// existed.
func DeleteFavorite(ctx context.Context, db *gorm.DB, userID, itemID string) (bool, error) {
	res := db.WithContext(ctx).
		Where("user_id = ? AND item_id = ?", userID, itemID).
		Delete(&domain.Favorite{})
	return res.RowsAffected > 0, res.Error
}

// FavoriteExists reports whether userID has favorited itemID.
func FavoriteExists(ctx context.Context, db *gorm.DB, userID, itemID string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Favorite{}).
		Where("user_id = ? AND item_id = ?", userID, itemID).
		Count(&n).Error
	return n > 0, err
}

// CountFavorites returns how many users have favorited itemID.
func CountFavorites(ctx context.Context, db *gorm.DB, itemID string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Favorite{}).
		Where("item_id = ?", itemID).
		Count(&n).Error
	return n, err
}

// ListFavoritesByUser returns a user's favorites with items preloaded,
// most recently favorited first.
func ListFavoritesByUser(ctx context.Context, db *gorm.DB, userID string) ([]domain.Favorite, error) {
	var out []domain.Favorite
	err := db.WithContext(ctx).
		Preload("Item").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

// SearchFavorites lists favorites whose user ID or item name contains q
// (case-insensitive), newest first, at most limit rows.
func SearchFavorites(ctx context.Context, db *gorm.DB, q string, limit int) ([]domain.Favorite, error) {
	var out []domain.Favorite
	tx := db.WithContext(ctx).
		Preload("Item").
		Joins("JOIN items ON items.id = favorites.item_id")
	if q = strings.TrimSpace(q); q != "" {
		pat := "%" + likeEscaper.Replace(strings.ToLower(q)) + "%"
		tx = tx.Where(`(LOWER(favorites.user_id) LIKE ? ESCAPE '\' OR LOWER(items.name) LIKE ? ESCAPE '\')`, pat, pat)
	}
	err := tx.Order("favorites.created_at DESC, favorites.id DESC").Limit(limit).Find(&out).Error
	return out, err
}
