// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Review model.
//
// Functions:
//
//   - CreateReview(ctx, db, review) -> error
//   - GetReview(ctx, db, id) -> *domain.Review, error
//   - ListReviewsByItem(ctx, db, itemID) -> []domain.Review, error
//   - ListReviewsByUser(ctx, db, userID) -> []domain.Review, error
//   - IncrementCommentCount(ctx, db, reviewID) -> error
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-chai-catalog/internal/domain"
)

// CreateReview inserts review, assigning a UUID and UTC timestamp when unset.
func CreateReview(ctx context.Context, db *gorm.DB, r *domain.Review) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Omit("Item").Create(r).Error
}

// GetReview fetches a single review by ID, or ErrNotFound.
func GetReview(ctx context.Context, db *gorm.DB, id string) (*domain.Review, error) {
	var r domain.Review
	if err := db.WithContext(ctx).Where("id = ?", id).First(&r).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

// ListReviewsByItem returns every review of an item, newest first.
func ListReviewsByItem(ctx context.Context, db *gorm.DB, itemID string) ([]domain.Review, error) {
	var out []domain.Review
	err := db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

// ListReviewsByUser returns every review written by a user with its item
// preloaded, newest first.
func ListReviewsByUser(ctx context.Context, db *gorm.DB, userID string) ([]domain.Review, error) {
	var out []domain.Review
	err := db.WithContext(ctx).
		Preload("Item").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

// IncrementCommentCount bumps the denormalized comment counter by one. It
// returns ErrNotFound when the review does not exist.
func IncrementCommentCount(ctx context.Context, db *gorm.DB, reviewID string) error {
	res := db.WithContext(ctx).
		Model(&domain.Review{}).
		Where("id = ?", reviewID).
		UpdateColumn("comment_count", gorm.Expr("comment_count + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
