// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for review
// comments and their helpful votes.
package repo

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-chai-catalog/internal/domain"
)

// CreateComment inserts c. Callers keep the parent review's comment_count in
// step by running IncrementCommentCount in the same transaction.
func CreateComment(ctx context.Context, db *gorm.DB, c *domain.ReviewComment) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Omit("Review").Create(c).Error
}

// GetComment fetches a comment by ID, or ErrNotFound.
func GetComment(ctx context.Context, db *gorm.DB, id string) (*domain.ReviewComment, error) {
	var c domain.ReviewComment
	if err := db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// ListComments returns the comments of a review in posting order.
func ListComments(ctx context.Context, db *gorm.DB, reviewID string) ([]domain.ReviewComment, error) {
	var out []domain.ReviewComment
	err := db.WithContext(ctx).
		Where("review_id = ?", reviewID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

// IncrementHelpful adds one helpful vote to a comment. It returns ErrNotFound
// when the comment does not exist.
func IncrementHelpful(ctx context.Context, db *gorm.DB, commentID string) error {
	res := db.WithContext(ctx).
		Model(&domain.ReviewComment{}).
		Where("id = ?", commentID).
		UpdateColumn("helpful", gorm.Expr("helpful + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SearchComments lists comments whose user ID or text contains q
// (case-insensitive), newest first, at most limit rows.
func SearchComments(ctx context.Context, db *gorm.DB, q string, limit int) ([]domain.ReviewComment, error) {
	var out []domain.ReviewComment
	tx := db.WithContext(ctx)
	if q = strings.TrimSpace(q); q != "" {
		pat := "%" + likeEscaper.Replace(strings.ToLower(q)) + "%"
		tx = tx.Where(`(LOWER(user_id) LIKE ? ESCAPE '\' OR LOWER(text) LIKE ? ESCAPE '\')`, pat, pat)
	}
	err := tx.Order("created_at DESC, id DESC").Limit(limit).Find(&out).Error
	return out, err
}
