// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate/statistics queries:
// batched rating aggregates for items and locations, and catalog metadata
// used for conditional responses (ETag generation) in the HTTP layer.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-chai-catalog/internal/domain"
	"github.com/tbourn/go-chai-catalog/internal/rating"
)

// RatingStat is one aggregate row: the sum and count of ratings for ID.
type RatingStat struct {
	ID          string
	RatingSum   int64
	RatingCount int64
}

// Summary converts the row into a rating summary.
func (s RatingStat) Summary() rating.Summary {
	return rating.FromSumCount(s.RatingSum, s.RatingCount)
}

// ItemRatingStats aggregates review ratings for the given items in one query.
// Items without reviews are absent from the returned map.
func ItemRatingStats(ctx context.Context, db *gorm.DB, itemIDs []string) (map[string]rating.Summary, error) {
	return ratingStats(ctx, db, "reviews", "item_id", itemIDs)
}

// LocationRatingStats aggregates location ratings for the given locations in
// one query. Locations without ratings are absent from the returned map.
func LocationRatingStats(ctx context.Context, db *gorm.DB, locationIDs []string) (map[string]rating.Summary, error) {
	return ratingStats(ctx, db, "location_ratings", "location_id", locationIDs)
}

func ratingStats(ctx context.Context, db *gorm.DB, table, col string, ids []string) (map[string]rating.Summary, error) {
	out := make(map[string]rating.Summary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []RatingStat
	err := db.WithContext(ctx).
		Table(table).
		Select(col+" AS id, SUM(rating) AS rating_sum, COUNT(*) AS rating_count").
		Where(col+" IN ?", ids).
		Group(col).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.ID] = r.Summary()
	}
	return out, nil
}

// CatalogStats returns the number of items and the greatest UpdatedAt among
// them. When the catalog is empty, count is 0 and maxUpdatedAt is nil.
func CatalogStats(ctx context.Context, db *gorm.DB) (count int64, maxUpdatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.Item{})

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	if err = q.Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}

// ReviewStats returns the number of reviews on itemID (on every item when
// itemID is empty) and the greatest UpdatedAt among them.
func ReviewStats(ctx context.Context, db *gorm.DB, itemID string) (count int64, maxUpdatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.Review{})
	if itemID != "" {
		q = q.Where("item_id = ?", itemID)
	}

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	var row struct {
		UpdatedAt time.Time
	}
	if err = q.Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}
