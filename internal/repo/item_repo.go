// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Item model,
// including the composite filter used by the catalog listing.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When an item is not found, functions return ErrNotFound.
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
//
// Functions:
//
//   - CreateItem(ctx, db, item) -> error
//   - GetItem(ctx, db, id) -> *domain.Item, error
//   - ItemExists(ctx, db, id) -> bool, error
//   - UpdateItem(ctx, db, item) -> error
//   - DeleteItem(ctx, db, id) -> error
//   - CountItems(ctx, db, filter) -> int64, error
//   - ListItemsPage(ctx, db, filter, offset, limit) -> []domain.Item, error
//   - ListRecentItems(ctx, db, limit) -> []domain.Item, error
//   - ListItemsByIDs(ctx, db, ids) -> []domain.Item, error
//   - TopRatedItemStats(ctx, db, limit) -> []RatingStat, error
package repo

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-chai-catalog/internal/domain"
)

// ItemFilter describes the listing filter. Zero values disable a dimension:
// empty Search, nil Categories, PriceAll (or "") Bucket and MinRating <= 0.
// Dimensions are combined with AND; Categories are combined with OR.
type ItemFilter struct {
	Search     string
	Categories []domain.Category
	Bucket     domain.PriceBucket
	MinRating  int
}

// likeEscaper escapes LIKE wildcards so user text matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// scopeItems applies f to a query over the items table.
func scopeItems(q *gorm.DB, f ItemFilter) *gorm.DB {
	if s := strings.TrimSpace(f.Search); s != "" {
		pat := "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
		q = q.Where(`(LOWER(items.name) LIKE ? ESCAPE '\' OR LOWER(items.description) LIKE ? ESCAPE '\')`, pat, pat)
	}
	if len(f.Categories) > 0 {
		q = q.Where("items.category IN ?", f.Categories)
	}
	if lo, hi := f.Bucket.Bounds(); lo != nil || hi != nil {
		if lo != nil {
			q = q.Where("items.price >= ?", *lo)
		}
		if hi != nil {
			q = q.Where("items.price < ?", *hi)
		}
	}
	if f.MinRating > 0 {
		sub := q.Session(&gorm.Session{NewDB: true}).
			Table("reviews").
			Select("reviews.item_id").
			Group("reviews.item_id").
			Having("AVG(reviews.rating) >= ?", f.MinRating)
		q = q.Where("items.id IN (?)", sub)
	}
	return q
}

// CreateItem inserts item, assigning a UUID and UTC timestamps when unset.
func CreateItem(ctx context.Context, db *gorm.DB, item *domain.Item) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(item).Error
}

// GetItem fetches a single item by ID, or ErrNotFound.
func GetItem(ctx context.Context, db *gorm.DB, id string) (*domain.Item, error) {
	var it domain.Item
	if err := db.WithContext(ctx).Where("id = ?", id).First(&it).Error; err != nil {
		return nil, err
	}
	return &it, nil
}

// ItemExists reports whether an item with id exists.
func ItemExists(ctx context.Context, db *gorm.DB, id string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.Item{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

// UpdateItem saves the mutable columns of item. It returns ErrNotFound when
// no row matched.
func UpdateItem(ctx context.Context, db *gorm.DB, item *domain.Item) error {
	res := db.WithContext(ctx).
		Model(&domain.Item{}).
		Where("id = ?", item.ID).
		Updates(map[string]any{
			"name":        item.Name,
			"category":    item.Category,
			"description": item.Description,
			"price":       item.Price,
			"image":       item.Image,
			"updated_at":  time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteItem removes an item; dependent rows cascade. It returns ErrNotFound
// when no row matched.
func DeleteItem(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Item{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountItems returns the number of items matching f.
func CountItems(ctx context.Context, db *gorm.DB, f ItemFilter) (int64, error) {
	var total int64
	err := scopeItems(db.WithContext(ctx).Model(&domain.Item{}), f).Count(&total).Error
	return total, err
}

// ListItemsPage returns a page of items matching f, most recent first.
// Ties on created_at are broken by id so pages are deterministic.
func ListItemsPage(ctx context.Context, db *gorm.DB, f ItemFilter, offset, limit int) ([]domain.Item, error) {
	var out []domain.Item
	err := scopeItems(db.WithContext(ctx).Model(&domain.Item{}), f).
		Order("items.created_at DESC, items.id DESC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// ListRecentItems returns the limit most recently created items.
func ListRecentItems(ctx context.Context, db *gorm.DB, limit int) ([]domain.Item, error) {
	var out []domain.Item
	err := db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// ListItemChoices returns every item ordered by name, for selection lists.
func ListItemChoices(ctx context.Context, db *gorm.DB) ([]domain.Item, error) {
	var out []domain.Item
	err := db.WithContext(ctx).Order("name ASC, id ASC").Find(&out).Error
	return out, err
}

// ListItemsByIDs loads the given items in no particular order.
func ListItemsByIDs(ctx context.Context, db *gorm.DB, ids []string) ([]domain.Item, error) {
	if len(ids) == 0 {
		return []domain.Item{}, nil
	}
	var out []domain.Item
	err := db.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error
	return out, err
}

// TopRatedItemStats returns rating sums and counts of the limit items with the
// highest mean review rating. Items without reviews never appear. Ties are
// broken by recency.
func TopRatedItemStats(ctx context.Context, db *gorm.DB, limit int) ([]RatingStat, error) {
	var rows []RatingStat
	err := db.WithContext(ctx).
		Table("reviews").
		Select("reviews.item_id AS id, SUM(reviews.rating) AS rating_sum, COUNT(*) AS rating_count").
		Joins("JOIN items ON items.id = reviews.item_id").
		Group("reviews.item_id, items.created_at").
		Order("AVG(reviews.rating) DESC, items.created_at DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}
