// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for locations,
// their carried items (location_items join table) and location ratings.
package repo

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-chai-catalog/internal/domain"
)

// CreateLocation inserts loc without touching its Items association.
func CreateLocation(ctx context.Context, db *gorm.DB, loc *domain.Location) error {
	if loc.ID == "" {
		loc.ID = uuid.NewString()
	}
	if loc.CreatedAt.IsZero() {
		loc.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Omit("Items").Create(loc).Error
}

// GetLocation fetches a location by ID with its items preloaded, or ErrNotFound.
func GetLocation(ctx context.Context, db *gorm.DB, id string) (*domain.Location, error) {
	var loc domain.Location
	err := db.WithContext(ctx).
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("items.name ASC") }).
		Where("id = ?", id).
		First(&loc).Error
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

// ListLocations returns every location ordered by name.
func ListLocations(ctx context.Context, db *gorm.DB) ([]domain.Location, error) {
	var out []domain.Location
	err := db.WithContext(ctx).Order("name ASC, id ASC").Find(&out).Error
	return out, err
}

// ListLocationsForItem returns the locations carrying itemID, ordered by name.
func ListLocationsForItem(ctx context.Context, db *gorm.DB, itemID string) ([]domain.Location, error) {
	var out []domain.Location
	err := db.WithContext(ctx).
		Joins("JOIN location_items ON location_items.location_id = locations.id").
		Where("location_items.item_id = ?", itemID).
		Order("locations.name ASC, locations.id ASC").
		Find(&out).Error
	return out, err
}

// SetLocationItems replaces the set of items carried by a location. Unknown
// item IDs are ignored. It returns ErrNotFound when the location is missing.
func SetLocationItems(ctx context.Context, db *gorm.DB, locationID string, itemIDs []string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var loc domain.Location
		if err := tx.Where("id = ?", locationID).First(&loc).Error; err != nil {
			return err
		}
		items, err := ListItemsByIDs(ctx, tx, itemIDs)
		if err != nil {
			return err
		}
		return tx.Model(&loc).Association("Items").Replace(items)
	})
}

// CreateLocationRating inserts a rating. A second rating by the same user for
// the same location yields ErrDuplicate.
func CreateLocationRating(ctx context.Context, db *gorm.DB, r *domain.LocationRating) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	if err := db.WithContext(ctx).Omit("Location").Create(r).Error; err != nil {
		if IsDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// ListLocationRatings returns the ratings of a location, newest first.
func ListLocationRatings(ctx context.Context, db *gorm.DB, locationID string) ([]domain.LocationRating, error) {
	var out []domain.LocationRating
	err := db.WithContext(ctx).
		Where("location_id = ?", locationID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

// SearchLocationRatings lists ratings whose user ID, comment or location name
// contains q (case-insensitive), newest first, at most limit rows.
func SearchLocationRatings(ctx context.Context, db *gorm.DB, q string, limit int) ([]domain.LocationRating, error) {
	var out []domain.LocationRating
	tx := db.WithContext(ctx).
		Joins("JOIN locations ON locations.id = location_ratings.location_id")
	if q = strings.TrimSpace(q); q != "" {
		pat := "%" + likeEscaper.Replace(strings.ToLower(q)) + "%"
		tx = tx.Where(`(LOWER(location_ratings.user_id) LIKE ? ESCAPE '\' OR LOWER(location_ratings.comment) LIKE ? ESCAPE '\' OR LOWER(locations.name) LIKE ? ESCAPE '\')`, pat, pat, pat)
	}
	err := tx.Order("location_ratings.created_at DESC, location_ratings.id DESC").Limit(limit).Find(&out).Error
	return out, err
}
