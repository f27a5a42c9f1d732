package repo

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-chai-catalog/internal/domain"
)

// newTestDB opens a unique in-memory database per test and migrates the
// given models (all catalog models when none are given).
func newTestDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if len(migrate) == 0 {
		migrate = domain.All()
	}
	if err := db.AutoMigrate(migrate...); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		t.Cleanup(func() { _ = sqlDB.Close() })
	}
	return db
}

var seedBase = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// seedItem inserts an item created n minutes after seedBase.
func seedItem(t *testing.T, db *gorm.DB, id, name string, cat domain.Category, price string, n int) *domain.Item {
	t.Helper()
	it := &domain.Item{
		ID:        id,
		Name:      name,
		Category:  cat,
		Price:     decimal.RequireFromString(price),
		CreatedAt: seedBase.Add(time.Duration(n) * time.Minute),
		UpdatedAt: seedBase.Add(time.Duration(n) * time.Minute),
	}
	if err := CreateItem(context.Background(), db, it); err != nil {
		t.Fatalf("seed item %s: %v", id, err)
	}
	return it
}

// seedReviews inserts one review per rating for itemID.
func seedReviews(t *testing.T, db *gorm.DB, itemID string, ratings ...int) {
	t.Helper()
	for i, r := range ratings {
		rv := &domain.Review{
			ItemID: itemID,
			UserID: fmt.Sprintf("u%d", i),
			Text:   "ok",
			Rating: r,
		}
		if err := CreateReview(context.Background(), db, rv); err != nil {
			t.Fatalf("seed review: %v", err)
		}
	}
}
