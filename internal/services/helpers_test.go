package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-chai-catalog/internal/domain"
	"github.com/tbourn/go-chai-catalog/internal/repo"
)

// newSvcDB opens a unique in-memory database with the full schema.
func newSvcDB(t *testing.T) *gorm.DB {
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
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		t.Cleanup(func() { _ = sqlDB.Close() })
	}
	return db
}

// newFileDB opens a temp-file database through the production bootstrap,
// for tests that exercise concurrent writers.
func newFileDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repo.OpenSQLite(filepath.Join(t.TempDir(), "svc.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	db.Logger = logger.Default.LogMode(logger.Silent)
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		t.Cleanup(func() { _ = sqlDB.Close() })
	}
	return db
}

var base = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func addItem(t *testing.T, db *gorm.DB, id string, cat domain.Category, price string, minute int) {
	t.Helper()
	it := &domain.Item{
		ID:        id,
		Name:      "Chai " + id,
		Category:  cat,
		Price:     decimal.RequireFromString(price),
		CreatedAt: base.Add(time.Duration(minute) * time.Minute),
	}
	if err := repo.CreateItem(context.Background(), db, it); err != nil {
		t.Fatalf("seed item %s: %v", id, err)
	}
}

func addReviews(t *testing.T, db *gorm.DB, itemID string, ratings ...int) {
	t.Helper()
	for i, r := range ratings {
		rv := &domain.Review{ItemID: itemID, UserID: fmt.Sprintf("seed-%d", i), Text: "seed", Rating: r}
		if err := repo.CreateReview(context.Background(), db, rv); err != nil {
			t.Fatalf("seed review: %v", err)
		}
	}
}

func itemIDs(items []RatedItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
