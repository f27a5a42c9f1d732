package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/go-chai-catalog/internal/domain"
)

func TestGetIdempotency_NoScope_ReturnsNotFound(t *testing.T) {
	db := newTestDB(t, &domain.Idempotency{})
	now := time.Now().UTC()

	rec, err := GetIdempotency(context.Background(), db, "u1", "   ", "k1", now)
	if rec != nil || !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected (nil, ErrNotFound) for empty scope, got (%v, %v)", rec, err)
	}
}

func TestGetIdempotency_ExpiredOrMissing_ReturnsNotFound(t *testing.T) {
	db := newTestDB(t, &domain.Idempotency{})
	now := time.Now().UTC()

	exp := &domain.Idempotency{
		ID:         "expired",
		UserID:     "u1",
		Scope:      "item-1",
		Key:        "k1",
		ResourceID: "r1",
		Status:     201,
		CreatedAt:  now.Add(-2 * time.Hour),
		ExpiresAt:  now.Add(-time.Hour),
	}
	if err := db.Create(exp).Error; err != nil {
		t.Fatalf("insert expired: %v", err)
	}

	if rec, err := GetIdempotency(context.Background(), db, "u1", "item-1", "k1", now); rec != nil || !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired: expected (nil, ErrNotFound), got (%v, %v)", rec, err)
	}
	if rec, err := GetIdempotency(context.Background(), db, "u1", "item-1", "nope", now); rec != nil || !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing: expected (nil, ErrNotFound), got (%v, %v)", rec, err)
	}
}

func TestGetIdempotency_Valid_ReturnsRecord(t *testing.T) {
	db := newTestDB(t, &domain.Idempotency{})
	ctx := context.Background()

	if _, err := CreateIdempotency(ctx, db, "u1", "item-1", "k1", "r1", 201, time.Hour); err != nil {
		t.Fatalf("create: %v", err)
	}
	rec, err := GetIdempotency(ctx, db, "u1", "item-1", "k1", time.Now().UTC())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.ResourceID != "r1" || rec.Status != 201 {
		t.Fatalf("unexpected record: %+v", rec)
	}

	// Another user with the same key sees nothing.
	if _, err := GetIdempotency(ctx, db, "u2", "item-1", "k1", time.Now().UTC()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for other user, got %v", err)
	}
}

func TestCreateIdempotency_DuplicateReturnsErrDuplicate(t *testing.T) {
	db := newTestDB(t, &domain.Idempotency{})
	ctx := context.Background()

	if _, err := CreateIdempotency(ctx, db, "u1", "item-1", "k1", "r1", 201, time.Hour); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := CreateIdempotency(ctx, db, "u1", "item-1", "k1", "r2", 201, time.Hour)
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	// Same key under a different scope is allowed.
	if _, err := CreateIdempotency(ctx, db, "u1", "item-2", "k1", "r3", 201, time.Hour); err != nil {
		t.Fatalf("other scope: %v", err)
	}
}

func TestCreateIdempotency_NoTable_ReturnsRawError(t *testing.T) {
	db := newTestDB(t, &domain.Item{})

	_, err := CreateIdempotency(context.Background(), db, "u1", "item-1", "k1", "r1", 201, time.Hour)
	if err == nil || errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected non-duplicate error, got %v", err)
	}
}

func TestPurgeExpiredIdempotency(t *testing.T) {
	db := newTestDB(t, &domain.Idempotency{})
	ctx := context.Background()
	now := time.Now().UTC()

	if _, err := CreateIdempotency(ctx, db, "u1", "s", "live", "r1", 201, time.Hour); err != nil {
		t.Fatalf("create live: %v", err)
	}
	old := &domain.Idempotency{
		ID: "old", UserID: "u1", Scope: "s", Key: "old", ResourceID: "r0", Status: 201,
		CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Minute),
	}
	if err := db.Create(old).Error; err != nil {
		t.Fatalf("insert old: %v", err)
	}

	n, err := PurgeExpiredIdempotency(ctx, db, now)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 purged row, got %d", n)
	}
	var left int64
	db.Model(&domain.Idempotency{}).Count(&left)
	if left != 1 {
		t.Fatalf("expected 1 remaining row, got %d", left)
	}
}
