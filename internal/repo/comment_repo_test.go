package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/go-chai-catalog/internal/domain"
)

func TestCommentRepo(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedItem(t, db, "a", "A", domain.CategoryMasala, "10.00", 1)
	rv := &domain.Review{ItemID: "a", UserID: "u1", Text: "good", Rating: 4}
	if err := CreateReview(ctx, db, rv); err != nil {
		t.Fatalf("CreateReview: %v", err)
	}

	c1 := &domain.ReviewComment{ReviewID: rv.ID, UserID: "u2", Text: "agreed", CreatedAt: seedBase}
	c2 := &domain.ReviewComment{ReviewID: rv.ID, UserID: "u3", Text: "nope", CreatedAt: seedBase.Add(time.Minute)}
	for _, c := range []*domain.ReviewComment{c2, c1} {
		if err := CreateComment(ctx, db, c); err != nil {
			t.Fatalf("CreateComment: %v", err)
		}
	}

	list, err := ListComments(ctx, db, rv.ID)
	if err != nil || len(list) != 2 || list[0].ID != c1.ID {
		t.Fatalf("ListComments: got %+v err=%v", list, err)
	}

	if err := IncrementHelpful(ctx, db, c1.ID); err != nil {
		t.Fatalf("IncrementHelpful: %v", err)
	}
	got, err := GetComment(ctx, db, c1.ID)
	if err != nil || got.Helpful != 1 {
		t.Fatalf("GetComment: got %+v err=%v", got, err)
	}
	if err := IncrementHelpful(ctx, db, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
