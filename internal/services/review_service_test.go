package services

import (
	"context"
	"errors"
	"testing"

	"github.com/tbourn/go-chai-catalog/internal/domain"
	"github.com/tbourn/go-chai-catalog/internal/repo"
)

func TestSubmit_Validation(t *testing.T) {
	db := newSvcDB(t)
	addItem(t, db, "a", domain.CategoryMasala, "10.00", 1)
	svc := &ReviewService{DB: db}
	ctx := context.Background()

	cases := []struct {
		name   string
		user   string
		item   string
		in     ReviewInput
		target error
		field  string
	}{
		{"anonymous", "", "a", ReviewInput{Rating: 5, Text: "x"}, ErrUnauthenticated, ""},
		{"rating above range", "u1", "a", ReviewInput{Rating: 6, Text: "x"}, ErrInvalidRating, "rating"},
		{"rating below range", "u1", "a", ReviewInput{Rating: 0, Text: "x"}, ErrInvalidRating, "rating"},
		{"blank text", "u1", "a", ReviewInput{Rating: 3, Text: "   "}, ErrEmptyText, "review_text"},
		{"unknown item", "u1", "zzz", ReviewInput{Rating: 3, Text: "ok"}, ErrItemNotFound, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Submit(ctx, tc.user, tc.item, tc.in)
			if !errors.Is(err, tc.target) {
				t.Fatalf("expected %v, got %v", tc.target, err)
			}
			if tc.field != "" {
				var ve *ValidationError
				if !errors.As(err, &ve) || ve.Field != tc.field {
					t.Fatalf("expected ValidationError on %q, got %#v", tc.field, err)
				}
			}
		})
	}

	var n int64
	db.Model(&domain.Review{}).Count(&n)
	if n != 0 {
		t.Fatalf("rejected submissions must not persist, found %d reviews", n)
	}
}

func TestSubmit_PersistsAndAllowsRepeats(t *testing.T) {
	db := newSvcDB(t)
	addItem(t, db, "a", domain.CategoryMasala, "10.00", 1)
	svc := &ReviewService{DB: db}
	ctx := context.Background()

	r, err := svc.Submit(ctx, "u1", "a", ReviewInput{Rating: 5, Text: "  Great  "})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	got, err := repo.GetReview(ctx, db, r.ID)
	if err != nil {
		t.Fatalf("GetReview: %v", err)
	}
	if got.Rating != 5 || got.Text != "Great" || got.UserID != "u1" || got.CommentCount != 0 {
		t.Fatalf("unexpected stored review: %+v", got)
	}

	// The same user may review the same item again.
	if _, err := svc.Submit(ctx, "u1", "a", ReviewInput{Rating: 2, Text: "Meh"}); err != nil {
		t.Fatalf("second Submit: %v", err)
	}
	mine, err := svc.ListForUser(ctx, "u1")
	if err != nil || len(mine) != 2 {
		t.Fatalf("ListForUser: %d err=%v", len(mine), err)
	}
	if mine[0].Item.ID != "a" {
		t.Fatalf("expected item preloaded, got %+v", mine[0].Item)
	}
}

func TestSubmitIdempotent_Replays(t *testing.T) {
	db := newSvcDB(t)
	addItem(t, db, "a", domain.CategoryMasala, "10.00", 1)
	addItem(t, db, "b", domain.CategoryMasala, "10.00", 2)
	svc := &ReviewService{DB: db}
	ctx := context.Background()

	first, replayed, err := svc.SubmitIdempotent(ctx, "u1", "a", "k-1", ReviewInput{Rating: 4, Text: "Nice"})
	if err != nil || replayed {
		t.Fatalf("first submit: replayed=%v err=%v", replayed, err)
	}
	again, replayed, err := svc.SubmitIdempotent(ctx, "u1", "a", "k-1", ReviewInput{Rating: 1, Text: "Other"})
	if err != nil || !replayed || again.ID != first.ID || again.Rating != 4 {
		t.Fatalf("replay: id=%s replayed=%v err=%v", again.ID, replayed, err)
	}

	// Keys are scoped per user and per item.
	if _, replayed, _ := svc.SubmitIdempotent(ctx, "u2", "a", "k-1", ReviewInput{Rating: 3, Text: "x"}); replayed {
		t.Fatalf("key must not replay across users")
	}
	if _, replayed, _ := svc.SubmitIdempotent(ctx, "u1", "b", "k-1", ReviewInput{Rating: 3, Text: "x"}); replayed {
		t.Fatalf("key must not replay across items")
	}

	var n int64
	db.Model(&domain.Review{}).Count(&n)
	if n != 3 {
		t.Fatalf("expected 3 reviews, got %d", n)
	}
}

func TestComments_CountMatchesRows(t *testing.T) {
	db := newSvcDB(t)
	addItem(t, db, "a", domain.CategoryMasala, "10.00", 1)
	svc := &ReviewService{DB: db}
	ctx := context.Background()

	r, err := svc.Submit(ctx, "u1", "a", ReviewInput{Rating: 4, Text: "Good"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	for _, text := range []string{"agree", "  disagree ", "+1"} {
		if _, err := svc.AddComment(ctx, "u2", r.ID, text); err != nil {
			t.Fatalf("AddComment: %v", err)
		}
	}
	if _, err := svc.AddComment(ctx, "u2", r.ID, "   "); !errors.Is(err, ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
	if _, err := svc.AddComment(ctx, "u2", "nope", "hi"); !errors.Is(err, ErrReviewNotFound) {
		t.Fatalf("expected ErrReviewNotFound, got %v", err)
	}
	if _, err := svc.AddComment(ctx, "", r.ID, "hi"); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}

	comments, err := svc.ListComments(ctx, r.ID)
	if err != nil {
		t.Fatalf("ListComments: %v", err)
	}
	stored, _ := repo.GetReview(ctx, db, r.ID)
	if stored.CommentCount != len(comments) || len(comments) != 3 {
		t.Fatalf("comment_count=%d, rows=%d", stored.CommentCount, len(comments))
	}
	if comments[1].Text != "disagree" {
		t.Fatalf("expected posting order and trimmed text, got %q", comments[1].Text)
	}

	c, err := svc.MarkHelpful(ctx, "u3", comments[0].ID)
	if err != nil || c.Helpful != 1 {
		t.Fatalf("MarkHelpful: %+v err=%v", c, err)
	}
	if _, err := svc.MarkHelpful(ctx, "u3", "nope"); !errors.Is(err, ErrCommentNotFound) {
		t.Fatalf("expected ErrCommentNotFound, got %v", err)
	}
	if _, err := svc.ListComments(ctx, "nope"); !errors.Is(err, ErrReviewNotFound) {
		t.Fatalf("expected ErrReviewNotFound, got %v", err)
	}
}
