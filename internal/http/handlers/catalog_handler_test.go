package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/tbourn/go-chai-catalog/internal/domain"
	"github.com/tbourn/go-chai-catalog/internal/services"
)

func newCatalogHandlers(cat stubCatalog) *Handlers {
	return New(cat, stubFavorites{}, stubReviews{}, stubLocations{}, nil)
}

func TestListItems_ParsesAndSanitizesFilters(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  services.ListQuery
	}{
		{
			name:  "no filters",
			query: "",
			want:  services.ListQuery{Bucket: domain.PriceAll, Page: 1},
		},
		{
			name:  "all filters",
			query: "?q=masala&chai_type=ML&chai_type=gr&price_range=50-100&min_rating=4&page=2",
			want: services.ListQuery{
				Search:     "masala",
				Categories: []domain.Category{domain.CategoryMasala, domain.CategoryGinger},
				Bucket:     domain.Price50to100,
				MinRating:  4,
				Page:       2,
			},
		},
		{
			name:  "invalid values are ignored",
			query: "?chai_type=XX&chai_type=PL&price_range=cheap&min_rating=lots&page=abc",
			want: services.ListQuery{
				Categories: []domain.Category{domain.CategoryPlain},
				Bucket:     domain.PriceAll,
				Page:       1,
			},
		},
		{
			name:  "bucket alias",
			query: "?price_range=gte200",
			want:  services.ListQuery{Bucket: domain.Price200AndUp, Page: 1},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got services.ListQuery
			h := newCatalogHandlers(stubCatalog{list: func(_ context.Context, q services.ListQuery) (*services.ItemPage, error) {
				got = q
				return &services.ItemPage{Items: []services.RatedItem{}, TotalPages: 1, CurrentPage: 1, PageSize: 12}, nil
			}})
			w := httptest.NewRecorder()
			testRouter(h).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/"+tc.query, nil))

			if w.Code != http.StatusOK {
				t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("query = %+v; want %+v", got, tc.want)
			}
		})
	}
}

func TestListItems_ETag(t *testing.T) {
	h := newCatalogHandlers(stubCatalog{version: func(context.Context) (string, error) { return "3.1.2.5", nil }})
	r := testRouter(h)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/?q=ginger", nil))
	etag := w.Header().Get("ETag")
	if w.Code != http.StatusOK || etag == "" {
		t.Fatalf("expected 200 with ETag, got %d %q", w.Code, etag)
	}

	req := httptest.NewRequest(http.MethodGet, "/?q=ginger", nil)
	req.Header.Set("If-None-Match", etag)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotModified {
		t.Fatalf("expected 304, got %d", w.Code)
	}

	// A different filter is a different representation.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/?q=kiwi", nil))
	if w.Header().Get("ETag") == etag {
		t.Fatalf("ETag must depend on the query")
	}
}

func TestListItems_VersionErrorStillServes(t *testing.T) {
	h := newCatalogHandlers(stubCatalog{version: func(context.Context) (string, error) { return "", errors.New("db") }})
	w := httptest.NewRecorder()
	testRouter(h).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK || w.Header().Get("ETag") != "" {
		t.Fatalf("expected 200 without ETag, got %d %q", w.Code, w.Header().Get("ETag"))
	}
}

func TestListItems_ServiceError(t *testing.T) {
	h := newCatalogHandlers(stubCatalog{list: func(context.Context, services.ListQuery) (*services.ItemPage, error) {
		return nil, errors.New("boom")
	}})
	w := httptest.NewRecorder()
	testRouter(h).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	var er ErrorResponse
	_ = json.Unmarshal(w.Body.Bytes(), &er)
	if w.Code != http.StatusInternalServerError || er.Code != ErrCodeInternal || er.Message != "internal error" {
		t.Fatalf("unexpected: %d %+v", w.Code, er)
	}
}

func TestItemDetail_PassesCaller(t *testing.T) {
	avg := "4.50"
	h := newCatalogHandlers(stubCatalog{detail: func(_ context.Context, itemID, userID string) (*services.ItemDetail, error) {
		if itemID != "i1" || userID != "u1" {
			t.Fatalf("got item=%q user=%q", itemID, userID)
		}
		return &services.ItemDetail{
			RatedItem:     services.RatedItem{Item: domain.Item{ID: "i1"}, AverageRating: &avg, ReviewCount: 2},
			FavoriteCount: 3,
			IsFavorite:    true,
		}, nil
	}})
	req := httptest.NewRequest(http.MethodGet, "/i1/", nil)
	req.Header.Set("X-User-ID", "u1")
	w := httptest.NewRecorder()
	testRouter(h).ServeHTTP(w, req)

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if w.Code != http.StatusOK || body["average_rating"] != "4.50" || body["is_favorite"] != true || body["favorite_count"].(float64) != 3 {
		t.Fatalf("unexpected: %d %v", w.Code, body)
	}
}

func TestItemDetail_NotFound(t *testing.T) {
	w := httptest.NewRecorder()
	testRouter(newCatalogHandlers(stubCatalog{})).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing/", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestShortLists(t *testing.T) {
	avg := "5.00"
	h := newCatalogHandlers(stubCatalog{
		top: func(context.Context) ([]services.RatedItem, error) {
			return []services.RatedItem{{Item: domain.Item{ID: "a"}, AverageRating: &avg, ReviewCount: 1}}, nil
		},
	})
	r := testRouter(h)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/top-rated/", nil))
	var top ListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &top); err != nil || w.Code != http.StatusOK {
		t.Fatalf("top-rated: %d %v", w.Code, err)
	}
	if top.Title != "Top Rated Chais" || len(top.Items) != 1 || top.Items[0].ID != "a" {
		t.Fatalf("unexpected top-rated: %+v", top)
	}

	// Empty lists are [] not null.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/recently-added/", nil))
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatalf("json: %v", err)
	}
	if string(raw["items"]) != "[]" {
		t.Fatalf("expected empty array, got %s", raw["items"])
	}
}
