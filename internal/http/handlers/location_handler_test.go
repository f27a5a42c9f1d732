package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/tbourn/go-chai-catalog/internal/domain"
	"github.com/tbourn/go-chai-catalog/internal/http/middleware"
	"github.com/tbourn/go-chai-catalog/internal/services"
)

func TestStoreFinder(t *testing.T) {
	cat := stubCatalog{choices: func(context.Context) ([]domain.Item, error) {
		return []domain.Item{{ID: "i1", Name: "Masala"}, {ID: "i2", Name: "Plain"}}, nil
	}}
	loc := stubLocations{forItem: func(_ context.Context, itemID string) (*services.StoreFinder, error) {
		if itemID == "missing" {
			return nil, services.ErrItemNotFound
		}
		return &services.StoreFinder{
			Item:      domain.Item{ID: itemID},
			Locations: []services.RatedLocation{{Location: domain.Location{ID: "l1", Name: "Corner"}, RatingCount: 0}},
		}, nil
	}}
	r := testRouter(New(cat, stubFavorites{}, stubReviews{}, loc, nil))

	decode := func(w *httptest.ResponseRecorder) map[string]json.RawMessage {
		t.Helper()
		out := map[string]json.RawMessage{}
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("json: %v (%s)", err, w.Body.String())
		}
		return out
	}

	// Selector only.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/chai_stores/", nil))
	body := decode(w)
	if w.Code != http.StatusOK || string(body["stores"]) != "null" || !strings.Contains(string(body["choices"]), "Masala") {
		t.Fatalf("GET: %d %s", w.Code, w.Body.String())
	}

	// Form POST selection.
	req := httptest.NewRequest(http.MethodPost, "/chai_stores/", strings.NewReader(url.Values{"chai_variety": {"i1"}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var resp StoreFinderResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || w.Code != http.StatusOK {
		t.Fatalf("POST: %d %s", w.Code, w.Body.String())
	}
	if resp.Item == nil || resp.Item.ID != "i1" || len(resp.Stores) != 1 || resp.Stores[0].AverageRating != nil {
		t.Fatalf("unexpected: %+v", resp)
	}

	// Query selection with unknown item.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/chai_stores/?chai_variety=missing", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}

	// POST without a selection.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, postJSON("/chai_stores/", "", `{}`))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestListStores_EmptyIsArray(t *testing.T) {
	w := httptest.NewRecorder()
	testRouter(New(stubCatalog{}, stubFavorites{}, stubReviews{}, stubLocations{}, nil)).
		ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stores/", nil))
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != `{"stores":[]}` {
		t.Fatalf("unexpected: %d %s", w.Code, w.Body.String())
	}
}

func TestStoreDetail(t *testing.T) {
	loc := stubLocations{detail: func(_ context.Context, id, userID string) (*services.LocationDetail, error) {
		if id != "l1" {
			return nil, services.ErrLocationNotFound
		}
		d := &services.LocationDetail{RatedLocation: services.RatedLocation{Location: domain.Location{ID: id}}}
		if userID != "" {
			d.UserRating = &domain.LocationRating{UserID: userID, Rating: 4}
		}
		return d, nil
	}}
	r := testRouter(New(stubCatalog{}, stubFavorites{}, stubReviews{}, loc, nil))

	req := httptest.NewRequest(http.MethodGet, "/stores/l1/", nil)
	req.Header.Set(middleware.HeaderUserID, "u1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var d services.LocationDetail
	if err := json.Unmarshal(w.Body.Bytes(), &d); err != nil || d.UserRating == nil || d.UserRating.UserID != "u1" {
		t.Fatalf("detail: %d %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stores/nope/", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestRateStore(t *testing.T) {
	rated := map[string]bool{}
	loc := stubLocations{rate: func(_ context.Context, userID, id string, value int, comment string) (*domain.LocationRating, error) {
		if rated[userID+id] {
			return nil, services.ErrDuplicateRating
		}
		rated[userID+id] = true
		return &domain.LocationRating{ID: "lr", LocationID: id, UserID: userID, Rating: value, Comment: comment}, nil
	}}
	r := testRouter(New(stubCatalog{}, stubFavorites{}, stubReviews{}, loc, nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, postJSON("/stores/l1/", "u1", `{"rating":5,"comment":"great"}`))
	var lr domain.LocationRating
	if err := json.Unmarshal(w.Body.Bytes(), &lr); err != nil || w.Code != http.StatusCreated || lr.Rating != 5 {
		t.Fatalf("first rating: %d %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, postJSON("/stores/l1/", "u1", `{"rating":1}`))
	var er ErrorResponse
	_ = json.Unmarshal(w.Body.Bytes(), &er)
	if w.Code != http.StatusConflict || er.Code != ErrCodeDuplicateRating {
		t.Fatalf("duplicate: %d %+v", w.Code, er)
	}

	tests := []struct {
		name string
		user string
		body string
		want int
	}{
		{"anonymous", "", `{"rating":5}`, http.StatusUnauthorized},
		{"zero rating", "u2", `{"rating":0}`, http.StatusBadRequest},
		{"long comment", "u2", `{"rating":3,"comment":"` + strings.Repeat("x", 1001) + `"}`, http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, postJSON("/stores/l1/", tc.user, tc.body))
			if w.Code != tc.want {
				t.Fatalf("status=%d want %d", w.Code, tc.want)
			}
		})
	}

	// Form submissions redirect back to the store.
	req := httptest.NewRequest(http.MethodPost, "/stores/l2/", strings.NewReader(url.Values{"rating": {"4"}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set(middleware.HeaderUserID, "u1")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/stores/l2/" {
		t.Fatalf("form: %d %q", w.Code, w.Header().Get("Location"))
	}
}
