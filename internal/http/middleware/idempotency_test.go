package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

type lookupCall struct {
	user, scope, key string
}

func idemRouter(opts IdempotencyOptions, lookup IdempotencyLookup) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), Authenticate(AuthOptions{TrustHeader: true}), IdempotencyValidator(opts, lookup))
	handler := func(c *gin.Context) {
		key, _ := GetIdempotencyKey(c)
		if IsReplay(c) {
			c.Header(HeaderIdempotencyReplayed, "true")
		}
		c.String(http.StatusOK, key)
	}
	r.POST("/:id/", handler)
	r.GET("/:id/", handler)
	return r
}

func TestIdempotencyValidator_ScopesLookupByCallerAndItem(t *testing.T) {
	var calls []lookupCall
	lookup := func(_ context.Context, user, scope, key string, now time.Time) (bool, error) {
		if now.IsZero() || now.Location() != time.UTC {
			t.Fatalf("lookup must receive UTC now")
		}
		calls = append(calls, lookupCall{user, scope, key})
		return scope == "item-1" && key == "k-1", nil
	}
	r := idemRouter(IdempotencyOptions{}, lookup)

	send := func(method, path, user, key string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(method, path, nil)
		if user != "" {
			req.Header.Set(HeaderUserID, user)
		}
		if key != "" {
			req.Header.Set(HeaderIdempotencyKey, key)
		}
		r.ServeHTTP(w, req)
		return w
	}

	w := send(http.MethodPost, "/item-1/", "u1", "k-1")
	if w.Code != http.StatusOK || w.Body.String() != "k-1" || w.Header().Get(HeaderIdempotencyReplayed) != "true" {
		t.Fatalf("expected replay, got %d %q %v", w.Code, w.Body.String(), w.Header())
	}
	if len(calls) != 1 || calls[0] != (lookupCall{"u1", "item-1", "k-1"}) {
		t.Fatalf("unexpected lookup calls %v", calls)
	}

	if w := send(http.MethodPost, "/item-2/", "u1", "k-1"); w.Header().Get(HeaderIdempotencyReplayed) != "" {
		t.Fatalf("different item must not replay")
	}

	// Anonymous callers and safe methods never hit the lookup.
	calls = nil
	send(http.MethodPost, "/item-1/", "", "k-1")
	send(http.MethodGet, "/item-1/", "u1", "k-1")
	send(http.MethodPost, "/item-1/", "u1", "")
	if len(calls) != 0 {
		t.Fatalf("lookup must be skipped, got %v", calls)
	}
}

func TestIdempotencyValidator_RoutesLimitsLookup(t *testing.T) {
	var scopes []string
	lookup := func(_ context.Context, _, scope, _ string, _ time.Time) (bool, error) {
		scopes = append(scopes, scope)
		return true, nil
	}
	r := idemRouter(IdempotencyOptions{Routes: []string{"/:id/"}}, lookup)
	r.POST("/:id/favorite/", func(c *gin.Context) {
		_, hasKey := GetIdempotencyKey(c)
		if hasKey || IsReplay(c) || IsRateBypass(c) {
			c.String(http.StatusConflict, "key honoured outside review route")
			return
		}
		c.String(http.StatusOK, "")
	})

	send := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.Header.Set(HeaderUserID, "u1")
		req.Header.Set(HeaderIdempotencyKey, "k-1")
		r.ServeHTTP(w, req)
		return w
	}

	if w := send("/item-1/favorite/"); w.Code != http.StatusOK {
		t.Fatalf("favorite: %d %s", w.Code, w.Body.String())
	}
	if len(scopes) != 0 {
		t.Fatalf("lookup ran for unlisted route: %v", scopes)
	}
	if w := send("/item-1/"); w.Header().Get(HeaderIdempotencyReplayed) != "true" {
		t.Fatalf("listed route must replay, got %v", w.Header())
	}
	if len(scopes) != 1 || scopes[0] != "item-1" {
		t.Fatalf("unexpected lookups %v", scopes)
	}
}

func TestIdempotencyValidator_RejectsMalformedKeys(t *testing.T) {
	r := idemRouter(IdempotencyOptions{MaxLen: 8, Pattern: regexp.MustCompile(`^[a-z0-9-]+$`)}, nil)
	for _, key := range []string{"way-too-long-key", "UPPER", "has space"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/x/", nil)
		req.Header.Set(HeaderIdempotencyKey, key)
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "bad_idempotency_key") {
			t.Fatalf("key %q: got %d %s", key, w.Code, w.Body.String())
		}
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/x/", nil)
	req.Header.Set(HeaderIdempotencyKey, "ok-1")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Body.String() != "ok-1" {
		t.Fatalf("valid key rejected: %d %s", w.Code, w.Body.String())
	}
}

func TestIdempotencyValidator_LookupErrorIsNotReplay(t *testing.T) {
	buf := captureLogger(t)
	lookup := func(context.Context, string, string, string, time.Time) (bool, error) {
		return false, errors.New("db down")
	}
	r := idemRouter(IdempotencyOptions{}, lookup)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/item-1/", nil)
	req.Header.Set(HeaderUserID, "u1")
	req.Header.Set(HeaderIdempotencyKey, "k")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK || w.Header().Get(HeaderIdempotencyReplayed) != "" {
		t.Fatalf("lookup failure must fall through, got %d", w.Code)
	}
	if !strings.Contains(buf.String(), "idempotency lookup failed") {
		t.Fatalf("expected warning log, got %s", buf.String())
	}
}

func TestIdempotencyAccessors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	if k, ok := GetIdempotencyKey(c); k != "" || ok {
		t.Fatalf("expected no key")
	}
	c.Set(ctxKeyIdemKey, 123)
	if _, ok := GetIdempotencyKey(c); ok {
		t.Fatalf("non-string key must read as absent")
	}
	c.Set(ctxKeyIdemReplay, "yes")
	if IsReplay(c) {
		t.Fatalf("non-bool replay flag must read as false")
	}
	c.Set(ctxKeyIdemReplay, true)
	if !IsReplay(c) {
		t.Fatalf("expected replay")
	}
}
