package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_RouteLabelsAndInflight(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Metrics())
	r.GET("/:id/", func(c *gin.Context) { c.String(http.StatusOK, "item") })
	r.POST("/:id/favorite/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	baseItem := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/:id/", "200"))
	baseFav := testutil.ToFloat64(httpReqs.WithLabelValues("POST", "/:id/favorite/", "204"))
	baseMiss := testutil.ToFloat64(httpReqs.WithLabelValues("GET", unmatchedRoute, "404"))

	for _, p := range []string{"/a/", "/b/"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/a/favorite/", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/a/b/c/d", nil))

	if got := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/:id/", "200")); got != baseItem+2 {
		t.Fatalf("item counter = %v; want %v", got, baseItem+2)
	}
	if got := testutil.ToFloat64(httpReqs.WithLabelValues("POST", "/:id/favorite/", "204")); got != baseFav+1 {
		t.Fatalf("favorite counter = %v; want %v", got, baseFav+1)
	}
	if got := testutil.ToFloat64(httpReqs.WithLabelValues("GET", unmatchedRoute, "404")); got != baseMiss+1 {
		t.Fatalf("unmatched counter = %v; want %v", got, baseMiss+1)
	}
	if inFlight := testutil.ToFloat64(httpInflight); inFlight != 0 {
		t.Fatalf("httpInflight = %v; want 0", inFlight)
	}
}
