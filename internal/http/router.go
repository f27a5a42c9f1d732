// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// identity, CORS, security headers, idempotency, rate limiting and response
// compression.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/go-chai-catalog/internal/cache"
	"github.com/tbourn/go-chai-catalog/internal/config"
	"github.com/tbourn/go-chai-catalog/internal/http/handlers"
	"github.com/tbourn/go-chai-catalog/internal/http/middleware"
	"github.com/tbourn/go-chai-catalog/internal/repo"
	"github.com/tbourn/go-chai-catalog/internal/services"
)

const (
	publicBodyLimit = 1 << 20
	defaultUpload   = 5 << 20
	// multipart framing on top of the image itself
	uploadSlack = 64 << 10
)

// Deps carries the optional collaborators built by main.
type Deps struct {
	Cache  cache.Cache         // nil means no list caching
	Images services.ImageStore // nil disables image uploads
}

// idempotencyLookup adapts repo.GetIdempotency to the middleware callback.
// A miss is not an error.
func idempotencyLookup(db *gorm.DB) middleware.IdempotencyLookup {
	return func(ctx context.Context, userID, scope, key string, now time.Time) (bool, error) {
		rec, err := repo.GetIdempotency(ctx, db, userID, scope, key, now)
		if errors.Is(err, repo.ErrNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return rec != nil, nil
	}
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), identity,
// idempotency and rate limiting, CORS and security headers, health and
// metrics endpoints, and then mounts the public catalog under
// cfg.APIBasePath and the management API under /admin.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Authenticate: resolve caller identity (JWT or trusted header)
//  6. Metrics
//  7. Idempotency validator (before rate limiter to allow bypass on replay)
//  8. Rate limiter (per user/IP, writes only, bypass on replay)
//  9. CORS and Security headers
//  10. gzip
//
// Body size limits are applied per route group so uploads under /admin can
// exceed the public cap.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config, deps Deps) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{middleware.HeaderAdminToken},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Caller identity
	authOpts := middleware.AuthOptions{
		Secret:      []byte(cfg.Auth.JWTSecret),
		TrustHeader: cfg.Auth.TrustHeader,
		AdminToken:  cfg.Auth.AdminToken,
	}
	r.Use(middleware.Authenticate(authOpts))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Idempotency validation (before rate limiting), review submission only
	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{MaxLen: 200, Routes: []string{reviewRoute(cfg.APIBasePath)}},
		idempotencyLookup(db),
	))

	// 8) Token-bucket rate limiter per user/IP; browsing stays unthrottled
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	rl.WritesOnly = true
	r.Use(rl.Handler())

	// 9) CORS posture (safe defaults: allow all if none configured)
	allowHeaders := []string{
		"Origin", "Content-Type", "Accept", "Authorization",
		middleware.HeaderUserID, middleware.HeaderAdminToken,
		middleware.HeaderIdempotencyKey, "If-None-Match",
	}
	exposeHeaders := []string{"X-Request-ID", "Content-Length", "ETag", middleware.HeaderIdempotencyReplayed}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    exposeHeaders,
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    exposeHeaders,
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:      cfg.Security.EnableHSTS,
		HSTSMaxAge:      cfg.Security.HSTSMaxAge,
		PrivateForUsers: true,
		EnablePolicy:    true,
	}))

	// 10) Compress JSON bodies; the Prometheus handler negotiates its own.
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", health(db))

	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	if cfg.Media.Dir != "" {
		r.Static("/media", cfg.Media.Dir)
	}

	// Dependency injection: services ← repo/db/cache/media
	listCache := deps.Cache
	if listCache == nil {
		listCache = cache.Noop{}
	}
	catalogSvc := &services.CatalogService{
		DB:       db,
		PageSize: cfg.PageSize,
		Cache:    listCache,
		CacheTTL: cfg.Cache.TTL,
	}
	favSvc := &services.FavoriteService{DB: db}
	reviewSvc := &services.ReviewService{
		DB:             db,
		Cache:          listCache,
		IdempotencyTTL: cfg.IdempotencyTTL,
	}
	locSvc := &services.LocationService{DB: db}
	adminSvc := &services.AdminService{
		DB:     db,
		Images: deps.Images,
		Cache:  listCache,
	}

	h := handlers.New(catalogSvc, favSvc, reviewSvc, locSvc, adminSvc)
	h.MaxUploadBytes = cfg.Media.MaxUploadBytes
	if h.MaxUploadBytes <= 0 {
		h.MaxUploadBytes = defaultUpload
	}

	// Public catalog
	api := groupWithPrefix(r, cfg.APIBasePath)
	api.Use(limitBody(publicBodyLimit))
	{
		// Items
		api.GET("/", h.ListItems)
		api.GET("/top-rated/", h.TopRated)
		api.GET("/recently-added/", h.RecentlyAdded)
		api.GET("/:id/", h.ItemDetail)
		api.POST("/:id/", h.SubmitReview)
		api.POST("/:id/favorite/", h.ToggleFavorite)

		// Per-user pages
		api.GET("/my-favorites/", middleware.RequireUser(), h.MyFavorites)
		api.GET("/my-reviews/", middleware.RequireUser(), h.MyReviews)

		// Stores
		api.GET("/chai_stores/", h.StoreFinder)
		api.POST("/chai_stores/", h.StoreFinder)
		api.GET("/stores/", h.ListStores)
		api.GET("/stores/:id/", h.StoreDetail)
		api.POST("/stores/:id/", h.RateStore)

		// Review comments
		api.GET("/reviews/:id/comments/", h.ListComments)
		api.POST("/reviews/:id/comments/", middleware.RequireUser(), h.AddComment)
		api.POST("/comments/:id/helpful/", middleware.RequireUser(), h.MarkHelpful)
	}

	// Management
	adm := r.Group("/admin", middleware.RequireAdmin(authOpts), limitBody(h.MaxUploadBytes+uploadSlack))
	{
		adm.POST("/items", h.CreateItem)
		adm.PUT("/items/:id", h.UpdateItem)
		adm.DELETE("/items/:id", h.DeleteItem)
		adm.POST("/locations", h.CreateLocation)
		adm.PUT("/locations/:id/items", h.SetLocationItems)
		adm.POST("/certificates", h.IssueCertificate)
		adm.GET("/certificates", h.ListCertificates)
		adm.GET("/favorites", h.SearchFavorites)
		adm.GET("/location-ratings", h.SearchLocationRatings)
		adm.GET("/comments", h.SearchComments)
	}
}

// health reports liveness and whether the database answers a ping.
func health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			middleware.LoggerFrom(c).Warn().Err(err).Msg("health: database unreachable")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "db": "down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "up"})
	}
}

// limitBody returns a Gin middleware that caps the request body size to
// maxBytes using http.MaxBytesReader. Requests exceeding the cap will cause
// downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// reviewRoute is the FullPath gin reports for POST {base}/:id/.
func reviewRoute(prefix string) string {
	return strings.TrimSuffix(prefix, "/") + "/:id/"
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
