// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file establishes caller identity. Users are managed by an external
// identity provider that issues HS256-signed bearer tokens; the service only
// verifies them. Verified identity is stored in the Gin context so handlers,
// the rate limiter and the idempotency validator agree on who is calling.
//
// Accepted identity sources, in order:
//   - Authorization: Bearer <jwt> with "sub" (or "user_id") and optional "role"
//   - X-User-ID, only when TrustHeader is enabled (trusted proxy / dev setups)
//
// Anonymous requests pass through Authenticate untouched; RequireUser and
// RequireAdmin gate the routes that need an identity.
package middleware

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/tbourn/go-chai-catalog/internal/sysutil"
)

const (
	// CtxUserID is the Gin context key holding the caller's user id.
	CtxUserID = "userID"
	// CtxRole is the Gin context key holding the caller's role claim.
	CtxRole = "role"

	// HeaderUserID carries the caller id from a trusted proxy.
	HeaderUserID = "X-User-ID"
	// HeaderAdminToken carries the static management token.
	HeaderAdminToken = "X-Admin-Token"

	// RoleAdmin grants access to the management API.
	RoleAdmin = "admin"
)

var errBadToken = errors.New("invalid bearer token")

// Claims are the token claims the service understands.
type Claims struct {
	UserID string `json:"user_id,omitempty"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// AuthOptions configures Authenticate and RequireAdmin.
type AuthOptions struct {
	// Secret verifies HS256 tokens. Empty disables bearer verification and
	// any bearer token is rejected.
	Secret []byte
	// TrustHeader accepts X-User-ID when no bearer token is sent.
	TrustHeader bool
	// AdminToken, when set, is accepted in X-Admin-Token on admin routes.
	AdminToken string
	// Leeway tolerates clock skew on exp/nbf. Zero means 30s.
	Leeway time.Duration
}

// Authenticate resolves the caller identity, if any, and stores it under
// CtxUserID / CtxRole. A present but invalid bearer token yields 401.
func Authenticate(opts AuthOptions) gin.HandlerFunc {
	leeway := opts.Leeway
	if leeway <= 0 {
		leeway = 30 * time.Second
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(leeway),
	)

	return func(c *gin.Context) {
		if raw, ok := bearer(c.GetHeader("Authorization")); ok {
			claims, err := parseClaims(parser, raw, opts.Secret)
			if err != nil {
				LoggerFrom(c).Debug().Err(err).Msg("rejected bearer token")
				abortJSON(c, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
				return
			}
			c.Set(CtxUserID, sysutil.FirstNonEmpty(claims.Subject, claims.UserID))
			c.Set(CtxRole, claims.Role)
			attachLogger(c)
			c.Next()
			return
		}
		if opts.TrustHeader {
			if uid := strings.TrimSpace(c.GetHeader(HeaderUserID)); uid != "" {
				c.Set(CtxUserID, uid)
				attachLogger(c)
			}
		}
		c.Next()
	}
}

// attachLogger refreshes the scoped logger so it carries the user id.
func attachLogger(c *gin.Context) {
	lg := scopedLogger(c)
	c.Set(loggerKey, &lg)
}

func bearer(h string) (string, bool) {
	scheme, tok, ok := strings.Cut(strings.TrimSpace(h), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}

func parseClaims(p *jwt.Parser, raw string, secret []byte) (*Claims, error) {
	if len(secret) == 0 {
		return nil, errBadToken
	}
	claims := &Claims{}
	tok, err := p.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) { return secret, nil })
	if err != nil {
		return nil, err
	}
	if !tok.Valid || sysutil.FirstNonEmpty(claims.Subject, claims.UserID) == "" {
		return nil, errBadToken
	}
	return claims, nil
}

// UserID returns the authenticated caller id, or "" for anonymous requests.
func UserID(c *gin.Context) string {
	if v, ok := c.Get(CtxUserID); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// RequireUser rejects anonymous requests with 401.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if UserID(c) == "" {
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}
		c.Next()
	}
}

// RequireAdmin admits callers holding the admin role claim or presenting the
// configured admin token. Anonymous callers get 401, others 403.
func RequireAdmin(opts AuthOptions) gin.HandlerFunc {
	token := []byte(opts.AdminToken)
	return func(c *gin.Context) {
		if len(token) > 0 {
			if got := []byte(c.GetHeader(HeaderAdminToken)); len(got) > 0 && subtle.ConstantTimeCompare(got, token) == 1 {
				c.Next()
				return
			}
		}
		if role, _ := c.Get(CtxRole); role == RoleAdmin && UserID(c) != "" {
			c.Next()
			return
		}
		if UserID(c) == "" {
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}
		abortJSON(c, http.StatusForbidden, "forbidden", "admin access required")
	}
}
