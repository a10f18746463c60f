// Package middleware provides Gin HTTP middleware for authentication,
// rate limiting, security headers, request IDs, and metrics.
//
// Middleware ordering matters and is enforced in router.go:
//
//	RequestID → Security → Metrics → RateLimit → Auth → Handler
//
// Security headers run early so they appear on all responses including errors.
// Rate limiting runs before auth to block brute-force attacks before any DB work.
// Auth populates the caller identity the handler packages read from context.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cookbook/cookbook-backend/internal/auth"
	"github.com/cookbook/cookbook-backend/internal/db/repositories"
	"github.com/cookbook/cookbook-backend/internal/telemetry"
)

// Context keys set by the auth middleware and read by handlers.
const (
	CtxUsername = "username"
	CtxAccount  = "account"
	CtxJTI      = "jti"
)

// authenticateStatic validates the static credential on the request and
// stores the embedded identity in the context. On failure it writes the
// rejection response and returns false. It never calls c.Next(): advancing
// the chain is the enclosing middleware's decision, so callers can stack
// further checks before the handler runs.
func authenticateStatic(c *gin.Context, tokens *auth.StaticTokenService) bool {
	header := c.GetHeader("Authorization")
	if header == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "Missing authorization header",
		})
		return false
	}

	identity, err := tokens.Validate(c.Request.Context(), header)
	if err != nil {
		switch err {
		case auth.ErrTokenUnknown:
			telemetry.TokenValidationFailuresTotal.WithLabelValues("static", "unknown").Inc()
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Unknown token",
			})
		case auth.ErrTokenInvalid:
			telemetry.TokenValidationFailuresTotal.WithLabelValues("static", "invalid").Inc()
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid token",
			})
		default:
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "Authentication failed",
			})
		}
		return false
	}

	c.Set(CtxUsername, identity.Username)
	return true
}

// StaticTokenAuth validates a static token from the Authorization header and
// stores the embedded identity in the request context. Unknown and invalid
// tokens are rejected with distinct messages so operators can tell a revoked
// credential from a forged one.
func StaticTokenAuth(tokens *auth.StaticTokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticateStatic(c, tokens) {
			return
		}
		c.Next()
	}
}

// AdminTokenAuth is StaticTokenAuth plus an account check: the token owner
// must resolve to a live account with is_admin set. The account is stored in
// the context for the users/me handler.
func AdminTokenAuth(tokens *auth.StaticTokenService, accounts *repositories.AccountRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticateStatic(c, tokens) {
			return
		}

		username := c.GetString(CtxUsername)
		account, err := accounts.GetByUsername(c.Request.Context(), username)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to load account",
			})
			return
		}
		if account == nil || !account.IsAdmin {
			// A valid token owned by a non-admin account is still rejected
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid token",
			})
			return
		}

		c.Set(CtxAccount, account)
		c.Next()
	}
}

// SessionAuth validates a session token from the Authorization header. The
// three rejection modes keep distinct messages: a token that does not parse
// at all, a token with a bad signature or past expiry, and a verified token
// whose jti has been revoked.
func SessionAuth(sessions *auth.SessionTokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Missing authorization header",
			})
			return
		}

		identity, outcome, err := sessions.Validate(c.Request.Context(), header)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "Authentication failed",
			})
			return
		}

		switch outcome {
		case auth.TokenMalformed:
			telemetry.TokenValidationFailuresTotal.WithLabelValues("session", "malformed").Inc()
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Malformed session token",
			})
			return
		case auth.TokenInvalid:
			telemetry.TokenValidationFailuresTotal.WithLabelValues("session", "invalid").Inc()
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Session expired or revoked",
			})
			return
		}

		c.Set(CtxUsername, identity.Username)
		c.Set(CtxJTI, identity.JTI)
		c.Next()
	}
}
