// Package authn implements the login/logout endpoints bridging Google
// identities to local sessions. Login trades a verified Google access token
// for a signed session token; logout revokes the session's jti. Neither
// endpoint sits behind the session middleware: login has no session yet and
// logout must succeed even for a dying one.
package authn

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cookbook/cookbook-backend/internal/auth"
	"github.com/cookbook/cookbook-backend/internal/auth/oidc"
	"github.com/cookbook/cookbook-backend/internal/telemetry"
)

// Handlers handles authentication endpoints
type Handlers struct {
	provider *oidc.Provider
	binder   *auth.IdentityBinder
	sessions *auth.SessionTokenService
}

// NewHandlers creates a new authn Handlers instance
func NewHandlers(provider *oidc.Provider, binder *auth.IdentityBinder, sessions *auth.SessionTokenService) *Handlers {
	return &Handlers{provider: provider, binder: binder, sessions: sessions}
}

// LoginHandler verifies the bearer Google credential, reconciles the profile
// to a local account, and issues a session token. The credential is first
// treated as an access token and checked against userinfo; if that fails it
// is retried as a raw ID token, for clients that complete the OAuth flow
// themselves. Any verification failure is a 401; reconcile and issuance
// failures are 500s.
// GET /api/v1/auth/login
func (h *Handlers) LoginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing authorization header"})
			return
		}

		credential := auth.StripBearer(header)
		profile, err := h.provider.VerifyAccessToken(c.Request.Context(), credential)
		if err != nil {
			profile, err = h.provider.VerifyIDToken(c.Request.Context(), credential)
		}
		if err != nil {
			telemetry.TokenValidationFailuresTotal.WithLabelValues("google", "unverified").Inc()
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Google token verification failed"})
			return
		}

		account, err := h.binder.Reconcile(c.Request.Context(), *profile)
		if err != nil {
			slog.Error("Account reconciliation failed", "email", profile.Email, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve account"})
			return
		}
		if account.IsDisabled {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Account disabled"})
			return
		}

		record, signed, err := h.sessions.Issue(c.Request.Context(), account.Username)
		if err != nil {
			slog.Error("Session issuance failed", "username", account.Username, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue session"})
			return
		}

		telemetry.SessionsIssuedTotal.Inc()
		c.JSON(http.StatusOK, gin.H{
			"token":      signed,
			"expires_at": record.ExpiresAt,
			"username":   account.Username,
		})
	}
}

// LogoutHandler revokes the presented session. Lenient on purpose: a
// missing, malformed, or already-dead token still gets a 200 so clients can
// always clear local state.
// GET /api/v1/auth/logout
func (h *Handlers) LogoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header != "" {
			identity, outcome, err := h.sessions.Validate(c.Request.Context(), header)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to end session"})
				return
			}
			if outcome == auth.TokenValid {
				if err := h.sessions.RevokeByJTI(c.Request.Context(), identity.JTI); err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to end session"})
					return
				}
				telemetry.SessionsRevokedTotal.Inc()
			}
		}

		c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
	}
}
