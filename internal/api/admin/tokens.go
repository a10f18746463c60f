package admin

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cookbook/cookbook-backend/internal/auth"
	"github.com/cookbook/cookbook-backend/internal/middleware"
)

// TokenHandlers handles static token management endpoints
type TokenHandlers struct {
	tokens *auth.StaticTokenService
}

// NewTokenHandlers creates a new TokenHandlers instance
func NewTokenHandlers(tokens *auth.StaticTokenService) *TokenHandlers {
	return &TokenHandlers{tokens: tokens}
}

// ListHandler returns the caller's live tokens, optionally filtered by a
// substring of the secret.
// GET /api/v1/tokens
func (h *TokenHandlers) ListHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		owner := c.GetString(middleware.CtxUsername)

		var (
			tokens interface{}
			err    error
		)
		if q := c.Query("q"); q != "" {
			tokens, err = h.tokens.Search(c.Request.Context(), owner, q)
		} else {
			tokens, err = h.tokens.List(c.Request.Context(), owner)
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list tokens"})
			return
		}

		c.JSON(http.StatusOK, tokens)
	}
}

// CreateHandler issues a new static token for the caller. The response is
// the only place the full secret is guaranteed visible; it is stored
// verbatim, not hashed.
// POST /api/v1/tokens
func (h *TokenHandlers) CreateHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		owner := c.GetString(middleware.CtxUsername)

		token, err := h.tokens.Issue(c.Request.Context(), owner)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
			return
		}

		c.JSON(http.StatusCreated, token)
	}
}

// DeleteHandler revokes one of the caller's tokens. Tokens belonging to
// other accounts are indistinguishable from missing ones.
// DELETE /api/v1/tokens/:id
func (h *TokenHandlers) DeleteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		owner := c.GetString(middleware.CtxUsername)

		err := h.tokens.Revoke(c.Request.Context(), c.Param("id"), owner)
		if errors.Is(err, auth.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Token not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to revoke token"})
			return
		}

		c.Status(http.StatusNoContent)
	}
}

// EchoHandler reports the identity bound to the presented token. Useful for
// smoke-testing a freshly issued secret.
// GET /api/v1/tokens/echo
func (h *TokenHandlers) EchoHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"username": c.GetString(middleware.CtxUsername)})
	}
}
