package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cookbook/cookbook-backend/internal/db/models"
	"github.com/cookbook/cookbook-backend/internal/middleware"
)

// MeHandler returns the account record of the authenticated administrator,
// as resolved by the admin auth middleware.
// GET /api/v1/users/me
func MeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		account, ok := c.MustGet(middleware.CtxAccount).(*models.Account)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Account not resolved"})
			return
		}
		c.JSON(http.StatusOK, account)
	}
}
