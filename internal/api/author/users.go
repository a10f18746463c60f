package author

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cookbook/cookbook-backend/internal/db/repositories"
	"github.com/cookbook/cookbook-backend/internal/middleware"
)

// MeHandler returns the public profile of the session's account. The shape
// is deliberately smaller than the admin view: no admin flag, no timestamps.
// GET /api/v1/users/me/public
func MeHandler(accounts *repositories.AccountRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := c.GetString(middleware.CtxUsername)

		account, err := accounts.GetByUsername(c.Request.Context(), username)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query account"})
			return
		}
		if account == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"username":    account.Username,
			"email":       account.Email,
			"given_name":  account.GivenName,
			"family_name": account.FamilyName,
			"picture":     account.Picture,
		})
	}
}
