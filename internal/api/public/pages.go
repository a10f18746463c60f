package public

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cookbook/cookbook-backend/internal/config"
	"github.com/cookbook/cookbook-backend/internal/db/repositories"
)

// PageHandlers handles the landing route and health check
type PageHandlers struct {
	cfg   *config.Config
	pages *repositories.PageRepository
}

// NewPageHandlers creates a new PageHandlers instance
func NewPageHandlers(cfg *config.Config, pages *repositories.PageRepository) *PageHandlers {
	return &PageHandlers{cfg: cfg, pages: pages}
}

// IndexHandler serves the landing page: the stored page with slug "index"
// when present, otherwise the service identity as JSON.
// GET /
func (h *PageHandlers) IndexHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := h.pages.GetBySlug(c.Request.Context(), "index")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load page"})
			return
		}
		if page != nil {
			c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page.HTML))
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"title":   h.cfg.App.Title,
			"version": h.cfg.App.Version,
		})
	}
}

// HealthzHandler reports process liveness
// GET /healthz
func HealthzHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
