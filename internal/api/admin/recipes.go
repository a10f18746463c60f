// Package admin implements the administrative HTTP handlers for the cookbook
// backend. Every route here sits behind static-token authentication plus the
// is_admin account check (see internal/middleware/auth.go) — unlike the
// author package, these handlers bypass ownership and workflow guards.
package admin

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cookbook/cookbook-backend/internal/api/uploads"
	"github.com/cookbook/cookbook-backend/internal/db/models"
	"github.com/cookbook/cookbook-backend/internal/db/repositories"
	"github.com/cookbook/cookbook-backend/internal/middleware"
	"github.com/cookbook/cookbook-backend/internal/storage"
	"github.com/cookbook/cookbook-backend/internal/telemetry"
)

// RecipeHandlers handles administrative recipe endpoints
type RecipeHandlers struct {
	recipes *repositories.RecipeRepository
	blobs   storage.Storage
}

// NewRecipeHandlers creates a new RecipeHandlers instance
func NewRecipeHandlers(recipes *repositories.RecipeRepository, blobs storage.Storage) *RecipeHandlers {
	return &RecipeHandlers{recipes: recipes, blobs: blobs}
}

// RecipeRequest carries the caller-editable recipe content. Workflow fields
// are accepted here only on the administrative path; the author package
// ignores them.
type RecipeRequest struct {
	Name                   *string              `json:"name" binding:"required"`
	Description            *string              `json:"description"`
	Lang                   *string              `json:"lang"`
	Owner                  *string              `json:"owner"`
	Tags                   []string             `json:"tags"`
	Year                   int                  `json:"year"`
	Location               *string              `json:"location"`
	Category               []string             `json:"category"`
	Portion                int                  `json:"portion"`
	PreparationTimeMinutes int                  `json:"preparation_time_minutes"`
	Calification           int                  `json:"calification"`
	Preparation            []models.Preparation `json:"preparation"`
	Published              bool                 `json:"published"`
	Reviewed               *bool                `json:"reviewed"`
}

// ToModel copies the request content into a Recipe
func (req *RecipeRequest) ToModel() *models.Recipe {
	return &models.Recipe{
		Name:                   req.Name,
		Description:            req.Description,
		Lang:                   req.Lang,
		Owner:                  req.Owner,
		Tags:                   req.Tags,
		Year:                   req.Year,
		Location:               req.Location,
		Category:               req.Category,
		Portion:                req.Portion,
		PreparationTimeMinutes: req.PreparationTimeMinutes,
		Calification:           req.Calification,
		Preparation:            req.Preparation,
		Published:              req.Published,
		Reviewed:               req.Reviewed,
	}
}

// ParsePagination reads page/size query parameters. Pages are 1-based; size
// is clamped to 100 so a single request cannot drag the whole table.
func ParsePagination(c *gin.Context) (limit, offset int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", "20"))
	if err != nil || size < 1 {
		size = 20
	}
	if size > 100 {
		size = 100
	}
	return size, (page - 1) * size
}

// @Summary      List recipes
// @Description  Lists live recipes regardless of publication state, with optional substring search.
// @Tags         Admin
// @Security     Bearer
// @Produce      json
// @Param        q     query  string  false  "Substring matched against name or description"
// @Param        page  query  int     false  "Page number (1-based)"
// @Param        size  query  int     false  "Page size (max 100)"
// @Success      200  {array}   models.Recipe
// @Failure      500  {object}  map[string]interface{}
// @Router       /api/v1/recipes [get]
// ListHandler lists live recipes without publication filtering
// GET /api/v1/recipes
func (h *RecipeHandlers) ListHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, offset := ParsePagination(c)

		recipes, err := h.recipes.AdminList(c.Request.Context(), c.Query("q"), limit, offset)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list recipes"})
			return
		}
		if recipes == nil {
			recipes = []*models.Recipe{}
		}
		c.JSON(http.StatusOK, recipes)
	}
}

// GetHandler fetches one live recipe by id
// GET /api/v1/recipes/:id
func (h *RecipeHandlers) GetHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		recipe, err := h.recipes.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query recipe"})
			return
		}
		if recipe == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
			return
		}
		c.JSON(http.StatusOK, recipe)
	}
}

// @Summary      Create recipe
// @Description  Creates a recipe with caller-supplied workflow flags. No draft forcing on the admin path.
// @Tags         Admin
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Success      201  {object}  models.Recipe
// @Failure      400  {object}  map[string]interface{}
// @Router       /api/v1/recipes [post]
// CreateHandler creates a recipe
// POST /api/v1/recipes
func (h *RecipeHandlers) CreateHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RecipeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe payload: " + err.Error()})
			return
		}

		actor := c.GetString(middleware.CtxUsername)
		recipe := req.ToModel()
		recipe.Publisher = &actor
		recipe.UsernameInsert = &actor

		if err := h.recipes.Create(c.Request.Context(), recipe); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create recipe"})
			return
		}
		c.JSON(http.StatusCreated, recipe)
	}
}

// UpdateHandler replaces a recipe's content unconditionally
// PUT /api/v1/recipes/:id
func (h *RecipeHandlers) UpdateHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RecipeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe payload: " + err.Error()})
			return
		}

		recipe := req.ToModel()
		recipe.ID = c.Param("id")

		updated, err := h.recipes.Update(c.Request.Context(), recipe, c.GetString(middleware.CtxUsername))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update recipe"})
			return
		}
		if updated == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

// DeleteHandler soft-deletes a recipe regardless of publication state
// DELETE /api/v1/recipes/:id
func (h *RecipeHandlers) DeleteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		deleted, err := h.recipes.SoftDelete(c.Request.Context(), c.Param("id"), c.GetString(middleware.CtxUsername))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete recipe"})
			return
		}
		if deleted == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// @Summary      Publish recipe
// @Description  Flips the published flag on. Bypasses review state and ownership — a recipe mid-review can be force-published.
// @Tags         Admin
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  models.Recipe
// @Failure      404  {object}  map[string]interface{}
// @Router       /api/v1/recipes/{id}/publish [patch]
// PublishHandler force-publishes a recipe
// PATCH /api/v1/recipes/:id/publish
func (h *RecipeHandlers) PublishHandler() gin.HandlerFunc {
	return h.setPublished(true, "publish")
}

// UnpublishHandler force-unpublishes a recipe. The reviewed flag is left as
// is, unlike the author-initiated reversion which clears it.
// PATCH /api/v1/recipes/:id/unpublish
func (h *RecipeHandlers) UnpublishHandler() gin.HandlerFunc {
	return h.setPublished(false, "unpublish")
}

func (h *RecipeHandlers) setPublished(published bool, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		updated, err := h.recipes.SetPublished(c.Request.Context(), c.Param("id"), published, c.GetString(middleware.CtxUsername))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update recipe"})
			return
		}
		if updated == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
			return
		}
		telemetry.ModerationTransitionsTotal.WithLabelValues(action).Inc()
		c.JSON(http.StatusOK, updated)
	}
}

// ImageHandler attaches an uploaded image to a recipe. Content type is
// whitelisted before the blob store is touched; a replaced image's old blob
// is deleted best-effort after the new one is committed.
// PATCH /api/v1/recipes/:id/image
func (h *RecipeHandlers) ImageHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		recipe, err := h.recipes.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query recipe"})
			return
		}
		if recipe == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
			return
		}

		uploads.SaveRecipeImage(c, h.recipes, h.blobs, recipe, 0, c.GetString(middleware.CtxUsername))
	}
}
