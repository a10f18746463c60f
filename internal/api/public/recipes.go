// Package public implements the unauthenticated catalog endpoints plus the
// static-token skill endpoint. Only published recipes are ever visible here,
// and list/meta responses are trimmed projections of the full document.
package public

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cookbook/cookbook-backend/internal/api/admin"
	"github.com/cookbook/cookbook-backend/internal/db/models"
	"github.com/cookbook/cookbook-backend/internal/db/repositories"
)

// RecipeHandlers handles public catalog endpoints
type RecipeHandlers struct {
	recipes *repositories.RecipeRepository
}

// NewRecipeHandlers creates a new public RecipeHandlers instance
func NewRecipeHandlers(recipes *repositories.RecipeRepository) *RecipeHandlers {
	return &RecipeHandlers{recipes: recipes}
}

// catalogItem is the trimmed recipe shape served by the catalog list.
type catalogItem struct {
	ID                     string           `json:"id"`
	Name                   *string          `json:"name"`
	Description            *string          `json:"description"`
	Image                  *models.FileBlob `json:"image"`
	Published              bool             `json:"published"`
	Tags                   []string         `json:"tags"`
	PreparationTimeMinutes int              `json:"preparation_time_minutes"`
	Year                   int              `json:"year"`
	Location               *string          `json:"location"`
	Portion                int              `json:"portion"`
	Owner                  *string          `json:"owner"`
	Publisher              *string          `json:"publisher"`
}

func toCatalogItem(r *models.Recipe) catalogItem {
	return catalogItem{
		ID:                     r.ID,
		Name:                   r.Name,
		Description:            r.Description,
		Image:                  r.Image,
		Published:              r.Published,
		Tags:                   r.Tags,
		PreparationTimeMinutes: r.PreparationTimeMinutes,
		Year:                   r.Year,
		Location:               r.Location,
		Portion:                r.Portion,
		Owner:                  r.Owner,
		Publisher:              r.Publisher,
	}
}

// ListHandler serves the public catalog: published recipes only, optional
// substring search, content and total from one predicate.
// GET /api/v1/public/recipes?search=&page=&size=
func (h *RecipeHandlers) ListHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := repositories.RecipeFilter{Published: true, Query: c.Query("search")}
		limit, offset := admin.ParsePagination(c)

		recipes, err := h.recipes.Find(c.Request.Context(), filter, limit, offset)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list recipes"})
			return
		}
		total, err := h.recipes.Count(c.Request.Context(), filter)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count recipes"})
			return
		}

		content := make([]catalogItem, 0, len(recipes))
		for _, r := range recipes {
			content = append(content, toCatalogItem(r))
		}
		c.JSON(http.StatusOK, gin.H{"content": content, "total": total})
	}
}

// GetHandler fetches one published recipe. Unpublished recipes 404 exactly
// like absent ones.
// GET /api/v1/public/recipes/:id
func (h *RecipeHandlers) GetHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		recipe := h.fetchPublished(c)
		if recipe == nil {
			return
		}
		c.JSON(http.StatusOK, recipe)
	}
}

// MetaHandler serves the link-preview projection of a published recipe.
// GET /api/v1/public/recipes/:id/meta
func (h *RecipeHandlers) MetaHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		recipe := h.fetchPublished(c)
		if recipe == nil {
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"id":          recipe.ID,
			"name":        recipe.Name,
			"description": recipe.Description,
			"image":       recipe.Image,
		})
	}
}

// SkillHandler backs the voice-assistant integration: published recipes
// matched by name only, or a small random sample when no query is given.
// The assistant speaks recipe names, so a description match would surface
// recipes the user never asked for.
// GET /api/v1/skill/recipes?q=&size=
func (h *RecipeHandlers) SkillHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := repositories.RecipeFilter{Published: true}

		var (
			recipes []*models.Recipe
			err     error
		)
		if q := c.Query("q"); q != "" {
			filter.NameQuery = q
			limit, offset := admin.ParsePagination(c)
			recipes, err = h.recipes.Find(c.Request.Context(), filter, limit, offset)
		} else {
			recipes, err = h.recipes.RandomSample(c.Request.Context(), filter, 5)
		}
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

func (h *RecipeHandlers) fetchPublished(c *gin.Context) *models.Recipe {
	recipe, err := h.recipes.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query recipe"})
		return nil
	}
	if recipe == nil || !recipe.Published {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return nil
	}
	return recipe
}
