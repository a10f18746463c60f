// Package author implements the session-authenticated recipe endpoints. Every
// read and write in here is scoped to the authenticated publisher: a recipe
// belonging to someone else is indistinguishable from one that does not
// exist. Workflow transitions are checked twice — a guard on the fetched row
// produces the 409 reason, and the repository's guarded UPDATE enforces the
// same condition atomically so racing requests cannot both win.
package author

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cookbook/cookbook-backend/internal/api/admin"
	"github.com/cookbook/cookbook-backend/internal/api/uploads"
	"github.com/cookbook/cookbook-backend/internal/db/models"
	"github.com/cookbook/cookbook-backend/internal/db/repositories"
	"github.com/cookbook/cookbook-backend/internal/middleware"
	"github.com/cookbook/cookbook-backend/internal/moderation"
	"github.com/cookbook/cookbook-backend/internal/storage"
	"github.com/cookbook/cookbook-backend/internal/telemetry"
)

// RecipeHandlers handles author-scoped recipe endpoints
type RecipeHandlers struct {
	recipes       *repositories.RecipeRepository
	blobs         storage.Storage
	maxImageBytes int64
}

// NewRecipeHandlers creates a new author RecipeHandlers instance
func NewRecipeHandlers(recipes *repositories.RecipeRepository, blobs storage.Storage, maxImageBytes int64) *RecipeHandlers {
	return &RecipeHandlers{recipes: recipes, blobs: blobs, maxImageBytes: maxImageBytes}
}

// RecipeRequest carries author-editable recipe content. No workflow fields:
// authors cannot set published or reviewed directly.
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
}

// ToModel copies the request content into a Recipe in Draft state
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
		Published:              false,
		Reviewed:               nil,
	}
}

// dashboardFilter maps the dashboard tab name to the shared filter. The
// state parameter is required: each tab queries exactly one workflow state.
func dashboardFilter(state, publisher, search string) (repositories.RecipeFilter, bool) {
	filter := repositories.RecipeFilter{Publisher: publisher, Query: search}
	switch state {
	case "published":
		filter.Published = true
		filter.Reviewed = repositories.ReviewIgnore
	case "rejected":
		filter.Reviewed = repositories.ReviewReviewed
	case "pending":
		filter.Reviewed = repositories.ReviewNotReviewed
	case "draft":
		filter.Reviewed = repositories.ReviewNotRequested
	default:
		return filter, false
	}
	return filter, true
}

// ListHandler serves the author dashboard. Content and total come from the
// same predicate, so the page and the reported count cannot disagree.
// GET /api/v1/author/recipes?state=&search=&page=&size=
func (h *RecipeHandlers) ListHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		publisher := c.GetString(middleware.CtxUsername)

		filter, ok := dashboardFilter(c.Query("state"), publisher, c.Query("search"))
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "state must be one of published, rejected, pending, draft"})
			return
		}

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

		if recipes == nil {
			recipes = []*models.Recipe{}
		}
		c.JSON(http.StatusOK, gin.H{"content": recipes, "total": total})
	}
}

// GetHandler fetches one of the author's recipes
// GET /api/v1/author/recipes/:id
func (h *RecipeHandlers) GetHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		recipe, err := h.fetchOwned(c)
		if recipe == nil || err != nil {
			return
		}
		c.JSON(http.StatusOK, recipe)
	}
}

// CreateHandler creates a recipe in Draft state regardless of payload
// POST /api/v1/author/recipes
func (h *RecipeHandlers) CreateHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RecipeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe payload: " + err.Error()})
			return
		}

		publisher := c.GetString(middleware.CtxUsername)
		recipe := req.ToModel()
		recipe.Publisher = &publisher
		recipe.UsernameInsert = &publisher

		if err := h.recipes.Create(c.Request.Context(), recipe); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create recipe"})
			return
		}
		c.JSON(http.StatusCreated, recipe)
	}
}

// UpdateHandler replaces recipe content and forces the recipe back to Draft.
// Published and pending recipes cannot be edited.
// PUT /api/v1/author/recipes/:id
func (h *RecipeHandlers) UpdateHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RecipeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe payload: " + err.Error()})
			return
		}

		current, err := h.fetchOwned(c)
		if current == nil || err != nil {
			return
		}
		if d := moderation.CanEdit(current.Published, current.Reviewed); !d.Allowed {
			c.JSON(http.StatusConflict, gin.H{"error": d.Reason})
			return
		}

		publisher := c.GetString(middleware.CtxUsername)
		recipe := req.ToModel()
		recipe.ID = current.ID

		updated, err := h.recipes.UpdateOwned(c.Request.Context(), recipe, publisher)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update recipe"})
			return
		}
		if updated == nil {
			// The guard passed on the fetched row but the UPDATE matched
			// nothing: a concurrent transition won the race.
			c.JSON(http.StatusConflict, gin.H{"error": "recipe state changed concurrently"})
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

// ReviewHandler submits a draft or rejected recipe for review
// PATCH /api/v1/author/recipes/:id/review
func (h *RecipeHandlers) ReviewHandler() gin.HandlerFunc {
	pending := false
	return h.transition("submit", moderation.CanSubmitForReview, &pending)
}

// UnreviewHandler withdraws a recipe from the review queue back to Draft
// PATCH /api/v1/author/recipes/:id/unreview
func (h *RecipeHandlers) UnreviewHandler() gin.HandlerFunc {
	return h.transition("withdraw", moderation.CanWithdrawReview, nil)
}

// transition runs one reviewed-flag transition: ownership fetch, guard check
// for the 409 reason, then the guarded UPDATE.
func (h *RecipeHandlers) transition(action string, guard func(bool, *bool) moderation.Decision, reviewed *bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		current, err := h.fetchOwned(c)
		if current == nil || err != nil {
			return
		}
		if d := guard(current.Published, current.Reviewed); !d.Allowed {
			c.JSON(http.StatusConflict, gin.H{"error": d.Reason})
			return
		}

		publisher := c.GetString(middleware.CtxUsername)
		updated, err := h.recipes.SetReviewState(c.Request.Context(), current.ID, publisher, reviewed, publisher)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update recipe"})
			return
		}
		if updated == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "recipe state changed concurrently"})
			return
		}

		telemetry.ModerationTransitionsTotal.WithLabelValues(action).Inc()
		c.JSON(http.StatusOK, updated)
	}
}

// UnpublishHandler reverts the author's published recipe to Draft
// PATCH /api/v1/author/recipes/:id/unpublish
func (h *RecipeHandlers) UnpublishHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		current, err := h.fetchOwned(c)
		if current == nil || err != nil {
			return
		}
		if d := moderation.CanUnpublish(current.Published, current.Reviewed); !d.Allowed {
			c.JSON(http.StatusConflict, gin.H{"error": d.Reason})
			return
		}

		publisher := c.GetString(middleware.CtxUsername)
		updated, err := h.recipes.UnpublishOwned(c.Request.Context(), current.ID, publisher, publisher)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update recipe"})
			return
		}
		if updated == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "recipe state changed concurrently"})
			return
		}

		telemetry.ModerationTransitionsTotal.WithLabelValues("unpublish").Inc()
		c.JSON(http.StatusOK, updated)
	}
}

// DeleteHandler soft-deletes an unpublished recipe
// DELETE /api/v1/author/recipes/:id
func (h *RecipeHandlers) DeleteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		current, err := h.fetchOwned(c)
		if current == nil || err != nil {
			return
		}
		if d := moderation.CanDelete(current.Published, current.Reviewed); !d.Allowed {
			c.JSON(http.StatusConflict, gin.H{"error": d.Reason})
			return
		}

		publisher := c.GetString(middleware.CtxUsername)
		deleted, err := h.recipes.SoftDeleteOwned(c.Request.Context(), current.ID, publisher)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete recipe"})
			return
		}
		if deleted == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "recipe state changed concurrently"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// ImageHandler attaches an image to the author's recipe, subject to the
// configured size ceiling. A published recipe's image is frozen along with
// the rest of its content.
// PATCH /api/v1/author/recipes/:id/image
func (h *RecipeHandlers) ImageHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		recipe, err := h.fetchOwned(c)
		if recipe == nil || err != nil {
			return
		}
		if d := moderation.CanReplaceImage(recipe.Published, recipe.Reviewed); !d.Allowed {
			c.JSON(http.StatusConflict, gin.H{"error": d.Reason})
			return
		}
		uploads.SaveRecipeImage(c, h.recipes, h.blobs, recipe, h.maxImageBytes, c.GetString(middleware.CtxUsername))
	}
}

// fetchOwned resolves :id against the authenticated publisher. Writes the
// 404/500 response itself and returns nil when the caller should stop.
func (h *RecipeHandlers) fetchOwned(c *gin.Context) (*models.Recipe, error) {
	publisher := c.GetString(middleware.CtxUsername)

	recipe, err := h.recipes.GetByIDAndPublisher(c.Request.Context(), c.Param("id"), publisher)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query recipe"})
		return nil, err
	}
	if recipe == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return nil, nil
	}
	return recipe, nil
}
