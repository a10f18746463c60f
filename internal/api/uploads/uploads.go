// Package uploads implements the image upload flow shared by the admin and
// author recipe handlers: content-type whitelist, optional size ceiling,
// blob-store write, recipe row update, and best-effort deletion of the
// replaced blob.
package uploads

import (
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cookbook/cookbook-backend/internal/db/models"
	"github.com/cookbook/cookbook-backend/internal/db/repositories"
	"github.com/cookbook/cookbook-backend/internal/storage"
	"github.com/cookbook/cookbook-backend/internal/telemetry"
)

// allowedContentTypes is the image whitelist. Checked before any blob-store
// work so a rejected upload costs nothing but the multipart parse.
var allowedContentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// SaveRecipeImage reads the multipart "file" field, validates it, stores the
// blob under recipes/<id>/, updates the recipe row, and deletes the previous
// blob if one existed. maxBytes zero means no size ceiling (admin path).
// Responses are written directly to the gin context.
func SaveRecipeImage(c *gin.Context, recipes *repositories.RecipeRepository, blobs storage.Storage, recipe *models.Recipe, maxBytes int64, actor string) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file upload"})
		return
	}

	if maxBytes > 0 && file.Size > maxBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": fmt.Sprintf("Image exceeds the %d byte limit", maxBytes),
		})
		return
	}

	contentType := file.Header.Get("Content-Type")
	ext, ok := allowedContentTypes[strings.ToLower(contentType)]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("Unsupported image content type %q", contentType),
		})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read upload"})
		return
	}
	defer src.Close()

	name := path.Join("recipes", recipe.ID, uuid.New().String()+ext)
	obj, err := blobs.Upload(c.Request.Context(), name, src, file.Size, contentType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store image"})
		return
	}

	updated, err := recipes.UpdateImage(c.Request.Context(), recipe.ID, &models.FileBlob{
		Name:        obj.Name,
		URL:         obj.URL,
		ContentType: obj.ContentType,
	}, actor)
	if err != nil {
		// Orphaned blob; remove it so failed requests leave no residue
		_ = blobs.Delete(c.Request.Context(), obj.Name)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to attach image"})
		return
	}
	if updated == nil {
		_ = blobs.Delete(c.Request.Context(), obj.Name)
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}

	// The old blob is unreachable once the row points at the new one.
	// Deletion is best-effort; a leftover object is storage noise, not a bug.
	if recipe.Image != nil && recipe.Image.Name != "" && recipe.Image.Name != obj.Name {
		_ = blobs.Delete(c.Request.Context(), recipe.Image.Name)
	}

	telemetry.ImageUploadsTotal.WithLabelValues(contentType).Inc()
	telemetry.ImageUploadBytes.Observe(float64(file.Size))

	c.JSON(http.StatusOK, updated)
}
