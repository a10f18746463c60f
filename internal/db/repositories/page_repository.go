// page_repository.go implements PageRepository for slug-addressed HTML pages.
package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/cookbook/cookbook-backend/internal/db/models"
)

// PageRepository handles page database operations
type PageRepository struct {
	db *sqlx.DB
}

// NewPageRepository creates a new PageRepository
func NewPageRepository(db *sqlx.DB) *PageRepository {
	return &PageRepository{db: db}
}

// GetBySlug retrieves a live page by slug
func (r *PageRepository) GetBySlug(ctx context.Context, slug string) (*models.Page, error) {
	var page models.Page
	query := `SELECT * FROM pages WHERE slug = $1 AND is_disabled = FALSE`
	err := r.db.GetContext(ctx, &page, query, slug)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get page: %w", err)
	}
	return &page, nil
}
