// static_token_repository.go implements StaticTokenRepository, providing
// database queries for long-lived admin credentials: insertion, lookup by the
// presented secret, owner-scoped listing/search, and soft-delete revocation.
package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/cookbook/cookbook-backend/internal/db/models"
)

// StaticTokenRepository handles static token database operations
type StaticTokenRepository struct {
	db *sqlx.DB
}

// NewStaticTokenRepository creates a new StaticTokenRepository
func NewStaticTokenRepository(db *sqlx.DB) *StaticTokenRepository {
	return &StaticTokenRepository{db: db}
}

// Create inserts a new static token record
func (r *StaticTokenRepository) Create(ctx context.Context, token *models.StaticToken) error {
	token.ID = uuid.New().String()
	token.CreatedAt = time.Now()
	token.UpdatedAt = token.CreatedAt
	token.IsDisabled = false

	query := `
		INSERT INTO static_tokens (id, username, secret, is_disabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		token.ID, token.Username, token.Secret, token.IsDisabled, token.CreatedAt, token.UpdatedAt,
	)
	return err
}

// GetBySecret retrieves a live token record whose stored secret equals the
// presented value. Revoked records are invisible here, which is what makes a
// leaked-but-revoked credential fail even when its signature still verifies.
func (r *StaticTokenRepository) GetBySecret(ctx context.Context, secret string) (*models.StaticToken, error) {
	var token models.StaticToken
	query := `SELECT * FROM static_tokens WHERE secret = $1 AND is_disabled = FALSE`
	err := r.db.GetContext(ctx, &token, query, secret)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get static token: %w", err)
	}
	return &token, nil
}

// GetByIDAndOwner retrieves a live token owned by the given user
func (r *StaticTokenRepository) GetByIDAndOwner(ctx context.Context, id, username string) (*models.StaticToken, error) {
	var token models.StaticToken
	query := `SELECT * FROM static_tokens WHERE id = $1 AND username = $2 AND is_disabled = FALSE`
	err := r.db.GetContext(ctx, &token, query, id, username)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get static token: %w", err)
	}
	return &token, nil
}

// ListByOwner lists the owner's live tokens
func (r *StaticTokenRepository) ListByOwner(ctx context.Context, username string) ([]*models.StaticToken, error) {
	var tokens []*models.StaticToken
	query := `SELECT * FROM static_tokens WHERE username = $1 AND is_disabled = FALSE ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &tokens, query, username); err != nil {
		return nil, fmt.Errorf("failed to list static tokens: %w", err)
	}
	return tokens, nil
}

// SearchByOwner lists the owner's live tokens whose secret contains fragment
func (r *StaticTokenRepository) SearchByOwner(ctx context.Context, username, fragment string) ([]*models.StaticToken, error) {
	var tokens []*models.StaticToken
	query := `
		SELECT * FROM static_tokens
		WHERE username = $1 AND is_disabled = FALSE AND secret LIKE '%' || $2 || '%'
		ORDER BY created_at DESC
	`
	if err := r.db.SelectContext(ctx, &tokens, query, username, fragment); err != nil {
		return nil, fmt.Errorf("failed to search static tokens: %w", err)
	}
	return tokens, nil
}

// Disable soft-deletes the token if it is live and owned by requester.
// Returns the updated record, or nil when no matching live row exists —
// callers report that as not-found regardless of whether the row is absent
// or owned by someone else.
func (r *StaticTokenRepository) Disable(ctx context.Context, id, requester string) (*models.StaticToken, error) {
	var token models.StaticToken
	query := `
		UPDATE static_tokens
		SET is_disabled = TRUE, updated_at = $3, username_update = $2
		WHERE id = $1 AND username = $2 AND is_disabled = FALSE
		RETURNING *
	`
	err := r.db.GetContext(ctx, &token, query, id, requester, time.Now())
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to disable static token: %w", err)
	}
	return &token, nil
}
