// session_token_repository.go implements SessionTokenRepository, the
// server-side revocation list for ephemeral bearer tokens keyed by jti.
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

// SessionTokenRepository handles session token database operations
type SessionTokenRepository struct {
	db *sqlx.DB
}

// NewSessionTokenRepository creates a new SessionTokenRepository
func NewSessionTokenRepository(db *sqlx.DB) *SessionTokenRepository {
	return &SessionTokenRepository{db: db}
}

// Create inserts a new session token record
func (r *SessionTokenRepository) Create(ctx context.Context, token *models.SessionToken) error {
	token.ID = uuid.New().String()
	token.CreatedAt = time.Now()
	token.UpdatedAt = token.CreatedAt
	token.IsDisabled = false

	query := `
		INSERT INTO session_tokens (id, jti, username, expires_at, is_disabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		token.ID, token.JTI, token.Username, token.ExpiresAt, token.IsDisabled, token.CreatedAt, token.UpdatedAt,
	)
	return err
}

// GetByJTI retrieves a live session token record by jti
func (r *SessionTokenRepository) GetByJTI(ctx context.Context, jti string) (*models.SessionToken, error) {
	var token models.SessionToken
	query := `SELECT * FROM session_tokens WHERE jti = $1 AND is_disabled = FALSE`
	err := r.db.GetContext(ctx, &token, query, jti)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session token: %w", err)
	}
	return &token, nil
}

// DisableByJTI soft-deletes the record with the given jti. Idempotent:
// disabling an unknown or already-disabled jti affects zero rows and is not
// an error, mirroring logout-is-always-success semantics.
func (r *SessionTokenRepository) DisableByJTI(ctx context.Context, jti string) error {
	query := `
		UPDATE session_tokens
		SET is_disabled = TRUE, updated_at = $2
		WHERE jti = $1 AND is_disabled = FALSE
	`
	if _, err := r.db.ExecContext(ctx, query, jti, time.Now()); err != nil {
		return fmt.Errorf("failed to disable session token: %w", err)
	}
	return nil
}
