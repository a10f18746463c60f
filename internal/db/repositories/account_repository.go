// account_repository.go implements AccountRepository, providing queries for
// account lookup, creation, and login-time profile refresh.
package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cookbook/cookbook-backend/internal/db/models"
)

const accountColumns = `id, username, email, given_name, family_name, picture, is_admin, is_disabled, created_at, updated_at`

// AccountRepository handles account database operations
type AccountRepository struct {
	db *sql.DB
}

// NewAccountRepository creates a new AccountRepository
func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func scanAccount(row *sql.Row) (*models.Account, error) {
	a := &models.Account{}
	err := row.Scan(
		&a.ID,
		&a.Username,
		&a.Email,
		&a.GivenName,
		&a.FamilyName,
		&a.Picture,
		&a.IsAdmin,
		&a.IsDisabled,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// GetByEmail retrieves an account by email, disabled or not. Login
// reconciliation needs to see disabled accounts so it never resurrects them
// as fresh signups.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE email = $1`, accountColumns)
	return scanAccount(r.db.QueryRowContext(ctx, query, email))
}

// GetByUsername retrieves a live (non-disabled) account by username
func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE username = $1 AND is_disabled = FALSE`, accountColumns)
	return scanAccount(r.db.QueryRowContext(ctx, query, username))
}

// UsernameExists reports whether any account, disabled or not, holds the
// username. Disabled accounts keep their username reserved forever.
func (r *AccountRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM accounts WHERE username = $1)`, username,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return exists, nil
}

// Create inserts a new account. Returns ErrUsernameTaken when the username
// unique constraint fires, so the caller can regenerate and retry.
func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	account.ID = uuid.New().String()
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt

	query := `
		INSERT INTO accounts (id, username, email, given_name, family_name, picture, is_admin, is_disabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		account.ID,
		account.Username,
		account.Email,
		account.GivenName,
		account.FamilyName,
		account.Picture,
		account.IsAdmin,
		account.IsDisabled,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if isUniqueViolation(err, "idx_accounts_username") {
		return ErrUsernameTaken
	}
	return err
}

// UpdateProfileByEmail refreshes the mutable profile fields on every login.
// Username, is_admin, and is_disabled are deliberately not touched — they are
// immutable after creation (is_disabled only changes through moderation).
func (r *AccountRepository) UpdateProfileByEmail(ctx context.Context, email string, profile models.Profile) (*models.Account, error) {
	query := fmt.Sprintf(`
		UPDATE accounts
		SET given_name = $2, family_name = $3, picture = $4, updated_at = $5
		WHERE email = $1
		RETURNING %s
	`, accountColumns)

	return scanAccount(r.db.QueryRowContext(ctx, query,
		email,
		profile.GivenName,
		profile.FamilyName,
		profile.Picture,
		time.Now(),
	))
}
