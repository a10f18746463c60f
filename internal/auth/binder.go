// binder.go reconciles externally verified identities to local accounts.
// First sight of an email creates an account with a generated username;
// every later login refreshes the mutable profile fields. Username and the
// admin flag never change after creation.
package auth

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/cookbook/cookbook-backend/internal/db/models"
	"github.com/cookbook/cookbook-backend/internal/db/repositories"
)

// IdentityBinder binds verified identity-provider profiles to accounts.
type IdentityBinder struct {
	accounts *repositories.AccountRepository
}

// NewIdentityBinder creates an IdentityBinder over the account repository
func NewIdentityBinder(accounts *repositories.AccountRepository) *IdentityBinder {
	return &IdentityBinder{accounts: accounts}
}

// Reconcile maps a verified profile to an account, creating one on first
// sight. The username-collision retry is invisible to the caller: either the
// whole operation succeeds with a distinct username or it fails outright.
func (b *IdentityBinder) Reconcile(ctx context.Context, profile models.Profile) (*models.Account, error) {
	existing, err := b.accounts.GetByEmail(ctx, profile.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	if existing != nil {
		updated, err := b.accounts.UpdateProfileByEmail(ctx, profile.Email, profile)
		if err != nil {
			return nil, fmt.Errorf("failed to refresh profile: %w", err)
		}
		return updated, nil
	}

	// The exists check keeps the common case cheap; the unique constraint in
	// the accounts table is what actually serializes concurrent signups.
	// Both paths regenerate the suffix and retry, and the 9999-value suffix
	// space bounds the loop in practice.
	for {
		candidate := GenerateUsername(profile.GivenName, profile.FamilyName)

		taken, err := b.accounts.UsernameExists(ctx, candidate)
		if err != nil {
			return nil, fmt.Errorf("failed to check username: %w", err)
		}
		if taken {
			continue
		}

		account := &models.Account{
			Username:   candidate,
			Email:      profile.Email,
			GivenName:  &profile.GivenName,
			FamilyName: &profile.FamilyName,
			Picture:    &profile.Picture,
			IsAdmin:    false,
			IsDisabled: false,
		}
		err = b.accounts.Create(ctx, account)
		if errors.Is(err, repositories.ErrUsernameTaken) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create account: %w", err)
		}
		return account, nil
	}
}

// GenerateUsername builds a candidate username from the profile names:
// "given.family" lower-cased, restricted to printable ASCII, internal runs
// of whitespace collapsed and replaced by dots, plus a random zero-padded
// "#0001".."#9999" suffix that disambiguates common name pairs.
func GenerateUsername(givenName, familyName string) string {
	base := strings.ToLower(givenName + "." + familyName)

	var sb strings.Builder
	for _, r := range base {
		if r >= 0x20 && r < 0x7f {
			sb.WriteRune(r)
		}
	}

	cleaned := strings.Join(strings.Fields(sb.String()), " ")
	cleaned = strings.ReplaceAll(cleaned, " ", ".")

	return fmt.Sprintf("%s#%04d", cleaned, rand.IntN(9999)+1)
}
