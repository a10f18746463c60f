// statictoken.go implements the static token service. The opaque secret
// handed to the admin is itself a signed payload embedding the owner's
// username and issuance time, so validation recovers the identity without an
// account lookup — but the record must also still exist non-disabled in the
// store. Either check failing alone rejects the credential.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cookbook/cookbook-backend/internal/db/models"
	"github.com/cookbook/cookbook-backend/internal/db/repositories"
)

// staticClaims is the custom payload embedded in a static token secret.
// No registered claim set and no expiry — revocation is the only lifecycle end.
type staticClaims struct {
	Username string `json:"username"`
	// Current is the issuance time in unix milliseconds
	Current int64 `json:"current"`
	jwt.RegisteredClaims
}

// StaticTokenService issues, validates, and revokes static admin tokens.
type StaticTokenService struct {
	repo   *repositories.StaticTokenRepository
	secret []byte
}

// NewStaticTokenService creates a StaticTokenService signing with the shared secret
func NewStaticTokenService(repo *repositories.StaticTokenRepository, secret string) *StaticTokenService {
	return &StaticTokenService{repo: repo, secret: []byte(secret)}
}

// Issue signs a new secret for the owner and persists the token record.
// The returned record includes the signed secret; it remains retrievable
// later, unlike a hashed credential.
func (s *StaticTokenService) Issue(ctx context.Context, owner string) (*models.StaticToken, error) {
	claims := &staticClaims{
		Username: owner,
		Current:  time.Now().UnixMilli(),
	}

	secret, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign static token: %w", err)
	}

	token := &models.StaticToken{
		Username: owner,
		Secret:   secret,
	}
	if err := s.repo.Create(ctx, token); err != nil {
		return nil, fmt.Errorf("failed to store static token: %w", err)
	}
	return token, nil
}

// Validate checks a presented secret. The store lookup and the signature
// check are both mandatory: a secret absent from the store (or revoked)
// fails with ErrTokenUnknown even if its signature verifies, and a stored
// secret that fails verification fails with ErrTokenInvalid.
func (s *StaticTokenService) Validate(ctx context.Context, presented string) (*Identity, error) {
	presented = StripBearer(presented)

	record, err := s.repo.GetBySecret(ctx, presented)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrTokenUnknown
	}

	claims := &staticClaims{}
	parsed, err := jwt.ParseWithClaims(presented, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrTokenInvalid
	}

	// Identity comes from the embedded payload, not from the account store:
	// token content is fully determined at issuance.
	return &Identity{Username: claims.Username}, nil
}

// Revoke soft-deletes the requester's token. A token that does not exist or
// belongs to another account reports ErrNotFound either way.
func (s *StaticTokenService) Revoke(ctx context.Context, id, requester string) error {
	updated, err := s.repo.Disable(ctx, id, requester)
	if err != nil {
		return err
	}
	if updated == nil {
		return ErrNotFound
	}
	return nil
}

// List returns the owner's live tokens
func (s *StaticTokenService) List(ctx context.Context, owner string) ([]*models.StaticToken, error) {
	return s.repo.ListByOwner(ctx, owner)
}

// Search returns the owner's live tokens whose secret contains fragment
func (s *StaticTokenService) Search(ctx context.Context, owner, fragment string) ([]*models.StaticToken, error) {
	return s.repo.SearchByOwner(ctx, owner, fragment)
}
