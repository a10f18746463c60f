// sessiontoken.go implements the session token service for public authors.
// The signed token carries standard sub/exp/jti claims; the store record
// keyed by jti is the revocation list. Signature verification alone is not
// enough — a valid signature survives logout — so validation always consults
// the store after the cryptographic check. Expiry is enforced by the claim
// itself, checked lazily at validation time; nothing sweeps expired records.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/cookbook/cookbook-backend/internal/db/models"
	"github.com/cookbook/cookbook-backend/internal/db/repositories"
)

// Outcome classifies a session token validation. The three failure shapes
// are deliberately distinguishable: a malformed credential is a client bug,
// an invalid one is an expired, forged, or revoked session.
type Outcome int

const (
	// TokenMalformed means the presented value could not be parsed at all
	TokenMalformed Outcome = iota
	// TokenInvalid means the token parsed but failed signature, expiry, or revocation checks
	TokenInvalid
	// TokenValid means the token verified and its jti is still live
	TokenValid
)

// SessionTokenService issues, validates, and revokes session tokens.
type SessionTokenService struct {
	repo   *repositories.SessionTokenRepository
	secret []byte
	ttl    time.Duration
}

// NewSessionTokenService creates a SessionTokenService with the given TTL
func NewSessionTokenService(repo *repositories.SessionTokenRepository, secret string, ttl time.Duration) *SessionTokenService {
	return &SessionTokenService{repo: repo, secret: []byte(secret), ttl: ttl}
}

// Issue creates a session for the owner: a fresh jti, an expiry now+TTL, a
// signed token string, and the store record that makes the session
// revocable. Returns both the record and the signed token.
func (s *SessionTokenService) Issue(ctx context.Context, owner string) (*models.SessionToken, string, error) {
	jti := uuid.New().String()
	expiresAt := time.Now().Add(s.ttl)

	claims := jwt.RegisteredClaims{
		Subject:   owner,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		ID:        jti,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, "", fmt.Errorf("failed to sign session token: %w", err)
	}

	record := &models.SessionToken{
		JTI:       jti,
		Username:  owner,
		ExpiresAt: expiresAt,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, "", fmt.Errorf("failed to store session token: %w", err)
	}
	return record, signed, nil
}

// Validate checks a presented token and classifies the result. Identity is
// non-nil only for TokenValid. The error return carries store failures only;
// credential problems are expressed through the outcome.
func (s *SessionTokenService) Validate(ctx context.Context, presented string) (*Identity, Outcome, error) {
	presented = StripBearer(presented)

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(presented, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return nil, TokenMalformed, nil
		}
		// Signature mismatch, expired, not yet valid: all invalid.
		return nil, TokenInvalid, nil
	}
	if !parsed.Valid {
		return nil, TokenInvalid, nil
	}

	record, err := s.repo.GetByJTI(ctx, claims.ID)
	if err != nil {
		return nil, TokenInvalid, err
	}
	if record == nil {
		// Revoked or never issued here.
		return nil, TokenInvalid, nil
	}

	return &Identity{Username: claims.Subject, JTI: claims.ID}, TokenValid, nil
}

// RevokeByJTI ends the session with the given jti. Idempotent: revoking an
// unknown or already-revoked jti is a silent no-op, so logout always
// succeeds.
func (s *SessionTokenService) RevokeByJTI(ctx context.Context, jti string) error {
	return s.repo.DisableByJTI(ctx, jti)
}
