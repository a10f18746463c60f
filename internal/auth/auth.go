// Package auth implements the two credential schemes of the cookbook
// backend: long-lived static tokens bound to administrative accounts and
// time-boxed session tokens issued to public authors on login. Both kinds are
// HS256-signed with one shared process-wide secret, but they differ
// structurally — the static secret embeds a custom identity payload and never
// expires, while the session token carries standard subject/expiry/jti claims
// and can be revoked server-side by jti.
//
// See internal/middleware/auth.go for the request-time logic that uses these
// services.
package auth

import (
	"errors"
	"strings"
)

var (
	// ErrTokenUnknown means the presented secret matches no live store record.
	// Distinct from ErrTokenInvalid: a revoked credential whose signature
	// still verifies fails with this error.
	ErrTokenUnknown = errors.New("token unknown")

	// ErrTokenInvalid means the credential failed cryptographic verification
	ErrTokenInvalid = errors.New("token invalid")

	// ErrNotFound means no matching record exists for the requester. An
	// existing record owned by someone else reports the same error — callers
	// must not be able to probe for other users' credentials.
	ErrNotFound = errors.New("token not found")
)

// Identity is the authenticated principal recovered from a credential.
type Identity struct {
	Username string
	// JTI is set only for session-token identities; logout revokes by it.
	JTI string
}

// StripBearer removes an optional "Bearer " prefix from an Authorization
// header value. Both credential kinds accept the raw value too.
func StripBearer(header string) string {
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return strings.TrimSpace(header)
}
