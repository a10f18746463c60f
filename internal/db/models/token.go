// Package models - token.go defines the two credential records issued by the
// backend: long-lived static tokens for administrative API access and
// time-boxed session tokens for public authors. Both use struct tags for JSON
// serialization and sqlx row scanning.
package models

import "time"

// StaticToken is a long-lived opaque credential bound to an admin account.
// Secret is itself a signed payload embedding the owner identity, so
// validation can recover the identity without loading the account — but the
// record must still exist non-disabled in the store for the credential to be
// accepted. There is no expiry; revocation (soft-disable) is the only
// lifecycle end.
type StaticToken struct {
	ID             string    `json:"id" db:"id"`
	Username       string    `json:"username" db:"username"`
	Secret         string    `json:"token" db:"secret"`
	IsDisabled     bool      `json:"-" db:"is_disabled"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
	UsernameUpdate *string   `json:"-" db:"username_update"`
}

// SessionToken is the server-side record of an ephemeral bearer token.
// The signed token itself is never stored — JTI is the revocation key, which
// keeps logout an O(1) write against a constant-size record.
type SessionToken struct {
	ID         string    `json:"id" db:"id"`
	JTI        string    `json:"jti" db:"jti"`
	Username   string    `json:"username" db:"username"`
	ExpiresAt  time.Time `json:"expires_at" db:"expires_at"`
	IsDisabled bool      `json:"-" db:"is_disabled"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}
