// Package models defines the database model types for the cookbook backend.
// Each type corresponds to a database table. Models are pure data types —
// business logic belongs in the auth/moderation packages, query logic in the
// repositories layer.
package models

import "time"

// Account represents a local account bound to an externally verified identity.
// Accounts are created on first login and never hard-deleted; IsDisabled is a
// soft-delete flag that every read path must honour.
type Account struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"` // generated once, immutable
	Email      string    `json:"email"`
	GivenName  *string   `json:"given_name"`
	FamilyName *string   `json:"family_name"`
	Picture    *string   `json:"picture"`
	IsAdmin    bool      `json:"is_admin"` // immutable after creation
	IsDisabled bool      `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Profile is the verified identity tuple returned by the identity provider.
type Profile struct {
	Email      string
	GivenName  string
	FamilyName string
	Picture    string
}
