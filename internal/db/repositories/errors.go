// Package repositories implements the data access layer (repository pattern)
// for the cookbook backend. Each repository type encapsulates all database
// queries for a domain entity. Handlers never issue SQL directly — all
// database access goes through this layer, which makes query logic testable
// in isolation and keeps the soft-delete filter in one place.
package repositories

import (
	"errors"

	"github.com/lib/pq"
)

// ErrUsernameTaken is returned by AccountRepository.Create when the generated
// username collides with an existing account. The identity binder treats it
// as a signal to regenerate the random suffix and retry — the database unique
// constraint is what makes the check-then-insert race-free.
var ErrUsernameTaken = errors.New("username already taken")

// isUniqueViolation reports whether err is a Postgres unique_violation on the
// given constraint (any constraint when name is empty).
func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	if pqErr.Code != "23505" {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}
