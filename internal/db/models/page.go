package models

import "time"

// Page is a server-rendered HTML fragment addressed by slug. The page with
// slug "index" backs the landing route.
type Page struct {
	ID         string    `json:"id" db:"id"`
	Slug       string    `json:"slug" db:"slug"`
	Title      string    `json:"title" db:"title"`
	HTML       string    `json:"html" db:"html"`
	IsDisabled bool      `json:"-" db:"is_disabled"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}
