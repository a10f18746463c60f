// Package models - recipe.go defines the Recipe model and its embedded
// preparation/image structures, plus the publication workflow fields.
package models

import (
	"encoding/json"
	"time"
)

// Ingredient is a single ingredient line inside a preparation.
type Ingredient struct {
	Name                string  `json:"name"`
	Optional            bool    `json:"optional"`
	QuantitySI          float64 `json:"quantity_si"`
	UnitSI              string  `json:"unit_si"` // kg, g, mg, l, dl, cl, ml, unit, unknow
	QuantityEquivalence float64 `json:"quantity_equivalence"`
	UnitEquivalence     string  `json:"unit_equivalence"`
}

// Step is a single preparation step.
type Step struct {
	Detail string `json:"detail"`
}

// Preparation groups ingredients and steps; a recipe may carry several
// (e.g. dough and filling prepared separately).
type Preparation struct {
	Name        string       `json:"name"`
	Ingredients []Ingredient `json:"ingredients"`
	Steps       []Step       `json:"steps"`
}

// FileBlob describes an image stored in the blob backend.
type FileBlob struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
}

// Recipe represents a recipe document. Published and Reviewed together encode
// the moderation state (see internal/moderation): Published=true is live;
// Published=false with Reviewed true/false/NULL means rejected, pending
// review, and draft respectively.
type Recipe struct {
	ID                     string        `json:"id"`
	Name                   *string       `json:"name"`
	Description            *string       `json:"description"`
	Lang                   *string       `json:"lang"`
	Owner                  *string       `json:"owner"`
	Publisher              *string       `json:"publisher"`
	Tags                   []string      `json:"tags"`
	Year                   int           `json:"year"`
	Location               *string       `json:"location"`
	Category               []string      `json:"category"`
	Portion                int           `json:"portion"`
	PreparationTimeMinutes int           `json:"preparation_time_minutes"`
	Calification           int           `json:"calification"`
	Preparation            []Preparation `json:"preparation"`
	Image                  *FileBlob     `json:"image"`
	Published              bool          `json:"published"`
	Reviewed               *bool         `json:"reviewed"`
	IsDisabled             bool          `json:"-"`
	CreatedAt              time.Time     `json:"created_at"`
	UpdatedAt              time.Time     `json:"updated_at"`
	UsernameInsert         *string       `json:"-"`
	UsernameUpdate         *string       `json:"-"`
}

// PreparationJSON marshals the preparation list for jsonb storage.
func (r *Recipe) PreparationJSON() ([]byte, error) {
	if r.Preparation == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(r.Preparation)
}
