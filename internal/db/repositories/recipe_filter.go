// recipe_filter.go builds the WHERE clause shared by every filtered recipe
// read. List, search, count, and random-sample paths all consume the clause
// produced here, so the paginated content and the reported total can never
// drift apart.
package repositories

import (
	"fmt"
	"strings"
)

// ReviewFilter selects how the reviewed tristate participates in a query.
type ReviewFilter int

const (
	// ReviewIgnore adds no reviewed clause
	ReviewIgnore ReviewFilter = iota
	// ReviewReviewed matches reviewed = true (submitted and rejected)
	ReviewReviewed
	// ReviewNotReviewed matches reviewed = false (submitted and pending)
	ReviewNotReviewed
	// ReviewNotRequested matches reviewed IS NULL (never submitted)
	ReviewNotRequested
)

// RecipeFilter describes one filtered recipe query. The zero value matches
// unpublished recipes of any review state.
type RecipeFilter struct {
	Published bool
	Reviewed  ReviewFilter
	// Publisher restricts to one author's recipes when non-empty
	Publisher string
	// Query is a case-insensitive substring matched against name or description
	Query string
	// NameQuery is a case-insensitive substring matched against name only,
	// for the voice-assistant lookup where descriptions are never spoken
	NameQuery string
}

// whereClause renders the filter as a SQL WHERE clause with positional
// arguments. The soft-delete flag is baked in here so no caller can forget
// it. Returns the clause, its args, and the next argument ordinal for
// callers that append LIMIT/OFFSET.
func (f RecipeFilter) whereClause() (string, []interface{}, int) {
	clauses := []string{"is_disabled = FALSE"}
	var args []interface{}
	argCount := 0

	argCount++
	clauses = append(clauses, fmt.Sprintf("published = $%d", argCount))
	args = append(args, f.Published)

	switch f.Reviewed {
	case ReviewReviewed:
		clauses = append(clauses, "reviewed = TRUE")
	case ReviewNotReviewed:
		clauses = append(clauses, "reviewed = FALSE")
	case ReviewNotRequested:
		clauses = append(clauses, "reviewed IS NULL")
	}

	if f.Publisher != "" {
		argCount++
		clauses = append(clauses, fmt.Sprintf("publisher = $%d", argCount))
		args = append(args, f.Publisher)
	}

	if f.Query != "" {
		argCount++
		clauses = append(clauses, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", argCount, argCount))
		args = append(args, "%"+f.Query+"%")
	}

	if f.NameQuery != "" {
		argCount++
		clauses = append(clauses, fmt.Sprintf("name ILIKE $%d", argCount))
		args = append(args, "%"+f.NameQuery+"%")
	}

	return "WHERE " + strings.Join(clauses, " AND "), args, argCount
}
