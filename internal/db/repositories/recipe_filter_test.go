package repositories

import "testing"

func TestWhereClause_ZeroValue(t *testing.T) {
	where, args, argCount := RecipeFilter{}.whereClause()

	want := "WHERE is_disabled = FALSE AND published = $1"
	if where != want {
		t.Errorf("whereClause() = %q, want %q", where, want)
	}
	if len(args) != 1 || args[0] != false {
		t.Errorf("args = %v, want [false]", args)
	}
	if argCount != 1 {
		t.Errorf("argCount = %d, want 1", argCount)
	}
}

func TestWhereClause_ReviewedMapping(t *testing.T) {
	tests := []struct {
		name     string
		reviewed ReviewFilter
		want     string
	}{
		{"ignore adds nothing", ReviewIgnore, "WHERE is_disabled = FALSE AND published = $1"},
		{"reviewed true", ReviewReviewed, "WHERE is_disabled = FALSE AND published = $1 AND reviewed = TRUE"},
		{"reviewed false", ReviewNotReviewed, "WHERE is_disabled = FALSE AND published = $1 AND reviewed = FALSE"},
		{"never requested", ReviewNotRequested, "WHERE is_disabled = FALSE AND published = $1 AND reviewed IS NULL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, _, _ := RecipeFilter{Reviewed: tt.reviewed}.whereClause()
			if where != tt.want {
				t.Errorf("whereClause() = %q, want %q", where, tt.want)
			}
		})
	}
}

func TestWhereClause_FullFilter(t *testing.T) {
	filter := RecipeFilter{
		Published: true,
		Reviewed:  ReviewNotRequested,
		Publisher: "jane.doe#0042",
		Query:     "tortilla",
	}
	where, args, argCount := filter.whereClause()

	want := "WHERE is_disabled = FALSE AND published = $1 AND reviewed IS NULL AND publisher = $2 AND (name ILIKE $3 OR description ILIKE $3)"
	if where != want {
		t.Errorf("whereClause() = %q, want %q", where, want)
	}
	if len(args) != 3 {
		t.Fatalf("args = %v, want 3 entries", args)
	}
	if args[0] != true || args[1] != "jane.doe#0042" || args[2] != "%tortilla%" {
		t.Errorf("args = %v", args)
	}
	if argCount != 3 {
		t.Errorf("argCount = %d, want 3", argCount)
	}
}

// The voice-assistant lookup matches names only: a query for "huevo" must not
// pull in every recipe whose description mentions eggs.
func TestWhereClause_NameQueryMatchesNameOnly(t *testing.T) {
	where, args, argCount := RecipeFilter{Published: true, NameQuery: "huevo"}.whereClause()

	want := "WHERE is_disabled = FALSE AND published = $1 AND name ILIKE $2"
	if where != want {
		t.Errorf("whereClause() = %q, want %q", where, want)
	}
	if len(args) != 2 || args[1] != "%huevo%" {
		t.Errorf("args = %v, want [true %%huevo%%]", args)
	}
	if argCount != 2 {
		t.Errorf("argCount = %d, want 2", argCount)
	}
}

// Find and Count must consume the exact same predicate: any drift here means
// a dashboard page can disagree with its own total.
func TestWhereClause_SharedBetweenFindAndCount(t *testing.T) {
	filter := RecipeFilter{Published: true, Publisher: "jane.doe#0042", Query: "pan"}

	whereA, argsA, _ := filter.whereClause()
	whereB, argsB, _ := filter.whereClause()

	if whereA != whereB {
		t.Errorf("clause not deterministic: %q vs %q", whereA, whereB)
	}
	if len(argsA) != len(argsB) {
		t.Fatalf("arg counts differ: %d vs %d", len(argsA), len(argsB))
	}
	for i := range argsA {
		if argsA[i] != argsB[i] {
			t.Errorf("arg %d differs: %v vs %v", i, argsA[i], argsB[i])
		}
	}
}
