// Package moderation is the single source of truth for the recipe publication
// workflow. It is pure decision logic: given the (published, reviewed) pair it
// derives the workflow state and answers whether an author-initiated
// transition is legal, and with what reason when it is not. Persistence-side
// enforcement lives in the recipe repository, whose guarded UPDATE statements
// mirror these decisions so racing requests resolve consistently.
//
// State encoding:
//
//	published = true                     → Published (reviewed not consulted)
//	published = false, reviewed = true   → Rejected
//	published = false, reviewed = false  → PendingReview
//	published = false, reviewed = null   → Draft
package moderation

// State is the externally visible workflow state of a recipe.
type State int

const (
	// Draft is the initial state of every author-created recipe
	Draft State = iota
	// PendingReview means the author has submitted the recipe for review
	PendingReview
	// Rejected means a moderator reviewed the recipe and declined to publish it
	Rejected
	// Published means the recipe is publicly visible
	Published
)

// String returns the state name used in API responses and logs.
func (s State) String() string {
	switch s {
	case Draft:
		return "draft"
	case PendingReview:
		return "pending"
	case Rejected:
		return "rejected"
	case Published:
		return "published"
	default:
		return "unknown"
	}
}

// StateOf derives the workflow state from the stored flag pair.
func StateOf(published bool, reviewed *bool) State {
	if published {
		return Published
	}
	switch {
	case reviewed == nil:
		return Draft
	case *reviewed:
		return Rejected
	default:
		return PendingReview
	}
}

// Decision is the outcome of a guard check. When Allowed is false, Reason
// carries the human-readable conflict message for the 409 response.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision        { return Decision{Allowed: true} }
func deny(r string) Decision { return Decision{Reason: r} }

// CanSubmitForReview guards the draft → pending transition. A recipe already
// published has left the workflow and cannot be resubmitted.
func CanSubmitForReview(published bool, reviewed *bool) Decision {
	if StateOf(published, reviewed) == Published {
		return deny("recipe is already published")
	}
	return allow()
}

// CanWithdrawReview guards pending/rejected → draft.
func CanWithdrawReview(published bool, reviewed *bool) Decision {
	if StateOf(published, reviewed) == Published {
		return deny("recipe is already published")
	}
	return allow()
}

// CanEdit guards content edits. Published recipes are frozen, and a recipe
// sitting in the review queue must be withdrawn before editing — silently
// mutating a pending submission would invalidate the moderator's view.
// A permitted edit always forces the recipe back to Draft.
func CanEdit(published bool, reviewed *bool) Decision {
	switch StateOf(published, reviewed) {
	case Published:
		return deny("recipe is published and cannot be edited")
	case PendingReview:
		return deny("recipe is under review and cannot be edited")
	default:
		return allow()
	}
}

// CanUnpublish guards the author-initiated published → draft reversion. It is
// the only author transition legal from Published; the reversion clears the
// reviewed flag.
func CanUnpublish(published bool, reviewed *bool) Decision {
	if StateOf(published, reviewed) != Published {
		return deny("recipe is not published")
	}
	return allow()
}

// CanReplaceImage guards author-initiated image replacement. Only publication
// freezes the image: a published recipe's picture is public content and must
// be unpublished before it can change. Draft, pending, and rejected recipes
// may swap images freely — the image is not part of the moderated text.
func CanReplaceImage(published bool, reviewed *bool) Decision {
	if StateOf(published, reviewed) == Published {
		return deny("recipe is published and its image cannot be changed")
	}
	return allow()
}

// CanDelete guards soft deletion. Publication must be undone first.
func CanDelete(published bool, reviewed *bool) Decision {
	if StateOf(published, reviewed) == Published {
		return deny("recipe is published; unpublish it first")
	}
	return allow()
}
