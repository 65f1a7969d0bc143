package shared

// Outcome reports what a delete did. A missing id is not an error.
type Outcome string

// Delete outcomes.
const (
	OutcomeDeleted  Outcome = "deleted"
	OutcomeNotFound Outcome = "not_found"
)
