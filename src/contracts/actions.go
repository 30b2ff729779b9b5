package contracts

// Action is the terminal disposition the scoring pipeline assigns to a
// transaction. The four values are fixed by the backend.
type Action string

const (
	// ActionSafe marks a record that passed all quality checks.
	ActionSafe Action = "SAFE_TO_USE"

	// ActionReview marks a record that needs a human look before use.
	ActionReview Action = "REVIEW_REQUIRED"

	// ActionEscalate marks a record with critical quality or anomaly signals.
	ActionEscalate Action = "ESCALATE"

	// ActionNone marks a record rejected outright. Surfaced to users as the
	// "rejected" count.
	ActionNone Action = "NO_ACTION"
)

// Valid reports whether a is one of the four known dispositions.
func (a Action) Valid() bool {
	switch a {
	case ActionSafe, ActionReview, ActionEscalate, ActionNone:
		return true
	}
	return false
}

// Glyph returns the two-character status marker the backend uses in its
// reports ([OK], [??], [!!], [--]).
func (a Action) Glyph() string {
	switch a {
	case ActionSafe:
		return "[OK]"
	case ActionReview:
		return "[??]"
	case ActionEscalate:
		return "[!!]"
	case ActionNone:
		return "[--]"
	}
	return "[?]"
}

// Short returns the lowercase bucket name used for stats keys and filters.
func (a Action) Short() string {
	switch a {
	case ActionSafe:
		return "safe"
	case ActionReview:
		return "review"
	case ActionEscalate:
		return "escalate"
	case ActionNone:
		return "rejected"
	}
	return "unknown"
}
