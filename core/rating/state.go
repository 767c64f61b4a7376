package rating

// Change is the count delta a vote transition implies for a transition's
// aggregate Summary. Returning the delta explicitly lets callers adjust an
// optimistic local Summary and roll it back if the persistence write fails.
type Change struct {
	DeltaUp   int
	DeltaDown int

	retract bool
}

// Retract reports whether the transition ends in the unrated state, meaning
// the stored vote row must be deleted rather than upserted.
func (c Change) Retract() bool {
	return c.retract
}

// Apply runs the vote state machine for one (user, transition) pair.
// Submitting the vote already held retracts it (toggle-off); submitting the
// opposite vote or voting from the unrated state upserts the new value.
// The returned Change carries the aggregate count adjustment.
func Apply(current, vote Value) (Value, Change) {
	vote = normalize(vote)
	current = normalize(current)

	if vote == None || current == vote {
		// Toggle-off: remove the existing vote, if any.
		return None, Change{
			DeltaUp:   -boolToInt(current == Up),
			DeltaDown: -boolToInt(current == Down),
			retract:   true,
		}
	}

	return vote, Change{
		DeltaUp:   boolToInt(vote == Up) - boolToInt(current == Up),
		DeltaDown: boolToInt(vote == Down) - boolToInt(current == Down),
	}
}

// Invert returns the change that undoes c, for rolling back an optimistic
// Summary adjustment after a failed write.
func (c Change) Invert() Change {
	return Change{DeltaUp: -c.DeltaUp, DeltaDown: -c.DeltaDown}
}

// ApplyTo returns s adjusted by the change.
func (c Change) ApplyTo(s Summary) Summary {
	s.Upvotes += c.DeltaUp
	s.Downvotes += c.DeltaDown
	s.Score = s.Upvotes - s.Downvotes
	return s
}

func normalize(v Value) Value {
	switch {
	case v > 0:
		return Up
	case v < 0:
		return Down
	default:
		return None
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
