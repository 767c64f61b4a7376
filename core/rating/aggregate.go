// Package rating implements vote aggregation and the per-user vote state
// machine for transitions.
package rating

// Value is a signed vote. Positive values count as an upvote, negative as a
// downvote. Zero means no vote.
type Value int

const (
	None Value = 0
	Up   Value = 1
	Down Value = -1
)

// Summary holds the aggregate counts for one transition.
type Summary struct {
	Upvotes   int `json:"upvotes"`
	Downvotes int `json:"downvotes"`
	Score     int `json:"score"`
}

// Aggregate computes upvote and downvote counts over a sequence of vote
// values in a single pass. Zero values are excluded from both counts. A nil
// or empty sequence yields a zero Summary. Callers are responsible for
// guaranteeing at most one vote per (user, transition) pair upstream;
// duplicates are counted as distinct votes.
func Aggregate(values []Value) Summary {
	var s Summary
	for _, v := range values {
		switch {
		case v > 0:
			s.Upvotes++
		case v < 0:
			s.Downvotes++
		}
	}
	s.Score = s.Upvotes - s.Downvotes
	return s
}
