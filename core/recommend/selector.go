// Package recommend selects unrated transitions matching the artists a user
// has upvoted, with a recency fallback when no preference signal exists.
package recommend

import (
	"sort"
	"strings"
	"time"
)

// ArtistPair carries the two artist slots of an upvoted transition.
type ArtistPair struct {
	Artist1 string
	Artist2 string
}

// Candidate is a transition under consideration for recommendation.
type Candidate struct {
	ID        string
	Artist1   string
	Artist2   string
	CreatedAt time.Time
}

// Recommend returns up to limit candidates matching the artists appearing in
// the user's upvoted transitions, excluding already-rated transitions,
// most-recent first. With no upvote history, and whenever the filtered set
// comes up empty, it falls back to the limit most recent pool items with no
// further exclusion. Own submissions are not filtered out.
func Recommend(upvoted []ArtistPair, pool []Candidate, excludeIDs map[string]bool, limit int) []Candidate {
	if limit <= 0 {
		return nil
	}

	sorted := make([]Candidate, len(pool))
	copy(sorted, pool)
	sortByRecency(sorted)

	recent := truncate(sorted, limit)

	liked := likedArtists(upvoted)
	if len(liked) == 0 {
		return recent
	}

	var matched []Candidate
	for _, c := range sorted {
		if excludeIDs[c.ID] {
			continue
		}
		if liked[strings.ToLower(c.Artist1)] || liked[strings.ToLower(c.Artist2)] {
			matched = append(matched, c)
		}
	}

	if len(matched) == 0 {
		return recent
	}
	return truncate(matched, limit)
}

// likedArtists builds the set of distinct lowercased artist names from the
// user's upvoted transitions.
func likedArtists(upvoted []ArtistPair) map[string]bool {
	liked := make(map[string]bool, len(upvoted)*2)
	for _, p := range upvoted {
		if a := strings.TrimSpace(p.Artist1); a != "" {
			liked[strings.ToLower(a)] = true
		}
		if a := strings.TrimSpace(p.Artist2); a != "" {
			liked[strings.ToLower(a)] = true
		}
	}
	return liked
}

// sortByRecency orders candidates newest first, with the ID as tiebreak so
// the ordering is total.
func sortByRecency(cs []Candidate) {
	sort.SliceStable(cs, func(i, j int) bool {
		if !cs[i].CreatedAt.Equal(cs[j].CreatedAt) {
			return cs[i].CreatedAt.After(cs[j].CreatedAt)
		}
		return cs[i].ID < cs[j].ID
	})
}

func truncate(cs []Candidate, limit int) []Candidate {
	if len(cs) > limit {
		return cs[:limit]
	}
	return cs
}
