package server

import (
	"net/http"

	"transflow/core/recommend"
	"transflow/logger"
	"transflow/model"
)

const (
	defaultRecommendLimit = 6
	maxRecommendLimit     = 20

	// recommendPoolSize bounds the candidate pool scanned per request.
	recommendPoolSize = 200
)

// RecommendationsHandler returns transitions matching the artists the
// calling user has upvoted, excluding transitions they have already rated.
// With no upvote history it falls back to the most recent transitions.
func (h *APIHandler) RecommendationsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	limit := parseIntParam(r.URL.Query().Get("limit"), defaultRecommendLimit)
	if limit > maxRecommendLimit {
		limit = maxRecommendLimit
	}

	pool, err := h.transitionRepo.ListRecent(r.Context(), recommendPoolSize)
	if err != nil {
		logger.Error("Failed to fetch recommendation pool",
			logger.Int64("userId", userID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to load recommendations")
		return
	}

	// Preference signal and exclusions are secondary: on failure, degrade
	// to the recency fallback instead of failing the request.
	var upvoted []recommend.ArtistPair
	if rows, err := h.ratingRepo.ListUpvotedByUser(r.Context(), userID); err != nil {
		logger.Error("Failed to fetch upvote history, falling back to recency",
			logger.Int64("userId", userID), logger.ErrorField(err))
	} else {
		for _, row := range rows {
			upvoted = append(upvoted, recommend.ArtistPair{
				Artist1: row.Song1Artist,
				Artist2: row.Song2Artist,
			})
		}
	}

	exclude := make(map[string]bool)
	if ratedIDs, err := h.ratingRepo.ListRatedIDsByUser(r.Context(), userID); err != nil {
		logger.Warn("Failed to fetch rated transition IDs",
			logger.Int64("userId", userID), logger.ErrorField(err))
	} else {
		for _, id := range ratedIDs {
			exclude[id] = true
		}
	}

	byID := make(map[string]*model.Transition, len(pool))
	candidates := make([]recommend.Candidate, 0, len(pool))
	for _, t := range pool {
		byID[t.ID] = t
		candidates = append(candidates, recommend.Candidate{
			ID:        t.ID,
			Artist1:   t.Song1Artist,
			Artist2:   t.Song2Artist,
			CreatedAt: t.CreatedAt,
		})
	}

	selected := recommend.Recommend(upvoted, candidates, exclude, limit)

	transitions := make([]*model.Transition, 0, len(selected))
	for _, c := range selected {
		if t, ok := byID[c.ID]; ok {
			transitions = append(transitions, t)
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"recommendations": h.buildResponses(r.Context(), transitions),
	})
}
