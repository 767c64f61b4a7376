package server

import (
	"context"
	"net/http"

	"transflow/core/achievement"
	"transflow/logger"
)

// AchievementsHandler evaluates the calling user's achievements from their
// aggregate counters. The counters are recomputed on every read; nothing is
// persisted.
func (h *APIHandler) AchievementsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	stats, err := h.userStats(r.Context(), userID)
	if err != nil {
		logger.Error("Failed to compute user stats",
			logger.Int64("userId", userID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to load achievements")
		return
	}

	earned := achievement.Evaluate(stats, achievement.Catalog)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"stats":   stats,
		"earned":  earned,
		"catalog": achievement.Catalog,
	})
}

// userStats gathers the aggregate counters achievements are evaluated
// against: submissions, ratings given, and the maximum upvote count across
// the user's own transitions.
func (h *APIHandler) userStats(ctx context.Context, userID int64) (achievement.Stats, error) {
	var stats achievement.Stats

	submissions, err := h.transitionRepo.CountByUser(ctx, userID)
	if err != nil {
		return stats, err
	}
	stats.Submissions = int(submissions)

	ratingsGiven, err := h.ratingRepo.CountByUser(ctx, userID)
	if err != nil {
		return stats, err
	}
	stats.RatingsGiven = int(ratingsGiven)

	owned, err := h.transitionRepo.ListByUser(ctx, userID)
	if err != nil {
		return stats, err
	}
	ids := make([]string, 0, len(owned))
	for _, t := range owned {
		ids = append(ids, t.ID)
	}
	for _, summary := range h.ratingSummaries(ctx, ids) {
		if summary.Upvotes > stats.MaxUpvotes {
			stats.MaxUpvotes = summary.Upvotes
		}
	}

	return stats, nil
}
