package server

import (
	"net/http"
	"sort"

	"transflow/logger"
)

// MonthCount is a month bucket of submissions.
type MonthCount struct {
	Month string `json:"month"` // e.g. "Jan 2026"
	Count int    `json:"count"`
}

// TopTransition is one row of the per-user leaderboard.
type TopTransition struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Upvotes   int    `json:"upvotes"`
	Downvotes int    `json:"downvotes"`
	Views     int64  `json:"views"`
	Score     int    `json:"score"`
}

// AnalyticsResponse aggregates a user's submission statistics.
type AnalyticsResponse struct {
	TotalTransitions   int             `json:"totalTransitions"`
	TotalViews         int64           `json:"totalViews"`
	TotalUpvotes       int             `json:"totalUpvotes"`
	TotalDownvotes     int             `json:"totalDownvotes"`
	TransitionsByMonth []MonthCount    `json:"transitionsByMonth"`
	TopTransitions     []TopTransition `json:"topTransitions"`
}

// AnalyticsHandler returns aggregate statistics over the calling user's own
// transitions. Missing view data reads as zero; rating fetch failures
// zero-fill rather than failing the view.
func (h *APIHandler) AnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	transitions, err := h.transitionRepo.ListByUser(r.Context(), userID)
	if err != nil {
		logger.Error("Failed to fetch transitions for analytics",
			logger.Int64("userId", userID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to load analytics")
		return
	}

	ids := make([]string, 0, len(transitions))
	for _, t := range transitions {
		ids = append(ids, t.ID)
	}
	summaries := h.ratingSummaries(r.Context(), ids)

	resp := AnalyticsResponse{
		TotalTransitions:   len(transitions),
		TransitionsByMonth: []MonthCount{},
		TopTransitions:     []TopTransition{},
	}

	monthCounts := make(map[string]int)
	var monthOrder []string

	for _, t := range transitions {
		summary := summaries[t.ID]
		resp.TotalUpvotes += summary.Upvotes
		resp.TotalDownvotes += summary.Downvotes
		resp.TotalViews += t.ViewsCount

		month := t.CreatedAt.Format("Jan 2006")
		if _, seen := monthCounts[month]; !seen {
			monthOrder = append(monthOrder, month)
		}
		monthCounts[month]++

		resp.TopTransitions = append(resp.TopTransitions, TopTransition{
			ID:        t.ID,
			Name:      t.Song1Name + " → " + t.Song2Name,
			Upvotes:   summary.Upvotes,
			Downvotes: summary.Downvotes,
			Views:     t.ViewsCount,
			Score:     summary.Score,
		})
	}

	// ListByUser returns newest first, so the month buckets arrive in
	// reverse chronological order already.
	for _, month := range monthOrder {
		resp.TransitionsByMonth = append(resp.TransitionsByMonth, MonthCount{
			Month: month,
			Count: monthCounts[month],
		})
	}

	sort.SliceStable(resp.TopTransitions, func(i, j int) bool {
		return resp.TopTransitions[i].Score > resp.TopTransitions[j].Score
	})
	if len(resp.TopTransitions) > 10 {
		resp.TopTransitions = resp.TopTransitions[:10]
	}

	writeJSON(w, http.StatusOK, resp)
}
