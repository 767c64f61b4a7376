package server

import (
	"encoding/json"
	"net/http"

	"transflow/core/rating"
	"transflow/logger"
	"transflow/model"

	"github.com/gorilla/mux"
)

// RateTransitionRequest represents a vote submission.
type RateTransitionRequest struct {
	Rating int `json:"rating"` // +1 or -1
}

// RateTransitionResponse reports the caller's resulting vote state and the
// fresh aggregate counts.
type RateTransitionResponse struct {
	UserRating *int           `json:"userRating"`
	Ratings    rating.Summary `json:"ratings"`
}

// RateTransitionHandler applies the vote state machine for the calling user
// on one transition: voting the same way twice retracts the vote, voting the
// opposite way replaces it. The write is a single conditional upsert (or
// delete, for retraction) keyed on the (user, transition) unique index.
func (h *APIHandler) RateTransitionHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	transitionID := mux.Vars(r)["id"]

	var req RateTransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Rating != 1 && req.Rating != -1 {
		writeError(w, http.StatusBadRequest, "Rating must be +1 or -1")
		return
	}

	transition, err := h.transitionRepo.GetByID(r.Context(), transitionID)
	if err != nil {
		logger.Error("Failed to fetch transition for rating",
			logger.String("transitionId", transitionID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to submit rating")
		return
	}
	if transition == nil {
		writeError(w, http.StatusNotFound, "Transition not found")
		return
	}

	current := rating.None
	existing, err := h.ratingRepo.Get(r.Context(), userID, transitionID)
	if err != nil {
		logger.Error("Failed to fetch current vote",
			logger.Int64("userId", userID),
			logger.String("transitionId", transitionID),
			logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to submit rating")
		return
	}
	if existing != nil {
		current = rating.Value(existing.Rating)
	}

	next, change := rating.Apply(current, rating.Value(req.Rating))

	if change.Retract() {
		err = h.ratingRepo.Delete(r.Context(), userID, transitionID)
	} else {
		err = h.ratingRepo.Upsert(r.Context(), &model.Rating{
			UserID:       userID,
			TransitionID: transitionID,
			Rating:       int(next),
		})
	}
	if err != nil {
		// The store was not changed; cached counts stay valid, nothing to
		// roll back server-side.
		logger.Error("Failed to persist vote",
			logger.Int64("userId", userID),
			logger.String("transitionId", transitionID),
			logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to submit rating")
		return
	}

	if err := h.ratingCache.Invalidate(r.Context(), transitionID); err != nil {
		logger.Warn("Failed to invalidate rating cache",
			logger.String("transitionId", transitionID), logger.ErrorField(err))
	}

	summary, err := h.ratingSummary(r.Context(), transitionID)
	if err != nil {
		logger.Error("Failed to aggregate ratings after vote",
			logger.String("transitionId", transitionID), logger.ErrorField(err))
		// The vote is persisted; report it with zeroed counts rather than
		// failing the whole operation.
		summary = rating.Summary{}
	}

	resp := RateTransitionResponse{Ratings: summary}
	if next != rating.None {
		v := int(next)
		resp.UserRating = &v
	}

	writeJSON(w, http.StatusOK, resp)
}
