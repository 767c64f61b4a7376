package server

import (
	"net/http"

	"transflow/logger"
	"transflow/model"

	"github.com/gorilla/mux"
)

// AddFavoriteHandler bookmarks a transition for the calling user.
func (h *APIHandler) AddFavoriteHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	transitionID := mux.Vars(r)["id"]

	transition, err := h.transitionRepo.GetByID(r.Context(), transitionID)
	if err != nil {
		logger.Error("Failed to fetch transition for favorite",
			logger.String("transitionId", transitionID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to update favorites")
		return
	}
	if transition == nil {
		writeError(w, http.StatusNotFound, "Transition not found")
		return
	}

	if err := h.favoriteRepo.Add(r.Context(), &model.Favorite{
		UserID:       userID,
		TransitionID: transitionID,
	}); err != nil {
		logger.Error("Failed to add favorite",
			logger.Int64("userId", userID),
			logger.String("transitionId", transitionID),
			logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to update favorites")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"isFavorite": true})
}

// RemoveFavoriteHandler removes a bookmark for the calling user.
func (h *APIHandler) RemoveFavoriteHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	transitionID := mux.Vars(r)["id"]

	if err := h.favoriteRepo.Remove(r.Context(), userID, transitionID); err != nil {
		logger.Error("Failed to remove favorite",
			logger.Int64("userId", userID),
			logger.String("transitionId", transitionID),
			logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to update favorites")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"isFavorite": false})
}

// ListFavoritesHandler returns the calling user's bookmarked transitions
// with aggregated counts, newest bookmark first.
func (h *APIHandler) ListFavoritesHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	ids, err := h.favoriteRepo.ListTransitionIDsByUser(r.Context(), userID)
	if err != nil {
		logger.Error("Failed to list favorites",
			logger.Int64("userId", userID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to list favorites")
		return
	}

	transitions, err := h.transitionRepo.ListByIDs(r.Context(), ids)
	if err != nil {
		logger.Error("Failed to fetch favorite transitions",
			logger.Int64("userId", userID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to list favorites")
		return
	}

	// Preserve bookmark order rather than the repository's creation order.
	byID := make(map[string]*model.Transition, len(transitions))
	for _, t := range transitions {
		byID[t.ID] = t
	}
	ordered := make([]*model.Transition, 0, len(transitions))
	for _, id := range ids {
		if t, ok := byID[id]; ok {
			ordered = append(ordered, t)
		}
	}

	responses := h.buildResponses(r.Context(), ordered)
	for i := range responses {
		responses[i].IsFavorite = true
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"favorites": responses,
	})
}
