package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"time"

	"transflow/core/rating"
	"transflow/logger"
	"transflow/model"
	"transflow/repository"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// ratingSortPoolSize bounds how many transitions are aggregated in memory
// when sorting by score, which has no backing column.
const ratingSortPoolSize = 200

// defaultListLimit is the page size when the client does not specify one.
const defaultListLimit = 24

// TransitionResponse is a transition with its derived rating counts and the
// requesting user's relationship to it.
type TransitionResponse struct {
	*model.Transition
	Ratings    rating.Summary `json:"ratings"`
	UserRating *int           `json:"userRating,omitempty"`
	IsFavorite bool           `json:"isFavorite,omitempty"`
}

// CreateTransitionRequest represents the submission request body.
type CreateTransitionRequest struct {
	Song1ID         string        `json:"song1Id"`
	Song1Name       string        `json:"song1Name"`
	Song1Artist     string        `json:"song1Artist"`
	Song1Image      string        `json:"song1Image"`
	Song2ID         string        `json:"song2Id"`
	Song2Name       string        `json:"song2Name"`
	Song2Artist     string        `json:"song2Artist"`
	Song2Image      string        `json:"song2Image"`
	CrossfadeLength int           `json:"crossfadeLength"`
	Description     string        `json:"description"`
	Tags            model.TagList `json:"tags"`
}

// CreateTransitionHandler handles transition submissions.
func (h *APIHandler) CreateTransitionHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CreateTransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Both tracks must be present at creation.
	if req.Song1ID == "" || req.Song2ID == "" {
		writeError(w, http.StatusBadRequest, "Both tracks are required")
		return
	}
	if req.Song1Name == "" || req.Song2Name == "" {
		writeError(w, http.StatusBadRequest, "Both track names are required")
		return
	}
	if req.CrossfadeLength < model.MinCrossfadeLength || req.CrossfadeLength > model.MaxCrossfadeLength {
		writeError(w, http.StatusBadRequest, "Crossfade length must be between 1 and 15 seconds")
		return
	}

	transition := &model.Transition{
		ID:              uuid.NewString(),
		UserID:          userID,
		Song1ID:         req.Song1ID,
		Song1Name:       req.Song1Name,
		Song1Artist:     req.Song1Artist,
		Song1Image:      req.Song1Image,
		Song2ID:         req.Song2ID,
		Song2Name:       req.Song2Name,
		Song2Artist:     req.Song2Artist,
		Song2Image:      req.Song2Image,
		CrossfadeLength: req.CrossfadeLength,
		Description:     req.Description,
		Tags:            req.Tags,
		CreatedAt:       time.Now(),
	}

	if err := h.transitionRepo.Create(r.Context(), transition); err != nil {
		logger.Error("Failed to create transition",
			logger.Int64("userId", userID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to create transition")
		return
	}

	logger.Info("Transition created",
		logger.String("transitionId", transition.ID), logger.Int64("userId", userID))

	writeJSON(w, http.StatusCreated, TransitionResponse{Transition: transition})
}

// ListTransitionsHandler returns transitions with aggregated rating counts.
// Supported query parameters: sort (newest|oldest|rating|crossfade), q
// (text search), limit, offset.
func (h *APIHandler) ListTransitionsHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit := parseIntParam(query.Get("limit"), defaultListLimit)
	if limit > 100 {
		limit = 100
	}
	offset := parseIntParam(query.Get("offset"), 0)
	sortKey := query.Get("sort")
	search := query.Get("q")

	var transitions []*model.Transition
	var err error

	if sortKey == "rating" {
		// Score is derived, so aggregate over a recency-bounded pool and
		// order in memory.
		transitions, err = h.transitionRepo.List(r.Context(), repository.ListOptions{
			Sort:   repository.SortNewest,
			Search: search,
			Limit:  ratingSortPoolSize,
		})
	} else {
		transitions, err = h.transitionRepo.List(r.Context(), repository.ListOptions{
			Sort:   sortKey,
			Search: search,
			Limit:  limit,
			Offset: offset,
		})
	}
	if err != nil {
		logger.Error("Failed to list transitions", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to list transitions")
		return
	}

	responses := h.buildResponses(r.Context(), transitions)

	if sortKey == "rating" {
		sort.SliceStable(responses, func(i, j int) bool {
			if responses[i].Ratings.Score != responses[j].Ratings.Score {
				return responses[i].Ratings.Score > responses[j].Ratings.Score
			}
			return responses[i].CreatedAt.After(responses[j].CreatedAt)
		})
		if offset < len(responses) {
			responses = responses[offset:]
		} else {
			responses = responses[:0]
		}
		if len(responses) > limit {
			responses = responses[:limit]
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"transitions": responses,
	})
}

// GetTransitionHandler returns one transition with counts and, for an
// authenticated caller, their vote and favorite state. A successful read
// records a view.
func (h *APIHandler) GetTransitionHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]

	transition, err := h.transitionRepo.GetByID(r.Context(), id)
	if err != nil {
		logger.Error("Failed to fetch transition",
			logger.String("transitionId", id), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch transition")
		return
	}
	if transition == nil {
		writeError(w, http.StatusNotFound, "Transition not found")
		return
	}

	resp := TransitionResponse{Transition: transition}

	summary, err := h.ratingSummary(r.Context(), id)
	if err != nil {
		// Secondary data: render the transition with zeroed counts.
		logger.Error("Failed to aggregate ratings, rendering with zeroed counts",
			logger.String("transitionId", id), logger.ErrorField(err))
	} else {
		resp.Ratings = summary
	}

	if userID, err := GetUserIDFromContext(r.Context()); err == nil {
		if userRating, err := h.ratingRepo.Get(r.Context(), userID, id); err != nil {
			logger.Warn("Failed to fetch user rating", logger.ErrorField(err))
		} else if userRating != nil {
			resp.UserRating = &userRating.Rating
		}
		if fav, err := h.favoriteRepo.Exists(r.Context(), userID, id); err != nil {
			logger.Warn("Failed to fetch favorite state", logger.ErrorField(err))
		} else {
			resp.IsFavorite = fav
		}
	}

	// Best-effort view tracking; never blocks or fails the read.
	go h.recordView(transition.ID)

	writeJSON(w, http.StatusOK, resp)
}

// MyTransitionsHandler returns the calling user's own submissions with
// aggregated counts, newest first.
func (h *APIHandler) MyTransitionsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	transitions, err := h.transitionRepo.ListByUser(r.Context(), userID)
	if err != nil {
		logger.Error("Failed to list user transitions",
			logger.Int64("userId", userID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to list transitions")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"transitions": h.buildResponses(r.Context(), transitions),
	})
}

// recordView bumps the view counter for a transition. Errors are logged and
// swallowed. Every render counts; there is no per-viewer deduplication.
func (h *APIHandler) recordView(transitionID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := h.transitionRepo.IncrementViews(ctx, transitionID); err != nil {
		logger.Warn("Failed to record view",
			logger.String("transitionId", transitionID), logger.ErrorField(err))
	}
}

// buildResponses attaches aggregated rating counts to a set of transitions.
// Rating fetch failures zero-fill rather than failing the listing.
func (h *APIHandler) buildResponses(ctx context.Context, transitions []*model.Transition) []TransitionResponse {
	ids := make([]string, 0, len(transitions))
	for _, t := range transitions {
		ids = append(ids, t.ID)
	}
	summaries := h.ratingSummaries(ctx, ids)

	responses := make([]TransitionResponse, 0, len(transitions))
	for _, t := range transitions {
		responses = append(responses, TransitionResponse{
			Transition: t,
			Ratings:    summaries[t.ID],
		})
	}
	return responses
}

func parseIntParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
