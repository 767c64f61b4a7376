package server

import (
	"context"
	"encoding/json"
	"net/http"

	"transflow/cache"
	"transflow/config"
	"transflow/core/rating"
	"transflow/core/spotify"
	"transflow/logger"
	"transflow/repository"
)

// APIHandler handles all API requests.
type APIHandler struct {
	userRepo       repository.UserRepository
	transitionRepo repository.TransitionRepository
	ratingRepo     repository.RatingRepository
	favoriteRepo   repository.FavoriteRepository
	ratingCache    *cache.RatingCache
	spotifyClient  *spotify.Client
	cfg            *config.Config
}

// NewAPIHandler creates a new API handler.
func NewAPIHandler(
	userRepo repository.UserRepository,
	transitionRepo repository.TransitionRepository,
	ratingRepo repository.RatingRepository,
	favoriteRepo repository.FavoriteRepository,
	ratingCache *cache.RatingCache,
	spotifyClient *spotify.Client,
	cfg *config.Config,
) *APIHandler {
	return &APIHandler{
		userRepo:       userRepo,
		transitionRepo: transitionRepo,
		ratingRepo:     ratingRepo,
		favoriteRepo:   favoriteRepo,
		ratingCache:    ratingCache,
		spotifyClient:  spotifyClient,
		cfg:            cfg,
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			logger.Error("Failed to encode JSON response", logger.ErrorField(err))
		}
	}
}

// writeError writes a JSON error body with the given status code.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// ratingSummary returns the aggregate rating counts for one transition,
// consulting the cache first. Cache failures degrade to direct aggregation.
func (h *APIHandler) ratingSummary(ctx context.Context, transitionID string) (rating.Summary, error) {
	if cached, err := h.ratingCache.Get(ctx, transitionID); err != nil {
		logger.Warn("Rating cache read failed",
			logger.String("transitionId", transitionID), logger.ErrorField(err))
	} else if cached != nil {
		return *cached, nil
	}

	ratings, err := h.ratingRepo.ListForTransition(ctx, transitionID)
	if err != nil {
		return rating.Summary{}, err
	}

	values := make([]rating.Value, 0, len(ratings))
	for _, r := range ratings {
		values = append(values, rating.Value(r.Rating))
	}
	summary := rating.Aggregate(values)

	if err := h.ratingCache.Set(ctx, transitionID, summary); err != nil {
		logger.Warn("Rating cache write failed",
			logger.String("transitionId", transitionID), logger.ErrorField(err))
	}
	return summary, nil
}

// ratingSummaries aggregates votes for a batch of transitions in one query.
// If the batch fetch fails, every transition gets a zero summary so the
// caller can still render the primary data.
func (h *APIHandler) ratingSummaries(ctx context.Context, transitionIDs []string) map[string]rating.Summary {
	summaries := make(map[string]rating.Summary, len(transitionIDs))
	for _, id := range transitionIDs {
		summaries[id] = rating.Summary{}
	}

	ratings, err := h.ratingRepo.ListForTransitions(ctx, transitionIDs)
	if err != nil {
		logger.Error("Failed to fetch ratings batch, rendering with zeroed counts",
			logger.Int("transitions", len(transitionIDs)), logger.ErrorField(err))
		return summaries
	}

	grouped := make(map[string][]rating.Value, len(transitionIDs))
	for _, r := range ratings {
		grouped[r.TransitionID] = append(grouped[r.TransitionID], rating.Value(r.Rating))
	}
	for id, values := range grouped {
		summaries[id] = rating.Aggregate(values)
	}
	return summaries
}

// HealthHandler reports liveness of the service and its dependencies.
func (h *APIHandler) HealthHandler(dbPing func(context.Context) error, redisPing func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{"status": "ok", "database": "ok", "cache": "ok"}
		code := http.StatusOK

		if err := dbPing(r.Context()); err != nil {
			status["status"] = "degraded"
			status["database"] = err.Error()
			code = http.StatusServiceUnavailable
		}
		if err := redisPing(r.Context()); err != nil {
			// Redis is a cache only; report but stay healthy.
			status["cache"] = err.Error()
		}

		writeJSON(w, code, status)
	}
}
