package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"transflow/core/rating"

	"github.com/go-redis/redis/v8"
)

// ratingTTL bounds how stale a cached summary can get; vote writes
// invalidate eagerly, the TTL is the backstop.
const ratingTTL = 10 * time.Minute

// RatingCache caches aggregated rating summaries per transition in Redis.
// All failures are returned to the caller to log and degrade around; the
// cache is never the source of truth.
type RatingCache struct {
	client *redis.Client
}

// NewRatingCache creates a rating cache backed by the given Redis client.
func NewRatingCache(client *redis.Client) *RatingCache {
	return &RatingCache{client: client}
}

// ratingKey generates the Redis key for a transition's rating summary.
func ratingKey(transitionID string) string {
	return fmt.Sprintf("rating:%s", transitionID)
}

// Get returns the cached summary, or (nil, nil) on a cache miss.
func (c *RatingCache) Get(ctx context.Context, transitionID string) (*rating.Summary, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}

	data, err := c.client.Get(ctx, ratingKey(transitionID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cached rating summary: %w", err)
	}

	var summary rating.Summary
	if err := json.Unmarshal([]byte(data), &summary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached rating summary: %w", err)
	}
	return &summary, nil
}

// Set stores the summary for a transition.
func (c *RatingCache) Set(ctx context.Context, transitionID string, summary rating.Summary) error {
	if c == nil || c.client == nil {
		return nil
	}

	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal rating summary: %w", err)
	}

	if err := c.client.Set(ctx, ratingKey(transitionID), data, ratingTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache rating summary: %w", err)
	}
	return nil
}

// Invalidate drops the cached summary after a vote write.
func (c *RatingCache) Invalidate(ctx context.Context, transitionID string) error {
	if c == nil || c.client == nil {
		return nil
	}

	if err := c.client.Del(ctx, ratingKey(transitionID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate rating summary: %w", err)
	}
	return nil
}
