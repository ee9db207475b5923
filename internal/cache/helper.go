package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"quill/internal/middleware"
	"quill/internal/observability"
)

// GetJSON attempts to get the key from store and unmarshal into dest.
// Returns (true, nil) if found and unmarshaled, (false, nil) if not found.
func GetJSON(ctx context.Context, store Store, key string, dest any) (bool, error) {
	if store == nil {
		return false, nil
	}
	b, found, err := store.Get(ctx, key)
	if err != nil || !found {
		return false, err
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals v and sets the key with TTL.
func SetJSON(ctx context.Context, store Store, key string, v any, ttl time.Duration) error {
	if store == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return store.Set(ctx, key, b, ttl)
}

// Aside serves dest from store when the key is present. On a miss it calls
// fetch, which must populate dest, and stores the result with ttl. Store
// failures fall back to fetch; only fetch errors are returned.
func Aside(ctx context.Context, store Store, key string, dest any, ttl time.Duration, fetch func() error) error {
	found, err := GetJSON(ctx, store, key, dest)
	if err != nil {
		observability.CacheErrors.WithLabelValues("get").Inc()
		middleware.Logger.WarnContext(ctx, "cache read failed, loading from source",
			slog.String("key", key), slog.String("error", err.Error()))
	}
	if found {
		observability.CacheHits.WithLabelValues(key).Inc()
		return nil
	}
	observability.CacheMisses.WithLabelValues(key).Inc()

	if err := fetch(); err != nil {
		return err
	}

	if err := SetJSON(ctx, store, key, dest, ttl); err != nil {
		observability.CacheErrors.WithLabelValues("set").Inc()
		middleware.Logger.WarnContext(ctx, "cache write failed",
			slog.String("key", key), slog.String("error", err.Error()))
	}
	return nil
}
