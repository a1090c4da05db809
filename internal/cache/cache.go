// Package cache holds rendered dashboard payloads between writes.
package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Keys written by the HTTP layer. Every write to storage deletes all of them.
const (
	KeyDashboard    = "dashboard"
	KeyTransactions = "transactions"
)

// Cache stores opaque byte payloads with a time-to-live.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// GetJSON decodes a cached payload into v. A payload that fails to decode is
// reported as a miss.
func GetJSON(ctx context.Context, c Cache, key string, v any) bool {
	data, ok := c.Get(ctx, key)
	if !ok {
		return false
	}
	return json.Unmarshal(data, v) == nil
}

func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, data, ttl)
}
