package domain

import (
	"context"
	"time"
)

// Cache is the port for the optional response cache. Implementations must
// return ErrCacheMiss when a key is absent.
type Cache interface {
	// Get retrieves the value for key.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key with the given expiration.
	Set(ctx context.Context, key string, value string, expiration time.Duration) error

	// Delete removes key.
	Delete(ctx context.Context, key string) error

	// Ping checks backend health.
	Ping(ctx context.Context) error
}
