// Package cache stores successful remote responses keyed by endpoint and
// request body so identical requests within the TTL skip the network.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// DefaultTTL is applied when Set is called with a non-positive ttl.
const DefaultTTL = 15 * time.Minute

// ErrNotFound is returned when a key is absent or its entry has expired.
var ErrNotFound = errors.New("cache: not found")

// Store is the request cache used by the remote client. Only payloads of
// successful responses are ever written.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// Sweeper is implemented by stores that need expired entries removed
// eagerly.
type Sweeper interface {
	Cleanup(ctx context.Context) (removed int, err error)
	Len() int
}

// Key derives the request key as endpoint + "-" + JSON(body). Body should be
// a struct so field order, and therefore the key, is stable.
func Key(endpoint string, body any) (string, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode request key: %w", err)
	}
	return RawKey(endpoint, raw), nil
}

// RawKey builds the request key from an already encoded body.
func RawKey(endpoint string, raw []byte) string {
	return endpoint + "-" + string(raw)
}
