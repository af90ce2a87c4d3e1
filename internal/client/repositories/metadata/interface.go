// Package metadata is the local key/value store backing the durable session
// slot. Values are plain strings keyed by a fixed name.
package metadata

import (
	"context"
	"time"
)

// Record is one stored value together with the time it was last written.
type Record struct {
	Value     string
	UpdatedAt time.Time
}

type Repository interface {
	// Get returns (nil, nil) when the key is absent.
	Get(ctx context.Context, key string) (*Record, error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
