package ports

import (
	"context"
)

// KeyValueStore is the persistent medium the session survives restarts in.
// Get reports ok=false when the key is absent.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
}
