// Package metadata is the console's host storage: a small key/value table in
// the local SQLite database.
package metadata

import (
	"context"
)

// Repository stores opaque values by key. Get returns common.ErrNotFound
// for a missing key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
