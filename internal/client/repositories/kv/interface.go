// Package kv provides the key/value stores backing persisted client state:
// a durable SQLite-backed store (the localStorage analogue) and an in-memory
// store scoped to one session (the sessionStorage analogue).
package kv

import "context"

// Store is a simple byte-oriented key/value store.
//
// Get returns (nil, nil) when the key is absent. Delete and Clear succeed
// even when nothing matches.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
