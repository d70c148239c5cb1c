// Package kv provides the durable local key-value primitive backing the
// spending ledger: JSON-serializable values addressed by string key.
package kv

import "context"

// Store is the persistence port. Set must be durable before it returns;
// Get returns ok=false for a missing key.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}
