// Package storage provides the key/value stores the ledger runs
// against: an in-memory map for tests and development, a Postgres
// table for durable deployments, and a staged write frame that gives
// each call transactional semantics over either backend.
package storage

import "context"

// Put is a single pending key/value write.
type Put struct {
	Key   string
	Value []byte
}

// KV is the host-supplied key/value store. Get returns nil for an
// absent key. Apply writes a batch of puts atomically: either every
// put is visible afterwards or none is.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Apply(ctx context.Context, puts []Put) error
}
