// Package store persists meeting state snapshots between updates so a hosting
// application can recover or inspect meetings outside the owning process.
// Backends hold opaque bytes keyed by meeting ID; the agent decides the
// encoding.
package store

import "context"

// SnapshotStore is the storage abstraction for meeting snapshots.
type SnapshotStore interface {
	// Put stores a snapshot under the given key, replacing any previous one.
	Put(ctx context.Context, key string, data []byte) error

	// Get retrieves the snapshot stored under key.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes the snapshot stored under key. Deleting a missing key
	// is not an error.
	Delete(ctx context.Context, key string) error

	// List returns all stored keys with the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)

	// Close releases any resources held by the store.
	Close() error
}
