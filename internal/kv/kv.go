// Package kv defines the key-value persistence contract the ledger
// engine writes its collection snapshots through. The engine always
// writes whole values, never deltas; the store treats them as opaque
// text.
package kv

import "context"

// Store is the outbound persistence port.
type Store interface {
	// Get returns the value for key, with ok = false when absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set durably replaces the value for key.
	Set(ctx context.Context, key, value string) error

	Close() error
}
