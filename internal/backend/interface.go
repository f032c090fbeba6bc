package backend

import (
	"context"

	"contas/internal/kv"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Result contains the opened store and optional cleanup function
type Result struct {
	Store   kv.Store
	Cleanup CleanupFunc
}

// Factory creates kv stores based on configuration
type Factory interface {
	// CreateStore opens a store instance based on the provided config
	CreateStore(ctx context.Context, config Config) (*Result, error)
}

// Type represents the kind of backing store
type Type string

const (
	SQLiteBackend Type = "sqlite"
	MemoryBackend Type = "memory"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid
func (t Type) IsValid() bool {
	switch t {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
