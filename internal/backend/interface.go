// Package backend selects and constructs the persistence backend from
// configuration: Postgres for hosted deployments, SQLite for
// single-node installs, memory for tests and demos.
package backend

import (
	"context"

	"finanzas/internal/store"
)

// CleanupFunc releases backend resources at shutdown.
type CleanupFunc func() error

// Result contains the store instance and optional cleanup function.
type Result struct {
	Store   store.Store
	Cleanup CleanupFunc
}

// Factory creates stores based on configuration.
type Factory interface {
	CreateStore(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for store creation.
type Config struct {
	Type Type

	// Postgres specific
	DatabaseURL string

	// SQLite specific
	SQLiteDBPath string
}

// Type identifies a persistence backend.
type Type string

const (
	PostgresBackend Type = "postgres"
	SQLiteBackend   Type = "sqlite"
	MemoryBackend   Type = "memory"
)

func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is recognized.
func (t Type) IsValid() bool {
	switch t {
	case PostgresBackend, SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
