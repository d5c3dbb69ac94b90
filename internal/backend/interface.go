package backend

import (
	"context"

	"bollette/internal/services"
)

// Backend bundles every storage port the services need. Both the
// in-memory store and the SQLite repository satisfy it.
type Backend interface {
	services.BillStore
	services.Ledger
	services.LedgerReader
	services.UnitOfWork
	services.AccountStore
	services.CategoryStore
}

// CleanupFunc releases backend resources (database handles etc.).
type CleanupFunc func() error

// Result contains the backend instance and optional cleanup function.
type Result struct {
	Backend Backend
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// BackendType identifies a storage backend.
type BackendType string

const (
	MemoryBackend BackendType = "memory"
	SQLiteBackend BackendType = "sqlite"
)

func (t BackendType) IsValid() bool {
	switch t {
	case MemoryBackend, SQLiteBackend:
		return true
	}
	return false
}
