package store

import "fmt"

// New creates a Store based on the backend name.
//
// Supported backends:
//
//	"json"   - single JSON array file at path (default)
//	"sqlite" - SQLite database at path
//	"memory" - in-memory (ephemeral, for testing)
//
// strict applies to the json backend only: when set, a corrupt backing
// file fails construction instead of starting an empty collection.
func New(backend, path string, strict bool) (Store, error) {
	switch backend {
	case "json", "":
		return NewJsonFileStore(path, strict)
	case "sqlite":
		return NewSqliteStore(path)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend: %q (supported: json, sqlite, memory)", backend)
	}
}
