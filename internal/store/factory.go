package store

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/bunkolab/bunko/internal/artifact"
)

// Backend names accepted by New.
const (
	BackendPairFile = "pairfile"
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
)

// New creates the named backend. "pairfile" needs the artifact file area,
// "sqlite" needs the database path, "memory" needs neither.
func New(backend string, files *artifact.Store, dbPath string, logger *zap.Logger) (VectorStore, error) {
	switch backend {
	case BackendPairFile:
		if files == nil {
			return nil, fmt.Errorf("pairfile backend requires a file area")
		}
		return NewPairFileStore(files, WithPairFileLogger(logger)), nil
	case BackendSQLite:
		if dbPath == "" {
			return nil, fmt.Errorf("sqlite backend requires a database path")
		}
		return NewSQLiteStore(dbPath)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend: %s (supported: pairfile, sqlite, memory)", backend)
	}
}
