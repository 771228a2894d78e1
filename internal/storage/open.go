package storage

import (
	"context"
	"fmt"
	"path/filepath"
)

// Backend kinds accepted by Open.
const (
	KindFile   = "file"
	KindSQLite = "sqlite"
	KindMemory = "memory"
)

// Open returns the backend of the given kind rooted at dataDir.
func Open(ctx context.Context, kind, dataDir string) (Backend, error) {
	switch kind {
	case KindFile, "":
		return OpenFileBackend(dataDir)
	case KindSQLite:
		return OpenSQLiteBackend(ctx, filepath.Join(dataDir, "liftlog.db"))
	case KindMemory:
		return NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", kind)
	}
}
