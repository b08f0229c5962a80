package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// DirName is the per-user data directory name.
const DirName = ".fibertract"

// DefaultDataDir returns the default data directory.
// On Unix: ~/.fibertract
// On Windows: %USERPROFILE%\.fibertract
func DefaultDataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, DirName), nil
}

// Open returns the store for a backend name: "sqlite" opens dir's
// database, "memory" an empty in-memory store.
func Open(backend, dir string) (SnapshotStore, error) {
	switch backend {
	case "sqlite", "":
		return NewSQLiteSnapshotStore(dir)
	case "memory":
		return NewInMemorySnapshotStore(), nil
	}
	return nil, fmt.Errorf("unknown store backend %q", backend)
}
