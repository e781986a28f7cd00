// Package snapshot implements the JSON-file persisted-state fallback (§6):
// when no upstream ingestion is available at startup, the Scheduling
// Environment is restored from the last snapshot written here.
package snapshot

import (
	"context"
	"fmt"
	"os"

	"github.com/ordinator/ordinator/internal/repository"
)

// FileStore implements repository.SnapshotRepository against the local
// filesystem. There is no library in the engine's stack for this — it is a
// single small file written atomically after each successful re-ingestion
// and read once at startup, so plain os/io is the right tool rather than a dependency.
type FileStore struct{}

var _ repository.SnapshotRepository = FileStore{}

// NewFileStore constructs a FileStore.
func NewFileStore() *FileStore {
	return &FileStore{}
}

// Save writes snapshot to path, replacing any previous contents. It writes
// to a temporary file first and renames over the target so a crash mid-write
// never leaves a truncated snapshot behind.
func (FileStore) Save(_ context.Context, path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace snapshot file: %w", err)
	}
	return nil
}

// Load reads the snapshot at path.
func (FileStore) Load(_ context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot file: %w", err)
	}
	return data, nil
}
