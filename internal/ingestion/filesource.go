package ingestion

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ordinator/ordinator/internal/repository/snapshot"
	"github.com/ordinator/ordinator/internal/schedenv"
)

// FileSource implements Source by re-reading the same JSON snapshot file
// the engine restores from at startup (§6 "Persisted state"). It is the
// default Source for deployments with no upstream ERP/CSV feed wired in —
// every Fetch re-reads and re-parses the file, whether or not it changed.
type FileSource struct {
	path  string
	store *snapshot.FileStore
}

// NewFileSource builds a FileSource reading from path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path, store: snapshot.NewFileStore()}
}

// Fetch implements Source.
func (s *FileSource) Fetch(ctx context.Context) (schedenv.Snapshot, error) {
	data, err := s.store.Load(ctx, s.path)
	if err != nil {
		return schedenv.Snapshot{}, err
	}
	var snap schedenv.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return schedenv.Snapshot{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return snap, nil
}
