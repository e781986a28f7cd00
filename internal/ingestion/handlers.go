package ingestion

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/ordinator/ordinator/internal/orchestrator"
	"github.com/ordinator/ordinator/internal/repository"
	"github.com/ordinator/ordinator/internal/schedenv"
	"github.com/ordinator/ordinator/internal/validation"
)

// Handlers executes re-ingestion tasks against a Source and an Orchestrator.
type Handlers struct {
	source       Source
	orchestrator *orchestrator.Orchestrator
	snapshots    repository.SnapshotRepository
	snapshotPath string
	log          *zap.SugaredLogger
}

// NewHandlers builds the re-ingestion task handler. snapshots/snapshotPath
// are optional: when snapshots is nil, a successful reingest simply skips
// refreshing the on-disk persisted-state fallback.
func NewHandlers(source Source, o *orchestrator.Orchestrator, snapshots repository.SnapshotRepository, snapshotPath string, log *zap.SugaredLogger) *Handlers {
	return &Handlers{
		source:       source,
		orchestrator: o,
		snapshots:    snapshots,
		snapshotPath: snapshotPath,
		log:          log.Named("ingestion"),
	}
}

// RegisterHandlers wires the re-ingestion task into an Asynq mux.
func (h *Handlers) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeReingest, h.HandleReingest)
}

// HandleReingest fetches a fresh snapshot, validates it, and reconfigures
// the orchestrator if it's clean. A validation failure aborts the refresh
// without touching the running environment and is not retried — the feed
// itself needs fixing, not another attempt.
func (h *Handlers) HandleReingest(ctx context.Context, _ *asynq.Task) error {
	snap, err := h.source.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetch environment snapshot: %w", err)
	}

	result := validation.ValidateSnapshot(snap)
	if !result.IsValid() {
		h.log.Errorw("reingest aborted: invalid snapshot", "errors", result.ErrorCount(), "summary", result.Summary())
		return fmt.Errorf("invalid environment snapshot: %w", asynq.SkipRetry)
	}
	if result.HasWarnings() {
		h.log.Warnw("reingest proceeding with warnings", "warnings", result.WarningCount())
	}

	env, err := schedenv.FromSnapshot(snap)
	if err != nil {
		return fmt.Errorf("rebuild scheduling environment: %w", err)
	}

	if err := h.orchestrator.Reconfigure(ctx, env); err != nil {
		return fmt.Errorf("reconfigure orchestrator: %w", err)
	}

	if h.snapshots != nil {
		data, err := json.Marshal(snap)
		if err != nil {
			h.log.Errorw("failed to marshal snapshot for persisted-state fallback", "error", err)
		} else if err := h.snapshots.Save(ctx, h.snapshotPath, data); err != nil {
			h.log.Errorw("failed to persist snapshot fallback", "path", h.snapshotPath, "error", err)
		}
	}

	h.log.Infow("reingest completed", "assets", len(env.Assets()))
	return nil
}
