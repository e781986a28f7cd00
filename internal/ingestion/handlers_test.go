package ingestion

import (
	"context"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ordinator/ordinator/internal/config"
	"github.com/ordinator/ordinator/internal/entity"
	"github.com/ordinator/ordinator/internal/orchestrator"
	"github.com/ordinator/ordinator/internal/repository/snapshot"
	"github.com/ordinator/ordinator/internal/schedenv"
)

type fakeSource struct {
	snap schedenv.Snapshot
	err  error
}

func (f fakeSource) Fetch(context.Context) (schedenv.Snapshot, error) {
	return f.snap, f.err
}

func validSnapshot(asset entity.Asset) schedenv.Snapshot {
	period := entity.NewPeriod(2024, 41)
	return schedenv.Snapshot{
		Periods: []entity.Period{period},
		Specifications: []*schedenv.ActorSpecification{{
			Asset:         asset,
			SupervisorIDs: []entity.Id{"SUP1"},
			OperationalConfigs: []schedenv.OperationalConfig{
				{Technician: entity.Technician{ID: "T1", Skills: []entity.Resource{entity.ResourceMtnMech}}},
			},
		}},
	}
}

func testOrchestrator(t *testing.T) *orchestrator.Orchestrator {
	t.Helper()
	env := schedenv.New()
	cfg := config.Config{MailboxCapacity: 8, IterationPace: time.Millisecond, RequestTimeout: time.Second}
	return orchestrator.New(env, cfg, nil, nil, zaptest.NewLogger(t).Sugar())
}

func TestHandleReingest_RebuildsEnvironmentAndReconfiguresOrchestrator(t *testing.T) {
	asset := entity.Asset("PLT1")
	o := testOrchestrator(t)
	h := NewHandlers(fakeSource{snap: validSnapshot(asset)}, o, nil, "", zaptest.NewLogger(t).Sugar())

	require.NoError(t, h.HandleReingest(context.Background(), asynq.NewTask(TypeReingest, nil)))

	assert.Contains(t, o.Assets(), asset)
	status, err := o.Status(context.Background(), asset)
	require.NoError(t, err)
	assert.True(t, status.Strategic)
}

func TestHandleReingest_InvalidSnapshotSkipsRetryWithoutReconfiguring(t *testing.T) {
	o := testOrchestrator(t)
	snap := schedenv.Snapshot{
		Periods: []entity.Period{entity.NewPeriod(2024, 41)},
		WorkOrders: []*entity.WorkOrder{{
			WorkOrderNumber: 2400000001,
			Asset:           "UNKNOWN",
		}},
	}
	h := NewHandlers(fakeSource{snap: snap}, o, nil, "", zaptest.NewLogger(t).Sugar())

	err := h.HandleReingest(context.Background(), asynq.NewTask(TypeReingest, nil))
	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Empty(t, o.Assets())
}

func TestHandleReingest_FetchFailurePropagates(t *testing.T) {
	o := testOrchestrator(t)
	h := NewHandlers(fakeSource{err: assert.AnError}, o, nil, "", zaptest.NewLogger(t).Sugar())

	err := h.HandleReingest(context.Background(), asynq.NewTask(TypeReingest, nil))
	assert.ErrorIs(t, err, assert.AnError)
}

func TestHandleReingest_PersistsSnapshotToFileStoreWhenConfigured(t *testing.T) {
	asset := entity.Asset("PLT1")
	o := testOrchestrator(t)
	store := snapshot.NewFileStore()
	path := t.TempDir() + "/ordinator-environment.json"
	h := NewHandlers(fakeSource{snap: validSnapshot(asset)}, o, store, path, zaptest.NewLogger(t).Sugar())

	require.NoError(t, h.HandleReingest(context.Background(), asynq.NewTask(TypeReingest, nil)))

	data, err := store.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Contains(t, string(data), string(asset))
}
