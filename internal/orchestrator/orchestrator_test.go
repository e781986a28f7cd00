package orchestrator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ordinator/ordinator/internal/config"
	"github.com/ordinator/ordinator/internal/entity"
	"github.com/ordinator/ordinator/internal/repository"
	"github.com/ordinator/ordinator/internal/schedenv"
	"github.com/ordinator/ordinator/internal/strategic"
	"github.com/ordinator/ordinator/internal/supervisor"
)

// fakeAuditRepository records every Record call in memory, standing in for
// internal/repository/postgres in tests that exercise the audit-trail
// wiring without a database.
type fakeAuditRepository struct {
	mu      sync.Mutex
	records []repository.ObjectiveRecord
}

func (f *fakeAuditRepository) Record(_ context.Context, rec repository.ObjectiveRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeAuditRepository) ListRecent(context.Context, entity.Asset, int) ([]repository.ObjectiveRecord, error) {
	return nil, nil
}

func (f *fakeAuditRepository) ListRecentByActor(context.Context, entity.Asset, repository.ActorKind, entity.Id, int) ([]repository.ObjectiveRecord, error) {
	return nil, nil
}

func (f *fakeAuditRepository) Count(context.Context, entity.Asset) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.records)), nil
}

func (f *fakeAuditRepository) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

func testEnv(t *testing.T, asset entity.Asset) *schedenv.SchedulingEnvironment {
	t.Helper()
	period := entity.NewPeriod(2024, 41)
	env := schedenv.New()
	require.NoError(t, env.SetHorizon([]entity.Period{period}, nil))
	env.ConfigureAsset(&schedenv.ActorSpecification{
		Asset:         asset,
		SupervisorIDs: []entity.Id{"SUP1"},
		OperationalConfigs: []schedenv.OperationalConfig{
			{Technician: entity.Technician{ID: "T1", Skills: []entity.Resource{entity.ResourceMtnMech}}},
		},
	})
	return env
}

func testOrchestrator(t *testing.T) (*Orchestrator, entity.Asset) {
	t.Helper()
	asset := entity.Asset("PLT1")
	env := testEnv(t, asset)
	cfg := config.Config{MailboxCapacity: 8, IterationPace: time.Millisecond, RequestTimeout: time.Second}
	o := New(env, cfg, nil, nil, zaptest.NewLogger(t).Sugar())
	return o, asset
}

func TestOrchestrator_CreateAssetSpawnsEveryActorKind(t *testing.T) {
	o, asset := testOrchestrator(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, o.CreateAsset(ctx, asset))

	reg, ok := o.Registry(asset)
	require.True(t, ok)
	assert.NotNil(t, reg.Strategic)
	assert.NotNil(t, reg.Tactical)
	assert.Contains(t, reg.Supervisors, entity.Id("SUP1"))
	assert.Contains(t, reg.Operational, entity.Id("T1"))

	status, err := o.Status(context.Background(), asset)
	require.NoError(t, err)
	assert.True(t, status.Strategic)
	assert.True(t, status.Tactical)
	assert.True(t, status.Supervisors["SUP1"])
	assert.True(t, status.Operational["T1"])
}

func TestOrchestrator_CreateAssetTwiceFails(t *testing.T) {
	o, asset := testOrchestrator(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, o.CreateAsset(ctx, asset))
	assert.Error(t, o.CreateAsset(ctx, asset))
}

func TestOrchestrator_DeleteAssetStopsRouting(t *testing.T) {
	o, asset := testOrchestrator(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, o.CreateAsset(ctx, asset))
	o.DeleteAsset(asset)

	_, ok := o.Registry(asset)
	assert.False(t, ok)

	_, err := o.RequestStrategic(context.Background(), asset, strategic.Request{Kind: strategic.RequestStatus})
	assert.ErrorIs(t, err, entity.ErrUnknownAsset)
}

func TestOrchestrator_NotifyWorkOrderChangeFansOutToEveryActor(t *testing.T) {
	o, asset := testOrchestrator(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, o.CreateAsset(ctx, asset))
	require.NoError(t, o.NotifyWorkOrderChange(asset, []entity.WorkOrderNumber{2400000001}))

	// The notification is delivered asynchronously; a status round-trip
	// after a short grace period confirms every mailbox is still alive and
	// draining state links rather than deadlocked on the new message.
	time.Sleep(20 * time.Millisecond)
	status, err := o.Status(context.Background(), asset)
	require.NoError(t, err)
	assert.True(t, status.Strategic)
	assert.True(t, status.Operational["T1"])
}

func TestOrchestrator_UnknownSupervisorRequestFails(t *testing.T) {
	o, asset := testOrchestrator(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, o.CreateAsset(ctx, asset))
	_, err := o.RequestSupervisor(context.Background(), asset, "GHOST", supervisor.Request{Kind: supervisor.RequestStatus})
	assert.ErrorIs(t, err, entity.ErrTechnicianNotFound)
}

func TestOrchestrator_WatchErrorsCancelsAssetOnFatalError(t *testing.T) {
	o, asset := testOrchestrator(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, o.CreateAsset(ctx, asset))

	errCh := make(chan error, 1)
	go o.watchErrors(asset, errCh)
	errCh <- assert.AnError

	assert.Eventually(t, func() bool {
		_, ok := o.Registry(asset)
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestOrchestrator_RecordsPublishedObjectivesToAuditTrail(t *testing.T) {
	asset := entity.Asset("PLT1")
	env := testEnv(t, asset)
	audit := &fakeAuditRepository{}
	cfg := config.Config{
		MailboxCapacity: 8,
		IterationPace:   time.Millisecond,
		RequestTimeout:  time.Second,
		MetricsInterval: 10 * time.Millisecond,
	}
	o := New(env, cfg, nil, audit, zaptest.NewLogger(t).Sugar())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, o.CreateAsset(ctx, asset))

	assert.Eventually(t, func() bool {
		return audit.len() > 0
	}, time.Second, 10*time.Millisecond, "expected at least one objective to be recorded to the audit trail")
}
