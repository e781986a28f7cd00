package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/ordinator/ordinator/internal/actor"
	"github.com/ordinator/ordinator/internal/config"
	"github.com/ordinator/ordinator/internal/entity"
	"github.com/ordinator/ordinator/internal/metrics"
	"github.com/ordinator/ordinator/internal/operational"
	"github.com/ordinator/ordinator/internal/repository"
	"github.com/ordinator/ordinator/internal/schedenv"
	"github.com/ordinator/ordinator/internal/sharedsolution"
	"github.com/ordinator/ordinator/internal/strategic"
	"github.com/ordinator/ordinator/internal/supervisor"
	"github.com/ordinator/ordinator/internal/tactical"
)

// Orchestrator owns the Scheduling Environment handle, the per-asset actor
// registries and fabrics, and the fan-in of actor fatal errors (§4.9).
type Orchestrator struct {
	env     *schedenv.SchedulingEnvironment
	cfg     config.Config
	metrics *metrics.Registry
	audit   repository.ObjectiveAuditRepository
	log     *zap.SugaredLogger

	mu     sync.RWMutex
	assets map[entity.Asset]*assetFabric

	seed atomic.Int64
}

// New constructs an Orchestrator over an already-configured Scheduling
// Environment. No asset is running until CreateAsset is called. audit may be
// nil, in which case published objectives are only exposed via metrics, not
// persisted to the audit trail.
func New(env *schedenv.SchedulingEnvironment, cfg config.Config, reg *metrics.Registry, audit repository.ObjectiveAuditRepository, log *zap.SugaredLogger) *Orchestrator {
	return &Orchestrator{
		env:     env,
		cfg:     cfg,
		metrics: reg,
		audit:   audit,
		log:     log.Named("orchestrator"),
		assets:  make(map[entity.Asset]*assetFabric),
	}
}

func (o *Orchestrator) nextSeed() int64 {
	return o.seed.Add(1)
}

// CreateAsset implements asset_factory(asset) (§4.9): read the asset's
// configuration, spawn one strategic, one tactical, N supervisor and M
// operational actors, and register their mailboxes.
func (o *Orchestrator) CreateAsset(parent context.Context, asset entity.Asset) error {
	o.mu.Lock()
	if _, exists := o.assets[asset]; exists {
		o.mu.Unlock()
		return fmt.Errorf("asset %s already running", asset)
	}
	o.mu.Unlock()

	spec, err := o.env.ActorSpecification(asset)
	if err != nil {
		return &entity.ConfigurationError{Asset: asset, Reason: err.Error()}
	}

	fabric := sharedsolution.NewFabric(nil)
	ctx, cancel := context.WithCancel(parent)
	errCh := make(chan error, 8)
	reg := newAssetRegistry(cancel)

	stratActor, err := strategic.New(asset, o.env, fabric, o.log, o.nextSeed())
	if err != nil {
		cancel()
		return fmt.Errorf("spawn strategic actor for %s: %w", asset, err)
	}
	reg.Strategic = strategic.NewMailbox(o.cfg.MailboxCapacity)
	go actor.Run(ctx, reg.Strategic, stratActor, errCh, o.cfg.IterationPace, o.log)

	tactActor, err := tactical.New(asset, o.env, fabric, o.log, o.nextSeed())
	if err != nil {
		cancel()
		return fmt.Errorf("spawn tactical actor for %s: %w", asset, err)
	}
	reg.Tactical = tactical.NewMailbox(o.cfg.MailboxCapacity)
	go actor.Run(ctx, reg.Tactical, tactActor, errCh, o.cfg.IterationPace, o.log)

	periods := o.env.StrategicHorizon().Periods
	for _, id := range spec.SupervisorIDs {
		supActor, err := supervisor.New(id, asset, periods, o.env, fabric, o.log, o.nextSeed())
		if err != nil {
			cancel()
			return fmt.Errorf("spawn supervisor actor %s for %s: %w", id, asset, err)
		}
		mailbox := supervisor.NewMailbox(o.cfg.MailboxCapacity)
		reg.Supervisors[id] = mailbox
		go actor.Run(ctx, mailbox, supActor, errCh, o.cfg.IterationPace, o.log)
	}

	for _, opCfg := range spec.OperationalConfigs {
		opActor, err := operational.New(opCfg, asset, o.env, fabric, o.log, o.nextSeed())
		if err != nil {
			cancel()
			return fmt.Errorf("spawn operational actor %s for %s: %w", opCfg.Technician.ID, asset, err)
		}
		mailbox := operational.NewMailbox(o.cfg.MailboxCapacity)
		reg.Operational[opCfg.Technician.ID] = mailbox
		go actor.Run(ctx, mailbox, opActor, errCh, o.cfg.IterationPace, o.log)
	}

	o.mu.Lock()
	o.assets[asset] = &assetFabric{registry: reg, fabric: fabric}
	o.mu.Unlock()

	go o.watchErrors(asset, errCh)
	if o.metrics != nil || o.audit != nil {
		go o.pollMetrics(ctx, asset)
	}

	o.log.Infow("asset created",
		"asset", asset,
		"supervisors", len(spec.SupervisorIDs),
		"operational", len(spec.OperationalConfigs),
	)
	return nil
}

// watchErrors implements the error-channel half of §4.9: select on the
// asset's actor error channel; on the first error, cancel every actor for
// that asset and deregister it. The rest of the system continues (§7
// "Invariant violation... the orchestrator logs and cancels actors for that
// asset; the rest of the system continues").
func (o *Orchestrator) watchErrors(asset entity.Asset, errCh <-chan error) {
	err, ok := <-errCh
	if !ok {
		return
	}
	o.log.Errorw("actor fatal error; cancelling asset", "asset", asset, "error", err)
	if o.metrics != nil {
		o.metrics.ActorFatalErrors.WithLabelValues(string(asset), "unknown", "").Inc()
	}
	o.DeleteAsset(asset)
}

// DeleteAsset cancels and deregisters an asset's actors.
func (o *Orchestrator) DeleteAsset(asset entity.Asset) {
	o.mu.Lock()
	af, ok := o.assets[asset]
	if ok {
		delete(o.assets, asset)
	}
	o.mu.Unlock()
	if !ok {
		return
	}
	af.registry.closeAll()
	o.log.Infow("asset deleted", "asset", asset)
}

// NotifyWorkOrderChange implements notify_all_agents_of_work_order_change:
// fan out a State(WorkOrders(ids)) link to every actor spawned for the
// asset (§4.9).
func (o *Orchestrator) NotifyWorkOrderChange(asset entity.Asset, ids []entity.WorkOrderNumber) error {
	o.mu.RLock()
	af, ok := o.assets[asset]
	o.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", entity.ErrUnknownAsset, asset)
	}

	link := actor.StateLink{Kind: actor.WorkOrders, WorkOrderNumbers: ids}
	reg := af.registry

	if reg.Strategic != nil {
		_ = reg.Strategic.SendState(link)
	}
	if reg.Tactical != nil {
		_ = reg.Tactical.SendState(link)
	}
	for _, m := range reg.Supervisors {
		_ = m.SendState(link)
	}
	for _, m := range reg.Operational {
		_ = m.SendState(link)
	}
	return nil
}

// Fabric returns the running Shared Solution Fabric for an asset, used by
// read-only observers (§6).
func (o *Orchestrator) Fabric(asset entity.Asset) (*sharedsolution.Fabric, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	af, ok := o.assets[asset]
	if !ok {
		return nil, false
	}
	return af.fabric, true
}

// Registry returns the running actor registry for an asset.
func (o *Orchestrator) Registry(asset entity.Asset) (*AssetRegistry, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	af, ok := o.assets[asset]
	if !ok {
		return nil, false
	}
	return af.registry, true
}

// pollMetrics periodically publishes mailbox depth and objective gauges for
// an asset, and — when an audit repository is configured — appends the
// currently published objective of every actor to the audit trail. Both
// read the same sample of the fabric, taken every MetricsInterval, rather
// than hooking every actor's Publish call directly: an insert per LNS
// iteration (every IterationPace, by default 50ms) would overwhelm
// Postgres for no benefit over a steady sampling cadence.
func (o *Orchestrator) pollMetrics(ctx context.Context, asset entity.Asset) {
	interval := o.cfg.MetricsInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.mu.RLock()
			af, ok := o.assets[asset]
			o.mu.RUnlock()
			if !ok {
				return
			}
			reg := af.registry
			if o.metrics != nil {
				if reg.Strategic != nil {
					o.metrics.MailboxDepth.WithLabelValues(string(asset), "strategic", "").Set(float64(reg.Strategic.Len()))
				}
				if reg.Tactical != nil {
					o.metrics.MailboxDepth.WithLabelValues(string(asset), "tactical", "").Set(float64(reg.Tactical.Len()))
				}
				for id, m := range reg.Supervisors {
					o.metrics.MailboxDepth.WithLabelValues(string(asset), "supervisor", string(id)).Set(float64(m.Len()))
				}
				for id, m := range reg.Operational {
					o.metrics.MailboxDepth.WithLabelValues(string(asset), "operational", string(id)).Set(float64(m.Len()))
				}
			}

			composite := af.fabric.Load()
			now := time.Now().UTC()
			if composite.Strategic != nil {
				if o.metrics != nil {
					o.metrics.ObjectiveValue.WithLabelValues(string(asset), "strategic", "").Set(composite.Strategic.Objective)
				}
				o.recordObjective(ctx, asset, repository.ActorStrategic, "", composite.Strategic.Objective, now)
			}
			if composite.Tactical != nil {
				if o.metrics != nil {
					o.metrics.ObjectiveValue.WithLabelValues(string(asset), "tactical", "").Set(composite.Tactical.Objective)
				}
				o.recordObjective(ctx, asset, repository.ActorTactical, "", composite.Tactical.Objective, now)
			}
			for id, sup := range composite.Supervisors {
				if o.metrics != nil {
					o.metrics.ObjectiveValue.WithLabelValues(string(asset), "supervisor", string(id)).Set(float64(sup.Objective))
				}
				o.recordObjective(ctx, asset, repository.ActorSupervisor, id, float64(sup.Objective), now)
			}
			for id, op := range composite.Operational {
				if o.metrics != nil {
					o.metrics.ObjectiveValue.WithLabelValues(string(asset), "operational", string(id)).Set(op.Objective)
				}
				o.recordObjective(ctx, asset, repository.ActorOperational, id, op.Objective, now)
			}
		}
	}
}

// recordObjective appends one row to the audit trail. Failures are logged,
// not propagated: a dropped audit write must never interrupt the LNS loop
// or the metrics it rides alongside.
func (o *Orchestrator) recordObjective(ctx context.Context, asset entity.Asset, kind repository.ActorKind, actorID entity.Id, objective float64, at time.Time) {
	if o.audit == nil {
		return
	}
	rec := repository.ObjectiveRecord{
		Asset:       asset,
		Kind:        kind,
		ActorID:     actorID,
		Objective:   objective,
		PublishedAt: at,
	}
	if err := o.audit.Record(ctx, rec); err != nil {
		o.log.Errorw("failed to record objective in audit trail", "asset", asset, "actor_kind", kind, "actor_id", actorID, "error", err)
	}
}

// Assets lists every asset currently running.
func (o *Orchestrator) Assets() []entity.Asset {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]entity.Asset, 0, len(o.assets))
	for a := range o.assets {
		out = append(out, a)
	}
	return out
}

// Export returns the asset's current Shared Solution composite, the
// persisted-state surface of §6 ("export the current Shared Solution as a
// snapshot"). The returned value must not be mutated.
func (o *Orchestrator) Export(asset entity.Asset) (*sharedsolution.Composite, error) {
	fabric, ok := o.Fabric(asset)
	if !ok {
		return nil, fmt.Errorf("%w: %s", entity.ErrUnknownAsset, asset)
	}
	return fabric.Load(), nil
}

// Reconfigure replaces the Scheduling Environment wholesale: the ingestion
// refresh path (§1's "a function that yields a SchedulingEnvironment",
// realized concretely by internal/ingestion). Every running asset is torn
// down; every asset configured in the new environment is spawned fresh
// against it.
func (o *Orchestrator) Reconfigure(parent context.Context, env *schedenv.SchedulingEnvironment) error {
	o.mu.Lock()
	previous := o.assets
	o.assets = make(map[entity.Asset]*assetFabric)
	o.env = env
	o.mu.Unlock()

	for _, af := range previous {
		af.registry.closeAll()
	}

	var firstErr error
	for _, asset := range env.Assets() {
		if err := o.CreateAsset(parent, asset); err != nil {
			o.log.Errorw("reconfigure: asset failed to start", "asset", asset, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
