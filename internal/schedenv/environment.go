// Package schedenv implements the Scheduling Environment (§4.1): the
// read-mostly snapshot of work orders, operations, worker availability and
// the time horizon that every actor algorithm rebuilds its parameters from.
package schedenv

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ordinator/ordinator/internal/entity"
)

// ActorSpecification is the per-asset configuration handed to the
// orchestrator's asset_factory (§4.1, §4.9).
type ActorSpecification struct {
	Asset                entity.Asset
	StrategicOptions     StrategicOptions
	TacticalOptions      TacticalOptions
	SupervisorOptions    SupervisorOptions
	OperationalConfigs   []OperationalConfig
	WorkOrderConfigs     WorkOrderConfigurations
	SupervisorIDs        []entity.Id // one supervisor actor per configured id
}

// StrategicOptions parametrizes the strategic actor's LNS loop (§4.5).
type StrategicOptions struct {
	NumberOfRemovedWorkOrders int
	UrgencyWeight             float64
	ResourcePenaltyWeight     float64
	ClusteringWeight          float64
}

// TacticalOptions parametrizes the tactical actor's LNS loop (§4.6).
type TacticalOptions struct {
	NumberOfRemovedAssignments int
	UrgencyWeight              float64
	ResourcePenaltyWeight      float64
}

// SupervisorOptions parametrizes the supervisor actor's LNS loop (§4.7).
type SupervisorOptions struct {
	NumberOfRemovedActivities int
}

// OperationalConfig seeds one operational actor per configured technician.
type OperationalConfig struct {
	Technician                entity.Technician
	NumberOfRemovedActivities int
}

// WorkOrderConfigurations holds any asset-wide defaults applied when a work
// order doesn't specify its own override (e.g. a default excluded-period set).
type WorkOrderConfigurations struct {
	DefaultExcludedPeriods []entity.Period
}

// SchedulingEnvironment is the immutable-per-iteration snapshot of
// scheduling-relevant data (§4.1). It is guarded by a single exclusive lock
// (§5): writers (the orchestrator, on configuration change) take it
// exclusively, readers (actors rebuilding parameters) take it for the brief
// window needed to copy out what they need — never across an LNS iteration.
type SchedulingEnvironment struct {
	mu sync.RWMutex

	strategicHorizon entity.Horizon
	tacticalDays     entity.DayHorizon
	workOrders       map[entity.WorkOrderNumber]*entity.WorkOrder
	specifications   map[entity.Asset]*ActorSpecification
}

// New builds an empty environment; periods/days/work orders/specs are
// populated via the Configure* setters (invoked by ingestion, §1 non-goals).
func New() *SchedulingEnvironment {
	return &SchedulingEnvironment{
		workOrders:     make(map[entity.WorkOrderNumber]*entity.WorkOrder),
		specifications: make(map[entity.Asset]*ActorSpecification),
	}
}

// SetHorizon installs the strategic period horizon and tactical day horizon.
// Periods must be sorted and contiguous, and the day horizon must start at
// the first day of the first strategic period (§3, §6).
func (se *SchedulingEnvironment) SetHorizon(periods []entity.Period, days []entity.Day) error {
	se.mu.Lock()
	defer se.mu.Unlock()

	for i := 1; i < len(periods); i++ {
		if periods[i].Before(periods[i-1]) || periods[i].Equal(periods[i-1]) {
			return fmt.Errorf("periods not sorted/contiguous at index %d: %w", i, entity.ErrNonContiguousDays)
		}
	}
	for i := 1; i < len(days); i++ {
		if days[i].Index != days[i-1].Index+1 {
			return fmt.Errorf("day index gap at position %d: %w", i, entity.ErrNonContiguousDays)
		}
	}

	se.strategicHorizon = entity.Horizon{Periods: append([]entity.Period(nil), periods...)}
	se.tacticalDays = entity.DayHorizon{Days: append([]entity.Day(nil), days...)}
	return nil
}

// StrategicHorizon returns a copy of the ordered period list.
func (se *SchedulingEnvironment) StrategicHorizon() entity.Horizon {
	se.mu.RLock()
	defer se.mu.RUnlock()
	return entity.Horizon{Periods: append([]entity.Period(nil), se.strategicHorizon.Periods...)}
}

// TacticalDays returns a copy of the ordered day list.
func (se *SchedulingEnvironment) TacticalDays() entity.DayHorizon {
	se.mu.RLock()
	defer se.mu.RUnlock()
	return entity.DayHorizon{Days: append([]entity.Day(nil), se.tacticalDays.Days...)}
}

// UpsertWorkOrder validates and installs (or replaces) a work order.
func (se *SchedulingEnvironment) UpsertWorkOrder(wo *entity.WorkOrder) error {
	if wo == nil {
		return fmt.Errorf("nil work order: %w", entity.ErrWorkOrderNotFound)
	}
	if len(wo.Operations) == 0 {
		return fmt.Errorf("work order %d has no operations", wo.WorkOrderNumber)
	}
	se.mu.Lock()
	defer se.mu.Unlock()
	if _, ok := se.specifications[wo.Asset]; !ok {
		return fmt.Errorf("work order %d references %w: %s", wo.WorkOrderNumber, entity.ErrUnknownAsset, wo.Asset)
	}
	se.workOrders[wo.WorkOrderNumber] = wo
	return nil
}

// RemoveWorkOrder deletes a work order from the environment.
func (se *SchedulingEnvironment) RemoveWorkOrder(won entity.WorkOrderNumber) {
	se.mu.Lock()
	defer se.mu.Unlock()
	delete(se.workOrders, won)
}

// WorkOrder looks up a single work order by number.
func (se *SchedulingEnvironment) WorkOrder(won entity.WorkOrderNumber) (*entity.WorkOrder, bool) {
	se.mu.RLock()
	defer se.mu.RUnlock()
	wo, ok := se.workOrders[won]
	return wo, ok
}

// WorkOrdersForAsset returns every work order belonging to the given asset,
// in a stable (ascending WorkOrderNumber) order.
func (se *SchedulingEnvironment) WorkOrdersForAsset(asset entity.Asset) []*entity.WorkOrder {
	se.mu.RLock()
	defer se.mu.RUnlock()
	out := make([]*entity.WorkOrder, 0, len(se.workOrders))
	for _, wo := range se.workOrders {
		if wo.Asset == asset {
			out = append(out, wo)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WorkOrderNumber < out[j].WorkOrderNumber })
	return out
}

// ConfigureAsset installs (or replaces) the actor specification for an asset.
func (se *SchedulingEnvironment) ConfigureAsset(spec *ActorSpecification) {
	se.mu.Lock()
	defer se.mu.Unlock()
	se.specifications[spec.Asset] = spec
}

// ActorSpecification looks up the configuration for an asset.
func (se *SchedulingEnvironment) ActorSpecification(asset entity.Asset) (*ActorSpecification, error) {
	se.mu.RLock()
	defer se.mu.RUnlock()
	spec, ok := se.specifications[asset]
	if !ok {
		return nil, fmt.Errorf("%w: %s", entity.ErrUnknownAsset, asset)
	}
	return spec, nil
}

// Assets lists every configured asset, sorted for deterministic iteration.
func (se *SchedulingEnvironment) Assets() []entity.Asset {
	se.mu.RLock()
	defer se.mu.RUnlock()
	out := make([]entity.Asset, 0, len(se.specifications))
	for a := range se.specifications {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
