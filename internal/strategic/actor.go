// Package strategic implements the Strategic Actor (§4.5): period-level
// placement of work orders against per-period, per-technician, per-skill
// capacity, driven by the generic LNS engine.
package strategic

import (
	"context"
	"fmt"
	"math/rand"
	"sort"

	"go.uber.org/zap"

	"github.com/ordinator/ordinator/internal/entity"
	"github.com/ordinator/ordinator/internal/lns"
	"github.com/ordinator/ordinator/internal/schedenv"
	"github.com/ordinator/ordinator/internal/sharedsolution"
	"github.com/ordinator/ordinator/internal/solution"
)

// Actor implements lns.Algorithm and actor.Handler[Request, Response] for
// one asset's strategic scheduling (§4.5). It is driven exclusively by its
// own goroutine; no field is touched concurrently.
type Actor struct {
	asset   entity.Asset
	env     *schedenv.SchedulingEnvironment
	fabric  *sharedsolution.Fabric
	log     *zap.SugaredLogger
	rng     *rand.Rand

	options  schedenv.StrategicOptions
	horizon  entity.Horizon
	capacity map[entity.Period]map[entity.Id]map[entity.Resource]float64
	params   map[entity.WorkOrderNumber]*WorkOrderParams

	current  *sharedsolution.Composite
	solution *solution.Strategic
	snapshot *solution.Strategic

	pendingChange bool
	changedWOs    []entity.WorkOrderNumber
}

// New constructs a strategic actor for an asset, rebuilding its parameters
// from the environment's current configuration.
func New(asset entity.Asset, env *schedenv.SchedulingEnvironment, fabric *sharedsolution.Fabric, log *zap.SugaredLogger, seed int64) (*Actor, error) {
	spec, err := env.ActorSpecification(asset)
	if err != nil {
		return nil, fmt.Errorf("strategic actor for %s: %w", asset, err)
	}

	a := &Actor{
		asset:    asset,
		env:      env,
		fabric:   fabric,
		log:      log.Named("strategic").With("asset", string(asset)),
		rng:      rand.New(rand.NewSource(seed)),
		options:  spec.StrategicOptions,
		solution: solution.NewStrategic(),
		params:   make(map[entity.WorkOrderNumber]*WorkOrderParams),
	}
	a.rebuildHorizon()
	a.rebuildCapacity(spec)
	a.rebuildAllParameters()
	return a, nil
}

func (a *Actor) rebuildHorizon() {
	a.horizon = a.env.StrategicHorizon()
}

func (a *Actor) rebuildCapacity(spec *schedenv.ActorSpecification) {
	a.capacity = rebuildCapacity(a.horizon, spec.OperationalConfigs)
}

func (a *Actor) rebuildAllParameters() {
	spec, err := a.env.ActorSpecification(a.asset)
	if err != nil {
		return
	}
	for _, wo := range a.env.WorkOrdersForAsset(a.asset) {
		a.params[wo.WorkOrderNumber] = buildParameters(wo, a.horizon, spec.WorkOrderConfigs.DefaultExcludedPeriods)
	}
}

func (a *Actor) rebuildParametersFor(nums []entity.WorkOrderNumber) {
	spec, err := a.env.ActorSpecification(a.asset)
	if err != nil {
		return
	}
	for _, won := range nums {
		wo, ok := a.env.WorkOrder(won)
		if !ok {
			delete(a.params, won)
			a.solution.Unset(won)
			continue
		}
		a.params[won] = buildParameters(wo, a.horizon, spec.WorkOrderConfigs.DefaultExcludedPeriods)
		a.solution.Unset(won) // force re-placement next schedule()
	}
}

// --- lns.Algorithm ---

// LoadSharedSolution implements step 1.
func (a *Actor) LoadSharedSolution() {
	a.current = a.fabric.Load()
}

// IncorporateSharedState implements step 2: the strategic actor has no
// upstream actor publishing into its own parameters (it sits at the top of
// the chain), so it only reacts to state-link notifications queued via
// HandleState, consumed here.
func (a *Actor) IncorporateSharedState() (bool, error) {
	if !a.pendingChange {
		return false, nil
	}
	a.rebuildParametersFor(a.changedWOs)
	a.pendingChange = false
	a.changedWOs = nil
	return true, nil
}

// Snapshot implements step 4.
func (a *Actor) Snapshot() {
	a.snapshot = a.solution.Clone()
}

// Restore implements the Worse branch of step 8.
func (a *Actor) Restore() {
	a.solution = a.snapshot
}

// Unschedule implements step 5: remove a weighted-random sample of
// non-locked work orders, weighted by each one's urgency contribution
// (weight times periods past its latest allowed period) plus a base weight
// of 1. A work order's share of the resource penalty does not affect its
// chance of removal.
func (a *Actor) Unschedule() {
	n := a.options.NumberOfRemovedWorkOrders
	if n <= 0 {
		return
	}

	type candidate struct {
		won    entity.WorkOrderNumber
		weight float64
	}
	var pool []candidate
	for _, won := range a.solution.WorkOrderNumbers() {
		p, ok := a.params[won]
		if !ok || p.LockedIn != nil {
			continue
		}
		period, has := a.solution.ScheduledTask(won)
		if !has || period == nil {
			continue
		}
		contribution := p.Weight * float64(entity.PeriodsPast(*period, p.LatestAllowed, a.horizon))
		contribution += 1.0 // every removable candidate gets a nonzero base weight
		pool = append(pool, candidate{won: won, weight: contribution})
	}
	sort.Slice(pool, func(i, j int) bool { return pool[i].won < pool[j].won })

	for i := 0; i < n && len(pool) > 0; i++ {
		total := 0.0
		for _, c := range pool {
			total += c.weight
		}
		pick := a.rng.Float64() * total
		idx := 0
		running := 0.0
		for j, c := range pool {
			running += c.weight
			if pick <= running {
				idx = j
				break
			}
		}
		a.solution.Unset(pool[idx].won)
		pool = append(pool[:idx], pool[idx+1:]...)
	}
}

// Schedule implements step 6 (and the incorporate-branch rebuild of step 3):
// iterate undecided work orders in descending weight order, placing each in
// the earliest feasible period within its [earliest, latest] window,
// honoring any locked-in period and falling back to a soft overflow in the
// latest feasible period when nothing else fits.
func (a *Actor) Schedule() error {
	pending := a.pendingWorkOrders()
	sort.Slice(pending, func(i, j int) bool { return pending[i].Weight > pending[j].Weight })

	for _, p := range pending {
		if p.LockedIn != nil {
			a.place(p, *p.LockedIn)
			continue
		}
		period, found := a.firstFeasiblePeriod(p)
		if found {
			a.place(p, period)
			continue
		}
		// No hard-feasible period: accept a soft overflow in the latest
		// feasible period within the allowed window.
		a.place(p, a.latestFeasiblePeriod(p))
	}
	a.recomputeObjective()
	return nil
}

func (a *Actor) pendingWorkOrders() []*WorkOrderParams {
	var out []*WorkOrderParams
	for won, p := range a.params {
		if _, has := a.solution.ScheduledTask(won); has {
			continue
		}
		out = append(out, p)
	}
	return out
}

// firstFeasiblePeriod returns the earliest period in [earliest, latest],
// excluding excluded periods, where placing p causes no hard capacity
// overflow for any skill it demands.
func (a *Actor) firstFeasiblePeriod(p *WorkOrderParams) (entity.Period, bool) {
	lo, hi := a.horizon.IndexOf(p.EarliestAllowed), a.horizon.IndexOf(p.LatestAllowed)
	if lo < 0 {
		lo = 0
	}
	if hi < 0 || hi >= len(a.horizon.Periods) {
		hi = len(a.horizon.Periods) - 1
	}
	for i := lo; i <= hi; i++ {
		period := a.horizon.Periods[i]
		if p.Excluded[period] {
			continue
		}
		if a.fitsWithoutOverflow(period, p) {
			return period, true
		}
	}
	return entity.Period{}, false
}

func (a *Actor) latestFeasiblePeriod(p *WorkOrderParams) entity.Period {
	hi := a.horizon.IndexOf(p.LatestAllowed)
	if hi < 0 || hi >= len(a.horizon.Periods) {
		hi = len(a.horizon.Periods) - 1
	}
	for i := hi; i >= 0; i-- {
		period := a.horizon.Periods[i]
		if !p.Excluded[period] {
			return period
		}
	}
	if hi >= 0 {
		return a.horizon.Periods[hi]
	}
	return p.LatestAllowed
}

func (a *Actor) fitsWithoutOverflow(period entity.Period, p *WorkOrderParams) bool {
	byTech := a.capacity[period]
	for skill, hours := range p.WorkLoad {
		if hours <= 0 {
			continue
		}
		available := 0.0
		for _, bySkill := range byTech {
			available += bySkill[skill]
		}
		used := 0.0
		for _, loadedBySkill := range a.solution.Loadings[period] {
			used += loadedBySkill[skill]
		}
		if used+hours > available {
			return false
		}
	}
	return true
}

func (a *Actor) place(p *WorkOrderParams, period entity.Period) {
	a.solution.SetScheduled(p.WorkOrderNumber, &period)
	tech := a.bestTechnicianFor(period)
	for skill, hours := range p.WorkLoad {
		a.solution.AddLoad(period, tech, skill, hours)
	}
}

// bestTechnicianFor picks the least-loaded technician with capacity for the
// period, a deterministic tie-break by Id (§9 "stable ordering").
func (a *Actor) bestTechnicianFor(period entity.Period) entity.Id {
	byTech := a.capacity[period]
	ids := make([]entity.Id, 0, len(byTech))
	for id := range byTech {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if len(ids) == 0 {
		return ""
	}
	best := ids[0]
	bestLoad := a.totalLoad(period, best)
	for _, id := range ids[1:] {
		if load := a.totalLoad(period, id); load < bestLoad {
			best, bestLoad = id, load
		}
	}
	return best
}

func (a *Actor) totalLoad(period entity.Period, tech entity.Id) float64 {
	total := 0.0
	for _, hours := range a.solution.Loadings[period][tech] {
		total += hours
	}
	return total
}

// Evaluate implements step 7, comparing the lexicographic objective against
// the incumbent objective recorded in the snapshot taken before unschedule.
func (a *Actor) Evaluate() (lns.Outcome, float64) {
	candidate := a.objective()
	if candidate < a.snapshotObjective()-1e-9 {
		return lns.Better, candidate
	}
	return lns.Worse, 0
}

func (a *Actor) snapshotObjective() float64 {
	if a.snapshot == nil {
		return a.solution.Objective
	}
	return a.snapshot.Objective
}

func (a *Actor) recomputeObjective() {
	a.solution.Objective = a.objective()
}

func (a *Actor) objective() float64 {
	urgency, penalty, clustering := 0.0, 0.0, 0.0

	clusterCounts := make(map[string]map[string]int)
	for won, period := range a.solution.AllScheduledTasks() {
		p, ok := a.params[won]
		if !ok {
			continue
		}
		urgency += p.Weight * float64(entity.PeriodsPast(period, p.LatestAllowed, a.horizon))

		key := clusteringKey(p.FunctionalLocation)
		byPeriod, ok := clusterCounts[period.String()]
		if !ok {
			byPeriod = make(map[string]int)
			clusterCounts[period.String()] = byPeriod
		}
		byPeriod[key]++
	}

	for _, byKey := range clusterCounts {
		for _, count := range byKey {
			if count > 1 {
				clustering += float64(count * (count - 1) / 2)
			}
		}
	}

	for period, byTech := range a.capacity {
		for tech, bySkill := range byTech {
			for skill, capacityHours := range bySkill {
				loaded := a.solution.Load(period, tech, skill)
				if over := loaded - capacityHours; over > 0 {
					penalty += over
				}
			}
		}
	}

	return a.options.UrgencyWeight*urgency + a.options.ResourcePenaltyWeight*penalty - a.options.ClusteringWeight*clustering
}

// Publish implements step 3/step 8's publish: store a.solution into the
// strategic slot of a fresh composite.
func (a *Actor) Publish() error {
	a.fabric.Publish(func(base *sharedsolution.Composite) *sharedsolution.Composite {
		return base.WithStrategic(a.solution)
	})
	return nil
}

// SetObjective records the new incumbent objective.
func (a *Actor) SetObjective(value float64) {
	a.solution.Objective = value
}

// RunIteration runs exactly one LNS iteration for this actor, satisfying
// actor.Handler.
func (a *Actor) RunIteration(ctx context.Context) error {
	return lns.RunIteration(a, a.log)
}

// Solution returns the actor's current (published-or-about-to-be-published)
// solution, used by tests and by the read API surface.
func (a *Actor) Solution() *solution.Strategic {
	return a.solution
}
