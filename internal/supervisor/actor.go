// Package supervisor implements the Supervisor Actor (§4.7): a
// work-order-activity auction among candidate technicians, resolved by each
// candidate's published MarginalFitness.
package supervisor

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
// one supervisor's slice of an asset's work-order-activities (§4.7).
type Actor struct {
	id      entity.Id
	asset   entity.Asset
	periods []entity.Period
	env     *schedenv.SchedulingEnvironment
	fabric  *sharedsolution.Fabric
	log     *zap.SugaredLogger
	rng     *rand.Rand

	options     schedenv.SupervisorOptions
	activities  map[entity.WorkOrderActivity]*ActivityParams
	candidates  map[entity.WorkOrderActivity][]entity.Id

	current  *sharedsolution.Composite
	solution *solution.Supervisor
	snapshot *solution.Supervisor

	pendingChange bool
	changedWOs    []entity.WorkOrderNumber
}

// New constructs a supervisor actor owning the given id's slice of an
// asset's strategic-window activities.
func New(id entity.Id, asset entity.Asset, periods []entity.Period, env *schedenv.SchedulingEnvironment, fabric *sharedsolution.Fabric, log *zap.SugaredLogger, seed int64) (*Actor, error) {
	spec, err := env.ActorSpecification(asset)
	if err != nil {
		return nil, fmt.Errorf("supervisor actor %s for %s: %w", id, asset, err)
	}

	a := &Actor{
		id:         id,
		asset:      asset,
		periods:    append([]entity.Period(nil), periods...),
		env:        env,
		fabric:     fabric,
		log:        log.Named("supervisor").With("asset", string(asset), "supervisor", string(id)),
		rng:        rand.New(rand.NewSource(seed)),
		options:    spec.SupervisorOptions,
		activities: make(map[entity.WorkOrderActivity]*ActivityParams),
		candidates: make(map[entity.WorkOrderActivity][]entity.Id),
		solution:   solution.NewSupervisor(),
	}
	a.rebuildAllParameters(spec)
	return a, nil
}

func (a *Actor) rebuildAllParameters(spec *schedenv.ActorSpecification) {
	for _, wo := range a.env.WorkOrdersForAsset(a.asset) {
		for _, ap := range buildActivityParams(wo) {
			a.activities[ap.Activity] = ap
			a.candidates[ap.Activity] = candidateTechnicians(spec.OperationalConfigs, ap.Resource)
		}
	}
}

func (a *Actor) rebuildParametersFor(nums []entity.WorkOrderNumber) {
	spec, err := a.env.ActorSpecification(a.asset)
	if err != nil {
		return
	}
	changed := make(map[entity.WorkOrderNumber]bool, len(nums))
	for _, n := range nums {
		changed[n] = true
	}
	for woa := range a.activities {
		if changed[woa.WorkOrderNumber] {
			delete(a.activities, woa)
			delete(a.candidates, woa)
		}
	}
	for won := range changed {
		wo, ok := a.env.WorkOrder(won)
		if !ok {
			continue
		}
		if wo.Asset != a.asset {
			continue
		}
		for _, ap := range buildActivityParams(wo) {
			a.activities[ap.Activity] = ap
			a.candidates[ap.Activity] = candidateTechnicians(spec.OperationalConfigs, ap.Resource)
		}
	}
}

// --- lns.Algorithm ---

func (a *Actor) LoadSharedSolution() {
	a.current = a.fabric.Load()
}

// IncorporateSharedState reacts to a work order entering or leaving the
// supervisor's strategic window (§4.7 "incorporate_shared_state").
func (a *Actor) IncorporateSharedState() (bool, error) {
	changed := false
	if a.pendingChange {
		a.rebuildParametersFor(a.changedWOs)
		a.pendingChange = false
		a.changedWOs = nil
		changed = true
	}

	if a.current == nil || a.current.Strategic == nil {
		return changed, nil
	}
	inWindow := a.current.Strategic.SupervisorTasks(a.periods)

	for woa, candidates := range a.candidates {
		_, wanted := inWindow[woa.WorkOrderNumber]
		hasEntries := len(a.solution.CandidatesForActivity(woa)) > 0
		switch {
		case wanted && !hasEntries:
			for _, tech := range candidates {
				a.solution.Set(tech, woa, entity.DelegateAssess)
			}
			changed = true
		case !wanted && hasEntries:
			for _, tech := range candidates {
				a.solution.Remove(tech, woa)
			}
			changed = true
		}
	}
	return changed, nil
}

func (a *Actor) Snapshot() {
	a.snapshot = a.solution.Clone()
}

func (a *Actor) Restore() {
	a.solution = a.snapshot
}

// Unschedule reverts a sampled set of resolved activities back to Assess
// across all their candidate technicians (§4.7).
func (a *Actor) Unschedule() {
	n := a.options.NumberOfRemovedActivities
	if n <= 0 {
		return
	}

	var resolved []entity.WorkOrderActivity
	seen := make(map[entity.WorkOrderActivity]bool)
	for key, d := range a.solution.Delegates {
		if d != entity.DelegateAssign || seen[key.Activity] {
			continue
		}
		seen[key.Activity] = true
		resolved = append(resolved, key.Activity)
	}
	sort.Slice(resolved, func(i, j int) bool {
		if resolved[i].WorkOrderNumber != resolved[j].WorkOrderNumber {
			return resolved[i].WorkOrderNumber < resolved[j].WorkOrderNumber
		}
		return resolved[i].ActivityNumber < resolved[j].ActivityNumber
	})

	for i := 0; i < n && len(resolved) > 0; i++ {
		idx := a.rng.Intn(len(resolved))
		woa := resolved[idx]
		for _, tech := range a.candidates[woa] {
			if d, ok := a.solution.Get(tech, woa); ok && (d == entity.DelegateAssign || d == entity.DelegateUnassign) {
				a.solution.Set(tech, woa, entity.DelegateAssess)
			}
		}
		resolved = append(resolved[:idx], resolved[idx+1:]...)
	}
}

// Schedule runs the auction: every activity in Assess queries each
// candidate's latest published MarginalFitness and delegates to the
// lowest-scoring one (§4.7).
func (a *Actor) Schedule() error {
	for woa := range a.activities {
		if !a.anyAssess(woa) {
			continue
		}

		type bid struct {
			tech    entity.Id
			fitness entity.MarginalFitness
		}
		var bids []bid
		for _, tech := range a.candidates[woa] {
			if a.current == nil {
				continue
			}
			fitnesses := a.current.OperationalFitness(tech, woa)
			if len(fitnesses) == 0 {
				continue
			}
			best := fitnesses[0]
			for _, f := range fitnesses[1:] {
				if f.Less(best) {
					best = f
				}
			}
			if best.Kind == entity.FitnessScheduled {
				bids = append(bids, bid{tech: tech, fitness: best})
			}
		}
		if len(bids) == 0 {
			continue // no usable signal yet; stays in Assess
		}
		sort.Slice(bids, func(i, j int) bool {
			if bids[i].fitness.Less(bids[j].fitness) || bids[j].fitness.Less(bids[i].fitness) {
				return bids[i].fitness.Less(bids[j].fitness)
			}
			return bids[i].tech < bids[j].tech // stable tie-break (§9)
		})
		winner := bids[0].tech

		for _, tech := range a.candidates[woa] {
			if tech == winner {
				a.solution.Set(tech, woa, entity.DelegateAssign)
			} else if d, ok := a.solution.Get(tech, woa); ok && d != entity.DelegateFixed && d != entity.DelegateDrop {
				a.solution.Set(tech, woa, entity.DelegateUnassign)
			}
		}
	}
	a.recomputeObjective()
	return nil
}

func (a *Actor) anyAssess(woa entity.WorkOrderActivity) bool {
	for _, tech := range a.candidates[woa] {
		if d, ok := a.solution.Get(tech, woa); ok && d == entity.DelegateAssess {
			return true
		}
	}
	return false
}

func (a *Actor) Evaluate() (lns.Outcome, float64) {
	candidate := a.objective()
	if candidate < a.snapshotObjective() {
		return lns.Better, float64(candidate)
	}
	return lns.Worse, 0
}

func (a *Actor) snapshotObjective() int64 {
	if a.snapshot == nil {
		return a.solution.Objective
	}
	return a.snapshot.Objective
}

func (a *Actor) recomputeObjective() {
	a.solution.Objective = a.objective()
}

// objective counts unresolved (Assess) entries: every resolved activity
// reduces the count, so fewer pending auctions is strictly better.
func (a *Actor) objective() int64 {
	var count int64
	for _, d := range a.solution.Delegates {
		if d == entity.DelegateAssess {
			count++
		}
	}
	return count
}

func (a *Actor) Publish() error {
	a.fabric.Publish(func(base *sharedsolution.Composite) *sharedsolution.Composite {
		return base.WithSupervisor(a.id, a.solution)
	})
	return nil
}

func (a *Actor) SetObjective(value float64) {
	a.solution.Objective = int64(value)
}

func (a *Actor) RunIteration(ctx context.Context) error {
	return lns.RunIteration(a, a.log)
}

// Solution returns the actor's current solution.
func (a *Actor) Solution() *solution.Supervisor {
	return a.solution
}
