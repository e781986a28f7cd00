// Package operational implements the Operational Actor (§4.8): per-technician
// placement of wrench-time blocks into the gaps of a fixed shift timeline.
package operational

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/ordinator/ordinator/internal/actor"
	"github.com/ordinator/ordinator/internal/entity"
	"github.com/ordinator/ordinator/internal/lns"
	"github.com/ordinator/ordinator/internal/schedenv"
	"github.com/ordinator/ordinator/internal/sharedsolution"
	"github.com/ordinator/ordinator/internal/solution"
)

// Actor implements lns.Algorithm and actor.Handler[Request, Response] for
// one technician's wrench-time placement (§4.8).
type Actor struct {
	technician entity.Technician
	asset      entity.Asset
	env        *schedenv.SchedulingEnvironment
	fabric     *sharedsolution.Fabric
	log        *zap.SugaredLogger
	rng        *rand.Rand

	numberOfRemovedActivities int
	params                    map[entity.WorkOrderActivity]*ActivityParams

	current  *sharedsolution.Composite
	solution *solution.Operational
	snapshot *solution.Operational

	pendingChange bool
	changedWOs    []entity.WorkOrderNumber
}

// New constructs an operational actor for one technician.
func New(cfg schedenv.OperationalConfig, asset entity.Asset, env *schedenv.SchedulingEnvironment, fabric *sharedsolution.Fabric, log *zap.SugaredLogger, seed int64) (*Actor, error) {
	a := &Actor{
		technician:                cfg.Technician,
		asset:                     asset,
		env:                       env,
		fabric:                    fabric,
		log:                       log.Named("operational").With("asset", string(asset), "technician", string(cfg.Technician.ID)),
		rng:                       rand.New(rand.NewSource(seed)),
		numberOfRemovedActivities: cfg.NumberOfRemovedActivities,
		params:                    make(map[entity.WorkOrderActivity]*ActivityParams),
		solution:                  solution.NewOperational(cfg.Technician.ID),
	}
	a.solution.Assignments = buildSkeleton(cfg.Technician)
	a.rebuildAllParameters()
	return a, nil
}

func (a *Actor) rebuildAllParameters() {
	for _, wo := range a.env.WorkOrdersForAsset(a.asset) {
		for _, ap := range buildActivityParams(wo, a.technician.HasSkill) {
			a.params[ap.Activity] = ap
		}
	}
}

func (a *Actor) rebuildParametersFor(nums []entity.WorkOrderNumber) {
	changed := make(map[entity.WorkOrderNumber]bool, len(nums))
	for _, n := range nums {
		changed[n] = true
	}
	for woa := range a.params {
		if changed[woa.WorkOrderNumber] {
			delete(a.params, woa)
		}
	}
	for won := range changed {
		wo, ok := a.env.WorkOrder(won)
		if !ok || wo.Asset != a.asset {
			continue
		}
		for _, ap := range buildActivityParams(wo, a.technician.HasSkill) {
			a.params[ap.Activity] = ap
		}
	}
}

// --- lns.Algorithm ---

func (a *Actor) LoadSharedSolution() {
	a.current = a.fabric.Load()
}

// IncorporateSharedState has no upstream dependency besides the
// WorkOrders/WorkerEnvironment/TimeEnvironment links folded in HandleState;
// the set of Assign delegations is read fresh from the fabric every
// schedule() call instead of cached, so there is nothing to incorporate here
// beyond the pending-parameter rebuild.
func (a *Actor) IncorporateSharedState() (bool, error) {
	if !a.pendingChange {
		return false, nil
	}
	a.rebuildParametersFor(a.changedWOs)
	a.pendingChange = false
	a.changedWOs = nil
	return true, nil
}

func (a *Actor) Snapshot() {
	a.snapshot = a.solution.Clone()
}

func (a *Actor) Restore() {
	a.solution = a.snapshot
}

// Unschedule removes a random set of WrenchTime assignments and coalesces
// the NonProductive gaps left behind (§4.8).
func (a *Actor) Unschedule() {
	n := a.numberOfRemovedActivities
	if n <= 0 {
		return
	}

	activitySet := make(map[entity.WorkOrderActivity]bool)
	for _, asg := range a.solution.Assignments {
		if asg.EventType == entity.EventWrenchTime && asg.Activity != nil {
			activitySet[*asg.Activity] = true
		}
	}
	activities := make([]entity.WorkOrderActivity, 0, len(activitySet))
	for woa := range activitySet {
		activities = append(activities, woa)
	}
	sort.Slice(activities, func(i, j int) bool {
		if activities[i].WorkOrderNumber != activities[j].WorkOrderNumber {
			return activities[i].WorkOrderNumber < activities[j].WorkOrderNumber
		}
		return activities[i].ActivityNumber < activities[j].ActivityNumber
	})

	for i := 0; i < n && len(activities) > 0; i++ {
		idx := a.rng.Intn(len(activities))
		woa := activities[idx]
		a.removeActivity(woa)
		activities = append(activities[:idx], activities[idx+1:]...)
	}
	a.coalesce()
}

func (a *Actor) removeActivity(woa entity.WorkOrderActivity) {
	for i := range a.solution.Assignments {
		asg := &a.solution.Assignments[i]
		if (asg.EventType == entity.EventWrenchTime || asg.EventType == entity.EventPreparation) && asg.Activity != nil && *asg.Activity == woa {
			asg.EventType = entity.EventNonProductive
			asg.Activity = nil
			asg.MarginalFitness = entity.MarginalFitness{}
		}
	}
}

func (a *Actor) coalesce() {
	sortAssignments(a.solution.Assignments)
	a.solution.CoalesceNonProductive()
}

// Schedule places wrench-time blocks for every (technician, activity) the
// shared supervisor snapshot currently delegates to this technician as
// Assign, walking forward from the last placed point (or the window start)
// and splitting the activity's remaining work across available gaps,
// advancing past non-movable events (§4.8).
func (a *Actor) Schedule() error {
	assigned := a.assignedActivities()
	cursor := a.technician.Availability.Start

	for _, woa := range assigned {
		p, ok := a.params[woa]
		if !ok {
			continue
		}

		prepPlaced := a.solution.PreparationTotal(woa)
		prepRemaining := p.Preparation - prepPlaced
		if prepRemaining > 1e-9 {
			cursor = a.placeBlock(woa, prepRemaining, cursor, entity.EventPreparation)
		}

		placed := a.solution.WrenchTimeTotal(woa)
		remaining := p.WorkHours - placed
		if remaining <= 1e-9 {
			continue
		}
		cursor = a.placeBlock(woa, remaining, cursor, entity.EventWrenchTime)
	}

	assignMarginalFitness(a.solution.Assignments)
	a.recomputeObjective()
	return nil
}

func (a *Actor) assignedActivities() []entity.WorkOrderActivity {
	if a.current == nil {
		return nil
	}
	delegates := a.current.DelegatesForAgent(a.technician.ID)
	out := make([]entity.WorkOrderActivity, 0, len(delegates))
	for woa, d := range delegates {
		if d == entity.DelegateAssign {
			if _, ok := a.params[woa]; ok {
				out = append(out, woa)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].WorkOrderNumber != out[j].WorkOrderNumber {
			return out[i].WorkOrderNumber < out[j].WorkOrderNumber
		}
		return out[i].ActivityNumber < out[j].ActivityNumber
	})
	return out
}

// placeBlock carves up to remainingHours of kind (WrenchTime or
// Preparation) for woa out of the timeline's NonProductive gaps, starting no
// earlier than cursor (§4.8). Preparation is always placed ahead of an
// activity's wrench-time blocks since Schedule calls it first per activity.
func (a *Actor) placeBlock(woa entity.WorkOrderActivity, remainingHours float64, cursor time.Time, kind entity.EventType) time.Time {
	for remainingHours > 1e-9 {
		idx := findGapAt(a.solution.Assignments, cursor)
		if idx < 0 {
			break // no more room in the window; the activity stays partially placed
		}
		gap := a.solution.Assignments[idx]
		start := cursor
		if start.Before(gap.Start) {
			start = gap.Start
		}
		availableHours := gap.Finish.Sub(start).Hours()
		if availableHours <= 1e-9 {
			cursor = gap.Finish
			continue
		}
		chunkHours := remainingHours
		if availableHours < chunkHours {
			chunkHours = availableHours
		}
		finish := start.Add(time.Duration(chunkHours * float64(time.Hour)))
		if kind == entity.EventPreparation {
			a.solution.Assignments = carvePreparation(a.solution.Assignments, idx, start, finish, woa)
		} else {
			a.solution.Assignments = carveWrenchTime(a.solution.Assignments, idx, start, finish, woa)
		}
		remainingHours -= chunkHours
		cursor = finish
	}
	return cursor
}

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
	return totalNonProductive(a.solution.Assignments)
}

func (a *Actor) Publish() error {
	a.fabric.Publish(func(base *sharedsolution.Composite) *sharedsolution.Composite {
		return base.WithOperational(a.technician.ID, a.solution)
	})
	return nil
}

func (a *Actor) SetObjective(value float64) {
	a.solution.Objective = value
}

func (a *Actor) RunIteration(ctx context.Context) error {
	return lns.RunIteration(a, a.log)
}

// Solution returns the actor's current solution.
func (a *Actor) Solution() *solution.Operational {
	return a.solution
}

// HandleState folds a Scheduling Environment change into cached parameters.
func (a *Actor) HandleState(_ context.Context, link actor.StateLink) error {
	switch link.Kind {
	case actor.WorkOrders:
		a.pendingChange = true
		a.changedWOs = append(a.changedWOs, link.WorkOrderNumbers...)
	case actor.WorkerEnvironment:
		spec, err := a.env.ActorSpecification(a.asset)
		if err != nil {
			return fmt.Errorf("rebuild operational technician: %w", err)
		}
		for _, cfg := range spec.OperationalConfigs {
			if cfg.Technician.ID == a.technician.ID {
				a.technician = cfg.Technician
				a.solution.Assignments = buildSkeleton(a.technician)
			}
		}
	case actor.TimeEnvironment:
		a.params = make(map[entity.WorkOrderActivity]*ActivityParams)
		a.rebuildAllParameters()
	}
	return nil
}
