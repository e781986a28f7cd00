// Package tactical implements the Tactical Actor (§4.6): day-level
// distribution of each activity's remaining work across the days covered by
// its strategic period, against a per-resource, per-day capacity table.
package tactical

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
// one asset's tactical day-spread scheduling (§4.6).
type Actor struct {
	asset  entity.Asset
	env    *schedenv.SchedulingEnvironment
	fabric *sharedsolution.Fabric
	log    *zap.SugaredLogger
	rng    *rand.Rand

	options  schedenv.TacticalOptions
	days     entity.DayHorizon
	capacity map[entity.Resource]float64 // per-day capacity, flat across the horizon
	params   map[entity.WorkOrderNumber]*WorkOrderParams

	current  *sharedsolution.Composite
	solution *solution.Tactical
	snapshot *solution.Tactical

	pendingChange bool
	changedWOs    []entity.WorkOrderNumber
}

// New constructs a tactical actor for an asset.
func New(asset entity.Asset, env *schedenv.SchedulingEnvironment, fabric *sharedsolution.Fabric, log *zap.SugaredLogger, seed int64) (*Actor, error) {
	spec, err := env.ActorSpecification(asset)
	if err != nil {
		return nil, fmt.Errorf("tactical actor for %s: %w", asset, err)
	}

	a := &Actor{
		asset:    asset,
		env:      env,
		fabric:   fabric,
		log:      log.Named("tactical").With("asset", string(asset)),
		rng:      rand.New(rand.NewSource(seed)),
		options:  spec.TacticalOptions,
		solution: solution.NewTactical(),
		params:   make(map[entity.WorkOrderNumber]*WorkOrderParams),
	}
	a.rebuildDays()
	a.rebuildCapacity(spec)
	a.rebuildAllParameters()
	return a, nil
}

func (a *Actor) rebuildDays() {
	a.days = a.env.TacticalDays()
}

func (a *Actor) rebuildCapacity(spec *schedenv.ActorSpecification) {
	capacity := make(map[entity.Resource]float64)
	for _, cfg := range spec.OperationalConfigs {
		for _, skill := range cfg.Technician.Skills {
			capacity[skill] += cfg.Technician.HoursPerDay
		}
	}
	a.capacity = capacity
}

func (a *Actor) rebuildAllParameters() {
	for _, wo := range a.env.WorkOrdersForAsset(a.asset) {
		a.params[wo.WorkOrderNumber] = buildParameters(wo, a.days)
	}
}

func (a *Actor) rebuildParametersFor(nums []entity.WorkOrderNumber) {
	for _, won := range nums {
		wo, ok := a.env.WorkOrder(won)
		if !ok {
			delete(a.params, won)
			delete(a.solution.Where, won)
			continue
		}
		a.params[won] = buildParameters(wo, a.days)
		delete(a.solution.Where, won) // force re-placement next schedule()
	}
}

// --- lns.Algorithm ---

func (a *Actor) LoadSharedSolution() {
	a.current = a.fabric.Load()
}

// IncorporateSharedState folds in the strategic actor's latest published
// placements (§4.6 "respect the strategic assignment").
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
	for won, period := range a.current.Strategic.AllScheduledTasks() {
		if _, ok := a.params[won]; !ok {
			continue
		}
		where, has := a.solution.Where[won]
		if has && where.Kind == solution.WhereTactical {
			continue // already distributed; leave in place until next unschedule
		}
		inHorizon := false
		for _, d := range a.days.Days {
			if d.InPeriod(period, period.StartDate()) {
				inHorizon = true
				break
			}
		}
		if !inHorizon {
			continue
		}
		a.solution.Where[won] = &solution.WhereIsWorkOrder{Kind: solution.WhereStrategic}
		changed = true
	}
	return changed, nil
}

func (a *Actor) Snapshot() {
	a.snapshot = a.solution.Clone()
}

func (a *Actor) Restore() {
	a.solution = a.snapshot
}

// Unschedule removes a sampled set of placed work orders, plus every
// assignment whose strategic period no longer matches a day in the horizon
// (§4.6).
func (a *Actor) Unschedule() {
	var placed []entity.WorkOrderNumber
	for won, where := range a.solution.Where {
		if where.Kind == solution.WhereTactical {
			placed = append(placed, won)
		}
	}
	sort.Slice(placed, func(i, j int) bool { return placed[i] < placed[j] })

	if a.current != nil && a.current.Strategic != nil {
		scheduled := a.current.Strategic.AllScheduledTasks()
		for _, won := range placed {
			period, ok := scheduled[won]
			for _, pl := range a.solution.Where[won].Activities {
				for _, dw := range pl.Days {
					ok = ok && dw.Day.InPeriod(period, period.StartDate())
				}
			}
			if !ok {
				a.revertToStrategic(won)
			}
		}
	}

	n := a.options.NumberOfRemovedAssignments
	for i := 0; i < n && len(placed) > 0; i++ {
		idx := a.rng.Intn(len(placed))
		a.revertToStrategic(placed[idx])
		placed = append(placed[:idx], placed[idx+1:]...)
	}
}

func (a *Actor) revertToStrategic(won entity.WorkOrderNumber) {
	where := a.solution.Where[won]
	if where == nil {
		return
	}
	for _, placement := range where.Activities {
		for _, dw := range placement.Days {
			byDay := a.solution.Loadings[placement.Resource]
			if byDay != nil {
				byDay[dw.Day.Index] -= dw.Work
			}
		}
	}
	a.solution.Where[won] = &solution.WhereIsWorkOrder{Kind: solution.WhereStrategic}
}

// Schedule rebuilds placements for every work order pending distribution
// (§4.6).
func (a *Actor) Schedule() error {
	if a.current == nil || a.current.Strategic == nil {
		return nil
	}
	scheduledPeriods := a.current.Strategic.AllScheduledTasks()

	var pending []entity.WorkOrderNumber
	for won, where := range a.solution.Where {
		if where.Kind == solution.WhereStrategic {
			pending = append(pending, won)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		return a.params[pending[i]].Weight > a.params[pending[j]].Weight
	})

	for _, won := range pending {
		p, ok := a.params[won]
		if !ok {
			continue
		}
		period, ok := scheduledPeriods[won]
		if !ok {
			continue
		}
		a.placeWorkOrder(p, period)
	}
	a.recomputeObjective()
	return nil
}

func (a *Actor) placeWorkOrder(p *WorkOrderParams, period entity.Period) {
	periodDays := a.daysInPeriod(period)
	if len(periodDays) == 0 {
		a.solution.Where[p.WorkOrderNumber] = &solution.WhereIsWorkOrder{Kind: solution.WhereNotScheduled}
		return
	}

	activityNums := make([]entity.ActivityNumber, 0, len(p.Activities))
	for num := range p.Activities {
		activityNums = append(activityNums, num)
	}
	sort.Slice(activityNums, func(i, j int) bool { return activityNums[i] < activityNums[j] })

	placements := make(map[entity.ActivityNumber]*solution.ActivityPlacement, len(p.Activities))
	anyUnplaced := false

	for _, num := range activityNums {
		act := p.Activities[num]
		startIdx := a.earliestStartIndex(periodDays, p, act, placements)
		remaining := act.WorkRemaining
		var chunks []solution.DayWork
		for i := startIdx; i < len(periodDays) && remaining > 1e-9; i++ {
			day := periodDays[i]
			free := a.capacity[act.Resource] - a.solution.Load(act.Resource, day.Index)
			if free <= 1e-9 {
				continue
			}
			chunk := act.OperatingTime
			if chunk > free {
				chunk = free
			}
			if chunk > remaining {
				chunk = remaining
			}
			chunks = append(chunks, solution.DayWork{Day: day, Work: chunk})
			remaining -= chunk
		}
		if remaining > 1e-9 {
			anyUnplaced = true
			continue
		}
		for _, c := range chunks {
			a.solution.AddLoad(act.Resource, c.Day.Index, c.Work)
		}
		placements[num] = &solution.ActivityPlacement{
			Resource:      act.Resource,
			People:        act.NumberOfPeople,
			WorkRemaining: act.WorkRemaining,
			Days:          chunks,
		}
	}

	if anyUnplaced || len(placements) == 0 {
		a.solution.Where[p.WorkOrderNumber] = &solution.WhereIsWorkOrder{Kind: solution.WhereNotScheduled}
		return
	}
	a.solution.Where[p.WorkOrderNumber] = &solution.WhereIsWorkOrder{Kind: solution.WhereTactical, Activities: placements}
}

// earliestStartIndex honors finish-to-start relations: an activity cannot
// start before every activity that must finish first has had its chunks
// placed (approximated here by requiring it start on a day after the
// predecessor's last scheduled day, when the predecessor is already in
// placed, i.e. was placed earlier in the same call).
func (a *Actor) earliestStartIndex(periodDays []entity.Day, p *WorkOrderParams, act *ActivityParams, placed map[entity.ActivityNumber]*solution.ActivityPlacement) int {
	start := 0
	for i, d := range periodDays {
		if !d.Date.Before(p.EarliestAllowedStart.Date) {
			start = i
			break
		}
	}
	for _, rel := range p.Relations {
		if rel.To != act.ActivityNumber {
			continue
		}
		predPlacement, ok := placed[rel.From]
		if !ok || len(predPlacement.Days) == 0 {
			continue
		}
		predFinish := predPlacement.Days[len(predPlacement.Days)-1].Day.Index
		for i, d := range periodDays {
			if d.Index > predFinish {
				if i > start {
					start = i
				}
				break
			}
		}
	}
	return start
}

func (a *Actor) daysInPeriod(period entity.Period) []entity.Day {
	start := period.StartDate()
	var out []entity.Day
	for _, d := range a.days.Days {
		if d.InPeriod(period, start) {
			out = append(out, d)
		}
	}
	return out
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

// objective sums the urgency term (weight * full-horizon penalty for every
// work order the tactical actor could not place at all) and the resource
// term (excess hours loaded onto a day beyond its capacity). A work order
// successfully distributed across days contributes no urgency: per-day
// lateness against an activity-level target is not tracked by the current
// parameter set, so this is a 0/not-placed signal rather than a graded one.
func (a *Actor) objective() float64 {
	urgency, penalty := 0.0, 0.0
	for won, where := range a.solution.Where {
		if where.Kind != solution.WhereNotScheduled {
			continue
		}
		if p, ok := a.params[won]; ok {
			urgency += p.Weight * float64(len(a.days.Days))
		}
	}
	for resource, byDay := range a.solution.Loadings {
		capacityHours := a.capacity[resource]
		for _, hours := range byDay {
			if over := hours - capacityHours; over > 0 {
				penalty += over
			}
		}
	}
	return a.options.UrgencyWeight*urgency + a.options.ResourcePenaltyWeight*penalty
}

func (a *Actor) Publish() error {
	a.fabric.Publish(func(base *sharedsolution.Composite) *sharedsolution.Composite {
		return base.WithTactical(a.solution)
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
func (a *Actor) Solution() *solution.Tactical {
	return a.solution
}
