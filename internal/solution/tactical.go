package solution

import "github.com/ordinator/ordinator/internal/entity"

// WhereKind discriminates the tactical WhereIsWorkOrder sum type (§3).
type WhereKind int

const (
	// WhereStrategic means the work order has a strategic period but the
	// tactical actor has not yet distributed its activities across days.
	WhereStrategic WhereKind = iota
	// WhereNotScheduled means the tactical actor tried and failed to fit the
	// work order's activities within the tactical horizon/capacity.
	WhereNotScheduled
	// WhereTactical means the work order's activities are placed on days.
	WhereTactical
)

// DayWork is one chunk of an activity's work placed on a single day.
type DayWork struct {
	Day  entity.Day
	Work float64
}

// ActivityPlacement is the tactical actor's placement of one activity.
type ActivityPlacement struct {
	Resource      entity.Resource
	People        int
	WorkRemaining float64
	Days          []DayWork // ordered by Day.Index
}

// SumWork returns the total hours placed across all days.
func (a *ActivityPlacement) SumWork() float64 {
	total := 0.0
	for _, d := range a.Days {
		total += d.Work
	}
	return total
}

// WhereIsWorkOrder is the tactical actor's per-work-order state.
type WhereIsWorkOrder struct {
	Kind       WhereKind
	Activities map[entity.ActivityNumber]*ActivityPlacement // valid iff Kind == WhereTactical
}

// Tactical is the tactical actor's solution (§3 "Tactical Solution").
type Tactical struct {
	Where map[entity.WorkOrderNumber]*WhereIsWorkOrder
	// Loadings is Resource -> day index -> accumulated work hours.
	Loadings  map[entity.Resource]map[int]float64
	Objective float64
}

// NewTactical builds an empty tactical solution.
func NewTactical() *Tactical {
	return &Tactical{
		Where:    make(map[entity.WorkOrderNumber]*WhereIsWorkOrder),
		Loadings: make(map[entity.Resource]map[int]float64),
	}
}

// AddLoad accumulates work hours of a resource on a day.
func (t *Tactical) AddLoad(resource entity.Resource, dayIndex int, work float64) {
	byDay, ok := t.Loadings[resource]
	if !ok {
		byDay = make(map[int]float64)
		t.Loadings[resource] = byDay
	}
	byDay[dayIndex] += work
}

// Load reads the accumulated hours of a resource on a day.
func (t *Tactical) Load(resource entity.Resource, dayIndex int) float64 {
	if byDay, ok := t.Loadings[resource]; ok {
		return byDay[dayIndex]
	}
	return 0
}

// StartAndFinishDates implements tactical.start_and_finish_dates(wo_act):
// the first and last day the activity occupies, if placed.
func (t *Tactical) StartAndFinishDates(woa entity.WorkOrderActivity) (entity.Day, entity.Day, bool) {
	where, ok := t.Where[woa.WorkOrderNumber]
	if !ok || where.Kind != WhereTactical {
		return entity.Day{}, entity.Day{}, false
	}
	placement, ok := where.Activities[woa.ActivityNumber]
	if !ok || len(placement.Days) == 0 {
		return entity.Day{}, entity.Day{}, false
	}
	return placement.Days[0].Day, placement.Days[len(placement.Days)-1].Day, true
}

// AllScheduledTasks implements tactical.all_scheduled_tasks(): for each
// placed work order, the start day of each of its activities.
func (t *Tactical) AllScheduledTasks() map[entity.WorkOrderNumber]map[entity.ActivityNumber]entity.Day {
	out := make(map[entity.WorkOrderNumber]map[entity.ActivityNumber]entity.Day)
	for wo, where := range t.Where {
		if where.Kind != WhereTactical {
			continue
		}
		activities := make(map[entity.ActivityNumber]entity.Day, len(where.Activities))
		for act, placement := range where.Activities {
			if len(placement.Days) > 0 {
				activities[act] = placement.Days[0].Day
			}
		}
		out[wo] = activities
	}
	return out
}

// Clone deep-copies the tactical solution for LNS rollback.
func (t *Tactical) Clone() *Tactical {
	c := NewTactical()
	for wo, where := range t.Where {
		cw := &WhereIsWorkOrder{Kind: where.Kind}
		if where.Activities != nil {
			cw.Activities = make(map[entity.ActivityNumber]*ActivityPlacement, len(where.Activities))
			for act, placement := range where.Activities {
				cp := &ActivityPlacement{
					Resource:      placement.Resource,
					People:        placement.People,
					WorkRemaining: placement.WorkRemaining,
					Days:          append([]DayWork(nil), placement.Days...),
				}
				cw.Activities[act] = cp
			}
		}
		c.Where[wo] = cw
	}
	for resource, byDay := range t.Loadings {
		cByDay := make(map[int]float64, len(byDay))
		for day, work := range byDay {
			cByDay[day] = work
		}
		c.Loadings[resource] = cByDay
	}
	c.Objective = t.Objective
	return c
}
