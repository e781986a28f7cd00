package tactical

import (
	"time"

	"github.com/ordinator/ordinator/internal/entity"
)

// ActivityParams is the tactical actor's per-activity view.
type ActivityParams struct {
	ActivityNumber  entity.ActivityNumber
	Resource        entity.Resource
	NumberOfPeople  int
	WorkRemaining   float64
	OperatingTime   float64 // hours/day this activity can absorb
	PreparationTime float64
}

// WorkOrderParams is the tactical actor's per-work-order view, rebuilt from
// the Scheduling Environment (§4.6).
type WorkOrderParams struct {
	WorkOrderNumber      entity.WorkOrderNumber
	Weight               float64
	EarliestAllowedStart entity.Day
	Activities           map[entity.ActivityNumber]*ActivityParams
	Relations            []entity.ActivityRelation
}

func buildParameters(wo *entity.WorkOrder, days entity.DayHorizon) *WorkOrderParams {
	p := &WorkOrderParams{
		WorkOrderNumber: wo.WorkOrderNumber,
		Weight:          wo.Weight(),
		Activities:      make(map[entity.ActivityNumber]*ActivityParams, len(wo.Operations)),
		Relations:       append([]entity.ActivityRelation(nil), wo.Relations...),
	}
	for num, op := range wo.Operations {
		operatingTime := op.OperatingTimePerDay
		if operatingTime <= 0 {
			operatingTime = op.WorkRemaining
		}
		p.Activities[num] = &ActivityParams{
			ActivityNumber:  num,
			Resource:        op.Resource,
			NumberOfPeople:  op.NumberOfPeople,
			WorkRemaining:   op.WorkRemaining,
			OperatingTime:   operatingTime,
			PreparationTime: op.PreparationTime,
		}
	}
	p.EarliestAllowedStart = firstDayOnOrAfter(days, wo.EarliestAllowedStart)
	return p
}

// firstDayOnOrAfter returns the earliest tactical day whose date is not
// before t: the horizon's first day if t is zero or earlier than every day,
// the horizon's last day if t is after every day, and the zero Day if days
// is empty.
func firstDayOnOrAfter(days entity.DayHorizon, t time.Time) entity.Day {
	if len(days.Days) == 0 {
		return entity.Day{}
	}
	if t.IsZero() {
		return days.Days[0]
	}
	for _, d := range days.Days {
		if !d.Date.Before(t) {
			return d
		}
	}
	return days.Days[len(days.Days)-1]
}
