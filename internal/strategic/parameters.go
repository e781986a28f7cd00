package strategic

import (
	"strings"
	"time"

	"github.com/ordinator/ordinator/internal/entity"
	"github.com/ordinator/ordinator/internal/schedenv"
)

// WorkOrderParams is the strategic actor's per-work-order view, rebuilt from
// the Scheduling Environment whenever a WorkOrders state-link arrives (§4.5).
type WorkOrderParams struct {
	WorkOrderNumber    entity.WorkOrderNumber
	FunctionalLocation string
	LockedIn           *entity.Period
	Excluded           map[entity.Period]bool
	EarliestAllowed    entity.Period
	LatestAllowed      entity.Period
	Weight             float64
	WorkLoad           map[entity.Resource]float64
}

// buildParameters derives a WorkOrderParams from a raw work order and the
// strategic horizon, applying the vendor/awsc/sch lock-in rules of §4.5.
func buildParameters(wo *entity.WorkOrder, horizon entity.Horizon, defaultExcluded []entity.Period) *WorkOrderParams {
	p := &WorkOrderParams{
		WorkOrderNumber:    wo.WorkOrderNumber,
		FunctionalLocation: wo.FunctionalLocation,
		Weight:             wo.Weight(),
		WorkLoad:           wo.WorkLoad(),
		Excluded:           make(map[entity.Period]bool, len(defaultExcluded)),
	}
	for _, ex := range defaultExcluded {
		p.Excluded[ex] = true
	}

	if len(horizon.Periods) > 0 {
		p.EarliestAllowed = horizon.Periods[0]
		p.LatestAllowed = horizon.Periods[len(horizon.Periods)-1]
	}
	if idx := periodIndexForDate(horizon, wo.EarliestAllowedStart); idx >= 0 {
		p.EarliestAllowed = horizon.Periods[idx]
	}
	if idx := periodIndexForDate(horizon, wo.LatestAllowedFinish); idx >= 0 {
		p.LatestAllowed = horizon.Periods[idx]
	}

	switch {
	case wo.Vendor && wo.UnloadingPoint != nil:
		locked := *wo.UnloadingPoint
		p.LockedIn = &locked
	case wo.Vendor:
		if n := len(horizon.Periods); n > 0 {
			last := horizon.Periods[n-1]
			p.LockedIn = &last
		}
	case wo.Flags.SCH:
		if n := len(horizon.Periods); n > 0 {
			first := horizon.Periods[0]
			if n > 1 && wo.Priority%2 == 0 {
				first = horizon.Periods[1]
			}
			p.LockedIn = &first
		}
	case wo.Flags.AWSC:
		if idx := periodIndexForDate(horizon, wo.BasicStart); idx >= 0 {
			locked := horizon.Periods[idx]
			p.LockedIn = &locked
		}
	}

	return p
}

// periodIndexForDate locates the horizon period whose ISO-week range
// contains t's ISO year/week. Returns -1 for a zero time (no constraint) or
// when t falls outside every horizon period.
func periodIndexForDate(horizon entity.Horizon, t time.Time) int {
	if t.IsZero() {
		return -1
	}
	year, week := t.ISOWeek()
	for i, p := range horizon.Periods {
		if p.Year == year && week >= p.StartWeek && week <= p.EndWeek {
			return i
		}
	}
	return -1
}

// clusteringKey groups work orders sharing a functional-location prefix, used
// by the clustering term (§4.5, §9 "Clustering term... implementer must pick
// a concrete monotone measure"). The prefix is everything before the first
// '-' separator, e.g. "PLT1-AREA2-PUMP7" clusters with "PLT1-AREA2-VALVE3".
func clusteringKey(functionalLocation string) string {
	if idx := strings.Index(functionalLocation, "-"); idx >= 0 {
		return functionalLocation[:idx]
	}
	return functionalLocation
}

// rebuildCapacity derives the Period -> technician -> skill -> hours capacity
// table from the asset's operational configs: each technician contributes
// HoursPerDay * 10 working days per period, per skill they hold.
func rebuildCapacity(horizon entity.Horizon, configs []schedenv.OperationalConfig) map[entity.Period]map[entity.Id]map[entity.Resource]float64 {
	capacity := make(map[entity.Period]map[entity.Id]map[entity.Resource]float64, len(horizon.Periods))
	for _, period := range horizon.Periods {
		byTech := make(map[entity.Id]map[entity.Resource]float64, len(configs))
		for _, cfg := range configs {
			bySkill := make(map[entity.Resource]float64, len(cfg.Technician.Skills))
			hoursPerPeriod := cfg.Technician.HoursPerDay * 10
			for _, skill := range cfg.Technician.Skills {
				bySkill[skill] = hoursPerPeriod
			}
			byTech[cfg.Technician.ID] = bySkill
		}
		capacity[period] = byTech
	}
	return capacity
}
