package solution

import (
	"sort"
	"time"

	"github.com/ordinator/ordinator/internal/entity"
)

// Assignment is one interval on a technician's timeline (§3 "Operational
// Solution").
type Assignment struct {
	EventType       entity.EventType
	Start           time.Time
	Finish          time.Time
	Activity        *entity.WorkOrderActivity // nil for Break/Toolbox/OffShift/Unavailable/non-activity NonProductive
	MarginalFitness entity.MarginalFitness
}

// Duration returns the assignment's wall-clock span.
func (a Assignment) Duration() time.Duration {
	return a.Finish.Sub(a.Start)
}

// Operational is one technician's solution (§3 "Operational Solution").
type Operational struct {
	TechnicianID entity.Id
	Assignments  []Assignment // kept sorted by Start
	Objective    float64
}

// NewOperational builds an empty operational solution for a technician.
func NewOperational(id entity.Id) *Operational {
	return &Operational{TechnicianID: id}
}

// Insert adds an assignment and keeps the slice sorted by start time.
func (o *Operational) Insert(a Assignment) {
	o.Assignments = append(o.Assignments, a)
	sort.Slice(o.Assignments, func(i, j int) bool { return o.Assignments[i].Start.Before(o.Assignments[j].Start) })
}

// RemoveWrenchTimeFor removes every WrenchTime assignment belonging to the
// given activity, returning how many were removed.
func (o *Operational) RemoveWrenchTimeFor(activity entity.WorkOrderActivity) int {
	kept := o.Assignments[:0]
	removed := 0
	for _, a := range o.Assignments {
		if a.EventType == entity.EventWrenchTime && a.Activity != nil && *a.Activity == activity {
			removed++
			continue
		}
		kept = append(kept, a)
	}
	o.Assignments = kept
	return removed
}

// CoalesceNonProductive merges adjacent NonProductive assignments into one,
// as required after unschedule removes wrench-time blocks (§4.8).
func (o *Operational) CoalesceNonProductive() {
	if len(o.Assignments) < 2 {
		return
	}
	merged := make([]Assignment, 0, len(o.Assignments))
	for _, a := range o.Assignments {
		if len(merged) > 0 {
			last := &merged[len(merged)-1]
			if last.EventType == entity.EventNonProductive && a.EventType == entity.EventNonProductive && last.Finish.Equal(a.Start) {
				last.Finish = a.Finish
				continue
			}
		}
		merged = append(merged, a)
	}
	o.Assignments = merged
}

// MarginalFitnessForOperationalActor implements
// operational(id).marginal_fitness_for_operational_actor(wo_act): the
// fitness values recorded on the activity's wrench-time assignments, empty
// if the activity is not currently scheduled on this technician.
func (o *Operational) MarginalFitnessForOperationalActor(woa entity.WorkOrderActivity) []entity.MarginalFitness {
	var out []entity.MarginalFitness
	for _, a := range o.Assignments {
		if a.EventType == entity.EventWrenchTime && a.Activity != nil && *a.Activity == woa {
			out = append(out, a.MarginalFitness)
		}
	}
	return out
}

// WrenchTimeTotal sums the duration of every wrench-time assignment
// belonging to the given activity, in hours.
func (o *Operational) WrenchTimeTotal(activity entity.WorkOrderActivity) float64 {
	total := time.Duration(0)
	for _, a := range o.Assignments {
		if a.EventType == entity.EventWrenchTime && a.Activity != nil && *a.Activity == activity {
			total += a.Duration()
		}
	}
	return total.Hours()
}

// PreparationTotal sums the duration of every preparation assignment
// belonging to the given activity, in hours. Preparation is placed as its
// own leading segment ahead of an activity's wrench-time blocks and is kept
// out of WrenchTimeTotal (§4.8, §8).
func (o *Operational) PreparationTotal(activity entity.WorkOrderActivity) float64 {
	total := time.Duration(0)
	for _, a := range o.Assignments {
		if a.EventType == entity.EventPreparation && a.Activity != nil && *a.Activity == activity {
			total += a.Duration()
		}
	}
	return total.Hours()
}

// Clone deep-copies the operational solution for LNS rollback.
func (o *Operational) Clone() *Operational {
	c := &Operational{
		TechnicianID: o.TechnicianID,
		Assignments:  append([]Assignment(nil), o.Assignments...),
		Objective:    o.Objective,
	}
	return c
}
