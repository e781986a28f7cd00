// Package sharedsolution implements the Shared Solution Fabric (§4.2): the
// lock-free, atomically swappable composite through which the four actor
// classes communicate scheduling decisions.
package sharedsolution

import (
	"github.com/ordinator/ordinator/internal/entity"
	"github.com/ordinator/ordinator/internal/solution"
)

// Composite is the product of the four per-actor solutions (§3 "Shared
// Solution"). It is never mutated in place; every change is a fresh value
// built from the previous one by copying unaffected slots by reference.
type Composite struct {
	Strategic   *solution.Strategic
	Tactical    *solution.Tactical
	Supervisors map[entity.Id]*solution.Supervisor  // keyed by supervisor actor id
	Operational map[entity.Id]*solution.Operational // keyed by technician id
}

// NewComposite builds an empty composite, used to seed a fabric before any
// actor has published.
func NewComposite() *Composite {
	return &Composite{
		Strategic:   solution.NewStrategic(),
		Tactical:    solution.NewTactical(),
		Supervisors: make(map[entity.Id]*solution.Supervisor),
		Operational: make(map[entity.Id]*solution.Operational),
	}
}

// WithStrategic returns a new composite with the strategic slot replaced;
// the other three slots are carried over by reference.
func (c *Composite) WithStrategic(s *solution.Strategic) *Composite {
	return &Composite{Strategic: s, Tactical: c.Tactical, Supervisors: c.Supervisors, Operational: c.Operational}
}

// WithTactical returns a new composite with the tactical slot replaced.
func (c *Composite) WithTactical(t *solution.Tactical) *Composite {
	return &Composite{Strategic: c.Strategic, Tactical: t, Supervisors: c.Supervisors, Operational: c.Operational}
}

// WithSupervisor returns a new composite with one supervisor actor's slot
// replaced; only the top-level map is copied, every other entry is shared.
func (c *Composite) WithSupervisor(id entity.Id, s *solution.Supervisor) *Composite {
	next := make(map[entity.Id]*solution.Supervisor, len(c.Supervisors)+1)
	for k, v := range c.Supervisors {
		next[k] = v
	}
	next[id] = s
	return &Composite{Strategic: c.Strategic, Tactical: c.Tactical, Supervisors: next, Operational: c.Operational}
}

// WithOperational returns a new composite with one technician's slot
// replaced; only the top-level map is copied, every other entry is shared.
func (c *Composite) WithOperational(id entity.Id, o *solution.Operational) *Composite {
	next := make(map[entity.Id]*solution.Operational, len(c.Operational)+1)
	for k, v := range c.Operational {
		next[k] = v
	}
	next[id] = o
	return &Composite{Strategic: c.Strategic, Tactical: c.Tactical, Supervisors: c.Supervisors, Operational: next}
}

// DelegatesForAgent merges DelegatesForAgent across every supervisor actor's
// slot — the read API's "supervisor.delegates_for_agent(id)" is agnostic to
// which supervisor the technician happens to report to.
func (c *Composite) DelegatesForAgent(technicianID entity.Id) map[entity.WorkOrderActivity]entity.Delegate {
	out := make(map[entity.WorkOrderActivity]entity.Delegate)
	for _, sup := range c.Supervisors {
		for woa, d := range sup.DelegatesForAgent(technicianID) {
			out[woa] = d
		}
	}
	return out
}

// OperationalFitness implements
// operational(id).marginal_fitness_for_operational_actor(wo_act), returning
// an empty slice if the technician has no published operational solution.
func (c *Composite) OperationalFitness(id entity.Id, woa entity.WorkOrderActivity) []entity.MarginalFitness {
	op, ok := c.Operational[id]
	if !ok {
		return nil
	}
	return op.MarginalFitnessForOperationalActor(woa)
}
