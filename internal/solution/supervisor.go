package solution

import "github.com/ordinator/ordinator/internal/entity"

// DelegateKey identifies one (technician, work-order-activity) pair in the
// supervisor's state machine.
type DelegateKey struct {
	TechnicianID entity.Id
	Activity     entity.WorkOrderActivity
}

// Supervisor is the supervisor actor's solution (§3 "Supervisor Solution"):
// (Id, WorkOrderActivity) -> Delegate, with a 64-bit minimized objective.
type Supervisor struct {
	Delegates map[DelegateKey]entity.Delegate
	Objective int64
}

// NewSupervisor builds an empty supervisor solution.
func NewSupervisor() *Supervisor {
	return &Supervisor{Delegates: make(map[DelegateKey]entity.Delegate)}
}

// Set records the delegate state for one (technician, activity) pair.
func (s *Supervisor) Set(tech entity.Id, activity entity.WorkOrderActivity, d entity.Delegate) {
	s.Delegates[DelegateKey{TechnicianID: tech, Activity: activity}] = d
}

// Remove deletes the delegate entry for one (technician, activity) pair.
func (s *Supervisor) Remove(tech entity.Id, activity entity.WorkOrderActivity) {
	delete(s.Delegates, DelegateKey{TechnicianID: tech, Activity: activity})
}

// Get reads the delegate state, if any.
func (s *Supervisor) Get(tech entity.Id, activity entity.WorkOrderActivity) (entity.Delegate, bool) {
	d, ok := s.Delegates[DelegateKey{TechnicianID: tech, Activity: activity}]
	return d, ok
}

// CandidatesForActivity returns every technician with a delegate entry for
// the given activity.
func (s *Supervisor) CandidatesForActivity(activity entity.WorkOrderActivity) []entity.Id {
	var out []entity.Id
	for key := range s.Delegates {
		if key.Activity == activity {
			out = append(out, key.TechnicianID)
		}
	}
	return out
}

// DelegatesForAgent implements supervisor.delegates_for_agent(id).
func (s *Supervisor) DelegatesForAgent(id entity.Id) map[entity.WorkOrderActivity]entity.Delegate {
	out := make(map[entity.WorkOrderActivity]entity.Delegate)
	for key, d := range s.Delegates {
		if key.TechnicianID == id {
			out[key.Activity] = d
		}
	}
	return out
}

// DelegatedTasks implements supervisor.delegated_tasks(id): activities
// currently in Assign or Assess for this technician.
func (s *Supervisor) DelegatedTasks(id entity.Id) []entity.WorkOrderActivity {
	var out []entity.WorkOrderActivity
	for key, d := range s.Delegates {
		if key.TechnicianID == id && (d == entity.DelegateAssign || d == entity.DelegateAssess) {
			out = append(out, key.Activity)
		}
	}
	return out
}

// CountDelegateTypes implements supervisor.count_delegate_types(id).
func (s *Supervisor) CountDelegateTypes(id entity.Id) (assign, assess, unassign int) {
	for key, d := range s.Delegates {
		if key.TechnicianID != id {
			continue
		}
		switch d {
		case entity.DelegateAssign:
			assign++
		case entity.DelegateAssess:
			assess++
		case entity.DelegateUnassign:
			unassign++
		}
	}
	return assign, assess, unassign
}

// Clone deep-copies the supervisor solution for LNS rollback.
func (s *Supervisor) Clone() *Supervisor {
	c := NewSupervisor()
	for k, v := range s.Delegates {
		c.Delegates[k] = v
	}
	c.Objective = s.Objective
	return c
}
