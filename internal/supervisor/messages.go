package supervisor

import (
	"context"
	"fmt"

	"github.com/ordinator/ordinator/internal/actor"
	"github.com/ordinator/ordinator/internal/entity"
)

// RequestKind discriminates the Status/Scheduling/Resources/Time/Update
// variants every actor request falls into (§6).
type RequestKind int

const (
	RequestStatus RequestKind = iota
	RequestDelegatesForAgent
	RequestDelegatedTasks
	RequestCountDelegateTypes
	RequestUpdateWorkOrders
)

// Request is the supervisor actor's external Actor(request) message.
type Request struct {
	Kind         RequestKind
	TechnicianID entity.Id
	ChangedWOs   []entity.WorkOrderNumber
}

// Response is the supervisor actor's reply.
type Response struct {
	Running   bool
	Delegates map[entity.WorkOrderActivity]entity.Delegate
	Tasks     []entity.WorkOrderActivity
	Assign    int
	Assess    int
	Unassign  int
}

// HandleRequest implements actor.Handler.
func (a *Actor) HandleRequest(_ context.Context, req Request) (Response, error) {
	switch req.Kind {
	case RequestStatus:
		return Response{Running: true}, nil
	case RequestDelegatesForAgent:
		return Response{Delegates: a.solution.DelegatesForAgent(req.TechnicianID)}, nil
	case RequestDelegatedTasks:
		return Response{Tasks: a.solution.DelegatedTasks(req.TechnicianID)}, nil
	case RequestCountDelegateTypes:
		assign, assess, unassign := a.solution.CountDelegateTypes(req.TechnicianID)
		return Response{Assign: assign, Assess: assess, Unassign: unassign}, nil
	case RequestUpdateWorkOrders:
		a.pendingChange = true
		a.changedWOs = append(a.changedWOs, req.ChangedWOs...)
		return Response{}, nil
	default:
		return Response{}, fmt.Errorf("supervisor actor: unrecognized request kind %d", req.Kind)
	}
}

// HandleState folds a Scheduling Environment change into cached parameters.
func (a *Actor) HandleState(_ context.Context, link actor.StateLink) error {
	switch link.Kind {
	case actor.WorkOrders:
		a.pendingChange = true
		a.changedWOs = append(a.changedWOs, link.WorkOrderNumbers...)
	case actor.WorkerEnvironment, actor.TimeEnvironment:
		spec, err := a.env.ActorSpecification(a.asset)
		if err != nil {
			return fmt.Errorf("rebuild parameters: %w", err)
		}
		a.activities = make(map[entity.WorkOrderActivity]*ActivityParams)
		a.candidates = make(map[entity.WorkOrderActivity][]entity.Id)
		a.rebuildAllParameters(spec)
	}
	return nil
}

// Mailbox is the concrete mailbox type for the supervisor actor.
type Mailbox = actor.Mailbox[Request, Response]

// NewMailbox allocates a supervisor actor's mailbox.
func NewMailbox(capacity int) *Mailbox {
	return actor.NewMailbox[Request, Response](capacity)
}
