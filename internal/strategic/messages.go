package strategic

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
	RequestScheduledTask
	RequestAllScheduledTasks
	RequestSupervisorTasks
	RequestUpdateWorkOrders
)

// Request is the strategic actor's external Actor(request) message.
type Request struct {
	Kind            RequestKind
	WorkOrderNumber entity.WorkOrderNumber
	Periods         []entity.Period
	ChangedWOs      []entity.WorkOrderNumber
}

// Response is the strategic actor's reply.
type Response struct {
	Running          bool
	ScheduledTask    *entity.Period
	TaskDecided      bool
	AllTasks         map[entity.WorkOrderNumber]entity.Period
	SupervisorTasks  map[entity.WorkOrderNumber]entity.Period
}

// HandleRequest implements actor.Handler, answering the read-API surface
// (§6) directly against the actor's authoritative in-memory solution.
func (a *Actor) HandleRequest(_ context.Context, req Request) (Response, error) {
	switch req.Kind {
	case RequestStatus:
		return Response{Running: true}, nil
	case RequestScheduledTask:
		period, ok := a.solution.ScheduledTask(req.WorkOrderNumber)
		return Response{ScheduledTask: period, TaskDecided: ok}, nil
	case RequestAllScheduledTasks:
		return Response{AllTasks: a.solution.AllScheduledTasks()}, nil
	case RequestSupervisorTasks:
		return Response{SupervisorTasks: a.solution.SupervisorTasks(req.Periods)}, nil
	case RequestUpdateWorkOrders:
		a.pendingChange = true
		a.changedWOs = append(a.changedWOs, req.ChangedWOs...)
		return Response{}, nil
	default:
		return Response{}, fmt.Errorf("strategic actor: unrecognized request kind %d", req.Kind)
	}
}

// HandleState folds a Scheduling Environment change into the actor's cached
// parameters (§4.5 "State-link handling").
func (a *Actor) HandleState(_ context.Context, link actor.StateLink) error {
	switch link.Kind {
	case actor.WorkOrders:
		a.pendingChange = true
		a.changedWOs = append(a.changedWOs, link.WorkOrderNumbers...)
	case actor.WorkerEnvironment:
		spec, err := a.env.ActorSpecification(a.asset)
		if err != nil {
			return fmt.Errorf("rebuild capacity: %w", err)
		}
		a.rebuildCapacity(spec)
	case actor.TimeEnvironment:
		a.rebuildHorizon()
		a.rebuildAllParameters()
	}
	return nil
}

// Mailbox is the concrete mailbox type for the strategic actor.
type Mailbox = actor.Mailbox[Request, Response]

// NewMailbox allocates a strategic actor's mailbox.
func NewMailbox(capacity int) *Mailbox {
	return actor.NewMailbox[Request, Response](capacity)
}
