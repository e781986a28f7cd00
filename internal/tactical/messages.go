package tactical

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
	RequestStartAndFinishDates
	RequestAllScheduledTasks
	RequestUpdateWorkOrders
)

// Request is the tactical actor's external Actor(request) message.
type Request struct {
	Kind              RequestKind
	WorkOrderActivity entity.WorkOrderActivity
	ChangedWOs        []entity.WorkOrderNumber
}

// Response is the tactical actor's reply.
type Response struct {
	Running  bool
	Start    entity.Day
	Finish   entity.Day
	Found    bool
	AllTasks map[entity.WorkOrderNumber]map[entity.ActivityNumber]entity.Day
}

// HandleRequest implements actor.Handler.
func (a *Actor) HandleRequest(_ context.Context, req Request) (Response, error) {
	switch req.Kind {
	case RequestStatus:
		return Response{Running: true}, nil
	case RequestStartAndFinishDates:
		start, finish, ok := a.solution.StartAndFinishDates(req.WorkOrderActivity)
		return Response{Start: start, Finish: finish, Found: ok}, nil
	case RequestAllScheduledTasks:
		return Response{AllTasks: a.solution.AllScheduledTasks()}, nil
	case RequestUpdateWorkOrders:
		a.pendingChange = true
		a.changedWOs = append(a.changedWOs, req.ChangedWOs...)
		return Response{}, nil
	default:
		return Response{}, fmt.Errorf("tactical actor: unrecognized request kind %d", req.Kind)
	}
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
			return fmt.Errorf("rebuild capacity: %w", err)
		}
		a.rebuildCapacity(spec)
	case actor.TimeEnvironment:
		a.rebuildDays()
		a.rebuildAllParameters()
	}
	return nil
}

// Mailbox is the concrete mailbox type for the tactical actor.
type Mailbox = actor.Mailbox[Request, Response]

// NewMailbox allocates a tactical actor's mailbox.
func NewMailbox(capacity int) *Mailbox {
	return actor.NewMailbox[Request, Response](capacity)
}
