package actor

import "github.com/ordinator/ordinator/internal/entity"

// StateLinkKind discriminates the kinds of external change an actor must
// fold into its cached parameters (§4.1, §4.5–§4.8 "State-link handling").
type StateLinkKind int

const (
	// WorkOrders notifies that the given work orders were added or changed.
	WorkOrders StateLinkKind = iota
	// WorkerEnvironment notifies that technician/capacity configuration changed.
	WorkerEnvironment
	// TimeEnvironment notifies that the period/day horizon changed.
	TimeEnvironment
)

// StateLink is the State(state_link) message an actor receives when the
// Scheduling Environment changes out from under it (§4.3).
type StateLink struct {
	Kind            StateLinkKind
	WorkOrderNumbers []entity.WorkOrderNumber
}
