package entity

import "time"

// WorkOrderNumber identifies a unit of maintenance scope.
type WorkOrderNumber int64

// ActivityNumber identifies an operation within a work order.
type ActivityNumber int64

// WorkOrderActivity is the pair (WorkOrderNumber, ActivityNumber).
type WorkOrderActivity struct {
	WorkOrderNumber WorkOrderNumber
	ActivityNumber  ActivityNumber
}

// Asset is a physical installation whose maintenance is planned as one group.
type Asset string

// Resource is a skill / trade required to execute an operation.
type Resource string

const (
	ResourceMtnMech Resource = "MtnMech"
	ResourceMtnElec Resource = "MtnElec"
	ResourceMtnInst Resource = "MtnInst"
	ResourceMtnScaf Resource = "MtnScaf"
	ResourceMtnRope Resource = "MtnRope"
)

// WorkOrderType classifies the kind of maintenance work.
type WorkOrderType string

const (
	WorkOrderTypeWDF WorkOrderType = "WDF" // Deficiency
	WorkOrderTypeWGN WorkOrderType = "WGN" // General
	WorkOrderTypeWPM WorkOrderType = "WPM" // Preventive maintenance
	WorkOrderTypeWRO WorkOrderType = "WRO" // Rotating equipment
)

// MaterialStatus tracks how far along the material procurement is.
type MaterialStatus string

const (
	MaterialStatusSMAT MaterialStatus = "SMAT" // Shortage
	MaterialStatusNMAT MaterialStatus = "NMAT" // No material needed
	MaterialStatusCMAT MaterialStatus = "CMAT" // Complete
	MaterialStatusWMAT MaterialStatus = "WMAT" // Waiting
	MaterialStatusPMAT MaterialStatus = "PMAT" // Partial
)

// StatusFlags are additional boolean status codes a work order may carry.
type StatusFlags struct {
	PCNF bool // Planning confirmed
	AWSC bool // Awaiting scheduling
	WELL bool // Well-related
	SCH  bool // Scheduled (pin to first horizon periods)
	SECE bool // Safety/environment critical
}

// ActivityRelation expresses a finish-to-start precedence: To cannot start
// before From finishes.
type ActivityRelation struct {
	From ActivityNumber
	To   ActivityNumber
}

// Operation (a.k.a. Activity) is a sub-task of a work order requiring a
// specific skill.
type Operation struct {
	ActivityNumber      ActivityNumber
	Resource            Resource
	NumberOfPeople      int
	WorkRemaining       float64       // hours
	PlannedDuration     time.Duration // wall-clock span at full crew
	OperatingTimePerDay float64       // hours of work absorbable per day
	PreparationTime     float64       // hours, added before first wrench-time block
}

// WorkOrder is the unit of maintenance scope scheduled by all four actors.
type WorkOrder struct {
	WorkOrderNumber      WorkOrderNumber
	FunctionalLocation   string
	Asset                Asset
	Priority             int
	Type                 WorkOrderType
	Revision             bool // true => shutdown-class work
	MaterialStatus       MaterialStatus
	Flags                StatusFlags
	EarliestAllowedStart time.Time
	LatestAllowedFinish  time.Time
	BasicStart           time.Time
	BasicFinish          time.Time
	MainResource         Resource
	Vendor               bool
	UnloadingPoint       *Period // vendor lock-in target, if any
	Operations           map[ActivityNumber]*Operation
	Relations            []ActivityRelation
}

// Weight is a deterministic function of priority, material readiness and
// safety flags, used as the urgency multiplier in the strategic and tactical
// objectives.
func (w *WorkOrder) Weight() float64 {
	weight := float64(w.Priority)
	switch w.MaterialStatus {
	case MaterialStatusCMAT:
		weight *= 1.0
	case MaterialStatusPMAT:
		weight *= 1.25
	case MaterialStatusWMAT, MaterialStatusSMAT:
		weight *= 1.5
	case MaterialStatusNMAT:
		weight *= 1.1
	}
	if w.Flags.SECE {
		weight *= 2.0
	}
	if w.Revision {
		weight *= 1.5
	}
	if weight <= 0 {
		weight = 1.0
	}
	return weight
}

// TotalWorkRemaining sums WorkRemaining across all operations.
func (w *WorkOrder) TotalWorkRemaining() float64 {
	total := 0.0
	for _, op := range w.Operations {
		total += op.WorkRemaining
	}
	return total
}

// WorkLoad returns the per-resource hours demanded by the work order,
// aggregated across its operations.
func (w *WorkOrder) WorkLoad() map[Resource]float64 {
	load := make(map[Resource]float64, len(w.Operations))
	for _, op := range w.Operations {
		load[op.Resource] += op.WorkRemaining
	}
	return load
}
