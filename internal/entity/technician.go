package entity

import "time"

// Id identifies a technician (the "Operational Id" of §3).
type Id string

// TimeOfDayInterval is a recurring daily interval expressed as an offset
// from midnight, e.g. a lunch break [11:00, 12:00).
type TimeOfDayInterval struct {
	Start time.Duration
	End   time.Duration
}

// Contains reports whether the offset-from-midnight `offset` falls in [Start,End).
func (t TimeOfDayInterval) Contains(offset time.Duration) bool {
	if t.Start <= t.End {
		return offset >= t.Start && offset < t.End
	}
	// Wraps past midnight (e.g. an off-shift interval [19:00, 07:00)).
	return offset >= t.Start || offset < t.End
}

// OnDate anchors the recurring interval to a specific calendar date,
// returning absolute [start,finish) timestamps. A wrapping interval's finish
// lands on the following day.
func (t TimeOfDayInterval) OnDate(date time.Time) (time.Time, time.Time) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	start := day.Add(t.Start)
	end := day.Add(t.End)
	if t.End <= t.Start {
		end = end.AddDate(0, 0, 1)
	}
	return start, end
}

// AvailabilityWindow is the continuous span over which a technician may be
// scheduled.
type AvailabilityWindow struct {
	Start time.Time
	End   time.Time
}

// Technician is the operational actor's scheduling subject.
type Technician struct {
	ID           Id
	Skills       []Resource
	Assets       []Asset
	Availability AvailabilityWindow
	HoursPerDay  float64
	Break        TimeOfDayInterval
	OffShift     TimeOfDayInterval
	Toolbox      TimeOfDayInterval
}

// HasSkill reports whether the technician holds the given resource/skill.
func (t *Technician) HasSkill(r Resource) bool {
	for _, s := range t.Skills {
		if s == r {
			return true
		}
	}
	return false
}

// AssignedToAsset reports whether the technician works the given asset.
func (t *Technician) AssignedToAsset(a Asset) bool {
	for _, candidate := range t.Assets {
		if candidate == a {
			return true
		}
	}
	return false
}

// Delegate is the state of a (technician, activity) pair in the supervisor's
// state machine (§4.7).
type Delegate string

const (
	DelegateAssess   Delegate = "Assess"
	DelegateAssign   Delegate = "Assign"
	DelegateUnassign Delegate = "Unassign"
	DelegateDrop     Delegate = "Drop"
	DelegateDone     Delegate = "Done"
	DelegateFixed    Delegate = "Fixed"
)

// EventType classifies an operational timeline assignment.
type EventType string

const (
	EventWrenchTime    EventType = "WrenchTime"
	EventPreparation   EventType = "Preparation"
	EventBreak         EventType = "Break"
	EventToolbox       EventType = "Toolbox"
	EventOffShift      EventType = "OffShift"
	EventNonProductive EventType = "NonProductive"
	EventUnavailable   EventType = "Unavailable"
)

// IsMovable reports whether assignments of this type may be shifted/removed
// freely by the LNS loop. Non-movable events (shift structure, availability
// gaps) are walked around, never rescheduled.
func (e EventType) IsMovable() bool {
	return e == EventWrenchTime || e == EventPreparation || e == EventNonProductive
}

// MarginalFitnessKind discriminates the MarginalFitness sum type.
type MarginalFitnessKind int

const (
	FitnessNotScheduled MarginalFitnessKind = iota
	FitnessScheduled
)

// MarginalFitness is the non-productive-seconds signal the supervisor's
// auction reads from each candidate operational actor.
type MarginalFitness struct {
	Kind    MarginalFitnessKind
	Seconds int64 // valid iff Kind == FitnessScheduled
}

// Scheduled builds a MarginalFitness carrying a non-productive-seconds value.
func Scheduled(seconds int64) MarginalFitness {
	return MarginalFitness{Kind: FitnessScheduled, Seconds: seconds}
}

// NotScheduled is the zero-value "no signal yet" fitness.
var NotScheduled = MarginalFitness{Kind: FitnessNotScheduled}

// Less orders MarginalFitness values the way the supervisor auction does:
// an unscheduled fitness never outranks a scheduled one, and among scheduled
// fitnesses fewer non-productive seconds wins.
func (m MarginalFitness) Less(o MarginalFitness) bool {
	if m.Kind != FitnessScheduled {
		return false
	}
	if o.Kind != FitnessScheduled {
		return true
	}
	return m.Seconds < o.Seconds
}
