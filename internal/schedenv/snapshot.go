package schedenv

import "github.com/ordinator/ordinator/internal/entity"

// Snapshot is the serializable form of a Scheduling Environment (§6
// "Persisted state: a JSON file holding the serialized Scheduling
// Environment at startup if no upstream ingestion is available").
type Snapshot struct {
	Periods        []entity.Period       `json:"periods"`
	Days           []entity.Day          `json:"days"`
	WorkOrders     []*entity.WorkOrder   `json:"work_orders"`
	Specifications []*ActorSpecification `json:"specifications"`
}

// Snapshot copies the environment's current state into a serializable
// value.
func (se *SchedulingEnvironment) Snapshot() Snapshot {
	se.mu.RLock()
	defer se.mu.RUnlock()

	workOrders := make([]*entity.WorkOrder, 0, len(se.workOrders))
	for _, wo := range se.workOrders {
		workOrders = append(workOrders, wo)
	}
	specs := make([]*ActorSpecification, 0, len(se.specifications))
	for _, spec := range se.specifications {
		specs = append(specs, spec)
	}

	return Snapshot{
		Periods:        append([]entity.Period(nil), se.strategicHorizon.Periods...),
		Days:           append([]entity.Day(nil), se.tacticalDays.Days...),
		WorkOrders:     workOrders,
		Specifications: specs,
	}
}

// FromSnapshot rebuilds a Scheduling Environment from a previously captured
// Snapshot, the counterpart to Snapshot used to restore the persisted-state
// fallback at startup.
func FromSnapshot(snap Snapshot) (*SchedulingEnvironment, error) {
	se := New()
	if err := se.SetHorizon(snap.Periods, snap.Days); err != nil {
		return nil, err
	}
	for _, spec := range snap.Specifications {
		se.ConfigureAsset(spec)
	}
	for _, wo := range snap.WorkOrders {
		if err := se.UpsertWorkOrder(wo); err != nil {
			return nil, err
		}
	}
	return se, nil
}
