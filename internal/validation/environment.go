package validation

import (
	"fmt"

	"github.com/ordinator/ordinator/internal/entity"
	"github.com/ordinator/ordinator/internal/schedenv"
)

// ValidateSnapshot checks a Scheduling Environment snapshot against the
// ingestion input constraints (§6): every work order's asset must be
// configured, every operation's resource must be a skill some technician on
// that asset holds, and periods/days must be sorted and contiguous. It
// collects every violation rather than failing on the first.
func ValidateSnapshot(snap schedenv.Snapshot) *Result {
	result := NewResult()

	assets := make(map[entity.Asset]*schedenv.ActorSpecification, len(snap.Specifications))
	for _, spec := range snap.Specifications {
		assets[spec.Asset] = spec
	}

	for i := 1; i < len(snap.Periods); i++ {
		prev := snap.Periods[i-1]
		prevEnd := prev.StartDate().AddDate(0, 0, (prev.EndWeek-prev.StartWeek+1)*7)
		if !snap.Periods[i].StartDate().Equal(prevEnd) {
			result.AddErrorWithContext(CodeNonContiguousDays,
				"strategic periods are not sorted and contiguous",
				map[string]interface{}{"index": i, "period": snap.Periods[i].String()})
		}
	}
	for i := 1; i < len(snap.Days); i++ {
		if snap.Days[i].Index != snap.Days[i-1].Index+1 {
			result.AddErrorWithContext(CodeNonContiguousDays,
				"tactical days are not sorted and contiguous",
				map[string]interface{}{"index": i, "day_index": snap.Days[i].Index})
		}
	}

	seen := make(map[entity.WorkOrderNumber]bool, len(snap.WorkOrders))
	for _, wo := range snap.WorkOrders {
		if seen[wo.WorkOrderNumber] {
			result.AddErrorWithContext(CodeDuplicateWorkOrder,
				fmt.Sprintf("work order %d appears more than once", wo.WorkOrderNumber),
				map[string]interface{}{"work_order_number": wo.WorkOrderNumber})
		}
		seen[wo.WorkOrderNumber] = true

		spec, ok := assets[wo.Asset]
		if !ok {
			result.AddErrorWithContext(CodeUnknownAsset,
				fmt.Sprintf("work order %d references unrecognized asset %s", wo.WorkOrderNumber, wo.Asset),
				map[string]interface{}{"work_order_number": wo.WorkOrderNumber, "asset": string(wo.Asset)})
			continue
		}
		if len(wo.Operations) == 0 {
			result.AddErrorWithContext(CodeEmptyWorkOrder,
				fmt.Sprintf("work order %d has no operations", wo.WorkOrderNumber),
				map[string]interface{}{"work_order_number": wo.WorkOrderNumber})
			continue
		}

		skills := assetSkills(spec)
		for _, op := range wo.Operations {
			if !skills[op.Resource] {
				result.AddErrorWithContext(CodeUnknownResource,
					fmt.Sprintf("work order %d activity %d requires an unrecognized resource", wo.WorkOrderNumber, op.ActivityNumber),
					map[string]interface{}{
						"work_order_number": wo.WorkOrderNumber,
						"activity_number":   op.ActivityNumber,
						"resource":          string(op.Resource),
					})
			}
		}
	}

	return result
}

func assetSkills(spec *schedenv.ActorSpecification) map[entity.Resource]bool {
	skills := make(map[entity.Resource]bool)
	for _, cfg := range spec.OperationalConfigs {
		for _, r := range cfg.Technician.Skills {
			skills[r] = true
		}
	}
	return skills
}
