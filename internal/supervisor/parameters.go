package supervisor

import (
	"sort"

	"github.com/ordinator/ordinator/internal/entity"
	"github.com/ordinator/ordinator/internal/schedenv"
)

// ActivityParams is the supervisor actor's per-work-order-activity view
// (§4.7).
type ActivityParams struct {
	Activity       entity.WorkOrderActivity
	Resource       entity.Resource
	NumberOfPeople int
}

func buildActivityParams(wo *entity.WorkOrder) []*ActivityParams {
	nums := make([]entity.ActivityNumber, 0, len(wo.Operations))
	for n := range wo.Operations {
		nums = append(nums, n)
	}
	sort.Slice(nums, func(i, j int) bool { return nums[i] < nums[j] })

	out := make([]*ActivityParams, 0, len(nums))
	for _, n := range nums {
		op := wo.Operations[n]
		out = append(out, &ActivityParams{
			Activity:       entity.WorkOrderActivity{WorkOrderNumber: wo.WorkOrderNumber, ActivityNumber: n},
			Resource:       op.Resource,
			NumberOfPeople: op.NumberOfPeople,
		})
	}
	return out
}

// candidateTechnicians returns, in stable id order, every configured
// technician holding the given skill (§4.7 tie-break: "stable ordering,
// e.g. technician id lexicographic").
func candidateTechnicians(configs []schedenv.OperationalConfig, skill entity.Resource) []entity.Id {
	var out []entity.Id
	for _, cfg := range configs {
		if cfg.Technician.HasSkill(skill) {
			out = append(out, cfg.Technician.ID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
