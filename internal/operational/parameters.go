package operational

import (
	"sort"

	"github.com/ordinator/ordinator/internal/entity"
)

// ActivityParams is the operational actor's per-work-order-activity view:
// the wall-clock work it must place plus any preparation time added before
// the first wrench-time block (§4.8, entity.Operation).
type ActivityParams struct {
	Activity    entity.WorkOrderActivity
	WorkHours   float64
	Preparation float64
}

func buildActivityParams(wo *entity.WorkOrder, hasSkill func(entity.Resource) bool) []*ActivityParams {
	nums := make([]entity.ActivityNumber, 0, len(wo.Operations))
	for n, op := range wo.Operations {
		if hasSkill(op.Resource) {
			nums = append(nums, n)
		}
	}
	sort.Slice(nums, func(i, j int) bool { return nums[i] < nums[j] })

	out := make([]*ActivityParams, 0, len(nums))
	for _, n := range nums {
		op := wo.Operations[n]
		out = append(out, &ActivityParams{
			Activity:    entity.WorkOrderActivity{WorkOrderNumber: wo.WorkOrderNumber, ActivityNumber: n},
			WorkHours:   op.WorkRemaining,
			Preparation: op.PreparationTime,
		})
	}
	return out
}
