package supervisor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ordinator/ordinator/internal/entity"
	"github.com/ordinator/ordinator/internal/schedenv"
	"github.com/ordinator/ordinator/internal/sharedsolution"
	"github.com/ordinator/ordinator/internal/solution"
)

// Scenario 4 (§8): supervisor auction.
func TestActor_SupervisorAuction(t *testing.T) {
	asset := entity.Asset("PLT1")
	period := entity.NewPeriod(2024, 41)

	env := schedenv.New()
	require.NoError(t, env.SetHorizon([]entity.Period{period}, nil))
	env.ConfigureAsset(&schedenv.ActorSpecification{
		Asset: asset,
		OperationalConfigs: []schedenv.OperationalConfig{
			{Technician: entity.Technician{ID: "T1", Skills: []entity.Resource{entity.ResourceMtnMech}}},
			{Technician: entity.Technician{ID: "T2", Skills: []entity.Resource{entity.ResourceMtnMech}}},
		},
	})

	won := entity.WorkOrderNumber(2300000001)
	wo := &entity.WorkOrder{
		WorkOrderNumber: won, Asset: asset, Priority: 1, MaterialStatus: entity.MaterialStatusCMAT,
		Operations: map[entity.ActivityNumber]*entity.Operation{
			1: {ActivityNumber: 1, Resource: entity.ResourceMtnMech, WorkRemaining: 4.0},
		},
	}
	require.NoError(t, env.UpsertWorkOrder(wo))

	fabric := sharedsolution.NewFabric(nil)
	strategic := solution.NewStrategic()
	strategic.SetScheduled(won, &period)

	opT1 := solution.NewOperational("T1")
	opT2 := solution.NewOperational("T2")
	act := entity.WorkOrderActivity{WorkOrderNumber: won, ActivityNumber: 1}

	fabric.Publish(func(base *sharedsolution.Composite) *sharedsolution.Composite {
		base = base.WithStrategic(strategic)
		base = base.WithOperational("T1", opT1)
		base = base.WithOperational("T2", opT2)
		return base
	})

	a, err := New("SUP1", asset, []entity.Period{period}, env, fabric, zaptest.NewLogger(t).Sugar(), 1)
	require.NoError(t, err)

	a.LoadSharedSolution()
	_, err = a.IncorporateSharedState()
	require.NoError(t, err)
	a.Snapshot()
	a.Unschedule()
	require.NoError(t, a.Schedule())

	// First iteration: no published fitness yet, activity stays in Assess.
	d1, ok := a.Solution().Get("T1", act)
	require.True(t, ok)
	assert.Equal(t, entity.DelegateAssess, d1)

	// Now T1 and T2 publish their operational fitness: T1 worse (3600s),
	// T2 better (1800s), by inserting an assignment whose MarginalFitness
	// matches the scenario's literal values.
	withFitness := func(id entity.Id, seconds int64) *solution.Operational {
		op := solution.NewOperational(id)
		op.Insert(solution.Assignment{
			EventType:       entity.EventWrenchTime,
			Activity:        &act,
			MarginalFitness: entity.Scheduled(seconds),
		})
		return op
	}
	fabric.Publish(func(base *sharedsolution.Composite) *sharedsolution.Composite {
		base = base.WithOperational("T1", withFitness("T1", 3600))
		base = base.WithOperational("T2", withFitness("T2", 1800))
		return base
	})

	a.LoadSharedSolution()
	_, err = a.IncorporateSharedState()
	require.NoError(t, err)
	a.Snapshot()
	a.Unschedule()
	require.NoError(t, a.Schedule())

	dT1, ok := a.Solution().Get("T1", act)
	require.True(t, ok)
	dT2, ok := a.Solution().Get("T2", act)
	require.True(t, ok)

	assert.Equal(t, entity.DelegateUnassign, dT1)
	assert.Equal(t, entity.DelegateAssign, dT2)
}
