package strategic

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ordinator/ordinator/internal/entity"
	"github.com/ordinator/ordinator/internal/schedenv"
	"github.com/ordinator/ordinator/internal/sharedsolution"
)

// isoWeekStart returns the Monday that begins the given ISO year/week.
func isoWeekStart(year, week int) time.Time {
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	// Jan 4 always falls in ISO week 1; find that week's Monday.
	offset := int(jan4.Weekday())
	if offset == 0 {
		offset = 7
	}
	week1Monday := jan4.AddDate(0, 0, -(offset - 1))
	return week1Monday.AddDate(0, 0, (week-1)*7)
}

func horizon3() []entity.Period {
	return []entity.Period{
		entity.NewPeriod(2024, 41),
		entity.NewPeriod(2024, 43),
		entity.NewPeriod(2024, 45),
	}
}

func newTestEnv(t *testing.T, asset entity.Asset, configs []schedenv.OperationalConfig, options schedenv.StrategicOptions) *schedenv.SchedulingEnvironment {
	t.Helper()
	env := schedenv.New()
	require.NoError(t, env.SetHorizon(horizon3(), nil))
	env.ConfigureAsset(&schedenv.ActorSpecification{
		Asset:              asset,
		StrategicOptions:   options,
		OperationalConfigs: configs,
	})
	return env
}

func mechanic(id entity.Id, hoursPerDay float64) schedenv.OperationalConfig {
	return schedenv.OperationalConfig{
		Technician: entity.Technician{ID: id, Skills: []entity.Resource{entity.ResourceMtnMech}, HoursPerDay: hoursPerDay},
	}
}

// Scenario 1 (§8): strategic lock-in.
func TestActor_StrategicLockIn(t *testing.T) {
	asset := entity.Asset("PLT1")
	env := newTestEnv(t, asset, []schedenv.OperationalConfig{mechanic("T1", 8)}, schedenv.StrategicOptions{
		UrgencyWeight: 1, ResourcePenaltyWeight: 1,
	})

	locked := entity.NewPeriod(2024, 43)
	wo := &entity.WorkOrder{
		WorkOrderNumber:      2100000001,
		Asset:                asset,
		Priority:             5,
		MaterialStatus:       entity.MaterialStatusCMAT,
		EarliestAllowedStart: isoWeekStart(2024, 41),
		LatestAllowedFinish:  isoWeekStart(2024, 45),
		Vendor:               true,
		UnloadingPoint:       &locked,
		Operations: map[entity.ActivityNumber]*entity.Operation{
			1: {ActivityNumber: 1, Resource: entity.ResourceMtnMech, WorkRemaining: 10.0},
		},
	}
	require.NoError(t, env.UpsertWorkOrder(wo))

	fabric := sharedsolution.NewFabric(nil)
	a, err := New(asset, env, fabric, zaptest.NewLogger(t).Sugar(), 1)
	require.NoError(t, err)

	a.LoadSharedSolution()
	_, err = a.IncorporateSharedState()
	require.NoError(t, err)
	a.Snapshot()
	a.Unschedule()
	require.NoError(t, a.Schedule())

	period, ok := a.Solution().ScheduledTask(2100000001)
	require.True(t, ok)
	require.NotNil(t, period)
	assert.True(t, period.Equal(locked))
	assert.Equal(t, 10.0, a.Solution().Load(locked, "T1", entity.ResourceMtnMech))
}

// Scenario 2 (§8): strategic capacity fallback.
func TestActor_StrategicCapacityFallback(t *testing.T) {
	asset := entity.Asset("PLT1")
	env := newTestEnv(t, asset, []schedenv.OperationalConfig{mechanic("T1", 4)}, schedenv.StrategicOptions{
		UrgencyWeight: 1, ResourcePenaltyWeight: 1,
	})
	// 4 hours/day * 10 working days per period = 40h capacity per period.

	woA := &entity.WorkOrder{
		WorkOrderNumber: 1, Asset: asset, Priority: 10, MaterialStatus: entity.MaterialStatusCMAT,
		EarliestAllowedStart: isoWeekStart(2024, 41), LatestAllowedFinish: isoWeekStart(2024, 45),
		Operations: map[entity.ActivityNumber]*entity.Operation{
			1: {ActivityNumber: 1, Resource: entity.ResourceMtnMech, WorkRemaining: 40.0},
		},
	}
	woB := &entity.WorkOrder{
		WorkOrderNumber: 2, Asset: asset, Priority: 3, MaterialStatus: entity.MaterialStatusCMAT,
		EarliestAllowedStart: isoWeekStart(2024, 41), LatestAllowedFinish: isoWeekStart(2024, 45),
		Operations: map[entity.ActivityNumber]*entity.Operation{
			1: {ActivityNumber: 1, Resource: entity.ResourceMtnMech, WorkRemaining: 40.0},
		},
	}
	require.NoError(t, env.UpsertWorkOrder(woA))
	require.NoError(t, env.UpsertWorkOrder(woB))

	fabric := sharedsolution.NewFabric(nil)
	a, err := New(asset, env, fabric, zaptest.NewLogger(t).Sugar(), 1)
	require.NoError(t, err)

	a.LoadSharedSolution()
	_, err = a.IncorporateSharedState()
	require.NoError(t, err)
	a.Snapshot()
	a.Unschedule()
	require.NoError(t, a.Schedule())

	w41 := entity.NewPeriod(2024, 41)
	w43 := entity.NewPeriod(2024, 43)

	periodA, ok := a.Solution().ScheduledTask(1)
	require.True(t, ok)
	periodB, ok := a.Solution().ScheduledTask(2)
	require.True(t, ok)

	assert.True(t, periodA.Equal(w41), "higher-weight WO placed in the earlier period")
	assert.True(t, periodB.Equal(w43))

	assert.InDelta(t, 0.0, a.objective(), 1e-9)
}
