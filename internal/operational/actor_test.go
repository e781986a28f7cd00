package operational

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ordinator/ordinator/internal/entity"
	"github.com/ordinator/ordinator/internal/lns"
	"github.com/ordinator/ordinator/internal/schedenv"
	"github.com/ordinator/ordinator/internal/sharedsolution"
	"github.com/ordinator/ordinator/internal/solution"
)

// Scenario 5 (§8): operational placement with off-shift.
func TestActor_OperationalPlacementWithOffShift(t *testing.T) {
	asset := entity.Asset("PLT1")
	period := entity.Period{Year: 2024, StartWeek: 41, EndWeek: 42}
	monday := period.StartDate()

	tech := entity.Technician{
		ID:     "T1",
		Skills: []entity.Resource{entity.ResourceMtnMech},
		Availability: entity.AvailabilityWindow{
			Start: monday.Add(6 * time.Hour),
			End:   monday.AddDate(0, 0, 6).Add(20 * time.Hour),
		},
		OffShift: entity.TimeOfDayInterval{Start: 19 * time.Hour, End: 7 * time.Hour},
		Break:    entity.TimeOfDayInterval{Start: 11 * time.Hour, End: 12 * time.Hour},
		Toolbox:  entity.TimeOfDayInterval{Start: 7 * time.Hour, End: 8 * time.Hour},
	}

	env := schedenv.New()
	require.NoError(t, env.SetHorizon([]entity.Period{period}, nil))
	env.ConfigureAsset(&schedenv.ActorSpecification{
		Asset:              asset,
		OperationalConfigs: []schedenv.OperationalConfig{{Technician: tech}},
	})

	won := entity.WorkOrderNumber(2400000001)
	wo := &entity.WorkOrder{
		WorkOrderNumber: won, Asset: asset, Priority: 1, MaterialStatus: entity.MaterialStatusCMAT,
		Operations: map[entity.ActivityNumber]*entity.Operation{
			1: {ActivityNumber: 1, Resource: entity.ResourceMtnMech, WorkRemaining: 4.0},
		},
	}
	require.NoError(t, env.UpsertWorkOrder(wo))

	act := entity.WorkOrderActivity{WorkOrderNumber: won, ActivityNumber: 1}

	sup := solution.NewSupervisor()
	sup.Set(tech.ID, act, entity.DelegateAssign)

	fabric := sharedsolution.NewFabric(nil)
	fabric.Publish(func(base *sharedsolution.Composite) *sharedsolution.Composite {
		return base.WithSupervisor("SUP1", sup)
	})

	cfg := schedenv.OperationalConfig{Technician: tech}
	a, err := New(cfg, asset, env, fabric, zaptest.NewLogger(t).Sugar(), 1)
	require.NoError(t, err)

	a.LoadSharedSolution()
	_, err = a.IncorporateSharedState()
	require.NoError(t, err)
	a.Snapshot()
	a.Unschedule()
	require.NoError(t, a.Schedule())

	var wrench []solution.Assignment
	var brk *solution.Assignment
	for i, asg := range a.Solution().Assignments {
		if asg.EventType == entity.EventWrenchTime {
			wrench = append(wrench, asg)
		}
		if asg.EventType == entity.EventBreak {
			brk = &a.Solution().Assignments[i]
		}
	}

	require.Len(t, wrench, 2, "expected the 4h task split around the break into two wrench-time blocks")

	day0 := time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, monday.Location())
	wantFirstStart := day0.Add(8 * time.Hour)
	wantFirstFinish := day0.Add(11 * time.Hour)
	wantSecondStart := day0.Add(12 * time.Hour)
	wantSecondFinish := day0.Add(13 * time.Hour)

	assert.True(t, wrench[0].Start.Equal(wantFirstStart))
	assert.True(t, wrench[0].Finish.Equal(wantFirstFinish))
	assert.True(t, wrench[1].Start.Equal(wantSecondStart))
	assert.True(t, wrench[1].Finish.Equal(wantSecondFinish))

	require.NotNil(t, brk)
	assert.True(t, brk.Start.Equal(wantFirstFinish))
	assert.True(t, brk.Finish.Equal(wantSecondStart))

	require.NotNil(t, wrench[0].Activity)
	assert.Equal(t, act, *wrench[0].Activity)
	require.NotNil(t, wrench[1].Activity)
	assert.Equal(t, act, *wrench[1].Activity)
}

// Scenario 6 (§8): rollback law. A Worse evaluation must leave the in-memory
// solution equal to the pre-iteration clone.
func TestActor_RollbackLawOnWorseEvaluation(t *testing.T) {
	asset := entity.Asset("PLT1")
	period := entity.Period{Year: 2024, StartWeek: 41, EndWeek: 42}
	monday := period.StartDate()

	tech := entity.Technician{
		ID:     "T1",
		Skills: []entity.Resource{entity.ResourceMtnMech},
		Availability: entity.AvailabilityWindow{
			Start: monday.Add(6 * time.Hour),
			End:   monday.AddDate(0, 0, 1).Add(6 * time.Hour),
		},
	}

	env := schedenv.New()
	require.NoError(t, env.SetHorizon([]entity.Period{period}, nil))
	env.ConfigureAsset(&schedenv.ActorSpecification{
		Asset:              asset,
		OperationalConfigs: []schedenv.OperationalConfig{{Technician: tech}},
	})

	fabric := sharedsolution.NewFabric(nil)

	cfg := schedenv.OperationalConfig{Technician: tech}
	a, err := New(cfg, asset, env, fabric, zaptest.NewLogger(t).Sugar(), 1)
	require.NoError(t, err)

	a.LoadSharedSolution()
	_, err = a.IncorporateSharedState()
	require.NoError(t, err)

	a.Snapshot()
	a.snapshot.Objective = -1000 // simulate an incumbent no candidate can beat
	a.Unschedule()
	require.NoError(t, a.Schedule())

	outcome, _ := a.Evaluate()
	require.Equal(t, lns.Worse, outcome)

	a.Restore()

	assert.Equal(t, a.snapshot.TechnicianID, a.Solution().TechnicianID)
	assert.Equal(t, a.snapshot.Assignments, a.Solution().Assignments)
}
