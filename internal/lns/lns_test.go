package lns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// fakeAlgorithm is a scripted Algorithm used to exercise the engine's
// control flow without any real scheduling domain.
type fakeAlgorithm struct {
	loaded       int
	incorporate  func() (bool, error)
	snapshotted  int
	restored     int
	unscheduled  int
	scheduleErr  error
	scheduleCall int
	evaluate     func() (Outcome, float64)
	published    int
	publishErr   error
	objective    float64
}

func (f *fakeAlgorithm) LoadSharedSolution() { f.loaded++ }

func (f *fakeAlgorithm) IncorporateSharedState() (bool, error) {
	if f.incorporate == nil {
		return false, nil
	}
	return f.incorporate()
}

func (f *fakeAlgorithm) Snapshot()   { f.snapshotted++ }
func (f *fakeAlgorithm) Restore()    { f.restored++ }
func (f *fakeAlgorithm) Unschedule() { f.unscheduled++ }

func (f *fakeAlgorithm) Schedule() error {
	f.scheduleCall++
	return f.scheduleErr
}

func (f *fakeAlgorithm) Evaluate() (Outcome, float64) {
	if f.evaluate == nil {
		return Worse, 0
	}
	return f.evaluate()
}

func (f *fakeAlgorithm) Publish() error {
	f.published++
	return f.publishErr
}

func (f *fakeAlgorithm) SetObjective(v float64) { f.objective = v }

func TestRunIteration_BetterOutcomePublishesAndSetsObjective(t *testing.T) {
	f := &fakeAlgorithm{evaluate: func() (Outcome, float64) { return Better, 42 }}

	require.NoError(t, RunIteration(f, zaptest.NewLogger(t).Sugar()))

	assert.Equal(t, 1, f.loaded)
	assert.Equal(t, 1, f.snapshotted)
	assert.Equal(t, 1, f.unscheduled)
	assert.Equal(t, 1, f.scheduleCall)
	assert.Equal(t, 1, f.published)
	assert.Equal(t, 0, f.restored)
	assert.Equal(t, 42.0, f.objective)
}

func TestRunIteration_WorseOutcomeRollsBackWithoutPublishing(t *testing.T) {
	f := &fakeAlgorithm{evaluate: func() (Outcome, float64) { return Worse, 0 }}

	require.NoError(t, RunIteration(f, zaptest.NewLogger(t).Sugar()))

	assert.Equal(t, 1, f.restored)
	assert.Equal(t, 0, f.published)
}

func TestRunIteration_ForcePublishesWithoutObjectiveCheck(t *testing.T) {
	f := &fakeAlgorithm{evaluate: func() (Outcome, float64) { return Force, 0 }}

	require.NoError(t, RunIteration(f, zaptest.NewLogger(t).Sugar()))

	assert.Equal(t, 1, f.published)
	assert.Equal(t, 0, f.restored)
	assert.Equal(t, 0.0, f.objective, "Force must not touch the recorded objective")
}

func TestRunIteration_ChangedSharedStatePublishesBeforeDestroyRebuild(t *testing.T) {
	calls := 0
	f := &fakeAlgorithm{
		incorporate: func() (bool, error) {
			calls++
			return true, nil
		},
		evaluate: func() (Outcome, float64) { return Better, 7 },
	}

	require.NoError(t, RunIteration(f, zaptest.NewLogger(t).Sugar()))

	assert.Equal(t, 1, calls)
	// One schedule+publish for the incorporate branch, one more for the
	// destroy/rebuild cycle.
	assert.Equal(t, 2, f.scheduleCall)
	assert.Equal(t, 2, f.published)
}

func TestRunIteration_ScheduleErrorIsFatal(t *testing.T) {
	f := &fakeAlgorithm{
		scheduleErr: assert.AnError,
		evaluate:    func() (Outcome, float64) { return Worse, 0 },
	}

	err := RunIteration(f, zaptest.NewLogger(t).Sugar())
	require.Error(t, err)
}

func TestRunIteration_PublishErrorIsFatal(t *testing.T) {
	f := &fakeAlgorithm{
		evaluate:   func() (Outcome, float64) { return Better, 1 },
		publishErr: assert.AnError,
	}

	err := RunIteration(f, zaptest.NewLogger(t).Sugar())
	require.Error(t, err)
}
