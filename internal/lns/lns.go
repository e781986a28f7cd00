// Package lns implements the generic Large-Neighborhood-Search engine
// (§4.4) shared by all four actor kinds: load, incorporate external change,
// destroy a neighborhood, rebuild, evaluate, then publish or roll back.
package lns

import (
	"fmt"

	"go.uber.org/zap"
)

// Outcome is the result of evaluating a rebuilt solution against the
// incumbent (§4.4 step 7).
type Outcome int

const (
	// Worse means the rebuilt solution must be discarded and the
	// pre-iteration snapshot restored.
	Worse Outcome = iota
	// Better means the rebuilt solution strictly improves the actor's
	// lexicographic objective and should be published.
	Better
	// Force means the rebuilt solution must be accepted unconditionally,
	// regardless of objective comparison (used for externally driven
	// assignments, e.g. a supervisor's direct delegate change).
	Force
)

func (o Outcome) String() string {
	switch o {
	case Worse:
		return "worse"
	case Better:
		return "better"
	case Force:
		return "force"
	default:
		return "unknown"
	}
}

// Algorithm is the behavior every actor kind implements so a single engine
// can drive its iteration (§4.4, Design Notes §9: "four concrete actor
// types that implement a single LNS behavior, dispatched by matching").
type Algorithm interface {
	// LoadSharedSolution refreshes the actor's view of the fabric (step 1).
	LoadSharedSolution()
	// IncorporateSharedState folds in any change the actor has not yet
	// reacted to (a new work order, a changed horizon, ...) and reports
	// whether anything changed (step 2).
	IncorporateSharedState() (bool, error)
	// Snapshot captures the actor's current solution for later rollback
	// (step 4, "current <- clone(self.solution)").
	Snapshot()
	// Restore reverts the actor's solution to the last Snapshot (step 8,
	// Worse branch). The rollback law (§8) requires this to leave the
	// solution bit-for-bit equal to the pre-iteration snapshot.
	Restore()
	// Unschedule removes a neighborhood from the actor's current solution
	// (step 5 / step 6's destroy half).
	Unschedule()
	// Schedule rebuilds under constraints (step 3's "if changed" branch,
	// and step 6's rebuild half).
	Schedule() error
	// Evaluate scores the rebuilt solution against the incumbent and
	// reports Better/Worse/Force together with the new objective value
	// when Better (step 7).
	Evaluate() (Outcome, float64)
	// Publish stores the actor's current solution into a fresh composite
	// on the shared fabric (step 3's publish, step 8's Better/Force
	// publish).
	Publish() error
	// SetObjective records the new incumbent objective after a Better
	// outcome (step 8, "solution.objective <- new_obj").
	SetObjective(value float64)
}

// RunIteration drives exactly one LNS iteration for a, following the
// skeleton in §4.4 verbatim. It never returns an error for a Worse outcome
// rollback; errors only propagate for genuine failures (IncorporateSharedState,
// Schedule, Publish), which the caller (the actor's run loop) treats as
// fatal per §4.3.
func RunIteration(a Algorithm, log *zap.SugaredLogger) error {
	a.LoadSharedSolution()

	changed, err := a.IncorporateSharedState()
	if err != nil {
		return fmt.Errorf("incorporate shared state: %w", err)
	}
	if changed {
		if err := a.Schedule(); err != nil {
			return fmt.Errorf("schedule after incorporating shared state: %w", err)
		}
		outcome, newObjective := a.Evaluate()
		if outcome == Better {
			a.SetObjective(newObjective)
		}
		if err := a.Publish(); err != nil {
			return fmt.Errorf("publish after incorporating shared state: %w", err)
		}
	}

	a.Snapshot()
	a.Unschedule()
	if err := a.Schedule(); err != nil {
		return fmt.Errorf("schedule: %w", err)
	}

	outcome, newObjective := a.Evaluate()
	switch outcome {
	case Better:
		a.SetObjective(newObjective)
		if err := a.Publish(); err != nil {
			return fmt.Errorf("publish: %w", err)
		}
	case Force:
		if err := a.Publish(); err != nil {
			return fmt.Errorf("publish (forced): %w", err)
		}
	case Worse:
		a.Restore()
	default:
		log.Warnw("unrecognized lns outcome, treating as worse", "outcome", int(outcome))
		a.Restore()
	}

	return nil
}
