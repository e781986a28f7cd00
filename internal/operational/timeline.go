package operational

import (
	"time"

	"github.com/ordinator/ordinator/internal/entity"
	"github.com/ordinator/ordinator/internal/solution"
)

// buildSkeleton lays out the technician's fixed, non-movable background
// (OffShift, Break, Toolbox) across the availability window and fills every
// remaining span with NonProductive, giving schedule() a timeline whose
// gaps it can carve wrench-time blocks out of (§4.8).
func buildSkeleton(tech entity.Technician) []solution.Assignment {
	window := tech.Availability
	if !window.Start.Before(window.End) {
		return nil
	}

	var fixed []solution.Assignment
	day := time.Date(window.Start.Year(), window.Start.Month(), window.Start.Day(), 0, 0, 0, 0, window.Start.Location())
	day = day.AddDate(0, 0, -1) // catch a wrapping interval anchored the day before
	for !day.After(window.End) {
		fixed = append(fixed, clippedOccurrence(tech.OffShift, entity.EventOffShift, day, window)...)
		fixed = append(fixed, clippedOccurrence(tech.Break, entity.EventBreak, day, window)...)
		fixed = append(fixed, clippedOccurrence(tech.Toolbox, entity.EventToolbox, day, window)...)
		day = day.AddDate(0, 0, 1)
	}
	sortAssignments(fixed)
	fixed = mergeOverlaps(fixed)

	return fillGaps(fixed, window.Start, window.End)
}

func clippedOccurrence(interval entity.TimeOfDayInterval, kind entity.EventType, day time.Time, window entity.AvailabilityWindow) []solution.Assignment {
	if interval.Start == 0 && interval.End == 0 {
		return nil
	}
	start, finish := interval.OnDate(day)
	if start.Before(window.Start) {
		start = window.Start
	}
	if finish.After(window.End) {
		finish = window.End
	}
	if !start.Before(finish) {
		return nil
	}
	return []solution.Assignment{{EventType: kind, Start: start, Finish: finish}}
}

func sortAssignments(a []solution.Assignment) {
	for i := 1; i < len(a); i++ {
		for j := i; j > 0 && a[j].Start.Before(a[j-1].Start); j-- {
			a[j], a[j-1] = a[j-1], a[j]
		}
	}
}

// mergeOverlaps merges touching/overlapping fixed intervals so the gap-fill
// pass never produces a negative-length span; the earlier event's kind wins
// at the point of overlap.
func mergeOverlaps(a []solution.Assignment) []solution.Assignment {
	if len(a) == 0 {
		return nil
	}
	out := []solution.Assignment{a[0]}
	for _, next := range a[1:] {
		last := &out[len(out)-1]
		if !next.Start.After(last.Finish) {
			if next.Finish.After(last.Finish) {
				last.Finish = next.Finish
			}
			continue
		}
		out = append(out, next)
	}
	return out
}

func fillGaps(fixed []solution.Assignment, start, end time.Time) []solution.Assignment {
	var out []solution.Assignment
	cursor := start
	for _, f := range fixed {
		if f.Start.After(cursor) {
			out = append(out, solution.Assignment{EventType: entity.EventNonProductive, Start: cursor, Finish: f.Start})
		}
		out = append(out, f)
		if f.Finish.After(cursor) {
			cursor = f.Finish
		}
	}
	if cursor.Before(end) {
		out = append(out, solution.Assignment{EventType: entity.EventNonProductive, Start: cursor, Finish: end})
	}
	return out
}

// findGapAt returns the index of the first NonProductive assignment in a
// sorted timeline whose span reaches at or past cursor.
func findGapAt(timeline []solution.Assignment, cursor time.Time) int {
	for i, a := range timeline {
		if a.EventType == entity.EventNonProductive && a.Finish.After(cursor) {
			return i
		}
	}
	return -1
}

// carveWrenchTime splits timeline[idx] (a NonProductive gap) into up to
// three pieces: leftover NonProductive before start, the WrenchTime block
// itself, and leftover NonProductive after finish. Returns the updated
// timeline.
func carveWrenchTime(timeline []solution.Assignment, idx int, start, finish time.Time, activity entity.WorkOrderActivity) []solution.Assignment {
	return carveBlock(timeline, idx, start, finish, entity.EventWrenchTime, activity)
}

// carvePreparation is carveWrenchTime's counterpart for an activity's
// preparation segment (§4.8): same splice, tagged EventPreparation so it
// stays out of WrenchTimeTotal.
func carvePreparation(timeline []solution.Assignment, idx int, start, finish time.Time, activity entity.WorkOrderActivity) []solution.Assignment {
	return carveBlock(timeline, idx, start, finish, entity.EventPreparation, activity)
}

func carveBlock(timeline []solution.Assignment, idx int, start, finish time.Time, kind entity.EventType, activity entity.WorkOrderActivity) []solution.Assignment {
	gap := timeline[idx]
	var parts []solution.Assignment
	if start.After(gap.Start) {
		parts = append(parts, solution.Assignment{EventType: entity.EventNonProductive, Start: gap.Start, Finish: start})
	}
	parts = append(parts, solution.Assignment{EventType: kind, Start: start, Finish: finish, Activity: &activity})
	if finish.Before(gap.Finish) {
		parts = append(parts, solution.Assignment{EventType: entity.EventNonProductive, Start: finish, Finish: gap.Finish})
	}

	out := make([]solution.Assignment, 0, len(timeline)+len(parts)-1)
	out = append(out, timeline[:idx]...)
	out = append(out, parts...)
	out = append(out, timeline[idx+1:]...)
	return out
}

// assignMarginalFitness sets each WrenchTime assignment's MarginalFitness to
// the non-productive seconds between it and its nearest wrench-time
// neighbors on either side, treating a missing neighbor (timeline edge) as
// contributing zero (§9 open question, resolved).
func assignMarginalFitness(timeline []solution.Assignment) {
	var wrenchIdx []int
	for i, a := range timeline {
		if a.EventType == entity.EventWrenchTime {
			wrenchIdx = append(wrenchIdx, i)
		}
	}
	for k, i := range wrenchIdx {
		seconds := int64(0)
		if k > 0 {
			prev := timeline[wrenchIdx[k-1]]
			seconds += int64(timeline[i].Start.Sub(prev.Finish).Seconds())
		}
		if k < len(wrenchIdx)-1 {
			next := timeline[wrenchIdx[k+1]]
			seconds += int64(next.Start.Sub(timeline[i].Finish).Seconds())
		}
		if seconds < 0 {
			seconds = 0
		}
		timeline[i].MarginalFitness = entity.Scheduled(seconds)
	}
}

// totalNonProductive sums the duration of every NonProductive assignment, in
// seconds, used by the objective (§4.8 "minimize total non-productive
// seconds").
func totalNonProductive(timeline []solution.Assignment) float64 {
	total := 0.0
	for _, a := range timeline {
		if a.EventType == entity.EventNonProductive {
			total += a.Finish.Sub(a.Start).Seconds()
		}
	}
	return total
}
