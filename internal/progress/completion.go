// Package progress derives completion state and colors from task data.
package progress

import (
	"time"

	"turbine-topology/internal/farm"
)

// CompletionMap holds one entry per project-wide distinct task name.
type CompletionMap map[string]bool

// HubSegmentCount is the fixed number of ring segments on the hub node.
const HubSegmentCount = 3

// DistinctNames returns task names in first-seen order. Empty names are skipped.
func DistinctNames(tasks []farm.Task) []string {
	seen := make(map[string]struct{}, len(tasks))
	var names []string
	for _, t := range tasks {
		if t.Name == "" {
			continue
		}
		if _, ok := seen[t.Name]; ok {
			continue
		}
		seen[t.Name] = struct{}{}
		names = append(names, t.Name)
	}
	return names
}

// TasksForTurbine returns the tasks that reference the given turbine.
func TasksForTurbine(tasks []farm.Task, turbineID string) []farm.Task {
	var out []farm.Task
	for _, t := range tasks {
		if t.LinkedTo(turbineID) {
			out = append(out, t)
		}
	}
	return out
}

// TaskComplete reports whether a task counts as done at the reference
// instant: status completed and end date not after the reference. A missing
// or malformed end date never counts.
func TaskComplete(t farm.Task, reference time.Time) bool {
	if !t.Completed() {
		return false
	}
	end, ok := t.End()
	if !ok {
		return false
	}
	return !end.After(reference)
}

// Completion computes the segment map for one turbine. Every name starts
// false; a name becomes true when any of the turbine's tasks with that name
// is complete at the reference instant. Task order does not matter.
func Completion(turbineTasks []farm.Task, names []string, current time.Time, rng *farm.DateRange) CompletionMap {
	ref := farm.Reference(current, rng)
	result := make(CompletionMap, len(names))
	for _, n := range names {
		result[n] = false
	}
	for _, t := range turbineTasks {
		if _, ok := result[t.Name]; !ok {
			continue
		}
		if TaskComplete(t, ref) {
			result[t.Name] = true
		}
	}
	return result
}

// CompletedCount returns how many names are marked complete.
func (m CompletionMap) CompletedCount() int {
	n := 0
	for _, done := range m {
		if done {
			n++
		}
	}
	return n
}

// TypeCompleted reports whether the turbine has a task of the given type
// that is complete at the reference instant. Used for cable lines, keyed on
// task type rather than name.
func TypeCompleted(turbineTasks []farm.Task, taskType string, reference time.Time) bool {
	for _, t := range turbineTasks {
		if t.Type == taskType && TaskComplete(t, reference) {
			return true
		}
	}
	return false
}

// HubSegments counts distinct names among completed tasks of the hub task
// type, clamped to HubSegmentCount.
func HubSegments(tasks []farm.Task, hubType string, reference time.Time) int {
	done := make(map[string]struct{})
	for _, t := range tasks {
		if t.Type != hubType || !TaskComplete(t, reference) {
			continue
		}
		key := t.Name
		if key == "" {
			key = t.ID
		}
		done[key] = struct{}{}
	}
	if len(done) > HubSegmentCount {
		return HubSegmentCount
	}
	return len(done)
}
