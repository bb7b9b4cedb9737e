package service

import (
	"sort"

	"taskdesk/internal/model"
)

// priorityRank orders the known priorities for display. Values outside the
// set sink below low rather than erroring.
var priorityRank = map[string]int{
	model.PriorityHigh:   1,
	model.PriorityMedium: 2,
	model.PriorityLow:    3,
}

const unknownPriorityRank = 999

// OrderByPriority is the canonical day-view order: incomplete tasks before
// completed ones, then priority (high, medium, low), then creation time
// oldest first. Pure and stable, so applying it to its own output changes
// nothing.
func OrderByPriority(tasks []model.Task) []model.Task {
	ordered := make([]model.Task, len(tasks))
	copy(ordered, tasks)

	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]

		if a.IsCompleted != b.IsCompleted {
			return !a.IsCompleted
		}

		rankA, ok := priorityRank[a.Priority]
		if !ok {
			rankA = unknownPriorityRank
		}
		rankB, ok := priorityRank[b.Priority]
		if !ok {
			rankB = unknownPriorityRank
		}
		if rankA != rankB {
			return rankA < rankB
		}

		return a.CreatedAt.Before(b.CreatedAt)
	})

	return ordered
}

// OrderManual is the week/grid order: the user's drag positions win inside a
// date bucket. Priority plays no part here; the two strategies are never
// combined.
func OrderManual(tasks []model.Task) []model.Task {
	ordered := make([]model.Task, len(tasks))
	copy(ordered, tasks)

	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].SortOrder < ordered[j].SortOrder
	})

	return ordered
}
