package service

import (
	"testing"
	"time"

	"github.com/matryer/is"

	"taskdesk/internal/model"
)

func taskAt(title, priority string, completed bool, createdOffset time.Duration) model.Task {
	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	return model.Task{
		Title:       title,
		Priority:    priority,
		IsCompleted: completed,
		CreatedAt:   base.Add(createdOffset),
	}
}

func titles(tasks []model.Task) []string {
	out := make([]string, len(tasks))
	for i, task := range tasks {
		out[i] = task.Title
	}
	return out
}

func TestOrderByPriority(t *testing.T) {
	t.Run("incomplete before completed regardless of priority", func(t *testing.T) {
		is := is.New(t)
		tasks := []model.Task{
			taskAt("done-high", model.PriorityHigh, true, 0),
			taskAt("open-low", model.PriorityLow, false, time.Minute),
		}
		is.Equal(titles(OrderByPriority(tasks)), []string{"open-low", "done-high"})
	})

	t.Run("priority ranks high medium low", func(t *testing.T) {
		is := is.New(t)
		tasks := []model.Task{
			taskAt("low", model.PriorityLow, false, 0),
			taskAt("high", model.PriorityHigh, false, time.Minute),
			taskAt("medium", model.PriorityMedium, false, 2*time.Minute),
		}
		is.Equal(titles(OrderByPriority(tasks)), []string{"high", "medium", "low"})
	})

	t.Run("unknown priority sinks below known ones", func(t *testing.T) {
		is := is.New(t)
		tasks := []model.Task{
			taskAt("weird", "urgent!!", false, 0),
			taskAt("low", model.PriorityLow, false, time.Minute),
		}
		is.Equal(titles(OrderByPriority(tasks)), []string{"low", "weird"})
	})

	t.Run("creation time breaks ties oldest first", func(t *testing.T) {
		is := is.New(t)
		tasks := []model.Task{
			taskAt("second", model.PriorityMedium, false, time.Hour),
			taskAt("first", model.PriorityMedium, false, 0),
			taskAt("third", model.PriorityMedium, false, 2*time.Hour),
		}
		is.Equal(titles(OrderByPriority(tasks)), []string{"first", "second", "third"})
	})

	t.Run("all equal priority falls back to creation order", func(t *testing.T) {
		is := is.New(t)
		tasks := []model.Task{
			taskAt("b", model.PriorityLow, false, 2*time.Minute),
			taskAt("a", model.PriorityLow, false, time.Minute),
			taskAt("c", model.PriorityLow, false, 3*time.Minute),
		}
		is.Equal(titles(OrderByPriority(tasks)), []string{"a", "b", "c"})
	})

	t.Run("idempotent", func(t *testing.T) {
		is := is.New(t)
		tasks := []model.Task{
			taskAt("done", model.PriorityHigh, true, 0),
			taskAt("open-med", model.PriorityMedium, false, time.Minute),
			taskAt("open-high", model.PriorityHigh, false, 2*time.Minute),
			taskAt("mystery", "", false, 3*time.Minute),
		}
		once := OrderByPriority(tasks)
		twice := OrderByPriority(once)
		is.Equal(titles(twice), titles(once))
	})

	t.Run("empty input", func(t *testing.T) {
		is := is.New(t)
		is.Equal(len(OrderByPriority(nil)), 0)
	})

	t.Run("does not mutate its input", func(t *testing.T) {
		is := is.New(t)
		tasks := []model.Task{
			taskAt("z", model.PriorityLow, false, 0),
			taskAt("a", model.PriorityHigh, false, time.Minute),
		}
		_ = OrderByPriority(tasks)
		is.Equal(tasks[0].Title, "z")
	})
}

func TestOrderManual(t *testing.T) {
	is := is.New(t)

	tasks := []model.Task{
		{Title: "third", SortOrder: 2, Priority: model.PriorityHigh},
		{Title: "first", SortOrder: 0, Priority: model.PriorityLow},
		{Title: "second", SortOrder: 1, Priority: model.PriorityMedium},
	}

	// manual positions win; priority is ignored here
	is.Equal(titles(OrderManual(tasks)), []string{"first", "second", "third"})
}
