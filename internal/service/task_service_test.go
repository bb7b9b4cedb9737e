package service

import (
	"context"
	"testing"
	"time"

	"github.com/matryer/is"

	"taskdesk/internal/dates"
	"taskdesk/internal/model"
	"taskdesk/internal/repository"
	"taskdesk/tests/testutil"
)

func newTaskFixture(t *testing.T) (*TaskService, *repository.TaskRepository, *model.User) {
	t.Helper()
	db := testutil.NewTestDB(t)
	taskRepo := repository.NewTaskRepository(db)
	return NewTaskService(taskRepo), taskRepo, testutil.NewTestUser(t, db)
}

func TestCreateTask(t *testing.T) {
	svc, _, user := newTaskFixture(t)
	ctx := context.Background()

	t.Run("requires a title", func(t *testing.T) {
		is := is.New(t)
		_, err := svc.CreateTask(ctx, user, TaskInput{TaskDate: dates.Today()})
		is.True(err != nil)
	})

	t.Run("defaults and date normalization", func(t *testing.T) {
		is := is.New(t)
		noon := time.Date(2030, 5, 20, 12, 34, 56, 0, time.UTC)
		task, err := svc.CreateTask(ctx, user, TaskInput{Title: "Buy milk", TaskDate: noon})
		is.NoErr(err)
		is.Equal(task.Priority, model.PriorityMedium)
		is.Equal(task.SortOrder, 0)
		is.Equal(task.IsCompleted, false)
		is.True(task.TaskDate.Equal(time.Date(2030, 5, 20, 0, 0, 0, 0, time.UTC)))
	})
}

func TestToggleComplete(t *testing.T) {
	is := is.New(t)
	svc, _, user := newTaskFixture(t)
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, user, TaskInput{Title: "Buy milk", TaskDate: dates.Today()})
	is.NoErr(err)

	toggled, err := svc.ToggleComplete(ctx, user, task.ID)
	is.NoErr(err)
	is.Equal(toggled.IsCompleted, true)

	toggled, err = svc.ToggleComplete(ctx, user, task.ID)
	is.NoErr(err)
	is.Equal(toggled.IsCompleted, false)
}

func TestMoveToDate(t *testing.T) {
	is := is.New(t)
	svc, _, user := newTaskFixture(t)
	ctx := context.Background()

	today := dates.Today()
	task, err := svc.CreateTask(ctx, user, TaskInput{Title: "Call mom", TaskDate: today})
	is.NoErr(err)

	tomorrow := today.AddDate(0, 0, 1)
	moved, err := svc.MoveToDate(ctx, user, task.ID, tomorrow)
	is.NoErr(err)
	is.True(moved.TaskDate.Equal(tomorrow))

	day, err := svc.ListDay(ctx, user, today)
	is.NoErr(err)
	is.Equal(len(day), 0)
}

func TestCarryOverIncomplete(t *testing.T) {
	is := is.New(t)
	svc, taskRepo, user := newTaskFixture(t)
	ctx := context.Background()

	today := dates.Today()

	overdue := model.Task{
		UserID:    user.ID,
		Title:     "Old chore",
		Priority:  model.PriorityMedium,
		TaskDate:  today.AddDate(0, 0, -3),
		SortOrder: 4,
	}
	is.NoErr(taskRepo.Create(ctx, &overdue))

	finished := model.Task{
		UserID:      user.ID,
		Title:       "Finished chore",
		Priority:    model.PriorityMedium,
		IsCompleted: true,
		TaskDate:    today.AddDate(0, 0, -2),
	}
	is.NoErr(taskRepo.Create(ctx, &finished))

	moved, err := svc.CarryOverIncomplete(ctx, user.ID)
	is.NoErr(err)
	is.Equal(moved, int64(1))

	got, err := taskRepo.FindByID(ctx, user.ID, overdue.ID)
	is.NoErr(err)
	is.True(got.TaskDate.Equal(today))
	is.Equal(got.IsCompleted, false)
	is.Equal(got.SortOrder, 4) // manual position travels with the task

	// the completed task is left in the past
	got, err = taskRepo.FindByID(ctx, user.ID, finished.ID)
	is.NoErr(err)
	is.True(got.TaskDate.Equal(today.AddDate(0, 0, -2)))
}

func TestCarryOverIncomplete_NothingToMove(t *testing.T) {
	is := is.New(t)
	svc, _, user := newTaskFixture(t)

	moved, err := svc.CarryOverIncomplete(context.Background(), user.ID)
	is.NoErr(err)
	is.Equal(moved, int64(0))
}

func TestReorderAndWeekBuckets(t *testing.T) {
	is := is.New(t)
	svc, _, user := newTaskFixture(t)
	ctx := context.Background()

	day := dates.Today()
	a, err := svc.CreateTask(ctx, user, TaskInput{Title: "a", Priority: model.PriorityLow, TaskDate: day})
	is.NoErr(err)
	b, err := svc.CreateTask(ctx, user, TaskInput{Title: "b", Priority: model.PriorityHigh, TaskDate: day})
	is.NoErr(err)
	c, err := svc.CreateTask(ctx, user, TaskInput{Title: "c", Priority: model.PriorityMedium, TaskDate: day})
	is.NoErr(err)

	// drag order: c, a, b
	is.NoErr(svc.Reorder(ctx, user, []uint{c.ID, a.ID, b.ID}))

	week := dates.WeekOf(day)
	buckets, err := svc.WeekBuckets(ctx, user, week)
	is.NoErr(err)

	bucket := buckets[dates.Format(day)]
	is.Equal(titles(bucket), []string{"c", "a", "b"}) // manual order rules the grid

	// the day view ignores manual order and keeps the priority contract
	ordered, err := svc.ListDay(ctx, user, day)
	is.NoErr(err)
	is.Equal(titles(ordered), []string{"b", "c", "a"})
}

func TestSearch(t *testing.T) {
	is := is.New(t)
	svc, _, user := newTaskFixture(t)
	ctx := context.Background()

	_, err := svc.CreateTask(ctx, user, TaskInput{Title: "Buy groceries", TaskDate: dates.Today()})
	is.NoErr(err)
	_, err = svc.CreateTask(ctx, user, TaskInput{Title: "Email Alex", Memo: "about groceries budget", TaskDate: dates.Today()})
	is.NoErr(err)
	_, err = svc.CreateTask(ctx, user, TaskInput{Title: "Walk", TaskDate: dates.Today()})
	is.NoErr(err)

	found, err := svc.Search(ctx, user, "groceries")
	is.NoErr(err)
	is.Equal(len(found), 2)

	found, err = svc.Search(ctx, user, "")
	is.NoErr(err)
	is.Equal(len(found), 0)
}

func TestUpdateTask(t *testing.T) {
	is := is.New(t)
	svc, _, user := newTaskFixture(t)
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, user, TaskInput{Title: "Draft", TaskDate: dates.Today()})
	is.NoErr(err)

	newTitle := "Final"
	newPriority := model.PriorityHigh
	updated, err := svc.UpdateTask(ctx, user, task.ID, TaskUpdate{Title: &newTitle, Priority: &newPriority})
	is.NoErr(err)
	is.Equal(updated.Title, "Final")
	is.Equal(updated.Priority, model.PriorityHigh)

	empty := ""
	_, err = svc.UpdateTask(ctx, user, task.ID, TaskUpdate{Title: &empty})
	is.True(err != nil)
}
