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

func newRoutineFixture(t *testing.T) (*RoutineService, *repository.TaskRepository, *model.User) {
	t.Helper()
	db := testutil.NewTestDB(t)
	taskRepo := repository.NewTaskRepository(db)
	routineRepo := repository.NewRoutineRepository(db)
	return NewRoutineService(routineRepo, taskRepo), taskRepo, testutil.NewTestUser(t, db)
}

// nextWeekday returns the first date on or after today falling on the
// given weekday.
func nextWeekday(day time.Weekday) time.Time {
	d := dates.Today()
	for d.Weekday() != day {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

func TestMaterialize_Idempotent(t *testing.T) {
	is := is.New(t)
	svc, taskRepo, user := newRoutineFixture(t)
	ctx := context.Background()

	_, err := svc.CreateRoutine(ctx, user, RoutineInput{Title: "Stretch"})
	is.NoErr(err)

	today := dates.Today()

	created, err := svc.Materialize(ctx, user.ID, today)
	is.NoErr(err)
	is.Equal(created, 1)

	// calling again must not duplicate
	created, err = svc.Materialize(ctx, user.ID, today)
	is.NoErr(err)
	is.Equal(created, 0)

	tasks, err := taskRepo.ListByDate(ctx, user.ID, today)
	is.NoErr(err)
	is.Equal(len(tasks), 1)
}

func TestMaterialize_NeverBackfillsThePast(t *testing.T) {
	is := is.New(t)
	svc, taskRepo, user := newRoutineFixture(t)
	ctx := context.Background()

	_, err := svc.CreateRoutine(ctx, user, RoutineInput{Title: "Stretch"})
	is.NoErr(err)

	yesterday := dates.Today().AddDate(0, 0, -1)
	created, err := svc.Materialize(ctx, user.ID, yesterday)
	is.NoErr(err)
	is.Equal(created, 0)

	tasks, err := taskRepo.ListByDate(ctx, user.ID, yesterday)
	is.NoErr(err)
	is.Equal(len(tasks), 0)
}

func TestMaterialize_WeekdayFilter(t *testing.T) {
	is := is.New(t)
	svc, _, user := newRoutineFixture(t)
	ctx := context.Background()

	// Monday, Wednesday, Friday
	_, err := svc.CreateRoutine(ctx, user, RoutineInput{
		Title:      "Gym",
		DaysOfWeek: []int{1, 3, 5},
	})
	is.NoErr(err)

	created, err := svc.Materialize(ctx, user.ID, nextWeekday(time.Tuesday))
	is.NoErr(err)
	is.Equal(created, 0)

	created, err = svc.Materialize(ctx, user.ID, nextWeekday(time.Monday))
	is.NoErr(err)
	is.Equal(created, 1)
}

func TestMaterialize_EmptyWeekdaySetMeansEveryDay(t *testing.T) {
	is := is.New(t)
	svc, _, user := newRoutineFixture(t)
	ctx := context.Background()

	_, err := svc.CreateRoutine(ctx, user, RoutineInput{Title: "Journal"})
	is.NoErr(err)

	// the next seven days cover Sunday through Saturday
	for offset := 0; offset < 7; offset++ {
		date := dates.Today().AddDate(0, 0, offset)
		created, err := svc.Materialize(ctx, user.ID, date)
		is.NoErr(err)
		is.Equal(created, 1)
	}
}

func TestMaterialize_SkipsInactiveRoutines(t *testing.T) {
	is := is.New(t)
	svc, _, user := newRoutineFixture(t)
	ctx := context.Background()

	routine, err := svc.CreateRoutine(ctx, user, RoutineInput{Title: "Paused"})
	is.NoErr(err)
	is.NoErr(svc.ToggleActive(ctx, user, routine.ID, false))

	created, err := svc.Materialize(ctx, user.ID, dates.Today())
	is.NoErr(err)
	is.Equal(created, 0)
}

func TestMaterialize_CopiesRoutineFields(t *testing.T) {
	is := is.New(t)
	svc, taskRepo, user := newRoutineFixture(t)
	ctx := context.Background()

	routine, err := svc.CreateRoutine(ctx, user, RoutineInput{
		Title:    "Water the plants",
		Memo:     "the ficus first",
		Priority: model.PriorityHigh,
	})
	is.NoErr(err)

	today := dates.Today()
	_, err = svc.Materialize(ctx, user.ID, today)
	is.NoErr(err)

	tasks, err := taskRepo.ListByDate(ctx, user.ID, today)
	is.NoErr(err)
	is.Equal(len(tasks), 1)

	task := tasks[0]
	is.Equal(task.Title, "Water the plants")
	is.Equal(task.Memo, "the ficus first")
	is.Equal(task.Priority, model.PriorityHigh)
	is.Equal(task.IsCompleted, false)
	is.Equal(task.SortOrder, 0)
	is.True(task.RoutineID != nil)
	is.Equal(*task.RoutineID, routine.ID)
	is.True(task.TaskDate.Equal(today))
}

func TestDeleteRoutine_KeepsGeneratedTasks(t *testing.T) {
	is := is.New(t)
	svc, taskRepo, user := newRoutineFixture(t)
	ctx := context.Background()

	routine, err := svc.CreateRoutine(ctx, user, RoutineInput{Title: "Stretch"})
	is.NoErr(err)

	today := dates.Today()
	_, err = svc.Materialize(ctx, user.ID, today)
	is.NoErr(err)

	is.NoErr(svc.DeleteRoutine(ctx, user, routine.ID))

	tasks, err := taskRepo.ListByDate(ctx, user.ID, today)
	is.NoErr(err)
	is.Equal(len(tasks), 1)
}

func TestCreateRoutine_Validation(t *testing.T) {
	is := is.New(t)
	svc, _, user := newRoutineFixture(t)
	ctx := context.Background()

	_, err := svc.CreateRoutine(ctx, user, RoutineInput{Title: ""})
	is.True(err != nil)

	_, err = svc.CreateRoutine(ctx, user, RoutineInput{Title: "Bad day", DaysOfWeek: []int{7}})
	is.True(err != nil)

	_, err = svc.CreateRoutine(ctx, user, RoutineInput{Title: "Bad time", HasTime: true, Time: "25:99"})
	is.True(err != nil)

	routine, err := svc.CreateRoutine(ctx, user, RoutineInput{Title: "Run", HasTime: true, Time: "06:30"})
	is.NoErr(err)
	is.True(routine.Time != nil)
	is.Equal(*routine.Time, "06:30:00")
	is.Equal(routine.IsActive, true)
}
