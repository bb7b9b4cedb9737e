package service

import (
	"context"
	"testing"

	"github.com/matryer/is"

	"taskdesk/internal/dates"
	"taskdesk/internal/model"
	"taskdesk/internal/repository"
	"taskdesk/tests/testutil"
)

func newPlannerFixture(t *testing.T) (*PlannerService, *RoutineService, *repository.TaskRepository, *model.User) {
	t.Helper()
	db := testutil.NewTestDB(t)
	taskRepo := repository.NewTaskRepository(db)
	routineRepo := repository.NewRoutineRepository(db)
	taskSvc := NewTaskService(taskRepo)
	routineSvc := NewRoutineService(routineRepo, taskRepo)
	return NewPlannerService(taskSvc, routineSvc), routineSvc, taskRepo, testutil.NewTestUser(t, db)
}

func TestOpenDay_GeneratesRoutineTaskOnce(t *testing.T) {
	is := is.New(t)
	planner, routineSvc, _, user := newPlannerFixture(t)
	ctx := context.Background()

	routine, err := routineSvc.CreateRoutine(ctx, user, RoutineInput{Title: "Stretch"})
	is.NoErr(err)

	today := dates.Today()

	tasks, err := planner.OpenDay(ctx, user, today)
	is.NoErr(err)
	is.Equal(len(tasks), 1)
	is.True(tasks[0].RoutineID != nil)
	is.Equal(*tasks[0].RoutineID, routine.ID)
	is.Equal(tasks[0].IsCompleted, false)
	is.Equal(tasks[0].SortOrder, 0)
	is.True(tasks[0].TaskDate.Equal(today))

	// reloading the view must not generate a second instance
	tasks, err = planner.OpenDay(ctx, user, today)
	is.NoErr(err)
	is.Equal(len(tasks), 1)
}

func TestOpenDay_CarriesOverdueTaskOntoToday(t *testing.T) {
	is := is.New(t)
	planner, _, taskRepo, user := newPlannerFixture(t)
	ctx := context.Background()

	today := dates.Today()
	stale := model.Task{
		UserID:    user.ID,
		Title:     "Renew passport",
		Priority:  model.PriorityMedium,
		TaskDate:  today.AddDate(0, 0, -5),
		SortOrder: 2,
	}
	is.NoErr(taskRepo.Create(ctx, &stale))

	tasks, err := planner.OpenDay(ctx, user, today)
	is.NoErr(err)
	is.Equal(len(tasks), 1)
	is.True(tasks[0].TaskDate.Equal(today))
	is.Equal(tasks[0].IsCompleted, false)
	is.Equal(tasks[0].SortOrder, 2)
}

func TestOpenDay_CarriedRoutineTaskOccupiesTheSlot(t *testing.T) {
	is := is.New(t)
	planner, routineSvc, taskRepo, user := newPlannerFixture(t)
	ctx := context.Background()

	routine, err := routineSvc.CreateRoutine(ctx, user, RoutineInput{Title: "Stretch"})
	is.NoErr(err)

	// yesterday's generated instance was never finished
	today := dates.Today()
	routineID := routine.ID
	carried := model.Task{
		UserID:    user.ID,
		RoutineID: &routineID,
		Title:     "Stretch",
		Priority:  model.PriorityMedium,
		TaskDate:  today.AddDate(0, 0, -1),
	}
	is.NoErr(taskRepo.Create(ctx, &carried))

	// carry-over runs before materialization, so the moved task fills the
	// routine's slot for today and no duplicate is generated
	tasks, err := planner.OpenDay(ctx, user, today)
	is.NoErr(err)
	is.Equal(len(tasks), 1)
	is.Equal(tasks[0].ID, carried.ID)
	is.True(tasks[0].RoutineID != nil)
}

func TestOpenDay_DropsOverdueDuplicateOfTodaysRoutineTask(t *testing.T) {
	is := is.New(t)
	planner, routineSvc, taskRepo, user := newPlannerFixture(t)
	ctx := context.Background()

	routine, err := routineSvc.CreateRoutine(ctx, user, RoutineInput{Title: "Stretch"})
	is.NoErr(err)

	// today's instance was pre-generated via a tomorrow view, and
	// yesterday's instance is still open
	today := dates.Today()
	routineID := routine.ID
	pregenerated := model.Task{
		UserID:    user.ID,
		RoutineID: &routineID,
		Title:     "Stretch",
		Priority:  model.PriorityMedium,
		TaskDate:  today,
	}
	is.NoErr(taskRepo.Create(ctx, &pregenerated))
	overdue := model.Task{
		UserID:    user.ID,
		RoutineID: &routineID,
		Title:     "Stretch",
		Priority:  model.PriorityMedium,
		TaskDate:  today.AddDate(0, 0, -1),
	}
	is.NoErr(taskRepo.Create(ctx, &overdue))

	tasks, err := planner.OpenDay(ctx, user, today)
	is.NoErr(err)
	is.Equal(len(tasks), 1)
	is.Equal(tasks[0].ID, pregenerated.ID)
}

func TestOpenDay_PastDateIsReadOnly(t *testing.T) {
	is := is.New(t)
	planner, routineSvc, taskRepo, user := newPlannerFixture(t)
	ctx := context.Background()

	_, err := routineSvc.CreateRoutine(ctx, user, RoutineInput{Title: "Stretch"})
	is.NoErr(err)

	today := dates.Today()
	yesterday := today.AddDate(0, 0, -1)

	stale := model.Task{
		UserID:   user.ID,
		Title:    "Leftover",
		Priority: model.PriorityLow,
		TaskDate: yesterday.AddDate(0, 0, -1),
	}
	is.NoErr(taskRepo.Create(ctx, &stale))

	tasks, err := planner.OpenDay(ctx, user, yesterday)
	is.NoErr(err)
	// no generation and no carry-over happened for a past date
	is.Equal(len(tasks), 0)

	got, err := taskRepo.FindByID(ctx, user.ID, stale.ID)
	is.NoErr(err)
	is.True(got.TaskDate.Equal(yesterday.AddDate(0, 0, -1)))
}

func TestOpenDay_FutureDateMaterializesWithoutCarryOver(t *testing.T) {
	is := is.New(t)
	planner, routineSvc, taskRepo, user := newPlannerFixture(t)
	ctx := context.Background()

	_, err := routineSvc.CreateRoutine(ctx, user, RoutineInput{Title: "Stretch"})
	is.NoErr(err)

	today := dates.Today()
	stale := model.Task{
		UserID:   user.ID,
		Title:    "Overdue",
		Priority: model.PriorityLow,
		TaskDate: today.AddDate(0, 0, -1),
	}
	is.NoErr(taskRepo.Create(ctx, &stale))

	tomorrow := today.AddDate(0, 0, 1)
	tasks, err := planner.OpenDay(ctx, user, tomorrow)
	is.NoErr(err)
	is.Equal(len(tasks), 1) // the generated routine task only

	// the overdue task was not swept while viewing tomorrow
	got, err := taskRepo.FindByID(ctx, user.ID, stale.ID)
	is.NoErr(err)
	is.True(got.TaskDate.Equal(today.AddDate(0, 0, -1)))
}

func TestOpenWeek_BucketsByDate(t *testing.T) {
	is := is.New(t)
	planner, _, taskRepo, user := newPlannerFixture(t)
	ctx := context.Background()

	today := dates.Today()
	week := dates.WeekOf(today)

	first := model.Task{UserID: user.ID, Title: "first", Priority: model.PriorityLow, TaskDate: week[0]}
	is.NoErr(taskRepo.Create(ctx, &first))
	last := model.Task{UserID: user.ID, Title: "last", Priority: model.PriorityLow, TaskDate: week[6]}
	is.NoErr(taskRepo.Create(ctx, &last))

	gotWeek, buckets, err := planner.OpenWeek(ctx, user, today)
	is.NoErr(err)
	is.Equal(len(gotWeek), 7)
	is.Equal(len(buckets[dates.Format(week[0])]), 1)
	is.Equal(len(buckets[dates.Format(week[6])]), 1)
}
