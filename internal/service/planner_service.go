package service

import (
	"context"
	"log"
	"time"

	"taskdesk/internal/dates"
	"taskdesk/internal/model"
)

// PlannerService orchestrates a day-view load: carry-over, then routine
// materialization, then the ordered task list.
type PlannerService struct {
	taskSvc    *TaskService
	routineSvc *RoutineService
}

func NewPlannerService(taskSvc *TaskService, routineSvc *RoutineService) *PlannerService {
	return &PlannerService{taskSvc: taskSvc, routineSvc: routineSvc}
}

// OpenDay prepares and returns the task list for a date.
//
// For today it first sweeps overdue incomplete tasks onto today, so a
// carried routine task occupies its routine's slot before materialization
// runs and is not generated twice. Both background passes are best-effort:
// on failure the view still renders whatever tasks exist.
func (s *PlannerService) OpenDay(ctx context.Context, user *model.User, date time.Time) ([]model.Task, error) {
	date = dates.DateOnly(date)
	today := dates.Today()

	if date.Equal(today) {
		if moved, err := s.taskSvc.CarryOverIncomplete(ctx, user.ID); err != nil {
			log.Printf("carry over for user %d: %v", user.ID, err)
		} else if moved > 0 {
			log.Printf("[info] carried %d tasks onto %s for user %d", moved, dates.Format(today), user.ID)
		}
	}

	if !date.Before(today) {
		if created, err := s.routineSvc.Materialize(ctx, user.ID, date); err != nil {
			log.Printf("materialize routines for user %d: %v", user.ID, err)
		} else if created > 0 {
			log.Printf("[info] generated %d routine tasks for %s user %d", created, dates.Format(date), user.ID)
		}
	}

	return s.taskSvc.ListDay(ctx, user, date)
}

// OpenWeek returns the week containing base as per-date buckets in manual
// order. No generation or carry-over happens here; the week view only
// shows what already exists.
func (s *PlannerService) OpenWeek(ctx context.Context, user *model.User, base time.Time) ([]time.Time, map[string][]model.Task, error) {
	week := dates.WeekOf(base)
	buckets, err := s.taskSvc.WeekBuckets(ctx, user, week)
	if err != nil {
		return nil, nil, err
	}
	return week, buckets, nil
}
