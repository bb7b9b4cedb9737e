package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"taskdesk/internal/dates"
	"taskdesk/internal/model"
	"taskdesk/internal/repository"
)

// RoutineInput represents data required to create or edit a routine.
type RoutineInput struct {
	Title      string
	Memo       string
	Priority   string
	CategoryID *uint
	HasTime    bool
	Time       string // HH:MM, used only when HasTime
	DaysOfWeek []int  // 0=Sunday .. 6=Saturday; empty means every day
}

// RoutineService owns recurring-task templates and their materialization
// into dated tasks.
type RoutineService struct {
	routineRepo *repository.RoutineRepository
	taskRepo    *repository.TaskRepository
}

func NewRoutineService(routineRepo *repository.RoutineRepository, taskRepo *repository.TaskRepository) *RoutineService {
	return &RoutineService{routineRepo: routineRepo, taskRepo: taskRepo}
}

func validateRoutineInput(input RoutineInput) error {
	if input.Title == "" {
		return fmt.Errorf("title is required")
	}
	for _, day := range input.DaysOfWeek {
		if day < 0 || day > 6 {
			return fmt.Errorf("weekday %d out of range", day)
		}
	}
	if input.HasTime {
		if _, err := time.Parse("15:04", input.Time); err != nil {
			return fmt.Errorf("time must be HH:MM")
		}
	}
	return nil
}

func (s *RoutineService) CreateRoutine(ctx context.Context, user *model.User, input RoutineInput) (*model.Routine, error) {
	if err := validateRoutineInput(input); err != nil {
		return nil, err
	}

	priority := input.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}

	routine := model.Routine{
		UserID:     user.ID,
		CategoryID: input.CategoryID,
		Title:      input.Title,
		Memo:       input.Memo,
		Priority:   priority,
		HasTime:    input.HasTime,
		DaysOfWeek: input.DaysOfWeek,
		IsActive:   true,
	}
	if input.HasTime {
		clock := input.Time + ":00"
		routine.Time = &clock
	}

	if err := s.routineRepo.Create(ctx, &routine); err != nil {
		return nil, err
	}
	return &routine, nil
}

func (s *RoutineService) UpdateRoutine(ctx context.Context, user *model.User, routineID uint, input RoutineInput) (*model.Routine, error) {
	if err := validateRoutineInput(input); err != nil {
		return nil, err
	}

	routine, err := s.routineRepo.FindByID(ctx, user.ID, routineID)
	if err != nil {
		return nil, err
	}

	routine.Title = input.Title
	routine.Memo = input.Memo
	if input.Priority != "" {
		routine.Priority = input.Priority
	}
	routine.CategoryID = input.CategoryID
	routine.HasTime = input.HasTime
	routine.DaysOfWeek = input.DaysOfWeek
	if input.HasTime {
		clock := input.Time + ":00"
		routine.Time = &clock
	} else {
		routine.Time = nil
	}

	if err := s.routineRepo.Update(ctx, routine); err != nil {
		return nil, err
	}
	return routine, nil
}

// ToggleActive pauses or resumes generation. Tasks already generated are
// unaffected either way.
func (s *RoutineService) ToggleActive(ctx context.Context, user *model.User, routineID uint, active bool) error {
	return s.routineRepo.SetActive(ctx, user.ID, routineID, active)
}

// DeleteRoutine removes the template without cascading to generated tasks.
func (s *RoutineService) DeleteRoutine(ctx context.Context, user *model.User, routineID uint) error {
	return s.routineRepo.Delete(ctx, user.ID, routineID)
}

func (s *RoutineService) List(ctx context.Context, user *model.User) ([]model.Routine, error) {
	return s.routineRepo.ListByUser(ctx, user.ID)
}

func (s *RoutineService) GetRoutine(ctx context.Context, user *model.User, routineID uint) (*model.Routine, error) {
	return s.routineRepo.FindByID(ctx, user.ID, routineID)
}

// Materialize ensures every applicable active routine has exactly one
// generated task on targetDate, and returns how many were created.
//
// The membership check makes repeated calls for the same date a no-op; the
// unique index on (routine_id, task_date) closes the remaining race between
// two concurrent loads, with a duplicate-key insert counted as "already
// generated". Past dates are never backfilled.
func (s *RoutineService) Materialize(ctx context.Context, userID uint, targetDate time.Time) (int, error) {
	targetDate = dates.DateOnly(targetDate)
	if targetDate.Before(dates.Today()) {
		return 0, nil
	}

	routines, err := s.routineRepo.ListActive(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("list active routines: %w", err)
	}
	if len(routines) == 0 {
		return 0, nil
	}

	generated, err := s.taskRepo.ListGeneratedByDate(ctx, userID, targetDate)
	if err != nil {
		return 0, fmt.Errorf("list generated tasks: %w", err)
	}
	existing := make(map[uint]struct{}, len(generated))
	for _, task := range generated {
		if task.RoutineID != nil {
			existing[*task.RoutineID] = struct{}{}
		}
	}

	created := 0
	for _, routine := range routines {
		if _, ok := existing[routine.ID]; ok {
			continue
		}
		if !routine.AppliesOn(targetDate) {
			continue
		}

		routineID := routine.ID
		task := model.Task{
			UserID:      userID,
			CategoryID:  routine.CategoryID,
			RoutineID:   &routineID,
			Title:       routine.Title,
			Memo:        routine.Memo,
			Priority:    routine.Priority,
			IsCompleted: false,
			TaskDate:    targetDate,
			SortOrder:   0,
		}
		if err := s.taskRepo.Create(ctx, &task); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				log.Printf("[info] routine %d already materialized for %s", routine.ID, dates.Format(targetDate))
				continue
			}
			return created, fmt.Errorf("materialize routine %d: %w", routine.ID, err)
		}
		created++
	}

	return created, nil
}
