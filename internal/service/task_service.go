package service

import (
	"context"
	"fmt"
	"time"

	"taskdesk/internal/dates"
	"taskdesk/internal/model"
	"taskdesk/internal/repository"
)

// TaskInput represents data required to create a task.
type TaskInput struct {
	Title      string
	Memo       string
	Priority   string
	CategoryID *uint
	TaskDate   time.Time
}

// TaskUpdate carries the editable fields of a task; nil means "leave as is".
type TaskUpdate struct {
	Title      *string
	Memo       *string
	Priority   *string
	CategoryID *uint
	TaskDate   *time.Time
}

// TaskService wraps task-related business logic.
type TaskService struct {
	taskRepo *repository.TaskRepository
}

func NewTaskService(taskRepo *repository.TaskRepository) *TaskService {
	return &TaskService{taskRepo: taskRepo}
}

func (s *TaskService) CreateTask(ctx context.Context, user *model.User, input TaskInput) (*model.Task, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("title is required")
	}

	priority := input.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}

	task := model.Task{
		UserID:     user.ID,
		CategoryID: input.CategoryID,
		Title:      input.Title,
		Memo:       input.Memo,
		Priority:   priority,
		TaskDate:   dates.DateOnly(input.TaskDate),
		SortOrder:  0,
	}

	if err := s.taskRepo.Create(ctx, &task); err != nil {
		return nil, err
	}

	return &task, nil
}

func (s *TaskService) GetTask(ctx context.Context, user *model.User, taskID uint) (*model.Task, error) {
	return s.taskRepo.FindByID(ctx, user.ID, taskID)
}

func (s *TaskService) UpdateTask(ctx context.Context, user *model.User, taskID uint, update TaskUpdate) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, user.ID, taskID)
	if err != nil {
		return nil, err
	}

	if update.Title != nil {
		if *update.Title == "" {
			return nil, fmt.Errorf("title is required")
		}
		task.Title = *update.Title
	}
	if update.Memo != nil {
		task.Memo = *update.Memo
	}
	if update.Priority != nil {
		task.Priority = *update.Priority
	}
	if update.CategoryID != nil {
		task.CategoryID = update.CategoryID
	}
	if update.TaskDate != nil {
		task.TaskDate = dates.DateOnly(*update.TaskDate)
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, user *model.User, taskID uint) error {
	return s.taskRepo.Delete(ctx, user.ID, taskID)
}

// ToggleComplete flips the completion flag and returns the updated task.
func (s *TaskService) ToggleComplete(ctx context.Context, user *model.User, taskID uint) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, user.ID, taskID)
	if err != nil {
		return nil, err
	}

	task.IsCompleted = !task.IsCompleted
	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// MoveToDate reschedules a task onto another date ("move to tomorrow").
// Manual position and any routine link travel with it.
func (s *TaskService) MoveToDate(ctx context.Context, user *model.User, taskID uint, date time.Time) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, user.ID, taskID)
	if err != nil {
		return nil, err
	}

	task.TaskDate = dates.DateOnly(date)
	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// ListDay returns a date's tasks in canonical day-view order.
func (s *TaskService) ListDay(ctx context.Context, user *model.User, date time.Time) ([]model.Task, error) {
	tasks, err := s.taskRepo.ListByDate(ctx, user.ID, dates.DateOnly(date))
	if err != nil {
		return nil, err
	}
	return OrderByPriority(tasks), nil
}

// WeekBuckets returns the week's tasks keyed by ISO date. Inside a bucket
// the manual order is authoritative, not the priority order.
func (s *TaskService) WeekBuckets(ctx context.Context, user *model.User, week []time.Time) (map[string][]model.Task, error) {
	if len(week) == 0 {
		return map[string][]model.Task{}, nil
	}

	from := dates.DateOnly(week[0])
	to := dates.DateOnly(week[len(week)-1])
	tasks, err := s.taskRepo.ListByDateRange(ctx, user.ID, from, to)
	if err != nil {
		return nil, err
	}

	buckets := make(map[string][]model.Task, len(week))
	for _, task := range tasks {
		key := dates.Format(task.TaskDate)
		buckets[key] = append(buckets[key], task)
	}
	for key, bucket := range buckets {
		buckets[key] = OrderManual(bucket)
	}
	return buckets, nil
}

// Reorder persists a drag-and-drop result: ids in their new display
// sequence become sort_order 0..n-1. Only the week/grid view reads these
// positions back; the day view keeps its priority-derived order.
func (s *TaskService) Reorder(ctx context.Context, user *model.User, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return s.taskRepo.SaveOrder(ctx, user.ID, ids)
}

// Search matches a substring against task titles and memos.
func (s *TaskService) Search(ctx context.Context, user *model.User, query string) ([]model.Task, error) {
	if query == "" {
		return nil, nil
	}
	return s.taskRepo.Search(ctx, user.ID, query)
}

// CarryOverIncomplete migrates every overdue incomplete task onto today.
// It runs as a background pass on "today" view loads; callers treat errors
// as non-fatal.
func (s *TaskService) CarryOverIncomplete(ctx context.Context, userID uint) (int64, error) {
	return s.taskRepo.CarryOverIncomplete(ctx, userID, dates.Today())
}
