package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"taskdesk/internal/model"
)

// TaskRepository handles CRUD for tasks.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, userID, taskID uint) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, taskID).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepository) Update(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Save(task).Error; err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, userID, taskID uint) error {
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, taskID).
		Delete(&model.Task{}).Error; err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// ListByDate returns the user's tasks on a single date, oldest first. The
// display order on top of that is the caller's concern.
func (r *TaskRepository) ListByDate(ctx context.Context, userID uint, date time.Time) ([]model.Task, error) {
	var tasks []model.Task
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND task_date = ?", userID, date).
		Order("created_at ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListByDateRange returns tasks with from <= task_date <= to, bucket-ready:
// date ascending, then manual sort_order within a date.
func (r *TaskRepository) ListByDateRange(ctx context.Context, userID uint, from, to time.Time) ([]model.Task, error) {
	var tasks []model.Task
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND task_date >= ? AND task_date <= ?", userID, from, to).
		Order("task_date ASC, sort_order ASC, created_at ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListGeneratedByDate returns the routine-generated tasks on a date, i.e.
// those carrying a routine reference.
func (r *TaskRepository) ListGeneratedByDate(ctx context.Context, userID uint, date time.Time) ([]model.Task, error) {
	var tasks []model.Task
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND task_date = ? AND routine_id IS NOT NULL", userID, date).
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// CarryOverIncomplete moves every incomplete task dated before today onto
// today. Manual tasks move in one bulk statement. Routine-generated tasks
// move one by one because today may already hold an instance of the same
// routine (pre-generated via a tomorrow view); an overdue duplicate is
// dropped rather than doubled. Runs in one transaction, so a mid-flight
// failure never leaves a partial migration. Returns the number of tasks
// moved.
func (r *TaskRepository) CarryOverIncomplete(ctx context.Context, userID uint, today time.Time) (int64, error) {
	var moved int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Task{}).
			Where("user_id = ? AND is_completed = ? AND task_date < ? AND routine_id IS NULL", userID, false, today).
			Updates(map[string]interface{}{
				"task_date":  today,
				"updated_at": time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		moved = res.RowsAffected

		var overdue []model.Task
		err := tx.
			Where("user_id = ? AND is_completed = ? AND task_date < ? AND routine_id IS NOT NULL", userID, false, today).
			Order("task_date ASC").
			Find(&overdue).Error
		if err != nil {
			return err
		}
		if len(overdue) == 0 {
			return nil
		}

		var existing []model.Task
		err = tx.
			Where("user_id = ? AND task_date = ? AND routine_id IS NOT NULL", userID, today).
			Find(&existing).Error
		if err != nil {
			return err
		}
		occupied := make(map[uint]bool, len(existing))
		for _, task := range existing {
			if task.RoutineID != nil {
				occupied[*task.RoutineID] = true
			}
		}

		for _, task := range overdue {
			if task.RoutineID != nil && occupied[*task.RoutineID] {
				if err := tx.Delete(&model.Task{}, task.ID).Error; err != nil {
					return err
				}
				continue
			}
			err := tx.Model(&model.Task{}).Where("id = ?", task.ID).
				Updates(map[string]interface{}{
					"task_date":  today,
					"updated_at": time.Now(),
				}).Error
			if err != nil {
				return err
			}
			if task.RoutineID != nil {
				occupied[*task.RoutineID] = true
			}
			moved++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("carry over tasks: %w", err)
	}
	return moved, nil
}

// Search matches the query as a substring of title or memo.
func (r *TaskRepository) Search(ctx context.Context, userID uint, query string) ([]model.Task, error) {
	var tasks []model.Task
	pattern := "%" + query + "%"
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND (title LIKE ? OR memo LIKE ?)", userID, pattern, pattern).
		Order("task_date DESC, created_at ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// SaveOrder persists a manual ordering: ids come in display sequence and
// receive sort_order 0..n-1. Applied in one transaction so a failure leaves
// the previous order intact.
func (r *TaskRepository) SaveOrder(ctx context.Context, userID uint, ids []uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for position, id := range ids {
			err := tx.Model(&model.Task{}).
				Where("user_id = ? AND id = ?", userID, id).
				Update("sort_order", position).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save task order: %w", err)
	}
	return nil
}
