package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"taskdesk/internal/model"
)

// RoutineRepository handles CRUD for recurring-task templates.
type RoutineRepository struct {
	db *gorm.DB
}

func NewRoutineRepository(db *gorm.DB) *RoutineRepository {
	return &RoutineRepository{db: db}
}

func (r *RoutineRepository) Create(ctx context.Context, routine *model.Routine) error {
	if err := r.db.WithContext(ctx).Create(routine).Error; err != nil {
		return fmt.Errorf("create routine: %w", err)
	}
	return nil
}

func (r *RoutineRepository) FindByID(ctx context.Context, userID, routineID uint) (*model.Routine, error) {
	var routine model.Routine
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, routineID).First(&routine).Error; err != nil {
		return nil, err
	}
	return &routine, nil
}

func (r *RoutineRepository) Update(ctx context.Context, routine *model.Routine) error {
	if err := r.db.WithContext(ctx).Save(routine).Error; err != nil {
		return fmt.Errorf("update routine: %w", err)
	}
	return nil
}

// Delete removes the template only. Tasks generated from it keep their
// routine reference and stay where they are.
func (r *RoutineRepository) Delete(ctx context.Context, userID, routineID uint) error {
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, routineID).
		Delete(&model.Routine{}).Error; err != nil {
		return fmt.Errorf("delete routine: %w", err)
	}
	return nil
}

func (r *RoutineRepository) ListByUser(ctx context.Context, userID uint) ([]model.Routine, error) {
	var routines []model.Routine
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&routines).Error
	if err != nil {
		return nil, err
	}
	return routines, nil
}

func (r *RoutineRepository) ListActive(ctx context.Context, userID uint) ([]model.Routine, error) {
	var routines []model.Routine
	err := r.db.WithContext(ctx).Where("user_id = ? AND is_active = ?", userID, true).
		Find(&routines).Error
	if err != nil {
		return nil, err
	}
	return routines, nil
}

func (r *RoutineRepository) SetActive(ctx context.Context, userID, routineID uint, active bool) error {
	res := r.db.WithContext(ctx).Model(&model.Routine{}).
		Where("user_id = ? AND id = ?", userID, routineID).
		Update("is_active", active)
	if res.Error != nil {
		return fmt.Errorf("toggle routine: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
