package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"taskdesk/internal/model"
)

// UserRepository handles CRUD for users.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// UpsertFromTelegram finds or creates a user based on TelegramID and updates basic profile info.
func (r *UserRepository) UpsertFromTelegram(ctx context.Context, telegramID int64, firstName, lastName, username string) (*model.User, error) {
	var user model.User
	db := r.db.WithContext(ctx)
	err := db.Where("telegram_id = ?", telegramID).First(&user).Error
	switch {
	case err == nil:
		updates := map[string]interface{}{
			"first_name": firstName,
			"last_name":  lastName,
			"username":   username,
		}
		if err := db.Model(&user).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}
		return &user, nil
	case err == gorm.ErrRecordNotFound:
		user = model.User{
			TelegramID:          telegramID,
			FirstName:           firstName,
			LastName:            lastName,
			Username:            username,
			NotificationEnabled: true,
			NotificationTime:    "10:00",
		}
		if err := db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		return &user, nil
	default:
		return nil, fmt.Errorf("find user: %w", err)
	}
}

func (r *UserRepository) FindByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateNotificationSettings stores the per-user reminder preferences.
// timeOfDay is HH:MM; callers validate the format before persisting.
func (r *UserRepository) UpdateNotificationSettings(ctx context.Context, userID uint, enabled bool, timeOfDay string) error {
	err := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).
		Updates(map[string]interface{}{
			"notification_enabled": enabled,
			"notification_time":    timeOfDay,
		}).Error
	if err != nil {
		return fmt.Errorf("update notification settings: %w", err)
	}
	return nil
}

// ListNotifiable returns users whose reminder is enabled and scheduled at
// the given HH:MM clock value.
func (r *UserRepository) ListNotifiable(ctx context.Context, timeOfDay string) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Where("notification_enabled = ? AND notification_time = ?", true, timeOfDay).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) ListAll(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
