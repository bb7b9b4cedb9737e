package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"taskdesk/internal/model"
)

// WishItemRepository manages items inside wish lists.
type WishItemRepository struct {
	db *gorm.DB
}

func NewWishItemRepository(db *gorm.DB) *WishItemRepository {
	return &WishItemRepository{db: db}
}

func (r *WishItemRepository) Create(ctx context.Context, item *model.WishItem) error {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("create wish item: %w", err)
	}
	return nil
}

func (r *WishItemRepository) FindByID(ctx context.Context, userID, itemID uint) (*model.WishItem, error) {
	var item model.WishItem
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, itemID).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *WishItemRepository) ListByList(ctx context.Context, userID, listID uint) ([]model.WishItem, error) {
	var items []model.WishItem
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND wish_list_id = ?", userID, listID).
		Order("sort_order ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *WishItemRepository) Update(ctx context.Context, item *model.WishItem) error {
	if err := r.db.WithContext(ctx).Save(item).Error; err != nil {
		return fmt.Errorf("update wish item: %w", err)
	}
	return nil
}

func (r *WishItemRepository) Delete(ctx context.Context, userID, itemID uint) error {
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, itemID).
		Delete(&model.WishItem{}).Error; err != nil {
		return fmt.Errorf("delete wish item: %w", err)
	}
	return nil
}

// MaxSortOrder returns the highest sort_order inside a list, or -1.
func (r *WishItemRepository) MaxSortOrder(ctx context.Context, userID, listID uint) (int, error) {
	var max *int
	err := r.db.WithContext(ctx).Model(&model.WishItem{}).
		Where("user_id = ? AND wish_list_id = ?", userID, listID).
		Select("MAX(sort_order)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return -1, nil
	}
	return *max, nil
}
