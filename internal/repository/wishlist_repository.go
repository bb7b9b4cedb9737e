package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"taskdesk/internal/model"
)

// WishListRepository manages the user's wish lists.
type WishListRepository struct {
	db *gorm.DB
}

func NewWishListRepository(db *gorm.DB) *WishListRepository {
	return &WishListRepository{db: db}
}

func (r *WishListRepository) Create(ctx context.Context, list *model.WishList) error {
	if err := r.db.WithContext(ctx).Create(list).Error; err != nil {
		return fmt.Errorf("create wish list: %w", err)
	}
	return nil
}

func (r *WishListRepository) FindByID(ctx context.Context, userID, listID uint) (*model.WishList, error) {
	var list model.WishList
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, listID).First(&list).Error; err != nil {
		return nil, err
	}
	return &list, nil
}

func (r *WishListRepository) ListByUser(ctx context.Context, userID uint) ([]model.WishList, error) {
	var lists []model.WishList
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("sort_order ASC").
		Find(&lists).Error
	if err != nil {
		return nil, err
	}
	return lists, nil
}

func (r *WishListRepository) Update(ctx context.Context, list *model.WishList) error {
	if err := r.db.WithContext(ctx).Save(list).Error; err != nil {
		return fmt.Errorf("update wish list: %w", err)
	}
	return nil
}

// Delete removes a list together with its items.
func (r *WishListRepository) Delete(ctx context.Context, userID, listID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND wish_list_id = ?", userID, listID).
			Delete(&model.WishItem{}).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ? AND id = ?", userID, listID).
			Delete(&model.WishList{}).Error
	})
	if err != nil {
		return fmt.Errorf("delete wish list: %w", err)
	}
	return nil
}

// MaxSortOrder returns the highest sort_order among the user's lists, or -1.
func (r *WishListRepository) MaxSortOrder(ctx context.Context, userID uint) (int, error) {
	var max *int
	err := r.db.WithContext(ctx).Model(&model.WishList{}).
		Where("user_id = ?", userID).
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

// SaveOrder persists a drag-reorder of lists as sequential sort_order values.
func (r *WishListRepository) SaveOrder(ctx context.Context, userID uint, ids []uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for position, id := range ids {
			err := tx.Model(&model.WishList{}).
				Where("user_id = ? AND id = ?", userID, id).
				Update("sort_order", position).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save wish list order: %w", err)
	}
	return nil
}
