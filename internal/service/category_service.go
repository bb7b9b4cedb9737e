package service

import (
	"context"
	"fmt"

	"taskdesk/internal/model"
	"taskdesk/internal/repository"
)

// CategoryService provides helpers around categories.
type CategoryService struct {
	repo *repository.CategoryRepository
}

func NewCategoryService(repo *repository.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

func (s *CategoryService) List(ctx context.Context, user *model.User) ([]model.Category, error) {
	return s.repo.ListByUser(ctx, user.ID)
}

// Create appends a category at the end of the user's manual order.
func (s *CategoryService) Create(ctx context.Context, user *model.User, name, color string) (*model.Category, error) {
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}

	max, err := s.repo.MaxSortOrder(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	category := model.Category{
		UserID:    user.ID,
		Name:      name,
		Color:     color,
		SortOrder: max + 1,
	}
	if err := s.repo.Create(ctx, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *CategoryService) Rename(ctx context.Context, user *model.User, categoryID uint, name string) (*model.Category, error) {
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}

	category, err := s.repo.FindByID(ctx, user.ID, categoryID)
	if err != nil {
		return nil, err
	}

	category.Name = name
	if err := s.repo.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// Delete removes the category; tasks and routines that used it are left
// uncategorized, not deleted.
func (s *CategoryService) Delete(ctx context.Context, user *model.User, categoryID uint) error {
	return s.repo.Delete(ctx, user.ID, categoryID)
}
