package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"taskdesk/internal/dates"
	"taskdesk/internal/model"
	"taskdesk/internal/repository"
)

// ErrDefaultList is returned when deleting the user's default wish list.
var ErrDefaultList = errors.New("default wish list cannot be deleted")

// WishItemInput represents data required to create a wish item.
type WishItemInput struct {
	WishListID uint
	Title      string
	Reason     string
}

// ConvertInput chooses how a wish item becomes a task.
type ConvertInput struct {
	TaskDate   time.Time
	Priority   string
	CategoryID *uint
}

// WishlistService manages wish lists, their items, and the item-to-task
// conversion flow.
type WishlistService struct {
	listRepo *repository.WishListRepository
	itemRepo *repository.WishItemRepository
	taskRepo *repository.TaskRepository
}

func NewWishlistService(listRepo *repository.WishListRepository, itemRepo *repository.WishItemRepository, taskRepo *repository.TaskRepository) *WishlistService {
	return &WishlistService{listRepo: listRepo, itemRepo: itemRepo, taskRepo: taskRepo}
}

// EnsureDefaultList returns the user's default list, creating it on first use.
func (s *WishlistService) EnsureDefaultList(ctx context.Context, user *model.User) (*model.WishList, error) {
	lists, err := s.listRepo.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	for i := range lists {
		if lists[i].IsDefault {
			return &lists[i], nil
		}
	}

	list := model.WishList{
		UserID:    user.ID,
		Title:     "Wishlist",
		IsDefault: true,
		SortOrder: 0,
	}
	if err := s.listRepo.Create(ctx, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (s *WishlistService) Lists(ctx context.Context, user *model.User) ([]model.WishList, error) {
	return s.listRepo.ListByUser(ctx, user.ID)
}

func (s *WishlistService) CreateList(ctx context.Context, user *model.User, title string) (*model.WishList, error) {
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}

	max, err := s.listRepo.MaxSortOrder(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	list := model.WishList{
		UserID:    user.ID,
		Title:     title,
		SortOrder: max + 1,
	}
	if err := s.listRepo.Create(ctx, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (s *WishlistService) RenameList(ctx context.Context, user *model.User, listID uint, title string) (*model.WishList, error) {
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}

	list, err := s.listRepo.FindByID(ctx, user.ID, listID)
	if err != nil {
		return nil, err
	}

	list.Title = title
	if err := s.listRepo.Update(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *WishlistService) DeleteList(ctx context.Context, user *model.User, listID uint) error {
	list, err := s.listRepo.FindByID(ctx, user.ID, listID)
	if err != nil {
		return err
	}
	if list.IsDefault {
		return ErrDefaultList
	}
	return s.listRepo.Delete(ctx, user.ID, listID)
}

// ReorderLists persists a drag-reorder of the list tabs.
func (s *WishlistService) ReorderLists(ctx context.Context, user *model.User, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return s.listRepo.SaveOrder(ctx, user.ID, ids)
}

// Items returns a list's items with incomplete ones first and the manual
// order preserved inside each half.
func (s *WishlistService) Items(ctx context.Context, user *model.User, listID uint) ([]model.WishItem, error) {
	items, err := s.itemRepo.ListByList(ctx, user.ID, listID)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].IsCompleted != items[j].IsCompleted {
			return !items[i].IsCompleted
		}
		return items[i].SortOrder < items[j].SortOrder
	})
	return items, nil
}

// CreateItem appends an item at the end of its list.
func (s *WishlistService) CreateItem(ctx context.Context, user *model.User, input WishItemInput) (*model.WishItem, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if _, err := s.listRepo.FindByID(ctx, user.ID, input.WishListID); err != nil {
		return nil, err
	}

	max, err := s.itemRepo.MaxSortOrder(ctx, user.ID, input.WishListID)
	if err != nil {
		return nil, err
	}

	item := model.WishItem{
		UserID:     user.ID,
		WishListID: input.WishListID,
		Title:      input.Title,
		Reason:     input.Reason,
		SortOrder:  max + 1,
	}
	if err := s.itemRepo.Create(ctx, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *WishlistService) UpdateItem(ctx context.Context, user *model.User, itemID uint, title, reason string) (*model.WishItem, error) {
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}

	item, err := s.itemRepo.FindByID(ctx, user.ID, itemID)
	if err != nil {
		return nil, err
	}

	item.Title = title
	item.Reason = reason
	if err := s.itemRepo.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *WishlistService) ToggleItem(ctx context.Context, user *model.User, itemID uint) (*model.WishItem, error) {
	item, err := s.itemRepo.FindByID(ctx, user.ID, itemID)
	if err != nil {
		return nil, err
	}

	item.IsCompleted = !item.IsCompleted
	if err := s.itemRepo.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *WishlistService) DeleteItem(ctx context.Context, user *model.User, itemID uint) error {
	return s.itemRepo.Delete(ctx, user.ID, itemID)
}

// ConvertToTask copies a wish item onto the day list as a new task. The
// item itself stays in its wish list untouched.
func (s *WishlistService) ConvertToTask(ctx context.Context, user *model.User, itemID uint, input ConvertInput) (*model.Task, error) {
	item, err := s.itemRepo.FindByID(ctx, user.ID, itemID)
	if err != nil {
		return nil, err
	}

	priority := input.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}

	task := model.Task{
		UserID:     user.ID,
		CategoryID: input.CategoryID,
		Title:      item.Title,
		Memo:       item.Reason,
		Priority:   priority,
		TaskDate:   dates.DateOnly(input.TaskDate),
		SortOrder:  0,
	}
	if err := s.taskRepo.Create(ctx, &task); err != nil {
		return nil, err
	}
	return &task, nil
}
