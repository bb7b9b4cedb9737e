package model

import "time"

// WishList is a named bucket of wish items. Each user gets one default list
// that cannot be deleted.
type WishList struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"index"`
	Title     string
	IsDefault bool `gorm:"default:false"`
	SortOrder int  `gorm:"default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// WishItem is a "someday" entry. It stays in its list until deleted;
// converting it to a task copies it, it does not move it.
type WishItem struct {
	ID          uint `gorm:"primaryKey"`
	UserID      uint `gorm:"index"`
	WishListID  uint `gorm:"index"`
	Title       string
	Reason      string
	IsCompleted bool `gorm:"default:false"`
	SortOrder   int  `gorm:"default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
