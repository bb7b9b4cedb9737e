package model

import "time"

// Category tags tasks and routines by area (work, health, study, etc.).
type Category struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"index;index:idx_user_category_name,unique"`
	Name      string `gorm:"index:idx_user_category_name,unique"`
	Color     string
	SortOrder int `gorm:"default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
