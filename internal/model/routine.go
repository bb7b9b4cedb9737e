package model

import (
	"time"

	"gorm.io/datatypes"
)

// Routine is a template for a recurring task. Generation copies its fields
// onto a dated Task; later edits or deletion never touch generated tasks.
type Routine struct {
	ID         uint  `gorm:"primaryKey"`
	UserID     uint  `gorm:"index"`
	CategoryID *uint `gorm:"index"`
	Title      string
	Memo       string
	Priority   string `gorm:"default:medium"`
	HasTime    bool   `gorm:"default:false"`
	Time       *string
	DaysOfWeek datatypes.JSONSlice[int] // 0=Sunday .. 6=Saturday; empty means every day
	IsActive   bool                     `gorm:"default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// AppliesOn reports whether the routine is scheduled for the given date.
// An empty weekday set means the routine applies every day.
func (r Routine) AppliesOn(date time.Time) bool {
	if len(r.DaysOfWeek) == 0 {
		return true
	}
	weekday := int(date.Weekday())
	for _, day := range r.DaysOfWeek {
		if day == weekday {
			return true
		}
	}
	return false
}
