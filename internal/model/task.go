package model

import "time"

// Task priorities. Anything outside this set is displayed last.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Task is a unit of work scheduled on exactly one calendar date.
//
// RoutineID is set iff the task was generated from a routine. The unique
// index on (routine_id, task_date) makes routine generation idempotent even
// when two sessions race: the second insert fails and is ignored. SQLite
// treats NULLs as distinct, so plain tasks never collide on it.
type Task struct {
	ID          uint  `gorm:"primaryKey"`
	UserID      uint  `gorm:"index"`
	CategoryID  *uint `gorm:"index"`
	RoutineID   *uint `gorm:"index:idx_routine_task_date,unique"`
	Title       string
	Memo        string
	Priority    string    `gorm:"default:medium"`
	IsCompleted bool      `gorm:"default:false"`
	TaskDate    time.Time `gorm:"index;index:idx_routine_task_date,unique"`
	SortOrder   int       `gorm:"default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
