package model

import "time"

// User stores Telegram user metadata and notification preferences.
type User struct {
	ID                  uint  `gorm:"primaryKey"`
	TelegramID          int64 `gorm:"uniqueIndex"`
	FirstName           string
	LastName            string
	Username            string
	NotificationEnabled bool   `gorm:"default:true"`
	NotificationTime    string `gorm:"default:10:00"` // HH:MM, local time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
