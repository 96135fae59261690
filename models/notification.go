package models

import "time"

// Notification is a persisted user notice (funded wallet etc). Delivery to push
// or mail channels is handled out of process.
type Notification struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"not null;index" json:"user_id"`
	Type      string     `gorm:"type:varchar(50);not null" json:"type"`
	Message   string     `gorm:"type:text;not null" json:"message"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
