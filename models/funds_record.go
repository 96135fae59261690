package models

import "time"

// FundsRecord tracks money owed-but-unpaid (pending) vs paid-out (earned) for a
// submission. Keyed by the owning submission so two tasks with the same payout
// can never collide.
type FundsRecord struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"not null;index" json:"user_id"`
	CompletedTaskID uint      `gorm:"not null;uniqueIndex" json:"completed_task_id"`
	Pending         float64   `gorm:"type:decimal(15,2);not null;default:0.00" json:"pending"`
	Earned          float64   `gorm:"type:decimal(15,2);not null;default:0.00" json:"earned"`
	Type            string    `gorm:"type:varchar(50);not null;default:'task'" json:"type"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (FundsRecord) TableName() string {
	return "funds_records"
}
