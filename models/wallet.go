package models

import "time"

// Wallet holds a user's spendable balance. Created lazily with balance 0 and
// credited only by the settlement engine.
type Wallet struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex" json:"user_id"`
	Balance   float64   `gorm:"type:decimal(15,2);not null;default:0.00" json:"balance"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (Wallet) TableName() string {
	return "wallets"
}
