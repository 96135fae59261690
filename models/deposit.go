package models

import "time"

// InitializeDeposit records one payment-gateway transaction lifecycle.
// Status moves pending -> successful or pending -> failed, terminal either way.
type InitializeDeposit struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	UserID    uint    `gorm:"not null;index" json:"user_id"`
	User      *User   `gorm:"foreignKey:UserID" json:"-"`
	Reference string  `gorm:"type:varchar(191);uniqueIndex;not null" json:"reference"`
	Trx       string  `gorm:"type:varchar(191);uniqueIndex;not null" json:"trx"`
	Amount    float64 `gorm:"type:decimal(15,2);not null" json:"amount"`
	Status    string  `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	// Captured from the gateway at verification time.
	Method    *string   `gorm:"type:varchar(50)" json:"method,omitempty"`
	Currency  *string   `gorm:"type:varchar(10)" json:"currency,omitempty"`
	Token     *string   `gorm:"type:text" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

func (InitializeDeposit) TableName() string {
	return "initialize_deposits"
}
