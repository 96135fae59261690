package models

import "time"

type Product struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	Name        string    `gorm:"type:varchar(191);not null" json:"name"`
	Description *string   `gorm:"type:text" json:"description,omitempty"`
	Price       float64   `gorm:"type:decimal(15,2);not null" json:"price"`
	Stock       int       `gorm:"not null;default:0" json:"stock"`
	Status      string    `gorm:"type:varchar(16);default:'active'" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}

// TrendingProduct accumulates purchase-driven view counts used by the
// storefront's trending ranking.
type TrendingProduct struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"not null;uniqueIndex" json:"product_id"`
	ViewCount int64     `gorm:"not null;default:0" json:"view_count"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (TrendingProduct) TableName() string {
	return "trending_products"
}
