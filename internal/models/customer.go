package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer 顾客
// TotalOrders、TotalSpent、LastOrderAt 为派生字段，只能由订单状态变更维护
type Customer struct {
	ID           int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	RestaurantID int64           `gorm:"index;not null" json:"restaurant_id"`
	Name         *string         `gorm:"type:varchar(100)" json:"name,omitempty"`
	Email        *string         `gorm:"type:varchar(255);index" json:"email,omitempty"`
	Phone        *string         `gorm:"type:varchar(30);index" json:"phone,omitempty"`
	Notes        *string         `gorm:"type:text" json:"notes,omitempty"`
	TotalOrders  int             `gorm:"not null;default:0" json:"total_orders"`
	TotalSpent   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total_spent"`
	LastOrderAt  *time.Time      `json:"last_order_at,omitempty"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 表名
func (Customer) TableName() string {
	return "customers"
}
