package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order 订单
type Order struct {
	ID             int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	RestaurantID   int64           `gorm:"uniqueIndex:uk_orders_restaurant_number;index:idx_orders_restaurant_date;not null" json:"restaurant_id"`
	CustomerID     *int64          `gorm:"index" json:"customer_id,omitempty"`
	OrderNumber    string          `gorm:"type:varchar(20);uniqueIndex:uk_orders_restaurant_number;not null" json:"order_number"`
	BusinessDate   string          `gorm:"type:varchar(10);index:idx_orders_restaurant_date;not null" json:"business_date"` // YYYY-MM-DD
	Type           string          `gorm:"type:varchar(20);not null" json:"type"`
	Status         string          `gorm:"type:varchar(20);not null;default:pending;index" json:"status"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"subtotal"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"tax_amount"`
	TaxExplicit    bool            `gorm:"not null;default:false" json:"tax_explicit"` // 税额由客户端指定，明细变化时不按税率重算
	DiscountAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"discount_amount"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total_amount"`
	TableNumber    *string         `gorm:"type:varchar(20)" json:"table_number,omitempty"`
	Notes          *string         `gorm:"type:text" json:"notes,omitempty"`
	CreatedBy      *int64          `json:"created_by,omitempty"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	Customer *Customer   `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Items    []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	Payments []Payment   `gorm:"foreignKey:OrderID" json:"payments,omitempty"`
}

// TableName 表名
func (Order) TableName() string {
	return "orders"
}

// OrderType 订单类型
const (
	OrderTypeDineIn   = "dine_in"
	OrderTypeTakeaway = "takeaway"
	OrderTypeDelivery = "delivery"
)

// OrderStatus 订单状态
const (
	OrderStatusPending   = "pending"
	OrderStatusPreparing = "preparing"
	OrderStatusReady     = "ready"
	OrderStatusServed    = "served"
	OrderStatusCancelled = "cancelled"
)

// IsValidOrderType 校验订单类型
func IsValidOrderType(t string) bool {
	switch t {
	case OrderTypeDineIn, OrderTypeTakeaway, OrderTypeDelivery:
		return true
	}
	return false
}

// IsValidOrderStatus 校验订单状态
func IsValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusPreparing, OrderStatusReady, OrderStatusServed, OrderStatusCancelled:
		return true
	}
	return false
}

// IsValidOrderItemStatus 校验订单明细状态，明细没有 cancelled
func IsValidOrderItemStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusPreparing, OrderStatusReady, OrderStatusServed:
		return true
	}
	return false
}

// OrderItem 订单明细
// MenuItemID 与 ComboMealID 有且仅有一个非空；菜品删除后置空，ItemName 保留下单时的名称
type OrderItem struct {
	ID              int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID         int64           `gorm:"index;not null" json:"order_id"`
	RevenueCenterID int64           `gorm:"index;not null" json:"revenue_center_id"`
	MenuItemID      *int64          `gorm:"index" json:"menu_item_id,omitempty"`
	ComboMealID     *int64          `gorm:"index" json:"combo_meal_id,omitempty"`
	ItemName        string          `gorm:"type:varchar(100);not null" json:"item_name"`
	Quantity        int             `gorm:"not null" json:"quantity"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	TotalPrice      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_price"`
	Status          string          `gorm:"type:varchar(20);not null;default:pending" json:"status"`
	Notes           *string         `gorm:"type:varchar(255)" json:"notes,omitempty"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 表名
func (OrderItem) TableName() string {
	return "order_items"
}

// OrderSequence 每个餐厅每个营业日的订单号序列，订单创建时在此行上串行化
type OrderSequence struct {
	RestaurantID int64     `gorm:"primaryKey;autoIncrement:false" json:"restaurant_id"`
	BusinessDate string    `gorm:"primaryKey;type:varchar(10)" json:"business_date"`
	LastValue    int       `gorm:"not null;default:0" json:"last_value"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 表名
func (OrderSequence) TableName() string {
	return "order_sequences"
}
