package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment 手工录入的支付记录，一个订单可以有多笔
type Payment struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID     int64           `gorm:"index;not null" json:"order_id"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Method      string          `gorm:"type:varchar(20);not null" json:"method"`
	Status      string          `gorm:"type:varchar(20);not null;default:pending" json:"status"`
	Reference   *string         `gorm:"type:varchar(100)" json:"reference,omitempty"`
	ProcessedAt *time.Time      `json:"processed_at,omitempty"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 表名
func (Payment) TableName() string {
	return "payments"
}

// PaymentMethod 支付方式
const (
	PaymentMethodCash     = "cash"
	PaymentMethodCard     = "card"
	PaymentMethodGiftCard = "gift_card"
	PaymentMethodOnline   = "online"
)

// PaymentStatus 支付状态
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"
)

// 订单维度的汇总支付状态，仅在读取时计算
const (
	OrderPaymentPending   = "pending"
	OrderPaymentPartial   = "partial"
	OrderPaymentCompleted = "completed"
)

// IsValidPaymentMethod 校验支付方式
func IsValidPaymentMethod(m string) bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodGiftCard, PaymentMethodOnline:
		return true
	}
	return false
}

// IsValidPaymentStatus 校验支付状态
func IsValidPaymentStatus(s string) bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}
