package payment

import (
	"github.com/shopspring/decimal"

	"github.com/dumeirei/kitchen-pos-backend/internal/models"
)

// Summary 订单支付汇总，每次读取时根据支付记录实时计算，不落库也不缓存
type Summary struct {
	OrderID     int64           `json:"order_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	PaidAmount  decimal.Decimal `json:"paid_amount"`
	Outstanding decimal.Decimal `json:"outstanding"`
	Status      string          `json:"status"`
	Count       int             `json:"count"`
}

// AggregateStatus 根据支付记录推导订单的支付状态
//
//	无支付记录                 -> pending
//	已完成金额 >= 订单总额      -> completed
//	同时存在已完成与待处理记录  -> partial
//	其余                       -> pending
func AggregateStatus(orderTotal decimal.Decimal, payments []models.Payment) string {
	if len(payments) == 0 {
		return models.OrderPaymentPending
	}

	paid := decimal.Zero
	var anyCompleted, anyPending bool
	for _, p := range payments {
		switch p.Status {
		case models.PaymentStatusCompleted:
			paid = paid.Add(p.Amount)
			anyCompleted = true
		case models.PaymentStatusPending:
			anyPending = true
		}
	}

	if paid.GreaterThanOrEqual(orderTotal) {
		return models.OrderPaymentCompleted
	}
	if anyCompleted && anyPending {
		return models.OrderPaymentPartial
	}
	return models.OrderPaymentPending
}

// Summarize 计算订单支付汇总
func Summarize(order *models.Order, payments []models.Payment) *Summary {
	paid := decimal.Zero
	for _, p := range payments {
		if p.Status == models.PaymentStatusCompleted {
			paid = paid.Add(p.Amount)
		}
	}
	outstanding := order.TotalAmount.Sub(paid)
	if outstanding.IsNegative() {
		outstanding = decimal.Zero
	}
	return &Summary{
		OrderID:     order.ID,
		TotalAmount: order.TotalAmount,
		PaidAmount:  paid,
		Outstanding: outstanding,
		Status:      AggregateStatus(order.TotalAmount, payments),
		Count:       len(payments),
	}
}
