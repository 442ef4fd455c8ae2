package order

import (
	"context"

	"github.com/dumeirei/kitchen-pos-backend/internal/models"
)

// Notifier 订单事件通知，在事务提交后调用，实现方不得阻塞请求或返回错误
type Notifier interface {
	OrderCreated(ctx context.Context, order *models.Order)
	OrderStatusChanged(ctx context.Context, order *models.Order, from string)
	OrderItemsChanged(ctx context.Context, order *models.Order)
}

// NopNotifier 空通知
type NopNotifier struct{}

func (NopNotifier) OrderCreated(context.Context, *models.Order)               {}
func (NopNotifier) OrderStatusChanged(context.Context, *models.Order, string) {}
func (NopNotifier) OrderItemsChanged(context.Context, *models.Order)          {}

// Notifiers 依次通知多个实现
type Notifiers []Notifier

func (ns Notifiers) OrderCreated(ctx context.Context, order *models.Order) {
	for _, n := range ns {
		n.OrderCreated(ctx, order)
	}
}

func (ns Notifiers) OrderStatusChanged(ctx context.Context, order *models.Order, from string) {
	for _, n := range ns {
		n.OrderStatusChanged(ctx, order, from)
	}
}

func (ns Notifiers) OrderItemsChanged(ctx context.Context, order *models.Order) {
	for _, n := range ns {
		n.OrderItemsChanged(ctx, order)
	}
}
