package order

import (
	"context"

	"github.com/dumeirei/kitchen-pos-backend/internal/models"
	"github.com/dumeirei/kitchen-pos-backend/internal/repository"
)

// StatsEffect 订单状态变更对顾客统计的影响
type StatsEffect int

const (
	StatsNone StatsEffect = iota
	StatsAdd
	StatsRemove
)

// CustomerStatsEffect 计算状态变更的统计影响
// 非 served -> served 计入一单；served -> cancelled 扣回一单；其余无影响。
// served -> pending -> served 会重复计入，扣回时按零截断，这一不对称是已知行为
func CustomerStatsEffect(from, to string) StatsEffect {
	switch {
	case from != models.OrderStatusServed && to == models.OrderStatusServed:
		return StatsAdd
	case from == models.OrderStatusServed && to == models.OrderStatusCancelled:
		return StatsRemove
	}
	return StatsNone
}

// CustomerStatsAggregator 顾客统计维护，唯一写入 total_orders/total_spent/last_order_at 的地方
type CustomerStatsAggregator struct{}

// Apply 在状态更新事务中应用统计变更，order 应已是更新后的状态
func (a *CustomerStatsAggregator) Apply(ctx context.Context, customers *repository.CustomerRepository, order *models.Order, from string) (StatsEffect, error) {
	if order.CustomerID == nil {
		return StatsNone, nil
	}

	effect := CustomerStatsEffect(from, order.Status)
	switch effect {
	case StatsAdd:
		return effect, customers.AddServedOrder(ctx, *order.CustomerID, order.TotalAmount, order.UpdatedAt)
	case StatsRemove:
		return effect, customers.RemoveServedOrder(ctx, *order.CustomerID, order.TotalAmount, order.UpdatedAt)
	}
	return StatsNone, nil
}
