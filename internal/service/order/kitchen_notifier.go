package order

import (
	"context"
	"time"

	"github.com/dumeirei/kitchen-pos-backend/internal/common/logger"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/metrics"
	"github.com/dumeirei/kitchen-pos-backend/internal/models"
	"github.com/dumeirei/kitchen-pos-backend/pkg/mqtt"
)

// KitchenNotifier 将订单事件推送到后厨显示屏
// 推送失败只记录日志和指标，不影响已提交的订单
type KitchenNotifier struct {
	publisher   mqtt.Publisher
	topicPrefix string
	metrics     *metrics.Metrics
	timeout     time.Duration
}

// NewKitchenNotifier 创建后厨通知
func NewKitchenNotifier(publisher mqtt.Publisher, topicPrefix string, m *metrics.Metrics) *KitchenNotifier {
	return &KitchenNotifier{
		publisher:   publisher,
		topicPrefix: topicPrefix,
		metrics:     m,
		timeout:     3 * time.Second,
	}
}

// OrderCreated 新订单
func (n *KitchenNotifier) OrderCreated(ctx context.Context, order *models.Order) {
	n.publish(ctx, buildEvent(mqtt.EventOrderCreated, order, ""))
}

// OrderStatusChanged 订单状态变更
func (n *KitchenNotifier) OrderStatusChanged(ctx context.Context, order *models.Order, from string) {
	n.publish(ctx, buildEvent(mqtt.EventOrderStatusChanged, order, from))
}

// OrderItemsChanged 订单明细变更
func (n *KitchenNotifier) OrderItemsChanged(ctx context.Context, order *models.Order) {
	n.publish(ctx, buildEvent(mqtt.EventOrderItemsChanged, order, ""))
}

func (n *KitchenNotifier) publish(ctx context.Context, event *mqtt.OrderEvent) {
	topic := mqtt.KitchenTopic(n.topicPrefix, event.RestaurantID)

	// 请求可能已结束，推送使用独立的超时
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.timeout)
	defer cancel()

	if err := n.publisher.PublishWithContext(pubCtx, topic, event); err != nil {
		n.metrics.RecordMQTTMessage(event.Event, "failed")
		logger.Warn("kitchen event publish failed",
			logger.RestaurantID(event.RestaurantID),
			logger.OrderNumber(event.OrderNumber),
			logger.Action(event.Event),
			logger.Err(err),
		)
		return
	}
	n.metrics.RecordMQTTMessage(event.Event, "success")
}

func buildEvent(name string, order *models.Order, from string) *mqtt.OrderEvent {
	event := &mqtt.OrderEvent{
		Event:        name,
		RestaurantID: order.RestaurantID,
		OrderID:      order.ID,
		OrderNumber:  order.OrderNumber,
		OrderType:    order.Type,
		Status:       order.Status,
		FromStatus:   from,
		Timestamp:    order.UpdatedAt.Unix(),
	}
	if order.TableNumber != nil {
		event.TableNumber = *order.TableNumber
	}
	for _, it := range order.Items {
		item := mqtt.OrderEventItem{
			RevenueCenterID: it.RevenueCenterID,
			Name:            it.ItemName,
			Quantity:        it.Quantity,
			Status:          it.Status,
		}
		if it.Notes != nil {
			item.Notes = *it.Notes
		}
		event.Items = append(event.Items, item)
	}
	return event
}
