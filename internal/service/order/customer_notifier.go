package order

import (
	"context"
	"strings"
	"time"

	"github.com/dumeirei/kitchen-pos-backend/internal/common/logger"
	"github.com/dumeirei/kitchen-pos-backend/internal/models"
	"github.com/dumeirei/kitchen-pos-backend/pkg/sms"
)

// CustomerLookup 按 ID 读取顾客
type CustomerLookup interface {
	GetByID(ctx context.Context, id int64) (*models.Customer, error)
}

// CustomerNotifier 外带与外送订单出餐后短信提醒顾客
// 堂食订单、未关联顾客或顾客没有手机号时不发送
type CustomerNotifier struct {
	customers CustomerLookup
	sender    sms.Sender
	template  string
	timeout   time.Duration
}

// NewCustomerNotifier 创建顾客通知
func NewCustomerNotifier(customers CustomerLookup, sender sms.Sender, template string) *CustomerNotifier {
	return &CustomerNotifier{
		customers: customers,
		sender:    sender,
		template:  template,
		timeout:   5 * time.Second,
	}
}

func (n *CustomerNotifier) OrderCreated(context.Context, *models.Order)      {}
func (n *CustomerNotifier) OrderItemsChanged(context.Context, *models.Order) {}

// OrderStatusChanged 订单进入 ready 时发送取餐提醒
func (n *CustomerNotifier) OrderStatusChanged(ctx context.Context, order *models.Order, from string) {
	if order.Status != models.OrderStatusReady || from == models.OrderStatusReady {
		return
	}
	if order.Type == models.OrderTypeDineIn || order.CustomerID == nil {
		return
	}

	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.timeout)
	defer cancel()

	customer, err := n.customers.GetByID(sendCtx, *order.CustomerID)
	if err != nil {
		logger.Warn("ready notification skipped, customer lookup failed",
			logger.OrderNumber(order.OrderNumber),
			logger.CustomerID(*order.CustomerID),
			logger.Err(err),
		)
		return
	}
	if customer.Phone == nil || strings.TrimSpace(*customer.Phone) == "" {
		return
	}

	params := map[string]string{"order_number": order.OrderNumber}
	if err := n.sender.Send(sendCtx, strings.TrimSpace(*customer.Phone), n.template, params); err != nil {
		logger.Warn("ready notification failed",
			logger.OrderNumber(order.OrderNumber),
			logger.CustomerID(customer.ID),
			logger.Err(err),
		)
		return
	}
	logger.Debug("ready notification sent", logger.OrderNumber(order.OrderNumber), logger.CustomerID(customer.ID))
}
