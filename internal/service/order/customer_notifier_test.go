package order

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dumeirei/kitchen-pos-backend/internal/models"
	"github.com/dumeirei/kitchen-pos-backend/pkg/sms"
)

type stubCustomers map[int64]*models.Customer

func (s stubCustomers) GetByID(ctx context.Context, id int64) (*models.Customer, error) {
	if c, ok := s[id]; ok {
		return c, nil
	}
	return nil, stderrors.New("record not found")
}

func readyOrder(orderType string, customerID *int64) *models.Order {
	return &models.Order{
		ID:           9,
		RestaurantID: 3,
		CustomerID:   customerID,
		OrderNumber:  "20240301-0009",
		Type:         orderType,
		Status:       models.OrderStatusReady,
	}
}

func TestCustomerNotifier_OrderReady(t *testing.T) {
	phone := " +393331234567 "
	withPhone, withoutPhone, missing := int64(1), int64(2), int64(3)
	customers := stubCustomers{
		withPhone:    {ID: withPhone, Phone: &phone},
		withoutPhone: {ID: withoutPhone},
	}

	tests := []struct {
		name  string
		order *models.Order
		from  string
		sent  bool
	}{
		{"外带订单出餐", readyOrder(models.OrderTypeTakeaway, &withPhone), models.OrderStatusPreparing, true},
		{"外送订单出餐", readyOrder(models.OrderTypeDelivery, &withPhone), models.OrderStatusPending, true},
		{"堂食不发送", readyOrder(models.OrderTypeDineIn, &withPhone), models.OrderStatusPreparing, false},
		{"未关联顾客", readyOrder(models.OrderTypeTakeaway, nil), models.OrderStatusPreparing, false},
		{"顾客没有手机号", readyOrder(models.OrderTypeTakeaway, &withoutPhone), models.OrderStatusPreparing, false},
		{"顾客不存在", readyOrder(models.OrderTypeTakeaway, &missing), models.OrderStatusPreparing, false},
		{"重复设置为出餐", readyOrder(models.OrderTypeTakeaway, &withPhone), models.OrderStatusReady, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := sms.NewMockSender()
			n := NewCustomerNotifier(customers, sender, "SMS_READY")

			n.OrderStatusChanged(context.Background(), tt.order, tt.from)

			if !tt.sent {
				assert.Empty(t, sender.Messages())
				return
			}
			msg := sender.Last()
			require.NotNil(t, msg)
			assert.Equal(t, "+393331234567", msg.Phone)
			assert.Equal(t, "SMS_READY", msg.TemplateCode)
			assert.Equal(t, "20240301-0009", msg.Params["order_number"])
		})
	}

	t.Run("其他状态不发送", func(t *testing.T) {
		sender := sms.NewMockSender()
		n := NewCustomerNotifier(customers, sender, "SMS_READY")
		order := readyOrder(models.OrderTypeTakeaway, &withPhone)
		order.Status = models.OrderStatusServed

		n.OrderStatusChanged(context.Background(), order, models.OrderStatusReady)
		n.OrderCreated(context.Background(), order)
		n.OrderItemsChanged(context.Background(), order)
		assert.Empty(t, sender.Messages())
	})

	t.Run("发送失败不影响调用方", func(t *testing.T) {
		sender := sms.NewMockSender()
		sender.FailWith(stderrors.New("quota exceeded"))
		n := NewCustomerNotifier(customers, sender, "SMS_READY")

		assert.NotPanics(t, func() {
			n.OrderStatusChanged(context.Background(), readyOrder(models.OrderTypeTakeaway, &withPhone), models.OrderStatusPreparing)
		})
	})
}

type countingNotifier struct {
	created, changed, items int
}

func (c *countingNotifier) OrderCreated(context.Context, *models.Order)               { c.created++ }
func (c *countingNotifier) OrderStatusChanged(context.Context, *models.Order, string) { c.changed++ }
func (c *countingNotifier) OrderItemsChanged(context.Context, *models.Order)          { c.items++ }

func TestNotifiers_FanOut(t *testing.T) {
	a, b := &countingNotifier{}, &countingNotifier{}
	ns := Notifiers{a, NopNotifier{}, b}
	ctx := context.Background()
	order := readyOrder(models.OrderTypeTakeaway, nil)

	ns.OrderCreated(ctx, order)
	ns.OrderStatusChanged(ctx, order, models.OrderStatusPreparing)
	ns.OrderItemsChanged(ctx, order)
	ns.OrderItemsChanged(ctx, order)

	for _, c := range []*countingNotifier{a, b} {
		assert.Equal(t, 1, c.created)
		assert.Equal(t, 1, c.changed)
		assert.Equal(t, 2, c.items)
	}
}
