package payment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dumeirei/kitchen-pos-backend/internal/common/errors"
	"github.com/dumeirei/kitchen-pos-backend/internal/models"
	"github.com/dumeirei/kitchen-pos-backend/internal/service/access"
	"github.com/dumeirei/kitchen-pos-backend/internal/testutil"
)

func setupPaymentService(t *testing.T) (*PaymentService, *gorm.DB, *testutil.Tenant, *models.Order) {
	t.Helper()
	db := testutil.NewTestDB(t)
	tn := testutil.SeedTenant(t, db, "pay")

	order := &models.Order{
		RestaurantID: tn.Restaurant.ID,
		OrderNumber:  "20240301-0001",
		BusinessDate: "2024-03-01",
		Type:         models.OrderTypeDineIn,
		Status:       models.OrderStatusServed,
		Subtotal:     testutil.Money("100.00"),
		TotalAmount:  testutil.Money("100.00"),
	}
	require.NoError(t, db.Create(order).Error)

	svc := NewPaymentService(db, access.NewAuthorizer())
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 13, 0, 0, 0, time.UTC) }
	return svc, db, tn, order
}

func TestPaymentService_CreatePayment(t *testing.T) {
	svc, db, tn, order := setupPaymentService(t)
	ctx := context.Background()
	caller := tn.OwnerCaller()

	t.Run("默认待处理", func(t *testing.T) {
		p, err := svc.CreatePayment(ctx, caller, &CreatePaymentRequest{
			OrderID: order.ID,
			Amount:  testutil.Money("40.00"),
			Method:  models.PaymentMethodCash,
		})
		require.NoError(t, err)
		assert.Equal(t, models.PaymentStatusPending, p.Status)
		assert.Nil(t, p.ProcessedAt)
	})

	t.Run("已完成记录处理时间", func(t *testing.T) {
		p, err := svc.CreatePayment(ctx, caller, &CreatePaymentRequest{
			OrderID: order.ID,
			Amount:  testutil.Money("60.00"),
			Method:  models.PaymentMethodCard,
			Status:  models.PaymentStatusCompleted,
		})
		require.NoError(t, err)
		require.NotNil(t, p.ProcessedAt)
	})

	t.Run("金额必须为正", func(t *testing.T) {
		_, err := svc.CreatePayment(ctx, caller, &CreatePaymentRequest{OrderID: order.ID, Amount: testutil.Money("0"), Method: models.PaymentMethodCash})
		assert.ErrorIs(t, err, errors.ErrPaymentAmountInvalid)
	})

	t.Run("支付方式无效", func(t *testing.T) {
		_, err := svc.CreatePayment(ctx, caller, &CreatePaymentRequest{OrderID: order.ID, Amount: testutil.Money("1"), Method: "cheque"})
		assert.ErrorIs(t, err, errors.ErrPaymentMethodInvalid)
	})

	t.Run("状态无效", func(t *testing.T) {
		_, err := svc.CreatePayment(ctx, caller, &CreatePaymentRequest{OrderID: order.ID, Amount: testutil.Money("1"), Method: models.PaymentMethodCash, Status: "void"})
		assert.ErrorIs(t, err, errors.ErrPaymentStatusInvalid)
	})

	t.Run("订单不存在", func(t *testing.T) {
		_, err := svc.CreatePayment(ctx, caller, &CreatePaymentRequest{OrderID: 9999, Amount: testutil.Money("1"), Method: models.PaymentMethodCash})
		assert.ErrorIs(t, err, errors.ErrOrderNotFound)
	})

	t.Run("其他餐厅店主无权录入", func(t *testing.T) {
		other := testutil.SeedTenant(t, db, "payother")
		_, err := svc.CreatePayment(ctx, other.OwnerCaller(), &CreatePaymentRequest{OrderID: order.ID, Amount: testutil.Money("1"), Method: models.PaymentMethodCash})
		assert.True(t, errors.IsKind(err, errors.KindAuthorization))
	})
}

func TestPaymentService_SummaryFollowsPayments(t *testing.T) {
	svc, _, tn, order := setupPaymentService(t)
	ctx := context.Background()
	caller := tn.OwnerCaller()

	summary, err := svc.GetSummary(ctx, caller, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderPaymentPending, summary.Status)

	first, err := svc.CreatePayment(ctx, caller, &CreatePaymentRequest{
		OrderID: order.ID, Amount: testutil.Money("40.00"), Method: models.PaymentMethodCash, Status: models.PaymentStatusCompleted,
	})
	require.NoError(t, err)
	second, err := svc.CreatePayment(ctx, caller, &CreatePaymentRequest{
		OrderID: order.ID, Amount: testutil.Money("60.00"), Method: models.PaymentMethodCard,
	})
	require.NoError(t, err)

	summary, err = svc.GetSummary(ctx, caller, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderPaymentPartial, summary.Status)
	assert.True(t, summary.PaidAmount.Equal(testutil.Money("40.00")))
	assert.True(t, summary.Outstanding.Equal(testutil.Money("60.00")))

	completed := models.PaymentStatusCompleted
	updated, err := svc.UpdatePayment(ctx, caller, second.ID, &UpdatePaymentRequest{Status: &completed})
	require.NoError(t, err)
	require.NotNil(t, updated.ProcessedAt)

	summary, err = svc.GetSummary(ctx, caller, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderPaymentCompleted, summary.Status)
	assert.True(t, summary.Outstanding.IsZero())
	assert.Equal(t, 2, summary.Count)

	require.NoError(t, svc.DeletePayment(ctx, caller, first.ID))
	summary, err = svc.GetSummary(ctx, caller, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderPaymentPending, summary.Status)
}

func TestPaymentService_UpdateAndList(t *testing.T) {
	svc, db, tn, order := setupPaymentService(t)
	ctx := context.Background()
	caller := tn.OwnerCaller()

	p, err := svc.CreatePayment(ctx, caller, &CreatePaymentRequest{OrderID: order.ID, Amount: testutil.Money("10.00"), Method: models.PaymentMethodGiftCard})
	require.NoError(t, err)

	bad := testutil.Money("-5")
	_, err = svc.UpdatePayment(ctx, caller, p.ID, &UpdatePaymentRequest{Amount: &bad})
	assert.ErrorIs(t, err, errors.ErrPaymentAmountInvalid)

	ref := "GC-1001"
	updated, err := svc.UpdatePayment(ctx, caller, p.ID, &UpdatePaymentRequest{Reference: &ref})
	require.NoError(t, err)
	require.NotNil(t, updated.Reference)
	assert.Equal(t, "GC-1001", *updated.Reference)

	got, err := svc.GetPayment(ctx, caller, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "GC-1001", *got.Reference)
	assert.True(t, got.Amount.Equal(testutil.Money("10.00")))

	list, total, err := svc.ListPayments(ctx, caller, &PaymentFilter{RestaurantID: tn.Restaurant.ID, Method: models.PaymentMethodGiftCard}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)

	_, _, err = svc.ListPayments(ctx, caller, &PaymentFilter{RestaurantID: tn.Restaurant.ID, Status: "void"}, 0, 10)
	assert.ErrorIs(t, err, errors.ErrPaymentStatusInvalid)

	_, staff := testutil.SeedStaff(t, db, tn, "cashier@pay.io", models.RoleStaff, tn.Center.ID)
	err = svc.DeletePayment(ctx, staff, p.ID)
	assert.True(t, errors.IsKind(err, errors.KindAuthorization))

	_, err = svc.GetPayment(ctx, caller, 9999)
	assert.ErrorIs(t, err, errors.ErrPaymentNotFound)
}

func TestPaymentService_StaffCenterScope(t *testing.T) {
	svc, db, tn, _ := setupPaymentService(t)
	ctx := context.Background()
	owner := tn.OwnerCaller()

	bar := &models.RevenueCenter{RestaurantID: tn.Restaurant.ID, Name: "Bar", Type: models.RevenueCenterTypeBar, IsActive: true}
	require.NoError(t, db.Create(bar).Error)
	_, staff := testutil.SeedStaff(t, db, tn, "bartender@pay.io", models.RoleStaff, bar.ID)

	newOrder := func(number string, centerID int64) *models.Order {
		o := &models.Order{
			RestaurantID: tn.Restaurant.ID,
			OrderNumber:  number,
			BusinessDate: "2024-03-01",
			Type:         models.OrderTypeDineIn,
			Status:       models.OrderStatusPending,
			Subtotal:     testutil.Money("10.00"),
			TotalAmount:  testutil.Money("10.00"),
			Items: []models.OrderItem{{
				RevenueCenterID: centerID,
				MenuItemID:      &tn.MenuItem.ID,
				ItemName:        tn.MenuItem.Name,
				Quantity:        1,
				UnitPrice:       testutil.Money("10.00"),
				TotalPrice:      testutil.Money("10.00"),
				Status:          models.OrderStatusPending,
			}},
		}
		require.NoError(t, db.Create(o).Error)
		return o
	}
	floorOrder := newOrder("20240301-0002", tn.Center.ID)
	barOrder := newOrder("20240301-0003", bar.ID)

	floorPay, err := svc.CreatePayment(ctx, owner, &CreatePaymentRequest{OrderID: floorOrder.ID, Amount: testutil.Money("4.00"), Method: models.PaymentMethodCash})
	require.NoError(t, err)
	_, err = svc.CreatePayment(ctx, owner, &CreatePaymentRequest{OrderID: barOrder.ID, Amount: testutil.Money("4.00"), Method: models.PaymentMethodCash})
	require.NoError(t, err)

	t.Run("未分配营业点的订单不可见", func(t *testing.T) {
		_, err := svc.GetSummary(ctx, staff, floorOrder.ID)
		assert.ErrorIs(t, err, errors.ErrCenterNotAssigned)

		_, err = svc.GetPayment(ctx, staff, floorPay.ID)
		assert.ErrorIs(t, err, errors.ErrCenterNotAssigned)

		amount := testutil.Money("6.00")
		_, err = svc.UpdatePayment(ctx, staff, floorPay.ID, &UpdatePaymentRequest{Amount: &amount})
		assert.ErrorIs(t, err, errors.ErrCenterNotAssigned)
	})

	t.Run("不能为其他营业点的订单录入支付", func(t *testing.T) {
		_, err := svc.CreatePayment(ctx, staff, &CreatePaymentRequest{
			OrderID: floorOrder.ID,
			Amount:  testutil.Money("10.00"),
			Method:  models.PaymentMethodCash,
			Status:  models.PaymentStatusCompleted,
		})
		assert.ErrorIs(t, err, errors.ErrCenterNotAssigned)

		var n int64
		require.NoError(t, db.Model(&models.Payment{}).Where("order_id = ?", floorOrder.ID).Count(&n).Error)
		assert.Equal(t, int64(1), n)
	})

	t.Run("本营业点订单正常操作", func(t *testing.T) {
		_, err := svc.CreatePayment(ctx, staff, &CreatePaymentRequest{OrderID: barOrder.ID, Amount: testutil.Money("6.00"), Method: models.PaymentMethodCard})
		require.NoError(t, err)

		summary, err := svc.GetSummary(ctx, staff, barOrder.ID)
		require.NoError(t, err)
		assert.Equal(t, barOrder.ID, summary.OrderID)
	})

	t.Run("列表只包含可见订单的支付", func(t *testing.T) {
		list, total, err := svc.ListPayments(ctx, staff, &PaymentFilter{RestaurantID: tn.Restaurant.ID}, 0, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		for _, p := range list {
			assert.Equal(t, barOrder.ID, p.OrderID)
		}

		_, total, err = svc.ListPayments(ctx, owner, &PaymentFilter{RestaurantID: tn.Restaurant.ID}, 0, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
	})
}
