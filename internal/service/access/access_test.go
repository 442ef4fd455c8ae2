package access_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dumeirei/kitchen-pos-backend/internal/common/errors"
	"github.com/dumeirei/kitchen-pos-backend/internal/models"
	"github.com/dumeirei/kitchen-pos-backend/internal/service/access"
	"github.com/dumeirei/kitchen-pos-backend/internal/testutil"
)

func TestAuthorizer_AuthorizeRestaurant(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	a := access.NewAuthorizer()

	mine := testutil.SeedTenant(t, db, "mine")
	other := testutil.SeedTenant(t, db, "other")
	_, manager := testutil.SeedStaff(t, db, mine, "m@mine.io", models.RoleManager)
	_, staff := testutil.SeedStaff(t, db, mine, "s@mine.io", models.RoleStaff, mine.Center.ID)

	t.Run("平台管理员访问任意餐厅", func(t *testing.T) {
		assert.NoError(t, a.AuthorizeRestaurant(ctx, db, testutil.AdminCaller(), other.Restaurant.ID, access.ActionOwn))
	})

	t.Run("店主访问自己的餐厅", func(t *testing.T) {
		assert.NoError(t, a.AuthorizeRestaurant(ctx, db, mine.OwnerCaller(), mine.Restaurant.ID, access.ActionOwn))
	})

	t.Run("店主访问他人餐厅", func(t *testing.T) {
		err := a.AuthorizeRestaurant(ctx, db, mine.OwnerCaller(), other.Restaurant.ID, access.ActionRead)
		assert.True(t, errors.IsKind(err, errors.KindAuthorization))
	})

	t.Run("店主访问不存在的餐厅", func(t *testing.T) {
		err := a.AuthorizeRestaurant(ctx, db, mine.OwnerCaller(), 9999, access.ActionRead)
		assert.True(t, errors.IsKind(err, errors.KindNotFound))
	})

	t.Run("经理可管理但不能删除餐厅", func(t *testing.T) {
		assert.NoError(t, a.AuthorizeRestaurant(ctx, db, manager, mine.Restaurant.ID, access.ActionManage))
		err := a.AuthorizeRestaurant(ctx, db, manager, mine.Restaurant.ID, access.ActionOwn)
		assert.True(t, errors.IsKind(err, errors.KindAuthorization))
	})

	t.Run("员工只能营业操作", func(t *testing.T) {
		assert.NoError(t, a.AuthorizeRestaurant(ctx, db, staff, mine.Restaurant.ID, access.ActionOperate))
		err := a.AuthorizeRestaurant(ctx, db, staff, mine.Restaurant.ID, access.ActionManage)
		assert.True(t, errors.IsKind(err, errors.KindAuthorization))
	})

	t.Run("员工跨租户", func(t *testing.T) {
		err := a.AuthorizeRestaurant(ctx, db, staff, other.Restaurant.ID, access.ActionRead)
		assert.ErrorIs(t, err, errors.ErrTenantMismatch)
	})

	t.Run("未知角色", func(t *testing.T) {
		err := a.AuthorizeRestaurant(ctx, db, access.Caller{Role: "guest"}, mine.Restaurant.ID, access.ActionRead)
		assert.ErrorIs(t, err, errors.ErrPermissionDenied)
	})
}

func TestAuthorizer_RevenueCenterScope(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	a := access.NewAuthorizer()

	tn := testutil.SeedTenant(t, db, "scope")
	bar := &models.RevenueCenter{RestaurantID: tn.Restaurant.ID, Name: "Bar", Type: models.RevenueCenterTypeBar, IsActive: true}
	require.NoError(t, db.Create(bar).Error)

	_, staff := testutil.SeedStaff(t, db, tn, "s@scope.io", models.RoleStaff, tn.Center.ID)
	_, manager := testutil.SeedStaff(t, db, tn, "m@scope.io", models.RoleManager)

	assert.NoError(t, a.AuthorizeRevenueCenter(ctx, db, staff, tn.Restaurant.ID, tn.Center.ID, access.ActionOperate))
	err := a.AuthorizeRevenueCenter(ctx, db, staff, tn.Restaurant.ID, bar.ID, access.ActionOperate)
	assert.ErrorIs(t, err, errors.ErrCenterNotAssigned)
	assert.NoError(t, a.AuthorizeRevenueCenter(ctx, db, manager, tn.Restaurant.ID, bar.ID, access.ActionManage))

	ids, restricted, err := a.AssignedRevenueCenters(ctx, db, staff)
	require.NoError(t, err)
	assert.True(t, restricted)
	assert.Equal(t, []int64{tn.Center.ID}, ids)

	_, restricted, err = a.AssignedRevenueCenters(ctx, db, manager)
	require.NoError(t, err)
	assert.False(t, restricted)
}

func TestAuthorizer_RequirePlatformAdmin(t *testing.T) {
	db := testutil.NewTestDB(t)
	a := access.NewAuthorizer()
	first := testutil.SeedTenant(t, db, "first")

	assert.NoError(t, a.RequirePlatformAdmin(testutil.AdminCaller()))
	assert.Error(t, a.RequirePlatformAdmin(first.OwnerCaller()))
}

func TestAuthorizer_AuthorizeOrder(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	a := access.NewAuthorizer()

	tn := testutil.SeedTenant(t, db, "scope")
	bar := &models.RevenueCenter{RestaurantID: tn.Restaurant.ID, Name: "Bar", Type: models.RevenueCenterTypeBar, IsActive: true}
	require.NoError(t, db.Create(bar).Error)
	_, staff := testutil.SeedStaff(t, db, tn, "bar@scope.io", models.RoleStaff, bar.ID)
	_, idle := testutil.SeedStaff(t, db, tn, "idle@scope.io", models.RoleStaff)
	_, manager := testutil.SeedStaff(t, db, tn, "m@scope.io", models.RoleManager)

	order := &models.Order{
		RestaurantID: tn.Restaurant.ID,
		OrderNumber:  "20240301-0001",
		BusinessDate: "2024-03-01",
		Type:         models.OrderTypeDineIn,
		Status:       models.OrderStatusPending,
		Items: []models.OrderItem{{
			RevenueCenterID: tn.Center.ID,
			MenuItemID:      &tn.MenuItem.ID,
			ItemName:        tn.MenuItem.Name,
			Quantity:        1,
			UnitPrice:       tn.MenuItem.Price,
			TotalPrice:      tn.MenuItem.Price,
			Status:          models.OrderStatusPending,
		}},
	}
	require.NoError(t, db.Create(order).Error)

	assert.NoError(t, a.AuthorizeOrder(ctx, db, tn.OwnerCaller(), order, access.ActionOperate))
	assert.NoError(t, a.AuthorizeOrder(ctx, db, manager, order, access.ActionOperate))
	assert.ErrorIs(t, a.AuthorizeOrder(ctx, db, staff, order, access.ActionRead), errors.ErrCenterNotAssigned)
	assert.ErrorIs(t, a.AuthorizeOrder(ctx, db, idle, order, access.ActionRead), errors.ErrCenterNotAssigned)

	t.Run("员工本人创建的订单可见", func(t *testing.T) {
		creator := idle.AccountID
		own := *order
		own.CreatedBy = &creator
		assert.NoError(t, a.AuthorizeOrder(ctx, db, idle, &own, access.ActionOperate))
	})

	t.Run("分配到明细所在营业点后可见", func(t *testing.T) {
		require.NoError(t, db.Create(&models.StaffAssignment{UserID: staff.UserID, RevenueCenterID: tn.Center.ID}).Error)
		assert.NoError(t, a.AuthorizeOrder(ctx, db, staff, order, access.ActionOperate))
	})
}
