package menu

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dumeirei/kitchen-pos-backend/internal/common/errors"
	"github.com/dumeirei/kitchen-pos-backend/internal/models"
	"github.com/dumeirei/kitchen-pos-backend/internal/service/access"
	"github.com/dumeirei/kitchen-pos-backend/internal/testutil"
	"github.com/dumeirei/kitchen-pos-backend/pkg/oss"
)

func setupMenuService(t *testing.T) (*MenuService, *gorm.DB, *oss.MemoryUploader) {
	t.Helper()
	db := testutil.NewTestDB(t)
	uploader := oss.NewMemoryUploader("https://cdn.example.com")
	return NewMenuService(db, access.NewAuthorizer(), uploader), db, uploader
}

// seedOrderItem 创建引用菜品或套餐的历史订单明细
func seedOrderItem(t *testing.T, db *gorm.DB, tn *testutil.Tenant, menuItemID, comboID *int64, name string) *models.OrderItem {
	t.Helper()
	order := &models.Order{
		RestaurantID: tn.Restaurant.ID,
		OrderNumber:  fmt.Sprintf("20240301-%04d", len(name)),
		BusinessDate: "2024-03-01",
		Type:         models.OrderTypeDineIn,
		Status:       models.OrderStatusServed,
		TotalAmount:  testutil.Money("10.00"),
	}
	require.NoError(t, db.Create(order).Error)
	item := &models.OrderItem{
		OrderID:         order.ID,
		RevenueCenterID: tn.Center.ID,
		MenuItemID:      menuItemID,
		ComboMealID:     comboID,
		ItemName:        name,
		Quantity:        1,
		UnitPrice:       testutil.Money("10.00"),
		TotalPrice:      testutil.Money("10.00"),
		Status:          models.OrderStatusServed,
	}
	require.NoError(t, db.Create(item).Error)
	return item
}

func TestMenuService_Categories(t *testing.T) {
	svc, db, _ := setupMenuService(t)
	ctx := context.Background()
	tn := testutil.SeedTenant(t, db, "cat")
	owner := tn.OwnerCaller()

	drinks, err := svc.CreateCategory(ctx, owner, &CreateCategoryRequest{RevenueCenterID: tn.Center.ID, Name: "Drinks", SortOrder: -1})
	require.NoError(t, err)
	assert.True(t, drinks.IsActive)

	t.Run("员工不能修改菜单", func(t *testing.T) {
		_, staff := testutil.SeedStaff(t, db, tn, "s@cat.io", models.RoleStaff, tn.Center.ID)
		_, err := svc.CreateCategory(ctx, staff, &CreateCategoryRequest{RevenueCenterID: tn.Center.ID, Name: "X"})
		assert.True(t, errors.IsKind(err, errors.KindAuthorization))

		list, total, err := svc.ListCategories(ctx, staff, &CategoryFilter{RestaurantID: tn.Restaurant.ID}, 0, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Equal(t, drinks.ID, list[0].ID)
	})

	t.Run("营业点不存在", func(t *testing.T) {
		_, err := svc.CreateCategory(ctx, owner, &CreateCategoryRequest{RevenueCenterID: 999, Name: "X"})
		assert.ErrorIs(t, err, errors.ErrRevenueCenterNotFound)
	})

	t.Run("按营业点过滤并带出菜品", func(t *testing.T) {
		list, _, err := svc.ListCategories(ctx, owner, &CategoryFilter{RestaurantID: tn.Restaurant.ID, RevenueCenterID: tn.Center.ID, WithItems: true}, 0, 10)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Len(t, list[1].Items, 1)

		other := testutil.SeedTenant(t, db, "cat-other")
		list, total, err := svc.ListCategories(ctx, owner, &CategoryFilter{RestaurantID: tn.Restaurant.ID, RevenueCenterID: other.Center.ID}, 0, 10)
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, list)
	})

	t.Run("更新", func(t *testing.T) {
		name := "Beverages"
		active := false
		updated, err := svc.UpdateCategory(ctx, owner, drinks.ID, &UpdateCategoryRequest{Name: &name, IsActive: &active})
		require.NoError(t, err)
		assert.Equal(t, "Beverages", updated.Name)
		assert.False(t, updated.IsActive)
	})

	t.Run("删除分类保留历史订单名称", func(t *testing.T) {
		orderItem := seedOrderItem(t, db, tn, &tn.MenuItem.ID, nil, tn.MenuItem.Name)

		require.NoError(t, svc.DeleteCategory(ctx, owner, tn.Category.ID))
		_, err := svc.GetCategory(ctx, owner, tn.Category.ID)
		assert.ErrorIs(t, err, errors.ErrCategoryNotFound)
		_, err = svc.GetItem(ctx, owner, tn.MenuItem.ID)
		assert.ErrorIs(t, err, errors.ErrMenuItemNotFound)

		var reloaded models.OrderItem
		require.NoError(t, db.First(&reloaded, orderItem.ID).Error)
		assert.Nil(t, reloaded.MenuItemID)
		assert.Equal(t, "Burger cat", reloaded.ItemName)
	})
}

func TestMenuService_Items(t *testing.T) {
	svc, db, _ := setupMenuService(t)
	ctx := context.Background()
	tn := testutil.SeedTenant(t, db, "items")
	other := testutil.SeedTenant(t, db, "items-other")
	owner := tn.OwnerCaller()

	fries, err := svc.CreateItem(ctx, owner, &CreateItemRequest{CategoryID: tn.Category.ID, Name: "Fries", Price: testutil.Money("4.499"), PrepTime: 5})
	require.NoError(t, err)
	assert.Equal(t, "4.5", fries.Price.String())
	assert.True(t, fries.IsAvailable)

	t.Run("价格不能为负", func(t *testing.T) {
		_, err := svc.CreateItem(ctx, owner, &CreateItemRequest{CategoryID: tn.Category.ID, Name: "Bad", Price: testutil.Money("-1")})
		assert.True(t, errors.IsKind(err, errors.KindValidation))
	})

	t.Run("其他店主不可见", func(t *testing.T) {
		_, err := svc.GetItem(ctx, other.OwnerCaller(), fries.ID)
		assert.ErrorIs(t, err, errors.ErrTenantMismatch)
		_, err = svc.CreateItem(ctx, other.OwnerCaller(), &CreateItemRequest{CategoryID: tn.Category.ID, Name: "X", Price: testutil.Money("1")})
		assert.ErrorIs(t, err, errors.ErrTenantMismatch)
	})

	t.Run("列表过滤", func(t *testing.T) {
		list, total, err := svc.ListItems(ctx, owner, &ItemFilter{RestaurantID: tn.Restaurant.ID}, 0, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, list, 2)

		list, _, err = svc.ListItems(ctx, owner, &ItemFilter{RestaurantID: tn.Restaurant.ID, Keyword: "Fri"}, 0, 10)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, fries.ID, list[0].ID)
	})

	t.Run("不能移动到其他餐厅的分类", func(t *testing.T) {
		_, err := svc.UpdateItem(ctx, testutil.AdminCaller(), fries.ID, &UpdateItemRequest{CategoryID: &other.Category.ID})
		assert.True(t, errors.IsKind(err, errors.KindReferential))
	})

	t.Run("更新价格与供应状态", func(t *testing.T) {
		price := testutil.Money("5.00")
		unavailable := false
		updated, err := svc.UpdateItem(ctx, owner, fries.ID, &UpdateItemRequest{Price: &price, IsAvailable: &unavailable})
		require.NoError(t, err)
		assert.True(t, updated.Price.Equal(testutil.Money("5")))
		assert.False(t, updated.IsAvailable)

		available := true
		list, _, err := svc.ListItems(ctx, owner, &ItemFilter{RestaurantID: tn.Restaurant.ID, IsAvailable: &available}, 0, 10)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, tn.MenuItem.ID, list[0].ID)
	})

	t.Run("删除菜品同时移出套餐", func(t *testing.T) {
		require.NoError(t, svc.DeleteItem(ctx, owner, tn.MenuItem.ID))
		combo, err := svc.GetCombo(ctx, owner, tn.Combo.ID)
		require.NoError(t, err)
		assert.Empty(t, combo.Items)
	})
}

func TestMenuService_UploadImage(t *testing.T) {
	svc, db, uploader := setupMenuService(t)
	ctx := context.Background()
	tn := testutil.SeedTenant(t, db, "img")
	png := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)

	t.Run("格式不支持", func(t *testing.T) {
		_, err := svc.UploadImage(ctx, tn.OwnerCaller(), tn.MenuItem.ID, &ImageUpload{Filename: "menu.pdf", Size: 10, Reader: bytes.NewReader(png)})
		assert.True(t, errors.IsKind(err, errors.KindValidation))
	})

	t.Run("内容不是图片", func(t *testing.T) {
		_, err := svc.UploadImage(ctx, tn.OwnerCaller(), tn.MenuItem.ID, &ImageUpload{Filename: "a.png", Size: 5, Reader: strings.NewReader("hello")})
		assert.True(t, errors.IsKind(err, errors.KindValidation))
	})

	t.Run("员工无权上传", func(t *testing.T) {
		_, staff := testutil.SeedStaff(t, db, tn, "s@img.io", models.RoleStaff, tn.Center.ID)
		_, err := svc.UploadImage(ctx, staff, tn.MenuItem.ID, &ImageUpload{Filename: "a.png", Size: int64(len(png)), Reader: bytes.NewReader(png)})
		assert.True(t, errors.IsKind(err, errors.KindAuthorization))
	})

	item, err := svc.UploadImage(ctx, tn.OwnerCaller(), tn.MenuItem.ID, &ImageUpload{Filename: "Burger.PNG", Size: int64(len(png)), Reader: bytes.NewReader(png)})
	require.NoError(t, err)
	require.NotNil(t, item.ImageURL)

	prefix := fmt.Sprintf("https://cdn.example.com/menu-items/%d/", tn.Restaurant.ID)
	assert.True(t, strings.HasPrefix(*item.ImageURL, prefix))
	assert.True(t, strings.HasSuffix(*item.ImageURL, ".png"))

	stored, ok := uploader.Get(strings.TrimPrefix(*item.ImageURL, "https://cdn.example.com/"))
	require.True(t, ok)
	assert.Equal(t, png, stored)
}
