// Package testutil 提供测试数据库与测试数据构造
package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dumeirei/kitchen-pos-backend/internal/models"
	"github.com/dumeirei/kitchen-pos-backend/internal/service/access"
)

// NewTestDB 为当前测试创建独立的内存 SQLite 数据库并完成迁移
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, models.AutoMigrate(db))
	return db
}

// Money 由字符串构造金额
func Money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Tenant 一个完整租户的测试数据
type Tenant struct {
	Owner      *models.KitchenOwner
	Restaurant *models.Restaurant
	Center     *models.RevenueCenter
	Category   *models.MenuCategory
	MenuItem   *models.MenuItem
	Combo      *models.ComboMeal
	Customer   *models.Customer
}

// OwnerCaller 返回该租户店主身份
func (tn *Tenant) OwnerCaller() access.Caller {
	return access.Caller{AccountID: tn.Owner.ID + 1000, Role: models.RoleKitchenOwner, OwnerID: tn.Owner.ID}
}

// AdminCaller 平台管理员身份
func AdminCaller() access.Caller {
	return access.Caller{AccountID: 1, Role: models.RolePlatformAdmin}
}

// SeedTenant 创建店主、餐厅、营业点、分类、菜品、套餐与顾客
func SeedTenant(t *testing.T, db *gorm.DB, slug string) *Tenant {
	t.Helper()

	owner := &models.KitchenOwner{
		Email:                 slug + "@example.com",
		FullName:              "Owner " + slug,
		SubscriptionPlan:      "basic",
		PaymentID:             "pay_" + slug,
		SubscriptionAmount:    Money("99.00"),
		SubscriptionExpiresAt: time.Now().AddDate(1, 0, 0),
		Status:                models.OwnerStatusActive,
	}
	require.NoError(t, db.Create(owner).Error)

	restaurant := &models.Restaurant{
		OwnerID: owner.ID,
		Name:    "Restaurant " + slug,
		Domain:  slug,
		Status:  models.RestaurantStatusActive,
	}
	require.NoError(t, db.Create(restaurant).Error)

	center := &models.RevenueCenter{
		RestaurantID: restaurant.ID,
		Name:         "Main floor",
		Type:         models.RevenueCenterTypeRestaurant,
		IsActive:     true,
	}
	require.NoError(t, db.Create(center).Error)

	category := &models.MenuCategory{
		RevenueCenterID: center.ID,
		Name:            "Mains",
		IsActive:        true,
	}
	require.NoError(t, db.Create(category).Error)

	item := &models.MenuItem{
		CategoryID:  category.ID,
		Name:        "Burger " + slug,
		Price:       Money("12.50"),
		IsAvailable: true,
		PrepTime:    10,
	}
	require.NoError(t, db.Create(item).Error)

	combo := &models.ComboMeal{
		RestaurantID: restaurant.ID,
		Name:         "Lunch combo " + slug,
		Price:        Money("18.00"),
		IsAvailable:  true,
	}
	require.NoError(t, db.Create(combo).Error)
	require.NoError(t, db.Create(&models.ComboMealItem{ComboMealID: combo.ID, MenuItemID: item.ID, Quantity: 1}).Error)

	name := "Customer " + slug
	customer := &models.Customer{
		RestaurantID: restaurant.ID,
		Name:         &name,
		TotalSpent:   decimal.Zero,
	}
	require.NoError(t, db.Create(customer).Error)

	return &Tenant{
		Owner:      owner,
		Restaurant: restaurant,
		Center:     center,
		Category:   category,
		MenuItem:   item,
		Combo:      combo,
		Customer:   customer,
	}
}

// SeedStaff 在租户下创建员工并分配到指定营业点
func SeedStaff(t *testing.T, db *gorm.DB, tn *Tenant, email, role string, centerIDs ...int64) (*models.User, access.Caller) {
	t.Helper()

	user := &models.User{
		RestaurantID: tn.Restaurant.ID,
		Email:        email,
		FullName:     "Staff " + email,
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)
	for _, id := range centerIDs {
		require.NoError(t, db.Create(&models.StaffAssignment{UserID: user.ID, RevenueCenterID: id}).Error)
	}

	return user, access.Caller{
		AccountID:    user.ID + 5000,
		Role:         role,
		RestaurantID: tn.Restaurant.ID,
		UserID:       user.ID,
	}
}
