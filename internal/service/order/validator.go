package order

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/dumeirei/kitchen-pos-backend/internal/common/database"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/errors"
	"github.com/dumeirei/kitchen-pos-backend/internal/models"
	"github.com/dumeirei/kitchen-pos-backend/internal/repository"
)

// ItemInput 订单明细输入
type ItemInput struct {
	MenuItemID      *int64  `json:"menu_item_id"`
	ComboMealID     *int64  `json:"combo_meal_id"`
	RevenueCenterID int64   `json:"revenue_center_id"` // 菜品可省略，默认取菜品所在营业点；套餐必填
	Quantity        int     `json:"quantity"`
	Status          string  `json:"status"`
	Notes           *string `json:"notes"`
}

// ValidateItemShape 校验明细自身的结构：菜品与套餐二选一、数量为正、状态合法
func ValidateItemShape(menuItemID, comboMealID *int64, quantity int, status string) error {
	hasItem := menuItemID != nil && *menuItemID > 0
	hasCombo := comboMealID != nil && *comboMealID > 0
	if hasItem == hasCombo {
		return errors.ErrOrderItemRefInvalid
	}
	if quantity <= 0 {
		return errors.ErrOrderItemQuantity
	}
	if !models.IsValidOrderItemStatus(status) {
		return errors.ErrOrderItemStatus
	}
	return nil
}

// itemSnapshot 下单时解析出的引用信息
type itemSnapshot struct {
	RevenueCenterID int64
	Name            string
	UnitPrice       decimal.Decimal
}

// ItemValidator 订单明细校验器，检查引用存在且与订单属于同一餐厅
type ItemValidator struct{}

// Resolve 校验明细并返回名称与单价快照，须在写事务中调用
func (v *ItemValidator) Resolve(ctx context.Context, r *repository.Repositories, restaurantID int64, in *ItemInput) (*itemSnapshot, error) {
	if in.Status == "" {
		in.Status = models.OrderStatusPending
	}
	if err := ValidateItemShape(in.MenuItemID, in.ComboMealID, in.Quantity, in.Status); err != nil {
		return nil, err
	}

	if in.MenuItemID != nil && *in.MenuItemID > 0 {
		return v.resolveMenuItem(ctx, r, restaurantID, *in.MenuItemID, in.RevenueCenterID)
	}
	return v.resolveCombo(ctx, r, restaurantID, *in.ComboMealID, in.RevenueCenterID)
}

func (v *ItemValidator) resolveMenuItem(ctx context.Context, r *repository.Repositories, restaurantID, menuItemID, centerID int64) (*itemSnapshot, error) {
	owner, err := r.MenuItem.GetOwnership(ctx, menuItemID)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, errors.ErrOrderItemRefMissing.WithMessagef("菜品 %d 不存在", menuItemID)
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if owner.RestaurantID != restaurantID {
		return nil, errors.ErrOrderItemCrossTenant.WithMessagef("菜品 %d 不属于该餐厅", menuItemID)
	}

	if centerID == 0 {
		centerID = owner.RevenueCenterID
	} else if err := v.checkCenter(ctx, r, restaurantID, centerID); err != nil {
		return nil, err
	}

	item, err := r.MenuItem.GetByID(ctx, menuItemID)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return &itemSnapshot{RevenueCenterID: centerID, Name: item.Name, UnitPrice: item.Price}, nil
}

func (v *ItemValidator) resolveCombo(ctx context.Context, r *repository.Repositories, restaurantID, comboID, centerID int64) (*itemSnapshot, error) {
	combo, err := r.ComboMeal.GetByID(ctx, comboID)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, errors.ErrOrderItemRefMissing.WithMessagef("套餐 %d 不存在", comboID)
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if combo.RestaurantID != restaurantID {
		return nil, errors.ErrOrderItemCrossTenant.WithMessagef("套餐 %d 不属于该餐厅", comboID)
	}
	if centerID == 0 {
		return nil, errors.Validation("套餐明细必须指定营业点")
	}
	if err := v.checkCenter(ctx, r, restaurantID, centerID); err != nil {
		return nil, err
	}
	return &itemSnapshot{RevenueCenterID: centerID, Name: combo.Name, UnitPrice: combo.Price}, nil
}

func (v *ItemValidator) checkCenter(ctx context.Context, r *repository.Repositories, restaurantID, centerID int64) error {
	center, err := r.RevenueCenter.GetByID(ctx, centerID)
	if err != nil {
		if database.IsNotFound(err) {
			return errors.ErrOrderItemRefMissing.WithMessagef("营业点 %d 不存在", centerID)
		}
		return errors.ErrDatabaseError.WithError(err)
	}
	if center.RestaurantID != restaurantID {
		return errors.ErrOrderItemCrossTenant.WithMessagef("营业点 %d 不属于该餐厅", centerID)
	}
	return nil
}
