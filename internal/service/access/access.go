// Package access 实现按租户与角色的行级授权
//
// 每个领域服务方法在访问数据前调用 Authorizer，调用方身份 Caller 由请求入口显式传入。
package access

import (
	"context"
	stderrors "errors"

	"gorm.io/gorm"

	"github.com/dumeirei/kitchen-pos-backend/internal/common/errors"
	"github.com/dumeirei/kitchen-pos-backend/internal/models"
)

// Caller 调用方身份
type Caller struct {
	AccountID    int64
	Role         string
	OwnerID      int64
	RestaurantID int64
	UserID       int64
}

// IsPlatformAdmin 是否平台管理员
func (c Caller) IsPlatformAdmin() bool {
	return c.Role == models.RolePlatformAdmin
}

// IsOwner 是否店主
func (c Caller) IsOwner() bool {
	return c.Role == models.RoleKitchenOwner
}

// IsStaff 是否普通员工
func (c Caller) IsStaff() bool {
	return c.Role == models.RoleStaff
}

// Action 操作级别
type Action int

const (
	// ActionRead 读取租户数据
	ActionRead Action = iota
	// ActionOperate 日常营业操作：订单、支付、顾客
	ActionOperate
	// ActionManage 管理配置：营业点、菜单、营业时间、员工
	ActionManage
	// ActionOwn 餐厅本身的修改与删除
	ActionOwn
)

// Authorizer 授权检查
type Authorizer struct{}

// NewAuthorizer 创建授权检查器
func NewAuthorizer() *Authorizer {
	return &Authorizer{}
}

// RequirePlatformAdmin 仅平台管理员可执行
func (a *Authorizer) RequirePlatformAdmin(caller Caller) error {
	if !caller.IsPlatformAdmin() {
		return errors.ErrPermissionDenied.WithMessage("仅平台管理员可执行该操作")
	}
	return nil
}

// AuthorizeRestaurant 检查调用方能否对餐厅执行指定级别的操作
// 传入的 db 应为当前事务句柄
func (a *Authorizer) AuthorizeRestaurant(ctx context.Context, db *gorm.DB, caller Caller, restaurantID int64, action Action) error {
	if caller.IsPlatformAdmin() {
		return nil
	}
	if !roleAllows(caller.Role, action) {
		return errors.ErrPermissionDenied
	}

	switch caller.Role {
	case models.RoleKitchenOwner:
		var restaurant models.Restaurant
		err := db.WithContext(ctx).Select("id", "owner_id").First(&restaurant, restaurantID).Error
		if err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return errors.ErrRestaurantNotFound
			}
			return err
		}
		if caller.OwnerID == 0 || restaurant.OwnerID != caller.OwnerID {
			return errors.ErrTenantMismatch
		}
		return nil
	case models.RoleManager, models.RoleStaff:
		if caller.RestaurantID == 0 || caller.RestaurantID != restaurantID {
			return errors.ErrTenantMismatch
		}
		return nil
	}
	return errors.ErrPermissionDenied
}

// AuthorizeRevenueCenter 在餐厅授权的基础上，对员工额外检查营业点分配
func (a *Authorizer) AuthorizeRevenueCenter(ctx context.Context, db *gorm.DB, caller Caller, restaurantID, revenueCenterID int64, action Action) error {
	if err := a.AuthorizeRestaurant(ctx, db, caller, restaurantID, action); err != nil {
		return err
	}
	if !caller.IsStaff() {
		return nil
	}

	var count int64
	err := db.WithContext(ctx).Model(&models.StaffAssignment{}).
		Where("user_id = ? AND revenue_center_id = ?", caller.UserID, revenueCenterID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return errors.ErrCenterNotAssigned
	}
	return nil
}

// AuthorizeOrder 餐厅级授权；员工还需订单包含其营业点的明细或由其本人创建
// 支付等挂在订单下的数据同样走这里
func (a *Authorizer) AuthorizeOrder(ctx context.Context, db *gorm.DB, caller Caller, order *models.Order, action Action) error {
	if err := a.AuthorizeRestaurant(ctx, db, caller, order.RestaurantID, action); err != nil {
		return err
	}
	ids, restricted, err := a.AssignedRevenueCenters(ctx, db, caller)
	if err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}
	if !restricted {
		return nil
	}
	if order.CreatedBy != nil && *order.CreatedBy == caller.AccountID {
		return nil
	}
	if len(ids) == 0 {
		return errors.ErrCenterNotAssigned
	}

	var count int64
	err = db.WithContext(ctx).Model(&models.OrderItem{}).
		Where("order_id = ? AND revenue_center_id IN ?", order.ID, ids).
		Count(&count).Error
	if err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}
	if count == 0 {
		return errors.ErrCenterNotAssigned
	}
	return nil
}

// AssignedRevenueCenters 返回员工可见的营业点；非员工返回 restricted=false 表示不受限
func (a *Authorizer) AssignedRevenueCenters(ctx context.Context, db *gorm.DB, caller Caller) (ids []int64, restricted bool, err error) {
	if !caller.IsStaff() {
		return nil, false, nil
	}
	err = db.WithContext(ctx).Model(&models.StaffAssignment{}).
		Where("user_id = ?", caller.UserID).
		Pluck("revenue_center_id", &ids).Error
	return ids, true, err
}

func roleAllows(role string, action Action) bool {
	switch role {
	case models.RoleKitchenOwner:
		return true
	case models.RoleManager:
		return action <= ActionManage
	case models.RoleStaff:
		return action <= ActionOperate
	}
	return false
}
