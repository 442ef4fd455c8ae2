// Package repository 提供数据访问层
// 所有仓储都可以通过 WithTx 绑定到事务句柄，事务内的查询不会落到其他连接上
package repository

import (
	"strings"

	"gorm.io/gorm"
)

// Repositories 仓储集合
type Repositories struct {
	db *gorm.DB

	AuthAccount     *AuthAccountRepository
	Owner           *KitchenOwnerRepository
	Restaurant      *RestaurantRepository
	RevenueCenter   *RevenueCenterRepository
	BusinessHours   *BusinessHoursRepository
	MenuCategory    *MenuCategoryRepository
	MenuItem        *MenuItemRepository
	ComboMeal       *ComboMealRepository
	Customer        *CustomerRepository
	Order           *OrderRepository
	OrderItem       *OrderItemRepository
	OrderSequence   *OrderSequenceRepository
	Payment         *PaymentRepository
	User            *UserRepository
	StaffAssignment *StaffAssignmentRepository
	Report          *ReportRepository
}

// New 创建仓储集合
func New(db *gorm.DB) *Repositories {
	return &Repositories{
		db:              db,
		AuthAccount:     NewAuthAccountRepository(db),
		Owner:           NewKitchenOwnerRepository(db),
		Restaurant:      NewRestaurantRepository(db),
		RevenueCenter:   NewRevenueCenterRepository(db),
		BusinessHours:   NewBusinessHoursRepository(db),
		MenuCategory:    NewMenuCategoryRepository(db),
		MenuItem:        NewMenuItemRepository(db),
		ComboMeal:       NewComboMealRepository(db),
		Customer:        NewCustomerRepository(db),
		Order:           NewOrderRepository(db),
		OrderItem:       NewOrderItemRepository(db),
		OrderSequence:   NewOrderSequenceRepository(db),
		Payment:         NewPaymentRepository(db),
		User:            NewUserRepository(db),
		StaffAssignment: NewStaffAssignmentRepository(db),
		Report:          NewReportRepository(db),
	}
}

// DB 返回底层连接
func (r *Repositories) DB() *gorm.DB {
	return r.db
}

// WithTx 返回绑定到事务的仓储集合
func (r *Repositories) WithTx(tx *gorm.DB) *Repositories {
	return New(tx)
}

// likeContains 构造包含匹配的 LIKE 参数，转义用户输入中的通配符
// 配合 ESCAPE '\' 使用
func likeContains(keyword string) string {
	return "%" + likeEscaper.Replace(keyword) + "%"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// int64Slice 从过滤条件中取出 ID 列表
func int64Slice(filters map[string]interface{}, key string) ([]int64, bool) {
	v, ok := filters[key].([]int64)
	return v, ok
}
