package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dumeirei/kitchen-pos-backend/internal/models"
)

// CustomerRepository 顾客仓储
type CustomerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository 创建顾客仓储
func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// WithTx 绑定事务
func (r *CustomerRepository) WithTx(tx *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: tx}
}

// Create 创建顾客，派生统计字段始终从零开始
func (r *CustomerRepository) Create(ctx context.Context, customer *models.Customer) error {
	customer.TotalOrders = 0
	customer.TotalSpent = decimal.Zero
	customer.LastOrderAt = nil
	return r.db.WithContext(ctx).Create(customer).Error
}

// GetByID 根据 ID 获取顾客
func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).First(&customer, id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// UpdateProfile 更新顾客资料，忽略派生统计字段
func (r *CustomerRepository) UpdateProfile(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.Customer{}).
		Where("id = ?", id).
		Omit("total_orders", "total_spent", "last_order_at").
		Updates(fields).Error
}

// List 获取顾客列表
func (r *CustomerRepository) List(ctx context.Context, offset, limit int, filters map[string]interface{}) ([]*models.Customer, int64, error) {
	var customers []*models.Customer
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Customer{})
	if restaurantID, ok := filters["restaurant_id"].(int64); ok && restaurantID > 0 {
		query = query.Where("restaurant_id = ?", restaurantID)
	}
	if keyword, ok := filters["keyword"].(string); ok && keyword != "" {
		like := likeContains(keyword)
		query = query.Where(`name LIKE ? ESCAPE '\' OR email LIKE ? ESCAPE '\' OR phone LIKE ? ESCAPE '\'`, like, like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "id DESC"
	if sort, ok := filters["sort"].(string); ok && sort == "total_spent" {
		order = "total_spent DESC, id DESC"
	}
	if err := query.Order(order).Offset(offset).Limit(limit).Find(&customers).Error; err != nil {
		return nil, 0, err
	}
	return customers, total, nil
}

// Delete 删除顾客，其历史订单保留并解除关联
func (r *CustomerRepository) Delete(ctx context.Context, id int64) error {
	db := r.db.WithContext(ctx)
	if err := db.Model(&models.Order{}).Where("customer_id = ?", id).Update("customer_id", nil).Error; err != nil {
		return err
	}
	return db.Delete(&models.Customer{}, id).Error
}

// AddServedOrder 原子地累加一笔已完成订单
func (r *CustomerRepository) AddServedOrder(ctx context.Context, id int64, amount decimal.Decimal, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.Customer{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"total_orders":  gorm.Expr("total_orders + 1"),
			"total_spent":   gorm.Expr("total_spent + ?", amount),
			"last_order_at": at,
			"updated_at":    at,
		}).Error
}

// RemoveServedOrder 原子地扣回一笔已完成订单，结果不低于零；last_order_at 保持不变
func (r *CustomerRepository) RemoveServedOrder(ctx context.Context, id int64, amount decimal.Decimal, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.Customer{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"total_orders": gorm.Expr("CASE WHEN total_orders > 0 THEN total_orders - 1 ELSE 0 END"),
			"total_spent":  gorm.Expr("CASE WHEN total_spent - ? < 0 THEN 0 ELSE total_spent - ? END", amount, amount),
			"updated_at":   at,
		}).Error
}
