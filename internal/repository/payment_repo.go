package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/dumeirei/kitchen-pos-backend/internal/models"
)

// PaymentRepository 支付记录仓储
type PaymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository 创建支付记录仓储
func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// WithTx 绑定事务
func (r *PaymentRepository) WithTx(tx *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: tx}
}

// Create 创建支付记录
func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

// GetByID 根据 ID 获取支付记录
func (r *PaymentRepository) GetByID(ctx context.Context, id int64) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.WithContext(ctx).First(&payment, id).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

// UpdateFields 更新指定字段
func (r *PaymentRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.Payment{}).Where("id = ?", id).Updates(fields).Error
}

// Delete 删除支付记录
func (r *PaymentRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.Payment{}, id).Error
}

// ListByOrder 获取订单的全部支付记录
func (r *PaymentRepository) ListByOrder(ctx context.Context, orderID int64) ([]*models.Payment, error) {
	var payments []*models.Payment
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id ASC").Find(&payments).Error
	return payments, err
}

// List 获取支付记录列表
func (r *PaymentRepository) List(ctx context.Context, offset, limit int, filters map[string]interface{}) ([]*models.Payment, int64, error) {
	var payments []*models.Payment
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Payment{}).
		Joins("JOIN orders ON orders.id = payments.order_id")

	if restaurantID, ok := filters["restaurant_id"].(int64); ok && restaurantID > 0 {
		query = query.Where("orders.restaurant_id = ?", restaurantID)
	}
	if orderID, ok := filters["order_id"].(int64); ok && orderID > 0 {
		query = query.Where("payments.order_id = ?", orderID)
	}
	if method, ok := filters["method"].(string); ok && method != "" {
		query = query.Where("payments.method = ?", method)
	}
	if status, ok := filters["status"].(string); ok && status != "" {
		query = query.Where("payments.status = ?", status)
	}
	if centerIDs, ok := int64Slice(filters, "revenue_center_ids"); ok {
		items := r.db.Model(&models.OrderItem{}).Select("order_id").Where("revenue_center_id IN ?", centerIDs)
		if creator, ok := filters["created_by"].(int64); ok && creator > 0 {
			query = query.Where("(orders.id IN (?) OR orders.created_by = ?)", items, creator)
		} else {
			query = query.Where("orders.id IN (?)", items)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Select("payments.*").
		Order("payments.id DESC").Offset(offset).Limit(limit).
		Find(&payments).Error; err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}
