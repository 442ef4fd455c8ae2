package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dumeirei/kitchen-pos-backend/internal/common/database"
	"github.com/dumeirei/kitchen-pos-backend/internal/models"
)

// OrderRepository 订单仓储
type OrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// WithTx 绑定事务
func (r *OrderRepository) WithTx(tx *gorm.DB) *OrderRepository {
	return &OrderRepository{db: tx}
}

// Create 创建订单，Items 一并写入
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// GetByID 根据 ID 获取订单
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// GetByIDForUpdate 获取订单并加行锁，须在事务中调用
func (r *OrderRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).Scopes(database.ForUpdate).First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// GetByIDWithDetails 获取订单（包含明细、支付和顾客）
func (r *OrderRepository) GetByIDWithDetails(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Preload("Customer").
		First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetByOrderNumber 根据餐厅和订单号获取订单
func (r *OrderRepository) GetByOrderNumber(ctx context.Context, restaurantID int64, orderNumber string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("restaurant_id = ? AND order_number = ?", restaurantID, orderNumber).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateStatus 更新订单状态与更新时间，并同步到 order
func (r *OrderRepository) UpdateStatus(ctx context.Context, order *models.Order, status string, at time.Time) error {
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", order.ID).
		UpdateColumns(map[string]interface{}{"status": status, "updated_at": at}).Error
	if err != nil {
		return err
	}
	order.Status = status
	order.UpdatedAt = at
	return nil
}

// UpdateFields 更新指定字段
func (r *OrderRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(fields).Error
}

// CountByBusinessDate 统计餐厅某营业日的订单数
func (r *OrderRepository) CountByBusinessDate(ctx context.Context, restaurantID int64, businessDate string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("restaurant_id = ? AND business_date = ?", restaurantID, businessDate).
		Count(&count).Error
	return count, err
}

// ListNumbersByBusinessDate 获取餐厅某营业日的全部订单号
func (r *OrderRepository) ListNumbersByBusinessDate(ctx context.Context, restaurantID int64, businessDate string) ([]string, error) {
	var numbers []string
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("restaurant_id = ? AND business_date = ?", restaurantID, businessDate).
		Pluck("order_number", &numbers).Error
	return numbers, err
}

// List 获取订单列表
func (r *OrderRepository) List(ctx context.Context, offset, limit int, filters map[string]interface{}) ([]*models.Order, int64, error) {
	var orders []*models.Order
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Order{})

	if restaurantID, ok := filters["restaurant_id"].(int64); ok && restaurantID > 0 {
		query = query.Where("restaurant_id = ?", restaurantID)
	}
	if customerID, ok := filters["customer_id"].(int64); ok && customerID > 0 {
		query = query.Where("customer_id = ?", customerID)
	}
	if status, ok := filters["status"].(string); ok && status != "" {
		query = query.Where("status = ?", status)
	}
	if orderType, ok := filters["type"].(string); ok && orderType != "" {
		query = query.Where("type = ?", orderType)
	}
	if orderNumber, ok := filters["order_number"].(string); ok && orderNumber != "" {
		query = query.Where(`order_number LIKE ? ESCAPE '\'`, likeContains(orderNumber))
	}
	if startDate, ok := filters["start_date"].(string); ok && startDate != "" {
		query = query.Where("business_date >= ?", startDate)
	}
	if endDate, ok := filters["end_date"].(string); ok && endDate != "" {
		query = query.Where("business_date <= ?", endDate)
	}
	if centerIDs, ok := int64Slice(filters, "revenue_center_ids"); ok {
		items := r.db.Model(&models.OrderItem{}).Select("order_id").Where("revenue_center_id IN ?", centerIDs)
		if creator, ok := filters["created_by"].(int64); ok && creator > 0 {
			query = query.Where("(id IN (?) OR created_by = ?)", items, creator)
		} else {
			query = query.Where("id IN (?)", items)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Preload("Items").
		Order("id DESC").Offset(offset).Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// DeleteCascade 删除订单及其明细和支付
func (r *OrderRepository) DeleteCascade(ctx context.Context, id int64) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("order_id = ?", id).Delete(&models.Payment{}).Error; err != nil {
		return err
	}
	if err := db.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
		return err
	}
	return db.Delete(&models.Order{}, id).Error
}

// OrderItemRepository 订单明细仓储
type OrderItemRepository struct {
	db *gorm.DB
}

// NewOrderItemRepository 创建订单明细仓储
func NewOrderItemRepository(db *gorm.DB) *OrderItemRepository {
	return &OrderItemRepository{db: db}
}

// WithTx 绑定事务
func (r *OrderItemRepository) WithTx(tx *gorm.DB) *OrderItemRepository {
	return &OrderItemRepository{db: tx}
}

// Create 创建订单明细
func (r *OrderItemRepository) Create(ctx context.Context, item *models.OrderItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// GetByID 根据 ID 获取订单明细
func (r *OrderItemRepository) GetByID(ctx context.Context, id int64) (*models.OrderItem, error) {
	var item models.OrderItem
	if err := r.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// Save 保存订单明细
func (r *OrderItemRepository) Save(ctx context.Context, item *models.OrderItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// Delete 删除订单明细
func (r *OrderItemRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.OrderItem{}, id).Error
}

// ListByOrder 获取订单的全部明细
func (r *OrderItemRepository) ListByOrder(ctx context.Context, orderID int64) ([]*models.OrderItem, error) {
	var items []*models.OrderItem
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id ASC").Find(&items).Error
	return items, err
}

// OrderSequenceRepository 订单号序列仓储
type OrderSequenceRepository struct {
	db *gorm.DB
}

// NewOrderSequenceRepository 创建订单号序列仓储
func NewOrderSequenceRepository(db *gorm.DB) *OrderSequenceRepository {
	return &OrderSequenceRepository{db: db}
}

// WithTx 绑定事务
func (r *OrderSequenceRepository) WithTx(tx *gorm.DB) *OrderSequenceRepository {
	return &OrderSequenceRepository{db: tx}
}

// Next 分配餐厅某营业日的下一个序号，须在事务中调用
// 序列行首次使用时以 seed（当日已有订单数）为初值，之后取 max(last_value, seed)+1；
// 自增语句持有行锁直到事务提交
func (r *OrderSequenceRepository) Next(ctx context.Context, restaurantID int64, businessDate string, seed int64) (int, error) {
	db := r.db.WithContext(ctx)

	seq := models.OrderSequence{
		RestaurantID: restaurantID,
		BusinessDate: businessDate,
		LastValue:    int(seed),
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&seq).Error; err != nil {
		return 0, err
	}

	res := db.Model(&models.OrderSequence{}).
		Where("restaurant_id = ? AND business_date = ?", restaurantID, businessDate).
		UpdateColumn("last_value", gorm.Expr("CASE WHEN last_value < ? THEN ? ELSE last_value END + 1", seed, seed))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}

	var current models.OrderSequence
	if err := db.Where("restaurant_id = ? AND business_date = ?", restaurantID, businessDate).
		First(&current).Error; err != nil {
		return 0, err
	}
	return current.LastValue, nil
}
