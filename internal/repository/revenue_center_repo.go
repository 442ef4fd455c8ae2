package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dumeirei/kitchen-pos-backend/internal/models"
)

// RevenueCenterRepository 营业点仓储
type RevenueCenterRepository struct {
	db *gorm.DB
}

// NewRevenueCenterRepository 创建营业点仓储
func NewRevenueCenterRepository(db *gorm.DB) *RevenueCenterRepository {
	return &RevenueCenterRepository{db: db}
}

// WithTx 绑定事务
func (r *RevenueCenterRepository) WithTx(tx *gorm.DB) *RevenueCenterRepository {
	return &RevenueCenterRepository{db: tx}
}

// Create 创建营业点
func (r *RevenueCenterRepository) Create(ctx context.Context, center *models.RevenueCenter) error {
	return r.db.WithContext(ctx).Create(center).Error
}

// GetByID 根据 ID 获取营业点
func (r *RevenueCenterRepository) GetByID(ctx context.Context, id int64) (*models.RevenueCenter, error) {
	var center models.RevenueCenter
	if err := r.db.WithContext(ctx).First(&center, id).Error; err != nil {
		return nil, err
	}
	return &center, nil
}

// GetByIDWithHours 获取营业点及营业时间
func (r *RevenueCenterRepository) GetByIDWithHours(ctx context.Context, id int64) (*models.RevenueCenter, error) {
	var center models.RevenueCenter
	err := r.db.WithContext(ctx).
		Preload("BusinessHours", func(db *gorm.DB) *gorm.DB {
			return db.Order("day_of_week ASC")
		}).
		First(&center, id).Error
	if err != nil {
		return nil, err
	}
	return &center, nil
}

// UpdateFields 更新指定字段
func (r *RevenueCenterRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.RevenueCenter{}).Where("id = ?", id).Updates(fields).Error
}

// List 分页获取营业点列表
func (r *RevenueCenterRepository) List(ctx context.Context, offset, limit int, filters map[string]interface{}) ([]*models.RevenueCenter, int64, error) {
	var centers []*models.RevenueCenter
	var total int64

	query := r.db.WithContext(ctx).Model(&models.RevenueCenter{})
	if restaurantID, ok := filters["restaurant_id"].(int64); ok && restaurantID > 0 {
		query = query.Where("restaurant_id = ?", restaurantID)
	}
	if ids, ok := int64Slice(filters, "ids"); ok {
		query = query.Where("id IN ?", ids)
	}
	if centerType, ok := filters["type"].(string); ok && centerType != "" {
		query = query.Where("type = ?", centerType)
	}
	if isActive, ok := filters["is_active"].(bool); ok {
		query = query.Where("is_active = ?", isActive)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("id ASC").Offset(offset).Limit(limit).Find(&centers).Error; err != nil {
		return nil, 0, err
	}
	return centers, total, nil
}

// HasOrderItems 检查营业点是否已有订单明细
func (r *RevenueCenterRepository) HasOrderItems(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.OrderItem{}).Where("revenue_center_id = ?", id).Count(&count).Error
	return count > 0, err
}

// DeleteCascade 删除营业点及其菜单、营业时间和员工分配，须在事务中调用
func (r *RevenueCenterRepository) DeleteCascade(ctx context.Context, id int64) error {
	db := r.db.WithContext(ctx)

	categories := db.Model(&models.MenuCategory{}).Select("id").Where("revenue_center_id = ?", id)
	items := db.Model(&models.MenuItem{}).Select("id").Where("category_id IN (?)", categories)

	if err := db.Model(&models.OrderItem{}).
		Where("menu_item_id IN (?)", items).
		Update("menu_item_id", nil).Error; err != nil {
		return err
	}
	if err := db.Where("menu_item_id IN (?)", items).Delete(&models.ComboMealItem{}).Error; err != nil {
		return err
	}
	if err := db.Where("category_id IN (?)", categories).Delete(&models.MenuItem{}).Error; err != nil {
		return err
	}
	if err := db.Where("revenue_center_id = ?", id).Delete(&models.MenuCategory{}).Error; err != nil {
		return err
	}
	if err := db.Where("revenue_center_id = ?", id).Delete(&models.BusinessHours{}).Error; err != nil {
		return err
	}
	if err := db.Where("revenue_center_id = ?", id).Delete(&models.StaffAssignment{}).Error; err != nil {
		return err
	}
	return db.Delete(&models.RevenueCenter{}, id).Error
}

// BusinessHoursRepository 营业时间仓储
type BusinessHoursRepository struct {
	db *gorm.DB
}

// NewBusinessHoursRepository 创建营业时间仓储
func NewBusinessHoursRepository(db *gorm.DB) *BusinessHoursRepository {
	return &BusinessHoursRepository{db: db}
}

// WithTx 绑定事务
func (r *BusinessHoursRepository) WithTx(tx *gorm.DB) *BusinessHoursRepository {
	return &BusinessHoursRepository{db: tx}
}

// Get 获取营业点某一天的营业时间
func (r *BusinessHoursRepository) Get(ctx context.Context, revenueCenterID int64, dayOfWeek int) (*models.BusinessHours, error) {
	var hours models.BusinessHours
	err := r.db.WithContext(ctx).
		Where("revenue_center_id = ? AND day_of_week = ?", revenueCenterID, dayOfWeek).
		First(&hours).Error
	if err != nil {
		return nil, err
	}
	return &hours, nil
}

// ListByCenter 获取营业点一周的营业时间
func (r *BusinessHoursRepository) ListByCenter(ctx context.Context, revenueCenterID int64) ([]*models.BusinessHours, error) {
	var hours []*models.BusinessHours
	err := r.db.WithContext(ctx).
		Where("revenue_center_id = ?", revenueCenterID).
		Order("day_of_week ASC").
		Find(&hours).Error
	return hours, err
}

// Upsert 按 (营业点, 星期) 写入营业时间
func (r *BusinessHoursRepository) Upsert(ctx context.Context, hours []*models.BusinessHours) error {
	if len(hours) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "revenue_center_id"}, {Name: "day_of_week"}},
		DoUpdates: clause.AssignmentColumns([]string{"open_time", "close_time", "is_closed", "updated_at"}),
	}).Create(&hours).Error
}

// Delete 删除营业点某一天的营业时间
func (r *BusinessHoursRepository) Delete(ctx context.Context, revenueCenterID int64, dayOfWeek int) error {
	return r.db.WithContext(ctx).
		Where("revenue_center_id = ? AND day_of_week = ?", revenueCenterID, dayOfWeek).
		Delete(&models.BusinessHours{}).Error
}
