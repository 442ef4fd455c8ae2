package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/dumeirei/kitchen-pos-backend/internal/models"
)

// RestaurantRepository 餐厅仓储
type RestaurantRepository struct {
	db *gorm.DB
}

// NewRestaurantRepository 创建餐厅仓储
func NewRestaurantRepository(db *gorm.DB) *RestaurantRepository {
	return &RestaurantRepository{db: db}
}

// WithTx 绑定事务
func (r *RestaurantRepository) WithTx(tx *gorm.DB) *RestaurantRepository {
	return &RestaurantRepository{db: tx}
}

// Create 创建餐厅
func (r *RestaurantRepository) Create(ctx context.Context, restaurant *models.Restaurant) error {
	return r.db.WithContext(ctx).Create(restaurant).Error
}

// GetByID 根据 ID 获取餐厅
func (r *RestaurantRepository) GetByID(ctx context.Context, id int64) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	if err := r.db.WithContext(ctx).First(&restaurant, id).Error; err != nil {
		return nil, err
	}
	return &restaurant, nil
}

// GetByDomain 根据域名获取餐厅
func (r *RestaurantRepository) GetByDomain(ctx context.Context, domain string) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	if err := r.db.WithContext(ctx).Where("domain = ?", domain).First(&restaurant).Error; err != nil {
		return nil, err
	}
	return &restaurant, nil
}

// ExistsByDomain 检查域名是否被占用，excludeID 为自身时忽略
func (r *RestaurantRepository) ExistsByDomain(ctx context.Context, domain string, excludeID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Restaurant{}).
		Where("domain = ? AND id <> ?", domain, excludeID).
		Count(&count).Error
	return count > 0, err
}

// UpdateFields 更新指定字段
func (r *RestaurantRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.Restaurant{}).Where("id = ?", id).Updates(fields).Error
}

// UpdateStatus 更新餐厅状态
func (r *RestaurantRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	return r.db.WithContext(ctx).Model(&models.Restaurant{}).Where("id = ?", id).Update("status", status).Error
}

// ListIDsByOwner 获取店主名下的餐厅 ID
func (r *RestaurantRepository) ListIDsByOwner(ctx context.Context, ownerID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&models.Restaurant{}).Where("owner_id = ?", ownerID).Pluck("id", &ids).Error
	return ids, err
}

// List 分页获取餐厅列表
func (r *RestaurantRepository) List(ctx context.Context, offset, limit int, filters map[string]interface{}) ([]*models.Restaurant, int64, error) {
	var restaurants []*models.Restaurant
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Restaurant{})
	if ownerID, ok := filters["owner_id"].(int64); ok && ownerID > 0 {
		query = query.Where("owner_id = ?", ownerID)
	}
	if ids, ok := int64Slice(filters, "ids"); ok {
		query = query.Where("id IN ?", ids)
	}
	if status, ok := filters["status"].(string); ok && status != "" {
		query = query.Where("status = ?", status)
	}
	if keyword, ok := filters["keyword"].(string); ok && keyword != "" {
		query = query.Where(`name LIKE ? ESCAPE '\' OR domain LIKE ? ESCAPE '\'`, likeContains(keyword), likeContains(keyword))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("id DESC").Offset(offset).Limit(limit).Find(&restaurants).Error; err != nil {
		return nil, 0, err
	}
	return restaurants, total, nil
}

// DeleteCascade 删除餐厅及其全部下属数据，须在事务中调用
func (r *RestaurantRepository) DeleteCascade(ctx context.Context, id int64) error {
	db := r.db.WithContext(ctx)

	centers := db.Model(&models.RevenueCenter{}).Select("id").Where("restaurant_id = ?", id)
	categories := db.Model(&models.MenuCategory{}).Select("id").Where("revenue_center_id IN (?)", centers)
	combos := db.Model(&models.ComboMeal{}).Select("id").Where("restaurant_id = ?", id)
	orders := db.Model(&models.Order{}).Select("id").Where("restaurant_id = ?", id)
	users := db.Model(&models.User{}).Select("id").Where("restaurant_id = ?", id)

	steps := []struct {
		model interface{}
		query string
		arg   interface{}
	}{
		{&models.Payment{}, "order_id IN (?)", orders},
		{&models.OrderItem{}, "order_id IN (?)", orders},
		{&models.Order{}, "restaurant_id = ?", id},
		{&models.OrderSequence{}, "restaurant_id = ?", id},
		{&models.Customer{}, "restaurant_id = ?", id},
		{&models.ComboMealItem{}, "combo_meal_id IN (?)", combos},
		{&models.ComboMeal{}, "restaurant_id = ?", id},
		{&models.MenuItem{}, "category_id IN (?)", categories},
		{&models.MenuCategory{}, "revenue_center_id IN (?)", centers},
		{&models.StaffAssignment{}, "user_id IN (?)", users},
		{&models.User{}, "restaurant_id = ?", id},
		{&models.BusinessHours{}, "revenue_center_id IN (?)", centers},
		{&models.RevenueCenter{}, "restaurant_id = ?", id},
	}
	for _, s := range steps {
		if err := db.Where(s.query, s.arg).Delete(s.model).Error; err != nil {
			return err
		}
	}
	return db.Delete(&models.Restaurant{}, id).Error
}
