package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/dumeirei/kitchen-pos-backend/internal/models"
)

// MenuCategoryRepository 菜单分类仓储
type MenuCategoryRepository struct {
	db *gorm.DB
}

// NewMenuCategoryRepository 创建菜单分类仓储
func NewMenuCategoryRepository(db *gorm.DB) *MenuCategoryRepository {
	return &MenuCategoryRepository{db: db}
}

// WithTx 绑定事务
func (r *MenuCategoryRepository) WithTx(tx *gorm.DB) *MenuCategoryRepository {
	return &MenuCategoryRepository{db: tx}
}

// Create 创建分类
func (r *MenuCategoryRepository) Create(ctx context.Context, category *models.MenuCategory) error {
	return r.db.WithContext(ctx).Create(category).Error
}

// GetByID 根据 ID 获取分类
func (r *MenuCategoryRepository) GetByID(ctx context.Context, id int64) (*models.MenuCategory, error) {
	var category models.MenuCategory
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// UpdateFields 更新指定字段
func (r *MenuCategoryRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.MenuCategory{}).Where("id = ?", id).Updates(fields).Error
}

// List 获取分类列表
func (r *MenuCategoryRepository) List(ctx context.Context, offset, limit int, filters map[string]interface{}) ([]*models.MenuCategory, int64, error) {
	var categories []*models.MenuCategory
	var total int64

	query := r.db.WithContext(ctx).Model(&models.MenuCategory{})
	if centerID, ok := filters["revenue_center_id"].(int64); ok && centerID > 0 {
		query = query.Where("revenue_center_id = ?", centerID)
	}
	if ids, ok := int64Slice(filters, "revenue_center_ids"); ok {
		query = query.Where("revenue_center_id IN ?", ids)
	}
	if isActive, ok := filters["is_active"].(bool); ok {
		query = query.Where("is_active = ?", isActive)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("sort_order ASC, id ASC").Offset(offset).Limit(limit)
	if withItems, ok := filters["with_items"].(bool); ok && withItems {
		query = query.Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		})
	}
	if err := query.Find(&categories).Error; err != nil {
		return nil, 0, err
	}
	return categories, total, nil
}

// DeleteCascade 删除分类及其菜品，历史订单明细中的菜品引用置空
func (r *MenuCategoryRepository) DeleteCascade(ctx context.Context, id int64) error {
	db := r.db.WithContext(ctx)
	items := db.Model(&models.MenuItem{}).Select("id").Where("category_id = ?", id)

	if err := db.Model(&models.OrderItem{}).Where("menu_item_id IN (?)", items).Update("menu_item_id", nil).Error; err != nil {
		return err
	}
	if err := db.Where("menu_item_id IN (?)", items).Delete(&models.ComboMealItem{}).Error; err != nil {
		return err
	}
	if err := db.Where("category_id = ?", id).Delete(&models.MenuItem{}).Error; err != nil {
		return err
	}
	return db.Delete(&models.MenuCategory{}, id).Error
}

// MenuItemRepository 菜品仓储
type MenuItemRepository struct {
	db *gorm.DB
}

// NewMenuItemRepository 创建菜品仓储
func NewMenuItemRepository(db *gorm.DB) *MenuItemRepository {
	return &MenuItemRepository{db: db}
}

// WithTx 绑定事务
func (r *MenuItemRepository) WithTx(tx *gorm.DB) *MenuItemRepository {
	return &MenuItemRepository{db: tx}
}

// MenuItemOwnership 菜品所属的营业点与餐厅
type MenuItemOwnership struct {
	MenuItemID      int64
	RevenueCenterID int64
	RestaurantID    int64
}

// Create 创建菜品
func (r *MenuItemRepository) Create(ctx context.Context, item *models.MenuItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// GetByID 根据 ID 获取菜品
func (r *MenuItemRepository) GetByID(ctx context.Context, id int64) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := r.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// GetOwnership 沿 菜品→分类→营业点 解析菜品所属餐厅
func (r *MenuItemRepository) GetOwnership(ctx context.Context, id int64) (*MenuItemOwnership, error) {
	var own MenuItemOwnership
	err := r.db.WithContext(ctx).
		Table("menu_items").
		Select("menu_items.id AS menu_item_id, revenue_centers.id AS revenue_center_id, revenue_centers.restaurant_id AS restaurant_id").
		Joins("JOIN menu_categories ON menu_categories.id = menu_items.category_id").
		Joins("JOIN revenue_centers ON revenue_centers.id = menu_categories.revenue_center_id").
		Where("menu_items.id = ?", id).
		Take(&own).Error
	if err != nil {
		return nil, err
	}
	return &own, nil
}

// ListByIDs 批量获取菜品
func (r *MenuItemRepository) ListByIDs(ctx context.Context, ids []int64) ([]*models.MenuItem, error) {
	var items []*models.MenuItem
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error
	return items, err
}

// UpdateFields 更新指定字段
func (r *MenuItemRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.MenuItem{}).Where("id = ?", id).Updates(fields).Error
}

// List 获取菜品列表
func (r *MenuItemRepository) List(ctx context.Context, offset, limit int, filters map[string]interface{}) ([]*models.MenuItem, int64, error) {
	var items []*models.MenuItem
	var total int64

	query := r.db.WithContext(ctx).Model(&models.MenuItem{}).
		Joins("JOIN menu_categories ON menu_categories.id = menu_items.category_id").
		Joins("JOIN revenue_centers ON revenue_centers.id = menu_categories.revenue_center_id")

	if restaurantID, ok := filters["restaurant_id"].(int64); ok && restaurantID > 0 {
		query = query.Where("revenue_centers.restaurant_id = ?", restaurantID)
	}
	if categoryID, ok := filters["category_id"].(int64); ok && categoryID > 0 {
		query = query.Where("menu_items.category_id = ?", categoryID)
	}
	if centerID, ok := filters["revenue_center_id"].(int64); ok && centerID > 0 {
		query = query.Where("menu_categories.revenue_center_id = ?", centerID)
	}
	if ids, ok := int64Slice(filters, "revenue_center_ids"); ok {
		query = query.Where("menu_categories.revenue_center_id IN ?", ids)
	}
	if available, ok := filters["is_available"].(bool); ok {
		query = query.Where("menu_items.is_available = ?", available)
	}
	if keyword, ok := filters["keyword"].(string); ok && keyword != "" {
		query = query.Where(`menu_items.name LIKE ? ESCAPE '\'`, likeContains(keyword))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Select("menu_items.*").
		Order("menu_items.id ASC").Offset(offset).Limit(limit).
		Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Delete 删除菜品，历史订单明细中的引用置空，套餐中的组成一并移除
func (r *MenuItemRepository) Delete(ctx context.Context, id int64) error {
	db := r.db.WithContext(ctx)
	if err := db.Model(&models.OrderItem{}).Where("menu_item_id = ?", id).Update("menu_item_id", nil).Error; err != nil {
		return err
	}
	if err := db.Where("menu_item_id = ?", id).Delete(&models.ComboMealItem{}).Error; err != nil {
		return err
	}
	return db.Delete(&models.MenuItem{}, id).Error
}

// ComboMealRepository 套餐仓储
type ComboMealRepository struct {
	db *gorm.DB
}

// NewComboMealRepository 创建套餐仓储
func NewComboMealRepository(db *gorm.DB) *ComboMealRepository {
	return &ComboMealRepository{db: db}
}

// WithTx 绑定事务
func (r *ComboMealRepository) WithTx(tx *gorm.DB) *ComboMealRepository {
	return &ComboMealRepository{db: tx}
}

// Create 创建套餐及其组成
func (r *ComboMealRepository) Create(ctx context.Context, combo *models.ComboMeal) error {
	return r.db.WithContext(ctx).Create(combo).Error
}

// GetByID 根据 ID 获取套餐
func (r *ComboMealRepository) GetByID(ctx context.Context, id int64) (*models.ComboMeal, error) {
	var combo models.ComboMeal
	if err := r.db.WithContext(ctx).First(&combo, id).Error; err != nil {
		return nil, err
	}
	return &combo, nil
}

// GetByIDWithItems 获取套餐及组成菜品
func (r *ComboMealRepository) GetByIDWithItems(ctx context.Context, id int64) (*models.ComboMeal, error) {
	var combo models.ComboMeal
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.MenuItem").
		First(&combo, id).Error
	if err != nil {
		return nil, err
	}
	return &combo, nil
}

// UpdateFields 更新指定字段
func (r *ComboMealRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.ComboMeal{}).Where("id = ?", id).Updates(fields).Error
}

// ReplaceItems 替换套餐组成
func (r *ComboMealRepository) ReplaceItems(ctx context.Context, comboID int64, items []models.ComboMealItem) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("combo_meal_id = ?", comboID).Delete(&models.ComboMealItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].ID = 0
		items[i].ComboMealID = comboID
	}
	return db.Create(&items).Error
}

// List 获取套餐列表
func (r *ComboMealRepository) List(ctx context.Context, offset, limit int, filters map[string]interface{}) ([]*models.ComboMeal, int64, error) {
	var combos []*models.ComboMeal
	var total int64

	query := r.db.WithContext(ctx).Model(&models.ComboMeal{})
	if restaurantID, ok := filters["restaurant_id"].(int64); ok && restaurantID > 0 {
		query = query.Where("restaurant_id = ?", restaurantID)
	}
	if available, ok := filters["is_available"].(bool); ok {
		query = query.Where("is_available = ?", available)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Preload("Items").
		Order("id ASC").Offset(offset).Limit(limit).
		Find(&combos).Error; err != nil {
		return nil, 0, err
	}
	return combos, total, nil
}

// Delete 删除套餐，历史订单明细中的引用置空
func (r *ComboMealRepository) Delete(ctx context.Context, id int64) error {
	db := r.db.WithContext(ctx)
	if err := db.Model(&models.OrderItem{}).Where("combo_meal_id = ?", id).Update("combo_meal_id", nil).Error; err != nil {
		return err
	}
	if err := db.Where("combo_meal_id = ?", id).Delete(&models.ComboMealItem{}).Error; err != nil {
		return err
	}
	return db.Delete(&models.ComboMeal{}, id).Error
}
