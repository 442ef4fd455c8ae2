package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/dumeirei/kitchen-pos-backend/internal/models"
)

// UserRepository 员工仓储
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建员工仓储
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// WithTx 绑定事务
func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{db: tx}
}

// Create 创建员工
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetByID 根据 ID 获取员工（包含营业点分配）
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Preload("Assignments").First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByAuthAccountID 根据身份账号获取员工
func (r *UserRepository) GetByAuthAccountID(ctx context.Context, accountID int64) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("auth_account_id = ?", accountID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ExistsByEmail 检查邮箱是否已被使用
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

// UpdateFields 更新指定字段
func (r *UserRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields).Error
}

// List 获取员工列表
func (r *UserRepository) List(ctx context.Context, offset, limit int, filters map[string]interface{}) ([]*models.User, int64, error) {
	var users []*models.User
	var total int64

	query := r.db.WithContext(ctx).Model(&models.User{})
	if restaurantID, ok := filters["restaurant_id"].(int64); ok && restaurantID > 0 {
		query = query.Where("restaurant_id = ?", restaurantID)
	}
	if role, ok := filters["role"].(string); ok && role != "" {
		query = query.Where("role = ?", role)
	}
	if isActive, ok := filters["is_active"].(bool); ok {
		query = query.Where("is_active = ?", isActive)
	}
	if keyword, ok := filters["keyword"].(string); ok && keyword != "" {
		query = query.Where(`email LIKE ? ESCAPE '\' OR full_name LIKE ? ESCAPE '\'`, likeContains(keyword), likeContains(keyword))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Preload("Assignments").
		Order("id ASC").Offset(offset).Limit(limit).
		Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// ListAuthAccountIDsByRestaurant 获取餐厅员工关联的身份账号
func (r *UserRepository) ListAuthAccountIDsByRestaurant(ctx context.Context, restaurantID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("restaurant_id = ? AND auth_account_id IS NOT NULL", restaurantID).
		Pluck("auth_account_id", &ids).Error
	return ids, err
}

// Delete 删除员工及其营业点分配
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("user_id = ?", id).Delete(&models.StaffAssignment{}).Error; err != nil {
		return err
	}
	return db.Delete(&models.User{}, id).Error
}

// StaffAssignmentRepository 员工营业点分配仓储
type StaffAssignmentRepository struct {
	db *gorm.DB
}

// NewStaffAssignmentRepository 创建员工营业点分配仓储
func NewStaffAssignmentRepository(db *gorm.DB) *StaffAssignmentRepository {
	return &StaffAssignmentRepository{db: db}
}

// WithTx 绑定事务
func (r *StaffAssignmentRepository) WithTx(tx *gorm.DB) *StaffAssignmentRepository {
	return &StaffAssignmentRepository{db: tx}
}

// Create 创建分配
func (r *StaffAssignmentRepository) Create(ctx context.Context, assignment *models.StaffAssignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

// Exists 检查分配是否存在
func (r *StaffAssignmentRepository) Exists(ctx context.Context, userID, revenueCenterID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.StaffAssignment{}).
		Where("user_id = ? AND revenue_center_id = ?", userID, revenueCenterID).
		Count(&count).Error
	return count > 0, err
}

// Delete 删除分配，返回是否删除了记录
func (r *StaffAssignmentRepository) Delete(ctx context.Context, userID, revenueCenterID int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND revenue_center_id = ?", userID, revenueCenterID).
		Delete(&models.StaffAssignment{})
	return res.RowsAffected > 0, res.Error
}

// ListCenterIDsByUser 获取员工被分配的营业点
func (r *StaffAssignmentRepository) ListCenterIDsByUser(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&models.StaffAssignment{}).
		Where("user_id = ?", userID).
		Order("revenue_center_id ASC").
		Pluck("revenue_center_id", &ids).Error
	return ids, err
}
