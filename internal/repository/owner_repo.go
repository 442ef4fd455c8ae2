package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/dumeirei/kitchen-pos-backend/internal/models"
)

// AuthAccountRepository 身份账号仓储
type AuthAccountRepository struct {
	db *gorm.DB
}

// NewAuthAccountRepository 创建身份账号仓储
func NewAuthAccountRepository(db *gorm.DB) *AuthAccountRepository {
	return &AuthAccountRepository{db: db}
}

// WithTx 绑定事务
func (r *AuthAccountRepository) WithTx(tx *gorm.DB) *AuthAccountRepository {
	return &AuthAccountRepository{db: tx}
}

// Create 创建账号
func (r *AuthAccountRepository) Create(ctx context.Context, account *models.AuthAccount) error {
	return r.db.WithContext(ctx).Create(account).Error
}

// GetByID 根据 ID 获取账号
func (r *AuthAccountRepository) GetByID(ctx context.Context, id int64) (*models.AuthAccount, error) {
	var account models.AuthAccount
	if err := r.db.WithContext(ctx).First(&account, id).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// GetByEmail 根据邮箱获取账号
func (r *AuthAccountRepository) GetByEmail(ctx context.Context, email string) (*models.AuthAccount, error) {
	var account models.AuthAccount
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// UpdateFields 更新指定字段
func (r *AuthAccountRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.AuthAccount{}).Where("id = ?", id).Updates(fields).Error
}

// Delete 删除账号
func (r *AuthAccountRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.AuthAccount{}, id).Error
}

// ListByRole 按角色列出账号
func (r *AuthAccountRepository) ListByRole(ctx context.Context, role string) ([]*models.AuthAccount, error) {
	var accounts []*models.AuthAccount
	err := r.db.WithContext(ctx).Where("role = ?", role).Order("id ASC").Find(&accounts).Error
	return accounts, err
}

// KitchenOwnerRepository 店主仓储
type KitchenOwnerRepository struct {
	db *gorm.DB
}

// NewKitchenOwnerRepository 创建店主仓储
func NewKitchenOwnerRepository(db *gorm.DB) *KitchenOwnerRepository {
	return &KitchenOwnerRepository{db: db}
}

// WithTx 绑定事务
func (r *KitchenOwnerRepository) WithTx(tx *gorm.DB) *KitchenOwnerRepository {
	return &KitchenOwnerRepository{db: tx}
}

// Create 创建店主
func (r *KitchenOwnerRepository) Create(ctx context.Context, owner *models.KitchenOwner) error {
	return r.db.WithContext(ctx).Create(owner).Error
}

// GetByID 根据 ID 获取店主
func (r *KitchenOwnerRepository) GetByID(ctx context.Context, id int64) (*models.KitchenOwner, error) {
	var owner models.KitchenOwner
	if err := r.db.WithContext(ctx).First(&owner, id).Error; err != nil {
		return nil, err
	}
	return &owner, nil
}

// GetByEmail 根据邮箱获取店主
func (r *KitchenOwnerRepository) GetByEmail(ctx context.Context, email string) (*models.KitchenOwner, error) {
	var owner models.KitchenOwner
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&owner).Error; err != nil {
		return nil, err
	}
	return &owner, nil
}

// GetByAuthAccountID 根据身份账号获取店主
func (r *KitchenOwnerRepository) GetByAuthAccountID(ctx context.Context, accountID int64) (*models.KitchenOwner, error) {
	var owner models.KitchenOwner
	if err := r.db.WithContext(ctx).Where("auth_account_id = ?", accountID).First(&owner).Error; err != nil {
		return nil, err
	}
	return &owner, nil
}

// LinkAccount 关联身份账号，accountID 为 nil 时解除关联
func (r *KitchenOwnerRepository) LinkAccount(ctx context.Context, ownerID int64, accountID *int64) error {
	return r.db.WithContext(ctx).Model(&models.KitchenOwner{}).
		Where("id = ?", ownerID).
		Update("auth_account_id", accountID).Error
}

// Delete 删除店主
func (r *KitchenOwnerRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.KitchenOwner{}, id).Error
}

// ListAll 列出全部店主
func (r *KitchenOwnerRepository) ListAll(ctx context.Context) ([]*models.KitchenOwner, error) {
	var owners []*models.KitchenOwner
	err := r.db.WithContext(ctx).Order("id ASC").Find(&owners).Error
	return owners, err
}

// List 分页获取店主列表
func (r *KitchenOwnerRepository) List(ctx context.Context, offset, limit int, filters map[string]interface{}) ([]*models.KitchenOwner, int64, error) {
	var owners []*models.KitchenOwner
	var total int64

	query := r.db.WithContext(ctx).Model(&models.KitchenOwner{})
	if status, ok := filters["status"].(string); ok && status != "" {
		query = query.Where("status = ?", status)
	}
	if keyword, ok := filters["keyword"].(string); ok && keyword != "" {
		query = query.Where(`email LIKE ? ESCAPE '\' OR full_name LIKE ? ESCAPE '\'`, likeContains(keyword), likeContains(keyword))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("id DESC").Offset(offset).Limit(limit).Find(&owners).Error; err != nil {
		return nil, 0, err
	}
	return owners, total, nil
}
