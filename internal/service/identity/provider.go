// Package identity 身份账号提供方
//
// 业务层只依赖 Provider 接口；本地实现把账号保存在 auth_accounts 表，密码使用 bcrypt。
package identity

import (
	"context"
	"time"

	"github.com/dumeirei/kitchen-pos-backend/internal/common/crypto"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/database"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/errors"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/utils"
	"github.com/dumeirei/kitchen-pos-backend/internal/models"
	"github.com/dumeirei/kitchen-pos-backend/internal/repository"
)

// ErrAccountNotFound 身份账号不存在
var ErrAccountNotFound = errors.NotFound("身份账号不存在")

// Provider 身份账号提供方
type Provider interface {
	CreateAccount(ctx context.Context, email, password, role string) (*models.AuthAccount, error)
	GetAccount(ctx context.Context, id int64) (*models.AuthAccount, error)
	GetAccountByEmail(ctx context.Context, email string) (*models.AuthAccount, error)
	DeleteAccount(ctx context.Context, id int64) error
	SetPassword(ctx context.Context, id int64, password string) error
	Authenticate(ctx context.Context, email, password string) (*models.AuthAccount, error)
}

// LocalProvider 基于数据库的身份账号实现
type LocalProvider struct {
	repo *repository.AuthAccountRepository
	now  func() time.Time
}

// NewLocalProvider 创建本地身份提供方
func NewLocalProvider(repo *repository.AuthAccountRepository) *LocalProvider {
	return &LocalProvider{repo: repo, now: time.Now}
}

// CreateAccount 创建账号
func (p *LocalProvider) CreateAccount(ctx context.Context, email, password, role string) (*models.AuthAccount, error) {
	email = utils.NormalizeEmail(email)
	if !utils.ValidateEmail(email) {
		return nil, errors.Validation("邮箱格式不正确")
	}
	if password == "" {
		return nil, errors.Validation("密码不能为空")
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return nil, errors.ErrIdentityFailed.WithError(err)
	}

	account := &models.AuthAccount{
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	if err := p.repo.Create(ctx, account); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, errors.ErrAccountExists
		}
		return nil, errors.ErrIdentityFailed.WithError(err)
	}
	return account, nil
}

// GetAccount 根据 ID 获取账号
func (p *LocalProvider) GetAccount(ctx context.Context, id int64) (*models.AuthAccount, error) {
	account, err := p.repo.GetByID(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, ErrAccountNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return account, nil
}

// GetAccountByEmail 根据邮箱获取账号
func (p *LocalProvider) GetAccountByEmail(ctx context.Context, email string) (*models.AuthAccount, error) {
	account, err := p.repo.GetByEmail(ctx, utils.NormalizeEmail(email))
	if err != nil {
		if database.IsNotFound(err) {
			return nil, ErrAccountNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return account, nil
}

// DeleteAccount 删除账号，账号不存在时视为成功
func (p *LocalProvider) DeleteAccount(ctx context.Context, id int64) error {
	if err := p.repo.Delete(ctx, id); err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}
	return nil
}

// SetPassword 重置密码
func (p *LocalProvider) SetPassword(ctx context.Context, id int64, password string) error {
	if password == "" {
		return errors.Validation("密码不能为空")
	}
	if _, err := p.GetAccount(ctx, id); err != nil {
		return err
	}
	hash, err := crypto.HashPassword(password)
	if err != nil {
		return errors.ErrIdentityFailed.WithError(err)
	}
	if err := p.repo.UpdateFields(ctx, id, map[string]interface{}{"password_hash": hash}); err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}
	return nil
}

// Authenticate 校验邮箱密码并记录登录时间
func (p *LocalProvider) Authenticate(ctx context.Context, email, password string) (*models.AuthAccount, error) {
	account, err := p.repo.GetByEmail(ctx, utils.NormalizeEmail(email))
	if err != nil {
		if database.IsNotFound(err) {
			return nil, errors.ErrPasswordError
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if !crypto.VerifyPassword(password, account.PasswordHash) {
		return nil, errors.ErrPasswordError
	}
	if !account.IsActive {
		return nil, errors.ErrAccountDisabled
	}

	now := p.now()
	if err := p.repo.UpdateFields(ctx, account.ID, map[string]interface{}{"last_login_at": now}); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	account.LastLoginAt = &now
	return account, nil
}
