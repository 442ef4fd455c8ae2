// Package provision 租户开通与修复
//
// 店主记录保存在本库，登录凭证由身份提供方保存，两者之间没有分布式事务：
// 开通按 店主 → 身份账号 → 关联 的顺序执行，任何一步失败都回滚已完成的步骤；
// 仍然残留的不一致由 RepairService 修复。
package provision

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dumeirei/kitchen-pos-backend/internal/common/config"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/crypto"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/database"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/errors"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/logger"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/utils"
	"github.com/dumeirei/kitchen-pos-backend/internal/models"
	"github.com/dumeirei/kitchen-pos-backend/internal/repository"
	"github.com/dumeirei/kitchen-pos-backend/internal/service/access"
	"github.com/dumeirei/kitchen-pos-backend/internal/service/identity"
)

const defaultPasswordLength = 12

// ProvisionService 店主开通服务
type ProvisionService struct {
	db             *gorm.DB
	repos          *repository.Repositories
	authz          *access.Authorizer
	provider       identity.Provider
	passwordLength int
}

// NewProvisionService 创建开通服务
func NewProvisionService(db *gorm.DB, authz *access.Authorizer, provider identity.Provider, cfg *config.BusinessConfig) *ProvisionService {
	return &ProvisionService{
		db:             db,
		repos:          repository.New(db),
		authz:          authz,
		provider:       provider,
		passwordLength: passwordLength(cfg),
	}
}

// ProvisionRequest 开通请求
type ProvisionRequest struct {
	Email                 string          `json:"email"`
	FullName              string          `json:"full_name"`
	SubscriptionPlan      string          `json:"subscription_plan"`
	PaymentID             string          `json:"payment_id"`
	SubscriptionAmount    decimal.Decimal `json:"subscription_amount"`
	SubscriptionExpiresAt time.Time       `json:"subscription_expires_at"`
}

// ProvisionResult 开通结果，密码只返回这一次
type ProvisionResult struct {
	OwnerID  int64  `json:"owner_id"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate 校验必填字段
func (r *ProvisionRequest) Validate() error {
	var missing []string
	if strings.TrimSpace(r.Email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(r.FullName) == "" {
		missing = append(missing, "full_name")
	}
	if strings.TrimSpace(r.SubscriptionPlan) == "" {
		missing = append(missing, "subscription_plan")
	}
	if strings.TrimSpace(r.PaymentID) == "" {
		missing = append(missing, "payment_id")
	}
	if r.SubscriptionExpiresAt.IsZero() {
		missing = append(missing, "subscription_expires_at")
	}
	if len(missing) > 0 {
		return errors.Validation("缺少必填字段: %s", strings.Join(missing, ", "))
	}
	if !utils.ValidateEmail(utils.NormalizeEmail(r.Email)) {
		return errors.Validation("邮箱格式不正确")
	}
	if r.SubscriptionAmount.IsNegative() {
		return errors.Validation("订阅金额不能为负数")
	}
	return nil
}

// Provision 开通店主
//
// 已有店主记录但没有可用身份账号时，只补建账号并关联；已完整开通的店主返回冲突。
func (s *ProvisionService) Provision(ctx context.Context, caller access.Caller, req *ProvisionRequest) (*ProvisionResult, error) {
	if err := s.authz.RequirePlatformAdmin(caller); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	email := utils.NormalizeEmail(req.Email)

	existing, err := s.repos.Owner.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return s.completeExisting(ctx, existing)
	case !database.IsNotFound(err):
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	owner := &models.KitchenOwner{
		Email:                 email,
		FullName:              strings.TrimSpace(req.FullName),
		SubscriptionPlan:      strings.TrimSpace(req.SubscriptionPlan),
		PaymentID:             strings.TrimSpace(req.PaymentID),
		SubscriptionAmount:    req.SubscriptionAmount.Round(2),
		SubscriptionExpiresAt: req.SubscriptionExpiresAt,
		Status:                models.OwnerStatusActive,
	}
	if err := s.repos.Owner.Create(ctx, owner); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, errors.ErrOwnerExists
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	result, err := s.attachAccount(ctx, owner)
	if err != nil {
		if delErr := s.repos.Owner.Delete(ctx, owner.ID); delErr != nil {
			logger.Error("failed to roll back owner record",
				zap.Int64("owner_id", owner.ID),
				logger.Email(crypto.MaskEmail(email)),
				logger.Err(delErr),
			)
		}
		return nil, err
	}

	logger.Info("owner provisioned", zap.Int64("owner_id", owner.ID), logger.Email(crypto.MaskEmail(email)))
	return result, nil
}

// completeExisting 补全已有店主的身份账号
func (s *ProvisionService) completeExisting(ctx context.Context, owner *models.KitchenOwner) (*ProvisionResult, error) {
	if owner.AuthAccountID != nil {
		_, err := s.provider.GetAccount(ctx, *owner.AuthAccountID)
		if err == nil {
			return nil, errors.ErrOwnerExists
		}
		if !stderrors.Is(err, identity.ErrAccountNotFound) {
			return nil, err
		}
		logger.Warn("owner linked to missing identity account, re-creating",
			zap.Int64("owner_id", owner.ID),
			logger.AccountID(*owner.AuthAccountID),
		)
	}

	result, err := s.attachAccount(ctx, owner)
	if err != nil {
		return nil, err
	}
	logger.Info("owner identity completed", zap.Int64("owner_id", owner.ID), logger.Email(crypto.MaskEmail(owner.Email)))
	return result, nil
}

// attachAccount 创建身份账号并关联到店主，关联失败时删除账号
func (s *ProvisionService) attachAccount(ctx context.Context, owner *models.KitchenOwner) (*ProvisionResult, error) {
	password, err := crypto.GeneratePassword(s.passwordLength)
	if err != nil {
		return nil, errors.ErrInternalError.WithError(err)
	}
	account, err := s.provider.CreateAccount(ctx, owner.Email, password, models.RoleKitchenOwner)
	if err != nil {
		if stderrors.Is(err, errors.ErrAccountExists) {
			return nil, err
		}
		return nil, errors.ErrIdentityFailed.WithError(err)
	}

	if err := s.repos.Owner.LinkAccount(ctx, owner.ID, &account.ID); err != nil {
		if delErr := s.provider.DeleteAccount(ctx, account.ID); delErr != nil {
			logger.Error("failed to roll back owner identity account", logger.AccountID(account.ID), logger.Err(delErr))
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return &ProvisionResult{OwnerID: owner.ID, Email: owner.Email, Password: password}, nil
}

func passwordLength(cfg *config.BusinessConfig) int {
	if cfg == nil || cfg.PasswordLength < defaultPasswordLength {
		return defaultPasswordLength
	}
	return cfg.PasswordLength
}
