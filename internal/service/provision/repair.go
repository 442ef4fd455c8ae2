package provision

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

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
	"github.com/dumeirei/kitchen-pos-backend/internal/service/identity"
)

// 修复动作
const (
	ActionNone            = "none"
	ActionLinked          = "linked"
	ActionAccountCreated  = "account_created"
	ActionAccountReplaced = "account_replaced"
	ActionOwnerCreated    = "owner_created"
	ActionFailed          = "failed"
)

// 由账号补建店主时使用的订阅占位值
const (
	repairedPlan      = "unassigned"
	repairedPaymentID = "repair"
)

// RepairResult 单个店主的修复结果；新建账号时返回初始密码
type RepairResult struct {
	Email     string `json:"email"`
	OwnerID   int64  `json:"owner_id,omitempty"`
	AccountID int64  `json:"account_id,omitempty"`
	Action    string `json:"action"`
	Password  string `json:"password,omitempty"`
	Error     string `json:"error,omitempty"`
}

// RepairService 修复店主记录与身份账号之间的不一致
type RepairService struct {
	repos          *repository.Repositories
	provider       identity.Provider
	passwordLength int
	now            func() time.Time
}

// NewRepairService 创建修复服务
func NewRepairService(db *gorm.DB, provider identity.Provider, cfg *config.BusinessConfig) *RepairService {
	return &RepairService{
		repos:          repository.New(db),
		provider:       provider,
		passwordLength: passwordLength(cfg),
		now:            time.Now,
	}
}

// ReconcileOwner 修复单个邮箱
//
//   - 店主没有账号：同邮箱已有店主账号则关联，否则新建账号并关联
//   - 店主关联的账号已不存在：同上，动作记为 account_replaced
//   - 只有店主账号没有店主：补建店主记录并关联
//
// 重复执行不会产生新的变更。
func (s *RepairService) ReconcileOwner(ctx context.Context, email string) (*RepairResult, error) {
	email = utils.NormalizeEmail(email)
	if !utils.ValidateEmail(email) {
		return nil, errors.Validation("邮箱格式不正确")
	}
	result := &RepairResult{Email: email, Action: ActionNone}

	owner, err := s.repos.Owner.GetByEmail(ctx, email)
	if err != nil && !database.IsNotFound(err) {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if err != nil {
		owner = nil
	}
	account, err := s.provider.GetAccountByEmail(ctx, email)
	if err != nil && !stderrors.Is(err, identity.ErrAccountNotFound) {
		return nil, err
	}
	if err != nil {
		account = nil
	}

	if owner == nil {
		if account == nil {
			return nil, errors.ErrOwnerNotFound
		}
		if account.Role != models.RoleKitchenOwner {
			return nil, errors.Validation("账号 %s 的角色是 %s，不是店主", crypto.MaskEmail(email), account.Role)
		}
		return s.createOwnerFor(ctx, account)
	}
	result.OwnerID = owner.ID

	if owner.AuthAccountID != nil {
		if _, err := s.provider.GetAccount(ctx, *owner.AuthAccountID); err == nil {
			result.AccountID = *owner.AuthAccountID
			return result, nil
		} else if !stderrors.Is(err, identity.ErrAccountNotFound) {
			return nil, err
		}
		result.Action = ActionAccountReplaced
	}

	if account != nil {
		if account.Role != models.RoleKitchenOwner {
			return nil, errors.Validation("账号 %s 的角色是 %s，不是店主", crypto.MaskEmail(email), account.Role)
		}
		if err := s.repos.Owner.LinkAccount(ctx, owner.ID, &account.ID); err != nil {
			return nil, errors.ErrDatabaseError.WithError(err)
		}
		if result.Action == ActionNone {
			result.Action = ActionLinked
		}
		result.AccountID = account.ID
		s.logRepair(result)
		return result, nil
	}

	password, err := crypto.GeneratePassword(s.passwordLength)
	if err != nil {
		return nil, errors.ErrInternalError.WithError(err)
	}
	created, err := s.provider.CreateAccount(ctx, email, password, models.RoleKitchenOwner)
	if err != nil {
		return nil, err
	}
	if err := s.repos.Owner.LinkAccount(ctx, owner.ID, &created.ID); err != nil {
		if delErr := s.provider.DeleteAccount(ctx, created.ID); delErr != nil {
			logger.Error("failed to roll back repaired identity account", logger.AccountID(created.ID), logger.Err(delErr))
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if result.Action == ActionNone {
		result.Action = ActionAccountCreated
	}
	result.AccountID = created.ID
	result.Password = password
	s.logRepair(result)
	return result, nil
}

// ReconcileAll 修复全部店主与店主账号，单个失败记录在结果中不中断
func (s *RepairService) ReconcileAll(ctx context.Context) ([]*RepairResult, error) {
	owners, err := s.repos.Owner.ListAll(ctx)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	accounts, err := s.repos.AuthAccount.ListByRole(ctx, models.RoleKitchenOwner)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	emails := make([]string, 0, len(owners)+len(accounts))
	for _, o := range owners {
		emails = append(emails, utils.NormalizeEmail(o.Email))
	}
	for _, a := range accounts {
		emails = append(emails, utils.NormalizeEmail(a.Email))
	}

	results := make([]*RepairResult, 0, len(emails))
	for _, email := range utils.Unique(emails) {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := s.ReconcileOwner(ctx, email)
		if err != nil {
			results = append(results, &RepairResult{Email: email, Action: ActionFailed, Error: err.Error()})
			logger.Warn("owner repair failed", logger.Email(crypto.MaskEmail(email)), logger.Err(err))
			continue
		}
		results = append(results, res)
	}
	return results, nil
}

func (s *RepairService) createOwnerFor(ctx context.Context, account *models.AuthAccount) (*RepairResult, error) {
	name := account.Email
	if at := strings.IndexByte(name, '@'); at > 0 {
		name = name[:at]
	}
	owner := &models.KitchenOwner{
		AuthAccountID:         &account.ID,
		Email:                 account.Email,
		FullName:              name,
		SubscriptionPlan:      repairedPlan,
		PaymentID:             repairedPaymentID,
		SubscriptionExpiresAt: s.now(),
		Status:                models.OwnerStatusActive,
	}
	if err := s.repos.Owner.Create(ctx, owner); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, errors.ErrOwnerExists
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	result := &RepairResult{Email: account.Email, OwnerID: owner.ID, AccountID: account.ID, Action: ActionOwnerCreated}
	s.logRepair(result)
	return result, nil
}

func (s *RepairService) logRepair(r *RepairResult) {
	logger.Info("owner repaired",
		logger.Email(crypto.MaskEmail(r.Email)),
		zap.Int64("owner_id", r.OwnerID),
		logger.AccountID(r.AccountID),
		logger.Action(r.Action),
	)
}
