// Package staff 员工管理服务
//
// 员工与经理在本库保存资料，登录凭证由身份提供方保存。创建员工先开通身份账号，
// 落库失败时删除该账号；删除员工在事务提交后清理身份账号。
package staff

import (
	"context"
	"strings"

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

// StaffService 员工服务
type StaffService struct {
	db             *gorm.DB
	repos          *repository.Repositories
	authz          *access.Authorizer
	provider       identity.Provider
	passwordLength int
}

// NewStaffService 创建员工服务
func NewStaffService(db *gorm.DB, authz *access.Authorizer, provider identity.Provider, cfg *config.BusinessConfig) *StaffService {
	length := cfg.PasswordLength
	if length < defaultPasswordLength {
		length = defaultPasswordLength
	}
	return &StaffService{
		db:             db,
		repos:          repository.New(db),
		authz:          authz,
		provider:       provider,
		passwordLength: length,
	}
}

// CreateStaffRequest 创建员工请求
type CreateStaffRequest struct {
	RestaurantID     int64   `json:"restaurant_id" binding:"required"`
	Email            string  `json:"email" binding:"required"`
	FullName         string  `json:"full_name" binding:"required,max=100"`
	Role             string  `json:"role" binding:"required"`
	RevenueCenterIDs []int64 `json:"revenue_center_ids"`
}

// UpdateStaffRequest 更新员工请求
type UpdateStaffRequest struct {
	FullName *string `json:"full_name" binding:"omitempty,max=100"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
}

// StaffFilter 员工过滤条件
type StaffFilter struct {
	RestaurantID int64
	Role         string
	IsActive     *bool
	Keyword      string
}

// Credentials 新开通账号的初始凭证，只在创建或重置时返回一次
type Credentials struct {
	User     *models.User `json:"user"`
	Email    string       `json:"email"`
	Password string       `json:"password"`
}

// CreateStaff 创建员工并开通身份账号
func (s *StaffService) CreateStaff(ctx context.Context, caller access.Caller, req *CreateStaffRequest) (*Credentials, error) {
	email := utils.NormalizeEmail(req.Email)
	if !utils.ValidateEmail(email) {
		return nil, errors.Validation("邮箱格式不正确")
	}
	if err := checkRole(caller, req.Role); err != nil {
		return nil, err
	}
	if err := s.authz.AuthorizeRestaurant(ctx, s.db, caller, req.RestaurantID, access.ActionManage); err != nil {
		return nil, err
	}
	centerIDs := utils.Unique(req.RevenueCenterIDs)
	if err := s.checkCenters(ctx, s.repos, req.RestaurantID, centerIDs); err != nil {
		return nil, err
	}
	exists, err := s.repos.User.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if exists {
		return nil, errors.ErrAccountExists.WithMessage("该邮箱已是员工")
	}

	password, err := crypto.GeneratePassword(s.passwordLength)
	if err != nil {
		return nil, errors.ErrInternalError.WithError(err)
	}
	account, err := s.provider.CreateAccount(ctx, email, password, req.Role)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		RestaurantID:  req.RestaurantID,
		AuthAccountID: &account.ID,
		Email:         email,
		FullName:      strings.TrimSpace(req.FullName),
		Role:          req.Role,
		IsActive:      true,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repository.New(tx)
		if err := r.User.Create(ctx, user); err != nil {
			if database.IsUniqueViolation(err) {
				return errors.ErrAccountExists.WithMessage("该邮箱已是员工")
			}
			return errors.ErrDatabaseError.WithError(err)
		}
		for _, centerID := range centerIDs {
			if err := r.StaffAssignment.Create(ctx, &models.StaffAssignment{UserID: user.ID, RevenueCenterID: centerID}); err != nil {
				return errors.ErrDatabaseError.WithError(err)
			}
		}
		return nil
	})
	if err != nil {
		if delErr := s.provider.DeleteAccount(ctx, account.ID); delErr != nil {
			logger.Error("failed to roll back staff identity account",
				logger.AccountID(account.ID),
				logger.Email(crypto.MaskEmail(email)),
				logger.Err(delErr),
			)
		}
		return nil, err
	}

	logger.Info("staff created",
		logger.RestaurantID(req.RestaurantID),
		zap.Int64("user_id", user.ID),
		logger.Role(user.Role),
	)
	created, err := s.loadUser(ctx, s.repos, user.ID)
	if err != nil {
		return nil, err
	}
	return &Credentials{User: created, Email: email, Password: password}, nil
}

// GetStaff 获取员工
func (s *StaffService) GetStaff(ctx context.Context, caller access.Caller, id int64) (*models.User, error) {
	user, err := s.loadUser(ctx, s.repos, id)
	if err != nil {
		return nil, err
	}
	if caller.UserID == id {
		return user, nil
	}
	if err := s.authz.AuthorizeRestaurant(ctx, s.db, caller, user.RestaurantID, access.ActionManage); err != nil {
		return nil, err
	}
	return user, nil
}

// ListStaff 获取餐厅员工
func (s *StaffService) ListStaff(ctx context.Context, caller access.Caller, filter *StaffFilter, offset, limit int) ([]*models.User, int64, error) {
	if err := s.authz.AuthorizeRestaurant(ctx, s.db, caller, filter.RestaurantID, access.ActionManage); err != nil {
		return nil, 0, err
	}
	filters := map[string]interface{}{
		"restaurant_id": filter.RestaurantID,
		"role":          filter.Role,
		"keyword":       strings.TrimSpace(filter.Keyword),
	}
	if filter.IsActive != nil {
		filters["is_active"] = *filter.IsActive
	}
	list, total, err := s.repos.User.List(ctx, offset, limit, filters)
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}
	return list, total, nil
}

// UpdateStaff 更新员工资料、角色或启用状态
func (s *StaffService) UpdateStaff(ctx context.Context, caller access.Caller, id int64, req *UpdateStaffRequest) (*models.User, error) {
	fields := make(map[string]interface{})
	if req.FullName != nil {
		fields["full_name"] = strings.TrimSpace(*req.FullName)
	}
	if req.Role != nil {
		if err := checkRole(caller, *req.Role); err != nil {
			return nil, err
		}
		fields["role"] = *req.Role
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repository.New(tx)
		user, err := s.authorizeUser(ctx, tx, r, caller, id)
		if err != nil {
			return err
		}
		if caller.UserID == user.ID && (req.Role != nil || req.IsActive != nil) {
			return errors.Forbidden("不能修改自己的角色或启用状态")
		}
		if len(fields) == 0 {
			return nil
		}
		if err := r.User.UpdateFields(ctx, id, fields); err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.loadUser(ctx, s.repos, id)
}

// ResetPassword 重置员工密码并返回新密码
func (s *StaffService) ResetPassword(ctx context.Context, caller access.Caller, id int64) (*Credentials, error) {
	user, err := s.authorizeUser(ctx, s.db, s.repos, caller, id)
	if err != nil {
		return nil, err
	}
	if user.AuthAccountID == nil {
		return nil, identity.ErrAccountNotFound
	}
	password, err := crypto.GeneratePassword(s.passwordLength)
	if err != nil {
		return nil, errors.ErrInternalError.WithError(err)
	}
	if err := s.provider.SetPassword(ctx, *user.AuthAccountID, password); err != nil {
		return nil, err
	}
	logger.Info("staff password reset", logger.RestaurantID(user.RestaurantID), zap.Int64("user_id", id))
	return &Credentials{User: user, Email: user.Email, Password: password}, nil
}

// DeleteStaff 删除员工，提交后删除身份账号
func (s *StaffService) DeleteStaff(ctx context.Context, caller access.Caller, id int64) error {
	var accountID *int64
	var restaurantID int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repository.New(tx)
		user, err := s.authorizeUser(ctx, tx, r, caller, id)
		if err != nil {
			return err
		}
		if caller.UserID == user.ID {
			return errors.Forbidden("不能删除自己")
		}
		accountID = user.AuthAccountID
		restaurantID = user.RestaurantID
		if err := r.User.Delete(ctx, id); err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if accountID != nil {
		if err := s.provider.DeleteAccount(ctx, *accountID); err != nil {
			logger.Warn("failed to delete staff identity account",
				logger.RestaurantID(restaurantID),
				logger.AccountID(*accountID),
				logger.Err(err),
			)
		}
	}
	logger.Info("staff deleted", logger.RestaurantID(restaurantID), zap.Int64("user_id", id))
	return nil
}

// AssignCenter 把员工分配到营业点
func (s *StaffService) AssignCenter(ctx context.Context, caller access.Caller, userID, centerID int64) (*models.User, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repository.New(tx)
		user, err := s.authorizeUser(ctx, tx, r, caller, userID)
		if err != nil {
			return err
		}
		if err := s.checkCenters(ctx, r, user.RestaurantID, []int64{centerID}); err != nil {
			return err
		}
		exists, err := r.StaffAssignment.Exists(ctx, userID, centerID)
		if err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		if exists {
			return errors.ErrAssignmentExists
		}
		if err := r.StaffAssignment.Create(ctx, &models.StaffAssignment{UserID: userID, RevenueCenterID: centerID}); err != nil {
			if database.IsUniqueViolation(err) {
				return errors.ErrAssignmentExists
			}
			return errors.ErrDatabaseError.WithError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.loadUser(ctx, s.repos, userID)
}

// UnassignCenter 取消员工的营业点分配
func (s *StaffService) UnassignCenter(ctx context.Context, caller access.Caller, userID, centerID int64) (*models.User, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repository.New(tx)
		if _, err := s.authorizeUser(ctx, tx, r, caller, userID); err != nil {
			return err
		}
		deleted, err := r.StaffAssignment.Delete(ctx, userID, centerID)
		if err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		if !deleted {
			return errors.NotFound("员工未分配到该营业点")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.loadUser(ctx, s.repos, userID)
}

// authorizeUser 加载员工并检查调用方对其所属餐厅的管理权限；经理不能管理其他经理
func (s *StaffService) authorizeUser(ctx context.Context, db *gorm.DB, r *repository.Repositories, caller access.Caller, id int64) (*models.User, error) {
	user, err := s.loadUser(ctx, r, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.AuthorizeRestaurant(ctx, db, caller, user.RestaurantID, access.ActionManage); err != nil {
		return nil, err
	}
	if caller.Role == models.RoleManager && user.Role == models.RoleManager && caller.UserID != user.ID {
		return nil, errors.Forbidden("经理不能管理其他经理")
	}
	return user, nil
}

// checkCenters 营业点必须属于该餐厅
func (s *StaffService) checkCenters(ctx context.Context, r *repository.Repositories, restaurantID int64, centerIDs []int64) error {
	if len(centerIDs) == 0 {
		return nil
	}
	centers, _, err := r.RevenueCenter.List(ctx, 0, -1, map[string]interface{}{
		"restaurant_id": restaurantID,
		"ids":           centerIDs,
	})
	if err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}
	if len(centers) != len(centerIDs) {
		return errors.Referential("营业点不存在或不属于该餐厅")
	}
	return nil
}

func (s *StaffService) loadUser(ctx context.Context, r *repository.Repositories, id int64) (*models.User, error) {
	user, err := r.User.GetByID(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, errors.ErrStaffNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return user, nil
}

// checkRole 只能创建 manager 或 staff；经理只能指定 staff
func checkRole(caller access.Caller, role string) error {
	switch role {
	case models.RoleStaff:
		return nil
	case models.RoleManager:
		if caller.Role == models.RoleManager {
			return errors.Forbidden("经理不能任命经理")
		}
		return nil
	}
	return errors.Validation("无效的员工角色 %s", role)
}
