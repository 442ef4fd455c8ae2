// Package auth 提供登录认证服务
package auth

import (
	"context"
	stderrors "errors"

	"github.com/dumeirei/kitchen-pos-backend/internal/common/database"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/errors"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/jwt"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/logger"
	"github.com/dumeirei/kitchen-pos-backend/internal/models"
	"github.com/dumeirei/kitchen-pos-backend/internal/repository"
	"github.com/dumeirei/kitchen-pos-backend/internal/service/access"
	"github.com/dumeirei/kitchen-pos-backend/internal/service/identity"
)

// AuthService 认证服务
type AuthService struct {
	repos      *repository.Repositories
	provider   identity.Provider
	jwtManager *jwt.Manager
}

// NewAuthService 创建认证服务
func NewAuthService(repos *repository.Repositories, provider identity.Provider, jwtManager *jwt.Manager) *AuthService {
	return &AuthService{
		repos:      repos,
		provider:   provider,
		jwtManager: jwtManager,
	}
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest 刷新令牌请求
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// Profile 当前登录账号信息（不含敏感字段）
type Profile struct {
	AccountID    int64  `json:"account_id"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	FullName     string `json:"full_name,omitempty"`
	OwnerID      int64  `json:"owner_id,omitempty"`
	RestaurantID int64  `json:"restaurant_id,omitempty"`
	UserID       int64  `json:"user_id,omitempty"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Profile *Profile       `json:"profile"`
	Token   *jwt.TokenPair `json:"token"`
}

// Login 邮箱密码登录
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	account, err := s.provider.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	profile, err := s.resolveProfile(ctx, account)
	if err != nil {
		return nil, err
	}

	pair, err := s.jwtManager.GenerateTokenPair(profile.identity())
	if err != nil {
		return nil, errors.ErrInternalError.WithError(err)
	}

	logger.Info("account logged in", logger.AccountID(account.ID), logger.Role(account.Role))
	return &LoginResponse{Profile: profile, Token: pair}, nil
}

// Refresh 刷新令牌；重新读取账号，已禁用或已删除的账号不能续期
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*jwt.TokenPair, error) {
	claims, err := s.jwtManager.ParseToken(refreshToken)
	if err != nil {
		if stderrors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.ErrTokenExpired
		}
		return nil, errors.ErrTokenInvalid
	}
	if claims.TokenType != jwt.TokenTypeRefresh {
		return nil, errors.ErrTokenInvalid
	}

	account, err := s.provider.GetAccount(ctx, claims.AccountID)
	if err != nil {
		if stderrors.Is(err, identity.ErrAccountNotFound) {
			return nil, errors.ErrTokenInvalid
		}
		return nil, err
	}
	if !account.IsActive {
		return nil, errors.ErrAccountDisabled
	}

	profile, err := s.resolveProfile(ctx, account)
	if err != nil {
		return nil, err
	}
	pair, err := s.jwtManager.GenerateTokenPair(profile.identity())
	if err != nil {
		return nil, errors.ErrInternalError.WithError(err)
	}
	return pair, nil
}

// Me 获取当前账号信息
func (s *AuthService) Me(ctx context.Context, caller access.Caller) (*Profile, error) {
	account, err := s.provider.GetAccount(ctx, caller.AccountID)
	if err != nil {
		return nil, err
	}
	return s.resolveProfile(ctx, account)
}

// ChangePassword 修改密码
func (s *AuthService) ChangePassword(ctx context.Context, caller access.Caller, req *ChangePasswordRequest) error {
	account, err := s.provider.GetAccount(ctx, caller.AccountID)
	if err != nil {
		return err
	}
	if _, err := s.provider.Authenticate(ctx, account.Email, req.OldPassword); err != nil {
		return err
	}
	if err := s.provider.SetPassword(ctx, account.ID, req.NewPassword); err != nil {
		return err
	}
	logger.Info("password changed", logger.AccountID(account.ID))
	return nil
}

// resolveProfile 根据账号角色关联店主或员工记录
func (s *AuthService) resolveProfile(ctx context.Context, account *models.AuthAccount) (*Profile, error) {
	profile := &Profile{
		AccountID: account.ID,
		Email:     account.Email,
		Role:      account.Role,
	}

	switch account.Role {
	case models.RolePlatformAdmin:
		return profile, nil
	case models.RoleKitchenOwner:
		owner, err := s.repos.Owner.GetByAuthAccountID(ctx, account.ID)
		if err != nil {
			if database.IsNotFound(err) {
				return nil, errors.ErrOwnerNotFound
			}
			return nil, errors.ErrDatabaseError.WithError(err)
		}
		if owner.Status != models.OwnerStatusActive {
			return nil, errors.ErrAccountDisabled
		}
		profile.OwnerID = owner.ID
		profile.FullName = owner.FullName
		return profile, nil
	case models.RoleManager, models.RoleStaff:
		user, err := s.repos.User.GetByAuthAccountID(ctx, account.ID)
		if err != nil {
			if database.IsNotFound(err) {
				return nil, errors.ErrStaffNotFound
			}
			return nil, errors.ErrDatabaseError.WithError(err)
		}
		if !user.IsActive {
			return nil, errors.ErrAccountDisabled
		}
		profile.Role = user.Role
		profile.UserID = user.ID
		profile.RestaurantID = user.RestaurantID
		profile.FullName = user.FullName
		return profile, nil
	}
	return nil, errors.ErrPermissionDenied.WithMessagef("未知角色 %s", account.Role)
}

func (p *Profile) identity() jwt.Identity {
	return jwt.Identity{
		AccountID:    p.AccountID,
		Role:         p.Role,
		OwnerID:      p.OwnerID,
		RestaurantID: p.RestaurantID,
		UserID:       p.UserID,
	}
}
