package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dumeirei/kitchen-pos-backend/internal/common/errors"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/jwt"
	"github.com/dumeirei/kitchen-pos-backend/internal/models"
	"github.com/dumeirei/kitchen-pos-backend/internal/repository"
	"github.com/dumeirei/kitchen-pos-backend/internal/service/access"
	"github.com/dumeirei/kitchen-pos-backend/internal/service/identity"
	"github.com/dumeirei/kitchen-pos-backend/internal/testutil"
)

func setupAuthService(t *testing.T) (*AuthService, *gorm.DB, *identity.LocalProvider, *jwt.Manager) {
	t.Helper()
	db := testutil.NewTestDB(t)
	repos := repository.New(db)
	provider := identity.NewLocalProvider(repos.AuthAccount)
	manager := jwt.NewManager(&jwt.Config{
		Secret:            "test-secret",
		AccessExpireTime:  time.Hour,
		RefreshExpireTime: 24 * time.Hour,
		Issuer:            "kitchen-pos-test",
	})
	return NewAuthService(repos, provider, manager), db, provider, manager
}

func TestAuthService_OwnerLogin(t *testing.T) {
	svc, db, provider, manager := setupAuthService(t)
	ctx := context.Background()
	tn := testutil.SeedTenant(t, db, "authowner")

	account, err := provider.CreateAccount(ctx, tn.Owner.Email, "Secret#123", models.RoleKitchenOwner)
	require.NoError(t, err)
	require.NoError(t, db.Model(tn.Owner).Update("auth_account_id", account.ID).Error)

	resp, err := svc.Login(ctx, &LoginRequest{Email: "AuthOwner@Example.com ", Password: "Secret#123"})
	require.NoError(t, err)
	assert.Equal(t, tn.Owner.ID, resp.Profile.OwnerID)
	assert.Equal(t, models.RoleKitchenOwner, resp.Profile.Role)

	claims, err := manager.ParseAccessToken(resp.Token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, account.ID, claims.AccountID)
	assert.Equal(t, tn.Owner.ID, claims.OwnerID)

	t.Run("密码错误", func(t *testing.T) {
		_, err := svc.Login(ctx, &LoginRequest{Email: tn.Owner.Email, Password: "wrong"})
		assert.ErrorIs(t, err, errors.ErrPasswordError)
	})

	t.Run("账号不存在", func(t *testing.T) {
		_, err := svc.Login(ctx, &LoginRequest{Email: "nobody@example.com", Password: "Secret#123"})
		assert.ErrorIs(t, err, errors.ErrPasswordError)
	})

	t.Run("刷新令牌", func(t *testing.T) {
		pair, err := svc.Refresh(ctx, resp.Token.RefreshToken)
		require.NoError(t, err)
		assert.NotEmpty(t, pair.AccessToken)

		_, err = svc.Refresh(ctx, resp.Token.AccessToken)
		assert.ErrorIs(t, err, errors.ErrTokenInvalid)

		_, err = svc.Refresh(ctx, "garbage")
		assert.ErrorIs(t, err, errors.ErrTokenInvalid)
	})

	t.Run("店主停用后不能登录", func(t *testing.T) {
		require.NoError(t, db.Model(tn.Owner).Update("status", models.OwnerStatusSuspended).Error)
		_, err := svc.Login(ctx, &LoginRequest{Email: tn.Owner.Email, Password: "Secret#123"})
		assert.ErrorIs(t, err, errors.ErrAccountDisabled)
	})
}

func TestAuthService_StaffLogin(t *testing.T) {
	svc, db, provider, _ := setupAuthService(t)
	ctx := context.Background()
	tn := testutil.SeedTenant(t, db, "authstaff")
	user, _ := testutil.SeedStaff(t, db, tn, "cook@authstaff.io", models.RoleManager, tn.Center.ID)

	account, err := provider.CreateAccount(ctx, user.Email, "Cook#2024", models.RoleManager)
	require.NoError(t, err)
	require.NoError(t, db.Model(user).Update("auth_account_id", account.ID).Error)

	resp, err := svc.Login(ctx, &LoginRequest{Email: user.Email, Password: "Cook#2024"})
	require.NoError(t, err)
	assert.Equal(t, tn.Restaurant.ID, resp.Profile.RestaurantID)
	assert.Equal(t, user.ID, resp.Profile.UserID)
	assert.Equal(t, models.RoleManager, resp.Profile.Role)

	caller := access.Caller{AccountID: account.ID, Role: models.RoleManager}
	me, err := svc.Me(ctx, caller)
	require.NoError(t, err)
	assert.Equal(t, user.FullName, me.FullName)

	err = svc.ChangePassword(ctx, caller, &ChangePasswordRequest{OldPassword: "bad", NewPassword: "Cook#2025!"})
	assert.ErrorIs(t, err, errors.ErrPasswordError)
	require.NoError(t, svc.ChangePassword(ctx, caller, &ChangePasswordRequest{OldPassword: "Cook#2024", NewPassword: "Cook#2025!"}))
	_, err = svc.Login(ctx, &LoginRequest{Email: user.Email, Password: "Cook#2025!"})
	require.NoError(t, err)

	require.NoError(t, db.Model(user).Update("is_active", false).Error)
	_, err = svc.Login(ctx, &LoginRequest{Email: user.Email, Password: "Cook#2025!"})
	assert.ErrorIs(t, err, errors.ErrAccountDisabled)
}

func TestAuthService_OrphanAccount(t *testing.T) {
	svc, _, provider, _ := setupAuthService(t)
	ctx := context.Background()

	_, err := provider.CreateAccount(ctx, "orphan@example.com", "Orphan#123", models.RoleKitchenOwner)
	require.NoError(t, err)

	_, err = svc.Login(ctx, &LoginRequest{Email: "orphan@example.com", Password: "Orphan#123"})
	assert.ErrorIs(t, err, errors.ErrOwnerNotFound)
}
