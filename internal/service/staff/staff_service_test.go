package staff

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dumeirei/kitchen-pos-backend/internal/common/config"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/errors"
	"github.com/dumeirei/kitchen-pos-backend/internal/models"
	"github.com/dumeirei/kitchen-pos-backend/internal/repository"
	"github.com/dumeirei/kitchen-pos-backend/internal/service/access"
	"github.com/dumeirei/kitchen-pos-backend/internal/service/identity"
	"github.com/dumeirei/kitchen-pos-backend/internal/testutil"
)

func setupStaffService(t *testing.T) (*StaffService, *gorm.DB, *identity.LocalProvider) {
	t.Helper()
	db := testutil.NewTestDB(t)
	provider := identity.NewLocalProvider(repository.NewAuthAccountRepository(db))
	svc := NewStaffService(db, access.NewAuthorizer(), provider, &config.BusinessConfig{PasswordLength: 16})
	return svc, db, provider
}

func TestStaffService_CreateStaff(t *testing.T) {
	svc, db, provider := setupStaffService(t)
	ctx := context.Background()
	tn := testutil.SeedTenant(t, db, "crew")
	other := testutil.SeedTenant(t, db, "crew-other")

	creds, err := svc.CreateStaff(ctx, tn.OwnerCaller(), &CreateStaffRequest{
		RestaurantID:     tn.Restaurant.ID,
		Email:            " Cook@Crew.IO ",
		FullName:         "Head Cook",
		Role:             models.RoleStaff,
		RevenueCenterIDs: []int64{tn.Center.ID, tn.Center.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, "cook@crew.io", creds.Email)
	assert.Len(t, creds.Password, 16)
	require.NotNil(t, creds.User.AuthAccountID)
	require.Len(t, creds.User.Assignments, 1)
	assert.Equal(t, tn.Center.ID, creds.User.Assignments[0].RevenueCenterID)

	account, err := provider.Authenticate(ctx, "cook@crew.io", creds.Password)
	require.NoError(t, err)
	assert.Equal(t, *creds.User.AuthAccountID, account.ID)
	assert.Equal(t, models.RoleStaff, account.Role)

	t.Run("邮箱重复", func(t *testing.T) {
		_, err := svc.CreateStaff(ctx, tn.OwnerCaller(), &CreateStaffRequest{RestaurantID: tn.Restaurant.ID, Email: "cook@crew.io", FullName: "x", Role: models.RoleStaff})
		assert.True(t, errors.IsKind(err, errors.KindConflict))
	})

	t.Run("身份账号已存在", func(t *testing.T) {
		_, err := provider.CreateAccount(ctx, "taken@crew.io", "Taken#123", models.RoleKitchenOwner)
		require.NoError(t, err)
		_, err = svc.CreateStaff(ctx, tn.OwnerCaller(), &CreateStaffRequest{RestaurantID: tn.Restaurant.ID, Email: "taken@crew.io", FullName: "x", Role: models.RoleStaff})
		assert.ErrorIs(t, err, errors.ErrAccountExists)

		var count int64
		require.NoError(t, db.Model(&models.User{}).Where("email = ?", "taken@crew.io").Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("营业点必须属于本餐厅", func(t *testing.T) {
		_, err := svc.CreateStaff(ctx, tn.OwnerCaller(), &CreateStaffRequest{
			RestaurantID: tn.Restaurant.ID, Email: "x@crew.io", FullName: "x", Role: models.RoleStaff,
			RevenueCenterIDs: []int64{other.Center.ID},
		})
		assert.True(t, errors.IsKind(err, errors.KindReferential))
		_, err = provider.GetAccountByEmail(ctx, "x@crew.io")
		assert.ErrorIs(t, err, identity.ErrAccountNotFound)
	})

	t.Run("角色限制", func(t *testing.T) {
		_, err := svc.CreateStaff(ctx, tn.OwnerCaller(), &CreateStaffRequest{RestaurantID: tn.Restaurant.ID, Email: "y@crew.io", FullName: "y", Role: models.RoleKitchenOwner})
		assert.True(t, errors.IsKind(err, errors.KindValidation))

		_, manager := testutil.SeedStaff(t, db, tn, "boss@crew.io", models.RoleManager)
		_, err = svc.CreateStaff(ctx, manager, &CreateStaffRequest{RestaurantID: tn.Restaurant.ID, Email: "y@crew.io", FullName: "y", Role: models.RoleManager})
		assert.True(t, errors.IsKind(err, errors.KindAuthorization))

		created, err := svc.CreateStaff(ctx, manager, &CreateStaffRequest{RestaurantID: tn.Restaurant.ID, Email: "y@crew.io", FullName: "y", Role: models.RoleStaff})
		require.NoError(t, err)
		assert.Equal(t, models.RoleStaff, created.User.Role)

		_, staff := testutil.SeedStaff(t, db, tn, "line@crew.io", models.RoleStaff)
		_, err = svc.CreateStaff(ctx, staff, &CreateStaffRequest{RestaurantID: tn.Restaurant.ID, Email: "z@crew.io", FullName: "z", Role: models.RoleStaff})
		assert.True(t, errors.IsKind(err, errors.KindAuthorization))
	})
}

func TestStaffService_CreateStaff_RollsBackIdentity(t *testing.T) {
	svc, db, provider := setupStaffService(t)
	ctx := context.Background()
	tn := testutil.SeedTenant(t, db, "rollback")

	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("test:fail_users", func(tx *gorm.DB) {
		if tx.Statement.Table == "users" {
			_ = tx.AddError(stderrors.New("disk full"))
		}
	}))

	_, err := svc.CreateStaff(ctx, tn.OwnerCaller(), &CreateStaffRequest{RestaurantID: tn.Restaurant.ID, Email: "ghost@rb.io", FullName: "Ghost", Role: models.RoleStaff})
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindInternal))

	_, err = provider.GetAccountByEmail(ctx, "ghost@rb.io")
	assert.ErrorIs(t, err, identity.ErrAccountNotFound)
}

func TestStaffService_UpdateAndAssignments(t *testing.T) {
	svc, db, _ := setupStaffService(t)
	ctx := context.Background()
	tn := testutil.SeedTenant(t, db, "roster")
	owner := tn.OwnerCaller()

	bar := &models.RevenueCenter{RestaurantID: tn.Restaurant.ID, Name: "Bar", Type: models.RevenueCenterTypeBar, IsActive: true}
	require.NoError(t, db.Create(bar).Error)

	cook, cookCaller := testutil.SeedStaff(t, db, tn, "cook@roster.io", models.RoleStaff, tn.Center.ID)
	_, manager := testutil.SeedStaff(t, db, tn, "m1@roster.io", models.RoleManager)
	otherManager, _ := testutil.SeedStaff(t, db, tn, "m2@roster.io", models.RoleManager)

	t.Run("分配与取消分配", func(t *testing.T) {
		user, err := svc.AssignCenter(ctx, manager, cook.ID, bar.ID)
		require.NoError(t, err)
		assert.Len(t, user.Assignments, 2)

		_, err = svc.AssignCenter(ctx, manager, cook.ID, bar.ID)
		assert.ErrorIs(t, err, errors.ErrAssignmentExists)

		other := testutil.SeedTenant(t, db, "roster-other")
		_, err = svc.AssignCenter(ctx, manager, cook.ID, other.Center.ID)
		assert.True(t, errors.IsKind(err, errors.KindReferential))

		user, err = svc.UnassignCenter(ctx, manager, cook.ID, tn.Center.ID)
		require.NoError(t, err)
		require.Len(t, user.Assignments, 1)
		assert.Equal(t, bar.ID, user.Assignments[0].RevenueCenterID)

		_, err = svc.UnassignCenter(ctx, manager, cook.ID, tn.Center.ID)
		assert.True(t, errors.IsKind(err, errors.KindNotFound))
	})

	t.Run("停用与改名", func(t *testing.T) {
		name := "Sous chef"
		inactive := false
		user, err := svc.UpdateStaff(ctx, manager, cook.ID, &UpdateStaffRequest{FullName: &name, IsActive: &inactive})
		require.NoError(t, err)
		assert.Equal(t, "Sous chef", user.FullName)
		assert.False(t, user.IsActive)

		list, total, err := svc.ListStaff(ctx, owner, &StaffFilter{RestaurantID: tn.Restaurant.ID, IsActive: &inactive}, 0, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, cook.ID, list[0].ID)
	})

	t.Run("经理之间不能互相管理", func(t *testing.T) {
		role := models.RoleStaff
		_, err := svc.UpdateStaff(ctx, manager, otherManager.ID, &UpdateStaffRequest{Role: &role})
		assert.True(t, errors.IsKind(err, errors.KindAuthorization))

		promoted := models.RoleManager
		_, err = svc.UpdateStaff(ctx, manager, cook.ID, &UpdateStaffRequest{Role: &promoted})
		assert.True(t, errors.IsKind(err, errors.KindAuthorization))

		user, err := svc.UpdateStaff(ctx, owner, cook.ID, &UpdateStaffRequest{Role: &promoted})
		require.NoError(t, err)
		assert.Equal(t, models.RoleManager, user.Role)
	})

	t.Run("员工只能查看自己", func(t *testing.T) {
		self, err := svc.GetStaff(ctx, cookCaller, cook.ID)
		require.NoError(t, err)
		assert.Equal(t, cook.ID, self.ID)

		_, err = svc.GetStaff(ctx, cookCaller, otherManager.ID)
		assert.True(t, errors.IsKind(err, errors.KindAuthorization))

		_, _, err = svc.ListStaff(ctx, cookCaller, &StaffFilter{RestaurantID: tn.Restaurant.ID}, 0, 10)
		assert.True(t, errors.IsKind(err, errors.KindAuthorization))
	})
}

func TestStaffService_DeleteAndResetPassword(t *testing.T) {
	svc, db, provider := setupStaffService(t)
	ctx := context.Background()
	tn := testutil.SeedTenant(t, db, "leave")

	creds, err := svc.CreateStaff(ctx, tn.OwnerCaller(), &CreateStaffRequest{
		RestaurantID: tn.Restaurant.ID, Email: "temp@leave.io", FullName: "Temp", Role: models.RoleStaff,
		RevenueCenterIDs: []int64{tn.Center.ID},
	})
	require.NoError(t, err)

	reset, err := svc.ResetPassword(ctx, tn.OwnerCaller(), creds.User.ID)
	require.NoError(t, err)
	assert.NotEqual(t, creds.Password, reset.Password)
	_, err = provider.Authenticate(ctx, "temp@leave.io", creds.Password)
	assert.ErrorIs(t, err, errors.ErrPasswordError)
	_, err = provider.Authenticate(ctx, "temp@leave.io", reset.Password)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteStaff(ctx, tn.OwnerCaller(), creds.User.ID))
	_, err = svc.GetStaff(ctx, tn.OwnerCaller(), creds.User.ID)
	assert.ErrorIs(t, err, errors.ErrStaffNotFound)
	_, err = provider.GetAccount(ctx, *creds.User.AuthAccountID)
	assert.ErrorIs(t, err, identity.ErrAccountNotFound)

	var assignments int64
	require.NoError(t, db.Model(&models.StaffAssignment{}).Where("user_id = ?", creds.User.ID).Count(&assignments).Error)
	assert.Zero(t, assignments)
}
