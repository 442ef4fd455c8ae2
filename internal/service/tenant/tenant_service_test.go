package tenant

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dumeirei/kitchen-pos-backend/internal/common/cache"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/config"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/errors"
	"github.com/dumeirei/kitchen-pos-backend/internal/models"
	"github.com/dumeirei/kitchen-pos-backend/internal/repository"
	"github.com/dumeirei/kitchen-pos-backend/internal/service/access"
	"github.com/dumeirei/kitchen-pos-backend/internal/service/identity"
	"github.com/dumeirei/kitchen-pos-backend/internal/testutil"
)

func setupTenantService(t *testing.T) (*TenantService, *gorm.DB, *miniredis.Miniredis, *identity.LocalProvider) {
	t.Helper()
	db := testutil.NewTestDB(t)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	provider := identity.NewLocalProvider(repository.NewAuthAccountRepository(db))
	svc := NewTenantService(db, access.NewAuthorizer(), provider, cache.NewStore(client), &config.BusinessConfig{DomainCacheTTL: 60})
	return svc, db, mr, provider
}

func TestTenantService_CreateRestaurant(t *testing.T) {
	svc, db, _, _ := setupTenantService(t)
	ctx := context.Background()
	tn := testutil.SeedTenant(t, db, "creator")

	t.Run("名称生成域名", func(t *testing.T) {
		r, err := svc.CreateRestaurant(ctx, tn.OwnerCaller(), &CreateRestaurantRequest{Name: "Pasta House"})
		require.NoError(t, err)
		assert.Equal(t, "pasta-house", r.Domain)
		assert.Equal(t, tn.Owner.ID, r.OwnerID)
		assert.Equal(t, models.RestaurantStatusActive, r.Status)
	})

	t.Run("域名重复", func(t *testing.T) {
		_, err := svc.CreateRestaurant(ctx, tn.OwnerCaller(), &CreateRestaurantRequest{Name: "Another", Domain: "pasta-house"})
		assert.ErrorIs(t, err, errors.ErrDomainExists)
		assert.True(t, errors.IsKind(err, errors.KindConflict))
	})

	t.Run("域名格式错误", func(t *testing.T) {
		_, err := svc.CreateRestaurant(ctx, tn.OwnerCaller(), &CreateRestaurantRequest{Name: "Bad", Domain: "Bad Domain!"})
		assert.True(t, errors.IsKind(err, errors.KindValidation))
	})

	t.Run("平台管理员必须指定店主", func(t *testing.T) {
		_, err := svc.CreateRestaurant(ctx, testutil.AdminCaller(), &CreateRestaurantRequest{Name: "Orphan"})
		assert.True(t, errors.IsKind(err, errors.KindValidation))

		r, err := svc.CreateRestaurant(ctx, testutil.AdminCaller(), &CreateRestaurantRequest{OwnerID: tn.Owner.ID, Name: "Admin made"})
		require.NoError(t, err)
		assert.Equal(t, tn.Owner.ID, r.OwnerID)
	})

	t.Run("经理不能创建餐厅", func(t *testing.T) {
		_, manager := testutil.SeedStaff(t, db, tn, "m@creator.io", models.RoleManager)
		_, err := svc.CreateRestaurant(ctx, manager, &CreateRestaurantRequest{Name: "Nope"})
		assert.True(t, errors.IsKind(err, errors.KindAuthorization))
	})
}

func TestTenantService_ListAndUpdate(t *testing.T) {
	svc, db, _, _ := setupTenantService(t)
	ctx := context.Background()
	mine := testutil.SeedTenant(t, db, "mine")
	other := testutil.SeedTenant(t, db, "theirs")

	list, total, err := svc.ListRestaurants(ctx, mine.OwnerCaller(), &RestaurantFilter{}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, mine.Restaurant.ID, list[0].ID)

	_, total, err = svc.ListRestaurants(ctx, testutil.AdminCaller(), &RestaurantFilter{}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	_, err = svc.GetRestaurant(ctx, mine.OwnerCaller(), other.Restaurant.ID)
	assert.ErrorIs(t, err, errors.ErrTenantMismatch)

	name := "Renamed"
	updated, err := svc.UpdateRestaurant(ctx, mine.OwnerCaller(), mine.Restaurant.ID, &UpdateRestaurantRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)

	taken := "theirs"
	_, err = svc.UpdateRestaurant(ctx, mine.OwnerCaller(), mine.Restaurant.ID, &UpdateRestaurantRequest{Domain: &taken})
	assert.ErrorIs(t, err, errors.ErrDomainExists)

	_, manager := testutil.SeedStaff(t, db, mine, "m@mine.io", models.RoleManager)
	_, err = svc.UpdateRestaurant(ctx, manager, mine.Restaurant.ID, &UpdateRestaurantRequest{Name: &name})
	assert.True(t, errors.IsKind(err, errors.KindAuthorization))

	list, _, err = svc.ListRestaurants(ctx, manager, &RestaurantFilter{}, 0, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, mine.Restaurant.ID, list[0].ID)
}

func TestTenantService_GetByDomainCache(t *testing.T) {
	svc, db, mr, _ := setupTenantService(t)
	ctx := context.Background()
	tn := testutil.SeedTenant(t, db, "cafe")
	key := cache.BuildKey(cache.KeyPrefixRestaurantDomain, "cafe")

	got, err := svc.GetByDomain(ctx, "Cafe")
	require.NoError(t, err)
	assert.Equal(t, tn.Restaurant.ID, got.ID)
	assert.True(t, mr.Exists(key))

	// 直接改库，缓存仍返回旧数据
	require.NoError(t, db.Model(tn.Restaurant).Update("name", "Changed directly").Error)
	got, err = svc.GetByDomain(ctx, "cafe")
	require.NoError(t, err)
	assert.Equal(t, "Restaurant cafe", got.Name)

	newDomain := "cafe-two"
	_, err = svc.UpdateRestaurant(ctx, tn.OwnerCaller(), tn.Restaurant.ID, &UpdateRestaurantRequest{Domain: &newDomain})
	require.NoError(t, err)
	assert.False(t, mr.Exists(key))

	_, err = svc.GetByDomain(ctx, "cafe")
	assert.ErrorIs(t, err, errors.ErrRestaurantNotFound)
	got, err = svc.GetByDomain(ctx, "cafe-two")
	require.NoError(t, err)
	assert.Equal(t, "Changed directly", got.Name)

	t.Run("停业后不可查询", func(t *testing.T) {
		_, err := svc.UpdateStatus(ctx, tn.OwnerCaller(), tn.Restaurant.ID, models.RestaurantStatusSuspended)
		assert.True(t, errors.IsKind(err, errors.KindAuthorization))

		_, err = svc.UpdateStatus(ctx, testutil.AdminCaller(), tn.Restaurant.ID, "closed")
		assert.True(t, errors.IsKind(err, errors.KindValidation))

		r, err := svc.UpdateStatus(ctx, testutil.AdminCaller(), tn.Restaurant.ID, models.RestaurantStatusSuspended)
		require.NoError(t, err)
		assert.Equal(t, models.RestaurantStatusSuspended, r.Status)

		_, err = svc.GetByDomain(ctx, "cafe-two")
		assert.ErrorIs(t, err, errors.ErrRestaurantNotFound)
	})
}

func TestTenantService_GetByDomainWithoutCache(t *testing.T) {
	db := testutil.NewTestDB(t)
	tn := testutil.SeedTenant(t, db, "nocache")
	provider := identity.NewLocalProvider(repository.NewAuthAccountRepository(db))
	svc := NewTenantService(db, access.NewAuthorizer(), provider, nil, &config.BusinessConfig{})

	got, err := svc.GetByDomain(context.Background(), "nocache")
	require.NoError(t, err)
	assert.Equal(t, tn.Restaurant.ID, got.ID)
}

func TestTenantService_DeleteRestaurant(t *testing.T) {
	svc, db, mr, provider := setupTenantService(t)
	ctx := context.Background()
	tn := testutil.SeedTenant(t, db, "closing")

	user, staff := testutil.SeedStaff(t, db, tn, "cook@closing.io", models.RoleStaff, tn.Center.ID)
	account, err := provider.CreateAccount(ctx, user.Email, "Cook#1234", models.RoleStaff)
	require.NoError(t, err)
	require.NoError(t, db.Model(user).Update("auth_account_id", account.ID).Error)

	_, err = svc.GetByDomain(ctx, "closing")
	require.NoError(t, err)

	err = svc.DeleteRestaurant(ctx, staff, tn.Restaurant.ID)
	assert.True(t, errors.IsKind(err, errors.KindAuthorization))

	require.NoError(t, svc.DeleteRestaurant(ctx, tn.OwnerCaller(), tn.Restaurant.ID))

	_, err = svc.GetRestaurant(ctx, testutil.AdminCaller(), tn.Restaurant.ID)
	assert.ErrorIs(t, err, errors.ErrRestaurantNotFound)
	_, err = provider.GetAccount(ctx, account.ID)
	assert.ErrorIs(t, err, identity.ErrAccountNotFound)
	assert.False(t, mr.Exists(cache.BuildKey(cache.KeyPrefixRestaurantDomain, "closing")))

	var customers int64
	require.NoError(t, db.Model(&models.Customer{}).Where("restaurant_id = ?", tn.Restaurant.ID).Count(&customers).Error)
	assert.Zero(t, customers)
}
