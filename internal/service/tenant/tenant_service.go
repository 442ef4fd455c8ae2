// Package tenant 餐厅（租户）管理服务
package tenant

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dumeirei/kitchen-pos-backend/internal/common/cache"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/config"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/database"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/errors"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/logger"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/metrics"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/utils"
	"github.com/dumeirei/kitchen-pos-backend/internal/models"
	"github.com/dumeirei/kitchen-pos-backend/internal/repository"
	"github.com/dumeirei/kitchen-pos-backend/internal/service/access"
	"github.com/dumeirei/kitchen-pos-backend/internal/service/identity"
)

const domainCacheName = "restaurant_domain"

// TenantService 餐厅服务
type TenantService struct {
	db       *gorm.DB
	repos    *repository.Repositories
	authz    *access.Authorizer
	provider identity.Provider
	cache    *cache.Store
	cacheTTL time.Duration
	metrics  *metrics.Metrics
}

// NewTenantService 创建餐厅服务，store 为 nil 时不使用缓存
func NewTenantService(db *gorm.DB, authz *access.Authorizer, provider identity.Provider, store *cache.Store, cfg *config.BusinessConfig) *TenantService {
	ttl := time.Duration(cfg.DomainCacheTTL) * time.Second
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &TenantService{
		db:       db,
		repos:    repository.New(db),
		authz:    authz,
		provider: provider,
		cache:    store,
		cacheTTL: ttl,
	}
}

// SetMetrics 设置指标采集
func (s *TenantService) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
}

// CreateRestaurantRequest 创建餐厅请求
type CreateRestaurantRequest struct {
	OwnerID int64   `json:"owner_id"` // 仅平台管理员可指定，店主创建时忽略
	Name    string  `json:"name" binding:"required,max=100"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
	Domain  string  `json:"domain"`
}

// UpdateRestaurantRequest 更新餐厅请求
type UpdateRestaurantRequest struct {
	Name    *string `json:"name" binding:"omitempty,max=100"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
	Domain  *string `json:"domain"`
}

// RestaurantFilter 餐厅列表过滤条件
type RestaurantFilter struct {
	OwnerID int64
	Status  string
	Keyword string
}

// PublicRestaurant 按域名公开查询的餐厅信息
type PublicRestaurant struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Domain  string  `json:"domain"`
	Address *string `json:"address,omitempty"`
	Phone   *string `json:"phone,omitempty"`
}

// CreateRestaurant 创建餐厅；未指定域名时由名称生成
func (s *TenantService) CreateRestaurant(ctx context.Context, caller access.Caller, req *CreateRestaurantRequest) (*models.Restaurant, error) {
	ownerID := caller.OwnerID
	switch {
	case caller.IsPlatformAdmin():
		if req.OwnerID == 0 {
			return nil, errors.Validation("owner_id 不能为空")
		}
		ownerID = req.OwnerID
	case caller.IsOwner():
	default:
		return nil, errors.ErrPermissionDenied
	}

	domain := strings.ToLower(strings.TrimSpace(req.Domain))
	if domain == "" {
		domain = utils.Slugify(req.Name)
	}
	if !utils.ValidateDomain(domain) {
		return nil, errors.Validation("域名只能包含小写字母、数字和连字符")
	}

	restaurant := &models.Restaurant{
		OwnerID: ownerID,
		Name:    strings.TrimSpace(req.Name),
		Address: req.Address,
		Phone:   req.Phone,
		Domain:  domain,
		Status:  models.RestaurantStatusActive,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repository.New(tx)
		owner, err := r.Owner.GetByID(ctx, ownerID)
		if err != nil {
			if database.IsNotFound(err) {
				return errors.ErrOwnerNotFound
			}
			return errors.ErrDatabaseError.WithError(err)
		}
		if owner.Status != models.OwnerStatusActive {
			return errors.ErrAccountDisabled.WithMessage("店主已停用")
		}
		if err := s.checkDomain(ctx, r, domain, 0); err != nil {
			return err
		}
		if err := r.Restaurant.Create(ctx, restaurant); err != nil {
			if database.IsUniqueViolation(err) {
				return errors.ErrDomainExists
			}
			return errors.ErrDatabaseError.WithError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("restaurant created",
		logger.RestaurantID(restaurant.ID),
		zap.Int64("owner_id", ownerID),
		zap.String("domain", domain),
	)
	return restaurant, nil
}

// GetRestaurant 获取餐厅
func (s *TenantService) GetRestaurant(ctx context.Context, caller access.Caller, id int64) (*models.Restaurant, error) {
	if err := s.authz.AuthorizeRestaurant(ctx, s.db, caller, id, access.ActionRead); err != nil {
		return nil, err
	}
	return s.loadRestaurant(ctx, s.repos, id)
}

// ListRestaurants 获取调用方可见的餐厅列表
func (s *TenantService) ListRestaurants(ctx context.Context, caller access.Caller, filter *RestaurantFilter, offset, limit int) ([]*models.Restaurant, int64, error) {
	filters := map[string]interface{}{
		"status":  filter.Status,
		"keyword": filter.Keyword,
	}
	switch caller.Role {
	case models.RolePlatformAdmin:
		filters["owner_id"] = filter.OwnerID
	case models.RoleKitchenOwner:
		filters["owner_id"] = caller.OwnerID
	case models.RoleManager, models.RoleStaff:
		filters["ids"] = []int64{caller.RestaurantID}
	default:
		return nil, 0, errors.ErrPermissionDenied
	}

	list, total, err := s.repos.Restaurant.List(ctx, offset, limit, filters)
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}
	return list, total, nil
}

// UpdateRestaurant 更新餐厅信息
func (s *TenantService) UpdateRestaurant(ctx context.Context, caller access.Caller, id int64, req *UpdateRestaurantRequest) (*models.Restaurant, error) {
	var oldDomain string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repository.New(tx)
		if err := s.authz.AuthorizeRestaurant(ctx, tx, caller, id, access.ActionOwn); err != nil {
			return err
		}
		current, err := s.loadRestaurant(ctx, r, id)
		if err != nil {
			return err
		}
		oldDomain = current.Domain

		fields := make(map[string]interface{})
		if req.Name != nil {
			fields["name"] = strings.TrimSpace(*req.Name)
		}
		if req.Address != nil {
			fields["address"] = *req.Address
		}
		if req.Phone != nil {
			fields["phone"] = *req.Phone
		}
		if req.Domain != nil {
			domain := strings.ToLower(strings.TrimSpace(*req.Domain))
			if !utils.ValidateDomain(domain) {
				return errors.Validation("域名只能包含小写字母、数字和连字符")
			}
			if domain != current.Domain {
				if err := s.checkDomain(ctx, r, domain, id); err != nil {
					return err
				}
				fields["domain"] = domain
			}
		}
		if len(fields) == 0 {
			return nil
		}
		if err := r.Restaurant.UpdateFields(ctx, id, fields); err != nil {
			if database.IsUniqueViolation(err) {
				return errors.ErrDomainExists
			}
			return errors.ErrDatabaseError.WithError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	restaurant, err := s.loadRestaurant(ctx, s.repos, id)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, oldDomain, restaurant.Domain)
	return restaurant, nil
}

// UpdateStatus 修改餐厅状态，仅平台管理员可执行
func (s *TenantService) UpdateStatus(ctx context.Context, caller access.Caller, id int64, status string) (*models.Restaurant, error) {
	if err := s.authz.RequirePlatformAdmin(caller); err != nil {
		return nil, err
	}
	if !models.IsValidRestaurantStatus(status) {
		return nil, errors.Validation("无效的餐厅状态 %s", status)
	}

	restaurant, err := s.loadRestaurant(ctx, s.repos, id)
	if err != nil {
		return nil, err
	}
	if err := s.repos.Restaurant.UpdateStatus(ctx, id, status); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	restaurant.Status = status
	s.invalidate(ctx, restaurant.Domain)

	logger.Info("restaurant status changed",
		logger.RestaurantID(id),
		zap.String("status", status),
	)
	return restaurant, nil
}

// DeleteRestaurant 删除餐厅及全部下属数据，提交后清理员工身份账号
func (s *TenantService) DeleteRestaurant(ctx context.Context, caller access.Caller, id int64) error {
	var domain string
	var accountIDs []int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repository.New(tx)
		if err := s.authz.AuthorizeRestaurant(ctx, tx, caller, id, access.ActionOwn); err != nil {
			return err
		}
		restaurant, err := s.loadRestaurant(ctx, r, id)
		if err != nil {
			return err
		}
		domain = restaurant.Domain

		accountIDs, err = r.User.ListAuthAccountIDsByRestaurant(ctx, id)
		if err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		if err := r.Restaurant.DeleteCascade(ctx, id); err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, accountID := range accountIDs {
		if err := s.provider.DeleteAccount(ctx, accountID); err != nil {
			logger.Warn("failed to delete staff identity account",
				logger.RestaurantID(id),
				logger.AccountID(accountID),
				logger.Err(err),
			)
		}
	}
	s.invalidate(ctx, domain)

	logger.Info("restaurant deleted", logger.RestaurantID(id), zap.Int("staff_accounts", len(accountIDs)))
	return nil
}

// GetByDomain 按域名公开查询营业中的餐厅，结果经 Redis 缓存
func (s *TenantService) GetByDomain(ctx context.Context, domain string) (*PublicRestaurant, error) {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return nil, errors.ErrRestaurantNotFound
	}
	key := cache.BuildKey(cache.KeyPrefixRestaurantDomain, domain)

	var cached PublicRestaurant
	err := s.cache.GetJSON(ctx, key, &cached)
	switch {
	case err == nil:
		s.metrics.RecordCacheHit(domainCacheName)
		return &cached, nil
	case !cache.IsMiss(err):
		logger.Warn("restaurant domain cache read failed", zap.String("domain", domain), logger.Err(err))
	}
	s.metrics.RecordCacheMiss(domainCacheName)

	restaurant, err := s.repos.Restaurant.GetByDomain(ctx, domain)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, errors.ErrRestaurantNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if restaurant.Status != models.RestaurantStatusActive {
		return nil, errors.ErrRestaurantNotFound
	}

	public := &PublicRestaurant{
		ID:      restaurant.ID,
		Name:    restaurant.Name,
		Domain:  restaurant.Domain,
		Address: restaurant.Address,
		Phone:   restaurant.Phone,
	}
	if err := s.cache.SetJSON(ctx, key, public, s.cacheTTL); err != nil {
		logger.Warn("restaurant domain cache write failed", zap.String("domain", domain), logger.Err(err))
	}
	return public, nil
}

func (s *TenantService) checkDomain(ctx context.Context, r *repository.Repositories, domain string, excludeID int64) error {
	exists, err := r.Restaurant.ExistsByDomain(ctx, domain, excludeID)
	if err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}
	if exists {
		return errors.ErrDomainExists
	}
	return nil
}

func (s *TenantService) loadRestaurant(ctx context.Context, r *repository.Repositories, id int64) (*models.Restaurant, error) {
	restaurant, err := r.Restaurant.GetByID(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, errors.ErrRestaurantNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return restaurant, nil
}

// invalidate 删除域名缓存，失败只记录日志
func (s *TenantService) invalidate(ctx context.Context, domains ...string) {
	keys := make([]string, 0, len(domains))
	for _, d := range utils.Unique(domains) {
		if d != "" {
			keys = append(keys, cache.BuildKey(cache.KeyPrefixRestaurantDomain, d))
		}
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		logger.Warn("restaurant domain cache invalidation failed", zap.Strings("keys", keys), logger.Err(err))
	}
}
