// Package menu 菜单服务：分类、菜品、套餐与菜品图片
//
// 分类与菜品归属于营业点，套餐归属于餐厅；所有写操作需要 manager 及以上权限。
package menu

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dumeirei/kitchen-pos-backend/internal/common/database"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/errors"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/logger"
	"github.com/dumeirei/kitchen-pos-backend/internal/models"
	"github.com/dumeirei/kitchen-pos-backend/internal/repository"
	"github.com/dumeirei/kitchen-pos-backend/internal/service/access"
	"github.com/dumeirei/kitchen-pos-backend/pkg/oss"
)

// DefaultMaxImageSize 菜品图片大小上限
const DefaultMaxImageSize = 5 << 20

// MenuService 菜单服务
type MenuService struct {
	db           *gorm.DB
	repos        *repository.Repositories
	authz        *access.Authorizer
	uploader     oss.Uploader
	maxImageSize int64
}

// NewMenuService 创建菜单服务
func NewMenuService(db *gorm.DB, authz *access.Authorizer, uploader oss.Uploader) *MenuService {
	return &MenuService{
		db:           db,
		repos:        repository.New(db),
		authz:        authz,
		uploader:     uploader,
		maxImageSize: DefaultMaxImageSize,
	}
}

// CreateCategoryRequest 创建分类请求
type CreateCategoryRequest struct {
	RevenueCenterID int64   `json:"revenue_center_id" binding:"required"`
	Name            string  `json:"name" binding:"required,max=100"`
	Description     *string `json:"description"`
	SortOrder       int     `json:"sort_order"`
	IsActive        *bool   `json:"is_active"`
}

// UpdateCategoryRequest 更新分类请求
type UpdateCategoryRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=100"`
	Description *string `json:"description"`
	SortOrder   *int    `json:"sort_order"`
	IsActive    *bool   `json:"is_active"`
}

// CategoryFilter 分类过滤条件，RestaurantID 必填
type CategoryFilter struct {
	RestaurantID    int64
	RevenueCenterID int64
	IsActive        *bool
	WithItems       bool
}

// CreateItemRequest 创建菜品请求
type CreateItemRequest struct {
	CategoryID  int64           `json:"category_id" binding:"required"`
	Name        string          `json:"name" binding:"required,max=100"`
	Description *string         `json:"description"`
	Price       decimal.Decimal `json:"price"`
	IsAvailable *bool           `json:"is_available"`
	PrepTime    int             `json:"prep_time" binding:"min=0"`
}

// UpdateItemRequest 更新菜品请求
type UpdateItemRequest struct {
	CategoryID  *int64           `json:"category_id"`
	Name        *string          `json:"name" binding:"omitempty,max=100"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	IsAvailable *bool            `json:"is_available"`
	PrepTime    *int             `json:"prep_time" binding:"omitempty,min=0"`
}

// ItemFilter 菜品过滤条件，RestaurantID 必填
type ItemFilter struct {
	RestaurantID    int64
	CategoryID      int64
	RevenueCenterID int64
	IsAvailable     *bool
	Keyword         string
}

// ImageUpload 菜品图片
type ImageUpload struct {
	Filename string
	Size     int64
	Reader   io.Reader
}

// ==================== 分类 ====================

// CreateCategory 创建分类
func (s *MenuService) CreateCategory(ctx context.Context, caller access.Caller, req *CreateCategoryRequest) (*models.MenuCategory, error) {
	category := &models.MenuCategory{
		RevenueCenterID: req.RevenueCenterID,
		Name:            strings.TrimSpace(req.Name),
		Description:     req.Description,
		SortOrder:       req.SortOrder,
		IsActive:        true,
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repository.New(tx)
		if _, err := s.authorizeCenter(ctx, tx, r, caller, req.RevenueCenterID, access.ActionManage); err != nil {
			return err
		}
		if err := r.MenuCategory.Create(ctx, category); err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

// GetCategory 获取分类
func (s *MenuService) GetCategory(ctx context.Context, caller access.Caller, id int64) (*models.MenuCategory, error) {
	category, _, err := s.authorizeCategory(ctx, s.db, s.repos, caller, id, access.ActionRead)
	return category, err
}

// ListCategories 获取餐厅的菜单分类
func (s *MenuService) ListCategories(ctx context.Context, caller access.Caller, filter *CategoryFilter, offset, limit int) ([]*models.MenuCategory, int64, error) {
	centerIDs, err := s.scopeCenters(ctx, caller, filter.RestaurantID, filter.RevenueCenterID)
	if err != nil {
		return nil, 0, err
	}
	if len(centerIDs) == 0 {
		return []*models.MenuCategory{}, 0, nil
	}

	filters := map[string]interface{}{
		"revenue_center_ids": centerIDs,
		"with_items":         filter.WithItems,
	}
	if filter.IsActive != nil {
		filters["is_active"] = *filter.IsActive
	}
	list, total, err := s.repos.MenuCategory.List(ctx, offset, limit, filters)
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}
	return list, total, nil
}

// UpdateCategory 更新分类
func (s *MenuService) UpdateCategory(ctx context.Context, caller access.Caller, id int64, req *UpdateCategoryRequest) (*models.MenuCategory, error) {
	fields := make(map[string]interface{})
	if req.Name != nil {
		fields["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.SortOrder != nil {
		fields["sort_order"] = *req.SortOrder
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repository.New(tx)
		if _, _, err := s.authorizeCategory(ctx, tx, r, caller, id, access.ActionManage); err != nil {
			return err
		}
		if len(fields) == 0 {
			return nil
		}
		if err := r.MenuCategory.UpdateFields(ctx, id, fields); err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.loadCategory(ctx, s.repos, id)
}

// DeleteCategory 删除分类及其菜品，历史订单保留下单时的菜品名称
func (s *MenuService) DeleteCategory(ctx context.Context, caller access.Caller, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repository.New(tx)
		if _, _, err := s.authorizeCategory(ctx, tx, r, caller, id, access.ActionManage); err != nil {
			return err
		}
		if err := r.MenuCategory.DeleteCascade(ctx, id); err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		return nil
	})
}

// ==================== 菜品 ====================

// CreateItem 创建菜品
func (s *MenuService) CreateItem(ctx context.Context, caller access.Caller, req *CreateItemRequest) (*models.MenuItem, error) {
	if req.Price.IsNegative() {
		return nil, errors.Validation("价格不能为负数")
	}
	item := &models.MenuItem{
		CategoryID:  req.CategoryID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.Price.Round(2),
		IsAvailable: true,
		PrepTime:    req.PrepTime,
	}
	if req.IsAvailable != nil {
		item.IsAvailable = *req.IsAvailable
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repository.New(tx)
		if _, _, err := s.authorizeCategory(ctx, tx, r, caller, req.CategoryID, access.ActionManage); err != nil {
			return err
		}
		if err := r.MenuItem.Create(ctx, item); err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// GetItem 获取菜品
func (s *MenuService) GetItem(ctx context.Context, caller access.Caller, id int64) (*models.MenuItem, error) {
	if _, err := s.authorizeItem(ctx, s.db, s.repos, caller, id, access.ActionRead); err != nil {
		return nil, err
	}
	return s.loadItem(ctx, s.repos, id)
}

// ListItems 获取餐厅菜品
func (s *MenuService) ListItems(ctx context.Context, caller access.Caller, filter *ItemFilter, offset, limit int) ([]*models.MenuItem, int64, error) {
	if err := s.authz.AuthorizeRestaurant(ctx, s.db, caller, filter.RestaurantID, access.ActionRead); err != nil {
		return nil, 0, err
	}
	filters := map[string]interface{}{
		"restaurant_id":     filter.RestaurantID,
		"category_id":       filter.CategoryID,
		"revenue_center_id": filter.RevenueCenterID,
		"keyword":           filter.Keyword,
	}
	if filter.IsAvailable != nil {
		filters["is_available"] = *filter.IsAvailable
	}
	list, total, err := s.repos.MenuItem.List(ctx, offset, limit, filters)
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}
	return list, total, nil
}

// UpdateItem 更新菜品；移动分类时新分类必须属于同一餐厅
func (s *MenuService) UpdateItem(ctx context.Context, caller access.Caller, id int64, req *UpdateItemRequest) (*models.MenuItem, error) {
	fields := make(map[string]interface{})
	if req.Name != nil {
		fields["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, errors.Validation("价格不能为负数")
		}
		fields["price"] = req.Price.Round(2)
	}
	if req.IsAvailable != nil {
		fields["is_available"] = *req.IsAvailable
	}
	if req.PrepTime != nil {
		fields["prep_time"] = *req.PrepTime
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repository.New(tx)
		own, err := s.authorizeItem(ctx, tx, r, caller, id, access.ActionManage)
		if err != nil {
			return err
		}
		if req.CategoryID != nil {
			_, restaurantID, err := s.authorizeCategory(ctx, tx, r, caller, *req.CategoryID, access.ActionManage)
			if err != nil {
				return err
			}
			if restaurantID != own.RestaurantID {
				return errors.Referential("分类 %d 不属于该餐厅", *req.CategoryID)
			}
			fields["category_id"] = *req.CategoryID
		}
		if len(fields) == 0 {
			return nil
		}
		if err := r.MenuItem.UpdateFields(ctx, id, fields); err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.loadItem(ctx, s.repos, id)
}

// DeleteItem 删除菜品，历史订单明细的引用置空
func (s *MenuService) DeleteItem(ctx context.Context, caller access.Caller, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repository.New(tx)
		if _, err := s.authorizeItem(ctx, tx, r, caller, id, access.ActionManage); err != nil {
			return err
		}
		if err := r.MenuItem.Delete(ctx, id); err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		return nil
	})
}

// UploadImage 上传菜品图片并保存地址
func (s *MenuService) UploadImage(ctx context.Context, caller access.Caller, id int64, img *ImageUpload) (*models.MenuItem, error) {
	own, err := s.authorizeItem(ctx, s.db, s.repos, caller, id, access.ActionManage)
	if err != nil {
		return nil, err
	}
	reader, err := oss.ValidateImage(img.Filename, img.Size, s.maxImageSize, img.Reader)
	if err != nil {
		return nil, errors.Validation("%s", err.Error())
	}

	key := oss.GenerateObjectKey("menu-items/"+strconv.FormatInt(own.RestaurantID, 10), img.Filename)
	url, err := s.uploader.Upload(ctx, key, oss.GetContentType(img.Filename), reader)
	if err != nil {
		logger.Error("menu image upload failed", logger.RestaurantID(own.RestaurantID), zap.String("key", key), logger.Err(err))
		return nil, errors.ErrExternalService.WithError(err)
	}

	if err := s.repos.MenuItem.UpdateFields(ctx, id, map[string]interface{}{"image_url": url}); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	logger.Info("menu image uploaded", logger.RestaurantID(own.RestaurantID), zap.Int64("menu_item_id", id), zap.String("key", key))
	return s.loadItem(ctx, s.repos, id)
}

// ==================== 授权与加载 ====================

// scopeCenters 返回餐厅下可查询的营业点；centerID 非零时只取该营业点
func (s *MenuService) scopeCenters(ctx context.Context, caller access.Caller, restaurantID, centerID int64) ([]int64, error) {
	if err := s.authz.AuthorizeRestaurant(ctx, s.db, caller, restaurantID, access.ActionRead); err != nil {
		return nil, err
	}
	filters := map[string]interface{}{"restaurant_id": restaurantID}
	if centerID > 0 {
		filters["ids"] = []int64{centerID}
	}
	centers, _, err := s.repos.RevenueCenter.List(ctx, 0, -1, filters)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	ids := make([]int64, 0, len(centers))
	for _, c := range centers {
		ids = append(ids, c.ID)
	}
	return ids, nil
}

func (s *MenuService) authorizeCenter(ctx context.Context, db *gorm.DB, r *repository.Repositories, caller access.Caller, centerID int64, action access.Action) (*models.RevenueCenter, error) {
	center, err := r.RevenueCenter.GetByID(ctx, centerID)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, errors.ErrRevenueCenterNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if err := s.authz.AuthorizeRestaurant(ctx, db, caller, center.RestaurantID, action); err != nil {
		return nil, err
	}
	return center, nil
}

// authorizeCategory 返回分类及其所属餐厅
func (s *MenuService) authorizeCategory(ctx context.Context, db *gorm.DB, r *repository.Repositories, caller access.Caller, id int64, action access.Action) (*models.MenuCategory, int64, error) {
	category, err := s.loadCategory(ctx, r, id)
	if err != nil {
		return nil, 0, err
	}
	center, err := s.authorizeCenter(ctx, db, r, caller, category.RevenueCenterID, action)
	if err != nil {
		return nil, 0, err
	}
	return category, center.RestaurantID, nil
}

func (s *MenuService) authorizeItem(ctx context.Context, db *gorm.DB, r *repository.Repositories, caller access.Caller, id int64, action access.Action) (*repository.MenuItemOwnership, error) {
	own, err := r.MenuItem.GetOwnership(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, errors.ErrMenuItemNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if err := s.authz.AuthorizeRestaurant(ctx, db, caller, own.RestaurantID, action); err != nil {
		return nil, err
	}
	return own, nil
}

func (s *MenuService) loadCategory(ctx context.Context, r *repository.Repositories, id int64) (*models.MenuCategory, error) {
	category, err := r.MenuCategory.GetByID(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, errors.ErrCategoryNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return category, nil
}

func (s *MenuService) loadItem(ctx context.Context, r *repository.Repositories, id int64) (*models.MenuItem, error) {
	item, err := r.MenuItem.GetByID(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, errors.ErrMenuItemNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return item, nil
}
