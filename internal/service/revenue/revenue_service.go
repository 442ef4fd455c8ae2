// Package revenue 营业点服务：营业点、营业时间、营业状态与点餐二维码
package revenue

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dumeirei/kitchen-pos-backend/internal/common/config"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/database"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/errors"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/logger"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/qrcode"
	"github.com/dumeirei/kitchen-pos-backend/internal/models"
	"github.com/dumeirei/kitchen-pos-backend/internal/repository"
	"github.com/dumeirei/kitchen-pos-backend/internal/service/access"
)

// RevenueCenterService 营业点服务
type RevenueCenterService struct {
	db      *gorm.DB
	repos   *repository.Repositories
	authz   *access.Authorizer
	qr      *qrcode.Generator
	baseURL string
	loc     *time.Location
	now     func() time.Time
}

// NewRevenueCenterService 创建营业点服务
func NewRevenueCenterService(db *gorm.DB, authz *access.Authorizer, cfg *config.BusinessConfig, publicBaseURL string) *RevenueCenterService {
	return &RevenueCenterService{
		db:      db,
		repos:   repository.New(db),
		authz:   authz,
		qr:      qrcode.NewGenerator(qrcode.WithSize(320), qrcode.WithHighRecovery()),
		baseURL: publicBaseURL,
		loc:     cfg.Location(),
		now:     time.Now,
	}
}

// CreateCenterRequest 创建营业点请求
type CreateCenterRequest struct {
	RestaurantID int64  `json:"restaurant_id" binding:"required"`
	Name         string `json:"name" binding:"required,max=100"`
	Type         string `json:"type" binding:"required"`
	IsActive     *bool  `json:"is_active"`
}

// UpdateCenterRequest 更新营业点请求
type UpdateCenterRequest struct {
	Name     *string `json:"name" binding:"omitempty,max=100"`
	Type     *string `json:"type"`
	IsActive *bool   `json:"is_active"`
}

// CenterFilter 营业点列表过滤条件
type CenterFilter struct {
	RestaurantID int64
	Type         string
	IsActive     *bool
}

// HoursInput 某一天的营业时间
type HoursInput struct {
	DayOfWeek int     `json:"day_of_week"`
	OpenTime  *string `json:"open_time"`
	CloseTime *string `json:"close_time"`
	IsClosed  bool    `json:"is_closed"`
}

// OpenStatus 营业状态
type OpenStatus struct {
	RevenueCenterID int64                 `json:"revenue_center_id"`
	IsActive        bool                  `json:"is_active"`
	IsOpen          bool                  `json:"is_open"`
	At              time.Time             `json:"at"`
	DayOfWeek       int                   `json:"day_of_week"`
	Hours           *models.BusinessHours `json:"hours,omitempty"`
}

// CreateCenter 创建营业点
func (s *RevenueCenterService) CreateCenter(ctx context.Context, caller access.Caller, req *CreateCenterRequest) (*models.RevenueCenter, error) {
	if !models.IsValidRevenueCenterType(req.Type) {
		return nil, errors.Validation("无效的营业点类型 %s", req.Type)
	}
	center := &models.RevenueCenter{
		RestaurantID: req.RestaurantID,
		Name:         strings.TrimSpace(req.Name),
		Type:         req.Type,
		IsActive:     true,
	}
	if req.IsActive != nil {
		center.IsActive = *req.IsActive
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.authz.AuthorizeRestaurant(ctx, tx, caller, req.RestaurantID, access.ActionManage); err != nil {
			return err
		}
		if err := repository.New(tx).RevenueCenter.Create(ctx, center); err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("revenue center created", logger.RestaurantID(center.RestaurantID), logger.RevenueCenterID(center.ID))
	return center, nil
}

// GetCenter 获取营业点及一周营业时间
func (s *RevenueCenterService) GetCenter(ctx context.Context, caller access.Caller, id int64) (*models.RevenueCenter, error) {
	center, err := s.repos.RevenueCenter.GetByIDWithHours(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, errors.ErrRevenueCenterNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if err := s.authz.AuthorizeRevenueCenter(ctx, s.db, caller, center.RestaurantID, center.ID, access.ActionRead); err != nil {
		return nil, err
	}
	return center, nil
}

// ListCenters 获取餐厅的营业点，员工只能看到已分配的营业点
func (s *RevenueCenterService) ListCenters(ctx context.Context, caller access.Caller, filter *CenterFilter, offset, limit int) ([]*models.RevenueCenter, int64, error) {
	if err := s.authz.AuthorizeRestaurant(ctx, s.db, caller, filter.RestaurantID, access.ActionRead); err != nil {
		return nil, 0, err
	}

	filters := map[string]interface{}{
		"restaurant_id": filter.RestaurantID,
		"type":          filter.Type,
	}
	if filter.IsActive != nil {
		filters["is_active"] = *filter.IsActive
	}
	ids, restricted, err := s.authz.AssignedRevenueCenters(ctx, s.db, caller)
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}
	if restricted {
		if len(ids) == 0 {
			return []*models.RevenueCenter{}, 0, nil
		}
		filters["ids"] = ids
	}

	list, total, err := s.repos.RevenueCenter.List(ctx, offset, limit, filters)
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}
	return list, total, nil
}

// UpdateCenter 更新营业点
func (s *RevenueCenterService) UpdateCenter(ctx context.Context, caller access.Caller, id int64, req *UpdateCenterRequest) (*models.RevenueCenter, error) {
	fields := make(map[string]interface{})
	if req.Name != nil {
		fields["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Type != nil {
		if !models.IsValidRevenueCenterType(*req.Type) {
			return nil, errors.Validation("无效的营业点类型 %s", *req.Type)
		}
		fields["type"] = *req.Type
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repository.New(tx)
		center, err := s.loadCenter(ctx, r, id)
		if err != nil {
			return err
		}
		if err := s.authz.AuthorizeRestaurant(ctx, tx, caller, center.RestaurantID, access.ActionManage); err != nil {
			return err
		}
		if len(fields) == 0 {
			return nil
		}
		if err := r.RevenueCenter.UpdateFields(ctx, id, fields); err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	center, err := s.repos.RevenueCenter.GetByIDWithHours(ctx, id)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return center, nil
}

// DeleteCenter 删除营业点及其菜单与营业时间；已有订单明细的营业点不能删除
func (s *RevenueCenterService) DeleteCenter(ctx context.Context, caller access.Caller, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repository.New(tx)
		center, err := s.loadCenter(ctx, r, id)
		if err != nil {
			return err
		}
		if err := s.authz.AuthorizeRestaurant(ctx, tx, caller, center.RestaurantID, access.ActionManage); err != nil {
			return err
		}
		used, err := r.RevenueCenter.HasOrderItems(ctx, id)
		if err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		if used {
			return errors.Conflict("营业点已有订单记录，请改为停用")
		}
		if err := r.RevenueCenter.DeleteCascade(ctx, id); err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		logger.Info("revenue center deleted", logger.RestaurantID(center.RestaurantID), logger.RevenueCenterID(id))
		return nil
	})
}

// SetBusinessHours 批量写入营业时间，未提交的日期保持不变
func (s *RevenueCenterService) SetBusinessHours(ctx context.Context, caller access.Caller, centerID int64, input []HoursInput) ([]*models.BusinessHours, error) {
	rows, err := buildHours(centerID, input)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repository.New(tx)
		center, err := s.loadCenter(ctx, r, centerID)
		if err != nil {
			return err
		}
		if err := s.authz.AuthorizeRestaurant(ctx, tx, caller, center.RestaurantID, access.ActionManage); err != nil {
			return err
		}
		if err := r.BusinessHours.Upsert(ctx, rows); err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	hours, err := s.repos.BusinessHours.ListByCenter(ctx, centerID)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return hours, nil
}

// DeleteBusinessHours 删除某一天的营业时间，该天视为休息
func (s *RevenueCenterService) DeleteBusinessHours(ctx context.Context, caller access.Caller, centerID int64, dayOfWeek int) error {
	if dayOfWeek < 0 || dayOfWeek > 6 {
		return errors.ErrBusinessHoursInvalid.WithMessage("day_of_week 取值 0-6")
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repository.New(tx)
		center, err := s.loadCenter(ctx, r, centerID)
		if err != nil {
			return err
		}
		if err := s.authz.AuthorizeRestaurant(ctx, tx, caller, center.RestaurantID, access.ActionManage); err != nil {
			return err
		}
		if err := r.BusinessHours.Delete(ctx, centerID, dayOfWeek); err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		return nil
	})
}

// OpenStatus 计算营业点在 at 时刻的营业状态，at 为零值时取当前时间
func (s *RevenueCenterService) OpenStatus(ctx context.Context, caller access.Caller, centerID int64, at time.Time) (*OpenStatus, error) {
	center, err := s.loadCenter(ctx, s.repos, centerID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.AuthorizeRevenueCenter(ctx, s.db, caller, center.RestaurantID, center.ID, access.ActionRead); err != nil {
		return nil, err
	}

	if at.IsZero() {
		at = s.now()
	}
	local := at.In(s.loc)
	day := int(local.Weekday())

	hours, err := s.repos.BusinessHours.Get(ctx, centerID, day)
	if err != nil {
		if !database.IsNotFound(err) {
			return nil, errors.ErrDatabaseError.WithError(err)
		}
		hours = nil
	}

	return &OpenStatus{
		RevenueCenterID: centerID,
		IsActive:        center.IsActive,
		IsOpen:          IsOpenAt(hours, local),
		At:              local,
		DayOfWeek:       day,
		Hours:           hours,
	}, nil
}

// QRCode 生成营业点点餐页二维码 PNG
func (s *RevenueCenterService) QRCode(ctx context.Context, caller access.Caller, centerID int64) ([]byte, string, error) {
	center, err := s.loadCenter(ctx, s.repos, centerID)
	if err != nil {
		return nil, "", err
	}
	if err := s.authz.AuthorizeRestaurant(ctx, s.db, caller, center.RestaurantID, access.ActionRead); err != nil {
		return nil, "", err
	}
	restaurant, err := s.repos.Restaurant.GetByID(ctx, center.RestaurantID)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, "", errors.ErrRestaurantNotFound
		}
		return nil, "", errors.ErrDatabaseError.WithError(err)
	}

	menuURL := qrcode.MenuURL(s.baseURL, restaurant.Domain, center.ID)
	png, err := s.qr.PNG(menuURL)
	if err != nil {
		logger.Error("failed to generate qrcode", logger.RevenueCenterID(centerID), zap.String("url", menuURL), logger.Err(err))
		return nil, "", errors.ErrInternalError.WithError(err)
	}
	return png, menuURL, nil
}

func (s *RevenueCenterService) loadCenter(ctx context.Context, r *repository.Repositories, id int64) (*models.RevenueCenter, error) {
	center, err := r.RevenueCenter.GetByID(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, errors.ErrRevenueCenterNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return center, nil
}

func buildHours(centerID int64, input []HoursInput) ([]*models.BusinessHours, error) {
	if len(input) == 0 {
		return nil, errors.ErrBusinessHoursInvalid.WithMessage("营业时间不能为空")
	}
	seen := make(map[int]bool, len(input))
	rows := make([]*models.BusinessHours, 0, len(input))
	for _, in := range input {
		if in.DayOfWeek < 0 || in.DayOfWeek > 6 {
			return nil, errors.ErrBusinessHoursInvalid.WithMessagef("day_of_week 取值 0-6，收到 %d", in.DayOfWeek)
		}
		if seen[in.DayOfWeek] {
			return nil, errors.ErrBusinessHoursInvalid.WithMessagef("day_of_week %d 重复", in.DayOfWeek)
		}
		seen[in.DayOfWeek] = true

		row := &models.BusinessHours{RevenueCenterID: centerID, DayOfWeek: in.DayOfWeek, IsClosed: in.IsClosed}
		if !in.IsClosed && (in.OpenTime == nil || in.CloseTime == nil) {
			return nil, errors.ErrBusinessHoursInvalid.WithMessagef("day_of_week %d 缺少营业时间", in.DayOfWeek)
		}
		for _, pair := range []struct {
			src *string
			dst **string
		}{{in.OpenTime, &row.OpenTime}, {in.CloseTime, &row.CloseTime}} {
			if pair.src == nil {
				continue
			}
			normalized, err := NormalizeClock(*pair.src)
			if err != nil {
				return nil, errors.ErrBusinessHoursInvalid.WithMessagef("时间格式应为 HH:MM 或 HH:MM:SS，收到 %q", *pair.src)
			}
			*pair.dst = &normalized
		}
		rows = append(rows, row)
	}
	return rows, nil
}
