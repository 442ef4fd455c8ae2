// Package customer 顾客档案服务
//
// 顾客的消费统计（total_orders、total_spent、last_order_at）只由订单状态变更维护，
// 这里的创建与更新都不会写入这些字段。
package customer

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/dumeirei/kitchen-pos-backend/internal/common/database"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/errors"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/logger"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/utils"
	"github.com/dumeirei/kitchen-pos-backend/internal/models"
	"github.com/dumeirei/kitchen-pos-backend/internal/repository"
	"github.com/dumeirei/kitchen-pos-backend/internal/service/access"
)

// CustomerService 顾客服务
type CustomerService struct {
	db    *gorm.DB
	repos *repository.Repositories
	authz *access.Authorizer
}

// NewCustomerService 创建顾客服务
func NewCustomerService(db *gorm.DB, authz *access.Authorizer) *CustomerService {
	return &CustomerService{
		db:    db,
		repos: repository.New(db),
		authz: authz,
	}
}

// CreateCustomerRequest 创建顾客请求
type CreateCustomerRequest struct {
	RestaurantID int64   `json:"restaurant_id" binding:"required"`
	Name         *string `json:"name" binding:"omitempty,max=100"`
	Email        *string `json:"email"`
	Phone        *string `json:"phone" binding:"omitempty,max=30"`
	Notes        *string `json:"notes"`
}

// UpdateCustomerRequest 更新顾客资料
type UpdateCustomerRequest struct {
	Name  *string `json:"name" binding:"omitempty,max=100"`
	Email *string `json:"email"`
	Phone *string `json:"phone" binding:"omitempty,max=30"`
	Notes *string `json:"notes"`
}

// CustomerFilter 顾客过滤条件
type CustomerFilter struct {
	RestaurantID int64
	Keyword      string
	Sort         string // total_spent 按消费金额排序
}

// CreateCustomer 创建顾客
func (s *CustomerService) CreateCustomer(ctx context.Context, caller access.Caller, req *CreateCustomerRequest) (*models.Customer, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	customer := &models.Customer{
		RestaurantID: req.RestaurantID,
		Name:         trimPtr(req.Name),
		Email:        email,
		Phone:        trimPtr(req.Phone),
		Notes:        req.Notes,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.authz.AuthorizeRestaurant(ctx, tx, caller, req.RestaurantID, access.ActionOperate); err != nil {
			return err
		}
		if err := repository.New(tx).Customer.Create(ctx, customer); err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("customer created", logger.RestaurantID(customer.RestaurantID), logger.CustomerID(customer.ID))
	return customer, nil
}

// GetCustomer 获取顾客
func (s *CustomerService) GetCustomer(ctx context.Context, caller access.Caller, id int64) (*models.Customer, error) {
	customer, err := s.loadCustomer(ctx, s.repos, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.AuthorizeRestaurant(ctx, s.db, caller, customer.RestaurantID, access.ActionRead); err != nil {
		return nil, err
	}
	return customer, nil
}

// ListCustomers 获取餐厅顾客
func (s *CustomerService) ListCustomers(ctx context.Context, caller access.Caller, filter *CustomerFilter, offset, limit int) ([]*models.Customer, int64, error) {
	if err := s.authz.AuthorizeRestaurant(ctx, s.db, caller, filter.RestaurantID, access.ActionRead); err != nil {
		return nil, 0, err
	}
	list, total, err := s.repos.Customer.List(ctx, offset, limit, map[string]interface{}{
		"restaurant_id": filter.RestaurantID,
		"keyword":       strings.TrimSpace(filter.Keyword),
		"sort":          filter.Sort,
	})
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}
	return list, total, nil
}

// UpdateCustomer 更新顾客资料
func (s *CustomerService) UpdateCustomer(ctx context.Context, caller access.Caller, id int64, req *UpdateCustomerRequest) (*models.Customer, error) {
	fields := make(map[string]interface{})
	if req.Name != nil {
		fields["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		email, err := normalizeEmail(req.Email)
		if err != nil {
			return nil, err
		}
		fields["email"] = email
	}
	if req.Phone != nil {
		fields["phone"] = strings.TrimSpace(*req.Phone)
	}
	if req.Notes != nil {
		fields["notes"] = *req.Notes
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repository.New(tx)
		customer, err := s.loadCustomer(ctx, r, id)
		if err != nil {
			return err
		}
		if err := s.authz.AuthorizeRestaurant(ctx, tx, caller, customer.RestaurantID, access.ActionOperate); err != nil {
			return err
		}
		if len(fields) == 0 {
			return nil
		}
		if err := r.Customer.UpdateProfile(ctx, id, fields); err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.loadCustomer(ctx, s.repos, id)
}

// DeleteCustomer 删除顾客，历史订单保留并解除关联
func (s *CustomerService) DeleteCustomer(ctx context.Context, caller access.Caller, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repository.New(tx)
		customer, err := s.loadCustomer(ctx, r, id)
		if err != nil {
			return err
		}
		if err := s.authz.AuthorizeRestaurant(ctx, tx, caller, customer.RestaurantID, access.ActionManage); err != nil {
			return err
		}
		if err := r.Customer.Delete(ctx, id); err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		logger.Info("customer deleted", logger.RestaurantID(customer.RestaurantID), logger.CustomerID(id))
		return nil
	})
}

func (s *CustomerService) loadCustomer(ctx context.Context, r *repository.Repositories, id int64) (*models.Customer, error) {
	customer, err := r.Customer.GetByID(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, errors.ErrCustomerNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return customer, nil
}

// normalizeEmail 空字符串视为清空
func normalizeEmail(email *string) (*string, error) {
	if email == nil {
		return nil, nil
	}
	normalized := utils.NormalizeEmail(*email)
	if normalized == "" {
		return nil, nil
	}
	if !utils.ValidateEmail(normalized) {
		return nil, errors.Validation("邮箱格式不正确")
	}
	return &normalized, nil
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
