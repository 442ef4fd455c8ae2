// Package payment 提供支付记录服务
//
// 支付由店员手工录入，不对接支付网关；订单的支付状态只在读取时由支付记录推导。
package payment

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dumeirei/kitchen-pos-backend/internal/common/database"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/errors"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/logger"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/metrics"
	"github.com/dumeirei/kitchen-pos-backend/internal/models"
	"github.com/dumeirei/kitchen-pos-backend/internal/repository"
	"github.com/dumeirei/kitchen-pos-backend/internal/service/access"
)

// PaymentService 支付服务
type PaymentService struct {
	db      *gorm.DB
	repos   *repository.Repositories
	authz   *access.Authorizer
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewPaymentService 创建支付服务
func NewPaymentService(db *gorm.DB, authz *access.Authorizer) *PaymentService {
	return &PaymentService{
		db:    db,
		repos: repository.New(db),
		authz: authz,
		now:   time.Now,
	}
}

// SetMetrics 设置指标采集
func (s *PaymentService) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
}

// CreatePaymentRequest 创建支付请求
type CreatePaymentRequest struct {
	OrderID   int64           `json:"order_id" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Method    string          `json:"method" binding:"required"`
	Status    string          `json:"status"`
	Reference *string         `json:"reference"`
}

// UpdatePaymentRequest 更新支付请求
type UpdatePaymentRequest struct {
	Amount    *decimal.Decimal `json:"amount"`
	Method    *string          `json:"method"`
	Status    *string          `json:"status"`
	Reference *string          `json:"reference"`
}

// PaymentFilter 支付列表过滤条件
type PaymentFilter struct {
	RestaurantID int64
	OrderID      int64
	Method       string
	Status       string
}

// CreatePayment 录入支付
func (s *PaymentService) CreatePayment(ctx context.Context, caller access.Caller, req *CreatePaymentRequest) (*models.Payment, error) {
	if req.Status == "" {
		req.Status = models.PaymentStatusPending
	}
	if err := validatePayment(req.Amount, req.Method, req.Status); err != nil {
		return nil, err
	}

	payment := &models.Payment{
		OrderID:   req.OrderID,
		Amount:    req.Amount,
		Method:    req.Method,
		Status:    req.Status,
		Reference: req.Reference,
	}
	if req.Status != models.PaymentStatusPending {
		now := s.now()
		payment.ProcessedAt = &now
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repository.New(tx)
		if _, err := s.authorizeOrder(ctx, tx, r, caller, req.OrderID, access.ActionOperate); err != nil {
			return err
		}
		if err := r.Payment.Create(ctx, payment); err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordPayment(payment.Method, payment.Status)
	logger.Info("payment recorded",
		logger.OrderID(payment.OrderID),
		zap.String("amount", payment.Amount.String()),
		zap.String("method", payment.Method),
	)
	return payment, nil
}

// GetPayment 获取支付记录
func (s *PaymentService) GetPayment(ctx context.Context, caller access.Caller, id int64) (*models.Payment, error) {
	payment, err := s.loadPayment(ctx, s.repos, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.authorizeOrder(ctx, s.db, s.repos, caller, payment.OrderID, access.ActionRead); err != nil {
		return nil, err
	}
	return payment, nil
}

// ListPayments 获取支付记录列表
func (s *PaymentService) ListPayments(ctx context.Context, caller access.Caller, filter *PaymentFilter, offset, limit int) ([]*models.Payment, int64, error) {
	if err := s.authz.AuthorizeRestaurant(ctx, s.db, caller, filter.RestaurantID, access.ActionRead); err != nil {
		return nil, 0, err
	}
	if filter.Method != "" && !models.IsValidPaymentMethod(filter.Method) {
		return nil, 0, errors.ErrPaymentMethodInvalid
	}
	if filter.Status != "" && !models.IsValidPaymentStatus(filter.Status) {
		return nil, 0, errors.ErrPaymentStatusInvalid
	}

	filters := map[string]interface{}{
		"restaurant_id": filter.RestaurantID,
		"order_id":      filter.OrderID,
		"method":        filter.Method,
		"status":        filter.Status,
	}
	ids, restricted, err := s.authz.AssignedRevenueCenters(ctx, s.db, caller)
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}
	if restricted {
		filters["revenue_center_ids"] = ids
		filters["created_by"] = caller.AccountID
	}

	payments, total, err := s.repos.Payment.List(ctx, offset, limit, filters)
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}
	return payments, total, nil
}

// UpdatePayment 更新支付记录，状态离开 pending 时记录处理时间
func (s *PaymentService) UpdatePayment(ctx context.Context, caller access.Caller, id int64, req *UpdatePaymentRequest) (*models.Payment, error) {
	var payment *models.Payment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repository.New(tx)
		p, err := s.loadPayment(ctx, r, id)
		if err != nil {
			return err
		}
		if _, err := s.authorizeOrder(ctx, tx, r, caller, p.OrderID, access.ActionOperate); err != nil {
			return err
		}

		fields := make(map[string]interface{})
		if req.Amount != nil {
			p.Amount = *req.Amount
			fields["amount"] = *req.Amount
		}
		if req.Method != nil {
			p.Method = *req.Method
			fields["method"] = *req.Method
		}
		if req.Reference != nil {
			p.Reference = req.Reference
			fields["reference"] = *req.Reference
		}
		if req.Status != nil && *req.Status != p.Status {
			p.Status = *req.Status
			fields["status"] = *req.Status
			if p.Status != models.PaymentStatusPending {
				now := s.now()
				p.ProcessedAt = &now
				fields["processed_at"] = now
			}
		}
		if err := validatePayment(p.Amount, p.Method, p.Status); err != nil {
			return err
		}
		if len(fields) == 0 {
			payment = p
			return nil
		}
		if err := r.Payment.UpdateFields(ctx, p.ID, fields); err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		payment = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	if req.Status != nil {
		s.metrics.RecordPayment(payment.Method, payment.Status)
	}
	return payment, nil
}

// DeletePayment 删除支付记录
func (s *PaymentService) DeletePayment(ctx context.Context, caller access.Caller, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repository.New(tx)
		p, err := s.loadPayment(ctx, r, id)
		if err != nil {
			return err
		}
		if _, err := s.authorizeOrder(ctx, tx, r, caller, p.OrderID, access.ActionManage); err != nil {
			return err
		}
		if err := r.Payment.Delete(ctx, p.ID); err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		return nil
	})
}

// GetSummary 获取订单支付汇总
func (s *PaymentService) GetSummary(ctx context.Context, caller access.Caller, orderID int64) (*Summary, error) {
	order, err := s.authorizeOrder(ctx, s.db, s.repos, caller, orderID, access.ActionRead)
	if err != nil {
		return nil, err
	}
	list, err := s.repos.Payment.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	payments := make([]models.Payment, 0, len(list))
	for _, p := range list {
		payments = append(payments, *p)
	}
	return Summarize(order, payments), nil
}

func (s *PaymentService) loadPayment(ctx context.Context, r *repository.Repositories, id int64) (*models.Payment, error) {
	p, err := r.Payment.GetByID(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, errors.ErrPaymentNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return p, nil
}

// authorizeOrder 支付的权限跟随所属订单，员工受营业点分配限制
func (s *PaymentService) authorizeOrder(ctx context.Context, db *gorm.DB, r *repository.Repositories, caller access.Caller, orderID int64, action access.Action) (*models.Order, error) {
	order, err := r.Order.GetByID(ctx, orderID)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, errors.ErrOrderNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if err := s.authz.AuthorizeOrder(ctx, db, caller, order, action); err != nil {
		return nil, err
	}
	return order, nil
}

func validatePayment(amount decimal.Decimal, method, status string) error {
	if !amount.IsPositive() {
		return errors.ErrPaymentAmountInvalid
	}
	if !models.IsValidPaymentMethod(method) {
		return errors.ErrPaymentMethodInvalid
	}
	if !models.IsValidPaymentStatus(status) {
		return errors.ErrPaymentStatusInvalid
	}
	return nil
}
