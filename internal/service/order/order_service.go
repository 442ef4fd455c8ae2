// Package order 订单服务
//
// 订单号分配、明细校验、金额计算与顾客统计都在同一个数据库事务内完成；
// 后厨通知与指标在事务提交之后发出。
package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dumeirei/kitchen-pos-backend/internal/common/config"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/database"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/errors"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/logger"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/metrics"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/tracing"
	"github.com/dumeirei/kitchen-pos-backend/internal/models"
	"github.com/dumeirei/kitchen-pos-backend/internal/repository"
	"github.com/dumeirei/kitchen-pos-backend/internal/service/access"
	"github.com/dumeirei/kitchen-pos-backend/internal/service/payment"
)

// OrderService 订单服务
type OrderService struct {
	db         *gorm.DB
	repos      *repository.Repositories
	authz      *access.Authorizer
	validator  *ItemValidator
	aggregator *CustomerStatsAggregator
	notifier   Notifier
	metrics    *metrics.Metrics
	loc        *time.Location
	taxRate    decimal.Decimal
	retries    int
	now        func() time.Time
}

// NewOrderService 创建订单服务
func NewOrderService(db *gorm.DB, authz *access.Authorizer, cfg *config.BusinessConfig) *OrderService {
	retries := cfg.OrderNumberRetries
	if retries <= 0 {
		retries = 1
	}
	return &OrderService{
		db:         db,
		repos:      repository.New(db),
		authz:      authz,
		validator:  &ItemValidator{},
		aggregator: &CustomerStatsAggregator{},
		notifier:   NopNotifier{},
		loc:        cfg.Location(),
		taxRate:    decimal.NewFromFloat(cfg.TaxRate),
		retries:    retries,
		now:        time.Now,
	}
}

// SetNotifier 设置订单事件通知
func (s *OrderService) SetNotifier(n Notifier) {
	if n == nil {
		n = NopNotifier{}
	}
	s.notifier = n
}

// SetMetrics 设置指标
func (s *OrderService) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
}

// CreateOrderRequest 创建订单请求
type CreateOrderRequest struct {
	RestaurantID   int64            `json:"restaurant_id" binding:"required"`
	CustomerID     *int64           `json:"customer_id"`
	Type           string           `json:"type" binding:"required"`
	TableNumber    *string          `json:"table_number"`
	Notes          *string          `json:"notes"`
	TaxAmount      *decimal.Decimal `json:"tax_amount"`
	DiscountAmount decimal.Decimal  `json:"discount_amount"`
	Items          []ItemInput      `json:"items"`
}

// UpdateOrderRequest 更新订单请求，nil 字段保持不变
type UpdateOrderRequest struct {
	CustomerID     *int64           `json:"customer_id"`
	ClearCustomer  bool             `json:"clear_customer"`
	Type           *string          `json:"type"`
	TableNumber    *string          `json:"table_number"`
	Notes          *string          `json:"notes"`
	TaxAmount      *decimal.Decimal `json:"tax_amount"`
	DiscountAmount *decimal.Decimal `json:"discount_amount"`
}

// UpdateItemRequest 更新订单明细请求；MenuItemID 或 ComboMealID 任一非空时替换引用
type UpdateItemRequest struct {
	MenuItemID      *int64  `json:"menu_item_id"`
	ComboMealID     *int64  `json:"combo_meal_id"`
	RevenueCenterID *int64  `json:"revenue_center_id"`
	Quantity        *int    `json:"quantity"`
	Status          *string `json:"status"`
	Notes           *string `json:"notes"`
}

// OrderFilter 订单列表过滤条件
type OrderFilter struct {
	RestaurantID int64
	CustomerID   int64
	Status       string
	Type         string
	OrderNumber  string
	StartDate    string
	EndDate      string
}

// OrderDetail 订单详情，支付状态在读取时计算
type OrderDetail struct {
	*models.Order
	PaymentStatus string          `json:"payment_status"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
}

// CreateOrder 创建订单
// 订单号冲突时整笔事务重试，重试时序列追赶到当日已用的最大序号
func (s *OrderService) CreateOrder(ctx context.Context, caller access.Caller, req *CreateOrderRequest) (detail *OrderDetail, err error) {
	ctx, span := tracing.StartSpan(ctx, "order.create", tracing.WithRestaurantID(req.RestaurantID))
	defer func() { tracing.End(span, err) }()

	if !models.IsValidOrderType(req.Type) {
		return nil, errors.ErrOrderTypeInvalid
	}

	var order *models.Order
	for attempt := 0; attempt < s.retries; attempt++ {
		order, err = s.createOnce(ctx, caller, req, attempt > 0)
		if err == nil || !database.IsUniqueViolation(err) {
			break
		}
		s.metrics.RecordOrderNumberRetry()
		logger.Warn("order number conflict, retrying",
			logger.RestaurantID(req.RestaurantID),
			zap.Int("attempt", attempt+1),
		)
	}
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, errors.ErrOrderNumberConflict.WithError(err)
		}
		return nil, err
	}

	tracing.SetAttributes(ctx, tracing.WithOrderID(order.ID), tracing.WithOrderNumber(order.OrderNumber))
	s.metrics.RecordOrder(order.Status)
	logger.Info("order created",
		logger.RestaurantID(order.RestaurantID),
		logger.OrderID(order.ID),
		logger.OrderNumber(order.OrderNumber),
	)
	s.notifier.OrderCreated(ctx, order)

	return &OrderDetail{Order: order, PaymentStatus: models.OrderPaymentPending, PaidAmount: decimal.Zero}, nil
}

func (s *OrderService) createOnce(ctx context.Context, caller access.Caller, req *CreateOrderRequest, catchUp bool) (*models.Order, error) {
	var order *models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repository.New(tx)

		if err := s.authz.AuthorizeRestaurant(ctx, tx, caller, req.RestaurantID, access.ActionOperate); err != nil {
			return err
		}
		if err := s.checkCustomer(ctx, r, req.RestaurantID, req.CustomerID); err != nil {
			return err
		}

		items := make([]models.OrderItem, 0, len(req.Items))
		for i := range req.Items {
			item, err := s.buildItem(ctx, tx, r, caller, req.RestaurantID, &req.Items[i])
			if err != nil {
				return err
			}
			items = append(items, *item)
		}

		totals, err := ComputeTotals(items, req.TaxAmount, req.DiscountAmount, s.taxRate)
		if err != nil {
			return err
		}

		now := s.now()
		businessDate := BusinessDate(now, s.loc)
		number, err := nextOrderNumber(ctx, r, req.RestaurantID, businessDate, catchUp)
		if err != nil {
			return err
		}

		order = &models.Order{
			RestaurantID:   req.RestaurantID,
			CustomerID:     req.CustomerID,
			OrderNumber:    number,
			BusinessDate:   businessDate,
			Type:           req.Type,
			Status:         models.OrderStatusPending,
			Subtotal:       totals.Subtotal,
			TaxAmount:      totals.Tax,
			TaxExplicit:    req.TaxAmount != nil,
			DiscountAmount: totals.Discount,
			TotalAmount:    totals.Total,
			TableNumber:    req.TableNumber,
			Notes:          req.Notes,
			CreatedBy:      creatorOf(caller),
			CreatedAt:      now,
			UpdatedAt:      now,
			Items:          items,
		}
		return r.Order.Create(ctx, order)
	})
	return order, err
}

// buildItem 校验明细并生成带价格快照的行
func (s *OrderService) buildItem(ctx context.Context, tx *gorm.DB, r *repository.Repositories, caller access.Caller, restaurantID int64, in *ItemInput) (*models.OrderItem, error) {
	snap, err := s.validator.Resolve(ctx, r, restaurantID, in)
	if err != nil {
		return nil, err
	}
	if err := s.authz.AuthorizeRevenueCenter(ctx, tx, caller, restaurantID, snap.RevenueCenterID, access.ActionOperate); err != nil {
		return nil, err
	}

	item := &models.OrderItem{
		RevenueCenterID: snap.RevenueCenterID,
		ItemName:        snap.Name,
		Quantity:        in.Quantity,
		UnitPrice:       snap.UnitPrice,
		TotalPrice:      lineTotal(snap.UnitPrice, in.Quantity),
		Status:          in.Status,
		Notes:           in.Notes,
	}
	if in.MenuItemID != nil && *in.MenuItemID > 0 {
		item.MenuItemID = in.MenuItemID
	} else {
		item.ComboMealID = in.ComboMealID
	}
	return item, nil
}

func (s *OrderService) checkCustomer(ctx context.Context, r *repository.Repositories, restaurantID int64, customerID *int64) error {
	if customerID == nil {
		return nil
	}
	customer, err := r.Customer.GetByID(ctx, *customerID)
	if err != nil {
		if database.IsNotFound(err) {
			return errors.Referential("顾客 %d 不存在", *customerID)
		}
		return errors.ErrDatabaseError.WithError(err)
	}
	if customer.RestaurantID != restaurantID {
		return errors.ErrOrderItemCrossTenant.WithMessagef("顾客 %d 不属于该餐厅", *customerID)
	}
	return nil
}

// GetOrder 获取订单详情
func (s *OrderService) GetOrder(ctx context.Context, caller access.Caller, id int64) (*OrderDetail, error) {
	order, err := s.repos.Order.GetByIDWithDetails(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, errors.ErrOrderNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if err := s.authz.AuthorizeOrder(ctx, s.db, caller, order, access.ActionRead); err != nil {
		return nil, err
	}
	return toDetail(order), nil
}

// GetOrderByNumber 根据订单号获取订单详情
func (s *OrderService) GetOrderByNumber(ctx context.Context, caller access.Caller, restaurantID int64, orderNumber string) (*OrderDetail, error) {
	order, err := s.repos.Order.GetByOrderNumber(ctx, restaurantID, orderNumber)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, errors.ErrOrderNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return s.GetOrder(ctx, caller, order.ID)
}

func toDetail(order *models.Order) *OrderDetail {
	summary := payment.Summarize(order, order.Payments)
	return &OrderDetail{Order: order, PaymentStatus: summary.Status, PaidAmount: summary.PaidAmount}
}

// ListOrders 获取订单列表，员工只能看到包含其营业点明细或由其创建的订单
func (s *OrderService) ListOrders(ctx context.Context, caller access.Caller, filter *OrderFilter, offset, limit int) ([]*models.Order, int64, error) {
	if err := s.authz.AuthorizeRestaurant(ctx, s.db, caller, filter.RestaurantID, access.ActionRead); err != nil {
		return nil, 0, err
	}
	if filter.Status != "" && !models.IsValidOrderStatus(filter.Status) {
		return nil, 0, errors.ErrOrderStatusInvalid
	}

	filters := map[string]interface{}{
		"restaurant_id": filter.RestaurantID,
		"customer_id":   filter.CustomerID,
		"status":        filter.Status,
		"type":          filter.Type,
		"order_number":  filter.OrderNumber,
		"start_date":    filter.StartDate,
		"end_date":      filter.EndDate,
	}

	ids, restricted, err := s.authz.AssignedRevenueCenters(ctx, s.db, caller)
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}
	if restricted {
		filters["revenue_center_ids"] = ids
		filters["created_by"] = caller.AccountID
	}

	orders, total, err := s.repos.Order.List(ctx, offset, limit, filters)
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}
	return orders, total, nil
}

// UpdateOrder 更新订单基本信息；已上菜订单不能修改金额和顾客
func (s *OrderService) UpdateOrder(ctx context.Context, caller access.Caller, id int64, req *UpdateOrderRequest) (*OrderDetail, error) {
	if req.Type != nil && !models.IsValidOrderType(*req.Type) {
		return nil, errors.ErrOrderTypeInvalid
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repository.New(tx)
		order, err := s.lockOrder(ctx, tx, r, caller, id, access.ActionOperate)
		if err != nil {
			return err
		}

		fields := map[string]interface{}{"updated_at": s.now()}
		if req.Type != nil {
			fields["type"] = *req.Type
		}
		if req.TableNumber != nil {
			fields["table_number"] = *req.TableNumber
		}
		if req.Notes != nil {
			fields["notes"] = *req.Notes
		}

		if req.CustomerID != nil || req.ClearCustomer {
			if order.Status == models.OrderStatusServed {
				return errors.Validation("已上菜的订单不能更换顾客")
			}
			if req.ClearCustomer {
				fields["customer_id"] = nil
			} else {
				if err := s.checkCustomer(ctx, r, order.RestaurantID, req.CustomerID); err != nil {
					return err
				}
				fields["customer_id"] = *req.CustomerID
			}
		}

		if req.TaxAmount != nil || req.DiscountAmount != nil {
			if order.Status == models.OrderStatusServed {
				return errors.ErrOrderAmountInvalid.WithMessage("已上菜的订单不能修改金额")
			}
			items, err := r.OrderItem.ListByOrder(ctx, order.ID)
			if err != nil {
				return errors.ErrDatabaseError.WithError(err)
			}
			tax := explicitTax(order)
			if req.TaxAmount != nil {
				tax = req.TaxAmount
				fields["tax_explicit"] = true
			}
			discount := order.DiscountAmount
			if req.DiscountAmount != nil {
				discount = *req.DiscountAmount
			}
			totals, err := ComputeTotals(derefItems(items), tax, discount, s.taxRate)
			if err != nil {
				return err
			}
			setTotals(fields, totals)
		}

		return r.Order.UpdateFields(ctx, order.ID, fields)
	})
	if err != nil {
		return nil, err
	}
	return s.GetOrder(ctx, caller, id)
}

// UpdateStatus 更新订单状态
// 状态机是宽松的：任意状态之间都可以直接切换，只有进入 served 和 served->cancelled 会影响顾客统计
func (s *OrderService) UpdateStatus(ctx context.Context, caller access.Caller, id int64, status string) (detail *OrderDetail, err error) {
	ctx, span := tracing.StartSpan(ctx, "order.update_status", tracing.WithOrderID(id), tracing.WithOrderStatus(status))
	defer func() { tracing.End(span, err) }()

	if !models.IsValidOrderStatus(status) {
		return nil, errors.ErrOrderStatusInvalid
	}

	var order *models.Order
	var from string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repository.New(tx)
		o, err := s.lockOrder(ctx, tx, r, caller, id, access.ActionOperate)
		if err != nil {
			return err
		}
		from = o.Status

		if err := r.Order.UpdateStatus(ctx, o, status, s.now()); err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		effect, err := s.aggregator.Apply(ctx, r.Customer, o, from)
		if err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		if effect != StatsNone {
			tracing.AddEvent(ctx, "customer_stats_updated")
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordOrderTransition(from, status)
	logger.Info("order status changed",
		logger.RestaurantID(order.RestaurantID),
		logger.OrderID(order.ID),
		zap.String("from", from),
		zap.String("to", status),
	)
	s.notifier.OrderStatusChanged(ctx, order, from)

	return s.GetOrder(ctx, caller, id)
}

// DeleteOrder 删除订单及其明细和支付记录
// 删除不回滚顾客统计，与状态变更之外的写入互不影响
func (s *OrderService) DeleteOrder(ctx context.Context, caller access.Caller, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repository.New(tx)
		order, err := s.lockOrder(ctx, tx, r, caller, id, access.ActionManage)
		if err != nil {
			return err
		}
		if err := r.Order.DeleteCascade(ctx, order.ID); err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		return nil
	})
}

// AddItem 向订单添加明细并重算金额
func (s *OrderService) AddItem(ctx context.Context, caller access.Caller, orderID int64, in *ItemInput) (*models.OrderItem, error) {
	var item *models.OrderItem
	order, err := s.mutateItems(ctx, caller, orderID, func(tx *gorm.DB, r *repository.Repositories, order *models.Order) error {
		built, err := s.buildItem(ctx, tx, r, caller, order.RestaurantID, in)
		if err != nil {
			return err
		}
		built.OrderID = order.ID
		if err := r.OrderItem.Create(ctx, built); err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		item = built
		return nil
	}, true)
	if err != nil {
		return nil, err
	}
	s.notifier.OrderItemsChanged(ctx, order)
	return item, nil
}

// UpdateItem 更新订单明细；只修改状态或备注时不影响金额
func (s *OrderService) UpdateItem(ctx context.Context, caller access.Caller, orderID, itemID int64, req *UpdateItemRequest) (*models.OrderItem, error) {
	changesAmount := req.MenuItemID != nil || req.ComboMealID != nil || req.Quantity != nil || req.RevenueCenterID != nil

	var item *models.OrderItem
	order, err := s.mutateItems(ctx, caller, orderID, func(tx *gorm.DB, r *repository.Repositories, order *models.Order) error {
		current, err := s.loadItem(ctx, r, order.ID, itemID)
		if err != nil {
			return err
		}

		in := ItemInput{
			MenuItemID:      current.MenuItemID,
			ComboMealID:     current.ComboMealID,
			RevenueCenterID: current.RevenueCenterID,
			Quantity:        current.Quantity,
			Status:          current.Status,
			Notes:           current.Notes,
		}
		refChanged := req.MenuItemID != nil || req.ComboMealID != nil
		if refChanged {
			in.MenuItemID = req.MenuItemID
			in.ComboMealID = req.ComboMealID
			in.RevenueCenterID = 0
		}
		if req.RevenueCenterID != nil {
			in.RevenueCenterID = *req.RevenueCenterID
		}
		if req.Quantity != nil {
			in.Quantity = *req.Quantity
		}
		if req.Status != nil {
			in.Status = *req.Status
		}
		if req.Notes != nil {
			in.Notes = req.Notes
		}

		// 引用已随菜品删除而置空的历史明细不再重新解析，只校验数量与状态
		if !refChanged && current.MenuItemID == nil && current.ComboMealID == nil {
			if req.RevenueCenterID != nil {
				return errors.Validation("菜品已删除的明细不能更换营业点")
			}
			if in.Quantity <= 0 {
				return errors.ErrOrderItemQuantity
			}
			if !models.IsValidOrderItemStatus(in.Status) {
				return errors.ErrOrderItemStatus
			}
			current.Quantity = in.Quantity
			current.Status = in.Status
			current.Notes = in.Notes
			current.TotalPrice = lineTotal(current.UnitPrice, current.Quantity)
		} else {
			built, err := s.buildItem(ctx, tx, r, caller, order.RestaurantID, &in)
			if err != nil {
				return err
			}
			if !refChanged {
				// 引用未变时保留下单时的名称与单价
				built.ItemName = current.ItemName
				built.UnitPrice = current.UnitPrice
				built.TotalPrice = lineTotal(current.UnitPrice, built.Quantity)
			}
			built.ID = current.ID
			built.OrderID = current.OrderID
			built.CreatedAt = current.CreatedAt
			current = built
		}

		if err := r.OrderItem.Save(ctx, current); err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		item = current
		return nil
	}, changesAmount)
	if err != nil {
		return nil, err
	}
	s.notifier.OrderItemsChanged(ctx, order)
	return item, nil
}

// RemoveItem 删除订单明细并重算金额
func (s *OrderService) RemoveItem(ctx context.Context, caller access.Caller, orderID, itemID int64) error {
	order, err := s.mutateItems(ctx, caller, orderID, func(tx *gorm.DB, r *repository.Repositories, order *models.Order) error {
		item, err := s.loadItem(ctx, r, order.ID, itemID)
		if err != nil {
			return err
		}
		if err := s.authz.AuthorizeRevenueCenter(ctx, tx, caller, order.RestaurantID, item.RevenueCenterID, access.ActionOperate); err != nil {
			return err
		}
		if err := r.OrderItem.Delete(ctx, item.ID); err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		return nil
	}, true)
	if err != nil {
		return err
	}
	s.notifier.OrderItemsChanged(ctx, order)
	return nil
}

// mutateItems 锁定订单执行明细变更；recalc 时按当前明细重算小计与税额，折扣保持不变
func (s *OrderService) mutateItems(ctx context.Context, caller access.Caller, orderID int64,
	fn func(tx *gorm.DB, r *repository.Repositories, order *models.Order) error, recalc bool) (*models.Order, error) {
	var order *models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repository.New(tx)
		o, err := s.lockOrder(ctx, tx, r, caller, orderID, access.ActionOperate)
		if err != nil {
			return err
		}
		if recalc && o.Status == models.OrderStatusServed {
			return errors.ErrOrderAmountInvalid.WithMessage("已上菜的订单不能修改明细金额")
		}

		if err := fn(tx, r, o); err != nil {
			return err
		}

		fields := map[string]interface{}{"updated_at": s.now()}
		if recalc {
			items, err := r.OrderItem.ListByOrder(ctx, o.ID)
			if err != nil {
				return errors.ErrDatabaseError.WithError(err)
			}
			totals, err := ComputeTotals(derefItems(items), explicitTax(o), o.DiscountAmount, s.taxRate)
			if err != nil {
				return err
			}
			setTotals(fields, totals)
		}
		if err := r.Order.UpdateFields(ctx, o.ID, fields); err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}

		order, err = r.Order.GetByIDWithDetails(ctx, o.ID)
		if err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		return nil
	})
	return order, err
}

// lockOrder 加锁读取订单并授权
func (s *OrderService) lockOrder(ctx context.Context, tx *gorm.DB, r *repository.Repositories, caller access.Caller, id int64, action access.Action) (*models.Order, error) {
	order, err := r.Order.GetByIDForUpdate(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, errors.ErrOrderNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if err := s.authz.AuthorizeOrder(ctx, tx, caller, order, action); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderService) loadItem(ctx context.Context, r *repository.Repositories, orderID, itemID int64) (*models.OrderItem, error) {
	item, err := r.OrderItem.GetByID(ctx, itemID)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, errors.ErrOrderItemNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if item.OrderID != orderID {
		return nil, errors.ErrOrderItemNotFound
	}
	return item, nil
}

// explicitTax 客户端指定过税额时沿用，否则返回 nil 按税率重算
func explicitTax(o *models.Order) *decimal.Decimal {
	if !o.TaxExplicit {
		return nil
	}
	tax := o.TaxAmount
	return &tax
}

func creatorOf(caller access.Caller) *int64 {
	if caller.AccountID == 0 {
		return nil
	}
	id := caller.AccountID
	return &id
}

func derefItems(items []*models.OrderItem) []models.OrderItem {
	out := make([]models.OrderItem, 0, len(items))
	for _, it := range items {
		out = append(out, *it)
	}
	return out
}

func setTotals(fields map[string]interface{}, t Totals) {
	fields["subtotal"] = t.Subtotal
	fields["tax_amount"] = t.Tax
	fields["discount_amount"] = t.Discount
	fields["total_amount"] = t.Total
}
