package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dumeirei/kitchen-pos-backend/internal/models"
)

// ReportRepository 经营报表查询
// 营收类统计只计入已上菜（served）的订单
type ReportRepository struct {
	db *gorm.DB
}

// NewReportRepository 创建报表仓储
func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// DateRange 营业日期范围，YYYY-MM-DD，空值表示不限
type DateRange struct {
	Start string
	End   string
}

// SalesTotals 销售汇总
type SalesTotals struct {
	OrderCount int64           `json:"order_count"`
	Revenue    decimal.Decimal `json:"revenue"`
}

// CenterRevenue 营业点营收
type CenterRevenue struct {
	RevenueCenterID int64           `json:"revenue_center_id"`
	Name            string          `json:"name"`
	Quantity        int64           `json:"quantity"`
	Revenue         decimal.Decimal `json:"revenue"`
}

// ItemSales 菜品销量，按下单时的名称分组
type ItemSales struct {
	ItemName string          `json:"item_name"`
	Quantity int64           `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// DailyRevenue 每日营收
type DailyRevenue struct {
	BusinessDate string          `json:"business_date"`
	OrderCount   int64           `json:"order_count"`
	Revenue      decimal.Decimal `json:"revenue"`
}

// StatusCount 订单状态计数
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

func (r *ReportRepository) orders(ctx context.Context, restaurantID int64, rng DateRange) *gorm.DB {
	query := r.db.WithContext(ctx).Table("orders").Where("orders.restaurant_id = ?", restaurantID)
	if rng.Start != "" {
		query = query.Where("orders.business_date >= ?", rng.Start)
	}
	if rng.End != "" {
		query = query.Where("orders.business_date <= ?", rng.End)
	}
	return query
}

// SalesTotals 统计已上菜订单数和营收
func (r *ReportRepository) SalesTotals(ctx context.Context, restaurantID int64, rng DateRange) (*SalesTotals, error) {
	var totals SalesTotals
	err := r.orders(ctx, restaurantID, rng).
		Select("COUNT(*) AS order_count, COALESCE(SUM(orders.total_amount), 0) AS revenue").
		Where("orders.status = ?", models.OrderStatusServed).
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	return &totals, nil
}

// RevenueByCenter 按营业点统计明细营收
func (r *ReportRepository) RevenueByCenter(ctx context.Context, restaurantID int64, rng DateRange) ([]CenterRevenue, error) {
	var rows []CenterRevenue
	err := r.orders(ctx, restaurantID, rng).
		Select("order_items.revenue_center_id AS revenue_center_id, COALESCE(revenue_centers.name, '') AS name, "+
			"COALESCE(SUM(order_items.quantity), 0) AS quantity, COALESCE(SUM(order_items.total_price), 0) AS revenue").
		Joins("JOIN order_items ON order_items.order_id = orders.id").
		Joins("LEFT JOIN revenue_centers ON revenue_centers.id = order_items.revenue_center_id").
		Where("orders.status = ?", models.OrderStatusServed).
		Group("order_items.revenue_center_id, revenue_centers.name").
		Order("revenue DESC").
		Scan(&rows).Error
	return rows, err
}

// TopItems 销量最高的菜品
func (r *ReportRepository) TopItems(ctx context.Context, restaurantID int64, rng DateRange, limit int) ([]ItemSales, error) {
	var rows []ItemSales
	err := r.orders(ctx, restaurantID, rng).
		Select("order_items.item_name AS item_name, COALESCE(SUM(order_items.quantity), 0) AS quantity, " +
			"COALESCE(SUM(order_items.total_price), 0) AS revenue").
		Joins("JOIN order_items ON order_items.order_id = orders.id").
		Where("orders.status = ?", models.OrderStatusServed).
		Group("order_items.item_name").
		Order("quantity DESC, item_name ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// DailyRevenue 按营业日统计营收
func (r *ReportRepository) DailyRevenue(ctx context.Context, restaurantID int64, rng DateRange) ([]DailyRevenue, error) {
	var rows []DailyRevenue
	err := r.orders(ctx, restaurantID, rng).
		Select("orders.business_date AS business_date, COUNT(*) AS order_count, COALESCE(SUM(orders.total_amount), 0) AS revenue").
		Where("orders.status = ?", models.OrderStatusServed).
		Group("orders.business_date").
		Order("orders.business_date ASC").
		Scan(&rows).Error
	return rows, err
}

// CountByStatus 按状态统计订单数（包含全部状态）
func (r *ReportRepository) CountByStatus(ctx context.Context, restaurantID int64, rng DateRange) ([]StatusCount, error) {
	var rows []StatusCount
	err := r.orders(ctx, restaurantID, rng).
		Select("orders.status AS status, COUNT(*) AS count").
		Group("orders.status").
		Order("orders.status ASC").
		Scan(&rows).Error
	return rows, err
}
