// Package report 经营报表服务
package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dumeirei/kitchen-pos-backend/internal/common/errors"
	"github.com/dumeirei/kitchen-pos-backend/internal/models"
	"github.com/dumeirei/kitchen-pos-backend/internal/repository"
	"github.com/dumeirei/kitchen-pos-backend/internal/service/access"
)

const (
	defaultTopItems = 10
	maxTopItems     = 50
	dateLayout      = "2006-01-02"
)

// ReportService 报表服务
type ReportService struct {
	db    *gorm.DB
	repos *repository.Repositories
	authz *access.Authorizer
}

// NewReportService 创建报表服务
func NewReportService(db *gorm.DB, authz *access.Authorizer) *ReportService {
	return &ReportService{
		db:    db,
		repos: repository.New(db),
		authz: authz,
	}
}

// Query 报表查询条件，日期为营业日 YYYY-MM-DD，空值不限
type Query struct {
	RestaurantID int64
	From         string
	To           string
	TopN         int
}

// SalesSummary 销售汇总，只统计已上菜订单
type SalesSummary struct {
	RestaurantID  int64                      `json:"restaurant_id"`
	From          string                     `json:"from,omitempty"`
	To            string                     `json:"to,omitempty"`
	OrderCount    int64                      `json:"order_count"`
	Revenue       decimal.Decimal            `json:"revenue"`
	AverageTicket decimal.Decimal            `json:"average_ticket"`
	ByCenter      []repository.CenterRevenue `json:"by_center"`
	TopItems      []repository.ItemSales     `json:"top_items"`
	Daily         []repository.DailyRevenue  `json:"daily"`
}

// OrderStats 订单状态分布，包含全部状态
type OrderStats struct {
	RestaurantID int64            `json:"restaurant_id"`
	Total        int64            `json:"total"`
	ByStatus     map[string]int64 `json:"by_status"`
}

// SalesSummary 销售汇总
func (s *ReportService) SalesSummary(ctx context.Context, caller access.Caller, q *Query) (*SalesSummary, error) {
	rng, err := parseRange(q)
	if err != nil {
		return nil, err
	}
	if err := s.authz.AuthorizeRestaurant(ctx, s.db, caller, q.RestaurantID, access.ActionManage); err != nil {
		return nil, err
	}

	topN := q.TopN
	if topN <= 0 {
		topN = defaultTopItems
	}
	if topN > maxTopItems {
		topN = maxTopItems
	}

	totals, err := s.repos.Report.SalesTotals(ctx, q.RestaurantID, rng)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	byCenter, err := s.repos.Report.RevenueByCenter(ctx, q.RestaurantID, rng)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	top, err := s.repos.Report.TopItems(ctx, q.RestaurantID, rng, topN)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	daily, err := s.repos.Report.DailyRevenue(ctx, q.RestaurantID, rng)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	// 聚合结果在 SQLite 上以浮点返回，统一保留两位
	for i := range byCenter {
		byCenter[i].Revenue = byCenter[i].Revenue.Round(2)
	}
	for i := range top {
		top[i].Revenue = top[i].Revenue.Round(2)
	}
	for i := range daily {
		daily[i].Revenue = daily[i].Revenue.Round(2)
	}

	summary := &SalesSummary{
		RestaurantID:  q.RestaurantID,
		From:          rng.Start,
		To:            rng.End,
		OrderCount:    totals.OrderCount,
		Revenue:       totals.Revenue.Round(2),
		AverageTicket: decimal.Zero,
		ByCenter:      nonNil(byCenter),
		TopItems:      nonNil(top),
		Daily:         nonNil(daily),
	}
	if totals.OrderCount > 0 {
		summary.AverageTicket = summary.Revenue.Div(decimal.NewFromInt(totals.OrderCount)).Round(2)
	}
	return summary, nil
}

// OrderStats 订单状态分布
func (s *ReportService) OrderStats(ctx context.Context, caller access.Caller, q *Query) (*OrderStats, error) {
	rng, err := parseRange(q)
	if err != nil {
		return nil, err
	}
	if err := s.authz.AuthorizeRestaurant(ctx, s.db, caller, q.RestaurantID, access.ActionRead); err != nil {
		return nil, err
	}

	rows, err := s.repos.Report.CountByStatus(ctx, q.RestaurantID, rng)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	stats := &OrderStats{
		RestaurantID: q.RestaurantID,
		ByStatus: map[string]int64{
			models.OrderStatusPending:   0,
			models.OrderStatusPreparing: 0,
			models.OrderStatusReady:     0,
			models.OrderStatusServed:    0,
			models.OrderStatusCancelled: 0,
		},
	}
	for _, row := range rows {
		stats.ByStatus[row.Status] = row.Count
		stats.Total += row.Count
	}
	return stats, nil
}

func parseRange(q *Query) (repository.DateRange, error) {
	var from, to time.Time
	var err error
	if q.From != "" {
		if from, err = time.Parse(dateLayout, q.From); err != nil {
			return repository.DateRange{}, errors.Validation("from 日期格式应为 YYYY-MM-DD")
		}
	}
	if q.To != "" {
		if to, err = time.Parse(dateLayout, q.To); err != nil {
			return repository.DateRange{}, errors.Validation("to 日期格式应为 YYYY-MM-DD")
		}
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return repository.DateRange{}, errors.Validation("to 不能早于 from")
	}
	return repository.DateRange{Start: q.From, End: q.To}, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
