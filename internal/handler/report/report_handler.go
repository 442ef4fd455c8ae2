// Package report 提供报表相关的 HTTP Handler
package report

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dumeirei/kitchen-pos-backend/internal/common/handler"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/response"
	reportService "github.com/dumeirei/kitchen-pos-backend/internal/service/report"
)

// Handler 报表处理器
type Handler struct {
	reportService *reportService.ReportService
}

// NewHandler 创建报表处理器
func NewHandler(reportSvc *reportService.ReportService) *Handler {
	return &Handler{reportService: reportSvc}
}

// bindQuery 解析报表公共查询参数，失败时已发送400响应
func bindQuery(c *gin.Context) (*reportService.Query, bool) {
	restaurantID, ok := handler.ParseRequiredQueryID(c, "restaurant_id", "餐厅")
	if !ok {
		return nil, false
	}
	from, to, ok := handler.ParseQueryDateRange(c)
	if !ok {
		return nil, false
	}

	q := &reportService.Query{RestaurantID: restaurantID, From: from, To: to}
	if raw := c.Query("top"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			response.BadRequest(c, "无效的参数: top")
			return nil, false
		}
		q.TopN = n
	}
	return q, true
}

// SalesSummary 销售汇总
// @Summary 销售汇总
// @Description 只统计已上菜订单
// @Tags 报表
// @Produce json
// @Security Bearer
// @Param restaurant_id query int true "餐厅ID"
// @Param start_date query string false "开始日期 YYYY-MM-DD"
// @Param end_date query string false "结束日期 YYYY-MM-DD"
// @Param top query int false "热销菜品数量，默认 10，最多 50"
// @Success 200 {object} response.Response{data=reportService.SalesSummary}
// @Router /api/v1/reports/sales [get]
func (h *Handler) SalesSummary(c *gin.Context) {
	caller, ok := handler.RequireCaller(c)
	if !ok {
		return
	}
	q, ok := bindQuery(c)
	if !ok {
		return
	}

	summary, err := h.reportService.SalesSummary(c.Request.Context(), caller, q)
	handler.MustSucceed(c, err, summary)
}

// OrderStats 订单状态分布
// @Summary 订单状态分布
// @Tags 报表
// @Produce json
// @Security Bearer
// @Param restaurant_id query int true "餐厅ID"
// @Param start_date query string false "开始日期 YYYY-MM-DD"
// @Param end_date query string false "结束日期 YYYY-MM-DD"
// @Success 200 {object} response.Response{data=reportService.OrderStats}
// @Router /api/v1/reports/order-stats [get]
func (h *Handler) OrderStats(c *gin.Context) {
	caller, ok := handler.RequireCaller(c)
	if !ok {
		return
	}
	q, ok := bindQuery(c)
	if !ok {
		return
	}

	stats, err := h.reportService.OrderStats(c.Request.Context(), caller, q)
	handler.MustSucceed(c, err, stats)
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	reports := r.Group("/reports")
	{
		reports.GET("/sales", h.SalesSummary)
		reports.GET("/order-stats", h.OrderStats)
	}
}
