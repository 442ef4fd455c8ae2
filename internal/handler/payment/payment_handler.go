// Package payment 提供支付记录相关的 HTTP Handler
package payment

import (
	"github.com/gin-gonic/gin"

	"github.com/dumeirei/kitchen-pos-backend/internal/common/handler"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/response"
	paymentService "github.com/dumeirei/kitchen-pos-backend/internal/service/payment"
)

// Handler 支付处理器
type Handler struct {
	paymentService *paymentService.PaymentService
}

// NewHandler 创建支付处理器
func NewHandler(paymentSvc *paymentService.PaymentService) *Handler {
	return &Handler{
		paymentService: paymentSvc,
	}
}

// CreatePayment 登记支付
// @Summary 登记支付
// @Tags 支付
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body paymentService.CreatePaymentRequest true "请求参数"
// @Success 201 {object} response.Response{data=models.Payment}
// @Router /api/v1/payments [post]
func (h *Handler) CreatePayment(c *gin.Context) {
	caller, ok := handler.RequireCaller(c)
	if !ok {
		return
	}

	var req paymentService.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	payment, err := h.paymentService.CreatePayment(c.Request.Context(), caller, &req)
	handler.MustCreate(c, err, payment)
}

// GetPayment 获取支付记录
// @Summary 获取支付记录
// @Tags 支付
// @Produce json
// @Security Bearer
// @Param id path int true "支付ID"
// @Success 200 {object} response.Response{data=models.Payment}
// @Router /api/v1/payments/{id} [get]
func (h *Handler) GetPayment(c *gin.Context) {
	caller, id, ok := handler.RequireCallerAndParseID(c, "支付")
	if !ok {
		return
	}

	payment, err := h.paymentService.GetPayment(c.Request.Context(), caller, id)
	handler.MustSucceed(c, err, payment)
}

// ListPayments 获取支付记录列表
// @Summary 获取支付记录列表
// @Tags 支付
// @Produce json
// @Security Bearer
// @Param restaurant_id query int true "餐厅ID"
// @Param order_id query int false "订单ID"
// @Param method query string false "支付方式"
// @Param status query string false "状态"
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} response.Response{data=response.PageData}
// @Router /api/v1/payments [get]
func (h *Handler) ListPayments(c *gin.Context) {
	caller, ok := handler.RequireCaller(c)
	if !ok {
		return
	}
	restaurantID, ok := handler.ParseRequiredQueryID(c, "restaurant_id", "餐厅")
	if !ok {
		return
	}
	orderID, ok := handler.ParseQueryID(c, "order_id", "订单")
	if !ok {
		return
	}

	filter := &paymentService.PaymentFilter{
		RestaurantID: restaurantID,
		Method:       c.Query("method"),
		Status:       c.Query("status"),
	}
	if orderID != nil {
		filter.OrderID = *orderID
	}

	p := handler.BindPagination(c)
	list, total, err := h.paymentService.ListPayments(c.Request.Context(), caller, filter, p.GetOffset(), p.GetLimit())
	handler.MustSucceedPage(c, err, list, total, p.Page, p.PageSize)
}

// UpdatePayment 更新支付记录
// @Summary 更新支付记录
// @Tags 支付
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "支付ID"
// @Param request body paymentService.UpdatePaymentRequest true "请求参数"
// @Success 200 {object} response.Response{data=models.Payment}
// @Router /api/v1/payments/{id} [put]
func (h *Handler) UpdatePayment(c *gin.Context) {
	caller, id, ok := handler.RequireCallerAndParseID(c, "支付")
	if !ok {
		return
	}

	var req paymentService.UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	payment, err := h.paymentService.UpdatePayment(c.Request.Context(), caller, id, &req)
	handler.MustSucceed(c, err, payment)
}

// DeletePayment 删除支付记录
// @Summary 删除支付记录
// @Tags 支付
// @Produce json
// @Security Bearer
// @Param id path int true "支付ID"
// @Success 200 {object} response.Response
// @Router /api/v1/payments/{id} [delete]
func (h *Handler) DeletePayment(c *gin.Context) {
	caller, id, ok := handler.RequireCallerAndParseID(c, "支付")
	if !ok {
		return
	}

	handler.MustSucceed(c, h.paymentService.DeletePayment(c.Request.Context(), caller, id), nil)
}

// GetSummary 订单支付汇总
// @Summary 订单支付汇总
// @Description 已完成金额达到订单总额时状态为 completed
// @Tags 支付
// @Produce json
// @Security Bearer
// @Param order_id path int true "订单ID"
// @Success 200 {object} response.Response{data=paymentService.Summary}
// @Router /api/v1/payment-summaries/{order_id} [get]
func (h *Handler) GetSummary(c *gin.Context) {
	caller, ok := handler.RequireCaller(c)
	if !ok {
		return
	}
	orderID, ok := handler.ParseParamID(c, "order_id", "订单")
	if !ok {
		return
	}

	summary, err := h.paymentService.GetSummary(c.Request.Context(), caller, orderID)
	handler.MustSucceed(c, err, summary)
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	payments := r.Group("/payments")
	{
		payments.POST("", h.CreatePayment)
		payments.GET("", h.ListPayments)
		payments.GET("/:id", h.GetPayment)
		payments.PUT("/:id", h.UpdatePayment)
		payments.DELETE("/:id", h.DeletePayment)
	}
	r.GET("/payment-summaries/:order_id", h.GetSummary)
}
