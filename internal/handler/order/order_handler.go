// Package order 提供订单相关的 HTTP Handler
package order

import (
	"github.com/gin-gonic/gin"

	"github.com/dumeirei/kitchen-pos-backend/internal/common/handler"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/response"
	orderService "github.com/dumeirei/kitchen-pos-backend/internal/service/order"
)

// Handler 订单处理器
type Handler struct {
	orderService *orderService.OrderService
}

// NewHandler 创建订单处理器
func NewHandler(orderSvc *orderService.OrderService) *Handler {
	return &Handler{orderService: orderSvc}
}

// UpdateStatusRequest 更新订单状态请求
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// CreateOrder 创建订单
// @Summary 创建订单
// @Description 订单号由服务端按餐厅与营业日生成，金额由明细计算
// @Tags 订单
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body orderService.CreateOrderRequest true "请求参数"
// @Success 201 {object} response.Response{data=orderService.OrderDetail}
// @Router /api/v1/orders [post]
func (h *Handler) CreateOrder(c *gin.Context) {
	caller, ok := handler.RequireCaller(c)
	if !ok {
		return
	}

	var req orderService.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	detail, err := h.orderService.CreateOrder(c.Request.Context(), caller, &req)
	handler.MustCreate(c, err, detail)
}

// GetOrder 获取订单详情
// @Summary 获取订单详情
// @Tags 订单
// @Produce json
// @Security Bearer
// @Param id path int true "订单ID"
// @Success 200 {object} response.Response{data=orderService.OrderDetail}
// @Router /api/v1/orders/{id} [get]
func (h *Handler) GetOrder(c *gin.Context) {
	caller, id, ok := handler.RequireCallerAndParseID(c, "订单")
	if !ok {
		return
	}

	detail, err := h.orderService.GetOrder(c.Request.Context(), caller, id)
	handler.MustSucceed(c, err, detail)
}

// GetOrderByNumber 根据订单号获取订单
// @Summary 根据订单号获取订单
// @Tags 订单
// @Produce json
// @Security Bearer
// @Param restaurant_id query int true "餐厅ID"
// @Param order_number path string true "订单号"
// @Success 200 {object} response.Response{data=orderService.OrderDetail}
// @Router /api/v1/orders/number/{order_number} [get]
func (h *Handler) GetOrderByNumber(c *gin.Context) {
	caller, ok := handler.RequireCaller(c)
	if !ok {
		return
	}
	restaurantID, ok := handler.ParseRequiredQueryID(c, "restaurant_id", "餐厅")
	if !ok {
		return
	}

	detail, err := h.orderService.GetOrderByNumber(c.Request.Context(), caller, restaurantID, c.Param("order_number"))
	handler.MustSucceed(c, err, detail)
}

// ListOrders 获取订单列表
// @Summary 获取订单列表
// @Tags 订单
// @Produce json
// @Security Bearer
// @Param restaurant_id query int true "餐厅ID"
// @Param customer_id query int false "顾客ID"
// @Param status query string false "状态"
// @Param type query string false "类型"
// @Param order_number query string false "订单号"
// @Param start_date query string false "开始日期 YYYY-MM-DD"
// @Param end_date query string false "结束日期 YYYY-MM-DD"
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} response.Response{data=response.PageData}
// @Router /api/v1/orders [get]
func (h *Handler) ListOrders(c *gin.Context) {
	caller, ok := handler.RequireCaller(c)
	if !ok {
		return
	}
	restaurantID, ok := handler.ParseRequiredQueryID(c, "restaurant_id", "餐厅")
	if !ok {
		return
	}
	customerID, ok := handler.ParseQueryID(c, "customer_id", "顾客")
	if !ok {
		return
	}
	startDate, endDate, ok := handler.ParseQueryDateRange(c)
	if !ok {
		return
	}

	filter := &orderService.OrderFilter{
		RestaurantID: restaurantID,
		Status:       c.Query("status"),
		Type:         c.Query("type"),
		OrderNumber:  c.Query("order_number"),
		StartDate:    startDate,
		EndDate:      endDate,
	}
	if customerID != nil {
		filter.CustomerID = *customerID
	}

	p := handler.BindPagination(c)
	list, total, err := h.orderService.ListOrders(c.Request.Context(), caller, filter, p.GetOffset(), p.GetLimit())
	handler.MustSucceedPage(c, err, list, total, p.Page, p.PageSize)
}

// UpdateOrder 更新订单
// @Summary 更新订单
// @Tags 订单
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "订单ID"
// @Param request body orderService.UpdateOrderRequest true "请求参数"
// @Success 200 {object} response.Response{data=orderService.OrderDetail}
// @Router /api/v1/orders/{id} [put]
func (h *Handler) UpdateOrder(c *gin.Context) {
	caller, id, ok := handler.RequireCallerAndParseID(c, "订单")
	if !ok {
		return
	}

	var req orderService.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	detail, err := h.orderService.UpdateOrder(c.Request.Context(), caller, id, &req)
	handler.MustSucceed(c, err, detail)
}

// UpdateStatus 更新订单状态
// @Summary 更新订单状态
// @Description 进入或离开 served 时同步顾客消费统计
// @Tags 订单
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "订单ID"
// @Param request body UpdateStatusRequest true "请求参数"
// @Success 200 {object} response.Response{data=orderService.OrderDetail}
// @Router /api/v1/orders/{id}/status [put]
func (h *Handler) UpdateStatus(c *gin.Context) {
	caller, id, ok := handler.RequireCallerAndParseID(c, "订单")
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	detail, err := h.orderService.UpdateStatus(c.Request.Context(), caller, id, req.Status)
	handler.MustSucceed(c, err, detail)
}

// DeleteOrder 删除订单
// @Summary 删除订单
// @Tags 订单
// @Produce json
// @Security Bearer
// @Param id path int true "订单ID"
// @Success 200 {object} response.Response
// @Router /api/v1/orders/{id} [delete]
func (h *Handler) DeleteOrder(c *gin.Context) {
	caller, id, ok := handler.RequireCallerAndParseID(c, "订单")
	if !ok {
		return
	}

	handler.MustSucceed(c, h.orderService.DeleteOrder(c.Request.Context(), caller, id), nil)
}

// AddItem 添加订单明细
// @Summary 添加订单明细
// @Tags 订单
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "订单ID"
// @Param request body orderService.ItemInput true "请求参数"
// @Success 201 {object} response.Response{data=models.OrderItem}
// @Router /api/v1/orders/{id}/items [post]
func (h *Handler) AddItem(c *gin.Context) {
	caller, id, ok := handler.RequireCallerAndParseID(c, "订单")
	if !ok {
		return
	}

	var req orderService.ItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	item, err := h.orderService.AddItem(c.Request.Context(), caller, id, &req)
	handler.MustCreate(c, err, item)
}

// UpdateItem 更新订单明细
// @Summary 更新订单明细
// @Tags 订单
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "订单ID"
// @Param item_id path int true "明细ID"
// @Param request body orderService.UpdateItemRequest true "请求参数"
// @Success 200 {object} response.Response{data=models.OrderItem}
// @Router /api/v1/orders/{id}/items/{item_id} [put]
func (h *Handler) UpdateItem(c *gin.Context) {
	caller, id, ok := handler.RequireCallerAndParseID(c, "订单")
	if !ok {
		return
	}
	itemID, ok := handler.ParseParamID(c, "item_id", "明细")
	if !ok {
		return
	}

	var req orderService.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	item, err := h.orderService.UpdateItem(c.Request.Context(), caller, id, itemID, &req)
	handler.MustSucceed(c, err, item)
}

// RemoveItem 删除订单明细
// @Summary 删除订单明细
// @Tags 订单
// @Produce json
// @Security Bearer
// @Param id path int true "订单ID"
// @Param item_id path int true "明细ID"
// @Success 200 {object} response.Response
// @Router /api/v1/orders/{id}/items/{item_id} [delete]
func (h *Handler) RemoveItem(c *gin.Context) {
	caller, id, ok := handler.RequireCallerAndParseID(c, "订单")
	if !ok {
		return
	}
	itemID, ok := handler.ParseParamID(c, "item_id", "明细")
	if !ok {
		return
	}

	handler.MustSucceed(c, h.orderService.RemoveItem(c.Request.Context(), caller, id, itemID), nil)
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	orders := r.Group("/orders")
	{
		orders.POST("", h.CreateOrder)
		orders.GET("", h.ListOrders)
		orders.GET("/number/:order_number", h.GetOrderByNumber)
		orders.GET("/:id", h.GetOrder)
		orders.PUT("/:id", h.UpdateOrder)
		orders.PUT("/:id/status", h.UpdateStatus)
		orders.DELETE("/:id", h.DeleteOrder)
		orders.POST("/:id/items", h.AddItem)
		orders.PUT("/:id/items/:item_id", h.UpdateItem)
		orders.DELETE("/:id/items/:item_id", h.RemoveItem)
	}
}
