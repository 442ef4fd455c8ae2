// Package customer 提供顾客相关的 HTTP Handler
package customer

import (
	"github.com/gin-gonic/gin"

	"github.com/dumeirei/kitchen-pos-backend/internal/common/handler"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/response"
	customerService "github.com/dumeirei/kitchen-pos-backend/internal/service/customer"
)

// Handler 顾客处理器
type Handler struct {
	customerService *customerService.CustomerService
}

// NewHandler 创建顾客处理器
func NewHandler(customerSvc *customerService.CustomerService) *Handler {
	return &Handler{customerService: customerSvc}
}

// CreateCustomer 创建顾客
// @Summary 创建顾客
// @Tags 顾客
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body customerService.CreateCustomerRequest true "请求参数"
// @Success 201 {object} response.Response{data=models.Customer}
// @Router /api/v1/customers [post]
func (h *Handler) CreateCustomer(c *gin.Context) {
	caller, ok := handler.RequireCaller(c)
	if !ok {
		return
	}

	var req customerService.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	customer, err := h.customerService.CreateCustomer(c.Request.Context(), caller, &req)
	handler.MustCreate(c, err, customer)
}

// GetCustomer 获取顾客详情
// @Summary 获取顾客详情
// @Tags 顾客
// @Produce json
// @Security Bearer
// @Param id path int true "顾客ID"
// @Success 200 {object} response.Response{data=models.Customer}
// @Router /api/v1/customers/{id} [get]
func (h *Handler) GetCustomer(c *gin.Context) {
	caller, id, ok := handler.RequireCallerAndParseID(c, "顾客")
	if !ok {
		return
	}

	customer, err := h.customerService.GetCustomer(c.Request.Context(), caller, id)
	handler.MustSucceed(c, err, customer)
}

// ListCustomers 获取顾客列表
// @Summary 获取顾客列表
// @Tags 顾客
// @Produce json
// @Security Bearer
// @Param restaurant_id query int true "餐厅ID"
// @Param keyword query string false "姓名、邮箱或电话关键字"
// @Param sort query string false "排序" Enums(total_spent)
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} response.Response{data=response.PageData}
// @Router /api/v1/customers [get]
func (h *Handler) ListCustomers(c *gin.Context) {
	caller, ok := handler.RequireCaller(c)
	if !ok {
		return
	}
	restaurantID, ok := handler.ParseRequiredQueryID(c, "restaurant_id", "餐厅")
	if !ok {
		return
	}

	p := handler.BindPagination(c)
	filter := &customerService.CustomerFilter{
		RestaurantID: restaurantID,
		Keyword:      c.Query("keyword"),
		Sort:         c.Query("sort"),
	}

	list, total, err := h.customerService.ListCustomers(c.Request.Context(), caller, filter, p.GetOffset(), p.GetLimit())
	handler.MustSucceedPage(c, err, list, total, p.Page, p.PageSize)
}

// UpdateCustomer 更新顾客资料
// @Summary 更新顾客资料
// @Description 消费统计字段由订单状态维护，不能通过该接口修改
// @Tags 顾客
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "顾客ID"
// @Param request body customerService.UpdateCustomerRequest true "请求参数"
// @Success 200 {object} response.Response{data=models.Customer}
// @Router /api/v1/customers/{id} [put]
func (h *Handler) UpdateCustomer(c *gin.Context) {
	caller, id, ok := handler.RequireCallerAndParseID(c, "顾客")
	if !ok {
		return
	}

	var req customerService.UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	customer, err := h.customerService.UpdateCustomer(c.Request.Context(), caller, id, &req)
	handler.MustSucceed(c, err, customer)
}

// DeleteCustomer 删除顾客
// @Summary 删除顾客
// @Description 历史订单保留，顾客关联置空
// @Tags 顾客
// @Produce json
// @Security Bearer
// @Param id path int true "顾客ID"
// @Success 200 {object} response.Response
// @Router /api/v1/customers/{id} [delete]
func (h *Handler) DeleteCustomer(c *gin.Context) {
	caller, id, ok := handler.RequireCallerAndParseID(c, "顾客")
	if !ok {
		return
	}

	handler.MustSucceed(c, h.customerService.DeleteCustomer(c.Request.Context(), caller, id), nil)
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	customers := r.Group("/customers")
	{
		customers.POST("", h.CreateCustomer)
		customers.GET("", h.ListCustomers)
		customers.GET("/:id", h.GetCustomer)
		customers.PUT("/:id", h.UpdateCustomer)
		customers.DELETE("/:id", h.DeleteCustomer)
	}
}
