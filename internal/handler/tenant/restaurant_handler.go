// Package tenant 提供餐厅相关的 HTTP Handler
package tenant

import (
	"github.com/gin-gonic/gin"

	"github.com/dumeirei/kitchen-pos-backend/internal/common/handler"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/response"
	tenantService "github.com/dumeirei/kitchen-pos-backend/internal/service/tenant"
)

// Handler 餐厅处理器
type Handler struct {
	tenantService *tenantService.TenantService
}

// NewHandler 创建餐厅处理器
func NewHandler(tenantSvc *tenantService.TenantService) *Handler {
	return &Handler{tenantService: tenantSvc}
}

// UpdateStatusRequest 更新餐厅状态请求
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// CreateRestaurant 创建餐厅
// @Summary 创建餐厅
// @Tags 餐厅
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body tenantService.CreateRestaurantRequest true "请求参数"
// @Success 201 {object} response.Response{data=models.Restaurant}
// @Router /api/v1/restaurants [post]
func (h *Handler) CreateRestaurant(c *gin.Context) {
	caller, ok := handler.RequireCaller(c)
	if !ok {
		return
	}

	var req tenantService.CreateRestaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	restaurant, err := h.tenantService.CreateRestaurant(c.Request.Context(), caller, &req)
	handler.MustCreate(c, err, restaurant)
}

// GetRestaurant 获取餐厅详情
// @Summary 获取餐厅详情
// @Tags 餐厅
// @Produce json
// @Security Bearer
// @Param id path int true "餐厅ID"
// @Success 200 {object} response.Response{data=models.Restaurant}
// @Router /api/v1/restaurants/{id} [get]
func (h *Handler) GetRestaurant(c *gin.Context) {
	caller, id, ok := handler.RequireCallerAndParseID(c, "餐厅")
	if !ok {
		return
	}

	restaurant, err := h.tenantService.GetRestaurant(c.Request.Context(), caller, id)
	handler.MustSucceed(c, err, restaurant)
}

// ListRestaurants 获取餐厅列表
// @Summary 获取餐厅列表
// @Tags 餐厅
// @Produce json
// @Security Bearer
// @Param owner_id query int false "店主ID（仅平台管理员）"
// @Param status query string false "状态"
// @Param keyword query string false "名称或域名关键字"
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} response.Response{data=response.PageData}
// @Router /api/v1/restaurants [get]
func (h *Handler) ListRestaurants(c *gin.Context) {
	caller, ok := handler.RequireCaller(c)
	if !ok {
		return
	}
	ownerID, ok := handler.ParseQueryID(c, "owner_id", "店主")
	if !ok {
		return
	}

	p := handler.BindPagination(c)
	filter := &tenantService.RestaurantFilter{
		Status:  c.Query("status"),
		Keyword: c.Query("keyword"),
	}
	if ownerID != nil {
		filter.OwnerID = *ownerID
	}

	list, total, err := h.tenantService.ListRestaurants(c.Request.Context(), caller, filter, p.GetOffset(), p.GetLimit())
	handler.MustSucceedPage(c, err, list, total, p.Page, p.PageSize)
}

// UpdateRestaurant 更新餐厅
// @Summary 更新餐厅
// @Tags 餐厅
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "餐厅ID"
// @Param request body tenantService.UpdateRestaurantRequest true "请求参数"
// @Success 200 {object} response.Response{data=models.Restaurant}
// @Router /api/v1/restaurants/{id} [put]
func (h *Handler) UpdateRestaurant(c *gin.Context) {
	caller, id, ok := handler.RequireCallerAndParseID(c, "餐厅")
	if !ok {
		return
	}

	var req tenantService.UpdateRestaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	restaurant, err := h.tenantService.UpdateRestaurant(c.Request.Context(), caller, id, &req)
	handler.MustSucceed(c, err, restaurant)
}

// UpdateStatus 更新餐厅状态
// @Summary 更新餐厅状态（平台管理员）
// @Tags 餐厅
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "餐厅ID"
// @Param request body UpdateStatusRequest true "请求参数"
// @Success 200 {object} response.Response{data=models.Restaurant}
// @Router /api/v1/restaurants/{id}/status [put]
func (h *Handler) UpdateStatus(c *gin.Context) {
	caller, id, ok := handler.RequireCallerAndParseID(c, "餐厅")
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	restaurant, err := h.tenantService.UpdateStatus(c.Request.Context(), caller, id, req.Status)
	handler.MustSucceed(c, err, restaurant)
}

// DeleteRestaurant 删除餐厅
// @Summary 删除餐厅
// @Description 级联删除营业点、菜单、顾客、订单与员工
// @Tags 餐厅
// @Produce json
// @Security Bearer
// @Param id path int true "餐厅ID"
// @Success 200 {object} response.Response
// @Router /api/v1/restaurants/{id} [delete]
func (h *Handler) DeleteRestaurant(c *gin.Context) {
	caller, id, ok := handler.RequireCallerAndParseID(c, "餐厅")
	if !ok {
		return
	}

	handler.MustSucceed(c, h.tenantService.DeleteRestaurant(c.Request.Context(), caller, id), nil)
}

// GetByDomain 按域名获取公开的餐厅信息
// @Summary 按域名获取餐厅
// @Tags 公开
// @Produce json
// @Param domain path string true "餐厅域名"
// @Success 200 {object} response.Response{data=tenantService.PublicRestaurant}
// @Router /api/v1/public/restaurants/{domain} [get]
func (h *Handler) GetByDomain(c *gin.Context) {
	restaurant, err := h.tenantService.GetByDomain(c.Request.Context(), c.Param("domain"))
	handler.MustSucceed(c, err, restaurant)
}

// RegisterRoutes 注册需要登录的路由
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	restaurants := r.Group("/restaurants")
	{
		restaurants.POST("", h.CreateRestaurant)
		restaurants.GET("", h.ListRestaurants)
		restaurants.GET("/:id", h.GetRestaurant)
		restaurants.PUT("/:id", h.UpdateRestaurant)
		restaurants.PUT("/:id/status", h.UpdateStatus)
		restaurants.DELETE("/:id", h.DeleteRestaurant)
	}
}

// RegisterPublicRoutes 注册公开路由
func (h *Handler) RegisterPublicRoutes(r *gin.RouterGroup) {
	r.GET("/public/restaurants/:domain", h.GetByDomain)
}
