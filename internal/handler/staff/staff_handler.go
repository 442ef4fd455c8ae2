// Package staff 提供员工管理相关的 HTTP Handler
package staff

import (
	"github.com/gin-gonic/gin"

	"github.com/dumeirei/kitchen-pos-backend/internal/common/handler"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/response"
	staffService "github.com/dumeirei/kitchen-pos-backend/internal/service/staff"
)

// Handler 员工处理器
type Handler struct {
	staffService *staffService.StaffService
}

// NewHandler 创建员工处理器
func NewHandler(staffSvc *staffService.StaffService) *Handler {
	return &Handler{staffService: staffSvc}
}

// CreateStaff 创建员工
// @Summary 创建员工
// @Description 同时创建登录账号，初始密码只在本次响应中返回
// @Tags 员工
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body staffService.CreateStaffRequest true "请求参数"
// @Success 201 {object} response.Response{data=staffService.Credentials}
// @Router /api/v1/staff [post]
func (h *Handler) CreateStaff(c *gin.Context) {
	caller, ok := handler.RequireCaller(c)
	if !ok {
		return
	}

	var req staffService.CreateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	creds, err := h.staffService.CreateStaff(c.Request.Context(), caller, &req)
	handler.MustCreate(c, err, creds)
}

// GetStaff 获取员工详情
// @Summary 获取员工详情
// @Tags 员工
// @Produce json
// @Security Bearer
// @Param id path int true "员工ID"
// @Success 200 {object} response.Response{data=models.User}
// @Router /api/v1/staff/{id} [get]
func (h *Handler) GetStaff(c *gin.Context) {
	caller, id, ok := handler.RequireCallerAndParseID(c, "员工")
	if !ok {
		return
	}

	user, err := h.staffService.GetStaff(c.Request.Context(), caller, id)
	handler.MustSucceed(c, err, user)
}

// ListStaff 获取员工列表
// @Summary 获取员工列表
// @Tags 员工
// @Produce json
// @Security Bearer
// @Param restaurant_id query int true "餐厅ID"
// @Param role query string false "角色"
// @Param is_active query bool false "是否启用"
// @Param keyword query string false "姓名或邮箱关键字"
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} response.Response{data=response.PageData}
// @Router /api/v1/staff [get]
func (h *Handler) ListStaff(c *gin.Context) {
	caller, ok := handler.RequireCaller(c)
	if !ok {
		return
	}
	restaurantID, ok := handler.ParseRequiredQueryID(c, "restaurant_id", "餐厅")
	if !ok {
		return
	}
	isActive, ok := handler.ParseQueryBool(c, "is_active")
	if !ok {
		return
	}

	filter := &staffService.StaffFilter{
		RestaurantID: restaurantID,
		Role:         c.Query("role"),
		IsActive:     isActive,
		Keyword:      c.Query("keyword"),
	}

	p := handler.BindPagination(c)
	list, total, err := h.staffService.ListStaff(c.Request.Context(), caller, filter, p.GetOffset(), p.GetLimit())
	handler.MustSucceedPage(c, err, list, total, p.Page, p.PageSize)
}

// UpdateStaff 更新员工
// @Summary 更新员工
// @Tags 员工
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "员工ID"
// @Param request body staffService.UpdateStaffRequest true "请求参数"
// @Success 200 {object} response.Response{data=models.User}
// @Router /api/v1/staff/{id} [put]
func (h *Handler) UpdateStaff(c *gin.Context) {
	caller, id, ok := handler.RequireCallerAndParseID(c, "员工")
	if !ok {
		return
	}

	var req staffService.UpdateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	user, err := h.staffService.UpdateStaff(c.Request.Context(), caller, id, &req)
	handler.MustSucceed(c, err, user)
}

// ResetPassword 重置员工密码
// @Summary 重置员工密码
// @Tags 员工
// @Produce json
// @Security Bearer
// @Param id path int true "员工ID"
// @Success 200 {object} response.Response{data=staffService.Credentials}
// @Router /api/v1/staff/{id}/reset-password [post]
func (h *Handler) ResetPassword(c *gin.Context) {
	caller, id, ok := handler.RequireCallerAndParseID(c, "员工")
	if !ok {
		return
	}

	creds, err := h.staffService.ResetPassword(c.Request.Context(), caller, id)
	handler.MustSucceed(c, err, creds)
}

// DeleteStaff 删除员工
// @Summary 删除员工
// @Tags 员工
// @Produce json
// @Security Bearer
// @Param id path int true "员工ID"
// @Success 200 {object} response.Response
// @Router /api/v1/staff/{id} [delete]
func (h *Handler) DeleteStaff(c *gin.Context) {
	caller, id, ok := handler.RequireCallerAndParseID(c, "员工")
	if !ok {
		return
	}

	handler.MustSucceed(c, h.staffService.DeleteStaff(c.Request.Context(), caller, id), nil)
}

// AssignCenter 分配营业点
// @Summary 分配营业点
// @Tags 员工
// @Produce json
// @Security Bearer
// @Param id path int true "员工ID"
// @Param center_id path int true "营业点ID"
// @Success 200 {object} response.Response{data=models.User}
// @Router /api/v1/staff/{id}/revenue-centers/{center_id} [post]
func (h *Handler) AssignCenter(c *gin.Context) {
	caller, id, ok := handler.RequireCallerAndParseID(c, "员工")
	if !ok {
		return
	}
	centerID, ok := handler.ParseParamID(c, "center_id", "营业点")
	if !ok {
		return
	}

	user, err := h.staffService.AssignCenter(c.Request.Context(), caller, id, centerID)
	handler.MustSucceed(c, err, user)
}

// UnassignCenter 取消分配营业点
// @Summary 取消分配营业点
// @Tags 员工
// @Produce json
// @Security Bearer
// @Param id path int true "员工ID"
// @Param center_id path int true "营业点ID"
// @Success 200 {object} response.Response{data=models.User}
// @Router /api/v1/staff/{id}/revenue-centers/{center_id} [delete]
func (h *Handler) UnassignCenter(c *gin.Context) {
	caller, id, ok := handler.RequireCallerAndParseID(c, "员工")
	if !ok {
		return
	}
	centerID, ok := handler.ParseParamID(c, "center_id", "营业点")
	if !ok {
		return
	}

	user, err := h.staffService.UnassignCenter(c.Request.Context(), caller, id, centerID)
	handler.MustSucceed(c, err, user)
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	staff := r.Group("/staff")
	{
		staff.POST("", h.CreateStaff)
		staff.GET("", h.ListStaff)
		staff.GET("/:id", h.GetStaff)
		staff.PUT("/:id", h.UpdateStaff)
		staff.DELETE("/:id", h.DeleteStaff)
		staff.POST("/:id/reset-password", h.ResetPassword)
		staff.POST("/:id/revenue-centers/:center_id", h.AssignCenter)
		staff.DELETE("/:id/revenue-centers/:center_id", h.UnassignCenter)
	}
}
