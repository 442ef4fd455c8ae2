// Package revenue 提供营业点相关的 HTTP Handler
package revenue

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dumeirei/kitchen-pos-backend/internal/common/handler"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/response"
	revenueService "github.com/dumeirei/kitchen-pos-backend/internal/service/revenue"
)

// Handler 营业点处理器
type Handler struct {
	centerService *revenueService.RevenueCenterService
}

// NewHandler 创建营业点处理器
func NewHandler(centerSvc *revenueService.RevenueCenterService) *Handler {
	return &Handler{centerService: centerSvc}
}

// SetHoursRequest 批量设置营业时间请求
type SetHoursRequest struct {
	Hours []revenueService.HoursInput `json:"hours" binding:"required"`
}

// CreateCenter 创建营业点
// @Summary 创建营业点
// @Tags 营业点
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body revenueService.CreateCenterRequest true "请求参数"
// @Success 201 {object} response.Response{data=models.RevenueCenter}
// @Router /api/v1/revenue-centers [post]
func (h *Handler) CreateCenter(c *gin.Context) {
	caller, ok := handler.RequireCaller(c)
	if !ok {
		return
	}

	var req revenueService.CreateCenterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	center, err := h.centerService.CreateCenter(c.Request.Context(), caller, &req)
	handler.MustCreate(c, err, center)
}

// GetCenter 获取营业点详情（含营业时间）
// @Summary 获取营业点详情
// @Tags 营业点
// @Produce json
// @Security Bearer
// @Param id path int true "营业点ID"
// @Success 200 {object} response.Response{data=models.RevenueCenter}
// @Router /api/v1/revenue-centers/{id} [get]
func (h *Handler) GetCenter(c *gin.Context) {
	caller, id, ok := handler.RequireCallerAndParseID(c, "营业点")
	if !ok {
		return
	}

	center, err := h.centerService.GetCenter(c.Request.Context(), caller, id)
	handler.MustSucceed(c, err, center)
}

// ListCenters 获取营业点列表
// @Summary 获取营业点列表
// @Tags 营业点
// @Produce json
// @Security Bearer
// @Param restaurant_id query int true "餐厅ID"
// @Param type query string false "类型"
// @Param is_active query bool false "是否启用"
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} response.Response{data=response.PageData}
// @Router /api/v1/revenue-centers [get]
func (h *Handler) ListCenters(c *gin.Context) {
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

	p := handler.BindPagination(c)
	filter := &revenueService.CenterFilter{
		RestaurantID: restaurantID,
		Type:         c.Query("type"),
		IsActive:     isActive,
	}

	list, total, err := h.centerService.ListCenters(c.Request.Context(), caller, filter, p.GetOffset(), p.GetLimit())
	handler.MustSucceedPage(c, err, list, total, p.Page, p.PageSize)
}

// UpdateCenter 更新营业点
// @Summary 更新营业点
// @Tags 营业点
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "营业点ID"
// @Param request body revenueService.UpdateCenterRequest true "请求参数"
// @Success 200 {object} response.Response{data=models.RevenueCenter}
// @Router /api/v1/revenue-centers/{id} [put]
func (h *Handler) UpdateCenter(c *gin.Context) {
	caller, id, ok := handler.RequireCallerAndParseID(c, "营业点")
	if !ok {
		return
	}

	var req revenueService.UpdateCenterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	center, err := h.centerService.UpdateCenter(c.Request.Context(), caller, id, &req)
	handler.MustSucceed(c, err, center)
}

// DeleteCenter 删除营业点
// @Summary 删除营业点
// @Description 已有订单明细的营业点不能删除，请改为停用
// @Tags 营业点
// @Produce json
// @Security Bearer
// @Param id path int true "营业点ID"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/revenue-centers/{id} [delete]
func (h *Handler) DeleteCenter(c *gin.Context) {
	caller, id, ok := handler.RequireCallerAndParseID(c, "营业点")
	if !ok {
		return
	}

	handler.MustSucceed(c, h.centerService.DeleteCenter(c.Request.Context(), caller, id), nil)
}

// SetBusinessHours 批量设置营业时间
// @Summary 批量设置营业时间
// @Description 按星期覆盖，未提交的星期保持不变；时间格式 HH:MM 或 HH:MM:SS，收市早于开市表示跨夜
// @Tags 营业点
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "营业点ID"
// @Param request body SetHoursRequest true "请求参数"
// @Success 200 {object} response.Response{data=[]models.BusinessHours}
// @Router /api/v1/revenue-centers/{id}/hours [put]
func (h *Handler) SetBusinessHours(c *gin.Context) {
	caller, id, ok := handler.RequireCallerAndParseID(c, "营业点")
	if !ok {
		return
	}

	var req SetHoursRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	hours, err := h.centerService.SetBusinessHours(c.Request.Context(), caller, id, req.Hours)
	handler.MustSucceed(c, err, hours)
}

// DeleteBusinessHours 删除某一天的营业时间
// @Summary 删除营业时间
// @Tags 营业点
// @Produce json
// @Security Bearer
// @Param id path int true "营业点ID"
// @Param day path int true "星期（0=周日）"
// @Success 200 {object} response.Response
// @Router /api/v1/revenue-centers/{id}/hours/{day} [delete]
func (h *Handler) DeleteBusinessHours(c *gin.Context) {
	caller, id, ok := handler.RequireCallerAndParseID(c, "营业点")
	if !ok {
		return
	}
	day, err := strconv.Atoi(c.Param("day"))
	if err != nil {
		response.BadRequest(c, "无效的星期")
		return
	}

	handler.MustSucceed(c, h.centerService.DeleteBusinessHours(c.Request.Context(), caller, id, day), nil)
}

// OpenStatus 查询营业点是否营业
// @Summary 查询营业状态
// @Tags 营业点
// @Produce json
// @Security Bearer
// @Param id path int true "营业点ID"
// @Param at query string false "查询时刻（RFC3339），默认当前时间"
// @Success 200 {object} response.Response{data=revenueService.OpenStatus}
// @Router /api/v1/revenue-centers/{id}/open-status [get]
func (h *Handler) OpenStatus(c *gin.Context) {
	caller, id, ok := handler.RequireCallerAndParseID(c, "营业点")
	if !ok {
		return
	}

	var at time.Time
	if raw := c.Query("at"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.BadRequest(c, "无效的时间格式")
			return
		}
		at = parsed
	}

	status, err := h.centerService.OpenStatus(c.Request.Context(), caller, id, at)
	handler.MustSucceed(c, err, status)
}

// QRCode 获取营业点点餐二维码
// @Summary 获取点餐二维码
// @Tags 营业点
// @Produce png
// @Security Bearer
// @Param id path int true "营业点ID"
// @Success 200 {file} binary
// @Router /api/v1/revenue-centers/{id}/qrcode [get]
func (h *Handler) QRCode(c *gin.Context) {
	caller, id, ok := handler.RequireCallerAndParseID(c, "营业点")
	if !ok {
		return
	}

	png, menuURL, err := h.centerService.QRCode(c.Request.Context(), caller, id)
	if handler.HandleError(c, err) {
		return
	}
	c.Header("X-Menu-URL", menuURL)
	c.Data(http.StatusOK, "image/png", png)
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	centers := r.Group("/revenue-centers")
	{
		centers.POST("", h.CreateCenter)
		centers.GET("", h.ListCenters)
		centers.GET("/:id", h.GetCenter)
		centers.PUT("/:id", h.UpdateCenter)
		centers.DELETE("/:id", h.DeleteCenter)
		centers.PUT("/:id/hours", h.SetBusinessHours)
		centers.DELETE("/:id/hours/:day", h.DeleteBusinessHours)
		centers.GET("/:id/open-status", h.OpenStatus)
		centers.GET("/:id/qrcode", h.QRCode)
	}
}
