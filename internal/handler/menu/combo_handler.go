package menu

import (
	"github.com/gin-gonic/gin"

	"github.com/dumeirei/kitchen-pos-backend/internal/common/handler"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/response"
	menuService "github.com/dumeirei/kitchen-pos-backend/internal/service/menu"
)

// CreateCombo 创建套餐
// @Summary 创建套餐
// @Tags 套餐
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body menuService.CreateComboRequest true "请求参数"
// @Success 201 {object} response.Response{data=models.ComboMeal}
// @Router /api/v1/combo-meals [post]
func (h *Handler) CreateCombo(c *gin.Context) {
	caller, ok := handler.RequireCaller(c)
	if !ok {
		return
	}

	var req menuService.CreateComboRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	combo, err := h.menuService.CreateCombo(c.Request.Context(), caller, &req)
	handler.MustCreate(c, err, combo)
}

// GetCombo 获取套餐
// @Summary 获取套餐
// @Tags 套餐
// @Produce json
// @Security Bearer
// @Param id path int true "套餐ID"
// @Success 200 {object} response.Response{data=models.ComboMeal}
// @Router /api/v1/combo-meals/{id} [get]
func (h *Handler) GetCombo(c *gin.Context) {
	caller, id, ok := handler.RequireCallerAndParseID(c, "套餐")
	if !ok {
		return
	}

	combo, err := h.menuService.GetCombo(c.Request.Context(), caller, id)
	handler.MustSucceed(c, err, combo)
}

// ListCombos 获取套餐列表
// @Summary 获取套餐列表
// @Tags 套餐
// @Produce json
// @Security Bearer
// @Param restaurant_id query int true "餐厅ID"
// @Param is_available query bool false "是否可售"
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} response.Response{data=response.PageData}
// @Router /api/v1/combo-meals [get]
func (h *Handler) ListCombos(c *gin.Context) {
	caller, ok := handler.RequireCaller(c)
	if !ok {
		return
	}
	restaurantID, ok := handler.ParseRequiredQueryID(c, "restaurant_id", "餐厅")
	if !ok {
		return
	}
	isAvailable, ok := handler.ParseQueryBool(c, "is_available")
	if !ok {
		return
	}

	p := handler.BindPagination(c)
	filter := &menuService.ComboFilter{RestaurantID: restaurantID, IsAvailable: isAvailable}
	list, total, err := h.menuService.ListCombos(c.Request.Context(), caller, filter, p.GetOffset(), p.GetLimit())
	handler.MustSucceedPage(c, err, list, total, p.Page, p.PageSize)
}

// UpdateCombo 更新套餐
// @Summary 更新套餐
// @Description items 非空时整体替换套餐内容
// @Tags 套餐
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "套餐ID"
// @Param request body menuService.UpdateComboRequest true "请求参数"
// @Success 200 {object} response.Response{data=models.ComboMeal}
// @Router /api/v1/combo-meals/{id} [put]
func (h *Handler) UpdateCombo(c *gin.Context) {
	caller, id, ok := handler.RequireCallerAndParseID(c, "套餐")
	if !ok {
		return
	}

	var req menuService.UpdateComboRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	combo, err := h.menuService.UpdateCombo(c.Request.Context(), caller, id, &req)
	handler.MustSucceed(c, err, combo)
}

// DeleteCombo 删除套餐
// @Summary 删除套餐
// @Tags 套餐
// @Produce json
// @Security Bearer
// @Param id path int true "套餐ID"
// @Success 200 {object} response.Response
// @Router /api/v1/combo-meals/{id} [delete]
func (h *Handler) DeleteCombo(c *gin.Context) {
	caller, id, ok := handler.RequireCallerAndParseID(c, "套餐")
	if !ok {
		return
	}

	handler.MustSucceed(c, h.menuService.DeleteCombo(c.Request.Context(), caller, id), nil)
}
