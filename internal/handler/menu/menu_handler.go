// Package menu 提供菜单分类、菜品与套餐的 HTTP Handler
package menu

import (
	"github.com/gin-gonic/gin"

	"github.com/dumeirei/kitchen-pos-backend/internal/common/handler"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/response"
	"github.com/dumeirei/kitchen-pos-backend/internal/middleware"
	menuService "github.com/dumeirei/kitchen-pos-backend/internal/service/menu"
)

// multipartOverhead 表单边界与字段头的余量
const multipartOverhead = 64 << 10

// Handler 菜单处理器
type Handler struct {
	menuService *menuService.MenuService
}

// NewHandler 创建菜单处理器
func NewHandler(menuSvc *menuService.MenuService) *Handler {
	return &Handler{menuService: menuSvc}
}

// CreateCategory 创建菜单分类
// @Summary 创建菜单分类
// @Tags 菜单
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body menuService.CreateCategoryRequest true "请求参数"
// @Success 201 {object} response.Response{data=models.MenuCategory}
// @Router /api/v1/menu-categories [post]
func (h *Handler) CreateCategory(c *gin.Context) {
	caller, ok := handler.RequireCaller(c)
	if !ok {
		return
	}

	var req menuService.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	category, err := h.menuService.CreateCategory(c.Request.Context(), caller, &req)
	handler.MustCreate(c, err, category)
}

// GetCategory 获取菜单分类
// @Summary 获取菜单分类
// @Tags 菜单
// @Produce json
// @Security Bearer
// @Param id path int true "分类ID"
// @Success 200 {object} response.Response{data=models.MenuCategory}
// @Router /api/v1/menu-categories/{id} [get]
func (h *Handler) GetCategory(c *gin.Context) {
	caller, id, ok := handler.RequireCallerAndParseID(c, "分类")
	if !ok {
		return
	}

	category, err := h.menuService.GetCategory(c.Request.Context(), caller, id)
	handler.MustSucceed(c, err, category)
}

// ListCategories 获取菜单分类列表
// @Summary 获取菜单分类列表
// @Tags 菜单
// @Produce json
// @Security Bearer
// @Param restaurant_id query int true "餐厅ID"
// @Param revenue_center_id query int false "营业点ID"
// @Param is_active query bool false "是否启用"
// @Param with_items query bool false "是否附带菜品"
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} response.Response{data=response.PageData}
// @Router /api/v1/menu-categories [get]
func (h *Handler) ListCategories(c *gin.Context) {
	caller, ok := handler.RequireCaller(c)
	if !ok {
		return
	}
	restaurantID, ok := handler.ParseRequiredQueryID(c, "restaurant_id", "餐厅")
	if !ok {
		return
	}
	centerID, ok := handler.ParseQueryID(c, "revenue_center_id", "营业点")
	if !ok {
		return
	}
	isActive, ok := handler.ParseQueryBool(c, "is_active")
	if !ok {
		return
	}
	withItems, ok := handler.ParseQueryBool(c, "with_items")
	if !ok {
		return
	}

	filter := &menuService.CategoryFilter{
		RestaurantID: restaurantID,
		IsActive:     isActive,
		WithItems:    withItems != nil && *withItems,
	}
	if centerID != nil {
		filter.RevenueCenterID = *centerID
	}

	p := handler.BindPagination(c)
	list, total, err := h.menuService.ListCategories(c.Request.Context(), caller, filter, p.GetOffset(), p.GetLimit())
	handler.MustSucceedPage(c, err, list, total, p.Page, p.PageSize)
}

// UpdateCategory 更新菜单分类
// @Summary 更新菜单分类
// @Tags 菜单
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "分类ID"
// @Param request body menuService.UpdateCategoryRequest true "请求参数"
// @Success 200 {object} response.Response{data=models.MenuCategory}
// @Router /api/v1/menu-categories/{id} [put]
func (h *Handler) UpdateCategory(c *gin.Context) {
	caller, id, ok := handler.RequireCallerAndParseID(c, "分类")
	if !ok {
		return
	}

	var req menuService.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	category, err := h.menuService.UpdateCategory(c.Request.Context(), caller, id, &req)
	handler.MustSucceed(c, err, category)
}

// DeleteCategory 删除菜单分类
// @Summary 删除菜单分类
// @Description 分类下的菜品一并删除，历史订单明细保留菜品名称
// @Tags 菜单
// @Produce json
// @Security Bearer
// @Param id path int true "分类ID"
// @Success 200 {object} response.Response
// @Router /api/v1/menu-categories/{id} [delete]
func (h *Handler) DeleteCategory(c *gin.Context) {
	caller, id, ok := handler.RequireCallerAndParseID(c, "分类")
	if !ok {
		return
	}

	handler.MustSucceed(c, h.menuService.DeleteCategory(c.Request.Context(), caller, id), nil)
}

// CreateItem 创建菜品
// @Summary 创建菜品
// @Tags 菜单
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body menuService.CreateItemRequest true "请求参数"
// @Success 201 {object} response.Response{data=models.MenuItem}
// @Router /api/v1/menu-items [post]
func (h *Handler) CreateItem(c *gin.Context) {
	caller, ok := handler.RequireCaller(c)
	if !ok {
		return
	}

	var req menuService.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	item, err := h.menuService.CreateItem(c.Request.Context(), caller, &req)
	handler.MustCreate(c, err, item)
}

// GetItem 获取菜品
// @Summary 获取菜品
// @Tags 菜单
// @Produce json
// @Security Bearer
// @Param id path int true "菜品ID"
// @Success 200 {object} response.Response{data=models.MenuItem}
// @Router /api/v1/menu-items/{id} [get]
func (h *Handler) GetItem(c *gin.Context) {
	caller, id, ok := handler.RequireCallerAndParseID(c, "菜品")
	if !ok {
		return
	}

	item, err := h.menuService.GetItem(c.Request.Context(), caller, id)
	handler.MustSucceed(c, err, item)
}

// ListItems 获取菜品列表
// @Summary 获取菜品列表
// @Tags 菜单
// @Produce json
// @Security Bearer
// @Param restaurant_id query int true "餐厅ID"
// @Param category_id query int false "分类ID"
// @Param revenue_center_id query int false "营业点ID"
// @Param is_available query bool false "是否可售"
// @Param keyword query string false "名称关键字"
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} response.Response{data=response.PageData}
// @Router /api/v1/menu-items [get]
func (h *Handler) ListItems(c *gin.Context) {
	caller, ok := handler.RequireCaller(c)
	if !ok {
		return
	}
	restaurantID, ok := handler.ParseRequiredQueryID(c, "restaurant_id", "餐厅")
	if !ok {
		return
	}
	categoryID, ok := handler.ParseQueryID(c, "category_id", "分类")
	if !ok {
		return
	}
	centerID, ok := handler.ParseQueryID(c, "revenue_center_id", "营业点")
	if !ok {
		return
	}
	isAvailable, ok := handler.ParseQueryBool(c, "is_available")
	if !ok {
		return
	}

	filter := &menuService.ItemFilter{
		RestaurantID: restaurantID,
		IsAvailable:  isAvailable,
		Keyword:      c.Query("keyword"),
	}
	if categoryID != nil {
		filter.CategoryID = *categoryID
	}
	if centerID != nil {
		filter.RevenueCenterID = *centerID
	}

	p := handler.BindPagination(c)
	list, total, err := h.menuService.ListItems(c.Request.Context(), caller, filter, p.GetOffset(), p.GetLimit())
	handler.MustSucceedPage(c, err, list, total, p.Page, p.PageSize)
}

// UpdateItem 更新菜品
// @Summary 更新菜品
// @Tags 菜单
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "菜品ID"
// @Param request body menuService.UpdateItemRequest true "请求参数"
// @Success 200 {object} response.Response{data=models.MenuItem}
// @Router /api/v1/menu-items/{id} [put]
func (h *Handler) UpdateItem(c *gin.Context) {
	caller, id, ok := handler.RequireCallerAndParseID(c, "菜品")
	if !ok {
		return
	}

	var req menuService.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	item, err := h.menuService.UpdateItem(c.Request.Context(), caller, id, &req)
	handler.MustSucceed(c, err, item)
}

// DeleteItem 删除菜品
// @Summary 删除菜品
// @Tags 菜单
// @Produce json
// @Security Bearer
// @Param id path int true "菜品ID"
// @Success 200 {object} response.Response
// @Router /api/v1/menu-items/{id} [delete]
func (h *Handler) DeleteItem(c *gin.Context) {
	caller, id, ok := handler.RequireCallerAndParseID(c, "菜品")
	if !ok {
		return
	}

	handler.MustSucceed(c, h.menuService.DeleteItem(c.Request.Context(), caller, id), nil)
}

// UploadImage 上传菜品图片
// @Summary 上传菜品图片
// @Description 支持 jpg/jpeg/png/gif/webp 格式，最大 5MB
// @Tags 菜单
// @Accept multipart/form-data
// @Produce json
// @Security Bearer
// @Param id path int true "菜品ID"
// @Param file formData file true "图片文件"
// @Success 200 {object} response.Response{data=models.MenuItem}
// @Router /api/v1/menu-items/{id}/image [post]
func (h *Handler) UploadImage(c *gin.Context) {
	caller, id, ok := handler.RequireCallerAndParseID(c, "菜品")
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "请选择要上传的文件")
		return
	}
	src, err := file.Open()
	if err != nil {
		response.BadRequest(c, "无法读取上传文件")
		return
	}
	defer src.Close()

	item, err := h.menuService.UploadImage(c.Request.Context(), caller, id, &menuService.ImageUpload{
		Filename: file.Filename,
		Size:     file.Size,
		Reader:   src,
	})
	handler.MustSucceed(c, err, item)
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	categories := r.Group("/menu-categories")
	{
		categories.POST("", h.CreateCategory)
		categories.GET("", h.ListCategories)
		categories.GET("/:id", h.GetCategory)
		categories.PUT("/:id", h.UpdateCategory)
		categories.DELETE("/:id", h.DeleteCategory)
	}

	items := r.Group("/menu-items")
	{
		items.POST("", h.CreateItem)
		items.GET("", h.ListItems)
		items.GET("/:id", h.GetItem)
		items.PUT("/:id", h.UpdateItem)
		items.DELETE("/:id", h.DeleteItem)
		items.POST("/:id/image", middleware.BodyLimit(menuService.DefaultMaxImageSize+multipartOverhead), h.UploadImage)
	}

	combos := r.Group("/combo-meals")
	{
		combos.POST("", h.CreateCombo)
		combos.GET("", h.ListCombos)
		combos.GET("/:id", h.GetCombo)
		combos.PUT("/:id", h.UpdateCombo)
		combos.DELETE("/:id", h.DeleteCombo)
	}
}
