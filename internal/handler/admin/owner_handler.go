// Package admin 提供平台管理端的 HTTP Handler
package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dumeirei/kitchen-pos-backend/internal/common/handler"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/response"
	provisionService "github.com/dumeirei/kitchen-pos-backend/internal/service/provision"
)

// OwnerHandler 店主开通处理器
//
// 该组接口的错误体统一为 {error: string}，供开通流程的调用方直接展示。
type OwnerHandler struct {
	provisionService *provisionService.ProvisionService
	repairService    *provisionService.RepairService
}

// NewOwnerHandler 创建店主开通处理器
func NewOwnerHandler(provisionSvc *provisionService.ProvisionService, repairSvc *provisionService.RepairService) *OwnerHandler {
	return &OwnerHandler{
		provisionService: provisionSvc,
		repairService:    repairSvc,
	}
}

// RepairRequest 修复请求，email 为空时修复全部店主
type RepairRequest struct {
	Email string `json:"email"`
}

// Provision 开通店主
// @Summary 开通店主
// @Description 创建店主记录与登录账号，初始密码只在本次响应中返回
// @Tags 平台管理
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body provisionService.ProvisionRequest true "请求参数"
// @Success 201 {object} provisionService.ProvisionResult
// @Failure 400 {object} response.PlainError
// @Failure 409 {object} response.PlainError
// @Router /api/v1/platform/owners [post]
func (h *OwnerHandler) Provision(c *gin.Context) {
	caller, ok := handler.RequireCaller(c)
	if !ok {
		return
	}

	var req provisionService.ProvisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Plain(c, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.provisionService.Provision(c.Request.Context(), caller, &req)
	if handler.HandlePlainError(c, err) {
		return
	}
	c.JSON(http.StatusCreated, result)
}

// Repair 修复店主与登录账号的不一致
// @Summary 修复店主账号
// @Tags 平台管理
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body RepairRequest false "请求参数"
// @Success 200 {array} provisionService.RepairResult
// @Failure 404 {object} response.PlainError
// @Router /api/v1/platform/owners/repair [post]
func (h *OwnerHandler) Repair(c *gin.Context) {
	var req RepairRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Plain(c, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	ctx := c.Request.Context()
	if req.Email == "" {
		results, err := h.repairService.ReconcileAll(ctx)
		if handler.HandlePlainError(c, err) {
			return
		}
		c.JSON(http.StatusOK, results)
		return
	}

	result, err := h.repairService.ReconcileOwner(ctx, req.Email)
	if handler.HandlePlainError(c, err) {
		return
	}
	c.JSON(http.StatusOK, []*provisionService.RepairResult{result})
}

// RegisterRoutes 注册路由，调用方负责挂载平台管理员校验
func (h *OwnerHandler) RegisterRoutes(r *gin.RouterGroup) {
	owners := r.Group("/owners")
	{
		owners.POST("", h.Provision)
		owners.POST("/repair", h.Repair)
	}
}
