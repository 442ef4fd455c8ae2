// Package auth 提供认证相关的 HTTP Handler
package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/dumeirei/kitchen-pos-backend/internal/common/handler"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/response"
	authService "github.com/dumeirei/kitchen-pos-backend/internal/service/auth"
)

// Handler 认证处理器
type Handler struct {
	authService *authService.AuthService
}

// NewHandler 创建认证处理器
func NewHandler(authSvc *authService.AuthService) *Handler {
	return &Handler{authService: authSvc}
}

// Login 邮箱密码登录
// @Summary 邮箱密码登录
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body authService.LoginRequest true "请求参数"
// @Success 200 {object} response.Response{data=authService.LoginResponse}
// @Router /api/v1/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req authService.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	result, err := h.authService.Login(c.Request.Context(), &req)
	handler.MustSucceed(c, err, result)
}

// RefreshToken 刷新 Token
// @Summary 刷新 Token
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body authService.RefreshRequest true "请求参数"
// @Success 200 {object} response.Response
// @Router /api/v1/auth/refresh [post]
func (h *Handler) RefreshToken(c *gin.Context) {
	var req authService.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	tokenPair, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	handler.MustSucceed(c, err, tokenPair)
}

// Me 当前登录账号
// @Summary 获取当前登录账号信息
// @Tags 认证
// @Produce json
// @Security Bearer
// @Success 200 {object} response.Response{data=authService.Profile}
// @Router /api/v1/auth/me [get]
func (h *Handler) Me(c *gin.Context) {
	caller, ok := handler.RequireCaller(c)
	if !ok {
		return
	}

	profile, err := h.authService.Me(c.Request.Context(), caller)
	handler.MustSucceed(c, err, profile)
}

// ChangePassword 修改密码
// @Summary 修改密码
// @Tags 认证
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body authService.ChangePasswordRequest true "请求参数"
// @Success 200 {object} response.Response
// @Router /api/v1/auth/password [put]
func (h *Handler) ChangePassword(c *gin.Context) {
	caller, ok := handler.RequireCaller(c)
	if !ok {
		return
	}

	var req authService.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	handler.MustSucceed(c, h.authService.ChangePassword(c.Request.Context(), caller, &req), nil)
}

// RegisterRoutes 注册公开路由，login 由调用方挂载限流
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, loginLimiter gin.HandlerFunc) {
	auth := r.Group("/auth")
	{
		auth.POST("/login", loginLimiter, h.Login)
		auth.POST("/refresh", h.RefreshToken)
	}
}

// RegisterProtectedRoutes 注册需要登录的路由
func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	{
		auth.GET("/me", h.Me)
		auth.PUT("/password", h.ChangePassword)
	}
}
