// Package response 提供统一的 API 响应格式
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response API 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// PageData 分页数据结构
type PageData struct {
	List     interface{} `json:"list"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

// PlainError 开通接口使用的错误体 {error: string}
type PlainError struct {
	Error string `json:"error"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created 创建成功响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    0,
		Message: "created",
		Data:    data,
	})
}

// SuccessPage 分页成功响应
func SuccessPage(c *gin.Context, list interface{}, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data: PageData{
			List:     list,
			Total:    total,
			Page:     page,
			PageSize: pageSize,
		},
	})
}

// Error 错误响应，HTTP 状态码由调用方决定
func Error(c *gin.Context, status, code int, message string) {
	c.JSON(status, Response{
		Code:    code,
		Message: message,
	})
}

// Plain 以 {error: string} 形式返回错误
func Plain(c *gin.Context, status int, message string) {
	c.JSON(status, PlainError{Error: message})
}

// withDefault 空消息时使用状态码的标准文本
func withDefault(c *gin.Context, status int, message string) {
	if message == "" {
		message = http.StatusText(status)
	}
	Error(c, status, status, message)
}

// BadRequest 请求参数错误
func BadRequest(c *gin.Context, message string) { withDefault(c, http.StatusBadRequest, message) }

// Unauthorized 未登录或令牌无效
func Unauthorized(c *gin.Context, message string) { withDefault(c, http.StatusUnauthorized, message) }

// Forbidden 无权访问
func Forbidden(c *gin.Context, message string) { withDefault(c, http.StatusForbidden, message) }

// NotFound 资源或路由不存在
func NotFound(c *gin.Context, message string) { withDefault(c, http.StatusNotFound, message) }

// InternalError 服务器内部错误
func InternalError(c *gin.Context, message string) {
	withDefault(c, http.StatusInternalServerError, message)
}

// TooManyRequests 触发限流
func TooManyRequests(c *gin.Context, message string) {
	withDefault(c, http.StatusTooManyRequests, message)
}
