// Package handler 提供 API Handler 的通用辅助函数
// 用于减少 Handler 层的代码重复，统一错误处理、调用方身份、参数解析等操作
package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dumeirei/kitchen-pos-backend/internal/common/errors"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/logger"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/response"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/utils"
	"github.com/dumeirei/kitchen-pos-backend/internal/middleware"
	"github.com/dumeirei/kitchen-pos-backend/internal/service/access"
)

// StatusOf 按错误类别返回 HTTP 状态码
func StatusOf(err error) int {
	switch errors.KindOf(err) {
	case errors.KindValidation:
		return http.StatusBadRequest
	case errors.KindReferential:
		return http.StatusUnprocessableEntity
	case errors.KindConflict:
		return http.StatusConflict
	case errors.KindAuthorization:
		return http.StatusForbidden
	case errors.KindNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// HandleError 处理错误并发送适当的响应
// 如果 err 为 nil，返回 false；否则发送错误响应并返回 true，调用方应该 return
//
// 使用示例:
//
//	result, err := service.DoSomething()
//	if HandleError(c, err) {
//	    return
//	}
func HandleError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}
	status := StatusOf(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed",
			logger.RequestID(middleware.GetRequestID(c)),
			logger.Path(c.FullPath()),
			logger.Err(err),
		)
		_ = c.Error(err)
	}
	appErr := errors.GetAppError(err)
	if status == http.StatusInternalServerError && appErr.Code == errors.ErrUnknown.Code {
		response.InternalError(c, "")
		return true
	}
	response.Error(c, status, appErr.Code, appErr.Message)
	return true
}

// HandlePlainError 与 HandleError 相同的状态码映射，错误体为 {error: string}
func HandlePlainError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}
	status := StatusOf(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed",
			logger.RequestID(middleware.GetRequestID(c)),
			logger.Path(c.FullPath()),
			logger.Err(err),
		)
	}
	response.Plain(c, status, errors.GetAppError(err).Message)
	return true
}

// MustSucceed 便捷封装：如果有错误则返回错误响应，否则返回成功响应
func MustSucceed(c *gin.Context, err error, data interface{}) {
	if HandleError(c, err) {
		return
	}
	response.Success(c, data)
}

// MustCreate 便捷封装：创建成功返回 201
func MustCreate(c *gin.Context, err error, data interface{}) {
	if HandleError(c, err) {
		return
	}
	response.Created(c, data)
}

// MustSucceedPage 便捷封装：分页响应版本
//
// 使用示例:
//
//	list, total, err := service.List(ctx, caller, offset, limit, filters)
//	MustSucceedPage(c, err, list, total, p.Page, p.PageSize)
func MustSucceedPage(c *gin.Context, err error, list interface{}, total int64, page, pageSize int) {
	if HandleError(c, err) {
		return
	}
	response.SuccessPage(c, list, total, page, pageSize)
}

// RequireCaller 获取调用方身份，未登录则返回401响应
//
// 使用示例:
//
//	caller, ok := handler.RequireCaller(c)
//	if !ok {
//	    return
//	}
func RequireCaller(c *gin.Context) (access.Caller, bool) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		response.Unauthorized(c, "请先登录")
		return access.Caller{}, false
	}
	return caller, true
}

// ParseID 解析路径参数 "id" 为 int64，失败时已发送400响应
func ParseID(c *gin.Context, resourceName string) (int64, bool) {
	return ParseParamID(c, "id", resourceName)
}

// ParseParamID 解析指定路径参数为 int64
func ParseParamID(c *gin.Context, paramName, resourceName string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(paramName), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "无效的"+resourceName+"ID")
		return 0, false
	}
	return id, true
}

// RequireCallerAndParseID 组合：获取调用方 + 解析ID参数
func RequireCallerAndParseID(c *gin.Context, resourceName string) (access.Caller, int64, bool) {
	caller, ok := RequireCaller(c)
	if !ok {
		return access.Caller{}, 0, false
	}
	id, ok := ParseID(c, resourceName)
	if !ok {
		return access.Caller{}, 0, false
	}
	return caller, id, true
}

// ParseQueryID 解析查询参数中的可选 ID
func ParseQueryID(c *gin.Context, paramName, resourceName string) (*int64, bool) {
	idStr := c.Query(paramName)
	if idStr == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		response.BadRequest(c, "无效的"+resourceName+"ID")
		return nil, false
	}
	return &id, true
}

// ParseRequiredQueryID 解析查询参数中的必填 ID
func ParseRequiredQueryID(c *gin.Context, paramName, resourceName string) (int64, bool) {
	if c.Query(paramName) == "" {
		response.BadRequest(c, "请提供"+resourceName+"ID")
		return 0, false
	}
	id, ok := ParseQueryID(c, paramName, resourceName)
	if !ok {
		return 0, false
	}
	return *id, true
}

// DateFormat 日期格式
const DateFormat = "2006-01-02"

// ParseQueryDateRange 从查询参数解析日期范围（start_date, end_date），返回 YYYY-MM-DD 字符串
// 两者均可为空；解析失败时已发送400响应
func ParseQueryDateRange(c *gin.Context) (string, string, bool) {
	start := c.Query("start_date")
	end := c.Query("end_date")

	if start != "" {
		if _, err := time.Parse(DateFormat, start); err != nil {
			response.BadRequest(c, "无效的开始日期格式")
			return "", "", false
		}
	}
	if end != "" {
		if _, err := time.Parse(DateFormat, end); err != nil {
			response.BadRequest(c, "无效的结束日期格式")
			return "", "", false
		}
	}
	if start != "" && end != "" && start > end {
		response.BadRequest(c, "开始日期不能晚于结束日期")
		return "", "", false
	}
	return start, end, true
}

// BindPagination 从查询参数绑定并规范化分页参数
// 默认 page=1, pageSize=10, 最大 pageSize=100
func BindPagination(c *gin.Context) utils.Pagination {
	var p utils.Pagination
	p.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	p.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "10"))
	p.Normalize()
	return p
}

// ParseQueryBool 解析可选布尔查询参数，失败时已发送400响应
func ParseQueryBool(c *gin.Context, paramName string) (*bool, bool) {
	raw := c.Query(paramName)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		response.BadRequest(c, "无效的参数: "+paramName)
		return nil, false
	}
	return &v, true
}
