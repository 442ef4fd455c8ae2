// Package errors 定义业务错误码和错误处理
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind 错误类别，决定对外的 HTTP 状态码
type Kind string

const (
	KindValidation    Kind = "validation"
	KindReferential   Kind = "referential"
	KindConflict      Kind = "conflict"
	KindAuthorization Kind = "authorization"
	KindNotFound      Kind = "not_found"
	KindInternal      Kind = "internal"
)

// AppError 应用错误
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Kind    Kind   `json:"-"`
	Err     error  `json:"-"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 实现 errors.Unwrap
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 按错误码比较，使 errors.Is(err, ErrOrderNotFound) 对 WithMessage 派生的错误同样成立
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New 创建新的应用错误
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Kind:    kindOf(code),
	}
}

// Wrap 包装错误
func Wrap(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Kind:    kindOf(code),
		Err:     err,
	}
}

// WithMessage 修改错误消息
func (e *AppError) WithMessage(message string) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: message,
		Kind:    e.Kind,
		Err:     e.Err,
	}
}

// WithMessagef 格式化修改错误消息
func (e *AppError) WithMessagef(format string, args ...interface{}) *AppError {
	return e.WithMessage(fmt.Sprintf(format, args...))
}

// WithError 添加原始错误
func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Kind:    e.Kind,
		Err:     err,
	}
}

// 通用错误码 (1000-1999)
var (
	ErrUnknown          = New(1000, "未知错误")
	ErrInvalidParams    = New(1001, "参数错误")
	ErrAlreadyExists    = New(1003, "资源已存在")
	ErrDatabaseError    = New(1004, "数据库错误")
	ErrCacheError       = New(1005, "缓存错误")
	ErrInternalError    = New(1006, "内部错误")
	ErrExternalService  = New(1007, "外部服务错误")
	ErrRateLimitExceed  = New(1008, "请求过于频繁")
	ErrResourceNotFound = New(1010, "资源不存在")
)

// 认证与授权错误码 (2000-2999)
var (
	ErrUnauthorized      = New(2000, "未登录")
	ErrTokenExpired      = New(2001, "登录已过期")
	ErrTokenInvalid      = New(2002, "无效的令牌")
	ErrPermissionDenied  = New(2004, "权限不足")
	ErrAccountDisabled   = New(2005, "账号已禁用")
	ErrPasswordError     = New(2007, "账号或密码错误")
	ErrTenantMismatch    = New(2010, "无权访问该餐厅的数据")
	ErrCenterNotAssigned = New(2011, "未分配该营业点")
)

// 租户与开通错误码 (3000-3999)
var (
	ErrOwnerNotFound      = New(3000, "店主不存在")
	ErrOwnerExists        = New(3001, "店主已开通")
	ErrAccountExists      = New(3002, "身份账号已存在")
	ErrIdentityFailed     = New(3003, "身份账号创建失败")
	ErrRestaurantNotFound = New(3010, "餐厅不存在")
	ErrDomainExists       = New(3011, "域名已被占用")
	ErrStaffNotFound      = New(3020, "员工不存在")
	ErrAssignmentExists   = New(3021, "员工已分配到该营业点")
)

// 营业点与菜单错误码 (4000-4999)
var (
	ErrRevenueCenterNotFound = New(4000, "营业点不存在")
	ErrBusinessHoursInvalid  = New(4001, "营业时间格式错误")
	ErrCategoryNotFound      = New(4010, "菜单分类不存在")
	ErrMenuItemNotFound      = New(4011, "菜品不存在")
	ErrComboMealNotFound     = New(4012, "套餐不存在")
	ErrCustomerNotFound      = New(4020, "顾客不存在")
)

// 订单错误码 (5000-5999)
var (
	ErrOrderNotFound        = New(5000, "订单不存在")
	ErrOrderStatusInvalid   = New(5001, "无效的订单状态")
	ErrOrderTypeInvalid     = New(5002, "无效的订单类型")
	ErrOrderNumberConflict  = New(5003, "订单号冲突")
	ErrOrderItemNotFound    = New(5010, "订单明细不存在")
	ErrOrderItemRefInvalid  = New(5011, "订单明细必须且只能引用一个菜品或套餐")
	ErrOrderItemQuantity    = New(5012, "订单明细数量必须大于0")
	ErrOrderItemStatus      = New(5013, "无效的订单明细状态")
	ErrOrderItemCrossTenant = New(5014, "订单明细引用了其他餐厅的数据")
	ErrOrderItemRefMissing  = New(5015, "订单明细引用的数据不存在")
	ErrOrderAmountInvalid   = New(5016, "订单金额无效")
)

// 支付错误码 (6000-6999)
var (
	ErrPaymentNotFound      = New(6000, "支付记录不存在")
	ErrPaymentMethodInvalid = New(6001, "支付方式错误")
	ErrPaymentStatusInvalid = New(6002, "无效的支付状态")
	ErrPaymentAmountInvalid = New(6003, "支付金额必须大于0")
)

var kindByCode = map[int]Kind{
	1001: KindValidation,
	1003: KindConflict,
	1010: KindNotFound,
	2000: KindAuthorization,
	2001: KindAuthorization,
	2002: KindAuthorization,
	2004: KindAuthorization,
	2005: KindAuthorization,
	2007: KindAuthorization,
	2010: KindAuthorization,
	2011: KindAuthorization,
	3000: KindNotFound,
	3001: KindConflict,
	3002: KindConflict,
	3010: KindNotFound,
	3011: KindConflict,
	3020: KindNotFound,
	3021: KindConflict,
	4000: KindNotFound,
	4001: KindValidation,
	4010: KindNotFound,
	4011: KindNotFound,
	4012: KindNotFound,
	4020: KindNotFound,
	5000: KindNotFound,
	5001: KindValidation,
	5002: KindValidation,
	5003: KindConflict,
	5010: KindNotFound,
	5011: KindValidation,
	5012: KindValidation,
	5013: KindValidation,
	5014: KindReferential,
	5015: KindReferential,
	5016: KindValidation,
	6000: KindNotFound,
	6001: KindValidation,
	6002: KindValidation,
	6003: KindValidation,
}

func kindOf(code int) Kind {
	if k, ok := kindByCode[code]; ok {
		return k
	}
	return KindInternal
}

// Validation 创建参数校验错误
func Validation(format string, args ...interface{}) *AppError {
	return ErrInvalidParams.WithMessagef(format, args...)
}

// Referential 创建引用错误（跨租户引用或外键无法解析）
func Referential(format string, args ...interface{}) *AppError {
	return ErrOrderItemRefMissing.WithMessagef(format, args...)
}

// Conflict 创建唯一性冲突错误
func Conflict(format string, args ...interface{}) *AppError {
	return ErrAlreadyExists.WithMessagef(format, args...)
}

// Forbidden 创建授权错误
func Forbidden(format string, args ...interface{}) *AppError {
	return ErrPermissionDenied.WithMessagef(format, args...)
}

// NotFound 创建资源不存在错误
func NotFound(format string, args ...interface{}) *AppError {
	return ErrResourceNotFound.WithMessagef(format, args...)
}

// GetAppError 获取应用错误，非应用错误包装为 ErrUnknown
func GetAppError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return ErrUnknown.WithError(err)
}

// KindOf 返回错误类别，非应用错误视为内部错误
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind 判断错误是否属于指定类别
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
