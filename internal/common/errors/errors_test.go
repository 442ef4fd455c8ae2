// Package errors 错误码和错误处理单元测试
package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(1001, "参数错误")
	require.NotNil(t, err)
	assert.Equal(t, 1001, err.Code)
	assert.Equal(t, "参数错误", err.Message)
	assert.Equal(t, KindValidation, err.Kind)
	assert.Nil(t, err.Err)
}

func TestWrap(t *testing.T) {
	originalErr := stderrors.New("database connection failed")
	err := Wrap(1004, "数据库错误", originalErr)

	assert.Equal(t, 1004, err.Code)
	assert.Equal(t, KindInternal, err.Kind)
	assert.Equal(t, originalErr, err.Unwrap())
	assert.Equal(t, "[1004] 数据库错误: database connection failed", err.Error())
}

func TestAppError_WithMessage(t *testing.T) {
	modified := ErrOrderNotFound.WithMessage("订单 42 不存在")

	assert.Equal(t, 5000, modified.Code)
	assert.Equal(t, KindNotFound, modified.Kind)
	assert.Equal(t, "订单 42 不存在", modified.Message)
	assert.Equal(t, "订单不存在", ErrOrderNotFound.Message)
}

func TestAppError_Is(t *testing.T) {
	err := fmt.Errorf("create order: %w", ErrOrderItemRefInvalid.WithMessage("both set"))

	assert.True(t, stderrors.Is(err, ErrOrderItemRefInvalid))
	assert.False(t, stderrors.Is(err, ErrOrderItemQuantity))
}

func TestKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"Validation", Validation("bad %s", "input"), KindValidation},
		{"Referential", Referential("menu item %d", 1), KindReferential},
		{"Conflict", Conflict("dup"), KindConflict},
		{"Forbidden", Forbidden("nope"), KindAuthorization},
		{"NotFound", NotFound("missing"), KindNotFound},
		{"CrossTenant", ErrOrderItemCrossTenant, KindReferential},
		{"DomainExists", ErrDomainExists, KindConflict},
		{"Plain error", stderrors.New("boom"), KindInternal},
		{"Wrapped AppError", fmt.Errorf("ctx: %w", ErrTenantMismatch), KindAuthorization},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
			assert.True(t, IsKind(tt.err, tt.want))
		})
	}

	assert.Equal(t, Kind(""), KindOf(nil))
	assert.False(t, IsKind(nil, KindInternal))
}

func TestGetAppError(t *testing.T) {
	t.Run("应用错误", func(t *testing.T) {
		wrapped := fmt.Errorf("outer: %w", ErrPaymentNotFound)
		assert.Equal(t, 6000, GetAppError(wrapped).Code)
	})

	t.Run("普通错误", func(t *testing.T) {
		plain := stderrors.New("boom")
		got := GetAppError(plain)
		assert.Equal(t, ErrUnknown.Code, got.Code)
		assert.Equal(t, plain, got.Err)
	})
}
