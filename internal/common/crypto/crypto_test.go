// Package crypto 加密工具单元测试
package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret!", hash)

	assert.True(t, VerifyPassword("s3cret!", hash))
	assert.False(t, VerifyPassword("wrong", hash))
}

func TestGeneratePassword(t *testing.T) {
	t.Run("长度与字符类别", func(t *testing.T) {
		pw, err := GeneratePassword(12)
		require.NoError(t, err)
		assert.Len(t, pw, 12)
		assert.True(t, strings.ContainsAny(pw, lowerChars))
		assert.True(t, strings.ContainsAny(pw, upperChars))
		assert.True(t, strings.ContainsAny(pw, digitChars))
		assert.True(t, strings.ContainsAny(pw, symbolChars))
	})

	t.Run("每次不同", func(t *testing.T) {
		a, err := GeneratePassword(16)
		require.NoError(t, err)
		b, err := GeneratePassword(16)
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})

	t.Run("长度不足", func(t *testing.T) {
		_, err := GeneratePassword(6)
		assert.ErrorIs(t, err, ErrPasswordTooShort)
	})
}

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "ow***@bistro.io", MaskEmail("owner@bistro.io"))
	assert.Equal(t, "ab@x.io", MaskEmail("ab@x.io"))
	assert.Equal(t, "not-an-email", MaskEmail("not-an-email"))
}
