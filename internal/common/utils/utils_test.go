// Package utils 通用工具函数单元测试
package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("owner@bistro.io"))
	assert.True(t, ValidateEmail("a.b+c@x-y.co"))
	assert.False(t, ValidateEmail("owner@"))
	assert.False(t, ValidateEmail("no-at-sign"))
	assert.False(t, ValidateEmail(""))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "owner@bistro.io", NormalizeEmail("  Owner@Bistro.IO "))
}

func TestValidateDomain(t *testing.T) {
	assert.True(t, ValidateDomain("bistro"))
	assert.True(t, ValidateDomain("le-petit-bistro-2"))
	assert.False(t, ValidateDomain("-bistro"))
	assert.False(t, ValidateDomain("Bistro"))
	assert.False(t, ValidateDomain("bistro_1"))
	assert.False(t, ValidateDomain(""))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "le-petit-bistro", Slugify("  Le Petit   Bistro! "))
	assert.Equal(t, "cafe-42", Slugify("Cafe #42"))

	long := Slugify(strings.Repeat("ab ", 40))
	assert.LessOrEqual(t, len(long), 63)
	assert.True(t, ValidateDomain(long))
}

func TestUnique(t *testing.T) {
	assert.Equal(t, []int64{3, 1, 2}, Unique([]int64{3, 1, 3, 2, 1}))
	assert.Equal(t, []string{"a@x.io"}, Unique([]string{"a@x.io", "a@x.io"}))
	assert.Empty(t, Unique([]string(nil)))
}

func TestPagination(t *testing.T) {
	p := Pagination{Page: 0, PageSize: 500}
	p.Normalize()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 100, p.PageSize)

	p = Pagination{Page: 3, PageSize: 20}
	p.Normalize()
	assert.Equal(t, 40, p.GetOffset())
	assert.Equal(t, 20, p.GetLimit())
}
