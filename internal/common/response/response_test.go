// Package response 统一响应格式单元测试
package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTest 创建测试用的 Gin 上下文
func setupTest() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	return c, w
}

// parseResponse 解析响应为 Response 结构
func parseResponse(t *testing.T, w *httptest.ResponseRecorder) Response {
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestSuccess(t *testing.T) {
	c, w := setupTest()
	Success(c, map[string]interface{}{"id": 1})

	assert.Equal(t, http.StatusOK, w.Code)
	resp := parseResponse(t, w)
	assert.Equal(t, 0, resp.Code)
	assert.Equal(t, "success", resp.Message)
	assert.NotNil(t, resp.Data)
}

func TestCreated(t *testing.T) {
	c, w := setupTest()
	Created(c, map[string]int64{"id": 9})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 0, parseResponse(t, w).Code)
}

func TestSuccessPage(t *testing.T) {
	c, w := setupTest()
	SuccessPage(c, []string{"a", "b"}, 12, 2, 2)

	var body struct {
		Data PageData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int64(12), body.Data.Total)
	assert.Equal(t, 2, body.Data.Page)
	assert.Equal(t, 2, body.Data.PageSize)
}

func TestError(t *testing.T) {
	c, w := setupTest()
	Error(c, http.StatusConflict, 3011, "域名已被占用")

	assert.Equal(t, http.StatusConflict, w.Code)
	resp := parseResponse(t, w)
	assert.Equal(t, 3011, resp.Code)
	assert.Equal(t, "域名已被占用", resp.Message)
	assert.Nil(t, resp.Data)
}

func TestPlain(t *testing.T) {
	c, w := setupTest()
	Plain(c, http.StatusBadRequest, "email is required")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"email is required"}`, w.Body.String())
}

func TestStatusHelpers(t *testing.T) {
	tests := []struct {
		name   string
		fn     func(*gin.Context, string)
		status int
		msg    string
	}{
		{"BadRequest", BadRequest, http.StatusBadRequest, "Bad Request"},
		{"Unauthorized", Unauthorized, http.StatusUnauthorized, "Unauthorized"},
		{"Forbidden", Forbidden, http.StatusForbidden, "Forbidden"},
		{"NotFound", NotFound, http.StatusNotFound, "Not Found"},
		{"InternalError", InternalError, http.StatusInternalServerError, "Internal Server Error"},
		{"TooManyRequests", TooManyRequests, http.StatusTooManyRequests, "Too Many Requests"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := setupTest()
			tt.fn(c, "")
			assert.Equal(t, tt.status, w.Code)
			resp := parseResponse(t, w)
			assert.Equal(t, tt.status, resp.Code)
			assert.Equal(t, tt.msg, resp.Message)
		})
	}
}
