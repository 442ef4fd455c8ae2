package admin

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dumeirei/kitchen-pos-backend/internal/common/config"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/jwt"
	"github.com/dumeirei/kitchen-pos-backend/internal/middleware"
	"github.com/dumeirei/kitchen-pos-backend/internal/models"
	"github.com/dumeirei/kitchen-pos-backend/internal/repository"
	"github.com/dumeirei/kitchen-pos-backend/internal/service/access"
	"github.com/dumeirei/kitchen-pos-backend/internal/service/identity"
	provisionService "github.com/dumeirei/kitchen-pos-backend/internal/service/provision"
	"github.com/dumeirei/kitchen-pos-backend/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// withClaims 模拟认证中间件写入的声明
func withClaims(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := &jwt.Claims{AccountID: 1, Role: role}
		c.Set(middleware.ContextKeyAccountID, claims.AccountID)
		c.Set(middleware.ContextKeyRole, claims.Role)
		c.Set(middleware.ContextKeyClaims, claims)
		c.Next()
	}
}

func setupRouter(t *testing.T, role string) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := testutil.NewTestDB(t)
	provider := identity.NewLocalProvider(repository.NewAuthAccountRepository(db))
	cfg := &config.BusinessConfig{PasswordLength: 12}
	h := NewOwnerHandler(
		provisionService.NewProvisionService(db, access.NewAuthorizer(), provider, cfg),
		provisionService.NewRepairService(db, provider, cfg),
	)

	r := gin.New()
	platform := r.Group("/api/v1/platform")
	platform.Use(withClaims(role), middleware.RequirePlatformAdmin())
	h.RegisterRoutes(platform)
	return r, db
}

func doJSON(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func provisionBody(email string) map[string]interface{} {
	return map[string]interface{}{
		"email":                   email,
		"full_name":               "Luigi Verdi",
		"subscription_plan":       "basic",
		"payment_id":              "pay_789",
		"subscription_amount":     "49.90",
		"subscription_expires_at": time.Now().AddDate(0, 6, 0).Format(time.RFC3339),
	}
}

func TestOwnerHandler_Provision(t *testing.T) {
	r, db := setupRouter(t, models.RolePlatformAdmin)

	w := doJSON(r, http.MethodPost, "/api/v1/platform/owners", provisionBody("luigi@trattoria.it"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var result provisionService.ProvisionResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.NotZero(t, result.OwnerID)
	assert.Equal(t, "luigi@trattoria.it", result.Email)
	assert.Len(t, result.Password, 12)

	var owner models.KitchenOwner
	require.NoError(t, db.First(&owner, result.OwnerID).Error)
	assert.NotNil(t, owner.AuthAccountID)

	t.Run("重复开通返回409", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/api/v1/platform/owners", provisionBody("luigi@trattoria.it"))
		assert.Equal(t, http.StatusConflict, w.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.NotEmpty(t, body["error"])
	})

	t.Run("缺少字段返回400", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/api/v1/platform/owners", map[string]interface{}{"email": "x@y.it"})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Contains(t, body["error"], "full_name")
	})

	t.Run("请求体不是JSON", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/platform/owners", bytes.NewBufferString("{"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"invalid request body"}`, w.Body.String())
	})
}

func TestOwnerHandler_RequiresPlatformAdmin(t *testing.T) {
	r, _ := setupRouter(t, models.RoleKitchenOwner)

	w := doJSON(r, http.MethodPost, "/api/v1/platform/owners", provisionBody("nope@trattoria.it"))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"platform admin required"}`, w.Body.String())
}

func TestOwnerHandler_Repair(t *testing.T) {
	r, db := setupRouter(t, models.RolePlatformAdmin)
	tn := testutil.SeedTenant(t, db, "repair-http")

	w := doJSON(r, http.MethodPost, "/api/v1/platform/owners/repair", map[string]string{"email": tn.Owner.Email})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var results []provisionService.RepairResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
	require.Len(t, results, 1)
	assert.Equal(t, provisionService.ActionAccountCreated, results[0].Action)
	assert.NotEmpty(t, results[0].Password)

	t.Run("不带请求体时修复全部", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/api/v1/platform/owners/repair", nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
		require.Len(t, results, 1)
		assert.Equal(t, provisionService.ActionNone, results[0].Action)
	})

	t.Run("未知邮箱返回404", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/api/v1/platform/owners/repair", map[string]string{"email": "ghost@nowhere.it"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
