package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dumeirei/kitchen-pos-backend/internal/common/config"
	"github.com/dumeirei/kitchen-pos-backend/internal/models"
	"github.com/dumeirei/kitchen-pos-backend/internal/repository"
	"github.com/dumeirei/kitchen-pos-backend/internal/service/identity"
	"github.com/dumeirei/kitchen-pos-backend/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Mode: "test", PublicBaseURL: "https://pos.example.com"},
		JWT: config.JWTConfig{
			Secret:             "router-test-secret",
			AccessTokenExpire:  1,
			RefreshTokenExpire: 24,
			Issuer:             "kitchen-pos",
		},
		CORS: config.CORSConfig{AllowedOrigins: []string{"*"}},
		Business: config.BusinessConfig{
			Timezone:           "UTC",
			OrderNumberRetries: 3,
			PasswordLength:     12,
			DomainCacheTTL:     60,
		},
	}
}

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	r := gin.New()
	setupRouter(r, &Deps{
		Config: testConfig(),
		Logger: zap.NewNop(),
		DB:     testutil.NewTestDB(t),
	})
	return r
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func send(r http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, r http.Handler, email, password string) string {
	t.Helper()
	w := send(r, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var data struct {
		Token struct {
			AccessToken string `json:"access_token"`
		} `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.Token.AccessToken)
	return data.Token.AccessToken
}

func TestRouter_Health(t *testing.T) {
	r := newTestEngine(t)

	w := send(r, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)

	w = send(r, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())

	t.Run("未启用Redis时就绪检查跳过", func(t *testing.T) {
		w := send(r, http.MethodGet, "/ready", "", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var body HealthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "disabled", body.Checks["redis"])
	})

	t.Run("未知路由返回404", func(t *testing.T) {
		w := send(r, http.MethodGet, "/api/v1/nowhere", "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("非发布模式提供接口文档", func(t *testing.T) {
		w := send(r, http.MethodGet, "/swagger/doc.json", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Kitchen POS API")
		assert.Contains(t, w.Body.String(), "/api/v1/platform/owners")
	})

	t.Run("响应带请求ID", func(t *testing.T) {
		w := send(r, http.MethodGet, "/health", "", nil)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})
}

func TestRouter_RequiresToken(t *testing.T) {
	r := newTestEngine(t)

	for _, path := range []string{"/api/v1/restaurants", "/api/v1/auth/me", "/api/v1/platform/owners"} {
		method := http.MethodGet
		if path == "/api/v1/platform/owners" {
			method = http.MethodPost
		}
		w := send(r, method, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}

	w := send(r, http.MethodGet, "/api/v1/restaurants", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_OwnerOnboarding(t *testing.T) {
	cfg := testConfig()
	db := testutil.NewTestDB(t)
	r := gin.New()
	setupRouter(r, &Deps{Config: cfg, Logger: zap.NewNop(), DB: db})

	provider := identity.NewLocalProvider(repository.NewAuthAccountRepository(db))
	_, err := provider.CreateAccount(context.Background(), "admin@pos.example.com", "admin-password", models.RolePlatformAdmin)
	require.NoError(t, err)
	adminToken := login(t, r, "admin@pos.example.com", "admin-password")

	w := send(r, http.MethodPost, "/api/v1/platform/owners", adminToken, map[string]interface{}{
		"email":                   "marta@osteria.it",
		"full_name":               "Marta Bianchi",
		"subscription_plan":       "pro",
		"payment_id":              "pay_321",
		"subscription_amount":     "99.00",
		"subscription_expires_at": time.Now().AddDate(1, 0, 0).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var provisioned struct {
		OwnerID  int64  `json:"owner_id"`
		Password string `json:"password"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &provisioned))
	require.Len(t, provisioned.Password, 12)

	ownerToken := login(t, r, "marta@osteria.it", provisioned.Password)

	t.Run("店主不能访问平台接口", func(t *testing.T) {
		w := send(r, http.MethodPost, "/api/v1/platform/owners/repair", ownerToken, map[string]string{})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	w = send(r, http.MethodPost, "/api/v1/restaurants", ownerToken, map[string]string{"name": "Osteria Marta"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var restaurant models.Restaurant
	require.NoError(t, json.Unmarshal(env.Data, &restaurant))
	assert.Equal(t, provisioned.OwnerID, restaurant.OwnerID)
	assert.Equal(t, "osteria-marta", restaurant.Domain)

	w = send(r, http.MethodGet, "/api/v1/public/restaurants/osteria-marta", "", nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}
