// Package middleware 提供 HTTP 中间件
package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dumeirei/kitchen-pos-backend/internal/common/jwt"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/response"
	"github.com/dumeirei/kitchen-pos-backend/internal/service/access"
)

// 上下文键
const (
	ContextKeyAccountID = "account_id"
	ContextKeyRole      = "role"
	ContextKeyClaims    = "claims"
)

// Auth 认证中间件，只接受访问令牌
func Auth(jwtManager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Unauthorized(c, "请先登录")
			c.Abort()
			return
		}

		claims, err := jwtManager.ParseAccessToken(token)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				response.Unauthorized(c, "登录已过期，请重新登录")
			} else {
				response.Unauthorized(c, "无效的令牌")
			}
			c.Abort()
			return
		}

		c.Set(ContextKeyAccountID, claims.AccountID)
		c.Set(ContextKeyRole, claims.Role)
		c.Set(ContextKeyClaims, claims)

		c.Next()
	}
}

// extractToken 从请求中提取令牌
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
			return parts[1]
		}
	}

	token, _ := c.Cookie("token")
	return token
}

// GetAccountID 从上下文获取账号 ID
func GetAccountID(c *gin.Context) int64 {
	return c.GetInt64(ContextKeyAccountID)
}

// GetRole 从上下文获取角色
func GetRole(c *gin.Context) string {
	return c.GetString(ContextKeyRole)
}

// GetClaims 从上下文获取完整的 Claims
func GetClaims(c *gin.Context) *jwt.Claims {
	claims, exists := c.Get(ContextKeyClaims)
	if !exists {
		return nil
	}
	return claims.(*jwt.Claims)
}

// GetCaller 由令牌声明构造调用方身份
func GetCaller(c *gin.Context) (access.Caller, bool) {
	claims := GetClaims(c)
	if claims == nil {
		return access.Caller{}, false
	}
	return access.Caller{
		AccountID:    claims.AccountID,
		Role:         claims.Role,
		OwnerID:      claims.OwnerID,
		RestaurantID: claims.RestaurantID,
		UserID:       claims.UserID,
	}, true
}
