package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dumeirei/kitchen-pos-backend/internal/common/response"
	"github.com/dumeirei/kitchen-pos-backend/internal/models"
)

// RequireRoles 要求指定角色
func RequireRoles(roles ...string) gin.HandlerFunc {
	roleSet := make(map[string]struct{})
	for _, r := range roles {
		roleSet[r] = struct{}{}
	}

	return func(c *gin.Context) {
		role := GetRole(c)
		if role == "" {
			response.Unauthorized(c, "请先登录")
			c.Abort()
			return
		}

		if _, ok := roleSet[role]; !ok {
			response.Forbidden(c, "权限不足")
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequirePlatformAdmin 要求平台管理员，错误体使用 {error: string}
func RequirePlatformAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetRole(c) != models.RolePlatformAdmin {
			response.Plain(c, http.StatusForbidden, "platform admin required")
			c.Abort()
			return
		}
		c.Next()
	}
}
