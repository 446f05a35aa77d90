package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gamerzord/latihan-magang-lms/config"
	"github.com/gamerzord/latihan-magang-lms/pkg/jwt"
	"github.com/gamerzord/latihan-magang-lms/pkg/redis"
	"github.com/gamerzord/latihan-magang-lms/pkg/response"
)

// Token 来源，CSRF 校验仅针对 Cookie
const (
	authSourceKey    = "auth_source"
	AuthSourceBearer = "bearer"
	AuthSourceCookie = "cookie"
)

// JWTAuth JWT 认证中间件
// 依次尝试 Authorization: Bearer <token>、用户 Cookie、管理后台 Cookie
func JWTAuth(jwtMgr *jwt.Manager, blacklist redis.Blacklist, cfg *config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		var (
			claims *jwt.Claims
			source string
		)

		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				response.Unauthorized(c, 10002, "认证头格式无效")
				c.Abort()
				return
			}
			parsed, err := jwtMgr.ParseToken(parts[1])
			if err != nil {
				response.Unauthorized(c, 10002, "Token 无效或已过期")
				c.Abort()
				return
			}
			claims, source = parsed, AuthSourceBearer
		} else {
			for _, name := range []string{cfg.UserCookieName, cfg.AdminCookieName} {
				value, err := c.Cookie(name)
				if err != nil || value == "" {
					continue
				}
				if parsed, err := jwtMgr.ParseToken(value); err == nil {
					claims, source = parsed, AuthSourceCookie
					break
				}
			}
		}

		if claims == nil {
			response.Unauthorized(c, 10002, "未认证")
			c.Abort()
			return
		}

		// 黑名单查询失败时按未认证处理
		if blacklist != nil {
			revoked, err := blacklist.IsBlacklisted(c.Request.Context(), claims.ID)
			if err != nil || revoked {
				response.Unauthorized(c, 10002, "Token 已失效")
				c.Abort()
				return
			}
		}

		// 将用户信息注入上下文
		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)
		c.Set("token_jti", claims.ID)
		if claims.ExpiresAt != nil {
			c.Set("token_exp", claims.ExpiresAt.Time)
		}
		c.Set(authSourceKey, source)

		c.Next()
	}
}

// RoleAuth 角色权限中间件
// 检查当前用户是否具有指定角色之一
func RoleAuth(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			response.Unauthorized(c, 10002, "未认证")
			c.Abort()
			return
		}

		userRole, _ := role.(string)
		for _, r := range allowedRoles {
			if userRole == r {
				c.Next()
				return
			}
		}

		response.Forbidden(c, 10003, "无权限访问")
		c.Abort()
	}
}
