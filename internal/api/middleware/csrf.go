package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/gamerzord/latihan-magang-lms/config"
	"github.com/gamerzord/latihan-magang-lms/pkg/response"
)

const csrfTokenBytes = 32

// statusCSRFMismatch 与前端约定的 CSRF 失效状态码
const statusCSRFMismatch = 419

// csrfCookieMaxAge 与会话 Cookie 同级别的有效期（秒）
const csrfCookieMaxAge = 2 * 60 * 60

// CSRFCookie 下发 XSRF-TOKEN Cookie（前端可读），响应 204
func CSRFCookie(cfg *config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := newCSRFToken()
		if err != nil {
			response.InternalError(c)
			return
		}
		c.SetSameSite(cfg.Cookie.SameSiteMode())
		c.SetCookie(cfg.CSRF.CookieName, token, csrfCookieMaxAge, "/", cfg.Cookie.Domain, cfg.Cookie.Secure, false)
		c.Status(http.StatusNoContent)
	}
}

// CSRF 双重提交校验：Cookie 认证的非安全方法请求必须在请求头回传 XSRF-TOKEN
// 须挂在 JWTAuth 之后；Bearer 认证的请求不校验
func CSRF(cfg *config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.CSRF.Enabled || isSafeMethod(c.Request.Method) || c.GetString(authSourceKey) != AuthSourceCookie {
			c.Next()
			return
		}

		cookie, err := c.Cookie(cfg.CSRF.CookieName)
		header := c.GetHeader(cfg.CSRF.HeaderName)
		if decoded, derr := url.QueryUnescape(header); derr == nil {
			header = decoded
		}
		if err != nil || cookie == "" || header == "" ||
			subtle.ConstantTimeCompare([]byte(cookie), []byte(header)) != 1 {
			response.Error(c, statusCSRFMismatch, response.CodeCSRFMismatch, "CSRF Token 校验失败")
			c.Abort()
			return
		}

		c.Next()
	}
}

func newCSRFToken() (string, error) {
	b := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func isSafeMethod(m string) bool {
	switch m {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}
