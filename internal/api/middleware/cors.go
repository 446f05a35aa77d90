package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	corsAllowHeaders  = "Content-Type, Authorization, X-Requested-With, X-XSRF-TOKEN, X-Request-ID"
	corsAllowMethods  = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
	corsExposeHeaders = "Content-Disposition, X-Request-ID"
	corsMaxAge        = "86400"
)

// originMatcher 支持精确匹配与 "https://*.example.com" 形式的子域通配
type originMatcher struct {
	exact     map[string]struct{}
	wildcards []wildcardOrigin
}

type wildcardOrigin struct {
	prefix string // "https://"
	suffix string // ".example.com"
}

func newOriginMatcher(allowOrigins []string) originMatcher {
	m := originMatcher{exact: make(map[string]struct{}, len(allowOrigins))}
	for _, o := range allowOrigins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if scheme, host, ok := strings.Cut(o, "://*."); ok {
			m.wildcards = append(m.wildcards, wildcardOrigin{prefix: scheme + "://", suffix: "." + host})
			continue
		}
		m.exact[o] = struct{}{}
	}
	return m
}

func (m originMatcher) allowed(origin string) bool {
	if origin == "" {
		return false
	}
	if _, ok := m.exact[origin]; ok {
		return true
	}
	for _, w := range m.wildcards {
		if len(origin) > len(w.prefix)+len(w.suffix) &&
			strings.HasPrefix(origin, w.prefix) && strings.HasSuffix(origin, w.suffix) {
			return true
		}
	}
	return false
}

// CORS 跨域中间件；前端携带 Cookie，因此只回显白名单内的 Origin，不使用 *
func CORS(allowOrigins []string) gin.HandlerFunc {
	matcher := newOriginMatcher(allowOrigins)

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		c.Writer.Header().Add("Vary", "Origin")

		ok := matcher.allowed(origin)
		if ok {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Expose-Headers", corsExposeHeaders)
		}

		// 预检请求
		if c.Request.Method == http.MethodOptions && c.GetHeader("Access-Control-Request-Method") != "" {
			if !ok {
				c.AbortWithStatus(http.StatusForbidden)
				return
			}
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
			h.Set("Access-Control-Allow-Methods", corsAllowMethods)
			h.Set("Access-Control-Max-Age", corsMaxAge)
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
