package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gamerzord/latihan-magang-lms/pkg/response"
)

// BodyLimit 全局请求体大小限制中间件
// maxBytes: 普通请求上限（如 1<<20 = 1MB）
// maxMultipartBytes: multipart 上传请求上限
func BodyLimit(maxBytes, maxMultipartBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := maxBytes
		if strings.HasPrefix(c.ContentType(), "multipart/") {
			limit = maxMultipartBytes
		}
		if c.Request.ContentLength > limit {
			response.TooLarge(c)
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}

		c.Next()
	}
}
