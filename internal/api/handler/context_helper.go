package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gamerzord/latihan-magang-lms/internal/service"
	"github.com/gamerzord/latihan-magang-lms/pkg/response"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetRole 从 Gin 上下文中安全提取 role。
func MustGetRole(c *gin.Context) (string, bool) {
	v, exists := c.Get("role")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetCaller 同时提取 user_id 与 role
func MustGetCaller(c *gin.Context) (string, string, bool) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return "", "", false
	}
	role, ok := MustGetRole(c)
	if !ok {
		return "", "", false
	}
	return userID, role, true
}

// tokenMeta 当前 Token 的 jti 与过期时间，由 JWT 中间件注入
func tokenMeta(c *gin.Context) (string, time.Time) {
	jti := c.GetString("token_jti")
	exp, _ := c.Get("token_exp")
	t, _ := exp.(time.Time)
	return jti, t
}

// pathID 读取路径参数 id；非 UUID 一律按资源不存在处理
func pathID(c *gin.Context, code int, notFoundMsg string) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		response.NotFound(c, code, notFoundMsg)
		return "", false
	}
	return id, true
}

// ── 文件上传 / 下载 ──

func uploadFromHeader(fh *multipart.FileHeader) service.UploadFile {
	return service.UploadFile{
		Filename:    fh.Filename,
		Size:        fh.Size,
		ContentType: fh.Header.Get("Content-Type"),
		Open: func() (io.ReadSeekCloser, error) {
			return fh.Open()
		},
	}
}

// formFile 读取单个上传文件，缺失时写入 422
func formFile(c *gin.Context, field string) (*multipart.FileHeader, bool) {
	fh, err := c.FormFile(field)
	if err != nil {
		if bodyTooLarge(c, err) {
			return nil, false
		}
		fieldError(c, field, service.ErrFileRequired.Error())
		return nil, false
	}
	return fh, true
}

// sendFile 以附件形式回传文件流并关闭 Reader
func sendFile(c *gin.Context, f *service.DownloadFile) {
	defer f.Reader.Close()

	c.Header("Content-Description", "File Transfer")
	c.DataFromReader(http.StatusOK, f.Size, f.ContentType, f.Reader, map[string]string{
		"Content-Disposition": contentDisposition(f.Filename),
	})
}

// sendBytes 回传内存中生成的导出文件
func sendBytes(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", contentDisposition(filename))
	c.Data(http.StatusOK, contentType, data)
}

// contentDisposition 同时给出 ASCII 回退名与 RFC 5987 编码的原始文件名
func contentDisposition(filename string) string {
	fallback := strings.Map(func(r rune) rune {
		if r < 0x20 || r > 0x7e || r == '"' || r == '\\' {
			return '_'
		}
		return r
	}, filename)
	return `attachment; filename="` + fallback + `"; filename*=UTF-8''` + url.PathEscape(filename)
}

// handleCommonError 各模块共享的业务错误映射，未识别的错误按 500 处理
func handleCommonError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNoPermission):
		response.Forbidden(c, 10003, err.Error())
	case errors.Is(err, service.ErrFileRequired), errors.Is(err, service.ErrFileTooLarge):
		fieldError(c, "file", err.Error())
	default:
		response.InternalError(c)
	}
}
