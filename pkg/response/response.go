package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// 通用业务码，模块业务码按 1xxyy 分段（11 认证、12 用户、13 课程……19 日程）
const (
	CodeOK           = 0
	CodeValidation   = 10001
	CodeUnauthorized = 10002
	CodeForbidden    = 10003
	CodeRateLimited  = 10004
	CodeBodyTooLarge = 10005
	CodeCSRFMismatch = 10006
	CodeInternal     = 50000
)

const (
	defaultPageSize   = 15
	messageSuccess    = "success"
	messageInternal   = "服务器内部错误"
	messageValidation = "参数校验失败"
)

// Response 统一响应结构
type Response struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Data    any               `json:"data,omitempty"`
	Details string            `json:"details,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"` // 字段级校验错误
}

// Pagination 分页元数据
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// PageData 分页响应数据
type PageData struct {
	List       any        `json:"list"`
	Pagination Pagination `json:"pagination"`
}

func write(c *gin.Context, status int, body Response) {
	c.JSON(status, body)
}

// ── 成功响应 ──

// OK 200
func OK(c *gin.Context, data any) {
	write(c, http.StatusOK, Response{Code: CodeOK, Message: messageSuccess, Data: data})
}

// Created 201
func Created(c *gin.Context, data any) {
	write(c, http.StatusCreated, Response{Code: CodeOK, Message: messageSuccess, Data: data})
}

// OKPage 200 分页；pageSize 非正时按默认值计算总页数
func OKPage(c *gin.Context, list any, total int64, page, pageSize int) {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	OK(c, PageData{
		List:       list,
		Pagination: NewPagination(total, page, pageSize),
	})
}

// NewPagination 计算分页元数据
func NewPagination(total int64, page, pageSize int) Pagination {
	pages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return Pagination{Page: page, PageSize: pageSize, Total: total, TotalPages: pages}
}

// ── 错误响应 ──

// Error 通用错误响应
func Error(c *gin.Context, httpStatus int, code int, message string) {
	write(c, httpStatus, Response{Code: code, Message: message})
}

// ErrorWithDetails 带详情的错误响应
func ErrorWithDetails(c *gin.Context, httpStatus int, code int, message, details string) {
	write(c, httpStatus, Response{Code: code, Message: message, Details: details})
}

// ValidationFailed 422 字段校验失败
func ValidationFailed(c *gin.Context, fields map[string]string) {
	write(c, http.StatusUnprocessableEntity, Response{Code: CodeValidation, Message: messageValidation, Errors: fields})
}

// ── 常见快捷方式 ──

// BadRequest 400
func BadRequest(c *gin.Context, code int, message string) {
	Error(c, http.StatusBadRequest, code, message)
}

// Unauthorized 401
func Unauthorized(c *gin.Context, code int, message string) {
	Error(c, http.StatusUnauthorized, code, message)
}

// Forbidden 403
func Forbidden(c *gin.Context, code int, message string) {
	Error(c, http.StatusForbidden, code, message)
}

// NotFound 404
func NotFound(c *gin.Context, code int, message string) {
	Error(c, http.StatusNotFound, code, message)
}

// Conflict 业务冲突（唯一键重复、存在依赖数据），同校验失败一样返回 422
func Conflict(c *gin.Context, code int, message string) {
	Error(c, http.StatusUnprocessableEntity, code, message)
}

// TooLarge 413
func TooLarge(c *gin.Context) {
	Error(c, http.StatusRequestEntityTooLarge, CodeBodyTooLarge, "请求体过大")
}

// ServiceUnavailable 503
func ServiceUnavailable(c *gin.Context, code int, message string) {
	Error(c, http.StatusServiceUnavailable, code, message)
}

// InternalError 500
func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, CodeInternal, messageInternal)
}
