package dto

import "time"

// ── 通用响应片段 ──

// UserResponse 用户信息响应（脱敏）
type UserResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at,omitempty"`
}

// CourseBrief 课程简要信息（嵌入其他资源响应）
type CourseBrief struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	CourseCode string `json:"course_code"`
	TeacherID  string `json:"teacher_id"`
}

// AssignmentBrief 作业简要信息
type AssignmentBrief struct {
	ID             string `json:"id"`
	CourseID       string `json:"course_id"`
	AssignmentCode string `json:"assignment_code"`
	Title          string `json:"title"`
	DueDate        string `json:"due_date"`
}

// ── 分页请求 ──

// PaginationRequest 通用分页参数
type PaginationRequest struct {
	Page     int `form:"page"      binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// GetPage 获取页码（含默认值）
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize 获取每页数量（含默认值）
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return 20
	}
	return p.PageSize
}

// GetOffset 计算偏移量
func (p *PaginationRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}

// ── 时间格式 ──

// FormatTime 统一输出 RFC3339（UTC）
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// FormatTimePtr nil 时返回 nil
func FormatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := FormatTime(*t)
	return &s
}
