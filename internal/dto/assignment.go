package dto

// ── 作业模块 DTO ──

// AssignmentRequest 创建 / 更新作业请求
// due_date 接受 RFC3339 或 YYYY-MM-DD（当日结束）
type AssignmentRequest struct {
	CourseID       string  `json:"course_id"       binding:"required,uuid"`
	AssignmentCode string  `json:"assignment_code" binding:"required,notblank,max=50"`
	Title          string  `json:"title"           binding:"required,notblank,max=255"`
	Description    *string `json:"description"`
	DueDate        string  `json:"due_date"        binding:"required,datetime_flex"`
}

// AssignmentListRequest 作业列表查询参数
type AssignmentListRequest struct {
	CourseID string `form:"course_id" binding:"omitempty,uuid"`
}

// AssignmentResponse 作业信息响应
type AssignmentResponse struct {
	ID               string       `json:"id"`
	CourseID         string       `json:"course_id"`
	AssignmentCode   string       `json:"assignment_code"`
	Title            string       `json:"title"`
	Description      *string      `json:"description"`
	DueDate          string       `json:"due_date"`
	Course           *CourseBrief `json:"course,omitempty"`
	SubmissionsCount int64        `json:"submissions_count"`
	CreatedAt        string       `json:"created_at"`
	UpdatedAt        string       `json:"updated_at"`
}
