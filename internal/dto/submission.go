package dto

// ── 作业提交模块 DTO ──

// SubmissionListRequest 提交列表查询参数
type SubmissionListRequest struct {
	Status       string `form:"status"        binding:"omitempty,oneof=submitted late not_submitted"`
	AssignmentID string `form:"assignment_id" binding:"omitempty,uuid"`
}

// CreateSubmissionRequest 提交作业（multipart，文件字段为 file）
type CreateSubmissionRequest struct {
	AssignmentID string `form:"assignment_id" binding:"required,uuid"`
}

// GradeSubmissionRequest 批改请求
type GradeSubmissionRequest struct {
	Grade    *float64 `json:"grade"    binding:"required,min=0,max=100"`
	Feedback *string  `json:"feedback" binding:"omitempty,max=5000"`
}

// SubmissionResponse 提交信息响应
type SubmissionResponse struct {
	ID           string           `json:"id"`
	AssignmentID string           `json:"assignment_id"`
	StudentID    string           `json:"student_id"`
	FileURL      string           `json:"file_url"`
	Filename     string           `json:"filename"`
	Mimetype     string           `json:"mimetype"`
	FileSize     int64            `json:"file_size"`
	Status       string           `json:"status"`
	Grade        *float64         `json:"grade"`
	Feedback     *string          `json:"feedback"`
	SubmittedAt  *string          `json:"submitted_at"`
	GradedAt     *string          `json:"graded_at"`
	Assignment   *AssignmentBrief `json:"assignment,omitempty"`
	Student      *UserResponse    `json:"student,omitempty"`
	CreatedAt    string           `json:"created_at"`
	UpdatedAt    string           `json:"updated_at"`
}
