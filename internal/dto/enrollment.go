package dto

// ── 选课模块 DTO ──

// EnrollmentRequest 创建 / 更新选课请求
type EnrollmentRequest struct {
	CourseID  string `json:"course_id"  binding:"required,uuid"`
	StudentID string `json:"student_id" binding:"required,uuid"`
}

// EnrollmentListRequest 选课列表查询参数
type EnrollmentListRequest struct {
	CourseID  string `form:"course_id"  binding:"omitempty,uuid"`
	StudentID string `form:"student_id" binding:"omitempty,uuid"`
}

// EnrollmentResponse 选课信息响应
type EnrollmentResponse struct {
	ID        string        `json:"id"`
	CourseID  string        `json:"course_id"`
	StudentID string        `json:"student_id"`
	Course    *CourseBrief  `json:"course,omitempty"`
	Student   *UserResponse `json:"student,omitempty"`
	CreatedAt string        `json:"created_at"`
	UpdatedAt string        `json:"updated_at"`
}
