package dto

// ── 课时模块 DTO ──

// LessonRequest 创建 / 更新课时请求
type LessonRequest struct {
	CourseID   string  `json:"course_id"   binding:"required,uuid"`
	Title      string  `json:"title"       binding:"required,notblank,max=255"`
	LessonCode string  `json:"lesson_code" binding:"required,notblank,max=50"`
	Content    *string `json:"content"`
}

// LessonListRequest 课时列表查询参数
type LessonListRequest struct {
	CourseID string `form:"course_id" binding:"omitempty,uuid"`
}

// LessonResponse 课时信息响应
type LessonResponse struct {
	ID          string               `json:"id"`
	CourseID    string               `json:"course_id"`
	Title       string               `json:"title"`
	LessonCode  string               `json:"lesson_code"`
	Content     *string              `json:"content"`
	Course      *CourseBrief         `json:"course,omitempty"`
	Attachments []AttachmentResponse `json:"attachments"`
	Completed   *bool                `json:"completed,omitempty"` // 仅学生视角返回
	CreatedAt   string               `json:"created_at"`
	UpdatedAt   string               `json:"updated_at"`
}

// AttachmentResponse 课时附件响应
type AttachmentResponse struct {
	ID            string `json:"id"`
	LessonID      string `json:"lesson_id"`
	FileName      string `json:"file_name"`
	FileURL       string `json:"file_url"`
	FileType      string `json:"file_type"`
	MimeType      string `json:"mime_type"`
	FileSize      int64  `json:"file_size"`
	FileSizeHuman string `json:"file_size_human"`
	CreatedAt     string `json:"created_at"`
}

// LessonProgressResponse 完成 / 取消完成课时后的课程进度
type LessonProgressResponse struct {
	LessonID  string `json:"lesson_id"`
	CourseID  string `json:"course_id"`
	Completed bool   `json:"completed"`
	Progress  int    `json:"progress"`
}
