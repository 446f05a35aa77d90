package dto

// ── 在线会议模块 DTO ──

// CreateConferenceRequest 创建会议请求
type CreateConferenceRequest struct {
	CourseID string `json:"course_id" binding:"required,uuid"`
	Title    string `json:"title"     binding:"required,notblank,max=255"`
}

// UpdateConferenceRequest 更新会议请求
type UpdateConferenceRequest struct {
	Title string `json:"title" binding:"required,notblank,max=255"`
}

// ConferenceResponse 会议信息响应
type ConferenceResponse struct {
	ID        string        `json:"id"`
	CourseID  string        `json:"course_id"`
	TeacherID string        `json:"teacher_id"`
	Title     string        `json:"title"`
	RoomID    string        `json:"room_id"`
	Status    string        `json:"status"`
	StartedAt *string       `json:"started_at"`
	EndedAt   *string       `json:"ended_at"`
	Course    *CourseBrief  `json:"course,omitempty"`
	Teacher   *UserResponse `json:"teacher,omitempty"`
	CreatedAt string        `json:"created_at"`
	UpdatedAt string        `json:"updated_at"`
}
