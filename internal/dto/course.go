package dto

// ── 课程模块 DTO ──

// CourseRequest 创建 / 更新课程请求（更新为整体替换）
type CourseRequest struct {
	Title       string  `json:"title"       binding:"required,notblank,max=255"`
	CourseCode  string  `json:"course_code" binding:"required,notblank,max=50"`
	Description *string `json:"description"`
	TeacherID   string  `json:"teacher_id"  binding:"required,uuid"`
	IsActive    *bool   `json:"is_active"`
}

// CourseResponse 课程信息响应
type CourseResponse struct {
	ID               string        `json:"id"`
	Title            string        `json:"title"`
	CourseCode       string        `json:"course_code"`
	Description      *string       `json:"description"`
	TeacherID        string        `json:"teacher_id"`
	IsActive         bool          `json:"is_active"`
	ThumbnailURL     *string       `json:"thumbnail_url"`
	Teacher          *UserResponse `json:"teacher,omitempty"`
	StudentsCount    int64         `json:"students_count"`
	LessonsCount     int64         `json:"lessons_count"`
	AssignmentsCount int64         `json:"assignments_count"`
	CreatedAt        string        `json:"created_at"`
	UpdatedAt        string        `json:"updated_at"`
}

// StudentCourseResponse 学生视角课程（列表项含学习进度）
type StudentCourseResponse struct {
	CourseResponse
	Progress int `json:"progress"`
}

// StudentCourseDetailResponse 学生视角课程详情
type StudentCourseDetailResponse struct {
	CourseResponse
	Progress    int                         `json:"progress"`
	Lessons     []LessonResponse            `json:"lessons"`
	Assignments []StudentAssignmentResponse `json:"assignments"`
}

// StudentAssignmentResponse 作业及当前学生的提交状态
type StudentAssignmentResponse struct {
	AssignmentResponse
	SubmissionID     *string  `json:"submission_id"`
	SubmissionStatus string   `json:"submission_status"`
	Grade            *float64 `json:"grade"`
}

// TeacherCourseDetailResponse 教师视角课程详情
type TeacherCourseDetailResponse struct {
	CourseResponse
	Students    []UserResponse       `json:"students"`
	Lessons     []LessonResponse     `json:"lessons"`
	Assignments []AssignmentResponse `json:"assignments"`
}
