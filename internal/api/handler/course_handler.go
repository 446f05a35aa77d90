package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/gamerzord/latihan-magang-lms/internal/dto"
	"github.com/gamerzord/latihan-magang-lms/internal/service"
	"github.com/gamerzord/latihan-magang-lms/pkg/response"
)

// CourseHandler 课程模块 HTTP 处理器
type CourseHandler struct {
	courseSvc service.CourseService
}

// NewCourseHandler 创建 CourseHandler
func NewCourseHandler(courseSvc service.CourseService) *CourseHandler {
	return &CourseHandler{courseSvc: courseSvc}
}

// ListCourses 课程列表
// GET /api/courses
func (h *CourseHandler) ListCourses(c *gin.Context) {
	courses, err := h.courseSvc.List(c.Request.Context())
	if err != nil {
		h.handleCourseError(c, err)
		return
	}
	response.OK(c, courses)
}

// CreateCourse 创建课程（管理员或教师本人）
// POST /api/courses
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	course, err := h.courseSvc.Create(c.Request.Context(), &req, callerID, role)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.Created(c, course)
}

// GetCourse 课程详情
// GET /api/courses/:id
func (h *CourseHandler) GetCourse(c *gin.Context) {
	id, ok := pathID(c, 13001, service.ErrCourseNotFound.Error())
	if !ok {
		return
	}

	course, err := h.courseSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, course)
}

// UpdateCourse 更新课程
// PUT /api/courses/:id
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, 13001, service.ErrCourseNotFound.Error())
	if !ok {
		return
	}

	var req dto.CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	course, err := h.courseSvc.Update(c.Request.Context(), id, &req, callerID, role)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, course)
}

// DeleteCourse 删除课程（仍有选课学生时拒绝）
// DELETE /api/courses/:id
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, 13001, service.ErrCourseNotFound.Error())
	if !ok {
		return
	}

	if err := h.courseSvc.Delete(c.Request.Context(), id, callerID, role); err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, nil)
}

// UploadThumbnail 上传课程封面（multipart 字段 thumbnail）
// POST /api/courses/:id/thumbnail
func (h *CourseHandler) UploadThumbnail(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, 13001, service.ErrCourseNotFound.Error())
	if !ok {
		return
	}

	fh, ok := formFile(c, "thumbnail")
	if !ok {
		return
	}
	f, err := fh.Open()
	if err != nil {
		fieldError(c, "thumbnail", service.ErrFileRequired.Error())
		return
	}
	defer f.Close()

	course, err := h.courseSvc.UploadThumbnail(c.Request.Context(), id, f, callerID, role)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, course)
}

// ── 角色视角 ──

// StudentCourses 学生已选课程（含学习进度）
// GET /api/student/courses
func (h *CourseHandler) StudentCourses(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	courses, err := h.courseSvc.StudentCourses(c.Request.Context(), callerID, role)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, courses)
}

// StudentCourse 学生视角课程详情
// GET /api/student/courses/:id
func (h *CourseHandler) StudentCourse(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, 13001, service.ErrCourseNotFound.Error())
	if !ok {
		return
	}

	course, err := h.courseSvc.StudentCourse(c.Request.Context(), id, callerID, role)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, course)
}

// TeacherCourses 教师本人课程
// GET /api/teacher/courses
func (h *CourseHandler) TeacherCourses(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	courses, err := h.courseSvc.TeacherCourses(c.Request.Context(), callerID, role)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, courses)
}

// TeacherCourse 教师视角课程详情
// GET /api/teacher/courses/:id
func (h *CourseHandler) TeacherCourse(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, 13001, service.ErrCourseNotFound.Error())
	if !ok {
		return
	}

	course, err := h.courseSvc.TeacherCourse(c.Request.Context(), id, callerID, role)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, course)
}

// CourseSubmissions 课程全部提交（所属教师）
// GET /api/teacher/courses/:id/submissions
func (h *CourseHandler) CourseSubmissions(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, 13001, service.ErrCourseNotFound.Error())
	if !ok {
		return
	}

	subs, err := h.courseSvc.CourseSubmissions(c.Request.Context(), id, callerID, role)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, subs)
}

func (h *CourseHandler) handleCourseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 13001, err.Error())
	case errors.Is(err, service.ErrCourseCodeExists):
		fieldError(c, "course_code", err.Error())
	case errors.Is(err, service.ErrCourseTeacherInvalid):
		fieldError(c, "teacher_id", err.Error())
	case errors.Is(err, service.ErrCourseHasEnrollments):
		response.Conflict(c, 13004, err.Error())
	case errors.Is(err, service.ErrThumbnailInvalid):
		fieldError(c, "thumbnail", err.Error())
	default:
		handleCommonError(c, err)
	}
}
