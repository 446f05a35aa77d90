package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/gamerzord/latihan-magang-lms/internal/dto"
	"github.com/gamerzord/latihan-magang-lms/internal/service"
	"github.com/gamerzord/latihan-magang-lms/pkg/response"
)

// EnrollmentHandler 选课模块 HTTP 处理器
type EnrollmentHandler struct {
	enrollmentSvc service.EnrollmentService
}

// NewEnrollmentHandler 创建 EnrollmentHandler
func NewEnrollmentHandler(enrollmentSvc service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollmentSvc: enrollmentSvc}
}

// ListEnrollments 选课列表（按角色限定范围）
// GET /api/enrollments
func (h *EnrollmentHandler) ListEnrollments(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.EnrollmentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	list, err := h.enrollmentSvc.List(c.Request.Context(), &req, callerID, role)
	if err != nil {
		h.handleEnrollmentError(c, err)
		return
	}

	response.OK(c, list)
}

// CreateEnrollment 添加选课
// POST /api/enrollments
func (h *EnrollmentHandler) CreateEnrollment(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.EnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	e, err := h.enrollmentSvc.Create(c.Request.Context(), &req, callerID, role)
	if err != nil {
		h.handleEnrollmentError(c, err)
		return
	}

	response.Created(c, e)
}

// GetEnrollment 选课详情
// GET /api/enrollments/:id
func (h *EnrollmentHandler) GetEnrollment(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, 16001, service.ErrEnrollmentNotFound.Error())
	if !ok {
		return
	}

	e, err := h.enrollmentSvc.GetByID(c.Request.Context(), id, callerID, role)
	if err != nil {
		h.handleEnrollmentError(c, err)
		return
	}

	response.OK(c, e)
}

// UpdateEnrollment 修改选课
// PUT /api/enrollments/:id
func (h *EnrollmentHandler) UpdateEnrollment(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, 16001, service.ErrEnrollmentNotFound.Error())
	if !ok {
		return
	}

	var req dto.EnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	e, err := h.enrollmentSvc.Update(c.Request.Context(), id, &req, callerID, role)
	if err != nil {
		h.handleEnrollmentError(c, err)
		return
	}

	response.OK(c, e)
}

// DeleteEnrollment 退课
// DELETE /api/enrollments/:id
func (h *EnrollmentHandler) DeleteEnrollment(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, 16001, service.ErrEnrollmentNotFound.Error())
	if !ok {
		return
	}

	if err := h.enrollmentSvc.Delete(c.Request.Context(), id, callerID, role); err != nil {
		h.handleEnrollmentError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *EnrollmentHandler) handleEnrollmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEnrollmentNotFound):
		response.NotFound(c, 16001, err.Error())
	case errors.Is(err, service.ErrEnrollmentExists):
		response.Conflict(c, 16002, err.Error())
	case errors.Is(err, service.ErrEnrollmentCourseNotFound):
		fieldError(c, "course_id", err.Error())
	case errors.Is(err, service.ErrEnrollmentStudentInvalid):
		fieldError(c, "student_id", err.Error())
	default:
		handleCommonError(c, err)
	}
}
