package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/gamerzord/latihan-magang-lms/internal/dto"
	"github.com/gamerzord/latihan-magang-lms/internal/service"
	"github.com/gamerzord/latihan-magang-lms/pkg/response"
)

// AssignmentHandler 作业模块 HTTP 处理器
type AssignmentHandler struct {
	assignmentSvc service.AssignmentService
}

// NewAssignmentHandler 创建 AssignmentHandler
func NewAssignmentHandler(assignmentSvc service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignmentSvc: assignmentSvc}
}

// ListAssignments 作业列表
// GET /api/assignments?course_id=xxx
func (h *AssignmentHandler) ListAssignments(c *gin.Context) {
	var req dto.AssignmentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	list, err := h.assignmentSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OK(c, list)
}

// CreateAssignment 创建作业
// POST /api/assignments
func (h *AssignmentHandler) CreateAssignment(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.AssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	a, err := h.assignmentSvc.Create(c.Request.Context(), &req, callerID, role)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.Created(c, a)
}

// GetAssignment 作业详情
// GET /api/assignments/:id
func (h *AssignmentHandler) GetAssignment(c *gin.Context) {
	id, ok := pathID(c, 15001, service.ErrAssignmentNotFound.Error())
	if !ok {
		return
	}

	a, err := h.assignmentSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OK(c, a)
}

// UpdateAssignment 更新作业
// PUT /api/assignments/:id
func (h *AssignmentHandler) UpdateAssignment(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, 15001, service.ErrAssignmentNotFound.Error())
	if !ok {
		return
	}

	var req dto.AssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	a, err := h.assignmentSvc.Update(c.Request.Context(), id, &req, callerID, role)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OK(c, a)
}

// DeleteAssignment 删除作业（已有提交时拒绝）
// DELETE /api/assignments/:id
func (h *AssignmentHandler) DeleteAssignment(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, 15001, service.ErrAssignmentNotFound.Error())
	if !ok {
		return
	}

	if err := h.assignmentSvc.Delete(c.Request.Context(), id, callerID, role); err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *AssignmentHandler) handleAssignmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAssignmentNotFound):
		response.NotFound(c, 15001, err.Error())
	case errors.Is(err, service.ErrAssignmentCodeExists):
		fieldError(c, "assignment_code", err.Error())
	case errors.Is(err, service.ErrAssignmentCourseNotFound):
		fieldError(c, "course_id", err.Error())
	case errors.Is(err, service.ErrAssignmentDueDateInvalid):
		fieldError(c, "due_date", err.Error())
	case errors.Is(err, service.ErrAssignmentHasSubmissions):
		response.Conflict(c, 15005, err.Error())
	default:
		handleCommonError(c, err)
	}
}
