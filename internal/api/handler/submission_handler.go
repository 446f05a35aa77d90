package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/gamerzord/latihan-magang-lms/internal/dto"
	"github.com/gamerzord/latihan-magang-lms/internal/service"
	"github.com/gamerzord/latihan-magang-lms/pkg/response"
)

// SubmissionHandler 作业提交 HTTP 处理器
type SubmissionHandler struct {
	submissionSvc service.SubmissionService
}

// NewSubmissionHandler 创建 SubmissionHandler
func NewSubmissionHandler(submissionSvc service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissionSvc: submissionSvc}
}

// ListSubmissions 提交列表（按角色限定范围，可按 status 过滤）
// GET /api/submissions
func (h *SubmissionHandler) ListSubmissions(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.SubmissionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	list, err := h.submissionSvc.List(c.Request.Context(), &req, callerID, role)
	if err != nil {
		h.handleSubmissionError(c, err)
		return
	}

	response.OK(c, list)
}

// CreateSubmission 提交作业（multipart: assignment_id, file）
// POST /api/submissions
func (h *SubmissionHandler) CreateSubmission(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.CreateSubmissionRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}
	fh, ok := formFile(c, "file")
	if !ok {
		return
	}

	sub, err := h.submissionSvc.Create(c.Request.Context(), &req, uploadFromHeader(fh), callerID, role)
	if err != nil {
		if errors.Is(err, service.ErrSubmissionAssignmentNotFound) {
			fieldError(c, "assignment_id", err.Error())
			return
		}
		h.handleSubmissionError(c, err)
		return
	}

	response.Created(c, sub)
}

// GetSubmission 提交详情
// GET /api/submissions/:id
func (h *SubmissionHandler) GetSubmission(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, 17001, service.ErrSubmissionNotFound.Error())
	if !ok {
		return
	}

	sub, err := h.submissionSvc.GetByID(c.Request.Context(), id, callerID, role)
	if err != nil {
		h.handleSubmissionError(c, err)
		return
	}

	response.OK(c, sub)
}

// ResubmitSubmission 重新提交（multipart: file）
// PUT /api/submissions/:id
func (h *SubmissionHandler) ResubmitSubmission(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, 17001, service.ErrSubmissionNotFound.Error())
	if !ok {
		return
	}
	fh, ok := formFile(c, "file")
	if !ok {
		return
	}

	sub, err := h.submissionSvc.Resubmit(c.Request.Context(), id, uploadFromHeader(fh), callerID, role)
	if err != nil {
		h.handleSubmissionError(c, err)
		return
	}

	response.OK(c, sub)
}

// GradeSubmission 批改
// POST /api/submissions/:id/grade
func (h *SubmissionHandler) GradeSubmission(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, 17001, service.ErrSubmissionNotFound.Error())
	if !ok {
		return
	}

	var req dto.GradeSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	sub, err := h.submissionSvc.Grade(c.Request.Context(), id, &req, callerID, role)
	if err != nil {
		h.handleSubmissionError(c, err)
		return
	}

	response.OK(c, sub)
}

// DownloadSubmission 下载提交文件
// GET /api/submissions/:id/download
func (h *SubmissionHandler) DownloadSubmission(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, 17001, service.ErrSubmissionNotFound.Error())
	if !ok {
		return
	}

	file, err := h.submissionSvc.Download(c.Request.Context(), id, callerID, role)
	if err != nil {
		h.handleSubmissionError(c, err)
		return
	}

	sendFile(c, file)
}

// DeleteSubmission 删除提交
// DELETE /api/submissions/:id
func (h *SubmissionHandler) DeleteSubmission(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, 17001, service.ErrSubmissionNotFound.Error())
	if !ok {
		return
	}

	if err := h.submissionSvc.Delete(c.Request.Context(), id, callerID, role); err != nil {
		h.handleSubmissionError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *SubmissionHandler) handleSubmissionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSubmissionNotFound):
		response.NotFound(c, 17001, err.Error())
	case errors.Is(err, service.ErrSubmissionExists):
		response.Conflict(c, 17002, err.Error())
	case errors.Is(err, service.ErrSubmissionAssignmentNotFound):
		response.NotFound(c, 17003, err.Error())
	case errors.Is(err, service.ErrSubmissionFileMissing):
		response.NotFound(c, 17004, err.Error())
	case errors.Is(err, service.ErrSubmissionGraded):
		response.Conflict(c, 17005, err.Error())
	case errors.Is(err, service.ErrNotEnrolled):
		response.Forbidden(c, 17006, err.Error())
	default:
		handleCommonError(c, err)
	}
}
