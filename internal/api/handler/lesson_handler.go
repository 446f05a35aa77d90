package handler

import (
	"errors"
	"mime/multipart"

	"github.com/gin-gonic/gin"

	"github.com/gamerzord/latihan-magang-lms/internal/dto"
	"github.com/gamerzord/latihan-magang-lms/internal/service"
	"github.com/gamerzord/latihan-magang-lms/pkg/response"
)

// LessonHandler 课时与附件 HTTP 处理器
type LessonHandler struct {
	lessonSvc service.LessonService
}

// NewLessonHandler 创建 LessonHandler
func NewLessonHandler(lessonSvc service.LessonService) *LessonHandler {
	return &LessonHandler{lessonSvc: lessonSvc}
}

// ListLessons 课时列表
// GET /api/lessons?course_id=xxx
func (h *LessonHandler) ListLessons(c *gin.Context) {
	var req dto.LessonListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	lessons, err := h.lessonSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleLessonError(c, err)
		return
	}

	response.OK(c, lessons)
}

// CreateLesson 创建课时
// POST /api/lessons
func (h *LessonHandler) CreateLesson(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.LessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	lesson, err := h.lessonSvc.Create(c.Request.Context(), &req, callerID, role)
	if err != nil {
		h.handleLessonError(c, err)
		return
	}

	response.Created(c, lesson)
}

// GetLesson 课时详情（含附件）
// GET /api/lessons/:id
func (h *LessonHandler) GetLesson(c *gin.Context) {
	id, ok := pathID(c, 14001, service.ErrLessonNotFound.Error())
	if !ok {
		return
	}

	lesson, err := h.lessonSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleLessonError(c, err)
		return
	}

	response.OK(c, lesson)
}

// UpdateLesson 更新课时
// PUT /api/lessons/:id
func (h *LessonHandler) UpdateLesson(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, 14001, service.ErrLessonNotFound.Error())
	if !ok {
		return
	}

	var req dto.LessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	lesson, err := h.lessonSvc.Update(c.Request.Context(), id, &req, callerID, role)
	if err != nil {
		h.handleLessonError(c, err)
		return
	}

	response.OK(c, lesson)
}

// DeleteLesson 删除课时及其全部附件
// DELETE /api/lessons/:id
func (h *LessonHandler) DeleteLesson(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, 14001, service.ErrLessonNotFound.Error())
	if !ok {
		return
	}

	if err := h.lessonSvc.Delete(c.Request.Context(), id, callerID, role); err != nil {
		h.handleLessonError(c, err)
		return
	}

	response.OK(c, nil)
}

// ── 附件 ──

// UploadAttachments 批量上传附件（multipart 字段 files 或 files[]）
// POST /api/lessons/:id/attachments
func (h *LessonHandler) UploadAttachments(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, 14001, service.ErrLessonNotFound.Error())
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		if bodyTooLarge(c, err) {
			return
		}
		fieldError(c, "files", service.ErrFileRequired.Error())
		return
	}
	var headers []*multipart.FileHeader
	headers = append(headers, form.File["files"]...)
	headers = append(headers, form.File["files[]"]...)
	if len(headers) == 0 {
		fieldError(c, "files", service.ErrFileRequired.Error())
		return
	}

	files := make([]service.UploadFile, 0, len(headers))
	for _, fh := range headers {
		files = append(files, uploadFromHeader(fh))
	}

	attachments, err := h.lessonSvc.UploadAttachments(c.Request.Context(), id, files, callerID, role)
	if err != nil {
		if errors.Is(err, service.ErrFileRequired) || errors.Is(err, service.ErrFileTooLarge) {
			fieldError(c, "files", err.Error())
			return
		}
		h.handleLessonError(c, err)
		return
	}

	response.Created(c, attachments)
}

// GetAttachment 附件详情
// GET /api/attachments/:id
func (h *LessonHandler) GetAttachment(c *gin.Context) {
	id, ok := pathID(c, 14004, service.ErrAttachmentNotFound.Error())
	if !ok {
		return
	}

	att, err := h.lessonSvc.GetAttachment(c.Request.Context(), id)
	if err != nil {
		h.handleLessonError(c, err)
		return
	}

	response.OK(c, att)
}

// DownloadAttachment 下载附件
// GET /api/attachments/:id/download
func (h *LessonHandler) DownloadAttachment(c *gin.Context) {
	id, ok := pathID(c, 14004, service.ErrAttachmentNotFound.Error())
	if !ok {
		return
	}

	file, err := h.lessonSvc.DownloadAttachment(c.Request.Context(), id)
	if err != nil {
		h.handleLessonError(c, err)
		return
	}

	sendFile(c, file)
}

// DeleteAttachment 删除附件
// DELETE /api/attachments/:id
func (h *LessonHandler) DeleteAttachment(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, 14004, service.ErrAttachmentNotFound.Error())
	if !ok {
		return
	}

	if err := h.lessonSvc.DeleteAttachment(c.Request.Context(), id, callerID, role); err != nil {
		h.handleLessonError(c, err)
		return
	}

	response.OK(c, nil)
}

// ── 学习进度 ──

// CompleteLesson 标记课时完成
// POST /api/lessons/:id/complete
func (h *LessonHandler) CompleteLesson(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, 14001, service.ErrLessonNotFound.Error())
	if !ok {
		return
	}

	progress, err := h.lessonSvc.Complete(c.Request.Context(), id, callerID, role)
	if err != nil {
		h.handleLessonError(c, err)
		return
	}

	response.OK(c, progress)
}

// UncompleteLesson 取消完成
// DELETE /api/lessons/:id/complete
func (h *LessonHandler) UncompleteLesson(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, 14001, service.ErrLessonNotFound.Error())
	if !ok {
		return
	}

	progress, err := h.lessonSvc.Uncomplete(c.Request.Context(), id, callerID, role)
	if err != nil {
		h.handleLessonError(c, err)
		return
	}

	response.OK(c, progress)
}

func (h *LessonHandler) handleLessonError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrLessonNotFound):
		response.NotFound(c, 14001, err.Error())
	case errors.Is(err, service.ErrLessonCodeExists):
		fieldError(c, "lesson_code", err.Error())
	case errors.Is(err, service.ErrLessonCourseNotFound):
		fieldError(c, "course_id", err.Error())
	case errors.Is(err, service.ErrAttachmentNotFound):
		response.NotFound(c, 14004, err.Error())
	case errors.Is(err, service.ErrAttachmentFileMissing):
		response.NotFound(c, 14005, err.Error())
	case errors.Is(err, service.ErrNotEnrolled):
		response.Forbidden(c, 14006, err.Error())
	default:
		handleCommonError(c, err)
	}
}
