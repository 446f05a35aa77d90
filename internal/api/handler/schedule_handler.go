package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/gamerzord/latihan-magang-lms/internal/dto"
	"github.com/gamerzord/latihan-magang-lms/internal/service"
	"github.com/gamerzord/latihan-magang-lms/pkg/response"
)

// ScheduleHandler 个人日程 HTTP 处理器
type ScheduleHandler struct {
	scheduleSvc service.ScheduleEventService
}

// NewScheduleHandler 创建 ScheduleHandler
func NewScheduleHandler(scheduleSvc service.ScheduleEventService) *ScheduleHandler {
	return &ScheduleHandler{scheduleSvc: scheduleSvc}
}

// ListEvents 本人日程（按开始时间升序）
// GET /api/student/schedule
func (h *ScheduleHandler) ListEvents(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	events, err := h.scheduleSvc.List(c.Request.Context(), userID)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, events)
}

// CreateEvent 新建日程
// POST /api/student/schedule
func (h *ScheduleHandler) CreateEvent(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ScheduleEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	event, err := h.scheduleSvc.Create(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.Created(c, event)
}

// UpdateEvent 修改日程
// PUT /api/student/schedule/:id
func (h *ScheduleHandler) UpdateEvent(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, 19001, service.ErrScheduleEventNotFound.Error())
	if !ok {
		return
	}

	var req dto.ScheduleEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	event, err := h.scheduleSvc.Update(c.Request.Context(), id, userID, &req)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, event)
}

// DeleteEvent 删除日程
// DELETE /api/student/schedule/:id
func (h *ScheduleHandler) DeleteEvent(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, 19001, service.ErrScheduleEventNotFound.Error())
	if !ok {
		return
	}

	if err := h.scheduleSvc.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, nil)
}

// ImportICS 导入 .ics 日历文件（multipart 字段 file）
// POST /api/student/schedule/import
func (h *ScheduleHandler) ImportICS(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	fh, ok := formFile(c, "file")
	if !ok {
		return
	}

	result, err := h.scheduleSvc.Import(c.Request.Context(), userID, uploadFromHeader(fh))
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *ScheduleHandler) handleScheduleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrScheduleEventNotFound):
		response.NotFound(c, 19001, err.Error())
	case errors.Is(err, service.ErrScheduleStartInvalid):
		fieldError(c, "start", err.Error())
	case errors.Is(err, service.ErrScheduleEndInvalid), errors.Is(err, service.ErrScheduleEndBeforeStart):
		fieldError(c, "end", err.Error())
	case errors.Is(err, service.ErrScheduleICSInvalid):
		fieldError(c, "file", err.Error())
	default:
		handleCommonError(c, err)
	}
}
