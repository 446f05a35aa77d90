package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/gamerzord/latihan-magang-lms/internal/service"
	"github.com/gamerzord/latihan-magang-lms/pkg/response"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeICS  = "text/calendar; charset=utf-8"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportGradebook 导出课程成绩册
// GET /api/teacher/courses/:id/submissions/export
func (h *ExportHandler) ExportGradebook(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, 13001, service.ErrCourseNotFound.Error())
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportGradebook(c.Request.Context(), id, callerID, role)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	sendBytes(c, filename, contentTypeXLSX, buf.Bytes())
}

// ExportSchedule 导出本人日程为 iCalendar
// GET /api/student/schedule/export.ics
func (h *ExportHandler) ExportSchedule(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportSchedule(c.Request.Context(), userID)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	sendBytes(c, filename, contentTypeICS, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 13001, err.Error())
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		handleCommonError(c, err)
	}
}
