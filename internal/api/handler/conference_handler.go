package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gamerzord/latihan-magang-lms/internal/dto"
	"github.com/gamerzord/latihan-magang-lms/internal/realtime"
	"github.com/gamerzord/latihan-magang-lms/internal/service"
	"github.com/gamerzord/latihan-magang-lms/pkg/response"
)

// ConferenceHandler 在线会议 HTTP 处理器
type ConferenceHandler struct {
	conferenceSvc service.ConferenceService
	hub           *realtime.Hub
	logger        *zap.Logger
}

// NewConferenceHandler 创建 ConferenceHandler；hub 为 nil 时不提供实时房间
func NewConferenceHandler(conferenceSvc service.ConferenceService, hub *realtime.Hub, logger *zap.Logger) *ConferenceHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConferenceHandler{conferenceSvc: conferenceSvc, hub: hub, logger: logger}
}

// ListConferences 会议列表（教师本人 / 学生已选课程）
// GET /api/conferences
func (h *ConferenceHandler) ListConferences(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	list, err := h.conferenceSvc.List(c.Request.Context(), callerID, role)
	if err != nil {
		h.handleConferenceError(c, err)
		return
	}

	response.OK(c, list)
}

// CreateConference 创建会议
// POST /api/conferences
func (h *ConferenceHandler) CreateConference(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.CreateConferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	conf, err := h.conferenceSvc.Create(c.Request.Context(), &req, callerID, role)
	if err != nil {
		h.handleConferenceError(c, err)
		return
	}

	response.Created(c, conf)
}

// GetConference 会议详情
// GET /api/conferences/:id
func (h *ConferenceHandler) GetConference(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, 18001, service.ErrConferenceNotFound.Error())
	if !ok {
		return
	}

	conf, err := h.conferenceSvc.GetByID(c.Request.Context(), id, callerID, role)
	if err != nil {
		h.handleConferenceError(c, err)
		return
	}

	response.OK(c, conf)
}

// UpdateConference 修改会议标题
// PUT /api/conferences/:id
func (h *ConferenceHandler) UpdateConference(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, 18001, service.ErrConferenceNotFound.Error())
	if !ok {
		return
	}

	var req dto.UpdateConferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	conf, err := h.conferenceSvc.Update(c.Request.Context(), id, &req, callerID, role)
	if err != nil {
		h.handleConferenceError(c, err)
		return
	}

	response.OK(c, conf)
}

// StartConference 开始会议
// POST /api/conferences/:id/start
func (h *ConferenceHandler) StartConference(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, 18001, service.ErrConferenceNotFound.Error())
	if !ok {
		return
	}

	conf, err := h.conferenceSvc.Start(c.Request.Context(), id, callerID, role)
	if err != nil {
		h.handleConferenceError(c, err)
		return
	}

	response.OK(c, conf)
}

// EndConference 结束会议并关闭实时房间
// POST /api/conferences/:id/end
func (h *ConferenceHandler) EndConference(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, 18001, service.ErrConferenceNotFound.Error())
	if !ok {
		return
	}

	conf, err := h.conferenceSvc.End(c.Request.Context(), id, callerID, role)
	if err != nil {
		h.handleConferenceError(c, err)
		return
	}

	if h.hub != nil {
		h.hub.CloseRoom(conf.RoomID)
	}
	response.OK(c, conf)
}

// DeleteConference 删除会议
// DELETE /api/conferences/:id
func (h *ConferenceHandler) DeleteConference(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, 18001, service.ErrConferenceNotFound.Error())
	if !ok {
		return
	}

	roomID, err := h.conferenceSvc.Delete(c.Request.Context(), id, callerID, role)
	if err != nil {
		h.handleConferenceError(c, err)
		return
	}

	if h.hub != nil && roomID != "" {
		h.hub.CloseRoom(roomID)
	}
	response.OK(c, nil)
}

// JoinRoom 进入会议实时房间（WebSocket）
// GET /api/conferences/:id/ws
func (h *ConferenceHandler) JoinRoom(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, 18001, service.ErrConferenceNotFound.Error())
	if !ok {
		return
	}
	if h.hub == nil {
		response.ServiceUnavailable(c, 18005, "实时房间不可用")
		return
	}

	conf, err := h.conferenceSvc.Join(c.Request.Context(), id, callerID, role)
	if err != nil {
		h.handleConferenceError(c, err)
		return
	}

	// 升级失败时 upgrader 已写入错误响应
	if err := h.hub.Serve(c.Writer, c.Request, conf.RoomID, realtime.Participant{UserID: callerID, Role: role}); err != nil {
		h.logger.Warn("进入会议房间失败", zap.String("conference_id", id), zap.Error(err))
		if !c.Writer.Written() {
			response.ServiceUnavailable(c, 18005, "实时房间不可用")
		}
	}
}

func (h *ConferenceHandler) handleConferenceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrConferenceNotFound):
		response.NotFound(c, 18001, err.Error())
	case errors.Is(err, service.ErrConferenceCourseNotFound):
		fieldError(c, "course_id", err.Error())
	case errors.Is(err, service.ErrConferenceInvalidState):
		response.Conflict(c, 18003, err.Error())
	case errors.Is(err, service.ErrConferenceNotActive):
		response.Conflict(c, 18004, err.Error())
	default:
		handleCommonError(c, err)
	}
}
