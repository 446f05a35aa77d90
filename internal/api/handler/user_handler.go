package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/gamerzord/latihan-magang-lms/internal/dto"
	"github.com/gamerzord/latihan-magang-lms/internal/service"
	"github.com/gamerzord/latihan-magang-lms/pkg/response"
)

// UserHandler 用户模块 HTTP 处理器
type UserHandler struct {
	userSvc service.UserService
}

// NewUserHandler 创建 UserHandler
func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// ListUsers 用户列表（管理员）
// GET /api/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	_, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.UserListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	users, total, err := h.userSvc.List(c.Request.Context(), &req, role)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OKPage(c, users, total, req.GetPage(), req.GetPageSize())
}

// GetUser 用户详情（管理员或本人）
// GET /api/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, 12001, service.ErrUserNotFound.Error())
	if !ok {
		return
	}

	user, err := h.userSvc.GetByID(c.Request.Context(), id, callerID, role)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OK(c, user)
}

// UpdateUser 更新用户（管理员或本人）
// PUT /api/users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, 12001, service.ErrUserNotFound.Error())
	if !ok {
		return
	}

	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.userSvc.Update(c.Request.Context(), id, &req, callerID, role)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OK(c, user)
}

// DeleteUser 删除用户（管理员，不可删除自己）
// DELETE /api/users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, 12001, service.ErrUserNotFound.Error())
	if !ok {
		return
	}

	if err := h.userSvc.Delete(c.Request.Context(), id, callerID, role); err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *UserHandler) handleUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 12001, err.Error())
	case errors.Is(err, service.ErrUserSelfDelete):
		response.Conflict(c, 12002, err.Error())
	case errors.Is(err, service.ErrEmailExists):
		fieldError(c, "email", err.Error())
	default:
		handleCommonError(c, err)
	}
}
