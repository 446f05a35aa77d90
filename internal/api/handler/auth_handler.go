package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/gamerzord/latihan-magang-lms/config"
	"github.com/gamerzord/latihan-magang-lms/internal/dto"
	"github.com/gamerzord/latihan-magang-lms/internal/service"
	"github.com/gamerzord/latihan-magang-lms/pkg/response"
)

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
	cfg     *config.AuthConfig
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService, cfg *config.AuthConfig) *AuthHandler {
	if cfg == nil {
		cfg = &config.AuthConfig{UserCookieName: "auth-token", AdminCookieName: "admin-auth-token"}
	}
	return &AuthHandler{authSvc: authSvc, cfg: cfg}
}

// Login 用户登录
// POST /api/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	h.setTokenCookie(c, h.cfg.UserCookieName, result.Token, result.ExpiresIn)
	response.OK(c, result)
}

// AdminLogin 管理后台登录
// POST /api/admin/login
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.authSvc.AdminLogin(c.Request.Context(), &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	h.setTokenCookie(c, h.cfg.AdminCookieName, result.Token, result.ExpiresIn)
	response.OK(c, result)
}

// Register 自助注册（教师 / 学生）
// POST /api/users
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.authSvc.Register(c.Request.Context(), &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.Created(c, user)
}

// Logout 登出：当前 Token 加入黑名单并清除 Cookie
// POST /api/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	jti, exp := tokenMeta(c)
	if jti != "" {
		if err := h.authSvc.Logout(c.Request.Context(), jti, exp); err != nil {
			response.InternalError(c)
			return
		}
	}

	h.setTokenCookie(c, h.cfg.UserCookieName, "", -1)
	h.setTokenCookie(c, h.cfg.AdminCookieName, "", -1)
	response.OK(c, nil)
}

// CurrentUser 获取当前登录用户
// GET /api/user
func (h *AuthHandler) CurrentUser(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	user, err := h.authSvc.CurrentUser(c.Request.Context(), userID)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, user)
}

// setTokenCookie maxAge < 0 时删除 Cookie
func (h *AuthHandler) setTokenCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(h.cfg.Cookie.SameSiteMode())
	c.SetCookie(name, value, maxAge, "/", h.cfg.Cookie.Domain, h.cfg.Cookie.Secure, true)
}

func (h *AuthHandler) handleAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(c, 11001, err.Error())
	case errors.Is(err, service.ErrAdminOnly):
		response.Forbidden(c, 11002, err.Error())
	case errors.Is(err, service.ErrEmailExists):
		fieldError(c, "email", err.Error())
	case errors.Is(err, service.ErrUserNotFound):
		response.Unauthorized(c, 10002, "未认证")
	default:
		response.InternalError(c)
	}
}
