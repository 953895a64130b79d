// Package handler 提供 HTTP 请求处理器
package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"ai-chat-server/internal/middleware"
	"ai-chat-server/internal/service"
	"ai-chat-server/pkg/response"
)

// UserHandler 用户请求处理器
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler 创建 UserHandler 实例
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// GetProfile 获取个人资料
// GET /api/users/me（需要登录）
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID := middleware.GetUserID(c)

	profile, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, "user not found")
		} else {
			response.InternalError(c, "failed to load profile")
		}
		return
	}

	response.OK(c, profile)
}

// ChangePassword 修改密码
// PUT /api/users/me/password（需要登录）
func (h *UserHandler) ChangePassword(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req service.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Missing old or new password")
		return
	}

	if err := h.userService.ChangePassword(c.Request.Context(), userID, &req); err != nil {
		switch {
		case errors.Is(err, service.ErrPasswordTooShort):
			response.BadRequest(c, "Password must be at least 6 characters long")
		case errors.Is(err, service.ErrOldPasswordWrong):
			response.Unauthorized(c, "Old password is wrong")
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFound(c, "user not found")
		default:
			response.InternalError(c, "failed to change password")
		}
		return
	}

	response.Success(c, "Password changed")
}

// DeleteAccount 注销账号
// DELETE /api/users/me（需要登录）
// 级联删除该用户的全部对话
func (h *UserHandler) DeleteAccount(c *gin.Context) {
	userID := middleware.GetUserID(c)

	if err := h.userService.DeleteAccount(c.Request.Context(), userID); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, "user not found")
		} else {
			response.InternalError(c, "failed to delete account")
		}
		return
	}

	response.Success(c, "Account deleted")
}
