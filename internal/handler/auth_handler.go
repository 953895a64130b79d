// Package handler 提供 HTTP 请求处理器
package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"ai-chat-server/internal/middleware"
	"ai-chat-server/internal/service"
	"ai-chat-server/pkg/response"
)

// AuthHandler 认证请求处理器
// 处理用户注册、登录、登出和会话检查
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler 创建 AuthHandler 实例
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register 用户注册
// POST /api/register
// 成功返回 201，注册后自动登录（返回与登录相同的 Token 负载）
func (h *AuthHandler) Register(c *gin.Context) {
	// 1. 解析请求参数
	var req service.RegisterRequest
	// ShouldBindJSON 会自动验证 binding 标签中的规则
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Missing username or password")
		return
	}

	// 2. 调用服务层处理注册
	result, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		// 根据错误类型返回不同的响应
		switch {
		case errors.Is(err, service.ErrPasswordTooShort):
			response.BadRequest(c, "Password must be at least 6 characters long")
		case errors.Is(err, service.ErrUserExists):
			response.Conflict(c, "Username already exists")
		default:
			response.InternalError(c, "Registration failed")
		}
		return
	}

	// 3. 返回成功响应
	response.Created(c, "Registration successful", result)
}

// Login 用户登录
// POST /api/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Missing username or password")
		return
	}

	result, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Unauthorized(c, "Invalid username or password")
		} else {
			response.InternalError(c, "Login failed")
		}
		return
	}

	response.SuccessWithData(c, "Login successful", result)
}

// Logout 用户登出
// POST /api/logout（需要登录）
// 将当前 Token 加入黑名单
func (h *AuthHandler) Logout(c *gin.Context) {
	// 从上下文获取 Token 信息（由认证中间件设置）
	token, exists := c.Get("token")
	if !exists {
		response.BadRequest(c, "missing token")
		return
	}

	expireAt, exists := c.Get("token_exp")
	if !exists {
		response.BadRequest(c, "missing token expiry")
		return
	}

	// 计算 Token 哈希并加入黑名单
	tokenHash := middleware.HashToken(token.(string))
	if err := h.authService.Logout(c.Request.Context(), tokenHash, expireAt.(time.Time)); err != nil {
		response.InternalError(c, "Logout failed")
		return
	}

	response.Success(c, "Logout successful")
}

// CheckSession 检查登录状态
// GET /api/check_session（挂在可选认证中间件后）
// 无论是否登录都返回 200
func (h *AuthHandler) CheckSession(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		response.OK(c, gin.H{"logged_in": false})
		return
	}

	response.OK(c, gin.H{
		"logged_in": true,
		"username":  middleware.GetUsername(c),
	})
}

// RefreshTokenRequest 刷新 Token 请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RefreshToken 刷新 Token
// POST /api/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "missing refresh token")
		return
	}

	result, err := h.authService.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.Unauthorized(c, "refresh token invalid or expired")
		return
	}

	response.SuccessWithData(c, "Token refreshed", result)
}
