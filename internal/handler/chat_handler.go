// Package handler 提供 HTTP 请求处理器
package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"ai-chat-server/internal/middleware"
	"ai-chat-server/internal/service"
	"ai-chat-server/pkg/response"
)

// ChatHandler 聊天请求处理器
type ChatHandler struct {
	chatService *service.ChatService
}

// NewChatHandler 创建 ChatHandler 实例
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
	}
}

// Chat 处理一次聊天请求
// POST /api/chat（需要登录）
// 请求: {message, conversation_id?}，不带 conversation_id 时开启新对话
// 响应: {reply, conversation_id}
// 错误: 404 对话不存在或无权访问 / 503 AI 服务不可用 / 500 保存失败
func (h *ChatHandler) Chat(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req service.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Missing message")
		return
	}

	result, err := h.chatService.Send(c.Request.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrConversationNotFound):
			response.NotFound(c, "Conversation not found or unauthorized")
		case errors.Is(err, service.ErrAIUnavailable):
			response.ServiceUnavailable(c, "AI service provider error.")
		case errors.Is(err, service.ErrSaveFailed):
			response.InternalError(c, "Database processing error")
		default:
			response.InternalError(c, "chat failed")
		}
		return
	}

	response.OK(c, result)
}
