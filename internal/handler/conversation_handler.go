// Package handler 提供 HTTP 请求处理器
package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"ai-chat-server/internal/middleware"
	"ai-chat-server/internal/service"
	"ai-chat-server/pkg/pagination"
	"ai-chat-server/pkg/response"
)

// ConversationHandler 对话请求处理器
// 处理历史列表、消息分页、重命名和删除
type ConversationHandler struct {
	conversationService *service.ConversationService
}

// NewConversationHandler 创建 ConversationHandler 实例
func NewConversationHandler(conversationService *service.ConversationService) *ConversationHandler {
	return &ConversationHandler{
		conversationService: conversationService,
	}
}

// GetHistory 获取当前用户的对话列表
// GET /api/history（需要登录）
// 返回 [{id, title}]，按 ID 倒序，标题可能由首条用户消息推导
func (h *ConversationHandler) GetHistory(c *gin.Context) {
	userID := middleware.GetUserID(c)

	summaries, err := h.conversationService.List(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c, "failed to load history")
		return
	}

	response.OK(c, summaries)
}

// GetMessages 分页获取对话的消息
// GET /api/conversation/:id/messages?page=&limit=（需要登录）
// page/limit 解析失败时静默退回 1/20，绝不报错
func (h *ConversationHandler) GetMessages(c *gin.Context) {
	userID := middleware.GetUserID(c)

	conversationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.NotFound(c, "Conversation not found or unauthorized")
		return
	}

	// 解析分页参数，失败退回默认值
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		page = pagination.DefaultPage
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil {
		limit = pagination.DefaultLimit
	}
	page, limit = pagination.Normalize(page, limit)

	result, err := h.conversationService.GetPage(c.Request.Context(), conversationID, userID, page, limit)
	if err != nil {
		if errors.Is(err, service.ErrConversationNotFound) {
			response.NotFound(c, "Conversation not found or unauthorized")
		} else {
			response.InternalError(c, "failed to load messages")
		}
		return
	}

	response.OK(c, result)
}

// RenameRequest 重命名请求
type RenameRequest struct {
	Title string `json:"title"` // 新标题，服务层校验非空
}

// Rename 重命名对话
// POST /api/conversation/:id/rename（需要登录）
func (h *ConversationHandler) Rename(c *gin.Context) {
	userID := middleware.GetUserID(c)

	conversationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.NotFound(c, "Conversation not found or unauthorized")
		return
	}

	var req RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "New title required")
		return
	}

	if err := h.conversationService.Rename(c.Request.Context(), conversationID, userID, req.Title); err != nil {
		switch {
		case errors.Is(err, service.ErrTitleRequired):
			response.BadRequest(c, "New title required")
		case errors.Is(err, service.ErrConversationNotFound):
			response.NotFound(c, "Conversation not found or unauthorized")
		default:
			response.InternalError(c, "failed to rename conversation")
		}
		return
	}

	response.Success(c, "Rename successful")
}

// Delete 删除对话
// DELETE /api/conversation/:id/delete（需要登录）
func (h *ConversationHandler) Delete(c *gin.Context) {
	userID := middleware.GetUserID(c)

	conversationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.NotFound(c, "Conversation not found or unauthorized")
		return
	}

	if err := h.conversationService.Delete(c.Request.Context(), conversationID, userID); err != nil {
		if errors.Is(err, service.ErrConversationNotFound) {
			response.NotFound(c, "Conversation not found or unauthorized")
		} else {
			response.InternalError(c, "failed to delete conversation")
		}
		return
	}

	response.Success(c, "Delete successful")
}
