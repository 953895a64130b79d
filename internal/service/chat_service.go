// Package service 提供业务逻辑层的实现
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ai-chat-server/internal/llm"
	"ai-chat-server/internal/model"
)

// 聊天相关业务错误
var (
	// ErrAIUnavailable 外部 AI 服务不可达或返回错误（含超时）
	ErrAIUnavailable = errors.New("AI service provider error")
	// ErrSaveFailed 回复已生成但持久化失败
	// 此时不向客户端返回回复，只报告错误，避免暴露半成功状态
	ErrSaveFailed = errors.New("failed to save conversation")
)

// ChatService 聊天编排服务
// 串起一次聊天请求的完整流程：加载上下文、调用模型、落库
// 自身不保存任何跨请求状态
type ChatService struct {
	conversations *ConversationService // 对话服务
	client        llm.Client           // 注入的模型客户端，测试时可替换
}

// NewChatService 创建 ChatService 实例
func NewChatService(conversations *ConversationService, client llm.Client) *ChatService {
	return &ChatService{
		conversations: conversations,
		client:        client,
	}
}

// ChatRequest 聊天请求
type ChatRequest struct {
	Message        string `json:"message" binding:"required"` // 用户消息
	ConversationID *int64 `json:"conversation_id"`            // 对话ID，缺省表示开启新对话
}

// ChatResponse 聊天响应
type ChatResponse struct {
	Reply          string `json:"reply"`           // 模型回复
	ConversationID int64  `json:"conversation_id"` // 对话ID（可能是新分配的）
}

// Send 处理一次聊天请求
// 流程:
//  1. 指定了对话ID则加载并校验所有权，取出历史消息；否则从空上下文开始
//  2. 把历史消息映射为模型角色（bot→assistant, user→user），追加本次输入
//  3. 调用模型，失败时不产生任何写入
//  4. 成功后把用户消息和回复作为一轮追加落库，落库失败时不返回回复
//
// 参数:
//   - ctx: 上下文
//   - userID: 调用者ID
//   - req: 聊天请求
//
// 返回:
//   - *ChatResponse: 回复和对话ID
//   - error: ErrConversationNotFound / ErrAIUnavailable / ErrSaveFailed
func (s *ChatService) Send(ctx context.Context, userID int64, req *ChatRequest) (*ChatResponse, error) {
	// 1. 取出历史上下文
	var history []model.Message
	if req.ConversationID != nil {
		var err error
		history, err = s.conversations.History(ctx, *req.ConversationID, userID)
		if err != nil {
			return nil, err
		}
	}

	// 2. 构造发给模型的消息列表，保持存储顺序
	prompt := buildPrompt(history, req.Message)

	// 3. 调用模型
	// 含超时在内的一切失败都按供应商错误处理，且不落库
	reply, err := s.client.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAIUnavailable, err)
	}
	reply = strings.TrimSpace(reply)

	// 4. 追加这一轮并提交
	// 只有提交成功后才把回复交给客户端
	conversationID, err := s.conversations.AppendTurn(ctx, req.ConversationID, userID, req.Message, reply)
	if err != nil {
		if errors.Is(err, ErrConversationNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}

	return &ChatResponse{
		Reply:          reply,
		ConversationID: conversationID,
	}, nil
}

// buildPrompt 把存储的消息序列翻译为模型角色并追加本次输入
// Sender 是封闭枚举，映射是穷尽的: bot→assistant，其余即 user
func buildPrompt(history []model.Message, userText string) []llm.Message {
	prompt := make([]llm.Message, 0, len(history)+1)
	for _, msg := range history {
		role := llm.RoleUser
		if msg.Sender == model.SenderBot {
			role = llm.RoleAssistant
		}
		prompt = append(prompt, llm.Message{Role: role, Content: msg.Text})
	}
	return append(prompt, llm.Message{Role: llm.RoleUser, Content: userText})
}
