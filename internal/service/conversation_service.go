// Package service 提供业务逻辑层的实现
package service

import (
	"context"
	"errors"

	"ai-chat-server/internal/model"
	"ai-chat-server/internal/repository"
	"ai-chat-server/pkg/pagination"
	"ai-chat-server/pkg/util"
)

// 对话相关业务错误
var (
	// ErrConversationNotFound 对话不存在或属于其他用户
	// 刻意不区分这两种情况，避免泄露资源是否存在
	ErrConversationNotFound = errors.New("conversation not found or unauthorized")
	// ErrTitleRequired 重命名时标题不能为空
	ErrTitleRequired = errors.New("new title required")
)

// DefaultTitle 没有任何用户消息时的标题兜底值
const DefaultTitle = "New Chat"

// MaxTitleLength 标题列的字符数上限，超出的部分在 rune 边界截掉
const MaxTitleLength = 200

// ConversationService 对话服务
// 所有操作都要求带上调用者身份并校验所有权
// 对话状态不做任何跨请求缓存，每次读取都重新解码存储的 blob
type ConversationService struct {
	conversationRepo *repository.ConversationRepository
}

// NewConversationService 创建 ConversationService 实例
func NewConversationService(conversationRepo *repository.ConversationRepository) *ConversationService {
	return &ConversationService{conversationRepo: conversationRepo}
}

// TitleFor 计算对话的展示标题
// 优先级: 用户设置的标题 > 首条用户消息的正文 > "New Chat"
// 纯函数，与持久化解耦，便于单独测试
// 参数:
//   - title: 用户设置的标题，可能为 nil
//   - messages: 对话的消息序列
//
// 返回:
//   - string: 展示标题
func TitleFor(title *string, messages []model.Message) string {
	if title != nil && *title != "" {
		return *title
	}
	for _, msg := range messages {
		if msg.Sender == model.SenderUser {
			return msg.Text
		}
	}
	return DefaultTitle
}

// ConversationSummary 历史列表中的一项
// 只含标识和标题，不带消息正文
type ConversationSummary struct {
	ID    int64  `json:"id"`    // 对话 ID
	Title string `json:"title"` // 展示标题（可能是推导出来的）
}

// List 获取用户的全部对话，按 ID 倒序（最新创建的在前）
// 参数:
//   - ctx: 上下文
//   - userID: 调用者ID
//
// 返回:
//   - []ConversationSummary: 对话摘要列表
//   - error: 数据库错误或 blob 损坏
func (s *ConversationService) List(ctx context.Context, userID int64) ([]ConversationSummary, error) {
	conversations, err := s.conversationRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]ConversationSummary, 0, len(conversations))
	for _, conv := range conversations {
		messages, err := model.DecodeMessages(conv.Messages)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, ConversationSummary{
			ID:    conv.ID,
			Title: TitleFor(conv.Title, messages),
		})
	}
	return summaries, nil
}

// History 获取对话的完整消息序列（带所有权校验）
// 参数:
//   - ctx: 上下文
//   - conversationID: 对话ID
//   - userID: 调用者ID
//
// 返回:
//   - []model.Message: 按时间正序排列的消息
//   - error: ErrConversationNotFound 或 blob 损坏
func (s *ConversationService) History(ctx context.Context, conversationID, userID int64) ([]model.Message, error) {
	conv, err := s.getOwned(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}
	return model.DecodeMessages(conv.Messages)
}

// MessagePage 一页消息及其分页元信息
type MessagePage struct {
	Messages   []model.Message `json:"messages"`   // 页内消息，时间正序
	Pagination pagination.Meta `json:"pagination"` // 分页元信息
}

// GetPage 获取对话消息的一个分页窗口
// 第 1 页是最新的一段，页内仍按时间正序
// 参数:
//   - ctx: 上下文
//   - conversationID: 对话ID
//   - userID: 调用者ID
//   - page: 页码，>= 1
//   - limit: 每页数量，>= 1
//
// 返回:
//   - *MessagePage: 页数据，页码超出范围时 Messages 为空
//   - error: ErrConversationNotFound 或 blob 损坏
func (s *ConversationService) GetPage(ctx context.Context, conversationID, userID int64, page, limit int) (*MessagePage, error) {
	messages, err := s.History(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}

	start, end := pagination.Window(len(messages), page, limit)
	return &MessagePage{
		Messages:   messages[start:end],
		Pagination: pagination.MetaFor(len(messages), page, limit),
	}, nil
}

// Rename 重命名对话
// 新标题无条件覆盖旧值，不要求唯一，超长时截断到列上限
// 参数:
//   - ctx: 上下文
//   - conversationID: 对话ID
//   - userID: 调用者ID
//   - newTitle: 新标题，不能为空
//
// 返回:
//   - error: ErrTitleRequired / ErrConversationNotFound
func (s *ConversationService) Rename(ctx context.Context, conversationID, userID int64, newTitle string) error {
	if newTitle == "" {
		return ErrTitleRequired
	}

	if _, err := s.getOwned(ctx, conversationID, userID); err != nil {
		return err
	}
	return s.conversationRepo.UpdateTitle(ctx, conversationID, util.TruncateString(newTitle, MaxTitleLength))
}

// Delete 删除对话，不可恢复
// 参数:
//   - ctx: 上下文
//   - conversationID: 对话ID
//   - userID: 调用者ID
//
// 返回:
//   - error: ErrConversationNotFound 或数据库错误
func (s *ConversationService) Delete(ctx context.Context, conversationID, userID int64) error {
	if _, err := s.getOwned(ctx, conversationID, userID); err != nil {
		return err
	}
	return s.conversationRepo.Delete(ctx, conversationID)
}

// AppendTurn 追加一轮对话（一条用户消息和一条 AI 回复）
// conversationID 为 nil 时新建对话，消息随对话一起单条 INSERT 落库，
// 所以写入失败时不会留下空对话
// 已有对话采用读取-修改-提交：同一对话的并发追加是最后写入者获胜，
// 不做行级锁或版本校验（接受的限制，blob 也不限制长度增长）
// 参数:
//   - ctx: 上下文
//   - conversationID: 对话ID，nil 表示新建
//   - userID: 调用者ID
//   - userText: 用户消息正文
//   - botText: AI 回复正文
//
// 返回:
//   - int64: 对话ID（可能是新分配的）
//   - error: ErrConversationNotFound、blob 损坏或数据库错误
func (s *ConversationService) AppendTurn(ctx context.Context, conversationID *int64, userID int64, userText, botText string) (int64, error) {
	// 顺序固定: 先 user 后 bot
	turn := []model.Message{
		{Sender: model.SenderUser, Text: userText},
		{Sender: model.SenderBot, Text: botText},
	}

	// 新对话: 编码后连消息一起写入，单条语句即原子
	if conversationID == nil {
		blob, err := model.EncodeMessages(turn)
		if err != nil {
			return 0, err
		}
		conv := &model.Conversation{UserID: userID, Messages: blob}
		if err := s.conversationRepo.Create(ctx, conv); err != nil {
			return 0, err
		}
		return conv.ID, nil
	}

	// 已有对话: 解码现有序列，追加这一轮，编码并提交
	conv, err := s.getOwned(ctx, *conversationID, userID)
	if err != nil {
		return 0, err
	}
	messages, err := model.DecodeMessages(conv.Messages)
	if err != nil {
		return 0, err
	}
	blob, err := model.EncodeMessages(append(messages, turn...))
	if err != nil {
		return 0, err
	}
	if err := s.conversationRepo.UpdateMessages(ctx, conv.ID, blob); err != nil {
		return 0, err
	}
	return conv.ID, nil
}

// getOwned 加载对话并校验所有权
// 不存在与不属于调用者统一返回 ErrConversationNotFound
func (s *ConversationService) getOwned(ctx context.Context, conversationID, userID int64) (*model.Conversation, error) {
	conv, err := s.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conv == nil || conv.UserID != userID {
		return nil, ErrConversationNotFound
	}
	return conv, nil
}
