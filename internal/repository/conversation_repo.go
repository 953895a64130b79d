// Package repository 提供数据访问层的实现
package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"ai-chat-server/internal/model"
)

// ConversationRepository 对话数据访问层
// 负责对话相关的所有数据库操作
// 消息序列作为整体 JSON 文本随对话一起读写，没有逐条消息的操作
type ConversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository 创建 ConversationRepository 实例
func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// Create 创建新对话
// 参数:
//   - ctx: 上下文
//   - conversation: 对话对象，ID 和时间字段会被自动填充
//
// 返回:
//   - error: 数据库错误
func (r *ConversationRepository) Create(ctx context.Context, conversation *model.Conversation) error {
	return r.db.WithContext(ctx).Create(conversation).Error
}

// GetByID 根据 ID 获取对话
// 参数:
//   - ctx: 上下文
//   - id: 对话ID
//
// 返回:
//   - *model.Conversation: 对话对象，未找到返回 nil
//   - error: 数据库错误
func (r *ConversationRepository) GetByID(ctx context.Context, id int64) (*model.Conversation, error) {
	var conversation model.Conversation
	err := r.db.WithContext(ctx).First(&conversation, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conversation, nil
}

// GetByUserID 获取用户的所有对话
// 用于侧边栏历史列表，不需要消息正文的场景也会带出整个 blob，
// 这是单表 blob 模型的代价，量大时可改为 Select 指定列
// 参数:
//   - ctx: 上下文
//   - userID: 用户ID
//
// 返回:
//   - []model.Conversation: 对话列表，按 ID 倒序（最新创建的在前）
//   - error: 数据库错误
func (r *ConversationRepository) GetByUserID(ctx context.Context, userID int64) ([]model.Conversation, error) {
	var conversations []model.Conversation
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Find(&conversations).Error
	return conversations, err
}

// UpdateMessages 覆盖写入对话的消息序列
// 读取-修改-提交模式的提交步骤，最后写入者获胜
// 参数:
//   - ctx: 上下文
//   - id: 对话ID
//   - blob: 编码后的消息 JSON 文本
//
// 返回:
//   - error: 数据库错误
func (r *ConversationRepository) UpdateMessages(ctx context.Context, id int64, blob string) error {
	return r.db.WithContext(ctx).
		Model(&model.Conversation{}).
		Where("id = ?", id).
		Update("messages", blob).Error
}

// UpdateTitle 更新对话标题
// 参数:
//   - ctx: 上下文
//   - id: 对话ID
//   - title: 新标题
//
// 返回:
//   - error: 数据库错误
func (r *ConversationRepository) UpdateTitle(ctx context.Context, id int64, title string) error {
	return r.db.WithContext(ctx).
		Model(&model.Conversation{}).
		Where("id = ?", id).
		Update("title", title).Error
}

// Delete 删除对话
// 消息随 blob 一起消失，无需级联
// 参数:
//   - ctx: 上下文
//   - id: 对话ID
//
// 返回:
//   - error: 数据库错误
func (r *ConversationRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.Conversation{}, id).Error
}

// CountByUserID 统计用户的对话数量
// 参数:
//   - ctx: 上下文
//   - userID: 用户ID
//
// 返回:
//   - int64: 对话数量
//   - error: 数据库错误
func (r *ConversationRepository) CountByUserID(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Conversation{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
