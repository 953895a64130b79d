// Package model 定义了与数据库表对应的数据结构
package model

import (
	"time"
)

// Conversation 对话模型
// 对应数据库表 conversations
// 一条记录保存一个用户与 AI 的完整对话
// 消息不单独建表，而是整体序列化为一个 JSON 文本字段（Messages）
type Conversation struct {
	// ID 对话唯一标识，自增主键
	ID int64 `gorm:"primaryKey" json:"id"`

	// UserID 所属用户ID，外键关联 users.id
	// 所有权在创建后不可变更
	UserID int64 `gorm:"index;not null" json:"user_id"`

	// Title 用户重命名后的自定义标题
	// 使用指针类型表示可以为 NULL，未设置时从首条用户消息推导
	Title *string `gorm:"size:200" json:"title,omitempty"`

	// Messages 消息序列的 JSON 文本
	// 形如 [{"sender":"user","text":"..."},{"sender":"bot","text":"..."}]
	// 永远是合法的 JSON 数组，空对话为 "[]"
	Messages string `gorm:"type:text;not null;default:'[]'" json:"-"`

	// CreatedAt 创建时间，由 GORM 自动填充
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	// User 所属用户（多对一关系）
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (Conversation) TableName() string {
	return "conversations"
}
