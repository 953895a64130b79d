// Package model 定义了与数据库表对应的数据结构
package model

import (
	"encoding/json"
	"fmt"
)

// Sender 消息发送方
// 使用封闭的枚举类型而不是自由字符串，保证到 AI 接口角色的映射是穷尽的
type Sender string

// 发送方常量
const (
	SenderUser Sender = "user" // 用户发送的消息
	SenderBot  Sender = "bot"  // AI 助手的回复
)

// Valid 检查发送方取值是否合法
func (s Sender) Valid() bool {
	return s == SenderUser || s == SenderBot
}

// Message 对话中的一条消息
// 不是独立的数据库实体，而是 Conversation.Messages 字段中的数组元素
// 序列中的下标即时间顺序，不另存时间戳
type Message struct {
	Sender Sender `json:"sender"` // 发送方: user / bot
	Text   string `json:"text"`   // 消息正文
}

// DecodeMessages 将存储的 JSON 文本解码为消息序列
// 空白或未设置的字段视为空对话，不作为错误处理
// 参数:
//   - blob: 数据库中存储的 JSON 文本
//
// 返回:
//   - []Message: 按时间正序排列的消息
//   - error: JSON 结构损坏时返回错误（正常运行中不应出现）
func DecodeMessages(blob string) ([]Message, error) {
	if blob == "" {
		return []Message{}, nil
	}

	var messages []Message
	if err := json.Unmarshal([]byte(blob), &messages); err != nil {
		return nil, fmt.Errorf("corrupt message history: %w", err)
	}
	// JSON 字面量 null 也按空对话处理
	if messages == nil {
		messages = []Message{}
	}
	return messages, nil
}

// EncodeMessages 将消息序列编码为可存储的 JSON 文本
// 确定性编码，与 DecodeMessages 严格互逆
// 参数:
//   - messages: 消息序列，nil 按空序列处理
//
// 返回:
//   - string: JSON 文本，空序列为 "[]"
//   - error: 编码错误
func EncodeMessages(messages []Message) (string, error) {
	if messages == nil {
		messages = []Message{}
	}

	data, err := json.Marshal(messages)
	if err != nil {
		return "", fmt.Errorf("encode message history: %w", err)
	}
	return string(data), nil
}
