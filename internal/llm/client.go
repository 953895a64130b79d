// Package llm 封装对外部大模型服务的调用
// 通过 Client 接口注入，业务代码不持有全局的供应商句柄，测试时可替换为假实现
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"ai-chat-server/internal/config"
)

// 对话角色常量（OpenAI 兼容接口的取值）
const (
	RoleUser      = "user"      // 用户消息
	RoleAssistant = "assistant" // 模型回复
)

// Message 发送给模型的一条消息
type Message struct {
	Role    string `json:"role"`    // user / assistant
	Content string `json:"content"` // 消息内容
}

// Client 大模型补全客户端
// 入参是按时间正序排列的完整消息列表，返回单条文本补全
type Client interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// GroqClient 调用 Groq 的 OpenAI 兼容 Chat Completions 接口
type GroqClient struct {
	cfg    config.AIConfig
	client *http.Client
}

// NewGroqClient 创建 GroqClient 实例
// 模型、温度、max_tokens 和超时都取自配置，启动后不再变化
// 参数:
//   - cfg: AI 服务配置
//
// 返回:
//   - *GroqClient: 客户端实例
func NewGroqClient(cfg config.AIConfig) *GroqClient {
	return &GroqClient{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout, // 设置超时，超时与供应商错误同等对待
		},
	}
}

// chatRequest Chat Completions 请求结构
type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

// chatResponse Chat Completions 响应结构
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Complete 发送补全请求并返回模型回复的文本
// 参数:
//   - ctx: 上下文，用于取消和超时
//   - messages: 完整的对话消息（含本次用户输入），顺序即存储顺序
//
// 返回:
//   - string: 模型回复
//   - error: 传输或供应商错误
func (c *GroqClient) Complete(ctx context.Context, messages []Message) (string, error) {
	if c.cfg.APIKey == "" {
		return "", errors.New("AI service not configured (missing API Key)")
	}

	// 1. 构造请求 Body
	reqBody := chatRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	// 2. 发送 HTTP 请求
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to call AI service: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("AI service returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	// 3. 解析响应
	var chatResp chatResponse
	if err := json.Unmarshal(bodyBytes, &chatResp); err != nil {
		return "", fmt.Errorf("failed to parse AI response: %w", err)
	}

	if chatResp.Error != nil {
		return "", fmt.Errorf("AI service error: %s - %s", chatResp.Error.Type, chatResp.Error.Message)
	}

	if len(chatResp.Choices) == 0 {
		return "", errors.New("AI returned no content")
	}

	return chatResp.Choices[0].Message.Content, nil
}
