package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"ai-chat-server/internal/llm"
	"ai-chat-server/internal/model"
	"ai-chat-server/internal/repository"
	"ai-chat-server/internal/service"
	"ai-chat-server/pkg/jwt"
)

// newTestDB 为单个测试创建一个独立的 sqlite 数据库
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&model.User{}, &model.Conversation{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestJWT() *jwt.JWTService {
	return jwt.NewJWTService("test-secret", time.Hour, 24*time.Hour)
}

// noopBlacklist 测试用的空黑名单实现
type noopBlacklist struct{}

func (noopBlacklist) BlacklistToken(_ context.Context, _ string, _ time.Time) error {
	return nil
}

func newAuthService(t *testing.T, db *gorm.DB) *service.AuthService {
	t.Helper()
	return service.NewAuthService(repository.NewUserRepository(db), noopBlacklist{}, newTestJWT())
}

func newConversationService(db *gorm.DB) *service.ConversationService {
	return service.NewConversationService(repository.NewConversationRepository(db))
}

// fakeClient 测试用的模型客户端
// 按顺序返回预置的回复,replies 用尽后重复最后一条；err 非空时始终失败
type fakeClient struct {
	replies []string
	err     error
	calls   int
	// 记录最近一次收到的消息列表，供断言上下文
	lastPrompt []llm.Message
}

func (c *fakeClient) Complete(_ context.Context, messages []llm.Message) (string, error) {
	c.calls++
	c.lastPrompt = messages
	if c.err != nil {
		return "", c.err
	}
	if len(c.replies) == 0 {
		return "", errors.New("no reply configured")
	}
	i := c.calls - 1
	if i >= len(c.replies) {
		i = len(c.replies) - 1
	}
	return c.replies[i], nil
}

// mustRegister 注册一个用户并返回其 ID
func mustRegister(t *testing.T, auth *service.AuthService, username, password string) int64 {
	t.Helper()
	resp, err := auth.Register(context.Background(), &service.RegisterRequest{
		Username: username,
		Password: password,
	})
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	return resp.UserID
}
