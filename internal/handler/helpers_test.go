package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"ai-chat-server/internal/handler"
	"ai-chat-server/internal/llm"
	"ai-chat-server/internal/middleware"
	"ai-chat-server/internal/model"
	"ai-chat-server/internal/repository"
	"ai-chat-server/internal/service"
	"ai-chat-server/pkg/jwt"
)

// memoryBlacklist 进程内黑名单，同时充当写入端和查询端
// 让登出类测试不依赖 Redis
type memoryBlacklist struct {
	mu     sync.Mutex
	hashes map[string]struct{}
}

func newMemoryBlacklist() *memoryBlacklist {
	return &memoryBlacklist{hashes: make(map[string]struct{})}
}

func (b *memoryBlacklist) BlacklistToken(_ context.Context, tokenHash string, _ time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hashes[tokenHash] = struct{}{}
	return nil
}

func (b *memoryBlacklist) IsTokenBlacklisted(_ context.Context, tokenHash string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.hashes[tokenHash]
	return ok
}

// fakeClient 测试用的模型客户端
type fakeClient struct {
	reply string
	err   error
}

func (c *fakeClient) Complete(_ context.Context, _ []llm.Message) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	return c.reply, nil
}

// testEnv 一套完整接线的测试服务端
type testEnv struct {
	router *gin.Engine
	client *fakeClient
}

// newTestEnv 用 sqlite 和假模型客户端搭一个与生产接线一致的路由
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

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

	jwtService := jwt.NewJWTService("test-secret", time.Hour, 24*time.Hour)
	blacklist := newMemoryBlacklist()
	client := &fakeClient{reply: "fake reply"}

	userRepo := repository.NewUserRepository(db)
	conversationRepo := repository.NewConversationRepository(db)

	authService := service.NewAuthService(userRepo, blacklist, jwtService)
	userService := service.NewUserService(userRepo, conversationRepo)
	conversationService := service.NewConversationService(conversationRepo)
	chatService := service.NewChatService(conversationService, client)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	conversationHandler := handler.NewConversationHandler(conversationService)
	chatHandler := handler.NewChatHandler(chatService)

	router := gin.New()
	api := router.Group("/api")
	api.POST("/register", authHandler.Register)
	api.POST("/login", authHandler.Login)
	api.POST("/refresh", authHandler.RefreshToken)
	api.GET("/check_session", middleware.OptionalAuthMiddleware(jwtService, blacklist), authHandler.CheckSession)

	authed := api.Group("")
	authed.Use(middleware.AuthMiddleware(jwtService, blacklist))
	{
		authed.POST("/logout", authHandler.Logout)
		authed.GET("/users/me", userHandler.GetProfile)
		authed.PUT("/users/me/password", userHandler.ChangePassword)
		authed.DELETE("/users/me", userHandler.DeleteAccount)
		authed.POST("/chat", chatHandler.Chat)
		authed.GET("/history", conversationHandler.GetHistory)
		authed.GET("/conversation/:id/messages", conversationHandler.GetMessages)
		authed.POST("/conversation/:id/rename", conversationHandler.Rename)
		authed.DELETE("/conversation/:id/delete", conversationHandler.Delete)
	}

	return &testEnv{router: router, client: client}
}

// do 发送一个 JSON 请求，token 非空时附带 Bearer 认证头
func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// register 注册一个用户并返回其 Access Token
func (e *testEnv) register(t *testing.T, username, password string) string {
	t.Helper()

	w := e.do(t, http.MethodPost, "/api/register", "", gin.H{
		"username": username,
		"password": password,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d, body %s", username, w.Code, w.Body.String())
	}

	var resp struct {
		Data struct {
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	decodeBody(t, w, &resp)
	if resp.Data.AccessToken == "" {
		t.Fatal("register must return an access token")
	}
	return resp.Data.AccessToken
}

// chat 发送一条聊天消息并返回对话 ID
func (e *testEnv) chat(t *testing.T, token, message string, conversationID *int64) int64 {
	t.Helper()

	body := gin.H{"message": message}
	if conversationID != nil {
		body["conversation_id"] = *conversationID
	}
	w := e.do(t, http.MethodPost, "/api/chat", token, body)
	if w.Code != http.StatusOK {
		t.Fatalf("chat: status %d, body %s", w.Code, w.Body.String())
	}

	var resp struct {
		ConversationID int64 `json:"conversation_id"`
	}
	decodeBody(t, w, &resp)
	return resp.ConversationID
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %s: %v", w.Body.String(), err)
	}
}

func messagesPath(conversationID int64, query string) string {
	path := fmt.Sprintf("/api/conversation/%d/messages", conversationID)
	if query != "" {
		path += "?" + query
	}
	return path
}

func messagesRenamePath(conversationID int64) string {
	return fmt.Sprintf("/api/conversation/%d/rename", conversationID)
}

func messagesDeletePath(conversationID int64) string {
	return fmt.Sprintf("/api/conversation/%d/delete", conversationID)
}
