package llm_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ai-chat-server/internal/config"
	"ai-chat-server/internal/llm"
)

func newTestConfig(endpoint string) config.AIConfig {
	return config.AIConfig{
		APIKey:      "test-key",
		Endpoint:    endpoint,
		Model:       "test-model",
		Temperature: 0.7,
		MaxTokens:   256,
		Timeout:     5 * time.Second,
	}
}

func TestCompleteSuccess(t *testing.T) {
	var gotAuth string
	var gotBody struct {
		Model    string        `json:"model"`
		Messages []llm.Message `json:"messages"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"hello there"}}]}`))
	}))
	defer server.Close()

	client := llm.NewGroqClient(newTestConfig(server.URL))
	reply, err := client.Complete(context.Background(), []llm.Message{
		{Role: llm.RoleUser, Content: "hi"},
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if reply != "hello there" {
		t.Fatalf("reply = %q", reply)
	}
	if gotAuth != "Bearer test-key" {
		t.Fatalf("authorization header = %q", gotAuth)
	}
	if gotBody.Model != "test-model" || len(gotBody.Messages) != 1 || gotBody.Messages[0].Content != "hi" {
		t.Fatalf("unexpected request body: %+v", gotBody)
	}
}

func TestCompleteMissingAPIKey(t *testing.T) {
	cfg := newTestConfig("http://unused.invalid")
	cfg.APIKey = ""

	client := llm.NewGroqClient(cfg)
	if _, err := client.Complete(context.Background(), nil); err == nil {
		t.Fatal("expected error without API key")
	}
}

func TestCompleteUpstreamStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"rate limited","type":"rate_limit"}}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := llm.NewGroqClient(newTestConfig(server.URL))
	_, err := client.Complete(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "hi"}})
	if err == nil {
		t.Fatal("expected error on non-200 status")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Fatalf("error should carry the status code: %v", err)
	}
}

func TestCompleteAPIErrorObject(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":{"message":"model not found","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	client := llm.NewGroqClient(newTestConfig(server.URL))
	_, err := client.Complete(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "hi"}})
	if err == nil || !strings.Contains(err.Error(), "invalid_request_error") {
		t.Fatalf("expected API error, got %v", err)
	}
}

func TestCompleteEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	client := llm.NewGroqClient(newTestConfig(server.URL))
	if _, err := client.Complete(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "hi"}}); err == nil {
		t.Fatal("expected error on empty choices")
	}
}
