package config_test

import (
	"testing"
	"time"

	"ai-chat-server/internal/config"
)

// 没有配置文件时全部取默认值
func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server.port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.AI.Model != "llama-3.1-8b-instant" {
		t.Errorf("ai.model = %q", cfg.AI.Model)
	}
	if cfg.AI.Timeout != 30*time.Second {
		t.Errorf("ai.timeout = %v, want 30s", cfg.AI.Timeout)
	}
	if cfg.JWT.AccessExpire != 24*time.Hour {
		t.Errorf("jwt.access_expire = %v, want 24h", cfg.JWT.AccessExpire)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "env-key")
	t.Setenv("MYSQL_HOST", "db.internal")
	t.Setenv("AI_MODEL", "llama-3.3-70b-versatile")

	cfg, err := config.Load(t.TempDir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.AI.APIKey != "env-key" {
		t.Errorf("ai.api_key = %q", cfg.AI.APIKey)
	}
	if cfg.MySQL.Host != "db.internal" {
		t.Errorf("mysql.host = %q", cfg.MySQL.Host)
	}
	if cfg.AI.Model != "llama-3.3-70b-versatile" {
		t.Errorf("ai.model = %q", cfg.AI.Model)
	}
}
