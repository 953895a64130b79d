// Package cache 提供 Redis 缓存操作的封装
// 目前只承载 JWT 黑名单：登出后的 Token 在到期前被主动拒绝
// 对话内容不做任何缓存，每次请求都从数据库重新读取
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"ai-chat-server/internal/config"
)

// RedisCache 封装 Redis 客户端，提供业务相关的缓存操作
type RedisCache struct {
	client *redis.Client // Redis 客户端实例
}

// NewRedisCache 创建 RedisCache 实例
// 参数:
//   - cfg: 应用配置（包含 Redis 连接信息）
//
// 返回:
//   - *RedisCache: 缓存实例
//   - error: 连接错误
func NewRedisCache(cfg *config.Config) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Username: cfg.Redis.Username, // 阿里云 Redis 需要用户名
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisCache{client: client}, nil
}

// Close 关闭 Redis 连接
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Ping 检查 Redis 连接是否正常
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// ==================== JWT 黑名单 ====================
// 登出时将 Token 哈希写入黑名单，TTL 设为 Token 的剩余有效期
// 之后认证中间件会拒绝命中黑名单的 Token

// BlacklistToken 将 Token 加入黑名单
// 参数:
//   - ctx: 上下文
//   - tokenHash: Token 的 SHA256 哈希（不存储原始 Token）
//   - expireAt: Token 的过期时间
//
// 返回:
//   - error: Redis 操作错误
func (c *RedisCache) BlacklistToken(ctx context.Context, tokenHash string, expireAt time.Time) error {
	ttl := time.Until(expireAt)
	if ttl <= 0 {
		// Token 已过期，无需加入黑名单
		return nil
	}
	return c.client.Set(ctx, blacklistKey(tokenHash), 1, ttl).Err()
}

// IsTokenBlacklisted 检查 Token 是否在黑名单中
// Redis 不可用时按未拉黑处理，认证仍以 JWT 签名为准
// 参数:
//   - ctx: 上下文
//   - tokenHash: Token 的 SHA256 哈希
//
// 返回:
//   - bool: 是否已被拉黑
func (c *RedisCache) IsTokenBlacklisted(ctx context.Context, tokenHash string) bool {
	n, err := c.client.Exists(ctx, blacklistKey(tokenHash)).Result()
	if err != nil {
		return false
	}
	return n > 0
}

// blacklistKey 生成黑名单 Key
func blacklistKey(tokenHash string) string {
	return "jwt:blacklist:" + tokenHash
}
