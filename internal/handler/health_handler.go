// Package handler 提供 HTTP 请求处理器
package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Pinger 健康检查探测的依赖
// 由 cache.RedisCache 实现
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler 健康检查处理器
type HealthHandler struct {
	cache Pinger
}

// NewHealthHandler 创建 HealthHandler 实例
func NewHealthHandler(cache Pinger) *HealthHandler {
	return &HealthHandler{cache: cache}
}

// Check 健康检查
// GET /health
// 数据库连接在启动时已校验，这里只探测 Redis 依赖
func (h *HealthHandler) Check(c *gin.Context) {
	if err := h.cache.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
