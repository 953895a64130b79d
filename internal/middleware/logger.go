// Package middleware 提供 HTTP 请求的中间件
package middleware

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader 请求 ID 响应头
const RequestIDHeader = "X-Request-ID"

// LoggerMiddleware 创建请求日志中间件
// 为每个请求生成一个 ID，并记录方法、路径、状态码和耗时
// 返回:
//   - gin.HandlerFunc: Gin 中间件函数
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		// 生成请求 ID，写回响应头便于排查问题
		requestID := uuid.NewString()
		c.Set("request_id", requestID)
		c.Header(RequestIDHeader, requestID)

		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		status := c.Writer.Status()
		line := fmt.Sprintf("%3d | %-12s | %-15s | %-7s %s | %s",
			status,
			time.Since(start).Truncate(time.Microsecond),
			c.ClientIP(),
			c.Request.Method,
			path,
			requestID,
		)
		if errs := c.Errors.ByType(gin.ErrorTypePrivate).String(); errs != "" {
			line += " | " + errs
		}

		// 根据状态码选择日志级别
		switch {
		case status >= http.StatusInternalServerError:
			log.Printf("[ERROR] %s", line)
		case status >= http.StatusBadRequest:
			log.Printf("[WARN] %s", line)
		default:
			log.Printf("[INFO] %s", line)
		}
	}
}

// RecoveryMiddleware 创建 panic 恢复中间件
// 捕获处理器中的 panic，防止程序崩溃
// 返回:
//   - gin.HandlerFunc: Gin 中间件函数
func RecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("[PANIC] request_id=%s %v", c.GetString("request_id"), err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"error":   "internal server error",
				})
			}
		}()

		c.Next()
	}
}
