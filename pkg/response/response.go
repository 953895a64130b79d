// Package response 提供统一的 HTTP 响应格式
// 所有 API 都使用相同的响应结构，便于前端处理
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Result 操作类接口的统一响应结构
// 成功: {"success":true,"message":"..."}，可附带 data
// 失败: {"success":false,"error":"..."}
type Result struct {
	Success bool        `json:"success"`           // 操作是否成功
	Message string      `json:"message,omitempty"` // 提示信息
	Error   string      `json:"error,omitempty"`   // 错误信息
	Data    interface{} `json:"data,omitempty"`    // 附加数据，可选
}

// OK 返回 200 和原样的数据负载
// 用于 /history、/chat 这类前端直接消费数据结构的接口
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Success 返回成功响应
// 参数:
//   - c: Gin 上下文
//   - message: 提示信息
func Success(c *gin.Context, message string) {
	c.JSON(http.StatusOK, Result{
		Success: true,
		Message: message,
	})
}

// SuccessWithData 返回成功响应（带附加数据）
func SuccessWithData(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Result{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Created 返回 201 创建成功响应
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Result{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Fail 返回失败响应（通用）
// 参数:
//   - c: Gin 上下文
//   - httpCode: HTTP 状态码
//   - message: 错误信息
func Fail(c *gin.Context, httpCode int, message string) {
	c.JSON(httpCode, Result{
		Success: false,
		Error:   message,
	})
}

// BadRequest 返回 400 错误（请求参数错误）
func BadRequest(c *gin.Context, message string) {
	Fail(c, http.StatusBadRequest, message)
}

// Unauthorized 返回 401 错误（未授权）
func Unauthorized(c *gin.Context, message string) {
	Fail(c, http.StatusUnauthorized, message)
}

// NotFound 返回 404 错误（资源不存在或无权访问）
func NotFound(c *gin.Context, message string) {
	Fail(c, http.StatusNotFound, message)
}

// Conflict 返回 409 错误（资源冲突，如用户名已存在）
func Conflict(c *gin.Context, message string) {
	Fail(c, http.StatusConflict, message)
}

// InternalError 返回 500 错误（服务器内部错误）
func InternalError(c *gin.Context, message string) {
	Fail(c, http.StatusInternalServerError, message)
}

// ServiceUnavailable 返回 503 错误（外部 AI 服务不可用）
func ServiceUnavailable(c *gin.Context, message string) {
	Fail(c, http.StatusServiceUnavailable, message)
}
