// Package middleware 提供网关HTTP层的gin中间件
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// requestIDKey 请求ID在gin上下文中的存放键
	requestIDKey = "streamgate.request_id"
	// headerRequestID 请求ID的传递头
	headerRequestID = "X-Request-ID"
)

// RequestID 请求ID中间件
// 沿用上游携带的X-Request-ID，否则生成新ID；
// ID写回响应头，便于跨网关和引擎串联同一次调用的日志
type RequestID struct{}

// NewRequestID 创建请求ID中间件
func NewRequestID() *RequestID {
	return &RequestID{}
}

// Middleware 返回gin中间件
func (m *RequestID) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(headerRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(requestIDKey, requestID)
		c.Header(headerRequestID, requestID)

		c.Next()
	}
}

// GetRequestID 取当前请求的追踪ID
// 未经过RequestID中间件的请求返回空串
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
