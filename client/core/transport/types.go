// Package transport 提供网关的JSON-RPC 2.0客户端
// 一元调用、流式消费和流取消共用同一个HTTP连接池
package transport

import (
	"encoding/json"
	"fmt"
	"time"
)

// 客户端默认值
const (
	// DefaultTimeout 单次请求超时
	DefaultTimeout = 30 * time.Second
	// DefaultRetryAttempts 连接级重试次数上限
	DefaultRetryAttempts = 3
	// DefaultRetryBackoff 重试退避基准（指数递增）
	DefaultRetryBackoff = 500 * time.Millisecond
	// maxRetryBackoff 退避上限
	maxRetryBackoff = 10 * time.Second
)

// Config 客户端配置
type Config struct {
	Endpoint      string        `json:"endpoint"`       // 网关RPC端点，如 http://127.0.0.1:8100/rpc
	Timeout       time.Duration `json:"timeout"`        // 请求超时
	RetryAttempts int           `json:"retry_attempts"` // 重试次数
	RetryBackoff  time.Duration `json:"retry_backoff"`  // 退避基准
}

// applyDefaults 填充缺省配置
func (c *Config) applyDefaults() {
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.RetryAttempts == 0 {
		c.RetryAttempts = DefaultRetryAttempts
	}
	if c.RetryBackoff == 0 {
		c.RetryBackoff = DefaultRetryBackoff
	}
}

// rpcRequest JSON-RPC 2.0 请求
type rpcRequest struct {
	JSONRPC string                 `json:"jsonrpc"`
	Method  string                 `json:"method"`
	Params  map[string]interface{} `json:"params"`
	ID      string                 `json:"id"`
}

// rpcResponse JSON-RPC 2.0 响应
type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      string          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcErrorBody   `json:"error,omitempty"`
}

// rpcErrorBody 响应中的错误对象
type rpcErrorBody struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// RPCError 网关返回的结构化RPC错误
type RPCError struct {
	Code    int
	Message string
	Data    json.RawMessage
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("jsonrpc error %d: %s", e.Code, e.Message)
}

// Event 流式事件（解码后的data帧）
type Event map[string]interface{}

// Type 返回事件的type字段（不存在时返回空串）
func (e Event) Type() string {
	if t, ok := e["type"].(string); ok {
		return t
	}
	return ""
}

// StreamID 返回事件携带的stream_id字段（常见于stream_start帧）
func (e Event) StreamID() string {
	if id, ok := e["stream_id"].(string); ok {
		return id
	}
	return ""
}

// CancelResult 流取消调用的结果
type CancelResult struct {
	Cancelled bool   `json:"cancelled"`
	StreamID  string `json:"stream_id"`
	Err       string `json:"error,omitempty"`
}
