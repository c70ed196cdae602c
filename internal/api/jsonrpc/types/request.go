// Package types provides JSON-RPC request type definitions.
package types

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Version JSON-RPC协议版本
const Version = "2.0"

// Request JSON-RPC 2.0 请求
// ID 在解析阶段补全：调用方未提供时由网关生成，保证分发前非空
type Request struct {
	JSONRPC string                 `json:"jsonrpc"` // 必须是 "2.0"
	Method  string                 `json:"method"`
	Params  map[string]interface{} `json:"params,omitempty"`
	ID      string                 `json:"id"`
}

// NewRequest 创建请求（ID自动生成）
func NewRequest(method string, params map[string]interface{}) *Request {
	if params == nil {
		params = map[string]interface{}{}
	}
	return &Request{
		JSONRPC: Version,
		Method:  method,
		Params:  params,
		ID:      uuid.New().String(),
	}
}

// ParseRequest 解析并校验请求信封
// 校验顺序与错误码约定：
//  1. JSON语法错误 → CodeParseError
//  2. 信封结构非法（顶层非对象、版本、method、params的类型错误）→ CodeInvalidRequest
//
// 解析成功后保证：ID非空、Params为对象类型
func ParseRequest(body []byte) (*Request, *RPCError) {
	// 先按字段拆开，逐字段校验类型：
	// 只有语法层面解不开的载荷才算ParseError，
	// 合法JSON但形状不对（数组、标量、字段类型错）一律InvalidRequest
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return nil, ErrParseError(err.Error())
		}
		return nil, ErrInvalidRequest("request must be a JSON object")
	}

	var version string
	if raw, ok := fields["jsonrpc"]; !ok || json.Unmarshal(raw, &version) != nil || version != Version {
		return nil, ErrInvalidRequest(fmt.Sprintf("jsonrpc field must be %q", Version))
	}

	var method string
	if raw, ok := fields["method"]; !ok || json.Unmarshal(raw, &method) != nil || method == "" {
		return nil, ErrInvalidRequest("missing or invalid 'method' field")
	}

	// params 必须是对象，不接受数组或标量
	params := map[string]interface{}{}
	if raw, ok := fields["params"]; ok && string(raw) != "null" {
		if err := json.Unmarshal(raw, &params); err != nil {
			return nil, ErrInvalidRequest("'params' must be a JSON object")
		}
	}

	return &Request{
		JSONRPC: Version,
		Method:  method,
		Params:  params,
		ID:      normalizeID(fields["id"]),
	}, nil
}

// normalizeID 规范化请求ID
// 未提供或为null时生成UUID；非字符串标量统一转为字符串表示
func normalizeID(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return uuid.New().String()
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "" {
			return uuid.New().String()
		}
		return s
	}

	var v interface{}
	if err := json.Unmarshal(raw, &v); err == nil {
		return fmt.Sprintf("%v", v)
	}
	return uuid.New().String()
}
