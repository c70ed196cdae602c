// Package types provides type definitions for JSON-RPC API responses.
package types

import "encoding/json"

// Response JSON-RPC 2.0 响应
// 序列化结果中 Result 和 Error 二者有且仅有其一
type Response struct {
	JSONRPC string         `json:"jsonrpc"`
	ID      string         `json:"id"`
	Result  interface{}    `json:"result,omitempty"`
	Error   *ErrorResponse `json:"error,omitempty"`
}

// MarshalJSON 保证信封中result/error恰好出现一个
// 成功响应即使result为nil也要写出"result":null，不能两个成员都缺席
func (r *Response) MarshalJSON() ([]byte, error) {
	if r.Error != nil {
		return json.Marshal(struct {
			JSONRPC string         `json:"jsonrpc"`
			ID      string         `json:"id"`
			Error   *ErrorResponse `json:"error"`
		}{r.JSONRPC, r.ID, r.Error})
	}
	return json.Marshal(struct {
		JSONRPC string      `json:"jsonrpc"`
		ID      string      `json:"id"`
		Result  interface{} `json:"result"`
	}{r.JSONRPC, r.ID, r.Result})
}

// ErrorResponse JSON-RPC 2.0 错误响应
type ErrorResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// NewSuccessResponse 创建成功响应
func NewSuccessResponse(id string, result interface{}) *Response {
	return &Response{
		JSONRPC: Version,
		ID:      id,
		Result:  result,
	}
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(id string, rpcErr *RPCError) *Response {
	return &Response{
		JSONRPC: Version,
		ID:      id,
		Error: &ErrorResponse{
			Code:    rpcErr.Code,
			Message: rpcErr.Message,
			Data:    rpcErr.Data,
		},
	}
}
