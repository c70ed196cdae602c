// Package methods 提供网关内置的RPC方法处理器
// 所有处理器通过显式Register调用挂到注册表上，不依赖包级副作用
package methods

import (
	"context"

	"go.uber.org/zap"

	"github.com/weisyn/streamgate/internal/api/jsonrpc"
)

// CoreMethods 基础一元方法
type CoreMethods struct {
	logger *zap.Logger
}

// NewCoreMethods 创建基础方法处理器
func NewCoreMethods(logger *zap.Logger) *CoreMethods {
	return &CoreMethods{logger: logger}
}

// Register 注册基础方法
func (m *CoreMethods) Register(server *jsonrpc.Server) {
	server.Registry().Register("echo", m.Echo)
	server.Registry().Register("add", m.Add)
	server.Registry().Register("rpc.methods", func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		return map[string]interface{}{"methods": server.Registry().Methods()}, nil
	})
}

// Echo 原样返回params
// Method: echo
func (m *CoreMethods) Echo(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	return params, nil
}

// Add 两数相加
// Method: add
// Params: {a: number, b: number}（缺省按0处理）
func (m *CoreMethods) Add(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	return map[string]interface{}{
		"result": toNumber(params["a"]) + toNumber(params["b"]),
	}, nil
}

// toNumber 数值字段的宽松转换
// JSON反序列化后的数值统一是float64，其他类型按0处理
func toNumber(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}
