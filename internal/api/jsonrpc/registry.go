// Package jsonrpc 实现网关的JSON-RPC 2.0分发层
// 包含显式的方法注册表和挂载在HTTP端点上的分发服务器
package jsonrpc

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/weisyn/streamgate/internal/api/jsonrpc/types"
)

// HandlerFunc 一元RPC方法处理器
type HandlerFunc func(ctx context.Context, params map[string]interface{}) (interface{}, error)

// Registry 方法名 → 处理器的映射
// 显式构造、显式注册，不使用自注册的全局表
type Registry struct {
	logger *zap.Logger

	mu       sync.RWMutex
	handlers map[string]HandlerFunc
	order    []string // 注册顺序，供Methods()使用
}

// NewRegistry 创建方法注册表
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		logger:   logger,
		handlers: make(map[string]HandlerFunc),
	}
}

// Register 注册方法处理器
// 重复注册同名方法会覆盖旧条目：记一条警告，不算错误
func (r *Registry) Register(method string, handler HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[method]; exists {
		r.logger.Warn("overwriting handler", zap.String("method", method))
	} else {
		r.order = append(r.order, method)
	}
	r.handlers[method] = handler
	r.logger.Debug("method registered", zap.String("method", method))
}

// Dispatch 调用method对应的处理器并返回其结果
// 方法未注册返回CodeMethodNotFound错误；处理器自身的失败原样向上传播
func (r *Registry) Dispatch(ctx context.Context, method string, params map[string]interface{}) (interface{}, error) {
	r.mu.RLock()
	handler, ok := r.handlers[method]
	r.mu.RUnlock()

	if !ok {
		return nil, types.ErrMethodNotFound(method)
	}
	return handler(ctx, params)
}

// IsRegistered 方法是否已注册
func (r *Registry) IsRegistered(method string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.handlers[method]
	return ok
}

// Methods 返回已注册的方法名（按注册顺序）
func (r *Registry) Methods() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	methods := make([]string, len(r.order))
	copy(methods, r.order)
	return methods
}
