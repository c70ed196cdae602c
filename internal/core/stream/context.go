// Package stream 提供流式RPC的生命周期管理
// Manager负责流的创建、超时、取消与清理；Context是交给流处理器的能力句柄
package stream

import (
	"context"

	"github.com/weisyn/streamgate/internal/api/jsonrpc/types"
)

// HandlerFunc 流式处理器
// 处理器通过ctx.Emit推送事件，并应在两次推送之间检查ctx.Cancelled()
type HandlerFunc func(ctx *Context, params map[string]interface{}) error

// Context 流式处理器的能力句柄
// 流结束后不可复用
type Context struct {
	streamID string
	runCtx   context.Context
	buf      chan<- types.Event
}

// StreamID 返回当前流的ID
func (c *Context) StreamID() string {
	return c.streamID
}

// Done 返回取消信号通道，便于处理器在select中等待
func (c *Context) Done() <-chan struct{} {
	return c.runCtx.Done()
}

// Cancelled 是否已请求取消
// 显式取消、超时、消费端断开三种情况都会使其返回true
// 取消是协作式的：处理器自己负责观察并尽快返回
func (c *Context) Cancelled() bool {
	return c.runCtx.Err() != nil
}

// Emit 推送一个事件到输出缓冲
// 缓冲满时阻塞（背压）；已取消时静默丢弃，不排队
// 需要干净收尾的处理器应自行在推送间隙检查Cancelled()，
// 不能依赖Emit拒绝工作——取消对处理器是建议性的
func (c *Context) Emit(event types.Event) {
	if c.Cancelled() {
		return
	}
	select {
	case c.buf <- event:
	case <-c.runCtx.Done():
		// 阻塞期间被取消：丢弃该事件，交还控制权给处理器
	}
}
