package methods

import (
	"context"

	"go.uber.org/zap"

	"github.com/weisyn/streamgate/internal/api/jsonrpc"
	"github.com/weisyn/streamgate/internal/core/stream"
)

// StreamControlMethods 流控制方法
// 取消本身是一元调用，和业务方法走同一条分发路径
type StreamControlMethods struct {
	logger  *zap.Logger
	streams *stream.Manager
}

// NewStreamControlMethods 创建流控制方法处理器
func NewStreamControlMethods(logger *zap.Logger, streams *stream.Manager) *StreamControlMethods {
	return &StreamControlMethods{logger: logger, streams: streams}
}

// Register 注册流控制方法
func (m *StreamControlMethods) Register(server *jsonrpc.Server) {
	server.Registry().Register("engine.stream.cancel", m.Cancel)
	server.Registry().Register("engine.stream.active", m.Active)
}

// Cancel 按ID请求取消一个流
// Method: engine.stream.cancel
// Params: {stream_id: string}
// 缺少stream_id时直接返回失败结果，不触达管理器
func (m *StreamControlMethods) Cancel(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	streamID, _ := params["stream_id"].(string)
	if streamID == "" {
		return map[string]interface{}{
			"cancelled": false,
			"error":     "missing stream_id",
		}, nil
	}

	ok := m.streams.Cancel(streamID)
	return map[string]interface{}{
		"cancelled": ok,
		"stream_id": streamID,
	}, nil
}

// Active 列出尚未结束的流ID
// Method: engine.stream.active
// 观测用途，不参与正确性判断
func (m *StreamControlMethods) Active(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	ids := m.streams.ActiveStreams()
	return map[string]interface{}{
		"streams": ids,
		"count":   len(ids),
	}, nil
}
