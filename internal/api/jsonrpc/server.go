package jsonrpc

import (
	"errors"
	"io"
	"net/http"
	"runtime/debug"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/weisyn/streamgate/internal/api/jsonrpc/types"
	"github.com/weisyn/streamgate/internal/core/stream"
)

// Server JSON-RPC 2.0 分发服务器
// 单一端点同时承载一元调用和流式调用：
//   - 一元：查注册表，返回一个响应信封
//   - 流式（方法在流式方法集中）：分配流ID，按SSE帧返回事件序列
type Server struct {
	logger   *zap.Logger
	registry *Registry
	streams  *stream.Manager

	mu             sync.RWMutex
	streamHandlers map[string]stream.HandlerFunc
}

// NewServer 创建分发服务器
func NewServer(logger *zap.Logger, registry *Registry, streams *stream.Manager) *Server {
	return &Server{
		logger:         logger,
		registry:       registry,
		streams:        streams,
		streamHandlers: make(map[string]stream.HandlerFunc),
	}
}

// Registry 返回方法注册表
func (s *Server) Registry() *Registry {
	return s.registry
}

// StreamManager 返回流生命周期管理器
func (s *Server) StreamManager() *stream.Manager {
	return s.streams
}

// RegisterStream 注册流式方法处理器
// 方法是否走流式路径，以本表为准
func (s *Server) RegisterStream(method string, handler stream.HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.streamHandlers[method]; exists {
		s.logger.Warn("overwriting stream handler", zap.String("method", method))
	}
	s.streamHandlers[method] = handler
	s.logger.Debug("stream method registered", zap.String("method", method))
}

// IsStreaming 方法是否属于流式方法集
func (s *Server) IsStreaming(method string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.streamHandlers[method]
	return ok
}

// RegisterRoutes 挂载RPC端点
func (s *Server) RegisterRoutes(router *gin.Engine) {
	router.POST("/rpc", s.HandleRPC)
}

// HandleRPC 处理一次JSON-RPC请求
// 校验顺序：载荷不可解析 → ParseError；信封非法 → InvalidRequest；
// 流式方法 → SSE事件流；其余 → 一元分发
func (s *Server) HandleRPC(c *gin.Context) {
	// panic恢复（带堆栈），保证任何失败路径都有终结性响应
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("JSON-RPC handler panic recovered",
				zap.Any("panic", rec),
				zap.ByteString("stack", debug.Stack()))
			if !c.Writer.Written() {
				s.writeError(c, "", types.ErrInternalError("panic recovered"))
			}
		}
	}()

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		s.writeError(c, "", types.ErrParseError(err.Error()))
		return
	}

	req, rpcErr := types.ParseRequest(body)
	if rpcErr != nil {
		s.writeError(c, "", rpcErr)
		return
	}

	s.logger.Info("rpc request",
		zap.String("method", req.Method),
		zap.String("id", req.ID))

	s.mu.RLock()
	streamHandler, isStreaming := s.streamHandlers[req.Method]
	s.mu.RUnlock()

	if isStreaming {
		s.handleStreaming(c, req, streamHandler)
		return
	}
	s.handleUnary(c, req)
}

// handleUnary 一元调用路径
func (s *Server) handleUnary(c *gin.Context, req *types.Request) {
	result, err := s.registry.Dispatch(c.Request.Context(), req.Method, req.Params)
	if err != nil {
		var rpcErr *types.RPCError
		if errors.As(err, &rpcErr) {
			s.writeError(c, req.ID, rpcErr)
			return
		}
		// 处理器失败在边界处截获：记完整日志，对外只给通用内部错误
		s.logger.Error("handler failed",
			zap.String("method", req.Method),
			zap.String("id", req.ID),
			zap.Error(err))
		s.writeError(c, req.ID, types.ErrInternalError(err.Error()))
		return
	}

	c.JSON(http.StatusOK, types.NewSuccessResponse(req.ID, result))
}

// handleStreaming 流式调用路径
// 帧顺序固定：stream_start → 处理器事件... → stream_end
// 处理器内部出错不影响帧序列的终结性（stream_end总会发出）
func (s *Server) handleStreaming(c *gin.Context, req *types.Request, handler stream.HandlerFunc) {
	streamID := s.streams.NewStreamID()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	// 带外携带流ID，供协议外取消使用
	c.Header("X-Stream-Id", streamID)
	c.Status(http.StatusOK)

	s.writeFrame(c, types.NewStreamStartEvent(streamID))

	for event := range s.streams.Run(c.Request.Context(), handler, req.Params, streamID) {
		s.writeFrame(c, event)
	}

	s.writeFrame(c, types.NewStreamEndEvent(streamID))
}

// writeFrame 写出一帧SSE数据并立即刷新
func (s *Server) writeFrame(c *gin.Context, event types.Event) {
	frame, err := types.EncodeSSEFrame(event)
	if err != nil {
		s.logger.Error("encode stream frame failed", zap.Error(err))
		return
	}
	if _, err := c.Writer.Write(frame); err != nil {
		s.logger.Warn("write stream frame failed", zap.Error(err))
		return
	}
	c.Writer.Flush()
}

// writeError 写出错误响应信封
func (s *Server) writeError(c *gin.Context, id string, rpcErr *types.RPCError) {
	c.JSON(http.StatusOK, types.NewErrorResponse(id, rpcErr))
}
