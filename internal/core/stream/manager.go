package stream

import (
	"context"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/weisyn/streamgate/internal/api/jsonrpc/types"
)

// 默认值
const (
	// DefaultTimeout 单个流的策略性超时
	// 到期后等同于调用方请求取消，处理器应观察到取消并自行结束
	DefaultTimeout = 120 * time.Second
	// DefaultBufferSize 输出缓冲容量（背压的唯一机制）
	DefaultBufferSize = 64
)

// Prometheus指标
var (
	activeStreamsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "streamgate",
		Subsystem: "stream",
		Name:      "active",
		Help:      "Number of streams not yet finished",
	})
	streamEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "streamgate",
		Subsystem: "stream",
		Name:      "events_total",
		Help:      "Total number of events delivered to consumers",
	})
	streamCancelsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "streamgate",
		Subsystem: "stream",
		Name:      "cancellations_total",
		Help:      "Total number of accepted stream cancellation requests",
	})
)

// entry 单个活跃流的内部簿记
// 状态机：created → running → {completed|cancelled|timed-out} → drained/removed
// 三种终止方式汇入同一条清理路径，簿记上不做区分（只在日志中体现）
type entry struct {
	streamID string
	cancel   context.CancelFunc
	done     bool
}

// Manager 流生命周期管理器
// 持有streamID → entry映射，映射只由本组件修改
type Manager struct {
	logger     *zap.Logger
	timeout    time.Duration
	bufferSize int

	mu      sync.RWMutex
	streams map[string]*entry
}

// Option Manager配置选项
type Option func(*Manager)

// WithTimeout 设置流超时
func WithTimeout(timeout time.Duration) Option {
	return func(m *Manager) {
		if timeout > 0 {
			m.timeout = timeout
		}
	}
}

// WithBufferSize 设置输出缓冲容量
func WithBufferSize(size int) Option {
	return func(m *Manager) {
		if size > 0 {
			m.bufferSize = size
		}
	}
}

// NewManager 创建流生命周期管理器
func NewManager(logger *zap.Logger, opts ...Option) *Manager {
	m := &Manager{
		logger:     logger,
		timeout:    DefaultTimeout,
		bufferSize: DefaultBufferSize,
		streams:    make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewStreamID 生成全局唯一的流ID
func (m *Manager) NewStreamID() string {
	return uuid.New().String()
}

// Run 启动一个流并返回其事件序列
//
// 返回的通道按处理器的推送顺序交付事件，消费端取完全部事件后关闭。
// 行为保证：
//   - 返回前完成流条目注册
//   - 处理器在独立goroutine中运行，受超时约束（到期视同取消请求）
//   - 缓冲有界：消费端不及时取走时处理器的Emit阻塞，不丢弃、不无界堆积
//   - 处理器结束（正常/取消/出错）后输出恰好关闭一次；
//     出错只记日志，不作为事件暴露给消费端
//   - 流条目在消费端取完之后才移除，绝不提前
func (m *Manager) Run(ctx context.Context, handler HandlerFunc, params map[string]interface{}, streamID string) <-chan types.Event {
	if streamID == "" {
		streamID = m.NewStreamID()
	}

	runCtx, cancel := context.WithTimeout(ctx, m.timeout)

	e := &entry{streamID: streamID, cancel: cancel}
	m.mu.Lock()
	m.streams[streamID] = e
	m.mu.Unlock()
	activeStreamsGauge.Inc()

	// buf: 处理器 → 转发器，有界，承担全部背压
	// out: 转发器 → 消费端，无缓冲，逐事件交接，保证移除时序
	buf := make(chan types.Event, m.bufferSize)
	out := make(chan types.Event)

	sctx := &Context{
		streamID: streamID,
		runCtx:   runCtx,
		buf:      buf,
	}

	// 生产者：运行处理器，结束后关闭缓冲（恰好一次）
	go func() {
		defer close(buf)
		defer func() {
			if r := recover(); r != nil {
				m.logger.Error("stream handler panic recovered",
					zap.String("stream_id", streamID),
					zap.Any("panic", r),
					zap.ByteString("stack", debug.Stack()))
			}

			// 处理器已终止：标记done（此后Cancel返回false），条目等消费端取完再移除
			m.mu.Lock()
			e.done = true
			m.mu.Unlock()
		}()

		if err := handler(sctx, params); err != nil {
			// 处理器失败只在服务端大声记录，对消费端表现为正常的流结束
			m.logger.Error("stream handler failed",
				zap.String("stream_id", streamID),
				zap.Error(err))
		}
	}()

	// 消费侧转发：缓冲取空且生产者结束后，才移除条目
	go func() {
		for event := range buf {
			out <- event
			streamEventsTotal.Inc()
		}
		cancel()
		close(out)

		m.mu.Lock()
		delete(m.streams, streamID)
		m.mu.Unlock()
		activeStreamsGauge.Dec()

		m.logger.Debug("stream finished", zap.String("stream_id", streamID))
	}()

	return out
}

// Cancel 请求取消一个流
// 不存在或已结束的流返回false；否则触发取消控制并返回true
// 取消是一种请求：管理器不强杀处理器，由处理器协作式退出
func (m *Manager) Cancel(streamID string) bool {
	m.mu.RLock()
	e, ok := m.streams[streamID]
	m.mu.RUnlock()

	if !ok || e.done {
		return false
	}

	e.cancel()
	streamCancelsTotal.Inc()
	m.logger.Info("stream cancelled", zap.String("stream_id", streamID))
	return true
}

// ActiveStreams 返回尚未结束的流ID列表
// 仅用于观测和调试，不保证与业务逻辑原子一致
func (m *Manager) ActiveStreams() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.streams))
	for id, e := range m.streams {
		if !e.done {
			ids = append(ids, id)
		}
	}
	return ids
}
