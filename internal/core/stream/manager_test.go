package stream

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/weisyn/streamgate/internal/api/jsonrpc/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestManager(opts ...Option) *Manager {
	return NewManager(zap.NewNop(), opts...)
}

func drain(ch <-chan types.Event) []types.Event {
	var events []types.Event
	for event := range ch {
		events = append(events, event)
	}
	return events
}

// TestRunEventOrder 测试事件按推送顺序交付
func TestRunEventOrder(t *testing.T) {
	m := newTestManager()

	ch := m.Run(context.Background(), func(ctx *Context, params map[string]interface{}) error {
		for i := 0; i < 5; i++ {
			ctx.Emit(types.Event{"type": "token", "index": i})
		}
		return nil
	}, nil, m.NewStreamID())

	events := drain(ch)
	require.Len(t, events, 5)
	for i, event := range events {
		assert.Equal(t, i, event["index"])
	}
}

// TestRunZeroEvents 测试处理器不推送任何事件时通道直接关闭
func TestRunZeroEvents(t *testing.T) {
	m := newTestManager()

	ch := m.Run(context.Background(), func(ctx *Context, params map[string]interface{}) error {
		return nil
	}, nil, m.NewStreamID())

	events := drain(ch)
	assert.Empty(t, events)
}

// TestRunBackpressure 测试有界缓冲的背压行为
// 消费端不取走时，Emit在缓冲满后阻塞；缓冲2时在途最多3个
// （转发器手上1个 + 缓冲里2个），不丢弃、不无界堆积
func TestRunBackpressure(t *testing.T) {
	m := newTestManager(WithBufferSize(2))

	var emitted atomic.Int32
	ch := m.Run(context.Background(), func(ctx *Context, params map[string]interface{}) error {
		for i := 0; i < 5; i++ {
			ctx.Emit(types.Event{"type": "token", "index": i})
			emitted.Add(1)
		}
		return nil
	}, nil, m.NewStreamID())

	// 不消费：推送数停在缓冲容量+1，不再前进
	require.Eventually(t, func() bool {
		return emitted.Load() == 3
	}, time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(3), emitted.Load())

	// 开始消费后全部事件按序到达
	events := drain(ch)
	require.Len(t, events, 5)
	for i, event := range events {
		assert.Equal(t, i, event["index"])
	}
	assert.Equal(t, int32(5), emitted.Load())
}

// TestCancel 测试取消语义
func TestCancel(t *testing.T) {
	t.Run("不存在的流返回false", func(t *testing.T) {
		m := newTestManager()
		assert.False(t, m.Cancel("no-such-stream"))
	})

	t.Run("活跃流取消返回true且通道关闭", func(t *testing.T) {
		m := newTestManager()
		streamID := m.NewStreamID()

		started := make(chan struct{})
		ch := m.Run(context.Background(), func(ctx *Context, params map[string]interface{}) error {
			ctx.Emit(types.Event{"type": "token", "index": 0})
			close(started)
			<-ctx.Done()
			return nil
		}, nil, streamID)

		<-started
		assert.True(t, m.Cancel(streamID))

		events := drain(ch)
		require.Len(t, events, 1)

		// 已结束的流再次取消返回false
		assert.False(t, m.Cancel(streamID))
	})

	t.Run("取消后Emit静默丢弃", func(t *testing.T) {
		m := newTestManager()
		streamID := m.NewStreamID()

		cancelled := make(chan struct{})
		ch := m.Run(context.Background(), func(ctx *Context, params map[string]interface{}) error {
			ctx.Emit(types.Event{"type": "token", "index": 0})
			<-ctx.Done()
			close(cancelled)
			// 取消之后的推送不应到达消费端
			ctx.Emit(types.Event{"type": "token", "index": 1})
			ctx.Emit(types.Event{"type": "token", "index": 2})
			return nil
		}, nil, streamID)

		first := <-ch
		assert.Equal(t, 0, first["index"])
		require.True(t, m.Cancel(streamID))
		<-cancelled

		rest := drain(ch)
		assert.Empty(t, rest)
	})
}

// TestTimeout 测试超时视同取消请求
func TestTimeout(t *testing.T) {
	m := newTestManager(WithTimeout(50 * time.Millisecond))

	ch := m.Run(context.Background(), func(ctx *Context, params map[string]interface{}) error {
		ctx.Emit(types.Event{"type": "token", "index": 0})
		<-ctx.Done()
		return nil
	}, nil, m.NewStreamID())

	start := time.Now()
	events := drain(ch)
	require.Len(t, events, 1)
	assert.Less(t, time.Since(start), time.Second)
}

// TestHandlerFailure 测试处理器出错与panic都收敛为干净的流结束
func TestHandlerFailure(t *testing.T) {
	t.Run("处理器返回错误", func(t *testing.T) {
		m := newTestManager()
		ch := m.Run(context.Background(), func(ctx *Context, params map[string]interface{}) error {
			ctx.Emit(types.Event{"type": "token", "index": 0})
			return errors.New("handler exploded")
		}, nil, m.NewStreamID())

		events := drain(ch)
		assert.Len(t, events, 1)
	})

	t.Run("处理器panic", func(t *testing.T) {
		m := newTestManager()
		ch := m.Run(context.Background(), func(ctx *Context, params map[string]interface{}) error {
			ctx.Emit(types.Event{"type": "token", "index": 0})
			panic("handler panic")
		}, nil, m.NewStreamID())

		events := drain(ch)
		assert.Len(t, events, 1)
	})
}

// TestEntryLifecycle 测试条目注册与移除时序
func TestEntryLifecycle(t *testing.T) {
	m := newTestManager()
	streamID := m.NewStreamID()

	started := make(chan struct{})
	ch := m.Run(context.Background(), func(ctx *Context, params map[string]interface{}) error {
		close(started)
		ctx.Emit(types.Event{"type": "token", "index": 0})
		<-ctx.Done()
		return nil
	}, nil, streamID)

	// Run返回时条目已注册
	assert.Contains(t, m.ActiveStreams(), streamID)

	<-started
	require.True(t, m.Cancel(streamID))

	// 消费端取完后条目最终移除
	drain(ch)
	require.Eventually(t, func() bool {
		return len(m.ActiveStreams()) == 0
	}, time.Second, 10*time.Millisecond)
	assert.False(t, m.Cancel(streamID))
}

// TestNewStreamID 测试流ID唯一性
func TestNewStreamID(t *testing.T) {
	m := newTestManager()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := m.NewStreamID()
		assert.NotEmpty(t, id)
		assert.False(t, seen[id])
		seen[id] = true
	}
}
