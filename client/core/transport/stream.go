package transport

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventStream 一次流式调用的消费端
// 事件按到达顺序交付；序列有限（服务端关闭连接即结束）且不可重放，
// 需要再次消费必须重新发起调用
type EventStream struct {
	streamID  string
	events    chan Event
	body      io.ReadCloser
	quit      chan struct{}
	closeOnce sync.Once
}

// StreamID 返回带外（响应头）携带的流ID
func (s *EventStream) StreamID() string {
	return s.streamID
}

// Events 返回事件通道
// 服务端关闭流或Close被调用后通道关闭
func (s *EventStream) Events() <-chan Event {
	return s.events
}

// Close 放弃消费并断开连接
// 服务端会将消费端断开视作隐式取消；
// 调用后不要求继续排空Events()，读取goroutine自行退出
func (s *EventStream) Close() error {
	s.closeOnce.Do(func() {
		close(s.quit)
	})
	return s.body.Close()
}

// Stream 发起流式JSON-RPC调用
// 连接建立阶段套用与Call相同的重试策略；连接建立后逐帧解码，
// 单帧解码失败只记日志并跳过，不终止整个流
func (c *Client) Stream(ctx context.Context, method string, params map[string]interface{}) (*EventStream, error) {
	req := &rpcRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  orEmpty(params),
		ID:      uuid.New().String(),
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	c.logger.Debug("rpc stream",
		zap.String("method", method),
		zap.String("id", req.ID))

	resp, err := c.doStreamWithRetry(ctx, body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	stream := &EventStream{
		streamID: resp.Header.Get("X-Stream-Id"),
		events:   make(chan Event),
		body:     resp.Body,
		quit:     make(chan struct{}),
	}
	go c.consumeFrames(stream)

	return stream, nil
}

// doStreamWithRetry 流式请求的连接建立（不能用带全局超时的连接池客户端，
// 流的寿命由服务端控制，客户端只约束连接建立本身）
func (c *Client) doStreamWithRetry(ctx context.Context, body []byte) (*http.Response, error) {
	streamClient := &http.Client{
		Transport: c.httpClient.Transport,
	}

	var lastErr error
	backoff := c.config.RetryBackoff

	for attempt := 0; attempt < c.config.RetryAttempts; attempt++ {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("create http request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Accept", "text/event-stream")

		resp, err := streamClient.Do(httpReq)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !isRetryable(err) {
			return nil, fmt.Errorf("http request: %w", err)
		}

		if attempt < c.config.RetryAttempts-1 {
			c.logger.Warn("stream connect failure, retrying",
				zap.Int("attempt", attempt+1),
				zap.Duration("backoff", backoff),
				zap.Error(err))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			backoff *= 2
			if backoff > maxRetryBackoff {
				backoff = maxRetryBackoff
			}
		}
	}

	return nil, fmt.Errorf("all %d attempts failed: %w", c.config.RetryAttempts, lastErr)
}

// consumeFrames 逐行读取SSE帧并解码为事件
func (c *Client) consumeFrames(stream *EventStream) {
	defer close(stream.events)
	defer stream.body.Close()

	scanner := bufio.NewScanner(stream.body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		raw := strings.TrimSpace(strings.TrimPrefix(line, "data:"))

		var event Event
		if err := json.Unmarshal([]byte(raw), &event); err != nil {
			c.logger.Warn("bad SSE frame, skipping",
				zap.String("line", line),
				zap.Error(err))
			continue
		}

		// 消费端Close后不再排空通道，靠quit信号脱离阻塞的发送
		select {
		case stream.events <- event:
		case <-stream.quit:
			return
		}
	}

	if err := scanner.Err(); err != nil {
		c.logger.Debug("stream closed", zap.Error(err))
	}
}
