package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Client JSON-RPC 2.0 客户端
// 只在连接级失败（网络错误、超时）时重试，应用层错误不重试
type Client struct {
	config     Config
	logger     *zap.Logger
	httpClient *http.Client
}

// NewClient 创建客户端
func NewClient(config Config, logger *zap.Logger) *Client {
	config.applyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		config: config,
		logger: logger,
		httpClient: &http.Client{
			Timeout: config.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Close 释放连接池
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// Call 发起一元JSON-RPC调用并返回result
// 响应携带非空error成员时返回*RPCError
func (c *Client) Call(ctx context.Context, method string, params map[string]interface{}) (json.RawMessage, error) {
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

	c.logger.Debug("rpc call",
		zap.String("method", method),
		zap.String("id", req.ID))

	resp, err := c.doWithRetry(ctx, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	if rpcResp.Error != nil {
		return nil, &RPCError{
			Code:    rpcResp.Error.Code,
			Message: rpcResp.Error.Message,
			Data:    rpcResp.Error.Data,
		}
	}
	return rpcResp.Result, nil
}

// CallInto 一元调用并把result反序列化到result参数
func (c *Client) CallInto(ctx context.Context, method string, params map[string]interface{}, result interface{}) error {
	raw, err := c.Call(ctx, method, params)
	if err != nil {
		return err
	}
	if result == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, result); err != nil {
		return fmt.Errorf("unmarshal result: %w", err)
	}
	return nil
}

// CancelStream 请求取消一个远端流
// 本身就是一元调用，和业务方法走同一条分发路径
func (c *Client) CancelStream(ctx context.Context, streamID string) (*CancelResult, error) {
	var result CancelResult
	err := c.CallInto(ctx, "engine.stream.cancel", map[string]interface{}{
		"stream_id": streamID,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// doWithRetry 发送请求，连接级失败时按指数退避重试
// 重试只覆盖连接建立：拿到响应后的失败不再重试
func (c *Client) doWithRetry(ctx context.Context, body []byte) (*http.Response, error) {
	var lastErr error
	backoff := c.config.RetryBackoff

	for attempt := 0; attempt < c.config.RetryAttempts; attempt++ {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("create http request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(httpReq)
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
			c.logger.Warn("rpc transport failure, retrying",
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

// isRetryable 是否是值得重试的连接级失败
// 网络错误和超时可重试；调用方主动取消不重试
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	// Do的失败统一包装为*url.Error，连接建立失败归为可重试
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

func orEmpty(params map[string]interface{}) map[string]interface{} {
	if params == nil {
		return map[string]interface{}{}
	}
	return params
}
