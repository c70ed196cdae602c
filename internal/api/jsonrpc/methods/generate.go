package methods

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/weisyn/streamgate/internal/api/jsonrpc"
	"github.com/weisyn/streamgate/internal/api/jsonrpc/types"
	"github.com/weisyn/streamgate/internal/core/stream"
)

// 生成参数默认值
const (
	defaultGenerateTokens = 5
	defaultGenerateDelay  = 300 * time.Millisecond
)

// GenerateMethods 流式生成方法
type GenerateMethods struct {
	logger *zap.Logger
}

// NewGenerateMethods 创建生成方法处理器
func NewGenerateMethods(logger *zap.Logger) *GenerateMethods {
	return &GenerateMethods{logger: logger}
}

// Register 注册生成方法
// 同名方法同时注册到一元注册表（占位）和流式方法集：
// 占位条目保证IsRegistered对该方法成立，真正的工作走流式路径
func (m *GenerateMethods) Register(server *jsonrpc.Server) {
	server.Registry().Register("generate", m.Generate)
	server.RegisterStream("generate", m.GenerateStream)
}

// Generate 一元占位
// Method: generate（经由流式路径分发时不会走到这里）
func (m *GenerateMethods) Generate(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	return "use streaming endpoint", nil
}

// GenerateStream 流式生成处理器
// Params: {prompt: string, tokens: int, delay: seconds}
// 按delay间隔逐个推送token事件，未被取消时以done事件收尾
func (m *GenerateMethods) GenerateStream(ctx *stream.Context, params map[string]interface{}) error {
	prompt, _ := params["prompt"].(string)
	tokens := intParam(params, "tokens", defaultGenerateTokens)
	delay := durationParam(params, "delay", defaultGenerateDelay)

	for i := 0; i < tokens; i++ {
		if ctx.Cancelled() {
			return nil
		}
		ctx.Emit(types.Event{
			"type":   "token",
			"index":  i,
			"token":  fmt.Sprintf("tok_%d", i),
			"prompt": prompt,
		})

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil
		}
	}

	if !ctx.Cancelled() {
		ctx.Emit(types.Event{"type": "done", "total": tokens})
	}
	return nil
}

// intParam 整数参数（JSON数值统一是float64）
func intParam(params map[string]interface{}, key string, fallback int) int {
	if v, ok := params[key].(float64); ok && v >= 0 {
		return int(v)
	}
	return fallback
}

// durationParam 秒数参数转Duration
func durationParam(params map[string]interface{}, key string, fallback time.Duration) time.Duration {
	if v, ok := params[key].(float64); ok && v >= 0 {
		return time.Duration(v * float64(time.Second))
	}
	return fallback
}
