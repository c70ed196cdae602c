// Package app 提供网关的应用装配
// 基于fx依赖注入框架组装配置、日志、流管理器、分发层和HTTP服务
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	httpapi "github.com/weisyn/streamgate/internal/api/http"
	"github.com/weisyn/streamgate/internal/api/jsonrpc"
	"github.com/weisyn/streamgate/internal/api/jsonrpc/methods"
	"github.com/weisyn/streamgate/internal/config"
	"github.com/weisyn/streamgate/internal/core/infrastructure/log"
	"github.com/weisyn/streamgate/internal/core/stream"
)

// startStopTimeout fx生命周期超时
const startStopTimeout = 15 * time.Second

// Bootstrap 应用引导程序
type Bootstrap struct {
	configPath string
	fxApp      *fx.App
}

// NewBootstrap 创建引导程序
func NewBootstrap(configPath string) *Bootstrap {
	return &Bootstrap{configPath: configPath}
}

// buildOptions 组装全部fx模块
// 依赖次序：配置 → 日志 → 流管理器/注册表 → 分发服务器 → HTTP服务器
func (b *Bootstrap) buildOptions() []fx.Option {
	return []fx.Option{
		fx.Provide(
			func() (*config.Options, error) {
				return config.Load(b.configPath)
			},
			func(options *config.Options) (*zap.Logger, error) {
				return log.New(&options.Log)
			},
			provideStreamManager,
			jsonrpc.NewRegistry,
			jsonrpc.NewServer,
			httpapi.NewServer,
		),
		fx.Invoke(
			registerMethods,
			// 强制实例化HTTP服务器，挂接其生命周期钩子
			func(*httpapi.Server) {},
		),
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger}
		}),
		fx.StartTimeout(startStopTimeout),
		fx.StopTimeout(startStopTimeout),
	}
}

// provideStreamManager 构建流生命周期管理器
func provideStreamManager(options *config.Options, logger *zap.Logger) *stream.Manager {
	return stream.NewManager(logger,
		stream.WithTimeout(options.Stream.Timeout),
		stream.WithBufferSize(options.Stream.BufferSize),
	)
}

// registerMethods 注册全部内置方法
func registerMethods(server *jsonrpc.Server, streams *stream.Manager, logger *zap.Logger) {
	methods.NewCoreMethods(logger).Register(server)
	methods.NewGenerateMethods(logger).Register(server)
	methods.NewStreamControlMethods(logger, streams).Register(server)

	logger.Info("methods registered",
		zap.Strings("methods", server.Registry().Methods()))
}

// Run 启动应用并阻塞至收到退出信号
func (b *Bootstrap) Run() error {
	b.fxApp = fx.New(b.buildOptions()...)

	startCtx, cancel := context.WithTimeout(context.Background(), startStopTimeout)
	defer cancel()
	if err := b.fxApp.Start(startCtx); err != nil {
		return fmt.Errorf("start application: %w", err)
	}

	b.waitForSignal()

	stopCtx, cancelStop := context.WithTimeout(context.Background(), startStopTimeout)
	defer cancelStop()
	if err := b.fxApp.Stop(stopCtx); err != nil {
		return fmt.Errorf("stop application: %w", err)
	}
	return nil
}

// waitForSignal 等待SIGINT/SIGTERM
func (b *Bootstrap) waitForSignal() os.Signal {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	return <-signals
}
