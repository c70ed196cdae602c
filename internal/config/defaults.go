package config

import "time"

// 配置默认值
const (
	// defaultHTTPHost 默认只监听本机
	// 网关面向本地引擎进程，不应默认暴露到外网
	defaultHTTPHost = "127.0.0.1"

	// defaultHTTPPort 默认HTTP端口
	defaultHTTPPort = 8100

	// defaultReadTimeout 请求读取超时
	defaultReadTimeout = 30 * time.Second

	// defaultStreamTimeout 单流策略性超时
	// 到期等同于调用方请求取消，不是硬错误
	defaultStreamTimeout = 120 * time.Second

	// defaultStreamBufferSize 流输出缓冲容量
	// 消费端取不走时处理器在此容量上阻塞（背压）
	defaultStreamBufferSize = 64

	// defaultLogLevel info级别平衡信息量和开销
	defaultLogLevel = "info"

	// defaultLogToConsole 默认输出到控制台
	defaultLogToConsole = true

	// defaultLogMaxSize 单个日志文件最大100MB
	defaultLogMaxSize = 100

	// defaultLogMaxBackups 保留10个备份文件
	defaultLogMaxBackups = 10

	// defaultLogMaxAge 日志保留30天
	defaultLogMaxAge = 30

	// defaultLogCompress 压缩历史日志
	defaultLogCompress = true
)

// newDefaultOptions 创建完整的默认配置
func newDefaultOptions() *Options {
	return &Options{
		HTTP: HTTPOptions{
			Host:        defaultHTTPHost,
			Port:        defaultHTTPPort,
			ReadTimeout: defaultReadTimeout,
		},
		Stream: StreamOptions{
			Timeout:    defaultStreamTimeout,
			BufferSize: defaultStreamBufferSize,
		},
		Log: LogOptions{
			Level:      defaultLogLevel,
			ToConsole:  defaultLogToConsole,
			MaxSize:    defaultLogMaxSize,
			MaxBackups: defaultLogMaxBackups,
			MaxAge:     defaultLogMaxAge,
			Compress:   defaultLogCompress,
		},
	}
}
