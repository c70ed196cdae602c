package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/weisyn/streamgate/client/core/transport"
)

// GlobalFlags 全局标志
type GlobalFlags struct {
	Endpoint     string        // 网关RPC端点
	Timeout      time.Duration // 请求超时
	Retries      int           // 连接重试次数
	RetryBackoff time.Duration // 重试退避基准
	Verbose      bool          // 详细模式
}

var (
	globalFlags GlobalFlags
	client      *transport.Client
)

// rootCmd 根命令
var rootCmd = &cobra.Command{
	Use:   "streamgate-cli",
	Short: "流式RPC网关命令行客户端",
	Long: `streamgate-cli - 网关的薄客户端

提供对流式RPC网关的完整交互能力:
- 一元调用（echo、add等注册方法）
- 流式调用并实时打印事件
- 按流ID取消运行中的流`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger := zap.NewNop()
		if globalFlags.Verbose {
			var err error
			logger, err = zap.NewDevelopment()
			if err != nil {
				return fmt.Errorf("初始化日志: %w", err)
			}
		}

		client = transport.NewClient(transport.Config{
			Endpoint:      globalFlags.Endpoint,
			Timeout:       globalFlags.Timeout,
			RetryAttempts: globalFlags.Retries,
			RetryBackoff:  globalFlags.RetryBackoff,
		}, logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if client != nil {
			client.Close()
		}
	},
}

// Execute 执行根命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&globalFlags.Endpoint, "endpoint", "http://127.0.0.1:8100/rpc", "网关RPC端点")
	rootCmd.PersistentFlags().DurationVar(&globalFlags.Timeout, "timeout", 30*time.Second, "请求超时")
	rootCmd.PersistentFlags().IntVar(&globalFlags.Retries, "retries", 3, "连接重试次数")
	rootCmd.PersistentFlags().DurationVar(&globalFlags.RetryBackoff, "retry-backoff", 500*time.Millisecond, "重试退避基准（指数递增）")
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.Verbose, "verbose", "v", false, "详细模式")
}

func main() {
	Execute()
}
