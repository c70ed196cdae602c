package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// streamCmd 流式调用命令
var streamCmd = &cobra.Command{
	Use:   "stream <method> [params-json]",
	Short: "发起流式RPC调用并实时打印事件",
	Long: `发起流式RPC调用，按到达顺序逐个打印事件帧。

Ctrl-C 请求远端取消后退出。

示例:
  streamgate-cli stream generate '{"prompt":"hello","tokens":5,"delay":0.2}'`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := parseParams(args)
		if err != nil {
			return err
		}

		ctx := context.Background()
		eventStream, err := client.Stream(ctx, args[0], params)
		if err != nil {
			return err
		}
		defer eventStream.Close()

		// Ctrl-C：先请求远端取消，再由流自然结束
		interrupts := make(chan os.Signal, 1)
		signal.Notify(interrupts, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(interrupts)

		go func() {
			<-interrupts
			if id := eventStream.StreamID(); id != "" {
				_, _ = client.CancelStream(ctx, id)
			}
			eventStream.Close()
		}()

		for event := range eventStream.Events() {
			if err := printJSON(cmd, event); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(streamCmd)
}
