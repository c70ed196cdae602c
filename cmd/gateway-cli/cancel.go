package main

import (
	"context"

	"github.com/spf13/cobra"
)

// cancelCmd 流取消命令
var cancelCmd = &cobra.Command{
	Use:   "cancel <stream-id>",
	Short: "按流ID取消一个运行中的流",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := client.CancelStream(context.Background(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, result)
	},
}

func init() {
	rootCmd.AddCommand(cancelCmd)
}
