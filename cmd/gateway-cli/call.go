package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// callCmd 一元调用命令
var callCmd = &cobra.Command{
	Use:   "call <method> [params-json]",
	Short: "发起一元RPC调用",
	Long: `发起一元RPC调用并打印result。

示例:
  streamgate-cli call echo '{"msg":"hi"}'
  streamgate-cli call add '{"a":3,"b":4}'
  streamgate-cli call rpc.methods`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := parseParams(args)
		if err != nil {
			return err
		}

		result, err := client.Call(context.Background(), args[0], params)
		if err != nil {
			return err
		}

		return printJSON(cmd, result)
	},
}

// parseParams 解析可选的JSON参数
func parseParams(args []string) (map[string]interface{}, error) {
	params := map[string]interface{}{}
	if len(args) > 1 {
		if err := json.Unmarshal([]byte(args[1]), &params); err != nil {
			return nil, fmt.Errorf("参数必须是JSON对象: %w", err)
		}
	}
	return params, nil
}

// printJSON 美化输出JSON
func printJSON(cmd *cobra.Command, v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	cmd.Println(string(out))
	return nil
}

func init() {
	rootCmd.AddCommand(callCmd)
}
