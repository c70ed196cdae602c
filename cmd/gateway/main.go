package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/weisyn/streamgate/internal/app"
)

const version = "0.1.0"

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "[PANIC] %v\n", r)
			os.Exit(1)
		}
	}()

	var (
		configPath  string
		showVersion bool
	)

	flag.StringVar(&configPath, "config", "", "配置文件路径（JSON，可选）")
	flag.BoolVar(&showVersion, "version", false, "显示版本信息")
	flag.Parse()

	if showVersion {
		fmt.Printf("streamgate v%s\n", version)
		return
	}

	bootstrap := app.NewBootstrap(configPath)
	if err := bootstrap.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "streamgate: %v\n", err)
		os.Exit(1)
	}
}
