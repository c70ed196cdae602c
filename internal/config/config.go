// Package config 提供网关的统一配置
// 配置来源：内置默认值 ← JSON配置文件覆盖
// 用户配置采用指针字段以区分"未设置"和"设置为零值"
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// HTTPOptions HTTP服务配置
type HTTPOptions struct {
	Host        string        `json:"host"`         // 监听地址
	Port        int           `json:"port"`         // 监听端口
	ReadTimeout time.Duration `json:"read_timeout"` // 读取超时
	// 流式响应寿命由流超时控制，HTTP层不设写超时
}

// StreamOptions 流生命周期配置
type StreamOptions struct {
	Timeout    time.Duration `json:"timeout"`     // 单流策略性超时
	BufferSize int           `json:"buffer_size"` // 输出缓冲容量（背压）
}

// LogOptions 日志配置
type LogOptions struct {
	Level      string `json:"level"`       // 日志级别 (debug, info, warn, error)
	ToConsole  bool   `json:"to_console"`  // 是否输出到控制台
	FilePath   string `json:"file_path"`   // 日志文件路径（空则不写文件）
	MaxSize    int    `json:"max_size"`    // 单个日志文件最大大小(MB)
	MaxBackups int    `json:"max_backups"` // 最大备份文件数
	MaxAge     int    `json:"max_age"`     // 日志文件最大保留天数
	Compress   bool   `json:"compress"`    // 是否压缩历史日志文件
}

// Options 网关配置
type Options struct {
	HTTP   HTTPOptions   `json:"http"`
	Stream StreamOptions `json:"stream"`
	Log    LogOptions    `json:"log"`
}

// userConfig 用户配置文件结构
// 指针字段：nil表示未设置（用默认值），非nil表示显式设置（零值也采用）
type userConfig struct {
	HTTP *struct {
		Host        *string `json:"host"`
		Port        *int    `json:"port"`
		ReadTimeout *string `json:"read_timeout"`
	} `json:"http"`
	Stream *struct {
		Timeout    *string `json:"timeout"`
		BufferSize *int    `json:"buffer_size"`
	} `json:"stream"`
	Log *struct {
		Level      *string `json:"level"`
		ToConsole  *bool   `json:"to_console"`
		FilePath   *string `json:"file_path"`
		MaxSize    *int    `json:"max_size"`
		MaxBackups *int    `json:"max_backups"`
		MaxAge     *int    `json:"max_age"`
		Compress   *bool   `json:"compress"`
	} `json:"log"`
}

// New 创建默认配置
func New() *Options {
	return newDefaultOptions()
}

// Load 从配置文件加载配置
// 文件不存在时返回默认配置，不视为错误
func Load(path string) (*Options, error) {
	options := newDefaultOptions()
	if path == "" {
		return options, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return options, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var user userConfig
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}

	if err := applyUserConfig(options, &user); err != nil {
		return nil, fmt.Errorf("apply config file %s: %w", path, err)
	}
	return options, nil
}

// applyUserConfig 用用户配置覆盖默认值
func applyUserConfig(options *Options, user *userConfig) error {
	if user.HTTP != nil {
		if user.HTTP.Host != nil {
			options.HTTP.Host = *user.HTTP.Host
		}
		if user.HTTP.Port != nil {
			options.HTTP.Port = *user.HTTP.Port
		}
		if user.HTTP.ReadTimeout != nil {
			d, err := time.ParseDuration(*user.HTTP.ReadTimeout)
			if err != nil {
				return fmt.Errorf("http.read_timeout: %w", err)
			}
			options.HTTP.ReadTimeout = d
		}
	}

	if user.Stream != nil {
		if user.Stream.Timeout != nil {
			d, err := time.ParseDuration(*user.Stream.Timeout)
			if err != nil {
				return fmt.Errorf("stream.timeout: %w", err)
			}
			options.Stream.Timeout = d
		}
		if user.Stream.BufferSize != nil {
			options.Stream.BufferSize = *user.Stream.BufferSize
		}
	}

	if user.Log != nil {
		if user.Log.Level != nil {
			options.Log.Level = *user.Log.Level
		}
		if user.Log.ToConsole != nil {
			options.Log.ToConsole = *user.Log.ToConsole
		}
		if user.Log.FilePath != nil {
			options.Log.FilePath = *user.Log.FilePath
		}
		if user.Log.MaxSize != nil {
			options.Log.MaxSize = *user.Log.MaxSize
		}
		if user.Log.MaxBackups != nil {
			options.Log.MaxBackups = *user.Log.MaxBackups
		}
		if user.Log.MaxAge != nil {
			options.Log.MaxAge = *user.Log.MaxAge
		}
		if user.Log.Compress != nil {
			options.Log.Compress = *user.Log.Compress
		}
	}
	return nil
}

// ListenAddr 返回HTTP监听地址
func (o *Options) ListenAddr() string {
	return fmt.Sprintf("%s:%d", o.HTTP.Host, o.HTTP.Port)
}
