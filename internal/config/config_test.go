package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// TestDefaults 测试内置默认值
func TestDefaults(t *testing.T) {
	options := New()

	assert.Equal(t, "127.0.0.1", options.HTTP.Host)
	assert.Equal(t, 8100, options.HTTP.Port)
	assert.Equal(t, 30*time.Second, options.HTTP.ReadTimeout)
	assert.Equal(t, "127.0.0.1:8100", options.ListenAddr())

	assert.Equal(t, 120*time.Second, options.Stream.Timeout)
	assert.Equal(t, 64, options.Stream.BufferSize)

	assert.Equal(t, "info", options.Log.Level)
	assert.True(t, options.Log.ToConsole)
	assert.Empty(t, options.Log.FilePath)
}

// TestLoad 测试配置文件加载
func TestLoad(t *testing.T) {
	t.Run("空路径返回默认配置", func(t *testing.T) {
		options, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, New(), options)
	})

	t.Run("文件不存在返回默认配置", func(t *testing.T) {
		options, err := Load(filepath.Join(t.TempDir(), "missing.json"))
		require.NoError(t, err)
		assert.Equal(t, New(), options)
	})

	t.Run("用户配置覆盖默认值", func(t *testing.T) {
		path := writeConfigFile(t, `{
			"http": {"host": "0.0.0.0", "port": 9000, "read_timeout": "10s"},
			"stream": {"timeout": "30s", "buffer_size": 16},
			"log": {"level": "debug", "file_path": "/tmp/gateway.log"}
		}`)

		options, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, "0.0.0.0", options.HTTP.Host)
		assert.Equal(t, 9000, options.HTTP.Port)
		assert.Equal(t, 10*time.Second, options.HTTP.ReadTimeout)
		assert.Equal(t, 30*time.Second, options.Stream.Timeout)
		assert.Equal(t, 16, options.Stream.BufferSize)
		assert.Equal(t, "debug", options.Log.Level)
		assert.Equal(t, "/tmp/gateway.log", options.Log.FilePath)

		// 未出现的字段保持默认
		assert.True(t, options.Log.ToConsole)
		assert.Equal(t, 100, options.Log.MaxSize)
	})

	t.Run("显式零值同样生效", func(t *testing.T) {
		path := writeConfigFile(t, `{"log": {"to_console": false, "compress": false}}`)

		options, err := Load(path)
		require.NoError(t, err)
		assert.False(t, options.Log.ToConsole)
		assert.False(t, options.Log.Compress)
	})

	t.Run("非法JSON返回错误", func(t *testing.T) {
		path := writeConfigFile(t, `{broken`)
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("非法时长返回错误", func(t *testing.T) {
		path := writeConfigFile(t, `{"stream": {"timeout": "tomorrow"}}`)
		_, err := Load(path)
		assert.Error(t, err)
	})
}
