package jsonrpc

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/weisyn/streamgate/internal/api/jsonrpc/types"
)

func newTestRegistry() *Registry {
	return NewRegistry(zap.NewNop())
}

// TestRegistryDispatch 测试注册与分发
func TestRegistryDispatch(t *testing.T) {
	t.Run("注册后立即可见且可分发", func(t *testing.T) {
		r := newTestRegistry()
		r.Register("echo", func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
			return params, nil
		})

		assert.True(t, r.IsRegistered("echo"))

		result, err := r.Dispatch(context.Background(), "echo", map[string]interface{}{"msg": "hi"})
		require.NoError(t, err)
		assert.Equal(t, map[string]interface{}{"msg": "hi"}, result)
	})

	t.Run("未注册方法返回MethodNotFound", func(t *testing.T) {
		r := newTestRegistry()
		_, err := r.Dispatch(context.Background(), "nonexistent", nil)
		require.Error(t, err)

		var rpcErr *types.RPCError
		require.True(t, errors.As(err, &rpcErr))
		assert.Equal(t, types.CodeMethodNotFound, rpcErr.Code)
	})

	t.Run("处理器错误原样传播", func(t *testing.T) {
		r := newTestRegistry()
		boom := errors.New("boom")
		r.Register("fail", func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
			return nil, boom
		})

		_, err := r.Dispatch(context.Background(), "fail", nil)
		assert.ErrorIs(t, err, boom)
	})
}

// TestRegistryOverwrite 测试同名方法覆盖注册
func TestRegistryOverwrite(t *testing.T) {
	r := newTestRegistry()
	r.Register("m", func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		return "old", nil
	})
	r.Register("m", func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		return "new", nil
	})

	result, err := r.Dispatch(context.Background(), "m", nil)
	require.NoError(t, err)
	assert.Equal(t, "new", result)
	assert.True(t, r.IsRegistered("m"))

	// 覆盖不产生重复条目
	assert.Equal(t, []string{"m"}, r.Methods())
}

// TestRegistryMethodsOrder 测试方法列表按注册顺序返回
func TestRegistryMethodsOrder(t *testing.T) {
	r := newTestRegistry()
	noop := func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		return nil, nil
	}
	r.Register("c", noop)
	r.Register("a", noop)
	r.Register("b", noop)

	assert.Equal(t, []string{"c", "a", "b"}, r.Methods())
}
