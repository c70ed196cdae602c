package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestResponseEnvelope 测试响应信封中result/error的互斥出现
func TestResponseEnvelope(t *testing.T) {
	marshal := func(t *testing.T, resp *Response) map[string]interface{} {
		t.Helper()
		data, err := json.Marshal(resp)
		require.NoError(t, err)
		var envelope map[string]interface{}
		require.NoError(t, json.Unmarshal(data, &envelope))
		return envelope
	}

	t.Run("成功响应携带result不携带error", func(t *testing.T) {
		envelope := marshal(t, NewSuccessResponse("1", map[string]interface{}{"x": 1}))
		assert.Contains(t, envelope, "result")
		assert.NotContains(t, envelope, "error")
	})

	t.Run("result为nil时仍写出null", func(t *testing.T) {
		envelope := marshal(t, NewSuccessResponse("1", nil))
		require.Contains(t, envelope, "result")
		assert.Nil(t, envelope["result"])
		assert.NotContains(t, envelope, "error")
	})

	t.Run("错误响应携带error不携带result", func(t *testing.T) {
		envelope := marshal(t, NewErrorResponse("1", ErrMethodNotFound("nope")))
		assert.Contains(t, envelope, "error")
		assert.NotContains(t, envelope, "result")
	})
}
