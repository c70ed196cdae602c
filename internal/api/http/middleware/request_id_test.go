package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRequestIDRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(NewRequestID().Middleware())
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})
	return router
}

// TestRequestID 测试请求ID的生成与透传
func TestRequestID(t *testing.T) {
	t.Run("未携带请求ID时自动生成", func(t *testing.T) {
		router := newRequestIDRouter()

		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		requestID := rec.Header().Get("X-Request-ID")
		require.NotEmpty(t, requestID)
		// 上下文里的ID和响应头一致
		assert.Equal(t, requestID, rec.Body.String())
	})

	t.Run("沿用上游携带的请求ID", func(t *testing.T) {
		router := newRequestIDRouter()

		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Request-ID", "upstream-42")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, "upstream-42", rec.Header().Get("X-Request-ID"))
		assert.Equal(t, "upstream-42", rec.Body.String())
	})

	t.Run("未经过中间件时返回空串", func(t *testing.T) {
		gin.SetMode(gin.TestMode)
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		assert.Empty(t, GetRequestID(c))
	})
}
