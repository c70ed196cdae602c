// Package http 提供网关的HTTP服务器
// 负责路由装配、中间件链和服务生命周期管理
package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/weisyn/streamgate/internal/api/http/middleware"
	"github.com/weisyn/streamgate/internal/api/jsonrpc"
	"github.com/weisyn/streamgate/internal/config"
)

// Server 网关HTTP服务器
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	options    *config.Options
	logger     *zap.Logger
	rpc        *jsonrpc.Server
}

// NewServer 创建HTTP服务器并注册fx生命周期钩子
func NewServer(
	lifecycle fx.Lifecycle,
	options *config.Options,
	logger *zap.Logger,
	rpc *jsonrpc.Server,
) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	server := &Server{
		router:  router,
		options: options,
		logger:  logger,
		rpc:     rpc,
	}
	server.setupRoutes()

	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return server.Start()
		},
		OnStop: func(ctx context.Context) error {
			return server.Stop(ctx)
		},
	})

	return server
}

// Router 返回gin路由引擎（测试用）
func (s *Server) Router() *gin.Engine {
	return s.router
}

// setupRoutes 装配中间件链和所有端点
func (s *Server) setupRoutes() {
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.NewRequestID().Middleware())
	s.router.Use(middleware.NewLogger(s.logger).Middleware())
	s.router.Use(middleware.NewMetrics().Middleware())

	// RPC端点（一元 + 流式）
	s.rpc.RegisterRoutes(s.router)

	// 健康检查端点
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"methods": len(s.rpc.Registry().Methods()),
			"streams": len(s.rpc.StreamManager().ActiveStreams()),
		})
	})

	// Prometheus指标端点
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// Start 启动HTTP服务
func (s *Server) Start() error {
	addr := s.options.ListenAddr()

	s.httpServer = &http.Server{
		Addr:        addr,
		Handler:     s.router,
		ReadTimeout: s.options.HTTP.ReadTimeout,
		// 流式响应的寿命由流超时控制，这里不设WriteTimeout
	}

	go func() {
		s.logger.Info("HTTP server listening", zap.String("addr", addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server failed", zap.Error(err))
		}
	}()

	return nil
}

// Stop 优雅停止HTTP服务
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("HTTP server shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}
