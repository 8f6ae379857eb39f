package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/phuslu/log"

	"PatternRadar/pkg/config"
)

// Server API服务器
type Server struct {
	router *gin.Engine
	srv    *http.Server
}

// NewServer 创建新的API服务器
func NewServer(cfg *config.Config) *Server {
	if cfg.App.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger())

	srv := &http.Server{
		Addr:         ":" + cfg.API.Port,
		Handler:      router,
		ReadTimeout:  cfg.API.ReadTimeout,
		WriteTimeout: cfg.API.WriteTimeout,
	}

	return &Server{
		router: router,
		srv:    srv,
	}
}

// Router 路由，供测试使用
func (s *Server) Router() *gin.Engine { return s.router }

// SetupRoutes 设置路由
func (s *Server) SetupRoutes(h *Handlers) {
	s.router.GET("/health", h.HealthCheck)
	s.router.GET("/ready", h.ReadinessCheck)

	v1 := s.router.Group("/api/v1")
	{
		// 图形分析
		v1.POST("/analyze", h.Analyze)
		v1.POST("/analyze/batch", h.BatchAnalyze)
		v1.POST("/classify", h.Classify)
		v1.POST("/archetype", h.Archetype)
		v1.GET("/quotes", h.GetQuotes)

		// 盘中监控
		v1.POST("/patterns/detect", h.DetectPattern)
		v1.POST("/patterns/analyze", h.AnalyzePattern)
		v1.POST("/patterns/batch", h.BatchDetect)

		// 板块与推荐
		v1.GET("/sectors/hot", h.HotSectors)
		v1.POST("/recommend", h.Recommend)

		// 自选监控清单
		v1.GET("/watchlist", h.ListWatchlist)
		v1.POST("/watchlist", h.CreateWatchItem)
		v1.GET("/watchlist/:id", h.GetWatchItem)
		v1.PUT("/watchlist/:id", h.UpdateWatchItem)
		v1.DELETE("/watchlist/:id", h.DeleteWatchItem)
	}
}

// Start 启动服务器并阻塞到 ctx 结束后优雅关闭
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.srv.Addr).Msg("API服务器启动")
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("正在关闭服务器...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Msg("服务器已关闭")
	return nil
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("请求完成")
	}
}
