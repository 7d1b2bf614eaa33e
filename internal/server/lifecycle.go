package server

import (
	"context"
	"errors"
	"net/http"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/palemoky/cartas-online/internal/logger"
	"github.com/palemoky/cartas-online/internal/protocol"
)

const (
	monitorInterval = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

// Run 启动服务器，ctx 结束后优雅关闭
func (s *Server) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.L().Infof("🚀 服务器启动在 http://%s (存储: %s, CPU核心数: %d)",
			s.httpServer.Addr, s.manager.Store().Backend(), runtime.NumCPU())
		if err := s.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	for _, t := range s.limits.all() {
		g.Go(func() error {
			t.Run(gctx)
			return nil
		})
	}
	g.Go(func() error {
		s.monitorStats(gctx, monitorInterval)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// monitorStats 定期记录服务器状态
func (s *Server) monitorStats(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.logStats()
		}
	}
}

func (s *Server) logStats() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	logger.L().Infof("📊 [监控] 订阅连接: %d | 订阅房间: %d | Goroutines: %d | 内存: %.2f MB",
		s.hub.SubscriberCount(),
		s.hub.RoomCount(),
		runtime.NumGoroutine(),
		float64(m.Alloc)/1024/1024)
}

// EnterMaintenanceMode 进入维护模式：停止创建新房间
func (s *Server) EnterMaintenanceMode() {
	if s.maintenance.Swap(true) {
		return
	}

	// 通知订阅者服务器即将关闭
	s.hub.Broadcast(protocol.NewErrorMessage(protocol.ErrCodeMaintenance, protocol.CategoryUnavailable))

	logger.L().Info("🔧 进入维护模式：停止新的房间创建")
}

// IsMaintenanceMode 检查是否在维护模式
func (s *Server) IsMaintenanceMode() bool {
	return s.maintenance.Load()
}

// Shutdown 关闭 HTTP 服务和所有推送连接；房间保存在存储里，不受影响
func (s *Server) Shutdown(ctx context.Context) error {
	s.EnterMaintenanceMode()

	err := s.httpServer.Shutdown(ctx)
	s.hub.CloseAll()

	logger.L().Info("服务器已关闭")
	return err
}
