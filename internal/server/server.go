package server

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/palemoky/cartas-online/internal/config"
	"github.com/palemoky/cartas-online/internal/logger"
	"github.com/palemoky/cartas-online/internal/server/handler"
	"github.com/palemoky/cartas-online/internal/server/session"
)

// Deps 服务器依赖
type Deps struct {
	Manager     *session.Manager
	Hub         *Hub                // 为 nil 时新建，此时 Manager 不会向它推送
	Leaderboard handler.Leaderboard // 可以为 nil
}

// Server HTTP 服务器：JSON 接口、健康检查和房间推送
type Server struct {
	config   *config.Config
	manager  *session.Manager
	hub      *Hub
	handler  *handler.Handler
	upgrader websocket.Upgrader

	// 安全组件
	access *AccessPolicy
	limits *requestLimits

	httpServer *http.Server

	// 维护模式
	maintenance atomic.Bool
}

// NewServer 创建服务器实例
func NewServer(cfg *config.Config, deps Deps) *Server {
	hub := deps.Hub
	if hub == nil {
		hub = NewHub()
	}

	s := &Server{
		config:  cfg,
		manager: deps.Manager,
		hub:     hub,
		handler: handler.NewHandler(handler.HandlerDeps{
			Manager:     deps.Manager,
			Leaderboard: deps.Leaderboard,
		}),
		access: NewAccessPolicy(cfg.Server),
		limits: newRequestLimits(cfg.Server.RateLimit),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.access.OriginAllowed,
	}

	s.httpServer = &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second, // 防止 Slowloris 攻击
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	rl := cfg.Server.RateLimit
	logger.L().Infof("🔒 安全配置: IP 突发=%d 持续=%d/min, 建房=%d/min, 座位=%d/s, 允许来源=%v",
		rl.MaxPerSecond, rl.MaxPerMinute, rl.CreatePerMinute, rl.SeatPerSecond, cfg.Server.AllowedOrigins)

	return s
}

// Hub 房间推送中心
func (s *Server) Hub() *Hub { return s.hub }

// Routes 组装全部路由
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	s.handler.Register(mux)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ws/rooms/{code}", s.handleWebSocket)
	return s.guard(mux)
}
