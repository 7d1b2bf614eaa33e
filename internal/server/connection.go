package server

import (
	"net/http"
	"strings"

	"github.com/palemoky/cartas-online/internal/game/room"
	"github.com/palemoky/cartas-online/internal/logger"
	"github.com/palemoky/cartas-online/internal/protocol"
	"github.com/palemoky/cartas-online/internal/server/handler"
	"github.com/palemoky/cartas-online/internal/server/session"
)

func rejectJSON(w http.ResponseWriter, status, code int, category string) {
	handler.WriteJSON(w, status, protocol.ErrorPayload{
		Code:     code,
		Category: category,
		Message:  protocol.ErrorMessages[code],
	})
}

// guard 在路由前做 IP 过滤、来源验证、限流和维护模式检查
func (s *Server) guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)

		if !s.access.IPAllowed(ip) {
			logger.L().Warnf("🚫 IP %s 被名单拒绝", ip)
			rejectJSON(w, http.StatusForbidden, protocol.ErrCodeInvalidRequest, protocol.CategoryForbidden)
			return
		}

		if !s.access.OriginAllowed(r) {
			logger.L().Warnf("🚫 来源验证失败: %s (IP: %s)", r.Header.Get("Origin"), ip)
			rejectJSON(w, http.StatusForbidden, protocol.ErrCodeInvalidRequest, protocol.CategoryForbidden)
			return
		}
		if origin := r.Header.Get("Origin"); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Add("Vary", "Origin")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		// 健康检查不计入限流
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}
		if !s.limits.perIP.Allow(ip) {
			rejectJSON(w, http.StatusTooManyRequests, protocol.ErrCodeRateLimit, protocol.CategoryRateLimited)
			return
		}

		// 维护模式下不再创建房间，进行中的房间不受影响
		if s.IsMaintenanceMode() && r.Method == http.MethodPost && strings.TrimSuffix(r.URL.Path, "/") == "/api/rooms" {
			rejectJSON(w, http.StatusServiceUnavailable, protocol.ErrCodeMaintenance, protocol.CategoryUnavailable)
			return
		}

		if !s.limits.scoped(r, ip) {
			w.Header().Set("Retry-After", "1")
			rejectJSON(w, http.StatusTooManyRequests, protocol.ErrCodeRateLimit, protocol.CategoryRateLimited)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// handleWebSocket 订阅房间推送，连接建立后先发送一次当前快照
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ip := clientIP(r)
	code := room.NormalizeCode(r.PathValue("code"))

	current, err := s.manager.Store().Get(r.Context(), code)
	if err != nil {
		handler.WriteError(w, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.WithRoom(code).WithError(err).Warn("WebSocket 升级失败")
		return
	}

	sub := newSubscriber(s.hub, conn, code, ip)
	s.hub.register(sub)
	sub.SendMessage(protocol.MustNewMessage(protocol.MsgRoomState, session.RoomEvent{
		Event: "subscribed",
		Room:  current,
	}))

	logger.WithRoom(code).Debugf("✅ %s 订阅了房间推送", ip)

	// 启动订阅者读写协程
	go sub.WritePump()
	go sub.ReadPump()
}

// handleHealth 健康检查接口，附带存储后端和房间数
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	store := s.manager.Store()
	resp := protocol.HealthResponse{
		Status:         "ok",
		Storage:        store.Backend(),
		PollIntervalMs: int(s.config.Server.PollIntervalDuration().Milliseconds()),
	}

	rooms, err := store.List(r.Context())
	if err != nil {
		logger.L().WithError(err).Error("❌ 健康检查读取存储失败")
		resp.Status = "degraded"
		handler.WriteJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	resp.Rooms = len(rooms)
	handler.WriteJSON(w, http.StatusOK, resp)
}
