package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/palemoky/cartas-online/internal/apperrors"
	"github.com/palemoky/cartas-online/internal/logger"
	"github.com/palemoky/cartas-online/internal/protocol"
	"github.com/palemoky/cartas-online/internal/server/session"
	"github.com/palemoky/cartas-online/internal/server/storage"
)

// MaxBodyBytes 请求体上限
const MaxBodyBytes = 64 << 10

// Leaderboard 排行榜查询，只有 redis 存储时启用
type Leaderboard interface {
	GetLeaderboard(ctx context.Context, kind string, limit int) ([]*storage.LeaderboardEntry, error)
	GetPlayerStats(ctx context.Context, name string) (*storage.PlayerStats, error)
	GetPlayerRank(ctx context.Context, name string) (int64, error)
}

// HandlerDeps 处理器依赖
type HandlerDeps struct {
	Manager     *session.Manager
	Leaderboard Leaderboard // 可以为 nil
}

// Handler HTTP JSON 处理器
type Handler struct {
	manager     *session.Manager
	leaderboard Leaderboard
}

// NewHandler 创建处理器
func NewHandler(deps HandlerDeps) *Handler {
	return &Handler{
		manager:     deps.Manager,
		leaderboard: deps.Leaderboard,
	}
}

// Register 注册路由
func (h *Handler) Register(mux *http.ServeMux) {
	// 房间
	mux.HandleFunc("POST /api/rooms", h.handleCreateRoom)
	mux.HandleFunc("GET /api/rooms", h.handleListRooms)
	mux.HandleFunc("POST /api/rooms/{code}/join", h.handleJoinRoom)
	mux.HandleFunc("POST /api/rooms/{code}/leave", h.handleLeaveRoom)
	mux.HandleFunc("POST /api/rooms/{code}/end", h.handleEndMatch)

	// 游戏
	mux.HandleFunc("POST /api/rooms/{code}/start", h.handleStartDeal)
	mux.HandleFunc("POST /api/rooms/{code}/play", h.handlePlay)
	mux.HandleFunc("POST /api/rooms/{code}/pass", h.handlePass)
	mux.HandleFunc("GET /api/rooms/{code}/state", h.handleGetState)
	mux.HandleFunc("GET /api/rooms/{code}/hint", h.handleHint)

	// 排行榜
	mux.HandleFunc("GET /api/leaderboard", h.handleGetLeaderboard)
	mux.HandleFunc("GET /api/players/{name}/stats", h.handleGetStats)
}

// decodeJSON 解析请求体，空请求体按零值处理
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return apperrors.ErrInvalidRequest.WithMessage("请求体不是有效的 JSON: %v", err)
	}
	return nil
}

func requirePlayerID(id string) error {
	if id == "" {
		return apperrors.ErrInvalidRequest.WithMessage("缺少 playerId")
	}
	return nil
}

// WriteJSON 写入 JSON 响应
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.L().WithError(err).Warn("写入响应失败")
	}
}

// StatusFor 错误大类对应的 HTTP 状态码
func StatusFor(err *apperrors.GameError) int {
	switch err.Kind() {
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindInvalidState, apperrors.KindPrecondition:
		return http.StatusConflict
	case apperrors.KindRuleViolation:
		return http.StatusUnprocessableEntity
	case apperrors.KindInvalidRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// WriteError 把错误写成 {code, category, message}；非 GameError 一律按内部错误处理
func WriteError(w http.ResponseWriter, err error) {
	gameErr := apperrors.AsGameError(err)
	WriteJSON(w, StatusFor(gameErr), protocol.ErrorPayload{
		Code:     gameErr.Code,
		Category: gameErr.Category,
		Message:  gameErr.Message,
	})
}

// respond 统一处理命令结果
func respond[T any](w http.ResponseWriter, status int, resp T, err error) {
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, status, resp)
}
