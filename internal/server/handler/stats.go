package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/palemoky/cartas-online/internal/apperrors"
	"github.com/palemoky/cartas-online/internal/logger"
	"github.com/palemoky/cartas-online/internal/protocol"
	"github.com/palemoky/cartas-online/internal/server/storage"
)

// 排行榜单次最多返回的条目
const maxLeaderboardLimit = 50

// LeaderboardResponse 排行榜
type LeaderboardResponse struct {
	Type    string                      `json:"type"`
	Entries []*storage.LeaderboardEntry `json:"entries"`
}

// PlayerStatsResponse 个人统计
type PlayerStatsResponse struct {
	Stats         *storage.PlayerStats `json:"stats"`
	Rank          int64                `json:"rank"` // 未上榜为 -1
	PresidentRate float64              `json:"president_rate"`
}

// --- 排行榜处理 ---

func (h *Handler) leaderboardDisabled(w http.ResponseWriter) bool {
	if h.leaderboard != nil {
		return false
	}
	WriteJSON(w, http.StatusServiceUnavailable, protocol.ErrorPayload{
		Code:     protocol.ErrCodeUnavailable,
		Category: protocol.CategoryUnavailable,
		Message:  "排行榜需要 redis 存储",
	})
	return true
}

// handleGetLeaderboard 获取排行榜，?type=total|daily|weekly&limit=N
func (h *Handler) handleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	if h.leaderboardDisabled(w) {
		return
	}

	query := r.URL.Query()
	kind := query.Get("type")
	switch kind {
	case "":
		kind = storage.LeaderboardTotal
	case storage.LeaderboardTotal, storage.LeaderboardDaily, storage.LeaderboardWeekly:
	default:
		WriteError(w, apperrors.ErrInvalidRequest.WithMessage("未知的排行榜类型: %s", kind))
		return
	}

	limit := 10
	if v := query.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			WriteError(w, apperrors.ErrInvalidRequest.WithMessage("limit 必须是整数"))
			return
		}
		limit = n
	}
	// 限制请求数量
	if limit <= 0 || limit > maxLeaderboardLimit {
		limit = 10
	}

	entries, err := h.leaderboard.GetLeaderboard(r.Context(), kind, limit)
	if err != nil {
		logger.L().WithError(err).Error("❌ 获取排行榜失败")
		WriteError(w, err)
		return
	}
	if entries == nil {
		entries = []*storage.LeaderboardEntry{}
	}
	WriteJSON(w, http.StatusOK, LeaderboardResponse{Type: kind, Entries: entries})
}

// handleGetStats 获取个人统计，没有记录时返回空数据
func (h *Handler) handleGetStats(w http.ResponseWriter, r *http.Request) {
	if h.leaderboardDisabled(w) {
		return
	}

	name := strings.TrimSpace(r.PathValue("name"))
	if name == "" {
		WriteError(w, apperrors.ErrInvalidRequest.WithMessage("缺少玩家名字"))
		return
	}

	ctx := r.Context()
	stats, err := h.leaderboard.GetPlayerStats(ctx, name)
	if err != nil {
		logger.L().WithError(err).Errorf("❌ 获取 %s 的统计失败", name)
		WriteError(w, err)
		return
	}
	if stats == nil {
		WriteJSON(w, http.StatusOK, PlayerStatsResponse{
			Stats: &storage.PlayerStats{PlayerName: name},
			Rank:  -1,
		})
		return
	}

	rank, err := h.leaderboard.GetPlayerRank(ctx, name)
	if err != nil {
		rank = -1
	}
	rate := 0.0
	if stats.TotalDeals > 0 {
		rate = float64(stats.Presidente) / float64(stats.TotalDeals) * 100
	}
	WriteJSON(w, http.StatusOK, PlayerStatsResponse{Stats: stats, Rank: rank, PresidentRate: rate})
}
