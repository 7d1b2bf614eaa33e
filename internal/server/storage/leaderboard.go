package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/palemoky/cartas-online/internal/game/role"
	"github.com/palemoky/cartas-online/internal/game/room"
)

const (
	// Redis key
	playerStatsKey    = "player:stats:"
	leaderboardKey    = "leaderboard:score"
	dailyLeaderboard  = "leaderboard:daily:"
	weeklyLeaderboard = "leaderboard:weekly:"
)

// 排行榜类型
const (
	LeaderboardTotal  = "total"
	LeaderboardDaily  = "daily"
	LeaderboardWeekly = "weekly"
)

// PlayerStats 玩家统计数据，按玩家名字（不区分大小写）汇总
type PlayerStats struct {
	Key        string `json:"key"`
	PlayerName string `json:"player_name"`

	TotalDeals int `json:"total_deals"` // 完成的手数

	// 各身份次数
	Presidente     int `json:"presidente"`
	Vicepresidente int `json:"vicepresidente"`
	Neutral        int `json:"neutral"`
	Viceculo       int `json:"viceculo"`
	Culo           int `json:"culo"`

	Score int `json:"score"`

	// 连续当总统的次数
	CurrentStreak int `json:"current_streak"`
	MaxStreak     int `json:"max_streak"`

	LastPlayedAt int64 `json:"last_played_at"`
	CreatedAt    int64 `json:"created_at"`
}

// 积分规则
const (
	ScorePresidente     = 30
	ScoreVicepresidente = 15
	ScoreNeutral        = 5
	ScoreViceculo       = -5
	ScoreCulo           = -15

	// 连任加成
	StreakBonus3  = 5
	StreakBonus5  = 10
	StreakBonus10 = 20
)

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	Rank          int     `json:"rank"`
	PlayerName    string  `json:"player_name"`
	Score         int     `json:"score"`
	Presidente    int     `json:"presidente"`
	Culo          int     `json:"culo"`
	TotalDeals    int     `json:"total_deals"`
	PresidentRate float64 `json:"president_rate"`
}

// LeaderboardManager 排行榜管理器
type LeaderboardManager struct {
	redis *redis.Client
	now   func() time.Time
}

// NewLeaderboardManager 创建排行榜管理器
func NewLeaderboardManager(client *redis.Client) *LeaderboardManager {
	return &LeaderboardManager{redis: client, now: time.Now}
}

// statsKey 玩家名字归一化后作为统计的主键
func statsKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// GetPlayerStats 获取玩家统计，没有记录时返回 nil
func (lm *LeaderboardManager) GetPlayerStats(ctx context.Context, name string) (*PlayerStats, error) {
	data, err := lm.redis.Get(ctx, playerStatsKey+statsKey(name)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var stats PlayerStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// SavePlayerStats 保存玩家统计
func (lm *LeaderboardManager) SavePlayerStats(ctx context.Context, stats *PlayerStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return lm.redis.Set(ctx, playerStatsKey+stats.Key, data, 0).Err()
}

func (lm *LeaderboardManager) getOrCreateStats(ctx context.Context, name string) (*PlayerStats, error) {
	stats, err := lm.GetPlayerStats(ctx, name)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		stats = &PlayerStats{
			Key:        statsKey(name),
			PlayerName: name,
			CreatedAt:  lm.now().Unix(),
		}
	}
	return stats, nil
}

// updateRoleStats 更新身份次数并返回基础积分变化
func updateRoleStats(stats *PlayerStats, r room.Role) int {
	switch r {
	case room.RolePresidente:
		stats.Presidente++
		return ScorePresidente
	case room.RoleVicepresidente:
		stats.Vicepresidente++
		return ScoreVicepresidente
	case room.RoleViceculo:
		stats.Viceculo++
		return ScoreViceculo
	case room.RoleCulo:
		stats.Culo++
		return ScoreCulo
	default:
		stats.Neutral++
		return ScoreNeutral
	}
}

// updateStreak 连续获得总统时累加，否则清零
func updateStreak(stats *PlayerStats, r room.Role) {
	if r == room.RolePresidente {
		stats.CurrentStreak++
	} else {
		stats.CurrentStreak = 0
	}
	stats.MaxStreak = max(stats.MaxStreak, stats.CurrentStreak)
}

// calculateStreakBonus 计算连任加成
func calculateStreakBonus(streak int) int {
	switch {
	case streak >= 10:
		return StreakBonus10
	case streak >= 5:
		return StreakBonus5
	case streak >= 3:
		return StreakBonus3
	default:
		return 0
	}
}

// RecordResult 记录一名玩家在一手牌中的身份
func (lm *LeaderboardManager) RecordResult(ctx context.Context, name string, r room.Role) error {
	stats, err := lm.getOrCreateStats(ctx, name)
	if err != nil {
		return err
	}

	stats.PlayerName = strings.TrimSpace(name)
	stats.TotalDeals++
	stats.LastPlayedAt = lm.now().Unix()

	scoreChange := updateRoleStats(stats, r)
	updateStreak(stats, r)
	scoreChange += calculateStreakBonus(stats.CurrentStreak)
	stats.Score = max(0, stats.Score+scoreChange)

	if err := lm.SavePlayerStats(ctx, stats); err != nil {
		return err
	}
	return lm.UpdateLeaderboard(ctx, stats)
}

// RecordDeal 记录一手牌的最终排名
func (lm *LeaderboardManager) RecordDeal(ctx context.Context, standings []role.Standing) error {
	for _, s := range standings {
		if err := lm.RecordResult(ctx, s.Name, s.Role); err != nil {
			return fmt.Errorf("记录 %s 的成绩失败: %w", s.Name, err)
		}
	}
	return nil
}

func (lm *LeaderboardManager) dailyKey() string {
	return dailyLeaderboard + lm.now().Format("2006-01-02")
}

func (lm *LeaderboardManager) weeklyKey() string {
	year, week := lm.now().ISOWeek()
	return fmt.Sprintf("%s%d-W%02d", weeklyLeaderboard, year, week)
}

// UpdateLeaderboard 更新总榜、日榜和周榜
func (lm *LeaderboardManager) UpdateLeaderboard(ctx context.Context, stats *PlayerStats) error {
	member := redis.Z{Score: float64(stats.Score), Member: stats.Key}

	_, err := lm.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, leaderboardKey, member)

		daily := lm.dailyKey()
		pipe.ZAdd(ctx, daily, member)
		pipe.Expire(ctx, daily, 48*time.Hour)

		weekly := lm.weeklyKey()
		pipe.ZAdd(ctx, weekly, member)
		pipe.Expire(ctx, weekly, 8*24*time.Hour)
		return nil
	})
	return err
}

// GetLeaderboard 获取排行榜，kind 为 total、daily 或 weekly
func (lm *LeaderboardManager) GetLeaderboard(ctx context.Context, kind string, limit int) ([]*LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	key := leaderboardKey
	switch kind {
	case LeaderboardDaily:
		key = lm.dailyKey()
	case LeaderboardWeekly:
		key = lm.weeklyKey()
	}

	results, err := lm.redis.ZRevRangeWithScores(ctx, key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]*LeaderboardEntry, 0, len(results))
	for i, result := range results {
		member, ok := result.Member.(string)
		if !ok {
			continue
		}
		stats, err := lm.GetPlayerStats(ctx, member)
		if err != nil || stats == nil {
			continue
		}

		rate := 0.0
		if stats.TotalDeals > 0 {
			rate = float64(stats.Presidente) / float64(stats.TotalDeals) * 100
		}
		entries = append(entries, &LeaderboardEntry{
			Rank:          i + 1,
			PlayerName:    stats.PlayerName,
			Score:         int(result.Score),
			Presidente:    stats.Presidente,
			Culo:          stats.Culo,
			TotalDeals:    stats.TotalDeals,
			PresidentRate: rate,
		})
	}
	return entries, nil
}

// GetPlayerRank 获取玩家在总榜的排名，未上榜返回 -1
func (lm *LeaderboardManager) GetPlayerRank(ctx context.Context, name string) (int64, error) {
	rank, err := lm.redis.ZRevRank(ctx, leaderboardKey, statsKey(name)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return -1, nil
		}
		return -1, err
	}
	return rank + 1, nil
}
