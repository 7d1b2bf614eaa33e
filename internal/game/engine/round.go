package engine

import (
	"slices"

	"github.com/palemoky/cartas-online/internal/game/room"
)

// closeRound 收轮：桌面的牌移入已收牌堆，由 leader 领出新的一轮
func closeRound(r *room.Room, leader string) {
	r.ClearedPile = append(r.ClearedPile, r.DiscardPile...)
	r.DiscardPile = nil
	r.LastTopPlayedBy = ""
	r.RoundAwaitingLead = true
	r.RoundTopValue = nil
	r.RoundComboSize = 1
	r.RoundNumber++
	r.RoundActivePlayerIDs = r.PlayersWithCards()
	r.CurrentTurnPlayerID = leader
	r.TurnsStarted = true
}

// activePlayers 本轮仍在争夺、且尚未出完的玩家
func activePlayers(r *room.Room) []string {
	active := r.RoundActivePlayerIDs
	if len(active) == 0 {
		active = r.PlayerIDs()
	}
	return slices.DeleteFunc(slices.Clone(active), r.IsFinished)
}

// rotate 从 playerID 开始在活跃玩家中前进 steps 个位置
func rotate(active []string, playerID string, steps int) string {
	if len(active) == 0 {
		return ""
	}
	pos := slices.Index(active, playerID)
	if pos == -1 {
		return active[0]
	}
	return active[(pos+steps)%len(active)]
}

// nextSeatWithCards 按座位顺序找 playerID 之后第一个仍有牌的玩家
func nextSeatWithCards(r *room.Room, playerID string, remaining []string) string {
	ids := r.PlayerIDs()
	start := slices.Index(ids, playerID)
	for step := 1; step <= len(ids); step++ {
		candidate := ids[(start+step)%len(ids)]
		if slices.Contains(remaining, candidate) {
			return candidate
		}
	}
	return ""
}
