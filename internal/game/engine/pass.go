package engine

import (
	"slices"

	"github.com/palemoky/cartas-online/internal/apperrors"
	"github.com/palemoky/cartas-online/internal/game/room"
	"github.com/palemoky/cartas-online/internal/game/rule"
)

// PassResult 过牌结果
type PassResult struct {
	Room        *room.Room
	Soft        bool // 桌面最上面是自己的牌，只把回合交给下一位
	RoundClosed bool
}

// Pass 玩家过牌
func (e *Engine) Pass(r *room.Room, playerID string) (*PassResult, error) {
	if r.Status != room.StatusPlaying {
		return nil, apperrors.ErrGameNotStart
	}
	if r.Player(playerID) == nil {
		return nil, apperrors.ErrNotInRoom
	}
	if !r.TurnsStarted {
		return nil, apperrors.ErrTurnsNotStart
	}
	if r.CurrentTurnPlayerID != playerID {
		return nil, apperrors.ErrNotYourTurn
	}
	if r.RoundAwaitingLead {
		return nil, apperrors.ErrMustPlay
	}

	next := r.Clone()
	next.UpdatedAt = e.now()
	return applyPass(next, playerID), nil
}

// applyPass 在副本上执行过牌
func applyPass(r *room.Room, playerID string) *PassResult {
	result := &PassResult{Room: r}

	if r.LastTopPlayedBy == playerID {
		result.Soft = true
		active := activePlayers(r)
		r.RoundActivePlayerIDs = active
		r.CurrentTurnPlayerID = rotate(active, playerID, 1)
		return result
	}

	active := activePlayers(r)
	idx := slices.Index(active, playerID)
	if idx != -1 {
		active = slices.Delete(active, idx, idx+1)
	} else {
		idx = 0
	}
	r.RoundActivePlayerIDs = active

	if len(active) <= 1 {
		leader := playerID
		if len(active) == 1 {
			leader = active[0]
		}
		closeRound(r, leader)
		result.RoundClosed = true
		return result
	}

	r.CurrentTurnPlayerID = active[idx%len(active)]
	return result
}

// AutoPass 读取状态时调用：当前玩家无法压住桌面时替他过牌。
// 每次最多过一次牌；没有发生变化时返回 false，调用方无需写回。
func (e *Engine) AutoPass(r *room.Room) (*PassResult, bool) {
	if !e.RulesFor(r.GameType).AutoPass || !mustAutoPass(r) {
		return nil, false
	}
	next := r.Clone()
	next.UpdatedAt = e.now()
	return applyPass(next, r.CurrentTurnPlayerID), true
}

// mustAutoPass 当前玩家是否处在必须过牌的局面
func mustAutoPass(r *room.Room) bool {
	if r.Status != room.StatusPlaying || !r.TurnsStarted || r.CurrentTurnPlayerID == "" {
		return false
	}
	if r.RoundAwaitingLead || r.RoundTopValue == nil {
		return false
	}
	player := r.Player(r.CurrentTurnPlayerID)
	if player == nil {
		return false
	}
	return !rule.CanBeat(player.Hand, r.RoundComboSize, *r.RoundTopValue)
}

// CanAct 玩家当前是否有合法的出牌
func CanAct(r *room.Room, playerID string) bool {
	if r.Status != room.StatusPlaying || r.CurrentTurnPlayerID != playerID {
		return false
	}
	player := r.Player(playerID)
	if player == nil || len(player.Hand) == 0 {
		return false
	}
	if !hasTop(r) {
		return true
	}
	return rule.CanBeat(player.Hand, r.RoundComboSize, *r.RoundTopValue)
}
