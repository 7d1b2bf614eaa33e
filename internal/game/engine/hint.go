package engine

import (
	"slices"

	"github.com/palemoky/cartas-online/internal/apperrors"
	"github.com/palemoky/cartas-online/internal/game/card"
	"github.com/palemoky/cartas-online/internal/game/room"
	"github.com/palemoky/cartas-online/internal/game/rule"
)

// Hint 出牌提示：首出给权杖 3，领出给最小的单张，跟牌给能压住的最小组合。
// 还没轮到或无牌可出时返回 nil。不修改房间。
func (e *Engine) Hint(r *room.Room, playerID string) ([]card.Card, error) {
	if r.Status != room.StatusPlaying {
		return nil, apperrors.ErrGameNotStart
	}
	player := r.Player(playerID)
	if player == nil {
		return nil, apperrors.ErrNotInRoom
	}
	if len(player.Hand) == 0 {
		return nil, nil
	}

	rules := e.RulesFor(r.GameType)
	if rules.OpeningThreeOfBastos && !r.TurnsStarted && r.CurrentTurnPlayerID == "" {
		if slices.Contains(player.Hand, openingCard) {
			return []card.Card{openingCard}, nil
		}
		return nil, nil
	}
	if r.CurrentTurnPlayerID != "" && r.CurrentTurnPlayerID != playerID {
		return nil, nil
	}

	if !hasTop(r) {
		return rule.Lowest(player.Hand, 1), nil
	}
	return rule.FindSmallestBeatingCards(player.Hand, r.RoundComboSize, *r.RoundTopValue), nil
}
