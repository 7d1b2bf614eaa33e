package engine

import (
	"slices"

	"github.com/palemoky/cartas-online/internal/apperrors"
	"github.com/palemoky/cartas-online/internal/game/card"
	"github.com/palemoky/cartas-online/internal/game/room"
	"github.com/palemoky/cartas-online/internal/game/rule"
)

// Outcome 出牌后回合的走向
type Outcome int

const (
	OutcomeNextTurn     Outcome = iota // 正常轮转
	OutcomeTopTwo                      // 金币 2 收轮，同一玩家继续领出
	OutcomePlayerOut                   // 玩家出完手牌，下一位领出
	OutcomeDealFinished                // 只剩一人有牌，本手牌结束
	OutcomeNoBeat                      // 无人能压，收轮后同一玩家继续领出
)

var outcomeNames = map[Outcome]string{
	OutcomeNextTurn:     "next_turn",
	OutcomeTopTwo:       "top_two",
	OutcomePlayerOut:    "player_out",
	OutcomeDealFinished: "deal_finished",
	OutcomeNoBeat:       "no_beat",
}

func (o Outcome) String() string {
	return outcomeNames[o]
}

// PlayResult 出牌结果
type PlayResult struct {
	Room    *room.Room
	Play    rule.ParsedPlay
	Outcome Outcome
	Skipped bool // 打出与桌面相同的点数，跳过了下一位
}

// Play 玩家出牌。comboSize 为 0 表示按出牌张数。
func (e *Engine) Play(r *room.Room, playerID string, cards []card.Card, comboSize int) (*PlayResult, error) {
	if r.Status != room.StatusPlaying {
		return nil, apperrors.ErrGameNotStart
	}
	if r.Player(playerID) == nil {
		return nil, apperrors.ErrNotInRoom
	}
	if r.CurrentTurnPlayerID != "" && r.CurrentTurnPlayerID != playerID {
		return nil, apperrors.ErrNotYourTurn
	}
	if len(cards) == 0 {
		return nil, apperrors.ErrInvalidCards.WithMessage("%s", rule.ErrEmptyPlay.Error())
	}
	if !card.ContainsAll(r.Player(playerID).Hand, cards) {
		return nil, apperrors.ErrCardNotHeld
	}

	rules := e.RulesFor(r.GameType)
	if rules.OpeningThreeOfBastos && !r.TurnsStarted && r.CurrentTurnPlayerID == "" {
		if !card.AllSameValue(cards) || cards[0].Value != openingCard.Value || !slices.Contains(cards, openingCard) {
			return nil, apperrors.ErrInvalidOpening
		}
	}

	play, err := rule.ParsePlay(cards)
	if err != nil {
		return nil, apperrors.ErrInvalidCards.WithMessage("%s", err.Error())
	}

	leading := r.RoundAwaitingLead
	if !play.IsSpecial() {
		if leading {
			if play.Size > rules.MaxComboSize {
				return nil, apperrors.ErrInvalidCards.WithMessage("一次最多出 %d 张牌", rules.MaxComboSize)
			}
			if comboSize != 0 && comboSize != play.Size {
				return nil, apperrors.ErrInvalidCards.WithMessage("必须正好出 %d 张牌", comboSize)
			}
		} else {
			if play.Size != r.RoundComboSize {
				return nil, apperrors.ErrInvalidCards.WithMessage("必须出 %d 张牌", r.RoundComboSize)
			}
			if r.RoundTopValue != nil && !rule.MeetsTop(play, *r.RoundTopValue) {
				return nil, apperrors.ErrCannotBeat
			}
		}
	}

	next := r.Clone()
	next.UpdatedAt = e.now()
	result := &PlayResult{Room: next, Play: play}

	prevValue := next.RoundTopValue
	player := next.Player(playerID)
	player.Hand = card.RemoveCards(player.Hand, cards)
	next.DiscardPile = append(next.DiscardPile, cards...)
	next.LastTopPlayedBy = playerID

	value := play.Value
	if leading {
		next.RoundComboSize = play.Size
		next.RoundAwaitingLead = false
	}
	next.RoundTopValue = &value

	if play.IsSpecial() && len(player.Hand) > 0 {
		closeRound(next, playerID)
		result.Outcome = OutcomeTopTwo
		return result, nil
	}

	if len(player.Hand) == 0 && !next.IsFinished(playerID) {
		result.Outcome = shed(next, playerID)
		return result, nil
	}

	if rules.NoBeatShortCircuit && !play.IsSpecial() && hasTop(next) && !anyoneCanBeat(next, playerID) {
		closeRound(next, playerID)
		result.Outcome = OutcomeNoBeat
		return result, nil
	}

	next.TurnsStarted = true
	steps := 1
	if prevValue != nil && *prevValue == value {
		steps++
		result.Skipped = true
	}
	active := activePlayers(next)
	next.RoundActivePlayerIDs = active
	next.CurrentTurnPlayerID = rotate(active, playerID, steps)
	result.Outcome = OutcomeNextTurn
	return result, nil
}

// shed 玩家出完手牌：记入出完顺序，收轮并由下一位有牌的玩家领出
func shed(r *room.Room, playerID string) Outcome {
	r.FinishedOrder = append(r.FinishedOrder, playerID)
	remaining := r.PlayersWithCards()
	closeRound(r, nextSeatWithCards(r, playerID, remaining))

	if len(remaining) <= 1 {
		r.FinishedOrder = append(r.FinishedOrder, remaining...)
		r.Status = room.StatusFinished
		r.CurrentTurnPlayerID = ""
		r.RoundActivePlayerIDs = nil
		return OutcomeDealFinished
	}
	return OutcomePlayerOut
}

// hasTop 本轮桌面上是否有需要压的牌
func hasTop(r *room.Room) bool {
	return !r.RoundAwaitingLead && r.RoundTopValue != nil
}

// anyoneCanBeat 其他仍有牌的玩家中是否有人能压住当前回合
func anyoneCanBeat(r *room.Room, playerID string) bool {
	for _, id := range r.PlayersWithCards() {
		if id == playerID {
			continue
		}
		if rule.CanBeat(r.Player(id).Hand, r.RoundComboSize, *r.RoundTopValue) {
			return true
		}
	}
	return false
}
