package engine

import (
	"slices"

	"github.com/palemoky/cartas-online/internal/apperrors"
	"github.com/palemoky/cartas-online/internal/game/card"
	"github.com/palemoky/cartas-online/internal/game/role"
	"github.com/palemoky/cartas-online/internal/game/room"
)

// openingCard 首出必须包含的牌
var openingCard = card.Card{Suit: card.Bastos, Value: 3}

// DealOptions 发牌参数
type DealOptions struct {
	CardsPerPlayer int           // 0 表示使用默认值
	GameType       room.GameType // 空值按 juego1 处理
	DealAll        *bool         // nil 表示使用玩法默认值
}

// DealResult 发牌结果
type DealResult struct {
	Room           *room.Room
	CardsPerPlayer int
	Transfers      []role.Transfer
	Leader         string // 上一手的屁股，没有身份时为空
}

// StartDeal 开始新的一手牌
func (e *Engine) StartDeal(r *room.Room, opts DealOptions) (*DealResult, error) {
	if r.Status == room.StatusPlaying {
		return nil, apperrors.ErrGameStarted
	}
	n := len(r.Players)
	if n < e.settings.MinPlayers {
		return nil, apperrors.ErrNotEnoughPlay.WithMessage("至少需要 %d 名玩家，当前 %d 名", e.settings.MinPlayers, n)
	}

	gameType := opts.GameType
	if gameType == "" {
		gameType = room.GameTypeA
	}
	rules := e.RulesFor(gameType)

	dealAll := rules.DealAll
	if opts.DealAll != nil {
		dealAll = *opts.DealAll
	}

	deck := e.newDeck()
	perPlayer := len(deck) / n
	dealt := len(deck)
	if !dealAll {
		requested := opts.CardsPerPlayer
		if requested == 0 {
			requested = e.settings.CardsPerPlayer
		}
		perPlayer = min(requested, len(deck)/n)
		if perPlayer <= 0 {
			return nil, apperrors.ErrNotEnoughCards
		}
		dealt = perPlayer * n
	}

	next := r.Clone()
	prevOrder := slices.Clone(next.FinishedOrder)

	if rules.OpeningThreeOfBastos && dealt < len(deck) {
		ensureDealt(deck, openingCard, dealt)
	}
	for _, p := range next.Players {
		p.Hand = make([]card.Card, 0, perPlayer+1)
	}
	for i, c := range deck[:dealt] {
		p := next.Players[i%n]
		p.Hand = append(p.Hand, c)
	}
	next.CurrentDeck = slices.Clone(deck[dealt:])

	result := &DealResult{Room: next, CardsPerPlayer: perPlayer}

	next.Roles = map[string]room.Role{}
	if rules.RoleExchange && role.CompleteOrder(r) {
		roles := role.Resolve(prevOrder)
		transfers, err := role.Apply(next, roles)
		if err != nil {
			return nil, apperrors.ErrInternal.WithMessage("换牌失败: %v", err)
		}
		next.Roles = roles
		result.Transfers = transfers
		if culo, ok := role.Holder(roles, room.RoleCulo); ok {
			result.Leader = culo
		}
	}

	next.Status = room.StatusPlaying
	next.GameType = gameType
	next.DiscardPile = nil
	next.ClearedPile = nil
	next.TurnsStarted = false
	next.RoundNumber++
	next.RoundActivePlayerIDs = next.PlayerIDs()
	next.RoundAwaitingLead = true
	next.RoundComboSize = 1
	next.RoundTopValue = nil
	next.LastTopPlayedBy = ""
	next.FinishedOrder = nil
	next.CurrentTurnPlayerID = result.Leader
	next.UpdatedAt = e.now()

	return result, nil
}

// ensureDealt 部分发牌时保证某张牌落在发出去的前 dealt 张中
func ensureDealt(deck card.Deck, c card.Card, dealt int) {
	idx := slices.Index(deck, c)
	if idx >= dealt {
		deck[idx], deck[dealt-1] = deck[dealt-1], deck[idx]
	}
}
