package engine

import (
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/palemoky/cartas-online/internal/game/card"
	"github.com/palemoky/cartas-online/internal/game/room"
)

var seatIDs = []string{"A", "B", "C", "D", "E", "F"}

func c(s card.Suit, v card.Value) card.Card { return card.Card{Suit: s, Value: v} }

func fixedClock() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

func newTestEngine(opts ...Option) *Engine {
	return New(DefaultSettings(), append([]Option{WithClock(fixedClock)}, opts...)...)
}

// lobby 返回一个等待中的房间，座位依次为 A、B、C…
func lobby(n int) *room.Room {
	now := fixedClock()
	r := room.New("TEST01", &room.Player{ID: seatIDs[0], Name: seatIDs[0], JoinedAt: now}, now)
	for _, id := range seatIDs[1:n] {
		r.Players = append(r.Players, &room.Player{ID: id, Name: id, JoinedAt: now})
	}
	return r
}

// playingRoom 按给定手牌构造一手进行中的牌，其余的牌放进未发牌堆
func playingRoom(t *testing.T, gt room.GameType, hands ...[]card.Card) *room.Room {
	t.Helper()
	r := lobby(len(hands))
	held := map[card.Card]bool{}
	for i, hand := range hands {
		for _, cc := range hand {
			require.False(t, held[cc], "card %v dealt twice", cc)
			held[cc] = true
		}
		r.Players[i].Hand = slices.Clone(hand)
	}
	for _, cc := range card.NewDeck() {
		if !held[cc] {
			r.CurrentDeck = append(r.CurrentDeck, cc)
		}
	}
	r.Status = room.StatusPlaying
	r.GameType = gt
	r.TurnsStarted = true
	r.RoundNumber = 1
	r.RoundActivePlayerIDs = r.PlayerIDs()
	r.RoundAwaitingLead = true
	r.RoundComboSize = 1
	require.NoError(t, room.CheckIntegrity(r))
	return r
}

// inRound 把房间设为某位玩家刚刚打出 top 的局面
func inRound(t *testing.T, r *room.Room, by string, top []card.Card, turn string) {
	t.Helper()
	for _, cc := range top {
		idx := slices.Index(r.CurrentDeck, cc)
		require.NotEqual(t, -1, idx, "top card %v must come from the undealt pile", cc)
		r.CurrentDeck = slices.Delete(r.CurrentDeck, idx, idx+1)
	}
	r.DiscardPile = append(r.DiscardPile, top...)
	v := top[0].Value
	r.RoundTopValue = &v
	r.RoundComboSize = len(top)
	r.RoundAwaitingLead = false
	r.LastTopPlayedBy = by
	r.CurrentTurnPlayerID = turn
	require.NoError(t, room.CheckIntegrity(r))
}

// deckWithFront 返回一副未洗的牌，front 中的牌依次放在最前面
func deckWithFront(front ...card.Card) func() card.Deck {
	return func() card.Deck {
		deck := card.Deck(slices.Clone(front))
		for _, cc := range card.NewDeck() {
			if !slices.Contains(front, cc) {
				deck = append(deck, cc)
			}
		}
		return deck
	}
}
