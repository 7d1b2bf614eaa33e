package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/cartas-online/internal/apperrors"
	"github.com/palemoky/cartas-online/internal/game/card"
	"github.com/palemoky/cartas-online/internal/game/role"
	"github.com/palemoky/cartas-online/internal/game/room"
	"github.com/palemoky/cartas-online/internal/game/rule"
)

func TestStartDeal_FixedCount(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	r := lobby(4)

	res, err := e.StartDeal(r, DealOptions{GameType: room.GameTypeA})
	require.NoError(t, err)
	next := res.Room

	assert.Equal(t, 7, res.CardsPerPlayer)
	for _, p := range next.Players {
		assert.Len(t, p.Hand, 7)
	}
	assert.Len(t, next.CurrentDeck, 12)
	assert.Equal(t, room.StatusPlaying, next.Status)
	assert.Equal(t, room.GameTypeA, next.GameType)
	assert.False(t, next.TurnsStarted)
	assert.True(t, next.RoundAwaitingLead)
	assert.Empty(t, next.CurrentTurnPlayerID)
	assert.Equal(t, 1, next.RoundNumber)
	assert.Equal(t, next.PlayerIDs(), next.RoundActivePlayerIDs)
	assert.Equal(t, PhaseNoTurns, PhaseOf(next))
	assert.NoError(t, room.CheckIntegrity(next))

	assert.NotContains(t, next.CurrentDeck, openingCard, "the opening card must always be dealt")

	// 原房间不变
	assert.Equal(t, room.StatusWaiting, r.Status)
	assert.Empty(t, r.Players[0].Hand)
}

func TestStartDeal_DealAllRoundRobin(t *testing.T) {
	t.Parallel()

	e := newTestEngine(WithDeckSource(card.NewDeck))
	res, err := e.StartDeal(lobby(4), DealOptions{GameType: room.GameTypeB})
	require.NoError(t, err)

	deck := card.NewDeck()
	for i, p := range res.Room.Players {
		require.Len(t, p.Hand, 10)
		assert.Equal(t, deck[i], p.Hand[0])
		assert.Equal(t, deck[i+4], p.Hand[1])
	}
	assert.Empty(t, res.Room.CurrentDeck)
	assert.NoError(t, room.CheckIntegrity(res.Room))
}

func TestStartDeal_Counts(t *testing.T) {
	t.Parallel()

	dealAll := true
	tests := []struct {
		name      string
		players   int
		opts      DealOptions
		perPlayer int
		deckLeft  int
	}{
		{"capped at deck size", 5, DealOptions{CardsPerPlayer: 20}, 8, 0},
		{"explicit count", 4, DealOptions{CardsPerPlayer: 3}, 3, 28},
		{"deal all on ruleset A", 6, DealOptions{DealAll: &dealAll}, 6, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res, err := newTestEngine().StartDeal(lobby(tt.players), tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.perPlayer, res.CardsPerPlayer)
			assert.Len(t, res.Room.CurrentDeck, tt.deckLeft)
			assert.NoError(t, room.CheckIntegrity(res.Room))
		})
	}
}

func TestStartDeal_Rejections(t *testing.T) {
	t.Parallel()

	e := newTestEngine()

	_, err := e.StartDeal(lobby(3), DealOptions{})
	assert.ErrorIs(t, err, apperrors.ErrNotEnoughPlay)

	_, err = e.StartDeal(lobby(4), DealOptions{CardsPerPlayer: -2})
	assert.ErrorIs(t, err, apperrors.ErrNotEnoughCards)

	playing := lobby(4)
	playing.Status = room.StatusPlaying
	_, err = e.StartDeal(playing, DealOptions{})
	assert.ErrorIs(t, err, apperrors.ErrGameStarted)
}

func TestStartDeal_RoleExchange(t *testing.T) {
	t.Parallel()

	dealAll := true
	e := newTestEngine(WithDeckSource(card.NewDeck))

	prev := lobby(4)
	prev.Status = room.StatusFinished
	prev.RoundNumber = 7
	prev.FinishedOrder = []string{"A", "B", "C", "D"}

	// 换牌前的手牌：未洗的牌轮流发给 A、B、C、D
	before := map[string][]card.Card{}
	for i, cc := range card.NewDeck() {
		id := seatIDs[i%4]
		before[id] = append(before[id], cc)
	}

	res, err := e.StartDeal(prev, DealOptions{GameType: room.GameTypeA, DealAll: &dealAll})
	require.NoError(t, err)
	next := res.Room

	assert.Equal(t, map[string]room.Role{
		"A": room.RolePresidente, "B": room.RoleVicepresidente, "C": room.RoleViceculo, "D": room.RoleCulo,
	}, next.Roles)

	presidente, culo := next.Player("A"), next.Player("D")
	for _, cc := range rule.Lowest(before["A"], 2) {
		assert.Contains(t, culo.Hand, cc)
		assert.NotContains(t, presidente.Hand, cc)
	}
	for _, cc := range rule.Highest(before["D"], 2) {
		assert.Contains(t, presidente.Hand, cc)
		assert.NotContains(t, culo.Hand, cc)
	}
	assert.Contains(t, next.Player("C").Hand, rule.Lowest(before["B"], 1)[0])
	assert.Contains(t, next.Player("B").Hand, rule.Highest(before["C"], 1)[0])
	assert.Len(t, res.Transfers, 4)

	assert.Equal(t, "D", next.CurrentTurnPlayerID)
	assert.Equal(t, "D", res.Leader)
	assert.True(t, next.RoundAwaitingLead)
	assert.False(t, next.TurnsStarted)
	assert.Empty(t, next.FinishedOrder)
	assert.Equal(t, 8, next.RoundNumber)
	assert.Equal(t, PhaseAwaitingLead, PhaseOf(next))
	require.NoError(t, room.CheckIntegrity(next))

	// 屁股领出不受权杖 3 的限制
	lead := rule.Highest(culo.Hand, 1)
	if rule.IsTopTwo(lead[0]) {
		lead = rule.Lowest(culo.Hand, 1)
	}
	played, err := e.Play(next, "D", lead, 0)
	require.NoError(t, err)
	assert.NoError(t, room.CheckIntegrity(played.Room))

	_, err = e.Play(next, "A", rule.Lowest(presidente.Hand, 1), 0)
	assert.ErrorIs(t, err, apperrors.ErrNotYourTurn)
}

func TestStartDeal_IncompleteOrderSkipsRoles(t *testing.T) {
	t.Parallel()

	prev := lobby(4)
	prev.Status = room.StatusFinished
	prev.FinishedOrder = []string{"A", "B"}

	res, err := newTestEngine().StartDeal(prev, DealOptions{})
	require.NoError(t, err)
	assert.Empty(t, res.Room.Roles)
	assert.Empty(t, res.Transfers)
	assert.Empty(t, res.Room.CurrentTurnPlayerID)
}

func TestStartDeal_RoleExchangeDisabled(t *testing.T) {
	t.Parallel()

	settings := DefaultSettings()
	rules := DefaultRules(room.GameTypeB)
	rules.RoleExchange = false
	settings.Rules[room.GameTypeB] = rules
	e := New(settings)

	prev := lobby(4)
	prev.Status = room.StatusFinished
	prev.FinishedOrder = []string{"A", "B", "C", "D"}

	res, err := e.StartDeal(prev, DealOptions{GameType: room.GameTypeB})
	require.NoError(t, err)
	assert.Empty(t, res.Room.Roles)
	assert.Empty(t, res.Leader)
	_, ok := role.Holder(res.Room.Roles, room.RoleCulo)
	assert.False(t, ok)
}
