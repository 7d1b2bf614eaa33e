package role

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/cartas-online/internal/game/card"
	"github.com/palemoky/cartas-online/internal/game/room"
)

func c(s card.Suit, v card.Value) card.Card { return card.Card{Suit: s, Value: v} }

func fourPlayerRoom() *room.Room {
	now := time.Now()
	r := room.New("ROLES1", &room.Player{ID: "p1", Name: "Ana"}, now)
	for _, id := range []string{"p2", "p3", "p4"} {
		r.Players = append(r.Players, &room.Player{ID: id, Name: id})
	}
	return r
}

func TestResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		order []string
		want  map[string]room.Role
	}{
		{"empty", nil, map[string]room.Role{}},
		{"one player", []string{"a"}, map[string]room.Role{"a": room.RoleCulo}},
		{"two players", []string{"a", "b"}, map[string]room.Role{"a": room.RolePresidente, "b": room.RoleCulo}},
		{"three players", []string{"a", "b", "c"}, map[string]room.Role{"a": room.RolePresidente, "b": room.RoleViceculo, "c": room.RoleCulo}},
		{"four players", []string{"a", "b", "c", "d"}, map[string]room.Role{
			"a": room.RolePresidente, "b": room.RoleVicepresidente, "c": room.RoleViceculo, "d": room.RoleCulo,
		}},
		{"five players", []string{"a", "b", "c", "d", "e"}, map[string]room.Role{
			"a": room.RolePresidente, "b": room.RoleVicepresidente, "d": room.RoleViceculo, "e": room.RoleCulo,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Resolve(tt.order))
		})
	}
}

func TestApply_FourPlayers(t *testing.T) {
	t.Parallel()

	r := fourPlayerRoom()
	r.Players[0].Hand = []card.Card{c(card.Oros, 3), c(card.Copas, 4), c(card.Bastos, 1), c(card.Espadas, 12)}
	r.Players[1].Hand = []card.Card{c(card.Copas, 5), c(card.Oros, 7)}
	r.Players[2].Hand = []card.Card{c(card.Bastos, 6), c(card.Copas, 11)}
	r.Players[3].Hand = []card.Card{c(card.Oros, 2), c(card.Copas, 2), c(card.Espadas, 3), c(card.Bastos, 10)}

	roles := Resolve([]string{"p1", "p2", "p3", "p4"})
	transfers, err := Apply(r, roles)
	require.NoError(t, err)
	assert.Len(t, transfers, 4)

	assert.ElementsMatch(t, []card.Card{
		c(card.Bastos, 1), c(card.Espadas, 12), c(card.Oros, 2), c(card.Copas, 2),
	}, r.Players[0].Hand)
	assert.ElementsMatch(t, []card.Card{
		c(card.Espadas, 3), c(card.Bastos, 10), c(card.Oros, 3), c(card.Copas, 4),
	}, r.Players[3].Hand)
	assert.ElementsMatch(t, []card.Card{c(card.Oros, 7), c(card.Copas, 11)}, r.Players[1].Hand)
	assert.ElementsMatch(t, []card.Card{c(card.Bastos, 6), c(card.Copas, 5)}, r.Players[2].Hand)
}

func TestExchanges_ShortHands(t *testing.T) {
	t.Parallel()

	r := fourPlayerRoom()
	r.Players[0].Hand = []card.Card{c(card.Oros, 3)}
	r.Players[3].Hand = []card.Card{c(card.Copas, 1), c(card.Oros, 12), c(card.Bastos, 4)}

	transfers := Exchanges(r, Resolve([]string{"p1", "p2", "p3", "p4"}))
	require.Len(t, transfers, 4)
	assert.Equal(t, []card.Card{c(card.Oros, 3)}, transfers[0].Cards)
	assert.Equal(t, []card.Card{c(card.Copas, 1), c(card.Oros, 12)}, transfers[1].Cards)
	assert.Empty(t, transfers[2].Cards)
}

func TestCompleteOrder(t *testing.T) {
	t.Parallel()

	r := fourPlayerRoom()
	assert.False(t, CompleteOrder(r))
	r.FinishedOrder = []string{"p1", "p2", "p3"}
	assert.False(t, CompleteOrder(r))
	r.FinishedOrder = []string{"p1", "p2", "p3", "gone"}
	assert.False(t, CompleteOrder(r))
	r.FinishedOrder = []string{"p4", "p2", "p3", "p1"}
	assert.True(t, CompleteOrder(r))
}

func TestRanking_InfersLastPlace(t *testing.T) {
	t.Parallel()

	r := fourPlayerRoom()
	r.FinishedOrder = []string{"p3", "p1", "p4"}

	standings, roles := Ranking(r)
	require.Len(t, standings, 4)
	assert.Equal(t, Standing{PlayerID: "p2", Name: "p2", Place: 4, Role: room.RoleCulo}, standings[3])
	assert.Equal(t, "Ana", standings[1].Name)
	assert.Equal(t, room.RolePresidente, roles["p3"])

	r.FinishedOrder = []string{"p3"}
	standings, roles = Ranking(r)
	assert.Len(t, standings, 1)
	assert.Empty(t, standings[0].Role)
	assert.Empty(t, roles)
}
