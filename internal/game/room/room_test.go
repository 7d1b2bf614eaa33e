package room

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/cartas-online/internal/apperrors"
	"github.com/palemoky/cartas-online/internal/game/card"
)

func newTestRoom(t *testing.T, names ...string) *Room {
	t.Helper()
	now := time.Now()
	r := New("abc123", &Player{ID: "host", Name: "Host", JoinedAt: now}, now)
	for i, name := range names {
		_, err := r.AddPlayer(string(rune('a'+i)), name, now)
		require.NoError(t, err)
	}
	return r
}

func TestNew_NormalizesCode(t *testing.T) {
	t.Parallel()

	r := newTestRoom(t)
	assert.Equal(t, "ABC123", r.Code)
	assert.Equal(t, "host", r.HostID)
	assert.Equal(t, StatusWaiting, r.Status)
	assert.True(t, r.Joinable())
}

func TestUniqueName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		desired  string
		existing []string
		want     string
	}{
		{"free name", "Ana", []string{"Luis"}, "Ana"},
		{"exact taken", "Ana", []string{"Ana"}, "Ana2"},
		{"suffix gap uses max", "Ana", []string{"Ana", "Ana5"}, "Ana6"},
		{"only suffixed exists", "Ana", []string{"Ana2"}, "Ana"},
		{"blank uses fallback", "  ", []string{"Ana"}, "Jugador 2"},
		{"regex chars escaped", "a.b", []string{"axb"}, "a.b"},
		{"prefix is not a match", "Ana", []string{"Anabel"}, "Ana"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, UniqueName(tt.desired, tt.existing, "Jugador 2"))
		})
	}
}

func TestAddPlayer(t *testing.T) {
	t.Parallel()

	r := newTestRoom(t, "Ana", "Ana", "")
	require.Len(t, r.Players, 4)
	assert.Equal(t, "Ana", r.Players[1].Name)
	assert.Equal(t, "Ana2", r.Players[2].Name)
	assert.Equal(t, "Jugador 4", r.Players[3].Name)

	r.Status = StatusPlaying
	_, err := r.AddPlayer("late", "Late", time.Now())
	assert.ErrorIs(t, err, apperrors.ErrGameStarted)
	assert.Len(t, r.Players, 4)
}

func TestRemovePlayer_HandsOverHost(t *testing.T) {
	t.Parallel()

	r := newTestRoom(t, "Ana", "Luis")
	require.NoError(t, r.RemovePlayer("host", time.Now()))
	assert.Equal(t, "a", r.HostID)
	assert.Equal(t, []string{"a", "b"}, r.PlayerIDs())

	assert.ErrorIs(t, r.RemovePlayer("ghost", time.Now()), apperrors.ErrNotInRoom)

	require.NoError(t, r.RemovePlayer("a", time.Now()))
	require.NoError(t, r.RemovePlayer("b", time.Now()))
	assert.True(t, r.IsEmpty())
	assert.Empty(t, r.HostID)
}

func TestGenerateCode(t *testing.T) {
	t.Parallel()

	calls := 0
	code := GenerateCode(func(string) bool {
		calls++
		return calls < 3
	})
	assert.Equal(t, 3, calls)
	assert.Len(t, code, roomCodeLength)
	for _, ch := range code {
		assert.Contains(t, roomCodeChars, string(ch))
	}
}

func TestClone_IsDeep(t *testing.T) {
	t.Parallel()

	r := newTestRoom(t, "Ana")
	r.Players[0].Hand = []card.Card{{Suit: card.Oros, Value: 3}}
	top := card.Value(7)
	r.RoundTopValue = &top
	r.Roles["host"] = RoleCulo

	cp := r.Clone()
	cp.Players[0].Hand[0].Value = 4
	*cp.RoundTopValue = 10
	cp.Roles["host"] = RolePresidente
	cp.Players = append(cp.Players, &Player{ID: "x"})

	assert.Equal(t, card.Value(3), r.Players[0].Hand[0].Value)
	assert.Equal(t, card.Value(7), *r.RoundTopValue)
	assert.Equal(t, RoleCulo, r.Roles["host"])
	assert.Len(t, r.Players, 2)
}

func TestResetToWaiting(t *testing.T) {
	t.Parallel()

	r := newTestRoom(t, "Ana")
	r.Status = StatusFinished
	r.Players[0].Hand = []card.Card{{Suit: card.Copas, Value: 1}}
	r.DiscardPile = []card.Card{{Suit: card.Oros, Value: 5}}
	r.FinishedOrder = []string{"a", "host"}
	r.RoundComboSize = 3
	r.CurrentTurnPlayerID = "a"

	r.ResetToWaiting(time.Now())
	assert.Equal(t, StatusWaiting, r.Status)
	assert.Empty(t, r.Players[0].Hand)
	assert.Empty(t, r.DiscardPile)
	assert.Empty(t, r.FinishedOrder)
	assert.Empty(t, r.CurrentTurnPlayerID)
	assert.Equal(t, 1, r.RoundComboSize)
	assert.True(t, r.Joinable())
}

func TestEncodeDecode_Defaults(t *testing.T) {
	t.Parallel()

	r, err := Decode([]byte(`{"code":"ABC123","status":"playing","players":[]}`))
	require.NoError(t, err)
	assert.Equal(t, StatusPlaying, r.Status)
	assert.Equal(t, GameTypeA, r.GameType)
	assert.Equal(t, 1, r.RoundComboSize)
	assert.NotNil(t, r.Roles)

	orig := newTestRoom(t, "Ana")
	v := card.Value(12)
	orig.RoundTopValue = &v
	data, err := Encode(orig)
	require.NoError(t, err)
	back, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, orig.PlayerIDs(), back.PlayerIDs())
	require.NotNil(t, back.RoundTopValue)
	assert.Equal(t, v, *back.RoundTopValue)

	_, err = Decode([]byte(`{"status":"exploded"}`))
	assert.Error(t, err)
}

func TestCheckIntegrity(t *testing.T) {
	t.Parallel()

	r := newTestRoom(t, "Ana")
	assert.NoError(t, CheckIntegrity(r), "waiting rooms are not checked")

	deck := card.NewDeck()
	r.Status = StatusPlaying
	r.Players[0].Hand = slicesClone(deck[:20])
	r.Players[1].Hand = slicesClone(deck[20:])
	r.RoundActivePlayerIDs = r.PlayerIDs()
	r.RoundComboSize = 1
	require.NoError(t, CheckIntegrity(r))

	r.Players[1].Hand = r.Players[1].Hand[1:]
	assert.Error(t, CheckIntegrity(r), "lost card")
	r.Players[1].Hand = append(r.Players[1].Hand, deck[0])
	assert.Error(t, CheckIntegrity(r), "duplicated card")
	r.Players[1].Hand = slicesClone(deck[20:])

	r.CurrentTurnPlayerID = "ghost"
	assert.Error(t, CheckIntegrity(r))
	r.CurrentTurnPlayerID = ""

	r.RoundComboSize = 5
	assert.Error(t, CheckIntegrity(r))
}

func slicesClone(cards []card.Card) []card.Card {
	return append([]card.Card(nil), cards...)
}
