package room

import (
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/palemoky/cartas-online/internal/game/card"
)

const (
	roomCodeLength = 6                                      // 房间号长度
	roomCodeChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789" // 房间号字符集
)

// Player 房间中的玩家
type Player struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Hand     []card.Card `json:"cards"`
	JoinedAt time.Time   `json:"joinedAt"`
}

// Room 游戏房间，是存储和并发控制的唯一单位
type Room struct {
	Code      string     `json:"code"`
	HostID    string     `json:"hostId"`
	Status    RoomStatus `json:"status"`
	Players   []*Player  `json:"players"` // 按座位顺序
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`

	// 当前这一手牌
	GameType    GameType    `json:"gameType"`
	DiscardPile []card.Card `json:"discardPile"` // 本轮桌面上的牌，最后一张在最上面
	ClearedPile []card.Card `json:"clearedPile"` // 已收走的轮次的牌
	CurrentDeck []card.Card `json:"currentDeck"` // 未发完的牌

	// 回合状态
	TurnsStarted         bool        `json:"turnsStarted"`
	CurrentTurnPlayerID  string      `json:"currentTurnPlayerId,omitempty"`
	RoundNumber          int         `json:"roundNumber"`
	RoundActivePlayerIDs []string    `json:"roundActivePlayerIds"`
	RoundAwaitingLead    bool        `json:"roundAwaitingLead"`
	RoundComboSize       int         `json:"roundComboSize"`
	RoundTopValue        *card.Value `json:"roundTopValue"`
	LastTopPlayedBy      string      `json:"lastTopPlayedBy,omitempty"`

	FinishedOrder []string        `json:"finishedOrder"`
	Roles         map[string]Role `json:"roles"` // 本手牌生效的身份（来自上一手）
}

// NormalizeCode 房间号统一转为大写
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// New 创建一个等待中的房间，房主作为第一个玩家
func New(code string, host *Player, now time.Time) *Room {
	return &Room{
		Code:           NormalizeCode(code),
		HostID:         host.ID,
		Status:         StatusWaiting,
		Players:        []*Player{host},
		CreatedAt:      now,
		UpdatedAt:      now,
		GameType:       GameTypeA,
		RoundComboSize: 1,
		Roles:          map[string]Role{},
	}
}

// Player 按 ID 查找玩家
func (r *Room) Player(id string) *Player {
	if i := r.PlayerIndex(id); i != -1 {
		return r.Players[i]
	}
	return nil
}

// PlayerIndex 返回玩家的座位下标，不存在时返回 -1
func (r *Room) PlayerIndex(id string) int {
	return slices.IndexFunc(r.Players, func(p *Player) bool { return p.ID == id })
}

// PlayerIDs 按座位顺序返回所有玩家 ID
func (r *Room) PlayerIDs() []string {
	ids := make([]string, len(r.Players))
	for i, p := range r.Players {
		ids[i] = p.ID
	}
	return ids
}

// IsFinished 玩家是否已经出完牌
func (r *Room) IsFinished(id string) bool {
	return slices.Contains(r.FinishedOrder, id)
}

// PlayersWithCards 按座位顺序返回仍有手牌且未出完的玩家 ID
func (r *Room) PlayersWithCards() []string {
	var ids []string
	for _, p := range r.Players {
		if len(p.Hand) > 0 && !r.IsFinished(p.ID) {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// TopCard 桌面最上面的一张牌
func (r *Room) TopCard() *card.Card {
	if len(r.DiscardPile) == 0 {
		return nil
	}
	top := r.DiscardPile[len(r.DiscardPile)-1]
	return &top
}

// Joinable 是否还能加入新玩家
func (r *Room) Joinable() bool {
	return r.Status == StatusWaiting
}

// Clone 深拷贝房间，命令总是在副本上执行
func (r *Room) Clone() *Room {
	if r == nil {
		return nil
	}
	cp := *r
	cp.Players = make([]*Player, len(r.Players))
	for i, p := range r.Players {
		pc := *p
		pc.Hand = slices.Clone(p.Hand)
		cp.Players[i] = &pc
	}
	cp.DiscardPile = slices.Clone(r.DiscardPile)
	cp.ClearedPile = slices.Clone(r.ClearedPile)
	cp.CurrentDeck = slices.Clone(r.CurrentDeck)
	cp.RoundActivePlayerIDs = slices.Clone(r.RoundActivePlayerIDs)
	cp.FinishedOrder = slices.Clone(r.FinishedOrder)
	cp.Roles = maps.Clone(r.Roles)
	if r.RoundTopValue != nil {
		v := *r.RoundTopValue
		cp.RoundTopValue = &v
	}
	return &cp
}
