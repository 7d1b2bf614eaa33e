package session

import (
	"context"
	"time"

	"github.com/palemoky/cartas-online/internal/game/card"
	"github.com/palemoky/cartas-online/internal/game/role"
	"github.com/palemoky/cartas-online/internal/game/room"
	"github.com/palemoky/cartas-online/internal/protocol"
)

// Notifier 房间状态变化时的推送通道
type Notifier interface {
	Publish(code string, msg *protocol.Message)
}

// Recorder 一手牌结束后记录成绩
type Recorder interface {
	RecordDeal(ctx context.Context, standings []role.Standing) error
}

// RoomEvent 推送给订阅者的房间快照
type RoomEvent struct {
	Event string     `json:"event"`
	Room  *room.Room `json:"room"`
}

// RoomResponse 创建、加入、离开房间的响应
type RoomResponse struct {
	Room     *room.Room `json:"room,omitempty"`
	PlayerID string     `json:"playerId,omitempty"`
	Deleted  bool       `json:"deleted,omitempty"` // 最后一名玩家离开，房间已删除
}

// RoomSummary 房间列表项
type RoomSummary struct {
	Code      string        `json:"code"`
	HostName  string        `json:"hostName"`
	Players   []string      `json:"players"`
	GameType  room.GameType `json:"gameType"`
	CreatedAt time.Time     `json:"createdAt"`
}

// RoomListResponse 房间列表
type RoomListResponse struct {
	Rooms []RoomSummary `json:"rooms"`
}

// DealResponse 发牌结果
type DealResponse struct {
	Room           *room.Room      `json:"room"`
	GameType       room.GameType   `json:"gameType"`
	CardsPerPlayer int             `json:"cardsPerPlayer"`
	Exchanges      []role.Transfer `json:"exchanges,omitempty"`
	Leader         string          `json:"leaderPlayerId,omitempty"`
}

// PlayResponse 出牌结果
type PlayResponse struct {
	Room              *room.Room  `json:"room"`
	TopCard           *card.Card  `json:"topCard"`
	MyRemainingHand   []card.Card `json:"myRemainingHand"`
	TurnsStarted      bool        `json:"turnsStarted"`
	NextTurnPlayerID  string      `json:"nextTurnPlayerId"`
	RoundAwaitingLead bool        `json:"roundAwaitingLead"`
	RoundComboSize    int         `json:"roundComboSize"`
	Outcome           string      `json:"outcome"`
	Skipped           bool        `json:"skipped,omitempty"`
}

// PassResponse 过牌结果
type PassResponse struct {
	Room              *room.Room `json:"room"`
	NextTurnPlayerID  string     `json:"nextTurnPlayerId"`
	RoundAwaitingLead bool       `json:"roundAwaitingLead"`
	RoundNumber       int        `json:"roundNumber"`
	Soft              bool       `json:"soft,omitempty"`
	RoundClosed       bool       `json:"roundClosed,omitempty"`
}

// StateResponse 轮询房间状态
type StateResponse struct {
	Room       *room.Room           `json:"room"`
	TopCard    *card.Card           `json:"topCard"`
	Ranking    []role.Standing      `json:"ranking"`
	Roles      map[string]room.Role `json:"roles"`
	Joinable   bool                 `json:"joinable"`
	Phase      string               `json:"phase"`
	AutoPassed string               `json:"autoPassedPlayerId,omitempty"`
}

// HintResponse 出牌提示
type HintResponse struct {
	PlayerID string      `json:"playerId"`
	Cards    []card.Card `json:"cards"` // 为空表示还没轮到或无牌可出
	MyTurn   bool        `json:"myTurn"`
	CanPlay  bool        `json:"canPlay"` // 轮到自己且手里有能压过的牌
}
