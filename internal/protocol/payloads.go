package protocol

import "github.com/palemoky/cartas-online/internal/game/card"

// --- 客户端请求 ---

// CreateRoomRequest 创建房间
type CreateRoomRequest struct {
	Name string `json:"name"`
}

// JoinRoomRequest 加入房间
type JoinRoomRequest struct {
	Name string `json:"name"`
}

// PlayerRequest 只需要玩家 ID 的请求（离开、过牌）
type PlayerRequest struct {
	PlayerID string `json:"playerId"`
}

// StartDealRequest 发牌
type StartDealRequest struct {
	CardsPerPlayer int    `json:"cardsPerPlayer,omitempty"`
	GameType       string `json:"gameType,omitempty"`
	DealAll        *bool  `json:"dealAll,omitempty"`
}

// PlayRequest 出牌，card 和 cards 二选一
type PlayRequest struct {
	PlayerID  string      `json:"playerId"`
	Card      *card.Card  `json:"card,omitempty"`
	Cards     []card.Card `json:"cards,omitempty"`
	ComboSize int         `json:"comboSize,omitempty"`
}

// PlayedCards 请求中的牌，cards 优先
func (p PlayRequest) PlayedCards() []card.Card {
	if len(p.Cards) > 0 {
		return p.Cards
	}
	if p.Card != nil {
		return []card.Card{*p.Card}
	}
	return nil
}

// --- 服务端响应 ---

// ErrorPayload 错误响应
type ErrorPayload struct {
	Code     int    `json:"code"`
	Category string `json:"category,omitempty"`
	Message  string `json:"message"`
}

// HealthResponse 健康检查
type HealthResponse struct {
	Status         string `json:"status"`
	Storage        string `json:"storage"`
	Rooms          int    `json:"rooms"`
	PollIntervalMs int    `json:"pollIntervalMs"` // 建议的轮询间隔
}
