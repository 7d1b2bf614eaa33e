// Package engine 实现一手牌的回合状态机：发牌、出牌、过牌、自动过牌。
// 所有操作都在房间副本上执行，失败时原房间不变。
package engine

import (
	"time"

	"github.com/palemoky/cartas-online/internal/game/card"
	"github.com/palemoky/cartas-online/internal/game/room"
	"github.com/palemoky/cartas-online/internal/game/rule"
)

// Rules 一种玩法的规则开关
type Rules struct {
	OpeningThreeOfBastos bool // 首出必须包含权杖 3
	MaxComboSize         int  // 领出时允许的最大张数
	NoBeatShortCircuit   bool // 无人能压时立即收轮
	AutoPass             bool // 读取状态时替无牌可出的玩家过牌
	DealAll              bool // 默认把整副牌轮流发完
	RoleExchange         bool // 根据上一手的身份换牌
}

// DefaultRules 返回玩法的默认规则
func DefaultRules(gt room.GameType) Rules {
	if gt == room.GameTypeB {
		return Rules{
			MaxComboSize:       rule.MaxComboSize,
			NoBeatShortCircuit: true,
			AutoPass:           true,
			DealAll:            true,
			RoleExchange:       true,
		}
	}
	return Rules{
		OpeningThreeOfBastos: true,
		MaxComboSize:         rule.MaxComboSize,
		AutoPass:             true,
		RoleExchange:         true,
	}
}

// Settings 引擎配置
type Settings struct {
	MinPlayers     int
	CardsPerPlayer int
	Rules          map[room.GameType]Rules
}

// DefaultSettings 默认配置：至少 4 人，每人 7 张
func DefaultSettings() Settings {
	return Settings{
		MinPlayers:     4,
		CardsPerPlayer: 7,
		Rules: map[room.GameType]Rules{
			room.GameTypeA: DefaultRules(room.GameTypeA),
			room.GameTypeB: DefaultRules(room.GameTypeB),
		},
	}
}

// Engine 规则引擎，本身无状态，可被多个请求并发使用
type Engine struct {
	settings Settings
	newDeck  func() card.Deck
	now      func() time.Time
}

// Option 引擎选项
type Option func(*Engine)

// WithDeckSource 替换洗牌来源（测试用）
func WithDeckSource(fn func() card.Deck) Option {
	return func(e *Engine) { e.newDeck = fn }
}

// WithClock 替换时钟
func WithClock(fn func() time.Time) Option {
	return func(e *Engine) { e.now = fn }
}

// New 创建规则引擎
func New(settings Settings, opts ...Option) *Engine {
	if settings.MinPlayers <= 0 {
		settings.MinPlayers = 4
	}
	if settings.CardsPerPlayer <= 0 {
		settings.CardsPerPlayer = 7
	}
	e := &Engine{
		settings: settings,
		newDeck:  card.NewShuffledDeck,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Settings 返回引擎配置
func (e *Engine) Settings() Settings {
	return e.settings
}

// RulesFor 返回玩法对应的规则
func (e *Engine) RulesFor(gt room.GameType) Rules {
	rules, ok := e.settings.Rules[gt]
	if !ok {
		rules = DefaultRules(gt)
	}
	if rules.MaxComboSize <= 0 || rules.MaxComboSize > rule.MaxComboSize {
		rules.MaxComboSize = rule.MaxComboSize
	}
	return rules
}

// Phase 回合状态机所处的阶段
type Phase string

const (
	PhaseWaiting      Phase = "waiting"
	PhaseNoTurns      Phase = "no_turns"      // 等待首出
	PhaseAwaitingLead Phase = "awaiting_lead" // 等待领出者开新一轮
	PhaseInRound      Phase = "in_round"
	PhaseFinished     Phase = "finished"
)

// PhaseOf 推导房间当前的阶段
func PhaseOf(r *room.Room) Phase {
	switch {
	case r.Status == room.StatusWaiting:
		return PhaseWaiting
	case r.Status == room.StatusFinished:
		return PhaseFinished
	case !r.TurnsStarted && r.CurrentTurnPlayerID == "":
		return PhaseNoTurns
	case r.RoundAwaitingLead:
		return PhaseAwaitingLead
	default:
		return PhaseInRound
	}
}
