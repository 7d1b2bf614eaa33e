// Package session 房间命令入口：在存储的原子更新中调用规则引擎，
// 成功后推送房间快照，一手牌结束时记录成绩。
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/palemoky/cartas-online/internal/apperrors"
	"github.com/palemoky/cartas-online/internal/game/card"
	"github.com/palemoky/cartas-online/internal/game/engine"
	"github.com/palemoky/cartas-online/internal/game/role"
	"github.com/palemoky/cartas-online/internal/game/room"
	"github.com/palemoky/cartas-online/internal/logger"
	"github.com/palemoky/cartas-online/internal/protocol"
	"github.com/palemoky/cartas-online/internal/server/storage"
)

const (
	// 房间号冲突时的最大重试次数
	maxCodeAttempts = 10
	// 已被接受的操作写回存储的超时时间
	writeTimeout = 5 * time.Second
)

// Manager 房间命令管理器
type Manager struct {
	store    storage.RoomStore
	engine   *engine.Engine
	locks    *keyedMutex
	notifier Notifier
	recorder Recorder
	now      func() time.Time
	newID    func() string
	newCode  func() string
}

// Option 管理器选项
type Option func(*Manager)

// WithNotifier 设置推送通道
func WithNotifier(n Notifier) Option {
	return func(m *Manager) { m.notifier = n }
}

// WithRecorder 设置成绩记录器
func WithRecorder(r Recorder) Option {
	return func(m *Manager) { m.recorder = r }
}

// WithClock 替换时钟
func WithClock(fn func() time.Time) Option {
	return func(m *Manager) { m.now = fn }
}

// WithIDGenerator 替换玩家 ID 生成器
func WithIDGenerator(fn func() string) Option {
	return func(m *Manager) { m.newID = fn }
}

// WithCodeGenerator 替换房间号生成器
func WithCodeGenerator(fn func() string) Option {
	return func(m *Manager) { m.newCode = fn }
}

// NewManager 创建管理器
func NewManager(store storage.RoomStore, eng *engine.Engine, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		engine:  eng,
		locks:   newKeyedMutex(),
		now:     time.Now,
		newID:   uuid.NewString,
		newCode: func() string { return room.GenerateCode(nil) },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Store 底层房间存储
func (m *Manager) Store() storage.RoomStore { return m.store }

// update 串行化同一房间的命令，并在与请求无关的上下文中完成读改写
func (m *Manager) update(ctx context.Context, code string, fn storage.UpdateFunc) (*room.Room, error) {
	code = room.NormalizeCode(code)
	unlock := m.locks.Lock(code)
	defer unlock()

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()

	r, err := m.store.Update(writeCtx, code, fn)
	if err != nil {
		return nil, m.storageError(code, err)
	}
	return r, nil
}

// storageError 游戏错误原样返回，其余错误记录日志后包装
func (m *Manager) storageError(code string, err error) error {
	var gameErr *apperrors.GameError
	if errors.As(err, &gameErr) {
		return err
	}
	logger.WithRoom(code).WithError(err).Error("❌ 房间存储失败")
	return fmt.Errorf("房间 %s 存储失败: %w", code, err)
}

// publish 推送房间快照
func (m *Manager) publish(event string, r *room.Room) {
	if m.notifier == nil || r == nil {
		return
	}
	msg, err := protocol.NewMessage(protocol.MsgRoomState, RoomEvent{Event: event, Room: r})
	if err != nil {
		logger.WithRoom(r.Code).WithError(err).Error("❌ 编码推送消息失败")
		return
	}
	m.notifier.Publish(r.Code, msg)
}

// CreateRoom 创建房间，房主作为第一个玩家加入
func (m *Manager) CreateRoom(ctx context.Context, hostName string) (*RoomResponse, error) {
	now := m.now()
	host := &room.Player{
		ID:       m.newID(),
		Name:     room.UniqueName(hostName, nil, "Jugador 1"),
		JoinedAt: now,
	}

	for range maxCodeAttempts {
		r := room.New(m.newCode(), host, now)
		err := m.store.Create(ctx, r)
		if errors.Is(err, storage.ErrRoomExists) {
			continue
		}
		if err != nil {
			return nil, m.storageError(r.Code, err)
		}

		logger.WithPlayer(r.Code, host.ID).Infof("🏠 %s 创建了房间", host.Name)
		m.publish("created", r)
		return &RoomResponse{Room: r, PlayerID: host.ID}, nil
	}
	return nil, apperrors.ErrInternal.WithMessage("无法生成可用的房间号")
}

// JoinRoom 加入等待中的房间
func (m *Manager) JoinRoom(ctx context.Context, code, name string) (*RoomResponse, error) {
	id := m.newID()
	var player *room.Player

	r, err := m.update(ctx, code, func(cur *room.Room) (*room.Room, error) {
		p, err := cur.AddPlayer(id, name, m.now())
		if err != nil {
			return nil, err
		}
		player = p
		return cur, nil
	})
	if err != nil {
		return nil, err
	}

	logger.WithPlayer(r.Code, id).Infof("👋 %s 加入了房间", player.Name)
	m.publish("player_joined", r)
	return &RoomResponse{Room: r, PlayerID: id}, nil
}

// LeaveRoom 离开等待中的房间，最后一名玩家离开时删除房间
func (m *Manager) LeaveRoom(ctx context.Context, code, playerID string) (*RoomResponse, error) {
	r, err := m.update(ctx, code, func(cur *room.Room) (*room.Room, error) {
		if err := cur.RemovePlayer(playerID, m.now()); err != nil {
			return nil, err
		}
		return cur, nil
	})
	if err != nil {
		return nil, err
	}

	entry := logger.WithPlayer(r.Code, playerID)
	if !r.IsEmpty() {
		entry.Info("🚪 玩家离开了房间")
		m.publish("player_left", r)
		return &RoomResponse{Room: r}, nil
	}

	if err := m.store.Delete(context.WithoutCancel(ctx), r.Code); err != nil {
		return nil, m.storageError(r.Code, err)
	}
	entry.Info("🗑️ 房间已清空并删除")
	if m.notifier != nil {
		m.notifier.Publish(r.Code, protocol.MustNewMessage(protocol.MsgRoomDeleted, map[string]string{"code": r.Code}))
	}
	return &RoomResponse{Deleted: true}, nil
}

// ListRooms 列出可以加入的房间
func (m *Manager) ListRooms(ctx context.Context) (*RoomListResponse, error) {
	rooms, err := m.store.List(ctx)
	if err != nil {
		return nil, m.storageError("*", err)
	}

	resp := &RoomListResponse{Rooms: []RoomSummary{}}
	for _, r := range rooms {
		if !r.Joinable() {
			continue
		}
		summary := RoomSummary{
			Code:      r.Code,
			GameType:  r.GameType,
			CreatedAt: r.CreatedAt,
			Players:   make([]string, 0, len(r.Players)),
		}
		for _, p := range r.Players {
			summary.Players = append(summary.Players, p.Name)
			if p.ID == r.HostID {
				summary.HostName = p.Name
			}
		}
		resp.Rooms = append(resp.Rooms, summary)
	}
	return resp, nil
}

// StartDeal 发一手新牌
func (m *Manager) StartDeal(ctx context.Context, code string, req protocol.StartDealRequest) (*DealResponse, error) {
	opts := engine.DealOptions{CardsPerPlayer: req.CardsPerPlayer, DealAll: req.DealAll}
	if req.GameType != "" {
		gt := room.GameType(req.GameType)
		if gt != room.GameTypeA && gt != room.GameTypeB {
			return nil, apperrors.ErrInvalidRequest.WithMessage("未知的玩法: %s", req.GameType)
		}
		opts.GameType = gt
	}

	var result *engine.DealResult
	r, err := m.update(ctx, code, func(cur *room.Room) (*room.Room, error) {
		res, err := m.engine.StartDeal(cur, opts)
		if err != nil {
			return nil, err
		}
		result = res
		return res.Room, nil
	})
	if err != nil {
		return nil, err
	}

	logger.WithRoom(r.Code).WithFields(logrus.Fields{
		"game_type":        r.GameType,
		"cards_per_player": result.CardsPerPlayer,
		"players":          len(r.Players),
		"exchanges":        len(result.Transfers),
	}).Info("🃏 开始发牌")
	m.publish("deal_started", r)

	return &DealResponse{
		Room:           r,
		GameType:       r.GameType,
		CardsPerPlayer: result.CardsPerPlayer,
		Exchanges:      result.Transfers,
		Leader:         result.Leader,
	}, nil
}

// Play 玩家出牌
func (m *Manager) Play(ctx context.Context, code string, req protocol.PlayRequest) (*PlayResponse, error) {
	cards := req.PlayedCards()
	for _, c := range cards {
		if !c.IsValid() {
			return nil, apperrors.ErrInvalidRequest.WithMessage("无效的牌: %v", c)
		}
	}

	var result *engine.PlayResult
	r, err := m.update(ctx, code, func(cur *room.Room) (*room.Room, error) {
		res, err := m.engine.Play(cur, req.PlayerID, cards, req.ComboSize)
		if err != nil {
			return nil, err
		}
		result = res
		return res.Room, nil
	})
	if err != nil {
		return nil, err
	}

	logger.WithPlayer(r.Code, req.PlayerID).WithField("outcome", result.Outcome.String()).
		Debugf("出牌 %v", cards)
	if result.Outcome == engine.OutcomeDealFinished {
		m.finishDeal(ctx, r)
	}
	m.publish("card_played", r)

	var hand []card.Card
	if p := r.Player(req.PlayerID); p != nil {
		hand = p.Hand
	}
	return &PlayResponse{
		Room:              r,
		TopCard:           r.TopCard(),
		MyRemainingHand:   hand,
		TurnsStarted:      r.TurnsStarted,
		NextTurnPlayerID:  r.CurrentTurnPlayerID,
		RoundAwaitingLead: r.RoundAwaitingLead,
		RoundComboSize:    r.RoundComboSize,
		Outcome:           result.Outcome.String(),
		Skipped:           result.Skipped,
	}, nil
}

// finishDeal 一手牌结束：记录日志和成绩
func (m *Manager) finishDeal(ctx context.Context, r *room.Room) {
	standings, _ := role.Ranking(r)
	entry := logger.WithRoom(r.Code)
	entry.WithField("order", r.FinishedOrder).Info("🏁 本手牌结束")

	if m.recorder == nil {
		return
	}
	if err := m.recorder.RecordDeal(context.WithoutCancel(ctx), standings); err != nil {
		entry.WithError(err).Warn("记录成绩失败")
	}
}

// Pass 玩家过牌
func (m *Manager) Pass(ctx context.Context, code, playerID string) (*PassResponse, error) {
	var result *engine.PassResult
	r, err := m.update(ctx, code, func(cur *room.Room) (*room.Room, error) {
		res, err := m.engine.Pass(cur, playerID)
		if err != nil {
			return nil, err
		}
		result = res
		return res.Room, nil
	})
	if err != nil {
		return nil, err
	}

	logger.WithPlayer(r.Code, playerID).Debug("过牌")
	m.publish("player_passed", r)

	return &PassResponse{
		Room:              r,
		NextTurnPlayerID:  r.CurrentTurnPlayerID,
		RoundAwaitingLead: r.RoundAwaitingLead,
		RoundNumber:       r.RoundNumber,
		Soft:              result.Soft,
		RoundClosed:       result.RoundClosed,
	}, nil
}

// GetState 读取房间状态；当前玩家无牌可压时替他过一次牌
func (m *Manager) GetState(ctx context.Context, code string) (*StateResponse, error) {
	var autoPassed string
	r, err := m.update(ctx, code, func(cur *room.Room) (*room.Room, error) {
		res, ok := m.engine.AutoPass(cur)
		if !ok {
			return nil, nil
		}
		autoPassed = cur.CurrentTurnPlayerID
		return res.Room, nil
	})
	if err != nil {
		return nil, err
	}

	if autoPassed != "" {
		logger.WithPlayer(r.Code, autoPassed).Debug("自动过牌")
		m.publish("player_passed", r)
	}

	// 本局还没排完名时展示上一局分配的身份
	ranking, roles := role.Ranking(r)
	if len(roles) == 0 {
		roles = r.Roles
	}
	return &StateResponse{
		Room:       r,
		TopCard:    r.TopCard(),
		Ranking:    ranking,
		Roles:      roles,
		Joinable:   r.Joinable(),
		Phase:      string(engine.PhaseOf(r)),
		AutoPassed: autoPassed,
	}, nil
}

// EndMatch 结束对局，房间回到等待状态
func (m *Manager) EndMatch(ctx context.Context, code string) (*RoomResponse, error) {
	r, err := m.update(ctx, code, func(cur *room.Room) (*room.Room, error) {
		cur.ResetToWaiting(m.now())
		return cur, nil
	})
	if err != nil {
		return nil, err
	}

	logger.WithRoom(r.Code).Info("🔚 对局结束，房间回到等待状态")
	m.publish("match_ended", r)
	return &RoomResponse{Room: r}, nil
}

// Hint 出牌提示，只读不写
func (m *Manager) Hint(ctx context.Context, code, playerID string) (*HintResponse, error) {
	r, err := m.store.Get(ctx, room.NormalizeCode(code))
	if err != nil {
		return nil, m.storageError(code, err)
	}
	cards, err := m.engine.Hint(r, playerID)
	if err != nil {
		return nil, err
	}
	if cards == nil {
		cards = []card.Card{}
	}
	return &HintResponse{
		PlayerID: playerID,
		Cards:    cards,
		MyTurn:   r.CurrentTurnPlayerID == playerID,
		CanPlay:  engine.CanAct(r, playerID),
	}, nil
}
