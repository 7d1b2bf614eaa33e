package server

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/palemoky/cartas-online/internal/logger"
	"github.com/palemoky/cartas-online/internal/protocol"
)

const (
	// 写入超时
	writeWait = 10 * time.Second

	// 读取超时（pong 等待时间）
	pongWait = 60 * time.Second

	// ping 发送间隔（必须小于 pongWait）
	pingPeriod = (pongWait * 9) / 10

	// 客户端只会发 ping，消息很小
	maxMessageSize = 1024

	sendBufferSize = 64
)

// Hub 按房间号管理 WebSocket 订阅者，房间变化时推送快照
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Subscriber]struct{}
}

// NewHub 创建推送中心
func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*Subscriber]struct{})}
}

// Subscriber 订阅某个房间的一条 WebSocket 连接
type Subscriber struct {
	Code string // 订阅的房间号
	IP   string // 客户端 IP 地址

	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	closed bool
}

func newSubscriber(h *Hub, conn *websocket.Conn, code, ip string) *Subscriber {
	return &Subscriber{
		Code: code,
		IP:   ip,
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
}

func (h *Hub) register(s *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.rooms[s.Code]
	if !ok {
		subs = make(map[*Subscriber]struct{})
		h.rooms[s.Code] = subs
	}
	subs[s] = struct{}{}
}

func (h *Hub) unregister(s *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.rooms[s.Code]
	if !ok {
		return
	}
	delete(subs, s)
	if len(subs) == 0 {
		delete(h.rooms, s.Code)
	}
}

// ReadPump 读取客户端消息，只处理心跳
func (s *Subscriber) ReadPump() {
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
		}
		s.hub.unregister(s)
		s.Close()
		_ = s.conn.Close()
	}()

	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.WithRoom(s.Code).WithError(err).Debug("读取错误")
			}
			return
		}

		msg, err := protocol.DecodeMessage(data)
		if err != nil {
			s.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidRequest, protocol.CategoryInvalidRequest))
			continue
		}
		if msg.Type == protocol.MsgPing {
			s.SendMessage(protocol.MustNewMessage(protocol.MsgPong, nil))
		}
	}
}

// WritePump 向 WebSocket 写入消息并定期发送 ping
func (s *Subscriber) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case message, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// 通道已关闭
				_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendMessage 发送消息给订阅者
func (s *Subscriber) SendMessage(msg *protocol.Message) {
	data, err := msg.Encode()
	if err != nil {
		logger.L().WithError(err).Error("消息编码错误")
		return
	}
	s.sendRaw(data)
}

func (s *Subscriber) sendRaw(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	select {
	case s.send <- data:
	default:
		// 发送缓冲区已满，关闭连接，客户端改为轮询
		logger.WithRoom(s.Code).Warnf("订阅者 %s 发送缓冲区已满", s.IP)
		s.closed = true
		close(s.send)
	}
}

// Close 关闭发送通道，WritePump 随后发送关闭帧
func (s *Subscriber) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		close(s.send)
	}
}
