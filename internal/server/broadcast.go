package server

import (
	"github.com/palemoky/cartas-online/internal/logger"
	"github.com/palemoky/cartas-online/internal/protocol"
)

// Publish 把消息推送给房间的所有订阅者，实现 session.Notifier
func (h *Hub) Publish(code string, msg *protocol.Message) {
	data, err := msg.Encode()
	if err != nil {
		logger.WithRoom(code).WithError(err).Error("消息编码错误")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.rooms[code] {
		s.sendRaw(data)
	}
}

// Broadcast 广播消息给所有订阅者
func (h *Hub) Broadcast(msg *protocol.Message) {
	data, err := msg.Encode()
	if err != nil {
		logger.L().WithError(err).Error("消息编码错误")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, subs := range h.rooms {
		for s := range subs {
			s.sendRaw(data)
		}
	}
}

// SubscriberCount 当前连接数（按需调用）
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, subs := range h.rooms {
		n += len(subs)
	}
	return n
}

// RoomCount 有订阅者的房间数
func (h *Hub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// CloseAll 关闭所有连接
func (h *Hub) CloseAll() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, subs := range h.rooms {
		for s := range subs {
			s.Close()
		}
	}
}
