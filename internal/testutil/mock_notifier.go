//go:build !production

package testutil

import (
	"sync"

	"github.com/palemoky/cartas-online/internal/protocol"
)

// RecordingNotifier 记录所有推送的简单实现，不使用 testify
type RecordingNotifier struct {
	mu       sync.Mutex
	Messages map[string][]*protocol.Message
}

func (n *RecordingNotifier) Publish(code string, msg *protocol.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Messages == nil {
		n.Messages = make(map[string][]*protocol.Message)
	}
	n.Messages[code] = append(n.Messages[code], msg)
}

// For 返回某个房间收到的消息
func (n *RecordingNotifier) For(code string) []*protocol.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]*protocol.Message(nil), n.Messages[code]...)
}
