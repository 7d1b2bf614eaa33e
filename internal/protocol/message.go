package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// MessageType 推送帧类型
type MessageType string

const (
	MsgPing        MessageType = "ping"         // 客户端心跳
	MsgPong        MessageType = "pong"         // 心跳回应
	MsgRoomState   MessageType = "room_state"   // 房间快照，payload 为 RoomEvent
	MsgRoomDeleted MessageType = "room_deleted" // 房间已删除
	MsgError       MessageType = "error"        // payload 为 ErrorPayload
)

// ErrMissingType 收到的帧没有 type 字段
var ErrMissingType = errors.New("消息缺少 type")

// Message 房间推送通道上的一帧，payload 保持原始 JSON
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewMessage 编码 payload；payload 为 nil 时帧里不带数据
func NewMessage(msgType MessageType, payload any) (*Message, error) {
	msg := &Message{Type: msgType}
	if payload == nil {
		return msg, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("编码 %s 消息: %w", msgType, err)
	}
	msg.Payload = data
	return msg, nil
}

// MustNewMessage 用于 payload 必定可编码的场合
func MustNewMessage(msgType MessageType, payload any) *Message {
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		panic(err)
	}
	return msg
}

// NewErrorMessage 按错误码生成错误帧
func NewErrorMessage(code int, category string) *Message {
	return MustNewMessage(MsgError, ErrorPayload{
		Code:     code,
		Category: category,
		Message:  ErrorMessages[code],
	})
}

func (m *Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// DecodeMessage 解析客户端发来的帧
func DecodeMessage(data []byte) (*Message, error) {
	msg := new(Message)
	if err := json.Unmarshal(data, msg); err != nil {
		return nil, err
	}
	if msg.Type == "" {
		return nil, ErrMissingType
	}
	return msg, nil
}
