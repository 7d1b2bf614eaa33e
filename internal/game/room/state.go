package room

import (
	"encoding/json"
	"fmt"
)

// RoomStatus 房间状态
type RoomStatus int

const (
	StatusWaiting  RoomStatus = iota // 等待玩家
	StatusPlaying                    // 一手牌进行中
	StatusFinished                   // 一手牌结束，可以再发一手
)

var statusNames = map[RoomStatus]string{
	StatusWaiting:  "waiting",
	StatusPlaying:  "playing",
	StatusFinished: "finished",
}

func (s RoomStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

func (s RoomStatus) MarshalJSON() ([]byte, error) {
	name, ok := statusNames[s]
	if !ok {
		return nil, fmt.Errorf("无效的房间状态: %d", int(s))
	}
	return json.Marshal(name)
}

func (s *RoomStatus) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for status, n := range statusNames {
		if n == name {
			*s = status
			return nil
		}
	}
	return fmt.Errorf("无法识别的房间状态: %q", name)
}

// GameType 玩法
type GameType string

const (
	GameTypeA GameType = "juego1" // 首出必须包含权杖 3
	GameTypeB GameType = "juego2" // 自由首出，无人能压时立即收轮
)

// ParseGameType 解析玩法，未知值按 juego1 处理
func ParseGameType(s string) GameType {
	if GameType(s) == GameTypeB {
		return GameTypeB
	}
	return GameTypeA
}

// Role 上一手牌结束后的身份
type Role string

const (
	RolePresidente     Role = "presidente"
	RoleVicepresidente Role = "vicepresidente"
	RoleViceculo       Role = "viceculo"
	RoleCulo           Role = "culo"
)
