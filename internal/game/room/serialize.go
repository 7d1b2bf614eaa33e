package room

import (
	"encoding/json"
	"fmt"
)

// Encode 将房间序列化为 JSON（存储层使用）
func Encode(r *Room) ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("序列化房间 %s 失败: %w", r.Code, err)
	}
	return data, nil
}

// Decode 从 JSON 还原房间，并补齐缺省字段
func Decode(data []byte) (*Room, error) {
	var r Room
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("反序列化房间数据失败: %w", err)
	}
	if r.Roles == nil {
		r.Roles = map[string]Role{}
	}
	if r.RoundComboSize == 0 {
		r.RoundComboSize = 1
	}
	if r.GameType == "" {
		r.GameType = GameTypeA
	}
	return &r, nil
}
