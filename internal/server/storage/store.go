// Package storage 房间存储：按房间号保存完整的房间快照。
// 同一房间的修改都通过 Update 完成，保证读改写是原子的。
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/palemoky/cartas-online/internal/game/room"
)

// DefaultRoomTTL 房间数据过期时间
const DefaultRoomTTL = 24 * time.Hour

// ErrRoomExists 创建房间时房间号已被占用
var ErrRoomExists = errors.New("房间号已存在")

// UpdateFunc 在房间副本上计算新状态。
// 返回 (nil, nil) 表示无需写回；返回错误时不写回。
type UpdateFunc func(current *room.Room) (*room.Room, error)

// RoomStore 房间存储
type RoomStore interface {
	// Get 读取房间，不存在时返回 apperrors.ErrRoomNotFound
	Get(ctx context.Context, code string) (*room.Room, error)
	// Create 保存新房间，房间号已存在时返回 ErrRoomExists
	Create(ctx context.Context, r *room.Room) error
	Set(ctx context.Context, r *room.Room) error
	Delete(ctx context.Context, code string) error
	List(ctx context.Context) ([]*room.Room, error)
	// Update 原子地读取、修改并写回房间，返回最终保存的房间
	Update(ctx context.Context, code string, fn UpdateFunc) (*room.Room, error)
	// Backend 后端名称（memory、redis、postgres）
	Backend() string
	Close() error
}
