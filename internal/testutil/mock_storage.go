//go:build !production

package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/palemoky/cartas-online/internal/game/role"
	"github.com/palemoky/cartas-online/internal/game/room"
	"github.com/palemoky/cartas-online/internal/server/storage"
)

// MockRoomStore 实现 storage.RoomStore 的 mock
type MockRoomStore struct {
	mock.Mock
}

func (m *MockRoomStore) Get(ctx context.Context, code string) (*room.Room, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*room.Room), args.Error(1)
}

func (m *MockRoomStore) Create(ctx context.Context, r *room.Room) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockRoomStore) Set(ctx context.Context, r *room.Room) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockRoomStore) Delete(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *MockRoomStore) List(ctx context.Context) ([]*room.Room, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*room.Room), args.Error(1)
}

func (m *MockRoomStore) Update(ctx context.Context, code string, fn storage.UpdateFunc) (*room.Room, error) {
	args := m.Called(ctx, code, fn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*room.Room), args.Error(1)
}

func (m *MockRoomStore) Backend() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockRoomStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockRecorder 成绩记录 mock
type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) RecordDeal(ctx context.Context, standings []role.Standing) error {
	args := m.Called(ctx, standings)
	return args.Error(0)
}

// MockLeaderboard 排行榜查询 mock
type MockLeaderboard struct {
	mock.Mock
}

func (m *MockLeaderboard) GetLeaderboard(ctx context.Context, kind string, limit int) ([]*storage.LeaderboardEntry, error) {
	args := m.Called(ctx, kind, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*storage.LeaderboardEntry), args.Error(1)
}

func (m *MockLeaderboard) GetPlayerStats(ctx context.Context, name string) (*storage.PlayerStats, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.PlayerStats), args.Error(1)
}

func (m *MockLeaderboard) GetPlayerRank(ctx context.Context, name string) (int64, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(int64), args.Error(1)
}
