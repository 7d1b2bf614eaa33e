package storage

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/palemoky/cartas-online/internal/apperrors"
	"github.com/palemoky/cartas-online/internal/config"
	"github.com/palemoky/cartas-online/internal/game/room"
	"github.com/palemoky/cartas-online/internal/logger"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryStore 进程内存储，按房间号加锁。
// 保存的是序列化后的数据，调用方拿到的房间与存储互不影响。
type MemoryStore struct {
	mu    sync.RWMutex
	rooms map[string]*memoryEntry
	locks map[string]*sync.Mutex
	ttl   time.Duration
	now   func() time.Time
}

// NewMemoryStore 创建内存存储
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultRoomTTL
	}
	return &MemoryStore{
		rooms: make(map[string]*memoryEntry),
		locks: make(map[string]*sync.Mutex),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (s *MemoryStore) Backend() string { return config.BackendMemory }

func (s *MemoryStore) Close() error { return nil }

// lockFor 返回房间的锁
func (s *MemoryStore) lockFor(code string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[code]
	if !ok {
		l = &sync.Mutex{}
		s.locks[code] = l
	}
	return l
}

// load 读取未过期的房间数据
func (s *MemoryStore) load(code string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.rooms[code]
	if !ok || !s.now().Before(e.expiresAt) {
		return nil, false
	}
	return e.data, true
}

func (s *MemoryStore) save(r *room.Room) error {
	data, err := room.Encode(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.rooms[r.Code] = &memoryEntry{data: data, expiresAt: s.now().Add(s.ttl)}
	s.mu.Unlock()
	return nil
}

// Get 读取房间
func (s *MemoryStore) Get(_ context.Context, code string) (*room.Room, error) {
	data, ok := s.load(room.NormalizeCode(code))
	if !ok {
		return nil, apperrors.ErrRoomNotFound
	}
	return room.Decode(data)
}

// Create 保存新房间
func (s *MemoryStore) Create(_ context.Context, r *room.Room) error {
	l := s.lockFor(r.Code)
	l.Lock()
	defer l.Unlock()

	if _, ok := s.load(r.Code); ok {
		return ErrRoomExists
	}
	return s.save(r)
}

// Set 覆盖保存房间
func (s *MemoryStore) Set(_ context.Context, r *room.Room) error {
	l := s.lockFor(r.Code)
	l.Lock()
	defer l.Unlock()
	return s.save(r)
}

// Delete 删除房间
func (s *MemoryStore) Delete(_ context.Context, code string) error {
	code = room.NormalizeCode(code)
	s.mu.Lock()
	delete(s.rooms, code)
	delete(s.locks, code)
	s.mu.Unlock()
	return nil
}

// List 返回所有未过期的房间，按创建时间排序
func (s *MemoryStore) List(_ context.Context) ([]*room.Room, error) {
	s.mu.RLock()
	now := s.now()
	var blobs [][]byte
	for _, e := range s.rooms {
		if now.Before(e.expiresAt) {
			blobs = append(blobs, e.data)
		}
	}
	s.mu.RUnlock()

	rooms := make([]*room.Room, 0, len(blobs))
	for _, data := range blobs {
		r, err := room.Decode(data)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, r)
	}
	slices.SortFunc(rooms, func(a, b *room.Room) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.Code, b.Code)
	})
	return rooms, nil
}

// Update 在房间锁内执行读改写
func (s *MemoryStore) Update(_ context.Context, code string, fn UpdateFunc) (*room.Room, error) {
	code = room.NormalizeCode(code)
	l := s.lockFor(code)
	l.Lock()
	defer l.Unlock()

	data, ok := s.load(code)
	if !ok {
		return nil, apperrors.ErrRoomNotFound
	}
	current, err := room.Decode(data)
	if err != nil {
		return nil, err
	}

	next, err := fn(current)
	if err != nil {
		return nil, err
	}
	if next == nil {
		return current, nil
	}
	if err := s.save(next); err != nil {
		return nil, err
	}
	return next, nil
}

// Cleanup 清理过期房间，返回清理数量
func (s *MemoryStore) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for code, e := range s.rooms {
		if !now.Before(e.expiresAt) {
			delete(s.rooms, code)
			delete(s.locks, code)
			removed++
		}
	}
	return removed
}

// RunCleanup 定期清理过期房间，直到 ctx 结束
func (s *MemoryStore) RunCleanup(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := s.Cleanup(); n > 0 {
				logger.L().Infof("🧹 清理了 %d 个过期房间", n)
			}
		}
	}
}
