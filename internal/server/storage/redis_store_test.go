package storage

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/cartas-online/internal/apperrors"
	"github.com/palemoky/cartas-online/internal/game/room"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore(client, time.Hour), mr
}

func newStoredRoom(code string, created time.Time) *room.Room {
	return room.New(code, &room.Player{ID: "host-" + code, Name: "Ana", JoinedAt: created}, created)
}

// testRoomStore 所有后端共用的行为测试
func testRoomStore(t *testing.T, store RoomStore) {
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("get missing", func(t *testing.T) {
		_, err := store.Get(ctx, "NOPE00")
		assert.ErrorIs(t, err, apperrors.ErrRoomNotFound)
	})

	t.Run("create get delete", func(t *testing.T) {
		r := newStoredRoom("AAA111", base)
		require.NoError(t, store.Create(ctx, r))
		assert.ErrorIs(t, store.Create(ctx, r), ErrRoomExists)

		got, err := store.Get(ctx, "aaa111")
		require.NoError(t, err)
		assert.Equal(t, r.Code, got.Code)
		assert.Equal(t, "Ana", got.Players[0].Name)
		assert.True(t, got.CreatedAt.Equal(base))

		require.NoError(t, store.Delete(ctx, r.Code))
		_, err = store.Get(ctx, r.Code)
		assert.ErrorIs(t, err, apperrors.ErrRoomNotFound)
	})

	t.Run("update writes result", func(t *testing.T) {
		require.NoError(t, store.Create(ctx, newStoredRoom("BBB222", base)))

		updated, err := store.Update(ctx, "BBB222", func(r *room.Room) (*room.Room, error) {
			_, err := r.AddPlayer("p2", "Luis", base)
			return r, err
		})
		require.NoError(t, err)
		assert.Len(t, updated.Players, 2)

		got, err := store.Get(ctx, "BBB222")
		require.NoError(t, err)
		assert.Len(t, got.Players, 2)
	})

	t.Run("update error leaves room untouched", func(t *testing.T) {
		require.NoError(t, store.Create(ctx, newStoredRoom("CCC333", base)))
		boom := errors.New("boom")

		_, err := store.Update(ctx, "CCC333", func(r *room.Room) (*room.Room, error) {
			r.Players[0].Name = "cambiado"
			return r, boom
		})
		assert.ErrorIs(t, err, boom)

		got, err := store.Get(ctx, "CCC333")
		require.NoError(t, err)
		assert.Equal(t, "Ana", got.Players[0].Name)
	})

	t.Run("update nil skips write", func(t *testing.T) {
		require.NoError(t, store.Create(ctx, newStoredRoom("DDD444", base)))
		got, err := store.Update(ctx, "DDD444", func(r *room.Room) (*room.Room, error) {
			r.Players[0].Name = "cambiado"
			return nil, nil
		})
		require.NoError(t, err)
		assert.Equal(t, "DDD444", got.Code)

		stored, err := store.Get(ctx, "DDD444")
		require.NoError(t, err)
		assert.Equal(t, "Ana", stored.Players[0].Name)
	})

	t.Run("update missing", func(t *testing.T) {
		_, err := store.Update(ctx, "ZZZ999", func(r *room.Room) (*room.Room, error) { return r, nil })
		assert.ErrorIs(t, err, apperrors.ErrRoomNotFound)
	})

	t.Run("list sorted by creation", func(t *testing.T) {
		require.NoError(t, store.Create(ctx, newStoredRoom("LST002", base.Add(2*time.Minute))))
		require.NoError(t, store.Create(ctx, newStoredRoom("LST001", base.Add(time.Minute))))

		rooms, err := store.List(ctx)
		require.NoError(t, err)
		var codes []string
		for _, r := range rooms {
			codes = append(codes, r.Code)
		}
		assert.Subset(t, codes, []string{"LST001", "LST002"})
		i1 := indexOf(codes, "LST001")
		i2 := indexOf(codes, "LST002")
		assert.Less(t, i1, i2)
	})

	t.Run("concurrent updates are serialized", func(t *testing.T) {
		require.NoError(t, store.Create(ctx, newStoredRoom("CNC001", base)))

		const workers = 8
		var wg sync.WaitGroup
		errs := make(chan error, workers)
		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := store.Update(ctx, "CNC001", func(r *room.Room) (*room.Room, error) {
					r.RoundNumber++
					return r, nil
				})
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		got, err := store.Get(ctx, "CNC001")
		require.NoError(t, err)
		assert.Equal(t, workers, got.RoundNumber)
	})
}

func indexOf(codes []string, code string) int {
	for i, c := range codes {
		if c == code {
			return i
		}
	}
	return -1
}

func TestRedisStore(t *testing.T) {
	store, _ := newTestRedisStore(t)
	assert.Equal(t, "redis", store.Backend())
	testRoomStore(t, store)
}

func TestRedisStore_TTL(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, newStoredRoom("TTL001", time.Now())))
	assert.Equal(t, time.Hour, mr.TTL(roomKey("TTL001")))

	mr.FastForward(2 * time.Hour)
	_, err := store.Get(ctx, "TTL001")
	assert.ErrorIs(t, err, apperrors.ErrRoomNotFound)
}

func TestRedisStore_UpdateRefreshesTTL(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, newStoredRoom("TTL002", time.Now())))
	mr.FastForward(30 * time.Minute)

	_, err := store.Update(ctx, "TTL002", func(r *room.Room) (*room.Room, error) { return r, nil })
	require.NoError(t, err)
	assert.Equal(t, time.Hour, mr.TTL(roomKey("TTL002")))
}

func TestRedisStore_ConnectionError(t *testing.T) {
	store, mr := newTestRedisStore(t)
	mr.Close()

	_, err := store.Get(context.Background(), "ABC123")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrRoomNotFound)
}
