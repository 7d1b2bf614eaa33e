package storage

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/palemoky/cartas-online/internal/apperrors"
	"github.com/palemoky/cartas-online/internal/config"
	"github.com/palemoky/cartas-online/internal/game/room"
)

const (
	// Redis key 前缀
	roomKeyPrefix = "room:"

	// 乐观锁冲突时的最大重试次数
	maxUpdateRetries = 16
)

// ErrTooManyConflicts 房间并发修改过多，重试后仍然冲突
var ErrTooManyConflicts = errors.New("房间并发修改冲突")

// RedisStore Redis 存储，Update 基于 WATCH/MULTI 乐观锁
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore 创建 Redis 存储
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultRoomTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

// NewRedisClient 根据配置创建客户端并检查连接
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("连接 Redis %s 失败: %w", cfg.Addr, err)
	}
	return client, nil
}

func roomKey(code string) string {
	return roomKeyPrefix + room.NormalizeCode(code)
}

func (rs *RedisStore) Backend() string { return config.BackendRedis }

func (rs *RedisStore) Close() error { return rs.client.Close() }

// Get 从 Redis 读取房间
func (rs *RedisStore) Get(ctx context.Context, code string) (*room.Room, error) {
	data, err := rs.client.Get(ctx, roomKey(code)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.ErrRoomNotFound
		}
		return nil, err
	}
	return room.Decode(data)
}

// Create 仅在房间号未被占用时保存
func (rs *RedisStore) Create(ctx context.Context, r *room.Room) error {
	data, err := room.Encode(r)
	if err != nil {
		return err
	}
	ok, err := rs.client.SetNX(ctx, roomKey(r.Code), data, rs.ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrRoomExists
	}
	return nil
}

// Set 保存房间并刷新过期时间
func (rs *RedisStore) Set(ctx context.Context, r *room.Room) error {
	data, err := room.Encode(r)
	if err != nil {
		return err
	}
	return rs.client.Set(ctx, roomKey(r.Code), data, rs.ttl).Err()
}

// Delete 从 Redis 删除房间
func (rs *RedisStore) Delete(ctx context.Context, code string) error {
	return rs.client.Del(ctx, roomKey(code)).Err()
}

// List 扫描所有房间，按创建时间排序
func (rs *RedisStore) List(ctx context.Context) ([]*room.Room, error) {
	var keys []string
	iter := rs.client.Scan(ctx, 0, roomKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return []*room.Room{}, nil
	}

	values, err := rs.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	rooms := make([]*room.Room, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			continue // 扫描之后过期或被删除
		}
		r, err := room.Decode([]byte(s))
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

// Update 使用 WATCH 监视房间 key，冲突时重试
func (rs *RedisStore) Update(ctx context.Context, code string, fn UpdateFunc) (*room.Room, error) {
	key := roomKey(code)
	var result *room.Room

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return apperrors.ErrRoomNotFound
			}
			return err
		}
		current, err := room.Decode(data)
		if err != nil {
			return err
		}

		next, err := fn(current)
		if err != nil {
			return err
		}
		if next == nil {
			result = current
			return nil
		}

		encoded, err := room.Encode(next)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, rs.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		result = next
		return nil
	}

	for range maxUpdateRetries {
		err := rs.client.Watch(ctx, txf, key)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}
	return nil, ErrTooManyConflicts
}
