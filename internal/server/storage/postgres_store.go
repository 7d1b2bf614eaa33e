package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/palemoky/cartas-online/internal/apperrors"
	"github.com/palemoky/cartas-online/internal/config"
	"github.com/palemoky/cartas-online/internal/game/room"
	"github.com/palemoky/cartas-online/internal/logger"
)

var migrations = []string{`
CREATE TABLE IF NOT EXISTS rooms (
	code       TEXT PRIMARY KEY,
	status     TEXT NOT NULL,
	data       JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS rooms_expires_at_idx ON rooms (expires_at)`,
}

const upsertRoom = `
INSERT INTO rooms (code, status, data, created_at, updated_at, expires_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (code) DO UPDATE
SET status = EXCLUDED.status, data = EXCLUDED.data,
    updated_at = EXCLUDED.updated_at, expires_at = EXCLUDED.expires_at`

// PostgresStore Postgres 存储，Update 使用 SELECT ... FOR UPDATE 行锁
type PostgresStore struct {
	pool *pgxpool.Pool
	ttl  time.Duration
}

// NewPostgresStore 连接数据库并确保表存在
func NewPostgresStore(ctx context.Context, cfg config.PostgresConfig, ttl time.Duration) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("创建 Postgres 连接池失败: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("连接 Postgres 失败: %w", err)
	}
	if ttl <= 0 {
		ttl = DefaultRoomTTL
	}

	ps := &PostgresStore{pool: pool, ttl: ttl}
	if err := ps.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return ps, nil
}

// Migrate 创建 rooms 表
func (ps *PostgresStore) Migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := ps.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("创建 rooms 表失败: %w", err)
		}
	}
	return nil
}

func (ps *PostgresStore) Backend() string { return config.BackendPostgres }

func (ps *PostgresStore) Close() error {
	ps.pool.Close()
	return nil
}

// write 写入房间，tx 为 nil 时直接使用连接池
func (ps *PostgresStore) write(ctx context.Context, tx pgx.Tx, r *room.Room) error {
	data, err := room.Encode(r)
	if err != nil {
		return err
	}
	now := time.Now()
	args := []any{r.Code, r.Status.String(), data, r.CreatedAt, now, now.Add(ps.ttl)}
	if tx != nil {
		_, err = tx.Exec(ctx, upsertRoom, args...)
	} else {
		_, err = ps.pool.Exec(ctx, upsertRoom, args...)
	}
	return err
}

// Get 读取未过期的房间
func (ps *PostgresStore) Get(ctx context.Context, code string) (*room.Room, error) {
	var data []byte
	err := ps.pool.QueryRow(ctx,
		`SELECT data FROM rooms WHERE code = $1 AND expires_at > now()`,
		room.NormalizeCode(code),
	).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrRoomNotFound
		}
		return nil, err
	}
	return room.Decode(data)
}

// Create 插入新房间，已过期的同号房间会被替换
func (ps *PostgresStore) Create(ctx context.Context, r *room.Room) error {
	data, err := room.Encode(r)
	if err != nil {
		return err
	}
	now := time.Now()
	tag, err := ps.pool.Exec(ctx, `
INSERT INTO rooms (code, status, data, created_at, updated_at, expires_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (code) DO UPDATE
SET status = EXCLUDED.status, data = EXCLUDED.data, created_at = EXCLUDED.created_at,
    updated_at = EXCLUDED.updated_at, expires_at = EXCLUDED.expires_at
WHERE rooms.expires_at <= now()`,
		r.Code, r.Status.String(), data, r.CreatedAt, now, now.Add(ps.ttl))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRoomExists
	}
	return nil
}

// Set 保存房间并刷新过期时间
func (ps *PostgresStore) Set(ctx context.Context, r *room.Room) error {
	return ps.write(ctx, nil, r)
}

// Delete 删除房间
func (ps *PostgresStore) Delete(ctx context.Context, code string) error {
	_, err := ps.pool.Exec(ctx, `DELETE FROM rooms WHERE code = $1`, room.NormalizeCode(code))
	return err
}

// List 按创建时间返回所有未过期的房间
func (ps *PostgresStore) List(ctx context.Context) ([]*room.Room, error) {
	rows, err := ps.pool.Query(ctx,
		`SELECT data FROM rooms WHERE expires_at > now() ORDER BY created_at, code`)
	if err != nil {
		return nil, err
	}
	blobs, err := pgx.CollectRows(rows, pgx.RowTo[[]byte])
	if err != nil {
		return nil, err
	}

	rooms := make([]*room.Room, 0, len(blobs))
	for _, data := range blobs {
		r, err := room.Decode(data)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, r)
	}
	return rooms, nil
}

// Update 在事务中锁定房间行后执行读改写
func (ps *PostgresStore) Update(ctx context.Context, code string, fn UpdateFunc) (*room.Room, error) {
	tx, err := ps.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var data []byte
	err = tx.QueryRow(ctx,
		`SELECT data FROM rooms WHERE code = $1 AND expires_at > now() FOR UPDATE`,
		room.NormalizeCode(code),
	).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrRoomNotFound
		}
		return nil, err
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

	if err := ps.write(ctx, tx, next); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return next, nil
}

// Cleanup 删除过期房间
func (ps *PostgresStore) Cleanup(ctx context.Context) (int64, error) {
	tag, err := ps.pool.Exec(ctx, `DELETE FROM rooms WHERE expires_at <= now()`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// RunCleanup 定期删除过期房间，直到 ctx 结束
func (ps *PostgresStore) RunCleanup(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := ps.Cleanup(ctx)
			if err != nil {
				logger.L().WithError(err).Warn("清理过期房间失败")
				continue
			}
			if n > 0 {
				logger.L().Infof("🧹 清理了 %d 个过期房间", n)
			}
		}
	}
}
