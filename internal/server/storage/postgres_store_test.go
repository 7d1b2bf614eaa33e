package storage

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/palemoky/cartas-online/internal/config"
)

// 需要真实数据库：CARTAS_TEST_POSTGRES_DSN=postgres://... go test ./internal/server/storage
func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("CARTAS_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("CARTAS_TEST_POSTGRES_DSN not set")
	}

	ctx := context.Background()
	store, err := NewPostgresStore(ctx, config.PostgresConfig{DSN: dsn}, time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	_, err = store.pool.Exec(ctx, `TRUNCATE rooms`)
	require.NoError(t, err)

	require.Equal(t, "postgres", store.Backend())
	testRoomStore(t, store)

	n, err := store.Cleanup(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
}
