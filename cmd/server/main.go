package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/palemoky/cartas-online/internal/config"
	"github.com/palemoky/cartas-online/internal/game/engine"
	"github.com/palemoky/cartas-online/internal/logger"
	"github.com/palemoky/cartas-online/internal/server"
	"github.com/palemoky/cartas-online/internal/server/session"
	"github.com/palemoky/cartas-online/internal/server/storage"
)

const (
	connectTimeout  = 5 * time.Second
	cleanupInterval = 10 * time.Minute
)

// cleaner 需要主动清理过期房间的存储（redis 依赖 key 过期）
type cleaner interface {
	RunCleanup(ctx context.Context, interval time.Duration) error
}

func main() {
	configPath := flag.String("config", "configs/config.yaml", "配置文件路径")
	flag.Parse()

	if err := config.LoadDotEnv(); err != nil {
		logger.L().Warnf("加载 .env 失败: %v", err)
	}

	// 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.L().Fatalf("加载配置文件失败: %v", err)
		}
		logger.L().Warnf("配置文件 %s 不存在，使用默认配置", *configPath)
		if cfg, err = config.FromEnv(); err != nil {
			logger.L().Fatalf("配置无效: %v", err)
		}
	}
	if err := logger.Init(cfg.Log); err != nil {
		logger.L().Fatalf("初始化日志失败: %v", err)
	}

	// 优雅关闭
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg)
	stop()
	logger.Close()

	if err != nil {
		logger.LogError("服务器异常退出: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	store, leaderboard, err := openStore(connectCtx, cfg)
	cancel()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	hub := server.NewHub()
	deps := server.Deps{Hub: hub}
	opts := []session.Option{session.WithNotifier(hub)}
	if leaderboard != nil {
		opts = append(opts, session.WithRecorder(leaderboard))
		deps.Leaderboard = leaderboard
	}

	eng := engine.New(engine.SettingsFrom(cfg.Game))
	deps.Manager = session.NewManager(store, eng, opts...)
	srv := server.NewServer(cfg, deps)

	logger.LogInfo("🎮 Cartas Online 服务器启动中...")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx) })
	if c, ok := store.(cleaner); ok {
		g.Go(func() error { return c.RunCleanup(gctx, cleanupInterval) })
	}
	return g.Wait()
}

// openStore 按配置创建房间存储；redis 存储同时启用排行榜
func openStore(ctx context.Context, cfg *config.Config) (storage.RoomStore, *storage.LeaderboardManager, error) {
	ttl := cfg.Storage.RoomTTL()

	switch cfg.Storage.Backend {
	case config.BackendRedis:
		client, err := storage.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		logger.L().Infof("📦 使用 Redis 存储: %s", cfg.Redis.Addr)
		return storage.NewRedisStore(client, ttl), storage.NewLeaderboardManager(client), nil

	case config.BackendPostgres:
		ps, err := storage.NewPostgresStore(ctx, cfg.Postgres, ttl)
		if err != nil {
			return nil, nil, err
		}
		logger.L().Info("📦 使用 Postgres 存储")
		return ps, nil, nil

	default:
		logger.L().Warn("📦 使用内存存储，重启后房间会丢失")
		return storage.NewMemoryStore(ttl), nil, nil
	}
}
