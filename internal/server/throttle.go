package server

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/palemoky/cartas-online/internal/logger"
)

const (
	throttleSweepInterval = 5 * time.Minute
	throttleIdleTTL       = 10 * time.Minute
)

// bucketState 一个限流 key 的令牌桶
type bucketState struct {
	limiter     *rate.Limiter
	lastSeen    time.Time
	bannedUntil time.Time
}

// Throttle 按 key 分桶的令牌桶限流；ban 大于 0 时桶空后封禁该 key
type Throttle struct {
	name  string
	limit rate.Limit
	burst int
	ban   time.Duration

	mu      sync.Mutex
	buckets map[string]*bucketState
	now     func() time.Time
}

// NewThrottle 创建限流器，每秒补充 limit 个令牌，最多积攒 burst 个
func NewThrottle(name string, limit rate.Limit, burst int, ban time.Duration) *Throttle {
	return &Throttle{
		name:    name,
		limit:   limit,
		burst:   max(burst, 1),
		ban:     ban,
		buckets: make(map[string]*bucketState),
		now:     time.Now,
	}
}

// Allow 消耗 key 的一个令牌
func (t *Throttle) Allow(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	b, ok := t.buckets[key]
	if !ok {
		b = &bucketState{limiter: rate.NewLimiter(t.limit, t.burst)}
		t.buckets[key] = b
	}
	b.lastSeen = now

	if now.Before(b.bannedUntil) {
		return false
	}
	if b.limiter.AllowN(now, 1) {
		return true
	}

	if t.ban > 0 {
		b.bannedUntil = now.Add(t.ban)
		logger.L().WithField("throttle", t.name).Warnf("⚠️ %s 请求过于频繁，封禁 %v", key, t.ban)
	}
	return false
}

// Banned key 是否处于封禁期
func (t *Throttle) Banned(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	b, ok := t.buckets[key]
	return ok && t.now().Before(b.bannedUntil)
}

// Sweep 丢弃空闲超过 10 分钟且没有封禁的桶，返回丢弃数量
func (t *Throttle) Sweep() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	dropped := 0
	for key, b := range t.buckets {
		if now.Sub(b.lastSeen) > throttleIdleTTL && !now.Before(b.bannedUntil) {
			delete(t.buckets, key)
			dropped++
		}
	}
	return dropped
}

// Run 定期 Sweep，直到 ctx 结束
func (t *Throttle) Run(ctx context.Context) {
	ticker := time.NewTicker(throttleSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := t.Sweep(); n > 0 {
				logger.L().WithField("throttle", t.name).Debugf("🧹 清理了 %d 个空闲限流记录", n)
			}
		}
	}
}
