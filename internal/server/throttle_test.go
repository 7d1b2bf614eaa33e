package server

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

// fakeClock 可手动推进的时钟
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newClockedThrottle(limit rate.Limit, burst int, ban time.Duration) (*Throttle, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)}
	th := NewThrottle("test", limit, burst, ban)
	th.now = clock.Now
	return th, clock
}

func TestThrottle_BurstThenRefill(t *testing.T) {
	t.Parallel()

	th, clock := newClockedThrottle(2, 2, 0)
	const seat = "ABC123/p1"

	require.True(t, th.Allow(seat))
	require.True(t, th.Allow(seat))
	assert.False(t, th.Allow(seat))
	assert.False(t, th.Banned(seat), "没有配置封禁时只拒绝本次请求")

	// 半秒补充一个令牌
	clock.Advance(500 * time.Millisecond)
	assert.True(t, th.Allow(seat))
	assert.False(t, th.Allow(seat))

	// 不同的 key 互不影响
	assert.True(t, th.Allow("ABC123/p2"))
}

func TestThrottle_Ban(t *testing.T) {
	t.Parallel()

	th, clock := newClockedThrottle(1, 1, 3*time.Second)
	const ip = "198.51.100.7"

	require.True(t, th.Allow(ip))
	assert.False(t, th.Allow(ip))
	assert.True(t, th.Banned(ip))

	// 封禁期内即使令牌已经补满也拒绝
	clock.Advance(2 * time.Second)
	assert.False(t, th.Allow(ip))

	clock.Advance(1500 * time.Millisecond)
	assert.False(t, th.Banned(ip))
	assert.True(t, th.Allow(ip))
}

func TestThrottle_Sweep(t *testing.T) {
	t.Parallel()

	th, clock := newClockedThrottle(1, 1, time.Hour)

	assert.True(t, th.Allow("idle"))
	assert.True(t, th.Allow("banned"))
	assert.False(t, th.Allow("banned"))

	clock.Advance(11 * time.Minute)
	assert.Equal(t, 1, th.Sweep(), "只清理空闲且未封禁的记录")
	assert.True(t, th.Banned("banned"))
	assert.Zero(t, th.Sweep())
}

func TestThrottle_ConcurrentPolling(t *testing.T) {
	t.Parallel()

	// 时钟不动，令牌只有初始的 30 个
	th, _ := newClockedThrottle(10, 30, 0)
	var allowed atomic.Int32
	var wg sync.WaitGroup

	for range 60 {
		wg.Go(func() {
			if th.Allow("ABC123/p1") {
				allowed.Add(1)
			}
		})
	}
	wg.Wait()

	assert.EqualValues(t, 30, allowed.Load())
}

func TestNewThrottle_MinimumBurst(t *testing.T) {
	t.Parallel()

	th, _ := newClockedThrottle(0, 0, 0)
	assert.True(t, th.Allow("k"))
	assert.False(t, th.Allow("k"))
}
