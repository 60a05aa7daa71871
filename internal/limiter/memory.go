package limiter

import (
	"context"
	"math"
	"sync"
	"time"
)

// MemoryTokenBucket 进程内令牌桶限流器（开发和测试用，单实例有效）。
type MemoryTokenBucket struct {
	mu      sync.Mutex
	config  *Config
	buckets map[string]*memoryBucket
}

type memoryBucket struct {
	tokens     float64
	lastRefill time.Time
}

// NewMemoryTokenBucket 创建内存令牌桶限流器
func NewMemoryTokenBucket(config *Config) *MemoryTokenBucket {
	return &MemoryTokenBucket{
		config:  config,
		buckets: make(map[string]*memoryBucket),
	}
}

// Allow 检查是否允许请求通过
func (tb *MemoryTokenBucket) Allow(ctx context.Context, key string) (*Result, error) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	b, exists := tb.buckets[key]
	if !exists {
		b = &memoryBucket{tokens: float64(tb.config.Burst), lastRefill: now}
		tb.buckets[key] = b
	}

	elapsed := now.Sub(b.lastRefill).Seconds()
	refill := elapsed * float64(tb.config.Rate) / tb.config.Window.Seconds()
	b.tokens = math.Min(float64(tb.config.Burst), b.tokens+refill)
	b.lastRefill = now

	if b.tokens >= 1 {
		b.tokens--
		return &Result{Allowed: true, Remaining: int64(b.tokens)}, nil
	}

	retryAfter := time.Duration(float64(tb.config.Window) / float64(tb.config.Rate))
	return &Result{Allowed: false, Remaining: 0, RetryAfter: retryAfter}, nil
}
