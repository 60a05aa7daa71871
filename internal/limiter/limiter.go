// Package limiter 提供基于令牌桶的请求限流。
package limiter

import (
	"context"
	"time"
)

// Result 单次限流判定的结果
type Result struct {
	Allowed    bool          `json:"allowed"`     // 是否允许通过
	Remaining  int64         `json:"remaining"`   // 剩余配额
	RetryAfter time.Duration `json:"retry_after"` // 建议重试时间
}

// Limiter 限流器接口
type Limiter interface {
	// Allow 检查指定key是否允许一次请求通过
	Allow(ctx context.Context, key string) (*Result, error)
}

// Config 限流配置
type Config struct {
	Rate      int64         // 速率（请求数/时间窗口）
	Burst     int64         // 突发容量
	Window    time.Duration // 时间窗口
	KeyPrefix string        // Redis key前缀
}
