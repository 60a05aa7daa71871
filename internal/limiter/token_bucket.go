package limiter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisTokenBucket 基于Redis的令牌桶限流器。
// 使用Lua脚本保证补充和扣减的原子性，多实例部署时共享配额。
type RedisTokenBucket struct {
	client redis.Cmdable
	config *Config
}

// NewRedisTokenBucket 创建Redis令牌桶限流器
func NewRedisTokenBucket(client redis.Cmdable, config *Config) *RedisTokenBucket {
	if config.KeyPrefix == "" {
		config.KeyPrefix = "limiter:tb"
	}
	return &RedisTokenBucket{client: client, config: config}
}

// Lua脚本：按流逝时间补充令牌后尝试扣减一个
const tokenBucketScript = `
local key = KEYS[1]
local capacity = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local window = tonumber(ARGV[3])
local now = tonumber(ARGV[4])

local bucket = redis.call('HMGET', key, 'tokens', 'last_refill')
local tokens = tonumber(bucket[1]) or capacity
local last_refill = tonumber(bucket[2]) or now

local time_passed = math.max(0, now - last_refill)
local tokens_to_add = math.floor(time_passed * rate / window)
tokens = math.min(capacity, tokens + tokens_to_add)

if tokens >= 1 then
    tokens = tokens - 1
    redis.call('HMSET', key, 'tokens', tokens, 'last_refill', now)
    redis.call('EXPIRE', key, window * 2)
    return {1, tokens, 0}
else
    redis.call('HMSET', key, 'tokens', tokens, 'last_refill', now)
    redis.call('EXPIRE', key, window * 2)
    return {0, tokens, math.ceil(window / rate)}
end
`

// Allow 检查是否允许请求通过
func (tb *RedisTokenBucket) Allow(ctx context.Context, key string) (*Result, error) {
	redisKey := fmt.Sprintf("%s:%s", tb.config.KeyPrefix, key)

	cmd := tb.client.Eval(ctx, tokenBucketScript,
		[]string{redisKey},
		tb.config.Burst,
		tb.config.Rate,
		int64(tb.config.Window.Seconds()),
		time.Now().Unix(),
	)
	if cmd.Err() != nil {
		return nil, fmt.Errorf("failed to execute token bucket script: %w", cmd.Err())
	}

	values, ok := cmd.Val().([]interface{})
	if !ok || len(values) != 3 {
		return nil, fmt.Errorf("unexpected script result format")
	}

	return &Result{
		Allowed:    values[0].(int64) == 1,
		Remaining:  values[1].(int64),
		RetryAfter: time.Duration(values[2].(int64)) * time.Second,
	}, nil
}
