// Package middleware 提供幂等性中间件。
package middleware

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/sabordaterra/loja/internal/cache"
	"github.com/sabordaterra/loja/internal/resp"
)

// 幂等键请求头名称。
const idempotencyKeyHeader = "X-Idempotency-Key"

// Idempotency 基于缓存的幂等性中间件。
// 带有 X-Idempotency-Key 头的写请求在 TTL 内只会被处理一次，
// 重复提交返回 409。不带幂等键的请求直接放行。
func Idempotency(c cache.Cache, ttl time.Duration, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			key := r.Header.Get(idempotencyKeyHeader)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			reqID := RequestIDFromContext(r.Context())
			cacheKey := "idempotency:" + key

			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()

			ok, err := c.SetNX(ctx, cacheKey, reqID, ttl)
			if err != nil {
				// 缓存故障时放行，幂等性退化为尽力而为
				logger.Warn("idempotency check failed",
					zap.String("request_id", reqID),
					zap.Error(err),
				)
				next.ServeHTTP(w, r)
				return
			}

			if !ok {
				logger.Info("duplicate request rejected",
					zap.String("request_id", reqID),
					zap.String("idempotency_key", key),
				)
				resp.Error(w, http.StatusConflict, resp.CodeConflict, "duplicate request", reqID, "")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
