package limiter

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/sabordaterra/loja/internal/middleware"
	"github.com/sabordaterra/loja/internal/resp"
)

// KeyFunc 从请求中提取限流维度的key
type KeyFunc func(r *http.Request) string

// KeyBySession 按购物车会话限流，无会话时退化到远端地址。
func KeyBySession(r *http.Request) string {
	if sid := middleware.SessionIDFromContext(r.Context()); sid != "" {
		return sid
	}
	return r.RemoteAddr
}

// Middleware 限流中间件。
// 超出配额的请求返回429并带Retry-After头；限流器故障时放行。
func Middleware(l Limiter, keyFn KeyFunc, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := middleware.RequestIDFromContext(r.Context())

			result, err := l.Allow(r.Context(), keyFn(r))
			if err != nil {
				logger.Warn("rate limit check failed",
					zap.String("request_id", reqID),
					zap.Error(err),
				)
				next.ServeHTTP(w, r)
				return
			}

			if !result.Allowed {
				if result.RetryAfter > 0 {
					w.Header().Set("Retry-After", fmt.Sprintf("%d", int(result.RetryAfter.Seconds())))
				}
				resp.Error(w, http.StatusTooManyRequests, resp.CodeInvalidParam, "too many requests", reqID, "")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
