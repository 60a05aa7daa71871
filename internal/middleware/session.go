package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const (
	// HeaderSessionID 购物车会话标识请求头。
	HeaderSessionID = "X-Session-ID"

	contextKeySessionID contextKey = "session_id"
)

// Session 确保每个请求都带有购物车会话 ID：
// 1) 优先读取请求头 X-Session-ID；
// 2) 其次读取同名 cookie；
// 3) 都没有则生成 UUID 并通过响应头和 cookie 下发。
// 匿名访客和登录用户共用同一套会话机制，购物车按会话 ID 隔离。
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid := strings.TrimSpace(r.Header.Get(HeaderSessionID))
		if sid == "" {
			if c, err := r.Cookie("session_id"); err == nil {
				sid = strings.TrimSpace(c.Value)
			}
		}
		if sid == "" {
			sid = uuid.New().String()
			http.SetCookie(w, &http.Cookie{
				Name:     "session_id",
				Value:    sid,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		w.Header().Set(HeaderSessionID, sid)
		next.ServeHTTP(w, r.WithContext(withSessionID(r.Context(), sid)))
	})
}

// withSessionID 将会话 ID 写入上下文。
func withSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKeySessionID, id)
}

// SessionIDFromContext 从上下文中读取会话 ID（可能为空）。
func SessionIDFromContext(ctx context.Context) string {
	if v := ctx.Value(contextKeySessionID); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
