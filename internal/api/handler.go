// Package api 提供HTTP API处理器实现。
// API层负责解析请求、校验参数并把领域错误映射为HTTP响应。
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/sabordaterra/loja/internal/middleware"
	"github.com/sabordaterra/loja/internal/resp"
)

// decodeJSON 解析请求体，失败时写入400响应并返回false
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		reqID := middleware.RequestIDFromContext(r.Context())
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "invalid request body", reqID, "")
		return false
	}
	return true
}

// pathID 从URL路径中提取指定前缀后的数字ID。
// 例如 pathID("/api/v1/products/", "/api/v1/products/42") 返回 42。
func pathID(prefix, path string) (int64, bool) {
	rest := strings.TrimPrefix(path, prefix)
	if rest == path || rest == "" {
		return 0, false
	}
	// 只取第一段，后缀路由由调用方处理
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		rest = rest[:i]
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// queryInt 读取整型查询参数，非法或缺省时返回默认值
func queryInt(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
