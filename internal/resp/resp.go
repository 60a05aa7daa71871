// Package resp 提供统一的HTTP响应封装。
// 所有API响应都使用相同的信封结构，便于前端统一处理。
package resp

import (
	"encoding/json"
	"net/http"
)

// 业务响应码定义
const (
	CodeOK            = 0    // 成功
	CodeInvalidParam  = 1001 // 参数错误
	CodeUnauthorized  = 1002 // 未认证
	CodeForbidden     = 1003 // 无权限
	CodeNotFound      = 1004 // 资源不存在
	CodeConflict      = 1005 // 资源冲突
	CodeTimeout       = 1006 // 请求超时
	CodeInternalError = 2001 // 内部错误
)

// Response 统一响应信封
type Response struct {
	Code      int         `json:"code"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// OK 写入成功响应
func OK(w http.ResponseWriter, data interface{}, requestID, traceID string) {
	write(w, http.StatusOK, &Response{
		Code:      CodeOK,
		Message:   "ok",
		Data:      data,
		RequestID: requestID,
		TraceID:   traceID,
	})
}

// Error 写入错误响应
func Error(w http.ResponseWriter, status, code int, message, requestID, traceID string) {
	write(w, status, &Response{
		Code:      code,
		Message:   message,
		RequestID: requestID,
		TraceID:   traceID,
	})
}

// ErrorWithData 写入带附加数据的错误响应。
// 用于失败但仍需向客户端传递状态的场景（如支付被拒后的结算状态）。
func ErrorWithData(w http.ResponseWriter, status, code int, message string, data interface{}, requestID, traceID string) {
	write(w, status, &Response{
		Code:      code,
		Message:   message,
		Data:      data,
		RequestID: requestID,
		TraceID:   traceID,
	})
}

// HTTPStatusFromCode 根据业务响应码推导HTTP状态码
func HTTPStatusFromCode(code int) int {
	switch code {
	case CodeOK:
		return http.StatusOK
	case CodeInvalidParam:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// write 序列化并写入响应体
func write(w http.ResponseWriter, status int, body *Response) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
