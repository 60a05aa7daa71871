package api

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/sabordaterra/loja/internal/middleware"
	"github.com/sabordaterra/loja/internal/resp"
	"github.com/sabordaterra/loja/internal/service"
)

// OrderHandler 订单查询的HTTP处理器
type OrderHandler struct {
	orderService service.OrderService
	logger       *zap.Logger
}

// NewOrderHandler 创建订单处理器实例
func NewOrderHandler(orderService service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger,
	}
}

// ListOrders 列出当前用户的订单
// GET /api/v1/orders?page=1&page_size=20（需要认证）
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())

	user := middleware.UserFromContext(r.Context())
	if user == nil {
		resp.Error(w, http.StatusUnauthorized, resp.CodeUnauthorized, "authentication required", reqID, "")
		return
	}

	page, err := h.orderService.ListUserOrders(user.ID, queryInt(r, "page", 1), queryInt(r, "page_size", 20))
	if err != nil {
		h.logger.Error("list orders failed", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusInternalServerError, resp.CodeInternalError, "list orders failed", reqID, "")
		return
	}

	resp.OK(w, page, reqID, "")
}

// GetOrder 获取当前用户的订单详情
// GET /api/v1/orders/{id}（需要认证）
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())

	user := middleware.UserFromContext(r.Context())
	if user == nil {
		resp.Error(w, http.StatusUnauthorized, resp.CodeUnauthorized, "authentication required", reqID, "")
		return
	}

	id, ok := pathID("/api/v1/orders/", r.URL.Path)
	if !ok {
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "invalid order ID", reqID, "")
		return
	}

	order, err := h.orderService.GetUserOrder(user.ID, id)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			resp.Error(w, http.StatusNotFound, resp.CodeNotFound, "order not found", reqID, "")
			return
		}
		h.logger.Error("get order failed", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusInternalServerError, resp.CodeInternalError, "get order failed", reqID, "")
		return
	}

	resp.OK(w, order, reqID, "")
}
