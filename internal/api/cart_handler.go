package api

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/sabordaterra/loja/internal/domain"
	"github.com/sabordaterra/loja/internal/middleware"
	"github.com/sabordaterra/loja/internal/resp"
	"github.com/sabordaterra/loja/internal/service"
)

// CartHandler 购物车相关的HTTP处理器。
// 购物车按会话隔离，会话ID由Session中间件保证存在。
type CartHandler struct {
	cartService service.CartService
	logger      *zap.Logger
}

// NewCartHandler 创建购物车处理器实例
func NewCartHandler(cartService service.CartService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		logger:      logger,
	}
}

// cartView 购物车响应，带派生的合计字段
type cartView struct {
	Lines     []*domain.CartLine `json:"lines"`
	ItemCount int                `json:"item_count"`
	Subtotal  float64            `json:"subtotal"`
}

func newCartView(cart *domain.Cart) *cartView {
	lines := cart.Lines
	if lines == nil {
		lines = []*domain.CartLine{}
	}
	return &cartView{
		Lines:     lines,
		ItemCount: cart.ItemCount(),
		Subtotal:  cart.Subtotal(),
	}
}

// addItemRequest 加购请求
type addItemRequest struct {
	ProductID int64                     `json:"product_id"`
	Quantity  int                       `json:"quantity"`
	Selection domain.VariationSelection `json:"selection,omitempty"`
}

// updateItemRequest 数量变更请求，quantity为目标值而非增量
type updateItemRequest struct {
	LineKey  string `json:"line_key"`
	Quantity int    `json:"quantity"`
}

// removeItemRequest 删除行请求
type removeItemRequest struct {
	LineKey string `json:"line_key"`
}

// GetCart 获取当前会话的购物车
// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())
	sessionID := middleware.SessionIDFromContext(r.Context())

	cart, err := h.cartService.GetCart(r.Context(), sessionID)
	if err != nil {
		h.logger.Error("get cart failed", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusInternalServerError, resp.CodeInternalError, "get cart failed", reqID, "")
		return
	}

	resp.OK(w, newCartView(cart), reqID, "")
}

// AddItem 加购商品
// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())
	sessionID := middleware.SessionIDFromContext(r.Context())

	var req addItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ProductID <= 0 {
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "product_id is required", reqID, "")
		return
	}

	cart, err := h.cartService.AddItem(r.Context(), sessionID, req.ProductID, req.Quantity, req.Selection)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			resp.Error(w, http.StatusNotFound, resp.CodeNotFound, "product not found", reqID, "")
		case errors.Is(err, service.ErrProductUnavailable):
			resp.Error(w, http.StatusConflict, resp.CodeConflict, "product is not available", reqID, "")
		case errors.Is(err, service.ErrIncompleteSelection):
			resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "variation selection is incomplete", reqID, "")
		default:
			h.logger.Error("add cart item failed", zap.String("request_id", reqID), zap.Error(err))
			resp.Error(w, http.StatusInternalServerError, resp.CodeInternalError, "add cart item failed", reqID, "")
		}
		return
	}

	resp.OK(w, newCartView(cart), reqID, "")
}

// UpdateItem 设置行数量，数量小于等于0等价于删除
// POST /api/v1/cart/items/update
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())
	sessionID := middleware.SessionIDFromContext(r.Context())

	var req updateItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.LineKey == "" {
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "line_key is required", reqID, "")
		return
	}

	cart, err := h.cartService.UpdateItem(r.Context(), sessionID, req.LineKey, req.Quantity)
	if err != nil {
		if errors.Is(err, service.ErrCartLineNotFound) {
			resp.Error(w, http.StatusNotFound, resp.CodeNotFound, "cart line not found", reqID, "")
			return
		}
		h.logger.Error("update cart item failed", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusInternalServerError, resp.CodeInternalError, "update cart item failed", reqID, "")
		return
	}

	resp.OK(w, newCartView(cart), reqID, "")
}

// RemoveItem 删除行，行不存在时也返回成功
// POST /api/v1/cart/items/remove
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())
	sessionID := middleware.SessionIDFromContext(r.Context())

	var req removeItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.LineKey == "" {
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "line_key is required", reqID, "")
		return
	}

	cart, err := h.cartService.RemoveItem(r.Context(), sessionID, req.LineKey)
	if err != nil {
		h.logger.Error("remove cart item failed", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusInternalServerError, resp.CodeInternalError, "remove cart item failed", reqID, "")
		return
	}

	resp.OK(w, newCartView(cart), reqID, "")
}

// ClearCart 清空购物车
// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())
	sessionID := middleware.SessionIDFromContext(r.Context())

	if err := h.cartService.ClearCart(r.Context(), sessionID); err != nil {
		h.logger.Error("clear cart failed", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusInternalServerError, resp.CodeInternalError, "clear cart failed", reqID, "")
		return
	}

	resp.OK(w, newCartView(domain.NewCart()), reqID, "")
}
