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

// CheckoutHandler 结算相关的HTTP处理器。
// 访客和登录用户都可以结算；积分兑换只对登录用户开放。
type CheckoutHandler struct {
	checkoutService service.CheckoutService
	logger          *zap.Logger
}

// NewCheckoutHandler 创建结算处理器实例
func NewCheckoutHandler(checkoutService service.CheckoutService, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		logger:          logger,
	}
}

// currentUserID 返回登录用户ID，访客为0
func currentUserID(r *http.Request) int64 {
	if user := middleware.UserFromContext(r.Context()); user != nil {
		return user.ID
	}
	return 0
}

// Quote 结算试算：按当前购物车和可选的奖励给出金额和积分预览。
// 只读操作，不扣积分也不锁定任何东西。
// POST /api/v1/checkout/quote
func (h *CheckoutHandler) Quote(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())
	sessionID := middleware.SessionIDFromContext(r.Context())

	var req domain.QuoteCheckoutRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	quote, err := h.checkoutService.Quote(r.Context(), sessionID, currentUserID(r), req.RewardID)
	if err != nil {
		h.writeCheckoutError(w, r, err, "quote failed")
		return
	}

	resp.OK(w, quote, reqID, "")
}

// Submit 提交结算：支付、扣积分、落订单、清空购物车、发放积分。
// POST /api/v1/checkout/submit
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())
	sessionID := middleware.SessionIDFromContext(r.Context())

	var req domain.SubmitCheckoutRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.PaymentMethod == "" {
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "payment_method is required", reqID, "")
		return
	}

	result, err := h.checkoutService.Submit(r.Context(), sessionID, currentUserID(r), &req)
	if err != nil {
		// 被拒绝的提交仍带有状态信息，随错误响应一起返回
		switch {
		case errors.Is(err, service.ErrPaymentDeclined):
			h.writeSubmitFailure(w, reqID, http.StatusPaymentRequired, "payment declined", result)
		case errors.Is(err, service.ErrRedemptionFailed):
			h.writeSubmitFailure(w, reqID, http.StatusConflict, "points redemption failed", result)
		default:
			h.writeCheckoutError(w, r, err, "checkout failed")
		}
		return
	}

	resp.OK(w, result, reqID, "")
}

// writeSubmitFailure 写入带状态数据的提交失败响应
func (h *CheckoutHandler) writeSubmitFailure(w http.ResponseWriter, reqID string, status int, message string, result *service.SubmitResult) {
	resp.ErrorWithData(w, status, resp.CodeConflict, message, result, reqID, "")
}

// writeCheckoutError 把结算领域错误映射为HTTP响应
func (h *CheckoutHandler) writeCheckoutError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	reqID := middleware.RequestIDFromContext(r.Context())

	switch {
	case errors.Is(err, service.ErrEmptyCart):
		resp.Error(w, http.StatusConflict, resp.CodeConflict, "cart is empty", reqID, "")
	case errors.Is(err, service.ErrLoginRequired):
		resp.Error(w, http.StatusUnauthorized, resp.CodeUnauthorized, "login required to redeem points", reqID, "")
	case errors.Is(err, service.ErrRewardNotFound):
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "unknown reward", reqID, "")
	case errors.Is(err, service.ErrLoyaltyDisabled):
		resp.Error(w, http.StatusConflict, resp.CodeConflict, "loyalty program is disabled", reqID, "")
	case errors.Is(err, service.ErrInsufficientPoints):
		resp.Error(w, http.StatusConflict, resp.CodeConflict, "insufficient points", reqID, "")
	case errors.Is(err, service.ErrUnknownPaymentMethod):
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "unknown payment method", reqID, "")
	default:
		h.logger.Error(fallback, zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusInternalServerError, resp.CodeInternalError, fallback, reqID, "")
	}
}
