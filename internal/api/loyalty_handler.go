package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/sabordaterra/loja/internal/domain"
	"github.com/sabordaterra/loja/internal/middleware"
	"github.com/sabordaterra/loja/internal/resp"
	"github.com/sabordaterra/loja/internal/service"
)

// LoyaltyHandler 忠诚度相关的HTTP处理器
type LoyaltyHandler struct {
	loyaltyService service.LoyaltyService
	logger         *zap.Logger
}

// NewLoyaltyHandler 创建忠诚度处理器实例
func NewLoyaltyHandler(loyaltyService service.LoyaltyService, logger *zap.Logger) *LoyaltyHandler {
	return &LoyaltyHandler{
		loyaltyService: loyaltyService,
		logger:         logger,
	}
}

// GetSummary 获取当前用户的忠诚度聚合视图：
// 账户余额、当前等级、下一等级进度、可配置的奖励和挑战。
// GET /api/v1/loyalty（需要认证）
func (h *LoyaltyHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())

	user := middleware.UserFromContext(r.Context())
	if user == nil {
		resp.Error(w, http.StatusUnauthorized, resp.CodeUnauthorized, "authentication required", reqID, "")
		return
	}

	summary, err := h.loyaltyService.Summary(user.ID)
	if err != nil {
		h.logger.Error("get loyalty summary failed", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusInternalServerError, resp.CodeInternalError, "get loyalty summary failed", reqID, "")
		return
	}

	resp.OK(w, summary, reqID, "")
}

// GetOfferableRewards 获取当前余额可兑换的奖励列表
// GET /api/v1/loyalty/rewards（需要认证）
func (h *LoyaltyHandler) GetOfferableRewards(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())

	user := middleware.UserFromContext(r.Context())
	if user == nil {
		resp.Error(w, http.StatusUnauthorized, resp.CodeUnauthorized, "authentication required", reqID, "")
		return
	}

	// 计划停用时返回空列表，前端无需特判
	rewards, err := h.loyaltyService.OfferableRewards(user.ID)
	if err != nil {
		h.logger.Error("get offerable rewards failed", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusInternalServerError, resp.CodeInternalError, "get offerable rewards failed", reqID, "")
		return
	}
	if rewards == nil {
		rewards = []domain.LoyaltyReward{}
	}

	resp.OK(w, rewards, reqID, "")
}
