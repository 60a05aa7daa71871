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

// SettingsHandler 忠诚度配置管理的HTTP处理器。
// 配置变更立即生效：等级、奖励和积分系数都在读取时解析。
type SettingsHandler struct {
	settingsService service.SettingsService
	logger          *zap.Logger
}

// NewSettingsHandler 创建设置处理器实例
func NewSettingsHandler(settingsService service.SettingsService, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{
		settingsService: settingsService,
		logger:          logger,
	}
}

// GetLoyaltySettings 获取忠诚度配置
// GET /api/v1/admin/settings/loyalty（需要管理员权限）
func (h *SettingsHandler) GetLoyaltySettings(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())

	settings, err := h.settingsService.GetLoyalty()
	if err != nil {
		h.logger.Error("get loyalty settings failed", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusInternalServerError, resp.CodeInternalError, "get loyalty settings failed", reqID, "")
		return
	}

	resp.OK(w, settings, reqID, "")
}

// UpdateLoyaltySettings 更新忠诚度配置
// PUT /api/v1/admin/settings/loyalty（需要管理员权限）
func (h *SettingsHandler) UpdateLoyaltySettings(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())

	var settings domain.LoyaltySettings
	if !decodeJSON(w, r, &settings) {
		return
	}

	if err := validateLoyaltySettings(&settings); err != nil {
		h.logger.Warn("validation failed", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, err.Error(), reqID, "")
		return
	}

	if err := h.settingsService.UpdateLoyalty(&settings); err != nil {
		h.logger.Error("update loyalty settings failed", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusInternalServerError, resp.CodeInternalError, "update loyalty settings failed", reqID, "")
		return
	}

	resp.OK(w, &settings, reqID, "")
}

// validateLoyaltySettings 验证忠诚度配置
func validateLoyaltySettings(s *domain.LoyaltySettings) error {
	if s.PointsPerReal < 0 {
		return errors.New("points_per_real cannot be negative")
	}
	seen := make(map[string]bool, len(s.Rewards))
	for _, reward := range s.Rewards {
		if reward.ID == "" {
			return errors.New("reward id is required")
		}
		if seen[reward.ID] {
			return errors.New("duplicate reward id: " + reward.ID)
		}
		seen[reward.ID] = true
		if reward.PointsRequired <= 0 {
			return errors.New("reward points_required must be greater than 0")
		}
		if reward.DiscountPercent != nil && (*reward.DiscountPercent <= 0 || *reward.DiscountPercent > 100) {
			return errors.New("discount_percent must be between 0 and 100")
		}
	}
	for _, tier := range s.Tiers {
		if tier.Name == "" {
			return errors.New("tier name is required")
		}
		if tier.MinPoints < 0 {
			return errors.New("tier min_points cannot be negative")
		}
	}
	return nil
}
