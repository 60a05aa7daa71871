// Package service 提供系统设置业务逻辑。
package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sabordaterra/loja/internal/cache"
	"github.com/sabordaterra/loja/internal/domain"
	"github.com/sabordaterra/loja/internal/repo"
)

const loyaltySettingsCacheKey = "settings:loyalty"

// SettingsService 定义设置服务接口。
// 忠诚度配置被结算和积分操作频繁读取，走读穿缓存；
// 管理后台更新后立即失效，保证业务操作读到当前配置。
type SettingsService interface {
	GetLoyalty() (*domain.LoyaltySettings, error)
	UpdateLoyalty(settings *domain.LoyaltySettings) error
}

// settingsService 实现SettingsService接口
type settingsService struct {
	settingsRepo repo.SettingsRepository
	cache        cache.Cache
	ttl          time.Duration
	logger       *zap.Logger
}

// NewSettingsService 创建设置服务实例
func NewSettingsService(settingsRepo repo.SettingsRepository, c cache.Cache, ttl time.Duration, logger *zap.Logger) SettingsService {
	return &settingsService{
		settingsRepo: settingsRepo,
		cache:        c,
		ttl:          ttl,
		logger:       logger,
	}
}

// GetLoyalty 获取忠诚度计划配置。
// 管理后台未保存过配置时返回默认配置。
func (s *settingsService) GetLoyalty() (*domain.LoyaltySettings, error) {
	ctx := context.Background()

	var cached domain.LoyaltySettings
	if err := s.cache.Get(ctx, loyaltySettingsCacheKey, &cached); err == nil {
		return &cached, nil
	}

	settings, err := s.settingsRepo.GetLoyalty()
	if err != nil {
		return nil, fmt.Errorf("get loyalty settings: %w", err)
	}
	if settings == nil {
		settings = domain.DefaultLoyaltySettings()
	}

	if err := s.cache.Set(ctx, loyaltySettingsCacheKey, settings, s.ttl); err != nil {
		s.logger.Warn("failed to cache loyalty settings", zap.Error(err))
	}

	return settings, nil
}

// UpdateLoyalty 更新忠诚度计划配置并使缓存失效
func (s *settingsService) UpdateLoyalty(settings *domain.LoyaltySettings) error {
	if err := s.settingsRepo.SaveLoyalty(settings); err != nil {
		return fmt.Errorf("save loyalty settings: %w", err)
	}

	if err := s.cache.Del(context.Background(), loyaltySettingsCacheKey); err != nil {
		s.logger.Warn("failed to invalidate loyalty settings cache", zap.Error(err))
	}

	s.logger.Info("loyalty settings updated",
		zap.Bool("enabled", settings.Enabled),
		zap.Float64("points_per_real", settings.PointsPerReal),
		zap.Int("tiers", len(settings.Tiers)),
		zap.Int("rewards", len(settings.Rewards)),
	)

	return nil
}
