// Package service 提供忠诚度计划业务逻辑。
package service

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/sabordaterra/loja/internal/domain"
	"github.com/sabordaterra/loja/internal/repo"
)

// 忠诚度相关业务错误
var (
	ErrLoyaltyDisabled     = errors.New("loyalty program is disabled")
	ErrAccountNotFound     = errors.New("loyalty account not found")
	ErrInsufficientPoints  = errors.New("insufficient points")
	ErrRewardNotFound      = errors.New("reward not found")
	ErrInvalidPointsAmount = errors.New("points amount must be positive")
)

// LoyaltySummary 表示忠诚度账户的聚合视图
type LoyaltySummary struct {
	Account      *domain.LoyaltyAccount    `json:"account"`
	Tier         *domain.LoyaltyTier       `json:"tier"`
	NextTier     *domain.LoyaltyTier       `json:"next_tier,omitempty"`
	TierProgress float64                   `json:"tier_progress"`
	Rewards      []domain.LoyaltyReward    `json:"rewards"`
	Challenges   []domain.LoyaltyChallenge `json:"challenges"`
	Enabled      bool                      `json:"enabled"`
}

// LoyaltyService 定义忠诚度服务接口。
// 每个操作都读取当前配置；配置随时可能被管理后台修改，
// 所以等级和可兑换性从不预先缓存在账户上。
type LoyaltyService interface {
	Summary(userID int64) (*LoyaltySummary, error)
	EarnPoints(userID int64, points int) error
	RedeemPoints(userID int64, points int) error
	OfferableRewards(userID int64) ([]domain.LoyaltyReward, error)
}

// loyaltyService 实现LoyaltyService接口
type loyaltyService struct {
	loyaltyRepo repo.LoyaltyRepository
	settings    SettingsService
	logger      *zap.Logger
}

// NewLoyaltyService 创建忠诚度服务实例
func NewLoyaltyService(loyaltyRepo repo.LoyaltyRepository, settings SettingsService, logger *zap.Logger) LoyaltyService {
	return &loyaltyService{
		loyaltyRepo: loyaltyRepo,
		settings:    settings,
		logger:      logger,
	}
}

// getOrCreateAccount 获取账户，不存在时补建零余额账户
func (s *loyaltyService) getOrCreateAccount(userID int64) (*domain.LoyaltyAccount, error) {
	account, err := s.loyaltyRepo.GetByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("get loyalty account: %w", err)
	}
	if account != nil {
		return account, nil
	}

	account = &domain.LoyaltyAccount{UserID: userID, Balance: 0}
	if err := s.loyaltyRepo.Create(account); err != nil {
		return nil, fmt.Errorf("create loyalty account: %w", err)
	}
	return account, nil
}

// Summary 获取忠诚度账户聚合视图：余额、等级、晋升进度、可兑换奖励
func (s *loyaltyService) Summary(userID int64) (*LoyaltySummary, error) {
	settings, err := s.settings.GetLoyalty()
	if err != nil {
		return nil, err
	}

	account, err := s.getOrCreateAccount(userID)
	if err != nil {
		return nil, err
	}

	return &LoyaltySummary{
		Account:      account,
		Tier:         settings.CurrentTier(account.Balance),
		NextTier:     settings.NextTier(account.Balance),
		TierProgress: settings.TierProgress(account.Balance),
		Rewards:      settings.Rewards,
		Challenges:   settings.Challenges,
		Enabled:      settings.Enabled,
	}, nil
}

// EarnPoints 增加积分。计划停用时静默不操作，调用方无需区分。
func (s *loyaltyService) EarnPoints(userID int64, points int) error {
	if points <= 0 {
		return ErrInvalidPointsAmount
	}

	settings, err := s.settings.GetLoyalty()
	if err != nil {
		return err
	}
	if !settings.Enabled {
		return nil
	}

	if _, err := s.getOrCreateAccount(userID); err != nil {
		return err
	}

	if err := s.loyaltyRepo.Add(userID, points); err != nil {
		return fmt.Errorf("earn points: %w", err)
	}

	s.logger.Info("points earned",
		zap.Int64("user_id", userID),
		zap.Int("points", points),
	)

	return nil
}

// RedeemPoints 扣减积分。
// 失败关闭：计划停用或余额不足时报错且余额不变，
// 扣减通过条件更新完成，并发下不会出现负余额。
func (s *loyaltyService) RedeemPoints(userID int64, points int) error {
	if points <= 0 {
		return ErrInvalidPointsAmount
	}

	settings, err := s.settings.GetLoyalty()
	if err != nil {
		return err
	}
	if !settings.Enabled {
		return ErrLoyaltyDisabled
	}

	ok, err := s.loyaltyRepo.Deduct(userID, points)
	if err != nil {
		return fmt.Errorf("redeem points: %w", err)
	}
	if !ok {
		return ErrInsufficientPoints
	}

	s.logger.Info("points redeemed",
		zap.Int64("user_id", userID),
		zap.Int("points", points),
	)

	return nil
}

// OfferableRewards 返回当前余额可兑换的奖励列表
func (s *loyaltyService) OfferableRewards(userID int64) ([]domain.LoyaltyReward, error) {
	settings, err := s.settings.GetLoyalty()
	if err != nil {
		return nil, err
	}
	if !settings.Enabled {
		return nil, nil
	}

	account, err := s.getOrCreateAccount(userID)
	if err != nil {
		return nil, err
	}

	var offerable []domain.LoyaltyReward
	for _, reward := range settings.Rewards {
		if reward.PointsRequired <= account.Balance {
			offerable = append(offerable, reward)
		}
	}
	return offerable, nil
}
