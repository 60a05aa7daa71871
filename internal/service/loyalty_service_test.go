package service

import (
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/sabordaterra/loja/internal/domain"
)

func createTestLoyaltyService(settings *domain.LoyaltySettings) (LoyaltyService, *mockLoyaltyRepository) {
	loyaltyRepo := newMockLoyaltyRepository()
	service := NewLoyaltyService(loyaltyRepo, newMockSettingsService(settings), zap.NewNop())
	return service, loyaltyRepo
}

func TestLoyaltyService_Summary(t *testing.T) {
	service, repo := createTestLoyaltyService(nil)
	repo.Create(&domain.LoyaltyAccount{UserID: 7, Balance: 2500})

	summary, err := service.Summary(7)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}

	if summary.Account.Balance != 2500 {
		t.Errorf("Expected balance 2500, got %d", summary.Account.Balance)
	}
	if summary.Tier == nil || summary.Tier.Name != "Prata" {
		t.Errorf("Expected tier Prata, got %v", summary.Tier)
	}
	if summary.NextTier == nil || summary.NextTier.Name != "Ouro" {
		t.Errorf("Expected next tier Ouro, got %v", summary.NextTier)
	}
	// 2500在Prata(2000)和Ouro(5000)之间：(2500-2000)/3000
	wantProgress := float64(500) / float64(3000) * 100
	if summary.TierProgress != wantProgress {
		t.Errorf("Expected progress %v, got %v", wantProgress, summary.TierProgress)
	}
}

func TestLoyaltyService_Summary_CreatesAccount(t *testing.T) {
	service, repo := createTestLoyaltyService(nil)

	summary, err := service.Summary(42)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}

	if summary.Account.Balance != 0 {
		t.Errorf("Expected zero balance for new account, got %d", summary.Account.Balance)
	}
	if repo.accounts[42] == nil {
		t.Error("Expected account to be created on first access")
	}
}

func TestLoyaltyService_EarnPoints(t *testing.T) {
	service, repo := createTestLoyaltyService(nil)
	repo.Create(&domain.LoyaltyAccount{UserID: 7, Balance: 100})

	if err := service.EarnPoints(7, 50); err != nil {
		t.Fatalf("EarnPoints failed: %v", err)
	}
	if repo.accounts[7].Balance != 150 {
		t.Errorf("Expected balance 150, got %d", repo.accounts[7].Balance)
	}

	if err := service.EarnPoints(7, 0); !errors.Is(err, ErrInvalidPointsAmount) {
		t.Errorf("Expected ErrInvalidPointsAmount, got %v", err)
	}
	if err := service.EarnPoints(7, -5); !errors.Is(err, ErrInvalidPointsAmount) {
		t.Errorf("Expected ErrInvalidPointsAmount for negative, got %v", err)
	}
}

func TestLoyaltyService_EarnPoints_DisabledIsNoop(t *testing.T) {
	settings := domain.DefaultLoyaltySettings()
	settings.Enabled = false
	service, repo := createTestLoyaltyService(settings)
	repo.Create(&domain.LoyaltyAccount{UserID: 7, Balance: 100})

	if err := service.EarnPoints(7, 50); err != nil {
		t.Fatalf("EarnPoints with disabled program should be a no-op: %v", err)
	}
	if repo.accounts[7].Balance != 100 {
		t.Errorf("Expected balance untouched at 100, got %d", repo.accounts[7].Balance)
	}
}

func TestLoyaltyService_RedeemPoints(t *testing.T) {
	service, repo := createTestLoyaltyService(nil)
	repo.Create(&domain.LoyaltyAccount{UserID: 7, Balance: 1500})

	if err := service.RedeemPoints(7, 1000); err != nil {
		t.Fatalf("RedeemPoints failed: %v", err)
	}
	if repo.accounts[7].Balance != 500 {
		t.Errorf("Expected balance 500, got %d", repo.accounts[7].Balance)
	}

	// 余额不足时失败关闭，余额不变
	if err := service.RedeemPoints(7, 1000); !errors.Is(err, ErrInsufficientPoints) {
		t.Errorf("Expected ErrInsufficientPoints, got %v", err)
	}
	if repo.accounts[7].Balance != 500 {
		t.Errorf("Expected balance untouched at 500, got %d", repo.accounts[7].Balance)
	}
}

func TestLoyaltyService_RedeemPoints_Disabled(t *testing.T) {
	settings := domain.DefaultLoyaltySettings()
	settings.Enabled = false
	service, repo := createTestLoyaltyService(settings)
	repo.Create(&domain.LoyaltyAccount{UserID: 7, Balance: 1500})

	if err := service.RedeemPoints(7, 100); !errors.Is(err, ErrLoyaltyDisabled) {
		t.Errorf("Expected ErrLoyaltyDisabled, got %v", err)
	}
	if repo.accounts[7].Balance != 1500 {
		t.Errorf("Expected balance untouched, got %d", repo.accounts[7].Balance)
	}
}

func TestLoyaltyService_OfferableRewards(t *testing.T) {
	service, repo := createTestLoyaltyService(nil)
	// 默认奖励：desconto-5需1000，vale-15需1500，desconto-10需1800
	repo.Create(&domain.LoyaltyAccount{UserID: 7, Balance: 1500})

	rewards, err := service.OfferableRewards(7)
	if err != nil {
		t.Fatalf("OfferableRewards failed: %v", err)
	}

	if len(rewards) != 2 {
		t.Fatalf("Expected 2 offerable rewards, got %d", len(rewards))
	}
	for _, reward := range rewards {
		if reward.PointsRequired > 1500 {
			t.Errorf("Reward %s requires %d points, more than balance", reward.ID, reward.PointsRequired)
		}
	}
}
