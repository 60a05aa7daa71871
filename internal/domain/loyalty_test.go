package domain

import (
	"testing"
)

func TestCurrentTier(t *testing.T) {
	settings := DefaultLoyaltySettings()

	tests := []struct {
		name    string
		balance int
		want    string
	}{
		{"zero balance", 0, "Bronze"},
		{"just below threshold", 1999, "Bronze"},
		{"exactly at threshold", 2000, "Prata"},
		{"top tier", 5000, "Ouro"},
		{"beyond top tier", 99999, "Ouro"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tier := settings.CurrentTier(tt.balance)
			if tier == nil || tier.Name != tt.want {
				t.Errorf("CurrentTier(%d) = %v, want %s", tt.balance, tier, tt.want)
			}
		})
	}
}

func TestCurrentTierEqualThresholds(t *testing.T) {
	// 两个等级阈值相同时，配置中靠后的生效
	settings := &LoyaltySettings{
		Enabled: true,
		Tiers: []LoyaltyTier{
			{Name: "A", MinPoints: 0},
			{Name: "B", MinPoints: 1000},
			{Name: "C", MinPoints: 1000},
		},
	}
	tier := settings.CurrentTier(1000)
	if tier == nil || tier.Name != "C" {
		t.Errorf("CurrentTier(1000) = %v, want C", tier)
	}
}

func TestCurrentTierNoTiers(t *testing.T) {
	settings := &LoyaltySettings{Enabled: true}
	if tier := settings.CurrentTier(500); tier != nil {
		t.Errorf("CurrentTier() with no tiers = %v, want nil", tier)
	}
}

func TestTierProgress(t *testing.T) {
	settings := DefaultLoyaltySettings() // Bronze 0, Prata 2000, Ouro 5000

	tests := []struct {
		name    string
		balance int
		want    float64
	}{
		{"halfway to next tier", 1000, 50},
		{"at tier floor", 2000, 0},
		{"top tier pinned", 5000, 100},
		{"beyond top tier pinned", 7000, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := settings.TierProgress(tt.balance); got != tt.want {
				t.Errorf("TierProgress(%d) = %v, want %v", tt.balance, got, tt.want)
			}
		})
	}
}

func TestResolveDiscount(t *testing.T) {
	pct := 5.0
	fixed := 15.0

	tests := []struct {
		name     string
		reward   LoyaltyReward
		subtotal float64
		want     float64
	}{
		{"percentage", LoyaltyReward{DiscountPercent: &pct}, 100, 5},
		{"fixed", LoyaltyReward{DiscountFixed: &fixed}, 100, 15},
		{"percentage wins over fixed", LoyaltyReward{DiscountPercent: &pct, DiscountFixed: &fixed}, 100, 5},
		{"neither set", LoyaltyReward{}, 100, 0},
		{"fixed may exceed subtotal", LoyaltyReward{DiscountFixed: &fixed}, 5, 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.reward.ResolveDiscount(tt.subtotal); got != tt.want {
				t.Errorf("ResolveDiscount(%v) = %v, want %v", tt.subtotal, got, tt.want)
			}
		})
	}
}

func TestAccountEarn(t *testing.T) {
	settings := DefaultLoyaltySettings()

	tests := []struct {
		name     string
		settings *LoyaltySettings
		start    int
		points   int
		want     int
	}{
		{"normal earn", settings, 100, 50, 150},
		{"zero points no-op", settings, 100, 0, 100},
		{"negative points no-op", settings, 100, -10, 100},
		{"program disabled no-op", &LoyaltySettings{Enabled: false}, 100, 50, 100},
		{"nil settings no-op", nil, 100, 50, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &LoyaltyAccount{Balance: tt.start}
			if got := a.Earn(tt.points, tt.settings); got != tt.want {
				t.Errorf("Earn() balance = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAccountRedeem(t *testing.T) {
	settings := DefaultLoyaltySettings()

	tests := []struct {
		name        string
		settings    *LoyaltySettings
		start       int
		points      int
		wantOK      bool
		wantBalance int
	}{
		{"sufficient balance", settings, 1500, 1000, true, 500},
		{"exact balance", settings, 1000, 1000, true, 0},
		{"insufficient balance", settings, 500, 1000, false, 500},
		{"program disabled", &LoyaltySettings{Enabled: false}, 1500, 1000, false, 1500},
		{"nil settings", nil, 1500, 1000, false, 1500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &LoyaltyAccount{Balance: tt.start}
			ok := a.Redeem(tt.points, tt.settings)
			if ok != tt.wantOK {
				t.Errorf("Redeem() = %v, want %v", ok, tt.wantOK)
			}
			if a.Balance != tt.wantBalance {
				t.Errorf("balance = %d, want %d", a.Balance, tt.wantBalance)
			}
		})
	}
}

func TestRewardByID(t *testing.T) {
	settings := DefaultLoyaltySettings()
	if r := settings.RewardByID("desconto-5"); r == nil || r.PointsRequired != 1000 {
		t.Errorf("RewardByID(desconto-5) = %v", r)
	}
	if r := settings.RewardByID("nope"); r != nil {
		t.Errorf("RewardByID(nope) = %v, want nil", r)
	}
}
