// Package domain 定义积分忠诚度计划的领域模型和核心业务规则。
package domain

import "time"

// LoyaltyTier 表示忠诚度等级（如 Bronze/Prata/Ouro）。
// 等级按配置顺序排列，MinPoints 约定严格递增；
// 若两个等级阈值相同，配置中靠后的等级生效。
type LoyaltyTier struct {
	Name       string   `json:"name"`
	MinPoints  int      `json:"min_points"`
	Multiplier float64  `json:"multiplier"` // 积分倍率
	Benefits   []string `json:"benefits"`
}

// LoyaltyReward 表示可兑换的奖励。
// DiscountPercent 与 DiscountFixed 互斥，二者只应设置其一；
// 解析折扣时百分比优先于固定金额（见 ResolveDiscount）。
type LoyaltyReward struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	PointsRequired  int      `json:"points_required"`
	DiscountPercent *float64 `json:"discount_percent,omitempty"`
	DiscountFixed   *float64 `json:"discount_fixed,omitempty"`
}

// ResolveDiscount 根据小计解析奖励对应的折扣金额。
// 检查顺序固定：先百分比后固定金额，两者都未设置时折扣为0。
// 固定金额可能超过小计，封顶（最终金额不为负）由结算层处理。
func (r *LoyaltyReward) ResolveDiscount(subtotal float64) float64 {
	if r.DiscountPercent != nil {
		return subtotal * *r.DiscountPercent / 100
	}
	if r.DiscountFixed != nil {
		return *r.DiscountFixed
	}
	return 0
}

// LoyaltyChallenge 表示积分挑战（仅展示，完成度追踪不在本系统范围内）
type LoyaltyChallenge struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Points      int    `json:"points"`
}

// LoyaltySettings 表示忠诚度计划配置。
// 配置由管理后台维护，随时可变，业务操作每次都应读取当前值。
type LoyaltySettings struct {
	Enabled       bool               `json:"enabled"`
	PointsPerReal float64            `json:"points_per_real"` // 每消费1雷亚尔获得的积分数
	Tiers         []LoyaltyTier      `json:"tiers"`
	Rewards       []LoyaltyReward    `json:"rewards"`
	Challenges    []LoyaltyChallenge `json:"challenges"`
}

// DefaultLoyaltySettings 返回默认的忠诚度计划配置，
// 在管理后台尚未保存配置时使用。
func DefaultLoyaltySettings() *LoyaltySettings {
	pct5 := 5.0
	pct10 := 10.0
	fixed15 := 15.0
	return &LoyaltySettings{
		Enabled:       true,
		PointsPerReal: 10,
		Tiers: []LoyaltyTier{
			{Name: "Bronze", MinPoints: 0, Multiplier: 1.0, Benefits: []string{"Acúmulo de pontos em todas as compras"}},
			{Name: "Prata", MinPoints: 2000, Multiplier: 1.25, Benefits: []string{"Frete grátis", "Acesso antecipado a promoções"}},
			{Name: "Ouro", MinPoints: 5000, Multiplier: 1.5, Benefits: []string{"Frete grátis", "Brindes exclusivos", "Suporte prioritário"}},
		},
		Rewards: []LoyaltyReward{
			{ID: "desconto-5", Name: "5% de desconto", PointsRequired: 1000, DiscountPercent: &pct5},
			{ID: "desconto-10", Name: "10% de desconto", PointsRequired: 1800, DiscountPercent: &pct10},
			{ID: "vale-15", Name: "Vale R$ 15", PointsRequired: 1500, DiscountFixed: &fixed15},
		},
		Challenges: []LoyaltyChallenge{
			{ID: "primeira-compra", Name: "Primeira Compra", Description: "Complete sua primeira compra na loja", Points: 200},
			{ID: "avaliacao", Name: "Avaliador", Description: "Avalie um produto comprado", Points: 50},
		},
	}
}

// RewardByID 根据ID查找奖励，不存在时返回nil
func (s *LoyaltySettings) RewardByID(id string) *LoyaltyReward {
	for i := range s.Rewards {
		if s.Rewards[i].ID == id {
			return &s.Rewards[i]
		}
	}
	return nil
}

// CurrentTier 根据积分余额计算当前等级。
// 从配置末尾向前扫描，返回第一个阈值不超过余额的等级；
// 这同时实现了"阈值相同时靠后的等级生效"的规则。
// 余额低于所有阈值时返回第一个等级；无等级配置时返回nil。
func (s *LoyaltySettings) CurrentTier(balance int) *LoyaltyTier {
	if len(s.Tiers) == 0 {
		return nil
	}
	for i := len(s.Tiers) - 1; i >= 0; i-- {
		if balance >= s.Tiers[i].MinPoints {
			return &s.Tiers[i]
		}
	}
	return &s.Tiers[0]
}

// NextTier 返回当前等级之后的下一等级，已是最高等级时返回nil
func (s *LoyaltySettings) NextTier(balance int) *LoyaltyTier {
	current := s.CurrentTier(balance)
	if current == nil {
		return nil
	}
	for i := range s.Tiers {
		if s.Tiers[i].MinPoints > current.MinPoints {
			return &s.Tiers[i]
		}
	}
	return nil
}

// TierProgress 返回向下一等级晋升的进度百分比（0-100）。
// 在当前等级阈值与下一等级阈值之间线性插值；最高等级固定为100。
func (s *LoyaltySettings) TierProgress(balance int) float64 {
	current := s.CurrentTier(balance)
	if current == nil {
		return 0
	}
	next := s.NextTier(balance)
	if next == nil {
		return 100
	}

	span := next.MinPoints - current.MinPoints
	if span <= 0 {
		return 100
	}
	progress := float64(balance-current.MinPoints) / float64(span) * 100
	if progress < 0 {
		return 0
	}
	return progress
}

// LoyaltyAccount 表示顾客的忠诚度账户。
// 积分余额只通过 Earn（+）和 Redeem（−）变化；
// 等级和晋升进度由余额派生，不单独存储。
type LoyaltyAccount struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Balance   int       `json:"balance"`
	Badges    []string  `json:"badges"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Earn 增加积分。计划停用或积分数非正时不做任何操作。
// 积分到货币的换算（含向下取整）由调用方在结算边界完成，
// 这里只接受已换算好的整数积分。返回新余额。
func (a *LoyaltyAccount) Earn(points int, settings *LoyaltySettings) int {
	if settings == nil || !settings.Enabled || points <= 0 {
		return a.Balance
	}
	a.Balance += points
	return a.Balance
}

// Redeem 扣减积分。计划停用或余额不足时返回false且余额不变；
// 成功时扣减并返回true。调用方必须检查返回值，没有异常路径。
func (a *LoyaltyAccount) Redeem(points int, settings *LoyaltySettings) bool {
	if settings == nil || !settings.Enabled {
		return false
	}
	if points > a.Balance {
		return false
	}
	a.Balance -= points
	return true
}
