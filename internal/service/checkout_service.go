// Package service 提供结算业务逻辑。
// 结算是购物车、定价、忠诚度和支付的编排点：
// 报价阶段只计算不落库，提交阶段执行支付、积分兑换、
// 订单落库、积分获取和购物车清空。
package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sabordaterra/loja/internal/domain"
	"github.com/sabordaterra/loja/internal/notify"
	"github.com/sabordaterra/loja/internal/repo"
)

// 结算相关业务错误
var (
	ErrEmptyCart        = errors.New("cart is empty")
	ErrRedemptionFailed = errors.New("points redemption failed")
	ErrLoginRequired    = errors.New("login required to redeem points")
)

// CheckoutQuote 表示结算报价：应用所选奖励后的金额预览
type CheckoutQuote struct {
	State         domain.CheckoutState `json:"state"`
	Subtotal      float64              `json:"subtotal"`
	Discount      float64              `json:"discount"`
	Total         float64              `json:"total"`
	RewardID      *string              `json:"reward_id,omitempty"`
	PointsToEarn  int                  `json:"points_to_earn"`
	PointsToSpend int                  `json:"points_to_spend"`
}

// SubmitResult 表示提交结算的结果
type SubmitResult struct {
	State domain.CheckoutState `json:"state"`
	Order *domain.Order        `json:"order,omitempty"`
}

// CheckoutService 定义结算服务接口
type CheckoutService interface {
	Quote(ctx context.Context, sessionID string, userID int64, rewardID *string) (*CheckoutQuote, error)
	Submit(ctx context.Context, sessionID string, userID int64, req *domain.SubmitCheckoutRequest) (*SubmitResult, error)
}

// checkoutService 实现CheckoutService接口
type checkoutService struct {
	cartStore   repo.CartStore
	orderRepo   repo.OrderRepository
	loyaltyRepo repo.LoyaltyRepository
	settings    SettingsService
	payment     PaymentService
	sink        notify.Sink
	logger      *zap.Logger
}

// NewCheckoutService 创建结算服务实例
func NewCheckoutService(
	cartStore repo.CartStore,
	orderRepo repo.OrderRepository,
	loyaltyRepo repo.LoyaltyRepository,
	settings SettingsService,
	payment PaymentService,
	sink notify.Sink,
	logger *zap.Logger,
) CheckoutService {
	return &checkoutService{
		cartStore:   cartStore,
		orderRepo:   orderRepo,
		loyaltyRepo: loyaltyRepo,
		settings:    settings,
		payment:     payment,
		sink:        sink,
		logger:      logger,
	}
}

// resolveReward 解析所选奖励。
// 兑换需要登录；奖励必须存在于当前配置且计划启用。
func (s *checkoutService) resolveReward(settings *domain.LoyaltySettings, userID int64, rewardID *string) (*domain.LoyaltyReward, error) {
	if rewardID == nil || *rewardID == "" {
		return nil, nil
	}
	if userID == 0 {
		return nil, ErrLoginRequired
	}
	if !settings.Enabled {
		return nil, ErrLoyaltyDisabled
	}

	reward := settings.RewardByID(*rewardID)
	if reward == nil {
		return nil, ErrRewardNotFound
	}
	return reward, nil
}

// computeTotals 计算折扣和应付金额，应付金额不为负
func computeTotals(subtotal float64, reward *domain.LoyaltyReward) (discount, total float64) {
	if reward != nil {
		discount = reward.ResolveDiscount(subtotal)
	}
	total = subtotal - discount
	if total < 0 {
		total = 0
	}
	return discount, total
}

// earnablePoints 计算订单可获得的积分：折后金额乘以积分比率，向下取整
func earnablePoints(total float64, settings *domain.LoyaltySettings) int {
	if !settings.Enabled || settings.PointsPerReal <= 0 {
		return 0
	}
	return int(math.Floor(total * settings.PointsPerReal))
}

// Quote 结算报价。只读操作，不扣积分、不落库。
func (s *checkoutService) Quote(ctx context.Context, sessionID string, userID int64, rewardID *string) (*CheckoutQuote, error) {
	cart, err := s.cartStore.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	if cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	settings, err := s.settings.GetLoyalty()
	if err != nil {
		return nil, err
	}

	reward, err := s.resolveReward(settings, userID, rewardID)
	if err != nil {
		return nil, err
	}

	subtotal := cart.Subtotal()
	discount, total := computeTotals(subtotal, reward)

	quote := &CheckoutQuote{
		State:    domain.CheckoutStateDraft,
		Subtotal: subtotal,
		Discount: discount,
		Total:    total,
		RewardID: rewardID,
	}
	if userID != 0 {
		quote.PointsToEarn = earnablePoints(total, settings)
	}
	if reward != nil {
		quote.PointsToSpend = reward.PointsRequired
	}

	return quote, nil
}

// Submit 提交结算。
// 执行顺序：支付 → 积分兑换 → 订单落库 → 清空购物车 → 积分获取 → 事件通知。
// 支付被拒时返回PaymentDeclined状态，购物车和积分不受影响，可换支付方式重试；
// 积分兑换失败时返回RedemptionFailed状态，需重新选择奖励。
// 成功后购物车被清空，重复提交会因购物车为空而失败，天然幂等。
func (s *checkoutService) Submit(ctx context.Context, sessionID string, userID int64, req *domain.SubmitCheckoutRequest) (*SubmitResult, error) {
	cart, err := s.cartStore.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	if cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	settings, err := s.settings.GetLoyalty()
	if err != nil {
		return nil, err
	}

	reward, err := s.resolveReward(settings, userID, req.RewardID)
	if err != nil {
		if errors.Is(err, ErrRewardNotFound) || errors.Is(err, ErrLoyaltyDisabled) {
			return &SubmitResult{State: domain.CheckoutStateRedemptionFailed}, err
		}
		return nil, err
	}

	subtotal := cart.Subtotal()
	discount, total := computeTotals(subtotal, reward)

	// 1. 支付折后金额
	if _, err := s.payment.Charge(ctx, req.PaymentMethod, req.Payment, total); err != nil {
		if errors.Is(err, ErrPaymentDeclined) {
			s.logger.Info("checkout payment declined",
				zap.String("session_id", sessionID),
				zap.Float64("total", total),
			)
			return &SubmitResult{State: domain.CheckoutStatePaymentDeclined}, ErrPaymentDeclined
		}
		return nil, fmt.Errorf("charge payment: %w", err)
	}

	// 2. 扣减兑换积分。条件更新保证并发下余额不变负；
	// 余额不足（报价后配置或余额变了）时兑换失败
	pointsRedeemed := 0
	if reward != nil {
		ok, err := s.loyaltyRepo.Deduct(userID, reward.PointsRequired)
		if err != nil {
			return nil, fmt.Errorf("deduct points: %w", err)
		}
		if !ok {
			s.logger.Warn("checkout redemption failed",
				zap.Int64("user_id", userID),
				zap.String("reward_id", reward.ID),
				zap.Int("points_required", reward.PointsRequired),
			)
			return &SubmitResult{State: domain.CheckoutStateRedemptionFailed}, ErrRedemptionFailed
		}
		pointsRedeemed = reward.PointsRequired
	}

	// 3. 订单落库
	pointsEarned := 0
	if userID != 0 {
		pointsEarned = earnablePoints(total, settings)
	}

	now := time.Now()
	order := &domain.Order{
		Number:         uuid.NewString(),
		Lines:          orderLinesFromCart(cart),
		Subtotal:       subtotal,
		Discount:       discount,
		Total:          total,
		RewardID:       req.RewardID,
		PointsRedeemed: pointsRedeemed,
		PointsEarned:   pointsEarned,
		PaymentMethod:  req.PaymentMethod,
		Status:         domain.OrderStatusPaid,
		PaidAt:         &now,
	}
	if userID != 0 {
		order.UserID = &userID
	}

	if err := s.orderRepo.Create(order); err != nil {
		// 已扣的积分退回，尽力而为
		if pointsRedeemed > 0 {
			if refundErr := s.loyaltyRepo.Add(userID, pointsRedeemed); refundErr != nil {
				s.logger.Error("failed to refund redeemed points",
					zap.Int64("user_id", userID),
					zap.Int("points", pointsRedeemed),
					zap.Error(refundErr),
				)
			}
		}
		return nil, fmt.Errorf("create order: %w", err)
	}

	// 4. 清空购物车，之后重复提交因空购物车而失败
	if err := s.cartStore.Clear(ctx, sessionID); err != nil {
		s.logger.Error("failed to clear cart after checkout",
			zap.String("session_id", sessionID), zap.Error(err))
	}

	// 5. 发放积分。失败记日志，不回滚已完成的订单
	if pointsEarned > 0 {
		if err := s.loyaltyRepo.Add(userID, pointsEarned); err != nil {
			s.logger.Error("failed to award points",
				zap.Int64("user_id", userID),
				zap.Int("points", pointsEarned),
				zap.Error(err),
			)
		}
	}

	// 6. 事件通知，尽力而为
	s.publishEvents(ctx, order, userID)

	s.logger.Info("checkout confirmed",
		zap.String("order_number", order.Number),
		zap.Float64("subtotal", subtotal),
		zap.Float64("discount", discount),
		zap.Float64("total", total),
		zap.Int("points_redeemed", pointsRedeemed),
		zap.Int("points_earned", pointsEarned),
	)

	return &SubmitResult{State: domain.CheckoutStateConfirmed, Order: order}, nil
}

// orderLinesFromCart 将购物车行转换为订单行快照
func orderLinesFromCart(cart *domain.Cart) []domain.OrderLine {
	lines := make([]domain.OrderLine, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		lines = append(lines, domain.OrderLine{
			ProductID: line.Product.ProductID,
			Name:      line.Product.Name,
			Selection: line.Selection,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			LineTotal: line.LineTotal(),
		})
	}
	return lines
}

func (s *checkoutService) publishEvents(ctx context.Context, order *domain.Order, userID int64) {
	events := []*notify.Event{
		notify.NewEvent(notify.EventOrderConfirmed, map[string]interface{}{
			"order_number": order.Number,
			"total":        order.Total,
		}),
	}
	if order.PointsRedeemed > 0 {
		events = append(events, notify.NewEvent(notify.EventPointsRedeemed, map[string]interface{}{
			"user_id": userID,
			"points":  order.PointsRedeemed,
		}))
	}
	if order.PointsEarned > 0 {
		events = append(events, notify.NewEvent(notify.EventPointsEarned, map[string]interface{}{
			"user_id": userID,
			"points":  order.PointsEarned,
		}))
	}

	for _, event := range events {
		if err := s.sink.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish event",
				zap.String("type", event.Type), zap.Error(err))
		}
	}
}
