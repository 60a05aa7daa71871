package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/sabordaterra/loja/internal/domain"
	"github.com/sabordaterra/loja/internal/notify"
)

type checkoutFixture struct {
	service   CheckoutService
	cartStore *mockCartStore
	orders    *mockOrderRepository
	loyalty   *mockLoyaltyRepository
	settings  *mockSettingsService
	payment   *mockPaymentService
	sink      *mockSink
}

func newCheckoutFixture(settings *domain.LoyaltySettings) *checkoutFixture {
	f := &checkoutFixture{
		cartStore: newMockCartStore(),
		orders:    newMockOrderRepository(),
		loyalty:   newMockLoyaltyRepository(),
		settings:  newMockSettingsService(settings),
		payment:   &mockPaymentService{},
		sink:      &mockSink{},
	}
	f.service = NewCheckoutService(
		f.cartStore, f.orders, f.loyalty, f.settings, f.payment, f.sink, zap.NewNop(),
	)
	return f
}

func (f *checkoutFixture) seedCart(sessionID string, price float64, quantity int) {
	cart := domain.NewCart()
	cart.Add(&domain.Product{
		ID: 1, Name: "Pimenta Calabresa", Price: price,
		Type: domain.ProductTypeSimple, Status: domain.ProductStatusActive,
	}, quantity, nil)
	f.cartStore.carts[sessionID] = cart
}

func (f *checkoutFixture) seedAccount(userID int64, balance int) {
	f.loyalty.Create(&domain.LoyaltyAccount{UserID: userID, Balance: balance})
}

func submitReq(method string, rewardID *string) *domain.SubmitCheckoutRequest {
	return &domain.SubmitCheckoutRequest{
		PaymentMethod: method,
		RewardID:      rewardID,
	}
}

func strPtr(s string) *string { return &s }

func TestCheckout_Submit_EarnsPointsOnTotal(t *testing.T) {
	// 费率10积分/雷亚尔，小计200，无奖励：获得2000积分
	f := newCheckoutFixture(nil)
	f.seedCart("s1", 100, 2)
	f.seedAccount(7, 0)

	result, err := f.service.Submit(context.Background(), "s1", 7, submitReq("pix", nil))
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if result.State != domain.CheckoutStateConfirmed {
		t.Errorf("Expected state confirmed, got %s", result.State)
	}
	if result.Order.Total != 200 {
		t.Errorf("Expected total 200, got %v", result.Order.Total)
	}
	if result.Order.PointsEarned != 2000 {
		t.Errorf("Expected 2000 points earned, got %d", result.Order.PointsEarned)
	}
	if f.loyalty.accounts[7].Balance != 2000 {
		t.Errorf("Expected balance 2000, got %d", f.loyalty.accounts[7].Balance)
	}
	if f.payment.chargedAmount != 200 {
		t.Errorf("Expected charge of 200, got %v", f.payment.chargedAmount)
	}
}

func TestCheckout_Submit_RedeemThenEarnOnDiscountedTotal(t *testing.T) {
	// 余额1500，兑换1000积分的5%折扣，小计100：
	// 应付95，余额先扣到500，再按折后金额获得floor(95*10)=950积分
	f := newCheckoutFixture(nil)
	f.seedCart("s1", 100, 1)
	f.seedAccount(7, 1500)

	result, err := f.service.Submit(context.Background(), "s1", 7, submitReq("credit_card", strPtr("desconto-5")))
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	order := result.Order
	if order.Subtotal != 100 || order.Discount != 5 || order.Total != 95 {
		t.Errorf("Expected 100/5/95, got %v/%v/%v", order.Subtotal, order.Discount, order.Total)
	}
	if order.PointsRedeemed != 1000 {
		t.Errorf("Expected 1000 points redeemed, got %d", order.PointsRedeemed)
	}
	if order.PointsEarned != 950 {
		t.Errorf("Expected 950 points earned, got %d", order.PointsEarned)
	}
	if got := f.loyalty.accounts[7].Balance; got != 1450 {
		t.Errorf("Expected final balance 1450, got %d", got)
	}
	if f.payment.chargedAmount != 95 {
		t.Errorf("Expected charge of 95, got %v", f.payment.chargedAmount)
	}
}

func TestCheckout_Submit_FixedDiscountClampsAtZero(t *testing.T) {
	// 固定金额折扣超过小计时应付金额为0，不为负
	fixed := 10.0
	settings := domain.DefaultLoyaltySettings()
	settings.Rewards = []domain.LoyaltyReward{
		{ID: "vale-10", Name: "Vale R$ 10", PointsRequired: 100, DiscountFixed: &fixed},
	}

	f := newCheckoutFixture(settings)
	f.seedCart("s1", 5, 1)
	f.seedAccount(7, 100)

	result, err := f.service.Submit(context.Background(), "s1", 7, submitReq("pix", strPtr("vale-10")))
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if result.Order.Total != 0 {
		t.Errorf("Expected total 0, got %v", result.Order.Total)
	}
	if result.Order.PointsEarned != 0 {
		t.Errorf("Expected 0 points earned on zero total, got %d", result.Order.PointsEarned)
	}
}

func TestCheckout_Submit_DoubleSubmitFails(t *testing.T) {
	// 成功提交清空购物车，重复提交失败且不产生第二个订单
	f := newCheckoutFixture(nil)
	f.seedCart("s1", 50, 1)
	f.seedAccount(7, 0)

	ctx := context.Background()
	if _, err := f.service.Submit(ctx, "s1", 7, submitReq("pix", nil)); err != nil {
		t.Fatalf("First submit failed: %v", err)
	}

	_, err := f.service.Submit(ctx, "s1", 7, submitReq("pix", nil))
	if !errors.Is(err, ErrEmptyCart) {
		t.Errorf("Expected ErrEmptyCart on second submit, got %v", err)
	}

	if len(f.orders.orders) != 1 {
		t.Errorf("Expected 1 order, got %d", len(f.orders.orders))
	}
	if got := f.loyalty.accounts[7].Balance; got != 500 {
		t.Errorf("Expected balance 500 (earned once), got %d", got)
	}
}

func TestCheckout_Submit_PaymentDeclined(t *testing.T) {
	// 支付被拒：购物车和积分不受影响，可重试
	f := newCheckoutFixture(nil)
	f.seedCart("s1", 100, 1)
	f.seedAccount(7, 1500)
	f.payment.decline = true

	result, err := f.service.Submit(context.Background(), "s1", 7, submitReq("credit_card", strPtr("desconto-5")))
	if !errors.Is(err, ErrPaymentDeclined) {
		t.Fatalf("Expected ErrPaymentDeclined, got %v", err)
	}
	if result.State != domain.CheckoutStatePaymentDeclined {
		t.Errorf("Expected state payment_declined, got %s", result.State)
	}

	if got := f.loyalty.accounts[7].Balance; got != 1500 {
		t.Errorf("Expected balance untouched at 1500, got %d", got)
	}
	if _, exists := f.cartStore.carts["s1"]; !exists {
		t.Error("Cart should survive a declined payment")
	}
	if len(f.orders.orders) != 0 {
		t.Errorf("Expected no orders, got %d", len(f.orders.orders))
	}
}

func TestCheckout_Submit_RedemptionFailsClosed(t *testing.T) {
	// 余额不足：兑换失败，不部分折扣、不扣积分
	f := newCheckoutFixture(nil)
	f.seedCart("s1", 100, 1)
	f.seedAccount(7, 500) // desconto-5需要1000

	result, err := f.service.Submit(context.Background(), "s1", 7, submitReq("pix", strPtr("desconto-5")))
	if !errors.Is(err, ErrRedemptionFailed) {
		t.Fatalf("Expected ErrRedemptionFailed, got %v", err)
	}
	if result.State != domain.CheckoutStateRedemptionFailed {
		t.Errorf("Expected state redemption_failed, got %s", result.State)
	}

	if got := f.loyalty.accounts[7].Balance; got != 500 {
		t.Errorf("Expected balance untouched at 500, got %d", got)
	}
	if len(f.orders.orders) != 0 {
		t.Errorf("Expected no orders, got %d", len(f.orders.orders))
	}
}

func TestCheckout_Submit_UnknownRewardFails(t *testing.T) {
	f := newCheckoutFixture(nil)
	f.seedCart("s1", 100, 1)
	f.seedAccount(7, 5000)

	result, err := f.service.Submit(context.Background(), "s1", 7, submitReq("pix", strPtr("nope")))
	if !errors.Is(err, ErrRewardNotFound) {
		t.Fatalf("Expected ErrRewardNotFound, got %v", err)
	}
	if result.State != domain.CheckoutStateRedemptionFailed {
		t.Errorf("Expected state redemption_failed, got %s", result.State)
	}
}

func TestCheckout_Submit_GuestRedeemRequiresLogin(t *testing.T) {
	f := newCheckoutFixture(nil)
	f.seedCart("s1", 100, 1)

	_, err := f.service.Submit(context.Background(), "s1", 0, submitReq("pix", strPtr("desconto-5")))
	if !errors.Is(err, ErrLoginRequired) {
		t.Fatalf("Expected ErrLoginRequired, got %v", err)
	}
}

func TestCheckout_Submit_GuestSkipsLoyalty(t *testing.T) {
	f := newCheckoutFixture(nil)
	f.seedCart("s1", 100, 1)

	result, err := f.service.Submit(context.Background(), "s1", 0, submitReq("boleto", nil))
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if result.Order.PointsEarned != 0 {
		t.Errorf("Guest order should not earn points, got %d", result.Order.PointsEarned)
	}
	if result.Order.UserID != nil {
		t.Error("Guest order should have no user")
	}
}

func TestCheckout_Submit_LoyaltyDisabledNoEarn(t *testing.T) {
	settings := domain.DefaultLoyaltySettings()
	settings.Enabled = false

	f := newCheckoutFixture(settings)
	f.seedCart("s1", 100, 1)
	f.seedAccount(7, 1000)

	result, err := f.service.Submit(context.Background(), "s1", 7, submitReq("pix", nil))
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if result.Order.PointsEarned != 0 {
		t.Errorf("Expected 0 points with program disabled, got %d", result.Order.PointsEarned)
	}
	if got := f.loyalty.accounts[7].Balance; got != 1000 {
		t.Errorf("Expected balance untouched at 1000, got %d", got)
	}
}

func TestCheckout_Submit_RefundsPointsWhenOrderFails(t *testing.T) {
	f := newCheckoutFixture(nil)
	f.seedCart("s1", 100, 1)
	f.seedAccount(7, 1500)
	f.orders.failCreate = true

	_, err := f.service.Submit(context.Background(), "s1", 7, submitReq("pix", strPtr("desconto-5")))
	if err == nil {
		t.Fatal("Expected submit to fail when order creation fails")
	}

	if got := f.loyalty.accounts[7].Balance; got != 1500 {
		t.Errorf("Expected points refunded to 1500, got %d", got)
	}
}

func TestCheckout_Submit_PublishesEvents(t *testing.T) {
	f := newCheckoutFixture(nil)
	f.seedCart("s1", 100, 1)
	f.seedAccount(7, 1500)

	_, err := f.service.Submit(context.Background(), "s1", 7, submitReq("pix", strPtr("desconto-5")))
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	types := make(map[string]bool)
	for _, event := range f.sink.events {
		types[event.Type] = true
	}
	for _, want := range []string{notify.EventOrderConfirmed, notify.EventPointsRedeemed, notify.EventPointsEarned} {
		if !types[want] {
			t.Errorf("Expected event %s to be published", want)
		}
	}
}

func TestCheckout_Quote(t *testing.T) {
	f := newCheckoutFixture(nil)
	f.seedCart("s1", 100, 1)
	f.seedAccount(7, 1500)

	quote, err := f.service.Quote(context.Background(), "s1", 7, strPtr("desconto-5"))
	if err != nil {
		t.Fatalf("Quote failed: %v", err)
	}

	if quote.Subtotal != 100 || quote.Discount != 5 || quote.Total != 95 {
		t.Errorf("Expected 100/5/95, got %v/%v/%v", quote.Subtotal, quote.Discount, quote.Total)
	}
	if quote.PointsToEarn != 950 {
		t.Errorf("Expected 950 points to earn, got %d", quote.PointsToEarn)
	}
	if quote.PointsToSpend != 1000 {
		t.Errorf("Expected 1000 points to spend, got %d", quote.PointsToSpend)
	}

	// 报价不改变任何状态
	if got := f.loyalty.accounts[7].Balance; got != 1500 {
		t.Errorf("Quote must not touch balance, got %d", got)
	}
	if len(f.orders.orders) != 0 {
		t.Error("Quote must not create orders")
	}
}

func TestCheckout_Quote_EmptyCart(t *testing.T) {
	f := newCheckoutFixture(nil)

	_, err := f.service.Quote(context.Background(), "empty", 7, nil)
	if !errors.Is(err, ErrEmptyCart) {
		t.Errorf("Expected ErrEmptyCart, got %v", err)
	}
}
