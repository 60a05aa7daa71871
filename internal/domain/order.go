// Package domain 定义订单和结算相关的业务领域模型。
package domain

import (
	"time"
)

// OrderStatus 定义订单状态类型
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"   // 待支付
	OrderStatusPaid      OrderStatus = "paid"      // 已支付
	OrderStatusCancelled OrderStatus = "cancelled" // 已取消
)

// CheckoutState 定义一次结算尝试的状态机状态
type CheckoutState string

const (
	CheckoutStateDraft            CheckoutState = "draft"             // 草稿（可选奖励、可改购物车）
	CheckoutStateSubmitting       CheckoutState = "submitting"        // 提交中
	CheckoutStateConfirmed        CheckoutState = "confirmed"         // 已确认
	CheckoutStatePaymentDeclined  CheckoutState = "payment_declined"  // 支付被拒，可换方式重试
	CheckoutStateRedemptionFailed CheckoutState = "redemption_failed" // 积分兑换失败，需重新选择奖励
)

// OrderLine 表示订单中的一行（下单时的购物车行快照）
type OrderLine struct {
	ProductID int64              `json:"product_id"`
	Name      string             `json:"name"`
	Selection VariationSelection `json:"selection,omitempty"`
	Quantity  int                `json:"quantity"`
	UnitPrice float64            `json:"unit_price"`
	LineTotal float64            `json:"line_total"`
}

// Order 表示订单领域模型
type Order struct {
	ID             int64       `json:"id"`
	Number         string      `json:"number"` // 对外展示的订单号
	UserID         *int64      `json:"user_id"`
	Lines          []OrderLine `json:"lines"`
	Subtotal       float64     `json:"subtotal"`
	Discount       float64     `json:"discount"`
	Total          float64     `json:"total"` // = max(0, subtotal - discount)
	RewardID       *string     `json:"reward_id"`
	PointsRedeemed int         `json:"points_redeemed"`
	PointsEarned   int         `json:"points_earned"`
	PaymentMethod  string      `json:"payment_method"`
	Status         OrderStatus `json:"status"`
	PaidAt         *time.Time  `json:"paid_at"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// IsPaid 判断订单是否已支付
func (o *Order) IsPaid() bool {
	return o.Status == OrderStatusPaid
}

// PaymentDetails 表示支付细节，对结算核心不透明，原样转交支付协作方
type PaymentDetails struct {
	CardNumber string `json:"card_number,omitempty"`
	CardHolder string `json:"card_holder,omitempty"`
	PixKey     string `json:"pix_key,omitempty"`
}

// QuoteCheckoutRequest 表示结算报价请求
type QuoteCheckoutRequest struct {
	RewardID *string `json:"reward_id"`
}

// SubmitCheckoutRequest 表示提交结算请求
type SubmitCheckoutRequest struct {
	PaymentMethod string         `json:"payment_method" binding:"required"`
	Payment       PaymentDetails `json:"payment"`
	RewardID      *string        `json:"reward_id"`
}
