// Package service 提供支付业务逻辑。
package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sabordaterra/loja/internal/config"
	"github.com/sabordaterra/loja/internal/domain"
)

// 支付相关业务错误
var (
	ErrPaymentDeclined      = errors.New("payment declined")
	ErrUnknownPaymentMethod = errors.New("unknown payment method")
)

// PaymentResult 表示一次支付的结果
type PaymentResult struct {
	TransactionID string `json:"transaction_id"`
}

// PaymentService 定义支付协作方接口。
// 支付细节对结算核心不透明，原样转交给实现。
type PaymentService interface {
	Charge(ctx context.Context, method string, details domain.PaymentDetails, amount float64) (*PaymentResult, error)
}

// paymentService 模拟支付网关实现。
// 真实网关接入前用于联调：除特定测试卡号外一律成功。
type paymentService struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewPaymentService 创建支付服务实例
func NewPaymentService(cfg *config.Config, logger *zap.Logger) PaymentService {
	return &paymentService{cfg: cfg, logger: logger}
}

// Charge 执行支付。
// 支付方式必须在配置的允许列表中（pix、boleto、credit_card）。
// 信用卡支付时测试拒绝卡号触发拒绝，用于验证拒绝路径。
func (s *paymentService) Charge(ctx context.Context, method string, details domain.PaymentDetails, amount float64) (*PaymentResult, error) {
	if !s.methodAllowed(method) {
		return nil, ErrUnknownPaymentMethod
	}

	if method == "credit_card" && details.CardNumber == s.cfg.Payment.DeclineCard {
		s.logger.Info("payment declined",
			zap.String("method", method),
			zap.Float64("amount", amount),
		)
		return nil, ErrPaymentDeclined
	}

	result := &PaymentResult{TransactionID: uuid.NewString()}

	s.logger.Info("payment charged",
		zap.String("method", method),
		zap.Float64("amount", amount),
		zap.String("transaction_id", result.TransactionID),
	)

	return result, nil
}

func (s *paymentService) methodAllowed(method string) bool {
	for _, m := range s.cfg.Payment.Methods {
		if m == method {
			return true
		}
	}
	return false
}
