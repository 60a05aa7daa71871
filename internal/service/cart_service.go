// Package service 提供购物车业务逻辑。
package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/sabordaterra/loja/internal/domain"
	"github.com/sabordaterra/loja/internal/notify"
	"github.com/sabordaterra/loja/internal/repo"
)

// 购物车相关业务错误
var (
	ErrCartLineNotFound    = errors.New("cart line not found")
	ErrIncompleteSelection = errors.New("variation selection incomplete")
)

// CartService 定义购物车服务接口。
// 购物车按会话隔离，登录与否都可使用。
type CartService interface {
	GetCart(ctx context.Context, sessionID string) (*domain.Cart, error)
	AddItem(ctx context.Context, sessionID string, productID int64, quantity int, selection domain.VariationSelection) (*domain.Cart, error)
	UpdateItem(ctx context.Context, sessionID string, lineKey string, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, sessionID string, lineKey string) (*domain.Cart, error)
	ClearCart(ctx context.Context, sessionID string) error
}

// cartService 实现CartService接口
type cartService struct {
	productRepo repo.ProductRepository
	cartStore   repo.CartStore
	sink        notify.Sink
	logger      *zap.Logger
}

// NewCartService 创建购物车服务实例
func NewCartService(productRepo repo.ProductRepository, cartStore repo.CartStore, sink notify.Sink, logger *zap.Logger) CartService {
	return &cartService{
		productRepo: productRepo,
		cartStore:   cartStore,
		sink:        sink,
		logger:      logger,
	}
}

// publish 发送购物车事件，失败只记日志
func (s *cartService) publish(ctx context.Context, eventType string, payload map[string]interface{}) {
	if err := s.sink.Publish(ctx, notify.NewEvent(eventType, payload)); err != nil {
		s.logger.Warn("failed to publish cart event",
			zap.String("type", eventType), zap.Error(err))
	}
}

// GetCart 获取会话的购物车
func (s *cartService) GetCart(ctx context.Context, sessionID string) (*domain.Cart, error) {
	cart, err := s.cartStore.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return cart, nil
}

// AddItem 将商品加入购物车。
// 业务规则：
// 1. 商品必须存在且可售
// 2. 变体商品必须带完整的变体选择
// 3. 同商品同选择合并数量，单价按当前价格重新解析
func (s *cartService) AddItem(ctx context.Context, sessionID string, productID int64, quantity int, selection domain.VariationSelection) (*domain.Cart, error) {
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	if !product.IsAvailable() {
		return nil, ErrProductUnavailable
	}
	if !product.SelectionComplete(selection) {
		return nil, ErrIncompleteSelection
	}

	cart, err := s.cartStore.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}

	line := cart.Add(product, quantity, selection)

	if err := s.cartStore.Save(ctx, sessionID, cart); err != nil {
		return nil, err
	}

	s.logger.Info("item added to cart",
		zap.String("session_id", sessionID),
		zap.Int64("product_id", productID),
		zap.String("line_key", line.Key()),
		zap.Int("quantity", line.Quantity),
		zap.Float64("unit_price", line.UnitPrice),
	)
	s.publish(ctx, notify.EventCartItemAdded, map[string]interface{}{
		"session_id": sessionID,
		"product_id": productID,
		"quantity":   line.Quantity,
	})

	return cart, nil
}

// UpdateItem 设置购物车行的数量（数量归零等价于删除）
func (s *cartService) UpdateItem(ctx context.Context, sessionID string, lineKey string, quantity int) (*domain.Cart, error) {
	cart, err := s.cartStore.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}

	if !cart.UpdateQuantity(lineKey, quantity) && quantity > 0 {
		return nil, ErrCartLineNotFound
	}

	if err := s.cartStore.Save(ctx, sessionID, cart); err != nil {
		return nil, err
	}

	return cart, nil
}

// RemoveItem 删除购物车行。行不存在时不报错，保持删除操作幂等。
func (s *cartService) RemoveItem(ctx context.Context, sessionID string, lineKey string) (*domain.Cart, error) {
	cart, err := s.cartStore.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}

	removed := cart.Remove(lineKey)

	if err := s.cartStore.Save(ctx, sessionID, cart); err != nil {
		return nil, err
	}

	if removed {
		s.publish(ctx, notify.EventCartItemRemoved, map[string]interface{}{
			"session_id": sessionID,
			"line_key":   lineKey,
		})
	}

	return cart, nil
}

// ClearCart 清空会话的购物车
func (s *cartService) ClearCart(ctx context.Context, sessionID string) error {
	if err := s.cartStore.Clear(ctx, sessionID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
