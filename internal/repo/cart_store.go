// Package repo 提供购物车存储实现。
package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/sabordaterra/loja/internal/cache"
	"github.com/sabordaterra/loja/internal/domain"
)

// CartStore 定义购物车存储接口。
// 购物车按会话ID隔离，是临时状态，不落数据库。
type CartStore interface {
	Get(ctx context.Context, sessionID string) (*domain.Cart, error)
	Save(ctx context.Context, sessionID string, cart *domain.Cart) error
	Clear(ctx context.Context, sessionID string) error
}

// cartStore 基于缓存的购物车存储实现
type cartStore struct {
	cache cache.Cache
	ttl   time.Duration
}

// NewCartStore 创建购物车存储实例
func NewCartStore(c cache.Cache, ttl time.Duration) CartStore {
	return &cartStore{cache: c, ttl: ttl}
}

func (s *cartStore) cartKey(sessionID string) string {
	return fmt.Sprintf("cart:session:%s", sessionID)
}

// Get 获取会话的购物车，不存在时返回空购物车
func (s *cartStore) Get(ctx context.Context, sessionID string) (*domain.Cart, error) {
	cart := domain.NewCart()
	err := s.cache.Get(ctx, s.cartKey(sessionID), cart)
	if err != nil {
		// 缓存未命中按空购物车处理
		return domain.NewCart(), nil
	}
	return cart, nil
}

// Save 保存会话的购物车并刷新过期时间
func (s *cartStore) Save(ctx context.Context, sessionID string, cart *domain.Cart) error {
	if err := s.cache.Set(ctx, s.cartKey(sessionID), cart, s.ttl); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

// Clear 删除会话的购物车
func (s *cartStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.cache.Del(ctx, s.cartKey(sessionID)); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
