package service

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/sabordaterra/loja/internal/domain"
	"github.com/sabordaterra/loja/internal/repo"
)

// 订单服务相关错误
var (
	ErrOrderNotFound = errors.New("order not found")
)

// OrderPage 分页的订单列表
type OrderPage struct {
	Orders   []*domain.Order `json:"orders"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}

// OrderService 定义订单查询服务接口。
// 订单由结算服务创建，这里只提供用户视角的只读访问。
type OrderService interface {
	ListUserOrders(userID int64, page, pageSize int) (*OrderPage, error)
	GetUserOrder(userID, orderID int64) (*domain.Order, error)
}

// orderService 实现OrderService接口
type orderService struct {
	orderRepo repo.OrderRepository
	logger    *zap.Logger
}

// NewOrderService 创建订单服务实例
func NewOrderService(orderRepo repo.OrderRepository, logger *zap.Logger) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		logger:    logger,
	}
}

// ListUserOrders 分页列出用户的订单，按创建时间倒序
func (s *orderService) ListUserOrders(userID int64, page, pageSize int) (*OrderPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	orders, total, err := s.orderRepo.GetByUserID(userID, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	if orders == nil {
		orders = []*domain.Order{}
	}

	return &OrderPage{
		Orders:   orders,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// GetUserOrder 获取用户自己的订单详情。
// 其他用户的订单按不存在处理，不泄露订单是否存在。
func (s *orderService) GetUserOrder(userID, orderID int64) (*domain.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.UserID == nil || *order.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return order, nil
}
