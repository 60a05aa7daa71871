// Package service 实现业务逻辑层，协调各种资源完成业务需求。
package service

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/sabordaterra/loja/internal/domain"
	"github.com/sabordaterra/loja/internal/repo"
)

// 商品相关业务错误
var (
	ErrProductNotFound    = errors.New("product not found")
	ErrProductUnavailable = errors.New("product unavailable")
	ErrInvalidPrice       = errors.New("price must be greater than 0")
)

// ProductService 定义商品业务逻辑接口
type ProductService interface {
	// 商品管理
	CreateProduct(req *domain.CreateProductRequest) (*domain.Product, error)
	GetProduct(id int64) (*domain.Product, error)
	UpdateProduct(id int64, req *domain.UpdateProductRequest) (*domain.Product, error)
	DeleteProduct(id int64) error

	// 商品查询
	ListProducts(req *domain.ProductListRequest) (*domain.ProductListResponse, error)
	SearchProducts(keyword string, page, pageSize int) (*domain.ProductListResponse, error)

	// 商品统计
	GetProductStats() (*ProductStats, error)
}

// ProductStats 商品统计信息
type ProductStats struct {
	TotalProducts    int64 `json:"total_products"`
	ActiveProducts   int64 `json:"active_products"`
	InactiveProducts int64 `json:"inactive_products"`
}

// productService 实现ProductService接口
type productService struct {
	productRepo repo.ProductRepository
	logger      *zap.Logger
}

// NewProductService 创建商品服务实例
func NewProductService(productRepo repo.ProductRepository, logger *zap.Logger) ProductService {
	return &productService{
		productRepo: productRepo,
		logger:      logger,
	}
}

// checkPromotion 促销价高于基础价不是错误，但几乎一定是录入失误，记日志提醒
func (s *productService) checkPromotion(product *domain.Product) {
	if product.PromotionalPrice != nil && *product.PromotionalPrice > product.Price {
		s.logger.Warn("promotional price exceeds base price",
			zap.Int64("product_id", product.ID),
			zap.Float64("price", product.Price),
			zap.Float64("promotional_price", *product.PromotionalPrice),
		)
	}
}

// CreateProduct 创建商品
func (s *productService) CreateProduct(req *domain.CreateProductRequest) (*domain.Product, error) {
	if req.Price <= 0 {
		return nil, ErrInvalidPrice
	}

	productType := req.Type
	if productType == "" {
		productType = domain.ProductTypeSimple
	}

	product := &domain.Product{
		Name:             req.Name,
		Description:      req.Description,
		Price:            req.Price,
		PromotionalPrice: req.PromotionalPrice,
		CategoryID:       req.CategoryID,
		Stock:            req.Stock,
		Images:           req.Images,
		Type:             productType,
		Variations:       req.Variations,
		Status:           domain.ProductStatusActive,
	}

	if err := s.productRepo.Create(product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.checkPromotion(product)

	return product, nil
}

// GetProduct 获取商品详情
func (s *productService) GetProduct(id int64) (*domain.Product, error) {
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	return product, nil
}

// UpdateProduct 更新商品
func (s *productService) UpdateProduct(id int64, req *domain.UpdateProductRequest) (*domain.Product, error) {
	// 获取现有商品
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	// 更新字段
	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		if *req.Price <= 0 {
			return nil, ErrInvalidPrice
		}
		product.Price = *req.Price
	}
	// ClearPromotion区分"不改促销价"和"取消促销"两种意图
	if req.ClearPromotion {
		product.PromotionalPrice = nil
	} else if req.PromotionalPrice != nil {
		product.PromotionalPrice = req.PromotionalPrice
	}
	if req.CategoryID != nil {
		product.CategoryID = req.CategoryID
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.Images != nil {
		product.Images = req.Images
	}
	if req.Type != nil {
		product.Type = *req.Type
	}
	if req.Variations != nil {
		product.Variations = *req.Variations
	}
	if req.Status != nil {
		product.Status = *req.Status
	}

	if err := s.productRepo.Update(product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.checkPromotion(product)

	return product, nil
}

// DeleteProduct 删除商品（软删除）
func (s *productService) DeleteProduct(id int64) error {
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return ErrProductNotFound
	}

	return s.productRepo.Delete(id)
}

// ListProducts 获取商品列表
func (s *productService) ListProducts(req *domain.ProductListRequest) (*domain.ProductListResponse, error) {
	// 设置默认值
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 20
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	products, total, err := s.productRepo.List(req)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	return &domain.ProductListResponse{
		Products: products,
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
	}, nil
}

// SearchProducts 搜索商品
func (s *productService) SearchProducts(keyword string, page, pageSize int) (*domain.ProductListResponse, error) {
	req := &domain.ProductListRequest{
		Page:     page,
		PageSize: pageSize,
		Keyword:  &keyword,
	}

	return s.ListProducts(req)
}

// GetProductStats 获取商品统计信息
func (s *productService) GetProductStats() (*ProductStats, error) {
	totalProducts, err := s.productRepo.Count()
	if err != nil {
		return nil, fmt.Errorf("failed to get total products: %w", err)
	}

	activeProducts, err := s.productRepo.CountByStatus(domain.ProductStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to get active products count: %w", err)
	}

	inactiveProducts, err := s.productRepo.CountByStatus(domain.ProductStatusInactive)
	if err != nil {
		return nil, fmt.Errorf("failed to get inactive products count: %w", err)
	}

	return &ProductStats{
		TotalProducts:    totalProducts,
		ActiveProducts:   activeProducts,
		InactiveProducts: inactiveProducts,
	}, nil
}
