package api

import (
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/sabordaterra/loja/internal/domain"
	"github.com/sabordaterra/loja/internal/middleware"
	"github.com/sabordaterra/loja/internal/resp"
	"github.com/sabordaterra/loja/internal/service"
)

// ProductHandler 商品相关的HTTP处理器
type ProductHandler struct {
	productService service.ProductService
	logger         *zap.Logger
}

// NewProductHandler 创建商品处理器实例
func NewProductHandler(productService service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

// ListProducts 获取商品列表
// GET /api/v1/products?page=1&page_size=20&status=active&category_id=1&keyword=pimenta&sort_by=price&sort_order=asc
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())

	query := r.URL.Query()
	req := &domain.ProductListRequest{
		Page:     queryInt(r, "page", 1),
		PageSize: queryInt(r, "page_size", 20),
	}

	if status := query.Get("status"); status != "" {
		s := domain.ProductStatus(status)
		req.Status = &s
	}
	if v := query.Get("category_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			req.CategoryID = &id
		}
	}
	if keyword := query.Get("keyword"); keyword != "" {
		req.Keyword = &keyword
	}
	if sortBy := query.Get("sort_by"); sortBy != "" {
		req.SortBy = &sortBy
	}
	if sortOrder := query.Get("sort_order"); sortOrder != "" {
		req.SortOrder = &sortOrder
	}

	result, err := h.productService.ListProducts(req)
	if err != nil {
		h.logger.Error("list products failed", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusInternalServerError, resp.CodeInternalError, "list products failed", reqID, "")
		return
	}

	resp.OK(w, result, reqID, "")
}

// SearchProducts 按关键词搜索商品
// GET /api/v1/products/search?keyword=pimenta&page=1&page_size=20
func (h *ProductHandler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())

	keyword := r.URL.Query().Get("keyword")
	if keyword == "" {
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "keyword is required", reqID, "")
		return
	}

	result, err := h.productService.SearchProducts(keyword, queryInt(r, "page", 1), queryInt(r, "page_size", 20))
	if err != nil {
		h.logger.Error("search products failed", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusInternalServerError, resp.CodeInternalError, "search products failed", reqID, "")
		return
	}

	resp.OK(w, result, reqID, "")
}

// GetProduct 获取商品详情
// GET /api/v1/products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())

	id, ok := pathID("/api/v1/products/", r.URL.Path)
	if !ok {
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "invalid product ID", reqID, "")
		return
	}

	product, err := h.productService.GetProduct(id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			resp.Error(w, http.StatusNotFound, resp.CodeNotFound, "product not found", reqID, "")
			return
		}
		h.logger.Error("get product failed", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusInternalServerError, resp.CodeInternalError, "get product failed", reqID, "")
		return
	}

	resp.OK(w, product, reqID, "")
}

// CreateProduct 创建商品
// POST /api/v1/admin/products（需要管理员权限）
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())

	var req domain.CreateProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := validateCreateProductRequest(&req); err != nil {
		h.logger.Warn("validation failed", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, err.Error(), reqID, "")
		return
	}

	product, err := h.productService.CreateProduct(&req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPrice) {
			resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "price must be greater than 0", reqID, "")
			return
		}
		h.logger.Error("create product failed", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusInternalServerError, resp.CodeInternalError, "create product failed", reqID, "")
		return
	}

	resp.OK(w, product, reqID, "")
}

// UpdateProduct 更新商品
// PUT /api/v1/admin/products/{id}（需要管理员权限）
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())

	id, ok := pathID("/api/v1/admin/products/", r.URL.Path)
	if !ok {
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "invalid product ID", reqID, "")
		return
	}

	var req domain.UpdateProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	product, err := h.productService.UpdateProduct(id, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			resp.Error(w, http.StatusNotFound, resp.CodeNotFound, "product not found", reqID, "")
		case errors.Is(err, service.ErrInvalidPrice):
			resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "price must be greater than 0", reqID, "")
		default:
			h.logger.Error("update product failed", zap.String("request_id", reqID), zap.Error(err))
			resp.Error(w, http.StatusInternalServerError, resp.CodeInternalError, "update product failed", reqID, "")
		}
		return
	}

	resp.OK(w, product, reqID, "")
}

// DeleteProduct 删除商品（软删除）
// DELETE /api/v1/admin/products/{id}（需要管理员权限）
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())

	id, ok := pathID("/api/v1/admin/products/", r.URL.Path)
	if !ok {
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "invalid product ID", reqID, "")
		return
	}

	if err := h.productService.DeleteProduct(id); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			resp.Error(w, http.StatusNotFound, resp.CodeNotFound, "product not found", reqID, "")
			return
		}
		h.logger.Error("delete product failed", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusInternalServerError, resp.CodeInternalError, "delete product failed", reqID, "")
		return
	}

	result := map[string]interface{}{"deleted": true}
	resp.OK(w, &result, reqID, "")
}

// GetProductStats 获取商品统计信息
// GET /api/v1/admin/products/stats（需要管理员权限）
func (h *ProductHandler) GetProductStats(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())

	stats, err := h.productService.GetProductStats()
	if err != nil {
		h.logger.Error("get product stats failed", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusInternalServerError, resp.CodeInternalError, "get product stats failed", reqID, "")
		return
	}

	resp.OK(w, stats, reqID, "")
}

// validateCreateProductRequest 验证创建商品请求
func validateCreateProductRequest(req *domain.CreateProductRequest) error {
	if req.Name == "" {
		return errors.New("name is required")
	}
	if len(req.Name) > 255 {
		return errors.New("name too long (max 255 characters)")
	}
	if req.Price <= 0 {
		return errors.New("price must be greater than 0")
	}
	if req.Type == domain.ProductTypeVariable && len(req.Variations) == 0 {
		return errors.New("variable product requires at least one variation group")
	}
	for _, group := range req.Variations {
		if group.Name == "" {
			return errors.New("variation group name is required")
		}
		if len(group.Options) == 0 {
			return errors.New("variation group requires at least one option")
		}
	}
	return nil
}
