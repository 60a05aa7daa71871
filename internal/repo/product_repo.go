// Package repo 实现数据访问层，负责与数据库的交互。
package repo

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sabordaterra/loja/internal/domain"
)

// ProductRepository 定义商品数据访问接口
type ProductRepository interface {
	// 基本CRUD操作
	Create(product *domain.Product) error
	GetByID(id int64) (*domain.Product, error)
	Update(product *domain.Product) error
	Delete(id int64) error

	// 查询操作
	List(req *domain.ProductListRequest) ([]*domain.Product, int64, error)
	GetByIDs(ids []int64) ([]*domain.Product, error)

	// 统计操作
	Count() (int64, error)
	CountByStatus(status domain.ProductStatus) (int64, error)
}

// productRepo 实现ProductRepository接口
type productRepo struct {
	db *sql.DB
}

// NewProductRepository 创建商品仓储实例
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepo{db: db}
}

const productColumns = `id, name, description, price, promotional_price, category_id, stock,
	rating, review_count, images, type, variations, status, created_at, updated_at`

// scanProduct 从一行中扫描商品，images和variations以JSON列存储
func scanProduct(row interface{ Scan(...interface{}) error }) (*domain.Product, error) {
	product := &domain.Product{}
	var imagesJSON, variationsJSON sql.NullString

	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.PromotionalPrice,
		&product.CategoryID,
		&product.Stock,
		&product.Rating,
		&product.ReviewCount,
		&imagesJSON,
		&product.Type,
		&variationsJSON,
		&product.Status,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if imagesJSON.Valid && imagesJSON.String != "" {
		if err := json.Unmarshal([]byte(imagesJSON.String), &product.Images); err != nil {
			return nil, fmt.Errorf("failed to unmarshal images: %w", err)
		}
	}
	if variationsJSON.Valid && variationsJSON.String != "" {
		if err := json.Unmarshal([]byte(variationsJSON.String), &product.Variations); err != nil {
			return nil, fmt.Errorf("failed to unmarshal variations: %w", err)
		}
	}

	return product, nil
}

func marshalProductJSON(product *domain.Product) (imagesJSON, variationsJSON []byte, err error) {
	imagesJSON, err = json.Marshal(product.Images)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal images: %w", err)
	}
	variationsJSON, err = json.Marshal(product.Variations)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal variations: %w", err)
	}
	return imagesJSON, variationsJSON, nil
}

// Create 创建商品
func (r *productRepo) Create(product *domain.Product) error {
	imagesJSON, variationsJSON, err := marshalProductJSON(product)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO products (name, description, price, promotional_price, category_id, stock,
			rating, review_count, images, type, variations, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Exec(query,
		product.Name,
		product.Description,
		product.Price,
		product.PromotionalPrice,
		product.CategoryID,
		product.Stock,
		product.Rating,
		product.ReviewCount,
		imagesJSON,
		product.Type,
		variationsJSON,
		product.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	product.ID = id
	return nil
}

// GetByID 根据ID获取商品
func (r *productRepo) GetByID(id int64) (*domain.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM products
		WHERE id = ? AND status != 'deleted'
	`, productColumns)

	product, err := scanProduct(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product by id: %w", err)
	}

	return product, nil
}

// Update 更新商品
func (r *productRepo) Update(product *domain.Product) error {
	imagesJSON, variationsJSON, err := marshalProductJSON(product)
	if err != nil {
		return err
	}

	query := `
		UPDATE products
		SET name = ?, description = ?, price = ?, promotional_price = ?, category_id = ?, stock = ?,
			rating = ?, review_count = ?, images = ?, type = ?, variations = ?, status = ?
		WHERE id = ?
	`

	_, err = r.db.Exec(query,
		product.Name,
		product.Description,
		product.Price,
		product.PromotionalPrice,
		product.CategoryID,
		product.Stock,
		product.Rating,
		product.ReviewCount,
		imagesJSON,
		product.Type,
		variationsJSON,
		product.Status,
		product.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	return nil
}

// Delete 软删除商品
func (r *productRepo) Delete(id int64) error {
	query := `UPDATE products SET status = 'deleted' WHERE id = ?`

	_, err := r.db.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	return nil
}

// List 获取商品列表
func (r *productRepo) List(req *domain.ProductListRequest) ([]*domain.Product, int64, error) {
	// 构建查询条件
	where, args := r.buildListWhereClause(req)

	// 获取总数
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM products %s", where)
	var total int64
	err := r.db.QueryRow(countQuery, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	// 构建排序和分页
	orderBy := r.buildOrderClause(req)
	limit := req.PageSize
	offset := (req.Page - 1) * req.PageSize

	// 查询数据
	query := fmt.Sprintf(`
		SELECT %s FROM products %s %s LIMIT ? OFFSET ?
	`, productColumns, where, orderBy)

	args = append(args, limit, offset)
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	return products, total, nil
}

// GetByIDs 根据ID列表批量获取商品
func (r *productRepo) GetByIDs(ids []int64) ([]*domain.Product, error) {
	if len(ids) == 0 {
		return []*domain.Product{}, nil
	}

	// 构建IN子句
	placeholders := strings.Repeat("?,", len(ids)-1) + "?"
	query := fmt.Sprintf(`
		SELECT %s FROM products
		WHERE id IN (%s) AND status != 'deleted'
		ORDER BY id
	`, productColumns, placeholders)

	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products by ids: %w", err)
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	return products, nil
}

// Count 获取商品总数
func (r *productRepo) Count() (int64, error) {
	query := "SELECT COUNT(*) FROM products WHERE status != 'deleted'"

	var count int64
	err := r.db.QueryRow(query).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}

	return count, nil
}

// CountByStatus 根据状态统计商品数量
func (r *productRepo) CountByStatus(status domain.ProductStatus) (int64, error) {
	query := "SELECT COUNT(*) FROM products WHERE status = ?"

	var count int64
	err := r.db.QueryRow(query, status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count products by status: %w", err)
	}

	return count, nil
}

// buildListWhereClause 构建查询条件子句
func (r *productRepo) buildListWhereClause(req *domain.ProductListRequest) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	// 默认排除已删除的商品
	conditions = append(conditions, "status != 'deleted'")

	// 状态过滤
	if req.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, *req.Status)
	}

	// 分类过滤
	if req.CategoryID != nil {
		conditions = append(conditions, "category_id = ?")
		args = append(args, *req.CategoryID)
	}

	// 关键词搜索
	if req.Keyword != nil && *req.Keyword != "" {
		conditions = append(conditions, "(name LIKE ? OR description LIKE ?)")
		keyword := "%" + *req.Keyword + "%"
		args = append(args, keyword, keyword)
	}

	return "WHERE " + strings.Join(conditions, " AND "), args
}

// buildOrderClause 构建排序子句
func (r *productRepo) buildOrderClause(req *domain.ProductListRequest) string {
	sortBy := "created_at"
	sortOrder := "DESC"

	if req.SortBy != nil {
		switch *req.SortBy {
		case "price", "rating", "created_at", "name", "updated_at":
			sortBy = *req.SortBy
		}
	}

	if req.SortOrder != nil {
		if strings.ToUpper(*req.SortOrder) == "ASC" {
			sortOrder = "ASC"
		}
	}

	return fmt.Sprintf("ORDER BY %s %s", sortBy, sortOrder)
}
