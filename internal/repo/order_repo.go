// Package repo 实现订单数据访问层，负责与数据库的交互。
package repo

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sabordaterra/loja/internal/domain"
)

// OrderRepository 定义订单数据访问接口
type OrderRepository interface {
	Create(order *domain.Order) error
	GetByID(id int64) (*domain.Order, error)
	GetByNumber(number string) (*domain.Order, error)
	GetByUserID(userID int64, offset, limit int) ([]*domain.Order, int64, error)
	MarkPaid(id int64, paidAt time.Time) error
	Count() (int64, error)
}

// orderRepo 实现OrderRepository接口
type orderRepo struct {
	db *sql.DB
}

// NewOrderRepository 创建订单仓储实例
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepo{db: db}
}

const orderColumns = `id, number, user_id, lines, subtotal, discount, total, reward_id,
	points_redeemed, points_earned, payment_method, status, paid_at, created_at, updated_at`

func scanOrder(row interface{ Scan(...interface{}) error }) (*domain.Order, error) {
	order := &domain.Order{}
	var linesJSON string

	err := row.Scan(
		&order.ID,
		&order.Number,
		&order.UserID,
		&linesJSON,
		&order.Subtotal,
		&order.Discount,
		&order.Total,
		&order.RewardID,
		&order.PointsRedeemed,
		&order.PointsEarned,
		&order.PaymentMethod,
		&order.Status,
		&order.PaidAt,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if linesJSON != "" {
		if err := json.Unmarshal([]byte(linesJSON), &order.Lines); err != nil {
			return nil, fmt.Errorf("failed to unmarshal order lines: %w", err)
		}
	}

	return order, nil
}

// Create 创建订单，订单行以JSON列存储（下单时的不可变快照）
func (r *orderRepo) Create(order *domain.Order) error {
	linesJSON, err := json.Marshal(order.Lines)
	if err != nil {
		return fmt.Errorf("failed to marshal order lines: %w", err)
	}

	query := `
		INSERT INTO orders (number, user_id, lines, subtotal, discount, total, reward_id,
			points_redeemed, points_earned, payment_method, status, paid_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Exec(query,
		order.Number,
		order.UserID,
		linesJSON,
		order.Subtotal,
		order.Discount,
		order.Total,
		order.RewardID,
		order.PointsRedeemed,
		order.PointsEarned,
		order.PaymentMethod,
		order.Status,
		order.PaidAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	order.ID = id
	return nil
}

// GetByID 根据ID获取订单
func (r *orderRepo) GetByID(id int64) (*domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE id = ?`, orderColumns)

	order, err := scanOrder(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order by id: %w", err)
	}
	return order, nil
}

// GetByNumber 根据订单号获取订单
func (r *orderRepo) GetByNumber(number string) (*domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE number = ?`, orderColumns)

	order, err := scanOrder(r.db.QueryRow(query, number))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order by number: %w", err)
	}
	return order, nil
}

// GetByUserID 分页获取用户的订单列表
func (r *orderRepo) GetByUserID(userID int64, offset, limit int) ([]*domain.Order, int64, error) {
	var total int64
	countQuery := `SELECT COUNT(*) FROM orders WHERE user_id = ?`
	if err := r.db.QueryRow(countQuery, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM orders
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, orderColumns)

	rows, err := r.db.Query(query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	return orders, total, nil
}

// MarkPaid 标记订单为已支付
func (r *orderRepo) MarkPaid(id int64, paidAt time.Time) error {
	query := `UPDATE orders SET status = ?, paid_at = ? WHERE id = ?`

	_, err := r.db.Exec(query, domain.OrderStatusPaid, paidAt, id)
	if err != nil {
		return fmt.Errorf("failed to mark order paid: %w", err)
	}

	return nil
}

// Count 获取订单总数
func (r *orderRepo) Count() (int64, error) {
	var count int64
	err := r.db.QueryRow(`SELECT COUNT(*) FROM orders`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return count, nil
}
