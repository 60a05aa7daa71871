// Package repo 实现忠诚度账户数据访问层。
package repo

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/sabordaterra/loja/internal/domain"
)

// LoyaltyRepository 定义忠诚度账户数据访问接口
type LoyaltyRepository interface {
	GetByUserID(userID int64) (*domain.LoyaltyAccount, error)
	Create(account *domain.LoyaltyAccount) error
	// Add 无条件增加积分
	Add(userID int64, points int) error
	// Deduct 条件扣减积分，余额不足时返回false且不扣减
	Deduct(userID int64, points int) (bool, error)
}

// loyaltyRepo 实现LoyaltyRepository接口
type loyaltyRepo struct {
	db *sql.DB
}

// NewLoyaltyRepository 创建忠诚度账户仓储实例
func NewLoyaltyRepository(db *sql.DB) LoyaltyRepository {
	return &loyaltyRepo{db: db}
}

// GetByUserID 根据用户ID获取忠诚度账户
func (r *loyaltyRepo) GetByUserID(userID int64) (*domain.LoyaltyAccount, error) {
	query := `
		SELECT id, user_id, balance, badges, created_at, updated_at
		FROM loyalty_accounts
		WHERE user_id = ?
	`

	account := &domain.LoyaltyAccount{}
	var badgesJSON sql.NullString

	err := r.db.QueryRow(query, userID).Scan(
		&account.ID,
		&account.UserID,
		&account.Balance,
		&badgesJSON,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get loyalty account: %w", err)
	}

	if badgesJSON.Valid && badgesJSON.String != "" {
		if err := json.Unmarshal([]byte(badgesJSON.String), &account.Badges); err != nil {
			return nil, fmt.Errorf("failed to unmarshal badges: %w", err)
		}
	}

	return account, nil
}

// Create 创建忠诚度账户
func (r *loyaltyRepo) Create(account *domain.LoyaltyAccount) error {
	badgesJSON, err := json.Marshal(account.Badges)
	if err != nil {
		return fmt.Errorf("failed to marshal badges: %w", err)
	}

	query := `
		INSERT INTO loyalty_accounts (user_id, balance, badges)
		VALUES (?, ?, ?)
	`

	result, err := r.db.Exec(query, account.UserID, account.Balance, badgesJSON)
	if err != nil {
		return fmt.Errorf("failed to create loyalty account: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	account.ID = id
	return nil
}

// Add 无条件增加积分
func (r *loyaltyRepo) Add(userID int64, points int) error {
	query := `UPDATE loyalty_accounts SET balance = balance + ? WHERE user_id = ?`

	result, err := r.db.Exec(query, points, userID)
	if err != nil {
		return fmt.Errorf("failed to add points: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("loyalty account for user %d not found", userID)
	}

	return nil
}

// Deduct 条件扣减积分。
// 扣减和余额检查在同一条语句中完成，避免并发下余额变负。
func (r *loyaltyRepo) Deduct(userID int64, points int) (bool, error) {
	query := `
		UPDATE loyalty_accounts
		SET balance = balance - ?
		WHERE user_id = ? AND balance >= ?
	`

	result, err := r.db.Exec(query, points, userID, points)
	if err != nil {
		return false, fmt.Errorf("failed to deduct points: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return affected > 0, nil
}
