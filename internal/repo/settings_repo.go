// Package repo 实现系统设置数据访问层。
package repo

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/sabordaterra/loja/internal/domain"
)

// 设置表中的键名
const settingsKeyLoyalty = "loyalty"

// SettingsRepository 定义系统设置数据访问接口。
// 设置以键值对存储，值为JSON文档。
type SettingsRepository interface {
	GetLoyalty() (*domain.LoyaltySettings, error)
	SaveLoyalty(settings *domain.LoyaltySettings) error
}

// settingsRepo 实现SettingsRepository接口
type settingsRepo struct {
	db *sql.DB
}

// NewSettingsRepository 创建设置仓储实例
func NewSettingsRepository(db *sql.DB) SettingsRepository {
	return &settingsRepo{db: db}
}

// GetLoyalty 获取忠诚度计划配置，未保存过时返回nil
func (r *settingsRepo) GetLoyalty() (*domain.LoyaltySettings, error) {
	query := `SELECT value FROM settings WHERE name = ?`

	var value string
	err := r.db.QueryRow(query, settingsKeyLoyalty).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get loyalty settings: %w", err)
	}

	settings := &domain.LoyaltySettings{}
	if err := json.Unmarshal([]byte(value), settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal loyalty settings: %w", err)
	}

	return settings, nil
}

// SaveLoyalty 保存忠诚度计划配置（存在则覆盖）
func (r *settingsRepo) SaveLoyalty(settings *domain.LoyaltySettings) error {
	value, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal loyalty settings: %w", err)
	}

	query := `
		INSERT INTO settings (name, value)
		VALUES (?, ?)
		ON DUPLICATE KEY UPDATE value = VALUES(value)
	`

	if _, err := r.db.Exec(query, settingsKeyLoyalty, value); err != nil {
		return fmt.Errorf("failed to save loyalty settings: %w", err)
	}

	return nil
}
