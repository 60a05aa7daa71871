// Package database 负责MySQL连接管理和数据库迁移。
package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"

	"github.com/sabordaterra/loja/internal/config"
)

// DB 包装标准库连接池，附带日志器
type DB struct {
	*sql.DB
	logger *zap.Logger
}

// New 建立MySQL连接并配置连接池
func New(cfg *config.Config, logger *zap.Logger) (*DB, error) {
	mc := mysql.NewConfig()
	mc.Net = "tcp"
	mc.Addr = fmt.Sprintf("%s:%d", cfg.DB.Host, cfg.DB.Port)
	mc.User = cfg.DB.User
	mc.Passwd = cfg.DB.Password
	mc.DBName = cfg.DB.Name
	mc.ParseTime = true
	mc.Loc = time.UTC
	mc.MultiStatements = true // 迁移脚本可能包含多条语句

	db, err := sql.Open("mysql", mc.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	db.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Sugar().Infow("database connected",
		"host", cfg.DB.Host, "port", cfg.DB.Port, "db", cfg.DB.Name)

	return &DB{DB: db, logger: logger}, nil
}

// newMigrate 构建迁移实例
func (d *DB) newMigrate(dir string) (*migrate.Migrate, error) {
	driver, err := migratemysql.WithInstance(d.DB, &migratemysql.Config{})
	if err != nil {
		return nil, fmt.Errorf("create migrate driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+dir, "mysql", driver)
	if err != nil {
		return nil, fmt.Errorf("create migrate instance: %w", err)
	}
	return m, nil
}

// RunMigrations 执行数据库迁移（向上迁移到最新版本）。
// 应用启动时、HTTP服务器监听前调用，保证处理请求前表结构就绪。
func (d *DB) RunMigrations(dir string) error {
	m, err := d.newMigrate(dir)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("run migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("get migration version: %w", err)
	}

	d.logger.Sugar().Infow("migrations applied", "version", version, "dirty", dirty)
	return nil
}

// MigrateDown 回滚指定步数的迁移（供cmd/migrate使用）
func (d *DB) MigrateDown(dir string, steps int) error {
	m, err := d.newMigrate(dir)
	if err != nil {
		return err
	}

	if err := m.Steps(-steps); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migrate down: %w", err)
	}
	return nil
}

// MigrateForce 强制设置迁移版本（修复dirty状态时使用）
func (d *DB) MigrateForce(dir string, version int) error {
	m, err := d.newMigrate(dir)
	if err != nil {
		return err
	}

	if err := m.Force(version); err != nil {
		return fmt.Errorf("force version: %w", err)
	}
	return nil
}

// MigrationVersion 查询当前迁移版本
func (d *DB) MigrationVersion(dir string) (uint, bool, error) {
	m, err := d.newMigrate(dir)
	if err != nil {
		return 0, false, err
	}

	version, dirty, err := m.Version()
	if err == migrate.ErrNilVersion {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get version: %w", err)
	}
	return version, dirty, nil
}
