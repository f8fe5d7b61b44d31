package database

import (
	"fmt"

	"github.com/wfunc/cashflow-game/internal/logger"
	"github.com/wfunc/cashflow-game/internal/models"
	"go.uber.org/zap"
)

// AutoMigrate 自动迁移数据库表结构
func AutoMigrate() error {
	if DB == nil {
		return fmt.Errorf("数据库未初始化")
	}

	// 清理过期锁文件
	CleanupStaleLocks()

	// 获取迁移锁，避免多个进程同时迁移
	dbPath := getDBPath()
	if dbPath != "" {
		lockFile, err := acquireMigrationLock(dbPath)
		if err != nil {
			logger.Error("无法获取迁移锁", zap.Error(err))
			return fmt.Errorf("获取迁移锁失败: %w", err)
		}
		defer releaseMigrationLock(lockFile)
	}

	migrationModels := []interface{}{
		// 用户相关
		&models.User{},
		&models.UserAuth{},

		// 房间相关
		&models.Room{},
		&models.RoomPlayer{},

		// 对局流水相关
		&models.CashTransaction{},
		&models.TurnRecord{},
	}

	logger.Info("开始数据库迁移...")

	// SQLite 迁移期间关闭外键约束，避免重建表时的问题
	if DB.Dialector.Name() == "sqlite" {
		DB.Exec("PRAGMA foreign_keys = OFF")
		defer DB.Exec("PRAGMA foreign_keys = ON")
	}

	for _, model := range migrationModels {
		if err := DB.AutoMigrate(model); err != nil {
			logger.Error("迁移失败",
				zap.String("model", fmt.Sprintf("%T", model)),
				zap.Error(err),
			)
			return err
		}
		logger.Debug("迁移成功", zap.String("model", fmt.Sprintf("%T", model)))
	}

	// 创建索引
	if err := createIndexes(); err != nil {
		return err
	}

	logger.Info("数据库迁移完成")
	return nil
}

// createIndexes 创建数据库索引
func createIndexes() error {
	// 用户表索引
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_users_username ON users(username)").Error; err != nil {
		logger.Warn("创建索引失败", zap.String("index", "idx_users_username"), zap.Error(err))
	}

	// 房间表索引
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_rooms_status ON rooms(status)").Error; err != nil {
		logger.Warn("创建索引失败", zap.String("index", "idx_rooms_status"), zap.Error(err))
	}

	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_room_players_user_id ON room_players(user_id)").Error; err != nil {
		logger.Warn("创建索引失败", zap.String("index", "idx_room_players_user_id"), zap.Error(err))
	}

	// 流水表索引
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_cash_transactions_room_id ON cash_transactions(room_id)").Error; err != nil {
		logger.Warn("创建索引失败", zap.String("index", "idx_cash_transactions_room_id"), zap.Error(err))
	}

	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_cash_transactions_type ON cash_transactions(type)").Error; err != nil {
		logger.Warn("创建索引失败", zap.String("index", "idx_cash_transactions_type"), zap.Error(err))
	}

	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_turn_records_room_id ON turn_records(room_id)").Error; err != nil {
		logger.Warn("创建索引失败", zap.String("index", "idx_turn_records_room_id"), zap.Error(err))
	}

	logger.Info("数据库索引创建完成")
	return nil
}

// DropAllTables 删除所有表（仅用于测试环境）
func DropAllTables() error {
	if DB == nil {
		return fmt.Errorf("数据库未初始化")
	}

	var tables []string
	if err := DB.Raw("SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%'").Scan(&tables).Error; err != nil {
		return err
	}

	for _, table := range tables {
		if err := DB.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", table)).Error; err != nil {
			logger.Error("删除表失败", zap.String("table", table), zap.Error(err))
			return err
		}
	}

	logger.Info("所有表已删除")
	return nil
}
