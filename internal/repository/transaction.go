package repository

import (
	"context"
	"errors"

	"github.com/wfunc/cashflow-game/internal/models"
	"gorm.io/gorm"
)

// CashTransactionRepository 现金流水仓储接口
type CashTransactionRepository interface {
	BaseRepository
	Create(ctx context.Context, tx *models.CashTransaction) error
	FindByOrderNo(ctx context.Context, orderNo string) (*models.CashTransaction, error)
	FindByRoomID(ctx context.Context, roomID uint, pagination *Pagination) ([]*models.CashTransaction, error)
	FindByUserID(ctx context.Context, roomID, userID uint, pagination *Pagination) ([]*models.CashTransaction, error)
	SumByType(ctx context.Context, roomID uint, txType string) (int64, error)
}

// cashTransactionRepo 现金流水仓储实现
type cashTransactionRepo struct {
	*BaseRepo
}

// NewCashTransactionRepository 创建现金流水仓储
func NewCashTransactionRepository(db *gorm.DB) CashTransactionRepository {
	return &cashTransactionRepo{
		BaseRepo: &BaseRepo{db: db},
	}
}

// Create 创建流水记录
func (r *cashTransactionRepo) Create(ctx context.Context, tx *models.CashTransaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

// FindByOrderNo 根据单号查找流水
func (r *cashTransactionRepo) FindByOrderNo(ctx context.Context, orderNo string) (*models.CashTransaction, error) {
	var tx models.CashTransaction
	err := r.db.WithContext(ctx).Where("order_no = ?", orderNo).First(&tx).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("流水不存在")
		}
		return nil, err
	}
	return &tx, nil
}

// FindByRoomID 查找房间的全部流水（分页）
func (r *cashTransactionRepo) FindByRoomID(ctx context.Context, roomID uint, pagination *Pagination) ([]*models.CashTransaction, error) {
	var txs []*models.CashTransaction
	query := r.db.WithContext(ctx).
		Model(&models.CashTransaction{}).
		Where("room_id = ?", roomID)

	var total int64
	query.Count(&total)
	pagination.Total = total

	err := query.
		Limit(pagination.PageSize).
		Offset(pagination.Offset()).
		Order("created_at DESC").
		Find(&txs).Error

	return txs, err
}

// FindByUserID 查找玩家在房间内的流水（分页）
func (r *cashTransactionRepo) FindByUserID(ctx context.Context, roomID, userID uint, pagination *Pagination) ([]*models.CashTransaction, error) {
	var txs []*models.CashTransaction
	query := r.db.WithContext(ctx).
		Model(&models.CashTransaction{}).
		Where("room_id = ? AND user_id = ?", roomID, userID)

	var total int64
	query.Count(&total)
	pagination.Total = total

	err := query.
		Limit(pagination.PageSize).
		Offset(pagination.Offset()).
		Order("created_at DESC").
		Find(&txs).Error

	return txs, err
}

// SumByType 按类型汇总房间流水
func (r *cashTransactionRepo) SumByType(ctx context.Context, roomID uint, txType string) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).
		Model(&models.CashTransaction{}).
		Where("room_id = ? AND type = ?", roomID, txType).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error
	return sum, err
}

// WithTx 使用事务
func (r *cashTransactionRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &cashTransactionRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}

// TurnRecordRepository 回合记录仓储接口
type TurnRecordRepository interface {
	BaseRepository
	Create(ctx context.Context, record *models.TurnRecord) error
	FindByRoomID(ctx context.Context, roomID uint, pagination *Pagination) ([]*models.TurnRecord, error)
	CountByRoomID(ctx context.Context, roomID uint) (int64, error)
	LastTurnNumber(ctx context.Context, roomID uint) (int, error)
}

// turnRecordRepo 回合记录仓储实现
type turnRecordRepo struct {
	*BaseRepo
}

// NewTurnRecordRepository 创建回合记录仓储
func NewTurnRecordRepository(db *gorm.DB) TurnRecordRepository {
	return &turnRecordRepo{
		BaseRepo: &BaseRepo{db: db},
	}
}

// Create 创建回合记录
func (r *turnRecordRepo) Create(ctx context.Context, record *models.TurnRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// FindByRoomID 查找房间的回合记录（分页）
func (r *turnRecordRepo) FindByRoomID(ctx context.Context, roomID uint, pagination *Pagination) ([]*models.TurnRecord, error) {
	var records []*models.TurnRecord
	query := r.db.WithContext(ctx).
		Model(&models.TurnRecord{}).
		Where("room_id = ?", roomID)

	var total int64
	query.Count(&total)
	pagination.Total = total

	err := query.
		Limit(pagination.PageSize).
		Offset(pagination.Offset()).
		Order("turn_number DESC").
		Find(&records).Error

	return records, err
}

// CountByRoomID 统计房间的回合数
func (r *turnRecordRepo) CountByRoomID(ctx context.Context, roomID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.TurnRecord{}).
		Where("room_id = ?", roomID).
		Count(&count).Error
	return count, err
}

// LastTurnNumber 获取房间最新的回合序号
func (r *turnRecordRepo) LastTurnNumber(ctx context.Context, roomID uint) (int, error) {
	var turnNumber int
	err := r.db.WithContext(ctx).
		Model(&models.TurnRecord{}).
		Where("room_id = ?", roomID).
		Select("COALESCE(MAX(turn_number), 0)").
		Scan(&turnNumber).Error
	return turnNumber, err
}

// WithTx 使用事务
func (r *turnRecordRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &turnRecordRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}
