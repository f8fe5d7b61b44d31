package repository

import (
	"context"
	"errors"
	"time"

	"github.com/wfunc/cashflow-game/internal/models"
	"gorm.io/gorm"
)

// RoomRepository 房间仓储接口
type RoomRepository interface {
	BaseRepository
	Create(ctx context.Context, room *models.Room) error
	Update(ctx context.Context, room *models.Room) error
	FindByID(ctx context.Context, id uint) (*models.Room, error)
	FindByRoomNumber(ctx context.Context, roomNumber string) (*models.Room, error)
	FindJoinable(ctx context.Context, pagination *Pagination) ([]*models.Room, error)
	FindByStatus(ctx context.Context, status string, pagination *Pagination) ([]*models.Room, error)
	UpdateStatus(ctx context.Context, roomID uint, status string) error
	SaveGameState(ctx context.Context, roomID uint, version int64, state string) error
	MarkFinished(ctx context.Context, roomID uint, winnerID uint) error
}

// roomRepo 房间仓储实现
type roomRepo struct {
	*BaseRepo
}

// NewRoomRepository 创建房间仓储
func NewRoomRepository(db *gorm.DB) RoomRepository {
	return &roomRepo{
		BaseRepo: &BaseRepo{db: db},
	}
}

// Create 创建房间
func (r *roomRepo) Create(ctx context.Context, room *models.Room) error {
	return r.db.WithContext(ctx).Create(room).Error
}

// Update 更新房间
func (r *roomRepo) Update(ctx context.Context, room *models.Room) error {
	return r.db.WithContext(ctx).Save(room).Error
}

// FindByID 根据ID查找房间
func (r *roomRepo) FindByID(ctx context.Context, id uint) (*models.Room, error) {
	var room models.Room
	err := r.db.WithContext(ctx).Preload("Players").First(&room, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("房间不存在")
		}
		return nil, err
	}
	return &room, nil
}

// FindByRoomNumber 根据房间号查找
func (r *roomRepo) FindByRoomNumber(ctx context.Context, roomNumber string) (*models.Room, error) {
	var room models.Room
	err := r.db.WithContext(ctx).
		Preload("Players").
		Where("room_number = ?", roomNumber).
		First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("房间不存在")
		}
		return nil, err
	}
	return &room, nil
}

// FindJoinable 查找可加入的房间（分页）
func (r *roomRepo) FindJoinable(ctx context.Context, pagination *Pagination) ([]*models.Room, error) {
	var rooms []*models.Room
	query := r.db.WithContext(ctx).
		Model(&models.Room{}).
		Where("status = ? AND current_players < max_players", models.RoomStatusWaiting)

	var total int64
	query.Count(&total)
	pagination.Total = total

	err := query.
		Limit(pagination.PageSize).
		Offset(pagination.Offset()).
		Order("created_at DESC").
		Find(&rooms).Error

	return rooms, err
}

// FindByStatus 按状态查找房间（分页）
func (r *roomRepo) FindByStatus(ctx context.Context, status string, pagination *Pagination) ([]*models.Room, error) {
	var rooms []*models.Room
	query := r.db.WithContext(ctx).
		Model(&models.Room{}).
		Where("status = ?", status)

	var total int64
	query.Count(&total)
	pagination.Total = total

	err := query.
		Limit(pagination.PageSize).
		Offset(pagination.Offset()).
		Order("created_at DESC").
		Find(&rooms).Error

	return rooms, err
}

// UpdateStatus 更新房间状态
func (r *roomRepo) UpdateStatus(ctx context.Context, roomID uint, status string) error {
	updates := map[string]interface{}{"status": status}
	if status == models.RoomStatusPlaying {
		updates["started_at"] = time.Now()
	}
	return r.db.WithContext(ctx).
		Model(&models.Room{}).
		Where("id = ?", roomID).
		Updates(updates).Error
}

// SaveGameState 保存对局快照
// 版本号只增不减，落后的写入直接丢弃
func (r *roomRepo) SaveGameState(ctx context.Context, roomID uint, version int64, state string) error {
	return r.db.WithContext(ctx).
		Model(&models.Room{}).
		Where("id = ? AND state_version < ?", roomID, version).
		Updates(map[string]interface{}{
			"state_version": version,
			"game_state":    state,
		}).Error
}

// MarkFinished 标记对局结束
func (r *roomRepo) MarkFinished(ctx context.Context, roomID uint, winnerID uint) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&models.Room{}).
		Where("id = ?", roomID).
		Updates(map[string]interface{}{
			"status":      models.RoomStatusFinished,
			"finished_at": now,
			"winner_id":   winnerID,
		}).Error
}

// WithTx 使用事务
func (r *roomRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &roomRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}

// RoomPlayerRepository 房间座位仓储接口
type RoomPlayerRepository interface {
	BaseRepository
	Create(ctx context.Context, player *models.RoomPlayer) error
	FindByRoomID(ctx context.Context, roomID uint) ([]*models.RoomPlayer, error)
	FindByRoomAndUser(ctx context.Context, roomID, userID uint) (*models.RoomPlayer, error)
	SetReady(ctx context.Context, roomID, userID uint, ready bool) error
	MarkLeft(ctx context.Context, roomID, userID uint) error
}

// roomPlayerRepo 房间座位仓储实现
type roomPlayerRepo struct {
	*BaseRepo
}

// NewRoomPlayerRepository 创建房间座位仓储
func NewRoomPlayerRepository(db *gorm.DB) RoomPlayerRepository {
	return &roomPlayerRepo{
		BaseRepo: &BaseRepo{db: db},
	}
}

// Create 创建座位记录
func (r *roomPlayerRepo) Create(ctx context.Context, player *models.RoomPlayer) error {
	if player.JoinedAt.IsZero() {
		player.JoinedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(player).Error
}

// FindByRoomID 查找房间的全部座位
func (r *roomPlayerRepo) FindByRoomID(ctx context.Context, roomID uint) ([]*models.RoomPlayer, error) {
	var players []*models.RoomPlayer
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("room_id = ? AND left_at IS NULL", roomID).
		Order("seat_index ASC").
		Find(&players).Error
	return players, err
}

// FindByRoomAndUser 查找指定玩家的座位
func (r *roomPlayerRepo) FindByRoomAndUser(ctx context.Context, roomID, userID uint) (*models.RoomPlayer, error) {
	var player models.RoomPlayer
	err := r.db.WithContext(ctx).
		Where("room_id = ? AND user_id = ? AND left_at IS NULL", roomID, userID).
		First(&player).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("玩家不在房间中")
		}
		return nil, err
	}
	return &player, nil
}

// SetReady 设置准备状态
func (r *roomPlayerRepo) SetReady(ctx context.Context, roomID, userID uint, ready bool) error {
	return r.db.WithContext(ctx).
		Model(&models.RoomPlayer{}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Update("is_ready", ready).Error
}

// MarkLeft 标记玩家离开
func (r *roomPlayerRepo) MarkLeft(ctx context.Context, roomID, userID uint) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&models.RoomPlayer{}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Update("left_at", now).Error
}

// WithTx 使用事务
func (r *roomPlayerRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &roomPlayerRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}
