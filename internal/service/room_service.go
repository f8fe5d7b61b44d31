package service

import (
	"context"
	"time"

	"github.com/wfunc/cashflow-game/internal/errors"
	"github.com/wfunc/cashflow-game/internal/models"
	"github.com/wfunc/cashflow-game/internal/repository"
	"github.com/wfunc/cashflow-game/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// roomService 房间服务实现
type roomService struct {
	db         *gorm.DB
	roomRepo   repository.RoomRepository
	playerRepo repository.RoomPlayerRepository
	userRepo   repository.UserRepository
	maxPlayers int
	log        *zap.Logger
}

// NewRoomService 创建房间服务
func NewRoomService(
	db *gorm.DB,
	roomRepo repository.RoomRepository,
	playerRepo repository.RoomPlayerRepository,
	userRepo repository.UserRepository,
	maxPlayers int,
	log *zap.Logger,
) RoomService {
	if maxPlayers <= 0 {
		maxPlayers = 8
	}
	return &roomService{
		db:         db,
		roomRepo:   roomRepo,
		playerRepo: playerRepo,
		userRepo:   userRepo,
		maxPlayers: maxPlayers,
		log:        log,
	}
}

// CreateRoom 创建房间，房主自动入座
func (s *roomService) CreateRoom(ctx context.Context, hostID uint, req *CreateRoomRequest) (*models.Room, error) {
	if _, err := s.userRepo.FindByID(ctx, hostID); err != nil {
		return nil, ErrUserNotFound
	}

	maxPlayers := req.MaxPlayers
	if maxPlayers <= 0 || maxPlayers > s.maxPlayers {
		maxPlayers = s.maxPlayers
	}

	roomNumber, err := utils.GenerateRoomNumber()
	if err != nil {
		return nil, err
	}

	room := &models.Room{
		RoomNumber:     roomNumber,
		Name:           req.Name,
		HostID:         hostID,
		MaxPlayers:     maxPlayers,
		CurrentPlayers: 1,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(room).Error; err != nil {
			return err
		}
		seat := &models.RoomPlayer{
			RoomID:    room.ID,
			UserID:    hostID,
			SeatIndex: 0,
			IsReady:   true, // 房主默认准备
			JoinedAt:  time.Now(),
		}
		return tx.Create(seat).Error
	})
	if err != nil {
		s.log.Error("创建房间失败", zap.Uint("host_id", hostID), zap.Error(err))
		return nil, err
	}

	s.log.Info("房间创建成功",
		zap.Uint("room_id", room.ID),
		zap.String("room_number", room.RoomNumber),
		zap.Uint("host_id", hostID))

	return s.roomRepo.FindByID(ctx, room.ID)
}

// JoinRoom 加入房间
func (s *roomService) JoinRoom(ctx context.Context, roomID, userID uint) (*models.Room, error) {
	room, err := s.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.IsJoinable() {
		return nil, errors.New(errors.ErrRoomFull, "房间已满或对局已开始")
	}

	// 已入座的玩家重复加入是幂等的
	if _, err := s.playerRepo.FindByRoomAndUser(ctx, roomID, userID); err == nil {
		return room, nil
	}

	players, err := s.playerRepo.FindByRoomID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if len(players) >= room.MaxPlayers {
		return nil, errors.New(errors.ErrRoomFull, "房间已满")
	}

	// 选择最小的空闲座位号
	used := make(map[int]bool, len(players))
	for _, p := range players {
		used[p.SeatIndex] = true
	}
	seatIndex := 0
	for used[seatIndex] {
		seatIndex++
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seat := &models.RoomPlayer{
			RoomID:    roomID,
			UserID:    userID,
			SeatIndex: seatIndex,
			JoinedAt:  time.Now(),
		}
		if err := tx.Create(seat).Error; err != nil {
			return err
		}
		return tx.Model(&models.Room{}).
			Where("id = ?", roomID).
			Update("current_players", gorm.Expr("current_players + 1")).Error
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("玩家加入房间",
		zap.Uint("room_id", roomID),
		zap.Uint("user_id", userID),
		zap.Int("seat", seatIndex))

	return s.roomRepo.FindByID(ctx, roomID)
}

// LeaveRoom 离开房间
func (s *roomService) LeaveRoom(ctx context.Context, roomID, userID uint) error {
	if _, err := s.playerRepo.FindByRoomAndUser(ctx, roomID, userID); err != nil {
		return errors.New(errors.ErrNotInRoom, "玩家不在房间中")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		if err := tx.Model(&models.RoomPlayer{}).
			Where("room_id = ? AND user_id = ?", roomID, userID).
			Update("left_at", now).Error; err != nil {
			return err
		}
		return tx.Model(&models.Room{}).
			Where("id = ? AND current_players > 0", roomID).
			Update("current_players", gorm.Expr("current_players - 1")).Error
	})
	if err != nil {
		return err
	}

	s.log.Info("玩家离开房间",
		zap.Uint("room_id", roomID),
		zap.Uint("user_id", userID))
	return nil
}

// SetReady 设置准备状态
func (s *roomService) SetReady(ctx context.Context, roomID, userID uint, ready bool) error {
	if _, err := s.playerRepo.FindByRoomAndUser(ctx, roomID, userID); err != nil {
		return errors.New(errors.ErrNotInRoom, "玩家不在房间中")
	}
	return s.playerRepo.SetReady(ctx, roomID, userID, ready)
}

// ListJoinable 列出可加入的房间
func (s *roomService) ListJoinable(ctx context.Context, page, pageSize int) ([]*models.Room, int64, error) {
	pagination := repository.NewPagination(page, pageSize)
	rooms, err := s.roomRepo.FindJoinable(ctx, pagination)
	if err != nil {
		return nil, 0, err
	}
	return rooms, pagination.Total, nil
}

// GetRoom 获取房间详情
func (s *roomService) GetRoom(ctx context.Context, roomID uint) (*models.Room, error) {
	return s.roomRepo.FindByID(ctx, roomID)
}
