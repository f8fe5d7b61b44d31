package service

import (
	"time"

	"github.com/wfunc/cashflow-game/internal/config"
	"github.com/wfunc/cashflow-game/internal/repository"
	"github.com/wfunc/cashflow-game/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Services 服务注册表
type Services struct {
	Auth AuthService
	Room RoomService
	Game GameService

	JWTManager *utils.JWTManager
}

// NewServices 装配全部服务
// broadcaster 可以为nil（纯HTTP轮询模式，不推送状态）
func NewServices(db *gorm.DB, cfg *config.Config, broadcaster StateBroadcaster, log *zap.Logger) *Services {
	userRepo := repository.NewUserRepository(db)
	authRepo := repository.NewUserAuthRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	playerRepo := repository.NewRoomPlayerRepository(db)
	txRepo := repository.NewCashTransactionRepository(db)
	turnRepo := repository.NewTurnRecordRepository(db)

	jwtManager := utils.NewJWTManager(
		cfg.Security.JWT.Secret,
		time.Duration(cfg.Security.JWT.ExpireHours)*time.Hour,
		time.Duration(cfg.Security.JWT.RefreshHours)*time.Hour,
	)

	return &Services{
		Auth:       NewAuthService(db, userRepo, authRepo, jwtManager, log.Named("auth")),
		Room:       NewRoomService(db, roomRepo, playerRepo, userRepo, cfg.Game.MaxPlayers, log.Named("room")),
		Game:       NewGameService(roomRepo, playerRepo, txRepo, turnRepo, broadcaster, &cfg.Game, nil, log.Named("game")),
		JWTManager: jwtManager,
	}
}
