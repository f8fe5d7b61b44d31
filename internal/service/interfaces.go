package service

import (
	"context"

	"github.com/wfunc/cashflow-game/internal/game"
	"github.com/wfunc/cashflow-game/internal/models"
	"github.com/wfunc/cashflow-game/internal/utils"
)

// AuthService 认证服务接口
type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error)
	ValidateToken(ctx context.Context, token string) (*utils.JWTClaims, error)
}

// RoomService 房间服务接口
type RoomService interface {
	CreateRoom(ctx context.Context, hostID uint, req *CreateRoomRequest) (*models.Room, error)
	JoinRoom(ctx context.Context, roomID, userID uint) (*models.Room, error)
	LeaveRoom(ctx context.Context, roomID, userID uint) error
	SetReady(ctx context.Context, roomID, userID uint, ready bool) error
	ListJoinable(ctx context.Context, page, pageSize int) ([]*models.Room, int64, error)
	GetRoom(ctx context.Context, roomID uint) (*models.Room, error)
}

// GameService 对局服务接口
// 权威回合引擎：所有状态变更都经过它，客户端只消费快照
type GameService interface {
	Start(ctx context.Context, roomID uint) (*game.Snapshot, error)
	State(ctx context.Context, roomID uint) (*game.Snapshot, error)
	Roll(ctx context.Context, roomID uint, userID string) (*game.Snapshot, error)
	Move(ctx context.Context, roomID uint, userID string) (*game.Snapshot, error)
	EndTurn(ctx context.Context, roomID uint, userID string) (*game.Snapshot, error)
	ChooseDeal(ctx context.Context, roomID uint, userID string, size game.DealSize) (*game.Snapshot, error)
	ResolveDeal(ctx context.Context, roomID uint, userID string, action game.DealAction, targetUserID string) (*game.Snapshot, error)
	TransferAsset(ctx context.Context, roomID uint, userID, assetID, targetUserID string) (*game.Snapshot, error)
	SellAsset(ctx context.Context, roomID uint, userID, assetID string) (*game.Snapshot, error)
}

// StateBroadcaster 状态广播接口
// 每次权威状态变更后把新快照推给订阅了该房间的连接
type StateBroadcaster interface {
	BroadcastState(roomID uint, snapshot *game.Snapshot)
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username        string `json:"username" binding:"required,min=3,max=20"`
	Password        string `json:"password" binding:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=Password"`
	Nickname        string `json:"nickname"`
	Avatar          string `json:"avatar"`
	IP              string `json:"-"` // 客户端IP，由handler设置
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	IP       string `json:"-"`
}

// AuthResponse 认证响应
type AuthResponse struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int64        `json:"expires_in"`
	TokenType    string       `json:"token_type"`
}

// CreateRoomRequest 创建房间请求
type CreateRoomRequest struct {
	Name       string `json:"name" binding:"required,max=100"`
	MaxPlayers int    `json:"max_players"`
}
