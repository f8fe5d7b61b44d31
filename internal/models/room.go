package models

import (
	"time"

	"gorm.io/gorm"
)

// 房间状态
const (
	RoomStatusWaiting  = "waiting"  // 等待玩家加入
	RoomStatusPlaying  = "playing"  // 对局进行中
	RoomStatusFinished = "finished" // 已结束
)

// Room 游戏房间表
// 对局运行态由服务层内存持有，GameState 列保存最近一次快照用于恢复
type Room struct {
	BaseModel
	RoomNumber     string     `gorm:"uniqueIndex;size:50;not null" json:"room_number"`
	Name           string     `gorm:"size:100" json:"name"`
	Status         string     `gorm:"size:20;default:'waiting';index" json:"status"`
	HostID         uint       `gorm:"not null;index" json:"host_id"`
	MaxPlayers     int        `gorm:"default:8" json:"max_players"`
	CurrentPlayers int        `gorm:"default:0" json:"current_players"`
	StateVersion   int64      `gorm:"default:0" json:"state_version"` // 快照版本号，单调递增
	GameState      string     `gorm:"type:text" json:"-"`             // JSON格式的对局快照
	StartedAt      *time.Time `json:"started_at,omitempty"`
	FinishedAt     *time.Time `json:"finished_at,omitempty"`
	WinnerID       uint       `json:"winner_id,omitempty"`

	// 关联
	Players []RoomPlayer `gorm:"foreignKey:RoomID" json:"players,omitempty"`
}

// RoomPlayer 房间座位表
type RoomPlayer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RoomID    uint      `gorm:"not null;index:idx_room_user,unique" json:"room_id"`
	UserID    uint      `gorm:"not null;index:idx_room_user,unique" json:"user_id"`
	SeatIndex int       `gorm:"not null" json:"seat_index"`
	IsReady   bool      `gorm:"default:false" json:"is_ready"`
	JoinedAt  time.Time `json:"joined_at"`
	LeftAt    *time.Time `json:"left_at,omitempty"`

	// 关联（查询时使用 Preload("User") 加载用户信息）
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName 指定Room表名
func (Room) TableName() string {
	return "rooms"
}

// TableName 指定RoomPlayer表名
func (RoomPlayer) TableName() string {
	return "room_players"
}

// BeforeCreate 创建前的钩子
func (r *Room) BeforeCreate(tx *gorm.DB) error {
	if r.Status == "" {
		r.Status = RoomStatusWaiting
	}
	if r.MaxPlayers <= 0 {
		r.MaxPlayers = 8
	}
	return nil
}

// IsJoinable 检查是否可以加入
func (r *Room) IsJoinable() bool {
	return r.Status == RoomStatusWaiting && r.CurrentPlayers < r.MaxPlayers
}

// IsPlaying 检查对局是否进行中
func (r *Room) IsPlaying() bool {
	return r.Status == RoomStatusPlaying
}
