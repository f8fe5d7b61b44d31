package websocket

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/wfunc/cashflow-game/internal/game"
	"github.com/wfunc/cashflow-game/internal/middleware"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// 跨域由网关控制
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler WebSocket接入层
// 实现service.StateBroadcaster：对局每次变更把快照推给房间内所有连接
type Handler struct {
	hub    *Hub
	logger *zap.Logger
}

// NewHandler 创建WebSocket处理器
func NewHandler(hub *Hub, logger *zap.Logger) *Handler {
	return &Handler{hub: hub, logger: logger}
}

// ServeRoom 建立房间状态推送连接
// GET /ws/rooms/:id?token=xxx
func (h *Handler) ServeRoom(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "未登录"})
		return
	}

	roomID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "无效的房间ID"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("WebSocket升级失败",
			zap.Uint("user_id", userID),
			zap.Error(err))
		return
	}

	client := NewClient(h.hub, conn, userID, uint(roomID))
	h.hub.register <- client

	go client.WritePump()
	go client.ReadPump()
}

// BroadcastState 推送对局快照到房间
func (h *Handler) BroadcastState(roomID uint, snapshot *game.Snapshot) {
	h.hub.BroadcastToRoom(roomID, MessageTypeGameState, snapshot)
}
