package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Hub WebSocket连接管理中心
// 按房间分组推送对局快照
type Hub struct {
	clients   map[string]*Client
	clientsMu sync.RWMutex

	// 房间ID到客户端的映射
	roomClients map[uint][]*Client
	roomMu      sync.RWMutex

	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client

	logger *zap.Logger
}

// Message WebSocket消息
type Message struct {
	Type      string          `json:"type"`
	RoomID    uint            `json:"room_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// 消息类型
const (
	MessageTypeConnected    = "connected"
	MessageTypeDisconnected = "disconnected"
	MessageTypePing         = "ping"
	MessageTypePong         = "pong"
	MessageTypeError        = "error"

	// 对局消息
	MessageTypeGameState = "game_state"
)

// NewHub 创建Hub
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:     make(map[string]*Client),
		roomClients: make(map[uint][]*Client),
		broadcast:   make(chan *Message, 256),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		logger:      logger,
	}
}

// Run 运行Hub
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

// BroadcastToRoom 向指定房间的所有连接推送消息
func (h *Hub) BroadcastToRoom(roomID uint, msgType string, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		h.logger.Error("序列化推送消息失败",
			zap.Uint("room_id", roomID),
			zap.Error(err))
		return
	}

	select {
	case h.broadcast <- &Message{
		Type:      msgType,
		RoomID:    roomID,
		Data:      payload,
		Timestamp: time.Now().Unix(),
	}:
	default:
		h.logger.Warn("广播通道已满，丢弃消息", zap.Uint("room_id", roomID))
	}
}

// registerClient 注册客户端
func (h *Hub) registerClient(client *Client) {
	h.clientsMu.Lock()
	h.clients[client.ID] = client
	h.clientsMu.Unlock()

	h.roomMu.Lock()
	h.roomClients[client.RoomID] = append(h.roomClients[client.RoomID], client)
	h.roomMu.Unlock()

	h.logger.Info("WebSocket客户端连接",
		zap.String("client_id", client.ID),
		zap.Uint("user_id", client.UserID),
		zap.Uint("room_id", client.RoomID))

	client.sendMessage(&Message{
		Type:      MessageTypeConnected,
		RoomID:    client.RoomID,
		Timestamp: time.Now().Unix(),
	})
}

// unregisterClient 注销客户端
func (h *Hub) unregisterClient(client *Client) {
	h.clientsMu.Lock()
	if _, ok := h.clients[client.ID]; ok {
		delete(h.clients, client.ID)
		close(client.Send)
	}
	h.clientsMu.Unlock()

	h.roomMu.Lock()
	clients := h.roomClients[client.RoomID]
	for i, c := range clients {
		if c.ID == client.ID {
			h.roomClients[client.RoomID] = append(clients[:i], clients[i+1:]...)
			break
		}
	}
	if len(h.roomClients[client.RoomID]) == 0 {
		delete(h.roomClients, client.RoomID)
	}
	h.roomMu.Unlock()

	h.logger.Info("WebSocket客户端断开",
		zap.String("client_id", client.ID),
		zap.Uint("room_id", client.RoomID))
}

// broadcastMessage 投递消息到目标房间
func (h *Hub) broadcastMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("序列化消息失败", zap.Error(err))
		return
	}

	h.roomMu.RLock()
	clients := append([]*Client(nil), h.roomClients[message.RoomID]...)
	h.roomMu.RUnlock()

	for _, client := range clients {
		select {
		case client.Send <- data:
		default:
			// 发送缓冲区满，视为死连接
			h.logger.Warn("客户端发送缓冲区已满，断开连接",
				zap.String("client_id", client.ID))
			go func(c *Client) { h.unregister <- c }(client)
		}
	}
}

// RoomClientCount 房间当前连接数
func (h *Hub) RoomClientCount(roomID uint) int {
	h.roomMu.RLock()
	defer h.roomMu.RUnlock()
	return len(h.roomClients[roomID])
}
