package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/cashflow-game/internal/middleware"
	"github.com/wfunc/cashflow-game/internal/service"
)

// RoomHandler 房间处理器
type RoomHandler struct {
	roomService service.RoomService
}

// NewRoomHandler 创建房间处理器
func NewRoomHandler(roomService service.RoomService) *RoomHandler {
	return &RoomHandler{roomService: roomService}
}

// CreateRoom 创建房间
// @Summary 创建房间
// @Tags Room
// @Security Bearer
// @Accept json
// @Produce json
// @Param request body service.CreateRoomRequest true "房间信息"
// @Success 200 {object} models.Room
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/rooms [post]
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req service.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	room, err := h.roomService.CreateRoom(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, room)
}

// ListRooms 列出可加入的房间
// @Summary 可加入房间列表
// @Tags Room
// @Security Bearer
// @Produce json
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} SuccessResponse
// @Router /api/v1/rooms [get]
func (h *RoomHandler) ListRooms(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	rooms, total, err := h.roomService.ListJoinable(c.Request.Context(), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "ok",
		Data: gin.H{
			"rooms": rooms,
			"total": total,
		},
	})
}

// GetRoom 查看房间详情
// @Summary 房间详情
// @Tags Room
// @Security Bearer
// @Produce json
// @Param id path int true "房间ID"
// @Success 200 {object} models.Room
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/rooms/{id} [get]
func (h *RoomHandler) GetRoom(c *gin.Context) {
	roomID, ok := parseRoomID(c)
	if !ok {
		return
	}

	room, err := h.roomService.GetRoom(c.Request.Context(), roomID)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Code:    "ROOM_NOT_FOUND",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, room)
}

// JoinRoom 加入房间
// @Summary 加入房间
// @Tags Room
// @Security Bearer
// @Produce json
// @Param id path int true "房间ID"
// @Success 200 {object} models.Room
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/rooms/{id}/join [post]
func (h *RoomHandler) JoinRoom(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	roomID, ok := parseRoomID(c)
	if !ok {
		return
	}

	room, err := h.roomService.JoinRoom(c.Request.Context(), roomID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, room)
}

// LeaveRoom 离开房间
// @Summary 离开房间
// @Tags Room
// @Security Bearer
// @Produce json
// @Param id path int true "房间ID"
// @Success 200 {object} SuccessResponse
// @Router /api/v1/rooms/{id}/leave [post]
func (h *RoomHandler) LeaveRoom(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	roomID, ok := parseRoomID(c)
	if !ok {
		return
	}

	if err := h.roomService.LeaveRoom(c.Request.Context(), roomID, userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "已离开房间"})
}

// SetReady 设置准备状态
// @Summary 准备/取消准备
// @Tags Room
// @Security Bearer
// @Accept json
// @Produce json
// @Param id path int true "房间ID"
// @Success 200 {object} SuccessResponse
// @Router /api/v1/rooms/{id}/ready [post]
func (h *RoomHandler) SetReady(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	roomID, ok := parseRoomID(c)
	if !ok {
		return
	}

	var req struct {
		Ready bool `json:"ready"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.roomService.SetReady(c.Request.Context(), roomID, userID, req.Ready); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "ok"})
}

// parseRoomID 解析路径里的房间ID
func parseRoomID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "INVALID_REQUEST",
			Message: "无效的房间ID",
		})
		return 0, false
	}
	return uint(id), true
}
