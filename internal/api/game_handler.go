package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/cashflow-game/internal/game"
	"github.com/wfunc/cashflow-game/internal/middleware"
	"github.com/wfunc/cashflow-game/internal/service"
)

// GameHandler 对局处理器
// 所有写操作都返回最新快照，客户端以快照为准刷新本地状态
type GameHandler struct {
	gameService service.GameService
}

// NewGameHandler 创建对局处理器
func NewGameHandler(gameService service.GameService) *GameHandler {
	return &GameHandler{gameService: gameService}
}

// Start 开始对局
// @Summary 开始对局
// @Tags Game
// @Security Bearer
// @Produce json
// @Param id path int true "房间ID"
// @Success 200 {object} game.Snapshot
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/rooms/{id}/start [post]
func (h *GameHandler) Start(c *gin.Context) {
	roomID, ok := parseRoomID(c)
	if !ok {
		return
	}

	snap, err := h.gameService.Start(c.Request.Context(), roomID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, snap)
}

// State 获取对局快照
// 带version参数时做陈旧快照保护：服务端没有更新的版本就返回304
// @Summary 对局快照
// @Tags Game
// @Security Bearer
// @Produce json
// @Param id path int true "房间ID"
// @Param version query int false "客户端已持有的快照版本"
// @Success 200 {object} game.Snapshot
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/rooms/{id}/state [get]
func (h *GameHandler) State(c *gin.Context) {
	roomID, ok := parseRoomID(c)
	if !ok {
		return
	}

	snap, err := h.gameService.State(c.Request.Context(), roomID)
	if err != nil {
		respondError(c, err)
		return
	}

	if raw := c.Query("version"); raw != "" {
		if version, err := strconv.ParseInt(raw, 10, 64); err == nil && snap.Version <= version {
			c.Status(http.StatusNotModified)
			return
		}
	}

	c.JSON(http.StatusOK, snap)
}

// Roll 掷骰
// @Summary 掷骰
// @Tags Game
// @Security Bearer
// @Produce json
// @Param id path int true "房间ID"
// @Success 200 {object} game.Snapshot
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/rooms/{id}/roll [post]
func (h *GameHandler) Roll(c *gin.Context) {
	h.mutate(c, func(roomID uint, userID string) (*game.Snapshot, error) {
		return h.gameService.Roll(c.Request.Context(), roomID, userID)
	})
}

// Move 按掷骰结果移动
// @Summary 移动
// @Tags Game
// @Security Bearer
// @Produce json
// @Param id path int true "房间ID"
// @Success 200 {object} game.Snapshot
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/rooms/{id}/move [post]
func (h *GameHandler) Move(c *gin.Context) {
	h.mutate(c, func(roomID uint, userID string) (*game.Snapshot, error) {
		return h.gameService.Move(c.Request.Context(), roomID, userID)
	})
}

// EndTurn 结束回合
// @Summary 结束回合
// @Tags Game
// @Security Bearer
// @Produce json
// @Param id path int true "房间ID"
// @Success 200 {object} game.Snapshot
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/rooms/{id}/end-turn [post]
func (h *GameHandler) EndTurn(c *gin.Context) {
	h.mutate(c, func(roomID uint, userID string) (*game.Snapshot, error) {
		return h.gameService.EndTurn(c.Request.Context(), roomID, userID)
	})
}

// ChooseDeal 选择交易规模
// @Summary 选择交易规模
// @Tags Game
// @Security Bearer
// @Accept json
// @Produce json
// @Param id path int true "房间ID"
// @Success 200 {object} game.Snapshot
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/rooms/{id}/deals/choose [post]
func (h *GameHandler) ChooseDeal(c *gin.Context) {
	var req struct {
		Size game.DealSize `json:"size" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	h.mutate(c, func(roomID uint, userID string) (*game.Snapshot, error) {
		return h.gameService.ChooseDeal(c.Request.Context(), roomID, userID, req.Size)
	})
}

// ResolveDeal 处理交易
// @Summary 处理交易（购买/放弃/转让/信贷）
// @Tags Game
// @Security Bearer
// @Accept json
// @Produce json
// @Param id path int true "房间ID"
// @Success 200 {object} game.Snapshot
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/rooms/{id}/deals/resolve [post]
func (h *GameHandler) ResolveDeal(c *gin.Context) {
	var req struct {
		Action       game.DealAction `json:"action" binding:"required"`
		TargetUserID string          `json:"target_user_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	h.mutate(c, func(roomID uint, userID string) (*game.Snapshot, error) {
		return h.gameService.ResolveDeal(c.Request.Context(), roomID, userID, req.Action, req.TargetUserID)
	})
}

// TransferAsset 转让资产
// @Summary 转让资产
// @Tags Game
// @Security Bearer
// @Accept json
// @Produce json
// @Param id path int true "房间ID"
// @Success 200 {object} game.Snapshot
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/rooms/{id}/assets/transfer [post]
func (h *GameHandler) TransferAsset(c *gin.Context) {
	var req struct {
		AssetID      string `json:"asset_id" binding:"required"`
		TargetUserID string `json:"target_user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	h.mutate(c, func(roomID uint, userID string) (*game.Snapshot, error) {
		return h.gameService.TransferAsset(c.Request.Context(), roomID, userID, req.AssetID, req.TargetUserID)
	})
}

// SellAsset 出售资产
// @Summary 出售资产
// @Tags Game
// @Security Bearer
// @Accept json
// @Produce json
// @Param id path int true "房间ID"
// @Success 200 {object} game.Snapshot
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/rooms/{id}/assets/sell [post]
func (h *GameHandler) SellAsset(c *gin.Context) {
	var req struct {
		AssetID string `json:"asset_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	h.mutate(c, func(roomID uint, userID string) (*game.Snapshot, error) {
		return h.gameService.SellAsset(c.Request.Context(), roomID, userID, req.AssetID)
	})
}

// mutate 对局写操作的公共骨架：取身份、执行、回快照
func (h *GameHandler) mutate(c *gin.Context, fn func(roomID uint, userID string) (*game.Snapshot, error)) {
	roomID, ok := parseRoomID(c)
	if !ok {
		return
	}
	uid, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Code:    "UNAUTHORIZED",
			Message: "未登录",
		})
		return
	}

	snap, err := fn(roomID, strconv.FormatUint(uint64(uid), 10))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, snap)
}
