package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/cashflow-game/internal/middleware"
	"github.com/wfunc/cashflow-game/internal/service"
	"github.com/wfunc/cashflow-game/internal/websocket"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Router API路由器
type Router struct {
	engine         *gin.Engine
	db             *gorm.DB
	services       *service.Services
	authHandler    *AuthHandler
	roomHandler    *RoomHandler
	gameHandler    *GameHandler
	wsHandler      *websocket.Handler
	authMiddleware *middleware.AuthMiddleware
	log            *zap.Logger
}

// NewRouter 创建路由器
func NewRouter(db *gorm.DB, services *service.Services, wsHandler *websocket.Handler, log *zap.Logger) *Router {
	engine := gin.New()

	// 全局中间件
	engine.Use(gin.Recovery())
	engine.Use(gin.Logger())

	router := &Router{
		engine:         engine,
		db:             db,
		services:       services,
		authHandler:    NewAuthHandler(services.Auth),
		roomHandler:    NewRoomHandler(services.Room),
		gameHandler:    NewGameHandler(services.Game),
		wsHandler:      wsHandler,
		authMiddleware: middleware.NewAuthMiddleware(services.JWTManager),
		log:            log,
	}

	router.setupRoutes()
	return router
}

// setupRoutes 设置路由
func (r *Router) setupRoutes() {
	// 健康检查
	r.engine.GET("/health", r.healthCheck)

	// Swagger文档（仅 -tags swagger 构建时启用）
	registerSwaggerRoutes(r.engine)

	v1 := r.engine.Group("/api/v1")
	{
		// 认证相关路由（不需要认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authHandler.Register)
			auth.POST("/login", r.authHandler.Login)
			auth.POST("/refresh", r.authHandler.RefreshToken)

			authRequired := auth.Group("")
			authRequired.Use(r.authMiddleware.RequireAuth())
			{
				authRequired.GET("/profile", r.authHandler.GetProfile)
			}
		}

		// 房间与对局路由（需要认证）
		rooms := v1.Group("/rooms")
		rooms.Use(r.authMiddleware.RequireAuth())
		{
			rooms.POST("", r.roomHandler.CreateRoom)
			rooms.GET("", r.roomHandler.ListRooms)
			rooms.GET("/:id", r.roomHandler.GetRoom)
			rooms.POST("/:id/join", r.roomHandler.JoinRoom)
			rooms.POST("/:id/leave", r.roomHandler.LeaveRoom)
			rooms.POST("/:id/ready", r.roomHandler.SetReady)

			rooms.POST("/:id/start", r.gameHandler.Start)
			rooms.GET("/:id/state", r.gameHandler.State)
			rooms.POST("/:id/roll", r.gameHandler.Roll)
			rooms.POST("/:id/move", r.gameHandler.Move)
			rooms.POST("/:id/end-turn", r.gameHandler.EndTurn)
			rooms.POST("/:id/deals/choose", r.gameHandler.ChooseDeal)
			rooms.POST("/:id/deals/resolve", r.gameHandler.ResolveDeal)
			rooms.POST("/:id/assets/transfer", r.gameHandler.TransferAsset)
			rooms.POST("/:id/assets/sell", r.gameHandler.SellAsset)
		}
	}

	// WebSocket状态推送（握手用query token认证）
	if r.wsHandler != nil {
		ws := r.engine.Group("/ws")
		ws.Use(r.authMiddleware.RequireAuth())
		{
			ws.GET("/rooms/:id", r.wsHandler.ServeRoom)
		}
	}
}

// healthCheck 健康检查
func (r *Router) healthCheck(c *gin.Context) {
	sqlDB, err := r.db.DB()
	dbStatus := "ok"
	if err != nil || sqlDB.Ping() != nil {
		dbStatus = "error"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"database": dbStatus,
		"time":     time.Now().Format(time.RFC3339),
	})
}

// Engine 返回底层Gin引擎
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
