package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"campus_chat/internal/api/handlers"
	"campus_chat/internal/middleware"
	"campus_chat/internal/models"
	"campus_chat/internal/service"
)

// NewRouter 建立包含日誌與 panic 恢復中間件的 Gin 路由器
func NewRouter(services *service.Services, allowedOrigins []string, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLogger(logger.Named("http")), gin.Recovery())
	SetupRoutes(r, services, allowedOrigins, logger)
	return r
}

func SetupRoutes(r *gin.Engine, services *service.Services, allowedOrigins []string, logger *zap.Logger) {
	// 初始化 handlers
	authHandler := handlers.NewAuthHandler(services.Account)
	chatHandler := handlers.NewChatHandler(services.Chat)
	presenceHandler := handlers.NewPresenceHandler(services.Presence)
	wsHandler := handlers.NewWebSocketHandler(services.WebSocketManager, allowedOrigins, logger.Named("websocket"))

	// API 路由群組
	api := r.Group("/api")

	// 處理 404 錯誤
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "找不到該路徑",
		})
	})

	// 公開路由
	{
		api.POST("/login", authHandler.Login)
		api.POST("/admin/signup", authHandler.AdminSignup)

		// 基本的健康檢查
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status": "ok",
			})
		})
	}

	// 需要驗證的路由
	authorized := api.Group("/")
	authorized.Use(middleware.AuthMiddleware(services.Tokens))
	{
		// WebSocket 連接點
		authorized.GET("/ws", wsHandler.HandleWebSocket)

		// 聊天，對方角色由呼叫者角色決定
		chat := authorized.Group("/chat", middleware.RequireRole(models.RoleTeacher, models.RoleStudent))
		{
			chat.GET("/:peerId", chatHandler.GetHistory)
			chat.POST("/:peerId", chatHandler.SendMessage)
		}

		// 與舊版入口網站相容的角色路徑
		teacher := authorized.Group("/teacher", middleware.RequireRole(models.RoleTeacher))
		{
			teacher.GET("/chat/:peerId", chatHandler.GetHistory)
			teacher.POST("/chat/:peerId", chatHandler.SendMessage)
		}
		student := authorized.Group("/student", middleware.RequireRole(models.RoleStudent))
		{
			student.GET("/chat/:peerId", chatHandler.GetHistory)
			student.POST("/chat/:peerId", chatHandler.SendMessage)
		}

		// 管理員
		admin := authorized.Group("/admin", middleware.RequireRole(models.RoleAdmin))
		{
			admin.POST("/accounts", authHandler.CreateAccount)
			admin.GET("/presence", presenceHandler.ListOnline)
		}
	}
}
