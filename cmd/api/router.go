package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	authDelivery "github.com/navinavi029/Circld-sub003/internal/auth/delivery"
	chatDelivery "github.com/navinavi029/Circld-sub003/internal/chat/delivery"
	chatUsecase "github.com/navinavi029/Circld-sub003/internal/chat/usecase"
	"github.com/navinavi029/Circld-sub003/internal/notification"
	tradeDelivery "github.com/navinavi029/Circld-sub003/internal/trade/delivery"
	tradeUsecase "github.com/navinavi029/Circld-sub003/internal/trade/usecase"
	"github.com/navinavi029/Circld-sub003/pkg/config"
)

func SetupRoutes(r *gin.Engine, poolUc tradeUsecase.PoolUsecase, sessionUc tradeUsecase.SessionUsecase, syncUc tradeUsecase.SyncUsecase, chatUc chatUsecase.ChatUsecase, fcmTokens notification.FCMTokenRepository, cfg *config.Config) {
	tradeHandler := tradeDelivery.NewTradeHandler(poolUc, sessionUc, syncUc)
	chatHandler := chatDelivery.NewChatHandler(chatUc)

	auth := authDelivery.AuthMiddleware(cfg.JWTSecret)

	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Item pool (protected)
		api.GET("/pool", auth, tradeHandler.GetPool)

		// Swipe sessions (protected)
		sessions := api.Group("/sessions")
		sessions.Use(auth)
		{
			sessions.POST("", tradeHandler.CreateSession)
			sessions.GET("/restore", tradeHandler.RestoreSession)
			sessions.POST("/:id/swipes", tradeHandler.RecordSwipe)
			sessions.GET("/:id/swipes", tradeHandler.GetHistory)
			sessions.DELETE("/:id/swipes/:itemId", tradeHandler.RemoveSwipe)
			sessions.DELETE("/:id/swipes", tradeHandler.ClearHistory)
		}

		// Pending-swipe replay (protected)
		api.POST("/sync", auth, tradeHandler.Sync)

		// Conversations (protected)
		conversations := api.Group("/conversations")
		conversations.Use(auth)
		{
			conversations.POST("", chatHandler.CreateConversation)
			conversations.GET("", chatHandler.GetConversations)
			conversations.GET("/:id/messages", chatHandler.GetMessages)
			conversations.POST("/:id/messages", chatHandler.SendMessage)
			conversations.GET("/:id/stream", chatHandler.StreamMessages)
			conversations.PATCH("/:id/read", chatHandler.MarkAsRead)
		}

		// FCM routes (protected)
		if fcmTokens != nil {
			fcm := api.Group("/fcm")
			fcm.Use(auth)
			{
				fcm.POST("/register", RegisterFCMToken(fcmTokens))
				fcm.DELETE("/:token", UnregisterFCMToken(fcmTokens))
			}
		}
	}
}
