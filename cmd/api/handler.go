package api

import (
	"github.com/gin-gonic/gin"

	chatUsecase "github.com/navinavi029/Circld-sub003/internal/chat/usecase"
	"github.com/navinavi029/Circld-sub003/internal/notification"
	tradeUsecase "github.com/navinavi029/Circld-sub003/internal/trade/usecase"
	"github.com/navinavi029/Circld-sub003/pkg/config"
)

type Handler struct {
	poolUsecase    tradeUsecase.PoolUsecase
	sessionUsecase tradeUsecase.SessionUsecase
	syncUsecase    tradeUsecase.SyncUsecase
	chatUsecase    chatUsecase.ChatUsecase
	fcmTokens      notification.FCMTokenRepository
	config         *config.Config
}

func NewHandler(poolUc tradeUsecase.PoolUsecase, sessionUc tradeUsecase.SessionUsecase, syncUc tradeUsecase.SyncUsecase, chatUc chatUsecase.ChatUsecase, fcmTokens notification.FCMTokenRepository, cfg *config.Config) *Handler {
	return &Handler{
		poolUsecase:    poolUc,
		sessionUsecase: sessionUc,
		syncUsecase:    syncUc,
		chatUsecase:    chatUc,
		fcmTokens:      fcmTokens,
		config:         cfg,
	}
}

func (h *Handler) Start(addr string) error {
	r := gin.Default()
	gin.SetMode(gin.ReleaseMode)

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Setup routes
	SetupRoutes(r, h.poolUsecase, h.sessionUsecase, h.syncUsecase, h.chatUsecase, h.fcmTokens, h.config)

	return r.Run(addr)
}
