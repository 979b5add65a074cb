package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/navinavi029/Circld-sub003/internal/notification"
)

// RegisterFCMTokenRequest represents the request body for registering a device token
type RegisterFCMTokenRequest struct {
	Token      string `json:"token" binding:"required"`
	DeviceInfo string `json:"device_info"`
}

// RegisterFCMToken stores a device token for the authenticated user
// POST /api/fcm/register
func RegisterFCMToken(tokens notification.FCMTokenRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userID")

		var req RegisterFCMTokenRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "token is required"})
			return
		}

		if err := tokens.SaveToken(c.Request.Context(), userID, req.Token, req.DeviceInfo); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "token registered"})
	}
}

// UnregisterFCMToken removes a device token
// DELETE /api/fcm/:token
func UnregisterFCMToken(tokens notification.FCMTokenRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")
		if err := tokens.DeleteToken(c.Request.Context(), token); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "token unregistered"})
	}
}
