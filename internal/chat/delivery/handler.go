package delivery

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/navinavi029/Circld-sub003/internal/chat/domain"
	"github.com/navinavi029/Circld-sub003/internal/chat/usecase"
	"github.com/navinavi029/Circld-sub003/pkg/errs"
)

// ChatHandler handles conversation and message HTTP requests
type ChatHandler struct {
	chatUsecase usecase.ChatUsecase
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(chatUsecase usecase.ChatUsecase) *ChatHandler {
	return &ChatHandler{
		chatUsecase: chatUsecase,
	}
}

// CreateConversationRequest represents the request body for opening a conversation
type CreateConversationRequest struct {
	OfferID string `json:"offer_id" binding:"required"`
}

// SendMessageRequest represents the request body for sending a message
type SendMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

// CreateConversation opens (or returns) the conversation for an
// accepted trade offer
// POST /api/conversations
func (h *ChatHandler) CreateConversation(c *gin.Context) {
	userID := c.GetString("userID")

	var req CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "offer_id is required"})
		return
	}

	conv, err := h.chatUsecase.CreateConversation(c.Request.Context(), req.OfferID, userID)
	if err != nil {
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, conv)
}

// GetConversations lists the caller's conversations, enriched for display
// GET /api/conversations
func (h *ChatHandler) GetConversations(c *gin.Context) {
	userID := c.GetString("userID")

	conversations, err := h.chatUsecase.GetUserConversationsWithDetails(c.Request.Context(), userID)
	if err != nil {
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversations": conversations})
}

// GetMessages returns the newest messages of a conversation
// GET /api/conversations/:id/messages?limit=50
func (h *ChatHandler) GetMessages(c *gin.Context) {
	userID := c.GetString("userID")
	conversationID := c.Param("id")

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	messages, err := h.chatUsecase.GetMessages(c.Request.Context(), conversationID, userID, limit)
	if err != nil {
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// SendMessage appends a message to a conversation
// POST /api/conversations/:id/messages
func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID := c.GetString("userID")
	conversationID := c.Param("id")

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	msg, err := h.chatUsecase.SendMessage(c.Request.Context(), conversationID, userID, req.Text)
	if err != nil {
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, msg)
}

// MarkAsRead marks every message of a conversation read for the caller
// PATCH /api/conversations/:id/read
func (h *ChatHandler) MarkAsRead(c *gin.Context) {
	userID := c.GetString("userID")
	conversationID := c.Param("id")

	if err := h.chatUsecase.MarkConversationAsRead(c.Request.Context(), conversationID, userID); err != nil {
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "conversation marked as read"})
}

// StreamMessages serves the live message channel of a conversation as
// server-sent events. Each update carries the conversation's current
// message list; the subscription is torn down when the client
// disconnects.
// GET /api/conversations/:id/stream
func (h *ChatHandler) StreamMessages(c *gin.Context) {
	userID := c.GetString("userID")
	conversationID := c.Param("id")

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	updates := make(chan []*domain.Message, 8)
	unsubscribe := h.chatUsecase.SubscribeToMessages(conversationID, userID, func(messages []*domain.Message) {
		select {
		case updates <- messages:
		default:
			// a slow client skips intermediate snapshots; the next update
			// carries the full message list again
		}
	})
	defer unsubscribe()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case messages := <-updates:
			data, err := json.Marshal(messages)
			if err != nil {
				continue
			}
			fmt.Fprintf(c.Writer, "data: %s\n\n", data)
			c.Writer.Flush()
		}
	}
}

func statusFromError(err error) int {
	switch errs.KindOf(err) {
	case errs.InvalidArgument:
		return http.StatusBadRequest
	case errs.NotFound:
		return http.StatusNotFound
	case errs.Unauthorized:
		return http.StatusForbidden
	case errs.RateLimited:
		return http.StatusTooManyRequests
	case errs.Offline:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
