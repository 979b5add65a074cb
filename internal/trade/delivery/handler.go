package delivery

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/navinavi029/Circld-sub003/internal/trade/domain"
	"github.com/navinavi029/Circld-sub003/internal/trade/usecase"
	"github.com/navinavi029/Circld-sub003/pkg/errs"
	"github.com/navinavi029/Circld-sub003/pkg/geo"
)

// TradeHandler handles item pool, swipe session and sync HTTP requests
type TradeHandler struct {
	poolUsecase    usecase.PoolUsecase
	sessionUsecase usecase.SessionUsecase
	syncUsecase    usecase.SyncUsecase
}

// NewTradeHandler creates a new TradeHandler
func NewTradeHandler(poolUsecase usecase.PoolUsecase, sessionUsecase usecase.SessionUsecase, syncUsecase usecase.SyncUsecase) *TradeHandler {
	return &TradeHandler{
		poolUsecase:    poolUsecase,
		sessionUsecase: sessionUsecase,
		syncUsecase:    syncUsecase,
	}
}

// CreateSessionRequest represents the request body for opening a session
type CreateSessionRequest struct {
	AnchorItemID string `json:"anchor_item_id" binding:"required"`
}

// RecordSwipeRequest represents the request body for recording a swipe
type RecordSwipeRequest struct {
	ItemID    string `json:"item_id" binding:"required"`
	Direction string `json:"direction" binding:"required"`
}

// GetPool returns a filtered page of swipeable items
// GET /api/pool?limit=20&cursor=...&categories=a,b&conditions=good&max_distance_km=25&lat=..&lng=..
func (h *TradeHandler) GetPool(c *gin.Context) {
	userID := c.GetString("userID")

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	cursor := c.Query("cursor")

	filters := &domain.PoolFilters{
		Categories: c.QueryArray("categories"),
		Conditions: c.QueryArray("conditions"),
	}
	if maxDistStr := c.Query("max_distance_km"); maxDistStr != "" {
		if parsed, err := strconv.ParseFloat(maxDistStr, 64); err == nil && parsed > 0 {
			filters.MaxDistanceKm = parsed
		}
	}

	var location *geo.Point
	latStr, lngStr := c.Query("lat"), c.Query("lng")
	if latStr != "" && lngStr != "" {
		lat, latErr := strconv.ParseFloat(latStr, 64)
		lng, lngErr := strconv.ParseFloat(lngStr, 64)
		if latErr == nil && lngErr == nil {
			location = &geo.Point{Lat: lat, Lng: lng}
		}
	}

	var history []string
	if sessionID := c.Query("session_id"); sessionID != "" {
		records, err := h.sessionUsecase.GetSwipeHistory(c.Request.Context(), sessionID, userID)
		if err != nil {
			c.JSON(statusFromError(err), gin.H{"error": err.Error()})
			return
		}
		for _, record := range records {
			history = append(history, record.ItemID)
		}
	}

	result, err := h.poolUsecase.BuildItemPool(c.Request.Context(), userID, history, limit, cursor, filters, location)
	if err != nil {
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// CreateSession opens a new swipe session anchored on one of the
// caller's items
// POST /api/sessions
func (h *TradeHandler) CreateSession(c *gin.Context) {
	userID := c.GetString("userID")

	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "anchor_item_id is required"})
		return
	}

	session, err := h.sessionUsecase.CreateSwipeSession(c.Request.Context(), userID, req.AnchorItemID)
	if err != nil {
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, session)
}

// RecordSwipe records one swipe in a session
// POST /api/sessions/:id/swipes
func (h *TradeHandler) RecordSwipe(c *gin.Context) {
	userID := c.GetString("userID")
	sessionID := c.Param("id")

	var req RecordSwipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "item_id and direction are required"})
		return
	}

	outcome, err := h.sessionUsecase.RecordSwipe(c.Request.Context(), sessionID, userID, req.ItemID, domain.SwipeDirection(req.Direction))
	if err != nil {
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, outcome)
}

// RemoveSwipe undoes a single swipe
// DELETE /api/sessions/:id/swipes/:itemId
func (h *TradeHandler) RemoveSwipe(c *gin.Context) {
	userID := c.GetString("userID")
	sessionID := c.Param("id")
	itemID := c.Param("itemId")

	if err := h.sessionUsecase.RemoveSwipe(c.Request.Context(), sessionID, userID, itemID); err != nil {
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "swipe removed"})
}

// ClearHistory wipes every swipe in a session
// DELETE /api/sessions/:id/swipes
func (h *TradeHandler) ClearHistory(c *gin.Context) {
	userID := c.GetString("userID")
	sessionID := c.Param("id")

	if err := h.sessionUsecase.ClearHistory(c.Request.Context(), sessionID, userID); err != nil {
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "swipe history cleared"})
}

// GetHistory returns the session's swipes, falling back to the local
// mirror when the remote store is unreachable
// GET /api/sessions/:id/swipes
func (h *TradeHandler) GetHistory(c *gin.Context) {
	userID := c.GetString("userID")
	sessionID := c.Param("id")

	records, err := h.sessionUsecase.GetSwipeHistory(c.Request.Context(), sessionID, userID)
	if err != nil {
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"swipes": records})
}

// RestoreSession returns the locally mirrored session state, if any
// GET /api/sessions/restore
func (h *TradeHandler) RestoreSession(c *gin.Context) {
	userID := c.GetString("userID")

	state := h.sessionUsecase.RestoreSessionFromCache(userID)
	if state == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no cached session"})
		return
	}

	c.JSON(http.StatusOK, state)
}

// Sync replays the caller's pending swipes against the remote store.
// The client calls this when connectivity returns.
// POST /api/sync
func (h *TradeHandler) Sync(c *gin.Context) {
	userID := c.GetString("userID")

	synced, err := h.syncUsecase.SyncPendingSwipes(c.Request.Context(), userID)
	if err != nil {
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"synced": synced})
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
