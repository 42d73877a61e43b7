package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/KeyIP-Chat/internal/chat"
	prommetrics "github.com/turtacn/KeyIP-Chat/internal/infrastructure/monitoring/prometheus"
)

const defaultSessionListLimit = 20

// SessionHandler serves the session management endpoints.
type SessionHandler struct {
	store   chat.Store
	metrics *prommetrics.Metrics
}

// NewSessionHandler constructs the handler.
func NewSessionHandler(store chat.Store, metrics *prommetrics.Metrics) *SessionHandler {
	return &SessionHandler{store: store, metrics: metrics}
}

// List handles GET /api/v1/sessions.
func (h *SessionHandler) List(c *gin.Context) {
	limit := defaultSessionListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondBadRequest(c, "limit must be a positive integer")
			return
		}
		limit = n
	}

	sessions, err := h.store.ListSessions(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

// History handles GET /api/v1/sessions/:id/history.
func (h *SessionHandler) History(c *gin.Context) {
	history, err := h.store.GetHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": history})
}

type renameRequest struct {
	Title string `json:"title" binding:"required"`
}

// Rename handles PATCH /api/v1/sessions/:id.
func (h *SessionHandler) Rename(c *gin.Context) {
	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Title) == "" {
		respondBadRequest(c, "title is required")
		return
	}

	if err := h.store.RenameSession(c.Request.Context(), c.Param("id"), req.Title); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"renamed": true})
}

// Delete handles DELETE /api/v1/sessions/:id.
func (h *SessionHandler) Delete(c *gin.Context) {
	deleted, err := h.store.DeleteSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// Describe handles GET /api/v1/sessions/:id/stats.
func (h *SessionHandler) Describe(c *gin.Context) {
	detail, err := h.store.DescribeSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// Stats handles GET /api/v1/sessions/stats.
func (h *SessionHandler) Stats(c *gin.Context) {
	stats, err := h.store.SessionStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.ActiveSessions.Set(float64(stats.ActiveSessions))
	}
	c.JSON(http.StatusOK, stats)
}
