package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/KeyIP-Chat/internal/chat"
	prommetrics "github.com/turtacn/KeyIP-Chat/internal/infrastructure/monitoring/prometheus"
)

// ChatEngine is the one entry point the chat handler needs.
type ChatEngine interface {
	Ask(ctx context.Context, query, sessionID string) (chat.Result, error)
}

// ChatHandler serves the chat endpoint.
type ChatHandler struct {
	engine  ChatEngine
	metrics *prommetrics.Metrics
}

// NewChatHandler constructs the handler.
func NewChatHandler(engine ChatEngine, metrics *prommetrics.Metrics) *ChatHandler {
	return &ChatHandler{engine: engine, metrics: metrics}
}

type askRequest struct {
	Query     string `json:"query" binding:"required"`
	SessionID string `json:"session_id"`
}

// Ask handles POST /api/v1/chat.
func (h *ChatHandler) Ask(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "query is required")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		respondBadRequest(c, "query must not be blank")
		return
	}

	start := time.Now()
	res, err := h.engine.Ask(c.Request.Context(), req.Query, req.SessionID)
	if err != nil {
		respondError(c, err)
		return
	}

	if h.metrics != nil {
		h.metrics.ChatTurnDuration.Observe(time.Since(start).Seconds())
		outcome := "ok"
		if res.Answer == chat.FailureAnswer {
			outcome = "failed"
			h.metrics.ChatFailedTurns.Inc()
		}
		h.metrics.ChatTurnsTotal.WithLabelValues(outcome).Inc()
		h.metrics.RetrievedCandidates.Observe(float64(res.ContextCount))
	}

	c.JSON(http.StatusOK, res)
}
