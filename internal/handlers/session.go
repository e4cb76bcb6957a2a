package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	redisclient "github.com/siplanskills/backend/internal/clients/redis"
	"github.com/siplanskills/backend/internal/logger"
	"github.com/siplanskills/backend/internal/requestdata"
	"github.com/siplanskills/backend/internal/services"
	"github.com/siplanskills/backend/internal/sse"
)

type SessionHandler struct {
	log          *logger.Logger
	heartbeatSvc services.HeartbeatService
	refreshBus   redisclient.RefreshBus
	hub          *sse.Hub
}

func NewSessionHandler(log *logger.Logger, heartbeatSvc services.HeartbeatService, refreshBus redisclient.RefreshBus, hub *sse.Hub) *SessionHandler {
	return &SessionHandler{
		log:          log.With("handler", "SessionHandler"),
		heartbeatSvc: heartbeatSvc,
		refreshBus:   refreshBus,
		hub:          hub,
	}
}

// POST /api/session/heartbeat
func (h *SessionHandler) Heartbeat(c *gin.Context) {
	if err := h.heartbeatSvc.Touch(c.Request.Context()); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}

// GET /api/progress/generation
// Aggregate consumers poll this and re-fetch when the value changes.
func (h *SessionHandler) ProgressGeneration(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.AccountID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	gen, err := h.refreshBus.Generation(c.Request.Context(), rd.AccountID.String())
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"generation": gen})
}

// GET /api/progress/events
// Server-sent stream of refresh-generation bumps for the account, fed
// by the redis forwarder. EventSource clients cannot set headers, so
// these connections authenticate with the ?token= query parameter.
func (h *SessionHandler) ProgressEvents(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.AccountID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	events, cancel := h.hub.Subscribe(rd.AccountID.String())
	defer cancel()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	// The current generation opens the stream so clients reconnecting
	// after a dropped connection catch up immediately.
	if gen, err := h.refreshBus.Generation(c.Request.Context(), rd.AccountID.String()); err == nil {
		c.SSEvent("progress", gin.H{"generation": gen})
		c.Writer.Flush()
	} else {
		h.log.Warn("Could not read refresh generation for event stream", "error", err)
	}

	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent("progress", gin.H{"generation": ev.Generation})
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
