package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/siplanskills/backend/internal/apierr"
	"github.com/siplanskills/backend/internal/logger"
	"github.com/siplanskills/backend/internal/requestdata"
	"github.com/siplanskills/backend/internal/services"
)

type LessonHandler struct {
	log         *logger.Logger
	gateSvc     services.LessonGateService
	progressSvc services.ProgressService
}

func NewLessonHandler(log *logger.Logger, gateSvc services.LessonGateService, progressSvc services.ProgressService) *LessonHandler {
	return &LessonHandler{
		log:         log.With("handler", "LessonHandler"),
		gateSvc:     gateSvc,
		progressSvc: progressSvc,
	}
}

type markProgressRequest struct {
	LessonID       uuid.UUID `json:"lesson_id" binding:"required"`
	WatchedSeconds int       `json:"watched_seconds"`
	Complete       bool      `json:"complete"`
}

// POST /api/lessons/progress
// The account id always comes from the authenticated context, never
// the request body.
func (h *LessonHandler) MarkProgress(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.AccountID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req markProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.gateSvc.RecordProgress(c.Request.Context(), rd.AccountID, req.LessonID, req.WatchedSeconds, req.Complete)
	if err != nil {
		if apierr.HasCode(err, apierr.CodeGateNotSatisfied) {
			c.JSON(apierr.StatusOf(err), gin.H{"success": false, "message": err.Error()})
			return
		}
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true, "message": "progress recorded", "record": record})
}

// GET /api/products/:id/progress
func (h *LessonHandler) ProductProgress(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.AccountID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}
	progress, err := h.progressSvc.ProductProgress(c.Request.Context(), rd.AccountID, productID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"progress": progress})
}
