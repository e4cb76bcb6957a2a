package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/siplanskills/backend/internal/logger"
	"github.com/siplanskills/backend/internal/requestdata"
	"github.com/siplanskills/backend/internal/services"
)

type CertificationHandler struct {
	log     *logger.Logger
	certSvc services.CertificationService
}

func NewCertificationHandler(log *logger.Logger, certSvc services.CertificationService) *CertificationHandler {
	return &CertificationHandler{
		log:     log.With("handler", "CertificationHandler"),
		certSvc: certSvc,
	}
}

// GET /api/tracks/:id/certification
func (h *CertificationHandler) GetCertification(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.AccountID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	trackID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid track id"})
		return
	}
	state, err := h.certSvc.ComputeCertification(c.Request.Context(), rd.AccountID, trackID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"certification": state})
}
