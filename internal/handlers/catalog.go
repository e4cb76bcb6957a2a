package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/siplanskills/backend/internal/logger"
	"github.com/siplanskills/backend/internal/services"
)

type CatalogHandler struct {
	log        *logger.Logger
	catalogSvc services.CatalogService
}

func NewCatalogHandler(log *logger.Logger, catalogSvc services.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		log:        log.With("handler", "CatalogHandler"),
		catalogSvc: catalogSvc,
	}
}

// GET /api/systems
func (h *CatalogHandler) ListSystems(c *gin.Context) {
	systems, err := h.catalogSvc.ListSystems(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"systems": systems})
}

// GET /api/systems/:id/products
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	systemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid system id"})
		return
	}
	products, err := h.catalogSvc.ListProductsBySystem(c.Request.Context(), systemID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"products": products})
}

// GET /api/products/:id/lessons
func (h *CatalogHandler) ListLessons(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}
	lessons, err := h.catalogSvc.ListLessonsByProduct(c.Request.Context(), productID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"lessons": lessons})
}
