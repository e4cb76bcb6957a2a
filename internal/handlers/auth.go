package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/siplanskills/backend/internal/logger"
	"github.com/siplanskills/backend/internal/services"
	"github.com/siplanskills/backend/internal/types"
)

type AuthHandler struct {
	log     *logger.Logger
	authSvc services.AuthService
}

func NewAuthHandler(log *logger.Logger, authSvc services.AuthService) *AuthHandler {
	return &AuthHandler{
		log:     log.With("handler", "AuthHandler"),
		authSvc: authSvc,
	}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Type     string `json:"type"`
}

// POST /api/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	account := &types.Account{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Type:     req.Type,
	}
	if account.Type == "" {
		account.Type = types.AccountTypeCartorio
	}
	if err := h.authSvc.RegisterAccount(c.Request.Context(), account); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"id": account.ID, "email": account.Email})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// POST /api/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	accessToken, refreshToken, err := h.authSvc.LoginAccount(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"access_token": accessToken, "refresh_token": refreshToken})
}

// POST /api/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	accessToken, refreshToken, err := h.authSvc.RefreshAccount(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"access_token": accessToken, "refresh_token": refreshToken})
}

// POST /api/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authSvc.LogoutAccount(c.Request.Context()); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}
