package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"almacen-front/internal/backend"
	"almacen-front/internal/logger"
	"almacen-front/internal/session"
	"almacen-front/pkg/utils"
)

type AuthHandler struct {
	api   *backend.Client
	store *session.Store
}

func NewAuthHandler(api *backend.Client, store *session.Store) *AuthHandler {
	return &AuthHandler{api: api, store: store}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/login", h.Login)
	router.POST("/logout", h.Logout)
	router.GET("/session", h.Session)
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login forwards credentials to the backend and keeps only the returned
// bearer token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "username and password are required")
		return
	}

	token, err := h.api.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	if err := h.store.Login(token); err != nil {
		logger.Error("Failed to persist session", zap.Error(err))
		utils.ErrorResponse(c, http.StatusInternalServerError, "failed to persist session")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, gin.H{"ok": true})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	h.store.Logout()
	utils.SuccessResponse(c, http.StatusOK, gin.H{"ok": true})
}

// Session reports the panel's session state so it can decide whether to
// show the login screen.
func (h *AuthHandler) Session(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, gin.H{
		"logged_in":   h.store.Valid(),
		"session_key": h.store.SessionKey(),
	})
}
