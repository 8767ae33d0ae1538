package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"botspoof-chat/internal/admin"
)

// AdminHandler reenvía las operaciones del dataset de entrenamiento al
// servicio del responder. Wrappers sin estado.
type AdminHandler struct {
	logger *zap.Logger
	client *admin.Client
}

func NewAdminHandler(logger *zap.Logger, client *admin.Client) *AdminHandler {
	return &AdminHandler{logger: logger, client: client}
}

func (h *AdminHandler) ListTrainingData(c *gin.Context) {
	if h.client == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "admin api not configured"})
		return
	}
	pairs, err := h.client.ListTrainingData(c.Request.Context())
	if err != nil {
		h.logger.Error("list training data failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not list training data"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": pairs})
}

func (h *AdminHandler) AddTrainingPair(c *gin.Context) {
	if h.client == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "admin api not configured"})
		return
	}
	var req struct {
		Input  string `json:"input" binding:"required"`
		Output string `json:"output" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if err := h.client.AddTrainingPair(c.Request.Context(), req.Input, req.Output); err != nil {
		h.logger.Error("add training pair failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not add training pair"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true})
}

func (h *AdminHandler) DeleteTrainingPair(c *gin.Context) {
	if h.client == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "admin api not configured"})
		return
	}
	var req struct {
		Index *int `json:"index" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if err := h.client.DeleteTrainingPair(c.Request.Context(), *req.Index); err != nil {
		h.logger.Error("delete training pair failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not delete training pair"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *AdminHandler) Retrain(c *gin.Context) {
	if h.client == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "admin api not configured"})
		return
	}
	if err := h.client.Retrain(c.Request.Context()); err != nil {
		h.logger.Error("retrain failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not trigger retrain"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"ok": true})
}
