package http

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"botspoof-chat/internal/chat"
	"botspoof-chat/internal/domain"
)

// ControllerFactory construye el controlador de conversación de un usuario.
type ControllerFactory func() *chat.ConversationController

// ChatHandler expone la conversación por HTTP. Mantiene un controlador por
// usuario autenticado; cada uno posee su propio MessageStore y suscripción.
type ChatHandler struct {
	logger  *zap.Logger
	factory ControllerFactory

	mu          sync.Mutex
	controllers map[string]*chat.ConversationController
}

func NewChatHandler(logger *zap.Logger, factory ControllerFactory) *ChatHandler {
	return &ChatHandler{
		logger:      logger,
		factory:     factory,
		controllers: make(map[string]*chat.ConversationController),
	}
}

func (h *ChatHandler) controllerFor(user domain.User) *chat.ConversationController {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ctrl, ok := h.controllers[user.ID]; ok {
		return ctrl
	}
	ctrl := h.factory()
	h.controllers[user.ID] = ctrl
	return ctrl
}

// OpenSession maneja POST /session: hidrata el historial y abre el feed.
func (h *ChatHandler) OpenSession(c *gin.Context) {
	user, ok := boundUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}

	ctrl := h.controllerFor(user)
	if err := ctrl.Bind(c.Request.Context(), user); err != nil {
		h.logger.Error("session bind failed", zap.String("user_id", user.ID), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not load conversation"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":     user,
		"messages": ctrl.Store().Snapshot(),
	})
}

// CloseSession maneja DELETE /session: libera la suscripción realtime.
func (h *ChatHandler) CloseSession(c *gin.Context) {
	user, ok := boundUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}

	h.mu.Lock()
	ctrl, exists := h.controllers[user.ID]
	delete(h.controllers, user.ID)
	h.mu.Unlock()

	if exists {
		ctrl.Teardown()
	}
	c.JSON(http.StatusOK, gin.H{"closed": exists})
}

// ListMessages maneja GET /messages.
func (h *ChatHandler) ListMessages(c *gin.Context) {
	user, ok := boundUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}

	ctrl := h.controllerFor(user)
	c.JSON(http.StatusOK, gin.H{
		"messages":  ctrl.Store().Snapshot(),
		"composing": ctrl.Composing(),
	})
}

// PostMessage maneja POST /message: append optimista más la vuelta al bot.
func (h *ChatHandler) PostMessage(c *gin.Context) {
	user, ok := boundUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}

	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid post message request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	ctrl := h.controllerFor(user)
	userMsg, botMsg, err := ctrl.Send(c.Request.Context(), req.Text)
	switch {
	case errors.Is(err, chat.ErrEmptyMessage):
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty message"})
		return
	case errors.Is(err, chat.ErrNoUser):
		c.JSON(http.StatusConflict, gin.H{"error": "no active session"})
		return
	case err != nil:
		h.logger.Error("send failed", zap.String("user_id", user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not send message"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user_message": userMsg,
		"bot_message":  botMsg,
		"composing":    ctrl.Composing(),
	})
}

// DeleteMessages maneja DELETE /messages?period=hour|day|week|all.
func (h *ChatHandler) DeleteMessages(c *gin.Context) {
	user, ok := boundUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}

	period := domain.DeletePeriod(c.Query("period"))
	ctrl := h.controllerFor(user)

	err := ctrl.DeleteMessages(c.Request.Context(), period)
	switch {
	case errors.Is(err, chat.ErrUnknownPeriod):
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown period"})
		return
	case errors.Is(err, chat.ErrNoUser):
		c.JSON(http.StatusConflict, gin.H{"error": "no active session"})
		return
	case err != nil:
		// El motivo del borrado fallido viaja tal cual; el log local no se tocó.
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": ctrl.Store().Snapshot()})
}
