package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"botspoof-chat/internal/identity"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	resolver identity.Resolver,
	chatH *ChatHandler,
	adminH *AdminHandler,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	authed := r.Group("", AuthMiddleware(logger, resolver))

	authed.POST("/session", chatH.OpenSession)
	authed.DELETE("/session", chatH.CloseSession)
	authed.GET("/messages", chatH.ListMessages)
	authed.POST("/message", chatH.PostMessage)
	authed.DELETE("/messages", chatH.DeleteMessages)

	authed.GET("/training_data", adminH.ListTrainingData)
	authed.POST("/admin/add", adminH.AddTrainingPair)
	authed.POST("/admin/delete", adminH.DeleteTrainingPair)
	authed.POST("/train", adminH.Retrain)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
