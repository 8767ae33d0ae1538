package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"botspoof-chat/internal/admin"
	"botspoof-chat/internal/bot"
	"botspoof-chat/internal/chat"
	"botspoof-chat/internal/config"
	"botspoof-chat/internal/db"
	apihttp "botspoof-chat/internal/http"
	"botspoof-chat/internal/identity"
	"botspoof-chat/internal/realtime"
	"botspoof-chat/internal/repository"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
	if err := redisClient.Ping(ctxPing).Err(); err != nil {
		cancel()
		logger.Fatal("redis ping failed", zap.Error(err))
	}
	cancel()

	feed := realtime.NewRedisFeed(redisClient, cfg.RealtimeChannel, logger)
	messageRepo := repository.NewPgMessageRepository(pool, feed, logger)
	botClient := bot.NewHTTPClient(cfg.BotBaseURL, time.Duration(cfg.BotTimeoutSeconds)*time.Second)
	resolver := identity.NewJWTResolver(cfg.JWTSecret)

	var adminClient *admin.Client
	if cfg.AdminBaseURL != "" {
		adminClient = admin.NewClient(cfg.AdminBaseURL, 30*time.Second)
	}

	factory := func() *chat.ConversationController {
		return chat.NewConversationController(chat.NewMessageStore(), messageRepo, feed, botClient, logger)
	}

	chatHandler := apihttp.NewChatHandler(logger, factory)
	adminHandler := apihttp.NewAdminHandler(logger, adminClient)
	router := apihttp.NewRouter(logger, resolver, chatHandler, adminHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
