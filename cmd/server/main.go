package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"familyglitch/internal/cache"
	"familyglitch/internal/chat"
	"familyglitch/internal/config"
	"familyglitch/internal/minigame"
	"familyglitch/internal/repository"
	"familyglitch/internal/service"
	"familyglitch/internal/tool"
	"familyglitch/internal/transport/rest"
	"familyglitch/internal/transport/rest/handler"
	"familyglitch/internal/transport/ws"
)

// @title Family Glitch API
// @version 1.0
// @description AI-hosted pass-and-play party game
// @host localhost:8080
// @BasePath /
func main() {
	ctx := context.Background()
	cfg := config.Load()

	// Model client; a missing key is fatal
	aiConfig := cfg.AI
	log.Printf("AI Config:")
	log.Printf("  Provider:  %s", aiConfig.Provider)
	log.Printf("  Model:     %s", aiConfig.Model)
	if aiConfig.BaseURL != "" {
		log.Printf("  Base URL:  %s", aiConfig.BaseURL)
	}
	client, closer, err := aiConfig.NewClient(ctx)
	if err != nil {
		log.Fatal("Failed to create model client: ", err)
	}
	defer closer.Close()
	log.Printf("  API Key:   %s", aiConfig.KeyPrefix())

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	log.Println("Connected to MongoDB")
	repository.EnsureIndexes(ctx, mongoClient)

	// Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr: strings.TrimPrefix(cfg.RedisAddr, "redis://"),
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// Initialize WebSocket hub
	wsHub := ws.NewHub()
	log.Println("WebSocket hub started")

	// Initialize repositories
	sessionRepo := repository.NewSessionRepo(mongoClient)
	turnRepo := repository.NewTurnRepo(mongoClient)

	// Initialize caches
	sessionCache := cache.NewSessionCache(rdb)
	leaderboard := cache.NewLeaderboardCache(rdb)
	challengeCache := cache.NewChallengeCache(rdb)
	usedTurnCache := cache.NewUsedTurnCache(rdb)

	// Initialize services
	authSvc := service.NewAuthService(cfg.JWTSecret, cfg.TokenTTL)
	sessionSvc := service.NewSessionService(sessionRepo, turnRepo, sessionCache, leaderboard, authSvc)
	minigameSvc := service.NewMinigameService(
		sessionSvc,
		client,
		minigame.NewSet(minigame.All()...),
		challengeCache,
		usedTurnCache,
		aiConfig.Model,
	)

	// Tools are registered explicitly, once, before serving
	registry := tool.RegisterAll(tool.NewRegistry(),
		service.NewTemplateTools(sessionSvc),
		service.NewMiniGameTools(minigameSvc),
	)
	log.Printf("Registered %d tools: %s", registry.Len(), strings.Join(registry.Names(), ", "))

	orchestrator := chat.NewOrchestrator(client, registry)
	hostSvc := service.NewHostService(orchestrator, client, sessionSvc, aiConfig.Model, aiConfig.Temperature)

	// Inject broadcaster (wsHub implements service.Broadcaster)
	sessionSvc.SetBroadcaster(wsHub)
	minigameSvc.SetBroadcaster(wsHub)

	container := &rest.Container{
		AIConfig: aiConfig,
		Registry: registry,
		HealthChecks: map[string]handler.Pinger{
			"mongo": func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
			"redis": func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
		AuthService:     authSvc,
		SessionService:  sessionSvc,
		HostService:     hostSvc,
		MinigameService: minigameSvc,
		WSHub:           wsHub,
	}

	router := rest.NewRouter(container)

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		log.Println("Endpoints:")
		log.Println("  POST /api/chat")
		log.Println("  GET  /api/health")
		log.Println("  POST /v1/sessions")
		log.Println("  GET  /v1/sessions/{id}")
		log.Println("  POST /v1/sessions/{id}/next")
		log.Println("  POST /v1/sessions/{id}/minigames")
		log.Println("  WS   /v1/ws/sessions/{id}")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
