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

	"moonhollow/internal/ai"
	"moonhollow/internal/cache"
	"moonhollow/internal/config"
	"moonhollow/internal/game"
	"moonhollow/internal/repository"
	"moonhollow/internal/service"
	"moonhollow/internal/transport/rest"
	"moonhollow/internal/transport/ws"
)

func main() {
	log.Println("started")
	ctx := context.Background()

	cfg := config.Load()

	aiConfig := config.DefaultAIConfig()
	log.Printf("AI Config:")
	log.Printf("  Model: %s", aiConfig.Model)
	if aiConfig.IsEnabled() {
		log.Println("  API Key: configured ✓")
	} else {
		log.Println("  API Key: NOT SET (using scripted AI players)")
	}

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

	db := mongoClient.Database("moonhollow")

	// Redis connection
	redisAddr := strings.TrimPrefix(cfg.RedisURI, "redis://")
	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// WebSocket hub
	wsHub := ws.NewHub()
	log.Println("WebSocket hub started")

	// Storage
	archiveRepo := repository.NewArchiveRepo(db)
	notesCache := cache.NewNotesCache(rdb)

	// Game core
	registry := game.NewRegistry()
	durations := game.Durations{
		Day:    cfg.DayDuration,
		Voting: cfg.VotingDuration,
		Night:  cfg.NightDuration,
	}
	phaseCtrl := game.NewController(registry, wsHub, durations)
	phaseCtrl.SetArchiver(archiveRepo)

	aiCtrl := ai.NewController(registry, wsHub, notesCache, aiConfig)
	phaseCtrl.SetListener(aiCtrl)

	// Services
	authSvc := service.NewAuthService(cfg.JWTSecret)
	gameSvc := service.NewGameService(registry, phaseCtrl, aiCtrl, authSvc, wsHub, archiveRepo)
	gameSvc.SetRoomCloser(wsHub)
	wsHub.SetDisconnectHandler(gameSvc.Disconnect)

	container := &rest.Container{
		AuthService: authSvc,
		GameService: gameSvc,
		WSHub:       wsHub,
	}
	router := rest.NewRouter(container)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		log.Println("Endpoints:")
		log.Println("  POST /v1/rooms")
		log.Println("  POST /v1/rooms/{id}/join")
		log.Println("  GET  /v1/rooms/{id}")
		log.Println("  POST /v1/rooms/{id}/start|skip|chat|vote|night-action")
		log.Println("  POST/DELETE /v1/rooms/{id}/ai-players")
		log.Println("  GET  /v1/games")
		log.Println("  WS   /v1/ws/rooms/{id}")

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
