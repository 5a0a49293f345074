package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"goldrush-game-api/internal/config"
	"goldrush-game-api/internal/handler"
	"goldrush-game-api/internal/middleware"
	"goldrush-game-api/internal/notify"
	"goldrush-game-api/internal/repository"
	"goldrush-game-api/internal/router"
	"goldrush-game-api/internal/service"
	"goldrush-game-api/internal/store"

	"github.com/redis/go-redis/v9"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting GoldRush game API...")

	// Load configuration
	cfg := config.MustLoad()
	log.Printf("Environment: %s", cfg.App.Environment)

	// Initialize the game state store
	var gameStore store.Store
	switch cfg.Store.Type {
	case "memory":
		gameStore = store.NewMemoryStore()
		log.Println("Memory store initialized")
	default: // redis
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Store.RedisAddress(),
			Username: cfg.Store.RedisUsername,
			Password: cfg.Store.RedisPassword,
			DB:       cfg.Store.RedisDB,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := redisClient.Ping(ctx).Err()
		cancel()
		if err != nil {
			log.Fatalf("Redis connection failed: %v", err)
		}

		gameStore = store.NewRedisStore(redisClient)
		log.Println("Redis store initialized")
	}
	defer gameStore.Close()

	// Seed the shop catalog (idempotent)
	seedCtx, seedCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := gameStore.SeedItems(seedCtx, service.DefaultCatalog(), service.DefaultStock); err != nil {
		log.Fatalf("Failed to seed shop catalog: %v", err)
	}
	seedCancel()

	// Initialize the history archive (optional)
	var archive repository.HistoryArchive
	var archiver *service.HistoryArchiver
	if cfg.Archive.Enabled {
		sqliteArchive, err := repository.NewSQLiteHistoryArchive(cfg.Archive.Path)
		if err != nil {
			log.Printf("Warning: history archive initialization failed: %v", err)
		} else {
			archive = sqliteArchive
			archiver = service.NewHistoryArchiver(gameStore, archive, service.ArchiverConfig{
				FlushInterval: cfg.Archive.FlushInterval,
			})
			archiver.Start()
			log.Println("SQLite history archive initialized")
		}
	}

	// Notification hub
	hub := notify.NewHub()

	// Initialize services
	rewardCalc := service.NewRewardCalculator()
	playerService := service.NewPlayerService(gameStore, hub, cfg.App.StartingGold)
	clickService := service.NewClickService(gameStore, rewardCalc, hub)
	shopService := service.NewShopService(gameStore, hub)
	auctionService := service.NewAuctionService(gameStore, hub)
	leaderboardService := service.NewLeaderboardService(gameStore)
	settingsService := service.NewSettingsService(gameStore, hub)

	// Initialize handlers
	healthHandler := handler.New(gameStore, cfg.App.Version)
	playerHandler := handler.NewPlayerHandler(playerService)
	clickHandler := handler.NewClickHandler(clickService)
	shopHandler := handler.NewShopHandler(shopService)
	auctionHandler := handler.NewAuctionHandler(auctionService)
	leaderboardHandler := handler.NewLeaderboardHandler(leaderboardService)
	adminHandler := handler.NewAdminHandler(settingsService, archive, hub)

	// Create router
	r := router.New(router.Config{
		Handler:            healthHandler,
		PlayerHandler:      playerHandler,
		ClickHandler:       clickHandler,
		ShopHandler:        shopHandler,
		AuctionHandler:     auctionHandler,
		LeaderboardHandler: leaderboardHandler,
		AdminHandler:       adminHandler,
		WSHandler:          hub.Handler(),
		AdminMiddleware:    middleware.NewAdminAuth(cfg.App.AdminPassword),
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server listening on %s", cfg.Server.Address())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Stop the archiver first (performs a final drain)
	if archiver != nil {
		log.Println("Stopping history archiver...")
		archiver.Stop()
	}
	if archive != nil {
		archive.Close()
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
	fmt.Println("Goodbye!")
}
