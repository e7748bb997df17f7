package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"hallpass-backend/config"
	"hallpass-backend/internal/api"
	"hallpass-backend/internal/db"
	"hallpass-backend/internal/notification"
	"hallpass-backend/internal/pass"
	"hallpass-backend/internal/policy"
	"hallpass-backend/internal/store"
)

func main() {
	logger := log.New(os.Stdout, "hallpass-backend ", log.LstdFlags)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	if cfg.Push.PublicKey == "" || cfg.Push.PrivateKey == "" {
		logger.Fatalf("VAPID keys must be configured. Please generate them and add them to your config file.")
	}

	webpushOptions := webpush.Options{
		VAPIDPublicKey:  cfg.Push.PublicKey,
		VAPIDPrivateKey: cfg.Push.PrivateKey,
		Subscriber:      cfg.Push.Subject,
		TTL:             cfg.Push.TTL,
	}

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	if err := db.SeedDestinations(gormDB); err != nil {
		logger.Fatalf("failed to seed destinations: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Alert delivery runs on a small worker pool.
	alertPool := notification.NewWorkerPool(cfg.WorkerPool.Size, gormDB, &webpushOptions)
	alertPool.Start(ctx)

	table := policy.NewTable(&cfg.Passes)
	activeStore := store.NewMemoryActiveStore()
	historyStore := store.NewGormHistoryStore(gormDB)

	manager := pass.NewManager(cfg, table, activeStore, historyStore, alertPool)
	defer manager.Close()
	logger.Println("pass manager initialized")

	router := api.NewRouter(cfg, manager, table, gormDB, &webpushOptions)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
