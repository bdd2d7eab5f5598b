package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/slateworks/ticklist/internal/logger"
	"github.com/slateworks/ticklist/internal/store"
	"github.com/slateworks/ticklist/server"
)

const devSecret = "ticklist-dev-secret"

func main() {
	if err := logger.Init(logger.Config{
		Level:   logger.ParseLevel(getEnv("TICKLIST_LOG_LEVEL", "INFO")),
		Console: true,
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	port := getEnv("PORT", "3000")
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		dbURL = getEnv("TICKLIST_DB", "todos.db")
	}

	secret := os.Getenv("TICKLIST_SECRET")
	if secret == "" {
		secret = devSecret
		logger.Warn("TICKLIST_SECRET not set, using insecure development secret")
	}

	st, err := store.Open(dbURL)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}

	srv := server.New(st, secret)
	defer func() {
		if err := srv.Close(); err != nil {
			logger.Error("error closing store", logger.F("error", err))
		}
	}()

	go func() {
		logger.Info("ticklist server starting", logger.F("port", port))
		if err := srv.Start(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt, then drain in-flight requests
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", logger.F("error", err))
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
