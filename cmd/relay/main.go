package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"

	"chat-relay/auth"
	"chat-relay/infrastructure/web"
	"chat-relay/infrastructure/ws"
	"chat-relay/internal"
	"chat-relay/moderation"
	"chat-relay/repositories"
	"chat-relay/runtime"
	"chat-relay/services"
)

// Exit codes to provide meaningful status to the operating system or
// service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	// main is a thin wrapper: run() owns initialization and shutdown so
	// deferred cleanup executes before the process exits.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Relay terminated with error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	replacement, err := internal.CharacterRune(config.CensoredChar)
	if err != nil {
		return exitConfig, err
	}
	logger := internal.NewLogger(config.LogLevel)

	// 2. Database (BadgerDB)
	options := badger.DefaultOptions(config.BadgerFilepath).WithLoggingLevel(badger.WARNING)
	db, err := badger.Open(options)
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Repositories & Services
	userRepository := repositories.NewUserRepository(db)
	roomRepository := repositories.NewRoomRepository(db)
	messageRepository := repositories.NewMessageRepository(db, logger, config.LimitMessages)
	blobRepository := repositories.NewBlobRepository(db)
	blobService := services.NewBlobService(blobRepository, logger, config.BlobQuota)

	var moderator *moderation.Moderator
	if words := config.Words(); len(words) > 0 {
		moderator, err = moderation.NewModerator(words, replacement)
		if err != nil {
			return exitConfig, fmt.Errorf("moderation setup failed: %w", err)
		}
		logger.Info("moderation enabled", "words", len(words))
	}

	registry := runtime.NewRegistry(logger)
	router := runtime.NewRouter(logger, registry, userRepository, roomRepository, messageRepository, moderator)
	verifier := auth.NewVerifier(config.JWTSecret, config.AuthTokenDuration)
	chatHandler := ws.NewHandler(logger, verifier, userRepository, registry, router, config.ConnectionBufferSize)

	// 4. HTTP Server
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{
		Addr:              address,
		Handler:           web.NewRouter(logger, chatHandler, blobService),
		ReadHeaderTimeout: 15 * time.Second,
	}

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		logger.Info("Starting relay", "address", address, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 6. Wait for Stop or Error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errChan:
		return exitRuntime, err
	}

	// 7. Graceful Shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return exitRuntime, fmt.Errorf("shutdown error: %w", err)
	}
	logger.Info("Relay stopped cleanly")

	return exitOK, nil
}
