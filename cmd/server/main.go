package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"backend/internal/access"
	"backend/internal/identity"
	"backend/internal/logger"
	"backend/internal/server"
	"backend/internal/storage"
	"backend/internal/token"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := godotenv.Load(); err != nil {
		fmt.Println("no .env file found, relying on process environment")
	}

	logger.Initialize(logger.Configuration{
		LogFile:   os.Getenv("LOG_FILE"),
		ErrorFile: os.Getenv("LOG_ERROR_FILE"),
		Level:     os.Getenv("LOG_LEVEL"),
		Console:   true,
	})

	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		logger.Fatal("SESSION_SECRET is required")
	}

	operatorEmails := strings.Split(os.Getenv("OPERATOR_EMAILS"), ",")
	allowlist := access.NewAllowlist(operatorEmails)
	if len(allowlist) == 0 {
		logger.Warn("OPERATOR_EMAILS is empty, no operator can log in")
	}

	databasePath := os.Getenv("DATABASE_PATH")
	if databasePath == "" {
		databasePath = "persistent.db"
	}

	store, err := storage.NewSqliteStorage(databasePath)
	if err != nil {
		logger.Fatal("failed to open storage", zap.Error(err))
	}

	provider := identity.NewClient(os.Getenv("IDENTITY_BASE_URL"))
	tokens := token.NewService(secret)

	gate := access.NewGate(store, provider, store, store)
	operators := access.NewOperatorGate(allowlist, provider, tokens, store)

	listenAddr := os.Getenv("LISTEN_ADDR")
	if listenAddr == "" {
		listenAddr = ":8080"
	}

	httpServer := &http.Server{
		Addr:    listenAddr,
		Handler: server.New(gate, operators, store, store).Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", listenAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		logger.Error("server stopped", zap.Error(err))
		cancel()
	case <-waitForInterrupt():
		logger.Info("interrupt received, shutting down")
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}

	<-ctx.Done()
}

func waitForInterrupt() <-chan os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	return sigCh
}
