package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/mpontes/bank-ledger/internal/config"
	"github.com/mpontes/bank-ledger/internal/handler"
	"github.com/mpontes/bank-ledger/internal/logging"
	"github.com/mpontes/bank-ledger/internal/middleware"
	"github.com/mpontes/bank-ledger/internal/repository"
	"github.com/mpontes/bank-ledger/internal/retry"
	"github.com/mpontes/bank-ledger/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Init("bank-ledger", cfg.LogLevel, cfg.AppEnv)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := repository.NewPostgresDB(ctx, cfg.DatabaseURL, repository.PoolConfig{
		MaxOpenConns:     cfg.DBMaxOpenConns,
		MaxIdleConns:     cfg.DBMaxIdleConns,
		ConnMaxLifetimeS: cfg.DBConnMaxLifetimeS,
		ConnMaxIdleTimeS: cfg.DBConnMaxIdleTimeS,
	})
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	accountRepo := repository.NewAccountRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)

	retryCfg := retry.Config{
		MaxAttempts: cfg.TxRetryMaxAttempts,
		BaseDelay:   cfg.TxRetryBaseDelay,
	}

	accountSvc := service.NewAccountService(accountRepo, transactionRepo)
	engine := service.NewTransactionService(accountRepo, transactionRepo, db, retryCfg)
	querySvc := service.NewQueryService(accountRepo, transactionRepo)

	router := handler.NewRouter(
		handler.NewAccountHandler(accountSvc),
		handler.NewTransactionHandler(engine, querySvc),
		handler.NewHealthHandler(db),
		mux.MiddlewareFunc(middleware.RequestID),
		mux.MiddlewareFunc(middleware.Logging),
		mux.MiddlewareFunc(middleware.Recovery),
	)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
