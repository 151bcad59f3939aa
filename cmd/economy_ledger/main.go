package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/SscSPs/economy_ledger/internal/core/domain"
	"github.com/SscSPs/economy_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/economy_ledger/internal/core/ports/services"
	"github.com/SscSPs/economy_ledger/internal/core/services"
	"github.com/SscSPs/economy_ledger/internal/handlers"
	"github.com/SscSPs/economy_ledger/internal/middleware"
	"github.com/SscSPs/economy_ledger/internal/platform/config"
	"github.com/SscSPs/economy_ledger/internal/repositories/database/pgsql"
	"github.com/SscSPs/economy_ledger/internal/repositories/database/sqlite"
	"github.com/SscSPs/economy_ledger/internal/repositories/memory"
	"github.com/SscSPs/economy_ledger/internal/repositories/resilient"
	"github.com/SscSPs/economy_ledger/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 15 * time.Second

// @title Economy Ledger Admin API
// @version 1.0
// @description Operator API for the multi-currency balance ledger.

// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("Server stopped with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	currencies := services.NewCurrencyRegistry(logger)
	if cfg.CurrenciesFile != "" {
		currencies.SetSource(func() ([]domain.Currency, error) {
			return config.LoadCurrencies(cfg.CurrenciesFile)
		})
		rejected, err := currencies.Reload()
		if err != nil {
			return fmt.Errorf("load currencies: %w", err)
		}
		// Invalid definitions are skipped; the valid ones stay registered.
		for _, r := range rejected {
			logger.Warn("Currency definition rejected", slog.String("error", r.Error()))
		}
	}
	logger.Info("Currencies ready",
		slog.Int("count", len(currencies.All())),
		slog.String("default", currencies.Default().ID))

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	repo := resilient.NewLedgerRepository(store, resilient.Options{
		Timeout:    cfg.StoreTimeout,
		MaxRetries: cfg.StoreMaxRetries,
	}, logger)
	defer func() {
		if cerr := repo.Close(); cerr != nil {
			logger.Error("Error closing store", slog.String("error", cerr.Error()))
		}
	}()

	notifier := services.NewNotifier(logger)
	notifier.Subscribe(services.AuditLogSubscriber(logger))
	ledger := services.NewLedger(currencies, repo, notifier, logger)

	bootstrap := services.NewBootstrap(ledger, repo, logger)
	bootstrap.Timeout = cfg.StoreTimeout * time.Duration(cfg.StoreMaxRetries+1)
	bootstrap.Load(ctx)
	if cfg.AutosaveCron != "" {
		if err := bootstrap.StartAutosave(cfg.AutosaveCron); err != nil {
			return err
		}
	}

	rateLimiter, err := middleware.NewMemoryLimiter(cfg.RateLimit)
	if err != nil {
		return err
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// Global middleware (logging, recovery, cors)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery(), cors.New(corsConfig()))
	if err := r.SetTrustedProxies(nil); err != nil {
		return fmt.Errorf("set trusted proxies: %w", err)
	}

	handlers.RegisterRoutes(r, cfg, &portssvc.ServiceContainer{
		Ledger:   ledger,
		Currency: currencies,
	}, rateLimiter)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			_ = bootstrap.Stop(context.Background())
			return fmt.Errorf("server failed to run: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", slog.String("error", err.Error()))
	}
	if err := bootstrap.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("final save: %w", err)
	}
	logger.Info("Ledger flushed, bye")
	return nil
}

// openStore builds the persistence gateway named by STORE_DRIVER.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repositories.LedgerRepositoryFacade, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		logger.Info("Running database migrations...")
		if err := database.MigratePostgres(cfg.DatabaseURL, logger); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
		if err != nil {
			return nil, fmt.Errorf("initialize database pool: %w", err)
		}
		return pgsql.NewPgxLedgerRepository(pool, logger), nil
	case config.StoreDriverSQLite:
		if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite directory: %w", err)
			}
		}
		db, err := database.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		repo, err := sqlite.NewLedgerRepository(db, logger)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		logger.Info("SQLite store opened", slog.String("path", cfg.SQLitePath))
		return repo, nil
	default:
		logger.Warn("Using in-memory store, balances will not survive a restart")
		return memory.NewLedgerRepository(logger), nil
	}
}

func corsConfig() cors.Config {
	c := cors.DefaultConfig()
	c.AllowAllOrigins = true
	c.AddAllowHeaders("Authorization")
	c.AddExposeHeaders("X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining")
	return c
}
