package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jawadev0/ussd-magician/internal/auth"
	"github.com/jawadev0/ussd-magician/internal/bridge"
	"github.com/jawadev0/ussd-magician/internal/cache"
	"github.com/jawadev0/ussd-magician/internal/config"
	"github.com/jawadev0/ussd-magician/internal/dispatch"
	"github.com/jawadev0/ussd-magician/internal/handlers"
	"github.com/jawadev0/ussd-magician/internal/httpserver"
	"github.com/jawadev0/ussd-magician/internal/logging"
	"github.com/jawadev0/ussd-magician/internal/metrics"
	"github.com/jawadev0/ussd-magician/internal/repo"
	"github.com/jawadev0/ussd-magician/internal/sim"
	"github.com/jawadev0/ussd-magician/migrations"

	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel, cfg.AppEnv)
	logger.Info("starting ussd-manager", "env", cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metricRegistry := metrics.Registry(cfg.MetricsNamespace)

	var repository repo.Repository
	if cfg.DatabaseURL != "" {
		repository, err = repo.New(ctx, cfg.DatabaseURL, cfg.DatabaseSchema, logger)
	} else {
		logger.Info("no database url configured, using local sqlite", "path", cfg.SQLitePath)
		repository, err = repo.NewSQLite(ctx, cfg.SQLitePath, logger)
	}
	if err != nil {
		return fmt.Errorf("init repository: %w", err)
	}
	defer repository.Close()

	if err := repository.RunMigrations(ctx, migrations.Files); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrated")

	var redisClient *cache.Redis
	var counter sim.Counter
	if cfg.RedisAddr != "" {
		redisClient = cache.New(cache.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			UseTLS:   cfg.RedisTLS,
		}, logger)
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("failed closing redis", "error", err)
			}
		}()
		if err := redisClient.Ping(ctx); err != nil {
			logger.Warn("redis ping failed", "error", err)
		}
		counter = sim.NewRedisCounter(redisClient, logger)
	} else {
		logger.Info("no redis configured, using in-process counters")
		counter = sim.NewMemoryCounter()
	}

	// The service itself runs outside the mobile shell, so SIM status comes
	// from the simulated bridge and dispatch runs in simulated mode. A native
	// build injects its platform bridge here instead.
	webBridge := bridge.NewWeb(bridge.WebConfig{Delay: cfg.BridgeDelay}, logger)
	simProvider := sim.NewBridgeProvider(webBridge, counter, cfg.SIMDailyLimit, metricRegistry, logger)

	dispatcher := dispatch.New(nil, dispatch.Config{
		Slot:           cfg.DispatchSlot,
		SimulatedDelay: cfg.SimulatedDelay,
		Counter:        counter,
	}, metricRegistry, logger)

	verifier := auth.NewVerifier(repository, redisClient, cfg.AuthCacheTTL, logger)

	httpSrv := httpserver.New(cfg.HTTPListenAddr, logger, metricRegistry, httpserver.Handlers{
		AddCode:     handlers.NewAddCode(repository, verifier, metricRegistry, logger),
		ExecuteCode: handlers.NewExecuteCode(repository, verifier, metricRegistry, logger),
		ListCodes:   handlers.NewListCodes(repository, verifier, metricRegistry, logger),
	}, cfg.PublicBasePath)
	httpSrv.SetDependencies(httpserver.Dependencies{
		Repository: repository,
		Redis:      redisClient,
		SIM:        simProvider,
		Dispatcher: dispatcher,
	})

	errCh := make(chan error, 1)
	go func() {
		if err := httpSrv.Start(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	return nil
}
