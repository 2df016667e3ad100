// Package main provides the API server entry point for the client portfolio service.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/client-portfolio/internal/api"
	"github.com/client-portfolio/internal/config"
	"github.com/client-portfolio/internal/logging"
	"github.com/client-portfolio/internal/service"
	"github.com/client-portfolio/internal/storage"
	"github.com/client-portfolio/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize structured logging
	logLevel := logging.ParseLogLevel(cfg.Logging.Level)
	logFormat := logging.ParseLogFormat(cfg.Logging.Format)
	logging.InitGlobalLogger(logLevel, logFormat)

	logger := logging.GetGlobalLogger()
	logger.WithFields(map[string]interface{}{
		"level":  cfg.Logging.Level,
		"format": cfg.Logging.Format,
	}).Info("Structured logging initialized")

	// Initialize database connections
	logger.Info("Connecting to databases...")

	postgres, err := storage.NewPostgresDB(&cfg.Database.Postgres)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to Postgres")
	}
	defer postgres.Close()

	redis, err := storage.NewRedisCache(&cfg.Database.Redis)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer redis.Close()

	logger.Info("Database connections established")

	// Initialize repositories
	clientRepo := storage.NewClientRepository(postgres)
	walletRepo := storage.NewWalletRepository(postgres)
	exchangeRepo := storage.NewExchangeRepository(postgres)
	assetRepo := storage.NewAssetRepository(postgres)
	positionRepo := storage.NewPositionRepository(postgres)

	// Initialize cache service
	cacheService := storage.NewCacheService(redis, cfg.Cache.TTL)

	// Initialize services
	logger.Info("Initializing services...")

	clientService := service.NewClientService(clientRepo, cacheService)
	walletService := service.NewWalletService(walletRepo, clientRepo, positionRepo, cacheService)
	exchangeService := service.NewExchangeService(exchangeRepo, clientRepo, cacheService)
	assetService := service.NewAssetService(assetRepo, clientRepo, cacheService)
	portfolioService := service.NewPortfolioService(
		clientRepo,
		walletRepo,
		exchangeRepo,
		assetRepo,
		positionRepo,
		cacheService,
		logger,
	)

	// Initialize refresh worker. Without a live detector configured, refreshes
	// re-emit stored positions and renew exchange sync timestamps.
	refreshWorker, err := worker.NewRefreshWorker(&worker.RefreshWorkerConfig{
		Source:        worker.NewEchoSource(positionRepo),
		WalletRepo:    walletRepo,
		ExchangeRepo:  exchangeRepo,
		PositionRepo:  positionRepo,
		Cache:         cacheService,
		Logger:        logger,
		ProviderDelay: cfg.Refresh.ProviderDelay,
		MaxConcurrent: cfg.Refresh.MaxConcurrent,
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to create refresh worker")
	}

	logger.Info("Services initialized")

	// Create server configuration
	serverConfig := &api.ServerConfig{
		Host:              cfg.Server.Host,
		Port:              cfg.Server.Port,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ShutdownTimeout:   10 * time.Second,
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		Burst:             cfg.RateLimit.Burst,
	}

	server := api.NewServer(
		serverConfig,
		clientService,
		walletService,
		exchangeService,
		assetService,
		portfolioService,
		refreshWorker,
	)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	logger.WithFields(map[string]interface{}{
		"host": cfg.Server.Host,
		"port": cfg.Server.Port,
	}).Info("Server started successfully")

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), serverConfig.ShutdownTimeout)
	defer cancel()

	// Stop in-flight refreshes before closing the listener
	if err := refreshWorker.Stop(ctx); err != nil {
		logger.WithError(err).Warn("Refresh worker did not stop cleanly")
	}

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Fatal("Server forced to shutdown")
	}

	logger.Info("Server exited")
}
