package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/black-roland/homeassistant-yandex-speechkit/adapters"
	"github.com/black-roland/homeassistant-yandex-speechkit/adapters/homeassistant"
	"github.com/black-roland/homeassistant-yandex-speechkit/adapters/mongo"
	"github.com/black-roland/homeassistant-yandex-speechkit/adapters/yandex"
	"github.com/black-roland/homeassistant-yandex-speechkit/domain/repositories"
	"github.com/black-roland/homeassistant-yandex-speechkit/internal/api"
	"github.com/black-roland/homeassistant-yandex-speechkit/internal/auth"
	"github.com/black-roland/homeassistant-yandex-speechkit/internal/config"
	"github.com/black-roland/homeassistant-yandex-speechkit/internal/metrics"
	"github.com/black-roland/homeassistant-yandex-speechkit/internal/websocket"
	"github.com/black-roland/homeassistant-yandex-speechkit/usecase"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := cfg.Logging.NewLogger()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize storage
	var entries repositories.EntryRepository
	switch cfg.Storage.Driver {
	case config.StorageMongo:
		client, err := mongo.NewClient(ctx, cfg.Storage.MongoURI, cfg.Storage.MongoDatabase, logger)
		if err != nil {
			logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
		}
		defer client.Close(context.Background())
		entries = mongo.NewEntryRepository(client.Database)
	default:
		logger.Warn("Using in-memory storage, config entries are lost on restart")
		entries = adapters.NewMemoryEntryRepository()
	}

	// Initialize adapters
	m := metrics.NewMetrics()
	speechKit := yandex.NewClient(yandex.Config{
		STTEndpoint: cfg.SpeechKit.STTEndpoint,
		TTSEndpoint: cfg.SpeechKit.TTSEndpoint,
	}, logger)
	player := homeassistant.NewMediaPlayer(homeassistant.Config{
		BaseURL: cfg.HomeAssistant.URL,
		Token:   cfg.HomeAssistant.Token,
		Timeout: cfg.HomeAssistant.TimeoutDuration(),
	}, logger)

	// Initialize usecase services
	entryService := usecase.NewEntryService(entries, logger)
	speechService := usecase.NewSpeechService(entries, speechKit, player, m, logger)

	flowCleanup := usecase.NewFlowCleanupService(entryService, usecase.DefaultFlowTTL, usecase.DefaultFlowCleanupInterval, logger)
	flowCleanup.Start(ctx)
	defer flowCleanup.Stop()

	// Initialize WebSocket hub with the speech service
	hub := websocket.NewHub(speechService, m, logger)
	go hub.Run(ctx)

	var issuer *auth.Issuer
	if cfg.Auth.Disabled {
		logger.Warn("Authentication is disabled")
	} else {
		issuer = auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTLDuration(), cfg.Auth.Clients)
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Initialize API routes
	api.InitRoutes(e, &api.Handlers{
		Entries:  entryService,
		Speech:   speechService,
		Hub:      hub,
		Issuer:   issuer,
		TokenTTL: cfg.Auth.TokenTTLDuration(),
		Metrics:  m,
		Logger:   logger,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)

	// Graceful shutdown
	go func() {
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("Server started",
		zap.String("addr", addr),
		zap.String("storage", cfg.Storage.Driver),
		zap.Bool("auth", issuer != nil))

	// Wait for interrupt signal to gracefully shutdown the server
	<-ctx.Done()

	logger.Info("Server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeoutDuration())
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
