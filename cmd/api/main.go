package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"trailmarket/internal/api"
	"trailmarket/internal/config"
	"trailmarket/internal/database"
	"trailmarket/internal/domain"
	"trailmarket/internal/events"
	"trailmarket/internal/export"
	"trailmarket/internal/google"
	"trailmarket/internal/logging"
	"trailmarket/internal/metrics"
	"trailmarket/internal/notify"
	"trailmarket/internal/repository"
	"trailmarket/internal/service"
	"trailmarket/internal/worker"
	"trailmarket/internal/ws"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return err
	}
	defer db.Close()

	redisClient := initRedis(cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}
	stateRepo := initStateRepository(redisClient, &logger)

	eventBus := events.NewEventBus()
	initOpsNotifier(cfg, eventBus, &logger)

	sheetsService := initGoogleSheets(cfg, &logger)
	syncWorker := initSyncWorker(db, sheetsService, redisClient, &logger)

	mailer := initMailer(cfg, &logger)

	bookingService := service.NewBookingService(db, eventBus, asSyncWorker(syncWorker), mailer, &logger)
	chatService := service.NewChatService(db, &logger)

	gateway := ws.NewGateway(ws.NewHub(&logger), chatService, stateRepo, cfg.Gateway, &logger)
	exporter := export.NewLedgerExporter(db, cfg.Exports.Path, &logger)

	httpServer := api.NewHTTPServer(cfg.API, bookingService, chatService, db, exporter, gateway, &logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if syncWorker != nil {
		go syncWorker.Start(ctx)
	}
	startMetrics(ctx, cfg, &logger)

	return serve(ctx, httpServer, cfg, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		redisClient.Close()
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

// initStateRepository prefers redis with an in-memory fallback so the gateway
// keeps working through redis outages.
func initStateRepository(redisClient *redis.Client, logger *zerolog.Logger) domain.StateRepository {
	memory := repository.NewMemoryStateRepository()
	if redisClient == nil {
		return memory
	}
	return repository.NewFailoverStateRepository(repository.NewRedisStateRepository(redisClient), memory, logger)
}

func initOpsNotifier(cfg *config.Config, bus *events.EventBus, logger *zerolog.Logger) {
	if !cfg.Telegram.Enabled {
		return
	}

	notifier, err := notify.NewOpsNotifier(cfg.Telegram, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("telegram init failed, continuing without ops notifications")
		return
	}
	notifier.Register(bus)
	logger.Info().Int64("chat_id", cfg.Telegram.OpsChatID).Msg("telegram ops notifications enabled")
}

func initGoogleSheets(cfg *config.Config, logger *zerolog.Logger) *google.SheetsService {
	if cfg.Google.GoogleCredentialsFile == "" || cfg.Google.BookingSpreadSheetID == "" {
		return nil
	}

	sheetsService, err := google.NewSheetsService(cfg.Google.GoogleCredentialsFile, cfg.Google.BookingSpreadSheetID)
	if err != nil {
		logger.Warn().Err(err).Msg("google sheets init failed, continuing without sheets")
		return nil
	}

	logger.Info().Msg("google sheets connected")
	return sheetsService
}

func initSyncWorker(db *database.DB, sheets *google.SheetsService, redisClient *redis.Client, logger *zerolog.Logger) *worker.SyncWorker {
	if sheets == nil {
		return nil
	}
	return worker.NewSyncWorker(db, sheets, redisClient, worker.RetryPolicy{}, logger)
}

// asSyncWorker avoids handing the booking service a typed nil.
func asSyncWorker(w *worker.SyncWorker) domain.SyncWorker {
	if w == nil {
		return nil
	}
	return w
}

func initMailer(cfg *config.Config, logger *zerolog.Logger) domain.Mailer {
	if !cfg.SMTP.Enabled {
		return nil
	}
	logger.Info().Str("host", cfg.SMTP.Host).Msg("smtp notifications enabled")
	return notify.NewSMTPMailer(cfg.SMTP, logger)
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func serve(ctx context.Context, httpServer *api.HTTPServer, cfg *config.Config, logger *zerolog.Logger) error {
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	logger.Info().Int("http_port", cfg.API.HTTP.Port).Msg("server started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http server shutdown")
	}

	logger.Info().Msg("server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
