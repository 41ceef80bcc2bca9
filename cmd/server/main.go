// server runs the HTTP API (gin) and the gRPC health server.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"ai-planner/backend/internal/config"
	"ai-planner/backend/internal/db"
	"ai-planner/backend/internal/directory"
	httphandler "ai-planner/backend/internal/handler/http"
	healthhandler "ai-planner/backend/internal/health/handler"
	"ai-planner/backend/internal/logger"
	"ai-planner/backend/internal/notify"
	"ai-planner/backend/internal/planner"
	"ai-planner/backend/internal/recovery"
	"ai-planner/backend/internal/server"
	"ai-planner/backend/internal/telemetry"
	otelsetup "ai-planner/backend/internal/telemetry/otel"
	"ai-planner/backend/internal/telemetry/producer"
)

const shutdownTimeout = 10 * time.Second

func main() {
	started := time.Now()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	zlog, err := logger.NewLogger(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	ctx := context.Background()

	providers, err := otelsetup.NewProviders(ctx, otelsetup.Settings{
		Endpoint:    cfg.OTLPEndpoint,
		ServiceName: otelsetup.DefaultServiceName,
		Environment: cfg.Env,
		Insecure:    cfg.OTLPInsecure,
	}, zlog)
	if err != nil {
		zlog.Fatal("otel setup failed", zap.Error(err))
	}
	providers.SetGlobal()

	emitters := []telemetry.EventEmitter{otelsetup.NewEventEmitter(providers.LoggerProvider)}
	kafkaProducer := producer.NewKafkaProducer(cfg.TelemetryKafkaBrokersList(), cfg.TelemetryKafkaTopic)
	if kafkaProducer != nil {
		zlog.Info("telemetry: emitting to kafka", zap.String("topic", kafkaProducer.Topic()))
		emitters = append(emitters, kafkaProducer)
	}
	emitter := telemetry.Multi(emitters...)

	store, conn, err := openDirectory(cfg)
	if err != nil {
		zlog.Fatal("directory setup failed", zap.Error(err))
	}
	if conn != nil {
		defer conn.Close()
	}

	gateway, outbox := openGateway(cfg, zlog)
	generator := openGenerator(ctx, cfg, zlog)

	users := recovery.NewService(store, gateway, recovery.Config{
		Collection: cfg.UsersPath,
		AppName:    cfg.AppName,
		Timeout:    cfg.Timeout(),
	}, zlog.Named("recovery"), emitter)
	operators := recovery.NewService(store, gateway, recovery.Config{
		Collection: cfg.OperatorsPath,
		AppName:    cfg.AppName,
		Timeout:    cfg.Timeout(),
	}, zlog.Named("recovery"), emitter)

	health := healthhandler.NewServer(store, zlog.Named("health"))

	deps := httphandler.Deps{
		Users:     users,
		Operators: operators,
		Generator: generator,
		Health:    health,
		Emitter:   emitter,
		Started:   started,
		Logger:    zlog,
	}
	if outbox != nil {
		deps.Outbox = outbox
	}
	if cfg.NotifyRelayEnabled {
		zlog.Warn("notify: relay enabled, POST /api/notify/fonnte sends arbitrary messages without authentication")
		deps.Relay = gateway
	}
	httpSrv := startHTTPServer(cfg.HTTPAddr, httphandler.SetupRouter(deps), zlog)

	grpcSrv := server.NewServer(server.Deps{Health: health, Emitter: emitter, Logger: zlog})
	if cfg.GRPCAddr != "" {
		startGRPCServer(cfg.GRPCAddr, grpcSrv, zlog)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down servers")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("http shutdown", zap.Error(err))
	}
	grpcSrv.GracefulStop()

	// Let in-flight async emits finish before the exporters go away.
	time.Sleep(telemetry.ShutdownDrainDuration)
	if err := kafkaProducer.Close(); err != nil {
		zlog.Warn("kafka producer close", zap.Error(err))
	}
	if err := providers.Shutdown(shutdownCtx); err != nil {
		zlog.Warn("otel shutdown", zap.Error(err))
	}
	zlog.Info("servers stopped")
}

// openDirectory returns the configured store. conn is non-nil for the postgres driver.
func openDirectory(cfg *config.Config) (directory.Store, *sql.DB, error) {
	switch cfg.DirectoryDriver {
	case config.DirectoryRTDB:
		s := directory.NewRTDBStore(cfg.FirebaseDatabaseURL, cfg.FirebaseAuthToken)
		s.HTTPClient.Timeout = cfg.Timeout()
		return s, nil, nil
	case config.DirectoryPostgres:
		conn, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		return directory.NewPostgresStore(conn), conn, nil
	case config.DirectoryMemory:
		return directory.NewMemoryStore(), nil, nil
	default:
		return nil, nil, errors.New("unknown directory driver " + cfg.DirectoryDriver)
	}
}

// openGateway returns the notification gateway; outbox is non-nil only for the development driver.
func openGateway(cfg *config.Config, zlog *zap.Logger) (notify.Gateway, *notify.Outbox) {
	if cfg.NotifyDriver == config.NotifyOutbox {
		zlog.Warn("notify: outbox driver active, messages are kept in memory and readable at /dev/outbox/:phone")
		o := notify.NewOutbox(notify.DefaultOutboxTTL)
		return o, o
	}
	if cfg.FonnteAPIKey == "" {
		zlog.Warn("notify: FONNTE_API_KEY is not set, WhatsApp notifications will fail")
	}
	return notify.NewFonnteClient(cfg.FonnteAPIKey, cfg.FonnteBaseURL, cfg.FonnteAuthScheme, cfg.FonnteCountryCode), nil
}

func openGenerator(ctx context.Context, cfg *config.Config, zlog *zap.Logger) planner.Generator {
	g, err := planner.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		zlog.Warn("planner: AI endpoints disabled", zap.Error(err))
		return planner.Unconfigured{}
	}
	return g
}
