package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"advert-service/internal/config"
	"advert-service/internal/delivery/router"
	"advert-service/internal/infrastructure/metrics"
	"advert-service/internal/repository"
	"advert-service/internal/service"
	"advert-service/pkg/database"
	"advert-service/pkg/logger"
	"advert-service/pkg/utils"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const (
	shutdownTimeout       = 10 * time.Second
	tracerShutdownTimeout = 5 * time.Second
)

func main() {
	exitCode := 0
	defer func() { os.Exit(exitCode) }()

	cfg := config.MustLoadConfig()

	loggers, err := logger.SetupLogger(cfg.Logger.Level)
	if err != nil {
		log.Fatalf("Failed to set up logger: %v", err)
	}
	loggers.InfoLogger.Info("Logger initialized")

	db, dialect, cleanupDB := setupDatabase(cfg, loggers)
	defer cleanupDB()

	tracerProvider := setupTracer(cfg, loggers)
	defer shutdownTracer(tracerProvider, loggers)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(db, dialect.Name()),
	)
	handlerMetrics := metrics.NewHandlerMetrics(registry)
	serviceMetrics := metrics.NewServiceMetrics(registry)
	repositoryMetrics := metrics.NewRepositoryMetrics(registry)
	loggers.InfoLogger.Info("Prometheus metrics initialized")

	advertRepo := repository.NewSQLAdvertRepository(db, dialect, repositoryMetrics)
	advertService := service.NewAdvertService(advertRepo, serviceMetrics)
	loggers.InfoLogger.Info("Service and repository layers initialized")

	handler := router.NewRouter(db, advertService, loggers, handlerMetrics)
	loggers.InfoLogger.Info("Router and routes initialized")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, newServer(cfg, handler), shutdownTimeout, loggers); err != nil {
		loggers.ErrorLogger.Error("Server stopped with error", utils.Err(err))
		exitCode = 1
	}
}

func setupDatabase(cfg *config.Config, loggers *logger.Loggers) (*sql.DB, database.Dialect, func()) {
	ctx := context.Background()

	db, dialect, err := database.NewDatabase(ctx, database.Options{
		Driver:   cfg.Database.Driver,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Name:     cfg.Database.Name,
	})
	if err != nil {
		loggers.ErrorLogger.Error("Failed to connect to database", utils.Err(err))
		os.Exit(1)
	}
	loggers.InfoLogger.Info("Connected to database", "driver", dialect.Name())

	if err := database.EnsureSchema(ctx, db, dialect); err != nil {
		loggers.ErrorLogger.Error("Failed to create advert schema", utils.Err(err))
		_ = db.Close()
		os.Exit(1)
	}
	loggers.InfoLogger.Info("Advert schema ready")

	cleanup := func() {
		if err := db.Close(); err != nil {
			loggers.ErrorLogger.Error("Failed to close database connection", utils.Err(err))
		}
	}

	return db, dialect, cleanup
}

func setupTracer(cfg *config.Config, loggers *logger.Loggers) *sdktrace.TracerProvider {
	tracerProvider, err := metrics.InitTracer(context.Background(), metrics.TracerOptions{
		ServiceName: cfg.Tracing.ServiceName,
		Environment: cfg.Tracing.Environment,
		Version:     cfg.Tracing.Version,
		Endpoint:    cfg.Tracing.Endpoint,
	})
	if err != nil {
		loggers.ErrorLogger.Error("Failed to initialize tracer", utils.Err(err))
		os.Exit(1)
	}
	loggers.InfoLogger.Info("OpenTelemetry Tracer initialized", "exporting", cfg.Tracing.Endpoint != "")
	return tracerProvider
}

func shutdownTracer(tp *sdktrace.TracerProvider, loggers *logger.Loggers) {
	ctx, cancel := context.WithTimeout(context.Background(), tracerShutdownTimeout)
	defer cancel()

	if err := tp.Shutdown(ctx); err != nil {
		loggers.ErrorLogger.Error("Failed to shut down tracer provider", utils.Err(err))
	}
}

// newServer bounds every phase of a connection by the configured HTTP timeout.
func newServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              net.JoinHostPort("", strconv.Itoa(cfg.HTTP.Port)),
		Handler:           handler,
		ReadHeaderTimeout: cfg.HTTP.Timeout,
		ReadTimeout:       cfg.HTTP.Timeout,
		WriteTimeout:      cfg.HTTP.Timeout,
		IdleTimeout:       2 * cfg.HTTP.Timeout,
	}
}

// serve runs server until ctx is cancelled or the listener fails, then drains
// in-flight requests for at most drain.
func serve(ctx context.Context, server *http.Server, drain time.Duration, loggers *logger.Loggers) error {
	errCh := make(chan error, 1)
	go func() {
		loggers.InfoLogger.Info("Starting server", "addr", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen on %s: %w", server.Addr, err)
	case <-ctx.Done():
	}
	loggers.InfoLogger.Info("Shutdown signal received, draining requests", "timeout", drain)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), drain)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	loggers.InfoLogger.Info("Server shutdown gracefully")
	return nil
}
