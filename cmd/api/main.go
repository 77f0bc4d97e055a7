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

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/mastry-api/cmd/mainconfig"
	"github.com/wolfman30/mastry-api/internal/api/router"
	"github.com/wolfman30/mastry-api/internal/app/bootstrap"
	appconfig "github.com/wolfman30/mastry-api/internal/config"
	"github.com/wolfman30/mastry-api/internal/diagnostics"
	"github.com/wolfman30/mastry-api/internal/docstore"
	"github.com/wolfman30/mastry-api/internal/leads"
	"github.com/wolfman30/mastry-api/internal/observability/metrics"
	"github.com/wolfman30/mastry-api/internal/site"
	"github.com/wolfman30/mastry-api/pkg/logging"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting SPEED OF MASTRY API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()
	awsCfg := loadAWSConfig(ctx, cfg, logger)

	store := bootstrap.BuildStore(ctx, cfg, awsCfg, logger)
	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	notifier := bootstrap.BuildLeadNotifier(cfg, awsCfg, logger)

	metricsHandler, leadMetrics := setupMetrics()
	r := router.New(&router.Config{
		Logger:             logger,
		SiteHandler:        site.NewHandler(),
		LeadsHandler:       leads.NewHandler(store, notifier, leadMetrics, logger),
		DiagnosticsHandler: newDiagnosticsHandler(cfg, store, leadMetrics, logger),
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		LeadLimiter:        bootstrap.BuildLeadLimiter(cfg, redisClient, logger),
	})

	srv := newServer(cfg, r)

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	closeStore(shutdownCtx, store, logger)
	if redisClient != nil {
		_ = redisClient.Close()
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// loadAWSConfig returns nil when no configured component talks to AWS.
func loadAWSConfig(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) *aws.Config {
	if !bootstrap.NeedsAWS(cfg) {
		return nil
	}
	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		return nil
	}
	return &awsCfg
}

func setupMetrics() (http.Handler, *metrics.LeadMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), metrics.NewLeadMetrics(reg)
}

func newDiagnosticsHandler(cfg *appconfig.Config, store docstore.Store, m *metrics.LeadMetrics, logger *logging.Logger) *diagnostics.Handler {
	flags := diagnostics.ConfigFlags{
		DatabaseURLSet:  cfg.DatabaseURLSet(),
		DatabaseNameSet: cfg.DatabaseNameSet(),
	}
	return diagnostics.NewHandler(diagnostics.NewProber(store, flags.DatabaseURLSet), flags, m, logger)
}

func newServer(cfg *appconfig.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

func closeStore(ctx context.Context, store docstore.Store, logger *logging.Logger) {
	if store == nil {
		return
	}
	if err := store.Close(ctx); err != nil {
		logger.Warn("failed to close document store", "error", err)
	}
}
