package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/okian/courtquote/internal/adapters/http/api"
	"github.com/okian/courtquote/internal/adapters/http/swagger"
	"github.com/okian/courtquote/internal/adapters/repository"
	service "github.com/okian/courtquote/internal/app"
	"github.com/okian/courtquote/internal/config"
	"github.com/okian/courtquote/internal/domain/catalog"
	"github.com/okian/courtquote/pkg/logger"
	"github.com/okian/courtquote/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 30 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// The custom registry carries our own system gauges.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// The logger format comes from config, so it is not available yet.
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	loggerInstance := logger.Get()

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if err := run(ctx, cfg); err != nil {
		loggerInstance.Error(ctx, "server exited with error", logger.Error(err))
		os.Exit(1)
	}
}

// run starts the service and serves HTTP until ctx is cancelled.
func run(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()

	svc, err := newService(ctx, cfg)
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(ctx, svc, cfg),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return nil
}

// newService loads the catalog, opens the configured store and builds an
// unstarted service.
func newService(ctx context.Context, cfg *config.Config) (*service.Service, error) {
	cat, err := catalog.Load(ctx, cfg.CatalogPath, cfg.CatalogCategory)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	store, err := repository.Open(ctx, repository.Settings{
		Backend:          cfg.Store,
		SQLiteDSN:        cfg.SQLiteDSN,
		DynamoDBEndpoint: cfg.DynamoDBEndpoint,
		DynamoDBRegion:   cfg.DynamoDBRegion,
		QuotationsTable:  cfg.QuotationsTable,
		CountersTable:    cfg.CountersTable,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store, err)
	}

	return service.New(
		service.WithLogger(logger.Get().Named("service")),
		service.WithStore(store),
		service.WithCatalog(cat),
		service.WithPrefix(cfg.QuotationPrefix),
		service.WithMaxRetries(cfg.NumberingMaxRetries),
		service.WithPersistenceTimeout(cfg.PersistenceTimeout()),
		service.WithMaxListLimit(cfg.MaxListLimit),
		service.WithRenderWorkers(cfg.RenderWorkers),
		service.WithRenderQueueSize(cfg.RenderQueueSize),
		service.WithDocumentCacheSize(cfg.DocumentCacheSize),
		service.WithIdempotencySize(cfg.IdempotencyCacheSize),
		service.WithGSTPercent(cfg.GSTPercent),
		service.WithEquipmentRecompute(cfg.RecomputeEquipment),
	), nil
}

// newHandler registers the docs and business routes.
func newHandler(ctx context.Context, svc *service.Service, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()

	swagger.Register(ctx, mux)

	listLimit := api.DefaultListLimit
	if cfg.MaxListLimit < listLimit {
		listLimit = cfg.MaxListLimit
	}
	api.NewServer(svc, api.WithDefaultListLimit(listLimit)).Register(ctx, mux)

	return mux
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater starts a background goroutine that updates service metrics.
func startServiceMetricsUpdater(ctx context.Context, svc *service.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)

	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

// updateServiceMetrics refreshes render queue gauges from service stats.
// GetStats itself updates the stored quotation and queue length gauges.
func updateServiceMetrics(svc *service.Service) {
	stats := svc.GetStats()

	size, ok := stats["renderQueueSize"].(int)
	if !ok || size <= 0 {
		return
	}
	metrics.UpdateQueueCapacity(size)

	if queueLen, ok := stats["renderQueueLength"].(int); ok {
		metrics.UpdateQueueUtilization(float64(queueLen) / float64(size))
	}
}
