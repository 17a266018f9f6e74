// StudyShelf Server
//
// Features:
// - Prometheus metrics & structured logging (zap)
// - Google Drive folder tree mirrored into an in-memory structure cache
// - Bounded FIFO cache for exported document HTML
// - Recursive search over the cached tree
// - Nutrition records from PostgreSQL with field selection and a TTL cache
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/studyshelf/studyshelf/internal/api"
	"github.com/studyshelf/studyshelf/internal/config"
	"github.com/studyshelf/studyshelf/internal/drive"
	"github.com/studyshelf/studyshelf/internal/drivecache"
	"github.com/studyshelf/studyshelf/internal/food"
	"github.com/studyshelf/studyshelf/internal/logging"
	"github.com/studyshelf/studyshelf/internal/metrics"
	"github.com/studyshelf/studyshelf/internal/topics"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// Can't use structured logging yet
		panic("configuration error: " + err.Error())
	}

	// Initialize structured logging
	if err := logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	}); err != nil {
		panic("logging init error: " + err.Error())
	}
	defer logging.Sync()

	logging.Info("StudyShelf Server starting...",
		zap.String("listen", cfg.ListenAddr),
		zap.String("metrics", cfg.MetricsAddr))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize PostgreSQL-backed food store
	logging.Info("connecting to PostgreSQL...")
	foodStore, err := food.New(cfg.DatabaseURL, cfg.FoodCacheTTL)
	if err != nil {
		logging.Fatal("database connection failed", zap.Error(err))
	}
	defer foodStore.Close()

	// Initialize Google Drive client
	driveClient, err := drive.NewGoogleClient(ctx, cfg.DriveKeyFile, cfg.DriveTimeout)
	if err != nil {
		logging.Fatal("drive client init failed", zap.Error(err))
	}

	// Initialize caches
	contentCache := drivecache.NewContentCache(cfg.ContentCacheMaxBytes)
	structureCache := drivecache.New(driveClient, cfg.DriveRootFolderID,
		cfg.StructureRefreshInterval, contentCache)
	topicService := topics.NewService(structureCache)
	logging.Info("drive caches initialized",
		zap.Duration("refresh_interval", cfg.StructureRefreshInterval),
		zap.Int64("content_cache_max_bytes", cfg.ContentCacheMaxBytes))

	// Warm the structure cache; the first request rebuilds on failure.
	if _, err := structureCache.Structure(ctx); err != nil {
		logging.Error("initial structure build failed", zap.Error(err))
	}

	// Create API server
	srv := api.NewServer(structureCache, topicService, foodStore)

	// Start metrics server
	metricsServer := &http.Server{
		Addr:    cfg.MetricsAddr,
		Handler: metrics.Handler(),
	}
	go func() {
		logging.Info("metrics server listening", zap.String("addr", cfg.MetricsAddr))
		if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
			logging.Error("metrics server error", zap.Error(err))
		}
	}()

	// Start HTTP server
	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: srv.Handler(),
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logging.Info("shutting down...")
		cancel()
		httpServer.Close()
		metricsServer.Close()
	}()

	// Start periodic metrics update
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				foodStore.UpdateConnectionMetrics()
			}
		}
	}()

	logging.Info("server listening", zap.String("addr", cfg.ListenAddr))
	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		logging.Fatal("server error", zap.Error(err))
	}
}
