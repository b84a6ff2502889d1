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

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/therealutkarshpriyadarshi/ytmanifest/internal/cache"
	"github.com/therealutkarshpriyadarshi/ytmanifest/internal/config"
	"github.com/therealutkarshpriyadarshi/ytmanifest/internal/database"
	"github.com/therealutkarshpriyadarshi/ytmanifest/internal/extractor"
	"github.com/therealutkarshpriyadarshi/ytmanifest/internal/language"
	"github.com/therealutkarshpriyadarshi/ytmanifest/internal/logging"
	"github.com/therealutkarshpriyadarshi/ytmanifest/internal/metrics"
	"github.com/therealutkarshpriyadarshi/ytmanifest/internal/middleware"
	"github.com/therealutkarshpriyadarshi/ytmanifest/internal/monitoring"
	"github.com/therealutkarshpriyadarshi/ytmanifest/internal/queue"
	"github.com/therealutkarshpriyadarshi/ytmanifest/internal/render"
	"github.com/therealutkarshpriyadarshi/ytmanifest/internal/service"
	"github.com/therealutkarshpriyadarshi/ytmanifest/internal/storage"
	"github.com/therealutkarshpriyadarshi/ytmanifest/internal/tracing"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("API server failed")
	}
}

func run() error {
	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
		if _, err := os.Stat(configPath); err != nil {
			configPath = ""
		}
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Settings reload
	holder := config.NewHolder(cfg.Settings, configPath, logger)
	if err := holder.Watch(ctx); err != nil {
		logger.WithError(err).Warn("Settings watcher not started")
	}
	defer holder.Stop()

	// Tracing
	_, closer, err := tracing.InitTracer(tracing.Config{
		Enabled:      cfg.Tracing.Enabled,
		ServiceName:  cfg.Tracing.ServiceName,
		Endpoint:     cfg.Tracing.Endpoint,
		SamplerParam: cfg.Tracing.SamplerParam,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize tracer: %w", err)
	}
	defer closer.Close()

	checks := map[string]HealthCheck{}
	var opts []service.Option
	opts = append(opts, service.WithLogger(logger), service.WithExtractOptions(extractor.Options{
		Cookies:       cfg.Extractor.Cookies,
		NoPlaylist:    cfg.Extractor.NoPlaylist,
		ExtractorArgs: cfg.Extractor.ExtractorArgs,
	}))

	// Redis: extraction cache, shared rate limits and the redis manifest store
	var redisCache *cache.Cache
	if cfg.Redis.Enabled {
		redisCache, err = cache.NewCache(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer redisCache.Close()
		checks["redis"] = redisCache.Ping
		opts = append(opts, service.WithCache(redisCache, cfg.Extractor.CacheTTL))
	}

	// History. With a queue configured the worker persists requests from
	// the published events instead.
	var history HistoryLister
	var stats monitoring.StatsRepository
	if cfg.Database.Enabled {
		db, err := database.New(ctx, cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		repo := database.NewRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			return err
		}
		checks["database"] = db.Health
		history = repo
		stats = repo
		if !cfg.Queue.Enabled {
			opts = append(opts, service.WithHistory(repo))
		}
	}

	// Events
	var depth monitoring.QueueProvider
	if cfg.Queue.Enabled {
		q, err := queue.New(cfg.Queue)
		if err != nil {
			return fmt.Errorf("failed to connect to queue: %w", err)
		}
		defer q.Close()
		depth = q
		opts = append(opts, service.WithPublisher(q))
	}

	var status StatusReporter
	if stats != nil || depth != nil {
		monitor := monitoring.NewMonitor(stats, depth, logger)
		monitor.Start(ctx)
		status = monitor
	}

	store, manifests, err := manifestStore(ctx, cfg, redisCache, logger)
	if err != nil {
		return err
	}

	renderer := render.NewRenderer(store, logger.WithComponent("render").Zerolog())
	ext := extractor.NewExtractor(cfg.Extractor.Path, cfg.Extractor.Timeout, cfg.Extractor.ExtraArgs...)
	svc := service.New(ext, renderer, holder, language.NewNamer(cfg.Manifest.DisplayLanguage), opts...)

	api := &API{
		videos:    svc,
		manifests: manifests,
		history:   history,
		status:    status,
		checks:    checks,
		logger:    logger,
	}

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := setupRouter(api, rateLimiter(ctx, cfg.RateLimit, redisCache))

	// Metrics server
	var metricsServer *metrics.Server
	if cfg.Metrics.Enabled {
		metricsServer = metrics.NewServer(cfg.Metrics.Port)
		go func() {
			if err := metricsServer.Start(); err != nil {
				logger.WithError(err).Error("Metrics server failed")
			}
		}()
	}

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", addr).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	}

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("Metrics server shutdown failed")
		}
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("Server stopped")
	return nil
}

// manifestStore selects where rendered manifests go. The returned source
// is nil when manifests are served from elsewhere.
func manifestStore(ctx context.Context, cfg *config.Config, redisCache *cache.Cache, logger *logging.Logger) (render.Store, ManifestSource, error) {
	switch cfg.Manifest.Store {
	case config.ManifestStoreRedis:
		if redisCache == nil {
			return nil, nil, errors.New("redis manifest store requires redis to be enabled")
		}
		store := cache.NewManifestStore(redisCache, cfg.Manifest.BaseURL, cfg.Manifest.TTL)
		return store, store, nil

	case config.ManifestStoreS3:
		store, err := storage.New(ctx, cfg.Storage, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		return store, nil, nil

	case config.ManifestStoreFile, "":
		store, err := render.NewFileStore(cfg.Manifest.Dir, cfg.Manifest.BaseURL)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil

	default:
		return nil, nil, fmt.Errorf("unknown manifest store %q", cfg.Manifest.Store)
	}
}

func rateLimiter(ctx context.Context, cfg config.RateLimitConfig, redisCache *cache.Cache) gin.HandlerFunc {
	if !cfg.Enabled {
		return nil
	}
	if cfg.Shared && redisCache != nil {
		return middleware.SharedRateLimit(redisCache, cfg.Limit, cfg.Window)
	}

	rl := middleware.NewRateLimiter(cfg.RPS, cfg.Burst)
	go rl.Cleanup(ctx, time.Minute)
	return middleware.RateLimit(rl)
}

func setupRouter(api *API, limiter gin.HandlerFunc) *gin.Engine {
	if api.logger == nil {
		api.logger = logging.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(api.logger))
	router.Use(middleware.Metrics())

	// Health check
	router.GET("/health", api.healthCheck)

	// API routes
	v1 := router.Group("/api/v1")
	if limiter != nil {
		v1.Use(limiter)
	}
	{
		v1.GET("/video", api.getVideo)
		v1.GET("/extract", api.extract)
		v1.GET("/manifests/:name", api.getManifest)
		v1.GET("/history", api.listHistory)
		v1.GET("/status", api.getStatus)
	}

	return router
}
