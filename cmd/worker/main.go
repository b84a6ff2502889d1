package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/therealutkarshpriyadarshi/ytmanifest/internal/config"
	"github.com/therealutkarshpriyadarshi/ytmanifest/internal/database"
	"github.com/therealutkarshpriyadarshi/ytmanifest/internal/logging"
	"github.com/therealutkarshpriyadarshi/ytmanifest/internal/monitoring"
	"github.com/therealutkarshpriyadarshi/ytmanifest/internal/queue"
	"github.com/therealutkarshpriyadarshi/ytmanifest/internal/webhook"
	"github.com/therealutkarshpriyadarshi/ytmanifest/pkg/models"
)

// Recorder stores history records
type Recorder interface {
	RecordVideoRequest(ctx context.Context, req *models.VideoRequest) error
}

// Notifier forwards resolved videos to subscribers
type Notifier interface {
	Notify(ctx context.Context, event *models.VideoEvent) error
}

// eventHandler records every resolved video it is handed and notifies
// subscribers. Notification failures do not requeue the event.
func eventHandler(ctx context.Context, rec Recorder, notifier Notifier, logger *logging.Logger) func(*models.VideoEvent) error {
	return func(event *models.VideoEvent) error {
		l := logger.WithURL(event.RequestURL).WithVideoID(event.VideoID)

		if event.Event != models.EventVideoResolved {
			l.WithField("event", event.Event).Debug("Ignoring event")
			return nil
		}

		if err := rec.RecordVideoRequest(ctx, event.Request()); err != nil {
			l.WithError(err).Error("Failed to record video request")
			return err
		}

		l.Debug("Recorded video request")

		if notifier != nil {
			if err := notifier.Notify(ctx, event); err != nil {
				l.WithError(err).Warn("Failed to notify webhooks")
			}
		}
		return nil
	}
}

func main() {
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
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	logger, err := logging.NewLogger(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create logger")
	}
	logger = logger.WithComponent("worker")

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database
	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	repo := database.NewRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		logger.Fatalf("Failed to prepare schema: %v", err)
	}

	// Initialize queue
	q, err := queue.New(cfg.Queue)
	if err != nil {
		logger.Fatalf("Failed to connect to queue: %v", err)
	}
	defer q.Close()

	var notifier Notifier
	hooks := webhook.NewService(webhook.Config{
		URLs:    cfg.Webhooks.URLs,
		Secret:  cfg.Webhooks.Secret,
		Timeout: cfg.Webhooks.Timeout,
		Retries: cfg.Webhooks.Retries,
		Backoff: cfg.Webhooks.Backoff,
	}, logger)
	if hooks.Enabled() {
		notifier = hooks
	}

	monitor := monitoring.NewMonitor(repo, q, logger)
	monitor.Start(ctx)

	// Handle shutdown gracefully
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutting down worker gracefully...")
		cancel()
	}()

	// Start consuming events
	logger.Info("Worker started, waiting for events...")
	if err := q.ConsumeVideoEvents(ctx, eventHandler(ctx, repo, notifier, logger)); err != nil {
		logger.Fatalf("Failed to consume events: %v", err)
	}

	// Wait for shutdown
	<-ctx.Done()
	logger.Info("Worker stopped")
}
