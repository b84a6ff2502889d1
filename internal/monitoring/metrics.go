package monitoring

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/therealutkarshpriyadarshi/ytmanifest/internal/logging"
	"github.com/therealutkarshpriyadarshi/ytmanifest/internal/metrics"
	"github.com/therealutkarshpriyadarshi/ytmanifest/pkg/models"
)

// Alert thresholds
const (
	QueueDepthWarning   = 1000
	PassthroughWarning  = 0.9
	EmptyResultsWarning = 0.25
)

// Health states
const (
	HealthHealthy = "healthy"
	HealthWarning = "warning"
	HealthUnknown = "unknown"
)

// Metrics holds system metrics
type Metrics struct {
	QueueDepth       int       `json:"queue_depth"`
	TotalRequests    int64     `json:"total_requests"`
	PassthroughCount int64     `json:"passthrough_count"`
	EmptyResults     int64     `json:"empty_results"`
	AverageStreams   float64   `json:"average_streams"`
	AverageDropped   float64   `json:"average_dropped"`
	LastUpdated      time.Time `json:"last_updated"`
	LastError        string    `json:"last_error,omitempty"`
}

// StatsRepository reports aggregate history
type StatsRepository interface {
	GetHistoryStats(ctx context.Context) (*models.HistoryStats, error)
}

// QueueProvider reports the event queue depth
type QueueProvider interface {
	GetQueueDepth() (int, error)
}

// Monitor periodically samples queue and history state. Either source
// may be nil.
type Monitor struct {
	metrics  *Metrics
	mu       sync.RWMutex
	repo     StatsRepository
	queue    QueueProvider
	interval time.Duration
	logger   *logging.Logger
}

// NewMonitor creates a new monitoring service
func NewMonitor(repo StatsRepository, queue QueueProvider, logger *logging.Logger) *Monitor {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Monitor{
		metrics:  &Metrics{},
		repo:     repo,
		queue:    queue,
		interval: 10 * time.Second,
		logger:   logger.WithComponent("monitoring"),
	}
}

// Start begins sampling until ctx is done
func (m *Monitor) Start(ctx context.Context) {
	go m.collectMetrics(ctx)
}

// collectMetrics periodically collects system metrics
func (m *Monitor) collectMetrics(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.Update(ctx); err != nil {
				m.logger.WithError(err).Warn("Failed to update metrics")
			}
			for _, alert := range m.GetAlerts() {
				m.logger.Warn(alert)
			}
		}
	}
}

// Update samples every source once
func (m *Monitor) Update(ctx context.Context) error {
	var depth int
	var stats *models.HistoryStats
	var err error

	if m.queue != nil {
		depth, err = m.queue.GetQueueDepth()
		if err != nil {
			err = fmt.Errorf("failed to get queue depth: %w", err)
		} else {
			metrics.EventQueueDepth.Set(float64(depth))
		}
	}

	if err == nil && m.repo != nil {
		stats, err = m.repo.GetHistoryStats(ctx)
		if err != nil {
			err = fmt.Errorf("failed to get history stats: %w", err)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err != nil {
		m.metrics.LastError = err.Error()
		return err
	}

	m.metrics.QueueDepth = depth
	if stats != nil {
		m.metrics.TotalRequests = stats.Total
		m.metrics.PassthroughCount = stats.Passthrough
		m.metrics.EmptyResults = stats.Empty
		m.metrics.AverageStreams = stats.AverageStreams
		m.metrics.AverageDropped = stats.AverageDropped
	}
	m.metrics.LastError = ""
	m.metrics.LastUpdated = time.Now()
	return nil
}

// GetMetrics returns current system metrics
func (m *Monitor) GetMetrics() *Metrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Create a copy to avoid race conditions
	metrics := *m.metrics
	return &metrics
}

// GetSystemHealth returns overall system health
func (m *Monitor) GetSystemHealth() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.metrics.LastUpdated.IsZero() {
		return HealthUnknown
	}
	if len(m.alerts()) > 0 {
		return HealthWarning
	}
	return HealthHealthy
}

// GetAlerts returns current system alerts
func (m *Monitor) GetAlerts() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.alerts()
}

func (m *Monitor) alerts() []string {
	var alerts []string

	if m.metrics.LastError != "" {
		alerts = append(alerts, "Sampling failed: "+m.metrics.LastError)
	}

	if m.metrics.QueueDepth > QueueDepthWarning {
		alerts = append(alerts, fmt.Sprintf("High queue depth: %d events pending", m.metrics.QueueDepth))
	}

	if total := m.metrics.TotalRequests; total > 0 {
		if ratio := float64(m.metrics.EmptyResults) / float64(total); ratio > EmptyResultsWarning {
			alerts = append(alerts, fmt.Sprintf("Many requests without playable streams: %.1f%%", ratio*100))
		}
		if ratio := float64(m.metrics.PassthroughCount) / float64(total); ratio > PassthroughWarning {
			alerts = append(alerts, fmt.Sprintf("Mostly passthrough requests: %.1f%%", ratio*100))
		}
	}

	return alerts
}
