package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/therealutkarshpriyadarshi/ytmanifest/internal/logging"
	"github.com/therealutkarshpriyadarshi/ytmanifest/pkg/models"
)

// Payload is the body posted to every endpoint
type Payload struct {
	Event     string             `json:"event"`
	Timestamp time.Time          `json:"timestamp"`
	Data      *models.VideoEvent `json:"data"`
}

// Config configures webhook delivery
type Config struct {
	URLs    []string
	Secret  string
	Timeout time.Duration
	Retries int
	Backoff time.Duration
}

// Service delivers video events to configured endpoints
type Service struct {
	client  *http.Client
	urls    []string
	secret  string
	retries int
	backoff time.Duration
	logger  *logging.Logger
}

// NewService creates a new webhook service
func NewService(cfg Config, logger *logging.Logger) *Service {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	backoff := cfg.Backoff
	if backoff <= 0 {
		backoff = time.Second
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	return &Service{
		client: &http.Client{
			Timeout: timeout,
		},
		urls:    cfg.URLs,
		secret:  cfg.Secret,
		retries: cfg.Retries,
		backoff: backoff,
		logger:  logger.WithComponent("webhook"),
	}
}

// Enabled reports whether any endpoint is configured
func (s *Service) Enabled() bool {
	return len(s.urls) > 0
}

// Notify posts event to every endpoint. Each endpoint is retried with
// exponential backoff; the joined delivery errors are returned.
func (s *Service) Notify(ctx context.Context, event *models.VideoEvent) error {
	if !s.Enabled() {
		return nil
	}

	payload := Payload{
		Event:     event.Event,
		Timestamp: time.Now().UTC(),
		Data:      event,
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	deliveryID := uuid.New().String()

	var errs []error
	for _, url := range s.urls {
		if err := s.deliverWithRetry(ctx, url, event.Event, deliveryID, payloadBytes); err != nil {
			s.logger.WithFields(map[string]interface{}{
				"endpoint": url,
				"delivery": deliveryID,
			}).WithError(err).Warn("Webhook delivery failed")
			errs = append(errs, fmt.Errorf("%s: %w", url, err))
		}
	}

	return errors.Join(errs...)
}

func (s *Service) deliverWithRetry(ctx context.Context, url, event, deliveryID string, payload []byte) error {
	delay := s.backoff

	var err error
	for attempt := 0; attempt <= s.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		if err = s.deliver(ctx, url, event, deliveryID, payload); err == nil {
			return nil
		}
	}
	return err
}

// deliver attempts to deliver a webhook once
func (s *Service) deliver(ctx context.Context, url, event, deliveryID string, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	// Set headers
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "ytmanifest-Webhook/1.0")
	req.Header.Set("X-Webhook-Event", event)
	req.Header.Set("X-Webhook-Delivery", deliveryID)

	// Add HMAC signature if secret is configured
	if s.secret != "" {
		req.Header.Set("X-Webhook-Signature", Sign(payload, s.secret))
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	return nil
}

// Sign returns the HMAC-SHA256 signature header value for payload
func Sign(payload []byte, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(payload)
	return "sha256=" + hex.EncodeToString(h.Sum(nil))
}
