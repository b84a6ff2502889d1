package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/therealutkarshpriyadarshi/ytmanifest/internal/extractor"
	"github.com/therealutkarshpriyadarshi/ytmanifest/internal/logging"
	"github.com/therealutkarshpriyadarshi/ytmanifest/internal/middleware"
	"github.com/therealutkarshpriyadarshi/ytmanifest/internal/monitoring"
	"github.com/therealutkarshpriyadarshi/ytmanifest/internal/service"
	"github.com/therealutkarshpriyadarshi/ytmanifest/pkg/models"
)

// VideoService resolves and extracts URLs
type VideoService interface {
	Video(ctx context.Context, rawURL string, opts service.VideoOptions) (*models.Video, error)
	Extract(ctx context.Context, rawURL string, opts extractor.Options) (map[string]any, error)
}

// ManifestSource serves rendered manifests back by name
type ManifestSource interface {
	GetManifest(ctx context.Context, name string) ([]byte, string, error)
}

// HistoryLister lists recorded requests
type HistoryLister interface {
	ListVideoRequests(ctx context.Context, limit, offset int) ([]*models.VideoRequest, error)
}

// StatusReporter reports sampled system state
type StatusReporter interface {
	GetMetrics() *monitoring.Metrics
	GetSystemHealth() string
	GetAlerts() []string
}

// HealthCheck reports whether a dependency is reachable
type HealthCheck func(ctx context.Context) error

// API holds the HTTP handlers' dependencies. Manifests, history and
// status are optional; their routes answer 404 or 503 when unset.
type API struct {
	videos    VideoService
	manifests ManifestSource
	history   HistoryLister
	status    StatusReporter
	checks    map[string]HealthCheck
	logger    *logging.Logger
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// videoOptions reads per-request overrides from the query string
func videoOptions(c *gin.Context) (service.VideoOptions, error) {
	var opts service.VideoOptions

	if v := c.Query("captions"); v != "" {
		captions, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.New("invalid captions value")
		}
		opts.Captions = captions
	}

	if v := c.Query("fps"); v != "" {
		fps, err := strconv.Atoi(v)
		if err != nil || fps < 0 {
			return opts, errors.New("invalid fps value")
		}
		opts.FPS = fps
	}

	opts.Exclude = splitList(c.Query("exclude"))
	return opts, nil
}

func (api *API) extractionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": err.Error()})
	case errors.Is(err, extractor.ErrExtraction), errors.Is(err, service.ErrInvalidInfo):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		api.logger.WithRequestID(middleware.GetRequestID(c)).WithError(err).Error("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// Resolve a URL into a playable video
func (api *API) getVideo(c *gin.Context) {
	rawURL := c.Query("url")
	if rawURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	opts, err := videoOptions(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	video, err := api.videos.Video(c.Request.Context(), rawURL, opts)
	if err != nil {
		api.extractionError(c, err)
		return
	}

	c.JSON(http.StatusOK, video)
}

// Return the extraction engine's info document
func (api *API) extract(c *gin.Context) {
	rawURL := c.Query("url")
	if rawURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	opts := extractor.Options{
		Format:        c.Query("format"),
		ExtractorArgs: c.QueryArray("extractor_args"),
	}

	doc, err := api.videos.Extract(c.Request.Context(), rawURL, opts)
	if err != nil {
		api.extractionError(c, err)
		return
	}

	c.JSON(http.StatusOK, doc)
}

// Serve a rendered manifest
func (api *API) getManifest(c *gin.Context) {
	if api.manifests == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Manifest not found"})
		return
	}

	body, contentType, err := api.manifests.GetManifest(c.Request.Context(), c.Param("name"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if body == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Manifest not found"})
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, contentType, body)
}

// List recently resolved requests
func (api *API) listHistory(c *gin.Context) {
	if api.history == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "History is not enabled"})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit value"})
		return
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid offset value"})
		return
	}

	requests, err := api.history.ListVideoRequests(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"requests": requests,
		"limit":    limit,
		"offset":   offset,
	})
}

// Report sampled queue and history state
func (api *API) getStatus(c *gin.Context) {
	if api.status == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Monitoring is not enabled"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"health":  api.status.GetSystemHealth(),
		"alerts":  api.status.GetAlerts(),
		"metrics": api.status.GetMetrics(),
	})
}

// Health check endpoint
func (api *API) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	for name, check := range api.checks {
		if err := check(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"component": name,
				"error":     err.Error(),
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
	})
}
