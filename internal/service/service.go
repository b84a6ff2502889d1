// Package service resolves media URLs into playable videos.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/therealutkarshpriyadarshi/ytmanifest/internal/extractor"
	"github.com/therealutkarshpriyadarshi/ytmanifest/internal/logging"
	"github.com/therealutkarshpriyadarshi/ytmanifest/internal/manifest"
	"github.com/therealutkarshpriyadarshi/ytmanifest/internal/metrics"
	"github.com/therealutkarshpriyadarshi/ytmanifest/internal/policy"
	"github.com/therealutkarshpriyadarshi/ytmanifest/internal/tracing"
	"github.com/therealutkarshpriyadarshi/ytmanifest/pkg/models"
)

// ErrInvalidInfo is returned when the extracted document cannot be read
var ErrInvalidInfo = errors.New("invalid info document")

// Extractor produces the raw info document for a URL
type Extractor interface {
	Extract(ctx context.Context, url string, opts extractor.Options) ([]byte, error)
}

// Renderer turns assembled manifests into served documents
type Renderer interface {
	RenderDASH(ctx context.Context, duration float64, streams []models.StreamDescriptor) (string, error)
	RenderHLS(ctx context.Context, pl *models.VariantPlaylist) (string, error)
}

// SettingsSource hands out the current settings snapshot
type SettingsSource interface {
	Snapshot() *policy.Snapshot
}

// ExtractionCache caches raw info documents by URL
type ExtractionCache interface {
	GetExtraction(ctx context.Context, url string) ([]byte, error)
	SetExtraction(ctx context.Context, url string, data []byte, ttl time.Duration) error
}

// EventPublisher announces resolved videos
type EventPublisher interface {
	PublishVideoEvent(ctx context.Context, event *models.VideoEvent) error
}

// History records resolved requests
type History interface {
	RecordVideoRequest(ctx context.Context, req *models.VideoRequest) error
}

// VideoOptions are per-request overrides. Zero values defer to settings.
type VideoOptions struct {
	Captions bool
	Exclude  []string
	FPS      int
}

// Service resolves URLs into videos
type Service struct {
	extractor   Extractor
	renderer    Renderer
	settings    SettingsSource
	namer       manifest.LanguageNamer
	logger      *logging.Logger
	extractOpts extractor.Options

	cache     ExtractionCache
	cacheTTL  time.Duration
	publisher EventPublisher
	history   History
}

// Option configures a Service
type Option func(*Service)

// WithCache caches extraction results for ttl
func WithCache(c ExtractionCache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// WithPublisher publishes an event for every resolved video
func WithPublisher(p EventPublisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithHistory records every resolved video
func WithHistory(h History) Option {
	return func(s *Service) { s.history = h }
}

// WithLogger sets the logger
func WithLogger(l *logging.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithExtractOptions sets the extraction options used by Video
func WithExtractOptions(o extractor.Options) Option {
	return func(s *Service) { s.extractOpts = o }
}

// New creates a service
func New(ext Extractor, renderer Renderer, settings SettingsSource, namer manifest.LanguageNamer, opts ...Option) *Service {
	s := &Service{
		extractor: ext,
		renderer:  renderer,
		settings:  settings,
		namer:     namer,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent("service")
	return s
}

// unquote decodes every valid %XX escape in rawURL. Malformed escapes
// are kept as they are, and "+" is not treated as a space.
func unquote(rawURL string) string {
	if !strings.Contains(rawURL, "%") {
		return rawURL
	}

	var b strings.Builder
	b.Grow(len(rawURL))
	for i := 0; i < len(rawURL); i++ {
		if rawURL[i] == '%' && i+2 < len(rawURL) {
			hi, okHi := unhex(rawURL[i+1])
			lo, okLo := unhex(rawURL[i+2])
			if okHi && okLo {
				b.WriteByte(hi<<4 | lo)
				i += 2
				continue
			}
		}
		b.WriteByte(rawURL[i])
	}
	return b.String()
}

func unhex(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

func cacheKey(u string, opts extractor.Options) string {
	if opts.Format == "" && len(opts.ExtractorArgs) == 0 {
		return u
	}
	return u + "\x00" + opts.Format + "\x00" + strings.Join(opts.ExtractorArgs, "\x00")
}

// extract returns the info document for u, from the cache when possible
func (s *Service) extract(ctx context.Context, u string, opts extractor.Options) ([]byte, error) {
	span, ctx := tracing.StartSpan(ctx, tracing.OpExtract)
	defer tracing.FinishSpan(span)
	tracing.SetTag(span, "url", u)

	key := cacheKey(u, opts)
	if s.cache != nil {
		data, err := s.cache.GetExtraction(ctx, key)
		if err != nil {
			s.logger.WithError(err).Warn("Extraction cache lookup failed")
		}
		metrics.RecordCacheAccess("extraction", data != nil)
		if data != nil {
			tracing.SetTag(span, "cached", true)
			s.logger.LogExtraction(u, true, 0, nil)
			return data, nil
		}
	}

	start := time.Now()
	data, err := s.extractor.Extract(ctx, u, opts)
	elapsed := time.Since(start)
	s.logger.LogExtraction(u, false, elapsed, err)
	if err != nil {
		metrics.RecordExtraction("failure", elapsed.Seconds())
		metrics.RecordError("service", "extraction")
		tracing.LogError(span, err)
		return nil, err
	}
	metrics.RecordExtraction("success", elapsed.Seconds())

	if s.cache != nil {
		if err := s.cache.SetExtraction(ctx, key, data, s.cacheTTL); err != nil {
			s.logger.WithError(err).Warn("Failed to cache extraction")
		}
	}
	return data, nil
}

// Video resolves rawURL into a playable video. Sources that already
// carry a manifest are passed through; otherwise a manifest is assembled
// from the formats according to the current settings and opts.
func (s *Service) Video(ctx context.Context, rawURL string, opts VideoOptions) (*models.Video, error) {
	span, ctx := tracing.StartSpan(ctx, tracing.OpVideo)
	defer tracing.FinishSpan(span)

	u := unquote(rawURL)
	log := s.logger.WithURL(u)
	log.Info("Resolving video")

	data, err := s.extract(ctx, u, s.extractOpts)
	if err != nil {
		tracing.LogError(span, err)
		return nil, fmt.Errorf("failed to extract %s: %w", u, err)
	}

	info, err := models.ParseVideoInfo(data)
	if err != nil {
		tracing.LogError(span, err)
		metrics.RecordError("service", "parse")
		return nil, fmt.Errorf("%w: %v", ErrInvalidInfo, err)
	}
	if info.Skipped > 0 {
		log.WithField("skipped", info.Skipped).Warn("Skipped undecodable records")
	}

	snap := s.settings.Snapshot()
	video := models.NewVideo(info)

	subtitles := info.Subtitles
	if len(subtitles) == 0 && (opts.Captions || snap.Captions) {
		subtitles = info.AutomaticCaptions
	}

	result := &models.VideoRequest{
		RequestURL: u,
		VideoID:    info.ID,
		Title:      info.FullTitle,
	}

	if video.HasManifest() {
		video.ManifestType = models.ManifestTypeHLS
		video.MimeType = ""
		result.Passthrough = true
	} else {
		p := snap.Policy(opts.Exclude, opts.FPS)
		if err := s.assemble(ctx, video, info, subtitles, snap, p, result); err != nil {
			tracing.LogError(span, err)
			return nil, err
		}
	}
	result.ManifestType = video.ManifestType

	tracing.SetTag(span, "video_id", video.VideoID)
	tracing.SetTag(span, "manifest_type", video.ManifestType)
	tracing.SetTag(span, "passthrough", result.Passthrough)
	metrics.RecordVideoResolved(video.ManifestType, result.Passthrough)

	s.announce(ctx, video, result)

	log.WithVideoID(video.VideoID).
		WithFields(map[string]interface{}{
			"manifest_type": video.ManifestType,
			"passthrough":   result.Passthrough,
			"streams":       result.StreamCount,
		}).
		Info("Resolved video")

	return video, nil
}

// assemble builds and renders a manifest for video according to the
// settings' manifest type
func (s *Service) assemble(ctx context.Context, video *models.Video, info *models.RawVideoInfo, subtitles []models.RawSubtitle, snap *policy.Snapshot, p policy.Policy, result *models.VideoRequest) error {
	span, ctx := tracing.StartSpan(ctx, tracing.OpAssemble)
	defer tracing.FinishSpan(span)

	var report *manifest.Report
	var render func(context.Context) (string, error)

	switch snap.ManifestType {
	case models.ManifestTypeHLS:
		video.ManifestType = models.ManifestTypeHLS
		video.MimeType = models.MimeTypeHLS

		var pl *models.VariantPlaylist
		pl, report = manifest.AssembleVariant(info.Formats, subtitles, s.namer)
		if len(pl.Streams) > 0 {
			render = func(ctx context.Context) (string, error) { return s.renderer.RenderHLS(ctx, pl) }
		}

	default:
		video.ManifestType = models.ManifestTypeMPD
		video.MimeType = models.MimeTypeDASH

		var m *models.SegmentedManifest
		m, report = manifest.AssembleSegmented(info.Duration, info.Formats, subtitles, manifest.SegmentedOptionsFrom(snap, p))
		if m != nil {
			render = func(ctx context.Context) (string, error) { return s.renderer.RenderDASH(ctx, m.Duration, m.Streams) }
		}
	}

	result.StreamCount = report.TotalEmitted()
	result.DroppedCount = report.TotalDropped()

	tracing.SetTag(span, "mode", string(report.Mode))
	tracing.TagCounts(span, "emitted", report.Emitted)
	tracing.TagCounts(span, "dropped", report.Dropped)
	metrics.RecordAssembly(string(report.Mode), report.Emitted, report.Dropped)
	s.logger.LogAssembly(string(report.Mode), report.Considered, stringCounts(report.Emitted), stringCounts(report.Dropped))

	if render == nil {
		s.logger.WithURL(result.RequestURL).Warn("No playable streams")
		return nil
	}

	renderSpan, renderCtx := tracing.StartSpan(ctx, tracing.OpRender)
	defer tracing.FinishSpan(renderSpan)

	start := time.Now()
	u, err := render(renderCtx)
	metrics.RecordRender(video.ManifestType, time.Since(start).Seconds())
	if err != nil {
		tracing.LogError(renderSpan, err)
		metrics.RecordError("service", "render")
		return fmt.Errorf("failed to render manifest: %w", err)
	}
	video.URL = u
	return nil
}

func stringCounts[K ~string](counts map[K]int) map[string]int {
	out := make(map[string]int, len(counts))
	for k, v := range counts {
		out[string(k)] = v
	}
	return out
}

// announce records and publishes a resolved video. Failures are logged
// only; the caller already has its answer.
func (s *Service) announce(ctx context.Context, video *models.Video, result *models.VideoRequest) {
	if s.history != nil {
		if err := s.history.RecordVideoRequest(ctx, result); err != nil {
			metrics.RecordError("service", "history")
			s.logger.WithError(err).Warn("Failed to record video request")
		}
	}

	if s.publisher != nil {
		event := &models.VideoEvent{
			Event:        models.EventVideoResolved,
			RequestURL:   result.RequestURL,
			VideoID:      video.VideoID,
			Title:        video.Title,
			ManifestType: video.ManifestType,
			ManifestURL:  video.URL,
			Passthrough:  result.Passthrough,
			StreamCount:  result.StreamCount,
			DroppedCount: result.DroppedCount,
			Timestamp:    time.Now().UTC(),
		}
		if err := s.publisher.PublishVideoEvent(ctx, event); err != nil {
			metrics.RecordError("service", "publish")
			s.logger.WithError(err).Warn("Failed to publish video event")
		}
	}
}

// Extract returns the engine's info document for rawURL as a generic map
func (s *Service) Extract(ctx context.Context, rawURL string, opts extractor.Options) (map[string]any, error) {
	span, ctx := tracing.StartSpan(ctx, tracing.OpExtract)
	defer tracing.FinishSpan(span)

	u := unquote(rawURL)
	s.logger.WithURL(u).Info("Extracting")

	data, err := s.extract(ctx, u, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to extract %s: %w", u, err)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInfo, err)
	}
	return doc, nil
}
