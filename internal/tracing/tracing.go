package tracing

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"github.com/uber/jaeger-client-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"
)

// Span operation names
const (
	OpVideo    = "video.resolve"
	OpExtract  = "video.extract"
	OpAssemble = "manifest.assemble"
	OpRender   = "manifest.render"
)

// Config configures the tracer
type Config struct {
	Enabled      bool
	ServiceName  string
	Endpoint     string
	SamplerParam float64
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// InitTracer initializes the Jaeger tracer. When tracing is disabled the
// global tracer stays a no-op.
func InitTracer(cfg Config) (opentracing.Tracer, io.Closer, error) {
	if !cfg.Enabled {
		return opentracing.NoopTracer{}, nopCloser{}, nil
	}

	param := cfg.SamplerParam
	if param <= 0 {
		param = 1
	}

	jc := &jaegercfg.Configuration{
		ServiceName: cfg.ServiceName,
		Sampler: &jaegercfg.SamplerConfig{
			Type:  jaeger.SamplerTypeProbabilistic,
			Param: param,
		},
		Reporter: &jaegercfg.ReporterConfig{
			LogSpans:            false,
			CollectorEndpoint:   cfg.Endpoint,
			BufferFlushInterval: time.Second,
		},
	}
	if param >= 1 {
		jc.Sampler.Type = jaeger.SamplerTypeConst
		jc.Sampler.Param = 1
	}

	tracer, closer, err := jc.NewTracer()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize tracer: %w", err)
	}

	opentracing.SetGlobalTracer(tracer)
	return tracer, closer, nil
}

// StartSpan starts a new span with the given operation name
func StartSpan(ctx context.Context, operationName string) (opentracing.Span, context.Context) {
	span, ctx := opentracing.StartSpanFromContext(ctx, operationName)
	return span, ctx
}

// FinishSpan finishes a span
func FinishSpan(span opentracing.Span) {
	if span != nil {
		span.Finish()
	}
}

// LogError logs an error to the span
func LogError(span opentracing.Span, err error) {
	if span != nil && err != nil {
		ext.Error.Set(span, true)
		span.LogKV("error", err.Error())
	}
}

// SetTag sets a tag on the span
func SetTag(span opentracing.Span, key string, value interface{}) {
	if span != nil {
		span.SetTag(key, value)
	}
}

// TagCounts sets one tag per entry of counts, prefixed with prefix
func TagCounts[K ~string](span opentracing.Span, prefix string, counts map[K]int) {
	if span == nil {
		return
	}
	for k, v := range counts {
		if k == "" {
			continue
		}
		span.SetTag(prefix+"."+string(k), v)
	}
}
