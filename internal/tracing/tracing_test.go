package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/mocktracer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withMockTracer(t *testing.T) *mocktracer.MockTracer {
	t.Helper()
	previous := opentracing.GlobalTracer()
	tracer := mocktracer.New()
	opentracing.SetGlobalTracer(tracer)
	t.Cleanup(func() { opentracing.SetGlobalTracer(previous) })
	return tracer
}

func TestInitTracerDisabled(t *testing.T) {
	tracer, closer, err := InitTracer(Config{Enabled: false})
	require.NoError(t, err)
	assert.IsType(t, opentracing.NoopTracer{}, tracer)
	assert.NoError(t, closer.Close())
}

func TestSpans(t *testing.T) {
	tracer := withMockTracer(t)

	span, ctx := StartSpan(context.Background(), OpVideo)
	child, _ := StartSpan(ctx, OpAssemble)
	SetTag(child, "mode", "segmented")
	TagCounts(child, "emitted", map[string]int{"video": 2, "": 1})
	LogError(child, errors.New("boom"))
	FinishSpan(child)
	FinishSpan(span)
	FinishSpan(nil)

	spans := tracer.FinishedSpans()
	require.Len(t, spans, 2)

	assembled := spans[0]
	assert.Equal(t, OpAssemble, assembled.OperationName)
	assert.Equal(t, "segmented", assembled.Tag("mode"))
	assert.Equal(t, 2, assembled.Tag("emitted.video"))
	assert.Nil(t, assembled.Tag("emitted."))
	assert.Equal(t, true, assembled.Tag("error"))
	assert.Equal(t, span.Context().(mocktracer.MockSpanContext).SpanID, assembled.ParentID)
}
