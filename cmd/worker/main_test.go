package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/therealutkarshpriyadarshi/ytmanifest/internal/logging"
	"github.com/therealutkarshpriyadarshi/ytmanifest/pkg/models"
)

type fakeRecorder struct {
	recorded []*models.VideoRequest
	err      error
}

func (f *fakeRecorder) RecordVideoRequest(ctx context.Context, req *models.VideoRequest) error {
	if f.err != nil {
		return f.err
	}
	f.recorded = append(f.recorded, req)
	return nil
}

type fakeNotifier struct {
	events []*models.VideoEvent
	err    error
}

func (f *fakeNotifier) Notify(ctx context.Context, event *models.VideoEvent) error {
	f.events = append(f.events, event)
	return f.err
}

func TestEventHandler(t *testing.T) {
	rec := &fakeRecorder{}
	handle := eventHandler(context.Background(), rec, nil, logging.NewNop())

	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, handle(&models.VideoEvent{
		Event:        models.EventVideoResolved,
		RequestURL:   "https://example.com/v",
		VideoID:      "v",
		Title:        "Example",
		ManifestType: models.ManifestTypeMPD,
		StreamCount:  4,
		DroppedCount: 2,
		Timestamp:    ts,
	}))

	require.Len(t, rec.recorded, 1)
	req := rec.recorded[0]
	assert.Equal(t, "https://example.com/v", req.RequestURL)
	assert.Equal(t, "Example", req.Title)
	assert.Equal(t, 4, req.StreamCount)
	assert.Equal(t, 2, req.DroppedCount)
	assert.Equal(t, ts, req.CreatedAt)
}

func TestEventHandlerIgnoresOtherEvents(t *testing.T) {
	rec := &fakeRecorder{}
	handle := eventHandler(context.Background(), rec, nil, logging.NewNop())

	require.NoError(t, handle(&models.VideoEvent{Event: "video.unknown"}))
	assert.Empty(t, rec.recorded)
}

func TestEventHandlerError(t *testing.T) {
	rec := &fakeRecorder{err: errors.New("db down")}
	handle := eventHandler(context.Background(), rec, nil, logging.NewNop())

	err := handle(&models.VideoEvent{Event: models.EventVideoResolved})
	assert.ErrorContains(t, err, "db down")
}

func TestEventHandlerNotifies(t *testing.T) {
	rec := &fakeRecorder{}
	notifier := &fakeNotifier{err: errors.New("endpoint down")}
	handle := eventHandler(context.Background(), rec, notifier, logging.NewNop())

	event := &models.VideoEvent{Event: models.EventVideoResolved, VideoID: "v"}
	require.NoError(t, handle(event))
	assert.Len(t, rec.recorded, 1)
	require.Len(t, notifier.events, 1)
	assert.Equal(t, "v", notifier.events[0].VideoID)

	// nothing is sent when recording fails
	rec.err = errors.New("db down")
	assert.Error(t, handle(event))
	assert.Len(t, notifier.events, 1)
}
