package render

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/therealutkarshpriyadarshi/ytmanifest/pkg/models"
)

// Renderer renders manifests and stores them under fresh names
type Renderer struct {
	store  Store
	logger zerolog.Logger
	newID  func() string
}

// NewRenderer creates a renderer backed by store
func NewRenderer(store Store, logger zerolog.Logger) *Renderer {
	return &Renderer{
		store:  store,
		logger: logger,
		newID:  func() string { return uuid.New().String() },
	}
}

// RenderDASH renders segmented streams as an MPD and returns its URL
func (r *Renderer) RenderDASH(ctx context.Context, duration float64, streams []models.StreamDescriptor) (string, error) {
	body, err := BuildMPD(duration, streams)
	if err != nil {
		return "", err
	}

	name := r.newID() + ".mpd"
	u, err := r.store.Put(ctx, name, ContentTypeMPD, body)
	if err != nil {
		return "", fmt.Errorf("failed to store MPD: %w", err)
	}

	r.logger.Debug().
		Str("name", name).
		Int("streams", len(streams)).
		Msg("Rendered MPD")

	return u, nil
}

// RenderHLS renders a variant playlist as a master playlist and returns
// its URL. Parser complaints are logged, not returned.
func (r *Renderer) RenderHLS(ctx context.Context, pl *models.VariantPlaylist) (string, error) {
	body := BuildMasterPlaylist(pl)

	if len(pl.Streams) > 0 {
		if n, err := ValidateMasterPlaylist(body); err != nil {
			r.logger.Warn().Err(err).Msg("Master playlist did not validate")
		} else if n != len(pl.Streams) {
			r.logger.Warn().
				Int("expected", len(pl.Streams)).
				Int("parsed", n).
				Msg("Master playlist variant count mismatch")
		}
	}

	name := r.newID() + ".m3u8"
	u, err := r.store.Put(ctx, name, ContentTypeM3U, body)
	if err != nil {
		return "", fmt.Errorf("failed to store master playlist: %w", err)
	}

	r.logger.Debug().
		Str("name", name).
		Int("variants", len(pl.Streams)).
		Msg("Rendered master playlist")

	return u, nil
}
