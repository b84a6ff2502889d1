package config

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/therealutkarshpriyadarshi/ytmanifest/internal/logging"
	"github.com/therealutkarshpriyadarshi/ytmanifest/internal/metrics"
	"github.com/therealutkarshpriyadarshi/ytmanifest/internal/policy"
)

const defaultDebounce = 500 * time.Millisecond

// Holder owns the active settings snapshot. Readers get the snapshot that
// was current when they asked; reloads publish a new one.
type Holder struct {
	current  atomic.Pointer[policy.Snapshot]
	path     string
	load     func(string) (policy.Settings, error)
	logger   *logging.Logger
	debounce time.Duration

	watchMu sync.Mutex
	watcher *fsnotify.Watcher
}

// NewHolder creates a holder with initial settings. path is the config
// file reloads read from; it may be empty.
func NewHolder(initial policy.Settings, path string, logger *logging.Logger) *Holder {
	if logger == nil {
		logger = logging.NewNop()
	}
	if path != "" {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}
	h := &Holder{
		path:     path,
		load:     LoadSettings,
		logger:   logger.WithComponent("settings"),
		debounce: defaultDebounce,
	}
	h.Apply(initial)
	return h
}

// Snapshot returns the current settings snapshot
func (h *Holder) Snapshot() *policy.Snapshot {
	return h.current.Load()
}

// Apply resolves settings and publishes the result. Unknown values are
// logged and replaced, never rejected.
func (h *Holder) Apply(s policy.Settings) *policy.Snapshot {
	snap, err := policy.NewSnapshot(s)
	if err != nil {
		h.logger.WithError(err).Warn("Settings contain unknown values")
	}

	h.current.Store(snap)
	h.logger.LogSettings(snap.Captions, snap.FpsLimitLabel, snap.ExcludeLabels, snap.FpsHint, snap.ManifestType)

	return snap
}

// Reload re-reads the settings from the config file. A file that cannot
// be read leaves the current snapshot in place.
func (h *Holder) Reload(_ context.Context) error {
	if h.path == "" {
		return errors.New("no settings file configured")
	}

	s, err := h.load(h.path)
	if err != nil {
		metrics.RecordSettingsReload("failure")
		h.logger.ErrorWithErr("Failed to reload settings", err)
		return fmt.Errorf("reload settings: %w", err)
	}

	h.Apply(s)
	metrics.RecordSettingsReload("success")
	return nil
}

// Watch reloads settings whenever the config file changes, until ctx is
// done. The containing directory is watched so that editors replacing
// the file are noticed too.
func (h *Holder) Watch(ctx context.Context) error {
	if h.path == "" {
		h.logger.Info("Settings watcher disabled (no config file)")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	if err := watcher.Add(filepath.Dir(h.path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch settings file: %w", err)
	}

	h.watchMu.Lock()
	h.watcher = watcher
	h.watchMu.Unlock()

	h.logger.WithField("path", h.path).Info("Watching settings file")

	go h.watchLoop(ctx, watcher)
	return nil
}

func (h *Holder) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		_ = watcher.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != h.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(h.debounce, func() {
				_ = h.Reload(ctx)
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			h.logger.ErrorWithErr("Settings watcher error", err)
		}
	}
}

// Stop stops the watcher, if running
func (h *Holder) Stop() {
	h.watchMu.Lock()
	defer h.watchMu.Unlock()
	if h.watcher != nil {
		_ = h.watcher.Close()
		h.watcher = nil
	}
}
