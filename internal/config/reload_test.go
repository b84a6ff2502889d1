package config

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/therealutkarshpriyadarshi/ytmanifest/internal/logging"
	"github.com/therealutkarshpriyadarshi/ytmanifest/internal/policy"
)

func TestHolderApply(t *testing.T) {
	h := NewHolder(policy.Settings{
		FpsLimit:      30,
		ExcludeCodecs: []string{"vp09", "bogus"},
	}, "", logging.NewNop())

	snap := h.Snapshot()
	require.NotNil(t, snap)
	assert.Equal(t, 30, snap.FpsLimit)
	assert.Equal(t, []string{"vp09"}, snap.ExcludeFamilies)
	assert.Equal(t, []string{"vp09", "vp9"}, snap.Exclude)

	next := h.Apply(policy.Settings{FpsLimit: 45})
	assert.Equal(t, 0, next.FpsLimit)
	assert.Same(t, next, h.Snapshot())

	// earlier readers keep what they had
	assert.Equal(t, 30, snap.FpsLimit)
}

func TestHolderReload(t *testing.T) {
	path := writeConfig(t, "settings:\n  fpsLimit: 30\n")
	h := NewHolder(policy.DefaultSettings(), path, logging.NewNop())
	assert.Equal(t, 0, h.Snapshot().FpsLimit)

	require.NoError(t, h.Reload(context.Background()))
	assert.Equal(t, 30, h.Snapshot().FpsLimit)

	before := h.Snapshot()
	h.load = func(string) (policy.Settings, error) { return policy.Settings{}, errors.New("broken yaml") }
	assert.Error(t, h.Reload(context.Background()))
	assert.Same(t, before, h.Snapshot())
}

func TestHolderReloadWithoutFile(t *testing.T) {
	h := NewHolder(policy.DefaultSettings(), "", nil)
	assert.Error(t, h.Reload(context.Background()))
	assert.NoError(t, h.Watch(context.Background()))
}

func TestHolderWatch(t *testing.T) {
	path := writeConfig(t, "settings:\n  fpsLimit: 0\n")
	h := NewHolder(policy.DefaultSettings(), path, logging.NewNop())
	h.debounce = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, h.Watch(ctx))
	defer h.Stop()

	require.NoError(t, os.WriteFile(path, []byte("settings:\n  fpsLimit: 30\n  manifestType: hls\n"), 0644))

	assert.Eventually(t, func() bool {
		snap := h.Snapshot()
		return snap.FpsLimit == 30 && snap.ManifestType == "hls"
	}, 5*time.Second, 20*time.Millisecond)
}
