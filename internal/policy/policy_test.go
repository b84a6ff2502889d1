package policy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/therealutkarshpriyadarshi/ytmanifest/pkg/models"
)

func TestPolicyIsExcluded(t *testing.T) {
	p := New([]string{"av01", " vp9 ", ""}, 0)

	tests := []struct {
		codec    string
		expected bool
	}{
		{"av01.0.05M.08", true},
		{"vp9", true},
		{"vp09.00.40.08", false},
		{"avc1.4d401f", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.codec, func(t *testing.T) {
			assert.Equal(t, tt.expected, p.IsExcluded(tt.codec))
		})
	}

	assert.Equal(t, []string{"av01", "vp9"}, p.Exclude())
}

func TestPolicyWithinFpsCap(t *testing.T) {
	unlimited := New(nil, 0)
	assert.True(t, unlimited.WithinFpsCap(120))

	capped := New(nil, 30)
	assert.True(t, capped.WithinFpsCap(24))
	assert.True(t, capped.WithinFpsCap(30))
	assert.False(t, capped.WithinFpsCap(60))

	negative := New(nil, -5)
	assert.Equal(t, 0, negative.FpsLimit())
}

func TestFrameRate(t *testing.T) {
	assert.Equal(t, "30", FrameRate(FpsHintInt, 30))
	assert.Equal(t, "29.97", FrameRate(FpsHintFloat, 29.97))
	assert.Equal(t, "60000/1001", FrameRate(FpsHintFraction, 60))
	assert.Equal(t, "15", FrameRate(FpsHintFraction, 15))
	assert.Equal(t, "24", FrameRate("unknown", 24))
}

func TestIsPreferredSize(t *testing.T) {
	assert.True(t, IsPreferredSize(1920, 1080, 1080))
	assert.True(t, IsPreferredSize(1920, 800, 1080))
	assert.False(t, IsPreferredSize(1280, 720, 1080))
	assert.False(t, IsPreferredSize(1920, 1080, 0))
	assert.True(t, IsPreferredSize(1000, 555, 555))
}

func TestResolveFamilies(t *testing.T) {
	families, names, labels, err := ResolveFamilies([]string{"vp09", "av01", "vp09"})
	require.NoError(t, err)
	assert.Equal(t, []string{"vp09", "av01"}, families)
	assert.Equal(t, []string{"vp09", "vp9", "av01"}, names)
	assert.Equal(t, []string{"VP9", "AV1"}, labels)

	_, names, _, err = ResolveFamilies([]string{"h265", "opus"})
	assert.ErrorIs(t, err, ErrUnknownCodecFamily)
	assert.Equal(t, []string{"opus"}, names)
}

func TestNewSnapshot(t *testing.T) {
	snap, err := NewSnapshot(Settings{
		Captions:      true,
		FpsLimit:      30,
		ExcludeCodecs: []string{"av01"},
	})
	require.NoError(t, err)

	assert.True(t, snap.Captions)
	assert.Equal(t, "30 fps", snap.FpsLimitLabel)
	assert.Equal(t, []string{"av01"}, snap.Exclude)
	assert.Equal(t, FpsHintInt, snap.FpsHint)
	assert.Equal(t, InputStreamAdaptive, snap.InputStream)
	assert.Equal(t, models.ManifestTypeMPD, snap.ManifestType)
}

func TestNewSnapshotToleratesUnknownValues(t *testing.T) {
	snap, err := NewSnapshot(Settings{
		FpsLimit:      45,
		ExcludeCodecs: []string{"h266", "av01"},
		FpsHint:       "bogus",
		ManifestType:  "smooth",
	})
	require.Error(t, err)
	require.NotNil(t, snap)

	assert.True(t, errors.Is(err, ErrUnknownFpsLimit))
	assert.True(t, errors.Is(err, ErrUnknownCodecFamily))
	assert.True(t, errors.Is(err, ErrUnknownFpsHint))
	assert.True(t, errors.Is(err, ErrUnknownManifest))

	assert.Equal(t, 0, snap.FpsLimit)
	assert.Equal(t, "Unlimited", snap.FpsLimitLabel)
	assert.Equal(t, []string{"av01"}, snap.Exclude)
	assert.Equal(t, FpsHintInt, snap.FpsHint)
	assert.Equal(t, models.ManifestTypeMPD, snap.ManifestType)
}

func TestSnapshotPolicyOverrides(t *testing.T) {
	snap, err := NewSnapshot(Settings{FpsLimit: 30, ExcludeCodecs: []string{"vp09"}})
	require.NoError(t, err)

	configured := snap.Policy(nil, 0)
	assert.True(t, configured.IsExcluded("vp9"))
	assert.Equal(t, 30, configured.FpsLimit())

	overridden := snap.Policy([]string{"av01"}, 60)
	assert.False(t, overridden.IsExcluded("vp9"))
	assert.True(t, overridden.IsExcluded("av01.0.08M.08"))
	assert.Equal(t, 60, overridden.FpsLimit())
}
