package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  host: "127.0.0.1"

extractor:
  timeout: 10s
  extraArgs: ["--socket-timeout", "5"]

settings:
  captions: true
  fpsLimit: 30
  excludeCodecs: ["vp9", "av01"]
  fpsHint: float
  preferredHeight: 720
  manifestType: hls

database:
  host: "testdb"
  port: 5432
  user: "testuser"
  password: "testpass"
  dbname: "testdb"

webhooks:
  urls: ["https://hooks.example.com/ytmanifest"]
  secret: s3cret
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 10*time.Second, cfg.Extractor.Timeout)
	assert.Equal(t, []string{"--socket-timeout", "5"}, cfg.Extractor.ExtraArgs)
	assert.Equal(t, "testdb", cfg.Database.Host)
	assert.Equal(t, []string{"https://hooks.example.com/ytmanifest"}, cfg.Webhooks.URLs)
	assert.Equal(t, "s3cret", cfg.Webhooks.Secret)
	assert.Equal(t, 3, cfg.Webhooks.Retries)

	assert.True(t, cfg.Settings.Captions)
	assert.Equal(t, 30, cfg.Settings.FpsLimit)
	assert.Equal(t, []string{"vp9", "av01"}, cfg.Settings.ExcludeCodecs)
	assert.Equal(t, "float", cfg.Settings.FpsHint)
	assert.Equal(t, 720, cfg.Settings.PreferredHeight)
	assert.Equal(t, "hls", cfg.Settings.ManifestType)

	// defaults fill the rest
	assert.Equal(t, "adaptive", cfg.Settings.InputStream)
	assert.Equal(t, ManifestStoreFile, cfg.Manifest.Store)
	assert.Equal(t, 6*time.Hour, cfg.Manifest.TTL)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
}

func TestLoadDefaultsOnly(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "yt-dlp", cfg.Extractor.Path)
	assert.Equal(t, 45*time.Second, cfg.Extractor.Timeout)
	assert.Equal(t, "mpd", cfg.Settings.ManifestType)
	assert.Equal(t, "int", cfg.Settings.FpsHint)
	assert.Equal(t, 1080, cfg.Settings.PreferredHeight)
	assert.False(t, cfg.Redis.Enabled)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Empty(t, cfg.Webhooks.URLs)
	assert.Equal(t, time.Second, cfg.Webhooks.Backoff)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("YTMANIFEST_SERVER_PORT", "7070")
	t.Setenv("YTMANIFEST_SETTINGS_FPSLIMIT", "30")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, 30, cfg.Settings.FpsLimit)
}

func TestLoadNonExistentFile(t *testing.T) {
	_, err := Load("nonexistent.yaml")
	assert.Error(t, err)
}

func TestLoadSettings(t *testing.T) {
	path := writeConfig(t, "settings:\n  excludeCodecs: [opus]\n")

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"opus"}, s.ExcludeCodecs)
	assert.Equal(t, "mpd", s.ManifestType)
}
