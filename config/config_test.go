package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("research:\n  query: test\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.Research.Query)
	assert.Equal(t, "1080x1920", cfg.Video.Resolution)
	assert.Equal(t, 30, cfg.Video.FPS)
	assert.Equal(t, 8.0, cfg.Video.MaxSceneSec)
	assert.Equal(t, 0.5, cfg.Video.PauseThresholdSec)
	assert.Equal(t, 1.0, cfg.Video.TrailingBufferSec)
	assert.Equal(t, 30.0, cfg.Video.AlternationSec)
	assert.Equal(t, 0.22, cfg.Video.MusicVolume)
	assert.Equal(t, 4, cfg.Video.CacheWorkers)
	assert.Equal(t, 3, cfg.Illustrations.Concurrency)
}

func TestLoadKeepsExplicitValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
video:
  fps: 60
  max_scene_sec: 5.5
  pause_threshold_sec: 0.3
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 60, cfg.Video.FPS)
	assert.Equal(t, 5.5, cfg.Video.MaxSceneSec)
	assert.Equal(t, 0.3, cfg.Video.PauseThresholdSec)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestFrameSize(t *testing.T) {
	v := VideoConfig{Resolution: "1080x1920"}
	w, h, err := v.FrameSize()
	require.NoError(t, err)
	assert.Equal(t, 1080, w)
	assert.Equal(t, 1920, h)

	for _, bad := range []string{"", "1080", "ax b", "1080x"} {
		v.Resolution = bad
		_, _, err := v.FrameSize()
		assert.Error(t, err, "resolution %q", bad)
	}
}
