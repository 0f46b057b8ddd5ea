package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/mudra/internal/morph"
)

func TestLoad_DefaultValues(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "web", cfg.Server.StaticDir)
	assert.Equal(t, "0", cfg.Camera.Source)
	assert.True(t, cfg.Camera.Mirror)
	assert.Equal(t, 2, cfg.Detector.MaxHands)
	assert.InDelta(t, 0.5, cfg.Detector.MinConfidence, 1e-12)
	assert.InDelta(t, 0.5, cfg.Detector.MinTrackingConf, 1e-12)
	assert.Equal(t, SignalCamera, cfg.Signal.Source)
	assert.Equal(t, 60, cfg.Render.FPS)
	assert.Equal(t, 8000, cfg.Particles.Count)
	assert.Equal(t, "sphere", cfg.Particles.Shape)
	assert.Equal(t, "#00FFFF", cfg.Particles.Color)
	assert.Equal(t, 300*time.Millisecond, cfg.Debounce.Confirm)
	assert.Equal(t, time.Second, cfg.Debounce.Release)
	assert.Equal(t, morph.DefaultTunables(), cfg.Morph)
	assert.Equal(t, "data/mudra.db", cfg.Store.Path)
	assert.Equal(t, "plugins", cfg.Hooks.Dir)
	assert.Equal(t, 5*time.Second, cfg.Hooks.Timeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.False(t, cfg.Tray.Enabled)
}

func TestLoad_WithValidConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mudra.yaml")
	content := `
server:
  addr: "127.0.0.1:9000"
particles:
  count: 1200
  shape: heart
  color: "#FF69B4"
debounce:
  confirm: 150ms
morph:
  burstGain: 40
  rippleRings: 5
log:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, 1200, cfg.Particles.Count)
	assert.Equal(t, "heart", cfg.Particles.Shape)
	assert.Equal(t, "#FF69B4", cfg.Particles.Color)
	assert.Equal(t, 150*time.Millisecond, cfg.Debounce.Confirm)
	assert.Equal(t, time.Second, cfg.Debounce.Release)
	assert.InDelta(t, 40.0, cfg.Morph.BurstGain, 1e-12)
	assert.Equal(t, 5, cfg.Morph.RippleRings)
	assert.InDelta(t, morph.DefaultTunables().PhaseGain, cfg.Morph.PhaseGain, 1e-12, "untouched tunables keep defaults")
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("MUDRA_SERVER_ADDR", ":7070")
	t.Setenv("MUDRA_PARTICLES_COUNT", "500")
	t.Setenv("MUDRA_SIGNAL_SOURCE", "remote")
	t.Setenv("MUDRA_MORPH_SHOCKWAVESPEED", "20")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, 500, cfg.Particles.Count)
	assert.Equal(t, SignalRemote, cfg.Signal.Source)
	assert.InDelta(t, 20.0, cfg.Morph.ShockwaveSpeed, 1e-12)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/mudra.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "zero fps", mutate: func(c *Config) { c.Render.FPS = 0 }},
		{name: "no particles", mutate: func(c *Config) { c.Particles.Count = 0 }},
		{name: "unknown shape", mutate: func(c *Config) { c.Particles.Shape = "cube" }},
		{name: "bad color", mutate: func(c *Config) { c.Particles.Color = "red" }},
		{name: "bad signal", mutate: func(c *Config) { c.Signal.Source = "telepathy" }},
		{name: "no hands", mutate: func(c *Config) { c.Detector.MaxHands = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("")
			require.NoError(t, err)

			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}
