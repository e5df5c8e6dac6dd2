package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "xplane", cfg.Sim.Provider)
	require.Equal(t, time.Second, cfg.Sampler.Interval.Std())
	require.True(t, cfg.Sampler.Adaptive)

	// First run writes the defaults to disk.
	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
sim:
  provider: mock
sampler:
  interval: 250ms
phase:
  category: airliner
  departure:
    lat: 51.68
    lon: 14.42
    heading: 270
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "mock", cfg.Sim.Provider)
	require.Equal(t, 250*time.Millisecond, cfg.Sampler.Interval.Std())
	require.Equal(t, "airliner", cfg.Phase.Category)
	require.True(t, cfg.Phase.Departure.IsSet())
	require.False(t, cfg.Phase.Arrival.IsSet())

	// Untouched sections keep their defaults.
	require.Equal(t, "localhost:1930", cfg.Server.Address)
	require.Equal(t, 49000, cfg.Sim.XPlane.Port)
}

func TestLoadEnvHostFallback(t *testing.T) {
	t.Setenv("XPLANE_HOST", "10.0.0.5")

	// First run: no file yet, env still applies.
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	require.Equal(t, "10.0.0.5", cfg.Sim.XPlane.Host)

	// The created file keeps the default host, not the env override.
	path := filepath.Join(t.TempDir(), "config.yaml")
	_, err = Load(path)
	require.NoError(t, err)
	cfg, err = Load(path)
	require.NoError(t, err)
	require.Equal(t, "10.0.0.5", cfg.Sim.XPlane.Host)
}

func TestLoadEnvHostDoesNotOverrideExplicit(t *testing.T) {
	t.Setenv("XPLANE_HOST", "10.0.0.5")
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
sim:
  xplane:
    host: 192.168.1.20
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "192.168.1.20", cfg.Sim.XPlane.Host)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sim: [broken"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	cfg.Server.Address = "0.0.0.0:8080"
	cfg.Recorder.Enabled = false

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0:8080", loaded.Server.Address)
	require.False(t, loaded.Recorder.Enabled)
}
