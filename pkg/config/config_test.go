package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SafeField/FieldGate/pkg/threat"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, threat.DefaultParams(), cfg.Scoring)
	assert.Equal(t, "log", cfg.Events.Exporter)
	assert.Equal(t, 2, cfg.Events.Workers)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	content := `
log_level: debug
scoring:
  safe_threshold: 80
events:
  exporter: kafka
  workers: 4
  settings:
    host: localhost
    port: "9092"
    topic: security-events
fields:
  plainText:
    max_length: 500
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fieldgate.yaml"), []byte(content), 0o644))
	chdir(t, dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 80, cfg.Scoring.SafeThreshold)
	// Unset scoring weights keep their defaults.
	assert.Equal(t, threat.DefaultParams().CriticalWeight, cfg.Scoring.CriticalWeight)
	assert.Equal(t, "kafka", cfg.Events.Exporter)
	assert.Equal(t, 4, cfg.Events.Workers)
	assert.Equal(t, "security-events", cfg.Events.Settings["topic"])
	// viper lowercases map keys.
	require.Contains(t, cfg.Fields, "plaintext")
	assert.Equal(t, 500, cfg.Fields["plaintext"]["max_length"])
}

func TestLoad_InvalidThreshold(t *testing.T) {
	dir := t.TempDir()
	content := `
scoring:
  safe_threshold: 150
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fieldgate.yaml"), []byte(content), 0o644))
	chdir(t, dir)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "safe_threshold")
}

func TestLoad_InvalidExporter(t *testing.T) {
	dir := t.TempDir()
	content := `
events:
  exporter: carrier-pigeon
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fieldgate.yaml"), []byte(content), 0o644))
	chdir(t, dir)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exporter")
}

func TestLoad_EnvOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("FIELDGATE_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
}
