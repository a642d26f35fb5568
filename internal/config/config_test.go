package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load("", env.Options{Environment: map[string]string{}})
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_YAMLOverlay(t *testing.T) {
	path := writeFile(t, "missions.yaml", `
log:
  level: debug
http:
  addr: "127.0.0.1:9090"
  shutdown_timeout: 2s
metrics:
  enabled: "false"
events:
  redis_addr: localhost:6379
`)

	cfg, err := load(path, env.Options{Environment: map[string]string{}})
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "127.0.0.1:9090", cfg.HTTP.Addr)
	assert.Equal(t, 2*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.True(t, cfg.HTTP.CORS, "unset keys keep defaults")
	assert.False(t, cfg.Metrics.Enabled, "weakly typed bool")
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, "localhost:6379", cfg.Events.RedisAddr)
	assert.Equal(t, "missions:events", cfg.Events.Channel)
}

func TestLoad_JSONFile(t *testing.T) {
	path := writeFile(t, "missions.json", `{"http": {"addr": ":7070"}, "events": {"redis_db": 3}}`)

	cfg, err := load(path, env.Options{Environment: map[string]string{}})
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.HTTP.Addr)
	assert.Equal(t, 3, cfg.Events.RedisDB)
}

func TestLoad_EnvWinsOverFile(t *testing.T) {
	path := writeFile(t, "missions.yaml", "log:\n  level: debug\n")

	cfg, err := load(path, env.Options{Environment: map[string]string{
		"MISSIONS_LOG_LEVEL":       "error",
		"MISSIONS_METRICS_ENABLED": "false",
		"MISSIONS_EVENTS_CHANNEL":  "ops:missions",
	}})
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, "ops:missions", cfg.Events.Channel)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
}

func TestLoad_Errors(t *testing.T) {
	_, err := load(filepath.Join(t.TempDir(), "missing.yaml"), env.Options{})
	assert.Error(t, err)

	bad := writeFile(t, "bad.yaml", "http: [unclosed")
	_, err = load(bad, env.Options{Environment: map[string]string{}})
	assert.Error(t, err)

	unknown := writeFile(t, "unknown.yaml", "htpp:\n  addr: x\n")
	_, err = load(unknown, env.Options{Environment: map[string]string{}})
	assert.Error(t, err, "typos in keys are reported")

	_, err = load("", env.Options{Environment: map[string]string{"MISSIONS_REDIS_DB": "three"}})
	assert.Error(t, err)
}

func TestLoad_EmptyFile(t *testing.T) {
	path := writeFile(t, "empty.yaml", "")
	cfg, err := load(path, env.Options{Environment: map[string]string{}})
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
