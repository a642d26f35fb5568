// Package config loads the runtime configuration of the missions binaries.
//
// Values are resolved in three layers: built-in defaults, an optional YAML
// (or JSON) file, and MISSIONS_* environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Events  EventsConfig  `mapstructure:"events"`
}

// LogConfig controls the application logger.
type LogConfig struct {
	Level string `mapstructure:"level" env:"MISSIONS_LOG_LEVEL"`
}

// HTTPConfig controls the HTTP facade.
type HTTPConfig struct {
	Addr            string        `mapstructure:"addr" env:"MISSIONS_HTTP_ADDR"`
	CORS            bool          `mapstructure:"cors" env:"MISSIONS_HTTP_CORS"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" env:"MISSIONS_HTTP_SHUTDOWN_TIMEOUT"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" env:"MISSIONS_METRICS_ENABLED"`
	Path    string `mapstructure:"path" env:"MISSIONS_METRICS_PATH"`
}

// EventsConfig controls the Redis event publisher.
// Publishing is disabled while RedisAddr is empty.
type EventsConfig struct {
	RedisAddr     string `mapstructure:"redis_addr" env:"MISSIONS_REDIS_ADDR"`
	RedisPassword string `mapstructure:"redis_password" env:"MISSIONS_REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"redis_db" env:"MISSIONS_REDIS_DB"`
	Channel       string `mapstructure:"channel" env:"MISSIONS_EVENTS_CHANNEL"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log: LogConfig{Level: "info"},
		HTTP: HTTPConfig{
			Addr:            ":8080",
			CORS:            true,
			ShutdownTimeout: 5 * time.Second,
		},
		Metrics: MetricsConfig{Enabled: true, Path: "/metrics"},
		Events:  EventsConfig{Channel: "missions:events"},
	}
}

// Load resolves the configuration from the file at path (optional) and the
// process environment.
func Load(path string) (Config, error) {
	return load(path, env.Options{})
}

func load(path string, opts env.Options) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
		if err := decodeFile(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// decodeFile overlays a YAML (or JSON, which is valid YAML) document onto cfg.
// Keys missing from the document keep their current value.
func decodeFile(data []byte, cfg *Config) error {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return err
	}
	return decoder.Decode(raw)
}
