package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/aretw0/missions"
	"github.com/aretw0/missions/internal/config"
	"github.com/aretw0/missions/internal/logging"
	"github.com/aretw0/missions/pkg/adapters/redis"
	"github.com/aretw0/missions/pkg/domain"
	"github.com/aretw0/missions/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// app holds what every subcommand shares: resolved config and logger.
type app struct {
	cfg    config.Config
	logger *slog.Logger
}

func newApp(cmd *cobra.Command) (*app, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level, _ = cmd.Flags().GetString("log-level")
	}
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, logger: logging.New(level)}, nil
}

// runtime is a configured Tracker plus the resources wired around it.
type runtime struct {
	tracker  *missions.Tracker
	registry *prometheus.Registry
	closers  []io.Closer
}

func (r *runtime) Close() {
	for _, c := range r.closers {
		c.Close()
	}
}

// newRuntime builds the Tracker with logging, metrics and (when configured)
// Redis event publishing. extra hooks are appended last.
func (a *app) newRuntime(ctx context.Context, extra ...domain.LifecycleHooks) (*runtime, error) {
	rt := &runtime{registry: prometheus.NewRegistry()}
	rt.registry.MustRegister(collectors.NewGoCollector())

	metrics := observability.NewMetrics(rt.registry)
	opts := []missions.Option{
		missions.WithLogger(a.logger),
		missions.WithLifecycleHooks(observability.LogHooks(a.logger)),
		missions.WithLifecycleHooks(metrics.Hooks()),
	}

	if ev := a.cfg.Events; ev.RedisAddr != "" {
		pub := redis.New(ev.RedisAddr, ev.RedisPassword, ev.RedisDB,
			redis.WithChannel(ev.Channel),
			redis.WithLogger(a.logger),
		)
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := pub.Ping(pingCtx); err != nil {
			a.logger.Warn("Redis unreachable, events will be dropped", "addr", ev.RedisAddr, "error", err)
		} else {
			a.logger.Info("Publishing events to Redis", "addr", ev.RedisAddr, "channel", pub.Channel())
		}
		cancel()
		opts = append(opts, missions.WithLifecycleHooks(pub.Hooks()))
		rt.closers = append(rt.closers, pub)
	}

	for _, h := range extra {
		opts = append(opts, missions.WithLifecycleHooks(h))
	}

	tracker, err := missions.New(opts...)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("failed to initialize tracker: %w", err)
	}
	rt.tracker = tracker
	return rt, nil
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
