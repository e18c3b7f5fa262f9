// Command camguardd runs the camera resource broker as a standalone HTTP
// service: it loads configuration, initializes the host façade over a
// bank of stub adapters, and serves the session API until terminated.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/camguard/camguard"
	"github.com/camguard/camguard/host"
	"github.com/camguard/camguard/internal/config"
	"github.com/camguard/camguard/internal/server"
	"github.com/camguard/camguard/logging"
	"github.com/camguard/camguard/scheduler"
	"github.com/camguard/camguard/stubadapter"
)

func main() {
	if err := run(); err != nil {
		slog.Error("camguardd exited with an error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: levelFor(cfg.Resource.Debug),
	}))
	logger := logging.NewSlog(slogger, cfg.Resource.Debug)

	defaultConfig, err := camguard.NewCameraConfiguration(
		cfg.Resource.DefaultWidth, cfg.Resource.DefaultHeight, cfg.Resource.DefaultFPS, camguard.YUV420)
	if err != nil {
		return err
	}

	h := host.New()
	err = h.Initialize(host.Options{
		ResourceCount: cfg.Resource.Count,
		DefaultConfig: defaultConfig,
		Timeouts: scheduler.TimeoutProfile{
			Start:               cfg.Resource.StartTimeout,
			Stop:                cfg.Resource.StopTimeout,
			Pause:               cfg.Resource.PauseTimeout,
			Resume:              cfg.Resource.ResumeTimeout,
			UpdateConfiguration: cfg.Resource.ReconfigTimeout,
			Reset:               cfg.Resource.ResetTimeout,
			Fallback:            cfg.Resource.FallbackTimeout,
		},
		Logger:         logger,
		MetricsEnabled: cfg.Resource.MetricsEnabled,
		Debug:          cfg.Resource.Debug,
		AdapterFactory: stubadapter.NewFactory(stubadapter.Options{Latency: cfg.Resource.AdapterLatency}),
	})
	if err != nil {
		return err
	}

	srv := server.New(cfg, h, slogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := srv.Start(ctx); err != nil {
		return err
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Resource.FallbackTimeout)
	defer shutdownCancel()
	return h.Shutdown(shutdownCtx)
}

func levelFor(debug bool) slog.Level {
	if debug {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}
