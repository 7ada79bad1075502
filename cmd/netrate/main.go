// Package main provides the entry point for netrate, a probe that samples the
// byte counters of one network interface at a fixed interval and writes the
// running totals and per-interval deltas to files for status bars and widgets.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/shini4i/netrate/internal/config"
	"github.com/shini4i/netrate/internal/logging"
	"github.com/shini4i/netrate/internal/pidfile"
	"github.com/shini4i/netrate/internal/probe"
	"github.com/shini4i/netrate/internal/scheduler"
	"github.com/shini4i/netrate/internal/stats"
	"github.com/shini4i/netrate/internal/systemd"
)

var (
	version = "dev"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	logging.SetupFromEnv()
	slog.SetDefault(slog.Default().With("run_id", uuid.NewString()))

	cfg, err := config.Load(args)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		return 1
	}
	if cfg.ShowVersion {
		fmt.Printf("%s %s\n", config.AppName, version)
		return 0
	}

	paths, err := cfg.ResolvePaths()
	if err != nil {
		slog.Error("Failed to resolve output directory", "error", err)
		return 1
	}
	if err := paths.EnsureDir(); err != nil {
		slog.Error("Failed to prepare output directory", "dir", paths.Dir, "error", err)
		return 1
	}

	slog.Info("Using interface",
		"interface", cfg.Interface,
		"dir", paths.Dir,
		"interval", cfg.Interval(),
		"scaling", cfg.ScalingEnabled(),
		"version", version,
	)

	if paths.PID != "" {
		if err := pidfile.Write(paths.PID); err != nil {
			slog.Error("Failed to write pid file", "path", paths.PID, "error", err)
			return 1
		}
	}

	notifier := systemd.NewNotifier()
	if wd := notifier.WatchdogTimeout(); wd > 0 && wd < 2*cfg.Interval() {
		slog.Warn("Watchdog timeout is shorter than two sampling intervals",
			"watchdog", wd, "interval", cfg.Interval())
	}

	p := probe.New(probe.Config{
		Interface: cfg.Interface,
		Scaling:   cfg.ScalingEnabled(),
		Files: probe.Files{
			TotalSend:    paths.SendTotal,
			TotalRecv:    paths.RecvTotal,
			IntervalSend: paths.SendInterval,
			IntervalRecv: paths.RecvInterval,
		},
	}, stats.NewSource(cfg.ProcNetDev))
	sched := scheduler.New(cfg.Interval(), clock.New())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	notifier.Ready()
	defer notifier.Stopping()

	err = sched.Run(ctx, func(context.Context) error {
		iv, err := p.Tick()
		if err != nil {
			return err
		}
		notifier.Status(fmt.Sprintf("rx %s tx %s", iv.Recv, iv.Send))
		notifier.Watchdog()
		return nil
	})
	if err != nil {
		slog.Error("Sampling failed", "interface", cfg.Interface, "error", err)
		return 1
	}

	slog.Info("Shutdown complete")
	return 0
}
