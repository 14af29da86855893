// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// wutagd is the per-user wutag daemon. It owns the tag registry,
// answers requests from the wutag CLI on a Unix socket, and forgets
// files that are deleted or moved away while tagged.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/wutag/lib/clock"
	"github.com/bureau-foundation/wutag/lib/config"
	"github.com/bureau-foundation/wutag/lib/ipc"
	"github.com/bureau-foundation/wutag/lib/process"
	"github.com/bureau-foundation/wutag/lib/registry"
	"github.com/bureau-foundation/wutag/lib/version"
	"github.com/bureau-foundation/wutag/lib/watch"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	var (
		configPath   string
		socketPath   string
		registryPath string
		pollInterval time.Duration
		logLevel     string
		showVersion  bool
	)

	flags := pflag.NewFlagSet("wutagd", pflag.ContinueOnError)
	flags.StringVar(&configPath, "config", "", "path to wutag.yml (default $WUTAG_CONFIG, then the user config directory)")
	flags.StringVar(&socketPath, "socket", "", "Unix socket to listen on (default $XDG_RUNTIME_DIR/wutag-<user>.sock)")
	flags.StringVar(&registryPath, "registry", "", "registry file (overrides registry_path in the config)")
	flags.DurationVar(&pollInterval, "poll-interval", 0, "how often to reconcile file events (overrides poll_interval in the config)")
	flags.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn or error")
	flags.BoolVar(&showVersion, "version", false, "print version information and exit")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	if showVersion {
		fmt.Printf("wutagd %s\n", version.Info())
		return nil
	}

	level, err := process.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	logger := process.NewLogger(os.Stderr, level)
	slog.SetDefault(logger)

	cfg, err := config.Resolve(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	palette, err := cfg.Palette()
	if err != nil {
		return err
	}
	if pollInterval <= 0 {
		if pollInterval, err = cfg.PollIntervalDuration(); err != nil {
			return err
		}
	}
	if registryPath == "" {
		registryPath = cfg.RegistryPath
	}
	if socketPath == "" {
		socketPath = cfg.SocketPath
	}
	if socketPath == "" {
		if socketPath, err = ipc.SocketPath(); err != nil {
			return err
		}
	}

	reg, err := registry.Load(registryPath)
	switch {
	case err == nil:
		logger.Info("registry loaded",
			"path", registryPath,
			"entries", len(reg.ListEntries()),
			"tags", len(reg.ListTags()),
		)
	case errors.Is(err, fs.ErrNotExist):
		logger.Info("starting with an empty registry", "path", registryPath)
		reg = registry.New(registryPath)
	default:
		logger.Warn("registry unreadable, starting empty", "path", registryPath, "error", err)
		reg = registry.New(registryPath)
	}

	watcher, err := watch.New(logger)
	if err != nil {
		return fmt.Errorf("starting file watcher: %w", err)
	}
	defer watcher.Close()

	server, err := ipc.Listen(socketPath)
	if err != nil {
		return err
	}
	logger.Info("listening",
		"socket", server.Path(),
		"version", version.Short(),
		"poll_interval", pollInterval,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d := newDaemon(daemonConfig{
		Registry:     reg,
		Server:       server,
		Watcher:      watcher,
		Palette:      palette,
		Clock:        clock.Real(),
		PollInterval: pollInterval,
		Logger:       logger,
	})
	if err := d.run(ctx); err != nil {
		return err
	}
	logger.Info("shutting down")
	return nil
}
