// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/bureau-foundation/wutag/lib/clock"
	"github.com/bureau-foundation/wutag/lib/ipc"
	"github.com/bureau-foundation/wutag/lib/registry"
	"github.com/bureau-foundation/wutag/lib/tag"
	"github.com/bureau-foundation/wutag/lib/watch"
)

// pathWatcher is the part of watch.Watcher the daemon uses.
type pathWatcher interface {
	Add(path string) error
	Remove(path string) error
	Drain() []watch.Event
}

// daemon owns the shared registry and runs the connection loop and the
// reconciliation loop against it.
type daemon struct {
	guard        *registry.Guard
	server       *ipc.Server
	watcher      pathWatcher
	pending      pendingQueue
	palette      []tag.Color
	clock        clock.Clock
	pollInterval time.Duration
	logger       *slog.Logger

	// retry holds deleted paths whose registry cleanup was skipped
	// because the lock was contended. Owned by the reconciler.
	retry []string
}

type daemonConfig struct {
	Registry     *registry.Registry
	Server       *ipc.Server
	Watcher      pathWatcher
	Palette      []tag.Color
	Clock        clock.Clock
	PollInterval time.Duration
	Logger       *slog.Logger
}

func newDaemon(config daemonConfig) *daemon {
	palette := config.Palette
	if len(palette) == 0 {
		palette = tag.DefaultPalette
	}
	return &daemon{
		guard:        registry.NewGuard(config.Registry, config.Clock),
		server:       config.Server,
		watcher:      config.Watcher,
		palette:      palette,
		clock:        config.Clock,
		pollInterval: config.PollInterval,
		logger:       config.Logger,
	}
}

// run restores watches for the loaded registry, then serves requests
// and reconciles until ctx is cancelled or a fatal error occurs. The
// server is closed on return.
func (d *daemon) run(ctx context.Context) error {
	if err := d.restoreWatches(); err != nil {
		d.server.Close()
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stopServer := context.AfterFunc(ctx, func() { d.server.Close() })
	defer stopServer()

	results := make(chan error, 2)
	go func() { results <- d.serveLoop() }()
	go func() { results <- d.reconcileLoop(ctx) }()

	first := <-results
	cancel()
	second := <-results
	if first != nil {
		return first
	}
	return second
}

// serveLoop accepts one request at a time, answers it, and moves on to
// the next. It returns nil once the server is closed.
func (d *daemon) serveLoop() error {
	for {
		request, err := d.server.Accept()
		if errors.Is(err, net.ErrClosed) {
			return nil
		}
		var malformed *ipc.MalformedRequestError
		if errors.As(err, &malformed) {
			d.logger.Warn("dropping malformed request", "error", malformed.Err)
			d.logger.Debug("malformed request contents", "cbor", malformed.Notation)
			continue
		}
		if err != nil {
			d.logger.Warn("dropping unreadable request", "error", err)
			continue
		}

		response, err := d.dispatch(request)
		if err != nil {
			return err
		}
		if err := d.server.Respond(response); err != nil {
			d.logger.Warn("writing response failed", "type", fmt.Sprintf("%T", response), "error", err)
		}
	}
}

// dispatch runs the handler for request. A panicking handler or a
// poisoned registry is fatal to the daemon.
func (d *daemon) dispatch(request ipc.Request) (response ipc.Response, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			d.logger.Error("request handler panicked", "type", fmt.Sprintf("%T", request), "panic", recovered)
			response, err = nil, fmt.Errorf("request handler panicked: %v", recovered)
		}
	}()

	d.logger.Debug("handling request", "type", fmt.Sprintf("%T", request))
	response = d.handle(request)
	if d.guard.Poisoned() {
		d.logger.Error("registry lock poisoned, shutting down")
		return nil, registry.ErrPoisoned
	}
	return response, nil
}
