// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/wutag/cmd/wutag/cli"
	"github.com/bureau-foundation/wutag/lib/config"
	"github.com/bureau-foundation/wutag/lib/glob"
	"github.com/bureau-foundation/wutag/lib/ipc"
	"github.com/bureau-foundation/wutag/lib/tag"
)

// options holds the flags shared by every command.
type options struct {
	dir        string
	maxDepth   int
	pretty     bool
	socket     string
	configPath string
}

// app carries the state of one wutag invocation. The connection
// fields are filled in by connect once flags are parsed.
type app struct {
	ctx    context.Context
	stdout io.Writer
	stderr io.Writer
	opts   options

	client   *ipc.Client
	palette  []tag.Color
	baseDir  string
	maxDepth int
	styles   styles
}

func newApp(ctx context.Context, stdout, stderr io.Writer) *app {
	return &app{ctx: ctx, stdout: stdout, stderr: stderr}
}

// flags returns a flag set factory with the shared flags plus those
// added by extra.
func (a *app) flags(name string, extra func(*pflag.FlagSet)) func() *pflag.FlagSet {
	return func() *pflag.FlagSet {
		flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
		flagSet.StringVarP(&a.opts.dir, "dir", "d", "", "base directory for glob patterns (default: the working directory)")
		flagSet.IntVarP(&a.opts.maxDepth, "max-depth", "m", 0, "how deep glob patterns descend (default: max_depth from the config, 2)")
		flagSet.BoolVarP(&a.opts.pretty, "pretty", "p", false, "color the output (not recommended in scripts)")
		flagSet.StringVar(&a.opts.socket, "socket", "", "daemon socket (default: socket_path from the config, then $XDG_RUNTIME_DIR/wutag-<user>.sock)")
		flagSet.StringVar(&a.opts.configPath, "config", "", "path to wutag.yml (default $WUTAG_CONFIG, then the user config directory)")
		if extra != nil {
			extra(flagSet)
		}
		return flagSet
	}
}

// action wraps fn so it runs after the daemon connection is set up.
func (a *app) action(fn func(args []string) error) func(args []string) error {
	return func(args []string) error {
		if err := a.connect(); err != nil {
			return err
		}
		return fn(args)
	}
}

// connect loads the configuration, applies flag overrides, and checks
// that the daemon answers.
func (a *app) connect() error {
	cfg, err := config.Resolve(a.opts.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if a.palette, err = cfg.Palette(); err != nil {
		return err
	}

	a.maxDepth = cfg.MaxDepth
	if a.opts.maxDepth > 0 {
		a.maxDepth = a.opts.maxDepth
	}

	a.baseDir = a.opts.dir
	if a.baseDir == "" {
		if a.baseDir, err = os.Getwd(); err != nil {
			return fmt.Errorf("determining working directory: %w", err)
		}
	}
	if a.baseDir, err = filepath.Abs(a.baseDir); err != nil {
		return fmt.Errorf("resolving --dir: %w", err)
	}

	a.styles = newStyles(a.stdout, a.opts.pretty || cfg.PrettyOutput)

	socketPath := a.opts.socket
	if socketPath == "" {
		socketPath = cfg.SocketPath
	}
	if socketPath == "" {
		if socketPath, err = ipc.SocketPath(); err != nil {
			return err
		}
	}
	a.client = ipc.NewClient(socketPath)

	if _, err := a.client.Ping(a.ctx); err != nil {
		return fmt.Errorf("failed to connect to daemon: %w\nmake sure wutagd is running and listening on %s", err, socketPath)
	}
	return nil
}

// target is the set of files a command acts on: explicit paths, or a
// pattern the daemon resolves.
type target struct {
	files   []string
	pattern *glob.Descriptor
}

// resolveTarget interprets args as paths, or with usePattern, takes
// args[0] as a glob pattern under the base directory. Paths that
// cannot be canonicalized are reported on stderr and skipped.
func (a *app) resolveTarget(args []string, usePattern bool) (target, error) {
	if len(args) == 0 {
		return target{}, errors.New("no entries given")
	}
	if usePattern {
		return target{pattern: &glob.Descriptor{
			Pattern:  args[0],
			BaseDir:  a.baseDir,
			MaxDepth: a.maxDepth,
		}}, nil
	}

	var files []string
	for _, path := range args {
		canonical, err := canonicalize(path)
		if err != nil {
			fmt.Fprintf(a.stderr, "failed to canonicalize path `%s`, reason: %v\n", path, err)
			continue
		}
		files = append(files, canonical)
	}
	if len(files) == 0 {
		return target{}, errors.New("none of the given paths exist")
	}
	return target{files: files}, nil
}

// canonicalize returns the absolute path of path with symlinks
// resolved. The file must exist.
func canonicalize(path string) (string, error) {
	absolute, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(absolute)
}

// reportBatch prints the per-item failures in err under heading and
// turns them into exit status 1. Other errors are returned unchanged.
func (a *app) reportBatch(heading string, err error) error {
	var batchErr *ipc.BatchError
	if !errors.As(err, &batchErr) {
		return err
	}
	fmt.Fprintf(a.stderr, "%s, reason:\n", heading)
	for _, message := range batchErr.Errors {
		fmt.Fprintf(a.stderr, " - %s\n", message)
	}
	return &cli.ExitError{Code: 1}
}
