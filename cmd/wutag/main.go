// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// wutag tags files and searches them by tag, through the per-user
// wutagd daemon.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bureau-foundation/wutag/lib/process"
)

func main() {
	if err := run(); err != nil {
		// Commands that already printed their failures return an
		// ExitError carrying the exit code.
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		process.Fatal(err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return newApp(ctx, os.Stdout, os.Stderr).root().Execute(os.Args[1:])
}
