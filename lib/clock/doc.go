// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source for the daemon.
//
// The reconciliation loop polls on a ticker and the registry guard
// backs off between lock attempts; both take a Clock instead of calling
// the time package directly. Production wiring uses Real(). Tests use
// Fake(), which only moves when Advance is called:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	go reconciler.Run(ctx)
//	c.WaitForTimers(1)                 // ticker registered
//	c.Advance(reconcileInterval)       // one deterministic tick
package clock
