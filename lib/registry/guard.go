// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bureau-foundation/wutag/lib/clock"
)

var (
	// ErrContended is returned when the lock stayed busy for every
	// attempt. The operation was not run; callers log and skip it.
	ErrContended = errors.New("registry lock contended")

	// ErrPoisoned is returned once a critical section has panicked.
	// The in-memory registry may be inconsistent and must not be saved.
	ErrPoisoned = errors.New("registry lock poisoned")
)

// DefaultAttempts is the number of lock attempts a Guard makes when
// Attempts is zero.
const DefaultAttempts = 5

// DefaultBackoff is the pause between lock attempts used by NewGuard.
const DefaultBackoff = time.Millisecond

type acquisition int

const (
	acquired acquisition = iota
	contended
	poisoned
)

func (a acquisition) String() string {
	switch a {
	case acquired:
		return "acquired"
	case contended:
		return "contended"
	case poisoned:
		return "poisoned"
	default:
		return "unknown"
	}
}

// Guard shares one Registry between goroutines behind a reader-writer
// lock with bounded acquisition.
type Guard struct {
	// Attempts bounds how many times Read and Write try the lock.
	Attempts int

	// Backoff is slept between attempts. Zero yields the processor
	// instead of sleeping.
	Backoff time.Duration

	clock    clock.Clock
	mutex    sync.RWMutex
	poisoned atomic.Bool
	registry *Registry
}

// NewGuard wraps registry. The clock drives the backoff between
// attempts.
func NewGuard(registry *Registry, clk clock.Clock) *Guard {
	return &Guard{
		Attempts: DefaultAttempts,
		Backoff:  DefaultBackoff,
		clock:    clk,
		registry: registry,
	}
}

// Read runs fn with shared access to the registry. Several readers may
// run at once; none run alongside a writer.
func (g *Guard) Read(fn func(*Registry) error) error {
	if err := g.acquire(false); err != nil {
		return err
	}
	defer g.release(false)
	return fn(g.registry)
}

// Write runs fn with exclusive access to the registry.
func (g *Guard) Write(fn func(*Registry) error) error {
	if err := g.acquire(true); err != nil {
		return err
	}
	defer g.release(true)
	return fn(g.registry)
}

// Poisoned reports whether a critical section has panicked.
func (g *Guard) Poisoned() bool { return g.poisoned.Load() }

func (g *Guard) acquire(exclusive bool) error {
	attempts := g.Attempts
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	for attempt := range attempts {
		switch g.try(exclusive) {
		case acquired:
			return nil
		case poisoned:
			return ErrPoisoned
		}
		if attempt == attempts-1 {
			break
		}
		if g.Backoff > 0 && g.clock != nil {
			g.clock.Sleep(g.Backoff)
		} else {
			runtime.Gosched()
		}
	}
	return ErrContended
}

func (g *Guard) try(exclusive bool) acquisition {
	if g.poisoned.Load() {
		return poisoned
	}
	var ok bool
	if exclusive {
		ok = g.mutex.TryLock()
	} else {
		ok = g.mutex.TryRLock()
	}
	if !ok {
		return contended
	}
	if g.poisoned.Load() {
		g.unlock(exclusive)
		return poisoned
	}
	return acquired
}

// release unlocks, first marking the guard poisoned if the critical
// section is unwinding from a panic. The panic keeps propagating.
func (g *Guard) release(exclusive bool) {
	if recovered := recover(); recovered != nil {
		g.poisoned.Store(true)
		g.unlock(exclusive)
		panic(recovered)
	}
	g.unlock(exclusive)
}

func (g *Guard) unlock(exclusive bool) {
	if exclusive {
		g.mutex.Unlock()
	} else {
		g.mutex.RUnlock()
	}
}
