// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import "sync"

type deltaKind int

const (
	// trackPaths asks the reconciler to start watching paths that just
	// gained their first tag.
	trackPaths deltaKind = iota
	// untrackPaths asks the reconciler to stop watching paths that lost
	// their last tag.
	untrackPaths
)

// delta is a change to the set of tracked paths, produced by the
// connection loop and consumed by the reconciler.
type delta struct {
	kind  deltaKind
	paths []string
}

// pendingQueue carries deltas from the connection loop to the
// reconciler. It has its own lock, independent of the registry's.
type pendingQueue struct {
	mutex  sync.Mutex
	deltas []delta
}

func (q *pendingQueue) push(kind deltaKind, paths []string) {
	if len(paths) == 0 {
		return
	}
	q.mutex.Lock()
	defer q.mutex.Unlock()
	q.deltas = append(q.deltas, delta{kind: kind, paths: paths})
}

func (q *pendingQueue) track(paths []string) { q.push(trackPaths, paths) }
func (q *pendingQueue) untrack(paths []string) { q.push(untrackPaths, paths) }

// drain returns the queued deltas in arrival order and empties the
// queue.
func (q *pendingQueue) drain() []delta {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	deltas := q.deltas
	q.deltas = nil
	return deltas
}
