// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package watch reports when watched paths are deleted or moved away.
//
// A Watcher owns one inotify instance and a reader goroutine. The
// goroutine turns kernel events into [Event] values and appends them to
// an internal queue guarded by the Watcher's own mutex; consumers
// collect them with [Watcher.Drain] on their own schedule. Nothing the
// consumer holds (in particular the registry lock) can stall the reader.
//
// Each path is watched itself, not through its parent directory, and
// symlinks are not followed. A path stops being watched once it is
// reported.
package watch

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"sync"

	"golang.org/x/sys/unix"
)

// Kind classifies an event.
type Kind int

const (
	// Removed means the path no longer exists.
	Removed Kind = iota
	// Moved means the file was renamed away from the path.
	Moved
)

func (k Kind) String() string {
	switch k {
	case Removed:
		return "removed"
	case Moved:
		return "moved"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Event reports that Path was deleted or moved.
type Event struct {
	Path string
	Kind Kind
}

// watchMask selects the events that end a path's life. IN_ATTRIB is
// included because unlinking a file that has other names, or that is
// still open elsewhere, only changes its link count.
const watchMask = unix.IN_DELETE_SELF | unix.IN_MOVE_SELF | unix.IN_ATTRIB | unix.IN_DONT_FOLLOW

// pollTimeoutMilliseconds bounds how long the reader blocks before
// checking for Close.
const pollTimeoutMilliseconds = 100

// Watcher watches a set of paths for deletion and moves.
type Watcher struct {
	fd     int
	logger *slog.Logger

	mutex       sync.Mutex
	descriptors map[string]int   // path → watch descriptor
	paths       map[int][]string // watch descriptor → paths (hard links share one)
	queue       []Event

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// New creates a Watcher and starts its reader goroutine.
func New(logger *slog.Logger) (*Watcher, error) {
	fd, err := unix.InotifyInit1(unix.IN_NONBLOCK | unix.IN_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("inotify_init1: %w", err)
	}
	w := &Watcher{
		fd:          fd,
		logger:      logger,
		descriptors: make(map[string]int),
		paths:       make(map[int][]string),
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
	go w.readLoop()
	return w, nil
}

// Add starts watching path. Adding a watched path again is a no-op. A
// path that does not exist returns an error matching fs.ErrNotExist.
func (w *Watcher) Add(path string) error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if _, ok := w.descriptors[path]; ok {
		return nil
	}
	descriptor, err := unix.InotifyAddWatch(w.fd, path, watchMask)
	if err != nil {
		return fmt.Errorf("inotify_add_watch on %s: %w", path, err)
	}
	w.descriptors[path] = descriptor
	w.paths[descriptor] = append(w.paths[descriptor], path)
	return nil
}

// Remove stops watching path. Removing a path that is not watched is a
// no-op.
func (w *Watcher) Remove(path string) error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	descriptor, ok := w.descriptors[path]
	if !ok {
		return nil
	}
	if w.forgetLocked(descriptor, path) {
		if _, err := unix.InotifyRmWatch(w.fd, uint32(descriptor)); err != nil && !errors.Is(err, unix.EINVAL) {
			return fmt.Errorf("inotify_rm_watch on %s: %w", path, err)
		}
	}
	return nil
}

// Watching reports whether path is currently watched.
func (w *Watcher) Watching(path string) bool {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	_, ok := w.descriptors[path]
	return ok
}

// Len returns the number of watched paths.
func (w *Watcher) Len() int {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return len(w.descriptors)
}

// Drain returns and clears the queued events, oldest first.
func (w *Watcher) Drain() []Event {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	events := w.queue
	w.queue = nil
	return events
}

// Close stops the reader goroutine and releases the inotify instance.
// Queued events are discarded.
func (w *Watcher) Close() error {
	w.closeOnce.Do(func() {
		close(w.stop)
		<-w.done
	})
	return nil
}

// forgetLocked drops the mapping between path and descriptor and
// reports whether the descriptor has no paths left.
func (w *Watcher) forgetLocked(descriptor int, path string) bool {
	delete(w.descriptors, path)
	remaining := slices.DeleteFunc(w.paths[descriptor], func(candidate string) bool {
		return candidate == path
	})
	if len(remaining) == 0 {
		delete(w.paths, descriptor)
		return true
	}
	w.paths[descriptor] = remaining
	return false
}

func (w *Watcher) readLoop() {
	defer close(w.done)
	defer unix.Close(w.fd)

	buffer := make([]byte, 16*1024)
	for {
		select {
		case <-w.stop:
			return
		default:
		}

		pollDescriptors := []unix.PollFd{{Fd: int32(w.fd), Events: unix.POLLIN}}
		count, err := unix.Poll(pollDescriptors, pollTimeoutMilliseconds)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			w.logger.Error("polling inotify descriptor failed", "error", err)
			return
		}
		if count == 0 {
			continue
		}

		bytesRead, err := unix.Read(w.fd, buffer)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EINTR {
				continue
			}
			w.logger.Error("reading inotify events failed", "error", err)
			return
		}
		w.handle(parseEvents(buffer[:bytesRead]))
	}
}

type rawEvent struct {
	descriptor int
	mask       uint32
}

// parseEvents decodes a buffer of inotify_event records. Names are
// skipped; watches on the paths themselves never carry one.
func parseEvents(buffer []byte) []rawEvent {
	var events []rawEvent
	offset := 0
	for offset+unix.SizeofInotifyEvent <= len(buffer) {
		descriptor := int32(binary.NativeEndian.Uint32(buffer[offset : offset+4]))
		mask := binary.NativeEndian.Uint32(buffer[offset+4 : offset+8])
		nameLength := int(binary.NativeEndian.Uint32(buffer[offset+12 : offset+16]))
		eventSize := unix.SizeofInotifyEvent + nameLength
		if offset+eventSize > len(buffer) {
			break
		}
		events = append(events, rawEvent{descriptor: int(descriptor), mask: mask})
		offset += eventSize
	}
	return events
}

func (w *Watcher) handle(events []rawEvent) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	for _, event := range events {
		if event.mask&unix.IN_Q_OVERFLOW != 0 {
			w.logger.Warn("inotify queue overflowed, checking every watched path")
			w.sweepLocked()
			continue
		}
		paths := slices.Clone(w.paths[event.descriptor])
		switch {
		case event.mask&unix.IN_IGNORED != 0:
			for _, path := range paths {
				w.forgetLocked(event.descriptor, path)
				if !exists(path) {
					w.queue = append(w.queue, Event{Path: path, Kind: Removed})
				}
			}
		case event.mask&unix.IN_DELETE_SELF != 0:
			w.reportLocked(event.descriptor, paths, Removed)
		case event.mask&unix.IN_MOVE_SELF != 0:
			w.reportLocked(event.descriptor, paths, Moved)
		case event.mask&unix.IN_ATTRIB != 0:
			var gone []string
			for _, path := range paths {
				if !exists(path) {
					gone = append(gone, path)
				}
			}
			w.reportLocked(event.descriptor, gone, Removed)
		}
	}
}

// reportLocked queues events for paths and stops watching them.
func (w *Watcher) reportLocked(descriptor int, paths []string, kind Kind) {
	for _, path := range paths {
		w.queue = append(w.queue, Event{Path: path, Kind: kind})
		if w.forgetLocked(descriptor, path) {
			unix.InotifyRmWatch(w.fd, uint32(descriptor))
		}
	}
}

// sweepLocked reports every watched path that no longer exists. Used
// after the kernel dropped events.
func (w *Watcher) sweepLocked() {
	for path, descriptor := range w.descriptors {
		if !exists(path) {
			w.reportLocked(descriptor, []string{path}, Removed)
		}
	}
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil || !errors.Is(err, os.ErrNotExist)
}
