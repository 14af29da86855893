// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package watch

import (
	"encoding/binary"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"github.com/bureau-foundation/wutag/lib/testutil"
)

func newTestWatcher(t *testing.T) *Watcher {
	t.Helper()
	watcher, err := New(slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { watcher.Close() })
	return watcher
}

// awaitEvents drains the watcher until want events have arrived or the
// timeout passes.
func awaitEvents(t *testing.T, watcher *Watcher, want int) []Event {
	t.Helper()
	var events []Event
	deadline := time.Now().Add(5 * time.Second)
	for len(events) < want && time.Now().Before(deadline) {
		events = append(events, watcher.Drain()...)
		time.Sleep(10 * time.Millisecond)
	}
	if len(events) < want {
		t.Fatalf("received %d events before timeout, want %d: %v", len(events), want, events)
	}
	return events
}

func TestWatcherReportsDeletion(t *testing.T) {
	watcher := newTestWatcher(t)
	path := testutil.WriteFile(t, t.TempDir(), "doomed")

	if err := watcher.Add(path); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !watcher.Watching(path) {
		t.Fatal("Watching reports false after Add")
	}
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}

	events := awaitEvents(t, watcher, 1)
	if events[0] != (Event{Path: path, Kind: Removed}) {
		t.Errorf("event = %+v, want removal of %s", events[0], path)
	}
	if watcher.Watching(path) {
		t.Error("path still watched after deletion was reported")
	}

	time.Sleep(200 * time.Millisecond)
	if extra := watcher.Drain(); len(extra) != 0 {
		t.Errorf("deletion reported more than once: %v", extra)
	}
}

func TestWatcherReportsMove(t *testing.T) {
	watcher := newTestWatcher(t)
	directory := t.TempDir()
	path := testutil.WriteFile(t, directory, "wanderer")

	if err := watcher.Add(path); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := os.Rename(path, filepath.Join(directory, "elsewhere")); err != nil {
		t.Fatal(err)
	}

	events := awaitEvents(t, watcher, 1)
	if events[0].Path != path {
		t.Errorf("event path = %s, want %s", events[0].Path, path)
	}
	if events[0].Kind != Moved && events[0].Kind != Removed {
		t.Errorf("event kind = %v, want moved or removed", events[0].Kind)
	}
}

func TestWatcherIgnoresModification(t *testing.T) {
	watcher := newTestWatcher(t)
	path := testutil.WriteFile(t, t.TempDir(), "stable")

	if err := watcher.Add(path); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("changed"), 0o600); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond)
	if events := watcher.Drain(); len(events) != 0 {
		t.Errorf("modification produced events: %v", events)
	}
	if !watcher.Watching(path) {
		t.Error("modification dropped the watch")
	}
}

func TestWatcherRemove(t *testing.T) {
	watcher := newTestWatcher(t)
	path := testutil.WriteFile(t, t.TempDir(), "forgotten")

	if err := watcher.Add(path); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := watcher.Add(path); err != nil {
		t.Fatalf("second Add: %v", err)
	}
	if watcher.Len() != 1 {
		t.Errorf("Len = %d, want 1", watcher.Len())
	}
	if err := watcher.Remove(path); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := watcher.Remove(path); err != nil {
		t.Fatalf("second Remove: %v", err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond)
	if events := watcher.Drain(); len(events) != 0 {
		t.Errorf("unwatched path produced events: %v", events)
	}
}

func TestWatcherHardLinksShareDescriptor(t *testing.T) {
	watcher := newTestWatcher(t)
	directory := t.TempDir()
	first := testutil.WriteFile(t, directory, "first")
	second := filepath.Join(directory, "second")
	if err := os.Link(first, second); err != nil {
		t.Skipf("hard links unsupported: %v", err)
	}

	for _, path := range []string{first, second} {
		if err := watcher.Add(path); err != nil {
			t.Fatalf("Add(%s): %v", path, err)
		}
	}
	if err := os.Remove(first); err != nil {
		t.Fatal(err)
	}

	events := awaitEvents(t, watcher, 1)
	if events[0] != (Event{Path: first, Kind: Removed}) {
		t.Errorf("event = %+v, want removal of %s", events[0], first)
	}
	if !watcher.Watching(second) {
		t.Error("surviving link lost its watch")
	}

	if err := os.Remove(second); err != nil {
		t.Fatal(err)
	}
	events = awaitEvents(t, watcher, 1)
	paths := make([]string, len(events))
	for i, event := range events {
		paths[i] = event.Path
	}
	if !slices.Contains(paths, second) {
		t.Errorf("events after removing second link = %v", events)
	}
}

func TestWatcherAddMissingPath(t *testing.T) {
	watcher := newTestWatcher(t)
	err := watcher.Add(filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Add(missing) = %v, want ErrNotExist", err)
	}
}

func TestParseEvents(t *testing.T) {
	record := func(descriptor int32, mask uint32, name string) []byte {
		nameLength := 0
		if name != "" {
			nameLength = (len(name) + 1 + 15) / 16 * 16
		}
		buffer := make([]byte, unix.SizeofInotifyEvent+nameLength)
		binary.NativeEndian.PutUint32(buffer[0:4], uint32(descriptor))
		binary.NativeEndian.PutUint32(buffer[4:8], mask)
		binary.NativeEndian.PutUint32(buffer[12:16], uint32(nameLength))
		copy(buffer[unix.SizeofInotifyEvent:], name)
		return buffer
	}

	var buffer []byte
	buffer = append(buffer, record(1, unix.IN_DELETE_SELF, "")...)
	buffer = append(buffer, record(2, unix.IN_MOVE_SELF, "child")...)
	buffer = append(buffer, record(3, unix.IN_IGNORED, "")...)
	truncated := append(buffer, record(4, unix.IN_ATTRIB, "")[:8]...)

	want := []rawEvent{
		{descriptor: 1, mask: unix.IN_DELETE_SELF},
		{descriptor: 2, mask: unix.IN_MOVE_SELF},
		{descriptor: 3, mask: unix.IN_IGNORED},
	}
	if got := parseEvents(truncated); !slices.Equal(got, want) {
		t.Errorf("parseEvents = %+v, want %+v", got, want)
	}
}

func TestKindString(t *testing.T) {
	if Removed.String() != "removed" || Moved.String() != "moved" {
		t.Errorf("Kind strings = %q, %q", Removed, Moved)
	}
	if got := Kind(9).String(); got != "Kind(9)" {
		t.Errorf("Kind(9).String() = %q", got)
	}
}
