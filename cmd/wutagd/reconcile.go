// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"os"
	"slices"

	"github.com/bureau-foundation/wutag/lib/registry"
	"github.com/bureau-foundation/wutag/lib/tag"
)

// restoreWatches watches every path in the loaded registry. Paths that
// no longer exist are purged instead.
func (d *daemon) restoreWatches() error {
	var paths []string
	if err := d.guard.Read(func(r *registry.Registry) error {
		for _, entry := range r.ListEntries() {
			paths = append(paths, entry.Data.Path)
		}
		return nil
	}); err != nil {
		return err
	}

	var gone []string
	for _, path := range paths {
		if err := d.watcher.Add(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				gone = append(gone, path)
				continue
			}
			d.logger.Warn("watching tracked file failed", "path", path, "error", err)
		}
	}
	if len(gone) == 0 {
		return nil
	}

	d.logger.Info("purging files deleted while the daemon was down", "count", len(gone))
	rewatch, err := d.purge(gone)
	if err != nil {
		return err
	}
	d.rewatch(rewatch)
	return nil
}

// purge removes the registry entries of paths and saves the registry.
// A path that holds a tagged file again, because it was re-created and
// tagged before its event was processed, keeps its entry with the tags
// now on disk. Such paths are returned for watching.
func (d *daemon) purge(paths []string) (rewatch []string, err error) {
	err = d.guard.Write(func(r *registry.Registry) error {
		for _, path := range paths {
			id, ok := r.FindEntry(path)
			if !ok {
				continue
			}
			if names, _ := tag.List(path); len(names) > 0 {
				d.resync(r, id, names)
				rewatch = append(rewatch, path)
				d.logger.Debug("kept re-created file", "path", path, "tags", names)
				continue
			}
			r.ClearEntry(id)
			d.logger.Debug("forgot deleted file", "path", path)
		}
		return saveRegistry(r)
	})
	return rewatch, err
}

// resync makes the tags of entry id match names, the tags found on the
// file. Tags the registry does not know yet get a palette color.
func (d *daemon) resync(r *registry.Registry, id registry.EntryID, names []string) {
	for _, name := range names {
		t, ok := r.Tag(name)
		if !ok {
			t = tag.Random(name, d.palette)
		}
		r.TagEntry(t, id)
	}
	for _, t := range r.EntryTags(id) {
		if !slices.Contains(names, t.Name) {
			r.UntagEntry(t.Name, id)
		}
	}
}

// rewatch watches paths again after purge kept them. A path that
// vanished in the meantime is retried on the next tick.
func (d *daemon) rewatch(paths []string) {
	for _, path := range paths {
		if err := d.watcher.Add(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				d.retry = append(d.retry, path)
				continue
			}
			d.logger.Warn("watching re-created file failed", "path", path, "error", err)
		}
	}
}

// reconcileLoop runs reconcile every poll interval until ctx is done.
func (d *daemon) reconcileLoop(ctx context.Context) error {
	ticker := d.clock.NewTicker(d.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := d.reconcile(); err != nil {
				return err
			}
		}
	}
}

// reconcile applies queued track deltas to the watcher, then drops
// registry entries for paths the watcher reported as deleted or moved,
// unless a tagged file has taken their place.
// Only a poisoned registry is returned as an error.
func (d *daemon) reconcile() error {
	gone := d.retry
	d.retry = nil

	for _, delta := range d.pending.drain() {
		for _, path := range delta.paths {
			switch delta.kind {
			case trackPaths:
				if err := d.watcher.Add(path); err != nil {
					if errors.Is(err, os.ErrNotExist) {
						gone = append(gone, path)
						continue
					}
					d.logger.Warn("watching file failed", "path", path, "error", err)
				}
			case untrackPaths:
				if err := d.watcher.Remove(path); err != nil {
					d.logger.Debug("unwatching file failed", "path", path, "error", err)
				}
			}
		}
	}

	for _, event := range d.watcher.Drain() {
		d.logger.Debug("tracked file changed", "path", event.Path, "kind", event.Kind)
		gone = append(gone, event.Path)
	}
	if len(gone) == 0 {
		return nil
	}

	rewatch, err := d.purge(gone)
	switch {
	case err == nil:
		d.rewatch(rewatch)
		return nil
	case errors.Is(err, registry.ErrPoisoned):
		return err
	case errors.Is(err, registry.ErrContended):
		d.logger.Debug("registry busy, deferring cleanup", "count", len(gone))
		d.retry = gone
		return nil
	default:
		d.logger.Error("saving registry after cleanup failed", "error", err)
		return nil
	}
}
