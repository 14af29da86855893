// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/bureau-foundation/wutag/lib/codec"
	"github.com/bureau-foundation/wutag/lib/tag"
)

// snapshotVersion is bumped whenever the on-disk layout changes
// incompatibly. Load rejects other versions.
const snapshotVersion = 1

type snapshot struct {
	Version int                   `cbor:"version"`
	NextID  EntryID               `cbor:"next_id"`
	Tags    []snapshotTag         `cbor:"tags"`
	Entries map[EntryID]EntryData `cbor:"entries"`
}

type snapshotTag struct {
	Tag     tag.Tag   `cbor:"tag"`
	Entries []EntryID `cbor:"entries"`
}

func (r *Registry) snapshot() snapshot {
	state := snapshot{
		Version: snapshotVersion,
		NextID:  r.nextID,
		Tags:    make([]snapshotTag, 0, len(r.tags)),
		Entries: r.entries,
	}
	for _, t := range r.ListTags() {
		record := r.tags[t.Name]
		ids := make([]EntryID, 0, len(record.entries))
		for id := range record.entries {
			ids = append(ids, id)
		}
		slices.Sort(ids)
		state.Tags = append(state.Tags, snapshotTag{Tag: record.tag, Entries: ids})
	}
	return state
}

// Save writes the registry to Path, replacing the previous file
// atomically. The parent directory is created if needed.
func (r *Registry) Save() error {
	data, err := codec.Marshal(r.snapshot())
	if err != nil {
		return fmt.Errorf("encoding registry: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(r.path), 0o700); err != nil {
		return fmt.Errorf("creating registry directory: %w", err)
	}

	temporaryPath := r.path + ".tmp"
	file, err := os.OpenFile(temporaryPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating temporary registry file: %w", err)
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("writing temporary registry file: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("syncing temporary registry file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("closing temporary registry file: %w", err)
	}
	if err := os.Rename(temporaryPath, r.path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("renaming registry file into place: %w", err)
	}

	parentDirectory, err := os.Open(filepath.Dir(r.path))
	if err == nil {
		parentDirectory.Sync()
		parentDirectory.Close()
	}
	return nil
}

// Load reads a registry previously written by Save. Ids referenced by a
// tag but missing from the entry map are dropped, and tags or entries
// left empty by that are dropped too, so a damaged file cannot break
// the registry's invariants.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading registry: %w", err)
	}
	var state snapshot
	if err := codec.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decoding registry %s: %w", path, err)
	}
	if state.Version != snapshotVersion {
		return nil, fmt.Errorf("registry %s has version %d, want %d", path, state.Version, snapshotVersion)
	}

	registry := New(path)
	for id, data := range state.Entries {
		registry.entries[id] = data
		if id >= registry.nextID {
			registry.nextID = id + 1
		}
	}
	if state.NextID > registry.nextID {
		registry.nextID = state.NextID
	}
	for _, stored := range state.Tags {
		if tag.ValidateName(stored.Tag.Name) != nil {
			continue
		}
		for _, id := range stored.Entries {
			registry.TagEntry(stored.Tag, id)
		}
	}
	for id := range registry.entries {
		if !registry.hasTags(id) {
			delete(registry.entries, id)
		}
	}
	return registry, nil
}
