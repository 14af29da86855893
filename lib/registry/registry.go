// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"cmp"
	"maps"
	"slices"

	"github.com/bureau-foundation/wutag/lib/tag"
)

// EntryID identifies a tracked path. Ids are minted from a counter that
// is persisted with the registry and never reused.
type EntryID uint64

// EntryData describes a tracked filesystem entry. Two EntryData values
// are the same entry when their paths are equal.
type EntryData struct {
	Path string `cbor:"path"`
}

// Entry pairs an id with its data, for listings.
type Entry struct {
	ID   EntryID
	Data EntryData
}

type tagRecord struct {
	tag     tag.Tag
	entries map[EntryID]struct{}
}

// Registry indexes tags and entries. The zero value is not usable; call
// New or Load.
type Registry struct {
	path    string
	nextID  EntryID
	tags    map[string]*tagRecord
	entries map[EntryID]EntryData
}

// New returns an empty registry that saves to path.
func New(path string) *Registry {
	return &Registry{
		path:    path,
		nextID:  1,
		tags:    make(map[string]*tagRecord),
		entries: make(map[EntryID]EntryData),
	}
}

// Path returns the file the registry saves to.
func (r *Registry) Path() string { return r.path }

// AddOrUpdateEntry returns the id of the entry for path, creating one if
// no entry has that path. created reports whether a new id was minted.
func (r *Registry) AddOrUpdateEntry(path string) (id EntryID, created bool) {
	if existing, ok := r.FindEntry(path); ok {
		r.entries[existing] = EntryData{Path: path}
		return existing, false
	}
	id = r.nextID
	r.nextID++
	r.entries[id] = EntryData{Path: path}
	return id, true
}

// TagEntry attaches t to the entry id and reports whether it was already
// attached. A tag that already exists keeps its color. Unknown ids are
// ignored and report false.
func (r *Registry) TagEntry(t tag.Tag, id EntryID) (alreadyPresent bool) {
	if _, ok := r.entries[id]; !ok {
		return false
	}
	record, ok := r.tags[t.Name]
	if !ok {
		record = &tagRecord{tag: t, entries: make(map[EntryID]struct{})}
		r.tags[t.Name] = record
	}
	if _, ok := record.entries[id]; ok {
		return true
	}
	record.entries[id] = struct{}{}
	return false
}

// UntagEntry detaches the tag name from the entry id. A tag left with no
// entries is deleted. If the entry is left with no tags it is deleted
// too, and its data is returned with removed set.
func (r *Registry) UntagEntry(name string, id EntryID) (data EntryData, removed bool) {
	if record, ok := r.tags[name]; ok {
		delete(record.entries, id)
		if len(record.entries) == 0 {
			delete(r.tags, name)
		}
	}
	if r.hasTags(id) {
		return EntryData{}, false
	}
	data, removed = r.entries[id]
	delete(r.entries, id)
	return data, removed
}

// ClearEntry detaches every tag from id, deleting tags left empty, and
// removes the entry.
func (r *Registry) ClearEntry(id EntryID) {
	for name, record := range r.tags {
		delete(record.entries, id)
		if len(record.entries) == 0 {
			delete(r.tags, name)
		}
	}
	delete(r.entries, id)
}

// RemoveEntry deletes an entry that carries no tags and returns its
// data. An entry that still carries tags is left alone and removed is
// false.
func (r *Registry) RemoveEntry(id EntryID) (data EntryData, removed bool) {
	if r.hasTags(id) {
		return EntryData{}, false
	}
	data, removed = r.entries[id]
	delete(r.entries, id)
	return data, removed
}

// ClearTag deletes the tag name and returns the entries that were left
// with no tags as a result, sorted by path. Those entries are removed.
func (r *Registry) ClearTag(name string) []EntryData {
	record, ok := r.tags[name]
	if !ok {
		return nil
	}
	delete(r.tags, name)

	var orphaned []EntryData
	for id := range record.entries {
		if r.hasTags(id) {
			continue
		}
		if data, ok := r.entries[id]; ok {
			orphaned = append(orphaned, data)
			delete(r.entries, id)
		}
	}
	slices.SortFunc(orphaned, func(a, b EntryData) int { return cmp.Compare(a.Path, b.Path) })
	return orphaned
}

// FindEntry returns the id of the entry whose path equals path.
func (r *Registry) FindEntry(path string) (EntryID, bool) {
	for id, data := range r.entries {
		if data.Path == path {
			return id, true
		}
	}
	return 0, false
}

// Entry returns the data for id.
func (r *Registry) Entry(id EntryID) (EntryData, bool) {
	data, ok := r.entries[id]
	return data, ok
}

// Tag returns the tag record named name, with its registered color.
func (r *Registry) Tag(name string) (tag.Tag, bool) {
	record, ok := r.tags[name]
	if !ok {
		return tag.Tag{}, false
	}
	return record.tag, true
}

// EntryTags returns the tags attached to id, sorted by name.
func (r *Registry) EntryTags(id EntryID) []tag.Tag {
	var tags []tag.Tag
	for _, record := range r.tags {
		if _, ok := record.entries[id]; ok {
			tags = append(tags, record.tag)
		}
	}
	slices.SortFunc(tags, tag.Compare)
	return tags
}

// TagEntries returns the entries carrying the tag name, sorted by path.
func (r *Registry) TagEntries(name string) []Entry {
	record, ok := r.tags[name]
	if !ok {
		return nil
	}
	return r.entriesFor(slices.Collect(maps.Keys(record.entries)))
}

// ListTags returns every tag, sorted by name.
func (r *Registry) ListTags() []tag.Tag {
	tags := make([]tag.Tag, 0, len(r.tags))
	for _, record := range r.tags {
		tags = append(tags, record.tag)
	}
	slices.SortFunc(tags, tag.Compare)
	return tags
}

// ListEntries returns every entry, sorted by path.
func (r *Registry) ListEntries() []Entry {
	return r.entriesFor(slices.Collect(maps.Keys(r.entries)))
}

// ListEntriesWithAnyTags returns the ids carrying at least one of names,
// in ascending order. Unknown names contribute nothing.
func (r *Registry) ListEntriesWithAnyTags(names []string) []EntryID {
	union := make(map[EntryID]struct{})
	for _, name := range names {
		if record, ok := r.tags[name]; ok {
			for id := range record.entries {
				union[id] = struct{}{}
			}
		}
	}
	return slices.Sorted(maps.Keys(union))
}

// ListEntriesWithAllTags returns the ids carrying every one of names, in
// ascending order. An empty names list matches nothing.
func (r *Registry) ListEntriesWithAllTags(names []string) []EntryID {
	if len(names) == 0 {
		return nil
	}
	first, ok := r.tags[names[0]]
	if !ok {
		return nil
	}
	var matched []EntryID
	for id := range first.entries {
		carriesAll := true
		for _, name := range names[1:] {
			record, ok := r.tags[name]
			if !ok {
				return nil
			}
			if _, ok := record.entries[id]; !ok {
				carriesAll = false
				break
			}
		}
		if carriesAll {
			matched = append(matched, id)
		}
	}
	slices.Sort(matched)
	return matched
}

// UpdateTagColor replaces the color of the tag name, keeping its entry
// set. It reports false when no such tag exists.
func (r *Registry) UpdateTagColor(name string, color tag.Color) bool {
	record, ok := r.tags[name]
	if !ok {
		return false
	}
	delete(r.tags, name)
	r.tags[name] = &tagRecord{tag: tag.New(name, color), entries: record.entries}
	return true
}

// Clear removes every tag and entry. The id counter keeps counting.
func (r *Registry) Clear() {
	clear(r.tags)
	clear(r.entries)
}

// Lookup resolves ids to entries, sorted by path. Unknown ids are
// dropped.
func (r *Registry) Lookup(ids []EntryID) []Entry {
	return r.entriesFor(ids)
}

func (r *Registry) entriesFor(ids []EntryID) []Entry {
	entries := make([]Entry, 0, len(ids))
	for _, id := range ids {
		if data, ok := r.entries[id]; ok {
			entries = append(entries, Entry{ID: id, Data: data})
		}
	}
	slices.SortFunc(entries, func(a, b Entry) int { return cmp.Compare(a.Data.Path, b.Data.Path) })
	return entries
}

func (r *Registry) hasTags(id EntryID) bool {
	for _, record := range r.tags {
		if _, ok := record.entries[id]; ok {
			return true
		}
	}
	return false
}
