// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bureau-foundation/wutag/lib/glob"
	"github.com/bureau-foundation/wutag/lib/ipc"
	"github.com/bureau-foundation/wutag/lib/registry"
	"github.com/bureau-foundation/wutag/lib/tag"
	"github.com/bureau-foundation/wutag/lib/version"
)

// handle answers one request. Every variant of ipc.Request has a case;
// the default is unreachable for values produced by ipc.DecodeRequest.
func (d *daemon) handle(request ipc.Request) ipc.Response {
	switch request := request.(type) {
	case ipc.TagFiles:
		return ipc.TagFilesResult{Errors: d.tagFiles(request.Files, request.Tags)}
	case ipc.TagFilesPattern:
		files, err := glob.Resolve(request.Glob)
		if err != nil {
			return ipc.TagFilesResult{Errors: []string{err.Error()}}
		}
		return ipc.TagFilesResult{Errors: d.tagFiles(files, request.Tags)}
	case ipc.UntagFiles:
		return ipc.UntagFilesResult{Errors: d.untagFiles(request.Files, request.Tags)}
	case ipc.UntagFilesPattern:
		files, err := glob.Resolve(request.Glob)
		if err != nil {
			return ipc.UntagFilesResult{Errors: []string{err.Error()}}
		}
		return ipc.UntagFilesResult{Errors: d.untagFiles(files, request.Tags)}
	case ipc.EditTag:
		return ipc.EditTagResult{Error: d.editTag(request.Tag, request.Color)}
	case ipc.ClearFiles:
		return ipc.ClearFilesResult{Errors: d.clearFiles(request.Files)}
	case ipc.ClearFilesPattern:
		files, err := glob.Resolve(request.Glob)
		if err != nil {
			return ipc.ClearFilesResult{Errors: []string{err.Error()}}
		}
		return ipc.ClearFilesResult{Errors: d.clearFiles(files)}
	case ipc.ClearTags:
		return ipc.ClearTagsResult{Errors: d.clearTags(request.Tags)}
	case ipc.CopyTags:
		return ipc.CopyTagsResult{Errors: d.copyTags(request.Source, request.Targets)}
	case ipc.CopyTagsPattern:
		files, err := glob.Resolve(request.Glob)
		if err != nil {
			return ipc.CopyTagsResult{Errors: []string{err.Error()}}
		}
		return ipc.CopyTagsResult{Errors: d.copyTags(request.Source, files)}
	case ipc.ListTags:
		return d.listTags(request.WithFiles)
	case ipc.ListFiles:
		return d.listFiles(request.WithTags)
	case ipc.InspectFiles:
		return d.inspectFiles(request.Files)
	case ipc.InspectFilesPattern:
		files, err := glob.Resolve(request.Glob)
		if err != nil {
			return ipc.InspectFilesResult{Errors: []string{err.Error()}}
		}
		return d.inspectFiles(files)
	case ipc.Search:
		return d.search(request.Tags, request.Any)
	case ipc.Ping:
		return ipc.PingResult{Version: version.Short()}
	case ipc.ClearCache:
		return ipc.ClearCacheResult{Error: d.clearCache()}
	default:
		panic(fmt.Sprintf("unhandled request type %T", request))
	}
}

func fileError(path string, err error) string {
	return fmt.Sprintf("Error for `%s`, reason: %v", path, err)
}

func tagError(path, name string, err error) string {
	return fmt.Sprintf("Error for `%s` tag: `%s`, reason: %v", path, name, err)
}

// lockError renders a failure to run a registry operation.
func (d *daemon) lockError(op string, err error) string {
	switch {
	case errors.Is(err, registry.ErrContended):
		d.logger.Warn("registry busy, skipping request", "op", op)
		return "registry is busy, try again"
	case errors.Is(err, registry.ErrPoisoned):
		return "registry is unavailable"
	default:
		d.logger.Error("request failed", "op", op, "error", err)
		return fmt.Sprintf("%s: %v", op, err)
	}
}

// checkPath rejects paths the registry cannot key on.
func checkPath(path string) error {
	if path == "" {
		return errors.New("empty path")
	}
	if !filepath.IsAbs(path) {
		return errors.New("path is not absolute")
	}
	if filepath.Clean(path) != path {
		return errors.New("path is not clean")
	}
	return nil
}

func saveRegistry(r *registry.Registry) error {
	if err := r.Save(); err != nil {
		return fmt.Errorf("saving registry: %w", err)
	}
	return nil
}

func (d *daemon) tagFiles(files []string, tags []tag.Tag) []string {
	if len(files) == 0 {
		return []string{"no files given"}
	}
	if len(tags) == 0 {
		return []string{"no tags given"}
	}
	var errs, tracked []string
	err := d.guard.Write(func(r *registry.Registry) error {
		errs, tracked = tagFilesLocked(r, files, tags)
		return saveRegistry(r)
	})
	if err != nil {
		errs = append(errs, d.lockError("tag files", err))
	}
	d.pending.track(tracked)
	return errs
}

// tagFilesLocked writes tags to each file and records them in r. It
// returns per-file or per-tag failures and the paths that became
// tracked.
func tagFilesLocked(r *registry.Registry, files []string, tags []tag.Tag) (errs, tracked []string) {
	for _, path := range files {
		if err := checkPath(path); err != nil {
			errs = append(errs, fileError(path, err))
			continue
		}
		id, created := r.AddOrUpdateEntry(path)
		if created {
			// Start from a known-empty attribute set.
			if err := tag.ClearAll(path); err != nil {
				errs = append(errs, fileError(path, err))
				r.RemoveEntry(id)
				continue
			}
		}
		for _, t := range tags {
			if registered, ok := r.Tag(t.Name); ok {
				t = registered
			}
			err := tag.SaveTo(path, t)
			if errors.Is(err, tag.ErrTagExists) {
				r.TagEntry(t, id)
			}
			if err != nil {
				errs = append(errs, tagError(path, t.Name, err))
				if errors.Is(err, tag.ErrCapacityExceeded) {
					break
				}
				continue
			}
			r.TagEntry(t, id)
		}
		if _, removed := r.RemoveEntry(id); !removed && created {
			tracked = append(tracked, path)
		}
	}
	return errs, tracked
}

func (d *daemon) untagFiles(files, names []string) []string {
	if len(files) == 0 {
		return []string{"no files given"}
	}
	if len(names) == 0 {
		return []string{"no tags given"}
	}
	var errs, untracked []string
	err := d.guard.Write(func(r *registry.Registry) error {
		for _, path := range files {
			id, tracked := r.FindEntry(path)
			for _, name := range names {
				if err := tag.RemoveFrom(path, name); err != nil {
					errs = append(errs, tagError(path, name, err))
				}
				if !tracked {
					continue
				}
				if data, removed := r.UntagEntry(name, id); removed {
					untracked = append(untracked, data.Path)
					tracked = false
				}
			}
		}
		return saveRegistry(r)
	})
	if err != nil {
		errs = append(errs, d.lockError("untag files", err))
	}
	d.pending.untrack(untracked)
	return errs
}

func (d *daemon) editTag(name string, color tag.Color) string {
	var message string
	err := d.guard.Write(func(r *registry.Registry) error {
		if !r.UpdateTagColor(name, color) {
			message = fmt.Sprintf("tag `%s` doesn't exist", name)
			return nil
		}
		return saveRegistry(r)
	})
	if err != nil {
		return d.lockError("edit tag", err)
	}
	return message
}

func (d *daemon) clearFiles(files []string) []string {
	if len(files) == 0 {
		return []string{"no files given"}
	}
	var errs, untracked []string
	err := d.guard.Write(func(r *registry.Registry) error {
		for _, path := range files {
			if err := tag.ClearAll(path); err != nil {
				errs = append(errs, fileError(path, err))
			}
			if id, ok := r.FindEntry(path); ok {
				r.ClearEntry(id)
				untracked = append(untracked, path)
			}
		}
		return saveRegistry(r)
	})
	if err != nil {
		errs = append(errs, d.lockError("clear files", err))
	}
	d.pending.untrack(untracked)
	return errs
}

func (d *daemon) clearTags(names []string) []string {
	if len(names) == 0 {
		return []string{"no tags given"}
	}
	var errs, untracked []string
	err := d.guard.Write(func(r *registry.Registry) error {
		for _, name := range names {
			entries := r.TagEntries(name)
			if len(entries) == 0 {
				errs = append(errs, fmt.Sprintf("tag `%s` doesn't exist", name))
				continue
			}
			for _, entry := range entries {
				err := tag.RemoveFrom(entry.Data.Path, name)
				if err != nil && !errors.Is(err, tag.ErrTagNotFound) && !errors.Is(err, os.ErrNotExist) {
					errs = append(errs, tagError(entry.Data.Path, name, err))
				}
			}
			for _, orphaned := range r.ClearTag(name) {
				untracked = append(untracked, orphaned.Path)
			}
		}
		return saveRegistry(r)
	})
	if err != nil {
		errs = append(errs, d.lockError("clear tags", err))
	}
	d.pending.untrack(untracked)
	return errs
}

func (d *daemon) copyTags(source string, targets []string) []string {
	if len(targets) == 0 {
		return []string{"no target files given"}
	}
	names, err := tag.List(source)
	if err != nil {
		return []string{fileError(source, err)}
	}
	if len(names) == 0 {
		return []string{fileError(source, errors.New("file has no tags"))}
	}

	var errs, tracked []string
	err = d.guard.Write(func(r *registry.Registry) error {
		tags := make([]tag.Tag, 0, len(names))
		for _, name := range names {
			if registered, ok := r.Tag(name); ok {
				tags = append(tags, registered)
			} else {
				tags = append(tags, tag.Random(name, d.palette))
			}
		}
		errs, tracked = tagFilesLocked(r, targets, tags)
		return saveRegistry(r)
	})
	if err != nil {
		errs = append(errs, d.lockError("copy tags", err))
	}
	d.pending.track(tracked)
	return errs
}

func (d *daemon) listTags(withFiles bool) ipc.ListTagsResult {
	var result ipc.ListTagsResult
	err := d.guard.Read(func(r *registry.Registry) error {
		for _, t := range r.ListTags() {
			listing := ipc.TagListing{Tag: t}
			if withFiles {
				for _, entry := range r.TagEntries(t.Name) {
					listing.Files = append(listing.Files, entry.Data.Path)
				}
			}
			result.Tags = append(result.Tags, listing)
		}
		return nil
	})
	if err != nil {
		return ipc.ListTagsResult{Error: d.lockError("list tags", err)}
	}
	return result
}

func (d *daemon) listFiles(withTags bool) ipc.ListFilesResult {
	var result ipc.ListFilesResult
	err := d.guard.Read(func(r *registry.Registry) error {
		for _, entry := range r.ListEntries() {
			listing := ipc.FileListing{Path: entry.Data.Path}
			if withTags {
				listing.Tags = r.EntryTags(entry.ID)
			}
			result.Files = append(result.Files, listing)
		}
		return nil
	})
	if err != nil {
		return ipc.ListFilesResult{Error: d.lockError("list files", err)}
	}
	return result
}

// inspectFiles reports the registered tags of each file. A file that
// exists but is not tracked is listed with no tags.
func (d *daemon) inspectFiles(files []string) ipc.InspectFilesResult {
	var result ipc.InspectFilesResult
	err := d.guard.Read(func(r *registry.Registry) error {
		for _, path := range files {
			id, tracked := r.FindEntry(path)
			if !tracked {
				if _, err := os.Lstat(path); err != nil {
					result.Errors = append(result.Errors, fileError(path, err))
					continue
				}
				result.Files = append(result.Files, ipc.FileListing{Path: path, Tags: []tag.Tag{}})
				continue
			}
			result.Files = append(result.Files, ipc.FileListing{Path: path, Tags: r.EntryTags(id)})
		}
		return nil
	})
	if err != nil {
		return ipc.InspectFilesResult{Errors: []string{d.lockError("inspect files", err)}}
	}
	return result
}

func (d *daemon) search(names []string, matchAny bool) ipc.SearchResult {
	if len(names) == 0 {
		return ipc.SearchResult{Error: "no tags given"}
	}
	var result ipc.SearchResult
	err := d.guard.Read(func(r *registry.Registry) error {
		var ids []registry.EntryID
		if matchAny {
			ids = r.ListEntriesWithAnyTags(names)
		} else {
			ids = r.ListEntriesWithAllTags(names)
		}
		result.Files = []string{}
		for _, entry := range r.Lookup(ids) {
			result.Files = append(result.Files, entry.Data.Path)
		}
		return nil
	})
	if err != nil {
		return ipc.SearchResult{Error: d.lockError("search", err)}
	}
	return result
}

// clearCache forgets every entry without touching files.
func (d *daemon) clearCache() string {
	var untracked []string
	err := d.guard.Write(func(r *registry.Registry) error {
		for _, entry := range r.ListEntries() {
			untracked = append(untracked, entry.Data.Path)
		}
		r.Clear()
		return saveRegistry(r)
	})
	d.pending.untrack(untracked)
	if err != nil {
		return d.lockError("clear cache", err)
	}
	return ""
}
