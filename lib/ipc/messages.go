// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ipc

import (
	"github.com/bureau-foundation/wutag/lib/glob"
	"github.com/bureau-foundation/wutag/lib/tag"
)

// Request is a message from client to daemon. The set of
// implementations is closed.
type Request interface {
	isRequest()
}

// Response is a message from daemon to client. The set of
// implementations is closed.
type Response interface {
	isResponse()
}

// TagFiles attaches Tags to each of Files.
type TagFiles struct {
	Files []string  `cbor:"files"`
	Tags  []tag.Tag `cbor:"tags"`
}

// TagFilesPattern attaches Tags to every path Glob resolves to.
type TagFilesPattern struct {
	Glob glob.Descriptor `cbor:"glob"`
	Tags []tag.Tag       `cbor:"tags"`
}

// UntagFiles detaches the named tags from each of Files.
type UntagFiles struct {
	Files []string `cbor:"files"`
	Tags  []string `cbor:"tags"`
}

// UntagFilesPattern detaches the named tags from every path Glob
// resolves to.
type UntagFilesPattern struct {
	Glob glob.Descriptor `cbor:"glob"`
	Tags []string        `cbor:"tags"`
}

// EditTag changes the color of an existing tag.
type EditTag struct {
	Tag   string    `cbor:"tag"`
	Color tag.Color `cbor:"color"`
}

// ClearFiles removes every tag from each of Files.
type ClearFiles struct {
	Files []string `cbor:"files"`
}

// ClearFilesPattern removes every tag from every path Glob resolves to.
type ClearFilesPattern struct {
	Glob glob.Descriptor `cbor:"glob"`
}

// ClearTags deletes the named tags from every file carrying them.
type ClearTags struct {
	Tags []string `cbor:"tags"`
}

// CopyTags attaches the tags of Source to each of Targets.
type CopyTags struct {
	Source  string   `cbor:"source"`
	Targets []string `cbor:"targets"`
}

// CopyTagsPattern attaches the tags of Source to every path Glob
// resolves to.
type CopyTagsPattern struct {
	Source string          `cbor:"source"`
	Glob   glob.Descriptor `cbor:"glob"`
}

// ListTags lists every tag, optionally with the files carrying it.
type ListTags struct {
	WithFiles bool `cbor:"with_files"`
}

// ListFiles lists every tracked file, optionally with its tags.
type ListFiles struct {
	WithTags bool `cbor:"with_tags"`
}

// InspectFiles reports the tags of each of Files.
type InspectFiles struct {
	Files []string `cbor:"files"`
}

// InspectFilesPattern reports the tags of every path Glob resolves to.
type InspectFilesPattern struct {
	Glob glob.Descriptor `cbor:"glob"`
}

// Search finds files carrying all of Tags, or any of them when Any is
// set.
type Search struct {
	Tags []string `cbor:"tags"`
	Any  bool     `cbor:"any"`
}

// Ping checks that the daemon is serving.
type Ping struct{}

// ClearCache empties the daemon's registry without touching files.
type ClearCache struct{}

func (TagFiles) isRequest() {}
func (TagFilesPattern) isRequest() {}
func (UntagFiles) isRequest() {}
func (UntagFilesPattern) isRequest() {}
func (EditTag) isRequest() {}
func (ClearFiles) isRequest() {}
func (ClearFilesPattern) isRequest() {}
func (ClearTags) isRequest() {}
func (CopyTags) isRequest() {}
func (CopyTagsPattern) isRequest() {}
func (ListTags) isRequest() {}
func (ListFiles) isRequest() {}
func (InspectFiles) isRequest() {}
func (InspectFilesPattern) isRequest() {}
func (Search) isRequest() {}
func (Ping) isRequest() {}
func (ClearCache) isRequest() {}

// TagListing is a tag and, when requested, the files carrying it.
type TagListing struct {
	Tag   tag.Tag  `cbor:"tag"`
	Files []string `cbor:"files"`
}

// FileListing is a tracked file and, when requested, its tags.
type FileListing struct {
	Path string    `cbor:"path"`
	Tags []tag.Tag `cbor:"tags"`
}

// TagFilesResult answers TagFiles and TagFilesPattern. Errors holds one
// line per failed path or path/tag pair.
type TagFilesResult struct {
	Errors []string `cbor:"errors"`
}

// UntagFilesResult answers UntagFiles and UntagFilesPattern.
type UntagFilesResult struct {
	Errors []string `cbor:"errors"`
}

// EditTagResult answers EditTag.
type EditTagResult struct {
	Error string `cbor:"error"`
}

// ClearFilesResult answers ClearFiles and ClearFilesPattern.
type ClearFilesResult struct {
	Errors []string `cbor:"errors"`
}

// ClearTagsResult answers ClearTags.
type ClearTagsResult struct {
	Errors []string `cbor:"errors"`
}

// CopyTagsResult answers CopyTags and CopyTagsPattern.
type CopyTagsResult struct {
	Errors []string `cbor:"errors"`
}

// ListTagsResult answers ListTags.
type ListTagsResult struct {
	Tags  []TagListing `cbor:"tags"`
	Error string       `cbor:"error"`
}

// ListFilesResult answers ListFiles.
type ListFilesResult struct {
	Files []FileListing `cbor:"files"`
	Error string        `cbor:"error"`
}

// InspectFilesResult answers InspectFiles and InspectFilesPattern.
// Files lists the tracked paths among those asked about. Errors holds
// one line per path that could not be inspected.
type InspectFilesResult struct {
	Files  []FileListing `cbor:"files"`
	Errors []string      `cbor:"errors"`
}

// SearchResult answers Search with the matching paths.
type SearchResult struct {
	Files []string `cbor:"files"`
	Error string   `cbor:"error"`
}

// PingResult answers Ping.
type PingResult struct {
	Version string `cbor:"version"`
	Error   string `cbor:"error"`
}

// ClearCacheResult answers ClearCache.
type ClearCacheResult struct {
	Error string `cbor:"error"`
}

func (TagFilesResult) isResponse() {}
func (UntagFilesResult) isResponse() {}
func (EditTagResult) isResponse() {}
func (ClearFilesResult) isResponse() {}
func (ClearTagsResult) isResponse() {}
func (CopyTagsResult) isResponse() {}
func (ListTagsResult) isResponse() {}
func (ListFilesResult) isResponse() {}
func (InspectFilesResult) isResponse() {}
func (SearchResult) isResponse() {}
func (PingResult) isResponse() {}
func (ClearCacheResult) isResponse() {}
