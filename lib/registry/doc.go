// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package registry is the daemon's authoritative index of which tags are
// attached to which filesystem entries.
//
// A Registry holds two maps: tag name to the set of entry ids carrying
// it, and entry id to the entry's path. Between operations it maintains:
//
//   - every id in a tag's set is present in the entry map;
//   - no tag has an empty entry set;
//   - no entry carries zero tags;
//   - each path appears at most once, found by path rather than by id.
//
// The one deliberate exception is an entry freshly returned by
// [Registry.AddOrUpdateEntry]: the caller is expected to tag it or call
// [Registry.RemoveEntry] before releasing the lock.
//
// Registry is not safe for concurrent use. The daemon shares one through
// a [Guard], which bounds lock acquisition and turns a panic inside a
// critical section into a permanent [ErrPoisoned].
//
// The registry persists to a single CBOR file via [Registry.Save], which
// replaces the file atomically. [Load] reads it back.
package registry
