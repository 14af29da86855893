// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package tag defines the Tag model and how a tag's presence on a file
// is recorded in that file's extended attributes.
//
// A tag is identified by its name alone. Color is display metadata that
// lives only in the daemon's registry; it is never written to disk. A
// file carries one attribute per tag:
//
//	user.wutag.<base64(name)> = ""
//
// Recoloring a tag therefore never touches a file.
//
// Keys outside the user.wutag. namespace are foreign ([ErrForeignKey]).
// Keys inside it that do not decode are invalid ([ErrInvalidKey]).
// Enumeration ([List], [HasAny], [ClearAll]) skips both kinds silently.
// A direct call to [Decode] reports them.
package tag
