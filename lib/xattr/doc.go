// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package xattr is a thin, symlink-aware wrapper over the Linux
// extended attribute syscalls.
//
// Every operation first checks whether the path itself is a symlink
// (lstat). If it is, the non-dereferencing l*xattr variant is used, so
// an attribute set on a symlink lands on the link and never on its
// target.
//
// Reading an attribute value or the attribute list takes two syscalls:
// one with an empty buffer to learn the size, one to fill a buffer of
// exactly that size. If another process changes the attributes between
// the two calls, the sizes disagree and the operation fails with
// [ErrAttributesChanged] instead of returning a truncated result.
//
// Failures are returned as *[Error], which carries the operation, path
// and attribute name. errors.Is matches both the raw errno (for
// example unix.ENOENT or fs.ErrNotExist) and the classified sentinels
// [ErrExists], [ErrNotFound], [ErrCapacityExceeded] and
// [ErrUnsupported].
package xattr
