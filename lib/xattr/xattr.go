// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package xattr

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

var (
	// ErrExists is returned by Set when the attribute is already present.
	ErrExists = errors.New("attribute already exists")

	// ErrNotFound is returned when the named attribute does not exist.
	ErrNotFound = errors.New("attribute not found")

	// ErrCapacityExceeded is returned when the file has no room for
	// another attribute. Retrying on the same file is futile.
	ErrCapacityExceeded = errors.New("attribute capacity exceeded")

	// ErrUnsupported is returned when the filesystem does not support
	// user extended attributes.
	ErrUnsupported = errors.New("extended attributes not supported")

	// ErrAttributesChanged is returned when the attributes changed
	// between the size query and the fetch.
	ErrAttributesChanged = errors.New("attributes changed concurrently")
)

// Error records a failed extended attribute operation.
type Error struct {
	Op   string
	Path string
	Name string
	Err  error
}

func (e *Error) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s %s %q: %v", e.Op, e.Path, e.Name, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel that classifies e.Err.
func (e *Error) Is(target error) bool {
	return target != nil && target == classify(e.Err)
}

func classify(err error) error {
	var errno unix.Errno
	if !errors.As(err, &errno) {
		return nil
	}
	switch errno {
	case unix.EEXIST:
		return ErrExists
	case unix.ENODATA:
		return ErrNotFound
	case unix.ENOSPC, unix.E2BIG:
		return ErrCapacityExceeded
	case unix.ENOTSUP:
		return ErrUnsupported
	}
	return nil
}

// Syscalls that report attribute sizes. Tests replace them to simulate
// attributes changing between the two calls.
var (
	getxattr   = unix.Getxattr
	lgetxattr  = unix.Lgetxattr
	listxattr  = unix.Listxattr
	llistxattr = unix.Llistxattr
)

// IsSymlink reports whether path itself is a symbolic link. A path that
// cannot be stat'ed is reported as not a symlink; the subsequent
// syscall surfaces the real error.
func IsSymlink(path string) bool {
	info, err := os.Lstat(path)
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeSymlink != 0
}

// Get returns the value of the attribute name on path.
func Get(path, name string) ([]byte, error) {
	get := getxattr
	if IsSymlink(path) {
		get = lgetxattr
	}

	size, err := get(path, name, nil)
	if err != nil {
		return nil, &Error{Op: "getxattr", Path: path, Name: name, Err: err}
	}
	if size == 0 {
		return []byte{}, nil
	}

	buffer := make([]byte, size)
	read, err := get(path, name, buffer)
	if err != nil {
		if errors.Is(err, unix.ERANGE) {
			err = ErrAttributesChanged
		}
		return nil, &Error{Op: "getxattr", Path: path, Name: name, Err: err}
	}
	if read != size {
		return nil, &Error{Op: "getxattr", Path: path, Name: name, Err: ErrAttributesChanged}
	}
	return buffer, nil
}

// Set creates the attribute name on path with value. It never
// overwrites: an existing attribute yields ErrExists.
func Set(path, name string, value []byte) error {
	set := unix.Setxattr
	if IsSymlink(path) {
		set = unix.Lsetxattr
	}
	if err := set(path, name, value, unix.XATTR_CREATE); err != nil {
		return &Error{Op: "setxattr", Path: path, Name: name, Err: err}
	}
	return nil
}

// Remove deletes the attribute name from path.
func Remove(path, name string) error {
	remove := unix.Removexattr
	if IsSymlink(path) {
		remove = unix.Lremovexattr
	}
	if err := remove(path, name); err != nil {
		return &Error{Op: "removexattr", Path: path, Name: name, Err: err}
	}
	return nil
}

// List returns the names of every attribute on path, in the order the
// kernel reports them.
func List(path string) ([]string, error) {
	list := listxattr
	if IsSymlink(path) {
		list = llistxattr
	}

	size, err := list(path, nil)
	if err != nil {
		return nil, &Error{Op: "listxattr", Path: path, Err: err}
	}
	if size == 0 {
		return nil, nil
	}

	buffer := make([]byte, size)
	read, err := list(path, buffer)
	if err != nil {
		if errors.Is(err, unix.ERANGE) {
			err = ErrAttributesChanged
		}
		return nil, &Error{Op: "listxattr", Path: path, Err: err}
	}
	if read != size {
		return nil, &Error{Op: "listxattr", Path: path, Err: ErrAttributesChanged}
	}
	return ParseList(buffer), nil
}

// ParseList splits the NUL-terminated name list returned by
// listxattr(2). A trailing name without a terminator is kept.
func ParseList(raw []byte) []string {
	var names []string
	for len(raw) > 0 {
		end := bytes.IndexByte(raw, 0)
		if end < 0 {
			names = append(names, string(raw))
			break
		}
		if end > 0 {
			names = append(names, string(raw[:end]))
		}
		raw = raw[end+1:]
	}
	return names
}
