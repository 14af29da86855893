// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tag

import (
	"errors"
	"fmt"
	"slices"

	"github.com/bureau-foundation/wutag/lib/xattr"
)

var (
	// ErrTagExists is returned by SaveTo when the file already carries
	// a tag with the same name.
	ErrTagExists = errors.New("tag already exists")

	// ErrTagNotFound is returned by RemoveFrom when the file does not
	// carry the tag.
	ErrTagNotFound = errors.New("tag doesn't exist")

	// ErrCapacityExceeded is returned by SaveTo when the file cannot
	// hold another attribute. Callers stop tagging that file.
	ErrCapacityExceeded = xattr.ErrCapacityExceeded
)

// List returns the sorted, de-duplicated names of the tags on path.
// Foreign and undecodable keys are skipped.
func List(path string) ([]string, error) {
	keys, err := xattr.List(path)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, key := range keys {
		name, err := Decode(key)
		if err != nil {
			continue
		}
		names = append(names, name)
	}
	slices.Sort(names)
	return slices.Compact(names), nil
}

// HasAny reports whether path carries at least one decodable tag.
func HasAny(path string) (bool, error) {
	names, err := List(path)
	if err != nil {
		return false, err
	}
	return len(names) > 0, nil
}

// Has reports whether path carries the tag name. Unlike List it looks
// the key up directly.
func Has(path, name string) (bool, error) {
	_, err := xattr.Get(path, Encode(name))
	if errors.Is(err, xattr.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// SaveTo records t on path. It fails with ErrTagExists if the tag is
// already present, and never overwrites an existing attribute.
func SaveTo(path string, t Tag) error {
	if err := ValidateName(t.Name); err != nil {
		return err
	}
	names, err := List(path)
	if err != nil {
		return err
	}
	if _, found := slices.BinarySearch(names, t.Name); found {
		return fmt.Errorf("%w: %q on %s", ErrTagExists, t.Name, path)
	}
	if err := xattr.Set(path, Encode(t.Name), nil); err != nil {
		if errors.Is(err, xattr.ErrExists) {
			return fmt.Errorf("%w: %q on %s", ErrTagExists, t.Name, path)
		}
		return err
	}
	return nil
}

// RemoveFrom removes the tag name from path, or returns ErrTagNotFound.
func RemoveFrom(path, name string) error {
	keys, err := xattr.List(path)
	if err != nil {
		return err
	}
	for _, key := range keys {
		decoded, err := Decode(key)
		if err != nil || decoded != name {
			continue
		}
		return xattr.Remove(path, key)
	}
	return fmt.Errorf("%w: %q on %s", ErrTagNotFound, name, path)
}

// ClearAll removes every decodable tag from path. It keeps going after a
// failed removal and returns all failures joined.
func ClearAll(path string) error {
	keys, err := xattr.List(path)
	if err != nil {
		return err
	}
	var errs []error
	for _, key := range keys {
		if _, err := Decode(key); err != nil {
			continue
		}
		if err := xattr.Remove(path, key); err != nil && !errors.Is(err, xattr.ErrNotFound) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
