// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tag

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
)

// ErrInvalidName is returned for names that cannot be stored.
var ErrInvalidName = errors.New("invalid tag name")

// Tag is a named, colored label. Two tags with the same Name are the
// same tag regardless of Color.
type Tag struct {
	Name  string `cbor:"name"`
	Color Color  `cbor:"color"`
}

// New returns a Tag with the given name and color.
func New(name string, color Color) Tag {
	return Tag{Name: name, Color: color}
}

// Random returns a Tag whose color is picked from palette, or
// DefaultColor when the palette is empty.
func Random(name string, palette []Color) Tag {
	if len(palette) == 0 {
		return New(name, DefaultColor)
	}
	return New(name, palette[rand.IntN(len(palette))])
}

// Equal reports whether t and other name the same tag.
func (t Tag) Equal(other Tag) bool { return t.Name == other.Name }

// Less orders tags by name.
func (t Tag) Less(other Tag) bool { return t.Name < other.Name }

// Compare orders tags by name, for slices.SortFunc.
func Compare(a, b Tag) int { return strings.Compare(a.Name, b.Name) }

func (t Tag) String() string { return t.Name }

// ValidateName rejects the empty name and names containing NUL, which
// cannot round-trip through the attribute layer.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidName)
	}
	if strings.IndexByte(name, 0) >= 0 {
		return fmt.Errorf("%w: %q contains NUL", ErrInvalidName, name)
	}
	return nil
}
