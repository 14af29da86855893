// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package glob expands a pattern into the concrete paths it matches
// under a base directory, bounded by a maximum depth.
//
// Patterns use doublestar syntax (*, ?, [class], {alt,ern}, **). A
// pattern containing no slash is matched against each entry's base name,
// so "*.png" finds PNG files at any depth up to MaxDepth. A pattern with
// a slash is matched against the path relative to BaseDir.
package glob

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultMaxDepth is the depth used when a Descriptor leaves MaxDepth
// unset.
const DefaultMaxDepth = 2

// Descriptor is a pattern together with the directory it is resolved
// against. It travels unresolved over IPC and is expanded by the daemon.
type Descriptor struct {
	Pattern  string `cbor:"pattern"`
	BaseDir  string `cbor:"base_dir"`
	MaxDepth int    `cbor:"max_depth"`
}

// Resolve returns the absolute paths under d.BaseDir matching d.Pattern,
// in lexical order. Entries deeper than d.MaxDepth levels below BaseDir
// are not visited. BaseDir itself is never returned. Unreadable
// subdirectories are skipped.
func Resolve(d Descriptor) ([]string, error) {
	if d.Pattern == "" {
		return nil, fmt.Errorf("empty glob pattern")
	}
	if !doublestar.ValidatePattern(d.Pattern) {
		return nil, fmt.Errorf("invalid glob pattern %q", d.Pattern)
	}
	base := d.BaseDir
	if base == "" {
		base = "."
	}
	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("resolving base directory: %w", err)
	}
	info, err := os.Stat(base)
	if err != nil {
		return nil, fmt.Errorf("glob base directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("glob base directory %s is not a directory", base)
	}
	maxDepth := d.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	matchBase := !strings.Contains(d.Pattern, "/")

	var matches []string
	err = fs.WalkDir(os.DirFS(base), ".", func(relative string, entry fs.DirEntry, err error) error {
		if err != nil {
			if relative != "." && entry != nil && entry.IsDir() {
				return fs.SkipDir
			}
			if relative != "." {
				return nil
			}
			return err
		}
		if relative == "." {
			return nil
		}
		depth := strings.Count(relative, "/") + 1
		if depth > maxDepth {
			if entry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		subject := relative
		if matchBase {
			subject = path.Base(relative)
		}
		if doublestar.MatchUnvalidated(d.Pattern, subject) {
			matches = append(matches, filepath.Join(base, filepath.FromSlash(relative)))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", base, err)
	}
	return matches, nil
}
