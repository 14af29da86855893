// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/sys/unix"
)

// SocketDir creates a temporary directory suitable for Unix domain
// sockets. It is removed when the test completes.
func SocketDir(t *testing.T) string {
	t.Helper()
	directory, err := os.MkdirTemp("/tmp", "wutag-test-*")
	if err != nil {
		t.Fatalf("creating socket directory: %v", err)
	}
	t.Cleanup(func() {
		_ = os.RemoveAll(directory)
	})
	return directory
}

// XattrDir returns a temporary directory whose filesystem supports
// user extended attributes. The test is skipped if neither t.TempDir()
// nor the working directory qualifies.
func XattrDir(t *testing.T) string {
	t.Helper()

	candidates := []string{t.TempDir()}
	if workingDirectory, err := os.Getwd(); err == nil {
		candidates = append(candidates, workingDirectory)
	}

	var lastErr error
	for _, parent := range candidates {
		directory, err := os.MkdirTemp(parent, ".wutag-xattr-*")
		if err != nil {
			lastErr = err
			continue
		}
		t.Cleanup(func() { _ = os.RemoveAll(directory) })

		sample := filepath.Join(directory, "sample")
		if err := os.WriteFile(sample, nil, 0o600); err != nil {
			t.Fatalf("creating xattr sample file: %v", err)
		}
		err = unix.Setxattr(sample, "user.wutag-check", nil, 0)
		os.Remove(sample)
		if err == nil {
			return directory
		}
		if !errors.Is(err, unix.ENOTSUP) && !errors.Is(err, unix.EPERM) {
			t.Fatalf("checking xattr support in %s: %v", directory, err)
		}
		lastErr = err
	}
	t.Skipf("no filesystem with user xattr support available: %v", lastErr)
	return ""
}

// WriteFile creates an empty file at directory/name and returns its
// absolute path.
func WriteFile(t *testing.T, directory, name string) string {
	t.Helper()
	path := filepath.Join(directory, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("creating parent of %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(name), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	absolute, err := filepath.Abs(path)
	if err != nil {
		t.Fatalf("resolving %s: %v", path, err)
	}
	return absolute
}
