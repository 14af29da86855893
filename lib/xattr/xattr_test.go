// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package xattr

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"testing"

	"golang.org/x/sys/unix"

	"github.com/bureau-foundation/wutag/lib/testutil"
)

func TestParseList(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"empty", "", nil},
		{"single", "user.key1\x00", []string{"user.key1"}},
		{
			"mixed namespaces",
			"user.key1\x00user.key2\x00user.key3\x00security.testing\x00",
			[]string{"user.key1", "user.key2", "user.key3", "security.testing"},
		},
		{"unterminated tail", "user.a\x00user.b", []string{"user.a", "user.b"}},
		{"empty names skipped", "\x00\x00user.a\x00", []string{"user.a"}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := ParseList([]byte(test.raw)); !reflect.DeepEqual(got, test.want) {
				t.Errorf("ParseList(%q) = %q, want %q", test.raw, got, test.want)
			}
		})
	}
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		errno unix.Errno
		want  error
	}{
		{unix.EEXIST, ErrExists},
		{unix.ENODATA, ErrNotFound},
		{unix.ENOSPC, ErrCapacityExceeded},
		{unix.E2BIG, ErrCapacityExceeded},
		{unix.ENOTSUP, ErrUnsupported},
	}
	for _, test := range tests {
		err := error(&Error{Op: "setxattr", Path: "/x", Name: "user.a", Err: test.errno})
		if !errors.Is(err, test.want) {
			t.Errorf("errors.Is(%v, %v) = false", test.errno, test.want)
		}
		if !errors.Is(err, test.errno) {
			t.Errorf("errno %v not reachable through Unwrap", test.errno)
		}
	}

	missing := error(&Error{Op: "listxattr", Path: "/x", Err: unix.ENOENT})
	if !errors.Is(missing, fs.ErrNotExist) {
		t.Error("ENOENT should match fs.ErrNotExist")
	}
	if errors.Is(missing, ErrNotFound) {
		t.Error("ENOENT must not be classified as a missing attribute")
	}

	raced := error(&Error{Op: "getxattr", Path: "/x", Err: ErrAttributesChanged})
	if !errors.Is(raced, ErrAttributesChanged) {
		t.Error("ErrAttributesChanged not matched")
	}
}

// racingSyscall answers the size query with sized and the read with
// read, failing the read with readErr when set.
func racingSyscall(sized, read int, readErr error) func(dest []byte) (int, error) {
	return func(dest []byte) (int, error) {
		if dest == nil {
			return sized, nil
		}
		if readErr != nil {
			return 0, readErr
		}
		return read, nil
	}
}

func TestSizeRaceReportsAttributesChanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		read    int
		readErr error
	}{
		{"grew between calls", 0, unix.ERANGE},
		{"shrank between calls", 4, nil},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			fake := racingSyscall(8, test.read, test.readErr)
			originalGet, originalList := getxattr, listxattr
			t.Cleanup(func() { getxattr, listxattr = originalGet, originalList })
			getxattr = func(_ string, _ string, dest []byte) (int, error) { return fake(dest) }
			listxattr = func(_ string, dest []byte) (int, error) { return fake(dest) }

			if _, err := Get(path, "user.a"); !errors.Is(err, ErrAttributesChanged) {
				t.Errorf("Get error = %v, want ErrAttributesChanged", err)
			}
			if _, err := List(path); !errors.Is(err, ErrAttributesChanged) {
				t.Errorf("List error = %v, want ErrAttributesChanged", err)
			}
		})
	}
}

func TestSetGetListRemove(t *testing.T) {
	directory := testutil.XattrDir(t)
	path := testutil.WriteFile(t, directory, "file.txt")

	if err := Set(path, "user.test.a", []byte("value")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := Set(path, "user.test.b", nil); err != nil {
		t.Fatalf("Set empty value: %v", err)
	}

	value, err := Get(path, "user.test.a")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(value) != "value" {
		t.Errorf("Get = %q, want %q", value, "value")
	}
	empty, err := Get(path, "user.test.b")
	if err != nil {
		t.Fatalf("Get empty: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("Get empty = %q", empty)
	}

	names, err := List(path)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for _, want := range []string{"user.test.a", "user.test.b"} {
		if !slices.Contains(names, want) {
			t.Errorf("List = %q, missing %q", names, want)
		}
	}

	if err := Set(path, "user.test.a", nil); !errors.Is(err, ErrExists) {
		t.Errorf("create-only Set over existing attribute: got %v, want ErrExists", err)
	}

	if err := Remove(path, "user.test.a"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := Get(path, "user.test.a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after Remove: got %v, want ErrNotFound", err)
	}
	if err := Remove(path, "user.test.a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Remove: got %v, want ErrNotFound", err)
	}
}

func TestListMissingFile(t *testing.T) {
	_, err := List(filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("List on missing file: got %v", err)
	}
	var xerr *Error
	if !errors.As(err, &xerr) || xerr.Op != "listxattr" {
		t.Errorf("expected *Error with op listxattr, got %#v", err)
	}
}

func TestSymlinkDoesNotTouchTarget(t *testing.T) {
	directory := testutil.XattrDir(t)
	target := testutil.WriteFile(t, directory, "target.txt")
	link := filepath.Join(directory, "link")
	if err := os.Symlink(target, link); err != nil {
		t.Fatalf("Symlink: %v", err)
	}
	if !IsSymlink(link) || IsSymlink(target) {
		t.Fatal("IsSymlink misreports link/target")
	}

	// Linux refuses user.* attributes on symlinks themselves; either the
	// set fails with EPERM or it lands on the link. It must never land
	// on the target.
	_ = Set(link, "user.test.link", nil)

	names, err := List(target)
	if err != nil {
		t.Fatalf("List target: %v", err)
	}
	if slices.Contains(names, "user.test.link") {
		t.Error("attribute set through symlink reached the target")
	}
}
