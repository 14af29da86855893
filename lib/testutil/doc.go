// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for wutag packages.
//
// [SocketDir] creates a short temporary directory in /tmp for Unix
// domain sockets. sun_path is limited to 108 bytes and t.TempDir()
// paths can exceed that under some test runners.
//
// [XattrDir] creates a temporary directory on a filesystem that accepts
// user.* extended attributes, or skips the test when none is
// available (tmpfs before Linux 6.6, some container overlays).
//
// [RequireReceive] wraps the select-with-timeout pattern so tests never
// hang forever on a channel.
//
// All helpers call t.Fatalf or t.Skipf rather than returning errors.
package testutil
