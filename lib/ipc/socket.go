// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ipc

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
)

// SocketName returns the per-user socket file name.
func SocketName(username string) string {
	return fmt.Sprintf("wutag-%s.sock", username)
}

// SocketPath returns the default socket for the current user. It lives
// in $XDG_RUNTIME_DIR, falling back to the user cache directory and
// then /tmp.
func SocketPath() (string, error) {
	username, err := currentUsername()
	if err != nil {
		return "", err
	}
	return filepath.Join(runtimeDirectory(), SocketName(username)), nil
}

func runtimeDirectory() string {
	if directory := os.Getenv("XDG_RUNTIME_DIR"); directory != "" {
		return directory
	}
	if directory, err := os.UserCacheDir(); err == nil {
		return directory
	}
	return os.TempDir()
}

func currentUsername() (string, error) {
	current, err := user.Current()
	if err == nil && current.Username != "" {
		return current.Username, nil
	}
	if name := os.Getenv("USER"); name != "" {
		return name, nil
	}
	if err != nil {
		return "", fmt.Errorf("determining current user: %w", err)
	}
	return "", fmt.Errorf("determining current user: empty username")
}
