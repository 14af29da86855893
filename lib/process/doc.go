// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides entrypoint helpers shared by the wutag and
// wutagd binaries: fatal error reporting before a logger exists, and
// construction of the structured logger itself.
package process
