// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads wutag.yml, the settings shared by the wutag
// client and the wutagd daemon.
//
// The file is located by [Resolve], in order:
//
//   - an explicit --config path, which must exist;
//   - the WUTAG_CONFIG environment variable, which must exist;
//   - <user config dir>/wutag/wutag.yml, which may be absent, in which
//     case [Default] is used.
//
// Values in the file replace defaults field by field. ${VAR} and
// ${VAR:-default} references in socket_path and registry_path are
// expanded after loading. Environment variables never override values
// in any other way.
//
// Key exports:
//
//   - [Config] -- the settings, with [Default] values
//   - [Resolve], [LoadFile] -- the entry points for loading
//   - [Config.Palette], [Config.PollIntervalDuration] -- typed accessors
package config
