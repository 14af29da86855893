// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command tree used by the wutag client.
//
// The central type is [Command], a named subcommand with optional
// nested [Command.Subcommands], a [pflag.FlagSet] factory, and a Run
// function. [Command.Execute] routes to subcommands, parses flags and
// prints help with examples. Unknown subcommands and flags get a "did
// you mean" suggestion when one is within edit distance 3.
//
// Commands that take two lists, such as "wutag set <paths> -- <tags>",
// use [SplitAtDash] on the arguments Run receives: Execute keeps the
// "--" terminator in place so the split point survives flag parsing.
package cli
