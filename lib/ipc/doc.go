// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package ipc is the wire protocol between the wutag client and the
// wutagd daemon.
//
// Each exchange uses its own Unix socket connection: the client writes
// one request frame, the daemon writes one response frame, and both
// sides close. A frame is an 8-byte big-endian length followed by that
// many bytes of payload ([WriteFrame], [ReadFrame]).
//
// The payload is a CBOR envelope naming the message variant and
// carrying its body. [Request] and [Response] are closed sets: only the
// types in this package implement them, and [EncodeRequest],
// [DecodeRequest], [EncodeResponse] and [DecodeResponse] switch over
// every variant. Unknown variant names fail with [ErrUnknownMessage].
//
// Requests that operate on files come in two forms, one carrying an
// explicit path list and one carrying a [glob.Descriptor] that the
// daemon resolves before running the same logic.
//
// [Client] is the calling side. [Server] is the daemon side. It holds at
// most one accepted connection until [Server.Respond] is called.
package ipc
