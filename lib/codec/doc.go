// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides wutag's standard CBOR encoding configuration.
//
// CBOR is the only serialization format wutag speaks internally: the
// client↔daemon socket protocol (see lib/ipc) and the on-disk registry
// snapshot (see lib/registry) are both CBOR. The user-facing wutag.yml
// is the one exception and is handled by lib/config.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted
// map keys, smallest integer encoding, no indefinite-length items. The
// same registry state therefore always produces the same snapshot bytes,
// which keeps save-after-every-mutation cheap to reason about.
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// Types implementing encoding.TextMarshaler (tag.Color) are encoded as
// CBOR text strings, so colors read the same on the wire, in the
// snapshot, and in diagnostic notation.
//
// Struct fields use `cbor` tags. Slice fields that may legitimately be
// empty are not marked omitempty: an empty list and an absent list
// decode differently, and round trips must preserve the difference.
package codec
