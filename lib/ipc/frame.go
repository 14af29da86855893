// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ipc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// DefaultMaxFrame bounds the payload size ReadFrame accepts when the
// caller does not set a limit.
const DefaultMaxFrame = 64 << 20

// frameHeaderSize is the length of the big-endian payload size prefix.
const frameHeaderSize = 8

// ErrFrameTooLarge is returned by ReadFrame when the declared payload
// length exceeds the limit.
var ErrFrameTooLarge = errors.New("frame exceeds size limit")

// WriteFrame writes payload preceded by its length.
func WriteFrame(w io.Writer, payload []byte) error {
	frame := make([]byte, frameHeaderSize+len(payload))
	binary.BigEndian.PutUint64(frame, uint64(len(payload)))
	copy(frame[frameHeaderSize:], payload)
	if _, err := w.Write(frame); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	return nil
}

// ReadFrame reads one frame and returns its payload. Exactly the
// declared number of bytes is consumed. A limit of zero or less means
// DefaultMaxFrame.
func ReadFrame(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		limit = DefaultMaxFrame
	}
	var header [frameHeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("reading frame header: %w", err)
	}
	length := binary.BigEndian.Uint64(header[:])
	if length > uint64(limit) {
		return nil, fmt.Errorf("%w: %d bytes declared, limit %d", ErrFrameTooLarge, length, limit)
	}
	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("reading %d-byte frame payload: %w", length, err)
	}
	return payload, nil
}
