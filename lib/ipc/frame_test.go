// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ipc

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
)

func TestFrameRoundTrip(t *testing.T) {
	payloads := [][]byte{
		{},
		{0x00},
		[]byte("hello"),
		bytes.Repeat([]byte{0xff, 0x00, '\n'}, 10000),
	}
	var buffer bytes.Buffer
	for _, payload := range payloads {
		if err := WriteFrame(&buffer, payload); err != nil {
			t.Fatalf("WriteFrame: %v", err)
		}
	}
	for i, want := range payloads {
		got, err := ReadFrame(&buffer, 0)
		if err != nil {
			t.Fatalf("ReadFrame %d: %v", i, err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("frame %d = %d bytes, want %d", i, len(got), len(want))
		}
	}
	if _, err := ReadFrame(&buffer, 0); !errors.Is(err, io.EOF) {
		t.Errorf("ReadFrame on drained buffer = %v, want EOF", err)
	}
}

func TestFrameHeaderIsBigEndian(t *testing.T) {
	var buffer bytes.Buffer
	if err := WriteFrame(&buffer, []byte("abc")); err != nil {
		t.Fatal(err)
	}
	want := []byte{0, 0, 0, 0, 0, 0, 0, 3, 'a', 'b', 'c'}
	if !bytes.Equal(buffer.Bytes(), want) {
		t.Errorf("frame bytes = %v, want %v", buffer.Bytes(), want)
	}
}

func TestReadFrameRejectsOversizedLength(t *testing.T) {
	var header [8]byte
	binary.BigEndian.PutUint64(header[:], 1<<40)
	_, err := ReadFrame(bytes.NewReader(header[:]), 1024)
	if !errors.Is(err, ErrFrameTooLarge) {
		t.Errorf("ReadFrame = %v, want ErrFrameTooLarge", err)
	}
}

func TestReadFrameTruncated(t *testing.T) {
	var buffer bytes.Buffer
	if err := WriteFrame(&buffer, []byte("complete payload")); err != nil {
		t.Fatal(err)
	}
	truncated := buffer.Bytes()[:buffer.Len()-3]
	_, err := ReadFrame(bytes.NewReader(truncated), 0)
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReadFrame on truncated payload = %v, want ErrUnexpectedEOF", err)
	}

	_, err = ReadFrame(bytes.NewReader([]byte{0, 0, 0}), 0)
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReadFrame on truncated header = %v, want ErrUnexpectedEOF", err)
	}
}
