// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ipc

import (
	"errors"
	"fmt"
	"net"
	"os"
	"sync"

	"github.com/bureau-foundation/wutag/lib/codec"
)

var (
	// ErrNoActiveConnection is returned by Respond when no request is
	// awaiting a response.
	ErrNoActiveConnection = errors.New("no active connection")

	// ErrRequestInFlight is returned by Accept while a previously
	// accepted request has not been answered.
	ErrRequestInFlight = errors.New("a request is already awaiting a response")
)

// MalformedRequestError is returned by Accept for a frame that arrived
// intact but is not a valid request.
type MalformedRequestError struct {
	// Notation is the frame in CBOR diagnostic notation, or empty when
	// the frame is not CBOR at all.
	Notation string
	Err      error
}

func (e *MalformedRequestError) Error() string {
	return fmt.Sprintf("malformed request: %v", e.Err)
}

func (e *MalformedRequestError) Unwrap() error { return e.Err }

// Server is the daemon side of the protocol. Accept and Respond
// alternate: each accepted request holds its connection until the
// response is written. Server is used from a single goroutine; only
// Close may be called concurrently.
type Server struct {
	path     string
	listener *net.UnixListener
	maxFrame int64

	mutex sync.Mutex
	conn  net.Conn
}

// Listen binds a Unix socket at path, replacing a stale socket file
// left by a previous run. The socket is only accessible to its owner.
func Listen(path string) (*Server, error) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("removing stale socket %s: %w", path, err)
	}
	listener, err := net.ListenUnix("unix", &net.UnixAddr{Name: path, Net: "unix"})
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", path, err)
	}
	listener.SetUnlinkOnClose(true)
	if err := os.Chmod(path, 0o600); err != nil {
		listener.Close()
		return nil, fmt.Errorf("restricting socket permissions on %s: %w", path, err)
	}
	return &Server{path: path, listener: listener, maxFrame: DefaultMaxFrame}, nil
}

// Path returns the socket path.
func (s *Server) Path() string { return s.path }

// Accept waits for the next connection and reads its request. On
// success the connection is held until Respond. If the request cannot
// be read, the connection is dropped and the error returned; the
// server remains usable. Accept returns net.ErrClosed after Close.
func (s *Server) Accept() (Request, error) {
	if s.held() != nil {
		return nil, ErrRequestInFlight
	}
	conn, err := s.listener.Accept()
	if err != nil {
		return nil, fmt.Errorf("accepting connection: %w", err)
	}
	payload, err := ReadFrame(conn, s.maxFrame)
	if err != nil {
		conn.Close()
		return nil, err
	}
	request, err := DecodeRequest(payload)
	if err != nil {
		conn.Close()
		notation, _ := codec.Diagnose(payload)
		return nil, &MalformedRequestError{Notation: notation, Err: err}
	}
	s.mutex.Lock()
	s.conn = conn
	s.mutex.Unlock()
	return request, nil
}

// Respond writes response to the held connection and closes it.
func (s *Server) Respond(response Response) error {
	s.mutex.Lock()
	conn := s.conn
	s.conn = nil
	s.mutex.Unlock()
	if conn == nil {
		return ErrNoActiveConnection
	}
	defer conn.Close()

	payload, err := EncodeResponse(response)
	if err != nil {
		return err
	}
	return WriteFrame(conn, payload)
}

// Close stops listening and removes the socket file. A held connection
// is dropped without a response.
func (s *Server) Close() error {
	s.mutex.Lock()
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	s.mutex.Unlock()
	return s.listener.Close()
}

func (s *Server) held() net.Conn {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.conn
}
