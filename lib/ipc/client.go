// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/bureau-foundation/wutag/lib/glob"
	"github.com/bureau-foundation/wutag/lib/tag"
)

// ErrUnexpectedResponse is returned by the typed Client helpers when
// the daemon answers with a different variant than the request calls
// for.
var ErrUnexpectedResponse = errors.New("unexpected response type")

// BatchError carries the per-item failures of a batch operation. The
// items that did not fail were applied.
type BatchError struct {
	Op     string
	Errors []string
}

func (e *BatchError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("%s: %s", e.Op, e.Errors[0])
	}
	return fmt.Sprintf("%s: %d errors: %s", e.Op, len(e.Errors), strings.Join(e.Errors, "; "))
}

// RequestError is the daemon's refusal of a single-result operation.
type RequestError struct {
	Op      string
	Message string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Client talks to a wutagd socket. Each call opens its own connection.
type Client struct {
	socketPath string
	maxFrame   int64
}

// NewClient returns a client for the daemon listening on socketPath.
func NewClient(socketPath string) *Client {
	return &Client{socketPath: socketPath, maxFrame: DefaultMaxFrame}
}

// SocketPath returns the socket the client dials.
func (c *Client) SocketPath() string { return c.socketPath }

// Call sends request and waits for the daemon's response. Cancelling
// ctx closes the connection.
func (c *Client) Call(ctx context.Context, request Request) (Response, error) {
	payload, err := EncodeRequest(request)
	if err != nil {
		return nil, err
	}

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", c.socketPath, err)
	}
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	if err := WriteFrame(conn, payload); err != nil {
		return nil, contextError(ctx, err)
	}
	reply, err := ReadFrame(conn, c.maxFrame)
	if err != nil {
		return nil, contextError(ctx, err)
	}
	response, err := DecodeResponse(reply)
	if err != nil {
		return nil, err
	}
	return response, nil
}

func contextError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("%w (%v)", ctx.Err(), err)
	}
	return err
}

func call[T Response](ctx context.Context, c *Client, request Request) (T, error) {
	var zero T
	response, err := c.Call(ctx, request)
	if err != nil {
		return zero, err
	}
	typed, ok := response.(T)
	if !ok {
		return zero, fmt.Errorf("%w: got %T, want %T", ErrUnexpectedResponse, response, zero)
	}
	return typed, nil
}

func batch(op string, errs []string) error {
	if len(errs) == 0 {
		return nil
	}
	return &BatchError{Op: op, Errors: errs}
}

func single(op, message string) error {
	if message == "" {
		return nil
	}
	return &RequestError{Op: op, Message: message}
}

// TagFiles attaches tags to files.
func (c *Client) TagFiles(ctx context.Context, files []string, tags []tag.Tag) error {
	result, err := call[TagFilesResult](ctx, c, TagFiles{Files: files, Tags: tags})
	if err != nil {
		return err
	}
	return batch("tag files", result.Errors)
}

// TagFilesPattern attaches tags to the files pattern resolves to.
func (c *Client) TagFilesPattern(ctx context.Context, pattern glob.Descriptor, tags []tag.Tag) error {
	result, err := call[TagFilesResult](ctx, c, TagFilesPattern{Glob: pattern, Tags: tags})
	if err != nil {
		return err
	}
	return batch("tag files", result.Errors)
}

// UntagFiles detaches the named tags from files.
func (c *Client) UntagFiles(ctx context.Context, files, names []string) error {
	result, err := call[UntagFilesResult](ctx, c, UntagFiles{Files: files, Tags: names})
	if err != nil {
		return err
	}
	return batch("untag files", result.Errors)
}

// UntagFilesPattern detaches the named tags from the files pattern
// resolves to.
func (c *Client) UntagFilesPattern(ctx context.Context, pattern glob.Descriptor, names []string) error {
	result, err := call[UntagFilesResult](ctx, c, UntagFilesPattern{Glob: pattern, Tags: names})
	if err != nil {
		return err
	}
	return batch("untag files", result.Errors)
}

// EditTag changes the color of an existing tag.
func (c *Client) EditTag(ctx context.Context, name string, color tag.Color) error {
	result, err := call[EditTagResult](ctx, c, EditTag{Tag: name, Color: color})
	if err != nil {
		return err
	}
	return single("edit tag", result.Error)
}

// ClearFiles removes every tag from files.
func (c *Client) ClearFiles(ctx context.Context, files []string) error {
	result, err := call[ClearFilesResult](ctx, c, ClearFiles{Files: files})
	if err != nil {
		return err
	}
	return batch("clear files", result.Errors)
}

// ClearFilesPattern removes every tag from the files pattern resolves
// to.
func (c *Client) ClearFilesPattern(ctx context.Context, pattern glob.Descriptor) error {
	result, err := call[ClearFilesResult](ctx, c, ClearFilesPattern{Glob: pattern})
	if err != nil {
		return err
	}
	return batch("clear files", result.Errors)
}

// ClearTags deletes the named tags everywhere.
func (c *Client) ClearTags(ctx context.Context, names []string) error {
	result, err := call[ClearTagsResult](ctx, c, ClearTags{Tags: names})
	if err != nil {
		return err
	}
	return batch("clear tags", result.Errors)
}

// CopyTags attaches the tags of source to targets.
func (c *Client) CopyTags(ctx context.Context, source string, targets []string) error {
	result, err := call[CopyTagsResult](ctx, c, CopyTags{Source: source, Targets: targets})
	if err != nil {
		return err
	}
	return batch("copy tags", result.Errors)
}

// CopyTagsPattern attaches the tags of source to the files pattern
// resolves to.
func (c *Client) CopyTagsPattern(ctx context.Context, source string, pattern glob.Descriptor) error {
	result, err := call[CopyTagsResult](ctx, c, CopyTagsPattern{Source: source, Glob: pattern})
	if err != nil {
		return err
	}
	return batch("copy tags", result.Errors)
}

// ListTags returns every tag, with the files carrying each when
// withFiles is set.
func (c *Client) ListTags(ctx context.Context, withFiles bool) ([]TagListing, error) {
	result, err := call[ListTagsResult](ctx, c, ListTags{WithFiles: withFiles})
	if err != nil {
		return nil, err
	}
	return result.Tags, single("list tags", result.Error)
}

// ListFiles returns every tracked file, with its tags when withTags is
// set.
func (c *Client) ListFiles(ctx context.Context, withTags bool) ([]FileListing, error) {
	result, err := call[ListFilesResult](ctx, c, ListFiles{WithTags: withTags})
	if err != nil {
		return nil, err
	}
	return result.Files, single("list files", result.Error)
}

// InspectFiles returns the tags of the tracked files among files. The
// listings are returned alongside a *BatchError for the paths that
// failed.
func (c *Client) InspectFiles(ctx context.Context, files []string) ([]FileListing, error) {
	result, err := call[InspectFilesResult](ctx, c, InspectFiles{Files: files})
	if err != nil {
		return nil, err
	}
	return result.Files, batch("inspect files", result.Errors)
}

// InspectFilesPattern is InspectFiles over the files pattern resolves
// to.
func (c *Client) InspectFilesPattern(ctx context.Context, pattern glob.Descriptor) ([]FileListing, error) {
	result, err := call[InspectFilesResult](ctx, c, InspectFilesPattern{Glob: pattern})
	if err != nil {
		return nil, err
	}
	return result.Files, batch("inspect files", result.Errors)
}

// Search returns the files carrying all of names, or any of them when
// matchAny is set.
func (c *Client) Search(ctx context.Context, names []string, matchAny bool) ([]string, error) {
	result, err := call[SearchResult](ctx, c, Search{Tags: names, Any: matchAny})
	if err != nil {
		return nil, err
	}
	return result.Files, single("search", result.Error)
}

// Ping checks that the daemon is serving and returns its version.
func (c *Client) Ping(ctx context.Context) (string, error) {
	result, err := call[PingResult](ctx, c, Ping{})
	if err != nil {
		return "", err
	}
	return result.Version, single("ping", result.Error)
}

// ClearCache empties the daemon's registry.
func (c *Client) ClearCache(ctx context.Context) error {
	result, err := call[ClearCacheResult](ctx, c, ClearCache{})
	if err != nil {
		return err
	}
	return single("clear cache", result.Error)
}
