// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ipc

import (
	"errors"
	"fmt"

	"github.com/bureau-foundation/wutag/lib/codec"
)

// ErrUnknownMessage is returned when an envelope names a variant this
// package does not define, or when a value outside the closed set is
// encoded.
var ErrUnknownMessage = errors.New("unknown message type")

type envelope struct {
	Type string           `cbor:"type"`
	Body codec.RawMessage `cbor:"body"`
}

func seal(kind string, body any) ([]byte, error) {
	encoded, err := codec.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding %s body: %w", kind, err)
	}
	data, err := codec.Marshal(envelope{Type: kind, Body: encoded})
	if err != nil {
		return nil, fmt.Errorf("encoding %s envelope: %w", kind, err)
	}
	return data, nil
}

func open(data []byte) (envelope, error) {
	var sealed envelope
	if err := codec.Unmarshal(data, &sealed); err != nil {
		return envelope{}, fmt.Errorf("decoding envelope: %w", err)
	}
	return sealed, nil
}

func unseal[T any](sealed envelope) (T, error) {
	var body T
	if err := codec.Unmarshal(sealed.Body, &body); err != nil {
		return body, fmt.Errorf("decoding %s body: %w", sealed.Type, err)
	}
	return body, nil
}

// requestType names the wire variant of request.
func requestType(request Request) (string, error) {
	switch request.(type) {
	case TagFiles:
		return "tag_files", nil
	case TagFilesPattern:
		return "tag_files_pattern", nil
	case UntagFiles:
		return "untag_files", nil
	case UntagFilesPattern:
		return "untag_files_pattern", nil
	case EditTag:
		return "edit_tag", nil
	case ClearFiles:
		return "clear_files", nil
	case ClearFilesPattern:
		return "clear_files_pattern", nil
	case ClearTags:
		return "clear_tags", nil
	case CopyTags:
		return "copy_tags", nil
	case CopyTagsPattern:
		return "copy_tags_pattern", nil
	case ListTags:
		return "list_tags", nil
	case ListFiles:
		return "list_files", nil
	case InspectFiles:
		return "inspect_files", nil
	case InspectFilesPattern:
		return "inspect_files_pattern", nil
	case Search:
		return "search", nil
	case Ping:
		return "ping", nil
	case ClearCache:
		return "clear_cache", nil
	default:
		return "", fmt.Errorf("%w: request %T", ErrUnknownMessage, request)
	}
}

// EncodeRequest serializes request into a frame payload.
func EncodeRequest(request Request) ([]byte, error) {
	kind, err := requestType(request)
	if err != nil {
		return nil, err
	}
	return seal(kind, request)
}

// DecodeRequest parses a frame payload produced by EncodeRequest.
func DecodeRequest(data []byte) (Request, error) {
	sealed, err := open(data)
	if err != nil {
		return nil, err
	}
	switch sealed.Type {
	case "tag_files":
		return unseal[TagFiles](sealed)
	case "tag_files_pattern":
		return unseal[TagFilesPattern](sealed)
	case "untag_files":
		return unseal[UntagFiles](sealed)
	case "untag_files_pattern":
		return unseal[UntagFilesPattern](sealed)
	case "edit_tag":
		return unseal[EditTag](sealed)
	case "clear_files":
		return unseal[ClearFiles](sealed)
	case "clear_files_pattern":
		return unseal[ClearFilesPattern](sealed)
	case "clear_tags":
		return unseal[ClearTags](sealed)
	case "copy_tags":
		return unseal[CopyTags](sealed)
	case "copy_tags_pattern":
		return unseal[CopyTagsPattern](sealed)
	case "list_tags":
		return unseal[ListTags](sealed)
	case "list_files":
		return unseal[ListFiles](sealed)
	case "inspect_files":
		return unseal[InspectFiles](sealed)
	case "inspect_files_pattern":
		return unseal[InspectFilesPattern](sealed)
	case "search":
		return unseal[Search](sealed)
	case "ping":
		return unseal[Ping](sealed)
	case "clear_cache":
		return unseal[ClearCache](sealed)
	default:
		return nil, fmt.Errorf("%w: request %q", ErrUnknownMessage, sealed.Type)
	}
}

// responseType names the wire variant of response.
func responseType(response Response) (string, error) {
	switch response.(type) {
	case TagFilesResult:
		return "tag_files", nil
	case UntagFilesResult:
		return "untag_files", nil
	case EditTagResult:
		return "edit_tag", nil
	case ClearFilesResult:
		return "clear_files", nil
	case ClearTagsResult:
		return "clear_tags", nil
	case CopyTagsResult:
		return "copy_tags", nil
	case ListTagsResult:
		return "list_tags", nil
	case ListFilesResult:
		return "list_files", nil
	case InspectFilesResult:
		return "inspect_files", nil
	case SearchResult:
		return "search", nil
	case PingResult:
		return "ping", nil
	case ClearCacheResult:
		return "clear_cache", nil
	default:
		return "", fmt.Errorf("%w: response %T", ErrUnknownMessage, response)
	}
}

// EncodeResponse serializes response into a frame payload.
func EncodeResponse(response Response) ([]byte, error) {
	kind, err := responseType(response)
	if err != nil {
		return nil, err
	}
	return seal(kind, response)
}

// DecodeResponse parses a frame payload produced by EncodeResponse.
func DecodeResponse(data []byte) (Response, error) {
	sealed, err := open(data)
	if err != nil {
		return nil, err
	}
	switch sealed.Type {
	case "tag_files":
		return unseal[TagFilesResult](sealed)
	case "untag_files":
		return unseal[UntagFilesResult](sealed)
	case "edit_tag":
		return unseal[EditTagResult](sealed)
	case "clear_files":
		return unseal[ClearFilesResult](sealed)
	case "clear_tags":
		return unseal[ClearTagsResult](sealed)
	case "copy_tags":
		return unseal[CopyTagsResult](sealed)
	case "list_tags":
		return unseal[ListTagsResult](sealed)
	case "list_files":
		return unseal[ListFilesResult](sealed)
	case "inspect_files":
		return unseal[InspectFilesResult](sealed)
	case "search":
		return unseal[SearchResult](sealed)
	case "ping":
		return unseal[PingResult](sealed)
	case "clear_cache":
		return unseal[ClearCacheResult](sealed)
	default:
		return nil, fmt.Errorf("%w: response %q", ErrUnknownMessage, sealed.Type)
	}
}
