// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ipc

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/bureau-foundation/wutag/lib/codec"
	"github.com/bureau-foundation/wutag/lib/glob"
	"github.com/bureau-foundation/wutag/lib/tag"
)

var testGlob = glob.Descriptor{Pattern: "**/*.png", BaseDir: "/home/u/photos", MaxDepth: 3}

var testTags = []tag.Tag{
	tag.New("holiday", tag.Red),
	tag.New("2020", tag.RGB(0x10, 0x20, 0x30)),
	tag.New("日本", tag.Color{}),
}

func TestRequestRoundTrip(t *testing.T) {
	requests := []Request{
		TagFiles{Files: []string{"/a", "/b c"}, Tags: testTags},
		TagFiles{Files: []string{}, Tags: []tag.Tag{}},
		TagFiles{},
		TagFilesPattern{Glob: testGlob, Tags: testTags},
		TagFilesPattern{},
		UntagFiles{Files: []string{"/a"}, Tags: []string{"holiday", ""}},
		UntagFiles{Files: []string{}, Tags: []string{}},
		UntagFilesPattern{Glob: testGlob, Tags: []string{"x"}},
		EditTag{Tag: "holiday", Color: tag.BrightBlue},
		EditTag{Tag: "", Color: tag.RGB(1, 2, 3)},
		ClearFiles{Files: []string{"/a"}},
		ClearFiles{Files: []string{}},
		ClearFilesPattern{Glob: testGlob},
		ClearTags{Tags: []string{"holiday", "2020"}},
		ClearTags{Tags: []string{}},
		CopyTags{Source: "/src", Targets: []string{"/a", "/b"}},
		CopyTags{},
		CopyTagsPattern{Source: "/src", Glob: testGlob},
		ListTags{WithFiles: true},
		ListTags{},
		ListFiles{WithTags: true},
		ListFiles{},
		InspectFiles{Files: []string{"/a"}},
		InspectFiles{Files: []string{}},
		InspectFilesPattern{Glob: testGlob},
		Search{Tags: []string{"holiday", "2020"}, Any: true},
		Search{Tags: []string{}},
		Ping{},
		ClearCache{},
	}
	for _, request := range requests {
		t.Run(fmt.Sprintf("%T", request), func(t *testing.T) {
			data, err := EncodeRequest(request)
			if err != nil {
				t.Fatalf("EncodeRequest: %v", err)
			}
			decoded, err := DecodeRequest(data)
			if err != nil {
				t.Fatalf("DecodeRequest: %v", err)
			}
			if !reflect.DeepEqual(decoded, request) {
				t.Errorf("round trip = %#v, want %#v", decoded, request)
			}
		})
	}
}

func TestResponseRoundTrip(t *testing.T) {
	responses := []Response{
		TagFilesResult{Errors: []string{"Error for `/a` tag: `x`, reason: boom"}},
		TagFilesResult{Errors: []string{}},
		TagFilesResult{},
		UntagFilesResult{Errors: []string{"a", ""}},
		EditTagResult{Error: "tag x doesn't exist"},
		EditTagResult{},
		ClearFilesResult{Errors: []string{"e"}},
		ClearTagsResult{Errors: []string{}},
		CopyTagsResult{Errors: []string{"e1", "e2"}},
		ListTagsResult{Tags: []TagListing{
			{Tag: testTags[0], Files: []string{"/a", "/b"}},
			{Tag: testTags[1], Files: nil},
		}},
		ListTagsResult{Tags: []TagListing{}, Error: "locked"},
		ListFilesResult{Files: []FileListing{{Path: "/a", Tags: testTags}, {Path: "/b"}}},
		ListFilesResult{},
		InspectFilesResult{Files: []FileListing{{Path: "/a", Tags: []tag.Tag{}}}, Errors: []string{"/b: not tracked"}},
		SearchResult{Files: []string{"/a"}},
		SearchResult{Files: []string{}, Error: ""},
		SearchResult{Error: "no tags given"},
		PingResult{Version: "1.2.3"},
		PingResult{},
		ClearCacheResult{},
		ClearCacheResult{Error: "saving: disk full"},
	}
	for _, response := range responses {
		t.Run(fmt.Sprintf("%T", response), func(t *testing.T) {
			data, err := EncodeResponse(response)
			if err != nil {
				t.Fatalf("EncodeResponse: %v", err)
			}
			decoded, err := DecodeResponse(data)
			if err != nil {
				t.Fatalf("DecodeResponse: %v", err)
			}
			if !reflect.DeepEqual(decoded, response) {
				t.Errorf("round trip = %#v, want %#v", decoded, response)
			}
		})
	}
}

func TestDecodeUnknownMessage(t *testing.T) {
	data, err := codec.Marshal(envelope{Type: "format_disk", Body: codec.RawMessage{0xa0}})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := DecodeRequest(data); !errors.Is(err, ErrUnknownMessage) {
		t.Errorf("DecodeRequest = %v, want ErrUnknownMessage", err)
	}
	if _, err := DecodeResponse(data); !errors.Is(err, ErrUnknownMessage) {
		t.Errorf("DecodeResponse = %v, want ErrUnknownMessage", err)
	}
}

func TestEncodeNil(t *testing.T) {
	if _, err := EncodeRequest(nil); !errors.Is(err, ErrUnknownMessage) {
		t.Errorf("EncodeRequest(nil) = %v, want ErrUnknownMessage", err)
	}
	if _, err := EncodeResponse(nil); !errors.Is(err, ErrUnknownMessage) {
		t.Errorf("EncodeResponse(nil) = %v, want ErrUnknownMessage", err)
	}
}

func TestDecodeGarbage(t *testing.T) {
	if _, err := DecodeRequest([]byte{0xff, 0xff}); err == nil {
		t.Error("DecodeRequest accepted garbage")
	}
	data, err := codec.Marshal(envelope{Type: "tag_files", Body: codec.RawMessage{0x01}})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := DecodeRequest(data); err == nil {
		t.Error("DecodeRequest accepted an integer body for tag_files")
	}
}
