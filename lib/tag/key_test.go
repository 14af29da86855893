// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tag

import (
	"errors"
	"strings"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	names := []string{
		"holiday",
		"2020",
		"with space",
		"ünïcödé",
		"日本語",
		"emoji 🎉",
		"dots.and/slashes",
		strings.Repeat("long", 64),
	}
	for _, name := range names {
		key := Encode(name)
		if !strings.HasPrefix(key, Namespace+".") {
			t.Errorf("Encode(%q) = %q, missing namespace prefix", name, key)
		}
		decoded, err := Decode(key)
		if err != nil {
			t.Errorf("Decode(Encode(%q)): %v", name, err)
			continue
		}
		if decoded != name {
			t.Errorf("Decode(Encode(%q)) = %q", name, decoded)
		}
	}
}

func TestEncodeIsInjective(t *testing.T) {
	seen := make(map[string]string)
	for _, name := range []string{"a", "b", "ab", "a b", "A", "é", "e"} {
		key := Encode(name)
		if other, ok := seen[key]; ok {
			t.Fatalf("Encode(%q) and Encode(%q) both produce %q", name, other, key)
		}
		seen[key] = name
	}
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want error
	}{
		{"other user key", "user.mime_type", ErrForeignKey},
		{"security namespace", "security.selinux", ErrForeignKey},
		{"namespace without separator", "user.wutag", ErrForeignKey},
		{"neighbouring namespace", "user.wutagger.aG9saWRheQ==", ErrForeignKey},
		{"empty payload", "user.wutag.", ErrInvalidKey},
		{"not base64", "user.wutag.!!!", ErrInvalidKey},
		{"invalid utf-8", "user.wutag." + "/w==", ErrInvalidKey},
		{"NUL in name", "user.wutag.AA==", ErrInvalidKey},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Decode(test.key)
			if !errors.Is(err, test.want) {
				t.Errorf("Decode(%q) error = %v, want %v", test.key, err, test.want)
			}
		})
	}
}

func TestIsOwnKey(t *testing.T) {
	if !IsOwnKey(Encode("x")) {
		t.Error("encoded key not recognised as own")
	}
	if !IsOwnKey("user.wutag.garbage") {
		t.Error("undecodable key inside namespace not recognised as own")
	}
	if IsOwnKey("user.other") {
		t.Error("foreign key recognised as own")
	}
}
