// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tag

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Namespace is the extended attribute prefix reserved for wutag.
const Namespace = "user.wutag"

const keyPrefix = Namespace + "."

var (
	// ErrForeignKey is returned by Decode for keys outside Namespace.
	ErrForeignKey = errors.New("attribute key is not a wutag key")

	// ErrInvalidKey is returned by Decode for keys inside Namespace
	// whose payload is not a valid encoded name.
	ErrInvalidKey = errors.New("invalid wutag attribute key")
)

// Encode maps a tag name to its attribute key.
func Encode(name string) string {
	return keyPrefix + base64.StdEncoding.EncodeToString([]byte(name))
}

// Decode maps an attribute key back to the tag name it encodes.
func Decode(key string) (string, error) {
	payload, ok := strings.CutPrefix(key, keyPrefix)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrForeignKey, key)
	}
	if payload == "" {
		return "", fmt.Errorf("%w: %q has no payload", ErrInvalidKey, key)
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidKey, key, err)
	}
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("%w: %q does not decode to UTF-8", ErrInvalidKey, key)
	}
	name := string(raw)
	if err := ValidateName(name); err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidKey, key, err)
	}
	return name, nil
}

// IsOwnKey reports whether key lies inside Namespace, whether or not it
// decodes.
func IsOwnKey(key string) bool {
	return strings.HasPrefix(key, keyPrefix)
}
