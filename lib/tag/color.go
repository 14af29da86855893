// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tag

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is either one of the sixteen named ANSI colors or a 24-bit RGB
// value. The zero Color renders as DefaultColor.
type Color struct {
	ansi int // 1-based index into namedColors; 0 when rgb or zero
	rgb  bool
	r    uint8
	g    uint8
	b    uint8
}

var namedColors = []string{
	"black", "red", "green", "yellow", "blue", "magenta", "cyan", "white",
	"bright-black", "bright-red", "bright-green", "bright-yellow",
	"bright-blue", "bright-magenta", "bright-cyan", "bright-white",
}

func named(index int) Color { return Color{ansi: index + 1} }

// Named ANSI colors.
var (
	Black         = named(0)
	Red           = named(1)
	Green         = named(2)
	Yellow        = named(3)
	Blue          = named(4)
	Magenta       = named(5)
	Cyan          = named(6)
	White         = named(7)
	BrightBlack   = named(8)
	BrightRed     = named(9)
	BrightGreen   = named(10)
	BrightYellow  = named(11)
	BrightBlue    = named(12)
	BrightMagenta = named(13)
	BrightCyan    = named(14)
	BrightWhite   = named(15)
)

// DefaultColor is used for a zero Color and when a palette is empty.
var DefaultColor = BrightWhite

// DefaultPalette is the set new tags draw a random color from when the
// configuration does not provide one.
var DefaultPalette = []Color{
	Red, Green, Blue, Yellow, Cyan, White, Magenta,
	BrightRed, BrightGreen, BrightYellow, BrightBlue, BrightMagenta, BrightCyan,
}

// RGB returns a true-color Color.
func RGB(r, g, b uint8) Color {
	return Color{rgb: true, r: r, g: g, b: b}
}

// ParseColor parses a color name ("red", "bright-blue", "bright_blue")
// or a hex triplet written as 0xRRGGBB, #RRGGBB or RRGGBB. Parsing is
// case-insensitive.
func ParseColor(text string) (Color, error) {
	lowered := strings.ToLower(strings.TrimSpace(text))
	canonical := strings.ReplaceAll(lowered, "_", "-")
	for index, name := range namedColors {
		if canonical == name {
			return named(index), nil
		}
	}

	hex := lowered
	switch {
	case strings.HasPrefix(hex, "0x"):
		hex = hex[2:]
	case strings.HasPrefix(hex, "#"):
		hex = hex[1:]
	}
	if len(hex) != 6 {
		return Color{}, fmt.Errorf("invalid color %q: expected a color name or a 6-digit hex value", text)
	}
	value, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", text, err)
	}
	return RGB(uint8(value>>16), uint8(value>>8), uint8(value)), nil
}

// IsZero reports whether c is the zero Color.
func (c Color) IsZero() bool { return c == Color{} }

// IsRGB reports whether c is a true-color value.
func (c Color) IsRGB() bool { return c.rgb }

// ANSI returns the 0–15 ANSI index of a named color, or -1 for RGB.
func (c Color) ANSI() int {
	if c.rgb {
		return -1
	}
	if c.IsZero() {
		return DefaultColor.ANSI()
	}
	return c.ansi - 1
}

// Hex returns the color as #rrggbb. Only meaningful for RGB colors.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.r, c.g, c.b)
}

func (c Color) String() string {
	if c.rgb {
		return c.Hex()
	}
	return namedColors[c.ANSI()]
}

// MarshalText encodes the color as its name or #rrggbb. The zero Color
// encodes as the empty string.
func (c Color) MarshalText() ([]byte, error) {
	if c.IsZero() {
		return []byte{}, nil
	}
	return []byte(c.String()), nil
}

// UnmarshalText is the inverse of MarshalText.
func (c *Color) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*c = Color{}
		return nil
	}
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
