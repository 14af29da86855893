// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/bureau-foundation/wutag/lib/tag"
)

// styles renders paths and tags for terminal output. Without pretty
// output every style is a no-op.
type styles struct {
	renderer *lipgloss.Renderer
	path     lipgloss.Style
}

func newStyles(w io.Writer, pretty bool) styles {
	renderer := lipgloss.NewRenderer(w)
	if pretty {
		renderer.SetColorProfile(termenv.TrueColor)
	} else {
		renderer.SetColorProfile(termenv.Ascii)
	}
	return styles{
		renderer: renderer,
		path:     renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("4")),
	}
}

func (s styles) renderPath(path string) string {
	return s.path.Render(path)
}

// renderTag draws the tag name bold in its own color. Names containing
// whitespace are quoted.
func (s styles) renderTag(t tag.Tag) string {
	name := t.Name
	if strings.ContainsFunc(name, unicode.IsSpace) {
		name = strconv.Quote(name)
	}
	return s.renderer.NewStyle().Bold(true).Foreground(terminalColor(t.Color)).Render(name)
}

func (s styles) renderTags(tags []tag.Tag) string {
	rendered := make([]string, len(tags))
	for i, t := range tags {
		rendered[i] = s.renderTag(t)
	}
	return strings.Join(rendered, " ")
}

// terminalColor maps a tag color to a lipgloss color: the ANSI index for
// named colors, the hex value for RGB ones.
func terminalColor(color tag.Color) lipgloss.Color {
	if color.IsRGB() {
		return lipgloss.Color(color.Hex())
	}
	return lipgloss.Color(strconv.Itoa(color.ANSI()))
}
