// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"slices"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestCommand_Execute_DispatchesToSubcommand(t *testing.T) {
	var called string

	root := &Command{
		Name: "wutag",
		Subcommands: []*Command{
			{
				Name: "list",
				Subcommands: []*Command{
					{
						Name: "tags",
						Run: func(args []string) error {
							called = "list tags"
							return nil
						},
					},
					{
						Name: "files",
						Run: func(args []string) error {
							called = "list files"
							return nil
						},
					},
				},
			},
			{
				Name: "ping",
				Run: func(args []string) error {
					called = "ping"
					return nil
				},
			},
		},
	}

	if err := root.Execute([]string{"list", "files"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "list files" {
		t.Errorf("dispatched to %q, want %q", called, "list files")
	}
}

func TestCommand_Execute_FlagParsing(t *testing.T) {
	var pattern bool
	var received []string

	command := &Command{
		Name: "get",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("get", pflag.ContinueOnError)
			flagSet.BoolVarP(&pattern, "glob", "g", false, "treat the first path as a glob")
			return flagSet
		},
		Run: func(args []string) error {
			received = args
			return nil
		},
	}

	if err := command.Execute([]string{"-g", "*.txt"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !pattern {
		t.Error("--glob not set")
	}
	if !slices.Equal(received, []string{"*.txt"}) {
		t.Errorf("args = %q, want [*.txt]", received)
	}
}

func TestCommand_Execute_KeepsDashTerminator(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"flags before", []string{"-g", "a", "b", "--", "x", "y"}, []string{"a", "b", "--", "x", "y"}},
		{"flags interleaved", []string{"a", "-g", "--", "x"}, []string{"a", "--", "x"}},
		{"dash first", []string{"--", "x"}, []string{"--", "x"}},
		{"dash last", []string{"a", "--"}, []string{"a", "--"}},
		{"no dash", []string{"a", "b"}, []string{"a", "b"}},
		{"flag after dash is positional", []string{"a", "--", "-g"}, []string{"a", "--", "-g"}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var received []string
			command := &Command{
				Name: "set",
				Flags: func() *pflag.FlagSet {
					flagSet := pflag.NewFlagSet("set", pflag.ContinueOnError)
					flagSet.BoolP("glob", "g", false, "")
					return flagSet
				},
				Run: func(args []string) error {
					received = args
					return nil
				},
			}
			if err := command.Execute(test.args); err != nil {
				t.Fatalf("Execute() error: %v", err)
			}
			if !slices.Equal(received, test.want) {
				t.Errorf("args = %q, want %q", received, test.want)
			}
		})
	}
}

func TestSplitAtDash(t *testing.T) {
	before, after, ok := SplitAtDash([]string{"a", "b", "--", "x", "--", "y"})
	if !ok || !slices.Equal(before, []string{"a", "b"}) || !slices.Equal(after, []string{"x", "--", "y"}) {
		t.Errorf("SplitAtDash = %q, %q, %v", before, after, ok)
	}

	before, after, ok = SplitAtDash([]string{"a"})
	if ok || !slices.Equal(before, []string{"a"}) || after != nil {
		t.Errorf("SplitAtDash without dash = %q, %q, %v", before, after, ok)
	}
}

func TestCommand_Execute_UnknownFlagSuggestion(t *testing.T) {
	command := &Command{
		Name: "search",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("search", pflag.ContinueOnError)
			flagSet.BoolP("any", "a", false, "match any tag")
			return flagSet
		},
		Run: func(args []string) error { return nil },
	}

	err := command.Execute([]string{"--ayn", "work"})
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown flag")
	}
	if !strings.Contains(err.Error(), "did you mean --any") {
		t.Errorf("error = %q, want suggestion for '--any'", err.Error())
	}
	if !strings.Contains(err.Error(), "--help") {
		t.Errorf("error = %q, should point to --help", err.Error())
	}
}

func TestCommand_Execute_UnknownSubcommandSuggestion(t *testing.T) {
	root := &Command{
		Name: "wutag",
		Subcommands: []*Command{
			{Name: "search"},
			{Name: "set"},
			{Name: "clear"},
		},
	}

	err := root.Execute([]string{"serach"})
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown subcommand")
	}
	if !strings.Contains(err.Error(), "did you mean \"search\"") {
		t.Errorf("error = %q, want suggestion for 'search'", err.Error())
	}

	err = root.Execute([]string{"zzzzzzzz"})
	if err == nil || strings.Contains(err.Error(), "did you mean") {
		t.Errorf("error = %v, want no suggestion for distant input", err)
	}
}

func TestCommand_Execute_HelpFlag(t *testing.T) {
	for _, helpArg := range []string{"-h", "--help", "help"} {
		var output bytes.Buffer
		called := false
		root := &Command{
			Name:    "wutag",
			Summary: "Tag files and search by tag.",
			Output:  &output,
			Subcommands: []*Command{
				{
					Name:    "ping",
					Summary: "Check that the daemon is up",
					Run: func([]string) error {
						called = true
						return nil
					},
				},
			},
		}

		if err := root.Execute([]string{helpArg}); err != nil {
			t.Errorf("Execute(%q) error: %v", helpArg, err)
		}
		if called {
			t.Errorf("Execute(%q) ran a subcommand", helpArg)
		}
		if !strings.Contains(output.String(), "ping") || !strings.Contains(output.String(), "Check that the daemon is up") {
			t.Errorf("help for %q = %q, want the subcommand listing", helpArg, output.String())
		}
	}
}

func TestCommand_Execute_SubcommandRequired(t *testing.T) {
	var output bytes.Buffer
	root := &Command{
		Name:        "clear",
		Output:      &output,
		Subcommands: []*Command{{Name: "tags"}, {Name: "files"}, {Name: "cache"}},
	}

	err := root.Execute(nil)
	if err == nil || !strings.Contains(err.Error(), "subcommand required") {
		t.Errorf("Execute(nil) error = %v, want subcommand required", err)
	}
	if !strings.Contains(output.String(), "cache") {
		t.Errorf("help output = %q, want the subcommand listing", output.String())
	}
}

func TestCommand_PrintHelp(t *testing.T) {
	command := &Command{
		Name:        "edit",
		Description: "Change the color of a tag.",
		Usage:       "wutag edit <tag> --color <color>",
		Examples: []Example{
			{Description: "Make 'urgent' red", Command: "wutag edit urgent --color red"},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("edit", pflag.ContinueOnError)
			flagSet.StringP("color", "c", "", "new color")
			return flagSet
		},
	}

	var output bytes.Buffer
	command.PrintHelp(&output)
	help := output.String()
	for _, want := range []string{"Change the color", "wutag edit <tag>", "--color", "# Make 'urgent' red"} {
		if !strings.Contains(help, want) {
			t.Errorf("help missing %q:\n%s", want, help)
		}
	}
}

func TestExitError(t *testing.T) {
	err := error(&ExitError{Code: 3})
	coder, ok := err.(interface{ ExitCode() int })
	if !ok || coder.ExitCode() != 3 {
		t.Errorf("ExitError does not report its code")
	}
	if err.Error() != "exit code 3" {
		t.Errorf("Error() = %q", err.Error())
	}
}
