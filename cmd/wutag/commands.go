// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/wutag/cmd/wutag/cli"
	"github.com/bureau-foundation/wutag/lib/ipc"
	"github.com/bureau-foundation/wutag/lib/tag"
	"github.com/bureau-foundation/wutag/lib/version"
)

// root builds the wutag command tree.
func (a *app) root() *cli.Command {
	return &cli.Command{
		Name:        "wutag",
		Description: "Tag files with colored tags and search them by tag.\n\nTags live in the files' extended attributes; wutagd keeps the index.",
		Output:      a.stderr,
		Subcommands: []*cli.Command{
			a.listCommand(),
			a.setCommand(),
			a.getCommand(),
			a.rmCommand(),
			a.clearCommand(),
			a.searchCommand(),
			a.cpCommand(),
			a.editCommand(),
			a.pingCommand(),
			a.versionCommand(),
		},
	}
}

func (a *app) listCommand() *cli.Command {
	var withFiles, withTags bool
	return &cli.Command{
		Name:    "list",
		Summary: "List all tags or all tagged files",
		Subcommands: []*cli.Command{
			{
				Name:    "tags",
				Summary: "List every known tag",
				Flags: a.flags("tags", func(flagSet *pflag.FlagSet) {
					flagSet.BoolVarP(&withFiles, "with-files", "f", false, "print the files carrying each tag")
				}),
				Run: a.action(func(args []string) error {
					return a.listTags(withFiles)
				}),
			},
			{
				Name:    "files",
				Summary: "List every tagged file",
				Flags: a.flags("files", func(flagSet *pflag.FlagSet) {
					flagSet.BoolVarP(&withTags, "with-tags", "t", false, "print the tags of each file")
				}),
				Run: a.action(func(args []string) error {
					return a.listFiles(withTags)
				}),
			},
		},
	}
}

func (a *app) listTags(withFiles bool) error {
	listings, err := a.client.ListTags(a.ctx, withFiles)
	if err != nil {
		return fmt.Errorf("failed to list tags: %w", err)
	}
	if !withFiles {
		tags := make([]tag.Tag, len(listings))
		for i, listing := range listings {
			tags[i] = listing.Tag
		}
		if len(tags) > 0 {
			fmt.Fprintln(a.stdout, a.styles.renderTags(tags))
		}
		return nil
	}
	for _, listing := range listings {
		fmt.Fprintf(a.stdout, "%s:\n", a.styles.renderTag(listing.Tag))
		for _, path := range listing.Files {
			fmt.Fprintf(a.stdout, "  %s\n", a.styles.renderPath(path))
		}
	}
	return nil
}

func (a *app) listFiles(withTags bool) error {
	listings, err := a.client.ListFiles(a.ctx, withTags)
	if err != nil {
		return fmt.Errorf("failed to list entries: %w", err)
	}
	for _, listing := range listings {
		a.printListing(listing, withTags)
	}
	return nil
}

func (a *app) printListing(listing ipc.FileListing, withTags bool) {
	if !withTags {
		fmt.Fprintln(a.stdout, a.styles.renderPath(listing.Path))
		return
	}
	fmt.Fprintf(a.stdout, "%s: %s\n", a.styles.renderPath(listing.Path), a.styles.renderTags(listing.Tags))
}

// patternFlag registers -g/--glob on commands that take paths.
func patternFlag(usePattern *bool) func(*pflag.FlagSet) {
	return func(flagSet *pflag.FlagSet) {
		flagSet.BoolVarP(usePattern, "glob", "g", false, "treat the first path as a glob pattern")
	}
}

// splitPathsAndTags separates "<paths>... -- <tags>...".
func splitPathsAndTags(args []string, what string) (paths, tags []string, err error) {
	paths, tags, ok := cli.SplitAtDash(args)
	if !ok || len(tags) == 0 {
		return nil, nil, fmt.Errorf("no %s given: list them after --", what)
	}
	if len(paths) == 0 {
		return nil, nil, errors.New("no entries given")
	}
	return paths, tags, nil
}

func (a *app) setCommand() *cli.Command {
	var usePattern bool
	return &cli.Command{
		Name:    "set",
		Summary: "Tag files",
		Usage:   "wutag set [flags] <paths>... -- <tags>...",
		Examples: []cli.Example{
			{Description: "Tag two files", Command: "wutag set notes.md todo.md -- work urgent"},
			{Description: "Tag every PDF two levels deep", Command: "wutag set -g '**/*.pdf' -- papers"},
		},
		Flags: a.flags("set", patternFlag(&usePattern)),
		Run: a.action(func(args []string) error {
			paths, names, err := splitPathsAndTags(args, "tags")
			if err != nil {
				return err
			}
			tags := make([]tag.Tag, 0, len(names))
			for _, name := range names {
				if err := tag.ValidateName(name); err != nil {
					return err
				}
				tags = append(tags, tag.Random(name, a.palette))
			}
			files, err := a.resolveTarget(paths, usePattern)
			if err != nil {
				return err
			}
			if files.pattern != nil {
				err = a.client.TagFilesPattern(a.ctx, *files.pattern, tags)
			} else {
				err = a.client.TagFiles(a.ctx, files.files, tags)
			}
			return a.reportBatch("Failed to tag some entries", err)
		}),
	}
}

func (a *app) getCommand() *cli.Command {
	var usePattern bool
	return &cli.Command{
		Name:    "get",
		Summary: "Show the tags of files",
		Usage:   "wutag get [flags] <paths>...",
		Flags:   a.flags("get", patternFlag(&usePattern)),
		Run: a.action(func(args []string) error {
			files, err := a.resolveTarget(args, usePattern)
			if err != nil {
				return err
			}
			var listings []ipc.FileListing
			if files.pattern != nil {
				listings, err = a.client.InspectFilesPattern(a.ctx, *files.pattern)
			} else {
				listings, err = a.client.InspectFiles(a.ctx, files.files)
			}
			for _, listing := range listings {
				a.printListing(listing, true)
			}
			return a.reportBatch("Failed to inspect some entries", err)
		}),
	}
}

func (a *app) rmCommand() *cli.Command {
	var usePattern bool
	return &cli.Command{
		Name:    "rm",
		Summary: "Remove tags from files",
		Usage:   "wutag rm [flags] <paths>... -- <tags>...",
		Flags:   a.flags("rm", patternFlag(&usePattern)),
		Run: a.action(func(args []string) error {
			paths, names, err := splitPathsAndTags(args, "tags")
			if err != nil {
				return err
			}
			files, err := a.resolveTarget(paths, usePattern)
			if err != nil {
				return err
			}
			if files.pattern != nil {
				err = a.client.UntagFilesPattern(a.ctx, *files.pattern, names)
			} else {
				err = a.client.UntagFiles(a.ctx, files.files, names)
			}
			return a.reportBatch("Failed to untag some entries", dropMissingTagErrors(err))
		}),
	}
}

// dropMissingTagErrors removes failures for tags a file never had.
// Removing an absent tag is not an error from the user's side.
func dropMissingTagErrors(err error) error {
	var batchErr *ipc.BatchError
	if !errors.As(err, &batchErr) {
		return err
	}
	var kept []string
	for _, message := range batchErr.Errors {
		if !strings.Contains(message, "doesn't exist") {
			kept = append(kept, message)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	return &ipc.BatchError{Op: batchErr.Op, Errors: kept}
}

func (a *app) clearCommand() *cli.Command {
	var usePattern bool
	return &cli.Command{
		Name:    "clear",
		Summary: "Remove tags entirely, strip files of their tags, or reset the index",
		Subcommands: []*cli.Command{
			{
				Name:    "tags",
				Summary: "Delete tags from every file carrying them",
				Usage:   "wutag clear tags <names>...",
				Flags:   a.flags("tags", nil),
				Run: a.action(func(args []string) error {
					if len(args) == 0 {
						return errors.New("no tags to clear")
					}
					return a.reportBatch("Failed to clear tags", a.client.ClearTags(a.ctx, args))
				}),
			},
			{
				Name:    "files",
				Summary: "Remove all tags from files",
				Usage:   "wutag clear files [flags] <paths>...",
				Flags:   a.flags("files", patternFlag(&usePattern)),
				Run: a.action(func(args []string) error {
					files, err := a.resolveTarget(args, usePattern)
					if err != nil {
						return err
					}
					if files.pattern != nil {
						err = a.client.ClearFilesPattern(a.ctx, *files.pattern)
					} else {
						err = a.client.ClearFiles(a.ctx, files.files)
					}
					return a.reportBatch("Failed to clear tags of some entries", err)
				}),
			},
			{
				Name:    "cache",
				Summary: "Forget every tracked file without touching the files",
				Flags:   a.flags("cache", nil),
				Run: a.action(func(args []string) error {
					if err := a.client.ClearCache(a.ctx); err != nil {
						return fmt.Errorf("failed to clear cache: %w", err)
					}
					return nil
				}),
			},
		},
	}
}

func (a *app) searchCommand() *cli.Command {
	var matchAny bool
	return &cli.Command{
		Name:    "search",
		Summary: "Find files carrying all (or any) of the given tags",
		Usage:   "wutag search [flags] <tags>...",
		Flags: a.flags("search", func(flagSet *pflag.FlagSet) {
			flagSet.BoolVarP(&matchAny, "any", "a", false, "match files carrying any of the tags")
		}),
		Run: a.action(func(args []string) error {
			if len(args) == 0 {
				return errors.New("no tags to search for")
			}
			files, err := a.client.Search(a.ctx, args, matchAny)
			if err != nil {
				return fmt.Errorf("failed to search entries with tags: %w", err)
			}
			for _, path := range files {
				fmt.Fprintln(a.stdout, a.styles.renderPath(path))
			}
			return nil
		}),
	}
}

func (a *app) cpCommand() *cli.Command {
	var usePattern bool
	return &cli.Command{
		Name:    "cp",
		Summary: "Copy the tags of one file to others",
		Usage:   "wutag cp [flags] <source> -- <paths>...",
		Flags:   a.flags("cp", patternFlag(&usePattern)),
		Run: a.action(func(args []string) error {
			sources, paths, err := splitPathsAndTags(args, "target paths")
			if err != nil {
				return err
			}
			if len(sources) != 1 {
				return fmt.Errorf("expected one source file, got %d", len(sources))
			}
			source, err := canonicalize(sources[0])
			if err != nil {
				return fmt.Errorf("source file: %w", err)
			}
			files, err := a.resolveTarget(paths, usePattern)
			if err != nil {
				return err
			}
			if files.pattern != nil {
				err = a.client.CopyTagsPattern(a.ctx, source, *files.pattern)
			} else {
				err = a.client.CopyTags(a.ctx, source, files.files)
			}
			return a.reportBatch("Failed to copy tags", err)
		}),
	}
}

func (a *app) editCommand() *cli.Command {
	var colorText string
	return &cli.Command{
		Name:    "edit",
		Summary: "Change the color of a tag",
		Usage:   "wutag edit <tag> --color <color>",
		Examples: []cli.Example{
			{Description: "Named colors", Command: "wutag edit urgent --color bright-red"},
			{Description: "Hex colors: 0x1f1f1f, #1F1F1F and 1f1f1f are equivalent", Command: "wutag edit archive --color '#1f1f1f'"},
		},
		Flags: a.flags("edit", func(flagSet *pflag.FlagSet) {
			flagSet.StringVarP(&colorText, "color", "c", "", "the new color (name or hex)")
		}),
		Run: a.action(func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one tag, got %d", len(args))
			}
			if colorText == "" {
				return errors.New("--color is required")
			}
			color, err := tag.ParseColor(colorText)
			if err != nil {
				return err
			}
			if err := a.client.EditTag(a.ctx, args[0], color); err != nil {
				return fmt.Errorf("failed to edit tag: %w", err)
			}
			return nil
		}),
	}
}

func (a *app) pingCommand() *cli.Command {
	return &cli.Command{
		Name:    "ping",
		Summary: "Check that the daemon is running",
		Flags:   a.flags("ping", nil),
		Run: a.action(func(args []string) error {
			daemonVersion, err := a.client.Ping(a.ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "wutagd %s at %s\n", daemonVersion, a.client.SocketPath())
			return nil
		}),
	}
}

func (a *app) versionCommand() *cli.Command {
	return &cli.Command{
		Name:    "version",
		Summary: "Print version information",
		Run: func(args []string) error {
			fmt.Fprintf(a.stdout, "wutag %s\n", version.Info())
			return nil
		},
	}
}
