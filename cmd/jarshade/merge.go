// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/jarshade

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/woozymasta/jarshade"
	"github.com/woozymasta/jarshade/internal/config"
)

// inputFlag appends inputs of one kind to a list shared by all input flags,
// so --archive, --dir and --file keep command-line order.
type inputFlag struct {
	inputs *[]config.Input
	kind   jarshade.InputKind
}

func (f *inputFlag) String() string { return "" }

func (f *inputFlag) Type() string {
	if f.kind == jarshade.InputFile {
		return "[name=]path"
	}
	return "path"
}

func (f *inputFlag) Set(value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("empty %s input", f.kind)
	}

	var in config.Input
	switch f.kind {
	case jarshade.InputArchive:
		in.Archive = value
	case jarshade.InputDirectory:
		in.Directory = value
	default:
		if name, path, ok := strings.Cut(value, "="); ok {
			in.Name, in.File = name, path
		} else {
			in.File = value
		}
	}

	*f.inputs = append(*f.inputs, in)
	return nil
}

// mergeFlags are config overrides shared by merge and patch commands.
type mergeFlags struct {
	output            string
	mtime             string
	inputs            []config.Input
	excludes          []string
	excludeGlobs      []string
	strict            bool
	noDefaultExcludes bool
	noPresets         bool
}

// apply overrides config with flags set on cmd.
func (f *mergeFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	if len(f.inputs) > 0 {
		cfg.Inputs = append([]config.Input(nil), f.inputs...)
	}
	if f.output != "" {
		cfg.Output = f.output
	}
	if f.mtime != "" {
		cfg.MTime = f.mtime
	}

	cfg.Excludes = append(cfg.Excludes, f.excludes...)
	cfg.ExcludeGlobs = append(cfg.ExcludeGlobs, f.excludeGlobs...)

	if cmd.Flags().Changed("strict") {
		cfg.StrictDuplicates = f.strict
	}
	if f.noDefaultExcludes {
		cfg.DefaultExcludes = false
	}
	if f.noPresets {
		cfg.DetectPresets = false
	}
}

func newMergeCommand(a *app) *cobra.Command {
	f := &mergeFlags{}

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge archives, directories and files into one jar",
		Long: `Merge inputs into one jar. Inputs are processed in the order given on the
command line (or in config file order when no input flags are set). The
first entry written under a name wins; later duplicates are reported.`,
		Example: `  jarshade merge -o app.jar --archive kotlin-stdlib-1.9.0.jar --dir build/classes
  jarshade merge -o app.jar --archive lib.jar --file META-INF/LICENSE=LICENSE --exclude 'META-INF/.*\.SF'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			f.apply(cmd, cfg)

			return a.merge(cmd, cfg)
		},
	}

	flags := cmd.Flags()
	flags.Var(&inputFlag{inputs: &f.inputs, kind: jarshade.InputArchive}, "archive", "add zip/jar archive input (repeatable)")
	flags.Var(&inputFlag{inputs: &f.inputs, kind: jarshade.InputDirectory}, "dir", "add directory input (repeatable)")
	flags.Var(&inputFlag{inputs: &f.inputs, kind: jarshade.InputFile}, "file", "add single file input as [entry-name=]path (repeatable)")
	flags.StringVarP(&f.output, "output", "o", "", "output jar path")
	flags.StringArrayVar(&f.excludes, "exclude", nil, "exclude entries fully matching regular expression (repeatable)")
	flags.StringArrayVar(&f.excludeGlobs, "exclude-glob", nil, "exclude entries matching gitignore-like glob; '!' re-includes (repeatable)")
	flags.BoolVar(&f.strict, "strict", false, "fail on duplicate file entries")
	flags.StringVar(&f.mtime, "mtime", "", "set every entry modification time (RFC 3339)")
	flags.BoolVar(&f.noDefaultExcludes, "no-default-excludes", false, "keep manifests, proguard fragments and module-info classes")
	flags.BoolVar(&f.noPresets, "no-presets", false, "disable kotlin-stdlib and gradle-api presets")

	return cmd
}

// merge builds plan from cfg and writes cfg.Output.
func (a *app) merge(cmd *cobra.Command, cfg *config.Config) error {
	logger := a.slogger()

	plan, err := cfg.Plan(logger)
	if err != nil {
		return err
	}

	res, err := jarshade.MergeFile(cmd.Context(), cfg.Output, plan)
	if err != nil {
		return err
	}

	a.logger.Info("archive written",
		"path", cfg.Output,
		"entries", res.WrittenEntries,
		"duplicates", len(res.Duplicates),
		"excluded", res.ExcludedEntries,
		"skipped", res.SkippedEntries,
		"rewritten", res.RewrittenEntries,
		"size", res.Size,
		"digest", res.Digest,
		"duration", res.Duration,
	)

	return nil
}
