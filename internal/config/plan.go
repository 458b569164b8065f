// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/jarshade

package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/opencontainers/go-digest"
	"github.com/woozymasta/jarshade"
	"github.com/woozymasta/jarshade/shrink"
	"github.com/woozymasta/pathrules"
)

// GlobRules converts gitignore-like pattern lines to exclusion rules.
// A leading "!" re-includes entries excluded by earlier lines.
func GlobRules(patterns []string) []pathrules.Rule {
	rules := make([]pathrules.Rule, 0, len(patterns))
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" || strings.HasPrefix(pattern, "#") {
			continue
		}

		action := pathrules.ActionInclude
		if rest, ok := strings.CutPrefix(pattern, "!"); ok {
			action = pathrules.ActionExclude
			pattern = rest
		}

		rules = append(rules, pathrules.Rule{Action: action, Pattern: pattern})
	}

	return rules
}

// Plan validates config and builds merge plan from it.
func (c *Config) Plan(logger *slog.Logger) (*jarshade.Plan, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	mtime, _ := c.ModTime()

	opts := jarshade.MergeOptions{
		Logger:       logger,
		Excludes:     c.Excludes,
		ExcludeGlobs: GlobRules(c.ExcludeGlobs),
		Writer:       jarshade.WriterOptions{ModTime: mtime},
	}
	if c.DefaultExcludes {
		opts.ExcludeGlobs = append(jarshade.DefaultExcludes(), opts.ExcludeGlobs...)
	}
	if c.StrictDuplicates {
		opts.Duplicates = jarshade.DuplicateFail
	}

	b := jarshade.NewBuilder(opts)
	for i, in := range c.Inputs {
		fn, err := c.entryFunc(in, logger)
		if err != nil {
			return nil, fmt.Errorf("inputs[%d]: %w", i, err)
		}

		inputOpts := []jarshade.InputOption{jarshade.WithExcludes(in.Excludes...)}
		if fn != nil {
			inputOpts = append(inputOpts, jarshade.WithEntryFunc(fn))
		}

		switch {
		case in.Archive != "":
			b.AddArchive(in.Archive, inputOpts...)
		case in.Directory != "":
			b.AddDirectory(in.Directory, inputOpts...)
		default:
			b.AddFile(in.File, in.Name, inputOpts...)
		}
	}

	return b.Build()
}

// entryFunc composes per-input entry rules; nil when input has none.
func (c *Config) entryFunc(in Input, logger *slog.Logger) (jarshade.EntryFunc, error) {
	var fns []jarshade.EntryFunc

	if len(in.StripPrefixes) > 0 {
		fns = append(fns, jarshade.SkipPrefix(in.StripPrefixes...))
	}

	for _, class := range in.PatchClasses {
		fns = append(fns, jarshade.ClearAccessFlags(class, jarshade.AccPublic))
	}

	if c.DetectPresets && in.Archive != "" {
		if jarshade.IsKotlinStdlib(in.Archive) {
			logger.Debug("kotlin stdlib detected", "path", in.Archive)
			fns = append(fns, jarshade.PatchDefaultConstructorMarker())
		}

		gradle, err := jarshade.IsGradleAPIJar(in.Archive)
		if err != nil {
			return nil, err
		}
		if gradle {
			logger.Debug("gradle api jar detected", "path", in.Archive)
			fns = append(fns, jarshade.SkipPrefix(jarshade.GradleImpldepMetaInfPrefix))
		}
	}

	switch len(fns) {
	case 0:
		return nil, nil
	case 1:
		return fns[0], nil
	default:
		return jarshade.Chain(fns...), nil
	}
}

// MappingPath returns configured mapping file or mapping.txt next to shrunk output.
func (c *Config) MappingPath() string {
	if c.Shrink.Mapping != "" {
		return c.Shrink.Mapping
	}

	return filepath.Join(filepath.Dir(c.Shrink.Output), DefaultMappingName)
}

// ShrinkCommand returns R8 command shrinking merged output with toolJar.
func (c *Config) ShrinkCommand(toolJar string) shrink.Command {
	return shrink.Command{
		Java:            c.Shrink.Java,
		ToolJar:         toolJar,
		JDKHome:         c.Shrink.JDKHome,
		MappingOutput:   c.MappingPath(),
		Output:          c.Shrink.Output,
		ProgramFiles:    []string{c.Output},
		ClassPath:       c.Shrink.Classpath,
		ProguardConfigs: c.Shrink.Proguard,
	}
}

// ShrinkClasspath returns shrink classpath with gradle-api jars replaced by
// copies without bundled impldep META-INF entries. Copies are written under
// CacheDir/classpath. Other entries are returned unchanged. Detection follows
// DetectPresets.
func (c *Config) ShrinkClasspath(ctx context.Context, logger *slog.Logger) ([]string, error) {
	out := append([]string(nil), c.Shrink.Classpath...)
	if !c.DetectPresets {
		return out, nil
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	cacheDir := c.Shrink.CacheDir
	if cacheDir == "" {
		cacheDir = DefaultCacheDir()
	}

	for i, path := range out {
		gradle, err := jarshade.IsGradleAPIJar(path)
		if err != nil {
			return nil, fmt.Errorf("shrink.classpath[%d]: %w", i, err)
		}
		if !gradle {
			continue
		}

		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("shrink.classpath[%d]: %w", i, err)
		}

		dest := filepath.Join(cacheDir, "classpath", fmt.Sprintf("%016x", xxhash.Sum64String(abs)), filepath.Base(path))
		plan, err := jarshade.NewBuilder(jarshade.MergeOptions{Logger: logger}).
			AddArchive(path, jarshade.WithEntryFunc(jarshade.SkipPrefix(jarshade.GradleImpldepMetaInfPrefix))).
			Build()
		if err != nil {
			return nil, fmt.Errorf("shrink.classpath[%d]: %w", i, err)
		}

		if _, err := jarshade.MergeFile(ctx, dest, plan); err != nil {
			return nil, fmt.Errorf("strip gradle api jar %s: %w", path, err)
		}

		logger.Debug("gradle api classpath jar stripped", "path", path, "copy", dest)
		out[i] = dest
	}

	return out, nil
}

// R8Download returns options fetching configured R8 version into cache.
func (c *Config) R8Download(logger *slog.Logger) shrink.DownloadOptions {
	cacheDir := c.Shrink.CacheDir
	if cacheDir == "" {
		cacheDir = DefaultCacheDir()
	}

	return shrink.DownloadOptions{
		Logger:  logger,
		Version: c.Shrink.R8Version,
		Dest:    shrink.DefaultJarPath(cacheDir, c.Shrink.R8Version),
		Digest:  digest.Digest(c.Shrink.R8Digest),
	}
}
