// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/jarshade

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/opencontainers/go-digest"
	"github.com/spf13/cobra"
	"github.com/woozymasta/jarshade/internal/config"
	"github.com/woozymasta/jarshade/shrink"
)

// shrinkFlags are config overrides of shrink command.
type shrinkFlags struct {
	java      string
	r8Jar     string
	r8Version string
	jdkHome   string
	mapping   string
	output    string
	classpath []string
	proguard  []string
}

// apply overrides cfg.Shrink with non-empty flags.
func (f *shrinkFlags) apply(cfg *config.Config) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}

	set(&cfg.Shrink.Java, f.java)
	set(&cfg.Shrink.R8Jar, f.r8Jar)
	set(&cfg.Shrink.R8Version, f.r8Version)
	set(&cfg.Shrink.JDKHome, f.jdkHome)
	set(&cfg.Shrink.Mapping, f.mapping)
	set(&cfg.Shrink.Output, f.output)
	cfg.Shrink.Classpath = append(cfg.Shrink.Classpath, f.classpath...)
	cfg.Shrink.Proguard = append(cfg.Shrink.Proguard, f.proguard...)
}

func newShrinkCommand(a *app) *cobra.Command {
	f := &shrinkFlags{}

	cmd := &cobra.Command{
		Use:   "shrink [program.jar]...",
		Short: "Shrink jars with R8",
		Long: `Run R8 in class-file release mode over program jars. Without arguments the
configured merge output is shrunk. The R8 jar is downloaded into the cache
when --r8-jar is not set.`,
		Example: `  jarshade shrink build/embedded.jar -o build/shadowed.jar --pg-conf rules.pro`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			f.apply(cfg)

			if cfg.Shrink.Output == "" {
				return errors.New("shrink output is not set (use --output or shrink.output)")
			}

			command, err := a.shrinkCommand(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			if len(args) > 0 {
				command.ProgramFiles = args
			}

			return a.runShrink(cmd.Context(), command)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.output, "output", "o", "", "shrunk jar path")
	flags.StringVar(&f.mapping, "mapping", "", "mapping output (default: mapping.txt next to output)")
	flags.StringArrayVar(&f.proguard, "pg-conf", nil, "proguard rules file (repeatable)")
	flags.StringArrayVar(&f.classpath, "classpath", nil, "library jar referenced but not shrunk (repeatable)")
	flags.StringVar(&f.jdkHome, "jdk-home", "", "JDK passed as --lib (default: JAVA_HOME)")
	flags.StringVar(&f.java, "java", "", "java launcher")
	flags.StringVar(&f.r8Jar, "r8-jar", "", "local R8 jar")
	flags.StringVar(&f.r8Version, "r8-version", "", "R8 version or commit to download")

	return cmd
}

// shrinkCommand resolves R8 jar and returns command for cfg.
func (a *app) shrinkCommand(ctx context.Context, cfg *config.Config) (shrink.Command, error) {
	toolJar := cfg.Shrink.R8Jar
	if toolJar == "" {
		path, err := shrink.Download(ctx, cfg.R8Download(a.slogger()))
		if err != nil {
			return shrink.Command{}, err
		}
		toolJar = path
	}

	classpath, err := cfg.ShrinkClasspath(ctx, a.slogger())
	if err != nil {
		return shrink.Command{}, err
	}

	command := cfg.ShrinkCommand(toolJar)
	command.ClassPath = classpath
	return command, nil
}

// runShrink executes command; tool output is streamed in verbose mode.
func (a *app) runShrink(ctx context.Context, command shrink.Command) error {
	opts := shrink.RunOptions{Logger: a.slogger()}
	if a.verbose {
		opts.Output = a.stderr
	}

	res, err := shrink.Run(ctx, command, opts)
	if err != nil {
		var toolErr *shrink.ToolError
		if errors.As(err, &toolErr) && !a.verbose && toolErr.Output != "" {
			_, _ = fmt.Fprintln(a.stderr, toolErr.Output)
		}
		return err
	}

	a.logger.Info("jar shrunk", "path", command.Output, "mapping", command.MappingOutput, "duration", res.Duration)
	return nil
}

func newDownloadCommand(a *app) *cobra.Command {
	var (
		version  string
		url      string
		dest     string
		checksum string
		force    bool
	)

	cmd := &cobra.Command{
		Use:   "download-r8",
		Short: "Download R8 jar into the cache",
		Long: `Download R8 jar and print its path. Dotted versions are fetched from Google
Maven; anything else is treated as an R8 commit SHA.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			if version != "" {
				cfg.Shrink.R8Version = version
			}
			if checksum != "" {
				cfg.Shrink.R8Digest = checksum
			}

			opts := cfg.R8Download(a.slogger())
			opts.URL = url
			opts.Force = force
			if dest != "" {
				opts.Dest = dest
			}
			if opts.Digest != "" {
				if err := opts.Digest.Validate(); err != nil {
					return fmt.Errorf("invalid --digest: %w", err)
				}
			}

			path, err := shrink.Download(cmd.Context(), opts)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(a.stdout, path)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&version, "r8-version", "", "R8 version or commit SHA (default "+shrink.DefaultR8Version+")")
	flags.StringVar(&url, "url", "", "download URL overriding version")
	flags.StringVar(&dest, "dest", "", "target path (default: cache dir)")
	flags.StringVar(&checksum, "digest", "", "expected digest, e.g. "+string(digest.Canonical)+":<hex>")
	flags.BoolVar(&force, "force", false, "download even when cached")

	return cmd
}
