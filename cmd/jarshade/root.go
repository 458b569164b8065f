// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/jarshade

package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/woozymasta/jarshade/internal/config"
)

// Supported --log-format values.
const (
	logFormatText   = "text"
	logFormatJSON   = "json"
	logFormatLogfmt = "logfmt"
)

// app holds global flags and shared state of one CLI invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer
	logger *log.Logger

	configPath string
	logFormat  string
	verbose    bool
}

// newApp creates app writing command output to stdout and logs to stderr.
func newApp(stdout io.Writer, stderr io.Writer) *app {
	return &app{
		stdout:    stdout,
		stderr:    stderr,
		logFormat: logFormatText,
	}
}

// newRootCommand creates the jarshade command tree.
func newRootCommand(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "jarshade",
		Short: "Merge and shrink jar archives",
		Long: `jarshade builds a single "fat" jar from ordered inputs.

Archives, directories and single files are merged in order; the first
entry written under a name wins. Entries can be excluded by regular
expression or glob, renamed, skipped or patched while copying. The
merged jar can then be shrunk with R8.

Examples:
  jarshade merge -o app.jar --archive lib.jar --dir build/classes
  jarshade duplicates libs/*.jar
  jarshade run --config jarshade.yaml`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setupLogger()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default is ./jarshade.{yaml,toml,json})")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVar(&a.logFormat, "log-format", logFormatText, "log format: text, json or logfmt")

	rootCmd.AddCommand(
		newMergeCommand(a),
		newDuplicatesCommand(a),
		newPatchCommand(a),
		newShrinkCommand(a),
		newRunCommand(a),
		newDownloadCommand(a),
		newConfigCommand(a),
		newExtractCommand(a),
		newListCommand(a),
	)

	return rootCmd
}

// setupLogger configures logger from global flags.
func (a *app) setupLogger() error {
	var formatter log.Formatter
	switch a.logFormat {
	case logFormatText:
		formatter = log.TextFormatter
	case logFormatJSON:
		formatter = log.JSONFormatter
	case logFormatLogfmt:
		formatter = log.LogfmtFormatter
	default:
		return fmt.Errorf("unknown log format %q", a.logFormat)
	}

	level := log.InfoLevel
	if a.verbose {
		level = log.DebugLevel
	}

	a.logger = log.NewWithOptions(a.stderr, log.Options{
		Level:           level,
		Formatter:       formatter,
		ReportTimestamp: a.logFormat != logFormatText,
	})

	return nil
}

// slogger returns app logger as slog.Logger for library calls.
func (a *app) slogger() *slog.Logger {
	if a.logger == nil {
		return slog.New(slog.DiscardHandler)
	}

	return slog.New(a.logger)
}

// loadConfig loads config from --config or working directory.
func (a *app) loadConfig() (*config.Config, error) {
	cfg, used, err := config.Load(config.LoadOptions{ConfigFilePath: a.configPath})
	if err != nil {
		return nil, err
	}

	if used != "" && a.logger != nil {
		a.logger.Debug("config loaded", "path", used)
	}

	return cfg, nil
}
