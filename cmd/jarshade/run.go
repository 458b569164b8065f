// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/jarshade

package main

import (
	"github.com/spf13/cobra"
)

func newRunCommand(a *app) *cobra.Command {
	var skipShrink bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline from config",
		Long: `Run the configured pipeline: merge inputs (patching kotlin-stdlib and
stripping bundled gradle-api META-INF when presets are enabled), then shrink
the merged jar with R8 when shrink.enabled is set.`,
		Example: `  jarshade run
  jarshade run --config build/jarshade.toml --no-shrink`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			if err := a.merge(cmd, cfg); err != nil {
				return err
			}

			if !cfg.Shrink.Enabled || skipShrink {
				a.logger.Debug("shrink step disabled")
				return nil
			}

			command, err := a.shrinkCommand(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			return a.runShrink(cmd.Context(), command)
		},
	}

	cmd.Flags().BoolVar(&skipShrink, "no-shrink", false, "stop after merge")

	return cmd
}
