// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/jarshade

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/woozymasta/jarshade/internal/config"
)

// newConfigCommand creates the `jarshade config` command tree.
func newConfigCommand(a *app) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect jarshade configuration",
		Long: `Inspect jarshade configuration.

Configuration is read from --config or jarshade.{yaml,toml,json} in the
working directory. Every key can be overridden by JARSHADE_* environment
variables, e.g. JARSHADE_OUTPUT or JARSHADE_SHRINK_R8_VERSION.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	var validate bool
	show := &cobra.Command{
		Use:   "show",
		Short: "Print effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, used, err := config.Load(config.LoadOptions{ConfigFilePath: a.configPath})
			if err != nil {
				return err
			}

			if validate {
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			data, err := cfg.Render()
			if err != nil {
				return err
			}

			if used != "" {
				_, _ = fmt.Fprintf(a.stdout, "# loaded from %s\n", used)
			}
			_, err = a.stdout.Write(data)
			return err
		},
	}
	show.Flags().BoolVar(&validate, "validate", false, "fail when configuration is invalid")

	cfgCmd.AddCommand(show)

	return cfgCmd
}
