// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/jarshade

package main

import (
	"fmt"
	"sync/atomic"

	"github.com/klauspost/compress/zip"
	"github.com/spf13/cobra"
	"github.com/woozymasta/jarshade"
)

func newExtractCommand(a *app) *cobra.Command {
	var (
		filters []string
		workers int
	)

	cmd := &cobra.Command{
		Use:   "extract <archive> <dir>",
		Short: "Extract an archive into a directory",
		Long: `Extract archive entries into a directory. Every entry path is validated
before anything is written; names escaping the target directory abort
the extraction.`,
		Example: `  jarshade extract app.jar out/
  jarshade extract app.jar out/ --filter 'com/example/**'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := globFilter(filters)
			if err != nil {
				return err
			}

			var files atomic.Int64
			err = jarshade.Extract(cmd.Context(), args[0], args[1], jarshade.ExtractOptions{
				Filter:     filter,
				MaxWorkers: workers,
				OnEntryDone: func(name string, written int64, outputPath string) {
					files.Add(1)
					a.logger.Debug("extracted", "entry", name, "bytes", written, "path", outputPath)
				},
			})
			if err != nil {
				return err
			}

			a.logger.Info("archive extracted", "path", args[1], "files", files.Load())
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringArrayVar(&filters, "filter", nil, "only extract names matching doublestar glob (repeatable)")
	flags.IntVar(&workers, "workers", 0, "number of extraction workers (0 means GOMAXPROCS)")

	return cmd
}

func newListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list <archive>",
		Short: "List archive entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := jarshade.ListEntries(args[0])
			if err != nil {
				return err
			}

			for _, e := range entries {
				var method string
				switch {
				case e.IsDir():
					method = "dir"
				case e.Method == zip.Store:
					method = "store"
				case e.Method == zip.Deflate:
					method = "deflate"
				default:
					method = fmt.Sprintf("m%d", e.Method)
				}
				_, _ = fmt.Fprintf(a.stdout, "%-7s %10d %10d  %s\n", method, e.Size, e.CompressedSize, e.Name)
			}

			return nil
		},
	}
}
