// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/jarshade

package main

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"
	"github.com/woozymasta/jarshade"
)

// globFilter returns name filter matching any doublestar pattern; nil for no patterns.
func globFilter(patterns []string) (func(name string) bool, error) {
	if len(patterns) == 0 {
		return nil, nil
	}

	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid filter pattern %q", pattern)
		}
	}

	return func(name string) bool {
		for _, pattern := range patterns {
			if ok, _ := doublestar.Match(pattern, name); ok {
				return true
			}
		}
		return false
	}, nil
}

func newDuplicatesCommand(a *app) *cobra.Command {
	var (
		filters     []string
		onlyDiffers bool
		fail        bool
		workers     int
	)

	cmd := &cobra.Command{
		Use:   "duplicates <archive>...",
		Short: "Report entries present in more than one archive",
		Long: `Report file entries present in more than one archive. Each line shows
whether all copies have identical content, the entry name and the archives
containing it in argument order.`,
		Example: `  jarshade duplicates libs/*.jar
  jarshade duplicates --filter '**/*.class' --differs --fail a.jar b.jar`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := globFilter(filters)
			if err != nil {
				return err
			}

			reports, err := jarshade.ClassifyDuplicates(cmd.Context(), args, jarshade.DuplicateOptions{
				Filter:     filter,
				MaxWorkers: workers,
			})
			if err != nil {
				return err
			}

			found := 0
			for _, r := range reports {
				if onlyDiffers && r.Identical {
					continue
				}
				found++

				state := "differs"
				if r.Identical {
					state = "identical"
				}
				_, _ = fmt.Fprintf(a.stdout, "%s\t%s\t%s\n", state, r.Name, strings.Join(r.Archives, ", "))
			}

			a.logger.Debug("duplicate scan done", "archives", len(args), "reported", found)

			if fail && found > 0 {
				return &ExitError{
					Code: ExitDuplicates,
					Err:  fmt.Errorf("%d duplicate entries found", found),
				}
			}

			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringArrayVar(&filters, "filter", nil, "only report names matching doublestar glob (repeatable)")
	flags.BoolVar(&onlyDiffers, "differs", false, "only report duplicates with different content")
	flags.BoolVar(&fail, "fail", false, "exit with status 2 when duplicates are reported")
	flags.IntVar(&workers, "workers", 0, "number of archives scanned concurrently (0 means GOMAXPROCS)")

	return cmd
}
