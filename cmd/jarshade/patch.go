// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/jarshade

package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/woozymasta/jarshade"
)

// accessFlagNames maps --clear values to class access flag bits.
var accessFlagNames = map[string]uint16{
	"public":     jarshade.AccPublic,
	"final":      jarshade.AccFinal,
	"super":      jarshade.AccSuper,
	"interface":  jarshade.AccInterface,
	"abstract":   jarshade.AccAbstract,
	"synthetic":  jarshade.AccSynthetic,
	"annotation": jarshade.AccAnnotation,
	"enum":       jarshade.AccEnum,
	"module":     jarshade.AccModule,
}

// parseAccessMask combines flag names into one mask.
func parseAccessMask(names []string) (uint16, error) {
	var mask uint16
	for _, name := range names {
		bit, ok := accessFlagNames[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			known := make([]string, 0, len(accessFlagNames))
			for k := range accessFlagNames {
				known = append(known, k)
			}
			sort.Strings(known)
			return 0, fmt.Errorf("unknown access flag %q (known: %s)", name, strings.Join(known, ", "))
		}
		mask |= bit
	}

	return mask, nil
}

func newPatchCommand(a *app) *cobra.Command {
	var (
		classes    []string
		clearFlags []string
		output     string
	)

	cmd := &cobra.Command{
		Use:   "patch <jar>",
		Short: "Clear access flags of classes inside a jar",
		Long: `Rewrite a jar with access flags of the given classes cleared. Every other
entry is copied unchanged. Without --output the jar is replaced in place.`,
		Example: `  jarshade patch kotlin-stdlib.jar --class kotlin/jvm/internal/DefaultConstructorMarker.class
  jarshade patch lib.jar --class com/example/Api.class --clear public,final -o patched.jar`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mask, err := parseAccessMask(clearFlags)
			if err != nil {
				return err
			}

			fns := make([]jarshade.EntryFunc, 0, len(classes))
			for _, class := range classes {
				fns = append(fns, jarshade.ClearAccessFlags(class, mask))
			}

			if output == "" {
				output = args[0]
			}

			plan, err := jarshade.NewBuilder(jarshade.MergeOptions{Logger: a.slogger()}).
				AddArchive(args[0], jarshade.WithEntryFunc(jarshade.Chain(fns...))).
				Build()
			if err != nil {
				return err
			}

			res, err := jarshade.MergeFile(cmd.Context(), output, plan)
			if err != nil {
				return err
			}

			if res.RewrittenEntries != len(classes) {
				a.logger.Warn("not every class was found", "patched", res.RewrittenEntries, "requested", len(classes))
			}
			a.logger.Info("jar patched", "path", output, "patched", res.RewrittenEntries, "digest", res.Digest)

			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringArrayVar(&classes, "class", nil, "class entry to patch, e.g. a/b/C.class (repeatable)")
	flags.StringSliceVar(&clearFlags, "clear", []string{"public"}, "access flags to clear")
	flags.StringVarP(&output, "output", "o", "", "output jar (default: replace input)")
	_ = cmd.MarkFlagRequired("class")

	return cmd
}
