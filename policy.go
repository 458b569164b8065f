// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/jarshade

package jarshade

import "fmt"

// decision is the evaluated policy outcome for one entry.
type decision struct {
	disposition Disposition
	excluded    bool
}

// evaluateEntry applies global excludes, input excludes and input callback in that order.
// Any exclude match skips the entry without invoking the callback.
func evaluateEntry(global *exclusionSet, in *compiledInput, entry *Entry) (decision, error) {
	if global.Match(entry.Name) || in.excludes.Match(entry.Name) {
		return decision{excluded: true, disposition: Disposition{Skip: true}}, nil
	}

	disp := Disposition{}
	if in.input.Each != nil {
		var err error
		disp, err = in.input.Each(entry)
		if err != nil {
			return decision{}, fmt.Errorf("entry %s from %s: %w", entry.Name, entry.Source, err)
		}
	}

	if disp.Skip {
		return decision{disposition: Disposition{Skip: true}}, nil
	}

	name, err := finalEntryName(entry, disp.Name)
	if err != nil {
		return decision{}, fmt.Errorf("entry %s from %s: %w", entry.Name, entry.Source, err)
	}
	disp.Name = name

	return decision{disposition: disp}, nil
}

// finalEntryName resolves default or renamed entry name.
// Directory entries always keep a trailing "/"; a file may not be renamed to directory form.
func finalEntryName(entry *Entry, renamed string) (string, error) {
	if renamed == "" {
		return entry.Name, nil
	}

	name, err := NormalizeEntryName(renamed)
	if err != nil {
		return "", err
	}

	if entry.IsDir() {
		return dirEntryName(name), nil
	}

	if IsDirName(name) {
		return "", fmt.Errorf("%w: file renamed to directory name %q", ErrInvalidEntryPath, renamed)
	}

	return name, nil
}
