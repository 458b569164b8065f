// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/jarshade

package jarshade

import (
	"fmt"
	"path/filepath"
	"strings"
)

// SafeJoin resolves archive entry name under root directory. Absolute names,
// drive prefixes, NUL bytes and ".." segments are rejected with
// ErrInvalidExtractPath; a result outside root yields ErrExtractPathOutsideRoot.
func SafeJoin(root string, entryName string) (string, error) {
	rel, err := normalizeExtractEntryPath(entryName)
	if err != nil {
		return "", fmt.Errorf("%w: %q", err, entryName)
	}

	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve root %s: %w", root, err)
	}

	target := filepath.Join(rootAbs, filepath.FromSlash(rel))
	if !withinRoot(rootAbs, target) {
		return "", fmt.Errorf("%w: %q", ErrExtractPathOutsideRoot, entryName)
	}

	return target, nil
}

// withinRoot reports whether target is root or below it.
func withinRoot(root string, target string) bool {
	relative, err := filepath.Rel(root, target)
	if err != nil {
		return false
	}

	if relative == "." {
		return true
	}

	return relative != ".." && !strings.HasPrefix(relative, ".."+string(filepath.Separator))
}

// normalizeExtractEntryPath normalizes entry path and rejects absolute/traversal inputs.
func normalizeExtractEntryPath(entryPath string) (string, error) {
	raw := strings.TrimSpace(entryPath)
	if raw == "" || strings.ContainsRune(raw, 0) {
		return "", ErrInvalidExtractPath
	}

	if strings.HasPrefix(raw, `/`) || strings.HasPrefix(raw, `\`) {
		return "", ErrInvalidExtractPath
	}

	raw = strings.ReplaceAll(raw, `\`, `/`)
	if hasWindowsDrivePrefix(raw) {
		return "", ErrInvalidExtractPath
	}

	parts := strings.Split(raw, `/`)
	cleanParts := make([]string, 0, len(parts))
	for _, part := range parts {
		switch part {
		case "", ".":
			continue
		case "..":
			return "", ErrInvalidExtractPath
		default:
			cleanParts = append(cleanParts, part)
		}
	}

	if len(cleanParts) == 0 {
		return "", ErrInvalidExtractPath
	}

	return strings.Join(cleanParts, `/`), nil
}

// hasWindowsDrivePrefix reports whether path starts with drive prefix like C:.
func hasWindowsDrivePrefix(path string) bool {
	if len(path) < 2 {
		return false
	}

	c := path[0]
	return ((c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')) && path[1] == ':'
}
