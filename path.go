// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/jarshade

package jarshade

import (
	"fmt"
	"path"
	"strings"
)

// NormalizePath converts an archive/internal path to normalized slash-separated form.
// It trims spaces, accepts both "/" and "\", removes leading "./" and "/", cleans "." segments
// and drops any trailing slash.
func NormalizePath(raw string) string {
	raw = normalizePathForMatching(raw)
	raw = strings.TrimPrefix(raw, "/")
	raw = path.Clean("/" + raw)
	raw = strings.TrimPrefix(raw, "/")
	if raw == "." {
		return ""
	}

	return strings.TrimSuffix(raw, "/")
}

// NormalizeEntryName converts a caller-provided entry name to canonical zip form.
// Directory names (trailing separator) keep one trailing "/".
func NormalizeEntryName(raw string) (string, error) {
	candidate := normalizePathForMatching(raw)
	isDir := strings.HasSuffix(candidate, "/")

	normalized := NormalizePath(candidate)
	if normalized == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidEntryPath, raw)
	}

	if isDir {
		return normalized + "/", nil
	}

	return normalized, nil
}

// IsDirName reports whether entry name denotes a directory.
func IsDirName(name string) bool {
	return strings.HasSuffix(name, "/")
}

// dirEntryName enforces trailing "/" for directory entry names.
func dirEntryName(name string) string {
	if IsDirName(name) {
		return name
	}

	return name + "/"
}

// normalizePathForMatching normalizes user/input paths for matcher use.
func normalizePathForMatching(path string) string {
	path = strings.TrimSpace(path)
	path = strings.ReplaceAll(path, `\`, `/`)
	path = strings.TrimPrefix(path, "./")
	return path
}
