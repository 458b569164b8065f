// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/jarshade

package jarshade

import (
	"errors"
	"fmt"
)

// Sentinel errors for merge operations. Use errors.Is in callers.
var (
	// ErrInvalidArchive means a source cannot be opened or parsed as zip, directory or file.
	ErrInvalidArchive = errors.New("invalid archive source")
	// ErrIOState means a write after the output was finalized or a read after a source was released.
	ErrIOState = errors.New("archive resource used after close")
	// ErrPatchFailed means class bytes are malformed and cannot be patched.
	ErrPatchFailed = errors.New("class patch failed")
	// ErrDuplicateEntry means an output entry with the same final name already exists.
	ErrDuplicateEntry = errors.New("duplicate entry")
	// ErrInvalidExcludePattern means one or more exclusion patterns do not compile.
	ErrInvalidExcludePattern = errors.New("invalid exclude pattern")
	// ErrInvalidEntryPath means an entry name is empty or invalid after normalization.
	ErrInvalidEntryPath = errors.New("invalid entry path")
	// ErrEmptyInputs means no inputs were provided for merge.
	ErrEmptyInputs = errors.New("no inputs provided for merge")
	// ErrNilWriter means the output writer is nil.
	ErrNilWriter = errors.New("writer is nil")
	// ErrNilPlan means merge was called without a plan.
	ErrNilPlan = errors.New("merge plan is nil")
	// ErrInvalidInput means an input descriptor has unknown kind or empty path.
	ErrInvalidInput = errors.New("invalid merge input")
	// ErrExcludedFileInput means a single file input is excluded by global excludes.
	ErrExcludedFileInput = errors.New("file input conflicts with excludes")
	// ErrEntryNotFound means the entry is not found.
	ErrEntryNotFound = errors.New("entry not found")
	// ErrInvalidExtractPath means archive entry path is invalid for extraction destination.
	ErrInvalidExtractPath = errors.New("invalid extract path")
	// ErrExtractPathOutsideRoot means resolved extraction path escapes destination root.
	ErrExtractPathOutsideRoot = errors.New("extract path escapes destination root")
)

// DuplicateEntryError describes one dropped duplicate. It is advisory unless
// strict duplicate policy is enabled.
type DuplicateEntryError struct {
	// Name is the final entry name that collided.
	Name string `json:"name" yaml:"name"`
	// Source is the input that tried to write the entry again.
	Source string `json:"source" yaml:"source"`
	// FirstSource is the input that wrote the entry first.
	FirstSource string `json:"first_source" yaml:"first_source"`
}

// Error returns the duplicate notice text.
func (e *DuplicateEntryError) Error() string {
	return fmt.Sprintf("%v: %s from %s (already written from %s)", ErrDuplicateEntry, e.Name, e.Source, e.FirstSource)
}

// Unwrap returns ErrDuplicateEntry.
func (e *DuplicateEntryError) Unwrap() error {
	return ErrDuplicateEntry
}

// invalidArchiveError wraps a source open failure with the offending path.
func invalidArchiveError(path string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrInvalidArchive, path, err)
}
