// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/jarshade

package jarshade

import (
	"io"
	"log/slog"
	"time"

	"github.com/opencontainers/go-digest"
	"github.com/woozymasta/pathrules"
)

// Default writer tuning values.
const (
	DefaultWriteBuffer      = 1024 * 1024
	DefaultCompressionLevel = 6
)

// InputKind identifies the variant of one merge input.
type InputKind uint8

// Merge input kinds.
const (
	// InputArchive is a zip/jar archive file.
	InputArchive InputKind = iota + 1
	// InputDirectory is a directory tree walked in lexicographic order.
	InputDirectory
	// InputFile is a single loose file mapped to one entry name.
	InputFile
)

// String returns kind name used in logs and config.
func (k InputKind) String() string {
	switch k {
	case InputArchive:
		return "archive"
	case InputDirectory:
		return "directory"
	case InputFile:
		return "file"
	default:
		return "unknown"
	}
}

// EntryFunc computes the disposition of one source entry.
// Returning an error aborts the whole merge.
type EntryFunc func(entry *Entry) (Disposition, error)

// Input describes one ordered contributor to a merge.
type Input struct {
	// Each is optional per-entry callback evaluated after excludes.
	Each EntryFunc `json:"-" yaml:"-"`
	// Path is archive, directory or file path on disk.
	Path string `json:"path" yaml:"path"`
	// Name is destination entry name for InputFile (base name of Path when empty).
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	// Excludes are regular expressions matched against full original entry names.
	Excludes []string `json:"excludes,omitempty" yaml:"excludes,omitempty"`
	// ExcludeGlobs are gitignore-like rules; matching entries are skipped.
	ExcludeGlobs []pathrules.Rule `json:"exclude_globs,omitempty" yaml:"exclude_globs,omitempty"`
	// Kind selects how Path is read.
	Kind InputKind `json:"kind" yaml:"kind"`
}

// Disposition is the decision for one entry. Skip wins over every other field.
// Empty Name keeps the default name and nil Open keeps original content.
type Disposition struct {
	// Open returns replacement content.
	Open func() (io.ReadCloser, error) `json:"-" yaml:"-"`
	// Name is final entry name.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	// Skip drops the entry.
	Skip bool `json:"skip,omitempty" yaml:"skip,omitempty"`
}

// DuplicatePolicy controls what happens when a final name is already written.
type DuplicatePolicy string

// Duplicate policies.
const (
	// DuplicateWarn logs a notice and keeps the first written entry.
	DuplicateWarn DuplicatePolicy = "warn"
	// DuplicateFail aborts the merge on the first non-directory duplicate.
	DuplicateFail DuplicatePolicy = "fail"
)

// EntryProgress contains one written entry event from merge flow.
type EntryProgress struct {
	// Name is final entry name written to archive.
	Name string `json:"name" yaml:"name"`
	// Source is the input path the entry came from.
	Source string `json:"source" yaml:"source"`
	// Size is uncompressed payload size; -1 when copied raw with unknown size.
	Size int64 `json:"size" yaml:"size"`
	// Method is zip compression method of written entry.
	Method uint16 `json:"method" yaml:"method"`
	// Raw reports whether compressed payload was copied without recompression.
	Raw bool `json:"raw,omitempty" yaml:"raw,omitempty"`
	// Rewritten reports whether content was replaced by a policy.
	Rewritten bool `json:"rewritten,omitempty" yaml:"rewritten,omitempty"`
}

// WriterOptions configures output archive writer.
type WriterOptions struct {
	// ModTime overrides every entry modification time when non-zero.
	ModTime time.Time `json:"mod_time,omitzero" yaml:"mod_time,omitzero"`
	// Comment is archive-level comment.
	Comment string `json:"comment,omitempty" yaml:"comment,omitempty"`
	// Store defines ordered path rules for entries written without compression.
	Store []pathrules.Rule `json:"store,omitempty" yaml:"store,omitempty"`
	// StoreMatcherOptions control store rule matching.
	StoreMatcherOptions pathrules.MatcherOptions `json:"store_matcher_options,omitzero" yaml:"store_matcher_options,omitzero"`
	// BufferSize is buffered writer size in bytes.
	BufferSize int `json:"buffer_size,omitempty" yaml:"buffer_size,omitempty"`
	// CompressionLevel is deflate level (1..9).
	CompressionLevel int `json:"compression_level,omitempty" yaml:"compression_level,omitempty"`
}

// MergeOptions configures merge behavior shared by all inputs.
type MergeOptions struct {
	// Logger receives duplicate notices and progress; nil discards logs.
	Logger *slog.Logger `json:"-" yaml:"-"`
	// OnEntryDone is called after one entry is fully written.
	OnEntryDone func(entry EntryProgress) `json:"-" yaml:"-"`
	// OnDuplicate is called for every dropped non-directory duplicate.
	OnDuplicate func(dup *DuplicateEntryError) `json:"-" yaml:"-"`
	// Excludes are global regular expressions matched against original entry names.
	Excludes []string `json:"excludes,omitempty" yaml:"excludes,omitempty"`
	// ExcludeGlobs are global gitignore-like exclusion rules.
	ExcludeGlobs []pathrules.Rule `json:"exclude_globs,omitempty" yaml:"exclude_globs,omitempty"`
	// ExcludeMatcherOptions control glob exclusion matching.
	ExcludeMatcherOptions pathrules.MatcherOptions `json:"exclude_matcher_options,omitzero" yaml:"exclude_matcher_options,omitzero"`
	// Duplicates selects duplicate handling policy.
	Duplicates DuplicatePolicy `json:"duplicates,omitempty" yaml:"duplicates,omitempty"`
	// Writer configures output archive writer.
	Writer WriterOptions `json:"writer,omitzero" yaml:"writer,omitzero"`
}

// MergeResult contains merge output statistics.
type MergeResult struct {
	// Duplicates lists dropped duplicate entries in encounter order.
	Duplicates []DuplicateEntryError `json:"duplicates,omitempty" yaml:"duplicates,omitempty"`
	// Digest is SHA256 digest of output archive (MergeFile only).
	Digest digest.Digest `json:"digest,omitempty" yaml:"digest,omitempty"`
	// WrittenEntries is number of entries written to archive, directories included.
	WrittenEntries int `json:"written_entries" yaml:"written_entries"`
	// DirectoryEntries is number of directory entries written.
	DirectoryEntries int `json:"directory_entries,omitempty" yaml:"directory_entries,omitempty"`
	// ExcludedEntries is number of entries dropped by exclusion patterns.
	ExcludedEntries int `json:"excluded_entries,omitempty" yaml:"excluded_entries,omitempty"`
	// SkippedEntries is number of entries dropped by entry callbacks.
	SkippedEntries int `json:"skipped_entries,omitempty" yaml:"skipped_entries,omitempty"`
	// RewrittenEntries is number of entries written with replaced content.
	RewrittenEntries int `json:"rewritten_entries,omitempty" yaml:"rewritten_entries,omitempty"`
	// Size is output archive size in bytes.
	Size int64 `json:"size" yaml:"size"`
	// Duration is end-to-end merge duration.
	Duration time.Duration `json:"duration,omitempty" yaml:"duration,omitempty"`
}

// ExtractOptions configures Extract behavior.
type ExtractOptions struct {
	// OnEntryDone is called after one entry is fully written to disk.
	OnEntryDone func(name string, written int64, outputPath string) `json:"-" yaml:"-"`
	// Filter limits extraction to names for which it returns true; nil extracts all.
	Filter func(name string) bool `json:"-" yaml:"-"`
	// MaxWorkers is number of extraction workers (zero means GOMAXPROCS).
	MaxWorkers int `json:"max_workers,omitempty" yaml:"max_workers,omitempty"`
}

// applyDefaults fills zero-valued writer options with defaults.
func (opts *WriterOptions) applyDefaults() {
	if opts.BufferSize < 4096 {
		opts.BufferSize = DefaultWriteBuffer
	}

	if opts.CompressionLevel < 1 || opts.CompressionLevel > 9 {
		opts.CompressionLevel = DefaultCompressionLevel
	}

	if opts.StoreMatcherOptions.DefaultAction == pathrules.ActionUnknown {
		opts.StoreMatcherOptions.DefaultAction = pathrules.ActionExclude
	}
}

// applyDefaults fills zero-valued merge options with defaults.
func (opts *MergeOptions) applyDefaults() {
	opts.Writer.applyDefaults()

	if opts.Duplicates == "" {
		opts.Duplicates = DuplicateWarn
	}

	if opts.ExcludeMatcherOptions.DefaultAction == pathrules.ActionUnknown {
		opts.ExcludeMatcherOptions.DefaultAction = pathrules.ActionExclude
	}

	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
}
