// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/jarshade

package jarshade

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/klauspost/compress/zip"
	"golang.org/x/sync/errgroup"
)

// extractCopyBufferSize defines per-entry buffer size for file copy during extraction.
const extractCopyBufferSize = 64 * 1024

// extractWorkItem stores one selected entry with resolved output path.
type extractWorkItem struct {
	file    *zip.File
	outPath string
}

// Extract writes archive entries to dstDir. Every entry path is validated
// before anything is written; names escaping dstDir fail the whole call.
// File extraction is parallelized by MaxWorkers and returns the first error.
func Extract(ctx context.Context, archivePath string, dstDir string, opts ExtractOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	zr, err := openZip(archivePath)
	if err != nil {
		return err
	}
	defer func() { _ = zr.Close() }()

	dstRootAbs, err := filepath.Abs(dstDir)
	if err != nil {
		return fmt.Errorf("resolve output dir: %w", err)
	}

	if err := os.MkdirAll(dstRootAbs, 0o750); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	dirs, files, err := prepareExtractWorkItems(dstRootAbs, zr.File, opts.Filter)
	if err != nil {
		return err
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create output directory %s: %w", dir, err)
		}
	}

	workers := opts.MaxWorkers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	for _, task := range files {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			written, err := extractEntry(task)
			if err != nil {
				return err
			}

			if opts.OnEntryDone != nil {
				opts.OnEntryDone(task.file.Name, written, task.outPath)
			}

			return nil
		})
	}

	return eg.Wait()
}

// prepareExtractWorkItems validates selected entries and returns unique
// directories to create plus file work items. When several entries resolve
// to the same output path, only the first one in archive order is extracted.
func prepareExtractWorkItems(root string, files []*zip.File, filter func(string) bool) ([]string, []extractWorkItem, error) {
	seenDirs := make(map[string]struct{}, len(files))
	seenFiles := make(map[string]struct{}, len(files))
	dirs := make([]string, 0, len(files))
	items := make([]extractWorkItem, 0, len(files))

	addDir := func(dir string) {
		if _, ok := seenDirs[dir]; ok {
			return
		}
		seenDirs[dir] = struct{}{}
		dirs = append(dirs, dir)
	}

	for _, f := range files {
		if filter != nil && !filter(f.Name) {
			continue
		}

		outPath, err := SafeJoin(root, f.Name)
		if err != nil {
			return nil, nil, fmt.Errorf("entry %s: %w", f.Name, err)
		}

		if IsDirName(f.Name) {
			addDir(outPath)
			continue
		}

		if _, ok := seenFiles[outPath]; ok {
			continue
		}
		seenFiles[outPath] = struct{}{}

		if parent := filepath.Dir(outPath); parent != root {
			addDir(parent)
		}

		items = append(items, extractWorkItem{file: f, outPath: outPath})
	}

	return dirs, items, nil
}

// extractEntry writes one entry payload to its output path.
func extractEntry(task extractWorkItem) (int64, error) {
	rc, err := task.file.Open()
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", task.file.Name, err)
	}
	defer func() { _ = rc.Close() }()

	out, err := os.OpenFile(task.outPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", task.outPath, err)
	}

	written, copyErr := io.CopyBuffer(out, rc, make([]byte, extractCopyBufferSize))
	closeErr := out.Close()

	if copyErr != nil {
		return written, fmt.Errorf("write %s: %w", task.file.Name, copyErr)
	}

	if closeErr != nil {
		return written, fmt.Errorf("close %s: %w", task.outPath, closeErr)
	}

	return written, nil
}
