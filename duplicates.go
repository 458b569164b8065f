// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/jarshade

package jarshade

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sort"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zip"
	"golang.org/x/sync/errgroup"
)

// DuplicateOptions configures duplicate scans.
type DuplicateOptions struct {
	// Filter limits scan to names for which it returns true; nil keeps all names.
	Filter func(name string) bool `json:"-" yaml:"-"`
	// MaxWorkers bounds concurrently scanned archives (zero means GOMAXPROCS).
	MaxWorkers int `json:"max_workers,omitempty" yaml:"max_workers,omitempty"`
}

// DuplicateReport describes one entry name present in more than one archive.
type DuplicateReport struct {
	// Name is duplicated entry name.
	Name string `json:"name" yaml:"name"`
	// Archives lists containing archives in input order.
	Archives []string `json:"archives" yaml:"archives"`
	// Identical reports whether every copy has the same content.
	Identical bool `json:"identical" yaml:"identical"`
}

// archiveNames is the scan result of one archive.
type archiveNames struct {
	names  []string
	hashes map[string]uint64
}

// FindDuplicates maps every non-directory entry name found in more than one
// archive to the archives containing it, in input order. Payloads are not read.
func FindDuplicates(ctx context.Context, archives []string, opts DuplicateOptions) (map[string][]string, error) {
	scans, err := scanArchives(ctx, archives, opts, false)
	if err != nil {
		return nil, err
	}

	owners := collectOwners(archives, scans)
	out := make(map[string][]string)
	for name, paths := range owners {
		if len(paths) > 1 {
			out[name] = paths
		}
	}

	return out, nil
}

// ClassifyDuplicates reports duplicated names sorted by name and marks copies
// with equal content (xxhash of uncompressed payload) as identical.
func ClassifyDuplicates(ctx context.Context, archives []string, opts DuplicateOptions) ([]DuplicateReport, error) {
	scans, err := scanArchives(ctx, archives, opts, true)
	if err != nil {
		return nil, err
	}

	owners := collectOwners(archives, scans)
	reports := make([]DuplicateReport, 0, len(owners))
	for name, paths := range owners {
		if len(paths) < 2 {
			continue
		}

		reports = append(reports, DuplicateReport{
			Name:      name,
			Archives:  paths,
			Identical: identicalCopies(name, scans),
		})
	}

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].Name < reports[j].Name
	})

	return reports, nil
}

// collectOwners groups names by containing archives preserving input order.
func collectOwners(archives []string, scans []archiveNames) map[string][]string {
	owners := make(map[string][]string)
	for i := range scans {
		for _, name := range scans[i].names {
			owners[name] = append(owners[name], archives[i])
		}
	}

	return owners
}

// identicalCopies compares fingerprints of name across owning archives.
func identicalCopies(name string, scans []archiveNames) bool {
	var (
		first uint64
		seen  bool
	)

	for i := range scans {
		sum, ok := scans[i].hashes[name]
		if !ok {
			continue
		}

		if !seen {
			first, seen = sum, true
			continue
		}

		if sum != first {
			return false
		}
	}

	return true
}

// scanArchives lists archives concurrently; result order matches input order.
func scanArchives(ctx context.Context, archives []string, opts DuplicateOptions, fingerprint bool) ([]archiveNames, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	workers := opts.MaxWorkers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]archiveNames, len(archives))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	for i, path := range archives {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			scan, err := scanArchive(ctx, path, opts.Filter, fingerprint)
			if err != nil {
				return err
			}

			results[i] = scan
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// scanArchive lists non-directory names of one archive, once per name.
func scanArchive(ctx context.Context, path string, filter func(string) bool, fingerprint bool) (archiveNames, error) {
	zr, err := openZip(path)
	if err != nil {
		return archiveNames{}, err
	}
	defer func() { _ = zr.Close() }()

	out := archiveNames{names: make([]string, 0, len(zr.File))}
	if fingerprint {
		out.hashes = make(map[string]uint64, len(zr.File))
	}

	seen := make(map[string]struct{}, len(zr.File))
	for _, f := range zr.File {
		if IsDirName(f.Name) {
			continue
		}

		if filter != nil && !filter(f.Name) {
			continue
		}

		if _, ok := seen[f.Name]; ok {
			continue
		}
		seen[f.Name] = struct{}{}
		out.names = append(out.names, f.Name)

		if !fingerprint {
			continue
		}

		if err := ctx.Err(); err != nil {
			return archiveNames{}, err
		}

		sum, err := fingerprintFile(f)
		if err != nil {
			return archiveNames{}, fmt.Errorf("fingerprint %s in %s: %w", f.Name, path, err)
		}
		out.hashes[f.Name] = sum
	}

	return out, nil
}

// fingerprintFile hashes uncompressed payload of one zip entry.
func fingerprintFile(f *zip.File) (uint64, error) {
	rc, err := f.Open()
	if err != nil {
		return 0, err
	}
	defer func() { _ = rc.Close() }()

	h := xxhash.New()
	if _, err := io.Copy(h, rc); err != nil {
		return 0, err
	}

	return h.Sum64(), nil
}
