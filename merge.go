// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/jarshade

package jarshade

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// countingWriter counts bytes passed to the underlying writer.
type countingWriter struct {
	w io.Writer
	n int64
}

// Write forwards p and counts written bytes.
func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// mergeRun holds state owned by one merge invocation.
type mergeRun struct {
	plan   *Plan
	w      *Writer
	logger *slog.Logger
	first  map[string]string
	result *MergeResult
}

// Merge writes one archive to out from plan inputs, strictly in declared order.
// Each source is released before the next one is opened. Any fatal error aborts
// the merge; out may contain partial bytes in that case (use MergeFile to avoid
// publishing them).
func Merge(ctx context.Context, out io.Writer, plan *Plan) (*MergeResult, error) {
	startedAt := time.Now()

	if plan == nil {
		return nil, ErrNilPlan
	}

	if out == nil {
		return nil, ErrNilWriter
	}

	if ctx == nil {
		ctx = context.Background()
	}

	counter := &countingWriter{w: out}
	w, err := NewWriter(counter, plan.opts.Writer)
	if err != nil {
		return nil, err
	}

	run := &mergeRun{
		plan:   plan,
		w:      w,
		logger: plan.opts.Logger,
		first:  make(map[string]string, 256),
		result: &MergeResult{},
	}

	for i := range plan.inputs {
		if err := run.mergeInput(ctx, &plan.inputs[i]); err != nil {
			return nil, err
		}
	}

	if err := w.Close(); err != nil {
		return nil, err
	}

	run.result.Size = counter.n
	run.result.Duration = time.Since(startedAt)

	run.logger.Debug("merge finished",
		"written", run.result.WrittenEntries,
		"excluded", run.result.ExcludedEntries,
		"skipped", run.result.SkippedEntries,
		"duplicates", len(run.result.Duplicates),
		"size", run.result.Size,
	)

	return run.result, nil
}

// MergeFile writes merged archive to outPath. Output is written to a temporary
// file in the same directory and renamed into place only on success.
func MergeFile(ctx context.Context, outPath string, plan *Plan) (*MergeResult, error) {
	if plan == nil {
		return nil, ErrNilPlan
	}

	dir := filepath.Dir(outPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(outPath)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("create temp archive: %w", err)
	}
	tmpPath := tmp.Name()

	committed := false
	defer func() {
		if tmp != nil {
			_ = tmp.Close()
		}
		if !committed {
			_ = os.Remove(tmpPath)
		}
	}()

	res, err := Merge(ctx, tmp, plan)
	if err != nil {
		return nil, err
	}

	if err := tmp.Sync(); err != nil {
		return nil, fmt.Errorf("sync temp archive: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close temp archive: %w", err)
	}
	tmp = nil

	if err := os.Chmod(tmpPath, 0o644); err != nil { //nolint:gosec // archives are build artifacts
		return nil, fmt.Errorf("chmod temp archive: %w", err)
	}

	sum, err := DigestFile(tmpPath)
	if err != nil {
		return nil, err
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		return nil, fmt.Errorf("move archive into place: %w", err)
	}
	committed = true

	res.Digest = sum
	return res, nil
}

// mergeInput processes one input; the source is closed on all paths.
func (m *mergeRun) mergeInput(ctx context.Context, in *compiledInput) (err error) {
	src, err := OpenSource(in.input)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := src.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", src.Path(), closeErr)
		}
	}()

	m.logger.Debug("merging input", "kind", in.input.Kind.String(), "path", src.Path())

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		entry, err := src.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if err := m.mergeEntry(in, entry); err != nil {
			return err
		}
	}
}

// mergeEntry evaluates policy for one entry and writes it when accepted.
func (m *mergeRun) mergeEntry(in *compiledInput, entry *Entry) error {
	dec, err := evaluateEntry(m.plan.global, in, entry)
	if err != nil {
		return err
	}

	if dec.excluded {
		m.result.ExcludedEntries++
		return nil
	}

	disp := dec.disposition
	if disp.Skip {
		m.result.SkippedEntries++
		return nil
	}

	if m.w.Has(disp.Name) {
		if IsDirName(disp.Name) {
			return nil
		}

		return m.duplicate(disp.Name, entry.Source)
	}

	progress := EntryProgress{Name: disp.Name, Source: entry.Source}

	switch {
	case IsDirName(disp.Name):
		if _, err := m.w.WriteEntry(EntryHeader{
			Name:     disp.Name,
			Modified: entry.Modified,
			Comment:  entry.Comment,
			Extra:    entry.Extra,
			Mode:     entry.Mode,
		}, nil); err != nil {
			return err
		}
		m.result.DirectoryEntries++
	case disp.Open != nil:
		written, err := m.writeReplaced(entry, disp)
		if err != nil {
			return err
		}
		progress.Size = written
		progress.Rewritten = true
		progress.Method = selectMethod(m.w.store, disp.Name, entry.Method, true)
		m.result.RewrittenEntries++
	default:
		raw, written, err := m.w.CopyEntry(entry, disp.Name)
		if err != nil {
			return err
		}
		progress.Size = written
		progress.Raw = raw
		progress.Method = selectMethod(m.w.store, disp.Name, entry.Method, false)
	}

	m.first[disp.Name] = entry.Source
	m.result.WrittenEntries++

	if m.plan.opts.OnEntryDone != nil {
		m.plan.opts.OnEntryDone(progress)
	}

	return nil
}

// writeReplaced writes entry with replacement content from disposition.
func (m *mergeRun) writeReplaced(entry *Entry, disp Disposition) (int64, error) {
	rc, err := disp.Open()
	if err != nil {
		return 0, fmt.Errorf("open replacement for %s: %w", disp.Name, err)
	}
	defer func() { _ = rc.Close() }()

	return m.w.WriteEntry(EntryHeader{
		Name:     disp.Name,
		Modified: entry.Modified,
		Comment:  entry.Comment,
		Extra:    entry.Extra,
		Mode:     entry.Mode,
		Method:   selectMethod(m.w.store, disp.Name, entry.Method, true),
	}, rc)
}

// duplicate records a dropped non-directory duplicate or fails in strict mode.
func (m *mergeRun) duplicate(name string, source string) error {
	dup := &DuplicateEntryError{
		Name:        name,
		Source:      source,
		FirstSource: m.first[name],
	}

	if m.plan.opts.Duplicates == DuplicateFail {
		return dup
	}

	m.logger.Warn("skipping duplicate entry", "name", name, "source", source, "first_source", dup.FirstSource)
	m.result.Duplicates = append(m.result.Duplicates, *dup)

	if m.plan.opts.OnDuplicate != nil {
		m.plan.opts.OnDuplicate(dup)
	}

	return nil
}
