// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/jarshade

package jarshade

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"time"

	"github.com/klauspost/compress/zip"
)

// copyBufferSize is per-writer temporary buffer used by streaming payload copy.
const copyBufferSize = 64 * 1024

// EntryHeader describes metadata of one entry written by Writer.
type EntryHeader struct {
	// Modified is entry modification time (overridden by WriterOptions.ModTime).
	Modified time.Time `json:"modified,omitzero" yaml:"modified,omitzero"`
	// Name is final entry name; trailing "/" marks a directory.
	Name string `json:"name" yaml:"name"`
	// Comment is per-entry zip comment.
	Comment string `json:"comment,omitempty" yaml:"comment,omitempty"`
	// Extra is raw zip extra field copied to output.
	Extra []byte `json:"-" yaml:"-"`
	// Mode is optional file mode stored in external attributes.
	Mode fs.FileMode `json:"mode,omitempty" yaml:"mode,omitempty"`
	// Method is zip compression method.
	Method uint16 `json:"method" yaml:"method"`
}

// nameRegistry stores entry names already written in one output archive.
type nameRegistry struct {
	names map[string]struct{}
}

// newNameRegistry creates empty registry.
func newNameRegistry() *nameRegistry {
	return &nameRegistry{names: make(map[string]struct{}, 256)}
}

// has reports whether name was registered.
func (r *nameRegistry) has(name string) bool {
	_, ok := r.names[name]
	return ok
}

// add registers name.
func (r *nameRegistry) add(name string) {
	r.names[name] = struct{}{}
}

// Writer appends entries to an output zip archive in call order.
// Writing the same directory twice is a no-op; any write after Close fails with ErrIOState.
type Writer struct {
	zw      *zip.Writer
	bw      *bufio.Writer
	names   *nameRegistry
	store   *globMatcher
	copyBuf []byte
	opts    WriterOptions
	closed  bool
}

// NewWriter creates archive writer on top of out.
func NewWriter(out io.Writer, opts WriterOptions) (*Writer, error) {
	if out == nil {
		return nil, ErrNilWriter
	}

	opts.applyDefaults()

	store, err := newGlobMatcher(opts.Store, opts.StoreMatcherOptions)
	if err != nil {
		return nil, fmt.Errorf("compile store rules: %w", err)
	}

	bw := bufio.NewWriterSize(out, opts.BufferSize)
	zw := zip.NewWriter(bw)
	registerDeflate(zw, opts.CompressionLevel)

	if opts.Comment != "" {
		if err := zw.SetComment(opts.Comment); err != nil {
			return nil, fmt.Errorf("set archive comment: %w", err)
		}
	}

	return &Writer{
		zw:      zw,
		bw:      bw,
		names:   newNameRegistry(),
		store:   store,
		opts:    opts,
		copyBuf: make([]byte, copyBufferSize),
	}, nil
}

// Has reports whether final name was already written.
func (w *Writer) Has(name string) bool {
	return w.names.has(name)
}

// WriteDir writes directory entry. It reports false when directory already exists.
func (w *Writer) WriteDir(name string, modified time.Time) (bool, error) {
	if w.closed {
		return false, fmt.Errorf("%w: write directory %s", ErrIOState, name)
	}

	name = dirEntryName(name)
	if w.names.has(name) {
		return false, nil
	}

	if _, err := w.zw.CreateHeader(w.fileHeader(EntryHeader{
		Name:     name,
		Modified: modified,
		Method:   zip.Store,
	})); err != nil {
		return false, fmt.Errorf("write directory %s: %w", name, err)
	}

	w.names.add(name)
	return true, nil
}

// WriteEntry writes one entry with payload from src and returns uncompressed bytes written.
// Directory headers ignore src.
func (w *Writer) WriteEntry(hdr EntryHeader, src io.Reader) (int64, error) {
	if w.closed {
		return 0, fmt.Errorf("%w: write entry %s", ErrIOState, hdr.Name)
	}

	if IsDirName(hdr.Name) {
		if w.names.has(hdr.Name) {
			return 0, nil
		}
	} else if w.names.has(hdr.Name) {
		return 0, fmt.Errorf("%w: %s", ErrDuplicateEntry, hdr.Name)
	}

	dst, err := w.zw.CreateHeader(w.fileHeader(hdr))
	if err != nil {
		return 0, fmt.Errorf("create entry %s: %w", hdr.Name, err)
	}

	w.names.add(hdr.Name)

	if IsDirName(hdr.Name) || src == nil {
		return 0, nil
	}

	written, err := io.CopyBuffer(dst, src, w.copyBuf)
	if err != nil {
		return written, fmt.Errorf("write entry %s: %w", hdr.Name, err)
	}

	return written, nil
}

// CopyEntry writes source entry under name. Compressed payload is copied raw when
// source method and timestamp can be preserved; otherwise payload is recompressed.
// It reports whether raw copy was used.
func (w *Writer) CopyEntry(e *Entry, name string) (bool, int64, error) {
	if w.closed {
		return false, 0, fmt.Errorf("%w: copy entry %s", ErrIOState, name)
	}

	if e.state.isClosed() {
		return false, 0, fmt.Errorf("%w: copy %s from %s", ErrIOState, e.Name, e.Source)
	}

	method := selectMethod(w.store, name, e.Method, false)
	if e.rawCopyable() && method == e.Method && w.opts.ModTime.IsZero() && !IsDirName(name) {
		written, err := w.copyRaw(e, name)
		return true, written, err
	}

	src, err := e.Open()
	if err != nil {
		return false, 0, err
	}
	defer func() { _ = src.Close() }()

	written, err := w.WriteEntry(EntryHeader{
		Name:     name,
		Modified: e.Modified,
		Comment:  e.Comment,
		Extra:    e.Extra,
		Mode:     e.Mode,
		Method:   method,
	}, src)

	return false, written, err
}

// copyRaw copies compressed payload of archive entry without recompression.
func (w *Writer) copyRaw(e *Entry, name string) (int64, error) {
	if w.names.has(name) {
		return 0, fmt.Errorf("%w: %s", ErrDuplicateEntry, name)
	}

	fh := e.file.FileHeader
	fh.Name = name

	raw, err := e.file.OpenRaw()
	if err != nil {
		return 0, fmt.Errorf("open raw entry %s: %w", e.Name, err)
	}

	dst, err := w.zw.CreateRaw(&fh)
	if err != nil {
		return 0, fmt.Errorf("create raw entry %s: %w", name, err)
	}

	w.names.add(name)

	if _, err := io.CopyBuffer(dst, raw, w.copyBuf); err != nil {
		return 0, fmt.Errorf("copy raw entry %s: %w", name, err)
	}

	return e.Size, nil
}

// fileHeader builds zip header from entry header applying writer policies.
func (w *Writer) fileHeader(hdr EntryHeader) *zip.FileHeader {
	modified := hdr.Modified
	if !w.opts.ModTime.IsZero() {
		modified = w.opts.ModTime
	}

	fh := &zip.FileHeader{
		Name:     hdr.Name,
		Comment:  hdr.Comment,
		Extra:    stripWriterExtra(hdr.Extra),
		Method:   hdr.Method,
		Modified: modified.UTC(),
	}

	if IsDirName(hdr.Name) {
		fh.Method = zip.Store
	}

	if hdr.Mode != 0 {
		fh.SetMode(hdr.Mode)
	}

	return fh
}

// Close finalizes central directory and flushes buffered output.
// Close does not close the underlying writer.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if err := w.zw.Close(); err != nil {
		return fmt.Errorf("finalize archive: %w", err)
	}

	if err := w.bw.Flush(); err != nil {
		return fmt.Errorf("flush archive: %w", err)
	}

	return nil
}
