// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/jarshade

package jarshade

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/klauspost/compress/zip"
)

// Entry describes one item read from a merge input. Payload is read lazily via Open.
type Entry struct {
	// Modified is entry modification time.
	Modified time.Time `json:"modified,omitzero" yaml:"modified,omitzero"`
	// Name is slash-separated entry path; directories end with "/".
	Name string `json:"name" yaml:"name"`
	// Comment is per-entry zip comment.
	Comment string `json:"comment,omitempty" yaml:"comment,omitempty"`
	// Source is path of input the entry was read from.
	Source string `json:"source" yaml:"source"`
	// Extra is raw zip extra field.
	Extra []byte `json:"-" yaml:"-"`
	// Size is uncompressed size in bytes.
	Size int64 `json:"size" yaml:"size"`
	// Mode is file mode as reported by the source.
	Mode fs.FileMode `json:"mode,omitempty" yaml:"mode,omitempty"`
	// CRC32 is payload checksum for archive entries; zero for filesystem entries.
	CRC32 uint32 `json:"crc32,omitempty" yaml:"crc32,omitempty"`
	// Method is zip compression method for archive entries.
	Method uint16 `json:"method,omitempty" yaml:"method,omitempty"`

	// file is set for archive entries.
	file *zip.File
	// fsPath is set for directory and loose file entries.
	fsPath string
	// state is shared with the owning source.
	state *sourceState
}

// sourceState tracks release of the source that produced entries.
type sourceState struct {
	mu     sync.Mutex
	closed bool
}

// isClosed reports whether owning source was released.
func (s *sourceState) isClosed() bool {
	if s == nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// markClosed marks source as released and reports whether it was open.
func (s *sourceState) markClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}

	s.closed = true
	return true
}

// IsDir reports whether entry is a directory marker.
func (e *Entry) IsDir() bool {
	return IsDirName(e.Name)
}

// Open opens entry payload for reading. Directory entries yield empty content.
func (e *Entry) Open() (io.ReadCloser, error) {
	if e.state.isClosed() {
		return nil, fmt.Errorf("%w: open %s from %s", ErrIOState, e.Name, e.Source)
	}

	if e.IsDir() {
		return io.NopCloser(bytes.NewReader(nil)), nil
	}

	if e.file != nil {
		rc, err := e.file.Open()
		if err != nil {
			return nil, fmt.Errorf("open entry %s from %s: %w", e.Name, e.Source, err)
		}

		return rc, nil
	}

	f, err := os.Open(e.fsPath)
	if err != nil {
		return nil, fmt.Errorf("open entry %s: %w", e.Name, err)
	}

	return f, nil
}

// ReadAll reads full entry payload.
func (e *Entry) ReadAll() ([]byte, error) {
	rc, err := e.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read entry %s: %w", e.Name, err)
	}

	return data, nil
}

// rawCopyable reports whether compressed payload can be copied as-is.
func (e *Entry) rawCopyable() bool {
	return e.file != nil && !e.IsDir() && (e.Method == zip.Store || e.Method == zip.Deflate)
}

// BytesContent returns Disposition.Open-compatible callback serving data.
func BytesContent(data []byte) func() (io.ReadCloser, error) {
	return func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}
}
