// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/jarshade

package jarshade

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/klauspost/compress/zip"
)

// Source is a lazy, non-restartable sequence of entries from one merge input.
// Next returns io.EOF after the last entry. After Close, Next and Entry.Open
// fail with ErrIOState.
type Source interface {
	// Next returns next entry or io.EOF.
	Next() (*Entry, error)
	// Path returns input path on disk.
	Path() string
	// Close releases underlying handles.
	Close() error
}

// OpenSource opens merge input for reading according to its kind.
func OpenSource(in Input) (Source, error) {
	switch in.Kind {
	case InputArchive:
		return openArchiveSource(in.Path)
	case InputDirectory:
		return openDirSource(in.Path)
	case InputFile:
		return openFileSource(in.Path, in.Name)
	default:
		return nil, fmt.Errorf("%w: unknown kind %d for %s", ErrInvalidInput, in.Kind, in.Path)
	}
}

// archiveSource iterates entries of a zip archive in central directory order.
type archiveSource struct {
	rc    *zip.ReadCloser
	state *sourceState
	path  string
	next  int
}

// openArchiveSource opens zip/jar archive by path.
func openArchiveSource(path string) (*archiveSource, error) {
	rc, err := openZip(path)
	if err != nil {
		return nil, err
	}

	return &archiveSource{rc: rc, path: path, state: &sourceState{}}, nil
}

// Next returns next archive entry.
func (s *archiveSource) Next() (*Entry, error) {
	if s.state.isClosed() {
		return nil, fmt.Errorf("%w: read %s", ErrIOState, s.path)
	}

	if s.next >= len(s.rc.File) {
		return nil, io.EOF
	}

	f := s.rc.File[s.next]
	s.next++

	return &Entry{
		Name:     f.Name,
		Modified: f.Modified,
		Comment:  f.Comment,
		Extra:    f.Extra,
		Size:     int64(f.UncompressedSize64), //nolint:gosec // zip sizes fit int64 in practice
		Mode:     f.Mode(),
		CRC32:    f.CRC32,
		Method:   f.Method,
		Source:   s.path,
		file:     f,
		state:    s.state,
	}, nil
}

// Path returns archive path.
func (s *archiveSource) Path() string {
	return s.path
}

// Close closes archive file.
func (s *archiveSource) Close() error {
	if !s.state.markClosed() {
		return nil
	}

	return s.rc.Close()
}

// dirItem stores one walked filesystem item with its entry name.
type dirItem struct {
	info    fs.FileInfo
	fsPath  string
	relPath string
}

// dirSource iterates directory tree items sorted by relative path.
type dirSource struct {
	state *sourceState
	root  string
	items []dirItem
	next  int
}

// openDirSource walks directory tree once and sorts items for deterministic output.
// Symlinks, pipes, sockets and devices are skipped.
func openDirSource(root string) (*dirSource, error) {
	fi, err := os.Stat(root)
	if err != nil {
		return nil, invalidArchiveError(root, err)
	}
	if !fi.IsDir() {
		return nil, invalidArchiveError(root, errors.New("not a directory"))
	}

	items := make([]dirItem, 0, 64)
	walkErr := filepath.WalkDir(root, func(fsPath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if fsPath == root {
			return nil
		}

		if !d.IsDir() && !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, fsPath)
		if err != nil {
			return err
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		items = append(items, dirItem{
			fsPath:  fsPath,
			relPath: filepath.ToSlash(rel),
			info:    info,
		})

		return nil
	})
	if walkErr != nil {
		return nil, invalidArchiveError(root, walkErr)
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].relPath < items[j].relPath
	})

	return &dirSource{root: root, items: items, state: &sourceState{}}, nil
}

// Next returns next directory item as entry.
func (s *dirSource) Next() (*Entry, error) {
	if s.state.isClosed() {
		return nil, fmt.Errorf("%w: read %s", ErrIOState, s.root)
	}

	if s.next >= len(s.items) {
		return nil, io.EOF
	}

	item := s.items[s.next]
	s.next++

	name := item.relPath
	size := item.info.Size()
	if item.info.IsDir() {
		name = dirEntryName(name)
		size = 0
	}

	return &Entry{
		Name:     name,
		Modified: item.info.ModTime(),
		Size:     size,
		Mode:     item.info.Mode(),
		Source:   s.root,
		fsPath:   item.fsPath,
		state:    s.state,
	}, nil
}

// Path returns directory root path.
func (s *dirSource) Path() string {
	return s.root
}

// Close releases directory source.
func (s *dirSource) Close() error {
	s.state.markClosed()
	return nil
}

// fileSource yields one loose file mapped to explicit entry name.
type fileSource struct {
	info  fs.FileInfo
	state *sourceState
	path  string
	name  string
	done  bool
}

// openFileSource validates loose file input.
func openFileSource(path string, name string) (*fileSource, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, invalidArchiveError(path, err)
	}
	if !fi.Mode().IsRegular() {
		return nil, invalidArchiveError(path, errors.New("not a regular file"))
	}

	if name == "" {
		name = filepath.Base(path)
	}

	entryName, err := NormalizeEntryName(name)
	if err != nil {
		return nil, err
	}
	if IsDirName(entryName) {
		return nil, fmt.Errorf("%w: file entry name %q ends with separator", ErrInvalidEntryPath, name)
	}

	return &fileSource{path: path, name: entryName, info: fi, state: &sourceState{}}, nil
}

// Next returns the single file entry once.
func (s *fileSource) Next() (*Entry, error) {
	if s.state.isClosed() {
		return nil, fmt.Errorf("%w: read %s", ErrIOState, s.path)
	}

	if s.done {
		return nil, io.EOF
	}
	s.done = true

	return &Entry{
		Name:     s.name,
		Modified: s.info.ModTime(),
		Size:     s.info.Size(),
		Mode:     s.info.Mode(),
		Source:   s.path,
		fsPath:   s.path,
		state:    s.state,
	}, nil
}

// Path returns loose file path.
func (s *fileSource) Path() string {
	return s.path
}

// Close releases file source.
func (s *fileSource) Close() error {
	s.state.markClosed()
	return nil
}
