// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/jarshade

package jarshade

import (
	"errors"
	"os"
	"time"

	"github.com/klauspost/compress/zip"
)

// EntryInfo describes one archive entry from the central directory.
type EntryInfo struct {
	// Modified is entry modification time.
	Modified time.Time `json:"modified,omitzero" yaml:"modified,omitzero"`
	// Name is slash-separated entry path; directories end with "/".
	Name string `json:"name" yaml:"name"`
	// Size is uncompressed size in bytes.
	Size uint64 `json:"size" yaml:"size"`
	// CompressedSize is stored payload size in bytes.
	CompressedSize uint64 `json:"compressed_size" yaml:"compressed_size"`
	// CRC32 is payload checksum.
	CRC32 uint32 `json:"crc32" yaml:"crc32"`
	// Method is zip compression method.
	Method uint16 `json:"method" yaml:"method"`
}

// IsDir reports whether entry is a directory marker.
func (e EntryInfo) IsDir() bool {
	return IsDirName(e.Name)
}

// ListEntries opens an archive and returns entry metadata without payload reads.
// Entries are returned in central directory order.
func ListEntries(path string) ([]EntryInfo, error) {
	zr, err := openZip(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = zr.Close() }()

	return entryInfos(zr.File), nil
}

// entryInfos converts zip central directory records to EntryInfo.
func entryInfos(files []*zip.File) []EntryInfo {
	out := make([]EntryInfo, 0, len(files))
	for _, f := range files {
		out = append(out, EntryInfo{
			Name:           f.Name,
			Modified:       f.Modified,
			Size:           f.UncompressedSize64,
			CompressedSize: f.CompressedSize64,
			CRC32:          f.CRC32,
			Method:         f.Method,
		})
	}

	return out
}

// openZip opens archive at path and maps failures to ErrInvalidArchive.
func openZip(path string) (*zip.ReadCloser, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, invalidArchiveError(path, err)
	}

	if fi.IsDir() {
		return nil, invalidArchiveError(path, errors.New("is a directory"))
	}

	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, invalidArchiveError(path, err)
	}

	return zr, nil
}
