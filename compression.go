// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/jarshade

package jarshade

import (
	"encoding/binary"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
)

// Zip extra field header IDs rewritten by the writer itself.
const (
	extraZip64             = 0x0001
	extraExtendedTimestamp = 0x5455
)

// registerDeflate installs klauspost flate compressor with configured level.
func registerDeflate(zw *zip.Writer, level int) {
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, level)
	})
}

// selectMethod picks output compression method for one entry.
// Directories and store-rule matches are stored; otherwise source method is kept
// when it is Store or Deflate, and new content is deflated.
func selectMethod(store *globMatcher, name string, sourceMethod uint16, rewritten bool) uint16 {
	if IsDirName(name) || store.Match(name) {
		return zip.Store
	}

	if !rewritten && sourceMethod == zip.Store {
		return zip.Store
	}

	return zip.Deflate
}

// stripWriterExtra removes extra blocks the zip writer regenerates on its own
// (zip64 sizes and extended timestamp). Malformed tails are dropped.
func stripWriterExtra(extra []byte) []byte {
	if len(extra) == 0 {
		return nil
	}

	out := make([]byte, 0, len(extra))
	for len(extra) >= 4 {
		tag := binary.LittleEndian.Uint16(extra[0:2])
		size := int(binary.LittleEndian.Uint16(extra[2:4]))
		if 4+size > len(extra) {
			break
		}

		block := extra[:4+size]
		extra = extra[4+size:]

		if tag == extraZip64 || tag == extraExtendedTimestamp {
			continue
		}

		out = append(out, block...)
	}

	if len(out) == 0 {
		return nil
	}

	return out
}
