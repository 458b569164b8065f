// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/jarshade

package jarshade

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
)

// fixtureEntry is one entry written by writeJar.
type fixtureEntry struct {
	name  string
	data  string
	store bool
}

// fixtureTime is a fixed timestamp for fixture entries.
var fixtureTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// writeJar writes zip archive with entries in given order and returns its path.
func writeJar(t *testing.T, dir string, name string, entries ...fixtureEntry) string {
	t.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer func() { _ = f.Close() }()

	zw := zip.NewWriter(f)
	for _, e := range entries {
		method := zip.Deflate
		if e.store || IsDirName(e.name) {
			method = zip.Store
		}

		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     e.name,
			Method:   method,
			Modified: fixtureTime,
		})
		if err != nil {
			t.Fatalf("create entry %s: %v", e.name, err)
		}

		if _, err := io.WriteString(w, e.data); err != nil {
			t.Fatalf("write entry %s: %v", e.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	return path
}

// writeFile writes file under dir creating parents.
func writeFile(t *testing.T, dir string, rel string, data string) string {
	t.Helper()

	path := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}

	return path
}

// readJar returns entry names in archive order and content by name.
func readJar(t *testing.T, path string) ([]string, map[string]string) {
	t.Helper()

	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer func() { _ = zr.Close() }()

	return readZipFiles(t, zr.File)
}

// readJarBytes is readJar for in-memory archives.
func readJarBytes(t *testing.T, data []byte) ([]string, map[string]string) {
	t.Helper()

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}

	return readZipFiles(t, zr.File)
}

// readZipFiles reads names and payloads of zip files.
func readZipFiles(t *testing.T, files []*zip.File) ([]string, map[string]string) {
	t.Helper()

	names := make([]string, 0, len(files))
	content := make(map[string]string, len(files))
	for _, f := range files {
		names = append(names, f.Name)

		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open entry %s: %v", f.Name, err)
		}

		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			t.Fatalf("read entry %s: %v", f.Name, err)
		}

		content[f.Name] = string(data)
	}

	return names, content
}

// buildClass returns minimal class file bytes for internal name with access flags.
// The constant pool also carries a Long to cover two-slot constants.
func buildClass(name string, flags uint16) []byte {
	var buf bytes.Buffer
	put16 := func(v uint16) { _ = binary.Write(&buf, binary.BigEndian, v) }

	_ = binary.Write(&buf, binary.BigEndian, uint32(classMagic))
	put16(0)  // minor
	put16(52) // major

	// #1 Utf8 name, #2 Class #1, #3-#4 Long, #5 Utf8 java/lang/Object, #6 Class #5
	put16(7)
	buf.WriteByte(cpUtf8)
	put16(uint16(len(name)))
	buf.WriteString(name)
	buf.WriteByte(cpClass)
	put16(1)
	buf.WriteByte(cpLong)
	_ = binary.Write(&buf, binary.BigEndian, uint64(42))
	super := "java/lang/Object"
	buf.WriteByte(cpUtf8)
	put16(uint16(len(super)))
	buf.WriteString(super)
	buf.WriteByte(cpClass)
	put16(5)

	put16(flags)
	put16(2) // this_class
	put16(6) // super_class
	put16(0) // interfaces
	put16(0) // fields
	put16(0) // methods
	put16(0) // attributes

	return buf.Bytes()
}

// mustPlan builds plan or fails test.
func mustPlan(t *testing.T, b *Builder) *Plan {
	t.Helper()

	plan, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	return plan
}
