// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/jarshade

package main

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs root command with args and returns captured stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := newRootCommand(newApp(&stdout, &stderr))
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// emptyConfig writes empty config file so tests do not pick up a working-directory config.
func emptyConfig(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "jarshade.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0o600))
	return path
}

func writeJar(t *testing.T, path string, entries map[string][]byte) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, f.Close()) }()

	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	zw := zip.NewWriter(f)
	for _, name := range names {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(entries[name])
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
}

func readJar(t *testing.T, path string) map[string][]byte {
	t.Helper()

	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer func() { _ = zr.Close() }()

	out := make(map[string][]byte, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		require.NoError(t, err)
		out[f.Name] = data
	}

	return out
}

// classBytes returns minimal class file declaring name with access flags.
func classBytes(name string, flags uint16) []byte {
	b := []byte{0xCA, 0xFE, 0xBA, 0xBE, 0, 0, 0, 52}
	b = binary.BigEndian.AppendUint16(b, 3)
	b = append(b, 1)
	b = binary.BigEndian.AppendUint16(b, uint16(len(name)))
	b = append(b, name...)
	b = append(b, 7, 0, 1)
	b = binary.BigEndian.AppendUint16(b, flags)
	b = binary.BigEndian.AppendUint16(b, 2)
	return append(b, make([]byte, 10)...)
}

func TestVersionString(t *testing.T) {
	origVersion, origCommit, origBuildDate := Version, Commit, BuildDate
	t.Cleanup(func() {
		Version, Commit, BuildDate = origVersion, origCommit, origBuildDate
	})

	assert.Equal(t, "dev (built from source)", versionString())

	Version, Commit, BuildDate = "v1.2.3", "abc1234", "2026-01-01T00:00:00Z"
	assert.Equal(t, "v1.2.3 (commit: abc1234, built: 2026-01-01T00:00:00Z)", versionString())
}

func TestUnknownLogFormat(t *testing.T) {
	t.Parallel()

	_, _, err := execute(t, "--log-format", "xml", "list", "nope.jar")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown log format")
}

func TestParseAccessMask(t *testing.T) {
	t.Parallel()

	mask, err := parseAccessMask([]string{"public", " Final "})
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0011), mask)

	_, err = parseAccessMask([]string{"private"})
	require.Error(t, err)
}

func TestExitError(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "exit status 2", (&ExitError{Code: 2}).Error())

	inner := io.ErrUnexpectedEOF
	err := &ExitError{Code: 1, Err: inner}
	assert.Equal(t, inner.Error(), err.Error())
	assert.ErrorIs(t, err, inner)
}
