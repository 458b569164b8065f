// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/jarshade

package shrink

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// jarServer serves payload and counts requests.
func jarServer(t *testing.T, payload []byte) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/r8.jar" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(payload)
	}))
	t.Cleanup(srv.Close)

	return srv, &hits
}

func TestDownload(t *testing.T) {
	t.Parallel()

	payload := []byte("PK fake r8 jar")
	srv, hits := jarServer(t, payload)
	dest := filepath.Join(t.TempDir(), "cache", "r8.jar")

	got, err := Download(context.Background(), DownloadOptions{
		Client: srv.Client(),
		URL:    srv.URL + "/r8.jar",
		Dest:   dest,
		Digest: digest.FromBytes(payload),
	})
	require.NoError(t, err)
	assert.Equal(t, dest, got)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, payload, data)

	_, err = Download(context.Background(), DownloadOptions{
		Client: srv.Client(),
		URL:    srv.URL + "/r8.jar",
		Dest:   dest,
	})
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load(), "cached jar must not be fetched again")

	_, err = Download(context.Background(), DownloadOptions{
		Client: srv.Client(),
		URL:    srv.URL + "/r8.jar",
		Dest:   dest,
		Force:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestDownloadRefetchesStaleCache(t *testing.T) {
	t.Parallel()

	payload := []byte("PK fresh r8 jar")
	srv, hits := jarServer(t, payload)
	dest := filepath.Join(t.TempDir(), "r8.jar")
	require.NoError(t, os.WriteFile(dest, []byte("stale"), 0o600))

	opts := DownloadOptions{
		Client: srv.Client(),
		URL:    srv.URL + "/r8.jar",
		Dest:   dest,
		Digest: digest.FromBytes(payload),
	}

	_, err := Download(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load(), "stale cached jar must be fetched again")

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, payload, data)

	_, err = Download(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load(), "verified cached jar must be reused")
}

func TestDownloadDigestMismatch(t *testing.T) {
	t.Parallel()

	srv, _ := jarServer(t, []byte("tampered"))
	dir := t.TempDir()
	dest := filepath.Join(dir, "r8.jar")

	_, err := Download(context.Background(), DownloadOptions{
		Client: srv.Client(),
		URL:    srv.URL + "/r8.jar",
		Dest:   dest,
		Digest: digest.FromString("original"),
	})
	require.ErrorIs(t, err, ErrDigestMismatch)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temporary and target files must be removed")
}

func TestDownloadHTTPError(t *testing.T) {
	t.Parallel()

	srv, _ := jarServer(t, nil)
	dest := filepath.Join(t.TempDir(), "r8.jar")

	_, err := Download(context.Background(), DownloadOptions{
		Client: srv.Client(),
		URL:    srv.URL + "/missing.jar",
		Dest:   dest,
	})
	require.ErrorIs(t, err, ErrDownloadFailed)

	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr))
}

func TestDefaultJarPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, filepath.Join("cache", "r8", DefaultR8Version, "r8.jar"), DefaultJarPath("cache", ""))
	assert.Equal(t, filepath.Join("cache", "r8", "abc", "r8.jar"), DefaultJarPath("cache", "abc"))
}
