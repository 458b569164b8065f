// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/jarshade

package shrink

import (
	"context"
	_ "crypto/sha256" // register SHA256 for go-digest
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/opencontainers/go-digest"
)

// DefaultR8Version is R8 release used when none is configured.
const DefaultR8Version = "8.5.35"

// Download locations.
const (
	// MavenURLTemplate resolves dotted R8 release versions.
	MavenURLTemplate = "https://dl.google.com/android/maven2/com/android/tools/r8/%[1]s/r8-%[1]s.jar"
	// CommitURLTemplate resolves R8 builds by commit SHA.
	CommitURLTemplate = "https://storage.googleapis.com/r8-releases/raw/main/%s/r8.jar"
)

var dottedVersionRe = regexp.MustCompile(`^[0-9]+(\.[0-9]+)+(-[A-Za-z0-9.]+)?$`)

// ResolveURL returns download URL for R8 version. Dotted versions map to
// Google Maven; anything else is treated as a commit SHA.
func ResolveURL(version string) string {
	version = strings.TrimSpace(version)
	if version == "" {
		version = DefaultR8Version
	}

	if dottedVersionRe.MatchString(version) {
		return fmt.Sprintf(MavenURLTemplate, version)
	}

	return fmt.Sprintf(CommitURLTemplate, version)
}

// DefaultJarPath returns cache location of R8 jar for version.
func DefaultJarPath(cacheDir string, version string) string {
	if version == "" {
		version = DefaultR8Version
	}

	return filepath.Join(cacheDir, "r8", version, "r8.jar")
}

// DownloadOptions configures R8 jar download.
type DownloadOptions struct {
	// Client performs HTTP requests; nil uses http.DefaultClient.
	Client *http.Client `json:"-" yaml:"-"`
	// Logger receives download progress; nil discards logs.
	Logger *slog.Logger `json:"-" yaml:"-"`
	// Version is R8 version or commit SHA.
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
	// URL overrides URL resolved from Version.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
	// Dest is target jar path.
	Dest string `json:"dest" yaml:"dest"`
	// Digest is optional expected content digest (e.g. "sha256:...").
	Digest digest.Digest `json:"digest,omitempty" yaml:"digest,omitempty"`
	// Force downloads even if Dest exists.
	Force bool `json:"force,omitempty" yaml:"force,omitempty"`
}

// Download fetches R8 jar into Dest. An existing Dest is kept without network
// access unless Force is set or it does not match Digest. Content is written to a temporary file and moved
// into place only after the optional digest check passes.
func Download(ctx context.Context, opts DownloadOptions) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	if opts.Dest == "" {
		return "", fmt.Errorf("%w: destination is required", ErrDownloadFailed)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if opts.Digest != "" {
		if err := opts.Digest.Validate(); err != nil {
			return "", fmt.Errorf("%w: expected digest: %w", ErrDownloadFailed, err)
		}
	}

	if !opts.Force {
		if fi, err := os.Stat(opts.Dest); err == nil && fi.Mode().IsRegular() {
			ok, err := cachedMatches(opts.Dest, opts.Digest)
			if err != nil {
				return "", err
			}
			if ok {
				logger.Debug("shrinker jar cached", "path", opts.Dest)
				return opts.Dest, nil
			}
			logger.Warn("cached shrinker jar digest mismatch, downloading again", "path", opts.Dest, "digest", opts.Digest)
		}
	}

	url := opts.URL
	if url == "" {
		url = ResolveURL(opts.Version)
	}

	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}

	logger.Info("downloading shrinker", "url", url, "dest", opts.Dest)

	if err := fetch(ctx, client, url, opts.Dest, opts.Digest); err != nil {
		return "", err
	}

	return opts.Dest, nil
}

// cachedMatches reports whether file at path matches want; empty want matches
// any file.
func cachedMatches(path string, want digest.Digest) (bool, error) {
	if want == "" {
		return true, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("%w: open cached %s: %w", ErrDownloadFailed, path, err)
	}
	defer func() { _ = f.Close() }()

	verifier := want.Verifier()
	if _, err := io.Copy(verifier, f); err != nil {
		return false, fmt.Errorf("%w: read cached %s: %w", ErrDownloadFailed, path, err)
	}

	return verifier.Verified(), nil
}

// fetch downloads url to dest through a temporary sibling file.
func fetch(ctx context.Context, client *http.Client, url string, dest string, want digest.Digest) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("%w: creating request: %w", ErrDownloadFailed, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDownloadFailed, url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s: unexpected status %s", ErrDownloadFailed, url, resp.Status)
	}

	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dest)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpPath)
		}
	}()

	algorithm := digest.Canonical
	if want != "" {
		algorithm = want.Algorithm()
	}
	verifier := algorithm.Digester()

	_, copyErr := io.Copy(io.MultiWriter(tmp, verifier.Hash()), resp.Body)
	closeErr := tmp.Close()
	if copyErr != nil {
		return fmt.Errorf("%w: %s: %w", ErrDownloadFailed, url, copyErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close temp file: %w", closeErr)
	}

	if got := verifier.Digest(); want != "" && got != want {
		return fmt.Errorf("%w: %s: got %s, want %s", ErrDigestMismatch, url, got, want)
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("move %s into place: %w", dest, err)
	}
	committed = true

	return nil
}
