// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/jarshade

package jarshade

import (
	_ "crypto/sha256" // register SHA256 for go-digest
	"fmt"
	"os"

	"github.com/opencontainers/go-digest"
)

// DigestFile calculates SHA256 digest of file content.
func DigestFile(path string) (digest.Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open for digest: %w", err)
	}
	defer func() { _ = f.Close() }()

	sum, err := digest.SHA256.FromReader(f)
	if err != nil {
		return "", fmt.Errorf("digest %s: %w", path, err)
	}

	return sum, nil
}
