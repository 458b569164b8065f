// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/jarshade

package shrink

import (
	"errors"
	"fmt"
)

// Sentinel errors for shrinker operations.
var (
	// ErrToolFailed means the shrinker process exited with non-zero status.
	ErrToolFailed = errors.New("shrinker failed")
	// ErrInvalidCommand means a command misses required arguments.
	ErrInvalidCommand = errors.New("invalid shrinker command")
	// ErrDigestMismatch means downloaded content does not match expected digest.
	ErrDigestMismatch = errors.New("digest mismatch")
	// ErrDownloadFailed means the shrinker jar could not be fetched.
	ErrDownloadFailed = errors.New("shrinker download failed")
)

// ToolError carries exit status and captured diagnostics of a failed run.
type ToolError struct {
	// Output is combined stdout and stderr of the process.
	Output string `json:"output,omitempty" yaml:"output,omitempty"`
	// ExitCode is process exit code.
	ExitCode int `json:"exit_code" yaml:"exit_code"`
}

// Error returns failure text with exit code.
func (e *ToolError) Error() string {
	return fmt.Sprintf("%v: exit code %d", ErrToolFailed, e.ExitCode)
}

// Unwrap returns ErrToolFailed.
func (e *ToolError) Unwrap() error {
	return ErrToolFailed
}
