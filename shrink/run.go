// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/jarshade

package shrink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// RunOptions configures shrinker process execution.
type RunOptions struct {
	// Logger receives command line and timing at debug level; nil discards logs.
	Logger *slog.Logger `json:"-" yaml:"-"`
	// Output additionally receives live process output when set.
	Output io.Writer `json:"-" yaml:"-"`
	// Dir is process working directory.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`
	// Env is appended to current process environment.
	Env []string `json:"env,omitempty" yaml:"env,omitempty"`
}

// Result describes one finished shrinker run.
type Result struct {
	// Output is combined stdout and stderr.
	Output string `json:"output,omitempty" yaml:"output,omitempty"`
	// Duration is process wall time.
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Run executes "java -cp <tool jar> <main class> <args...>" and waits for it.
// Output and mapping parent directories are created first. A non-zero exit
// yields *ToolError with captured output; the run is never retried.
func Run(ctx context.Context, cmd Command, opts RunOptions) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	cmd.applyDefaults()

	args, err := cmd.launcherArgs()
	if err != nil {
		return nil, err
	}

	for _, path := range []string{cmd.Output, cmd.MappingOutput} {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("create output dir for %s: %w", path, err)
		}
	}

	var captured bytes.Buffer
	var sink io.Writer = &captured
	if opts.Output != nil {
		sink = io.MultiWriter(&captured, opts.Output)
	}

	proc := exec.CommandContext(ctx, cmd.Java, args...) //nolint:gosec // launcher and args come from caller configuration
	proc.Dir = opts.Dir
	proc.Stdout = sink
	proc.Stderr = sink
	if len(opts.Env) > 0 {
		proc.Env = append(os.Environ(), opts.Env...)
	}

	logger.Debug("running shrinker", "java", cmd.Java, "args", args)

	startedAt := time.Now()
	runErr := proc.Run()
	res := &Result{Output: captured.String(), Duration: time.Since(startedAt)}

	if runErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return res, ctxErr
		}

		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			return res, &ToolError{ExitCode: exitErr.ExitCode(), Output: res.Output}
		}

		return res, fmt.Errorf("start shrinker %s: %w", cmd.Java, runErr)
	}

	logger.Debug("shrinker finished", "output", cmd.Output, "duration", res.Duration)
	return res, nil
}
