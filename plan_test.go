// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/jarshade

package jarshade

import (
	"errors"
	"testing"
)

func TestNewPlanValidation(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		inputs []Input
		opts   MergeOptions
		want   error
	}{
		{name: "empty", want: ErrEmptyInputs},
		{name: "empty path", inputs: []Input{{Kind: InputArchive}}, want: ErrInvalidInput},
		{name: "unknown kind", inputs: []Input{{Path: "a.jar"}}, want: ErrInvalidInput},
		{name: "name on archive", inputs: []Input{{Kind: InputArchive, Path: "a.jar", Name: "x"}}, want: ErrInvalidInput},
		{name: "bad file name", inputs: []Input{{Kind: InputFile, Path: "a.txt", Name: "/"}}, want: ErrInvalidEntryPath},
		{
			name:   "excluded file",
			inputs: []Input{{Kind: InputFile, Path: "build/MANIFEST.MF", Name: "META-INF/MANIFEST.MF"}},
			opts:   MergeOptions{ExcludeGlobs: DefaultExcludes()},
			want:   ErrExcludedFileInput,
		},
		{
			name:   "bad policy",
			inputs: []Input{{Kind: InputArchive, Path: "a.jar"}},
			opts:   MergeOptions{Duplicates: "ignore"},
			want:   ErrInvalidInput,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if _, err := NewPlan(tc.inputs, tc.opts); !errors.Is(err, tc.want) {
				t.Fatalf("NewPlan err=%v, want %v", err, tc.want)
			}
		})
	}
}

func TestPlanDefaultsAndInputs(t *testing.T) {
	t.Parallel()

	plan, err := NewBuilder(MergeOptions{}).
		AddFile("dist/LICENSE.txt", "").
		AddDirectory("classes", WithExcludes(`.*\.tmp`)).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	opts := plan.Options()
	if opts.Duplicates != DuplicateWarn || opts.Logger == nil {
		t.Fatalf("defaults not applied: %+v", opts)
	}
	if opts.Writer.CompressionLevel != DefaultCompressionLevel || opts.Writer.BufferSize != DefaultWriteBuffer {
		t.Fatalf("writer defaults not applied: %+v", opts.Writer)
	}

	inputs := plan.Inputs()
	if len(inputs) != 2 {
		t.Fatalf("inputs=%d, want 2", len(inputs))
	}
	if inputs[0].Name != "LICENSE.txt" {
		t.Fatalf("file entry name=%q, want LICENSE.txt", inputs[0].Name)
	}
	if inputs[1].Kind != InputDirectory || len(inputs[1].Excludes) != 1 {
		t.Fatalf("inputs[1]=%+v", inputs[1])
	}

	inputs[1].Excludes[0] = "changed"
	if plan.Inputs()[1].Excludes[0] == "changed" {
		t.Fatal("Inputs exposes plan state")
	}
}

func TestPlanOptionsDetachedFromCaller(t *testing.T) {
	t.Parallel()

	excludes := make([]string, 0, 4)
	excludes = append(excludes, `a\.txt`)

	b := NewBuilder(MergeOptions{Excludes: excludes}).AddDirectory("classes")
	plan := mustPlan(t, b)

	excludes[0] = "changed"
	b.Exclude(`b\.txt`)

	opts := plan.Options()
	if len(opts.Excludes) != 1 || opts.Excludes[0] != `a\.txt` {
		t.Fatalf("plan excludes=%q, want [a\\.txt]", opts.Excludes)
	}

	opts.Excludes[0] = "mutated"
	if plan.Options().Excludes[0] != `a\.txt` {
		t.Fatal("Options exposes plan state")
	}
}
