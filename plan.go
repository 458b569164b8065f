// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/jarshade

package jarshade

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/woozymasta/pathrules"
)

// Plan is an immutable, validated merge configuration.
// Exclusion patterns are compiled once when the plan is built.
type Plan struct {
	global *exclusionSet
	inputs []compiledInput
	opts   MergeOptions
}

// compiledInput stores one input with its precompiled exclusion set.
type compiledInput struct {
	excludes *exclusionSet
	input    Input
}

// InputOption configures one input registered through Builder.
type InputOption func(*Input)

// WithEntryFunc sets per-entry callback for the input.
func WithEntryFunc(fn EntryFunc) InputOption {
	return func(in *Input) {
		in.Each = fn
	}
}

// WithExcludes adds regular expression excludes scoped to the input.
func WithExcludes(patterns ...string) InputOption {
	return func(in *Input) {
		in.Excludes = append(in.Excludes, patterns...)
	}
}

// WithExcludeGlobs adds gitignore-like exclusion rules scoped to the input.
func WithExcludeGlobs(rules ...pathrules.Rule) InputOption {
	return func(in *Input) {
		in.ExcludeGlobs = append(in.ExcludeGlobs, rules...)
	}
}

// Builder accumulates merge inputs and rules before building an immutable Plan.
type Builder struct {
	inputs []Input
	opts   MergeOptions
}

// NewBuilder creates builder seeded with merge options.
func NewBuilder(opts MergeOptions) *Builder {
	return &Builder{
		opts:   opts,
		inputs: make([]Input, 0, 8),
	}
}

// AddArchive registers zip/jar archive input.
func (b *Builder) AddArchive(path string, opts ...InputOption) *Builder {
	return b.Add(newInput(InputArchive, path, "", opts))
}

// AddDirectory registers directory tree input.
func (b *Builder) AddDirectory(path string, opts ...InputOption) *Builder {
	return b.Add(newInput(InputDirectory, path, "", opts))
}

// AddFile registers single file input written as entry name (base name when empty).
func (b *Builder) AddFile(path string, name string, opts ...InputOption) *Builder {
	return b.Add(newInput(InputFile, path, name, opts))
}

// Add registers prepared input descriptor.
func (b *Builder) Add(in Input) *Builder {
	b.inputs = append(b.inputs, in)
	return b
}

// Exclude adds global regular expression excludes.
func (b *Builder) Exclude(patterns ...string) *Builder {
	b.opts.Excludes = append(b.opts.Excludes, patterns...)
	return b
}

// ExcludeGlob adds global gitignore-like exclusion rules.
func (b *Builder) ExcludeGlob(rules ...pathrules.Rule) *Builder {
	b.opts.ExcludeGlobs = append(b.opts.ExcludeGlobs, rules...)
	return b
}

// Build validates accumulated configuration and returns immutable plan.
func (b *Builder) Build() (*Plan, error) {
	return NewPlan(b.inputs, b.opts)
}

// newInput constructs input and applies options.
func newInput(kind InputKind, path string, name string, opts []InputOption) Input {
	in := Input{Kind: kind, Path: path, Name: name}
	for _, opt := range opts {
		if opt != nil {
			opt(&in)
		}
	}

	return in
}

// NewPlan validates inputs, compiles all exclusion patterns and returns plan.
// Nothing is read from disk.
func NewPlan(inputs []Input, opts MergeOptions) (*Plan, error) {
	if len(inputs) == 0 {
		return nil, ErrEmptyInputs
	}

	opts.applyDefaults()
	opts = opts.clone()

	if opts.Duplicates != DuplicateWarn && opts.Duplicates != DuplicateFail {
		return nil, fmt.Errorf("%w: unknown duplicate policy %q", ErrInvalidInput, opts.Duplicates)
	}

	global, err := compileExclusionSet(opts.Excludes, opts.ExcludeGlobs, opts.ExcludeMatcherOptions)
	if err != nil {
		return nil, fmt.Errorf("compile global excludes: %w", err)
	}

	if _, err := newGlobMatcher(opts.Writer.Store, opts.Writer.StoreMatcherOptions); err != nil {
		return nil, fmt.Errorf("compile store rules: %w", err)
	}

	compiled := make([]compiledInput, 0, len(inputs))
	for i := range inputs {
		in, err := prepareInput(inputs[i], global)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}

		excludes, err := compileExclusionSet(in.Excludes, in.ExcludeGlobs, opts.ExcludeMatcherOptions)
		if err != nil {
			return nil, fmt.Errorf("input %d (%s): %w", i, in.Path, err)
		}

		compiled = append(compiled, compiledInput{input: in, excludes: excludes})
	}

	return &Plan{global: global, inputs: compiled, opts: opts}, nil
}

// prepareInput validates one input and resolves file entry name.
func prepareInput(in Input, global *exclusionSet) (Input, error) {
	if strings.TrimSpace(in.Path) == "" {
		return in, fmt.Errorf("%w: empty path", ErrInvalidInput)
	}

	switch in.Kind {
	case InputArchive, InputDirectory:
		if in.Name != "" {
			return in, fmt.Errorf("%w: entry name is only valid for file inputs", ErrInvalidInput)
		}
	case InputFile:
		name := in.Name
		if name == "" {
			name = filepath.Base(in.Path)
		}

		entryName, err := NormalizeEntryName(name)
		if err != nil {
			return in, err
		}

		if global.Match(entryName) {
			return in, fmt.Errorf("%w: %s", ErrExcludedFileInput, entryName)
		}

		in.Name = entryName
	default:
		return in, fmt.Errorf("%w: unknown kind %d", ErrInvalidInput, in.Kind)
	}

	in.Excludes = append([]string(nil), in.Excludes...)
	in.ExcludeGlobs = append([]pathrules.Rule(nil), in.ExcludeGlobs...)

	return in, nil
}

// Inputs returns a copy of plan inputs in merge order.
func (p *Plan) Inputs() []Input {
	if p == nil {
		return nil
	}

	out := make([]Input, len(p.inputs))
	for i := range p.inputs {
		in := p.inputs[i].input
		in.Excludes = append([]string(nil), in.Excludes...)
		in.ExcludeGlobs = append([]pathrules.Rule(nil), in.ExcludeGlobs...)
		out[i] = in
	}

	return out
}

// Options returns merge options with defaults applied.
func (p *Plan) Options() MergeOptions {
	if p == nil {
		return MergeOptions{}
	}

	return p.opts.clone()
}

// clone copies rule slices so callers cannot mutate plan state.
func (o MergeOptions) clone() MergeOptions {
	o.Excludes = append([]string(nil), o.Excludes...)
	o.ExcludeGlobs = append([]pathrules.Rule(nil), o.ExcludeGlobs...)
	o.Writer.Store = append([]pathrules.Rule(nil), o.Writer.Store...)
	return o
}
