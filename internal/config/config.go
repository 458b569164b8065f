// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/jarshade

// Package config loads jarshade build configuration using Viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/opencontainers/go-digest"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
	"github.com/woozymasta/jarshade/shrink"
)

const (
	// DefaultConfigName is config file base name searched in working directory.
	DefaultConfigName = "jarshade"
	// EnvPrefix is prefix of environment overrides (JARSHADE_OUTPUT, ...).
	EnvPrefix = "JARSHADE"
	// DefaultOutput is merged archive path used when none is configured.
	DefaultOutput = "build/embedded.jar"
	// DefaultMappingName is mapping file name placed next to shrunk output.
	DefaultMappingName = "mapping.txt"
)

// ErrInvalidConfig is returned when configuration fails validation.
var ErrInvalidConfig = errors.New("invalid config")

// Config is complete build configuration.
type Config struct {
	// Output is merged archive path.
	Output string `mapstructure:"output" toml:"output"`
	// MTime overrides entry modification times (RFC 3339).
	MTime string `mapstructure:"mtime" toml:"mtime,omitempty"`
	// Excludes are global regular expressions matched against full entry names.
	Excludes []string `mapstructure:"excludes" toml:"excludes,omitempty"`
	// ExcludeGlobs are global gitignore-like patterns; "!" re-includes.
	ExcludeGlobs []string `mapstructure:"exclude_globs" toml:"exclude_globs,omitempty"`
	// Inputs are merged in order; the first write of a name wins.
	Inputs []Input `mapstructure:"inputs" toml:"inputs"`
	// Shrink configures optional R8 step.
	Shrink Shrink `mapstructure:"shrink" toml:"shrink"`
	// DefaultExcludes enables manifest, proguard fragment and module-info excludes.
	DefaultExcludes bool `mapstructure:"default_excludes" toml:"default_excludes"`
	// DetectPresets patches kotlin-stdlib jars and strips bundled gradle-api META-INF.
	DetectPresets bool `mapstructure:"detect_presets" toml:"detect_presets"`
	// StrictDuplicates fails merge on the first duplicate file entry.
	StrictDuplicates bool `mapstructure:"strict_duplicates" toml:"strict_duplicates"`
}

// Input is one merge input. Exactly one of Archive, Directory or File is set.
type Input struct {
	Archive   string `mapstructure:"archive" toml:"archive,omitempty"`
	Directory string `mapstructure:"directory" toml:"directory,omitempty"`
	File      string `mapstructure:"file" toml:"file,omitempty"`
	// Name is entry name of File input; base name when empty.
	Name string `mapstructure:"name" toml:"name,omitempty"`
	// Excludes are regular expressions scoped to this input.
	Excludes []string `mapstructure:"excludes" toml:"excludes,omitempty"`
	// StripPrefixes drop entries whose names start with any prefix.
	StripPrefixes []string `mapstructure:"strip_prefixes" toml:"strip_prefixes,omitempty"`
	// PatchClasses are class entries made non-public.
	PatchClasses []string `mapstructure:"patch_classes" toml:"patch_classes,omitempty"`
}

// Shrink configures R8 invocation.
type Shrink struct {
	// Java is java launcher.
	Java string `mapstructure:"java" toml:"java"`
	// R8Version is R8 release or commit SHA downloaded when R8Jar is empty.
	R8Version string `mapstructure:"r8_version" toml:"r8_version"`
	// R8Jar is local R8 jar; empty downloads R8Version into CacheDir.
	R8Jar string `mapstructure:"r8_jar" toml:"r8_jar,omitempty"`
	// R8Digest is expected digest of downloaded jar (e.g. "sha256:...").
	R8Digest string `mapstructure:"r8_digest" toml:"r8_digest,omitempty"`
	// CacheDir holds downloaded tools.
	CacheDir string `mapstructure:"cache_dir" toml:"cache_dir,omitempty"`
	// JDKHome is passed as --lib; defaults to JAVA_HOME.
	JDKHome string `mapstructure:"jdk_home" toml:"jdk_home,omitempty"`
	// Mapping is ProGuard mapping output; next to Output when empty.
	Mapping string `mapstructure:"mapping" toml:"mapping,omitempty"`
	// Output is shrunk jar path.
	Output string `mapstructure:"output" toml:"output,omitempty"`
	// Classpath are jars referenced but not shrunk.
	Classpath []string `mapstructure:"classpath" toml:"classpath,omitempty"`
	// Proguard are rule files.
	Proguard []string `mapstructure:"proguard" toml:"proguard,omitempty"`
	// Enabled runs shrink step after merge.
	Enabled bool `mapstructure:"enabled" toml:"enabled"`
}

// LoadOptions controls config discovery.
type LoadOptions struct {
	// ConfigFilePath is explicit config file; it must exist when set.
	ConfigFilePath string
	// Dir is searched for jarshade.{yaml,toml,json} when ConfigFilePath is empty.
	// Empty means working directory.
	Dir string
}

// DefaultConfig returns configuration used when no file is found.
func DefaultConfig() *Config {
	return &Config{
		Output:          DefaultOutput,
		DefaultExcludes: true,
		DetectPresets:   true,
		Shrink: Shrink{
			Java:      shrink.DefaultJava,
			R8Version: shrink.DefaultR8Version,
			CacheDir:  DefaultCacheDir(),
		},
	}
}

// DefaultCacheDir returns user cache directory for downloaded tools.
func DefaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ".jarshade-cache"
	}

	return filepath.Join(dir, "jarshade")
}

// Load reads config file and environment overrides on top of defaults.
// Relative paths are resolved against config file directory. It returns
// the loaded config and the config file used (empty when none was found).
func Load(opts LoadOptions) (*Config, string, error) {
	defaults := DefaultConfig()

	v := viper.New()
	v.SetDefault("output", defaults.Output)
	v.SetDefault("mtime", defaults.MTime)
	v.SetDefault("excludes", defaults.Excludes)
	v.SetDefault("exclude_globs", defaults.ExcludeGlobs)
	v.SetDefault("default_excludes", defaults.DefaultExcludes)
	v.SetDefault("detect_presets", defaults.DetectPresets)
	v.SetDefault("strict_duplicates", defaults.StrictDuplicates)
	v.SetDefault("shrink.enabled", defaults.Shrink.Enabled)
	v.SetDefault("shrink.java", defaults.Shrink.Java)
	v.SetDefault("shrink.r8_version", defaults.Shrink.R8Version)
	v.SetDefault("shrink.r8_jar", defaults.Shrink.R8Jar)
	v.SetDefault("shrink.r8_digest", defaults.Shrink.R8Digest)
	v.SetDefault("shrink.cache_dir", defaults.Shrink.CacheDir)
	v.SetDefault("shrink.mapping", defaults.Shrink.Mapping)
	v.SetDefault("shrink.output", defaults.Shrink.Output)
	v.SetDefault("shrink.classpath", defaults.Shrink.Classpath)
	v.SetDefault("shrink.proguard", defaults.Shrink.Proguard)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("shrink.jdk_home", EnvPrefix+"_SHRINK_JDK_HOME", "JAVA_HOME"); err != nil {
		return nil, "", fmt.Errorf("bind env: %w", err)
	}

	if opts.ConfigFilePath != "" {
		v.SetConfigFile(opts.ConfigFilePath)
	} else {
		dir := opts.Dir
		if dir == "" {
			dir = "."
		}
		v.SetConfigName(DefaultConfigName)
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.ConfigFilePath != "" || !errors.As(err, &notFound) {
			return nil, "", fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	used := v.ConfigFileUsed()
	base := opts.Dir
	if used != "" {
		base = filepath.Dir(used)
	}
	cfg.ResolvePaths(base)

	return cfg, used, nil
}

// ResolvePaths makes relative file paths absolute against base.
// Empty base keeps paths relative to working directory.
func (c *Config) ResolvePaths(base string) {
	if base == "" {
		return
	}

	resolve := func(p *string) {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}
	resolveAll := func(paths []string) {
		for i := range paths {
			resolve(&paths[i])
		}
	}

	resolve(&c.Output)
	for i := range c.Inputs {
		resolve(&c.Inputs[i].Archive)
		resolve(&c.Inputs[i].Directory)
		resolve(&c.Inputs[i].File)
	}

	resolve(&c.Shrink.R8Jar)
	resolve(&c.Shrink.CacheDir)
	resolve(&c.Shrink.JDKHome)
	resolve(&c.Shrink.Mapping)
	resolve(&c.Shrink.Output)
	resolveAll(c.Shrink.Classpath)
	resolveAll(c.Shrink.Proguard)
}

// Validate checks configuration consistency.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Output) == "" {
		return fmt.Errorf("%w: output is required", ErrInvalidConfig)
	}

	if len(c.Inputs) == 0 {
		return fmt.Errorf("%w: no inputs", ErrInvalidConfig)
	}

	for i, in := range c.Inputs {
		if err := in.validate(); err != nil {
			return fmt.Errorf("%w: inputs[%d]: %w", ErrInvalidConfig, i, err)
		}
	}

	if _, err := c.ModTime(); err != nil {
		return fmt.Errorf("%w: mtime: %w", ErrInvalidConfig, err)
	}

	if c.Shrink.R8Digest != "" {
		if _, err := digest.Parse(c.Shrink.R8Digest); err != nil {
			return fmt.Errorf("%w: shrink.r8_digest: %w", ErrInvalidConfig, err)
		}
	}

	if c.Shrink.Enabled && strings.TrimSpace(c.Shrink.Output) == "" {
		return fmt.Errorf("%w: shrink.output is required when shrink is enabled", ErrInvalidConfig)
	}

	return nil
}

// validate requires exactly one input kind.
func (in Input) validate() error {
	kinds := 0
	for _, p := range []string{in.Archive, in.Directory, in.File} {
		if p != "" {
			kinds++
		}
	}

	switch {
	case kinds == 0:
		return errors.New("one of archive, directory or file is required")
	case kinds > 1:
		return errors.New("only one of archive, directory or file may be set")
	case in.Name != "" && in.File == "":
		return errors.New("name is only valid for file inputs")
	}

	return nil
}

// ModTime returns parsed MTime; zero time when unset.
func (c *Config) ModTime() (time.Time, error) {
	if c.MTime == "" {
		return time.Time{}, nil
	}

	return time.Parse(time.RFC3339, c.MTime)
}

// Render returns config encoded as TOML.
func (c *Config) Render() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}

	return data, nil
}
