// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/jarshade

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/woozymasta/jarshade/shrink"
)

const sampleYAML = `
output: build/out.jar
mtime: "2024-01-02T03:04:05Z"
excludes:
  - "META-INF/.*\\.SF"
exclude_globs:
  - "**/*.kotlin_builtins"
strict_duplicates: true
inputs:
  - archive: libs/kotlin-stdlib-1.9.0.jar
    patch_classes:
      - kotlin/jvm/internal/DefaultConstructorMarker.class
  - directory: classes
    excludes: ["tmp/.*"]
  - file: LICENSE
    name: META-INF/LICENSE.txt
shrink:
  enabled: true
  r8_jar: tools/r8.jar
  output: build/shadowed.jar
  proguard:
    - rules.pro
`

func writeConfig(t *testing.T, dir string, name string, body string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	assert.Equal(t, DefaultOutput, cfg.Output)
	assert.True(t, cfg.DefaultExcludes)
	assert.True(t, cfg.DetectPresets)
	assert.False(t, cfg.StrictDuplicates)
	assert.False(t, cfg.Shrink.Enabled)
	assert.Equal(t, shrink.DefaultJava, cfg.Shrink.Java)
	assert.Equal(t, shrink.DefaultR8Version, cfg.Shrink.R8Version)
	assert.NotEmpty(t, cfg.Shrink.CacheDir)
}

func TestLoadFromDir(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "jarshade.yaml", sampleYAML)

	cfg, used, err := Load(LoadOptions{Dir: dir})
	require.NoError(t, err)
	assert.Equal(t, path, used)

	assert.Equal(t, filepath.Join(dir, "build", "out.jar"), cfg.Output)
	assert.True(t, cfg.StrictDuplicates)
	assert.True(t, cfg.DefaultExcludes, "defaults must survive partial file")
	assert.Equal(t, []string{`META-INF/.*\.SF`}, cfg.Excludes)
	assert.Equal(t, []string{"**/*.kotlin_builtins"}, cfg.ExcludeGlobs)

	require.Len(t, cfg.Inputs, 3)
	assert.Equal(t, filepath.Join(dir, "libs", "kotlin-stdlib-1.9.0.jar"), cfg.Inputs[0].Archive)
	assert.Equal(t, []string{"kotlin/jvm/internal/DefaultConstructorMarker.class"}, cfg.Inputs[0].PatchClasses)
	assert.Equal(t, filepath.Join(dir, "classes"), cfg.Inputs[1].Directory)
	assert.Equal(t, []string{"tmp/.*"}, cfg.Inputs[1].Excludes)
	assert.Equal(t, "META-INF/LICENSE.txt", cfg.Inputs[2].Name)

	assert.True(t, cfg.Shrink.Enabled)
	assert.Equal(t, filepath.Join(dir, "tools", "r8.jar"), cfg.Shrink.R8Jar)
	assert.Equal(t, []string{filepath.Join(dir, "rules.pro")}, cfg.Shrink.Proguard)

	mtime, err := cfg.ModTime()
	require.NoError(t, err)
	assert.True(t, mtime.Equal(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)))

	require.NoError(t, cfg.Validate())
}

func TestLoadTOMLFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "build.toml", `
output = "/abs/out.jar"
default_excludes = false

[[inputs]]
archive = "a.jar"
`)

	cfg, used, err := Load(LoadOptions{ConfigFilePath: path})
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, "/abs/out.jar", cfg.Output)
	assert.False(t, cfg.DefaultExcludes)
	require.Len(t, cfg.Inputs, 1)
	assert.Equal(t, filepath.Join(dir, "a.jar"), cfg.Inputs[0].Archive)
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, used, err := Load(LoadOptions{Dir: t.TempDir()})
	require.NoError(t, err)
	assert.Empty(t, used)
	assert.Equal(t, DefaultOutput, cfg.Output)
	assert.Empty(t, cfg.Inputs)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, _, err := Load(LoadOptions{ConfigFilePath: filepath.Join(t.TempDir(), "nope.yaml")})
	require.Error(t, err)
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "jarshade.yaml", sampleYAML)

	t.Setenv("JARSHADE_STRICT_DUPLICATES", "false")
	t.Setenv("JARSHADE_SHRINK_R8_VERSION", "8.3.37")
	t.Setenv("JARSHADE_SHRINK_JDK_HOME", "")
	t.Setenv("JAVA_HOME", "/opt/jdk")

	cfg, _, err := Load(LoadOptions{Dir: dir})
	require.NoError(t, err)
	assert.False(t, cfg.StrictDuplicates)
	assert.Equal(t, "8.3.37", cfg.Shrink.R8Version)
	assert.Equal(t, "/opt/jdk", cfg.Shrink.JDKHome)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := func() *Config {
		cfg := DefaultConfig()
		cfg.Inputs = []Input{{Archive: "a.jar"}}
		return cfg
	}
	require.NoError(t, valid().Validate())

	testCases := map[string]func(c *Config){
		"empty output":          func(c *Config) { c.Output = " " },
		"no inputs":             func(c *Config) { c.Inputs = nil },
		"no input kind":         func(c *Config) { c.Inputs = []Input{{Name: "x"}} },
		"two input kinds":       func(c *Config) { c.Inputs = []Input{{Archive: "a.jar", Directory: "d"}} },
		"name without file":     func(c *Config) { c.Inputs = []Input{{Archive: "a.jar", Name: "x"}} },
		"bad mtime":             func(c *Config) { c.MTime = "yesterday" },
		"bad digest":            func(c *Config) { c.Shrink.R8Digest = "sha256:xyz" },
		"shrink without output": func(c *Config) { c.Shrink.Enabled = true },
	}

	for name, mutate := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cfg := valid()
			mutate(cfg)
			require.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestRender(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Inputs = []Input{{Archive: "a.jar", StripPrefixes: []string{"META-INF/maven/"}}}

	data, err := cfg.Render()
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "output = 'build/embedded.jar'")
	assert.Contains(t, out, "[[inputs]]")
	assert.Contains(t, out, "strip_prefixes = ['META-INF/maven/']")
	assert.Contains(t, out, "[shrink]")
	assert.NotContains(t, out, "directory")
}
