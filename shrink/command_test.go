// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/jarshade

package shrink

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandArgsOrder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	abs := func(name string) string { return filepath.Join(dir, name) }

	cmd := Command{
		ToolJar:         abs("r8.jar"),
		JDKHome:         abs("jdk"),
		Output:          abs("out.jar"),
		MappingOutput:   abs("mapping.txt"),
		ProgramFiles:    []string{abs("a.jar"), abs("b.jar")},
		ClassPath:       []string{abs("cp1.jar"), abs("cp2.jar")},
		ProguardConfigs: []string{abs("rules.pro")},
	}

	args, err := cmd.Args()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"--release",
		"--classfile",
		"--output", abs("out.jar"),
		"--pg-map-output", abs("mapping.txt"),
		"--classpath", abs("cp1.jar"),
		"--classpath", abs("cp2.jar"),
		"--pg-conf", abs("rules.pro"),
		"--lib", abs("jdk"),
		abs("a.jar"),
		abs("b.jar"),
	}, args)
}

func TestCommandArgsRelativePaths(t *testing.T) {
	t.Parallel()

	cmd := Command{
		ToolJar:       "r8.jar",
		JDKHome:       "jdk",
		Output:        "out.jar",
		MappingOutput: "mapping.txt",
		ProgramFiles:  []string{"a.jar"},
	}

	args, err := cmd.Args()
	require.NoError(t, err)

	for _, arg := range args {
		if arg[0] != '-' {
			assert.True(t, filepath.IsAbs(arg), "argument %q is not absolute", arg)
		}
	}
}

func TestCommandValidate(t *testing.T) {
	t.Parallel()

	valid := Command{
		ToolJar:       "r8.jar",
		JDKHome:       "jdk",
		Output:        "out.jar",
		MappingOutput: "mapping.txt",
		ProgramFiles:  []string{"a.jar"},
	}
	require.NoError(t, valid.Validate())

	testCases := map[string]func(c *Command){
		"tool jar": func(c *Command) { c.ToolJar = "" },
		"output":   func(c *Command) { c.Output = "" },
		"mapping":  func(c *Command) { c.MappingOutput = "" },
		"jdk":      func(c *Command) { c.JDKHome = "" },
		"program":  func(c *Command) { c.ProgramFiles = nil },
	}

	for name, mutate := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cmd := valid
			mutate(&cmd)

			_, err := cmd.Args()
			require.ErrorIs(t, err, ErrInvalidCommand)
		})
	}
}

func TestResolveURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		"https://dl.google.com/android/maven2/com/android/tools/r8/8.5.35/r8-8.5.35.jar",
		ResolveURL(""))
	assert.Equal(t,
		"https://dl.google.com/android/maven2/com/android/tools/r8/8.3.37/r8-8.3.37.jar",
		ResolveURL("8.3.37"))
	assert.Equal(t,
		"https://storage.googleapis.com/r8-releases/raw/main/0f2b5d3a9c/r8.jar",
		ResolveURL("0f2b5d3a9c"))
}
