// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/jarshade

package main

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/woozymasta/jarshade"
)

func TestMergeKeepsFlagOrder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	jar := filepath.Join(dir, "a.jar")
	writeJar(t, jar, map[string][]byte{
		"META-INF/MANIFEST.MF": []byte("Manifest-Version: 1.0\n"),
		"x.txt":                []byte("from jar"),
		"only-jar.txt":         []byte("jar"),
	})

	classes := filepath.Join(dir, "classes")
	require.NoError(t, os.MkdirAll(classes, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(classes, "x.txt"), []byte("from dir"), 0o600))

	license := filepath.Join(dir, "LICENSE")
	require.NoError(t, os.WriteFile(license, []byte("MIT"), 0o600))

	out := filepath.Join(dir, "out.jar")
	_, _, err := execute(t,
		"--config", emptyConfig(t),
		"merge", "-o", out,
		"--dir", classes,
		"--archive", jar,
		"--file", "META-INF/LICENSE="+license,
		"--mtime", "2024-01-01T00:00:00Z",
	)
	require.NoError(t, err)

	got := readJar(t, out)
	assert.Equal(t, []byte("from dir"), got["x.txt"])
	assert.Equal(t, []byte("jar"), got["only-jar.txt"])
	assert.Equal(t, []byte("MIT"), got["META-INF/LICENSE"])
	assert.NotContains(t, got, "META-INF/MANIFEST.MF")
}

func TestMergeExcludesAndStrict(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := filepath.Join(dir, "a.jar")
	b := filepath.Join(dir, "b.jar")
	writeJar(t, a, map[string][]byte{"x.txt": []byte("a"), "drop/me.txt": []byte("a")})
	writeJar(t, b, map[string][]byte{"x.txt": []byte("b"), "keep.pro": []byte("b")})

	out := filepath.Join(dir, "out.jar")
	_, _, err := execute(t,
		"--config", emptyConfig(t),
		"merge", "-o", out,
		"--archive", a, "--archive", b,
		"--exclude", "drop/.*",
		"--no-default-excludes",
	)
	require.NoError(t, err)

	got := readJar(t, out)
	assert.Equal(t, []byte("a"), got["x.txt"])
	assert.Contains(t, got, "keep.pro")
	assert.NotContains(t, got, "drop/me.txt")

	_, _, err = execute(t,
		"--config", emptyConfig(t),
		"merge", "-o", filepath.Join(dir, "strict.jar"),
		"--archive", a, "--archive", b,
		"--strict",
	)
	require.ErrorIs(t, err, jarshade.ErrDuplicateEntry)

	_, statErr := os.Stat(filepath.Join(dir, "strict.jar"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestMergeRequiresInputs(t *testing.T) {
	t.Parallel()

	_, _, err := execute(t, "--config", emptyConfig(t), "merge", "-o", filepath.Join(t.TempDir(), "o.jar"))
	require.Error(t, err)
}

func TestDuplicatesCommand(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := filepath.Join(dir, "a.jar")
	b := filepath.Join(dir, "b.jar")
	writeJar(t, a, map[string][]byte{"same.txt": []byte("1"), "diff.class": []byte("a"), "a.txt": nil})
	writeJar(t, b, map[string][]byte{"same.txt": []byte("1"), "diff.class": []byte("b")})

	stdout, _, err := execute(t, "duplicates", a, b)
	require.NoError(t, err)
	assert.Equal(t,
		"differs\tdiff.class\t"+a+", "+b+"\n"+
			"identical\tsame.txt\t"+a+", "+b+"\n",
		stdout)

	stdout, _, err = execute(t, "duplicates", "--filter", "**/*.class", "--fail", a, b)
	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, ExitDuplicates, exitErr.Code)
	assert.Equal(t, "differs\tdiff.class\t"+a+", "+b+"\n", stdout)

	stdout, _, err = execute(t, "duplicates", "--differs", "--filter", "*.txt", "--fail", a, b)
	require.NoError(t, err)
	assert.Empty(t, stdout)

	_, _, err = execute(t, "duplicates", "--filter", "[", a, b)
	require.Error(t, err)
}

func TestPatchCommandInPlace(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	jar := filepath.Join(dir, "kotlin-stdlib.jar")
	writeJar(t, jar, map[string][]byte{
		jarshade.DefaultConstructorMarkerEntry: classBytes("kotlin/jvm/internal/DefaultConstructorMarker", jarshade.AccPublic|jarshade.AccFinal),
		"kotlin/Unit.class":                    []byte("unit"),
	})

	_, _, err := execute(t, "patch", jar, "--class", jarshade.DefaultConstructorMarkerEntry)
	require.NoError(t, err)

	got := readJar(t, jar)
	flags, err := jarshade.ClassAccessFlags(got[jarshade.DefaultConstructorMarkerEntry])
	require.NoError(t, err)
	assert.Equal(t, jarshade.AccFinal, flags)
	assert.Equal(t, []byte("unit"), got["kotlin/Unit.class"])

	out := filepath.Join(dir, "patched.jar")
	_, _, err = execute(t, "patch", jar, "--class", jarshade.DefaultConstructorMarkerEntry, "--clear", "final", "-o", out)
	require.NoError(t, err)

	flags, err = jarshade.ClassAccessFlags(readJar(t, out)[jarshade.DefaultConstructorMarkerEntry])
	require.NoError(t, err)
	assert.Zero(t, flags)
}

func TestPatchCommandMalformedClass(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	jar := filepath.Join(dir, "a.jar")
	writeJar(t, jar, map[string][]byte{"a/B.class": []byte("not a class")})

	_, _, err := execute(t, "patch", jar, "--class", "a/B.class", "-o", filepath.Join(dir, "out.jar"))
	require.ErrorIs(t, err, jarshade.ErrPatchFailed)
}

func TestListAndExtract(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	jar := filepath.Join(dir, "a.jar")
	writeJar(t, jar, map[string][]byte{
		"com/example/A.class": []byte("a"),
		"res/data.txt":        []byte("data"),
	})

	stdout, _, err := execute(t, "list", jar)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasSuffix(lines[0], "  com/example/A.class"))
	assert.True(t, strings.HasPrefix(lines[1], "deflate"))

	dst := filepath.Join(dir, "out")
	_, _, err = execute(t, "extract", jar, dst, "--filter", "com/**")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dst, "com", "example", "A.class"))
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), data)

	_, err = os.Stat(filepath.Join(dst, "res", "data.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestConfigShow(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "jarshade.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output: out.jar\ninputs:\n  - archive: a.jar\n"), 0o600))

	stdout, _, err := execute(t, "--config", path, "config", "show", "--validate")
	require.NoError(t, err)
	assert.Contains(t, stdout, "# loaded from "+path)
	assert.Contains(t, stdout, "output = '"+filepath.Join(dir, "out.jar")+"'")
	assert.Contains(t, stdout, "[[inputs]]")

	_, _, err = execute(t, "--config", emptyConfig(t), "config", "show", "--validate")
	require.Error(t, err)
}

func TestRunWithoutShrink(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeJar(t, filepath.Join(dir, "libs", "gradle-api-8.5.jar"), map[string][]byte{
		"org/gradle/api/Project.class":                  []byte("p"),
		jarshade.GradleImpldepMetaInfPrefix + "LICENSE": []byte("l"),
	})

	path := filepath.Join(dir, "jarshade.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
output = "build/out.jar"

[[inputs]]
archive = "libs/gradle-api-8.5.jar"

[shrink]
enabled = true
output = "build/min.jar"
r8_jar = "missing-r8.jar"
`), 0o600))

	_, _, err := execute(t, "--config", path, "run", "--no-shrink")
	require.NoError(t, err)

	got := readJar(t, filepath.Join(dir, "build", "out.jar"))
	assert.Contains(t, got, "org/gradle/api/Project.class")
	assert.NotContains(t, got, jarshade.GradleImpldepMetaInfPrefix+"LICENSE")

	_, err = os.Stat(filepath.Join(dir, "build", "min.jar"))
	assert.True(t, os.IsNotExist(err))
}

func TestDownloadCommand(t *testing.T) {
	t.Parallel()

	payload := []byte("PK fake r8")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(payload)
	}))
	t.Cleanup(srv.Close)

	dest := filepath.Join(t.TempDir(), "r8.jar")
	stdout, _, err := execute(t,
		"--config", emptyConfig(t),
		"download-r8",
		"--url", srv.URL+"/r8.jar",
		"--dest", dest,
		"--digest", digest.FromBytes(payload).String(),
	)
	require.NoError(t, err)
	assert.Equal(t, dest+"\n", stdout)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, payload, data)

	_, _, err = execute(t, "--config", emptyConfig(t), "download-r8", "--dest", dest, "--digest", "bogus")
	require.Error(t, err)
}
