// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/jarshade

package jarshade

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/woozymasta/pathrules"
)

// Well-known entry names handled by presets.
const (
	// GradleImpldepMetaInfPrefix is META-INF subtree bundled inside gradle-api jars.
	GradleImpldepMetaInfPrefix = "org/gradle/internal/impldep/META-INF/"
	// DefaultConstructorMarkerEntry is Kotlin stdlib class made non-public before shading.
	DefaultConstructorMarkerEntry = "kotlin/jvm/internal/DefaultConstructorMarker.class"
)

var (
	kotlinStdlibJarRe = regexp.MustCompile(`^kotlin-stdlib-+[0-9.]*\.jar$`)
	gradleAPIJarRe    = regexp.MustCompile(`^gradle-api-+[0-9.]*\.jar$`)
)

// DefaultExcludes returns glob exclusion rules applied to embedded jars:
// manifests, proguard fragments and module descriptors.
func DefaultExcludes() []pathrules.Rule {
	return []pathrules.Rule{
		{Action: pathrules.ActionInclude, Pattern: "META-INF/MANIFEST.MF"},
		{Action: pathrules.ActionInclude, Pattern: "META-INF/**/*.pro"},
		{Action: pathrules.ActionInclude, Pattern: "module-info.class"},
		{Action: pathrules.ActionInclude, Pattern: "META-INF/versions/*/module-info.class"},
	}
}

// SkipPrefix returns a rule that skips entries whose name starts with any prefix.
func SkipPrefix(prefixes ...string) EntryFunc {
	prefixes = append([]string(nil), prefixes...)

	return func(entry *Entry) (Disposition, error) {
		for _, prefix := range prefixes {
			if prefix != "" && strings.HasPrefix(entry.Name, prefix) {
				return Disposition{Skip: true}, nil
			}
		}

		return Disposition{}, nil
	}
}

// SkipMatching returns a rule that skips entries fully matching any regular expression.
func SkipMatching(patterns ...string) (EntryFunc, error) {
	set, err := compileExclusionSet(patterns, nil, pathrules.MatcherOptions{})
	if err != nil {
		return nil, err
	}

	return func(entry *Entry) (Disposition, error) {
		return Disposition{Skip: set.Match(entry.Name)}, nil
	}, nil
}

// ClearAccessFlags returns a rule that rewrites entry className (e.g.
// "a/b/C.class") with mask bits cleared in class access_flags. Other entries
// are kept as is. Malformed class bytes abort the merge with ErrPatchFailed.
func ClearAccessFlags(className string, mask uint16) EntryFunc {
	target := NormalizePath(className)

	return func(entry *Entry) (Disposition, error) {
		if entry.IsDir() || entry.Name != target {
			return Disposition{}, nil
		}

		data, err := entry.ReadAll()
		if err != nil {
			return Disposition{}, err
		}

		patched, err := ClearClassAccessFlags(data, mask)
		if err != nil {
			return Disposition{}, fmt.Errorf("patch %s: %w", entry.Name, err)
		}

		return Disposition{Open: BytesContent(patched)}, nil
	}
}

// PatchDefaultConstructorMarker makes Kotlin DefaultConstructorMarker non-public
// so shrinker relocation does not expose it as API.
func PatchDefaultConstructorMarker() EntryFunc {
	return ClearAccessFlags(DefaultConstructorMarkerEntry, AccPublic)
}

// Chain composes rules in order. The first Skip wins; a later non-empty Name
// or non-nil Open overrides earlier ones. Every rule sees the original entry.
func Chain(fns ...EntryFunc) EntryFunc {
	fns = append([]EntryFunc(nil), fns...)

	return func(entry *Entry) (Disposition, error) {
		var out Disposition
		for _, fn := range fns {
			if fn == nil {
				continue
			}

			disp, err := fn(entry)
			if err != nil {
				return Disposition{}, err
			}

			if disp.Skip {
				return Disposition{Skip: true}, nil
			}

			if disp.Name != "" {
				out.Name = disp.Name
			}

			if disp.Open != nil {
				out.Open = disp.Open
			}
		}

		return out, nil
	}
}

// IsKotlinStdlib reports whether path base name looks like kotlin-stdlib jar.
func IsKotlinStdlib(path string) bool {
	return kotlinStdlibJarRe.MatchString(filepath.Base(path))
}

// IsGradleAPIJar reports whether path is a gradle-api jar carrying bundled
// impldep META-INF entries.
func IsGradleAPIJar(path string) (bool, error) {
	if !gradleAPIJarRe.MatchString(filepath.Base(path)) {
		return false, nil
	}

	zr, err := openZip(path)
	if err != nil {
		return false, err
	}
	defer func() { _ = zr.Close() }()

	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, GradleImpldepMetaInfPrefix) {
			return true, nil
		}
	}

	return false, nil
}
