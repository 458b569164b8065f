// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/jarshade

package jarshade

import (
	"fmt"
	"regexp"

	"github.com/woozymasta/pathrules"
)

// globMatcher holds compiled allow-list rules where "included" means "matched".
type globMatcher struct {
	matcher *pathrules.Matcher
}

// newGlobMatcher compiles glob rules; empty rule set yields nil matcher.
func newGlobMatcher(rules []pathrules.Rule, opts pathrules.MatcherOptions) (*globMatcher, error) {
	rules = normalizeGlobRules(rules)
	if len(rules) == 0 {
		return nil, nil
	}

	if opts.DefaultAction == pathrules.ActionUnknown {
		opts.DefaultAction = pathrules.ActionExclude
	}

	matcher, err := pathrules.NewMatcher(rules, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: compile rules: %w", ErrInvalidExcludePattern, err)
	}

	return &globMatcher{matcher: matcher}, nil
}

// normalizeGlobRules normalizes rule patterns and drops empty patterns.
func normalizeGlobRules(rules []pathrules.Rule) []pathrules.Rule {
	normalized := make([]pathrules.Rule, 0, len(rules))
	for _, rule := range rules {
		pattern := normalizePathForMatching(rule.Pattern)
		if pattern == "" {
			continue
		}

		action := rule.Action
		if action == pathrules.ActionUnknown {
			action = pathrules.ActionInclude
		}

		normalized = append(normalized, pathrules.Rule{
			Action:  action,
			Pattern: pattern,
		})
	}

	return normalized
}

// Match reports whether name is selected by at least one rule.
func (m *globMatcher) Match(name string) bool {
	if m == nil || m.matcher == nil {
		return false
	}

	candidate := NormalizePath(name)
	if candidate == "" {
		return false
	}

	return m.matcher.Included(candidate, IsDirName(name))
}

// exclusionSet is an ordered, precompiled set of exclusion rules.
type exclusionSet struct {
	globs   *globMatcher
	regexes []*regexp.Regexp
}

// compileExclusionSet compiles regex patterns (full-name match) and glob rules once.
func compileExclusionSet(patterns []string, globs []pathrules.Rule, opts pathrules.MatcherOptions) (*exclusionSet, error) {
	set := &exclusionSet{regexes: make([]*regexp.Regexp, 0, len(patterns))}
	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}

		re, err := regexp.Compile(`^(?:` + pattern + `)$`)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidExcludePattern, pattern, err)
		}

		set.regexes = append(set.regexes, re)
	}

	matcher, err := newGlobMatcher(globs, opts)
	if err != nil {
		return nil, err
	}
	set.globs = matcher

	return set, nil
}

// Match reports whether original entry name is excluded.
// Regex patterns are tested in declaration order before glob rules.
func (s *exclusionSet) Match(name string) bool {
	if s == nil {
		return false
	}

	for _, re := range s.regexes {
		if re.MatchString(name) {
			return true
		}
	}

	return s.globs.Match(name)
}
