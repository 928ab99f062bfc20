// Tadoku
// Copyright (c) 2025 The Tadoku Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Tadoku.
//
// Tadoku is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Tadoku is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Tadoku.  If not, see <http://www.gnu.org/licenses/>.

package procscanner

import "strings"

// ExeMatcher matches a process whose executable path is exactly path.
type ExeMatcher struct {
	path string
}

func NewExeMatcher(path string) *ExeMatcher {
	return &ExeMatcher{path: path}
}

func (m *ExeMatcher) Match(proc ProcessInfo) bool {
	return proc.Exe != "" && proc.Exe == m.path
}

// CmdlineContainsMatcher matches a process whose command line contains a
// path. Backslashes on both sides are treated as forward slashes so a
// Windows game run through Wine or a launcher script still matches.
type CmdlineContainsMatcher struct {
	substring string
}

func NewCmdlineContainsMatcher(path string) *CmdlineContainsMatcher {
	return &CmdlineContainsMatcher{substring: normalizeSlashes(path)}
}

func (m *CmdlineContainsMatcher) Match(proc ProcessInfo) bool {
	if m.substring == "" || proc.Cmdline == "" {
		return false
	}
	return strings.Contains(normalizeSlashes(proc.Cmdline), m.substring)
}

// OrMatcher matches if any of its matchers do.
type OrMatcher struct {
	matchers []Matcher
}

func NewOrMatcher(matchers ...Matcher) *OrMatcher {
	return &OrMatcher{matchers: matchers}
}

func (m *OrMatcher) Match(proc ProcessInfo) bool {
	for _, matcher := range m.matchers {
		if matcher.Match(proc) {
			return true
		}
	}
	return false
}

func normalizeSlashes(s string) string {
	return strings.ReplaceAll(s, "\\", "/")
}
