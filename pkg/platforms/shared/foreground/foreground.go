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

// Package foreground reports whether a process owns the focused window.
package foreground

// Checker reports whether pid owns the current foreground window.
type Checker interface {
	IsForeground(pid int32) (bool, error)
}

// AlwaysForeground treats every process as focused. It is the fallback on
// platforms where focus can't be queried, which means time spent with the
// game in the background is counted too.
type AlwaysForeground struct{}

func (AlwaysForeground) IsForeground(int32) (bool, error) {
	return true, nil
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(pid int32) (bool, error)

func (f CheckerFunc) IsForeground(pid int32) (bool, error) {
	return f(pid)
}
