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

package foreground

import (
	"errors"

	"golang.org/x/sys/windows"
)

var errNoForegroundWindow = errors.New("no foreground window")

type windowChecker struct{}

// Default returns a checker backed by GetForegroundWindow.
func Default() Checker {
	return windowChecker{}
}

// Precise reports whether Default can actually detect focus.
func Precise() bool {
	return true
}

func (windowChecker) IsForeground(pid int32) (bool, error) {
	hwnd := windows.GetForegroundWindow()
	if hwnd == 0 {
		// lock screen, UAC prompt or a window closing mid-switch
		return false, errNoForegroundWindow
	}
	var owner uint32
	if _, err := windows.GetWindowThreadProcessId(hwnd, &owner); err != nil {
		return false, err //nolint:wrapcheck // caller logs with pid context
	}
	return owner == uint32(pid), nil //nolint:gosec // pids are non-negative
}
