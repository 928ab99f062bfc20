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

package helpers

import (
	"os"
	"path/filepath"

	"github.com/Eroge-Abyss/tadoku/pkg/config"
	"github.com/adrg/xdg"
)

// ConfigDir holds config.toml.
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, config.AppName)
}

// DataDir holds the games database and log files.
func DataDir() string {
	return filepath.Join(xdg.DataHome, config.AppName)
}

// RuntimeDirs lists the directories that may hold per-session IPC sockets,
// most specific first.
func RuntimeDirs() []string {
	dirs := make([]string, 0, 4)
	if xdg.RuntimeDir != "" {
		dirs = append(dirs, xdg.RuntimeDir)
	}
	for _, env := range []string{"TMPDIR", "TMP", "TEMP"} {
		if v := os.Getenv(env); v != "" {
			dirs = append(dirs, v)
		}
	}
	return append(dirs, "/tmp")
}
