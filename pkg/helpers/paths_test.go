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
	"path/filepath"
	"testing"

	"github.com/Eroge-Abyss/tadoku/pkg/config"
	"github.com/stretchr/testify/assert"
)

func TestAppDirs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, config.AppName, filepath.Base(ConfigDir()))
	assert.Equal(t, config.AppName, filepath.Base(DataDir()))
	assert.NotEqual(t, ConfigDir(), "")
}

func TestRuntimeDirs(t *testing.T) {
	t.Setenv("TMPDIR", "/custom/tmp")

	dirs := RuntimeDirs()
	assert.Contains(t, dirs, "/custom/tmp")
	assert.Equal(t, "/tmp", dirs[len(dirs)-1])
}
