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
	"testing"

	"github.com/Eroge-Abyss/tadoku/pkg/config"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// NewTestConfig returns a config backed by an in-memory filesystem. A
// non-zero port overrides the API port.
func NewTestConfig(t *testing.T, port int) *config.Instance {
	t.Helper()
	cfg, err := config.NewConfigWithFs(afero.NewMemMapFs(), "/config", config.BaseDefaults)
	require.NoError(t, err)
	if port != 0 {
		cfg.SetAPIPort(port)
	}
	return cfg
}
