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

package config

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigWritesDefaults(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	cfg, err := NewConfigWithFs(fs, "/cfg", BaseDefaults)
	require.NoError(t, err)

	exists, err := afero.Exists(fs, filepath.Join("/cfg", CfgFile))
	require.NoError(t, err)
	assert.True(t, exists)

	assert.Equal(t, PlaytimeModeForeground, cfg.PlaytimeMode())
	assert.Equal(t, PresenceModeAll, cfg.PresenceMode())
	assert.True(t, cfg.DisablePresenceOnNSFW())
	assert.NotEmpty(t, cfg.DeviceID())
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	path := filepath.Join("/cfg", CfgFile)
	require.NoError(t, afero.WriteFile(fs, path, []byte(`config_schema = 1
[playtime]
mode = "exstatic"
`), 0o600))

	cfg, err := NewConfigWithFs(fs, "/cfg", BaseDefaults)
	require.NoError(t, err)

	assert.Equal(t, PlaytimeModeReport, cfg.PlaytimeMode())
	assert.Equal(t, PresenceModeAll, cfg.PresenceMode())
	assert.Equal(t, DefaultReportAddress, cfg.ReportAddress())
	assert.Equal(t, DefaultAPIPort, cfg.APIPort())
}

func TestLoadSchemaMismatch(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	path := filepath.Join("/cfg", CfgFile)
	require.NoError(t, afero.WriteFile(fs, path, []byte("config_schema = 99\n"), 0o600))

	_, err := NewConfigWithFs(fs, "/cfg", BaseDefaults)
	require.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestLoadInvalidModesFallBack(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	path := filepath.Join("/cfg", CfgFile)
	require.NoError(t, afero.WriteFile(fs, path, []byte(`config_schema = 1
[playtime]
mode = "sometimes"
[presence]
mode = "loud"
`), 0o600))

	cfg, err := NewConfigWithFs(fs, "/cfg", BaseDefaults)
	require.NoError(t, err)
	assert.Equal(t, PlaytimeModeForeground, cfg.PlaytimeMode())
	assert.Equal(t, PresenceModeAll, cfg.PresenceMode())
}

func TestSaveRoundTrip(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	cfg, err := NewConfigWithFs(fs, "/cfg", BaseDefaults)
	require.NoError(t, err)

	cfg.SetPlaytimeMode(PlaytimeModeReport)
	cfg.SetPresenceMode(PresenceModeInGame)
	cfg.SetDisablePresenceOnNSFW(false)
	cfg.SetAPIPort(8000)
	require.NoError(t, cfg.Save())

	reloaded, err := NewConfigWithFs(fs, "/cfg", BaseDefaults)
	require.NoError(t, err)
	assert.Equal(t, PlaytimeModeReport, reloaded.PlaytimeMode())
	assert.Equal(t, PresenceModeInGame, reloaded.PresenceMode())
	assert.False(t, reloaded.DisablePresenceOnNSFW())
	assert.Equal(t, 8000, reloaded.APIPort())
	assert.Equal(t, cfg.DeviceID(), reloaded.DeviceID())
}

func TestErrorReportingNeedsDSN(t *testing.T) {
	t.Parallel()

	enabled := true
	tests := []struct {
		name string
		dsn  string
		want bool
	}{
		{name: "enabled without dsn", dsn: "", want: false},
		{name: "enabled with dsn", dsn: "https://key@example.com/1", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			inst := &Instance{
				vals: Values{
					Service: Service{
						ErrorReporting:    &enabled,
						ErrorReportingDSN: tt.dsn,
					},
				},
			}
			assert.Equal(t, tt.want, inst.ErrorReporting())
		})
	}
}
