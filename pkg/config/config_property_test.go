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
	"testing"

	"github.com/spf13/afero"
	"pgregory.net/rapid"
)

// TestPropertySaveLoadRoundTrip verifies every setting written with Save is
// read back unchanged by a fresh instance.
func TestPropertySaveLoadRoundTrip(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		fs := afero.NewMemMapFs()
		cfg, err := NewConfigWithFs(fs, "/config", BaseDefaults)
		if err != nil {
			t.Fatalf("new config: %v", err)
		}

		playtimeMode := rapid.SampledFrom([]PlaytimeMode{
			PlaytimeModeForeground, PlaytimeModeReport,
		}).Draw(t, "playtimeMode")
		presenceMode := rapid.SampledFrom([]PresenceMode{
			PresenceModeAll, PresenceModeInGame, PresenceModeNone,
		}).Draw(t, "presenceMode")
		nsfw := rapid.Bool().Draw(t, "nsfw")
		debug := rapid.Bool().Draw(t, "debug")
		port := rapid.IntRange(1024, 65535).Draw(t, "port")

		cfg.SetPlaytimeMode(playtimeMode)
		cfg.SetPresenceMode(presenceMode)
		cfg.SetDisablePresenceOnNSFW(nsfw)
		cfg.SetDebugLogging(debug)
		cfg.SetAPIPort(port)
		if err := cfg.Save(); err != nil {
			t.Fatalf("save: %v", err)
		}

		got, err := NewConfigWithFs(fs, "/config", BaseDefaults)
		if err != nil {
			t.Fatalf("reload: %v", err)
		}
		if got.PlaytimeMode() != playtimeMode {
			t.Fatalf("playtime mode: want %s, got %s", playtimeMode, got.PlaytimeMode())
		}
		if got.PresenceMode() != presenceMode {
			t.Fatalf("presence mode: want %s, got %s", presenceMode, got.PresenceMode())
		}
		if got.DisablePresenceOnNSFW() != nsfw {
			t.Fatalf("nsfw: want %v, got %v", nsfw, got.DisablePresenceOnNSFW())
		}
		if got.DebugLogging() != debug {
			t.Fatalf("debug: want %v, got %v", debug, got.DebugLogging())
		}
		if got.APIPort() != port {
			t.Fatalf("port: want %d, got %d", port, got.APIPort())
		}
	})
}

// TestPropertyUnknownModesFallBack verifies garbage modes never leak out of
// the accessors.
func TestPropertyUnknownModesFallBack(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		raw := rapid.StringMatching(`[a-z_]{0,12}`).Draw(t, "mode")
		cfg := &Instance{}
		cfg.vals.Playtime.Mode = PlaytimeMode(raw)
		cfg.vals.Presence.Mode = PresenceMode(raw)

		if !cfg.PlaytimeMode().Valid() {
			t.Fatalf("invalid playtime mode %q returned", cfg.PlaytimeMode())
		}
		if !cfg.PresenceMode().Valid() {
			t.Fatalf("invalid presence mode %q returned", cfg.PresenceMode())
		}
	})
}
