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

const DefaultDiscordClientID = "1333425743572500490"

type PresenceMode string

const (
	// PresenceModeAll shows an idle activity while no game is running.
	PresenceModeAll PresenceMode = "all"
	// PresenceModeInGame only shows activity while a game is running.
	PresenceModeInGame PresenceMode = "in_game"
	// PresenceModeNone never shows activity.
	PresenceModeNone PresenceMode = "none"
)

func (m PresenceMode) Valid() bool {
	switch m {
	case PresenceModeAll, PresenceModeInGame, PresenceModeNone:
		return true
	default:
		return false
	}
}

type Presence struct {
	DisableOnNSFW *bool        `toml:"disable_on_nsfw,omitempty"`
	Mode          PresenceMode `toml:"mode"`
	ClientID      string       `toml:"client_id,omitempty"`
}

func (c *Instance) PresenceMode() PresenceMode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.vals.Presence.Mode.Valid() {
		return PresenceModeAll
	}
	return c.vals.Presence.Mode
}

func (c *Instance) SetPresenceMode(mode PresenceMode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Presence.Mode = mode
}

// DisablePresenceOnNSFW defaults to true when unset.
func (c *Instance) DisablePresenceOnNSFW() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Presence.DisableOnNSFW == nil {
		return true
	}
	return *c.vals.Presence.DisableOnNSFW
}

func (c *Instance) SetDisablePresenceOnNSFW(disabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Presence.DisableOnNSFW = &disabled
}

func (c *Instance) DiscordClientID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Presence.ClientID == "" {
		return DefaultDiscordClientID
	}
	return c.vals.Presence.ClientID
}
