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

const DefaultReportAddress = "127.0.0.1:6969"

// PlaytimeMode selects how time is attributed to a running game. The
// string values are the ones older settings files were written with.
type PlaytimeMode string

const (
	// PlaytimeModeForeground polls the process table once a second and
	// only counts time while the game owns the foreground window.
	PlaytimeModeForeground PlaytimeMode = "classic"
	// PlaytimeModeReport accepts time deltas pushed by an external
	// reporter over the local report socket.
	PlaytimeModeReport PlaytimeMode = "exstatic"
)

func (m PlaytimeMode) Valid() bool {
	return m == PlaytimeModeForeground || m == PlaytimeModeReport
}

type Playtime struct {
	Mode          PlaytimeMode `toml:"mode"`
	ReportAddress string       `toml:"report_address,omitempty"`
}

// PlaytimeMode is read once when a session starts. Changing it does not
// affect a session that is already being tracked.
func (c *Instance) PlaytimeMode() PlaytimeMode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.vals.Playtime.Mode.Valid() {
		return PlaytimeModeForeground
	}
	return c.vals.Playtime.Mode
}

func (c *Instance) SetPlaytimeMode(mode PlaytimeMode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Playtime.Mode = mode
}

func (c *Instance) ReportAddress() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Playtime.ReportAddress == "" {
		return DefaultReportAddress
	}
	return c.vals.Playtime.ReportAddress
}

func (c *Instance) SetReportAddress(addr string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Playtime.ReportAddress = addr
}
