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

// Package presence shows what is being played on a rich presence service.
// Every call is best effort: callers log errors and carry on.
package presence

import (
	"time"

	"github.com/Eroge-Abyss/tadoku/pkg/config"
)

// Identity describes the game shown while a session is active.
type Identity struct {
	Started  time.Time
	GameID   string
	Title    string
	ImageURL string
}

type Presence interface {
	// Set shows id as the current activity. When suppressed a generic
	// placeholder is shown instead of the game's title and cover.
	Set(id Identity, suppressed bool) error
	// Reset returns to the idle activity, or clears the activity entirely,
	// depending on the mode.
	Reset() error
	// SetMode changes the mode and immediately applies its idle state.
	SetMode(mode config.PresenceMode) error
	Close() error
}

// Noop is used when presence is unavailable.
type Noop struct{}

func (Noop) Set(Identity, bool) error          { return nil }
func (Noop) Reset() error                      { return nil }
func (Noop) SetMode(config.PresenceMode) error { return nil }
func (Noop) Close() error                      { return nil }
