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

package database

import (
	"errors"
	"time"
)

var (
	ErrGameNotFound     = errors.New("game not found")
	ErrNegativePlaytime = errors.New("playtime delta must not be negative")
)

// PlayDateLayout is the local calendar date format stored in LastPlayDate.
const PlayDateLayout = "2006-01-02"

// Game is a persisted game record. Playtime fields are only ever changed
// through UpdatePlaytime so a save from the UI cannot rewind them.
type Game struct {
	LastPlayed    *time.Time
	FirstPlayed   *time.Time
	ID            string
	Title         string
	ImageURL      string
	ExePath       string
	ProcessPath   string
	LastPlayDate  string
	Playtime      int64
	TodayPlaytime int64
	IsNSFW        bool
}

// TrackedPath is the path used to find the running game process. It falls
// back to the launch executable when no separate process path is set.
func (g *Game) TrackedPath() string {
	if g.ProcessPath != "" {
		return g.ProcessPath
	}
	return g.ExePath
}

type GamesDBI interface {
	GetGame(id string) (*Game, error)
	SaveGame(game *Game) error
	// UpdatePlaytime adds seconds to the cumulative and today totals. The
	// today total restarts from seconds when the local date has changed
	// since the last update.
	UpdatePlaytime(id string, seconds int64) error
	UpdateLastPlayed(id string) error
	// SetFirstPlayed records the current time only if no first played
	// time exists yet.
	SetFirstPlayed(id string) error
	MigrateUp() error
	Close() error
}
