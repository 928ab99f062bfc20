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

package models

type LaunchParams struct {
	GameID string `json:"gameId" validate:"required,gameid"`
	// Wait blocks the response until the game process has been located.
	Wait bool `json:"wait"`
}

type GamesParams struct {
	GameID string `json:"gameId" validate:"required,gameid"`
}

type SaveGameParams struct {
	ID          string `json:"id" validate:"required,gameid"`
	Title       string `json:"title" validate:"required"`
	ImageURL    string `json:"imageUrl" validate:"omitempty,url"`
	ExePath     string `json:"exePath" validate:"required,abspath"`
	ProcessPath string `json:"processPath" validate:"omitempty,abspath"`
	IsNSFW      bool   `json:"isNsfw"`
}

type UpdateSettingsParams struct {
	PlaytimeMode          *string `json:"playtimeMode" validate:"omitempty,playtimemode"`
	PresenceMode          *string `json:"presenceMode" validate:"omitempty,presencemode"`
	DisablePresenceOnNSFW *bool   `json:"disablePresenceOnNsfw"`
	DebugLogging          *bool   `json:"debugLogging"`
}
