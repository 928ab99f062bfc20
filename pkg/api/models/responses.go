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

// CurrentGame is the payload of a current_game notification.
type CurrentGame struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type SessionResponse struct {
	StartedAt *string `json:"startedAt,omitempty"`
	GameID    string  `json:"gameId,omitempty"`
	Mode      string  `json:"mode,omitempty"`
	PID       int32   `json:"pid,omitempty"`
	Elapsed   int64   `json:"elapsed"`
	Unflushed int64   `json:"unflushed"`
	Active    bool    `json:"active"`
}

type GameResponse struct {
	LastPlayed    *string `json:"lastPlayed,omitempty"`
	FirstPlayed   *string `json:"firstPlayed,omitempty"`
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	ImageURL      string  `json:"imageUrl"`
	ExePath       string  `json:"exePath"`
	ProcessPath   string  `json:"processPath"`
	LastPlayDate  string  `json:"lastPlayDate,omitempty"`
	Playtime      int64   `json:"playtime"`
	TodayPlaytime int64   `json:"todayPlaytime"`
	IsNSFW        bool    `json:"isNsfw"`
}

type SettingsResponse struct {
	PlaytimeMode          string `json:"playtimeMode"`
	PresenceMode          string `json:"presenceMode"`
	ReportAddress         string `json:"reportAddress"`
	DisablePresenceOnNSFW bool   `json:"disablePresenceOnNsfw"`
	DebugLogging          bool   `json:"debugLogging"`
}

type VersionResponse struct {
	Version  string `json:"version"`
	Platform string `json:"platform"`
}
