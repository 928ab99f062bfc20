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

import (
	"encoding/json"

	"github.com/google/uuid"
)

const (
	// NotificationPlaytime carries the running session total in seconds, or
	// the string "paused" while the game is not in the foreground.
	NotificationPlaytime = "playtime"
	// NotificationCurrentGame carries a CurrentGame when a session starts
	// and null when it ends.
	NotificationCurrentGame = "current_game"
)

const (
	MethodLaunch         = "launch"
	MethodClose          = "close"
	MethodStop           = "stop"
	MethodSession        = "session"
	MethodGames          = "games"
	MethodGamesSave      = "games.save"
	MethodSettings       = "settings"
	MethodSettingsUpdate = "settings.update"
	MethodVersion        = "version"
)

const PlaytimePaused = "paused"

const StatusPlaying = "playing"

type Notification struct {
	Method string
	Params json.RawMessage
}

type RequestObject struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *uuid.UUID      `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type ErrorObject struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type ResponseObject struct {
	JSONRPC string       `json:"jsonrpc"`
	ID      uuid.UUID    `json:"id"`
	Result  any          `json:"result"`
	Error   *ErrorObject `json:"error,omitempty"`
}
