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

package notifications

import (
	"encoding/json"

	"github.com/Eroge-Abyss/tadoku/pkg/api/models"
	"github.com/rs/zerolog/log"
)

func send(ns chan<- models.Notification, method string, payload any) {
	params, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("method", method).Msg("error marshalling notification params")
		return
	}
	ns <- models.Notification{
		Method: method,
		Params: params,
	}
}

// Playtime reports the running total of attributed seconds for the session.
func Playtime(ns chan<- models.Notification, seconds int64) {
	send(ns, models.NotificationPlaytime, seconds)
}

// PlaytimePaused reports that the tracked game is not in the foreground.
func PlaytimePaused(ns chan<- models.Notification) {
	send(ns, models.NotificationPlaytime, models.PlaytimePaused)
}

func CurrentGameStarted(ns chan<- models.Notification, gameID string) {
	send(ns, models.NotificationCurrentGame, models.CurrentGame{
		ID:     gameID,
		Status: models.StatusPlaying,
	})
}

// CurrentGameEnded sends a current_game notification with null params.
func CurrentGameEnded(ns chan<- models.Notification) {
	ns <- models.Notification{
		Method: models.NotificationCurrentGame,
		Params: json.RawMessage("null"),
	}
}
