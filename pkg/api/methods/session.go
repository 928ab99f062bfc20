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

package methods

import (
	"time"

	"github.com/Eroge-Abyss/tadoku/pkg/api/models"
	"github.com/Eroge-Abyss/tadoku/pkg/api/models/requests"
	"github.com/rs/zerolog/log"
)

//nolint:gocritic // single-use parameter in API handler
func HandleSession(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received session request")

	sess, ok, err := env.Launcher.Session(env.Context)
	if err != nil {
		return nil, err //nolint:wrapcheck // already wrapped by launcher
	}
	if !ok {
		return models.SessionResponse{Active: false}, nil
	}

	started := sess.Started.Format(time.RFC3339)
	return models.SessionResponse{
		Active:    true,
		GameID:    sess.GameID,
		PID:       sess.PID,
		Mode:      string(sess.Mode),
		StartedAt: &started,
		Elapsed:   sess.Elapsed,
		Unflushed: sess.Unflushed,
	}, nil
}
